// Copyright (C) 2024 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package quantile

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Numeric is the set of element types the aggregator supports: every
// signed/unsigned integer width and both IEEE-754 float widths.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// isNaN reports whether x is an IEEE-754 NaN. Integer types never
// produce true; the predicate is resolved at compile time per T via
// type assertion against the only representations that can hold a NaN.
func isNaN[T Numeric](x T) bool {
	switch v := any(x).(type) {
	case float32:
		return math.IsNaN(float64(v))
	case float64:
		return math.IsNaN(v)
	default:
		return false
	}
}

// nanOrZero returns the element type's null-equivalent result for an
// empty-state finalize: the floating NaN sentinel for float types, or
// the zero value for every integer type (spec's locked, flagged
// open question — see SPEC_FULL.md).
func nanOrZero[T Numeric]() T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(float32(math.NaN())).(T)
	case float64:
		return any(math.NaN()).(T)
	default:
		return zero
	}
}

// sizeofT returns sizeof(T) in bytes, used to size the raw
// little-endian element region of the wire format.
func sizeofT[T Numeric]() int {
	var zero T
	switch any(zero).(type) {
	case int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32, float32:
		return 4
	case int64, uint64, int, uint:
		return 8
	case float64:
		return 8
	default:
		return 8
	}
}
