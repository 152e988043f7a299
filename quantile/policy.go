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

	"github.com/sneller-quantile/exact/ints"
)

// Policy selects one of the three quantile conventions spec §4.3
// names (Nearest, Exclusive interpolation, Inclusive interpolation).
// Implementations are zero-sized marker types so dispatch costs
// nothing beyond a method call and stays inlinable; see
// internal/percentile's Percentiles for the "one function, several
// per-policy boundary branches" shape this interface splits apart.
type Policy interface {
	// Interpolates reports whether this policy ever needs two
	// adjacent order statistics (true for Exclusive/Inclusive,
	// false for Nearest).
	Interpolates() bool

	// Index computes the target position(s) for level against a
	// buffer of length n. For Nearest, n1 is the 0-based index of the
	// result and frac is always 0. For interpolation policies, n1 is
	// floor(h), the 1-based rank of the lower order statistic, so the
	// two values interpolated sit at 0-based indices n1-1 and n1 (see
	// single.go for how n1 is consumed), and frac is the
	// interpolation fraction h-n1. clip indicates the result is the
	// exact min or max without needing any partial-select at all.
	Index(level float64, n int) (n1 int, frac float64, clip clipKind, err error)
}

// clipKind distinguishes "no partial-select needed, the answer is
// exactly min or max" from "partial-select at n1 (Nearest), or at
// n1-1 with the next order statistic placed at n1 (interpolation)".
type clipKind uint8

const (
	clipNone clipKind = iota
	clipMin
	clipMax
)

// Nearest is Policy A (spec §4.3): k = floor(level*len), or len-1 at
// level==1. No interpolation; the result is always a member of the
// input.
type Nearest struct{}

func (Nearest) Interpolates() bool { return false }

func (Nearest) Index(level float64, n int) (int, float64, clipKind, error) {
	if n == 0 {
		return 0, 0, clipNone, nil
	}
	var k int
	if level < 1 {
		k = int(math.Floor(level * float64(n)))
	} else {
		k = n - 1
	}
	k = ints.Clamp(k, 0, n-1)
	return k, 0, clipNone, nil
}

// Exclusive is Policy B (spec §4.3): Excel PERCENTILE.EXC / R type-6
// / SciPy (0,0). level in {0,1} is rejected with BadArguments.
type Exclusive struct{}

func (Exclusive) Interpolates() bool { return true }

func (Exclusive) Index(level float64, n int) (int, float64, clipKind, error) {
	if level == 0 || level == 1 {
		return 0, 0, clipNone, newError(KindBadArguments, "finalize", nil)
	}
	return interpolate(level*float64(n+1), n)
}

// Inclusive is Policy C (spec §4.3): Excel PERCENTILE.INC / R type-7
// / SciPy (1,1). level in {0,1} are valid and map to min/max exactly.
type Inclusive struct{}

func (Inclusive) Interpolates() bool { return true }

func (Inclusive) Index(level float64, n int) (int, float64, clipKind, error) {
	return interpolate(level*float64(n-1)+1, n)
}

// interpolate implements the shared n/h-based boundary logic of
// Policies B and C (spec §4.3: "if n >= len: max; else if n < 1:
// min; else: interpolate between buffer[n-1] and buffer[n]").
// Returns n1 = floor(h), the 1-based rank of the lower order
// statistic, so the caller partial-selects 0-based index n1-1 and
// places the next order statistic at index n1 -- see
// single.go/multi.go for the exact consumption.
func interpolate(h float64, n int) (int, float64, clipKind, error) {
	if n == 0 {
		return 0, 0, clipNone, nil
	}
	nInt := int(math.Floor(h))
	switch {
	case nInt >= n:
		return 0, 0, clipMax, nil
	case nInt < 1:
		return 0, 0, clipMin, nil
	default:
		return nInt, h - float64(nInt), clipNone, nil
	}
}
