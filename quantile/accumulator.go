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
	"encoding/binary"
	"math"
)

// accumulator owns the sample buffer and implements the mutating
// half of the public contract (add/merge/serialize/deserialize),
// spec §4.2. Finalizers (single.go/multi.go) operate on the same
// buffer once accumulation is done.
type accumulator[T Numeric] struct {
	buf SampleBuffer[T]
}

// add filters NaN (a no-op for non-float T, since isNaN is always
// false there) and otherwise appends x.
func (a *accumulator[T]) add(x T) {
	if isNaN(x) {
		return
	}
	a.buf.Push(x)
}

// addWeighted always fails: exact quantile does not support
// per-sample weights (spec §4.2).
func (a *accumulator[T]) addWeighted(x T, w float64) error {
	return newError(KindNotImplemented, "add_weighted", nil)
}

// merge extends this accumulator's buffer with rhs's, preserving
// rhs. Commutative/associative over the retained multiset, with
// empty as identity (spec §4.2).
func (a *accumulator[T]) merge(rhs *accumulator[T]) {
	a.buf.Extend(&rhs.buf)
}

// serialize writes len() as a varuint followed by len()*sizeof(T)
// raw little-endian bytes (spec §6's wire format).
func (a *accumulator[T]) serialize(sink []byte) []byte {
	n := a.buf.Len()
	var hdr [10]byte
	hn := putUvarint(hdr[:], uint64(n))
	sink = append(sink, hdr[:hn]...)
	elems := a.buf.Slice()
	for _, x := range elems {
		sink = appendLittleEndian(sink, x)
	}
	return sink
}

// deserialize reads a varuint length then exactly that many
// sizeof(T)-byte little-endian elements from src, resizing the
// buffer to hold them. No bounds or NaN revalidation is performed
// (spec §4.2: "trusted intra-cluster format"). Returns the number of
// bytes consumed, or a CannotReadAllData error if src is short.
func (a *accumulator[T]) deserialize(src []byte) (int, error) {
	n, hn, ok := getUvarint(src)
	if !ok {
		return 0, newError(KindCannotReadAllData, "deserialize", nil)
	}
	elemSize := sizeofT[T]()
	need := int(n) * elemSize
	if len(src)-hn < need {
		return 0, newError(KindCannotReadAllData, "deserialize", nil)
	}
	a.buf.Resize(int(n))
	dst := a.buf.Slice()
	off := hn
	for i := range dst {
		dst[i] = readLittleEndian[T](src[off : off+elemSize])
		off += elemSize
	}
	return off, nil
}

func appendLittleEndian[T Numeric](dst []byte, x T) []byte {
	switch v := any(x).(type) {
	case int8:
		return append(dst, byte(v))
	case uint8:
		return append(dst, v)
	case int16:
		return binary.LittleEndian.AppendUint16(dst, uint16(v))
	case uint16:
		return binary.LittleEndian.AppendUint16(dst, v)
	case int32:
		return binary.LittleEndian.AppendUint32(dst, uint32(v))
	case uint32:
		return binary.LittleEndian.AppendUint32(dst, v)
	case float32:
		return binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	case int64:
		return binary.LittleEndian.AppendUint64(dst, uint64(v))
	case uint64:
		return binary.LittleEndian.AppendUint64(dst, v)
	case float64:
		return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
	case int:
		return binary.LittleEndian.AppendUint64(dst, uint64(v))
	case uint:
		return binary.LittleEndian.AppendUint64(dst, uint64(v))
	default:
		panic("quantile: unsupported element type")
	}
}

func readLittleEndian[T Numeric](src []byte) T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(src[0])).(T)
	case uint8:
		return any(src[0]).(T)
	case int16:
		return any(int16(binary.LittleEndian.Uint16(src))).(T)
	case uint16:
		return any(binary.LittleEndian.Uint16(src)).(T)
	case int32:
		return any(int32(binary.LittleEndian.Uint32(src))).(T)
	case uint32:
		return any(binary.LittleEndian.Uint32(src)).(T)
	case float32:
		return any(math.Float32frombits(binary.LittleEndian.Uint32(src))).(T)
	case int64:
		return any(int64(binary.LittleEndian.Uint64(src))).(T)
	case uint64:
		return any(binary.LittleEndian.Uint64(src)).(T)
	case float64:
		return any(math.Float64frombits(binary.LittleEndian.Uint64(src))).(T)
	case int:
		return any(int(binary.LittleEndian.Uint64(src))).(T)
	case uint:
		return any(uint(binary.LittleEndian.Uint64(src))).(T)
	default:
		panic("quantile: unsupported element type")
	}
}
