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

import "github.com/sneller-quantile/exact/ints"

// inlineCap is the number of elements a SampleBuffer keeps in-line
// before spilling to the heap. For the widest native element types
// (int64/float64, 8 bytes each) the inline array takes 64 bytes; the
// length and heap-slice fields come on top of that, so a SampleBuffer
// (and the State around it) occupies more than 64 bytes. Narrower
// element types simply leave part of the array unused rather than
// tracking a per-T byte count, which would
// require reinterpreting a raw byte array via unsafe — the generic
// array below keeps the whole buffer unsafe-free.
const inlineCap = 8

// SampleBuffer is an ordered-sequence container with small-object
// storage: while len(buf) <= inlineCap, all elements live in the
// inline array and no heap allocation occurs; beyond that, elements
// move permanently to heap storage (spec §4.1).
//
// The zero value is a valid, empty SampleBuffer.
type SampleBuffer[T Numeric] struct {
	inline [inlineCap]T
	n      int // logical length
	heap   []T // nil while n <= inlineCap
}

// Len returns the logical number of retained samples.
func (b *SampleBuffer[T]) Len() int { return b.n }

// IsEmpty reports whether the buffer holds no samples.
func (b *SampleBuffer[T]) IsEmpty() bool { return b.n == 0 }

// Slice returns a mutable view over all retained samples. The
// returned slice aliases the buffer's storage (inline or heap); it
// is invalidated by any subsequent call to Push, Extend, Reserve or
// Resize.
func (b *SampleBuffer[T]) Slice() []T {
	if b.heap != nil {
		return b.heap[:b.n]
	}
	return b.inline[:b.n]
}

// Push appends x, spilling to heap storage the first time the
// inline capacity is exceeded.
func (b *SampleBuffer[T]) Push(x T) {
	if b.heap == nil && b.n < inlineCap {
		b.inline[b.n] = x
		b.n++
		return
	}
	b.spillIfNeeded()
	b.heap = append(b.heap[:b.n], x)
	b.n++
}

// spillIfNeeded copies the inline elements into a freshly allocated
// heap slice the first time growth requires it. Idempotent: once
// b.heap is non-nil this is a no-op.
func (b *SampleBuffer[T]) spillIfNeeded() {
	if b.heap != nil {
		return
	}
	newCap := int(ints.AlignUp64(uint64(b.n+1), inlineCap)) * 2
	b.heap = make([]T, b.n, newCap)
	copy(b.heap, b.inline[:b.n])
}

// Extend appends all elements of other, preserving other's contents
// and length.
func (b *SampleBuffer[T]) Extend(other *SampleBuffer[T]) {
	src := other.Slice()
	if len(src) == 0 {
		return
	}
	if b.heap == nil && b.n+len(src) <= inlineCap {
		copy(b.inline[b.n:], src)
		b.n += len(src)
		return
	}
	b.spillIfNeeded()
	b.heap = append(b.heap[:b.n], src...)
	b.n += len(src)
}

// Reserve ensures the buffer can grow to at least n elements without
// further reallocation, spilling to heap storage immediately if n
// exceeds the inline capacity.
func (b *SampleBuffer[T]) Reserve(n int) {
	if n <= inlineCap {
		return
	}
	if b.heap == nil {
		b.heap = make([]T, b.n, n)
		copy(b.heap, b.inline[:b.n])
		return
	}
	if cap(b.heap) < n {
		grown := make([]T, len(b.heap), n)
		copy(grown, b.heap)
		b.heap = grown
	}
}

// Resize extends the buffer's logical length to n, leaving newly
// exposed elements uninitialized (zero value); the caller must fill
// them (via Slice) before reading, per spec's deserialization
// bulk-fill contract. Shrinking truncates without discarding storage.
func (b *SampleBuffer[T]) Resize(n int) {
	if n <= b.n {
		b.n = n
		return
	}
	b.Reserve(n)
	if b.heap != nil {
		var zero T
		for len(b.heap) < n {
			b.heap = append(b.heap, zero)
		}
	}
	b.n = n
}
