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

import "math/bits"

// selectNth rearranges data[lo:hi] in place (hi exclusive) so that
// data[k] equals the k-th order statistic of the range, everything
// before k is <= data[k], and everything after is >= data[k]. k is
// absolute (relative to data, not to lo). Expected O(hi-lo); worst
// case O((hi-lo) log(hi-lo)) via a recursion-depth-bounded fallback
// to heapsort (spec §4.3, "introselect").
//
// Grounded on internal/sort's scalarPartitionAscUint64 /
// scalarQuicksortAscUint64SingleThread recurrence, generalized from
// uint64 to any Numeric T and rewritten as an explicit bounded
// recursion rather than unconditional recursion.
func selectNth[T Numeric](data []T, lo, hi, k int) {
	maxDepth := 2 * bitsLen(hi-lo)
	introselect(data, lo, hi, k, maxDepth)
}

func introselect[T Numeric](data []T, lo, hi, k, depth int) {
	for {
		if hi-lo <= 1 {
			return
		}
		if hi-lo <= 16 {
			insertionSort(data[lo:hi])
			return
		}
		if depth <= 0 {
			heapSelect(data, lo, hi, k)
			return
		}
		depth--

		pivot := medianOfThree(data, lo, lo+(hi-lo)/2, hi-1)
		i, j := partition(data, lo, hi-1, pivot)

		switch {
		case k <= j:
			hi = j + 1
		case k >= i:
			lo = i
		default:
			// k falls strictly between j and i: every element in
			// that gap already equals pivot, so data[k] == pivot.
			return
		}
	}
}

// partition performs a Hoare two-pointer scan over data[lo:hi]
// (hi inclusive), swapping elements that are on the wrong side of
// pivot, and returns the crossing indices (i, j) such that
// data[lo:j+1] <= pivot <= data[i:hi+1]. Directly generalizes
// internal/sort's scalarPartitionAscUint64.
func partition[T Numeric](data []T, lo, hi int, pivot T) (i, j int) {
	i, j = lo, hi
	for i <= j {
		for data[i] < pivot {
			i++
		}
		for data[j] > pivot {
			j--
		}
		if i <= j {
			data[i], data[j] = data[j], data[i]
			i++
			j--
		}
	}
	return i, j
}

func medianOfThree[T Numeric](data []T, a, b, c int) T {
	x, y, z := data[a], data[b], data[c]
	if x > y {
		x, y = y, x
	}
	if y > z {
		y = z
		if x > y {
			y = x
		}
	}
	return y
}

// insertionSort sorts small ranges directly; introselect's base case.
func insertionSort[T Numeric](data []T) {
	for i := 1; i < len(data); i++ {
		for j := i; j > 0 && data[j-1] > data[j]; j-- {
			data[j-1], data[j] = data[j], data[j-1]
		}
	}
}

// heapSelect is introselect's worst-case fallback: build a max-heap
// of data[lo:hi], then repeatedly pop the maximum into the tail of
// the range until position k holds the k-th order statistic. This
// bounds the algorithm to O(n log n) when recursion depth is
// exhausted, same role as std::nth_element's heapsort fallback.
func heapSelect[T Numeric](data []T, lo, hi, k int) {
	n := hi - lo
	seg := data[lo:hi]
	target := k - lo
	for i := n/2 - 1; i >= 0; i-- {
		siftDownMax(seg, i, n)
	}
	end := n - 1
	for end > target {
		seg[0], seg[end] = seg[end], seg[0]
		end--
		siftDownMax(seg, 0, end+1)
	}
	// seg[0] is now the max of the remaining (target+1)-element heap,
	// i.e. exactly the target-th order statistic; move it into place.
	seg[0], seg[target] = seg[target], seg[0]
}

func siftDownMax[T Numeric](seg []T, i, n int) {
	for {
		l, r := 2*i+1, 2*i+2
		largest := i
		if l < n && seg[l] > seg[largest] {
			largest = l
		}
		if r < n && seg[r] > seg[largest] {
			largest = r
		}
		if largest == i {
			return
		}
		seg[i], seg[largest] = seg[largest], seg[i]
		i = largest
	}
}

func bitsLen(n int) int {
	if n <= 0 {
		return 0
	}
	return bits.Len(uint(n))
}

// suffixMin returns the minimum of data[from:] without otherwise
// reordering it, and swaps it into data[from] (spec §4.3's "boundary
// placement for interpolation policies": after selecting n-1, find
// min(data[n:]) and place it at data[n] with one linear scan instead
// of a second partial-select).
func suffixMin[T Numeric](data []T, from int) {
	minIdx := from
	for i := from + 1; i < len(data); i++ {
		if data[i] < data[minIdx] {
			minIdx = i
		}
	}
	data[from], data[minIdx] = data[minIdx], data[from]
}
