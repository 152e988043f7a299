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

import "github.com/sneller-quantile/exact/heap"

// KSmallest returns the k-th smallest (0-based) element of data, computed
// by an algorithm independent of introselect: a bounded max-heap of
// size k+1 holding the k+1 smallest elements seen so far, whose root
// is exactly the k-th smallest once every element has been visited.
// data is read-only.
//
// This exists as a cross-check oracle for the partial-selection
// result, not as a faster or otherwise preferred alternative -- it is
// O(n log k) against introselect's expected O(n), and used only from
// tests. Grounded on heap/heap.go's generic slice heap, here used as a
// bounded max-heap (heap.go itself only builds a min-heap, so the
// comparison function is inverted).
func KSmallest[T Numeric](data []T, k int) T {
	maxLess := func(x, y T) bool { return x > y }
	h := make([]T, 0, k+1)
	for _, x := range data {
		if len(h) <= k {
			heap.PushSlice(&h, x, maxLess)
			continue
		}
		if x < h[0] {
			h[0] = x
			heap.FixSlice(h, 0, maxLess)
		}
	}
	return h[0]
}
