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

// validateIndices checks that indices is a permutation of 0..len-1
// under which levels[indices[i]] is non-decreasing in i (spec §9's
// open question: MultiFinalizer's correctness depends on indices
// being an ascending permutation; this module validates rather than
// trusting the caller, in the teacher's style of rejecting malformed
// input with a typed error -- see vm/aggtdigest.go's createTDigest
// rejecting an oversized centroid count).
func validateIndices(levels []float64, indices []int) error {
	if len(levels) != len(indices) {
		return newError(KindBadArguments, "finalize_many", nil)
	}
	seen := make([]bool, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(indices) || seen[idx] {
			return newError(KindBadArguments, "finalize_many", nil)
		}
		seen[idx] = true
		if i > 0 && levels[indices[i-1]] > levels[idx] {
			return newError(KindBadArguments, "finalize_many", nil)
		}
	}
	return nil
}

// finalizeManyNearest implements spec §4.4 for the Nearest policy:
// out[indices[i]] receives the levels[indices[i]] quantile, visiting
// levels in ascending order and reusing each partial-select's
// guarantee that the prefix is already <= the next target.
func finalizeManyNearest[T Numeric](buf []T, levels []float64, indices []int, out []T) error {
	if err := validateIndices(levels, indices); err != nil {
		return err
	}
	n := len(buf)
	if n == 0 {
		z := nanOrZero[T]()
		for _, idx := range indices {
			out[idx] = z
		}
		return nil
	}
	intervalStart := 0
	for _, idx := range indices {
		level := levels[idx]
		k, _, _, _ := Nearest{}.Index(level, n)
		if k+1 != intervalStart {
			selectNth(buf, intervalStart, n, k)
		}
		intervalStart = k + 1
		out[idx] = buf[k]
	}
	return nil
}

// finalizeManyInterpolated implements spec §4.4 for Exclusive and
// Inclusive: the same ascending-cursor reuse, plus the per-query
// suffix-min placement single.go's single-level path also performs.
func finalizeManyInterpolated[T Numeric](buf []T, policy Policy, levels []float64, indices []int, out []float64) error {
	if err := validateIndices(levels, indices); err != nil {
		return err
	}
	n := len(buf)
	if n == 0 {
		z := nan64()
		for _, idx := range indices {
			out[idx] = z
		}
		return nil
	}
	intervalStart := 0
	for _, idx := range indices {
		level := levels[idx]
		n1, frac, clip, err := policy.Index(level, n)
		if err != nil {
			return err
		}
		switch clip {
		case clipMin:
			// ascending levels mean a clipMin result can only occur
			// while intervalStart is still 0. Only buf[0] is placed
			// here, so intervalStart stays 0.
			selectNth(buf, intervalStart, n, 0)
			out[idx] = float64(buf[0])
			continue
		case clipMax:
			selectNth(buf, intervalStart, n, n-1)
			out[idx] = float64(buf[n-1])
			intervalStart = n
			continue
		}

		pos := n1 - 1
		if pos+1 != intervalStart {
			// once a query has run, buf[intervalStart] already holds
			// its order statistic (placed by that query's suffixMin);
			// before the first query nothing is placed yet.
			if pos != intervalStart || intervalStart == 0 {
				selectNth(buf, intervalStart, n, pos)
			}
			suffixMin(buf, pos+1)
		}
		out[idx] = float64(buf[pos]) + frac*(float64(buf[pos+1])-float64(buf[pos]))
		intervalStart = pos + 1
	}
	return nil
}
