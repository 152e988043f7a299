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

// finalizeNearest partial-selects buf for Nearest's target index and
// returns the element directly (spec §4.3 Policy A).
func finalizeNearest[T Numeric](buf []T, level float64) T {
	n := len(buf)
	if n == 0 {
		return nanOrZero[T]()
	}
	k, _, _, _ := Nearest{}.Index(level, n)
	selectNth(buf, 0, n, k)
	return buf[k]
}

// finalizeInterpolated partial-selects buf for an interpolation
// policy's target pair and returns the linearly-interpolated
// float64 result (spec §4.3 Policies B/C). The boundary placement
// trick -- one partial-select for n-1 plus a suffix-min scan for n,
// instead of two partial-selects -- is spec's explicit optimization.
func finalizeInterpolated[T Numeric](buf []T, policy Policy, level float64) (float64, error) {
	n := len(buf)
	if n == 0 {
		return nan64(), nil
	}
	n1, frac, clip, err := policy.Index(level, n)
	if err != nil {
		return 0, err
	}
	switch clip {
	case clipMin:
		selectNth(buf, 0, n, 0)
		return float64(buf[0]), nil
	case clipMax:
		selectNth(buf, 0, n, n-1)
		return float64(buf[n-1]), nil
	}
	// interpolate's non-clip branch only ever returns n1 in
	// [1, n-1], so pos == n1-1 is always in [0, n-2] and pos+1 is
	// always a valid index.
	pos := n1 - 1
	selectNth(buf, 0, n, pos)
	suffixMin(buf, pos+1)
	return float64(buf[pos]) + frac*(float64(buf[pos+1])-float64(buf[pos])), nil
}

func nan64() float64 {
	return nanOrZero[float64]()
}
