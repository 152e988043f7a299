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

import "testing"

func TestNearestIndex(t *testing.T) {
	cases := []struct {
		level float64
		n     int
		want  int
	}{
		{0.5, 11, 5},
		{1.0, 11, 10},
		{0.0, 11, 0},
	}
	for _, c := range cases {
		k, _, _, err := Nearest{}.Index(c.level, c.n)
		if err != nil {
			t.Fatalf("Nearest.Index(%v,%d): unexpected error %v", c.level, c.n, err)
		}
		if k != c.want {
			t.Fatalf("Nearest.Index(%v,%d) = %d, want %d", c.level, c.n, k, c.want)
		}
	}
}

func TestExclusiveRejectsBoundaries(t *testing.T) {
	for _, level := range []float64{0, 1} {
		_, _, _, err := Exclusive{}.Index(level, 3)
		if err == nil {
			t.Fatalf("Exclusive.Index(%v): expected BadArguments, got nil", level)
		}
		var qe *Error
		if ok := asError(err, &qe); !ok || qe.Kind != KindBadArguments {
			t.Fatalf("Exclusive.Index(%v): expected KindBadArguments, got %v", level, err)
		}
	}
}

func TestExclusiveQuarterOfThree(t *testing.T) {
	// spec scenario 4: input [1,2,3], level 0.25: h=1, n=1, result = sorted[0]
	n1, frac, clip, err := Exclusive{}.Index(0.25, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clip != clipNone {
		t.Fatalf("expected no clip, got %v", clip)
	}
	if n1 != 1 || frac != 0 {
		t.Fatalf("n1=%d frac=%v, want n1=1 frac=0", n1, frac)
	}
}

func TestInclusiveBoundaries(t *testing.T) {
	// level=0 lands on h=1, which is the normal (non-clip) branch with
	// n1=1 frac=0 -- it still resolves to the exact minimum because
	// frac=0 collapses the interpolation to buffer[0].
	n1, frac, clip, err := Inclusive{}.Index(0, 5)
	if err != nil || clip != clipNone || n1 != 1 || frac != 0 {
		t.Fatalf("Inclusive.Index(0,5) = (%d,%v,%v,%v), want (1,0,clipNone,nil)", n1, frac, clip, err)
	}
	n1, _, clip, err = Inclusive{}.Index(1, 5)
	if err != nil || clip != clipMax {
		t.Fatalf("Inclusive.Index(1,5): clip=%v err=%v, want clipMax", clip, err)
	}
	_ = n1
}

func TestInclusiveEvenCountHalf(t *testing.T) {
	// spec scenario 3: [1,2,3,4], level 0.5: h=2.5, n=2
	n1, frac, clip, err := Inclusive{}.Index(0.5, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clip != clipNone {
		t.Fatalf("expected no clip, got %v", clip)
	}
	if n1 != 2 || frac != 0.5 {
		t.Fatalf("n1=%d frac=%v, want n1=2 frac=0.5", n1, frac)
	}
}

// asError is a small helper mirroring errors.As without pulling in
// the errors package's reflection-based matching for this narrow
// internal test use: *Error never wraps another *Error as its
// dynamic type, so a direct type assertion suffices.
func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
