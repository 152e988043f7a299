// Copyright (C) 2023 Sneller, Inc.
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

package vm

import "testing"

func TestQuantileInt64AddAndFinalize(t *testing.T) {
	data := make([]byte, QuantileDataSize())
	quantileInit(data, QuantileOpNearest, quantileElemInt64)

	for _, x := range []int64{3, 1, 4, 1, 5, 9, 2, 6} {
		if err := quantileAddInt64(data, x); err != nil {
			t.Fatalf("quantileAddInt64: unexpected error: %v", err)
		}
	}
	got, err := quantileFinalizeInt64(data, 0.5)
	if err != nil {
		t.Fatalf("quantileFinalizeInt64: unexpected error: %v", err)
	}
	if got != 4 {
		t.Fatalf("got %d, want 4", got)
	}
}

func TestQuantileFloat64InclusiveInterpolation(t *testing.T) {
	data := make([]byte, QuantileDataSize())
	quantileInit(data, QuantileOpInclusive, quantileElemFloat64)

	for _, x := range []float64{1, 2, 3, 4} {
		if err := quantileAddFloat64(data, x); err != nil {
			t.Fatalf("quantileAddFloat64: unexpected error: %v", err)
		}
	}
	got, err := quantileFinalizeFloat64(data, 0.5)
	if err != nil {
		t.Fatalf("quantileFinalizeFloat64: unexpected error: %v", err)
	}
	if got != 2.5 {
		t.Fatalf("got %v, want 2.5", got)
	}
}

func TestQuantileMergeInt64CombinesBothBuffers(t *testing.T) {
	dst := make([]byte, QuantileDataSize())
	src := make([]byte, QuantileDataSize())
	quantileInit(dst, QuantileOpNearest, quantileElemInt64)
	quantileInit(src, QuantileOpNearest, quantileElemInt64)

	for _, x := range []int64{10, 20, 30} {
		if err := quantileAddInt64(dst, x); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for _, x := range []int64{40, 50} {
		if err := quantileAddInt64(src, x); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := quantileMergeInt64(dst, src); err != nil {
		t.Fatalf("quantileMergeInt64: unexpected error: %v", err)
	}
	got, err := quantileFinalizeInt64(dst, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 50 {
		t.Fatalf("got %d, want 50 (max of merged set)", got)
	}
}

func TestQuantileMergeInt64NoOpOnEmptySrc(t *testing.T) {
	dst := make([]byte, QuantileDataSize())
	src := make([]byte, QuantileDataSize())
	quantileInit(dst, QuantileOpNearest, quantileElemInt64)
	quantileInit(src, QuantileOpNearest, quantileElemInt64)

	if err := quantileAddInt64(dst, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := quantileMergeInt64(dst, src); err != nil {
		t.Fatalf("quantileMergeInt64: unexpected error: %v", err)
	}
	got, err := quantileFinalizeInt64(dst, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("got %d, want 7 (src was empty, dst untouched)", got)
	}
}

func TestQuantileFinalizeWrongPolicyFails(t *testing.T) {
	data := make([]byte, QuantileDataSize())
	quantileInit(data, QuantileOpInclusive, quantileElemInt64)
	if err := quantileAddInt64(data, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := quantileFinalizeInt64(data, 0.5); err == nil {
		t.Fatalf("expected error finalizing a Nearest-only call on an Inclusive buffer")
	}
}
