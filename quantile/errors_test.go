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
	"errors"
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindNotImplemented:      "not implemented",
		KindBadArguments:        "bad arguments",
		KindCannotReadAllData:   "cannot read all data",
		KindMemoryLimitExceeded: "memory limit exceeded",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
	if got := Kind(999).String(); !strings.Contains(got, "999") {
		t.Fatalf("unknown Kind.String() = %q, want it to mention 999", got)
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := newError(KindBadArguments, "finalize", cause)
	if !strings.Contains(e.Error(), "finalize") || !strings.Contains(e.Error(), "bad arguments") {
		t.Fatalf("Error() = %q, missing op or kind", e.Error())
	}
	if errors.Unwrap(e) != cause {
		t.Fatalf("Unwrap() did not return the wrapped cause")
	}

	noCause := newError(KindNotImplemented, "add_weighted", nil)
	if strings.Contains(noCause.Error(), "<nil>") {
		t.Fatalf("Error() with nil cause should omit it: %q", noCause.Error())
	}
}

func TestErrorIsMatchesByKindOnly(t *testing.T) {
	a := newError(KindBadArguments, "finalize", nil)
	b := newError(KindBadArguments, "finalize_many", errors.New("different cause"))
	if !errors.Is(a, b) {
		t.Fatalf("errors with the same Kind should satisfy errors.Is regardless of Op/cause")
	}

	c := newError(KindNotImplemented, "finalize", nil)
	if errors.Is(a, c) {
		t.Fatalf("errors with different Kind should not satisfy errors.Is")
	}
}

func TestSentinelErrorsMatchConstructedErrors(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{newError(KindNotImplemented, "add_weighted", nil), ErrNotImplemented},
		{newError(KindBadArguments, "finalize", nil), ErrBadArguments},
		{newError(KindCannotReadAllData, "deserialize", nil), ErrCannotReadAllData},
		{newError(KindMemoryLimitExceeded, "push", nil), ErrMemoryLimitExceeded},
	}
	for _, c := range cases {
		if !errors.Is(c.err, c.want) {
			t.Fatalf("errors.Is(%v, %v) = false, want true", c.err, c.want)
		}
	}
}
