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

import "fmt"

// Kind identifies one of the aggregator's closed set of error
// conditions (spec §4.5). Usage errors abort the enclosing query;
// resource errors poison the state.
type Kind uint32

const (
	// KindOK is the zero value; never appears on a returned *Error.
	KindOK Kind = iota
	// KindNotImplemented marks a call to an unsupported entry point
	// (add_weighted).
	KindNotImplemented
	// KindBadArguments marks a caller-supplied argument that violates
	// a policy's boundary contract (e.g. Exclusive interpolation at
	// level 0 or 1, or a non-monotonic index permutation).
	KindBadArguments
	// KindCannotReadAllData marks a deserialize call whose declared
	// length prefix exceeds the bytes actually available.
	KindCannotReadAllData
	// KindMemoryLimitExceeded marks a sample set that does not fit the
	// storage it must be written into (vm's quantileDS row buffer).
	// Growing a SampleBuffer never returns it.
	KindMemoryLimitExceeded

	kindLast
)

var kindMessages = [kindLast]string{
	KindOK:                  "",
	KindNotImplemented:      "not implemented",
	KindBadArguments:        "bad arguments",
	KindCannotReadAllData:   "cannot read all data",
	KindMemoryLimitExceeded: "memory limit exceeded",
}

func (k Kind) String() string {
	if k < kindLast {
		return kindMessages[k]
	}
	return fmt.Sprintf("<Kind=%d>", uint32(k))
}

// Error is the error type returned by every fallible aggregator
// operation. Op names the failing method so callers and logs can tell
// add_weighted's NotImplemented apart from a deserialize's
// CannotReadAllData without parsing strings.
type Error struct {
	Kind Kind
	Op   string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quantile: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("quantile: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so
// callers can write errors.Is(err, quantile.ErrBadArguments) without
// caring about Op or the wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Sentinel errors for errors.Is comparisons. Only Kind is compared
// (see (*Error).Is), so these carry no Op/cause of their own.
var (
	ErrNotImplemented      = &Error{Kind: KindNotImplemented}
	ErrBadArguments        = &Error{Kind: KindBadArguments}
	ErrCannotReadAllData   = &Error{Kind: KindCannotReadAllData}
	ErrMemoryLimitExceeded = &Error{Kind: KindMemoryLimitExceeded}
)
