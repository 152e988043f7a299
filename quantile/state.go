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

// Package quantile implements the exact quantile aggregator: a
// family of streaming-compatible aggregate states that compute order
// statistics over a stream of numeric values by materializing them
// and applying partial selection, in one of three conventions
// (Nearest, Exclusive interpolation, Inclusive interpolation).
package quantile

// phase tracks the state machine of spec §4.3: EMPTY -> ACCUMULATING
// -> (merged into ACCUMULATING)* -> FINALIZED. FINALIZED is terminal
// for the purposes of this type's own bookkeeping, but re-finalizing
// with a different level remains valid (the buffer is still the
// same multiset, just differently permuted) -- see State.Finalize.
type phase uint8

const (
	phaseEmpty phase = iota
	phaseAccumulating
	phaseFinalized
)

// State is one group's worth of aggregator state: construct with a
// Policy (Nearest{}, Exclusive{}, or Inclusive{}), feed it with Add
// and Merge, then call Finalize (or FinalizeMany) for Nearest, or
// FinalizeFloat (or FinalizeManyFloat) for the interpolation policies,
// to read one or more quantiles. Each of these returns its results
// directly; there is no separate Get step.
//
// A State is single-owner (spec §5): callers must not use the same
// State from more than one goroutine at a time, though many States
// may be operated on concurrently from different goroutines.
type State[T Numeric] struct {
	acc    accumulator[T]
	policy Policy
	phase  phase
}

// New constructs an empty State bound to the given policy.
func New[T Numeric](policy Policy) *State[T] {
	return &State[T]{policy: policy, phase: phaseEmpty}
}

// Count returns the logical number of retained samples. Useful for
// callers that need to distinguish "empty group" from "group whose
// quantile happens to equal the type's zero value" (spec §9's open
// question on unsigned-integer empty-state defaults).
func (s *State[T]) Count() int { return s.acc.buf.Len() }

// Add appends one sample. NaN inputs (float element types only) are
// silently dropped (spec §4.2).
func (s *State[T]) Add(x T) {
	s.acc.add(x)
	if s.phase == phaseEmpty {
		s.phase = phaseAccumulating
	}
}

// AddWeighted always returns a NotImplemented error: exact quantile
// does not support per-sample weights (spec §4.2).
func (s *State[T]) AddWeighted(x T, weight float64) error {
	return s.acc.addWeighted(x, weight)
}

// Merge combines other's retained samples into s, preserving other.
// Commutative, associative, with empty as identity (spec §4.2, §8).
func (s *State[T]) Merge(other *State[T]) {
	s.acc.merge(&other.acc)
	if s.phase == phaseEmpty && other.phase != phaseEmpty {
		s.phase = phaseAccumulating
	}
}

// Serialize appends the wire encoding of s (spec §6) to dst and
// returns the extended slice.
func (s *State[T]) Serialize(dst []byte) []byte {
	return s.acc.serialize(dst)
}

// Deserialize reads a wire-encoded state from the front of src,
// replacing s's current contents, and returns the number of bytes
// consumed. No bounds or NaN revalidation is performed (spec §4.2:
// "trusted intra-cluster format").
func (s *State[T]) Deserialize(src []byte) (int, error) {
	n, err := s.acc.deserialize(src)
	if err != nil {
		return 0, err
	}
	if s.acc.buf.Len() > 0 {
		s.phase = phaseAccumulating
	}
	return n, nil
}

// Finalize computes the level quantile under the Nearest policy and
// returns it directly. Calling Finalize on a State bound to an
// interpolation policy is a programming error reported via the
// returned error; use FinalizeFloat instead.
func (s *State[T]) Finalize(level float64) (T, error) {
	if _, ok := s.policy.(Nearest); !ok {
		return nanOrZero[T](), newError(KindBadArguments, "finalize", nil)
	}
	s.phase = phaseFinalized
	return finalizeNearest(s.acc.buf.Slice(), level), nil
}

// FinalizeFloat computes the level quantile under an interpolation
// policy (Exclusive or Inclusive) and returns it as a float64, per
// spec §4.3's "return type is always 64-bit float" rule. Calling
// FinalizeFloat on a State bound to Nearest is a programming error
// reported via the returned error; use Finalize instead.
func (s *State[T]) FinalizeFloat(level float64) (float64, error) {
	if _, ok := s.policy.(Nearest); ok {
		return nan64(), newError(KindBadArguments, "finalize", nil)
	}
	s.phase = phaseFinalized
	return finalizeInterpolated(s.acc.buf.Slice(), s.policy, level)
}

// FinalizeMany computes K Nearest-policy quantiles in one pass. See
// spec §4.4 for the algorithm and the indices-permutation contract.
func (s *State[T]) FinalizeMany(levels []float64, indices []int, out []T) error {
	if _, ok := s.policy.(Nearest); !ok {
		return newError(KindBadArguments, "finalize_many", nil)
	}
	s.phase = phaseFinalized
	return finalizeManyNearest(s.acc.buf.Slice(), levels, indices, out)
}

// FinalizeManyFloat computes K interpolation-policy quantiles in one
// pass. See spec §4.4.
func (s *State[T]) FinalizeManyFloat(levels []float64, indices []int, out []float64) error {
	if _, ok := s.policy.(Nearest); ok {
		return newError(KindBadArguments, "finalize_many", nil)
	}
	s.phase = phaseFinalized
	return finalizeManyInterpolated(s.acc.buf.Slice(), s.policy, levels, indices, out)
}
