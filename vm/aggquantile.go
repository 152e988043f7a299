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

import (
	"encoding/binary"

	"github.com/sneller-quantile/exact/quantile"
)

// QuantileOpFn selects which of the three quantile conventions a
// quantileDS buffer is bound to, the aggregation-buffer sibling of
// AggregateOpFn's AggregateOpTDigest slot.
type QuantileOpFn uint8

const (
	QuantileOpNearest QuantileOpFn = iota
	QuantileOpExclusive
	QuantileOpInclusive
)

func (o QuantileOpFn) policy() quantile.Policy {
	switch o {
	case QuantileOpExclusive:
		return quantile.Exclusive{}
	case QuantileOpInclusive:
		return quantile.Inclusive{}
	default:
		return quantile.Nearest{}
	}
}

// quantileElemKind tags the element type a quantileDS buffer holds.
// The VM only ever routes int64 or float64 scalar registers into an
// aggregate (see AggregateOpSumI/AggregateOpSumF's own int64/float64
// split), so unlike quantile.State[T]'s full width lineup this adapter
// only needs these two.
type quantileElemKind uint8

const (
	quantileElemInt64 quantileElemKind = iota
	quantileElemFloat64
)

// quantileMaxBufferBytes bounds a quantileDS row buffer. Unlike
// tDigestDS's fixed 32-centroid layout, an exact quantile's sample
// count is open-ended, so this adapter cannot give quantileDS its own
// entry in aggregateOpInfoTable's fixed dataSize() scheme; instead it
// enforces a ceiling and reports quantile.KindMemoryLimitExceeded past
// it (the Kind spec.md §4.5 already reserves for this exact case).
const quantileMaxBufferBytes = 1 << 16

// QuantileDataSize returns the fixed row-buffer size a caller should
// allocate for a quantile aggregate, the equivalent of AggregateOp's
// own dataSize() table entry for every other op.
func QuantileDataSize() int { return quantileMaxBufferBytes }

// quantileHeaderSize: 1 byte op, 1 byte elem kind, 2 bytes reserved,
// 4 bytes little-endian payload length (bytes 4..8), followed directly
// by quantile.State's own wire encoding
// (spec.md §6: varuint count + raw little-endian elements).
const quantileHeaderSize = 8

// quantileDS is a row aggregation buffer for one group's quantile
// state, in the same "typed view over a raw byte slice" style as
// aggtdigest.go's tDigestDS.
type quantileDS []byte

func (q quantileDS) op() QuantileOpFn           { return QuantileOpFn(q[0]) }
func (q quantileDS) setOp(op QuantileOpFn)      { q[0] = byte(op) }
func (q quantileDS) kind() quantileElemKind     { return quantileElemKind(q[1]) }
func (q quantileDS) setKind(k quantileElemKind) { q[1] = byte(k) }

func (q quantileDS) payloadLen() int {
	return int(binary.LittleEndian.Uint32(q[4:8]))
}
func (q quantileDS) setPayloadLen(n int) {
	binary.LittleEndian.PutUint32(q[4:8], uint32(n))
}
func (q quantileDS) payload() []byte {
	return q[quantileHeaderSize : quantileHeaderSize+q.payloadLen()]
}

// quantileInit zero-initializes a fresh row buffer for the given
// policy and element kind (mirrors aggtdigest.go's tDigestInit, which
// just zeroes the buffer since a zeroed tDigestDS already means "no
// centroids yet" -- here a zero-length payload means "no samples
// yet"; quantile.State's own Serialize writes a one-byte zero count
// for an empty state instead, and the load helpers below accept both).
func quantileInit(data []byte, op QuantileOpFn, kind quantileElemKind) {
	for i := range data {
		data[i] = 0
	}
	quantileDS(data).setOp(op)
	quantileDS(data).setKind(kind)
}

// quantileLoadInt64 / quantileLoadFloat64 build a live State from a
// row buffer's payload. An empty payload (a freshly quantileInit'd
// buffer, or a merge source that never received a sample) means
// "empty state", which quantile.New already is -- Deserialize itself
// rejects a zero-length input since it expects at least the varuint
// length prefix, so the empty case is handled before ever calling it.
func quantileLoadInt64(payload []byte, policy quantile.Policy) (*quantile.State[int64], error) {
	s := quantile.New[int64](policy)
	if len(payload) == 0 {
		return s, nil
	}
	if _, err := s.Deserialize(payload); err != nil {
		return nil, err
	}
	return s, nil
}

func quantileLoadFloat64(payload []byte, policy quantile.Policy) (*quantile.State[float64], error) {
	s := quantile.New[float64](policy)
	if len(payload) == 0 {
		return s, nil
	}
	if _, err := s.Deserialize(payload); err != nil {
		return nil, err
	}
	return s, nil
}

// quantileAddInt64 / quantileAddFloat64 fold one more row value into
// the buffer's running state by deserializing, adding, and
// reserializing -- not the fastest possible path (a live *State would
// avoid the round trip) but the only one compatible with a plain byte
// buffer that gets memcpy'd and merged across machines the way every
// other AggregateOp buffer in aggregate.go does.
func quantileAddInt64(data []byte, x int64) error {
	ds := quantileDS(data)
	s, err := quantileLoadInt64(ds.payload(), ds.op().policy())
	if err != nil {
		return err
	}
	s.Add(x)
	return quantileStorePayload(ds, s.Serialize(nil))
}

func quantileAddFloat64(data []byte, x float64) error {
	ds := quantileDS(data)
	s, err := quantileLoadFloat64(ds.payload(), ds.op().policy())
	if err != nil {
		return err
	}
	s.Add(x)
	return quantileStorePayload(ds, s.Serialize(nil))
}

func quantileStorePayload(ds quantileDS, payload []byte) error {
	if quantileHeaderSize+len(payload) > len(ds) {
		return &quantile.Error{Kind: quantile.KindMemoryLimitExceeded, Op: "quantile_store"}
	}
	copy(ds[quantileHeaderSize:], payload)
	ds.setPayloadLen(len(payload))
	return nil
}

// quantileMergeInt64 / quantileMergeFloat64 combine src's retained
// samples into dst, in place, mirroring tDigestMerge's dst/src
// asymmetry (src is left readable but logically spent once merged).
func quantileMergeInt64(dst, src []byte) error {
	dstDS, srcDS := quantileDS(dst), quantileDS(src)
	if srcDS.payloadLen() == 0 {
		return nil
	}
	a, err := quantileLoadInt64(dstDS.payload(), dstDS.op().policy())
	if err != nil {
		return err
	}
	b, err := quantileLoadInt64(srcDS.payload(), srcDS.op().policy())
	if err != nil {
		return err
	}
	a.Merge(b)
	return quantileStorePayload(dstDS, a.Serialize(nil))
}

func quantileMergeFloat64(dst, src []byte) error {
	dstDS, srcDS := quantileDS(dst), quantileDS(src)
	if srcDS.payloadLen() == 0 {
		return nil
	}
	a, err := quantileLoadFloat64(dstDS.payload(), dstDS.op().policy())
	if err != nil {
		return err
	}
	b, err := quantileLoadFloat64(srcDS.payload(), srcDS.op().policy())
	if err != nil {
		return err
	}
	a.Merge(b)
	return quantileStorePayload(dstDS, a.Serialize(nil))
}

// quantileFinalizeInt64 computes the level quantile held in data under
// the Nearest policy. Calling this on an Exclusive/Inclusive buffer is
// a programming error reported via quantile.KindBadArguments (same
// contract as quantile.State.Finalize).
func quantileFinalizeInt64(data []byte, level float64) (int64, error) {
	ds := quantileDS(data)
	s, err := quantileLoadInt64(ds.payload(), ds.op().policy())
	if err != nil {
		return 0, err
	}
	return s.Finalize(level)
}

func quantileFinalizeFloat64(data []byte, level float64) (float64, error) {
	ds := quantileDS(data)
	s, err := quantileLoadFloat64(ds.payload(), ds.op().policy())
	if err != nil {
		return 0, err
	}
	return s.FinalizeFloat(level)
}
