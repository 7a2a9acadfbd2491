// Package domain defines the data model shared by the block executor and
// the historical key-value store: columns, keys, write operations, change
// sets and the domain values that live in them (coins, messages, contract
// pointers, processed-transaction markers).
package domain

import (
	"bytes"
	"encoding/binary"
)

// Column identifies one logical keyspace inside the store. Columns are
// disjoint: no two columns ever observe each other's keys.
type Column string

const (
	ColumnCoins               Column = "coins"
	ColumnMessages             Column = "messages"
	ColumnContractsLatestUtxo Column = "contracts_latest_utxo"
	ColumnProcessedTxs        Column = "processed_transactions"
	ColumnMetadata            Column = "metadata"
)

// HistoricalDuplicateColumn returns the shadow column that historical writes
// against c land in.
func HistoricalDuplicateColumn(c Column) Column {
	return c + ":historical"
}

// ReferenceBytesKey is a byte-string key scoped to a single Column.
type ReferenceBytesKey []byte

func (k ReferenceBytesKey) Bytes() []byte { return []byte(k) }

// Height is a block height. Genesis is height 0.
type Height uint64

// Bytes encodes h as big-endian fixed-width bytes, the form used both to
// build historical suffixes and to compare heights byte-lexically.
func (h Height) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(h))
	return b[:]
}

// ComplementBytes encodes h using a bitwise-complemented big-endian form, so
// that byte-lexical ascending order over ComplementBytes corresponds to
// descending numeric height order. This is the suffix historical entries are
// actually stored under: a forward (ascending) seek over complement-encoded
// suffixes visits the largest real height first.
func (h Height) ComplementBytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], ^uint64(h))
	return b[:]
}

// DecodeHeightComplement is the inverse of Height.ComplementBytes.
func DecodeHeightComplement(b []byte) Height {
	return Height(^binary.BigEndian.Uint64(b))
}

// OperationKind distinguishes a historical write recording an insert from
// one recording a removal.
type OperationKind uint8

const (
	OperationRemove OperationKind = 0x00
	OperationInsert OperationKind = 0x01
)

// WriteOperation is one column-scoped mutation, and the unit the historical
// overlay records as both the forward write and the inverse entry used by
// rollback.
type WriteOperation struct {
	Column Column
	Key    ReferenceBytesKey
	Kind   OperationKind
	Value  []byte // only meaningful when Kind == OperationInsert
}

// Encode packs the operation's kind tag and value into the single blob the
// historical column stores under key⧺suffix. No protobuf envelope: the
// encoding must be comparable and cheap to build for every write in a block.
func (w WriteOperation) Encode() []byte {
	buf := make([]byte, 1+len(w.Value))
	buf[0] = byte(w.Kind)
	copy(buf[1:], w.Value)
	return buf
}

// DecodeWriteOperation is the inverse of WriteOperation.Encode, given the
// column and key the blob was read back from.
func DecodeWriteOperation(column Column, key ReferenceBytesKey, blob []byte) WriteOperation {
	if len(blob) == 0 {
		return WriteOperation{Column: column, Key: key, Kind: OperationRemove}
	}
	kind := OperationKind(blob[0])
	var value []byte
	if len(blob) > 1 {
		value = append([]byte(nil), blob[1:]...)
	}
	return WriteOperation{Column: column, Key: key, Kind: kind, Value: value}
}

// ChangeSet is an ordered group of writes produced by executing one
// transaction (or, for the block-level inverse set, one whole block).
// Order matters: Overwrite-policy sub-transactions replay later writes over
// earlier ones in the order they're appended here.
type ChangeSet struct {
	Operations []WriteOperation
}

func (cs *ChangeSet) Append(op WriteOperation) {
	cs.Operations = append(cs.Operations, op)
}

func (cs *ChangeSet) Merge(other ChangeSet) {
	cs.Operations = append(cs.Operations, other.Operations...)
}

// Inverse builds the change set that, if applied, undoes cs against the
// given "before" lookup of each key's prior value. This is what gets
// recorded against height H+1 so that rollback_block_to(H) can replay it.
func (cs ChangeSet) Inverse(before func(column Column, key ReferenceBytesKey) (value []byte, existed bool)) ChangeSet {
	inv := ChangeSet{}
	// Walk in reverse so that a key touched multiple times within the same
	// block inverts back to its value from *before the block*, not to an
	// intermediate value.
	seen := make(map[string]struct{})
	for i := len(cs.Operations) - 1; i >= 0; i-- {
		op := cs.Operations[i]
		sig := string(op.Column) + "\x00" + string(op.Key)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}

		priorValue, existed := before(op.Column, op.Key)
		if !existed {
			inv.Append(WriteOperation{Column: op.Column, Key: op.Key, Kind: OperationRemove})
			continue
		}
		inv.Append(WriteOperation{Column: op.Column, Key: op.Key, Kind: OperationInsert, Value: priorValue})
	}
	return inv
}

// BuildHistoricalKey returns the key a write at height h against key lands
// under inside the historical duplicate column: key ⧺ complement(h).
func BuildHistoricalKey(key ReferenceBytesKey, h Height) []byte {
	return append(append([]byte(nil), key...), h.ComplementBytes()...)
}

// SplitHistoricalKey reverses BuildHistoricalKey, recovering the original
// key and the height it was written at.
func SplitHistoricalKey(stored []byte) (key ReferenceBytesKey, h Height, ok bool) {
	if len(stored) < 8 {
		return nil, 0, false
	}
	split := len(stored) - 8
	return ReferenceBytesKey(stored[:split]), DecodeHeightComplement(stored[split:]), true
}

// HasPrefix reports whether a historical-column stored key's original-key
// portion equals key — the condition view_at(h) uses to decide whether a
// historical entry found by forward seek actually answers the query, as
// opposed to belonging to some lexically-adjacent different key.
func HasPrefix(stored []byte, key ReferenceBytesKey) bool {
	k, _, ok := SplitHistoricalKey(stored)
	if !ok {
		return false
	}
	return bytes.Equal(k, key)
}
