// Package kvstore defines the column-keyed key-value backend the block
// executor and the historical overlay are built against, and a
// dgraph-io/badger/v3-backed implementation of it.
package kvstore

import (
	"context"

	"github.com/weisyn/v1/internal/core/eutxo/domain"
)

// ConflictPolicy governs what a Transaction does when a key it wrote is
// also written by an outer transaction it is nested inside.
type ConflictPolicy int

const (
	// ConflictFail aborts the whole transaction chain if a key collides.
	ConflictFail ConflictPolicy = iota
	// ConflictOverwrite lets the most recently applied write win — the
	// policy sub-transactions inside a single block execution use, so a
	// later transaction's writes take precedence over an earlier one's
	// within the same block.
	ConflictOverwrite
)

// Backend is a column-keyed key-value store: every operation is scoped to
// one Column, and columns never observe each other's keys.
type Backend interface {
	Get(ctx context.Context, column domain.Column, key domain.ReferenceBytesKey) ([]byte, error)
	Set(ctx context.Context, column domain.Column, key domain.ReferenceBytesKey, value []byte) error
	Delete(ctx context.Context, column domain.Column, key domain.ReferenceBytesKey) error
	Exists(ctx context.Context, column domain.Column, key domain.ReferenceBytesKey) (bool, error)

	// PrefixScan returns every key in column starting with prefix, keyed by
	// the key's raw bytes (not including column).
	PrefixScan(ctx context.Context, column domain.Column, prefix []byte) (map[string][]byte, error)

	// SeekForward returns the first key in column at or after startKey in
	// byte-lexical order, or found == false if none exists. Used by the
	// historical overlay's forward seek over complement-encoded suffixes.
	SeekForward(ctx context.Context, column domain.Column, startKey []byte) (key []byte, value []byte, found bool, err error)

	// RunInTransaction executes fn against a fresh Transaction, committing
	// on success and discarding on error or panic.
	RunInTransaction(ctx context.Context, policy ConflictPolicy, fn func(tx Transaction) error) error

	Close() error
}

// Transaction is a Backend handle scoped to a single atomic unit of work.
// A nested transaction (one block's per-transaction sub-transaction inside
// the block's outer transaction) is itself a Transaction, and its
// ConflictPolicy governs what happens when it is merged into its parent.
type Transaction interface {
	Get(column domain.Column, key domain.ReferenceBytesKey) ([]byte, error)
	Set(column domain.Column, key domain.ReferenceBytesKey, value []byte) error
	Delete(column domain.Column, key domain.ReferenceBytesKey) error
	Exists(column domain.Column, key domain.ReferenceBytesKey) (bool, error)
	PrefixScan(column domain.Column, prefix []byte) (map[string][]byte, error)
	SeekForward(column domain.Column, startKey []byte) (key []byte, value []byte, found bool, err error)

	// ChangeSet returns every write recorded against this transaction so
	// far, in application order — consumed by the historical overlay to
	// build the corresponding historical entries and inverse set.
	ChangeSet() domain.ChangeSet

	// Begin opens a nested sub-transaction under the given conflict policy.
	// Its writes are buffered until it commits, at which point they are
	// merged into the parent according to policy.
	Begin(policy ConflictPolicy) Transaction

	// Commit applies this transaction's writes into its parent (or, for a
	// root transaction, into the backend). Committing a sub-transaction
	// under ConflictFail returns ErrConflictingChanges if any key it wrote
	// was already written by an earlier sibling sub-transaction merged into
	// the same parent.
	Commit() error

	// Discard abandons this transaction's writes.
	Discard()
}
