// Package historical layers a point-in-time view and single-step rollback
// on top of a kvstore.Backend: every write made while executing block H is
// also recorded, keyed by key⧺complement(H), into that column's historical
// duplicate column, plus the inverse of the whole block's change set under
// height H+1 so rollback_block_to(H) can undo it.
package historical

import (
	"context"
	"fmt"

	"github.com/weisyn/v1/internal/core/eutxo/domain"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/kvstore"
)

// Store wraps a kvstore.Backend with historical-view and rollback
// operations.
type Store struct {
	backend kvstore.Backend
}

func New(backend kvstore.Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) Backend() kvstore.Backend { return s.backend }

// RecordBlock commits a block's forward change set to the live columns and
// mirrors every write into its column's historical duplicate column under
// height h, then records the inverse set under h+1 (consumed by
// RollbackBlockTo(h) later).
//
// before must resolve a key's value as of immediately prior to this block —
// typically a closure reading through the same transaction RecordBlock is
// called within, before the block's own writes are applied.
func (s *Store) RecordBlock(ctx context.Context, h domain.Height, forward domain.ChangeSet, before func(column domain.Column, key domain.ReferenceBytesKey) ([]byte, bool)) error {
	inverse := forward.Inverse(before)

	return s.backend.RunInTransaction(ctx, kvstore.ConflictOverwrite, func(tx kvstore.Transaction) error {
		for _, op := range forward.Operations {
			if op.Kind == domain.OperationRemove {
				if err := tx.Delete(op.Column, op.Key); err != nil {
					return err
				}
			} else if err := tx.Set(op.Column, op.Key, op.Value); err != nil {
				return err
			}

			histKey := domain.ReferenceBytesKey(domain.BuildHistoricalKey(op.Key, h))
			if err := tx.Set(domain.HistoricalDuplicateColumn(op.Column), histKey, op.Encode()); err != nil {
				return err
			}
		}

		// The inverse set for h is stored against h+1: rollback_block_to(h)
		// reads it back to undo the transition from h to h+1.
		nextHeight := h + 1
		for _, op := range inverse.Operations {
			histKey := domain.ReferenceBytesKey(domain.BuildHistoricalKey(op.Key, nextHeight))
			if err := tx.Set(domain.HistoricalDuplicateColumn(op.Column), histKey, op.Encode()); err != nil {
				return err
			}
		}
		return nil
	})
}

// ViewAt returns the value a key held at or before height h — None if no
// historical entry qualifies, even if the live column currently holds a
// value (the live column always reflects the newest height, which may be
// ahead of h).
func (s *Store) ViewAt(ctx context.Context, column domain.Column, key domain.ReferenceBytesKey, h domain.Height) ([]byte, bool, error) {
	histColumn := domain.HistoricalDuplicateColumn(column)
	seekKey := domain.BuildHistoricalKey(key, h)

	storedKey, value, found, err := s.backend.SeekForward(ctx, histColumn, seekKey)
	if err != nil {
		return nil, false, err
	}
	if !found || !domain.HasPrefix(storedKey, key) {
		return nil, false, nil
	}

	op := domain.DecodeWriteOperation(column, key, value)
	if op.Kind == domain.OperationRemove {
		return nil, false, nil
	}
	return op.Value, true, nil
}

// RollbackBlockTo undoes the transition from h to h+1: it replays the
// inverse change set recorded under h+1 and removes the historical entries
// that belonged to h+1. Only the single most recent height can be rolled
// back; rolling back further requires repeated calls.
func (s *Store) RollbackBlockTo(ctx context.Context, h domain.Height, currentHeight domain.Height) error {
	if currentHeight != h+1 {
		return fmt.Errorf("%w: current=%d target=%d", domain.ErrRollbackNotAdjacent, currentHeight, h)
	}

	return s.backend.RunInTransaction(ctx, kvstore.ConflictOverwrite, func(tx kvstore.Transaction) error {
		for _, column := range []domain.Column{
			domain.ColumnCoins,
			domain.ColumnMessages,
			domain.ColumnContractsLatestUtxo,
			domain.ColumnProcessedTxs,
			domain.ColumnMetadata,
		} {
			histColumn := domain.HistoricalDuplicateColumn(column)
			suffix := currentHeight.ComplementBytes()

			entries, err := tx.PrefixScan(histColumn, nil)
			if err != nil {
				return err
			}
			for storedKey, blob := range entries {
				sk := []byte(storedKey)
				if len(sk) < 8 {
					continue
				}
				if string(sk[len(sk)-8:]) != string(suffix) {
					continue
				}
				origKey, _, ok := domain.SplitHistoricalKey(sk)
				if !ok {
					continue
				}

				op := domain.DecodeWriteOperation(column, origKey, blob)
				if op.Kind == domain.OperationRemove {
					if err := tx.Delete(column, origKey); err != nil {
						return err
					}
				} else if err := tx.Set(column, origKey, op.Value); err != nil {
					return err
				}

				if err := tx.Delete(histColumn, domain.ReferenceBytesKey(sk)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
