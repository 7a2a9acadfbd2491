package executor

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/weisyn/v1/internal/core/eutxo/domain"
	eutxoiface "github.com/weisyn/v1/pkg/interfaces/eutxo"
)

// PreconfirmationSink fans preconfirmations out to a caller-supplied
// channel, deduplicating by transaction id through a short-lived bigcache
// so a transaction that is preconfirmed more than once within its cache
// window (a pool resubmission racing the original) only notifies once.
type PreconfirmationSink struct {
	dedup *bigcache.BigCache
	out   chan Preconfirmation
}

// Preconfirmation is one accepted-into-block notification.
type Preconfirmation struct {
	TxID    []byte
	Pointer domain.TxPointer
}

var _ eutxoiface.PreconfirmationSenderPort = (*PreconfirmationSink)(nil)

// NewPreconfirmationSink creates a sink with the given dedup window and
// output channel capacity.
func NewPreconfirmationSink(ctx context.Context, dedupWindow time.Duration, capacity int) (*PreconfirmationSink, error) {
	cache, err := bigcache.New(ctx, bigcache.DefaultConfig(dedupWindow))
	if err != nil {
		return nil, err
	}
	return &PreconfirmationSink{dedup: cache, out: make(chan Preconfirmation, capacity)}, nil
}

func (s *PreconfirmationSink) Notifications() <-chan Preconfirmation { return s.out }

func (s *PreconfirmationSink) TrySend(_ context.Context, txID []byte, pointer domain.TxPointer) bool {
	if s.alreadySent(txID) {
		return true
	}
	select {
	case s.out <- Preconfirmation{TxID: txID, Pointer: pointer}:
		s.markSent(txID)
		return true
	default:
		return false
	}
}

func (s *PreconfirmationSink) Send(ctx context.Context, txID []byte, pointer domain.TxPointer) error {
	if s.alreadySent(txID) {
		return nil
	}
	select {
	case s.out <- Preconfirmation{TxID: txID, Pointer: pointer}:
		s.markSent(txID)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *PreconfirmationSink) alreadySent(txID []byte) bool {
	_, err := s.dedup.Get(dedupKey(txID))
	return err == nil
}

func (s *PreconfirmationSink) markSent(txID []byte) {
	_ = s.dedup.Set(dedupKey(txID), []byte{1})
}

func dedupKey(txID []byte) string {
	return hex.EncodeToString(txID)
}

func (s *PreconfirmationSink) Close() error {
	close(s.out)
	return s.dedup.Close()
}
