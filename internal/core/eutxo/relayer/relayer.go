// Package relayer provides an in-process eutxo.RelayerPort implementation
// that serves forced transactions from a caller-fed queue, standing in for
// a real DA-layer client in this tree (no networked relayer is in scope
// here).
package relayer

import (
	"context"
	"sync"

	eutxoiface "github.com/weisyn/v1/pkg/interfaces/eutxo"
)

// Service implements eutxo.RelayerPort against an in-memory height->messages
// map a caller (typically a DA ingestion adapter, or a test) populates
// ahead of time.
type Service struct {
	mu       sync.RWMutex
	messages map[uint64][]eutxoiface.ForcedTransaction
	latest   uint64
}

var _ eutxoiface.RelayerPort = (*Service)(nil)

func NewService() *Service {
	return &Service{messages: make(map[uint64][]eutxoiface.ForcedTransaction)}
}

// Feed registers the forced transactions observed at daHeight, advancing
// LatestHeight if daHeight is the highest seen so far.
func (s *Service) Feed(daHeight uint64, txs []eutxoiface.ForcedTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[daHeight] = txs
	if daHeight > s.latest {
		s.latest = daHeight
	}
}

func (s *Service) MessagesForHeight(_ context.Context, daHeight uint64) ([]eutxoiface.ForcedTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.messages[daHeight], nil
}

func (s *Service) LatestHeight(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, nil
}
