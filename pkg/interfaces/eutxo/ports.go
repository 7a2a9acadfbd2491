// Package eutxo defines the ports the block executor is driven through:
// the DA relayer it ingests forced transactions from, the transaction pool
// it pulls L2 transactions from, the cooperative-yield signal a running
// Phase 2 budget loop waits on, and the preconfirmation fan-out sink.
package eutxo

import (
	"context"

	"github.com/weisyn/v1/internal/core/eutxo/domain"
)

// ForcedEventKind distinguishes the two variants of L1 event a relayer can
// surface for a DA height: a bridge Message to ingest, or a forced
// Transaction to validate and execute at gas_price zero.
type ForcedEventKind uint8

const (
	ForcedEventTransaction ForcedEventKind = iota
	ForcedEventMessage
)

// ForcedTransaction is one L1 event a relayer surfaces for a DA height,
// alongside the raw bytes the event_inbox_root Merkle accumulator hashes.
// Bytes holds an encoded domain.Transaction when Kind is
// ForcedEventTransaction, or an encoded domain.Message when Kind is
// ForcedEventMessage. ClaimedMaxGas is only meaningful for the Transaction
// variant: it is the max-gas the relayer claims for the forced transaction,
// checked against the transaction's own declared max_gas during forced-tx
// validation.
type ForcedTransaction struct {
	Kind          ForcedEventKind
	Bytes         []byte
	EventHash     [32]byte
	DaHeight      uint64
	ClaimedMaxGas uint64
}

// RelayerPort is the Phase 1 port: for each DA height in range, it returns
// the forced transactions that height's relayed event inbox contains.
type RelayerPort interface {
	// MessagesForHeight returns the forced transactions posted at daHeight.
	// An empty, non-error result means the height produced no messages.
	MessagesForHeight(ctx context.Context, daHeight uint64) ([]ForcedTransaction, error)

	// LatestHeight is the highest DA height the relayer has observed so
	// far — Phase 1 must not advance past it
	// (ErrDaHeightExceededLimit otherwise).
	LatestHeight(ctx context.Context) (uint64, error)
}

// Candidate is one transaction pulled from the pool for Phase 2, along with
// its declared resource budget.
type Candidate struct {
	Bytes    []byte
	Gas      uint64
	Size     uint32
}

// TransactionSourcePort is the Phase 2 port: it supplies L2 candidate
// transactions in priority order until the block's budgets are exhausted
// or the source is empty.
type TransactionSourcePort interface {
	// Next returns the next candidate transaction, or ok == false if the
	// source currently has none available.
	Next(ctx context.Context) (candidate Candidate, ok bool, err error)
}

// NewTxWaiterPort is the cooperative-yield signal Phase 2's budget loop
// waits on between pool polls, so it never busy-spins while the pool is
// temporarily empty but the block still has budget remaining.
type NewTxWaiterPort interface {
	// WaitForTransaction blocks until a new transaction is likely available
	// or ctx is done.
	WaitForTransaction(ctx context.Context) error
}

// PreconfirmationSenderPort is the fan-out sink for preconfirmations
// produced as Phase 2 executes each transaction.
type PreconfirmationSenderPort interface {
	// TrySend attempts a non-blocking preconfirmation send; a full sink
	// drops it silently (the transaction is still included in the block).
	TrySend(ctx context.Context, txID []byte, pointer domain.TxPointer) bool

	// Send blocks until the preconfirmation has been accepted by the sink
	// or ctx is done.
	Send(ctx context.Context, txID []byte, pointer domain.TxPointer) error
}
