// Package executor implements the deterministic block executor: Phase 1
// (L1/DA forced-message ingestion), Phase 2 (L2 transaction-pool ingestion
// under a resource budget), Phase 3 (mint construction), and the
// execute_single_transaction dispatch both production and validation modes
// share.
package executor

import (
	"github.com/weisyn/v1/internal/core/eutxo/domain"
)

// Mode selects whether the executor is producing a new block (it chooses
// which L2 transactions to include) or validating a block someone else
// produced (it must reach byte-identical results from the given
// transaction list).
type Mode int

const (
	ModeProduce Mode = iota
	ModeValidate
)

// Block is a fully decoded block: its height, the DA height range its
// forced messages were drawn from, and its ordered transaction list
// (chargeable transactions followed by exactly one mint transaction).
type Block struct {
	Height            domain.Height
	DaHeightFrom      uint64
	DaHeightTo        uint64
	EventInboxRoot    [32]byte
	Transactions      [][]byte
	// CoinbaseRecipient is the contract the block's accumulated fees mint
	// to. In ModeProduce it is taken as given; in ModeValidate it is
	// reconstructed from the given block's own mint transaction (§4.6 step
	// 1) and this field is ignored on input.
	CoinbaseRecipient []byte
}

// ForcedTransactionFailed records a forced (L1-sourced) transaction that
// Phase 1 rejected — either forced-tx validation failed it outright, or its
// dispatch itself errored. The block is still produced without it.
type ForcedTransactionFailed struct {
	TxID     []byte
	DaHeight uint64
	Failure  string
}

// ExecutionReceipt is the per-transaction record execute_single_transaction
// produces: the fee burned, whether a Chargeable transaction's script
// reverted, and the TxPointer its outputs were persisted under.
type ExecutionReceipt struct {
	TxPointer domain.TxPointer
	Fee       uint64
	Reverted  bool
	GasUsed   uint64
}

// Result is the outcome of executing a whole block: either mode returns it,
// production having chosen the transaction list itself, validation having
// confirmed the given one reproduces it byte-for-byte.
type Result struct {
	Block          Block
	Receipts       []ExecutionReceipt
	TotalFee       uint64
	EventInboxRoot [32]byte
	Events         []ForcedTransactionFailed
}
