package executor

import (
	"context"
	"time"

	"github.com/weisyn/v1/internal/core/eutxo/domain"
	"github.com/weisyn/v1/internal/core/eutxo/vm"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/historical"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/kvstore"
	log "github.com/weisyn/v1/pkg/interfaces/infrastructure/log"
	eutxoiface "github.com/weisyn/v1/pkg/interfaces/eutxo"
)

// Executor is the deterministic block executor: given the current UTXO
// state, a DA relayer and a transaction pool, it either produces a new
// block (ModeProduce) or reproduces the outcome of a given one
// (ModeValidate).
type Executor struct {
	backend    kvstore.Backend
	historical *historical.Store
	vmEngine   vm.Engine
	relayer    eutxoiface.RelayerPort
	source     eutxoiface.TransactionSourcePort
	waiter     eutxoiface.NewTxWaiterPort
	preconfirm eutxoiface.PreconfirmationSenderPort
	config     Config
	logger     log.Logger
}

func New(
	backend kvstore.Backend,
	hist *historical.Store,
	vmEngine vm.Engine,
	relayer eutxoiface.RelayerPort,
	source eutxoiface.TransactionSourcePort,
	waiter eutxoiface.NewTxWaiterPort,
	preconfirm eutxoiface.PreconfirmationSenderPort,
	config Config,
	logger log.Logger,
) *Executor {
	return &Executor{
		backend:    backend,
		historical: hist,
		vmEngine:   vmEngine,
		relayer:    relayer,
		source:     source,
		waiter:     waiter,
		preconfirm: preconfirm,
		config:     config,
		logger:     logger,
	}
}

// Produce builds a new block at height, pulling forced transactions from
// the relayer for the given DA height range and filling the remainder of
// the block's budget from the transaction pool.
func (e *Executor) Produce(ctx context.Context, height domain.Height, daHeightFrom, daHeightTo uint64, coinbaseRecipient []byte) (Result, error) {
	return e.run(ctx, ModeProduce, Block{
		Height:            height,
		DaHeightFrom:      daHeightFrom,
		DaHeightTo:        daHeightTo,
		CoinbaseRecipient: coinbaseRecipient,
	})
}

// Validate reprocesses a given block's transaction list and confirms it
// reaches the same event inbox root and the same encoded transaction list,
// mint included, that a production run would have computed.
func (e *Executor) Validate(ctx context.Context, block Block) (Result, error) {
	return e.run(ctx, ModeValidate, block)
}

func (e *Executor) run(ctx context.Context, mode Mode, block Block) (Result, error) {
	start := time.Now()
	defer func() { blockExecDuration.Observe(time.Since(start).Seconds()) }()

	var result Result
	var commitErr error

	runErr := e.backend.RunInTransaction(ctx, kvstore.ConflictOverwrite, func(root kvstore.Transaction) error {
		state := &blockState{
			mode:   mode,
			config: e.config,
			height: block.Height,
		}

		eventInboxRoot, err := e.runPhase1(ctx, root, state, block)
		if err != nil {
			return err
		}
		if mode == ModeValidate && eventInboxRoot != block.EventInboxRoot {
			return domain.ErrRelayerGivesIncorrectMessages
		}

		if err := e.runPhase2(ctx, root, state, block, mode == ModeProduce); err != nil {
			return err
		}

		coinbaseRecipient := block.CoinbaseRecipient
		if mode == ModeValidate {
			if len(block.Transactions) == 0 {
				return domain.ErrMintMissing
			}
			lastTx, err := domain.DecodeTransaction(block.Transactions[len(block.Transactions)-1])
			if err != nil {
				return domain.ErrCodecError
			}
			if lastTx.Kind != domain.TxKindMint || len(lastTx.Outputs) == 0 {
				return domain.ErrMintMissing
			}
			coinbaseRecipient = lastTx.Outputs[0].Owner
		}

		mintTx, err := e.runPhase3(root, state, coinbaseRecipient)
		if err != nil {
			return err
		}

		computed := state.encodedTransactions(mintTx)
		if mode == ModeValidate {
			if len(computed) != len(block.Transactions) {
				return domain.ErrBlockMismatch
			}
			for i := range computed {
				if string(computed[i]) != string(block.Transactions[i]) {
					return domain.ErrBlockMismatch
				}
			}
		} else {
			block.Transactions = computed
		}
		block.CoinbaseRecipient = coinbaseRecipient

		before := func(column domain.Column, key domain.ReferenceBytesKey) ([]byte, bool) {
			v, err := e.backend.Get(ctx, column, key)
			if err != nil || v == nil {
				return nil, false
			}
			return v, true
		}
		changeSet := root.ChangeSet()
		if e.historical != nil {
			commitErr = e.historical.RecordBlock(ctx, block.Height, changeSet, before)
		}

		result = Result{
			Block:          block,
			Receipts:       state.receipts,
			TotalFee:       state.totalFee,
			EventInboxRoot: eventInboxRoot,
			Events:         state.events,
		}
		return commitErr
	})

	if runErr != nil {
		return Result{}, runErr
	}
	if mode == ModeProduce {
		blocksProducedTotal.Inc()
	} else {
		blocksValidatedTotal.Inc()
	}
	return result, nil
}

// blockState accumulates the per-block bookkeeping Phase 1/2/3 share:
// remaining budgets, the transactions actually included (in order), and
// their receipts.
type blockState struct {
	mode   Mode
	config Config
	height domain.Height

	remainingGas      uint64
	remainingSize     uint32
	remainingTxCount  uint32

	included []domain.Transaction
	receipts []ExecutionReceipt
	events   []ForcedTransactionFailed
	totalFee uint64
}

func (s *blockState) encodedTransactions(mint domain.Transaction) [][]byte {
	out := make([][]byte, 0, len(s.included)+1)
	for _, tx := range s.included {
		out = append(out, tx.Encode())
	}
	out = append(out, mint.Encode())
	return out
}

