package executor

import (
	"context"
	"fmt"

	"github.com/weisyn/v1/internal/core/eutxo/domain"
	"github.com/weisyn/v1/internal/core/infrastructure/crypto/merkle"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/kvstore"
	eutxoiface "github.com/weisyn/v1/pkg/interfaces/eutxo"
)

// runPhase1 ingests the L1 events posted between the block's DA height
// range: a Message event is inserted into Messages keyed by nonce, a
// Transaction event is forced-tx-validated and, on success, dispatched at
// gas_price zero. Every event's hash is collected in delivery order and
// folded into event_inbox_root via the binary Merkle root over them. A
// forced transaction that fails validation or dispatch is recorded as a
// ForcedTransactionFailed event rather than aborting the block.
func (e *Executor) runPhase1(ctx context.Context, root kvstore.Transaction, state *blockState, block Block) ([32]byte, error) {
	latest, err := e.relayer.LatestHeight(ctx)
	if err != nil {
		return [32]byte{}, err
	}
	if block.DaHeightTo > latest {
		return [32]byte{}, domain.ErrDaHeightExceededLimit
	}

	var eventHashes [][]byte
	for h := block.DaHeightFrom; h <= block.DaHeightTo; h++ {
		msgs, err := e.relayer.MessagesForHeight(ctx, h)
		if err != nil {
			return [32]byte{}, err
		}
		for _, msg := range msgs {
			eventHash := append([]byte(nil), msg.EventHash[:]...)
			eventHashes = append(eventHashes, eventHash)

			if msg.Kind == eutxoiface.ForcedEventMessage {
				if err := e.ingestMessage(root, msg); err != nil {
					return [32]byte{}, err
				}
				continue
			}

			tx, failure := checkForcedTransaction(msg)
			if failure != "" {
				state.events = append(state.events, ForcedTransactionFailed{DaHeight: h, Failure: failure})
				continue
			}

			sub := root.Begin(kvstore.ConflictOverwrite)
			pointer := domain.TxPointer{BlockHeight: state.height, TxIndex: uint32(len(state.included))}
			receipt, execErr := e.dispatchTransaction(ctx, sub, tx, pointer)
			if execErr != nil {
				sub.Discard()
				state.events = append(state.events, ForcedTransactionFailed{
					TxID:     tx.ID(),
					DaHeight: h,
					Failure:  execErr.Error(),
				})
				continue
			}
			if err := sub.Commit(); err != nil {
				return [32]byte{}, err
			}

			state.included = append(state.included, tx)
			state.receipts = append(state.receipts, receipt)
			state.totalFee += receipt.Fee
		}
	}

	if len(eventHashes) == 0 {
		return [32]byte{}, nil
	}
	rootBytes, err := merkle.ComputeRoot(eventHashes)
	if err != nil {
		return [32]byte{}, err
	}
	var root32 [32]byte
	copy(root32[:], rootBytes)
	return root32, nil
}

// ingestMessage decodes a Message event and inserts it into Messages keyed
// by nonce, the key a MessageInput consuming it must reference via UtxoID.
func (e *Executor) ingestMessage(txn kvstore.Transaction, msg eutxoiface.ForcedTransaction) error {
	m, err := domain.DecodeMessage(msg.Bytes)
	if err != nil {
		return domain.ErrCodecError
	}
	key := domain.ReferenceBytesKey(domain.NonceKey(m.Nonce))
	return txn.Set(domain.ColumnMessages, key, m.Encode())
}

// checkForcedTransaction is forced-tx validation: it rejects the Mint
// variant (never L1-sourced), bytes that fail to decode, and a claimed
// max-gas lower than the parsed transaction's own declared max_gas. failure
// is empty on success.
func checkForcedTransaction(msg eutxoiface.ForcedTransaction) (tx domain.Transaction, failure string) {
	tx, err := domain.DecodeTransaction(msg.Bytes)
	if err != nil {
		return domain.Transaction{}, "CodecError"
	}
	if tx.Kind == domain.TxKindMint {
		return domain.Transaction{}, "MintIsNotAllowedAsForcedTransaction"
	}
	if msg.ClaimedMaxGas < tx.MaxGas {
		return domain.Transaction{}, fmt.Sprintf("InsufficientMaxGas{claimed=%d,actual=%d}", msg.ClaimedMaxGas, tx.MaxGas)
	}
	return tx, ""
}

// runPhase2 fills the rest of the block from the transaction pool
// (production) or replays the given block's remaining transactions
// (validation), stopping once the block's gas/size/tx-count budget is
// exhausted.
func (e *Executor) runPhase2(ctx context.Context, root kvstore.Transaction, state *blockState, block Block, pulling bool) error {
	state.remainingGas = state.config.MaxBlockGas
	state.remainingSize = state.config.MaxBlockSize
	state.remainingTxCount = state.config.MaxTxCount

	if pulling {
		return e.runPhase2Produce(ctx, root, state)
	}
	return e.runPhase2Validate(root, state, block)
}

func (e *Executor) runPhase2Produce(ctx context.Context, root kvstore.Transaction, state *blockState) error {
	for state.remainingTxCount > 0 {
		candidate, ok, err := e.source.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			if e.waiter == nil {
				break
			}
			// Cooperatively yield rather than busy-poll an empty pool; a
			// context cancellation (block assembly deadline) ends Phase 2.
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if err := e.waiter.WaitForTransaction(ctx); err != nil {
				return nil
			}
			continue
		}

		if candidate.Gas > state.remainingGas || uint32(candidate.Size) > state.remainingSize {
			txSkippedTotal.WithLabelValues("budget_exceeded").Inc()
			continue
		}

		tx, err := domain.DecodeTransaction(candidate.Bytes)
		if err != nil {
			txSkippedTotal.WithLabelValues("decode_error").Inc()
			continue
		}

		sub := root.Begin(kvstore.ConflictOverwrite)
		pointer := domain.TxPointer{BlockHeight: state.height, TxIndex: uint32(len(state.included))}
		receipt, execErr := e.dispatchTransaction(ctx, sub, tx, pointer)
		if execErr != nil {
			sub.Discard()
			txSkippedTotal.WithLabelValues("execution_error").Inc()
			continue
		}
		if err := sub.Commit(); err != nil {
			return err
		}

		state.remainingGas -= candidate.Gas
		state.remainingSize -= candidate.Size
		state.remainingTxCount--
		state.included = append(state.included, tx)
		state.receipts = append(state.receipts, receipt)
		state.totalFee += receipt.Fee

		if e.preconfirm != nil {
			e.preconfirm.TrySend(ctx, tx.ID(), pointer)
		}
	}
	return nil
}

// runPhase2Validate replays the given block's non-mint transactions (those
// after the forced transactions already consumed in Phase 1) in order,
// enforcing the block's transaction-count budget and a gas budget charged
// by each receipt's GasUsed; the size budget is not checked here.
func (e *Executor) runPhase2Validate(root kvstore.Transaction, state *blockState, block Block) error {
	if len(block.Transactions) == 0 {
		return domain.ErrMintMissing
	}
	body := block.Transactions[:len(block.Transactions)-1]
	forcedCount := len(state.included)
	if forcedCount > len(body) {
		return domain.ErrBlockMismatch
	}
	remaining := body[forcedCount:]

	for _, raw := range remaining {
		tx, err := domain.DecodeTransaction(raw)
		if err != nil {
			return domain.ErrCodecError
		}
		if tx.Kind == domain.TxKindMint {
			return domain.ErrMintIsNotLastTx
		}

		if state.remainingTxCount == 0 {
			return domain.ErrTxCountLimitExceeded
		}

		sub := root.Begin(kvstore.ConflictOverwrite)
		pointer := domain.TxPointer{BlockHeight: state.height, TxIndex: uint32(len(state.included))}
		receipt, execErr := e.dispatchTransaction(context.Background(), sub, tx, pointer)
		if execErr != nil {
			sub.Discard()
			return execErr
		}
		if err := sub.Commit(); err != nil {
			return err
		}

		if receipt.GasUsed > state.remainingGas {
			return domain.ErrBlockGasLimitExceeded
		}
		state.remainingGas -= receipt.GasUsed
		state.remainingTxCount--
		state.included = append(state.included, tx)
		state.receipts = append(state.receipts, receipt)
		state.totalFee += receipt.Fee
	}
	return nil
}

// runPhase3 builds the block's mint transaction: a single Coin output
// paying state.totalFee to coinbaseRecipient, positioned with
// tx_pointer=(block_height, tx_count) as the block's final transaction. If
// coinbaseRecipient is the zero contract, the mint amount MUST be zero —
// accumulated fees with no recipient is a CoinbaseAmountMismatch, not a
// silent burn.
func (e *Executor) runPhase3(root kvstore.Transaction, state *blockState, coinbaseRecipient []byte) (domain.Transaction, error) {
	if domain.IsZeroContract(coinbaseRecipient) && state.totalFee != 0 {
		return domain.Transaction{}, domain.ErrCoinbaseAmountMismatch
	}

	mint := domain.Transaction{
		Kind: domain.TxKindMint,
		Outputs: []domain.Output{{
			Kind:   domain.OutputKindCoin,
			Owner:  coinbaseRecipient,
			Amount: state.totalFee,
		}},
	}

	pointer := domain.TxPointer{BlockHeight: state.height, TxIndex: uint32(len(state.included))}
	sub := root.Begin(kvstore.ConflictOverwrite)
	receipt, err := e.dispatchTransaction(context.Background(), sub, mint, pointer)
	if err != nil {
		sub.Discard()
		return domain.Transaction{}, err
	}
	if err := sub.Commit(); err != nil {
		return domain.Transaction{}, err
	}
	state.receipts = append(state.receipts, receipt)

	return mint, nil
}
