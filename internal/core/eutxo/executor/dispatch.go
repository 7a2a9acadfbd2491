package executor

import (
	"context"
	"fmt"

	"github.com/weisyn/v1/internal/core/eutxo/domain"
	"github.com/weisyn/v1/internal/core/eutxo/vm"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/kvstore"
)

// dispatchTransaction runs the common prelude every transaction shares
// (duplicate-id check), then branches into the Mint or Chargeable
// dispatch; input existence is checked by spendInputs. txn is the per-transaction sub-transaction the
// caller opened with ConflictOverwrite so this transaction's writes lay
// over any earlier transaction in the same block, and Discard is safe on
// any early return.
func (e *Executor) dispatchTransaction(ctx context.Context, txn kvstore.Transaction, tx domain.Transaction, pointer domain.TxPointer) (ExecutionReceipt, error) {
	txID := tx.ID()

	if exists, err := txn.Exists(domain.ColumnProcessedTxs, domain.ReferenceBytesKey(txID)); err != nil {
		return ExecutionReceipt{}, err
	} else if exists {
		return ExecutionReceipt{}, domain.ErrTransactionIDCollision
	}

	var receipt ExecutionReceipt
	var err error
	if tx.Kind == domain.TxKindMint {
		receipt, err = e.dispatchMint(txn, tx, pointer)
	} else {
		receipt, err = e.dispatchChargeable(ctx, txn, tx, pointer)
	}
	if err != nil {
		return ExecutionReceipt{}, err
	}

	if err := txn.Set(domain.ColumnProcessedTxs, domain.ReferenceBytesKey(txID), domain.ProcessedTransaction{TxPointer: pointer}.Encode()); err != nil {
		return ExecutionReceipt{}, err
	}
	return receipt, nil
}

// dispatchMint is the Phase 3 mint dispatch: it carries no inputs and its
// outputs mint the block's total accumulated fee, so it has no Spend phase
// and never reverts.
func (e *Executor) dispatchMint(txn kvstore.Transaction, tx domain.Transaction, pointer domain.TxPointer) (ExecutionReceipt, error) {
	if err := e.persistOutputs(txn, tx.Outputs, pointer); err != nil {
		return ExecutionReceipt{}, err
	}
	return ExecutionReceipt{TxPointer: pointer}, nil
}

// dispatchChargeable runs a Chargeable transaction's Spend phase, invokes
// its script if one is attached, then applies the Persist phase according
// to whether the script reverted: a revert discards Contract-side outputs
// but still spends non-retryable inputs and persists plain value outputs,
// matching the Spend/Persist rules.
func (e *Executor) dispatchChargeable(ctx context.Context, txn kvstore.Transaction, tx domain.Transaction, pointer domain.TxPointer) (ExecutionReceipt, error) {
	spentValue, err := e.spendInputs(txn, tx, !e.config.ForbidFakeCoins && !tx.ForbidFakeCoins)
	if err != nil {
		return ExecutionReceipt{}, err
	}

	var reverted bool
	var gasUsed uint64
	if len(tx.Script) > 0 {
		result, err := e.vmEngine.Call(ctx, vm.CallInput{
			Bytecode:   tx.Script,
			Entrypoint: entrypointOrDefault(tx.Entrypoint),
			Params:     tx.Params,
			GasLimit:   tx.MaxGas,
		})
		if err != nil {
			return ExecutionReceipt{}, fmt.Errorf("eutxo: script invocation: %w", err)
		}
		reverted = result.Reverted
		gasUsed = result.GasUsed
		if gasUsed > tx.MaxGas {
			return ExecutionReceipt{}, domain.ErrInsufficientMaxGas
		}
	}

	if reverted {
		txRevertedTotal.Inc()
		// spendInputs left retryable message inputs in Messages and a
		// reverted transaction does not spend them. Plain value outputs are
		// persisted; Contract-side outputs are not.
		if err := e.persistOutputs(txn, filterNonContractOutputs(tx.Outputs), pointer); err != nil {
			return ExecutionReceipt{}, err
		}
	} else {
		// The script did not revert, so the retryable message inputs that
		// spendInputs left in Messages are spent now.
		for _, in := range tx.MessageInputs {
			key := domain.ReferenceBytesKey(in.UtxoID)
			exists, err := txn.Exists(domain.ColumnMessages, key)
			if err != nil {
				return ExecutionReceipt{}, err
			}
			if exists {
				if err := txn.Delete(domain.ColumnMessages, key); err != nil {
					return ExecutionReceipt{}, err
				}
			}
		}
		if err := e.persistOutputs(txn, tx.Outputs, pointer); err != nil {
			return ExecutionReceipt{}, err
		}
	}

	fee := computeFee(spentValue, tx.Outputs)
	return ExecutionReceipt{TxPointer: pointer, Fee: fee, Reverted: reverted, GasUsed: gasUsed}, nil
}

func entrypointOrDefault(entrypoint string) string {
	if entrypoint == "" {
		return "execute"
	}
	return entrypoint
}

// spendInputs removes every Coin input from the coin column and every
// non-retryable Message input from the message column, returning the total
// coin value consumed. A Coin input missing from the store is synthesized
// as a zero-value default when allowFakeCoins is true; otherwise it is
// ErrCoinDoesNotExist.
func (e *Executor) spendInputs(txn kvstore.Transaction, tx domain.Transaction, allowFakeCoins bool) (uint64, error) {
	var total uint64

	for _, in := range tx.CoinInputs {
		key := domain.ReferenceBytesKey(in.UtxoID)
		blob, err := txn.Get(domain.ColumnCoins, key)
		if err != nil {
			return 0, err
		}
		if blob == nil {
			if !allowFakeCoins {
				return 0, domain.ErrCoinDoesNotExist
			}
			continue // a synthesized default coin carries zero value
		}
		coin, err := domain.DecodeCoin(blob)
		if err != nil {
			return 0, domain.ErrCodecError
		}
		total += coin.Amount
		if err := txn.Delete(domain.ColumnCoins, key); err != nil {
			return 0, err
		}
	}

	for _, in := range tx.MessageInputs {
		key := domain.ReferenceBytesKey(in.UtxoID)
		blob, err := txn.Get(domain.ColumnMessages, key)
		if err != nil {
			return 0, err
		}
		if blob == nil {
			return 0, domain.ErrMessageDoesNotExist
		}
		msg, err := domain.DecodeMessage(blob)
		if err != nil {
			return 0, domain.ErrCodecError
		}
		if msg.Retryable {
			// A retryable message survives a revert: leave it untouched
			// here; dispatchChargeable removes it once the script has run
			// without reverting.
			continue
		}
		if err := txn.Delete(domain.ColumnMessages, key); err != nil {
			return 0, err
		}
	}

	return total, nil
}

// persistOutputs writes a transaction's outputs: Coin/Change/Variable
// outputs become new Coin UTXOs (colliding with an existing UTXO id is
// ErrOutputAlreadyExists), Contract/ContractCreated outputs update the
// contract's latest-UTXO pointer.
func (e *Executor) persistOutputs(txn kvstore.Transaction, outputs []domain.Output, pointer domain.TxPointer) error {
	for i, out := range outputs {
		idx := uint32(i)
		utxoID := domain.UtxoID(pointer, idx)
		key := domain.ReferenceBytesKey(utxoID)

		switch out.Kind {
		case domain.OutputKindCoin, domain.OutputKindChange, domain.OutputKindVariable:
			if out.Amount == 0 {
				continue
			}
			if exists, err := txn.Exists(domain.ColumnCoins, key); err != nil {
				return err
			} else if exists {
				return domain.ErrOutputAlreadyExists
			}
			coin := domain.Coin{Owner: out.Owner, AssetID: out.AssetID, Amount: out.Amount, TxPointer: pointer}
			if err := txn.Set(domain.ColumnCoins, key, coin.Encode()); err != nil {
				return err
			}
		case domain.OutputKindContract, domain.OutputKindContractCreated:
			latest := domain.ContractLatestUtxo{ContractID: out.ContractID, StateRoot: out.StateRoot, TxPointer: pointer}
			if err := txn.Set(domain.ColumnContractsLatestUtxo, domain.ReferenceBytesKey(out.ContractID), latest.Encode()); err != nil {
				return err
			}
		}
	}
	return nil
}

func filterNonContractOutputs(outputs []domain.Output) []domain.Output {
	filtered := outputs[:0:0]
	for _, out := range outputs {
		if out.Kind != domain.OutputKindContract && out.Kind != domain.OutputKindContractCreated {
			filtered = append(filtered, out)
		}
	}
	return filtered
}

// computeFee is the value a transaction burns: everything its inputs spent
// that its own value outputs do not return to an owner.
func computeFee(spentValue uint64, outputs []domain.Output) uint64 {
	var returned uint64
	for _, out := range outputs {
		if out.Kind == domain.OutputKindCoin || out.Kind == domain.OutputKindChange || out.Kind == domain.OutputKindVariable {
			returned += out.Amount
		}
	}
	if spentValue <= returned {
		return 0
	}
	return spentValue - returned
}
