package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/v1/internal/core/eutxo/domain"
	"github.com/weisyn/v1/internal/core/eutxo/executor"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/historical"
	log "github.com/weisyn/v1/pkg/interfaces/infrastructure/log"
)

var validateBlockFile string

// blockFile is the on-disk JSON shape a block is read from for validation:
// transactions are hex-encoded wire bytes in inclusion order (chargeable
// transactions followed by exactly one mint transaction).
type blockFile struct {
	Height         uint64   `json:"height"`
	DaHeightFrom   uint64   `json:"da_height_from"`
	DaHeightTo     uint64   `json:"da_height_to"`
	EventInboxRoot string   `json:"event_inbox_root"`
	Transactions   []string `json:"transactions"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "重放并验证一个区块（文件给出的交易列表须产出完全一致的结果）",
	RunE: func(cmd *cobra.Command, args []string) error {
		block, err := loadBlockFile(validateBlockFile)
		if err != nil {
			return err
		}

		return withExecutor(func(ctx context.Context, exec *executor.Executor, hist *historical.Store, logger log.Logger) error {
			result, err := exec.Validate(ctx, block)
			if err != nil {
				return fmt.Errorf("区块验证失败: %w", err)
			}
			return printResult(result)
		})
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateBlockFile, "block-file", "", "待验证区块的JSON文件路径")
	validateCmd.MarkFlagRequired("block-file")
}

func loadBlockFile(path string) (executor.Block, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return executor.Block{}, fmt.Errorf("读取区块文件失败: %w", err)
	}

	var bf blockFile
	if err := json.Unmarshal(raw, &bf); err != nil {
		return executor.Block{}, fmt.Errorf("解析区块文件失败: %w", err)
	}

	rootBytes, err := hex.DecodeString(bf.EventInboxRoot)
	if err != nil || len(rootBytes) != 32 {
		return executor.Block{}, fmt.Errorf("event_inbox_root 必须是32字节十六进制")
	}
	var root [32]byte
	copy(root[:], rootBytes)

	txs := make([][]byte, 0, len(bf.Transactions))
	for i, txHex := range bf.Transactions {
		txBytes, err := hex.DecodeString(txHex)
		if err != nil {
			return executor.Block{}, fmt.Errorf("解析第%d笔交易失败: %w", i, err)
		}
		txs = append(txs, txBytes)
	}

	return executor.Block{
		Height:         domain.Height(bf.Height),
		DaHeightFrom:   bf.DaHeightFrom,
		DaHeightTo:     bf.DaHeightTo,
		EventInboxRoot: root,
		Transactions:   txs,
	}, nil
}
