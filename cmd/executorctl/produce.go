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

var (
	produceHeight            uint64
	produceDaFrom            uint64
	produceDaTo              uint64
	produceCoinbaseRecipient string
)

var produceCmd = &cobra.Command{
	Use:   "produce",
	Short: "生产一个区块（拉取L1强制消息与L2交易池，构造Mint）",
	RunE: func(cmd *cobra.Command, args []string) error {
		coinbaseRecipient, err := hex.DecodeString(produceCoinbaseRecipient)
		if err != nil {
			return fmt.Errorf("--coinbase-recipient 不是合法的十六进制: %w", err)
		}
		return withExecutor(func(ctx context.Context, exec *executor.Executor, hist *historical.Store, logger log.Logger) error {
			result, err := exec.Produce(ctx, domain.Height(produceHeight), produceDaFrom, produceDaTo, coinbaseRecipient)
			if err != nil {
				return fmt.Errorf("区块生产失败: %w", err)
			}
			return printResult(result)
		})
	},
}

func init() {
	produceCmd.Flags().Uint64Var(&produceHeight, "height", 0, "目标区块高度")
	produceCmd.Flags().Uint64Var(&produceDaFrom, "da-from", 0, "DA起始高度（含）")
	produceCmd.Flags().Uint64Var(&produceDaTo, "da-to", 0, "DA截止高度（含）")
	produceCmd.Flags().StringVar(&produceCoinbaseRecipient, "coinbase-recipient", "", "区块手续费接收合约（十六进制，留空为零合约）")
	produceCmd.MarkFlagRequired("height")
}

func printResult(result executor.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
