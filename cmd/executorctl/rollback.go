package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weisyn/v1/internal/core/eutxo/domain"
	"github.com/weisyn/v1/internal/core/eutxo/executor"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/historical"
	log "github.com/weisyn/v1/pkg/interfaces/infrastructure/log"
)

var (
	rollbackTo      uint64
	rollbackCurrent uint64
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "将历史叠加层回滚到指定高度（仅支持回滚到当前高度的前一个区块）",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExecutor(func(ctx context.Context, exec *executor.Executor, hist *historical.Store, logger log.Logger) error {
			if err := hist.RollbackBlockTo(ctx, domain.Height(rollbackTo), domain.Height(rollbackCurrent)); err != nil {
				return fmt.Errorf("回滚失败: %w", err)
			}
			logger.Infof("已回滚到高度 %d", rollbackTo)
			return nil
		})
	},
}

func init() {
	rollbackCmd.Flags().Uint64Var(&rollbackTo, "to-height", 0, "回滚目标高度")
	rollbackCmd.Flags().Uint64Var(&rollbackCurrent, "current-height", 0, "当前链高（必须等于目标高度+1）")
	rollbackCmd.MarkFlagRequired("to-height")
	rollbackCmd.MarkFlagRequired("current-height")
}
