// Command executorctl drives the block executor directly against a Badger
// data directory, without a full node — for manual produce/validate/rollback
// exercises during development.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "executorctl",
	Short: "区块执行器调试命令行工具",
	Long: `executorctl 直接对接Badger数据目录驱动区块执行器，
不经过完整节点进程，便于开发期手工验证 produce/validate/rollback 流程。`,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（可选，默认使用节点配置路径）")

	rootCmd.AddCommand(produceCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(rollbackCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
