// Package config provides configuration provider interfaces.
package config

import (
	debugconfig "github.com/weisyn/v1/internal/config/debug"
	eutxoconfig "github.com/weisyn/v1/internal/config/eutxo"
	logconfig "github.com/weisyn/v1/internal/config/log"
	badgerconfig "github.com/weisyn/v1/internal/config/storage/badger"
	"github.com/weisyn/v1/pkg/types"
)

// Provider 配置提供者接口
//
// 范围收窄到执行器与历史存储子系统实际消费的配置面：日志、Badger 存储、
// 执行器参数，以及运行环境标志；其余子系统（网络、共识、交易池……）的
// 配置不在本仓库范围内。
type Provider interface {
	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetBadger 获取BadgerDB存储配置
	GetBadger() *badgerconfig.BadgerOptions

	// GetEutxo 获取执行器与历史存储配置
	GetEutxo() *eutxoconfig.Options

	// GetDebug 获取调试API配置
	GetDebug() *debugconfig.Options

	// GetEnvironment 获取运行环境（dev | test | prod）
	GetEnvironment() string

	// GetAppConfig 获取原始应用配置（用于验证等场景）
	GetAppConfig() *types.AppConfig
}
