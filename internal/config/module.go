// Package config 提供应用配置管理功能
package config

import (
	eutxoconfig "github.com/weisyn/v1/internal/config/eutxo"
	logconfig "github.com/weisyn/v1/internal/config/log"
	badgerconfig "github.com/weisyn/v1/internal/config/storage/badger"
	"github.com/weisyn/v1/pkg/interfaces/config"
	"github.com/weisyn/v1/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			func(provider config.Provider) *logconfig.LogOptions { return provider.GetLog() },
			func(provider config.Provider) *badgerconfig.BadgerOptions { return provider.GetBadger() },
			func(provider config.Provider) *eutxoconfig.Options { return provider.GetEutxo() },
		),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}

	provider := NewProvider(appConfig)

	return ConfigOutput{
		Provider: provider,
	}, nil
}
