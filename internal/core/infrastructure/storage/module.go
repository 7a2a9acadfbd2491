// Package storage wires the column-keyed key-value backend and the
// historical overlay built on top of it into the dependency graph.
package storage

import (
	"context"
	"strings"

	"github.com/weisyn/v1/internal/core/infrastructure/storage/historical"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/kvstore"
	"github.com/weisyn/v1/pkg/interfaces/config"
	"github.com/weisyn/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/weisyn/v1/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider config.Provider // 配置提供者
	Logger   log.Logger      // 日志记录器
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	BadgerStore storageInterface.BadgerStore

	// 列式键值后端与历史覆盖层：区块执行器与调试API依赖的核心存储面
	KVBackend       kvstore.Backend
	HistoricalStore *historical.Store
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),

		fx.Invoke(func(lc fx.Lifecycle, backend kvstore.Backend, logger log.Logger) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					logger.Info("正在关闭存储服务...")
					if err := backend.Close(); err != nil {
						if strings.Contains(err.Error(), "LOCK: no such file or directory") {
							logger.Warn("BadgerDB LOCK文件已不存在，这通常是正常的关闭过程")
							return nil
						}
						logger.Errorf("关闭存储服务失败: %v", err)
						return err
					}
					logger.Info("存储服务已安全关闭")
					return nil
				},
			})
		}),
	)
}

// ProvideServices 创建BadgerDB存储并在其上构造列式键值后端与历史覆盖层
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	serviceOutput, err := CreateStorageServices(ServiceInput{
		Provider: params.Provider,
		Logger:   params.Logger,
	})
	if err != nil {
		return ModuleOutput{}, err
	}

	kvBackend := kvstore.NewBadgerBackend(serviceOutput.BadgerStore)
	historicalStore := historical.New(kvBackend)

	return ModuleOutput{
		BadgerStore:     serviceOutput.BadgerStore,
		KVBackend:       kvBackend,
		HistoricalStore: historicalStore,
	}, nil
}
