package debug

import (
	"context"

	"go.uber.org/fx"

	"github.com/weisyn/v1/internal/core/infrastructure/storage/historical"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/kvstore"
	config "github.com/weisyn/v1/pkg/interfaces/config"
	log "github.com/weisyn/v1/pkg/interfaces/infrastructure/log"
)

// Params 定义调试API模块的依赖参数
type Params struct {
	fx.In

	Provider   config.Provider
	Logger     log.Logger
	KVBackend  kvstore.Backend
	Historical *historical.Store
}

// Module 返回调试API的fx模块，随应用生命周期启动与关闭HTTP监听
func Module() fx.Option {
	return fx.Module("debugapi",
		fx.Provide(func(params Params) *Server {
			return NewServer(params.Logger, params.Provider, params.KVBackend, params.Historical)
		}),
		fx.Invoke(func(lc fx.Lifecycle, server *Server, logger log.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return server.Start(ctx)
				},
				OnStop: func(ctx context.Context) error {
					return server.Stop(ctx)
				},
			})
		}),
	)
}
