package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	app "github.com/weisyn/v1/internal/app"
	configmodule "github.com/weisyn/v1/internal/config"
	"github.com/weisyn/v1/internal/core/eutxo"
	"github.com/weisyn/v1/internal/core/eutxo/executor"
	"github.com/weisyn/v1/internal/core/infrastructure/crypto"
	logmodule "github.com/weisyn/v1/internal/core/infrastructure/log"
	storagemodule "github.com/weisyn/v1/internal/core/infrastructure/storage"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/historical"
	log "github.com/weisyn/v1/pkg/interfaces/infrastructure/log"
)

// withExecutor wires up a transient fx application against the configured
// Badger data directory, runs fn once the executor and historical store are
// available, then tears the application down.
func withExecutor(fn func(ctx context.Context, exec *executor.Executor, hist *historical.Store, logger log.Logger) error) error {
	var appOptions []app.Option
	if configPath != "" {
		app.SetConfigFilePath(configPath)
		appOptions = append(appOptions, app.WithConfigFile(configPath))
	}

	runErr := make(chan error, 1)

	fxApp := fx.New(
		app.AppModule,
		fx.Provide(func() []app.Option { return appOptions }),

		configmodule.Module(),
		logmodule.Module(),
		crypto.Module(),
		storagemodule.Module(),
		eutxo.Module(),

		fx.Invoke(func(lc fx.Lifecycle, exec *executor.Executor, hist *historical.Store, logger log.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					runErr <- fn(ctx, exec, hist, logger)
					return nil
				},
			})
		}),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := fxApp.Start(startCtx); err != nil {
		return fmt.Errorf("启动执行器应用失败: %w", err)
	}

	fnErr := <-runErr

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	if err := fxApp.Stop(stopCtx); err != nil && fnErr == nil {
		return fmt.Errorf("关闭执行器应用失败: %w", err)
	}

	return fnErr
}
