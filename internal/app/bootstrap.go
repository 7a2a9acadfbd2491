package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	debugapi "github.com/weisyn/v1/internal/api/debug"
	config "github.com/weisyn/v1/internal/config"
	"github.com/weisyn/v1/internal/core/eutxo"
	"github.com/weisyn/v1/internal/core/infrastructure/crypto"
	log "github.com/weisyn/v1/internal/core/infrastructure/log"
	"github.com/weisyn/v1/internal/core/infrastructure/storage"

	"go.uber.org/fx"
)

// Framework layers
const (
	// 基础设施层
	LayerInfrastructure = "infrastructure"
	// 通信与数据层
	LayerCommunication = "communication"
	// 业务逻辑层
	LayerBusiness = "business"
	// 应用层
	LayerApplication = "application"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts  *options
	fxApp *fx.App
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{
		opts: opts,
	}
}

// SetupInfrastructureLayer 设置基础设施层模块
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		config.Module(), // 1. 配置(不依赖其他)
		log.Module(),    // 2. 日志(依赖配置)
		crypto.Module(), // 3. 密码学(依赖配置)：哈希与默克尔树

		fx.Invoke(func(lifecycle fx.Lifecycle) {
			lifecycle.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return nil
				},
			})
		}),
	}
}

// SetupCommunicationLayer 设置通信与数据层模块
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		storage.Module(), // 列族存储 + 历史叠加层（依赖基础设施）

		fx.Invoke(func(lifecycle fx.Lifecycle) {
			lifecycle.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return nil
				},
			})
		}),
	}
}

// SetupBusinessLayer 设置业务逻辑层模块
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		eutxo.Module(), // 区块执行器（依赖存储与密码学基础设施）

		fx.Invoke(func(lifecycle fx.Lifecycle) {
			lifecycle.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return nil
				},
			})
		}),
	}
}

// SetupApplicationLayer 设置应用层模块
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	modules := []fx.Option{
		AppModule, // 应用核心模块
	}

	if b.opts.enableAPI {
		modules = append(modules, debugapi.Module()) // 调试用HTTP观测面
		fmt.Println("🌐 调试API模块已启用")
	} else {
		fmt.Println("⚠️  调试API模块已禁用")
	}

	return modules
}

// SetupModules 设置所有应用模块
func (b *Bootstrap) SetupModules() ([]fx.Option, error) {
	var allModules []fx.Option

	allModules = append(allModules, b.SetupInfrastructureLayer()...)
	allModules = append(allModules, b.SetupCommunicationLayer()...)
	allModules = append(allModules, b.SetupBusinessLayer()...)
	allModules = append(allModules, b.SetupApplicationLayer()...)

	return allModules, nil
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	modules, err := b.SetupModules()
	if err != nil {
		return err
	}

	appOptions := []fx.Option{
		fx.Options(modules...),
		fx.NopLogger,

		fx.Invoke(func(lifecycle fx.Lifecycle) {
			lifecycle.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					fmt.Println("准备启动应用")
					return nil
				},
				OnStop: func(ctx context.Context) error {
					fmt.Println("准备停止应用")
					return nil
				},
			})
		}),
	}

	b.fxApp = fx.New(appOptions...)
	return nil
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	fmt.Println("正在启动应用...")

	if err := b.fxApp.Start(ctx); err != nil {
		fmt.Printf("启动失败: %v\n", err)
		return fmt.Errorf("启动应用失败: %w", err)
	}

	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	fmt.Println("正在停止应用...")

	if err := b.fxApp.Stop(ctx); err != nil {
		fmt.Printf("停止失败: %v\n", err)
		return fmt.Errorf("停止应用失败: %w", err)
	}

	return nil
}

// validateDependencyInjection 验证依赖注入的完整性
func (b *Bootstrap) validateDependencyInjection() error {
	if b.fxApp == nil {
		return fmt.Errorf("fx应用未初始化")
	}

	fmt.Println("🔍 正在验证核心组件依赖注入...")
	fmt.Println("   - 存储后端（kvstore/historical）: 由fx框架在启动时验证")
	fmt.Println("   - 区块执行器: 由fx框架在启动时验证")
	fmt.Println("   - Logger/HashManager: 由fx框架在启动时验证")

	return nil
}

// BootstrapApp 执行完整的引导过程并返回应用实例
func BootstrapApp(options ...Option) (App, error) {
	opts := newOptions(options...)

	bootstrap := NewBootstrap(opts)

	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer startupCancel()

	if err := bootstrap.StartApp(startupCtx); err != nil {
		return nil, err
	}

	if err := bootstrap.validateDependencyInjection(); err != nil {
		fmt.Printf("⚠️  依赖注入完整性检查失败: %v\n", err)
		fmt.Println("系统将继续运行，但可能存在功能异常")
	} else {
		fmt.Println("✅ 依赖注入完整性检查通过")
	}

	app := &internalApp{
		fxApp:     bootstrap.fxApp,
		bootstrap: bootstrap,
	}

	return app, nil
}

// WaitForSignal 等待退出信号
func WaitForSignal() os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	return <-signals
}
