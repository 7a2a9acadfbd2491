// Package crypto 提供加密相关功能
package crypto

import (
	"github.com/weisyn/v1/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/v1/internal/core/infrastructure/crypto/merkle"
	config "github.com/weisyn/v1/pkg/interfaces/config"
	"github.com/weisyn/v1/pkg/interfaces/infrastructure/crypto"
	log "github.com/weisyn/v1/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// CryptoParams 定义加密模块的依赖参数
type CryptoParams struct {
	fx.In

	Provider config.Provider // 配置提供者
	Logger   log.Logger      `optional:"true"` // 日志记录器
}

// CryptoOutput 定义加密模块的输出结构
type CryptoOutput struct {
	fx.Out

	HashManager       crypto.HashManager
	MerkleTreeManager crypto.MerkleTreeManager
}

// Module 返回加密模块
func Module() fx.Option {
	return fx.Module("crypto",
		fx.Provide(ProvideCryptoServices),
	)
}

// ProvideCryptoServices 提供加密服务
//
// 仅提供哈希与Merkle服务（执行器的事件收件箱根直接调用 merkle.ComputeRoot，
// 历史覆盖层不做键哈希，二者都不经由这些服务）；其余加密能力
// （地址、签名、门限、POW等）不属于执行器/存储核心，见 DESIGN.md。
func ProvideCryptoServices(params CryptoParams) (CryptoOutput, error) {
	var logger log.Logger
	if params.Logger != nil {
		logger = params.Logger.With("module", "crypto")
		logger.Info("初始化加密模块")
	} else {
		logger = &noopLogger{}
	}

	hashService := hash.NewHashService()
	merkleService := merkle.NewMerkleService()
	logger.Info("哈希与Merkle服务已初始化")

	return CryptoOutput{
		HashManager:       hashService,
		MerkleTreeManager: merkleService,
	}, nil
}

// noopLogger 是一个无操作的Logger实现，用于可选Logger为nil时的回退
type noopLogger struct{}

func (l *noopLogger) Debug(msg string)                          {}
func (l *noopLogger) Debugf(format string, args ...interface{}) {}
func (l *noopLogger) Info(msg string)                           {}
func (l *noopLogger) Infof(format string, args ...interface{})  {}
func (l *noopLogger) Warn(msg string)                           {}
func (l *noopLogger) Warnf(format string, args ...interface{})  {}
func (l *noopLogger) Error(msg string)                          {}
func (l *noopLogger) Errorf(format string, args ...interface{}) {}
func (l *noopLogger) Fatal(msg string)                          {}
func (l *noopLogger) Fatalf(format string, args ...interface{}) {}
func (l *noopLogger) With(keyvals ...interface{}) log.Logger    { return l }
func (l *noopLogger) Sync() error                               { return nil }
func (l *noopLogger) GetZapLogger() *zap.Logger                 { return nil }
