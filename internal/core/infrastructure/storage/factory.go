// Package storage 提供存储服务工厂实现
package storage

import (
	"fmt"
	"path/filepath"

	badgerconfig "github.com/weisyn/v1/internal/config/storage/badger"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/v1/pkg/interfaces/config"
	"github.com/weisyn/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/weisyn/v1/pkg/interfaces/infrastructure/storage"
)

// ServiceInput 定义存储服务工厂的输入参数
type ServiceInput struct {
	Provider config.Provider // 配置提供者
	Logger   log.Logger      // 日志记录器
}

// ServiceOutput 定义存储服务工厂的输出结果
type ServiceOutput struct {
	BadgerStore storageInterface.BadgerStore
}

// CreateStorageServices 初始化BadgerDB存储——列式键值后端与历史覆盖层
// 依赖的唯一持久化引擎。
func CreateStorageServices(input ServiceInput) (ServiceOutput, error) {
	provider := input.Provider
	logger := input.Logger

	badgerOptions := provider.GetBadger()
	badgerCfg := badgerconfig.NewFromOptions(badgerOptions)

	badgerStore := badger.New(badgerCfg, logger)
	if badgerStore == nil {
		logger.Error("BadgerDB存储初始化失败")
		return ServiceOutput{}, fmt.Errorf("存储初始化失败：BadgerDB存储不可用")
	}

	actualPath := badgerOptions.Path
	if actualPath == "" {
		actualPath = "./data/badger"
	}
	absPath, err := filepath.Abs(actualPath)
	if err != nil {
		logger.Warnf("无法转换为绝对路径 %s: %v，使用原路径", actualPath, err)
		absPath = actualPath
	}
	logger.Infof("✅ BadgerDB存储初始化成功")
	logger.Infof("📁 数据存储路径: %s", absPath)

	return ServiceOutput{BadgerStore: badgerStore}, nil
}
