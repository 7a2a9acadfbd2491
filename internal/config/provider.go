package config

import (
	"path/filepath"
	"strings"

	debugconfig "github.com/weisyn/v1/internal/config/debug"
	eutxoconfig "github.com/weisyn/v1/internal/config/eutxo"
	logconfig "github.com/weisyn/v1/internal/config/log"
	badgerconfig "github.com/weisyn/v1/internal/config/storage/badger"
	"github.com/weisyn/v1/pkg/interfaces/config"
	"github.com/weisyn/v1/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig

	log    *logconfig.Config
	badger *badgerconfig.Config
	eutxo  *eutxoconfig.Config
	debug  *debugconfig.Config
}

var _ config.Provider = (*Provider)(nil)

// NewProvider 创建配置提供者
//
// 验证失败不会 panic：ValidateMandatoryConfig 的结果由调用方（启动流程）决定
// 是否致命，这里只负责装配各子配置。
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}

	dataRoot := "./data"
	if appConfig.Storage != nil && appConfig.Storage.DataRoot != nil && *appConfig.Storage.DataRoot != "" {
		dataRoot = *appConfig.Storage.DataRoot
	}
	env := appConfig.GetEnvironment()
	badgerPath := filepath.Join(dataRoot, env, "badger")

	badgerUser := &types.UserStorageConfig{DataRoot: &badgerPath}
	badgerCfg := badgerconfig.New(badgerUser)

	var logUser *types.UserLogConfig
	if appConfig.Log != nil {
		logUser = appConfig.Log
	}
	logCfg := logconfig.New(logUser)

	var eutxoUser *eutxoconfig.UserEutxoConfig
	if appConfig.Eutxo != nil {
		eutxoUser = &eutxoconfig.UserEutxoConfig{
			ForbidFakeCoins: appConfig.Eutxo.ForbidFakeCoins,
			MaxTxCount:      appConfig.Eutxo.MaxTxCount,
			BlockGasLimit:   appConfig.Eutxo.BlockGasLimit,
			BlockSizeLimit:  appConfig.Eutxo.BlockSizeLimit,
			RewindPolicy:    appConfig.Eutxo.RewindPolicy,
			RewindRange:     appConfig.Eutxo.RewindRange,
		}
	}
	eutxoCfg := eutxoconfig.New(eutxoUser)

	var debugUser *debugconfig.UserDebugConfig
	if appConfig.Debug != nil {
		debugUser = &debugconfig.UserDebugConfig{
			Host: appConfig.Debug.Host,
			Port: appConfig.Debug.Port,
		}
	}
	debugCfg := debugconfig.New(debugUser)

	return &Provider{
		appConfig: appConfig,
		log:       logCfg,
		badger:    badgerCfg,
		eutxo:     eutxoCfg,
		debug:     debugCfg,
	}
}

func (p *Provider) GetLog() *logconfig.LogOptions { return p.log.GetOptions() }

func (p *Provider) GetBadger() *badgerconfig.BadgerOptions { return p.badger.GetOptions() }

func (p *Provider) GetEutxo() *eutxoconfig.Options { return p.eutxo.GetOptions() }

func (p *Provider) GetDebug() *debugconfig.Options { return p.debug.GetOptions() }

func (p *Provider) GetEnvironment() string { return strings.ToLower(p.appConfig.GetEnvironment()) }

func (p *Provider) GetAppConfig() *types.AppConfig { return p.appConfig }
