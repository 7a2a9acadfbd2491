package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weisyn/v1/pkg/types"
)

func TestProvider_GetEnvironment(t *testing.T) {
	t.Run("显式配置 dev", func(t *testing.T) {
		cfg := &types.AppConfig{Environment: types.StringPtr("dev")}
		provider := NewProvider(cfg)
		assert.Equal(t, "dev", provider.GetEnvironment())
	})

	t.Run("显式配置 prod", func(t *testing.T) {
		cfg := &types.AppConfig{Environment: types.StringPtr("prod")}
		provider := NewProvider(cfg)
		assert.Equal(t, "prod", provider.GetEnvironment())
	})

	t.Run("未配置时默认为 dev", func(t *testing.T) {
		provider := NewProvider(&types.AppConfig{})
		assert.Equal(t, "dev", provider.GetEnvironment())
	})

	t.Run("nil appConfig 时默认为 dev", func(t *testing.T) {
		provider := NewProvider(nil)
		assert.Equal(t, "dev", provider.GetEnvironment())
	})
}

func TestProvider_SubConfigs(t *testing.T) {
	cfg := &types.AppConfig{
		Environment: types.StringPtr("test"),
		Storage:     &types.UserStorageConfig{DataRoot: types.StringPtr("/tmp/weisyn-data")},
	}
	provider := NewProvider(cfg)

	require := assert.New(t)
	require.NotNil(provider.GetLog())
	require.NotNil(provider.GetBadger())
	require.NotNil(provider.GetEutxo())
	require.Equal(cfg, provider.GetAppConfig())
}

func TestValidateMandatoryConfig(t *testing.T) {
	t.Run("有效环境通过", func(t *testing.T) {
		cfg := &types.AppConfig{Environment: types.StringPtr("prod")}
		assert.NoError(t, ValidateMandatoryConfig(cfg))
	})

	t.Run("无效环境被拒绝", func(t *testing.T) {
		cfg := &types.AppConfig{Environment: types.StringPtr("staging")}
		assert.Error(t, ValidateMandatoryConfig(cfg))
	})

	t.Run("nil 配置通过", func(t *testing.T) {
		assert.NoError(t, ValidateMandatoryConfig(nil))
	})
}
