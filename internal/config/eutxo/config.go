// Package eutxo 提供执行器与历史存储的配置
package eutxo

// RewindPolicyKind 对应 StateRewindPolicy 的三种取值
type RewindPolicyKind string

const (
	RewindPolicyNone  RewindPolicyKind = "no_rewind"
	RewindPolicyRange RewindPolicyKind = "rewind_range"
	RewindPolicyFull  RewindPolicyKind = "rewind_full_range"
)

// Options 执行器与历史存储的配置选项
type Options struct {
	// ForbidFakeCoins 为 true 时，消费一个不存在的 Coin 输入会失败（CoinDoesNotExist）；
	// 为 false 时，执行器会合成一个默认币继续执行。
	ForbidFakeCoins bool `json:"forbid_fake_coins"`

	// MaxTxCount 单个区块允许打包的最大交易数（u16::MAX - 1 的类比上限）。
	MaxTxCount uint16 `json:"max_tx_count"`

	// BlockGasLimit / BlockSizeLimit 区块级别的 gas 和字节预算。
	BlockGasLimit  uint64 `json:"block_gas_limit"`
	BlockSizeLimit uint32 `json:"block_size_limit"`

	// RewindPolicy 历史回滚窗口策略。
	RewindPolicy RewindPolicyKind `json:"rewind_policy"`
	// RewindRange 仅当 RewindPolicy == rewind_range 时有效，表示保留的高度窗口大小。
	RewindRange uint64 `json:"rewind_range"`
}

// Config 执行器配置的不可变视图
type Config struct {
	options *Options
}

// UserEutxoConfig 用户可覆盖的执行器配置字段
type UserEutxoConfig struct {
	ForbidFakeCoins *bool   `json:"forbid_fake_coins,omitempty"`
	MaxTxCount      *uint16 `json:"max_tx_count,omitempty"`
	BlockGasLimit   *uint64 `json:"block_gas_limit,omitempty"`
	BlockSizeLimit  *uint32 `json:"block_size_limit,omitempty"`
	RewindPolicy    *string `json:"rewind_policy,omitempty"`
	RewindRange     *uint64 `json:"rewind_range,omitempty"`
}

const (
	defaultMaxTxCount     uint16 = 1024
	defaultBlockGasLimit  uint64 = 100_000_000
	defaultBlockSizeLimit uint32 = 1 << 20
)

// New 创建执行器配置，默认值之上应用用户覆盖
func New(userConfig interface{}) *Config {
	options := &Options{
		ForbidFakeCoins: true,
		MaxTxCount:      defaultMaxTxCount,
		BlockGasLimit:   defaultBlockGasLimit,
		BlockSizeLimit:  defaultBlockSizeLimit,
		RewindPolicy:    RewindPolicyRange,
		RewindRange:     10_000,
	}
	if userConfig != nil {
		applyUserConfig(options, userConfig)
	}
	return &Config{options: options}
}

// NewFromOptions 从已构造的 Options 创建配置
func NewFromOptions(options *Options) *Config {
	return &Config{options: options}
}

func applyUserConfig(options *Options, userConfig interface{}) {
	uc, ok := userConfig.(*UserEutxoConfig)
	if !ok || uc == nil {
		return
	}
	if uc.ForbidFakeCoins != nil {
		options.ForbidFakeCoins = *uc.ForbidFakeCoins
	}
	if uc.MaxTxCount != nil {
		options.MaxTxCount = *uc.MaxTxCount
	}
	if uc.BlockGasLimit != nil {
		options.BlockGasLimit = *uc.BlockGasLimit
	}
	if uc.BlockSizeLimit != nil {
		options.BlockSizeLimit = *uc.BlockSizeLimit
	}
	if uc.RewindPolicy != nil {
		options.RewindPolicy = RewindPolicyKind(*uc.RewindPolicy)
	}
	if uc.RewindRange != nil {
		options.RewindRange = *uc.RewindRange
	}
}

// GetOptions 返回完整的选项集合
func (c *Config) GetOptions() *Options { return c.options }

func (c *Config) IsForbidFakeCoins() bool           { return c.options.ForbidFakeCoins }
func (c *Config) GetMaxTxCount() uint16             { return c.options.MaxTxCount }
func (c *Config) GetBlockGasLimit() uint64          { return c.options.BlockGasLimit }
func (c *Config) GetBlockSizeLimit() uint32         { return c.options.BlockSizeLimit }
func (c *Config) GetRewindPolicy() RewindPolicyKind { return c.options.RewindPolicy }
func (c *Config) GetRewindRange() uint64            { return c.options.RewindRange }
