// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径
	Version *string `json:"version,omitempty"`  // 应用版本

	// Environment 运行环境：dev | test | prod
	Environment *string `json:"environment,omitempty"`

	// Storage 存储配置
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// Log 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// Eutxo 执行器与历史存储配置
	Eutxo *UserEutxoAppConfig `json:"eutxo,omitempty"`

	// Debug 调试HTTP API配置
	Debug *UserDebugAppConfig `json:"debug,omitempty"`
}

// UserDebugAppConfig 调试API的用户可覆盖配置
// 字段含义见 internal/config/debug.UserDebugConfig；此处保留一份 JSON 可解析的镜像，
// 理由同 UserEutxoAppConfig。
type UserDebugAppConfig struct {
	Host *string `json:"host,omitempty"`
	Port *int    `json:"port,omitempty"`
}

// UserStorageConfig 用户存储配置
// 统一使用 data_root 作为"数据根目录"，实际数据目录由 data_root + 环境组合得到。
type UserStorageConfig struct {
	DataRoot *string `json:"data_root,omitempty"` // 数据根目录（data_root）
}

// UserLogConfig 用户日志配置
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径
}

// UserEutxoAppConfig 执行器与历史存储的用户可覆盖配置
// 字段含义见 internal/config/eutxo.UserEutxoConfig；此处保留一份 JSON 可解析的镜像，
// 因为 AppConfig 需要独立于 internal/config 包被 json.Unmarshal。
type UserEutxoAppConfig struct {
	ForbidFakeCoins *bool   `json:"forbid_fake_coins,omitempty"`
	MaxTxCount      *uint16 `json:"max_tx_count,omitempty"`
	BlockGasLimit   *uint64 `json:"block_gas_limit,omitempty"`
	BlockSizeLimit  *uint32 `json:"block_size_limit,omitempty"`
	RewindPolicy    *string `json:"rewind_policy,omitempty"`
	RewindRange     *uint64 `json:"rewind_range,omitempty"`
}

// GetEnvironment 返回运行环境，默认 dev
func (c *AppConfig) GetEnvironment() string {
	if c == nil || c.Environment == nil || *c.Environment == "" {
		return "dev"
	}
	return *c.Environment
}

// 配置辅助函数：区分"未设置"和"设置为零值"

func BoolPtr(v bool) *bool     { return &v }
func IntPtr(v int) *int        { return &v }
func StringPtr(v string) *string { return &v }
func UInt64Ptr(v uint64) *uint64 { return &v }
