package executor

// Config bounds one block's resources. These mirror the consensus-wide
// limits a produced block must respect and a validated block is checked
// against.
type Config struct {
	MaxBlockGas      uint64
	MaxBlockSize     uint32
	MaxTxCount       uint32
	ForbidFakeCoins  bool
	MaxDaHeightDelta uint64
}

func DefaultConfig() Config {
	return Config{
		MaxBlockGas:      30_000_000,
		MaxBlockSize:     2 << 20,
		MaxTxCount:       10_000,
		ForbidFakeCoins:  false,
		MaxDaHeightDelta: 100,
	}
}
