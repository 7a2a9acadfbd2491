// Package crypto 提供加密服务工厂实现
package crypto

import (
	"github.com/weisyn/v1/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/v1/internal/core/infrastructure/crypto/merkle"
	"github.com/weisyn/v1/pkg/interfaces/config"
	"github.com/weisyn/v1/pkg/interfaces/infrastructure/crypto"
	log "github.com/weisyn/v1/pkg/interfaces/infrastructure/log"
)

// ServiceInput 定义加密服务工厂的输入参数
type ServiceInput struct {
	ConfigProvider config.Provider `optional:"false"`
	Logger         log.Logger      `optional:"true"`
}

// ServiceOutput 定义加密服务工厂的输出结果
type ServiceOutput struct {
	HashManager        crypto.HashManager
	MerkleTreeManager  crypto.MerkleTreeManager
}

// CreateCryptoServices 创建加密服务
//
// 只创建哈希与Merkle服务。执行器的事件收件箱根直接调用 merkle.ComputeRoot，
// 历史覆盖层不对键做哈希，二者都不经由这里创建的服务；
// 地址、签名、门限等服务不在本仓库范围内，见 DESIGN.md。
func CreateCryptoServices(input ServiceInput) (ServiceOutput, error) {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "crypto")
	} else {
		logger = &noopLogger{}
	}

	hashService := hash.NewHashService()
	merkleService := merkle.NewMerkleService()
	logger.Info("哈希与Merkle服务已初始化")

	return ServiceOutput{
		HashManager:       hashService,
		MerkleTreeManager: merkleService,
	}, nil
}
