// Package eutxo wires the block executor and its supporting ports —
// relayer, transaction source, preconfirmation sink, contract VM engine —
// into the dependency graph on top of the storage layer's column-keyed
// backend and historical overlay.
package eutxo

import (
	"context"
	"time"

	"github.com/weisyn/v1/internal/core/eutxo/executor"
	"github.com/weisyn/v1/internal/core/eutxo/relayer"
	"github.com/weisyn/v1/internal/core/eutxo/txsource"
	"github.com/weisyn/v1/internal/core/eutxo/vm"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/historical"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/kvstore"
	config "github.com/weisyn/v1/pkg/interfaces/config"
	log "github.com/weisyn/v1/pkg/interfaces/infrastructure/log"
	eutxoiface "github.com/weisyn/v1/pkg/interfaces/eutxo"

	"go.uber.org/fx"
)

// Params 定义eutxo模块的依赖参数
type Params struct {
	fx.In

	Provider   config.Provider
	Logger     log.Logger
	KVBackend  kvstore.Backend
	Historical *historical.Store
}

// Output 定义eutxo模块的输出结构
type Output struct {
	fx.Out

	Executor      *executor.Executor
	Relayer       *relayer.Service
	TxSource      *txsource.Service
	Preconfirm    *executor.PreconfirmationSink
	RelayerPort   eutxoiface.RelayerPort
	SourcePort    eutxoiface.TransactionSourcePort
	WaiterPort    eutxoiface.NewTxWaiterPort
	PreconfirmPort eutxoiface.PreconfirmationSenderPort
}

// Module 返回eutxo业务模块
func Module() fx.Option {
	return fx.Module("eutxo",
		fx.Provide(Provide),
	)
}

// Provide 构造执行器及其驱动端口。relayer/txsource在本仓库中是进程内桩实现，
// 代替真实的DA中继客户端与交易池客户端（均不在本仓库范围内）。
func Provide(params Params) (Output, error) {
	ctx := context.Background()
	logger := params.Logger
	eutxoOptions := params.Provider.GetEutxo()

	vmEngine, err := vm.NewWazeroEngine(ctx)
	if err != nil {
		return Output{}, err
	}

	relayerSvc := relayer.NewService()
	sourceSvc := txsource.NewService(1024)
	preconfirmSink, err := executor.NewPreconfirmationSink(ctx, 5*time.Minute, 1024)
	if err != nil {
		return Output{}, err
	}

	cfg := executor.Config{
		MaxBlockGas:     eutxoOptions.BlockGasLimit,
		MaxBlockSize:    eutxoOptions.BlockSizeLimit,
		MaxTxCount:      uint32(eutxoOptions.MaxTxCount),
		ForbidFakeCoins: eutxoOptions.ForbidFakeCoins,
	}

	exec := executor.New(
		params.KVBackend,
		params.Historical,
		vmEngine,
		relayerSvc,
		sourceSvc,
		sourceSvc,
		preconfirmSink,
		cfg,
		logger,
	)

	return Output{
		Executor:       exec,
		Relayer:        relayerSvc,
		TxSource:       sourceSvc,
		Preconfirm:     preconfirmSink,
		RelayerPort:    relayerSvc,
		SourcePort:     sourceSvc,
		WaiterPort:     sourceSvc,
		PreconfirmPort: preconfirmSink,
	}, nil
}
