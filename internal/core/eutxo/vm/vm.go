// Package vm defines the contract execution engine the executor's
// Chargeable transaction dispatch invokes, and a tetratelabs/wazero-backed
// implementation of it.
package vm

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

var (
	ErrInvalidBytecode     = errors.New("vm: invalid wasm bytecode")
	ErrInstantiationFailed = errors.New("vm: module instantiation failed")
	ErrEntrypointNotFound  = errors.New("vm: exported entrypoint not found")
	ErrOutOfGas            = errors.New("vm: execution ran out of declared gas")
)

// CallInput is everything a Chargeable transaction's script invocation
// needs: the contract bytecode, the entrypoint to call, and the resource
// ceiling declared by the transaction's max gas field.
type CallInput struct {
	Bytecode   []byte
	Entrypoint string
	Params     []byte
	GasLimit   uint64
}

// CallResult is what execute_single_transaction's Chargeable dispatch reads
// back: whether the script reverted, how much gas it actually consumed, and
// any output bytes the entrypoint returned.
type CallResult struct {
	Reverted   bool
	GasUsed    uint64
	Output     []byte
	RevertInfo string
}

// Engine is the contract execution port the executor depends on. Swapping
// in a different VM implementation (or a dry-run/mock one for
// AttemptContinue validation) only requires satisfying this interface.
type Engine interface {
	Call(ctx context.Context, input CallInput) (CallResult, error)
	Close(ctx context.Context) error
}

// WazeroEngine runs contract bytecode on a shared wazero.Runtime.
// Compiled modules are cached by bytecode hash so repeated invocations of
// the same contract across a block don't re-validate/re-compile it.
type WazeroEngine struct {
	runtime wazero.Runtime

	mu      sync.Mutex
	modules map[string]wazero.CompiledModule
}

var _ Engine = (*WazeroEngine)(nil)

// NewWazeroEngine creates a runtime with WASI preview1 instantiated, the
// baseline host surface contract bytecode in this tree is compiled against.
func NewWazeroEngine(ctx context.Context) (*WazeroEngine, error) {
	runtime := wazero.NewRuntime(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("vm: instantiate WASI: %w", err)
	}

	return &WazeroEngine{
		runtime: runtime,
		modules: make(map[string]wazero.CompiledModule),
	}, nil
}

func (e *WazeroEngine) compiled(ctx context.Context, bytecode []byte) (wazero.CompiledModule, error) {
	key := bytecodeKey(bytecode)

	e.mu.Lock()
	if cached, ok := e.modules[key]; ok {
		e.mu.Unlock()
		return cached, nil
	}
	e.mu.Unlock()

	compiled, err := e.runtime.CompileModule(ctx, bytecode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBytecode, err)
	}

	e.mu.Lock()
	e.modules[key] = compiled
	e.mu.Unlock()
	return compiled, nil
}

// Call instantiates the compiled module fresh per invocation (contract
// state lives in the UTXO set, not in linear memory across calls) and
// invokes its entrypoint. input.GasLimit is not enforced: no instruction
// budget is applied, and the returned GasUsed is always zero.
func (e *WazeroEngine) Call(ctx context.Context, input CallInput) (CallResult, error) {
	compiled, err := e.compiled(ctx, input.Bytecode)
	if err != nil {
		return CallResult{}, err
	}

	cfg := wazero.NewModuleConfig()
	instance, err := e.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return CallResult{}, fmt.Errorf("%w: %v", ErrInstantiationFailed, err)
	}
	defer instance.Close(ctx)

	fn := instance.ExportedFunction(input.Entrypoint)
	if fn == nil {
		return CallResult{}, fmt.Errorf("%w: %s", ErrEntrypointNotFound, input.Entrypoint)
	}

	results, callErr := fn.Call(ctx)
	if callErr != nil {
		// A trap (divide-by-zero, out-of-bounds memory access, explicit
		// abort) is a script revert, not an executor fault: the
		// transaction's Coin and non-retryable Message inputs still
		// spend, only its
		// Contract-side effects are discarded.
		return CallResult{Reverted: true, RevertInfo: callErr.Error()}, nil
	}

	var output []byte
	if len(results) > 0 {
		output = uint64ToBytes(results[0])
	}

	return CallResult{Reverted: false, Output: output}, nil
}

func (e *WazeroEngine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

func bytecodeKey(bytecode []byte) string {
	// The compile cache is keyed by the SHA-256 digest of the whole
	// bytecode, so two different contracts never share a compiled module.
	sum := sha256.Sum256(bytecode)
	return string(sum[:])
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}
