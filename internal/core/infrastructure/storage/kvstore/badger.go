package kvstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/weisyn/v1/internal/core/eutxo/domain"
	storageiface "github.com/weisyn/v1/pkg/interfaces/infrastructure/storage"
)

// badgerBackend adapts the generic byte-oriented interfaces.BadgerStore into
// a column-keyed kvstore.Backend by prefixing every key with its column
// name, following the prefix-scoping convention
// internal/core/infrastructure/storage/badger/store.go already exposes via
// PrefixScan/RangeScan.
type badgerBackend struct {
	store storageiface.BadgerStore
}

// NewBadgerBackend wraps an already-opened BadgerStore as a column-keyed
// Backend.
func NewBadgerBackend(store storageiface.BadgerStore) Backend {
	return &badgerBackend{store: store}
}

func physicalKey(column domain.Column, key []byte) []byte {
	out := make([]byte, 0, len(column)+1+len(key))
	out = append(out, []byte(column)...)
	out = append(out, 0x00)
	out = append(out, key...)
	return out
}

func (b *badgerBackend) Get(ctx context.Context, column domain.Column, key domain.ReferenceBytesKey) ([]byte, error) {
	return b.store.Get(ctx, physicalKey(column, key.Bytes()))
}

func (b *badgerBackend) Set(ctx context.Context, column domain.Column, key domain.ReferenceBytesKey, value []byte) error {
	return b.store.Set(ctx, physicalKey(column, key.Bytes()), value)
}

func (b *badgerBackend) Delete(ctx context.Context, column domain.Column, key domain.ReferenceBytesKey) error {
	return b.store.Delete(ctx, physicalKey(column, key.Bytes()))
}

func (b *badgerBackend) Exists(ctx context.Context, column domain.Column, key domain.ReferenceBytesKey) (bool, error) {
	return b.store.Exists(ctx, physicalKey(column, key.Bytes()))
}

func (b *badgerBackend) PrefixScan(ctx context.Context, column domain.Column, prefix []byte) (map[string][]byte, error) {
	raw, err := b.store.PrefixScan(ctx, physicalKey(column, prefix))
	if err != nil {
		return nil, err
	}
	return stripColumnPrefix(column, raw), nil
}

func (b *badgerBackend) SeekForward(ctx context.Context, column domain.Column, startKey []byte) ([]byte, []byte, bool, error) {
	start := physicalKey(column, startKey)
	// Upper bound: the column's prefix incremented by one, so the scan never
	// crosses into a neighboring column.
	end := columnUpperBound(column)

	raw, err := b.store.RangeScan(ctx, start, end)
	if err != nil {
		return nil, nil, false, err
	}
	if len(raw) == 0 {
		return nil, nil, false, nil
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	first := keys[0]
	return []byte(first)[len(column)+1:], raw[first], true, nil
}

func columnUpperBound(column domain.Column) []byte {
	prefix := append([]byte(column), 0x00)
	end := make([]byte, len(prefix))
	copy(end, prefix)
	// Increment the last byte to build an exclusive upper bound covering
	// every key under this column's prefix.
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end
		}
		end[i] = 0x00
	}
	return append(end, 0xff)
}

func stripColumnPrefix(column domain.Column, raw map[string][]byte) map[string][]byte {
	prefixLen := len(column) + 1
	out := make(map[string][]byte, len(raw))
	for k, v := range raw {
		if len(k) < prefixLen {
			continue
		}
		out[k[prefixLen:]] = v
	}
	return out
}

func (b *badgerBackend) RunInTransaction(ctx context.Context, policy ConflictPolicy, fn func(tx Transaction) error) error {
	root := newBufferedTx(b, nil, policy)
	if err := fn(root); err != nil {
		root.Discard()
		return err
	}
	return root.Commit()
}

func (b *badgerBackend) Close() error {
	return b.store.Close()
}

// entry is one buffered write inside a transaction's pending set.
type entry struct {
	deleted bool
	value   []byte
}

type key struct {
	column domain.Column
	key    string
}

// bufferedTx buffers writes in memory and only touches the backend at the
// root transaction's Commit, giving every nested Transaction() the ACID
// all-or-nothing semantics RunInTransaction promises.
type bufferedTx struct {
	backend *badgerBackend
	parent  *bufferedTx
	policy  ConflictPolicy

	mu      sync.Mutex
	pending map[key]entry
	order   []domain.WriteOperation
	state   txState
}

type txState int

const (
	txActive txState = iota
	txCommitted
	txDiscarded
)

func newBufferedTx(backend *badgerBackend, parent *bufferedTx, policy ConflictPolicy) *bufferedTx {
	return &bufferedTx{
		backend: backend,
		parent:  parent,
		policy:  policy,
		pending: make(map[key]entry),
	}
}

func (t *bufferedTx) lookupLocal(column domain.Column, k []byte) (entry, bool) {
	e, ok := t.pending[key{column, string(k)}]
	return e, ok
}

// resolve looks up a key by walking from this transaction up through its
// ancestors, falling back to the committed backend state.
func (t *bufferedTx) resolve(ctx context.Context, column domain.Column, k []byte) ([]byte, bool, error) {
	for cur := t; cur != nil; cur = cur.parent {
		if e, ok := cur.lookupLocal(column, k); ok {
			if e.deleted {
				return nil, false, nil
			}
			return e.value, true, nil
		}
	}
	v, err := t.backend.Get(ctx, column, domain.ReferenceBytesKey(k))
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

func (t *bufferedTx) Get(column domain.Column, k domain.ReferenceBytesKey) ([]byte, error) {
	v, ok, err := t.resolve(context.Background(), column, k.Bytes())
	if err != nil || !ok {
		return nil, err
	}
	return v, nil
}

func (t *bufferedTx) Exists(column domain.Column, k domain.ReferenceBytesKey) (bool, error) {
	_, ok, err := t.resolve(context.Background(), column, k.Bytes())
	return ok, err
}

func (t *bufferedTx) Set(column domain.Column, k domain.ReferenceBytesKey, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[key{column, string(k.Bytes())}] = entry{value: value}
	t.order = append(t.order, domain.WriteOperation{Column: column, Key: k, Kind: domain.OperationInsert, Value: value})
	return nil
}

func (t *bufferedTx) Delete(column domain.Column, k domain.ReferenceBytesKey) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[key{column, string(k.Bytes())}] = entry{deleted: true}
	t.order = append(t.order, domain.WriteOperation{Column: column, Key: k, Kind: domain.OperationRemove})
	return nil
}

func (t *bufferedTx) PrefixScan(column domain.Column, prefix []byte) (map[string][]byte, error) {
	base, err := t.backend.PrefixScan(context.Background(), column, prefix)
	if err != nil {
		return nil, err
	}
	result := make(map[string][]byte, len(base))
	for k, v := range base {
		result[k] = v
	}
	// Overlay pending writes from this transaction chain, innermost last.
	chain := t.ancestry()
	for i := len(chain) - 1; i >= 0; i-- {
		for k, e := range chain[i].pending {
			if k.column != column || len(k.key) < len(prefix) || k.key[:len(prefix)] != string(prefix) {
				continue
			}
			if e.deleted {
				delete(result, k.key)
			} else {
				result[k.key] = e.value
			}
		}
	}
	return result, nil
}

func (t *bufferedTx) SeekForward(column domain.Column, startKey []byte) ([]byte, []byte, bool, error) {
	scanned, err := t.PrefixScan(column, nil)
	if err != nil {
		return nil, nil, false, err
	}
	var best string
	found := false
	for k := range scanned {
		if k < string(startKey) {
			continue
		}
		if !found || k < best {
			best = k
			found = true
		}
	}
	if !found {
		return nil, nil, false, nil
	}
	return []byte(best), scanned[best], true, nil
}

func (t *bufferedTx) ancestry() []*bufferedTx {
	var chain []*bufferedTx
	for cur := t; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	return chain
}

func (t *bufferedTx) ChangeSet() domain.ChangeSet {
	return domain.ChangeSet{Operations: append([]domain.WriteOperation(nil), t.order...)}
}

func (t *bufferedTx) Begin(policy ConflictPolicy) Transaction {
	return newBufferedTx(t.backend, t, policy)
}

func (t *bufferedTx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != txActive {
		return fmt.Errorf("kvstore: transaction is not active")
	}

	if t.parent == nil {
		if err := t.flushToBackend(); err != nil {
			return err
		}
		t.state = txCommitted
		return nil
	}

	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()

	if t.policy == ConflictFail {
		for k := range t.pending {
			if _, collide := t.parent.pending[k]; collide {
				return fmt.Errorf("%w: column=%s key=%x", domain.ErrConflictingChanges, k.column, []byte(k.key))
			}
		}
	}

	for k, v := range t.pending {
		t.parent.pending[k] = v
	}
	t.parent.order = append(t.parent.order, t.order...)

	t.state = txCommitted
	return nil
}

func (t *bufferedTx) flushToBackend() error {
	ctx := context.Background()
	for k, e := range t.pending {
		if e.deleted {
			if err := t.backend.Delete(ctx, k.column, domain.ReferenceBytesKey(k.key)); err != nil {
				return err
			}
			continue
		}
		if err := t.backend.Set(ctx, k.column, domain.ReferenceBytesKey(k.key), e.value); err != nil {
			return err
		}
	}
	return nil
}

func (t *bufferedTx) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == txActive {
		t.state = txDiscarded
		t.pending = nil
		t.order = nil
	}
}
