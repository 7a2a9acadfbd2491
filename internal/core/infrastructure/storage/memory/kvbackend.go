package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/weisyn/v1/internal/core/eutxo/domain"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/kvstore"
)

// kvBackend is a test-oriented, fully in-process implementation of
// kvstore.Backend: a plain guarded map per column, no persistence. It
// supports the whole Backend surface (including the ordering guarantees
// the historical overlay's forward seek relies on) so it can stand in for
// the badger-backed implementation in unit tests.
type kvBackend struct {
	mu   sync.RWMutex
	data map[domain.Column]map[string][]byte
}

// NewKVBackend creates an empty in-memory column-keyed Backend.
func NewKVBackend() kvstore.Backend {
	return &kvBackend{data: make(map[domain.Column]map[string][]byte)}
}

func (b *kvBackend) columnMap(column domain.Column) map[string][]byte {
	m, ok := b.data[column]
	if !ok {
		m = make(map[string][]byte)
		b.data[column] = m
	}
	return m
}

func (b *kvBackend) Get(_ context.Context, column domain.Column, key domain.ReferenceBytesKey) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[column][string(key.Bytes())]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (b *kvBackend) Set(_ context.Context, column domain.Column, key domain.ReferenceBytesKey, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.columnMap(column)[string(key.Bytes())] = append([]byte(nil), value...)
	return nil
}

func (b *kvBackend) Delete(_ context.Context, column domain.Column, key domain.ReferenceBytesKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.columnMap(column), string(key.Bytes()))
	return nil
}

func (b *kvBackend) Exists(_ context.Context, column domain.Column, key domain.ReferenceBytesKey) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.data[column][string(key.Bytes())]
	return ok, nil
}

func (b *kvBackend) PrefixScan(_ context.Context, column domain.Column, prefix []byte) (map[string][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string][]byte)
	for k, v := range b.data[column] {
		if len(k) < len(prefix) || k[:len(prefix)] != string(prefix) {
			continue
		}
		out[k] = append([]byte(nil), v...)
	}
	return out, nil
}

func (b *kvBackend) SeekForward(_ context.Context, column domain.Column, startKey []byte) ([]byte, []byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.data[column]))
	for k := range b.data[column] {
		if k >= string(startKey) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, nil, false, nil
	}
	sort.Strings(keys)
	best := keys[0]
	return []byte(best), append([]byte(nil), b.data[column][best]...), true, nil
}

func (b *kvBackend) RunInTransaction(ctx context.Context, policy kvstore.ConflictPolicy, fn func(tx kvstore.Transaction) error) error {
	root := &memTx{backend: b, policy: policy, pending: make(map[memKey]memEntry)}
	if err := fn(root); err != nil {
		root.Discard()
		return err
	}
	return root.Commit()
}

func (b *kvBackend) Close() error { return nil }

type memKey struct {
	column domain.Column
	key    string
}

type memEntry struct {
	deleted bool
	value   []byte
}

// memTx mirrors kvstore's badger-backed bufferedTx, against the in-memory
// backend instead of a BadgerStore.
type memTx struct {
	backend *kvBackend
	parent  *memTx
	policy  kvstore.ConflictPolicy

	pending map[memKey]memEntry
	order   []domain.WriteOperation
	done    bool
}

func (t *memTx) ancestry() []*memTx {
	var chain []*memTx
	for cur := t; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	return chain
}

func (t *memTx) Get(column domain.Column, key domain.ReferenceBytesKey) ([]byte, error) {
	for _, cur := range t.ancestry() {
		if e, ok := cur.pending[memKey{column, string(key.Bytes())}]; ok {
			if e.deleted {
				return nil, nil
			}
			return e.value, nil
		}
	}
	return t.backend.Get(context.Background(), column, key)
}

func (t *memTx) Exists(column domain.Column, key domain.ReferenceBytesKey) (bool, error) {
	v, err := t.Get(column, key)
	return v != nil, err
}

func (t *memTx) Set(column domain.Column, key domain.ReferenceBytesKey, value []byte) error {
	t.pending[memKey{column, string(key.Bytes())}] = memEntry{value: append([]byte(nil), value...)}
	t.order = append(t.order, domain.WriteOperation{Column: column, Key: key, Kind: domain.OperationInsert, Value: value})
	return nil
}

func (t *memTx) Delete(column domain.Column, key domain.ReferenceBytesKey) error {
	t.pending[memKey{column, string(key.Bytes())}] = memEntry{deleted: true}
	t.order = append(t.order, domain.WriteOperation{Column: column, Key: key, Kind: domain.OperationRemove})
	return nil
}

func (t *memTx) PrefixScan(column domain.Column, prefix []byte) (map[string][]byte, error) {
	base, err := t.backend.PrefixScan(context.Background(), column, prefix)
	if err != nil {
		return nil, err
	}
	chain := t.ancestry()
	for i := len(chain) - 1; i >= 0; i-- {
		for k, e := range chain[i].pending {
			if k.column != column || len(k.key) < len(prefix) || k.key[:len(prefix)] != string(prefix) {
				continue
			}
			if e.deleted {
				delete(base, k.key)
			} else {
				base[k.key] = e.value
			}
		}
	}
	return base, nil
}

func (t *memTx) SeekForward(column domain.Column, startKey []byte) ([]byte, []byte, bool, error) {
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

func (t *memTx) ChangeSet() domain.ChangeSet {
	return domain.ChangeSet{Operations: append([]domain.WriteOperation(nil), t.order...)}
}

func (t *memTx) Begin(policy kvstore.ConflictPolicy) kvstore.Transaction {
	return &memTx{backend: t.backend, parent: t, policy: policy, pending: make(map[memKey]memEntry)}
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true

	if t.parent == nil {
		t.backend.mu.Lock()
		defer t.backend.mu.Unlock()
		for k, e := range t.pending {
			if e.deleted {
				delete(t.backend.columnMap(k.column), k.key)
				continue
			}
			t.backend.columnMap(k.column)[k.key] = e.value
		}
		return nil
	}

	if t.policy == kvstore.ConflictFail {
		for k := range t.pending {
			if _, collide := t.parent.pending[k]; collide {
				return domain.ErrConflictingChanges
			}
		}
	}
	for k, v := range t.pending {
		t.parent.pending[k] = v
	}
	t.parent.order = append(t.parent.order, t.order...)
	return nil
}

func (t *memTx) Discard() {
	t.done = true
	t.pending = nil
	t.order = nil
}
