package state

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"mosaicchain/storage"
)

// Manager persists keyed records on top of a storage.Database. Writes are
// staged in an overlay until Commit so a failed operation can be discarded
// without leaving partial state behind.
//
// Manager is safe for concurrent use, but callers are expected to serialise
// whole operations themselves.
type Manager struct {
	mu      sync.RWMutex
	db      storage.Database
	pending map[string]*pendingWrite
}

type pendingWrite struct {
	value   []byte
	deleted bool
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db, pending: make(map[string]*pendingWrite)}
}

// Commit flushes staged writes to the database in a single batch.
func (m *Manager) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil
	}
	batch := m.db.NewBatch()
	keys := make([]string, 0, len(m.pending))
	for k := range m.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w := m.pending[k]
		if w.deleted {
			batch.Delete([]byte(k))
			continue
		}
		batch.Put([]byte(k), w.value)
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("state: commit: %w", err)
	}
	m.pending = make(map[string]*pendingWrite)
	return nil
}

// Discard drops every staged write.
func (m *Manager) Discard() {
	m.mu.Lock()
	m.pending = make(map[string]*pendingWrite)
	m.mu.Unlock()
}

// Dirty reports the number of staged writes.
func (m *Manager) Dirty() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pending)
}

func (m *Manager) rawGet(key []byte) ([]byte, bool, error) {
	m.mu.RLock()
	w, ok := m.pending[string(key)]
	m.mu.RUnlock()
	if ok {
		if w.deleted {
			return nil, false, nil
		}
		return w.value, true, nil
	}
	value, err := m.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (m *Manager) rawPut(key []byte, value []byte) {
	m.mu.Lock()
	m.pending[string(key)] = &pendingWrite{value: append([]byte(nil), value...)}
	m.mu.Unlock()
}

func (m *Manager) rawDelete(key []byte) {
	m.mu.Lock()
	m.pending[string(key)] = &pendingWrite{deleted: true}
	m.mu.Unlock()
}

// keys merges persisted and staged keys under prefix, ascending.
func (m *Manager) keys(prefix []byte) ([][]byte, error) {
	stored, err := m.db.Keys(prefix)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(stored))
	for _, k := range stored {
		set[string(k)] = struct{}{}
	}
	m.mu.RLock()
	for k, w := range m.pending {
		if !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		if w.deleted {
			delete(set, k)
		} else {
			set[k] = struct{}{}
		}
	}
	m.mu.RUnlock()
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	result := make([][]byte, len(out))
	for i, k := range out {
		result[i] = []byte(k)
	}
	return result, nil
}

// KVPut stores the RLP encoding of value under key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.rawPut(key, encoded)
	return nil
}

// KVGet decodes the value stored under key into out. The boolean reports
// whether the key existed.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, ok, err := m.rawGet(key)
	if err != nil || !ok {
		return false, err
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes key.
func (m *Manager) KVDelete(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	m.rawDelete(key)
	return nil
}

// KVPutRaw stores an opaque value, used for JSON parameter blobs.
func (m *Manager) KVPutRaw(key []byte, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	m.rawPut(key, value)
	return nil
}

// KVGetRaw loads an opaque value.
func (m *Manager) KVGetRaw(key []byte) ([]byte, bool, error) {
	if len(key) == 0 {
		return nil, false, fmt.Errorf("kv: key must not be empty")
	}
	return m.rawGet(key)
}
