package store

import (
	"context"
	"sort"
	"strings"

	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"github.com/puzpuzpuz/xsync/v4"
)

const keySep = "\x00"

type memRecord struct {
	value   []byte
	version int64
}

// MemoryRepositoryImpl keeps the state in process memory.
type MemoryRepositoryImpl struct {
	records *xsync.Map[string, memRecord]
}

// NewMemoryRepository cria um store em memória.
func NewMemoryRepository() repository.StateRepository {
	return &MemoryRepositoryImpl{records: xsync.NewMap[string, memRecord]()}
}

func memKey(collection, key string) string {
	return collection + keySep + key
}

func (r *MemoryRepositoryImpl) Get(ctx context.Context, collection, key string) (repository.Record, error) {
	rec, ok := r.records.Load(memKey(collection, key))
	if !ok {
		return repository.Record{}, types.ErrNotFound
	}
	return repository.Record{Key: key, Value: cloneBytes(rec.value), Version: rec.version}, nil
}

func (r *MemoryRepositoryImpl) Put(ctx context.Context, collection, key string, value []byte) error {
	v := cloneBytes(value)
	r.records.Compute(memKey(collection, key), func(old memRecord, loaded bool) (memRecord, xsync.ComputeOp) {
		return memRecord{value: v, version: old.version + 1}, xsync.UpdateOp
	})
	return nil
}

func (r *MemoryRepositoryImpl) Delete(ctx context.Context, collection, key string) error {
	r.records.Delete(memKey(collection, key))
	return nil
}

func (r *MemoryRepositoryImpl) DeleteCollection(ctx context.Context, collection string) error {
	prefix := collection + keySep
	r.records.Range(func(k string, _ memRecord) bool {
		if strings.HasPrefix(k, prefix) {
			r.records.Delete(k)
		}
		return true
	})
	return nil
}

func (r *MemoryRepositoryImpl) List(ctx context.Context, collection string) ([]repository.Record, error) {
	prefix := collection + keySep
	out := []repository.Record{}
	r.records.Range(func(k string, v memRecord) bool {
		if strings.HasPrefix(k, prefix) {
			out = append(out, repository.Record{
				Key:     strings.TrimPrefix(k, prefix),
				Value:   cloneBytes(v.value),
				Version: v.version,
			})
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *MemoryRepositoryImpl) CompareAndSwap(ctx context.Context, collection, key string, expected int64, value []byte) (bool, error) {
	v := cloneBytes(value)
	swapped := false
	r.records.Compute(memKey(collection, key), func(old memRecord, loaded bool) (memRecord, xsync.ComputeOp) {
		current := int64(0)
		if loaded {
			current = old.version
		}
		if current != expected {
			return old, xsync.CancelOp
		}
		swapped = true
		return memRecord{value: v, version: current + 1}, xsync.UpdateOp
	})
	return swapped, nil
}

func (r *MemoryRepositoryImpl) Close() error {
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
