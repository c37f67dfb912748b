package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	fieldValue   = "v"
	fieldVersion = "ver"
)

var errVersionMismatch = errors.New("version mismatch")

// RedisRepositoryImpl stores each record as a hash {v, ver} and keeps a set
// of keys per collection for listing and bulk deletes.
type RedisRepositoryImpl struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisRepository connects to Redis and checks the connection.
func NewRedisRepository(ctx context.Context, cfg types.StateConfig, logger *zap.Logger) (repository.StateRepository, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Info("Connected to Redis",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB))

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "billing"
	}
	return &RedisRepositoryImpl{client: rdb, prefix: prefix, logger: logger}, nil
}

func (r *RedisRepositoryImpl) recordKey(collection, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, collection, key)
}

func (r *RedisRepositoryImpl) indexKey(collection string) string {
	return fmt.Sprintf("%s:%s", r.prefix, collection) + ":__keys"
}

func (r *RedisRepositoryImpl) Get(ctx context.Context, collection, key string) (repository.Record, error) {
	vals, err := r.client.HMGet(ctx, r.recordKey(collection, key), fieldValue, fieldVersion).Result()
	if err != nil {
		return repository.Record{}, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return decodeHash(key, vals)
}

func decodeHash(key string, vals []interface{}) (repository.Record, error) {
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return repository.Record{}, types.ErrNotFound
	}
	value, _ := vals[0].(string)
	verStr, _ := vals[1].(string)
	var version int64
	if _, err := fmt.Sscan(verStr, &version); err != nil {
		return repository.Record{}, fmt.Errorf("corrupt version for %s: %w", key, err)
	}
	return repository.Record{Key: key, Value: []byte(value), Version: version}, nil
}

func (r *RedisRepositoryImpl) Put(ctx context.Context, collection, key string, value []byte) error {
	rk := r.recordKey(collection, key)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, rk, fieldValue, nonNil(value))
		p.HIncrBy(ctx, rk, fieldVersion, 1)
		p.SAdd(ctx, r.indexKey(collection), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, key, err)
	}
	return nil
}

func (r *RedisRepositoryImpl) Delete(ctx context.Context, collection, key string) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, r.recordKey(collection, key))
		p.SRem(ctx, r.indexKey(collection), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return nil
}

func (r *RedisRepositoryImpl) DeleteCollection(ctx context.Context, collection string) error {
	keys, err := r.client.SMembers(ctx, r.indexKey(collection)).Result()
	if err != nil {
		return fmt.Errorf("delete collection %s: %w", collection, err)
	}
	toDelete := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		toDelete = append(toDelete, r.recordKey(collection, k))
	}
	toDelete = append(toDelete, r.indexKey(collection))
	if err := r.client.Del(ctx, toDelete...).Err(); err != nil {
		return fmt.Errorf("delete collection %s: %w", collection, err)
	}
	return nil
}

func (r *RedisRepositoryImpl) List(ctx context.Context, collection string) ([]repository.Record, error) {
	keys, err := r.client.SMembers(ctx, r.indexKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	sort.Strings(keys)

	cmds := make([]*redis.SliceCmd, len(keys))
	_, err = r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = p.HMGet(ctx, r.recordKey(collection, k), fieldValue, fieldVersion)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	out := make([]repository.Record, 0, len(keys))
	for i, k := range keys {
		rec, err := decodeHash(k, cmds[i].Val())
		if errors.Is(err, types.ErrNotFound) {
			// deleted between SMEMBERS and HMGET
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RedisRepositoryImpl) CompareAndSwap(ctx context.Context, collection, key string, expected int64, value []byte) (bool, error) {
	rk := r.recordKey(collection, key)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, rk, fieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expected {
			return errVersionMismatch
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, rk, fieldValue, nonNil(value), fieldVersion, expected+1)
			p.SAdd(ctx, r.indexKey(collection), key)
			return nil
		})
		return err
	}, rk)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errVersionMismatch), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("compare and swap %s/%s: %w", collection, key, err)
	}
}

func (r *RedisRepositoryImpl) Close() error {
	return r.client.Close()
}
