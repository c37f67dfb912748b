package repository

import "context"

// Collections of the persisted state.
const (
	CollectionAggregateCache = "AggregateCache"
	CollectionProjectCatalog = "ProjectCatalog"
	CollectionAlertRule      = "AlertRule"
	CollectionSubscription   = "Subscription"
	CollectionDedupState     = "NotificationDedupState"
)

// Record is a stored value with its version. Versions start at 1 and grow on every write.
type Record struct {
	Key     string
	Value   []byte
	Version int64
}

// StateRepository is the key/value store behind caches, rules, subscriptions
// and the notification dedup state.
type StateRepository interface {
	// Get returns types.ErrNotFound when the key is absent.
	Get(ctx context.Context, collection, key string) (Record, error)
	Put(ctx context.Context, collection, key string, value []byte) error
	Delete(ctx context.Context, collection, key string) error
	DeleteCollection(ctx context.Context, collection string) error
	// List returns every record of a collection ordered by key.
	List(ctx context.Context, collection string) ([]Record, error)
	// CompareAndSwap writes value only if the stored version equals expected.
	// An expected version of 0 means the key must not exist yet.
	CompareAndSwap(ctx context.Context, collection, key string, expected int64, value []byte) (bool, error)
	Close() error
}
