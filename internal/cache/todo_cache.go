package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	dom "github.com/birlikkoshan/todo-api/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyList    = "todo:list:"
	keyVersion = "todo:ver:"
)

// ErrStale is returned by SetList when the user's lists were invalidated after
// the caller read the version.
var ErrStale = errors.New("cache: list version changed")

// TodoCache caches per-user todo lists in Redis.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list or nil on a miss.
func (c *TodoCache) GetList(ctx context.Context, userID int64, f dom.ListFilter) ([]dom.Todo, error) {
	b, err := c.rdb.Get(ctx, listKey(userID, f.Status)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := make([]dom.Todo, 0)
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Version returns the user's list version. Read it before loading from the
// database and pass it to SetList.
func (c *TodoCache) Version(ctx context.Context, userID int64) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetList stores the list unless the user's lists were invalidated since ver was read.
func (c *TodoCache) SetList(ctx context.Context, userID int64, f dom.ListFilter, list []dom.Todo, ver int64) error {
	if list == nil {
		list = []dom.Todo{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	vkey := versionKey(userID)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != ver {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, listKey(userID, f.Status), b, c.ttl)
			return nil
		})
		return err
	}, vkey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

// InvalidateUser bumps the user's list version and drops every cached list (called on each write).
func (c *TodoCache) InvalidateUser(ctx context.Context, userID int64) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(userID))
		pipe.Del(ctx,
			listKey(userID, ""),
			listKey(userID, dom.StatusPending),
			listKey(userID, dom.StatusCompleted),
		)
		return nil
	})
	return err
}

func versionKey(userID int64) string {
	return keyVersion + strconv.FormatInt(userID, 10)
}

func listKey(userID int64, status dom.Status) string {
	s := string(status)
	if s == "" {
		s = "all"
	}
	return keyList + strconv.FormatInt(userID, 10) + ":" + s
}
