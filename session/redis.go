package session

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "shs"
	// sessionSegment keeps session keys apart from other data sharing the prefix, such
	// as the limiter windows.
	sessionSegment = ":s:"
	scanBatch      = 256
)

// deleteIfUnchangedScript removes KEYS[1] only when it still holds ARGV[1]. Sweep uses it
// so a session rewritten between SCAN and DEL is left alone.
const deleteIfUnchangedScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var deleteIfUnchangedLua = redis.NewScript(deleteIfUnchangedScript)

// RedisStore is a Store backed by Redis. Entries carry a PX expiry matching the session
// so Redis evicts them even when no sweep runs.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a store keeping sessions under prefix+":s:". An empty prefix
// uses "shs"; a nil clock uses time.Now. Sweep and Len only visit that namespace.
func NewRedisStore(rdb redis.UniversalClient, prefix string, now func() time.Time) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	if now == nil {
		now = time.Now
	}
	return &RedisStore{redis: rdb, prefix: prefix, now: now}
}

func (s *RedisStore) key(hash [32]byte) string {
	return s.prefix + sessionSegment + hex.EncodeToString(hash[:])
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Save implements Store. Sessions already expired at save time are not written.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	ttl := sess.TTL(s.now())
	if ttl <= 0 {
		return nil
	}

	data, err := Encode(sess)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(sess.KeyHash), data, ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Take implements Store using GETDEL, which Redis executes atomically.
func (s *RedisStore) Take(ctx context.Context, key [32]byte) (*Session, error) {
	data, err := s.redis.GetDel(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}
	return decodeStored(data)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key [32]byte) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}
	return decodeStored(data)
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key [32]byte) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Sweep implements Store. Keys are visited with SCAN; expired or undecodable entries are
// deleted only if unchanged since they were read.
func (s *RedisStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	err := s.scan(ctx, func(keys []string) error {
		values, err := s.redis.MGet(ctx, keys...).Result()
		if err != nil {
			return unavailable(err)
		}
		for i, raw := range values {
			blob, ok := raw.(string)
			if !ok {
				continue
			}
			sess, decodeErr := Decode([]byte(blob))
			if decodeErr == nil && !sess.Expired(now) {
				continue
			}
			n, err := deleteIfUnchangedLua.Run(ctx, s.redis, []string{keys[i]}, blob).Int()
			if err != nil {
				return unavailable(err)
			}
			removed += n
		}
		return nil
	})
	return removed, err
}

// Len implements Store. SCAN can return a key twice while Redis rehashes, so the count
// is approximate under concurrent writes.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	count := 0
	err := s.scan(ctx, func(keys []string) error {
		count += len(keys)
		return nil
	})
	return count, err
}

func (s *RedisStore) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix+sessionSegment+"*", scanBatch).Result()
		if err != nil {
			return unavailable(err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func decodeStored(data []byte) (*Session, error) {
	sess, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return sess, nil
}
