package upload

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	pendingKey     = "re:uploads:pending"
	ownerKeyPrefix = "re:uploads:owner:"
)

type ObjectRemover interface {
	Remove(ctx context.Context, key string) error
}

type URLResolver interface {
	KeyFromURL(raw string) (string, bool)
}

// Tracker remembers uploads that no submitted case references yet, so the
// maintenance worker can delete the ones that were abandoned.
type Tracker struct {
	redis    *redis.Client
	objects  ObjectRemover
	resolver URLResolver
	maxAge   time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewTracker(client *redis.Client, objects ObjectRemover, resolver URLResolver, maxAge time.Duration, log zerolog.Logger) *Tracker {
	return &Tracker{
		redis:    client,
		objects:  objects,
		resolver: resolver,
		maxAge:   maxAge,
		now:      time.Now,
		log:      log,
	}
}

func ownerKey(owner string) string {
	return ownerKeyPrefix + owner
}

// Track records key as pending and owned by the session owner. Only the
// owner can later touch or release it.
func (t *Tracker) Track(ctx context.Context, owner, key string) error {
	_, err := t.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, pendingKey, redis.Z{
			Score:  float64(t.now().UnixMilli()),
			Member: key,
		})
		pipe.SAdd(ctx, ownerKey(owner), key)
		pipe.Expire(ctx, ownerKey(owner), t.maxAge)
		return nil
	})
	return err
}

// Touch restarts the orphan clock of the owner's pending uploads behind urls,
// so a draft that is still being edited keeps its photos.
func (t *Tracker) Touch(ctx context.Context, owner string, urls ...string) error {
	keys, err := t.owned(ctx, owner, urls)
	if err != nil || len(keys) == 0 {
		return err
	}

	score := float64(t.now().UnixMilli())
	_, err = t.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.ZAddXX(ctx, pendingKey, redis.Z{Score: score, Member: key})
		}
		pipe.Expire(ctx, ownerKey(owner), t.maxAge)
		return nil
	})
	return err
}

// Release marks the owner's images behind urls as referenced by a case.
// URLs the owner did not upload are ignored.
func (t *Tracker) Release(ctx context.Context, owner string, urls ...string) error {
	keys, err := t.owned(ctx, owner, urls)
	if err != nil || len(keys) == 0 {
		return err
	}

	members := make([]any, len(keys))
	for i, key := range keys {
		members[i] = key
	}
	_, err = t.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, pendingKey, members...)
		pipe.SRem(ctx, ownerKey(owner), members...)
		return nil
	})
	return err
}

func (t *Tracker) owned(ctx context.Context, owner string, urls []string) ([]string, error) {
	if owner == "" {
		return nil, nil
	}

	candidates := make([]any, 0, len(urls))
	for _, u := range urls {
		if key, ok := t.resolver.KeyFromURL(u); ok {
			candidates = append(candidates, key)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	member, err := t.redis.SMIsMember(ctx, ownerKey(owner), candidates...).Result()
	if err != nil {
		return nil, fmt.Errorf("check upload owner: %w", err)
	}
	keys := make([]string, 0, len(candidates))
	for i, ok := range member {
		if ok {
			keys = append(keys, candidates[i].(string))
		}
	}
	return keys, nil
}

// Sweep deletes objects that stayed pending longer than maxAge.
func (t *Tracker) Sweep(ctx context.Context) (int64, error) {
	cutoff := t.now().Add(-t.maxAge).UnixMilli()
	keys, err := t.redis.ZRangeByScore(ctx, pendingKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(cutoff, 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("list pending uploads: %w", err)
	}

	var removed int64
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := t.objects.Remove(ctx, key); err != nil {
			t.log.Warn().Err(err).Str("key", key).Msg("remove orphaned upload failed")
			continue
		}
		if err := t.redis.ZRem(ctx, pendingKey, key).Err(); err != nil {
			return removed, fmt.Errorf("forget upload %s: %w", key, err)
		}
		removed++
	}
	return removed, nil
}
