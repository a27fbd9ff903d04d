package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"study-quiz-service/internal/app"
	"study-quiz-service/internal/domain"
)

// StoreCache decorates an app.QuizStore with a read-through Redis cache for
// full quiz documents. Cache failures are swallowed; the underlying store is
// always the source of truth.
type StoreCache struct {
	next   app.QuizStore
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewStoreCache wraps next with a cache. ttl is the base expiry; a jitter of
// up to 10% is added so hot keys do not expire in lockstep.
func NewStoreCache(next app.QuizStore, client *redis.Client, ttl time.Duration) *StoreCache {
	return &StoreCache{next: next, client: client, ttl: ttl}
}

func quizKey(name string) string {
	return fmt.Sprintf("quiz:%s:doc", name)
}

func (c *StoreCache) ttlWithJitter() time.Duration {
	jitter := time.Duration(rand.Int63n(int64(c.ttl) / 10))
	return c.ttl + jitter
}

func (c *StoreCache) List(ctx context.Context) ([]domain.QuizInfo, error) {
	return c.next.List(ctx)
}

func (c *StoreCache) Get(ctx context.Context, name string) (domain.Quiz, error) {
	key := quizKey(name)
	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var quiz domain.Quiz
		if err := json.Unmarshal(data, &quiz); err == nil {
			return quiz, nil
		}
		// Corrupt entry, drop it and fall through to the store.
		c.client.Del(ctx, key)
	}

	// Collapse concurrent misses for the same quiz into one store read.
	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		quiz, err := c.next.Get(ctx, name)
		if err != nil {
			return domain.Quiz{}, err
		}
		if data, err := json.Marshal(quiz); err == nil {
			c.client.Set(ctx, key, data, c.ttlWithJitter())
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return value.(domain.Quiz), nil
}

func (c *StoreCache) Insert(ctx context.Context, quiz domain.Quiz) error {
	return c.next.Insert(ctx, quiz)
}

func (c *StoreCache) UpdateTopics(ctx context.Context, name string, topics []domain.Topic, updatedAt time.Time) error {
	if err := c.next.UpdateTopics(ctx, name, topics, updatedAt); err != nil {
		return err
	}
	c.client.Del(ctx, quizKey(name))
	return nil
}

func (c *StoreCache) Delete(ctx context.Context, name string) error {
	if err := c.next.Delete(ctx, name); err != nil {
		return err
	}
	c.client.Del(ctx, quizKey(name))
	return nil
}

func (c *StoreCache) Count(ctx context.Context) (int64, error) {
	return c.next.Count(ctx)
}
