package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"book-catalog-service/internal/models"
)

// BookCache is a read-through cache in front of the books collection.
// A nil *BookCache is a no-op, so the service runs without Redis configured.
type BookCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewBookCache(addr, password string, db int, ttl time.Duration) *BookCache {
	if addr == "" {
		return nil
	}
	return &BookCache{
		Client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     10,
			MinIdleConns: 5,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
		TTL: ttl,
	}
}

func (c *BookCache) Connect(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	log.Info().Msg("Redis connected")
	return nil
}

func bookKey(id string) string {
	return "book:" + id
}

func (c *BookCache) GetBook(ctx context.Context, id string) (*models.Book, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.Client.Get(ctx, bookKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("id", id).Msg("cache read failed")
		}
		return nil, false
	}
	var book models.Book
	if err := json.Unmarshal(raw, &book); err != nil {
		return nil, false
	}
	return &book, true
}

func (c *BookCache) SetBook(ctx context.Context, id string, book *models.Book) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(book)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, bookKey(id), raw, c.TTL).Err(); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("cache write failed")
	}
}

func (c *BookCache) InvalidateBook(ctx context.Context, id string) {
	if c == nil {
		return
	}
	if err := c.Client.Del(ctx, bookKey(id)).Err(); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("cache invalidate failed")
	}
}

func (c *BookCache) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
