// Package cache guarda en Redis el detalle de producto ya armado (precio vigente, imágenes y conteos).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/ports"
)

// keyProduct product:{id} -> JSON de dto.ProductResponse
const keyProduct = "crochet:product:%s"

var _ ports.ProductCache = (*ProductCache)(nil)

// ProductCache implementación de ports.ProductCache sobre Redis.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

// NewProductCache construye la cache. ttl <= 0 usa 5 minutos.
func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func (c *ProductCache) Get(ctx context.Context, id string) (*dto.ProductResponse, bool, error) {
	raw, err := c.rdb.Get(ctx, fmt.Sprintf(keyProduct, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var p dto.ProductResponse
	if err := json.Unmarshal(raw, &p); err != nil {
		// entrada corrupta: se descarta y se trata como miss
		_ = c.rdb.Del(ctx, fmt.Sprintf(keyProduct, id)).Err()
		return nil, false, nil
	}
	return &p, true, nil
}

func (c *ProductCache) Set(ctx context.Context, p *dto.ProductResponse) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	if err := c.rdb.Set(ctx, fmt.Sprintf(keyProduct, p.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *ProductCache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fmt.Sprintf(keyProduct, id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
