package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

const (
	ProductCacheTTL = 10 * time.Minute

	productListKey = "products:all"
	productGenKey  = "products:gen"
)

// Catalog caches the public product listing. A nil *Catalog or one without
// a client is a valid no-op cache.
//
// Every invalidation bumps a generation counter. A listing read from the
// store is only cached if the generation is still the one seen before the
// read, so a write racing a cache fill cannot leave a stale listing behind.
type Catalog struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCatalog(rdb *redis.Client) *Catalog {
	return &Catalog{rdb: rdb, ttl: ProductCacheTTL}
}

// Products returns the cached listing, or false on a miss.
func (c *Catalog) Products(ctx context.Context) ([]models.Product, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, productListKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("product cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false
	}
	return products, true
}

// Generation is taken before reading the store and handed back to
// SetProducts. It is -1 when the cache is unusable.
func (c *Catalog) Generation(ctx context.Context) int64 {
	if c == nil || c.rdb == nil {
		return -1
	}
	gen, err := c.rdb.Get(ctx, productGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		zap.L().Warn("product cache generation read failed", zap.Error(err))
		return -1
	}
	return gen
}

// SetProducts stores the listing unless an invalidation happened since gen
// was read.
func (c *Catalog) SetProducts(ctx context.Context, gen int64, products []models.Product) {
	if c == nil || c.rdb == nil || gen < 0 {
		return
	}
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, productGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, productListKey, data, c.ttl)
			return nil
		})
		return err
	}, productGenKey)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		zap.L().Warn("product cache write failed", zap.Error(err))
	}
}

// Invalidate drops the listing after any catalog change.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, productGenKey)
		pipe.Del(ctx, productListKey)
		return nil
	})
	if err != nil {
		zap.L().Warn("product cache invalidation failed", zap.Error(err))
	}
}
