package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return m, rdb
}

func TestCatalogWithoutRedisIsNoop(t *testing.T) {
	ctx := context.Background()
	for _, c := range []*Catalog{nil, NewCatalog(nil)} {
		c.SetProducts(ctx, c.Generation(ctx), []models.Product{{ID: "p1"}})
		if _, ok := c.Products(ctx); ok {
			t.Fatal("expected a miss without a redis client")
		}
		c.Invalidate(ctx)
	}
}

func TestCatalogCachesListing(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	c := NewCatalog(rdb)

	if _, ok := c.Products(ctx); ok {
		t.Fatal("empty cache reported a hit")
	}
	c.SetProducts(ctx, c.Generation(ctx), []models.Product{{ID: "p1"}, {ID: "p2"}})
	products, ok := c.Products(ctx)
	if !ok || len(products) != 2 {
		t.Fatalf("Products() = %v, %v", products, ok)
	}

	c.Invalidate(ctx)
	if _, ok := c.Products(ctx); ok {
		t.Error("listing survived invalidation")
	}
}

func TestCatalogDropsFillRacingAWrite(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	c := NewCatalog(rdb)

	gen := c.Generation(ctx)
	stale := []models.Product{{ID: "p1"}, {ID: "p2"}}
	// a delete lands between the store read and the cache fill
	c.Invalidate(ctx)
	c.SetProducts(ctx, gen, stale)

	if products, ok := c.Products(ctx); ok {
		t.Fatalf("stale listing cached: %v", products)
	}

	c.SetProducts(ctx, c.Generation(ctx), stale[:1])
	if products, ok := c.Products(ctx); !ok || len(products) != 1 {
		t.Errorf("fresh fill not cached: %v, %v", products, ok)
	}
}

func TestIncrementRateLimitKeepsFirstWindow(t *testing.T) {
	m, rdb := newRedis(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		n, err := IncrementRateLimit(ctx, rdb, "order_requests:1.2.3.4", time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if n != int64(i) {
			t.Fatalf("count = %d, want %d", n, i)
		}
		m.FastForward(20 * time.Second)
	}
	// three requests 20s apart: the first window has 0s left
	if m.Exists("order_requests:1.2.3.4") {
		t.Errorf("window was extended, ttl = %v", m.TTL("order_requests:1.2.3.4"))
	}

	n, err := IncrementRateLimit(ctx, rdb, "order_requests:1.2.3.4", time.Minute)
	if err != nil || n != 1 {
		t.Errorf("new window count = %d, %v; want 1", n, err)
	}
}

func TestConnectWithoutHost(t *testing.T) {
	rdb, err := Connect(context.Background(), "", "")
	if err != nil || rdb != nil {
		t.Fatalf("Connect(\"\") = %v, %v; want nil, nil", rdb, err)
	}
}
