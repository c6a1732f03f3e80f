package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

func TestMemoryProductsUniqueID(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryStore()

	if err := db.CreateProduct(ctx, &models.Product{ID: "p-1", Name: "Scarf"}); err != nil {
		t.Fatal(err)
	}
	if err := db.CreateProduct(ctx, &models.Product{ID: "p-1", Name: "Other"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	products, _ := db.ListProducts(ctx)
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}

	deleted, err := db.DeleteProduct(ctx, "p-1")
	if err != nil || deleted.Name != "Scarf" {
		t.Fatalf("DeleteProduct = %+v, %v", deleted, err)
	}
	if _, err := db.DeleteProduct(ctx, "p-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemoryProductCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryStore()
	db.CreateProduct(ctx, &models.Product{ID: "p-1", Colors: []string{"red"}})

	p, _ := db.GetProduct(ctx, "p-1")
	p.Colors[0] = "blue"

	again, _ := db.GetProduct(ctx, "p-1")
	if again.Colors[0] != "red" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestMemoryOrders(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"A", "B", "C"} {
		o := &models.Order{OrderID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := db.CreateOrder(ctx, o); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.CreateOrder(ctx, &models.Order{OrderID: "B"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if ok, _ := db.OrderExists(ctx, "C"); !ok {
		t.Error("OrderExists(C) = false")
	}

	orders, _ := db.ListOrders(ctx)
	if len(orders) != 3 || orders[0].OrderID != "C" || orders[2].OrderID != "A" {
		t.Fatalf("orders not newest first: %v", orders)
	}

	if err := db.DeleteOrder(ctx, orders[1].ID); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetOrder(ctx, orders[1].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted order still found: %v", err)
	}
}

func TestMemoryBanners(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryStore()
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC)

	live := &models.Banner{Active: true, CreatedAt: past}
	expired := &models.Banner{Active: true, EndDate: &past, CreatedAt: past}
	upcoming := &models.Banner{Active: true, StartDate: &future, CreatedAt: past}
	for _, b := range []*models.Banner{live, expired, upcoming} {
		db.CreateBanner(ctx, b)
	}

	active, _ := db.ActiveBanners(ctx, time.Now())
	if len(active) != 1 || active[0].ID != live.ID {
		t.Fatalf("active = %v", active)
	}

	toggled, err := db.ToggleBanner(ctx, live.ID)
	if err != nil || toggled.Active {
		t.Fatalf("toggle = %+v, %v", toggled, err)
	}
	if active, _ := db.ActiveBanners(ctx, time.Now()); len(active) != 0 {
		t.Error("inactive banner is still public")
	}
	toggled, _ = db.ToggleBanner(ctx, live.ID)
	if !toggled.Active {
		t.Error("second toggle should restore the banner")
	}
}

func TestParseID(t *testing.T) {
	if _, err := ParseID("not-an-id"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := ParseID("65f1c0ffee0000000000abcd"); err != nil {
		t.Fatalf("valid id rejected: %v", err)
	}
}
