package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

// MemoryStore keeps every collection in process. It enforces the same
// uniqueness rules as the Mongo indexes and is used for local runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	products []models.Product
	orders   []models.Order
	banners  []models.Banner
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Ping(context.Context) error  { return nil }
func (m *MemoryStore) Close(context.Context) error { return nil }

// --- products ---

func (m *MemoryStore) CreateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.productIndex(p.ID) >= 0 {
		return ErrDuplicate
	}
	p.MongoID = primitive.NewObjectID()
	m.products = append(m.products, cloneProduct(*p))
	return nil
}

func (m *MemoryStore) ListProducts(context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, cloneProduct(p))
	}
	return out, nil
}

func (m *MemoryStore) GetProduct(_ context.Context, id string) (models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.productIndex(id)
	if i < 0 {
		return models.Product{}, ErrNotFound
	}
	return cloneProduct(m.products[i]), nil
}

func (m *MemoryStore) UpdateProduct(_ context.Context, p models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.productIndex(p.ID)
	if i < 0 {
		return ErrNotFound
	}
	p.MongoID = m.products[i].MongoID
	m.products[i] = cloneProduct(p)
	return nil
}

func (m *MemoryStore) DeleteProduct(_ context.Context, id string) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.productIndex(id)
	if i < 0 {
		return models.Product{}, ErrNotFound
	}
	p := m.products[i]
	m.products = append(m.products[:i], m.products[i+1:]...)
	return p, nil
}

func (m *MemoryStore) SearchProducts(_ context.Context, query string) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(query)
	out := []models.Product{}
	for _, p := range m.products {
		for _, field := range []string{p.Name, p.Category, p.Description} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, cloneProduct(p))
				break
			}
		}
	}
	return out, nil
}

func (m *MemoryStore) productIndex(id string) int {
	for i, p := range m.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func cloneProduct(p models.Product) models.Product {
	p.Colors = append([]string{}, p.Colors...)
	p.Sizes = append([]string{}, p.Sizes...)
	p.Images = append([]models.Image{}, p.Images...)
	return p
}

// --- orders ---

func (m *MemoryStore) CreateOrder(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.orders {
		if existing.OrderID == o.OrderID {
			return ErrDuplicate
		}
	}
	o.ID = primitive.NewObjectID()
	stored := *o
	stored.CartItems = append([]models.CartItem{}, o.CartItems...)
	m.orders = append(m.orders, stored)
	return nil
}

func (m *MemoryStore) OrderExists(_ context.Context, orderID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) ListOrders(context.Context) ([]models.Order, error) {
	m.mu.RLock()
	out := append([]models.Order{}, m.orders...)
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) GetOrder(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Order{}, ErrNotFound
}

func (m *MemoryStore) DeleteOrder(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.orders {
		if o.ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// --- banners ---

func (m *MemoryStore) CreateBanner(_ context.Context, b *models.Banner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = primitive.NewObjectID()
	m.banners = append(m.banners, *b)
	return nil
}

func (m *MemoryStore) ListBanners(context.Context) ([]models.Banner, error) {
	m.mu.RLock()
	out := append([]models.Banner{}, m.banners...)
	m.mu.RUnlock()
	sortBanners(out)
	return out, nil
}

func (m *MemoryStore) ActiveBanners(ctx context.Context, now time.Time) ([]models.Banner, error) {
	all, _ := m.ListBanners(ctx)
	out := []models.Banner{}
	for _, b := range all {
		if b.VisibleAt(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetBanner(_ context.Context, id primitive.ObjectID) (models.Banner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.banners {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Banner{}, ErrNotFound
}

func (m *MemoryStore) ToggleBanner(_ context.Context, id primitive.ObjectID) (models.Banner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.banners {
		if m.banners[i].ID == id {
			m.banners[i].Active = !m.banners[i].Active
			return m.banners[i], nil
		}
	}
	return models.Banner{}, ErrNotFound
}

func (m *MemoryStore) DeleteBanner(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.banners {
		if b.ID == id {
			m.banners = append(m.banners[:i], m.banners[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func sortBanners(b []models.Banner) {
	sort.SliceStable(b, func(i, j int) bool { return b[i].CreatedAt.After(b[j].CreatedAt) })
}
