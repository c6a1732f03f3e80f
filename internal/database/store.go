package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("document already exists")
	ErrInvalidID = errors.New("malformed identifier")
)

type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) (models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	OrderExists(ctx context.Context, orderID string) (bool, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	DeleteOrder(ctx context.Context, id primitive.ObjectID) error
}

type BannerStore interface {
	CreateBanner(ctx context.Context, b *models.Banner) error
	ListBanners(ctx context.Context) ([]models.Banner, error)
	ActiveBanners(ctx context.Context, now time.Time) ([]models.Banner, error)
	GetBanner(ctx context.Context, id primitive.ObjectID) (models.Banner, error)
	ToggleBanner(ctx context.Context, id primitive.ObjectID) (models.Banner, error)
	DeleteBanner(ctx context.Context, id primitive.ObjectID) error
}

// Store is everything the HTTP layer persists.
type Store interface {
	ProductStore
	OrderStore
	BannerStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ParseID validates a hex object id before it reaches a query.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(ErrInvalidID, "%q", hex)
	}
	return id, nil
}
