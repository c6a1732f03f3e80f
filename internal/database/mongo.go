package database

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

const (
	productsCollection = "products"
	ordersCollection   = "orders"
	bannersCollection  = "banners"
)

type MongoStore struct {
	client   *mongo.Client
	products *mongo.Collection
	orders   *mongo.Collection
	banners  *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:   client,
		products: db.Collection(productsCollection),
		orders:   db.Collection(ordersCollection),
		banners:  db.Collection(bannersCollection),
	}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return errors.Wrap(err, "products.id index")
	}
	if _, err := s.orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return errors.Wrap(err, "orders.orderId index")
	}
	if _, err := s.banners.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "active", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return errors.Wrap(err, "banners.active index")
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func classify(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return errors.Wrap(err, op)
	}
}

// --- products ---

func (s *MongoStore) CreateProduct(ctx context.Context, p *models.Product) error {
	res, err := s.products.InsertOne(ctx, p)
	if err != nil {
		return classify(err, "insert product")
	}
	p.MongoID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	return findAll[models.Product](ctx, s.products, bson.M{}, nil)
}

func (s *MongoStore) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := s.products.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	return p, classify(err, "find product")
}

func (s *MongoStore) UpdateProduct(ctx context.Context, p models.Product) error {
	p.MongoID = primitive.NilObjectID
	res, err := s.products.UpdateOne(ctx, bson.M{"id": p.ID}, bson.M{"$set": p})
	if err != nil {
		return classify(err, "update product")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteProduct(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := s.products.FindOneAndDelete(ctx, bson.M{"id": id}).Decode(&p)
	return p, classify(err, "delete product")
}

func (s *MongoStore) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"category": pattern},
		bson.M{"description": pattern},
	}}
	return findAll[models.Product](ctx, s.products, filter, nil)
}

// --- orders ---

func (s *MongoStore) CreateOrder(ctx context.Context, o *models.Order) error {
	res, err := s.orders.InsertOne(ctx, o)
	if err != nil {
		return classify(err, "insert order")
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) OrderExists(ctx context.Context, orderID string) (bool, error) {
	n, err := s.orders.CountDocuments(ctx, bson.M{"orderId": orderID}, options.Count().SetLimit(1))
	if err != nil {
		return false, classify(err, "count orders")
	}
	return n > 0, nil
}

func (s *MongoStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	return findAll[models.Order](ctx, s.orders, bson.M{}, newestFirst())
}

func (s *MongoStore) GetOrder(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var o models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	return o, classify(err, "find order")
}

func (s *MongoStore) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.orders.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(err, "delete order")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- banners ---

func (s *MongoStore) CreateBanner(ctx context.Context, b *models.Banner) error {
	res, err := s.banners.InsertOne(ctx, b)
	if err != nil {
		return classify(err, "insert banner")
	}
	b.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoStore) ListBanners(ctx context.Context) ([]models.Banner, error) {
	return findAll[models.Banner](ctx, s.banners, bson.M{}, newestFirst())
}

func (s *MongoStore) ActiveBanners(ctx context.Context, now time.Time) ([]models.Banner, error) {
	filter := bson.M{
		"active": true,
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"startDate": bson.M{"$exists": false}},
				bson.M{"startDate": nil},
				bson.M{"startDate": bson.M{"$lte": now}},
			}},
			bson.M{"$or": bson.A{
				bson.M{"endDate": bson.M{"$exists": false}},
				bson.M{"endDate": nil},
				bson.M{"endDate": bson.M{"$gte": now}},
			}},
		},
	}
	return findAll[models.Banner](ctx, s.banners, filter, newestFirst())
}

func (s *MongoStore) GetBanner(ctx context.Context, id primitive.ObjectID) (models.Banner, error) {
	var b models.Banner
	err := s.banners.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	return b, classify(err, "find banner")
}

// ToggleBanner flips active server-side so concurrent toggles do not race.
func (s *MongoStore) ToggleBanner(ctx context.Context, id primitive.ObjectID) (models.Banner, error) {
	var b models.Banner
	update := mongo.Pipeline{{{Key: "$set", Value: bson.M{"active": bson.M{"$not": bson.A{"$active"}}}}}}
	err := s.banners.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&b)
	return b, classify(err, "toggle banner")
}

func (s *MongoStore) DeleteBanner(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.banners.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify(err, "delete banner")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts *options.FindOptions) ([]T, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cursor, err := col.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "find %s", col.Name())
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrapf(err, "decode %s", col.Name())
	}
	return out, nil
}
