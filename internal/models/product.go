package models

import (
	"time"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is a durable remote image plus the handle needed to delete it.
type Image struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId" json:"publicId"`
}

type Product struct {
	MongoID     primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ID          string             `bson:"id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	Discount    float64            `bson:"discount" json:"discount"`
	Category    string             `bson:"category" json:"category"`
	MostSell    bool               `bson:"mostSell" json:"mostSell"`
	Available   bool               `bson:"available" json:"available"`
	Colors      []string           `bson:"colors" json:"colors"`
	Sizes       []string           `bson:"sizes" json:"sizes"`
	Images      []Image            `bson:"images" json:"images"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

var productRequired = []string{"id", "name", "price", "category"}

// NewProduct builds a product from an upload form. Every missing required
// field is reported at once.
func NewProduct(form FormValues) (Product, error) {
	var absent []string
	for _, field := range productRequired {
		if form.Get(field) == "" {
			absent = append(absent, field)
		}
	}
	if len(absent) > 0 {
		return Product{}, missing(absent...)
	}

	p := Product{
		ID:        form.Get("id"),
		Available: true,
		Colors:    []string{},
		Sizes:     []string{},
		Images:    []Image{},
	}
	if err := p.Apply(form); err != nil {
		return Product{}, err
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

// Apply replaces the fields present in form. The id and images are never
// touched here.
func (p *Product) Apply(form FormValues) error {
	for _, field := range []string{"name", "price", "category"} {
		if form.Has(field) && form.Get(field) == "" {
			return invalid(field, "%s cannot be empty", field)
		}
	}
	if form.Has("name") {
		p.Name = form.Get("name")
	}
	if form.Has("category") {
		p.Category = form.Get("category")
	}
	if form.Has("price") {
		price, err := parseAmount("price", form.Get("price"))
		if err != nil {
			return err
		}
		p.Price = price
	}
	if form.Has("discount") {
		discount := 0.0
		if raw := form.Get("discount"); raw != "" {
			var err error
			if discount, err = parseAmount("discount", raw); err != nil {
				return err
			}
		}
		p.Discount = discount
	}
	if form.Has("mostSell") {
		p.MostSell = cast.ToBool(form.Get("mostSell"))
	}
	if form.Has("available") {
		p.Available = cast.ToBool(form.Get("available"))
	}
	if form.Has("colors") {
		p.Colors = SplitList(form.Get("colors"))
	}
	if form.Has("sizes") {
		p.Sizes = SplitList(form.Get("sizes"))
	}
	if form.Has("description") {
		p.Description = form.Get("description")
	}
	return nil
}

func parseAmount(field, raw string) (float64, error) {
	v, err := cast.ToFloat64E(raw)
	if err != nil || !finite(v) {
		return 0, invalid(field, "%s must be a number", field)
	}
	if v < 0 {
		return 0, invalid(field, "%s cannot be negative", field)
	}
	return v, nil
}
