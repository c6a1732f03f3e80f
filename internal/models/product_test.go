package models

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewProductListsEveryMissingField(t *testing.T) {
	_, err := NewProduct(FormValues{"name": "Scarf", "category": ""})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"id", "price", "category"}
	if !reflect.DeepEqual(verr.Fields, want) {
		t.Errorf("missing = %v, want %v", verr.Fields, want)
	}
}

func TestNewProductParsesForm(t *testing.T) {
	p, err := NewProduct(FormValues{
		"id":       "p-1",
		"name":     " Silk Scarf ",
		"price":    "1200",
		"discount": "10",
		"category": "scarves",
		"mostSell": "true",
		"colors":   "red, blue,, green ",
		"sizes":    "",
	})
	if err != nil {
		t.Fatalf("NewProduct: %v", err)
	}
	if p.Name != "Silk Scarf" || p.Price != 1200 || p.Discount != 10 {
		t.Errorf("unexpected product %+v", p)
	}
	if !p.Available {
		t.Error("available should default to true")
	}
	if !p.MostSell {
		t.Error("mostSell should be true")
	}
	if !reflect.DeepEqual(p.Colors, []string{"red", "blue", "green"}) {
		t.Errorf("colors = %v", p.Colors)
	}
	if len(p.Sizes) != 0 {
		t.Errorf("sizes = %v, want empty", p.Sizes)
	}
	if p.CreatedAt.IsZero() || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Error("timestamps not set")
	}
}

func TestNewProductRejectsNonFinitePrice(t *testing.T) {
	_, err := NewProduct(FormValues{"id": "p-1", "name": "Scarf", "price": "NaN", "category": "scarves"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "price" {
		t.Fatalf("expected price error, got %v", err)
	}
}

func TestApplyIsPartial(t *testing.T) {
	p := Product{ID: "p-1", Name: "Scarf", Price: 100, Category: "scarves", Available: true, Colors: []string{"red"}}
	if err := p.Apply(FormValues{"price": "150", "available": "false"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.Name != "Scarf" || p.Price != 150 || p.Available {
		t.Errorf("unexpected product %+v", p)
	}
	if !reflect.DeepEqual(p.Colors, []string{"red"}) {
		t.Errorf("colors changed: %v", p.Colors)
	}
}

func TestApplyRejectsBadValues(t *testing.T) {
	tests := map[string]FormValues{
		"blank name":     {"name": " "},
		"text price":     {"price": "cheap"},
		"negative price": {"price": "-1"},
		"bad discount":   {"discount": "ten"},
		"NaN price":      {"price": "NaN"},
		"infinite price": {"price": "Infinity"},
		"NaN discount":   {"discount": "nan"},
	}
	for name, form := range tests {
		t.Run(name, func(t *testing.T) {
			p := Product{Name: "Scarf", Price: 100, Category: "scarves"}
			var verr *ValidationError
			if err := p.Apply(form); !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}
