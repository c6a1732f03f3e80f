package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is a snapshot of a product at order time, not a reference.
type CartItem struct {
	Name          string  `bson:"name" json:"name"`
	Price         float64 `bson:"price" json:"price"`
	Quantity      int     `bson:"quantity" json:"quantity"`
	SelectedColor string  `bson:"selectedColor,omitempty" json:"selectedColor,omitempty"`
	SelectedSize  string  `bson:"selectedSize,omitempty" json:"selectedSize,omitempty"`
	Image         string  `bson:"image,omitempty" json:"image,omitempty"`
}

// LineTotal is price times quantity.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OrderID       string             `bson:"orderId" json:"orderId"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	Contact       string             `bson:"contact" json:"contact"`
	City          string             `bson:"city" json:"city"`
	HouseNo       string             `bson:"houseNo" json:"houseNo"`
	Block         string             `bson:"Block" json:"Block"`
	Area          string             `bson:"Area" json:"Area"`
	Landmark      string             `bson:"landmark" json:"landmark"`
	PaymentMethod string             `bson:"paymentMethod" json:"paymentMethod"`
	CartItems     []CartItem         `bson:"cartItems" json:"cartItems"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// OrderRequiredFields is checked in this order; the first gap is reported.
var OrderRequiredFields = []string{
	"orderId", "name", "contact", "city", "houseNo", "Block", "Area",
	"landmark", "paymentMethod", "cartItems", "totalAmount",
}

var cartItemRequiredFields = []string{"name", "price", "quantity"}

// Address joins the address components the way the receipt prints them.
func (o Order) Address() string {
	parts := []string{}
	if o.HouseNo != "" {
		parts = append(parts, "House "+o.HouseNo)
	}
	if o.Block != "" {
		parts = append(parts, "Block "+o.Block)
	}
	if o.Area != "" {
		parts = append(parts, o.Area)
	}
	if o.Landmark != "" {
		parts = append(parts, "near "+o.Landmark)
	}
	return strings.Join(parts, ", ")
}

// DecodeOrder parses and validates an order intake payload. Numeric fields
// may arrive as JSON numbers or numeric strings.
func DecodeOrder(body []byte) (Order, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Order{}, &ValidationError{Message: "request body must be a JSON object"}
	}
	for _, field := range OrderRequiredFields {
		if blank(raw[field]) {
			return Order{}, missing(field)
		}
	}

	o := Order{}
	for field, dst := range map[string]*string{
		"orderId": &o.OrderID, "name": &o.Name, "email": &o.Email, "contact": &o.Contact,
		"city": &o.City, "houseNo": &o.HouseNo, "Block": &o.Block, "Area": &o.Area,
		"landmark": &o.Landmark, "paymentMethod": &o.PaymentMethod,
	} {
		v, ok := raw[field]
		if !ok || isNull(v) {
			continue
		}
		s, err := scalarString(v)
		if err != nil {
			return Order{}, invalid(field, "%s must be a string", field)
		}
		*dst = strings.TrimSpace(s)
	}

	total, err := number(raw["totalAmount"])
	if err != nil || total < 0 {
		return Order{}, invalid("totalAmount", "totalAmount must be a non-negative number")
	}
	o.TotalAmount = total

	items, err := decodeCartItems(raw["cartItems"])
	if err != nil {
		return Order{}, err
	}
	o.CartItems = items
	return o, nil
}

func decodeCartItems(msg json.RawMessage) ([]CartItem, error) {
	var rawItems []map[string]json.RawMessage
	if err := json.Unmarshal(msg, &rawItems); err != nil {
		return nil, invalid("cartItems", "cartItems must be a non-empty array")
	}
	if len(rawItems) == 0 {
		return nil, invalid("cartItems", "cartItems must be a non-empty array")
	}

	items := make([]CartItem, 0, len(rawItems))
	for idx, raw := range rawItems {
		for _, field := range cartItemRequiredFields {
			if blank(raw[field]) {
				return nil, invalid("cartItems", "cartItems[%d] is missing %s", idx, field)
			}
		}
		item := CartItem{}
		var err error
		if item.Name, err = scalarString(raw["name"]); err != nil {
			return nil, invalid("cartItems", "cartItems[%d].name must be a string", idx)
		}
		if item.Price, err = number(raw["price"]); err != nil || item.Price < 0 {
			return nil, invalid("cartItems", "cartItems[%d].price must be a non-negative number", idx)
		}
		qty, err := number(raw["quantity"])
		if err != nil || qty < 1 || qty != float64(int(qty)) {
			return nil, invalid("cartItems", "cartItems[%d].quantity must be a positive integer", idx)
		}
		item.Quantity = int(qty)
		item.SelectedColor = optionalString(raw["selectedColor"])
		item.SelectedSize = optionalString(raw["selectedSize"])
		item.Image = optionalString(raw["image"])
		items = append(items, item)
	}
	return items, nil
}

// blank mirrors a falsy check: absent, null, "", 0 and false count as missing.
// Arrays and objects, even empty ones, are present and checked by their decoder.
func blank(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	if len(t) == 0 || isNull(t) {
		return true
	}
	switch string(t) {
	case `""`, "0", "false":
		return true
	}
	if t[0] == '"' {
		var s string
		return json.Unmarshal(t, &s) == nil && strings.TrimSpace(s) == ""
	}
	if t[0] >= '0' && t[0] <= '9' || t[0] == '-' {
		f, err := cast.ToFloat64E(string(t))
		return err == nil && f == 0
	}
	return false
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}

func scalarString(v json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func optionalString(v json.RawMessage) string {
	if v == nil || isNull(v) {
		return ""
	}
	s, err := scalarString(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func number(v json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if !finite(f) {
		return 0, errors.Errorf("%q is not a finite number", s)
	}
	return f, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
