package receipt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

func sampleOrder() models.Order {
	return models.Order{
		OrderID:       "MYR-42",
		Name:          "Bilal",
		Contact:       "03001112233",
		City:          "Lahore",
		HouseNo:       "7",
		Block:         "C",
		Area:          "DHA",
		PaymentMethod: "COD",
		CartItems: []models.CartItem{
			{Name: "Scarf", Price: 1000, Quantity: 2, SelectedSize: "L", SelectedColor: "red"},
			{Name: "Cap", Price: 500, Quantity: 1},
		},
		TotalAmount: 2999,
		CreatedAt:   time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(sampleOrder(), 200)
	if totals.Subtotal != 2500 {
		t.Errorf("subtotal = %v, want 2500", totals.Subtotal)
	}
	if totals.Delivery != 200 {
		t.Errorf("delivery = %v, want 200", totals.Delivery)
	}
	// the stored total wins even when it disagrees with subtotal+delivery
	if totals.Total != 2999 {
		t.Errorf("total = %v, want the stored 2999", totals.Total)
	}
}

func TestComputeTotalsNoDeliveryOnEmptySubtotal(t *testing.T) {
	o := models.Order{CartItems: []models.CartItem{{Name: "Gift", Price: 0, Quantity: 1}}}
	if got := ComputeTotals(o, 200).Delivery; got != 0 {
		t.Errorf("delivery = %v, want 0", got)
	}
}

func TestRenderWritesPDF(t *testing.T) {
	r := New("MYR", 200)
	r.Compress = false

	var buf bytes.Buffer
	if err := r.Render(&buf, sampleOrder()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-") {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 16)])
	}
	for _, want := range []string{"Order Details", "Scarf \\(L, red\\)", "Rs. 2500", "Rs. 200", "Rs. 2999", "Bilal"} {
		if !strings.Contains(out, want) {
			t.Errorf("receipt is missing %q", want)
		}
	}
}

func TestRenderTranslatesAccentedText(t *testing.T) {
	o := sampleOrder()
	o.Name = "José"
	o.CartItems[1].Name = "Châle"
	r := New("MYR", 200)
	r.Compress = false

	var buf bytes.Buffer
	if err := r.Render(&buf, o); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Name: Jos\xe9", "Ch\xe2le"} {
		if !strings.Contains(out, want) {
			t.Errorf("receipt is missing cp1252 text %q", want)
		}
	}
	if strings.Contains(out, "Jos\xc3\xa9") {
		t.Error("raw UTF-8 bytes reached the content stream")
	}
}

func TestRenderManyItemsAddsPages(t *testing.T) {
	o := sampleOrder()
	for i := 0; i < 40; i++ {
		o.CartItems = append(o.CartItems, models.CartItem{Name: "Bangle", Price: 150, Quantity: 1})
	}
	var buf bytes.Buffer
	if err := New("MYR", 200).Render(&buf, o); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty output")
	}
}

func TestMoneyAndLabels(t *testing.T) {
	if got := Money(2500); got != "Rs. 2500" {
		t.Errorf("Money(2500) = %q", got)
	}
	if got := Money(99.5); got != "Rs. 99.50" {
		t.Errorf("Money(99.5) = %q", got)
	}
	if got := ItemLabel(models.CartItem{Name: "Cap"}); got != "Cap" {
		t.Errorf("ItemLabel = %q", got)
	}
	if got := ItemLabel(models.CartItem{Name: "Cap", SelectedColor: "black"}); got != "Cap (black)" {
		t.Errorf("ItemLabel = %q", got)
	}
}
