// Package receipt draws the printable order receipt.
package receipt

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

// Page geometry in points: a small landscape slip.
const (
	pageWidth  = 420.0
	pageHeight = 298.0
	margin     = 20.0
	rowHeight  = 14.0
	qrSize     = 56.0

	colNo     = margin
	colItem   = margin + 22
	colQty    = 300.0
	colAmount = 335.0
	colEnd    = pageWidth - margin
)

// Totals is what the receipt prints below the line items. Total is the
// stored order total, never recomputed.
type Totals struct {
	Subtotal float64
	Delivery float64
	Total    float64
}

// ComputeTotals sums price*quantity and applies the delivery charge when the
// subtotal is positive.
func ComputeTotals(o models.Order, deliveryCharge float64) Totals {
	t := Totals{Total: o.TotalAmount}
	for _, item := range o.CartItems {
		t.Subtotal += item.LineTotal()
	}
	if t.Subtotal > 0 {
		t.Delivery = deliveryCharge
	}
	return t
}

type Renderer struct {
	ShopName       string
	DeliveryCharge float64
	// Compress is off in tests so the content stream stays readable.
	Compress bool
}

func New(shopName string, deliveryCharge float64) *Renderer {
	return &Renderer{ShopName: shopName, DeliveryCharge: deliveryCharge, Compress: true}
}

// Render writes the receipt PDF for o to w.
func (r *Renderer) Render(w io.Writer, o models.Order) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: pageHeight, Ht: pageWidth},
	})
	pdf.SetCompression(r.Compress)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle("Receipt "+o.OrderID, true)
	pdf.SetCreator(r.ShopName, true)
	pdf.AddPage()
	// core fonts are cp1252; runes outside it print as placeholders
	sh := &sheet{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	r.header(sh, o)
	r.items(sh, o)
	r.totals(sh, ComputeTotals(o, r.DeliveryCharge))
	r.customer(sh, o)
	r.footer(sh)

	if err := pdf.Error(); err != nil {
		return errors.Wrap(err, "compose receipt")
	}
	return pdf.Output(w)
}

// sheet is one render's document plus its text translator.
type sheet struct {
	*fpdf.Fpdf
	tr func(string) string
}

func (r *Renderer) header(pdf *sheet, o models.Order) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(colEnd-margin-qrSize, 18, pdf.tr(r.ShopName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 12, "Order Receipt", "", 1, "L", false, 0, "")

	if png, err := qrcode.Encode(o.OrderID, qrcode.Medium, 256); err == nil {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("qr", colEnd-qrSize, margin-6, qrSize, qrSize, false, opts, 0, "")
	}

	pdf.SetXY(margin, 58)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 12, "Order Details", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 11, pdf.tr("Order ID: "+o.OrderID), "", 1, "L", false, 0, "")
}

func (r *Renderer) items(pdf *sheet, o models.Order) {
	y := 90.0
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(238, 238, 238)
	pdf.Rect(margin, y, colEnd-margin, rowHeight, "F")
	cell(pdf, colNo, y, colItem-colNo, "#", "L")
	cell(pdf, colItem, y, colQty-colItem, "Item", "L")
	cell(pdf, colQty, y, colAmount-colQty, "Qty", "C")
	cell(pdf, colAmount, y, colEnd-colAmount, "Amount", "R")

	pdf.SetFont("Helvetica", "", 9)
	for i, item := range o.CartItems {
		y += rowHeight
		if y+rowHeight > pageHeight-margin {
			pdf.AddPage()
			y = margin
		}
		cell(pdf, colNo, y, colItem-colNo, strconv.Itoa(i+1), "L")
		cell(pdf, colItem, y, colQty-colItem, ItemLabel(item), "L")
		cell(pdf, colQty, y, colAmount-colQty, strconv.Itoa(item.Quantity), "C")
		cell(pdf, colAmount, y, colEnd-colAmount, Money(item.LineTotal()), "R")
	}
	pdf.Line(margin, y+rowHeight+2, colEnd, y+rowHeight+2)
	pdf.SetXY(margin, y+rowHeight+6)
}

func (r *Renderer) totals(pdf *sheet, t Totals) {
	rows := []struct {
		label string
		value float64
		bold  bool
	}{
		{"Subtotal", t.Subtotal, false},
		{"Delivery", t.Delivery, false},
		{"Total", t.Total, true},
	}
	for _, row := range rows {
		style := ""
		if row.bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		y := pdf.GetY()
		cell(pdf, colQty-40, y, colAmount-colQty+40, row.label+":", "R")
		cell(pdf, colAmount, y, colEnd-colAmount, Money(row.value), "R")
		pdf.SetXY(margin, y+rowHeight-2)
	}
}

func (r *Renderer) customer(pdf *sheet, o models.Order) {
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 12, "Customer Details", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	lines := []string{
		"Name: " + o.Name,
		"Contact: " + o.Contact,
		"Address: " + o.Address(),
		"City: " + o.City,
		"Order Date: " + o.CreatedAt.Local().Format("02 Jan 2006 15:04"),
		"Payment: " + o.PaymentMethod,
	}
	for _, line := range lines {
		pdf.MultiCell(colEnd-margin, 11, pdf.tr(line), "", "L", false)
	}
}

func (r *Renderer) footer(pdf *sheet) {
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 10, pdf.tr("Thank you for shopping with "+r.ShopName+"!"), "", 1, "C", false, 0, "")
}

func cell(pdf *sheet, x, y, w float64, text, align string) {
	pdf.SetXY(x, y)
	pdf.CellFormat(w, rowHeight, pdf.tr(text), "", 0, align, false, 0, "")
}

// ItemLabel is the item name with its optional size and color.
func ItemLabel(item models.CartItem) string {
	var extra []string
	if item.SelectedSize != "" {
		extra = append(extra, item.SelectedSize)
	}
	if item.SelectedColor != "" {
		extra = append(extra, item.SelectedColor)
	}
	if len(extra) == 0 {
		return item.Name
	}
	return fmt.Sprintf("%s (%s)", item.Name, strings.Join(extra, ", "))
}

// Money prints whole amounts without decimals.
func Money(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("Rs. %d", int64(v))
	}
	return fmt.Sprintf("Rs. %.2f", v)
}
