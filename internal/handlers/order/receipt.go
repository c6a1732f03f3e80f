package order

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 🧾 GET /orders/:id/receipt
func (h *Handler) DownloadReceipt(c *gin.Context) {
	h.receipt(c, "attachment")
}

// GET /orders/:id/receipt/preview
func (h *Handler) PreviewReceipt(c *gin.Context) {
	h.receipt(c, "inline")
}

func (h *Handler) receipt(c *gin.Context, disposition string) {
	o, ok := h.load(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{
		"filename": "receipt-" + o.OrderID + ".pdf",
	}))
	c.Status(http.StatusOK)
	if err := h.Receipts.Render(c.Writer, o); err != nil {
		zap.L().Error("❌ receipt render failed", zap.String("order_id", o.OrderID), zap.Error(err))
		if c.Writer.Written() {
			return
		}
		c.Writer.Header().Del("Content-Disposition")
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate receipt", "details": err.Error()})
	}
}
