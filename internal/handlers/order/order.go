package order

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/database"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/handlers"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/notify"
)

const maxOrderBody = 1 << 20

type Handler struct {
	Store    database.OrderStore
	Notifier *notify.Notifier
	Receipts Renderer
}

// Renderer writes the receipt document for an order.
type Renderer interface {
	Render(w io.Writer, o models.Order) error
}

// 🛒 POST /orders
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxOrderBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order body is too large or unreadable"})
		return
	}

	o, err := models.DecodeOrder(body)
	if err != nil {
		handlers.Fail(c, err, "order", "create order")
		return
	}

	exists, err := h.Store.OrderExists(ctx, o.OrderID)
	if err != nil {
		handlers.Fail(c, err, "order", "check order")
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order with this orderId already exists"})
		return
	}

	o.CreatedAt = time.Now().UTC()
	if err := h.Store.CreateOrder(ctx, &o); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order with this orderId already exists"})
			return
		}
		handlers.Fail(c, err, "order", "save order")
		return
	}

	zap.L().Info("🛒 order placed",
		zap.String("order_id", o.OrderID),
		zap.Int("items", len(o.CartItems)),
		zap.Float64("total", o.TotalAmount))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"orderId": o.OrderID,
		"id":      o.ID.Hex(),
	})

	// the response is already out; notification failures never reach the client
	h.Notifier.OrderCreated(context.WithoutCancel(ctx), o)
}

// GET /orders
func (h *Handler) List(c *gin.Context) {
	orders, err := h.Store.ListOrders(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err, "order", "list orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GET /orders/:id
func (h *Handler) Get(c *gin.Context) {
	o, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, o)
}

// DELETE /orders/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := database.ParseID(c.Param("id"))
	if err != nil {
		handlers.Fail(c, err, "order", "delete order")
		return
	}
	if err := h.Store.DeleteOrder(c.Request.Context(), id); err != nil {
		handlers.Fail(c, err, "order", "delete order")
		return
	}
	zap.L().Info("🗑️ order deleted", zap.String("id", id.Hex()))
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

func (h *Handler) load(c *gin.Context) (models.Order, bool) {
	id, err := database.ParseID(c.Param("id"))
	if err != nil {
		handlers.Fail(c, err, "order", "load order")
		return models.Order{}, false
	}
	o, err := h.Store.GetOrder(c.Request.Context(), id)
	if err != nil {
		handlers.Fail(c, err, "order", "load order")
		return models.Order{}, false
	}
	return o, true
}
