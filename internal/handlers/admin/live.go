package admin

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/middleware"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/notify"
)

type LiveHandler struct {
	Hub *notify.Hub
}

// 📡 GET /admin/orders/live streams new orders to the dashboard.
func (h *LiveHandler) Orders(c *gin.Context) {
	p, _ := middleware.Admin(c)
	zap.L().Info("📡 live feed connected", zap.String("admin", p.Username), zap.Int("clients", h.Hub.Clients()+1))
	h.Hub.Serve(c.Writer, c.Request)
}
