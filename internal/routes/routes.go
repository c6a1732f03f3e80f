package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/auth"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/cache"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/database"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/events"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/handlers"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/handlers/admin"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/handlers/banner"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/handlers/order"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/handlers/product"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/middleware"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/notify"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/services"
)

// Deps is everything the HTTP layer needs. Index, Redis and Hub may be nil.
type Deps struct {
	Store    database.Store
	Media    *services.Media
	Index    services.ProductIndex
	Events   events.Emitter
	Auth     *auth.Authenticator
	Sessions *auth.Sessions
	Notifier *notify.Notifier
	Receipts order.Renderer
	Hub      *notify.Hub
	Redis    *redis.Client

	CORSOrigins []string
	// Now is used for banner windows; nil means time.Now.
	Now func() time.Time
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	authH := &handlers.AuthHandler{Auth: d.Auth, Sessions: d.Sessions}
	productH := &product.Handler{
		Store:   d.Store,
		Media:   d.Media,
		Events:  d.Events,
		Index:   d.Index,
		Catalog: cache.NewCatalog(d.Redis),
	}
	orderH := &order.Handler{Store: d.Store, Notifier: d.Notifier, Receipts: d.Receipts}
	bannerH := &banner.Handler{Store: d.Store, Media: d.Media, Events: d.Events, Now: d.Now}

	guard := []gin.HandlerFunc{middleware.RequireAdmin(d.Sessions), middleware.AuditAdminActions()}

	// Health
	r.GET("/health", handlers.Health(d.Store))

	// Session
	r.POST("/login", authH.Login)
	r.POST("/logout", authH.Logout)
	r.GET("/check-auth", authH.CheckAuth)

	// Public catalog
	r.GET("/products", productH.List)
	r.GET("/products/search", productH.Search)
	r.GET("/products/:id", productH.Get)
	r.GET("/banners", bannerH.Public)

	// Checkout
	r.POST("/orders", middleware.OrderRateLimit(d.Redis), orderH.Create)

	// Admin: every mutation and every order read goes through the guard
	guarded := r.Group("/", guard...)
	{
		guarded.POST("/upload", productH.Create)
		guarded.PUT("/products/:id", productH.Update)
		guarded.DELETE("/products/:id", productH.Delete)

		guarded.GET("/orders", orderH.List)
		guarded.GET("/orders/:id", orderH.Get)
		guarded.DELETE("/orders/:id", orderH.Delete)
		guarded.GET("/orders/:id/receipt", orderH.DownloadReceipt)
		guarded.GET("/orders/:id/receipt/preview", orderH.PreviewReceipt)

		guarded.POST("/admin/banners", bannerH.Create)
		guarded.GET("/admin/banners", bannerH.List)
		guarded.PATCH("/admin/banners/:id/toggle", bannerH.Toggle)
		guarded.DELETE("/admin/banners/:id", bannerH.Delete)
	}

	if d.Hub != nil {
		live := &admin.LiveHandler{Hub: d.Hub}
		guarded.GET("/admin/orders/live", live.Orders)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Disposition", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		// same-origin only; cross-site callers get 403
		cfg.AllowOriginFunc = func(string) bool { return false }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
