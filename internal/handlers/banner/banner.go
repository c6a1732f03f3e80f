package banner

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/database"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/events"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/handlers"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/services"
)

type Handler struct {
	Store  database.BannerStore
	Media  *services.Media
	Events events.Emitter
	// Now is swapped in tests.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// 🖼️ POST /admin/banners
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	form, files, cleanup, err := handlers.MultipartForm(c, "image", "banner")
	defer cleanup()
	if err != nil {
		handlers.Fail(c, err, "banner", "read upload")
		return
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Banner image is required", "field": "image"})
		return
	}

	b, err := models.NewBanner(form)
	if err != nil {
		handlers.Fail(c, err, "banner", "create banner")
		return
	}

	img, err := h.Media.Ingest(ctx, files[0], services.BannerFolder, services.BannerTransform)
	if err != nil {
		handlers.Fail(c, err, "banner", "upload banner image")
		return
	}
	b.ImageURL, b.PublicID = img.URL, img.PublicID

	if err := h.Store.CreateBanner(ctx, &b); err != nil {
		bg := context.WithoutCancel(ctx)
		failed := h.Media.Delete(bg, img)
		ev := events.NewReconciliation(events.KindOrphanedImage, "banner", "", []string{img.PublicID}, err)
		ev.Compensated = len(failed) == 0
		h.Events.Emit(bg, ev)
		handlers.Fail(c, err, "banner", "save banner")
		return
	}

	zap.L().Info("✅ banner created", zap.String("id", b.ID.Hex()))
	c.JSON(http.StatusCreated, gin.H{"message": "Banner uploaded successfully", "banner": b})
}

// GET /banners
func (h *Handler) Public(c *gin.Context) {
	banners, err := h.Store.ActiveBanners(c.Request.Context(), h.now())
	if err != nil {
		handlers.Fail(c, err, "banner", "list banners")
		return
	}
	c.JSON(http.StatusOK, banners)
}

// GET /admin/banners
func (h *Handler) List(c *gin.Context) {
	banners, err := h.Store.ListBanners(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err, "banner", "list banners")
		return
	}
	c.JSON(http.StatusOK, banners)
}

// PATCH /admin/banners/:id/toggle
func (h *Handler) Toggle(c *gin.Context) {
	id, err := database.ParseID(c.Param("id"))
	if err != nil {
		handlers.Fail(c, err, "banner", "toggle banner")
		return
	}
	b, err := h.Store.ToggleBanner(c.Request.Context(), id)
	if err != nil {
		handlers.Fail(c, err, "banner", "toggle banner")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Banner status updated", "banner": b})
}

// 🗑️ DELETE /admin/banners/:id
//
// The remote image goes first: a failure there leaves both sides intact.
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := database.ParseID(c.Param("id"))
	if err != nil {
		handlers.Fail(c, err, "banner", "delete banner")
		return
	}
	b, err := h.Store.GetBanner(ctx, id)
	if err != nil {
		handlers.Fail(c, err, "banner", "delete banner")
		return
	}

	if failed := h.Media.Delete(ctx, models.Image{URL: b.ImageURL, PublicID: b.PublicID}); len(failed) > 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete banner image"})
		return
	}
	if err := h.Store.DeleteBanner(ctx, id); err != nil {
		h.Events.Emit(context.WithoutCancel(ctx), events.NewReconciliation(
			events.KindDanglingReference, "banner", id.Hex(), []string{b.PublicID}, err))
		handlers.Fail(c, err, "banner", "delete banner")
		return
	}
	zap.L().Info("🗑️ banner deleted", zap.String("id", id.Hex()))
	c.JSON(http.StatusOK, gin.H{"message": "Banner deleted successfully"})
}
