package product

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/cache"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/database"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/events"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/handlers"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/services"
)

// Image form fields: "images" for the gallery, "image" for single-file clients.
var imageFields = []string{"images", "image"}

type Handler struct {
	Store   database.ProductStore
	Media   *services.Media
	Events  events.Emitter
	Index   services.ProductIndex
	Catalog *cache.Catalog
}

// 🟢 POST /upload
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	form, files, cleanup, err := handlers.MultipartForm(c, imageFields...)
	defer cleanup()
	if err != nil {
		handlers.Fail(c, err, "product", "read upload")
		return
	}

	p, err := models.NewProduct(form)
	if err != nil {
		handlers.Fail(c, err, "product", "create product")
		return
	}
	if err := h.Media.CheckSizes(files); err != nil {
		handlers.Fail(c, err, "product", "upload images")
		return
	}
	if _, err := h.Store.GetProduct(ctx, p.ID); err == nil {
		handlers.Fail(c, database.ErrDuplicate, "product", "create product")
		return
	}

	images, err := h.Media.IngestAll(ctx, files, services.ProductFolder, services.ProductTransform)
	if err != nil {
		h.rollback(ctx, p.ID, images, err)
		handlers.Fail(c, err, "product", "upload images")
		return
	}
	p.Images = images

	if err := h.Store.CreateProduct(ctx, &p); err != nil {
		h.rollback(ctx, p.ID, images, err)
		handlers.Fail(c, err, "product", "save product")
		return
	}

	h.indexProduct(ctx, p)
	h.Catalog.Invalidate(ctx)
	zap.L().Info("✅ product created", zap.String("id", p.ID), zap.Int("images", len(images)))
	c.JSON(http.StatusCreated, gin.H{"message": "Product uploaded successfully", "product": p})
}

// 🔵 GET /products
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if products, ok := h.Catalog.Products(ctx); ok {
		c.JSON(http.StatusOK, products)
		return
	}
	gen := h.Catalog.Generation(ctx)
	products, err := h.Store.ListProducts(ctx)
	if err != nil {
		handlers.Fail(c, err, "product", "list products")
		return
	}
	h.Catalog.SetProducts(ctx, gen, products)
	c.JSON(http.StatusOK, products)
}

// GET /products/:id
func (h *Handler) Get(c *gin.Context) {
	p, err := h.Store.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Fail(c, err, "product", "load product")
		return
	}
	c.JSON(http.StatusOK, p)
}

// 🔍 GET /products/search?q=
func (h *Handler) Search(c *gin.Context) {
	ctx := c.Request.Context()
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required", "field": "q"})
		return
	}

	if h.Index != nil {
		products, err := h.Index.Search(ctx, q)
		if err == nil {
			c.JSON(http.StatusOK, products)
			return
		}
		zap.L().Warn("search index unavailable, falling back to store", zap.Error(err))
	}
	products, err := h.Store.SearchProducts(ctx, q)
	if err != nil {
		handlers.Fail(c, err, "product", "search products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// 🟠 PUT /products/:id
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	form, files, cleanup, err := handlers.MultipartForm(c, imageFields...)
	defer cleanup()
	if err != nil {
		handlers.Fail(c, err, "product", "read upload")
		return
	}

	existing, err := h.Store.GetProduct(ctx, c.Param("id"))
	if err != nil {
		handlers.Fail(c, err, "product", "load product")
		return
	}
	updated := existing
	if err := updated.Apply(form); err != nil {
		handlers.Fail(c, err, "product", "update product")
		return
	}
	if err := h.Media.CheckSizes(files); err != nil {
		handlers.Fail(c, err, "product", "upload images")
		return
	}

	var added, dropped []models.Image
	if len(files) > 0 || form.Has("keepImages") {
		if len(files) > 0 {
			added, err = h.Media.IngestAll(ctx, files, services.ProductFolder, services.ProductTransform)
			if err != nil {
				h.rollback(ctx, existing.ID, added, err)
				handlers.Fail(c, err, "product", "upload images")
				return
			}
		}
		var kept []models.Image
		kept, dropped = splitImages(existing.Images, form)
		updated.Images = append(append([]models.Image{}, kept...), added...)
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := h.Store.UpdateProduct(ctx, updated); err != nil {
		h.rollback(ctx, existing.ID, added, err)
		handlers.Fail(c, err, "product", "update product")
		return
	}

	h.releaseImages(ctx, existing.ID, dropped)
	h.indexProduct(ctx, updated)
	h.Catalog.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": updated})
}

// 🔴 DELETE /products/:id
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.Store.DeleteProduct(ctx, c.Param("id"))
	if err != nil {
		handlers.Fail(c, err, "product", "delete product")
		return
	}

	h.releaseImages(ctx, p.ID, p.Images)
	if h.Index != nil {
		if err := h.Index.Remove(ctx, p.ID); err != nil {
			zap.L().Warn("search index removal failed", zap.String("id", p.ID), zap.Error(err))
		}
	}
	h.Catalog.Invalidate(ctx)
	zap.L().Info("🗑️ product deleted", zap.String("id", p.ID))
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// splitImages keeps the images listed in keepImages (by URL or public id)
// when the field is sent; without it every old image is replaced.
func splitImages(current []models.Image, form models.FormValues) (kept, dropped []models.Image) {
	if !form.Has("keepImages") {
		return nil, current
	}
	keep := map[string]bool{}
	for _, ref := range models.SplitList(form.Get("keepImages")) {
		keep[ref] = true
	}
	for _, img := range current {
		if keep[img.URL] || keep[img.PublicID] {
			kept = append(kept, img)
		} else {
			dropped = append(dropped, img)
		}
	}
	return kept, dropped
}

// rollback removes images uploaded for a write that did not persist.
func (h *Handler) rollback(ctx context.Context, productID string, uploaded []models.Image, cause error) {
	if len(uploaded) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	failed := h.Media.Delete(ctx, uploaded...)
	ev := events.NewReconciliation(events.KindOrphanedImage, "product", productID, publicIDs(uploaded), cause)
	ev.Compensated = len(failed) == 0
	h.Events.Emit(ctx, ev)
}

// releaseImages deletes images no longer referenced by a stored product.
func (h *Handler) releaseImages(ctx context.Context, productID string, images []models.Image) {
	if len(images) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if failed := h.Media.Delete(ctx, images...); len(failed) > 0 {
		h.Events.Emit(ctx, events.NewReconciliation(events.KindOrphanedImage, "product", productID, failed,
			errRemoteDelete))
	}
}

func (h *Handler) indexProduct(ctx context.Context, p models.Product) {
	if h.Index == nil {
		return
	}
	if err := h.Index.Index(ctx, p); err != nil {
		zap.L().Warn("search indexing failed", zap.String("id", p.ID), zap.Error(err))
	}
}

func publicIDs(images []models.Image) []string {
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.PublicID)
	}
	return ids
}
