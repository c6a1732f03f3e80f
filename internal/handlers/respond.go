package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/database"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
	"github.com/sheikhmaazraheel/MYR-Backend/internal/services"
)

// Fail maps err onto the JSON error shape shared by every route.
// entity names the record for 404/409-style messages, action the
// operation for 500s.
func Fail(c *gin.Context, err error, entity, action string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Error(), "field": verr.Field}
		if len(verr.Fields) > 1 {
			body["missing"] = verr.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, services.ErrFileTooLarge), errors.Is(err, services.ErrNotAnImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + entity + " id"})
	case errors.Is(err, database.ErrDuplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": entity + " already exists"})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
	default:
		zap.L().Error("❌ "+action+" failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to " + action,
			"details": err.Error(),
		})
	}
}

// MultipartForm parses the request form and returns its first values and
// the files sent under any of fileFields. The returned cleanup removes
// whatever the parser spilled to disk.
func MultipartForm(c *gin.Context, fileFields ...string) (models.FormValues, []*multipart.FileHeader, func(), error) {
	noop := func() {}
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		if err := c.Request.ParseForm(); err != nil {
			return nil, nil, noop, &models.ValidationError{Field: "body", Message: "malformed form body"}
		}
		return firstValues(c.Request.PostForm), nil, noop, nil
	}
	if err != nil {
		if isTooLarge(err) {
			return nil, nil, noop, services.ErrFileTooLarge
		}
		return nil, nil, noop, &models.ValidationError{Field: "body", Message: "malformed multipart body"}
	}

	var files []*multipart.FileHeader
	for _, field := range fileFields {
		files = append(files, form.File[field]...)
	}
	cleanup := func() {
		if err := form.RemoveAll(); err != nil {
			zap.L().Warn("multipart cleanup failed", zap.Error(err))
		}
	}
	return firstValues(form.Value), files, cleanup, nil
}

func firstValues(values map[string][]string) models.FormValues {
	out := models.FormValues{}
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge)
}
