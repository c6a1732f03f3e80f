package services

import (
	"bytes"
	"context"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

const (
	ProductFolder = "products"
	BannerFolder  = "banners"
)

var (
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")
	ErrNotAnImage   = errors.New("only image uploads are allowed")
)

// Transform is applied before upload: images wider than MaxWidth are
// downscaled, and JPEG output uses Quality.
type Transform struct {
	MaxWidth int
	Quality  int
}

var (
	ProductTransform = Transform{MaxWidth: 800, Quality: 80}
	BannerTransform  = Transform{MaxWidth: 1600, Quality: 80}
)

// Media writes an upload to a temp file, checks and transforms it, pushes it
// to the image host and always removes the temp copy.
type Media struct {
	host     ImageHost
	dir      string
	maxBytes int64
}

func NewMedia(host ImageHost, tempDir string, maxBytes int64) *Media {
	return &Media{host: host, dir: tempDir, maxBytes: maxBytes}
}

func (m *Media) MaxBytes() int64 { return m.maxBytes }

// CheckSizes rejects the batch before anything touches the disk.
func (m *Media) CheckSizes(files []*multipart.FileHeader) error {
	for _, fh := range files {
		if fh.Size > m.maxBytes {
			return errors.Wrapf(ErrFileTooLarge, "%s is %d bytes", fh.Filename, fh.Size)
		}
	}
	return nil
}

// Ingest uploads a single file under folder.
func (m *Media) Ingest(ctx context.Context, fh *multipart.FileHeader, folder string, t Transform) (models.Image, error) {
	if err := m.CheckSizes([]*multipart.FileHeader{fh}); err != nil {
		return models.Image{}, err
	}

	tmp, err := m.spool(fh)
	if err != nil {
		return models.Image{}, err
	}
	defer func() {
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
			zap.S().Warnw("⚠️ temp upload not removed", "path", tmp, "error", err)
		}
	}()

	detected, err := mimetype.DetectFile(tmp)
	if err != nil {
		return models.Image{}, errors.Wrap(err, "detect mime type")
	}
	if !strings.HasPrefix(detected.String(), "image/") {
		return models.Image{}, errors.Wrapf(ErrNotAnImage, "%s is %s", fh.Filename, detected.String())
	}

	raw, err := os.ReadFile(tmp)
	if err != nil {
		return models.Image{}, errors.Wrap(err, "read temp upload")
	}
	body, contentType := transform(raw, detected.String(), t)

	img, err := m.host.Upload(ctx, folder, bytes.NewReader(body), int64(len(body)), contentType)
	if err != nil {
		return models.Image{}, err
	}
	zap.S().Infow("📤 image uploaded", "folder", folder, "public_id", img.PublicID, "bytes", len(body))
	return img, nil
}

// IngestAll uploads files in order. On failure, images already uploaded by
// this call are returned alongside the error so the caller can roll back.
func (m *Media) IngestAll(ctx context.Context, files []*multipart.FileHeader, folder string, t Transform) ([]models.Image, error) {
	if err := m.CheckSizes(files); err != nil {
		return nil, err
	}
	images := make([]models.Image, 0, len(files))
	for _, fh := range files {
		img, err := m.Ingest(ctx, fh, folder, t)
		if err != nil {
			return images, err
		}
		images = append(images, img)
	}
	return images, nil
}

// Delete removes images from the host and returns the public ids that
// could not be removed.
func (m *Media) Delete(ctx context.Context, images ...models.Image) []string {
	var failed []string
	for _, img := range images {
		if err := m.host.Delete(ctx, img.PublicID); err != nil {
			zap.S().Errorw("❌ remote image delete failed", "public_id", img.PublicID, "error", err)
			failed = append(failed, img.PublicID)
		}
	}
	return failed
}

// spool copies the upload into the temp dir, refusing to write past the
// ceiling even if the declared size lied.
func (m *Media) spool(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer src.Close()

	path := filepath.Join(m.dir, "upload-"+uuid.NewString()+filepath.Ext(fh.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create temp upload")
	}
	n, copyErr := io.Copy(dst, io.LimitReader(src, m.maxBytes+1))
	closeErr := dst.Close()
	if copyErr == nil && n > m.maxBytes {
		copyErr = errors.Wrapf(ErrFileTooLarge, "%s is larger than %d bytes", fh.Filename, m.maxBytes)
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(path)
		return "", copyErr
	}
	return path, nil
}

// transform downscales decodable images. Anything the decoders cannot read
// is passed through untouched.
func transform(raw []byte, contentType string, t Transform) ([]byte, string) {
	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return raw, contentType
	}
	if format == "gif" {
		if g, err := gif.DecodeAll(bytes.NewReader(raw)); err == nil && len(g.Image) > 1 {
			return raw, contentType
		}
	}

	dst := src
	if b := src.Bounds(); t.MaxWidth > 0 && b.Dx() > t.MaxWidth {
		height := b.Dy() * t.MaxWidth / b.Dx()
		if height < 1 {
			height = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, t.MaxWidth, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, b, draw.Over, nil)
		dst = scaled
	}

	var buf bytes.Buffer
	switch format {
	case "png", "gif":
		if err := png.Encode(&buf, dst); err != nil {
			return raw, contentType
		}
		return buf.Bytes(), "image/png"
	default:
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: t.Quality}); err != nil {
			return raw, contentType
		}
		return buf.Bytes(), "image/jpeg"
	}
}
