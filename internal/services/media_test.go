package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/models"
)

type memoryHost struct {
	mu      sync.Mutex
	objects map[string][]byte
	failDel bool
	n       int
}

func newMemoryHost() *memoryHost { return &memoryHost{objects: map[string][]byte{}} }

func (h *memoryHost) Upload(_ context.Context, folder string, r io.Reader, _ int64, _ string) (models.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Image{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.n++
	id := fmt.Sprintf("%s/img-%d", folder, h.n)
	h.objects[id] = data
	return models.Image{URL: "https://cdn.test/" + id, PublicID: id}, nil
}

func (h *memoryHost) Delete(_ context.Context, publicID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failDel {
		return errors.New("host unavailable")
	}
	delete(h.objects, publicID)
	return nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// fileHeaders builds real multipart headers the way net/http would.
func fileHeaders(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		fw, err := mw.CreateFormFile("images", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	mw.Close()

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(64 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["images"]
}

func tempFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "upload-") {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestIngestDownscalesAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	host := newMemoryHost()
	m := NewMedia(host, dir, 10<<20)

	fh := fileHeaders(t, map[string][]byte{"wide.png": pngBytes(t, 1600, 400)})[0]
	img, err := m.Ingest(context.Background(), fh, ProductFolder, ProductTransform)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !strings.HasPrefix(img.PublicID, "products/") {
		t.Errorf("public id %q not under products/", img.PublicID)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(host.objects[img.PublicID]))
	if err != nil {
		t.Fatalf("uploaded object is not a png: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 200 {
		t.Errorf("uploaded size %dx%d, want 800x200", cfg.Width, cfg.Height)
	}
	if left := tempFiles(t, dir); len(left) != 0 {
		t.Errorf("temp files left behind: %v", left)
	}
}

func TestIngestRejectsOversizeBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	host := newMemoryHost()
	m := NewMedia(host, dir, 1024)

	fh := fileHeaders(t, map[string][]byte{"big.png": bytes.Repeat([]byte{0x89}, 4096)})[0]
	_, err := m.Ingest(context.Background(), fh, ProductFolder, ProductTransform)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if len(host.objects) != 0 {
		t.Error("nothing should be uploaded")
	}
	if left := tempFiles(t, dir); len(left) != 0 {
		t.Errorf("temp files left behind: %v", left)
	}
}

func TestIngestRejectsNonImages(t *testing.T) {
	dir := t.TempDir()
	host := newMemoryHost()
	m := NewMedia(host, dir, 1<<20)

	fh := fileHeaders(t, map[string][]byte{"notes.png": []byte("just some text, not pixels")})[0]
	_, err := m.Ingest(context.Background(), fh, BannerFolder, BannerTransform)
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
	if left := tempFiles(t, dir); len(left) != 0 {
		t.Errorf("temp files left behind: %v", left)
	}
}

func TestIngestAllReturnsPartialUploads(t *testing.T) {
	host := newMemoryHost()
	m := NewMedia(host, t.TempDir(), 1<<20)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range []struct {
		name string
		data []byte
	}{{"a.png", pngBytes(t, 10, 10)}, {"b.txt", []byte("plain text")}} {
		fw, _ := mw.CreateFormFile("images", f.name)
		fw.Write(f.data)
	}
	mw.Close()
	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	defer form.RemoveAll()

	images, err := m.IngestAll(context.Background(), form.File["images"], ProductFolder, ProductTransform)
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("got %d partial uploads, want 1", len(images))
	}
	if failed := m.Delete(context.Background(), images...); len(failed) != 0 {
		t.Errorf("rollback failed for %v", failed)
	}
	if len(host.objects) != 0 {
		t.Error("rollback left objects on the host")
	}
}

func TestDeleteReportsFailures(t *testing.T) {
	host := newMemoryHost()
	host.failDel = true
	m := NewMedia(host, t.TempDir(), 1<<20)

	failed := m.Delete(context.Background(), models.Image{PublicID: "products/x"}, models.Image{PublicID: "products/y"})
	if len(failed) != 2 {
		t.Errorf("failed = %v, want both ids", failed)
	}
}
