package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSweepTempUploads(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	write := func(name string, age time.Duration) {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		at := now.Add(-age)
		if err := os.Chtimes(path, at, at); err != nil {
			t.Fatal(err)
		}
	}
	write("upload-old.png", 2*time.Hour)
	write("upload-fresh.png", time.Minute)
	write("keep-me.txt", 5*time.Hour)

	if n := SweepTempUploads(dir, TempMaxAge, now); n != 1 {
		t.Fatalf("removed %d files, want 1", n)
	}
	for name, want := range map[string]bool{"upload-old.png": false, "upload-fresh.png": true, "keep-me.txt": true} {
		_, err := os.Stat(filepath.Join(dir, name))
		if exists := err == nil; exists != want {
			t.Errorf("%s exists = %v, want %v", name, exists, want)
		}
	}
}
