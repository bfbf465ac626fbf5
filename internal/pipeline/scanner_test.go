package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanImages_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_20151210_105649.JPG")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	sources, err := ScanImages(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 {
		t.Fatalf("sources: %v", sources)
	}
	s := sources[0]
	if s.Key != "IMG_20151210_105649" || s.Format != "jpeg" || s.Size != 1 {
		t.Errorf("source: %+v", s)
	}
}

func TestScanImages_RejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readme.md")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ScanImages(path); err == nil {
		t.Error("expected error for non-image file")
	}
	if _, err := ScanImages(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestIsImage(t *testing.T) {
	for _, p := range []string{"a.png", "b.JPG", "c.jpeg", "d.tif", "e.webp"} {
		if !IsImage(p) {
			t.Errorf("%s should be an image", p)
		}
	}
	for _, p := range []string{"a.txt", "b", "c.heic"} {
		if IsImage(p) {
			t.Errorf("%s should not be an image", p)
		}
	}
}

func TestScanImages_SharedBaseName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "a.jpg", "b.png", "sub/a.png"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	sources, err := ScanImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	keys := make(map[string]string)
	for _, s := range sources {
		keys[s.RelPath] = s.Key
	}
	want := map[string]string{"a.png": "a.png", "a.jpg": "a.jpg", "b.png": "b", "sub/a.png": "sub/a"}
	for rel, key := range want {
		if keys[rel] != key {
			t.Errorf("%s: key %q, want %q", rel, keys[rel], key)
		}
	}
}

func TestScanImages_UnresolvableKeyCollision(t *testing.T) {
	dir := t.TempDir()
	// a.png.gif keeps key "a.png" which a.png also takes once it collides with a.jpg.
	for _, name := range []string{"a.png", "a.jpg", "a.png.gif"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := ScanImages(dir); err == nil {
		t.Error("expected key collision error")
	}
}
