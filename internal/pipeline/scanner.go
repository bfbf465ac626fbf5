package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source represents a discovered image file.
type Source struct {
	// AbsPath is the absolute path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the scan root, slash-separated.
	RelPath string
	// Key is the manifest key: RelPath without extension, or RelPath itself
	// when another source in the same directory shares the base name.
	Key string
	// Format is the normalized source format (jpeg, png, webp, gif, bmp, tiff).
	Format string
	// Size is the file size in bytes.
	Size int64
}

// imageExtensions maps recognized extensions to normalized format names.
var imageExtensions = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".webp": "webp",
	".gif":  "gif",
	".bmp":  "bmp",
	".tiff": "tiff",
	".tif":  "tiff",
}

// IsImage reports whether path has a recognized image extension.
func IsImage(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ScanImages returns the image sources under root. root may also be a single
// image file, in which case the result has exactly one entry keyed by its
// base name.
func ScanImages(root string) ([]Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !IsImage(root) {
			return nil, fmt.Errorf("%s: not a recognized image file", root)
		}
		return []Source{newSource(filepath.Dir(root), root, info.Size())}, nil
	}

	var sources []Source
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Skip hidden directories.
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsImage(path) {
			return nil
		}
		sources = append(sources, newSource(root, path, info.Size()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, dedupeKeys(sources)
}

// dedupeKeys keeps the extension in the key of sources that would otherwise
// collide (a.png and a.jpg). Keys that still collide are an error.
func dedupeKeys(sources []Source) error {
	count := make(map[string]int, len(sources))
	for _, s := range sources {
		count[s.Key]++
	}
	seen := make(map[string]string, len(sources))
	for i := range sources {
		s := &sources[i]
		if count[s.Key] > 1 {
			s.Key = s.RelPath
		}
		if prev, ok := seen[s.Key]; ok {
			return fmt.Errorf("%s and %s map to the same output key %q", prev, s.RelPath, s.Key)
		}
		seen[s.Key] = s.RelPath
	}
	return nil
}

func newSource(root, path string, size int64) Source {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = filepath.ToSlash(rel)
	ext := filepath.Ext(rel)
	return Source{
		AbsPath: path,
		RelPath: rel,
		Key:     strings.TrimSuffix(rel, ext),
		Format:  imageExtensions[strings.ToLower(ext)],
		Size:    size,
	}
}
