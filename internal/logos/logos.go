// Package logos loads airline logos from a directory of PNG files named
// after the three-letter ICAO designator (KLM.png, TRA.png, ...).
package logos

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/draw"
)

const (
	// DefaultSize is the edge length logos are scaled to, in pixels.
	DefaultSize = 100

	cacheEntries = 64
)

// Logo is a decoded, scaled logo ready for display.
type Logo struct {
	// Code is the ICAO designator the logo belongs to
	Code string

	// Path is the file the logo was read from
	Path string

	// Image is Size x Size pixels
	Image image.Image
}

// Resolver finds and decodes logos. Results, including misses, are cached
// so a logo file is read at most once while it stays in the cache.
type Resolver struct {
	dir    string
	size   int
	cache  *lru.Cache[string, *Logo]
	logger *slog.Logger
}

// NewResolver creates a resolver for dir. size <= 0 selects DefaultSize.
func NewResolver(dir string, size int, logger *slog.Logger) *Resolver {
	if size <= 0 {
		size = DefaultSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, *Logo](cacheEntries)

	return &Resolver{
		dir:    dir,
		size:   size,
		cache:  cache,
		logger: logger,
	}
}

// Resolve returns the logo for prefix, or nil when there is none. A missing
// file is not an error; an unreadable one is logged once.
func (r *Resolver) Resolve(prefix string) *Logo {
	code := strings.ToUpper(strings.TrimSpace(prefix))
	if r == nil || r.dir == "" || !validCode(code) {
		return nil
	}

	if logo, ok := r.cache.Get(code); ok {
		return logo
	}

	logo, err := r.load(code)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("no logo", slog.String("code", code))
		} else {
			r.logger.Warn("failed to load logo", slog.String("code", code), slog.Any("error", err))
		}
		logo = nil
	}
	r.cache.Add(code, logo)

	return logo
}

func (r *Resolver) load(code string) (*Logo, error) {
	path := filepath.Join(r.dir, code+".png")

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &Logo{
		Code:  code,
		Path:  path,
		Image: Scale(src, r.size),
	}, nil
}

// Scale resizes src to size x size pixels.
func Scale(src image.Image, size int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// validCode accepts letters and digits only, keeping lookups inside dir.
func validCode(code string) bool {
	if code == "" {
		return false
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
