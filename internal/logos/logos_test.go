package logos

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "KLM.png"), 240, 160, color.RGBA{0, 161, 228, 255})

	r := NewResolver(dir, 0, nil)

	logo := r.Resolve("klm")
	require.NotNil(t, logo)
	assert.Equal(t, "KLM", logo.Code)
	assert.Equal(t, filepath.Join(dir, "KLM.png"), logo.Path)
	assert.Equal(t, image.Rect(0, 0, DefaultSize, DefaultSize), logo.Image.Bounds())

	_, _, b, a := logo.Image.At(50, 50).RGBA()
	assert.Greater(t, b, uint32(0xe000))
	assert.Equal(t, uint32(0xffff), a)

	// Served from the cache even after the file is gone
	require.NoError(t, os.Remove(logo.Path))
	assert.Same(t, logo, r.Resolve("KLM"))
}

func TestResolveMissing(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir, 32, nil)

	assert.Nil(t, r.Resolve("TRA"))

	// A miss is cached too
	writePNG(t, filepath.Join(dir, "TRA.png"), 10, 10, color.White)
	assert.Nil(t, r.Resolve("TRA"))
}

func TestResolveCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "EZY.png"), []byte("not a png"), 0644))

	r := NewResolver(dir, 0, nil)
	assert.Nil(t, r.Resolve("EZY"))
}

func TestResolveRejectsOddCodes(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir, 0, nil)

	for _, code := range []string{"", "../", "A/B", "K L"} {
		assert.Nil(t, r.Resolve(code), "code %q", code)
	}

	var nilResolver *Resolver
	assert.Nil(t, nilResolver.Resolve("KLM"))
	assert.Nil(t, NewResolver("", 0, nil).Resolve("KLM"))
}

func TestScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 7, 3))
	dst := Scale(src, 20)
	assert.Equal(t, image.Rect(0, 0, 20, 20), dst.Bounds())
}
