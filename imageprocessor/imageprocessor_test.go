package imageprocessor

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"shapecluster/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestGetFileFormat(t *testing.T) {
	assert.Equal(t, FormatJPEG, GetFileFormat("shape.JPG"))
	assert.Equal(t, FormatTIFF, GetFileFormat("/a/b/c.tiff"))
	assert.Equal(t, FormatUnknown, GetFileFormat("notes.txt"))
	assert.True(t, IsImageFile("x.webp"))
	assert.False(t, IsImageFile("x.cr3"))
	assert.Contains(t, GetSupportedExtensions(), ".gif")
}

func TestGoImageLoaderDecodesGray(t *testing.T) {
	dir := t.TempDir()
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 40)
	}
	path := writePNG(t, dir, "gray.png", src)

	loader := NewGoImageLoader()
	require.True(t, loader.CanLoad(path))

	sample, err := loader.LoadSample(path)
	require.NoError(t, err)
	assert.Equal(t, path, sample.Path)
	assert.Equal(t, 3, sample.Width)
	assert.Equal(t, 2, sample.Height)
	assert.Equal(t, []uint8{0, 40, 80, 120, 160, 200}, sample.Pix)
}

func TestImageToSampleConvertsColour(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.Set(5, 5, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src.Set(6, 5, color.RGBA{A: 255})

	sample, err := imageToSample("c.png", src)
	require.NoError(t, err)
	assert.Equal(t, 2, sample.Width)
	assert.Equal(t, 1, sample.Height)
	assert.Equal(t, []uint8{255, 0}, sample.Pix)
}

func TestGoImageLoaderCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))

	_, err := NewGoImageLoader().LoadSample(path)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, path, de.Path)
}

func TestBaseImageLoaderRequiresExistingFile(t *testing.T) {
	loader := NewGoImageLoader()
	assert.False(t, loader.CanLoad(filepath.Join(t.TempDir(), "missing.png")))
}

type fakeLoader struct {
	sample *types.ImageSample
	err    error
	panics bool
	calls  int
}

func (f *fakeLoader) CanLoad(string) bool { return true }

func (f *fakeLoader) LoadSample(path string) (*types.ImageSample, error) {
	f.calls++
	if f.panics {
		panic("cgo exploded")
	}
	return f.sample, f.err
}

func TestRegistryFallsBackToNextLoader(t *testing.T) {
	want, err := types.NewImageSample("a.png", 1, 1, []uint8{7})
	require.NoError(t, err)

	first := &fakeLoader{err: errors.New("opencv failed")}
	second := &fakeLoader{sample: want}

	r := NewEmptyRegistry()
	r.RegisterLoader(".PNG", first)
	r.RegisterLoader(".png", second)

	assert.True(t, r.CanLoadFile("dir/a.png"))
	got, err := r.LoadSample("a.png")
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestRegistryRecoversPanics(t *testing.T) {
	r := NewEmptyRegistry()
	r.RegisterLoader(".jpg", &fakeLoader{panics: true})

	_, err := r.LoadSample("a.jpg")
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, err.Error(), "panic during image loading")
}

func TestRegistryWithoutLoader(t *testing.T) {
	r := NewEmptyRegistry()
	assert.False(t, r.CanLoadFile("a.jpg"))

	_, err := r.LoadSample("a.jpg")
	assert.ErrorIs(t, err, ErrNoLoader)
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestDefaultRegistryCoversFormats(t *testing.T) {
	r := NewImageLoaderRegistry()
	for _, ext := range GetSupportedExtensions() {
		assert.True(t, r.CanLoadFile("x"+ext), ext)
	}
	assert.False(t, r.CanLoadFile("x.txt"))
}
