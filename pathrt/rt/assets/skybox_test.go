package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/raymaster/pathrt/rt/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDecodeSkybox_PNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(8, 4, color.RGBA{10, 20, 30, 255})))

	sky, err := DecodeSkybox(&buf, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), sky.Width)
	assert.Equal(t, uint32(4), sky.Height)
	require.Len(t, sky.Pix, 8*4*4)
	assert.Equal(t, []byte{10, 20, 30, 255}, sky.Pix[:4])
}

func TestDecodeSkybox_BMPDownscaled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, solid(64, 32, color.RGBA{200, 100, 50, 255})))

	sky, err := DecodeSkybox(&buf, 16)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), sky.Width)
	assert.Equal(t, uint32(8), sky.Height)
	assert.InDelta(t, 200, int(sky.Pix[0]), 2)
}

func TestDecodeSkybox_Garbage(t *testing.T) {
	_, err := DecodeSkybox(bytes.NewReader([]byte("not an image")), 0)
	assert.Error(t, err)
}

func TestLoadSkybox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sky.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solid(4, 2, color.RGBA{1, 2, 3, 255})))
	require.NoError(t, f.Close())

	sky, err := LoadSkybox(path, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), sky.Width)

	_, err = LoadSkybox(filepath.Join(t.TempDir(), "missing.png"), 0)
	assert.Error(t, err)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{100, 50, 0, 100, 50},
		{100, 50, 200, 100, 50},
		{4096, 2048, 1024, 1024, 512},
		{50, 100, 10, 5, 10},
		{1000, 1, 10, 10, 1},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, tt.max)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}

func TestGradientSky(t *testing.T) {
	zenith := color.RGBA{40, 90, 200, 255}
	horizon := color.RGBA{210, 220, 240, 255}
	sky := GradientSky(4, 16, zenith, horizon)

	require.Len(t, sky.Pix, 4*16*4)
	px := func(y int) []byte { return sky.Pix[y*4*4 : y*4*4+4] }
	assert.Equal(t, []byte{40, 90, 200, 255}, px(0))
	assert.Equal(t, []byte{210, 220, 240, 255}, px(7))
	assert.Equal(t, []byte{210, 220, 240, 255}, px(8))
	assert.Less(t, px(15)[0], px(8)[0], "ground darker than horizon")
}

func TestSkyboxUpload(t *testing.T) {
	dev := &gputest.Device{}
	sky := GradientSky(8, 4, color.RGBA{0, 0, 255, 255}, color.RGBA{255, 255, 255, 255})

	tex, err := sky.Upload(dev, "SkyboxTex")
	require.NoError(t, err)
	assert.Equal(t, uint32(8), tex.Width())
	require.Len(t, dev.Textures, 1)
	assert.Equal(t, sky.Pix, dev.Textures[0].Pixels)
}
