package assets

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/gekko3d/raymaster/pathrt/rt/gpu"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Skybox is an equirectangular environment map in RGBA8.
type Skybox struct {
	Width  uint32
	Height uint32
	Pix    []byte
}

// LoadSkybox reads a PNG, JPEG, BMP, TIFF or WebP file. Images larger than
// maxSize on either side are downscaled keeping their aspect ratio; maxSize
// <= 0 disables the limit.
func LoadSkybox(path string, maxSize int) (*Skybox, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open skybox: %w", err)
	}
	defer f.Close()

	sky, err := DecodeSkybox(f, maxSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sky, nil
}

func DecodeSkybox(r io.Reader, maxSize int) (*Skybox, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode skybox: %w", err)
	}

	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), maxSize)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("decode skybox: empty %s image", format)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	}
	return &Skybox{Width: uint32(w), Height: uint32(h), Pix: dst.Pix}, nil
}

func fitWithin(w, h, maxSize int) (int, int) {
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return w, h
	}
	if w >= h {
		return maxSize, max(1, h*maxSize/w)
	}
	return max(1, w*maxSize/h), maxSize
}

// GradientSky builds a sky fading from zenith at the top to horizon at the
// middle row, with a darker ground below it.
func GradientSky(width, height int, zenith, horizon color.RGBA) *Skybox {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	ground := color.RGBA{R: horizon.R / 3, G: horizon.G / 3, B: horizon.B / 3, A: 255}
	mid := height / 2

	for y := 0; y < height; y++ {
		var c color.RGBA
		if y < mid {
			c = lerpRGBA(zenith, horizon, float64(y)/float64(max(1, mid-1)))
		} else {
			c = lerpRGBA(horizon, ground, float64(y-mid)/float64(max(1, height-mid)))
		}
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return &Skybox{Width: uint32(width), Height: uint32(height), Pix: img.Pix}
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	l := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5) }
	return color.RGBA{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: 255}
}

// Upload copies the skybox into a device texture.
func (s *Skybox) Upload(device gpu.Device, label string) (gpu.Texture, error) {
	tex, err := device.CreateTexture(label, s.Width, s.Height, s.Pix)
	if err != nil {
		return nil, fmt.Errorf("upload skybox: %w", err)
	}
	return tex, nil
}
