package qrbill

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// DefaultScale factor de ampliación respecto a 72 dpi (4× ≈ 288 dpi).
const DefaultScale = 4.0

type fontSet struct {
	regular, bold *opentype.Font
}

var loadFonts = sync.OnceValues(func() (*fontSet, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("qrbill: fuente regular: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("qrbill: fuente negrita: %w", err)
	}
	return &fontSet{regular: regular, bold: bold}, nil
})

// Raster dibuja la escena sobre fondo transparente. Cada punto ocupa scale píxeles.
func (s *Scene) Raster(scale float64) (*image.RGBA, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}

	w, h := int(math.Ceil(s.Width*scale)), int(math.Ceil(s.Height*scale))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	black, white := image.NewUniform(color.Black), image.NewUniform(color.White)

	z := vector.NewRasterizer(0, 0)
	for _, r := range s.Rects {
		src := black
		if r.White {
			src = white
		}
		fillRect(z, dst, src, r, scale)
	}

	faces := newFaceCache(fonts, scale)
	defer faces.close()
	for _, t := range s.Texts {
		face, err := faces.get(t.Size, t.Bold)
		if err != nil {
			return nil, err
		}
		d := &font.Drawer{Dst: dst, Src: black, Face: face}
		x := t.X * scale
		if t.AlignEnd {
			x -= float64(d.MeasureString(t.Value)) / 64
		}
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(t.Y * scale * 64))}
		d.DrawString(t.Value)
	}
	return dst, nil
}

// PNG codifica el resultado de Raster.
func (s *Scene) PNG(scale float64) ([]byte, image.Rectangle, error) {
	img, err := s.Raster(scale)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("qrbill: codificar png: %w", err)
	}
	return buf.Bytes(), img.Bounds(), nil
}

// fillRect rasteriza solo el área del rectángulo, con antialiasing en los bordes fraccionarios.
func fillRect(z *vector.Rasterizer, dst *image.RGBA, src image.Image, r Rect, scale float64) {
	b := dst.Bounds()
	x0 := clamp(r.X*scale, 0, float64(b.Dx()))
	y0 := clamp(r.Y*scale, 0, float64(b.Dy()))
	x1 := clamp((r.X+r.W)*scale, 0, float64(b.Dx()))
	y1 := clamp((r.Y+r.H)*scale, 0, float64(b.Dy()))
	area := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	if area.Empty() {
		return
	}

	ox, oy := float64(area.Min.X), float64(area.Min.Y)
	z.Reset(area.Dx(), area.Dy())
	z.MoveTo(float32(x0-ox), float32(y0-oy))
	z.LineTo(float32(x1-ox), float32(y0-oy))
	z.LineTo(float32(x1-ox), float32(y1-oy))
	z.LineTo(float32(x0-ox), float32(y1-oy))
	z.ClosePath()
	z.Draw(dst, area, src, image.Point{})
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

type faceKey struct {
	size float64
	bold bool
}

type faceCache struct {
	fonts *fontSet
	dpi   float64
	faces map[faceKey]font.Face
}

func newFaceCache(fonts *fontSet, scale float64) *faceCache {
	return &faceCache{fonts: fonts, dpi: 72 * scale, faces: map[faceKey]font.Face{}}
}

func (c *faceCache) get(size float64, bold bool) (font.Face, error) {
	key := faceKey{size: size, bold: bold}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	src := c.fonts.regular
	if bold {
		src = c.fonts.bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: c.dpi, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("qrbill: crear fuente %.1fpt: %w", size, err)
	}
	c.faces[key] = f
	return f, nil
}

func (c *faceCache) close() {
	for _, f := range c.faces {
		_ = f.Close()
	}
}
