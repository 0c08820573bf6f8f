package sink

import (
	"bytes"
	"fmt"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/render"
)

// MaxPNGPixels bounds the raster size of a PNG render after scaling.
const MaxPNGPixels = 64 << 20

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	background string
	labels     bool
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithPNGBackground sets the canvas fill. An empty color leaves it transparent.
func WithPNGBackground(color string) PNGOption { return func(r *pngRenderer) { r.background = color } }

// WithoutPNGLabels omits element labels.
func WithoutPNGLabels() PNGOption { return func(r *pngRenderer) { r.labels = false } }

var (
	fontOnce sync.Once
	font     *truetype.Font
	fontErr  error
)

func regularFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		font, fontErr = truetype.Parse(goregular.TTF)
	})
	return font, fontErr
}

// RenderPNG rasterizes the frame directly, without an external converter.
func RenderPNG(f render.Frame, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, background: defaultBackground, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	w := int(math.Ceil(float64(f.Canvas.Width) * r.scale))
	h := int(math.Ceil(float64(f.Canvas.Height) * r.scale))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidSize, "canvas %dx%d has no area", f.Canvas.Width, f.Canvas.Height)
	}
	if w*h > MaxPNGPixels {
		return nil, errors.New(errors.ErrCodeInvalidSize, "png of %dx%d pixels exceeds limit", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.Scale(r.scale, r.scale)
	if c, ok := parseHexColor(r.background); ok {
		dc.SetColor(c)
		dc.Clear()
	}

	stroke, _ := parseHexColor(defaultStroke)
	for _, p := range f.Placements {
		if p.Rect.IsEmpty() {
			continue
		}
		x, y := float64(p.Rect.X), float64(p.Rect.Y)
		pw, ph := float64(p.Rect.Width), float64(p.Rect.Height)

		fill, ok := parseHexColor(fillFor(p))
		if !ok {
			fill, _ = parseHexColor(palette[p.Index%len(palette)])
		}
		dc.DrawRectangle(x, y, pw, ph)
		dc.SetColor(fill)
		dc.FillPreserve()
		dc.SetColor(stroke)
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	if r.labels {
		if err := drawLabels(dc, f); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawLabels(dc *gg.Context, f render.Frame) error {
	ttf, err := regularFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	text, _ := parseHexColor(defaultText)
	dc.SetColor(text)

	for _, p := range f.Placements {
		if p.Rect.IsEmpty() || p.Label == "" {
			continue
		}
		w, h := float64(p.Rect.Width), float64(p.Rect.Height)
		size := fontSizeFor(w, h, len([]rune(p.Label)))
		dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{Size: size}))
		label := truncateLabel(p.Label, w, size)
		dc.DrawStringAnchored(label, float64(p.Rect.X)+w/2, float64(p.Rect.Y)+h/2, 0.5, 0.35)
	}
	return nil
}
