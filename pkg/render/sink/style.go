package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/render"
)

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 24.0
)

const (
	defaultBackground = "#ffffff"
	defaultStroke     = "#1a202c"
	defaultText       = "#1a202c"
)

// palette colors elements that have no fill of their own, by draw index.
var palette = []string{
	"#bee3f8", "#c6f6d5", "#fefcbf", "#fed7d7",
	"#e9d8fd", "#feebc8", "#b2f5ea", "#fed7e2",
}

func fillFor(p render.Placement) string {
	if p.Fill != "" {
		return p.Fill
	}
	return palette[p.Index%len(palette)]
}

func fontSizeFor(availWidth, availHeight float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := availHeight * fontHeightRatio
	byWidth := (availWidth * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// truncateLabel shortens label so it fits a box of width w at size.
func truncateLabel(label string, w, size float64) string {
	maxChars := int(w * fontWidthRatio / (size * fontCharWidth))
	if maxChars < 3 {
		maxChars = 3
	}
	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// parseHexColor parses "#rgb" or "#rrggbb". Anything else yields ok=false.
func parseHexColor(s string) (c color.RGBA, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = fmt.Sprintf("%c%c%c%c%c%c", s[0], s[0], s[1], s[1], s[2], s[2])
	}
	if len(s) != 6 {
		return c, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return c, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
