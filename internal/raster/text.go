package raster

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	errorBackground = color.RGBA{R: 0xf2, G: 0xf2, B: 0xf2, A: 0xff}
	errorText       = color.RGBA{R: 0xb0, G: 0x20, B: 0x20, A: 0xff}
)

// ErrorCanvas renders a neutral canvas with msg centred on it. Each line of
// msg is drawn on its own row.
func ErrorCanvas(width, height int, msg string) *image.RGBA {
	if width <= 0 || height <= 0 {
		width, height = 640, 120
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	Fill(dst, errorBackground)
	DrawCenteredText(dst, msg, errorText)
	return dst
}

// DrawCenteredText writes text centred on dst using the basic 7x13 face.
func DrawCenteredText(dst *image.RGBA, text string, col color.Color) {
	face := basicfont.Face7x13
	lines := strings.Split(text, "\n")
	lineHeight := face.Metrics().Height.Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	b := dst.Bounds()
	top := b.Min.Y + (b.Dy()-lineHeight*len(lines))/2

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}
	for i, line := range lines {
		width := drawer.MeasureString(line).Ceil()
		x := b.Min.X + (b.Dx()-width)/2
		y := top + i*lineHeight + ascent
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(line)
	}
}
