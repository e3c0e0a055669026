package raster

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Compose draws background and then the buffer on top, both stretched to
// width x height. A nil background leaves the canvas transparent under the
// strokes.
func Compose(width, height int, background image.Image, overlay *Buffer) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if background != nil {
		drawScaled(dst, background, draw.Src)
	}
	if overlay != nil {
		if layer, err := overlay.Image(); err == nil {
			drawScaled(dst, layer, draw.Over)
		}
	}
	return dst
}

func drawScaled(dst *image.RGBA, src image.Image, op draw.Op) {
	if src.Bounds().Size() == dst.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, op)
		return
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Op(op), nil)
}

// FitWidth scales img down to at most maxWidth pixels wide, preserving the
// aspect ratio. Images already narrow enough, or maxWidth <= 0, are returned
// unchanged.
func FitWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}

	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// Fill paints the whole image with c.
func Fill(dst *image.RGBA, c color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}
