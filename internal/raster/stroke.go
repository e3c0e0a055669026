package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Mode selects how a stroke is combined with the existing pixels.
type Mode int

const (
	// ModeOver paints the stroke colour over the surface (source-over).
	ModeOver Mode = iota
	// ModeErase removes coverage from the surface (destination-out).
	ModeErase
)

func (m Mode) String() string {
	switch m {
	case ModeOver:
		return "source-over"
	case ModeErase:
		return "destination-out"
	default:
		return "unknown"
	}
}

// Point is a position in buffer space.
type Point struct {
	X, Y float64
}

// Paint describes the pen used for a stroke. Caps and joins are always round.
type Paint struct {
	Color color.Color
	Width float64
	Mode  Mode
}

// Stroke paints a polyline through pts with round caps and joins. A single
// point paints a round dot. It reports whether any pixel changed.
func (b *Buffer) Stroke(pts []Point, p Paint) (bool, error) {
	if len(pts) == 0 || p.Width <= 0 {
		return false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.img == nil {
		return false, ErrNotReady
	}

	radius := p.Width / 2
	box := strokeBounds(pts, radius)
	clip := box.Intersect(b.img.Bounds())
	if clip.Empty() {
		return false, nil
	}

	mask := rasterizeStroke(pts, radius, box)

	var changed bool
	switch p.Mode {
	case ModeErase:
		changed = eraseMask(b.img, mask, box.Min, clip)
	default:
		col := p.Color
		if col == nil {
			col = color.Black
		}
		changed = paintMask(b.img, mask, box.Min, clip, col)
	}
	if changed {
		b.revision++
	}
	return changed, nil
}

func strokeBounds(pts []Point, radius float64) image.Rectangle {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, pt := range pts[1:] {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return image.Rect(
		int(math.Floor(minX-radius))-1,
		int(math.Floor(minY-radius))-1,
		int(math.Ceil(maxX+radius))+1,
		int(math.Ceil(maxY+radius))+1,
	)
}

// rasterizeStroke builds a coverage mask the size of box. Every capsule is
// wound the same way, so overlaps clamp to full coverage instead of
// cancelling out.
func rasterizeStroke(pts []Point, radius float64, box image.Rectangle) *image.Alpha {
	w, h := box.Dx(), box.Dy()
	z := vector.NewRasterizer(w, h)
	ox, oy := float64(box.Min.X), float64(box.Min.Y)

	if len(pts) == 1 {
		addCircle(z, pts[0].X-ox, pts[0].Y-oy, radius)
	}
	for i := 1; i < len(pts); i++ {
		a := Point{X: pts[i-1].X - ox, Y: pts[i-1].Y - oy}
		c := Point{X: pts[i].X - ox, Y: pts[i].Y - oy}
		addCapsule(z, a, c, radius)
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

func arcSteps(radius float64) int {
	n := int(math.Ceil(radius * 2))
	if n < 8 {
		return 8
	}
	if n > 96 {
		return 96
	}
	return n
}

func addCircle(z *vector.Rasterizer, cx, cy, r float64) {
	n := arcSteps(r) * 2
	z.MoveTo(float32(cx+r), float32(cy))
	for i := 1; i < n; i++ {
		phi := -2 * math.Pi * float64(i) / float64(n)
		z.LineTo(float32(cx+r*math.Cos(phi)), float32(cy+r*math.Sin(phi)))
	}
	z.ClosePath()
}

// addCapsule adds the outline of a segment with round ends: a half circle
// around b, then a half circle around a, both traversed with decreasing angle.
func addCapsule(z *vector.Rasterizer, a, b Point, r float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length < 1e-9 {
		addCircle(z, a.X, a.Y, r)
		return
	}

	normal := math.Atan2(dx/length, -dy/length)
	n := arcSteps(r)

	z.MoveTo(float32(b.X+r*math.Cos(normal)), float32(b.Y+r*math.Sin(normal)))
	for i := 1; i <= n; i++ {
		phi := normal - math.Pi*float64(i)/float64(n)
		z.LineTo(float32(b.X+r*math.Cos(phi)), float32(b.Y+r*math.Sin(phi)))
	}
	for i := 0; i <= n; i++ {
		phi := normal - math.Pi - math.Pi*float64(i)/float64(n)
		z.LineTo(float32(a.X+r*math.Cos(phi)), float32(a.Y+r*math.Sin(phi)))
	}
	z.ClosePath()
}

// paintMask composites col through mask onto dst (source-over) and reports
// whether any pixel inside clip changed.
func paintMask(dst *image.RGBA, mask *image.Alpha, origin image.Point, clip image.Rectangle, col color.Color) bool {
	before := image.NewRGBA(clip)
	draw.Draw(before, clip, dst, clip.Min, draw.Src)

	draw.DrawMask(dst, clip, image.NewUniform(col), image.Point{}, mask, clip.Min.Sub(origin), draw.Over)

	rowLen := clip.Dx() * 4
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		i := dst.PixOffset(clip.Min.X, y)
		j := before.PixOffset(clip.Min.X, y)
		if !bytes.Equal(dst.Pix[i:i+rowLen], before.Pix[j:j+rowLen]) {
			return true
		}
	}
	return false
}

// eraseMask scales dst down by the mask coverage (Porter-Duff destination-out).
// image/draw has no destination-out operator, so the loop is explicit.
func eraseMask(dst *image.RGBA, mask *image.Alpha, origin image.Point, clip image.Rectangle) bool {
	changed := false

	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			m := uint32(mask.Pix[(y-origin.Y)*mask.Stride+(x-origin.X)])
			if m == 0 {
				continue
			}
			keep := 0xffff - m*0x101

			i := dst.PixOffset(x, y)
			px := dst.Pix[i : i+4 : i+4]
			if px[3] == 0 {
				continue
			}
			for c := 0; c < 4; c++ {
				px[c] = uint8((uint32(px[c]) * 0x101 * keep / 0xffff) >> 8)
			}
			changed = true
		}
	}
	return changed
}
