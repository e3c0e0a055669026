package editor

import "github.com/iudanet/mapboard/internal/raster"

// Point is a position in screen or buffer space.
type Point = raster.Point

const (
	// MinScale is the smallest zoom factor a Transform accepts.
	MinScale = 0.5
	// MaxScale is the largest zoom factor a Transform accepts.
	MaxScale = 5.0
)

// Transform is the affine map from buffer space to screen space:
// screen = buffer*Scale + Offset.
type Transform struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Identity returns the 1:1 transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Zoom multiplies the scale by factor around the screen point (originX,
// originY), which stays fixed on screen. The resulting scale is clamped to
// [MinScale, MaxScale]; once a bound is reached further zooming in that
// direction is a no-op.
func (t Transform) Zoom(factor, originX, originY float64) Transform {
	t = t.Normalize()
	if factor <= 0 {
		return t
	}
	next := clampScale(t.Scale * factor)
	if next == t.Scale {
		return t
	}

	ratio := next / t.Scale
	return Transform{
		Scale:   next,
		OffsetX: originX - (originX-t.OffsetX)*ratio,
		OffsetY: originY - (originY-t.OffsetY)*ratio,
	}
}

// Pan moves the view by (dx, dy) screen pixels.
func (t Transform) Pan(dx, dy float64) Transform {
	t.OffsetX += dx
	t.OffsetY += dy
	return t
}

// Normalize fixes a zero or out of range scale, e.g. after loading a
// cached view.
func (t Transform) Normalize() Transform {
	if t.Scale == 0 {
		t.Scale = 1
	}
	t.Scale = clampScale(t.Scale)
	return t
}

// Apply maps a point through the transform.
func (t Transform) Apply(p Point) Point {
	return Point{X: p.X*t.Scale + t.OffsetX, Y: p.Y*t.Scale + t.OffsetY}
}

// Invert maps a screen point back through the transform.
func (t Transform) Invert(p Point) Point {
	return Point{X: (p.X - t.OffsetX) / t.Scale, Y: (p.Y - t.OffsetY) / t.Scale}
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
