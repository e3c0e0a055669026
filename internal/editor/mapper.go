package editor

import (
	"errors"
	"image"
)

// ErrNotReady is returned when the background has not loaded yet and the
// buffer dimensions are still undefined.
var ErrNotReady = errors.New("editor is not ready: background image not loaded")

// Mapper converts screen positions into drawing buffer positions:
//
//	buffer = ((screen - offset) / scale) * (bufferSize / displaySize)
//
// displaySize is the size the background occupies on screen at scale 1.
type Mapper struct {
	Transform Transform
	Buffer    image.Point
	Display   image.Point
}

// Ready reports whether buffer dimensions are known.
func (m Mapper) Ready() bool {
	return m.Buffer.X > 0 && m.Buffer.Y > 0
}

// ToBuffer maps a screen point into buffer space.
func (m Mapper) ToBuffer(screen Point) (Point, error) {
	if !m.Ready() {
		return Point{}, ErrNotReady
	}
	sx, sy := m.ratio()
	p := m.Transform.Normalize().Invert(screen)
	return Point{X: p.X * sx, Y: p.Y * sy}, nil
}

// ToScreen maps a buffer point onto the screen.
func (m Mapper) ToScreen(buffer Point) (Point, error) {
	if !m.Ready() {
		return Point{}, ErrNotReady
	}
	sx, sy := m.ratio()
	return m.Transform.Normalize().Apply(Point{X: buffer.X / sx, Y: buffer.Y / sy}), nil
}

// ratio returns bufferSize/displaySize per axis; an unset display size
// means the background is shown at its buffer size.
func (m Mapper) ratio() (float64, float64) {
	sx, sy := 1.0, 1.0
	if m.Display.X > 0 {
		sx = float64(m.Buffer.X) / float64(m.Display.X)
	}
	if m.Display.Y > 0 {
		sy = float64(m.Buffer.Y) / float64(m.Display.Y)
	}
	return sx, sy
}
