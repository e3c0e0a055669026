// Package raster implements the drawing buffer: an off-screen RGBA surface
// holding only user strokes, plus the helpers that encode, decode and
// composite it over a background map.
package raster

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
)

var (
	// ErrNotReady is returned when the buffer has not been sized yet or has
	// been disposed.
	ErrNotReady = errors.New("drawing buffer is not ready")

	// ErrInvalidSize is returned for non-positive buffer dimensions.
	ErrInvalidSize = errors.New("invalid buffer size")
)

// Buffer is an owned raster resource with an explicit lifecycle:
// New/Create sizes it, Resize changes its size, Dispose releases the pixels.
type Buffer struct {
	img      *image.RGBA
	revision uint64
	mu       sync.RWMutex
}

// New returns a buffer of the given size. Use NewUnsized when the size is
// not known yet (background still loading).
func New(width, height int) (*Buffer, error) {
	b := &Buffer{}
	if err := b.Create(width, height); err != nil {
		return nil, err
	}
	return b, nil
}

// NewUnsized returns a buffer that is not ready until Create is called.
func NewUnsized() *Buffer {
	return &Buffer{}
}

// Create allocates a transparent surface, discarding any previous content.
func (b *Buffer) Create(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.img = image.NewRGBA(image.Rect(0, 0, width, height))
	b.revision++
	return nil
}

// Resize changes the surface size, keeping the existing pixels anchored at
// the top-left corner and clipping whatever no longer fits.
func (b *Buffer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	next := image.NewRGBA(image.Rect(0, 0, width, height))
	if b.img != nil {
		draw.Draw(next, next.Bounds(), b.img, image.Point{}, draw.Src)
	}
	b.img = next
	b.revision++
	return nil
}

// Dispose releases the surface. The buffer is not ready afterwards.
func (b *Buffer) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.img = nil
	b.revision++
}

// Ready reports whether the buffer has a surface.
func (b *Buffer) Ready() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.img != nil
}

// Size returns the surface dimensions, or zeros when not ready.
func (b *Buffer) Size() (int, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.img == nil {
		return 0, 0
	}
	r := b.img.Bounds()
	return r.Dx(), r.Dy()
}

// Revision is incremented on every content change.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.revision
}

// Replace clears the surface and draws src at the origin, the equivalent of
// clearRect followed by drawImage.
func (b *Buffer) Replace(src image.Image) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.img == nil {
		return ErrNotReady
	}
	clear(b.img.Pix)
	draw.Draw(b.img, b.img.Bounds(), src, src.Bounds().Min, draw.Over)
	b.revision++
	return nil
}

// Image returns a copy of the surface.
func (b *Buffer) Image() (*image.RGBA, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.img == nil {
		return nil, ErrNotReady
	}
	out := image.NewRGBA(b.img.Bounds())
	copy(out.Pix, b.img.Pix)
	return out, nil
}

// At returns the non-premultiplied colour of a pixel. Out of range or
// unsized reads return transparent.
func (b *Buffer) At(x, y int) color.NRGBA {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.img == nil || !(image.Point{X: x, Y: y}).In(b.img.Bounds()) {
		return color.NRGBA{}
	}
	return color.NRGBAModel.Convert(b.img.At(x, y)).(color.NRGBA)
}

// Empty reports whether every pixel is fully transparent.
func (b *Buffer) Empty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.img == nil {
		return true
	}
	for i := 3; i < len(b.img.Pix); i += 4 {
		if b.img.Pix[i] != 0 {
			return false
		}
	}
	return true
}
