package editor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/raster"
)

const (
	// DefaultBrushSize is the brush width in buffer pixels.
	DefaultBrushSize = 10
	// DefaultEraserSize is the eraser width in buffer pixels.
	DefaultEraserSize = 30
	// DefaultColor is the initial brush colour.
	DefaultColor = "#00FFFF"

	loadErrorMessage = "Map image failed to load"
	loadingMessage   = "Loading map..."
)

var eraserPreview = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x80}

// Options configures an Editor.
type Options struct {
	Logger *slog.Logger
	// Now is the clock used by the rate limiter.
	Now func() time.Time
	// OnStrokeEnd is called after a stroke that changed the buffer. It runs
	// outside the editor lock, so it may call back into the editor.
	OnStrokeEnd func()
	Color       string
	Limits      LimitPolicy
	BrushSize   float64
	EraserSize  float64
	// MaxBufferWidth bounds the drawing buffer width. Zero keeps the
	// background's natural size.
	MaxBufferWidth int
}

// DefaultOptions returns the stock editor configuration with rate limits on.
func DefaultOptions() Options {
	return Options{
		Color:      DefaultColor,
		BrushSize:  DefaultBrushSize,
		EraserSize: DefaultEraserSize,
		Limits:     DefaultLimitPolicy(),
	}
}

// Editor ties the drawing buffer, the view transform and the stroke recorder
// together. All methods are safe for concurrent use.
type Editor struct {
	logger      *slog.Logger
	buf         *raster.Buffer
	rec         *Recorder
	background  image.Image
	loadErr     error
	pending     *models.Snapshot
	onStrokeEnd func()
	source      string
	transform   Transform
	viewport    image.Point
	maxWidth    int
	mu          sync.Mutex
}

// New creates an editor that is not ready until LoadBackground succeeds.
func New(opts Options) (*Editor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	buf := raster.NewUnsized()
	rec := NewRecorder(buf, NewLimiter(opts.Limits), logger)
	if opts.Now != nil {
		rec.now = opts.Now
	}

	if opts.Color != "" {
		c, err := raster.ParseHexColor(opts.Color)
		if err != nil {
			return nil, err
		}
		rec.SetColor(c)
	}
	if opts.BrushSize > 0 {
		rec.SetBrushSize(opts.BrushSize)
	}
	if opts.EraserSize > 0 {
		rec.SetEraserSize(opts.EraserSize)
	}

	return &Editor{
		logger:      logger,
		buf:         buf,
		rec:         rec,
		onStrokeEnd: opts.OnStrokeEnd,
		transform:   Identity(),
		maxWidth:    opts.MaxBufferWidth,
	}, nil
}

// LoadBackground loads the first decodable image among paths and sizes the
// drawing buffer after it. On failure the editor stays not ready and Render
// shows an error message.
func (e *Editor) LoadBackground(ctx context.Context, loader Loader, paths ...string) error {
	img, source, err := loadFirst(ctx, loader, paths)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.loadErr = err
		e.logger.Error("Failed to load map image", "paths", paths, "error", err)
		return err
	}

	img = raster.FitWidth(img, e.maxWidth)
	size := img.Bounds().Size()
	if e.buf.Ready() {
		err = e.buf.Resize(size.X, size.Y)
	} else {
		err = e.buf.Create(size.X, size.Y)
	}
	if err != nil {
		e.loadErr = fmt.Errorf("%w: %w", ErrBackgroundLoad, err)
		return e.loadErr
	}

	e.background = img
	e.source = source
	e.loadErr = nil
	e.logger.Info("Map image loaded", "source", source, "width", size.X, "height", size.Y)

	if e.pending != nil {
		s := e.pending
		e.pending = nil
		if err := e.applyLocked(s); err != nil {
			e.logger.Warn("Failed to apply pending snapshot", "key", s.Key, "error", err)
		}
	}
	return nil
}

// Ready reports whether the background is loaded and drawing is possible.
func (e *Editor) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Ready()
}

// Err returns the background load error, if any.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadErr
}

// Source returns the path the background was loaded from.
func (e *Editor) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// SetTool switches between brush and eraser.
func (e *Editor) SetTool(t Tool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.SetTool(t)
}

// Tool returns the selected tool.
func (e *Editor) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.Tool()
}

// SetColor sets the brush colour from a #RGB or #RRGGBB string.
func (e *Editor) SetColor(hex string) error {
	c, err := raster.ParseHexColor(hex)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.SetColor(c)
	return nil
}

// Color returns the brush colour as #RRGGBB.
func (e *Editor) Color() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return raster.HexColor(e.rec.Color())
}

// SetBrushSize sets the brush width in buffer pixels.
func (e *Editor) SetBrushSize(w float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.SetBrushSize(w)
}

// SetEraserSize sets the eraser width in buffer pixels.
func (e *Editor) SetEraserSize(w float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.SetEraserSize(w)
}

// TogglePrecision switches precision mode and reports the new state.
func (e *Editor) TogglePrecision() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.TogglePrecision()
}

// Zoom scales the view around a screen point.
func (e *Editor) Zoom(factor, originX, originY float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transform = e.transform.Zoom(factor, originX, originY)
}

// Pan moves the view.
func (e *Editor) Pan(dx, dy float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transform = e.transform.Pan(dx, dy)
}

// View returns the current transform.
func (e *Editor) View() Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transform
}

// SetView replaces the transform, e.g. with a cached one.
func (e *Editor) SetView(t Transform) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transform = t.Normalize()
}

// SetViewport sets the size the background occupies on screen at scale 1.
func (e *Editor) SetViewport(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = image.Pt(max(width, 0), max(height, 0))
}

func (e *Editor) mapper() Mapper {
	w, h := e.buf.Size()
	return Mapper{Transform: e.transform, Buffer: image.Pt(w, h), Display: e.viewport}
}

// ToBuffer maps a screen point into buffer space.
func (e *Editor) ToBuffer(screen Point) (Point, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapper().ToBuffer(screen)
}

// PointerDown starts a stroke at a screen point. It reports whether the
// stroke was accepted.
func (e *Editor) PointerDown(screen Point) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.mapper().ToBuffer(screen)
	if err != nil {
		return false
	}
	return e.rec.Down(p)
}

// PointerMove extends the current stroke. Without a stroke it does nothing.
func (e *Editor) PointerMove(screen Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.mapper().ToBuffer(screen)
	if err != nil {
		return
	}
	e.rec.Move(p)
}

// PointerUp finishes the stroke. When the buffer changed, OnStrokeEnd is
// called.
func (e *Editor) PointerUp() bool {
	e.mu.Lock()
	changed := e.rec.Up()
	cb := e.onStrokeEnd
	e.mu.Unlock()

	if changed && cb != nil {
		cb()
	}
	return changed
}

// PointerLeave ends the stroke the same way PointerUp does.
func (e *Editor) PointerLeave() bool {
	return e.PointerUp()
}

// Trace draws a whole stroke through the given screen points.
func (e *Editor) Trace(points ...Point) bool {
	if len(points) == 0 || !e.PointerDown(points[0]) {
		return false
	}
	for _, p := range points[1:] {
		e.PointerMove(p)
	}
	return e.PointerUp()
}

// ApplyRemote replaces the drawing buffer with a remote snapshot. Before the
// background loads the snapshot is kept and applied once the buffer exists.
// A stroke in progress is overwritten.
func (e *Editor) ApplyRemote(s *models.Snapshot) error {
	if s.IsEmpty() {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.buf.Ready() {
		if s.IsNewerThan(e.pending) {
			e.pending = s.Clone()
		}
		return nil
	}
	return e.applyLocked(s)
}

func (e *Editor) applyLocked(s *models.Snapshot) error {
	img, err := raster.DecodeDataURL(s.MapData)
	if err != nil {
		return fmt.Errorf("failed to decode snapshot %s: %w", s.Key, err)
	}
	if err := e.buf.Replace(img); err != nil {
		return err
	}
	e.logger.Debug("Applied remote snapshot", "key", s.Key, "timestamp", s.Timestamp)
	return nil
}

// Render composites background and drawing at buffer size. When the
// background failed to load it returns a canvas with an error message.
func (e *Editor) Render() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()

	if msg, ok := e.statusLocked(); !ok {
		return raster.ErrorCanvas(e.viewport.X, e.viewport.Y, msg)
	}
	w, h := e.buf.Size()
	return raster.Compose(w, h, e.background, e.buf)
}

// RenderView composites the map as seen on screen: viewport sized, with the
// current transform applied.
func (e *Editor) RenderView() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()

	if msg, ok := e.statusLocked(); !ok {
		return raster.ErrorCanvas(e.viewport.X, e.viewport.Y, msg)
	}

	w, h := e.buf.Size()
	src := raster.Compose(w, h, e.background, e.buf)

	display := e.viewport
	if display.X <= 0 || display.Y <= 0 {
		display = image.Pt(w, h)
	}
	t := e.transform.Normalize()
	sx := t.Scale * float64(display.X) / float64(w)
	sy := t.Scale * float64(display.Y) / float64(h)

	dst := image.NewRGBA(image.Rect(0, 0, display.X, display.Y))
	aff := f64.Aff3{sx, 0, t.OffsetX, 0, sy, t.OffsetY}
	xdraw.ApproxBiLinear.Transform(dst, aff, src, src.Bounds(), xdraw.Over, nil)
	return dst
}

func (e *Editor) statusLocked() (string, bool) {
	if e.loadErr != nil {
		return loadErrorMessage, false
	}
	if !e.buf.Ready() {
		return loadingMessage, false
	}
	return "", true
}

// CursorPreview renders the pen tip as it appears on screen.
func (e *Editor) CursorPreview() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()

	ratio := 1.0
	if w, _ := e.buf.Size(); w > 0 && e.viewport.X > 0 {
		ratio = float64(e.viewport.X) / float64(w)
	}
	d := e.rec.Width() * e.transform.Normalize().Scale * ratio
	size := int(math.Ceil(d)) + 2

	var c color.Color = e.rec.Color()
	if e.rec.Tool() == ToolEraser {
		c = eraserPreview
	}

	tip, err := raster.New(size, size)
	if err != nil {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	center := float64(size) / 2
	if _, err := tip.Stroke([]Point{{X: center, Y: center}}, raster.Paint{Color: c, Width: d}); err != nil {
		e.logger.Debug("Cursor preview failed", "error", err)
	}
	img, _ := tip.Image()
	return img
}

// Snapshot returns a copy of the drawing buffer.
func (e *Editor) Snapshot() (image.Image, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Image()
}

// Buffer exposes the drawing buffer for publishing.
func (e *Editor) Buffer() *raster.Buffer {
	return e.buf
}

// Close disposes the drawing buffer. The editor is not ready afterwards.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rec.Cancel()
	e.buf.Dispose()
	e.background = nil
	e.pending = nil
}
