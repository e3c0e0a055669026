package editor

import (
	"image/color"
	"log/slog"
	"math"
	"time"

	"github.com/iudanet/mapboard/internal/raster"
)

// Tool selects the paint mode of the next stroke.
type Tool string

const (
	ToolBrush  Tool = "brush"
	ToolEraser Tool = "eraser"
)

// State of the stroke recorder.
type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

const minPenSize = 1.0

// Recorder turns pointer down/move/up into strokes on a Buffer.
// It is not safe for concurrent use; Editor serialises access.
type Recorder struct {
	buf     *raster.Buffer
	limiter *Limiter
	logger  *slog.Logger
	now     func() time.Time

	color      color.NRGBA
	tool       Tool
	brushSize  float64
	eraserSize float64
	precision  bool

	state   State
	mode    raster.Mode
	last    Point
	changed bool
}

// NewRecorder creates an idle recorder drawing into buf.
func NewRecorder(buf *raster.Buffer, limiter *Limiter, logger *slog.Logger) *Recorder {
	return &Recorder{
		buf:        buf,
		limiter:    limiter,
		logger:     logger,
		now:        time.Now,
		color:      color.NRGBA{R: 0x00, G: 0xff, B: 0xff, A: 0xff},
		tool:       ToolBrush,
		brushSize:  10,
		eraserSize: 30,
		mode:       raster.ModeOver,
	}
}

// State returns Idle or Drawing.
func (r *Recorder) State() State { return r.state }

// Mode returns the active paint mode. It is ModeOver whenever Idle.
func (r *Recorder) Mode() raster.Mode { return r.mode }

// Tool returns the selected tool.
func (r *Recorder) Tool() Tool { return r.tool }

// SetTool selects the tool for the next stroke and resets eraser limits.
func (r *Recorder) SetTool(t Tool) {
	r.tool = t
	if r.limiter != nil {
		r.limiter.ResetEraser()
	}
}

// SetColor sets the brush colour.
func (r *Recorder) SetColor(c color.NRGBA) { r.color = c }

// Color returns the brush colour.
func (r *Recorder) Color() color.NRGBA { return r.color }

// SetBrushSize sets the nominal brush width.
func (r *Recorder) SetBrushSize(w float64) { r.brushSize = math.Max(w, minPenSize) }

// SetEraserSize sets the nominal eraser width.
func (r *Recorder) SetEraserSize(w float64) { r.eraserSize = math.Max(w, minPenSize) }

// TogglePrecision halves (or restores) both pen widths.
func (r *Recorder) TogglePrecision() bool {
	r.precision = !r.precision
	return r.precision
}

// Width returns the effective width of the selected tool.
func (r *Recorder) Width() float64 {
	w := r.brushSize
	if r.tool == ToolEraser {
		w = r.eraserSize
	}
	if r.precision {
		w /= 2
	}
	return math.Max(w, minPenSize)
}

func (r *Recorder) paint() raster.Paint {
	return raster.Paint{Color: r.color, Width: r.Width(), Mode: r.mode}
}

// Down starts a stroke at p (buffer space). It reports whether the stroke
// was accepted.
func (r *Recorder) Down(p Point) bool {
	if !r.buf.Ready() || r.state == Drawing {
		return false
	}

	if r.limiter != nil {
		if reason := r.limiter.Allow(r.tool, r.now()); reason != RejectNone {
			r.logger.Debug("Stroke start rejected", "tool", r.tool, "reason", reason)
			return false
		}
	}

	r.state = Drawing
	r.last = p
	r.changed = false
	if r.tool == ToolEraser {
		r.mode = raster.ModeErase
	} else {
		r.mode = raster.ModeOver
	}
	return true
}

// Move extends the stroke to p. Moves while Idle are ignored.
func (r *Recorder) Move(p Point) {
	if r.state != Drawing {
		return
	}

	pts := Interpolate(r.last, p, r.Width()/2)
	changed, err := r.buf.Stroke(pts, r.paint())
	if err != nil {
		r.logger.Debug("Stroke segment skipped", "error", err)
	}
	r.changed = r.changed || changed
	r.last = p
}

// Up finishes the stroke and reports whether the buffer changed. A click
// without movement leaves a round dot.
func (r *Recorder) Up() bool {
	if r.state != Drawing {
		return false
	}

	if !r.changed {
		changed, err := r.buf.Stroke([]Point{r.last}, r.paint())
		if err != nil {
			r.logger.Debug("Dot skipped", "error", err)
		}
		r.changed = changed
	}

	changed := r.changed
	r.state = Idle
	r.mode = raster.ModeOver
	r.changed = false
	return changed
}

// Cancel drops the current gesture without finishing it.
func (r *Recorder) Cancel() {
	r.state = Idle
	r.mode = raster.ModeOver
	r.changed = false
}

// Interpolate returns the points from a to b (both included) spaced at most
// spacing apart, so fast pointer moves leave no gaps.
func Interpolate(a, b Point, spacing float64) []Point {
	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	if spacing <= 0 || dist <= spacing {
		return []Point{a, b}
	}

	steps := int(math.Ceil(dist / spacing))
	pts := make([]Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t})
	}
	return pts
}
