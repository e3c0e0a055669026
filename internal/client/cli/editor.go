package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/iudanet/mapboard/internal/client/sync"
	"github.com/iudanet/mapboard/internal/editor"
	"github.com/iudanet/mapboard/internal/models"
)

// viewOptions задают экран, на котором "нарисованы" точки штрихов
type viewOptions struct {
	Viewport   string // WxH
	ZoomOrigin string // x,y
	Pan        string // dx,dy
	Zoom       float64
	MaxWidth   int
}

// openEditor создает редактор страницы: применяет локальный кеш,
// затем текущую запись сервера и загружает фон. Недоступный сервер
// не мешает работе с кешированным слоем. onStrokeEnd вызывается после
// каждого штриха, изменившего слой (nil для команд только чтения).
func (c *Cli) openEditor(ctx context.Context, gw *sync.Gateway, background []string, view viewOptions, onStrokeEnd func()) (*editor.Editor, error) {
	if len(background) == 0 {
		return nil, fmt.Errorf("at least one --background image is required")
	}

	ed, err := editor.New(editor.Options{
		Logger:         c.logger,
		Color:          editor.DefaultColor,
		BrushSize:      editor.DefaultBrushSize,
		EraserSize:     editor.DefaultEraserSize,
		MaxBufferWidth: view.MaxWidth,
		OnStrokeEnd:    onStrokeEnd,
	})
	if err != nil {
		return nil, err
	}

	cached, err := gw.Prime(ctx, ed.ApplyRemote)
	if err != nil {
		c.logger.Warn("Failed to read local cache", "error", err)
	}

	if _, err := gw.Pull(ctx, ed.ApplyRemote); err != nil {
		c.io.Printf("Warning: server unavailable, using cached drawing: %v\n", err)
	}

	if err := ed.LoadBackground(ctx, editor.LoaderFor(background[0]), background...); err != nil {
		ed.Close()
		return nil, fmt.Errorf("failed to load map image: %w", err)
	}

	if cached != nil {
		ed.SetView(editor.Transform{Scale: cached.Scale, OffsetX: cached.OffsetX, OffsetY: cached.OffsetY})
	}
	if err := applyView(ed, view); err != nil {
		ed.Close()
		return nil, err
	}
	return ed, nil
}

func applyView(ed *editor.Editor, view viewOptions) error {
	if view.Viewport != "" {
		w, h, err := parseSize(view.Viewport)
		if err != nil {
			return err
		}
		ed.SetViewport(w, h)
	}
	if view.Zoom != 0 {
		var ox, oy float64
		if view.ZoomOrigin != "" {
			p, err := parsePoint(view.ZoomOrigin)
			if err != nil {
				return fmt.Errorf("invalid --zoom-origin: %w", err)
			}
			ox, oy = p.X, p.Y
		}
		ed.Zoom(view.Zoom, ox, oy)
	}
	if view.Pan != "" {
		p, err := parsePoint(view.Pan)
		if err != nil {
			return fmt.Errorf("invalid --pan: %w", err)
		}
		ed.Pan(p.X, p.Y)
	}
	return nil
}

func viewState(t editor.Transform) models.ViewState {
	return models.ViewState{Scale: t.Scale, OffsetX: t.OffsetX, OffsetY: t.OffsetY}
}

// parsePoint разбирает "x,y"
func parsePoint(s string) (editor.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return editor.Point{}, fmt.Errorf("point %q must look like x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return editor.Point{}, fmt.Errorf("invalid x in %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return editor.Point{}, fmt.Errorf("invalid y in %q: %w", s, err)
	}
	return editor.Point{X: x, Y: y}, nil
}

// parseStroke разбирает "x1,y1 x2,y2 ..." (разделители пробел или ';')
func parseStroke(s string) ([]editor.Point, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ';' })
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty stroke")
	}

	points := make([]editor.Point, 0, len(fields))
	for _, f := range fields {
		p, err := parsePoint(f)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// parseSize разбирает "WxH"
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q must look like WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	return w, h, nil
}
