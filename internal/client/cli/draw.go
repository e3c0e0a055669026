package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/mapboard/internal/editor"
	"github.com/iudanet/mapboard/internal/export"
	"github.com/iudanet/mapboard/internal/models"
)

type drawOptions struct {
	Color      string
	Out        string
	Tool       editor.Tool
	Background []string
	Strokes    []string
	View       viewOptions
	Size       float64
	Precision  bool
}

// runDraw рисует штрихи поверх текущего слоя страницы. Каждый штрих,
// изменивший слой, сразу публикуется, как при отпускании кнопки мыши.
func (c *Cli) runDraw(ctx context.Context, opts drawOptions) error {
	if len(opts.Strokes) == 0 {
		return fmt.Errorf("at least one --stroke is required")
	}
	strokes := make([][]editor.Point, 0, len(opts.Strokes))
	for _, s := range opts.Strokes {
		pts, err := parseStroke(s)
		if err != nil {
			return fmt.Errorf("invalid --stroke: %w", err)
		}
		strokes = append(strokes, pts)
	}

	key := c.pageKey()
	gw, err := c.gateway(key)
	if err != nil {
		return err
	}

	var (
		ed         *editor.Editor
		last       *models.Snapshot
		publishErr error
		published  int
		failed     int
	)
	// Ошибку публикации уже показал Notifier, рисование продолжается
	publish := func() {
		snapshot, err := gw.Publish(ctx, ed.Buffer(), ed.ApplyRemote)
		if err != nil {
			failed++
			publishErr = err
			return
		}
		published++
		last = snapshot
	}

	ed, err = c.openEditor(ctx, gw, opts.Background, opts.View, publish)
	if err != nil {
		return err
	}
	defer ed.Close()

	ed.SetTool(opts.Tool)
	if opts.Color != "" {
		if err := ed.SetColor(opts.Color); err != nil {
			return err
		}
	}
	if opts.Size > 0 {
		if opts.Tool == editor.ToolEraser {
			ed.SetEraserSize(opts.Size)
		} else {
			ed.SetBrushSize(opts.Size)
		}
	}
	if opts.Precision {
		ed.TogglePrecision()
	}

	c.io.Printf("=== %s on %s ===\n", opts.Tool, key)

	changed := 0
	for _, pts := range strokes {
		if ed.Trace(pts...) {
			changed++
		}
	}
	if changed == 0 {
		c.io.Println("Nothing changed, nothing to publish.")
		return nil
	}

	if published > 0 {
		if err := gw.SaveView(ctx, viewState(ed.View())); err != nil {
			c.logger.Warn("Failed to save view", "error", err)
		}
		c.io.Printf("✓ Published %d stroke(s) to %s\n", published, key)
		c.io.Printf("Timestamp: %d (%s)\n", last.Timestamp,
			time.UnixMilli(last.Timestamp).UTC().Format(time.RFC3339))
	}

	if opts.Out != "" {
		if err := export.File(opts.Out, ed.Render(), export.Options{Title: key, CreatedAt: time.Now()}); err != nil {
			return err
		}
		c.io.Printf("Saved %s\n", opts.Out)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d stroke(s) not published: %w", failed, changed, publishErr)
	}
	return nil
}
