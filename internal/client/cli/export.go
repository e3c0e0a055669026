package cli

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/iudanet/mapboard/internal/export"
)

type exportOptions struct {
	Out        string
	Format     string
	Background []string
	View       viewOptions
	AsSeen     bool // с трансформацией вида и размером экрана
}

// runExport сохраняет фон вместе с текущим слоем страницы в PNG или PDF
func (c *Cli) runExport(ctx context.Context, opts exportOptions) error {
	if opts.Out == "" {
		return fmt.Errorf("--out is required")
	}
	exportOpts := export.Options{Title: c.pageKey(), CreatedAt: time.Now()}
	if opts.Format != "" {
		f, err := export.ParseFormat(opts.Format)
		if err != nil {
			return err
		}
		exportOpts.Format = f
	}

	gw, err := c.gateway(exportOpts.Title)
	if err != nil {
		return err
	}
	ed, err := c.openEditor(ctx, gw, opts.Background, opts.View, nil)
	if err != nil {
		return err
	}
	defer ed.Close()

	var img image.Image
	if opts.AsSeen {
		img = ed.RenderView()
	} else {
		img = ed.Render()
	}

	if err := export.File(opts.Out, img, exportOpts); err != nil {
		return err
	}

	b := img.Bounds()
	c.io.Printf("✓ Exported %s to %s (%dx%d)\n", exportOpts.Title, opts.Out, b.Dx(), b.Dy())
	return nil
}
