package cli

import (
	"context"
	"errors"
	"time"

	"github.com/iudanet/mapboard/internal/export"
	"github.com/iudanet/mapboard/internal/models"
)

type watchOptions struct {
	Out        string
	Background []string
}

// runWatch печатает каждое новое значение страницы до отмены ctx.
// С --out каждое значение дополнительно экспортируется в файл.
func (c *Cli) runWatch(ctx context.Context, opts watchOptions) error {
	key := c.pageKey()
	gw, err := c.gateway(key)
	if err != nil {
		return err
	}

	onUpdate := func(s *models.Snapshot) error {
		c.io.Printf("%s  %s  timestamp=%d node=%s\n",
			time.UnixMilli(s.Timestamp).UTC().Format(time.RFC3339), s.Key, s.Timestamp, s.NodeID)
		return nil
	}

	if opts.Out != "" {
		ed, err := c.openEditor(ctx, gw, opts.Background, viewOptions{}, nil)
		if err != nil {
			return err
		}
		defer ed.Close()

		save := func() {
			if err := export.File(opts.Out, ed.Render(), export.Options{Title: key, CreatedAt: time.Now()}); err != nil {
				c.logger.Warn("Failed to export snapshot", "error", err)
			}
		}
		save()

		printUpdate := onUpdate
		onUpdate = func(s *models.Snapshot) error {
			if err := ed.ApplyRemote(s); err != nil {
				return err
			}
			save()
			return printUpdate(s)
		}
	}

	c.io.Printf("Watching %s (Ctrl+C to stop)...\n", key)

	sub := gw.Subscribe(ctx, onUpdate)
	defer sub.Close()

	select {
	case <-ctx.Done():
		return nil
	case <-sub.Done():
		if err := sub.Err(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}
