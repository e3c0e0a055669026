package cli

import (
	"context"
	"time"
)

// runPull читает текущую запись страницы в локальный кеш
func (c *Cli) runPull(ctx context.Context) error {
	key := c.pageKey()
	gw, err := c.gateway(key)
	if err != nil {
		return err
	}

	snapshot, err := gw.Pull(ctx, nil)
	if err != nil {
		return err
	}
	if snapshot == nil {
		c.io.Printf("Page %s has no drawing yet.\n", key)
		return nil
	}

	c.io.Printf("✓ Pulled %s\n", key)
	c.io.Printf("Timestamp: %d (%s)\n", snapshot.Timestamp,
		time.UnixMilli(snapshot.Timestamp).UTC().Format(time.RFC3339))
	if snapshot.NodeID != "" {
		c.io.Printf("Published by: %s\n", snapshot.NodeID)
	}
	c.io.Printf("Size: %d bytes\n", len(snapshot.MapData))
	return nil
}
