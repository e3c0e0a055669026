package cli

import (
	"context"
	"errors"
	"time"

	httpClient "github.com/iudanet/mapboard/internal/client/api"
	"github.com/iudanet/mapboard/internal/client/storage"
)

// runStatus показывает состояние сервера, токена и локального кеша
func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	key := c.pageKey()
	c.io.Printf("Page: %s\n", key)
	if c.nodeID != "" {
		c.io.Printf("Node ID: %s\n", c.nodeID)
	}

	health, err := c.apiClient.Health(ctx)
	if err != nil {
		c.io.Printf("Server: unavailable (%v)\n", err)
	} else {
		c.io.Printf("Server: %s (version %s, storage %s)\n", health.Status, health.Version, health.Storage)
	}

	info, err := c.apiClient.TokenInfo(ctx)
	switch {
	case err == nil:
		c.io.Printf("Editor token: %s, pages %v\n", info.ID, info.Pages)
		if info.ExpiresAt != nil {
			c.io.Printf("Token expires: %s\n", info.ExpiresAt.Format(time.RFC3339))
		}
	case errors.Is(err, httpClient.ErrNotFound):
		c.io.Println("Editor token: not required by server")
	case errors.Is(err, httpClient.ErrUnauthorized):
		c.io.Println("⚠️  Editor token: missing or rejected")
	default:
		c.io.Printf("Editor token: unknown (%v)\n", err)
	}

	c.io.Println()
	if c.cache == nil {
		return nil
	}

	cached, err := c.cache.GetSnapshot(ctx, key)
	switch {
	case errors.Is(err, storage.ErrSnapshotNotFound):
		c.io.Println("Local cache: empty")
	case err != nil:
		c.io.Printf("Warning: Failed to read local cache: %v\n", err)
	default:
		c.io.Printf("Local cache: timestamp %d (%s)\n", cached.Timestamp,
			time.UnixMilli(cached.Timestamp).UTC().Format(time.RFC3339))
	}

	if c.meta != nil {
		last, err := c.meta.GetLastSyncTimestamp(ctx, key)
		if err != nil {
			c.io.Printf("Warning: Failed to get last sync timestamp: %v\n", err)
		} else if last > 0 {
			c.io.Printf("Last synced: %d\n", last)
		}
	}

	pages, err := c.cache.ListSnapshots(ctx)
	if err == nil && len(pages) > 0 {
		c.io.Printf("Cached pages: %d\n", len(pages))
	}
	return nil
}
