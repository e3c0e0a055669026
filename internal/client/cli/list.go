package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/iudanet/mapboard/internal/pageid"
)

// runList выводит страницы, сохраненные на сервере
func (c *Cli) runList(ctx context.Context) error {
	resp, err := c.apiClient.ListMaps(ctx)
	if err != nil {
		return fmt.Errorf("failed to list maps: %w", err)
	}

	if len(resp.Maps) == 0 {
		c.io.Println("No maps saved on the server yet.")
		return nil
	}

	tw := tabwriter.NewWriter(c.io, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTIMESTAMP\tUPDATED")
	for _, m := range resp.Maps {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", m.Key, m.Timestamp, m.UpdatedAt.UTC().Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	c.io.Println()
	c.io.Printf("Total: %d map(s)\n", len(resp.Maps))
	return nil
}

// runPages выводит известные страницы и их ключи
func (c *Cli) runPages() {
	for _, key := range pageid.Keys() {
		c.io.Println(key)
	}
}
