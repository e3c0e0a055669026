package cli

import (
	"context"
	"fmt"
)

// runDiscover ищет серверы mapboard в локальной сети
func (c *Cli) runDiscover(ctx context.Context) error {
	if c.browser == nil {
		return fmt.Errorf("discovery is not available")
	}

	c.io.Println("Searching for mapboard servers...")
	found, err := c.browser.Browse(ctx)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}
	if len(found) == 0 {
		c.io.Println("No servers found.")
		return nil
	}

	for _, s := range found {
		version := s.Version
		if version == "" {
			version = "unknown"
		}
		c.io.Printf("%s  %s (host %s, version %s)\n", s.URL(), s.Instance, s.Host, version)
	}
	return nil
}
