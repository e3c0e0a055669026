package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/mapboard/internal/config"
	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/server"
	"github.com/iudanet/mapboard/internal/server/handlers"
	"github.com/iudanet/mapboard/internal/server/storage"
	"github.com/iudanet/mapboard/internal/validation"
)

const minSecretLen = 16

func newTokenCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue, list and revoke editor tokens",
	}
	cmd.AddCommand(newTokenIssueCommand(a), newTokenListCommand(a), newTokenRevokeCommand(a))
	return cmd
}

func newTokenIssueCommand(a *app) *cobra.Command {
	var (
		label string
		pages []string
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a new editor token",
		Example: `  mapboard-server token issue --label "parish office" --page seal-map --page otford-map
  mapboard-server token issue --label admin --page '*' --ttl 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTokenStore(cmd.Context(), func(ctx context.Context, cfg *config.Server, store server.Store) error {
				return a.issueToken(ctx, cfg, store, label, pages)
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "who the token is for")
	cmd.Flags().StringSliceVar(&pages, "page", nil, "page key the token may write, or * for all; repeatable")
	cmd.Flags().Duration("ttl", 0, "token lifetime, 0 for no expiry")
	a.bind(cmd.Flags(), map[string]string{"auth.token_ttl": "ttl"})
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

func newTokenListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List issued editor tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTokenStore(cmd.Context(), func(ctx context.Context, _ *config.Server, store server.Store) error {
				return a.listTokens(ctx, store)
			})
		},
	}
}

func newTokenRevokeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an editor token by its ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTokenStore(cmd.Context(), func(ctx context.Context, _ *config.Server, store server.Store) error {
				if err := store.RevokeToken(ctx, args[0]); err != nil {
					if errors.Is(err, storage.ErrTokenNotFound) {
						return fmt.Errorf("token %s not found", args[0])
					}
					return err
				}
				a.io.Printf("✓ Token %s revoked\n", args[0])
				return nil
			})
		},
	}
}

// withTokenStore открывает постоянное хранилище для команд токенов
func (a *app) withTokenStore(ctx context.Context, fn func(context.Context, *config.Server, server.Store) error) error {
	cfg, err := a.load()
	if err != nil {
		return err
	}
	if cfg.StorageDriver == config.DriverMemory {
		return fmt.Errorf("token commands need persistent storage, memory driver forgets tokens on exit")
	}

	store, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(ctx, cfg, store)
}

func (a *app) issueToken(ctx context.Context, cfg *config.Server, store server.Store, label string, pages []string) error {
	for _, page := range pages {
		if page == models.AllPages {
			continue
		}
		if err := validation.ValidatePageKey(page); err != nil {
			return fmt.Errorf("invalid page %q: %w", page, err)
		}
	}

	secret := cfg.AuthSecret
	if secret == "" {
		var err error
		secret, err = a.io.ReadPassword("Auth secret: ")
		if err != nil {
			return fmt.Errorf("failed to read auth secret: %w", err)
		}
		if len(secret) < minSecretLen {
			return fmt.Errorf("auth secret must be at least %d characters", minSecretLen)
		}
	}

	tokenString, record, err := handlers.GenerateEditorToken(handlers.JWTConfig{
		Secret:   []byte(secret),
		TokenTTL: cfg.TokenTTL,
	}, label, pages)
	if err != nil {
		return err
	}
	if err := store.SaveToken(ctx, record); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	a.io.Printf("✓ Token issued: %s\n", record.ID)
	a.io.Printf("Pages: %s\n", strings.Join(record.Pages, ", "))
	if !record.ExpiresAt.IsZero() {
		a.io.Printf("Expires: %s\n", record.ExpiresAt.UTC().Format(time.RFC3339))
	}
	a.io.Println()
	a.io.Println(tokenString)
	return nil
}

func (a *app) listTokens(ctx context.Context, store server.Store) error {
	tokens, err := store.ListTokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}
	if len(tokens) == 0 {
		a.io.Println("No tokens issued yet.")
		return nil
	}

	now := time.Now()
	tw := tabwriter.NewWriter(a.io, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tPAGES\tEXPIRES\tSTATUS")
	for _, t := range tokens {
		expires := "never"
		if !t.ExpiresAt.IsZero() {
			expires = t.ExpiresAt.UTC().Format(time.RFC3339)
		}
		status := "active"
		switch {
		case t.Revoked:
			status = "revoked"
		case !t.IsActive(now):
			status = "expired"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Label, strings.Join(t.Pages, ","), expires, status)
	}
	return tw.Flush()
}
