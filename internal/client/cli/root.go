package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpClient "github.com/iudanet/mapboard/internal/client/api"
	"github.com/iudanet/mapboard/internal/client/iocli"
	"github.com/iudanet/mapboard/internal/client/storage/boltdb"
	"github.com/iudanet/mapboard/internal/config"
	"github.com/iudanet/mapboard/internal/discovery"
	"github.com/iudanet/mapboard/internal/editor"
)

// VersionInfo сведения о сборке, задаются через ldflags
type VersionInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// app хранит общие флаги и открытые ресурсы одного запуска
type app struct {
	v          *viper.Viper
	io         iocli.IO
	configFile string
	tokenFile  string
	closers    []func() error
	askToken   bool
}

// NewRootCommand создает корневую команду клиента mapboard
func NewRootCommand(info VersionInfo, stdio iocli.IO) *cobra.Command {
	a := &app{v: config.New(), io: stdio}
	config.SetClientDefaults(a.v)

	root := &cobra.Command{
		Use:           "mapboard",
		Short:         "Draw on shared maps and keep them in sync",
		Long:          "mapboard draws strokes on top of a map image and publishes the drawing\nto a shared server, where every viewer of the same page sees it.",
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdio)
	root.SetVersionTemplate(fmt.Sprintf("mapboard %s (built %s, commit %s)\n", info.Version, info.BuildDate, info.GitCommit))

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("server", "http://localhost:8080", "server URL, empty to discover one on the LAN")
	flags.String("db", "mapboard-client.db", "path to the local cache")
	flags.String("page", "", "page key (e.g. seal-map) or navigation path (e.g. /maps/seal.html)")
	flags.String("token", "", "editor token (prefer MAPBOARD_TOKEN or --token-file)")
	flags.StringVar(&a.tokenFile, "token-file", "", "file containing the editor token")
	flags.BoolVar(&a.askToken, "ask-token", false, "prompt for the editor token")
	flags.String("node-id", "", "client identifier (generated and stored on first use)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")

	for key, flag := range map[string]string{
		"server":    "server",
		"db":        "db",
		"page":      "page",
		"token":     "token",
		"node_id":   "node-id",
		"log.level": "log-level",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newDrawCommand(a, editor.ToolBrush),
		newDrawCommand(a, editor.ToolEraser),
		newWatchCommand(a),
		newPullCommand(a),
		newExportCommand(a),
		newListCommand(a),
		newPagesCommand(a),
		newDiscoverCommand(a),
		newStatusCommand(a),
	)
	return root
}

// cli собирает Cli из конфигурации: API клиент, локальный кеш и токен
func (a *app) cli(ctx context.Context) (*Cli, error) {
	if err := config.ReadFile(a.v, a.configFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadClient(a.v)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}

	server := cfg.Server
	if server == "" {
		svc, err := discovery.Browser{}.First(ctx)
		if err != nil {
			return nil, fmt.Errorf("no --server given and discovery failed: %w", err)
		}
		server = svc.URL()
		a.io.Printf("Using server %s\n", server)
	}

	token, err := ReadToken(a.io, TokenSource{FromFile: a.tokenFile, FromArgs: cfg.Token, Prompt: a.askToken})
	if err != nil {
		return nil, err
	}
	apiClient := httpClient.NewClient(server)
	apiClient.SetToken(token)

	store, err := boltdb.New(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open local cache: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	nodeID := cfg.NodeID
	if nodeID == "" {
		if nodeID, err = store.NodeID(ctx); err != nil {
			return nil, err
		}
	}

	return New(Deps{
		IO:       a.io,
		API:      apiClient,
		Cache:    store,
		Metadata: store,
		Browser:  discovery.Browser{},
		Logger:   logger,
		Page:     cfg.Page,
		NodeID:   nodeID,
	}), nil
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// run открывает ресурсы, выполняет fn и закрывает ресурсы
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, c *Cli) error) (err error) {
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	ctx := cmd.Context()
	c, err := a.cli(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, c)
}

func addViewFlags(cmd *cobra.Command, view *viewOptions) {
	cmd.Flags().StringVar(&view.Viewport, "viewport", "", "screen size the map occupies at zoom 1, WxH (default: image size)")
	cmd.Flags().Float64Var(&view.Zoom, "zoom", 0, "zoom factor applied before drawing")
	cmd.Flags().StringVar(&view.ZoomOrigin, "zoom-origin", "", "screen point kept fixed while zooming, x,y")
	cmd.Flags().StringVar(&view.Pan, "pan", "", "pan offset in screen pixels, dx,dy")
	cmd.Flags().IntVar(&view.MaxWidth, "max-width", 0, "scale the map down to at most this many pixels wide")
}

func newDrawCommand(a *app, tool editor.Tool) *cobra.Command {
	opts := drawOptions{Tool: tool}

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw strokes on the page and publish the drawing",
		Example: `  mapboard draw --page seal-map --background seal.png --stroke "100,100 100,300"
  mapboard draw --page /maps/otford.html --background otford.png --color "#FF0000" \
      --stroke "10,10;50,60;90,20" --stroke "200,200"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runDraw(ctx, opts)
			})
		},
	}
	size := float64(editor.DefaultBrushSize)
	if tool == editor.ToolEraser {
		cmd.Use = "erase"
		cmd.Short = "Erase along strokes and publish the drawing"
		cmd.Example = `  mapboard erase --page seal-map --background seal.png --stroke "100,100 100,300"`
		size = editor.DefaultEraserSize
	} else {
		cmd.Flags().StringVar(&opts.Color, "color", editor.DefaultColor, "brush colour, #RGB or #RRGGBB")
	}

	cmd.Flags().StringSliceVar(&opts.Background, "background", nil, "map image path or URL; repeat for fallbacks")
	cmd.Flags().StringArrayVar(&opts.Strokes, "stroke", nil, "stroke through screen points \"x1,y1 x2,y2 ...\"; repeatable")
	cmd.Flags().Float64Var(&opts.Size, "size", size, "pen width in map pixels")
	cmd.Flags().BoolVar(&opts.Precision, "precision", false, "halve the pen width")
	cmd.Flags().StringVar(&opts.Out, "out", "", "also export the result to a .png or .pdf file")
	addViewFlags(cmd, &opts.View)
	_ = cmd.MarkFlagRequired("background")
	_ = cmd.MarkFlagRequired("stroke")
	return cmd
}

func newWatchCommand(a *app) *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print every change of the page as it happens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runWatch(ctx, opts)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Out, "out", "", "keep this .png or .pdf file updated with the latest drawing")
	cmd.Flags().StringSliceVar(&opts.Background, "background", nil, "map image for --out")
	cmd.MarkFlagsRequiredTogether("out", "background")
	return cmd
}

func newPullCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Fetch the current drawing of the page into the local cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runPull(ctx)
			})
		},
	}
}

func newExportCommand(a *app) *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save the map with its drawing as PNG or PDF",
		Example: `  mapboard export --page seal-map --background seal.png --out seal.pdf`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runExport(ctx, opts)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Out, "out", "", "output file, format taken from the extension")
	cmd.Flags().StringVar(&opts.Format, "format", "", "png or pdf, overrides the extension")
	cmd.Flags().StringSliceVar(&opts.Background, "background", nil, "map image path or URL; repeat for fallbacks")
	cmd.Flags().BoolVar(&opts.AsSeen, "as-seen", false, "export the zoomed and panned view instead of the whole map")
	addViewFlags(cmd, &opts.View)
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("background")
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pages saved on the server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runList(ctx)
			})
		},
	}
}

func newPagesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "Print the keys of the known map pages",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			New(Deps{IO: a.io}).runPages()
		},
	}
}

func newDiscoverCommand(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find mapboard servers on the local network",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := New(Deps{IO: a.io, Browser: discovery.Browser{Timeout: timeout}})
			return c.runDiscover(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", discovery.DefaultTimeout, "how long to wait for answers")
	return cmd
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server, token and local cache status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runStatus(ctx)
			})
		},
	}
}
