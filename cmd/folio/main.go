// Command folio is a collection administration tool for a document store:
// browse collections, edit documents through declarative form pages and
// preview rendered markdown or code next to the form.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/asaidimu/go-folio/config"
	"github.com/asaidimu/go-folio/core/schema"
	"github.com/asaidimu/go-folio/core/store"
	"github.com/asaidimu/go-folio/preview"
	"github.com/asaidimu/go-folio/tui"
	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "modernc.org/sqlite"
)

var (
	// Global flags
	verbose    bool
	configPath string
	envFiles   []string

	// Root flags
	collection string
	pageTitle  string
	browser    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Edit document store collections through form pages",
	Long: `folio opens a terminal editor over the configured document store.
Pick a collection and a page from the home menu, then load, edit and save
documents. Pages may spread their fields over several collections that share
one document id.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFiles...); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		// the terminal UI owns stdout, so it logs to a file
		logger, err = buildLogger(cfg, cmd == cmd.Root())
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runTUI,
}

func buildLogger(cfg *config.Config, toFile bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if toFile && cfg.Logging.File != "" {
		zc.OutputPaths = []string{cfg.Logging.File}
		zc.ErrorOutputPaths = []string{cfg.Logging.File}
	}
	return zc.Build()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Files with environment variables (default .env)")

	rootCmd.Flags().StringVar(&collection, "collection", "", "Open this collection on start")
	rootCmd.Flags().StringVar(&pageTitle, "page", "", "Open this page on start")
	rootCmd.Flags().BoolVar(&browser, "browser", false, "Also serve the preview to a browser")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(previewCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func openStore(ctx context.Context) (*store.Store, func() error, error) {
	return cfg.OpenStore(ctx, logger)
}

func loadPages() ([]schema.Page, error) {
	pages, err := cfg.LoadPages()
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages defined")
	}
	return pages, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	pages, err := loadPages()
	if err != nil {
		return err
	}

	opts := tui.Options{
		Gateway:     s,
		Pages:       pages,
		Logger:      logger,
		IDGenerator: cfg.IDGenerator(),
		Theme:       cfg.Theme,
		Collection:  collection,
		Page:        pageTitle,
	}

	if browser || cfg.Preview.Enabled {
		hub := preview.NewHub(preview.WithLogger(logger), preview.WithTitle("folio preview"))
		go func() {
			if err := hub.ListenAndServe(ctx, cfg.Preview.Addr); err != nil {
				logger.Error("Preview server stopped", zap.Error(err))
			}
		}()
		opts.Browser = hub
	}

	app, err := tui.NewApp(ctx, opts)
	if err != nil {
		return err
	}

	logger.Info("Starting terminal UI", zap.Int("pages", len(pages)))
	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}
