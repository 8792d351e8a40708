package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fourohfour/monetizer/internal/config"
	"github.com/fourohfour/monetizer/internal/document"
	"github.com/fourohfour/monetizer/internal/export"
	"github.com/fourohfour/monetizer/internal/logging"
	"github.com/fourohfour/monetizer/internal/server"
	"github.com/fourohfour/monetizer/internal/store"
	"github.com/fourohfour/monetizer/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve the page API and live preview",
	Long: `Start the page server: the JSON page API, the live view endpoint host
integrations proxy their 404s to, bundle downloads and the editor preview.

Page files in the pages directory are imported into the store on start
and, with pages.watch, re-imported on every change; open previews reload
automatically. When export.schedule is set, bundles are re-exported on
that cron schedule.

Examples:
  monetizer serve                 # Serve on localhost:8080
  monetizer serve -p 9000         # Custom port
  monetizer serve --no-watch      # Do not watch page files`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("no-watch", false, "Don't watch the pages directory")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		cfg.Pages.Watch = false
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(cfg, st, logger)
	if err != nil {
		return err
	}

	if err := importPages(ctx, cfg, st, logger); err != nil {
		return err
	}

	if cfg.Pages.Watch {
		fw, err := startPageWatcher(ctx, cfg.Pages.Dir, st, srv, logger)
		if err != nil {
			return err
		}
		if fw != nil {
			defer fw.Stop()
		}
	}

	if cfg.Export.Schedule != "" {
		sched, err := newExportScheduler(cfg, st, logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sched.Stop(stopCtx)
		}()
		logger.Info(ctx, "Export schedule active", "schedule", cfg.Export.Schedule, "dir", cfg.Export.OutputDir)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving pages at http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	return srv.Start(ctx)
}

// importPages loads the pages directory into the store. A missing
// directory is not an error.
func importPages(ctx context.Context, cfg *config.Config, st *store.Store, logger logging.Logger) error {
	if _, err := os.Stat(cfg.Pages.Dir); errors.Is(err, os.ErrNotExist) {
		logger.Debug(ctx, "Pages directory not found, skipping import", "dir", cfg.Pages.Dir)
		return nil
	}
	ids, err := watcher.SyncDir(ctx, cfg.Pages.Dir, st, logger)
	if err != nil {
		return fmt.Errorf("import pages: %w", err)
	}
	logger.Info(ctx, "Imported page files", "dir", cfg.Pages.Dir, "pages", len(ids))
	return nil
}

func startPageWatcher(ctx context.Context, dir string, st *store.Store, n watcher.Notifier, logger logging.Logger) (*watcher.FileWatcher, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	fw, err := watcher.NewFileWatcher(300*time.Millisecond, logger)
	if err != nil {
		return nil, err
	}
	fw.AddFilter(watcher.PageFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddHandler(watcher.PageSync(st, n, logger))
	if err := fw.AddRecursive(dir); err != nil {
		fw.Stop()
		return nil, err
	}
	if err := fw.Start(ctx); err != nil {
		fw.Stop()
		return nil, err
	}
	return fw, nil
}

func newExportScheduler(cfg *config.Config, st *store.Store, logger logging.Logger) (*export.Scheduler, error) {
	opts, err := renderOptions(cfg, "")
	if err != nil {
		return nil, err
	}
	hosts, err := export.ParseHosts(cfg.Export.Hosts)
	if err != nil {
		return nil, err
	}
	exporter := export.NewExporter(cfg.Export.OutputDir, opts,
		export.WithPlans(st),
		export.WithLogger(logger),
		export.WithCache(document.NewCache(cfg.Render.CacheEntries, cfg.Render.CacheTTL)),
	)
	return export.NewScheduler(cfg.Export.Schedule, exporter, st, hosts, logger)
}
