package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fourohfour/monetizer/internal/analytics"
	"github.com/fourohfour/monetizer/internal/config"
	"github.com/fourohfour/monetizer/internal/document"
	"github.com/fourohfour/monetizer/internal/export"
	"github.com/fourohfour/monetizer/internal/feature"
	"github.com/fourohfour/monetizer/internal/page"
	"github.com/fourohfour/monetizer/internal/store"
	"github.com/fourohfour/monetizer/internal/watcher"
)

var buildCmd = &cobra.Command{
	Use:     "build [page-file|dir]...",
	Aliases: []string{"b"},
	Short:   "Compile page files into 404 bundles",
	Long: `Compile page config files (JSON or YAML) into standalone 404.html documents.
Each page gets a bundle directory below the output dir containing 404.html,
the wiring file of every requested host and a manifest.json.

With no arguments the configured pages directory is built.

Examples:
  monetizer build                              # Build every page in pages/
  monetizer build pages/spring-sale.yaml       # Build one page
  monetizer build --host nginx --host netlify  # Add host wiring files
  monetizer build --host all --out public      # Every host, custom output dir
  monetizer build pages/a.json --stdout        # Print the document only`,
	RunE: runBuild,
}

var (
	buildPlan           string
	buildStdout         bool
	buildPlansFromStore bool
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("out", "dist", "Output directory")
	buildCmd.Flags().StringSlice("host", nil, "Host wiring to include (apache, nginx, netlify, vercel, wordpress, shopify, all)")
	buildCmd.Flags().StringVar(&buildPlan, "plan", "", "Plan to compile for (free, starter, pro, business); default analytics.default_plan")
	buildCmd.Flags().BoolVar(&buildStdout, "stdout", false, "Print the compiled document of a single page instead of writing a bundle")
	buildCmd.Flags().BoolVar(&buildPlansFromStore, "plans-from-store", false, "Resolve owner plans from the page store")

	viper.BindPFlag("export.output_dir", buildCmd.Flags().Lookup("out"))
	viper.BindPFlag("export.hosts", buildCmd.Flags().Lookup("host"))
}

// renderOptions derives live render options from configuration.
func renderOptions(cfg *config.Config, plan string) (document.Options, error) {
	if plan == "" {
		plan = cfg.Analytics.DefaultPlan
	}
	p, err := analytics.ParsePlan(plan)
	if err != nil {
		return document.Options{}, err
	}
	policy, err := document.ParseCustomCodePolicy(cfg.Render.CustomCode)
	if err != nil {
		return document.Options{}, err
	}
	return document.Options{
		Plan:              p,
		AnalyticsEndpoint: cfg.Analytics.Endpoint,
		MissingRating:     feature.ParseRatingFallback(cfg.Render.MissingRating),
		CustomCode:        policy,
	}, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts, err := renderOptions(cfg, buildPlan)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{cfg.Pages.Dir}
	}
	files, err := collectPageFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no page files found in %s", strings.Join(args, ", "))
	}

	out := cmd.OutOrStdout()
	if buildStdout {
		if len(files) != 1 {
			return fmt.Errorf("--stdout needs exactly one page, got %d", len(files))
		}
		cfgPage, err := loadPage(cmd, files[0])
		if err != nil {
			return err
		}
		doc, err := document.Compile(cfgPage, opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, doc)
		return err
	}

	hosts, err := export.ParseHosts(cfg.Export.Hosts)
	if err != nil {
		return err
	}

	exporterOpts := []export.Option{
		export.WithLogger(logger),
		export.WithCache(document.NewCache(cfg.Render.CacheEntries, cfg.Render.CacheTTL)),
	}
	if buildPlansFromStore {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		exporterOpts = append(exporterOpts, export.WithPlans(st))
	}
	exporter := export.NewExporter(cfg.Export.OutputDir, opts, exporterOpts...)

	for _, f := range files {
		p, err := loadPage(cmd, f)
		if err != nil {
			return err
		}
		m, err := exporter.Export(ctx, p, hosts)
		if err != nil {
			return fmt.Errorf("build %s: %w", f, err)
		}
		fmt.Fprintf(out, "%s -> %s (%d files, plan %s)\n", f, exporter.PageDir(p.ID), len(m.Artifacts), m.Plan)
	}
	return nil
}

func loadPage(cmd *cobra.Command, path string) (*page.Config, error) {
	cfg, diags, err := watcher.LoadPageFile(path)
	if err != nil {
		return nil, err
	}
	for _, d := range diags {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s reset to default: %v\n", path, d.Field, d.Err)
	}
	return cfg, nil
}

// collectPageFiles expands directories into their page files.
func collectPageFiles(args []string) ([]string, error) {
	return collectFiles(args, watcher.PageFilter)
}

// collectFiles expands directories into the files accept admits, skipping
// hidden entries. Plain file arguments are kept as given.
func collectFiles(args []string, accept func(string) bool) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if accept(path) && watcher.NoHiddenFilter(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
