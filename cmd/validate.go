package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fourohfour/monetizer/internal/document"
	"github.com/fourohfour/monetizer/internal/export"
	"github.com/fourohfour/monetizer/internal/lint"
	"github.com/fourohfour/monetizer/internal/page"
	"github.com/fourohfour/monetizer/internal/watcher"
)

var (
	validateFormat string
	validateStrict bool
)

var validateCmd = &cobra.Command{
	Use:     "validate <page-file|404.html|dir>...",
	Aliases: []string{"v"},
	Short:   "Check page files and compiled documents",
	Long: `Check page configs and compiled 404 documents.

Page files (JSON or YAML) are decoded, every field that had to be reset to
its default is reported, and the page is compiled and linted. HTML files
are linted as they are.

Lint rules:
  missing-title      the document has no <title>          (error)
  multiple-body      more than one <body> element         (error)
  duplicate-block    a monetization block appears twice   (error)
  unknown-block      a data-feature value is not a block  (warning)
  missing-alt-text   an <img> has no alt attribute        (warning)
  unsafe-target-blank  target=_blank without rel=noopener (warning)
  disabled-block     a disabled feature rendered a block  (error, page files)
  empty-block        an enabled feature rendered nothing  (warning, page files)

Examples:
  monetizer validate pages/                 # Every page file
  monetizer validate dist/*/404.html        # Compiled bundles
  monetizer validate pages/a.json --strict  # Field resets fail the run
  monetizer validate pages/ -o json         # Machine-readable report`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	addOutputFlag(validateCmd, &validateFormat)
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat fields reset to defaults as errors")
}

// validationResult is the report of one file.
type validationResult struct {
	File        string       `json:"file" yaml:"file"`
	Valid       bool         `json:"valid" yaml:"valid"`
	Resets      []string     `json:"resets,omitempty" yaml:"resets,omitempty"`
	Blocks      []page.Kind  `json:"blocks" yaml:"blocks"`
	Issues      []lint.Issue `json:"issues" yaml:"issues"`
	LoadFailure string       `json:"error,omitempty" yaml:"error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, isValidateFile)
	if err != nil {
		return err
	}

	results := make([]validationResult, 0, len(files))
	failed := 0
	for _, f := range files {
		r := validateFile(f, validateStrict)
		if !r.Valid {
			failed++
		}
		results = append(results, r)
	}

	err = writeOutput(cmd.OutOrStdout(), validateFormat, results, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "FILE\tRESULT\tDETAIL")
		for _, r := range results {
			status := "ok"
			if !r.Valid {
				status = "FAIL"
			}
			switch {
			case r.LoadFailure != "":
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.File, status, r.LoadFailure)
			case len(r.Issues) == 0 && len(r.Resets) == 0:
				fmt.Fprintf(tw, "%s\t%s\t%d blocks\n", r.File, status, len(r.Blocks))
			default:
				for _, field := range r.Resets {
					fmt.Fprintf(tw, "%s\t%s\t%s reset to default\n", r.File, status, field)
				}
				for _, is := range r.Issues {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", r.File, status, is)
				}
			}
		}
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(files))
	}
	return nil
}

func validateFile(path string, strict bool) validationResult {
	r := validationResult{File: path, Issues: []lint.Issue{}, Blocks: []page.Kind{}}

	var (
		doc string
		cfg *page.Config
	)
	if isHTMLFile(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			r.LoadFailure = err.Error()
			return r
		}
		doc = string(data)
	} else {
		loaded, diags, err := watcher.LoadPageFile(path)
		if err != nil {
			r.LoadFailure = err.Error()
			return r
		}
		cfg = loaded
		r.Resets = diags.Fields()
		doc, err = document.Compile(cfg, document.Options{})
		if err != nil {
			r.LoadFailure = err.Error()
			return r
		}
	}

	report, err := lint.Check(doc)
	if err != nil {
		r.LoadFailure = err.Error()
		return r
	}
	if cfg != nil {
		lint.CheckFeatures(report, cfg.Features)
	}
	r.Blocks = report.Blocks
	r.Issues = append(r.Issues, report.Issues...)
	r.Valid = !report.HasErrors() && !(strict && len(r.Resets) > 0)
	return r
}

func isHTMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

func isValidateFile(path string) bool {
	switch filepath.Base(path) {
	case export.ManifestName, export.HostVercel.Filename():
		return false
	}
	return watcher.PageFilter(path) || isHTMLFile(path)
}
