package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fourohfour/monetizer/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init [dir]",
	Aliases: []string{"i"},
	Short:   "Scaffold a monetizer project",
	Long: `Create .monetizer.yml with the default settings and an example page in the
pages directory. Existing files are left alone unless --force is given.

Examples:
  monetizer init               # Scaffold in the current directory
  monetizer init my-site       # Scaffold in my-site/
  monetizer init --minimal     # Config file only`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initMinimal bool
	initForce   bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initMinimal, "minimal", false, "Only write the config file")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

// ConfigFileName is the project config file init writes.
const ConfigFileName = ".monetizer.yml"

const examplePage = `# Example 404 page. Every field is optional; missing values use defaults.
title: Page Not Found
description: The page you're looking for doesn't exist or has been moved.
category: general
theme: teal
font: Inter
status: draft
social_links:
  twitter: https://twitter.com/example
  instagram: https://instagram.com/example
monetization_features:
  emailCollection:
    enabled: true
    title: Stay in the loop
    buttonText: Subscribe
  countdownOffer:
    enabled: true
    title: Limited time offer
    description: 20% off everything this week.
    expiryDate: "2030-01-01T00:00:00Z"
  socialProof:
    enabled: true
    testimonials:
      - text: Found exactly what I needed.
        name: Sam
        rating: 5
`

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", root, err)
	}

	cfg := config.Default()
	var buf bytes.Buffer
	buf.WriteString("# monetizer configuration. Environment variables override these values,\n")
	buf.WriteString("# e.g. MONETIZER_SERVER_PORT=9000.\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeScaffold(out, filepath.Join(root, ConfigFileName), buf.Bytes()); err != nil {
		return err
	}
	if initMinimal {
		return nil
	}

	pagesDir := filepath.Join(root, cfg.Pages.Dir)
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", pagesDir, err)
	}
	return writeScaffold(out, filepath.Join(pagesDir, "example.yaml"), []byte(examplePage))
}

func writeScaffold(out io.Writer, path string, data []byte) error {
	if _, err := os.Stat(path); err == nil && !initForce {
		fmt.Fprintf(out, "skipped %s (exists)\n", path)
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(out, "created %s\n", path)
	return nil
}
