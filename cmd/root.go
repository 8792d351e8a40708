// Package cmd provides the monetizer command-line interface.
//
// Configuration is read, in order of precedence, from command-line flags,
// MONETIZER_<SECTION>_<OPTION> environment variables and the config file.
// The config file is the --config flag, else MONETIZER_CONFIG_FILE, else
// .monetizer.yml in the current directory.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fourohfour/monetizer/internal/config"
	"github.com/fourohfour/monetizer/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "monetizer",
	Short: "Compile monetized 404 pages from page configs",
	Long: `monetizer turns a 404 page config into a standalone HTML document with
monetization blocks, serves and previews stored pages, and exports host
bundles for Apache, nginx, Netlify, Vercel, WordPress and Shopify.

Quick Start:
  monetizer init                      Scaffold .monetizer.yml and an example page
  monetizer build pages/example.yaml  Write a 404 bundle to dist/
  monetizer serve                     Serve the API and live preview
  monetizer pages list                List stored pages
  monetizer validate dist/*/404.html  Lint compiled documents`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .monetizer.yml, can also use MONETIZER_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("MONETIZER_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".monetizer")
	}

	viper.SetEnvPrefix("MONETIZER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing file is fine; defaults apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads and validates the layered configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}
