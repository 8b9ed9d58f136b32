// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docpress CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docpress/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from --verbose before any command runs.
var logger = slog.Default()

// rootCmd is the base command for the docpress CLI.
var rootCmd = &cobra.Command{
	Use:   "docpress",
	Short: "Build a static site from hosted documents",
	Long: `docpress turns a list of hosted documents into a static site. Each
document's text export supplies its fields, its HTML export supplies the body.
Pages and an index are rendered through HTML templates into the output
directory, which is rebuilt from scratch on every run.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger = newLogger(os.Stderr, verbose)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docpress.yaml or ~/.config/docpress/docpress.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docpress")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docpress"))
		}
	}

	viper.SetDefault("details", types.DefaultDetails)
	viper.SetDefault("output_dir", types.DefaultOutputDir)
	viper.SetDefault("static_dir", types.DefaultStaticDir)
	viper.SetDefault("templates_dir", types.DefaultTemplatesDir)
	viper.SetDefault("page_template", types.DefaultPageTemplate)
	viper.SetDefault("index_template", types.DefaultIndexTemplate)
	viper.SetDefault("manifest", "")
	viper.SetDefault("timeout", types.DefaultTimeout)
	viper.SetDefault("user_agent", types.DefaultUserAgent)
	viper.SetDefault("max_retries", types.DefaultMaxRetries)

	viper.SetEnvPrefix("DOCPRESS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger returns a text logger on w at info level, or debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
