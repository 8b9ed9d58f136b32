// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docpress/internal/convert"
	"github.com/pdiddy/docpress/internal/fetch"
	"github.com/pdiddy/docpress/internal/manifest"
	"github.com/pdiddy/docpress/internal/render"
	"github.com/pdiddy/docpress/internal/site"
	"github.com/pdiddy/docpress/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch every listed document and regenerate the site",
	Long: `Build reads the details file, fetches the text and HTML exports of every
listed document, and writes one page per document plus an index page.

The output directory is deleted and recreated first. Documents are built in
order; the first failure stops the build before the index is written.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	details, err := site.LoadDetails(cfg.Details)
	if err != nil {
		return err
	}

	md := convert.NewMarkdown()
	renderer, err := render.New(cfg, md)
	if err != nil {
		return err
	}
	client := fetch.New(nil, cfg.HTTPConfig)

	b := &site.Builder{
		Config:    cfg,
		Fetcher:   client,
		Renderer:  renderer,
		Converter: convert.New(client, md),
		Log:       logger,
	}
	if cfg.Manifest != "" {
		store, err := manifest.Open(ctx, cfg.Manifest)
		if err != nil {
			return err
		}
		defer store.Close()
		b.Manifest = store
	}

	sum, err := b.Run(ctx, details)
	if err != nil {
		return err
	}

	fmt.Printf("Built %d page(s) into %s\n", len(sum.Pages), cfg.OutputDir)
	if sum.Collisions > 0 {
		fmt.Printf("%d page(s) overwrote another page with the same folder\n", sum.Collisions)
	}
	return nil
}

// buildConfig reads the merged flag, env and file settings.
func buildConfig() (types.BuildConfig, error) {
	var cfg types.BuildConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func init() {
	buildCmd.Flags().String("details", types.DefaultDetails, "YAML file listing document URLs and shared site fields")
	buildCmd.Flags().String("output-dir", types.DefaultOutputDir, "directory to regenerate")
	buildCmd.Flags().String("static-dir", types.DefaultStaticDir, "directory copied into the output (empty to skip)")
	buildCmd.Flags().String("templates-dir", types.DefaultTemplatesDir, "directory holding the page and index templates")
	buildCmd.Flags().String("page-template", types.DefaultPageTemplate, "template rendered once per document")
	buildCmd.Flags().String("index-template", types.DefaultIndexTemplate, "template rendered into index.html")
	buildCmd.Flags().String("manifest", "", "SQLite file recording the built pages (empty to skip)")
	buildCmd.Flags().Duration("timeout", types.DefaultTimeout, "HTTP request timeout")
	buildCmd.Flags().String("user-agent", types.DefaultUserAgent, "User-Agent header for HTTP requests")
	buildCmd.Flags().Int("max-retries", types.DefaultMaxRetries, "retries on HTTP 429 and 503 responses")

	for key, flag := range map[string]string{
		"details":        "details",
		"output_dir":     "output-dir",
		"static_dir":     "static-dir",
		"templates_dir":  "templates-dir",
		"page_template":  "page-template",
		"index_template": "index-template",
		"manifest":       "manifest",
		"timeout":        "timeout",
		"user_agent":     "user-agent",
		"max_retries":    "max-retries",
	} {
		_ = viper.BindPFlag(key, buildCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(buildCmd)
}
