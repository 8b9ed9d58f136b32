// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docpress/internal/manifest"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "List the pages written by the last build",
	Long: `Manifest prints the pages recorded by the last build that ran with a
manifest configured (the manifest key or --manifest on build).`,
	RunE: runManifest,
}

func runManifest(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = viper.GetString("manifest")
	}
	if path == "" {
		return fmt.Errorf("no manifest configured: set manifest in docpress.yaml or pass --path")
	}

	store, err := manifest.OpenReadOnly(path)
	if err != nil {
		return err
	}
	defer store.Close()

	pages, err := store.Pages(cmd.Context())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatPages(os.Stdout, pages, jsonOutput)
}

func formatPages(w io.Writer, pages []manifest.Page, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pages)
	}

	if len(pages) == 0 {
		fmt.Fprintln(w, "No pages recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-24s  %-30s  %-40s  %8s  %s\n", "Folder", "Code", "Title", "Bytes", "Charts")
	fmt.Fprintln(w, strings.Repeat("-", 116))
	for _, p := range pages {
		fmt.Fprintf(w, "%-24s  %-30s  %-40s  %8d  %d\n",
			truncate(p.Folder, 24), truncate(p.Code, 30), truncate(p.Title, 40), p.ContentLen, p.Charts)
	}
	fmt.Fprintf(w, "\n%d pages\n", len(pages))
	return nil
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func init() {
	manifestCmd.Flags().String("path", "", "manifest file (default: the configured manifest)")
	manifestCmd.Flags().Bool("json", false, "output pages as JSON")

	rootCmd.AddCommand(manifestCmd)
}
