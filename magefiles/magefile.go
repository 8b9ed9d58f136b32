//go:build mage

// Package main contains Mage build targets for docpress developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "docpress"
	cmdPkg  = "./cmd/docpress"
)

// scaffold holds the starter files Init writes into a new site directory.
var scaffold = map[string]string{
	"templates/story.html": `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.title}}</title>
  <link rel="stylesheet" href="../style/main.css">
</head>
<body>
  <article>
    <h1>{{.title}}</h1>
    {{.processed_content}}
  </article>
</body>
</html>
`,
	"templates/homepage.html": `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.site_name}}</title>
  <link rel="stylesheet" href="style/main.css">
</head>
<body>
  <h1>{{.site_name}}</h1>
  <ul>
  {{range .projects}}  <li><a href="{{.Folder}}/">{{.Title}}</a></li>
  {{end}}</ul>
</body>
</html>
`,
	"style/main.css": `body { font-family: Georgia, serif; max-width: 42rem; margin: 2rem auto; }
.label { font-weight: bold; text-transform: uppercase; }
.label-text { font-style: italic; }
.fake-table { display: flex; gap: 1rem; }
.img img { max-width: 100%; }
`,
	"details.yaml": `site_name: My Stories
projects: []
`,
}

// Init writes starter templates, a stylesheet and a details file. Existing
// files are left alone.
func Init() error {
	for path, content := range scaffold {
		if _, err := os.Stat(path); err == nil {
			fmt.Println("   exists", path)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Println("  ", path)
	}
	fmt.Println("Site scaffold initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Site builds the binary and regenerates the site in the current directory.
func Site() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "build")
}

// Stats prints Go production/test line counts and the number of generated pages.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	pages, err := countPages("docs")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Generated pages:                %d\n", pages)
	return nil
}

// countGoLines counts non-blank lines in Go files, split by test and non-test.
// Directories starting with _ or . are skipped.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := nonBlankLines(path)
		if err != nil {
			return err
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

func nonBlankLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}

// countPages counts index.html files under the output directory, excluding
// the top-level index.
func countPages(root string) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() && d.Name() == "index.html" && filepath.Dir(path) != filepath.Clean(root) {
			total++
		}
		return nil
	})
	return total, err
}
