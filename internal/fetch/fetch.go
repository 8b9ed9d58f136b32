// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads document exports and inline assets.
package fetch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/pdiddy/docpress/internal/httputil"
	"github.com/pdiddy/docpress/pkg/types"
)

// exportBase is the document export endpoint. Declared as a var so tests can
// substitute httptest servers.
var exportBase = "https://docs.google.com/document/d/"

// Export formats understood by the endpoint.
const (
	FormatText = "txt"
	FormatHTML = "html"
)

// ErrNoDocumentCode is returned when a source URL carries no /d/<code> segment.
var ErrNoDocumentCode = errors.New("no document code in URL")

var codePattern = regexp.MustCompile(`/d/([^/]*)`)

// DocumentCode extracts the document identifier from a source URL such as
// "https://docs.google.com/document/d/<code>/edit".
func DocumentCode(rawURL string) (string, error) {
	m := codePattern.FindStringSubmatch(rawURL)
	if m == nil || m[1] == "" {
		return "", fmt.Errorf("%w: %q", ErrNoDocumentCode, rawURL)
	}
	return m[1], nil
}

// ExportURL returns the export location of a document in the given format.
func ExportURL(code, format string) string {
	return exportBase + code + "/export?format=" + format
}

// Client issues the GET requests a build needs. It holds no state between
// requests and caches nothing.
type Client struct {
	http *http.Client
	cfg  types.HTTPConfig
}

// New returns a Client sending requests through hc. A nil hc gets a client
// with cfg.Timeout.
func New(hc *http.Client, cfg types.HTTPConfig) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{http: hc, cfg: cfg}
}

// Text returns the plain-text export of a document.
func (c *Client) Text(ctx context.Context, code string) (string, error) {
	body, _, err := c.get(ctx, ExportURL(code, FormatText))
	if err != nil {
		return "", fmt.Errorf("fetching text export of %s: %w", code, err)
	}
	return string(body), nil
}

// HTML returns the HTML export of a document.
func (c *Client) HTML(ctx context.Context, code string) ([]byte, error) {
	body, _, err := c.get(ctx, ExportURL(code, FormatHTML))
	if err != nil {
		return nil, fmt.Errorf("fetching HTML export of %s: %w", code, err)
	}
	return body, nil
}

// DataURI downloads url and returns it as a base64 data URI. The response
// Content-Type is used when present, otherwise it is sniffed from the body.
func (c *Client) DataURI(ctx context.Context, url string) (string, error) {
	body, contentType, err := c.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetching image %s: %w", url, err)
	}
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response: %w", err)
	}
	return body, strings.TrimSpace(resp.Header.Get("Content-Type")), nil
}
