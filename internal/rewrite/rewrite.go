// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rewrite prepares an exported document tree for conversion. It
// unwraps redirect links and swaps chart links for embeddable widgets.
package rewrite

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrMissingRedirectTarget is returned when a redirect link has no q parameter.
var ErrMissingRedirectTarget = errors.New("redirect link without target")

// Result counts what Page changed.
type Result struct {
	Redirects int
	Charts    int
	Unmatched int
}

// chartLinkPattern selects candidate chart links by their visible text.
var chartLinkPattern = regexp.MustCompile(`datawrapper`)

// chartCodePatterns extract the chart identifier from a link text. They are
// tried in order and the first match wins.
var chartCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`https://datawrapper\.dwcdn\.net/([^/\s]+)/\d+/`),
	regexp.MustCompile(`datawrapper\.de/_/([^/\s]+)/`),
}

// Page rewrites doc in place. It fails only when a redirect link has no
// target; chart links that cannot be decoded are logged and left as is.
func Page(doc *goquery.Document, log *slog.Logger) (Result, error) {
	if log == nil {
		log = slog.Default()
	}
	var res Result

	var err error
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		target, ok, rerr := RedirectTarget(href)
		if rerr != nil {
			err = rerr
			return false
		}
		if ok {
			a.SetAttr("href", target)
			res.Redirects++
		}
		return true
	})
	if err != nil {
		return res, err
	}

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		text := a.Text()
		if !chartLinkPattern.MatchString(text) {
			return
		}
		code := ChartCode(text)
		if code == "" {
			log.Warn("could not find datawrapper code", "text", text)
			res.Unmatched++
			return
		}
		log.Info("found datawrapper code, adding embed", "code", code)
		a.ReplaceWithHtml(ChartEmbed(code))
		res.Charts++
	})

	return res, nil
}

// RedirectTarget unwraps a link of the form https://www.google.com/url?q=<target>.
// It reports ok=false for links that are not redirect wrappers.
func RedirectTarget(href string) (target string, ok bool, err error) {
	u, perr := url.Parse(href)
	if perr != nil || !isRedirectWrapper(u) {
		return "", false, nil
	}
	q, present := u.Query()["q"]
	if !present || len(q) == 0 || q[0] == "" {
		return "", false, fmt.Errorf("%w: %s", ErrMissingRedirectTarget, href)
	}
	return q[0], true, nil
}

func isRedirectWrapper(u *url.URL) bool {
	if u.Path != "/url" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "google.com" || strings.HasSuffix(host, ".google.com")
}

// ChartCode returns the chart identifier found in text, or "".
func ChartCode(text string) string {
	for _, p := range chartCodePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// ChartEmbed returns a fixed-size iframe for the chart and the script that
// resizes it when the chart posts its height.
func ChartEmbed(code string) string {
	return fmt.Sprintf(chartEmbedHTML, code, code)
}

const chartEmbedHTML = `<div>
<iframe title="A DataWrapper chart" aria-label="chart" id="datawrapper-chart-%s" src="https://datawrapper.dwcdn.net/%s/1/" scrolling="no" frameborder="0" style="width: 0; min-width: 100%% !important; border: none;" height="431"></iframe>
<script type="text/javascript">!function(){"use strict";window.addEventListener("message",(function(a){if(void 0!==a.data["datawrapper-height"])for(var e in a.data["datawrapper-height"]){var t=document.getElementById("datawrapper-chart-"+e)||document.querySelector("iframe[src*='"+e+"']");t&&(t.style.height=a.data["datawrapper-height"][e]+"px")}}))}();</script>
</div>`
