// scraper/link_finder.go
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FindCSVLink scrapes a dataset index page and returns the absolute URL of
// the first link to a .csv file whose href or text contains match
// (case-insensitive). An empty match accepts any CSV link.
func (d *Downloader) FindCSVLink(ctx context.Context, pageURL, match string) (string, error) {
	slog.Debug("Scraper: looking for csv link", "page", pageURL, "match", match)

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid index url %s: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	res, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get URL %s: %w", pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get URL %s: status code %d", pageURL, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}

	match = strings.ToLower(strings.TrimSpace(match))
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil || !strings.EqualFold(path.Ext(ref.Path), ".csv") {
			return true
		}
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		if match != "" && !strings.Contains(strings.ToLower(href), match) && !strings.Contains(text, match) {
			return true
		}
		found = base.ResolveReference(ref).String()
		return false
	})

	if found == "" {
		return "", fmt.Errorf("no csv link matching %q on %s", match, pageURL)
	}
	slog.Info("Scraper: found csv link", "page", pageURL, "link", found)
	return found, nil
}
