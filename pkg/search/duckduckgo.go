package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxSnippets caps how many result snippets a search returns.
const maxSnippets = 3

// triggers are the phrases that turn a question into a web search.
var triggers = []string{
	"pesquise na internet",
	"pesquisa na internet",
	"search the internet",
	"search the web",
}

// ExtractQuery reports whether question asks for a web search and, if
// so, returns the remaining search terms.
func ExtractQuery(question string) (string, bool) {
	lower := strings.ToLower(question)
	matched := false
	for _, t := range triggers {
		if strings.Contains(lower, t) {
			matched = true
			lower = strings.ReplaceAll(lower, t, "")
		}
	}
	if !matched {
		return "", false
	}
	return strings.TrimSpace(lower), true
}

// DuckDuckGo scrapes result snippets from the DuckDuckGo HTML endpoint.
type DuckDuckGo struct {
	baseURL    string
	httpClient *http.Client
}

// NewDuckDuckGo creates a client against the public endpoint.
func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{
		baseURL:    "https://duckduckgo.com",
		httpClient: http.DefaultClient,
	}
}

// Search returns up to maxSnippets result snippets for query.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/html/?q=%s", d.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	var snippets []string
	doc.Find(".result__snippet").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := strings.TrimSpace(s.Text()); text != "" {
			snippets = append(snippets, text)
		}
		return len(snippets) < maxSnippets
	})
	return snippets, nil
}
