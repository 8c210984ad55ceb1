package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
)

const (
	pageFetchTimeout = 10 * time.Second
	maxRedirects     = 5
	maxPageBytes     = 50_000
	maxPageRunes     = 3_000
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// PageFetcher resolves URLs to cleaned plain-text page content.
type PageFetcher struct {
	logger *slog.Logger
	client *http.Client
}

// NewPageFetcher creates a PageFetcher with the given logger.
func NewPageFetcher(log *slog.Logger) *PageFetcher {
	if log == nil {
		log = slog.Default()
	}
	return &PageFetcher{
		logger: log.With(slog.String("component", "page_fetcher")),
		client: &http.Client{
			Timeout: pageFetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

// Fetch downloads rawURL and reduces it to plain text of at most 3,000
// characters containing no markup. It never returns an error: any failure
// yields a sentinel string naming the URL so enrichment can continue.
func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) string {
	body, contentType, err := f.download(ctx, rawURL)
	if err != nil {
		f.logger.Warn("page fetch failed", slog.String("url", rawURL), slog.Any("error", err))
		return fetchSentinel(rawURL)
	}
	if !isTextual(contentType) {
		f.logger.Warn("page is not textual", slog.String("url", rawURL), slog.String("content_type", contentType))
		return fetchSentinel(rawURL)
	}

	text := ""
	if strings.Contains(contentType, "html") {
		if parsed, parseErr := url.Parse(rawURL); parseErr == nil {
			if article, readErr := readability.FromReader(bytes.NewReader(body), parsed); readErr == nil {
				text = article.TextContent
			}
		}
	}
	if strings.TrimSpace(text) == "" {
		text = stripMarkup(string(body))
	} else {
		text = stripMarkup(text)
	}
	return truncateRunes(text, maxPageRunes)
}

func (f *PageFetcher) download(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; signaldesk/1.0)")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch page: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, "", fmt.Errorf("fetch page status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read page body: %w", err)
	}
	contentType := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Type")))
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	return body, contentType, nil
}

func fetchSentinel(rawURL string) string {
	return fmt.Sprintf("[could not fetch content from %s]", rawURL)
}

func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	if strings.HasPrefix(contentType, "text/") {
		return true
	}
	switch contentType {
	case "application/json", "application/xml", "application/xhtml+xml", "application/rss+xml":
		return true
	}
	return false
}

// stripMarkup removes script/style blocks and every remaining tag, drops any
// stray angle brackets, and collapses runs of whitespace.
func stripMarkup(input string) string {
	out := scriptBlockRe.ReplaceAllString(input, " ")
	out = styleBlockRe.ReplaceAllString(out, " ")
	out = tagRe.ReplaceAllString(out, " ")
	out = strings.NewReplacer("<", " ", ">", " ").Replace(out)
	out = whitespaceRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// truncateRunes cuts text to at most limit runes on a rune boundary.
func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
