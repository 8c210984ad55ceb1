// Package extract pulls analyzable content out of inbound messages: URLs
// from the message text, page text from those URLs, and base64 payloads
// from private Slack file URLs.
package extract

import "regexp"

// Slack wraps links in angle brackets (<https://example.com|label>), so the
// pattern stops at whitespace and at either bracket.
var urlPattern = regexp.MustCompile(`https?://[^\s<>]+`)

// ExtractURLs returns every http(s) URL in text, in order of first
// appearance, without deduplication. Bare domains without a scheme do not
// match.
func ExtractURLs(text string) []string {
	if text == "" {
		return nil
	}
	return urlPattern.FindAllString(text, -1)
}
