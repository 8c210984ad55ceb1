// Package analyze turns enriched signal content into a structured
// AnalysisRecord via a single Anthropic Messages call.
package analyze

// AnalysisRecord is the structured output of the model for one signal.
// Every field is a string and defaults to "" when the model omits it; the
// record is immutable once parsed.
type AnalysisRecord struct {
	Source    string `json:"source"`
	TLDR      string `json:"tldr"`
	WhatWho   string `json:"what_who"`
	Why       string `json:"why"`
	Where     string `json:"where"`
	When      string `json:"when"`
	How       string `json:"how"`
	Theme     string `json:"theme"`
	Category  string `json:"category"`
	Conflict  string `json:"conflict"`
	Tags      string `json:"tags"`
	DateAdded string `json:"date_added"`
}

// Attachment is a binary payload forwarded to the model alongside the text
// content. Only image/* and application/pdf mimetypes are ever passed in.
type Attachment struct {
	MimeType string
	Base64   string
}

// IsImage reports whether the attachment should be sent as an image block.
func (a Attachment) IsImage() bool {
	return len(a.MimeType) > 6 && a.MimeType[:6] == "image/"
}
