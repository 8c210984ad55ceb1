package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ParseError reports a model response that contained no extractable JSON
// object. Raw carries the full response text for diagnosis.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return "analysis response contains no valid JSON object"
}

// Analyzer submits signal content to the Anthropic Messages API and parses
// the response into an AnalysisRecord. One request per signal, no retries.
type Analyzer struct {
	logger    *slog.Logger
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnalyzer creates an Analyzer for the given model.
func NewAnalyzer(log *slog.Logger, apiKey, model string, maxTokens int) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Analyzer{
		logger:    log.With(slog.String("component", "analyzer")),
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: int64(maxTokens),
	}
}

// Analyze sends one multimodal request (optional attachment block first,
// then the enriched text) under the fixed system instruction and parses the
// returned JSON. Call failures and parse failures both surface to the
// caller; the pipeline decides what the user sees.
func (a *Analyzer) Analyze(ctx context.Context, content string, attachment *Attachment) (AnalysisRecord, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, 2)
	if attachment != nil && attachment.Base64 != "" {
		if attachment.IsImage() {
			blocks = append(blocks, anthropic.NewImageBlockBase64(attachment.MimeType, attachment.Base64))
		} else {
			blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: attachment.Base64}))
		}
	}
	blocks = append(blocks, anthropic.NewTextBlock(content))

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	})
	if err != nil {
		return AnalysisRecord{}, fmt.Errorf("analyze signal: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Text != "" {
			sb.WriteString(block.Text)
		}
	}
	record, err := ParseRecord(sb.String())
	if err != nil {
		a.logger.Warn("analysis parse failed", slog.Int("response_len", sb.Len()))
		return AnalysisRecord{}, err
	}
	return record, nil
}

// ParseRecord extracts an AnalysisRecord from the model's response text.
// It first tries the whole text as JSON; the model is instructed to return
// a bare object, but when it wraps the object in prose or fencing anyway,
// the span from the first '{' to the last '}' is parsed instead.
func ParseRecord(text string) (AnalysisRecord, error) {
	trimmed := strings.TrimSpace(text)
	var record AnalysisRecord
	if err := json.Unmarshal([]byte(trimmed), &record); err == nil {
		return record, nil
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &record); err == nil {
			return record, nil
		}
	}
	return AnalysisRecord{}, &ParseError{Raw: text}
}
