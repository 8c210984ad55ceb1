// Package pipeline sequences one inbound message through enrichment,
// analysis, storage, and reply. Each event runs as an independent sequential
// chain; instances share nothing but the read-only options.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"

	"github.com/signaldeskai/signaldesk/internal/analyze"
	"github.com/signaldeskai/signaldesk/internal/extract"
	"github.com/signaldeskai/signaldesk/internal/reply"
)

// maxEnrichedURLs bounds how many extracted URLs are fetched per signal;
// extras are discarded in extraction order.
const maxEnrichedURLs = 3

// Event is one inbound channel message, already flattened from the
// platform's event shape.
type Event struct {
	Channel   string
	UserID    string
	BotID     string // non-empty when a bot authored the message
	Timestamp string
	ThreadTS  string // parent thread timestamp; empty for top-level messages
	Text      string
	Files     []File
}

// File is an attachment reference carried by the event.
type File struct {
	Name        string
	MimeType    string
	DownloadURL string
}

// Chat is the subset of the chat platform the pipeline mutates.
type Chat interface {
	AddReaction(ctx context.Context, channel, timestamp, name string) error
	RemoveReaction(ctx context.Context, channel, timestamp, name string) error
	PostBlocks(ctx context.Context, channel, threadTS string, blocks []slack.Block, fallback string) error
	PostText(ctx context.Context, channel, threadTS, text string) error
}

// Analyzer produces an analysis record from enriched content.
type Analyzer interface {
	Analyze(ctx context.Context, content string, attachment *analyze.Attachment) (analyze.AnalysisRecord, error)
}

// RecordWriter persists one analysis record and returns its identifier.
type RecordWriter interface {
	Store(ctx context.Context, record analyze.AnalysisRecord, rawInput, slackLink string) (string, error)
}

// PageFetcher resolves a URL to plain-text content, never failing.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) string
}

// FileDownloader fetches a private file URL as base64, "" on failure.
type FileDownloader interface {
	Download(ctx context.Context, url string) string
}

// Options is the immutable per-process configuration of the pipeline.
type Options struct {
	ChannelID          string
	WorkspaceURL       string
	ProcessingReaction string
	SuccessReaction    string
	FailureReaction    string
}

// Pipeline wires the collaborators together.
type Pipeline struct {
	logger   *slog.Logger
	chat     Chat
	analyzer Analyzer
	store    RecordWriter
	pages    PageFetcher
	files    FileDownloader
	opts     Options
}

// New creates a Pipeline with the given collaborators.
func New(log *slog.Logger, chat Chat, analyzer Analyzer, store RecordWriter, pages PageFetcher, files FileDownloader, opts Options) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		logger:   log.With(slog.String("component", "pipeline")),
		chat:     chat,
		analyzer: analyzer,
		store:    store,
		pages:    pages,
		files:    files,
		opts:     opts,
	}
}

// Handle runs one event through the full pipeline. It is terminal on
// success or on caught failure; it never returns an error because the
// failure path is a user-visible effect, not a caller concern.
func (p *Pipeline) Handle(ctx context.Context, ev Event) {
	if !p.accepts(ev) {
		return
	}
	log := p.logger.With(slog.String("ts", ev.Timestamp))

	file := firstQualifyingFile(ev.Files)
	if strings.TrimSpace(ev.Text) == "" && file == nil {
		log.Debug("empty signal, skipping")
		return
	}

	// Best-effort progress indicator; failure to react never aborts.
	if err := p.chat.AddReaction(ctx, ev.Channel, ev.Timestamp, p.opts.ProcessingReaction); err != nil {
		log.Warn("add processing reaction failed", slog.Any("error", err))
	}

	content, attachment := p.enrich(ctx, ev, file)
	if strings.TrimSpace(content) == "" && attachment == nil {
		log.Debug("nothing to analyze after enrichment")
		return
	}

	record, err := p.analyzer.Analyze(ctx, content, attachment)
	if err != nil {
		p.fail(ctx, ev, log, err)
		return
	}

	permalink := Permalink(p.opts.WorkspaceURL, ev.Channel, ev.Timestamp)
	recordID, err := p.store.Store(ctx, record, content, permalink)
	if err != nil {
		p.fail(ctx, ev, log, err)
		return
	}

	blocks := reply.FormatAnalysis(record)
	if err := p.chat.PostBlocks(ctx, ev.Channel, ev.Timestamp, blocks, record.TLDR); err != nil {
		p.fail(ctx, ev, log, err)
		return
	}

	if err := p.chat.RemoveReaction(ctx, ev.Channel, ev.Timestamp, p.opts.ProcessingReaction); err != nil {
		log.Warn("remove processing reaction failed", slog.Any("error", err))
	}
	if err := p.chat.AddReaction(ctx, ev.Channel, ev.Timestamp, p.opts.SuccessReaction); err != nil {
		log.Warn("add success reaction failed", slog.Any("error", err))
	}
	log.Info("signal processed", slog.String("record_id", recordID))
}

// accepts applies the filtering rules: only non-bot, top-level messages in
// the monitored channel are processed.
func (p *Pipeline) accepts(ev Event) bool {
	if ev.Channel != p.opts.ChannelID {
		return false
	}
	if ev.BotID != "" {
		return false
	}
	if ev.ThreadTS != "" && ev.ThreadTS != ev.Timestamp {
		return false
	}
	return true
}

// enrich concatenates the message text with fetched content from up to
// three extracted URLs (sequentially, in extraction order) and downloads
// the qualifying attachment, appending a textual marker for it.
func (p *Pipeline) enrich(ctx context.Context, ev Event, file *File) (string, *analyze.Attachment) {
	var sb strings.Builder
	sb.WriteString(ev.Text)

	urls := extract.ExtractURLs(ev.Text)
	if len(urls) > maxEnrichedURLs {
		urls = urls[:maxEnrichedURLs]
	}
	for _, u := range urls {
		fetched := p.pages.Fetch(ctx, u)
		sb.WriteString("\n\n--- Content from ")
		sb.WriteString(u)
		sb.WriteString(" ---\n")
		sb.WriteString(fetched)
	}

	var attachment *analyze.Attachment
	if file != nil {
		if encoded := p.files.Download(ctx, file.DownloadURL); encoded != "" {
			attachment = &analyze.Attachment{MimeType: file.MimeType, Base64: encoded}
			sb.WriteString("\n\n[Attached file: ")
			sb.WriteString(file.Name)
			sb.WriteString("]")
		}
	}
	return sb.String(), attachment
}

// fail is the recovery path for fatal per-signal errors. Every step is its
// own failure boundary: a secondary failure is logged and never masks the
// error being reported.
func (p *Pipeline) fail(ctx context.Context, ev Event, log *slog.Logger, cause error) {
	log.Error("signal processing failed", slog.Any("error", cause))
	if err := p.chat.RemoveReaction(ctx, ev.Channel, ev.Timestamp, p.opts.ProcessingReaction); err != nil {
		log.Warn("remove processing reaction failed", slog.Any("error", err))
	}
	if err := p.chat.AddReaction(ctx, ev.Channel, ev.Timestamp, p.opts.FailureReaction); err != nil {
		log.Warn("add failure reaction failed", slog.Any("error", err))
	}
	text := fmt.Sprintf(":warning: Signal processing failed: %s", cause.Error())
	if err := p.chat.PostText(ctx, ev.Channel, ev.Timestamp, text); err != nil {
		log.Warn("post error reply failed", slog.Any("error", err))
	}
}

// firstQualifyingFile returns the first image or PDF attachment; the rest
// are ignored.
func firstQualifyingFile(files []File) *File {
	for i := range files {
		mime := files[i].MimeType
		if strings.HasPrefix(mime, "image/") || mime == "application/pdf" {
			return &files[i]
		}
	}
	return nil
}

// Permalink reconstructs the Slack message permalink: the timestamp with
// its decimal point removed, prefixed with "p".
func Permalink(workspaceURL, channel, timestamp string) string {
	return fmt.Sprintf("%s/archives/%s/p%s",
		strings.TrimRight(workspaceURL, "/"), channel, strings.Replace(timestamp, ".", "", 1))
}
