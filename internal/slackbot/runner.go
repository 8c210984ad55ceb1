package slackbot

import (
	"context"
	"log/slog"

	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/signaldeskai/signaldesk/internal/pipeline"
)

// Runner drives the Socket Mode connection and feeds message events into
// the pipeline. Each event is handled in its own goroutine; the pipeline
// instances share no mutable state.
type Runner struct {
	logger   *slog.Logger
	socket   *socketmode.Client
	pipeline *pipeline.Pipeline
}

// NewRunner creates a Runner on top of the given client and pipeline.
func NewRunner(log *slog.Logger, client *Client, p *pipeline.Pipeline) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		logger:   log.With(slog.String("component", "slack_runner")),
		socket:   socketmode.New(client.api),
		pipeline: p,
	}
}

// Run connects to Slack and processes events until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	go r.consume(ctx)
	return r.socket.RunContext(ctx)
}

func (r *Runner) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-r.socket.Events:
			if !ok {
				r.logger.Info("socket events channel closed")
				return
			}
			switch evt.Type {
			case socketmode.EventTypeConnecting:
				r.logger.Info("connecting to slack")
			case socketmode.EventTypeConnected:
				r.logger.Info("connected to slack")
			case socketmode.EventTypeConnectionError:
				r.logger.Warn("slack connection error", slog.Any("error", evt.Data))
			case socketmode.EventTypeEventsAPI:
				apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				// Ack first: Slack redelivers unacked envelopes, and the
				// pipeline can run for many seconds.
				if evt.Request != nil {
					r.socket.Ack(*evt.Request)
				}
				r.dispatch(ctx, apiEvent)
			}
		}
	}
}

func (r *Runner) dispatch(ctx context.Context, apiEvent slackevents.EventsAPIEvent) {
	if apiEvent.Type != slackevents.CallbackEvent {
		return
	}
	msg, ok := apiEvent.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		return
	}
	ev, ok := toPipelineEvent(msg)
	if !ok {
		return
	}
	r.logger.Info("message received",
		slog.String("channel", ev.Channel),
		slog.String("ts", ev.Timestamp),
		slog.Int("files", len(ev.Files)),
	)
	go r.pipeline.Handle(ctx, ev)
}

// toPipelineEvent flattens a Slack message event. New messages and file
// shares pass through directly; message_changed events are unwrapped to the
// edited message. Every other subtype (deletions, joins, bot housekeeping)
// is dropped here so the pipeline only sees real content.
func toPipelineEvent(msg *slackevents.MessageEvent) (pipeline.Event, bool) {
	switch msg.SubType {
	case "", "file_share":
	case "message_changed":
		if msg.Message == nil {
			return pipeline.Event{}, false
		}
		inner := slackevents.MessageEvent{
			Channel:         msg.Channel,
			User:            msg.Message.User,
			BotID:           msg.Message.BotID,
			TimeStamp:       msg.Message.Timestamp,
			ThreadTimeStamp: msg.Message.ThreadTimestamp,
			Text:            msg.Message.Text,
			Message:         msg.Message,
		}
		return toPipelineEvent(&inner)
	default:
		return pipeline.Event{}, false
	}

	// File attachments are only carried on the normalized slack.Msg that the
	// slackevents unmarshaller stores in Message.
	var files []pipeline.File
	if msg.Message != nil {
		files = make([]pipeline.File, 0, len(msg.Message.Files))
		for _, f := range msg.Message.Files {
			files = append(files, pipeline.File{
				Name:        f.Name,
				MimeType:    f.Mimetype,
				DownloadURL: f.URLPrivateDownload,
			})
		}
	}
	return pipeline.Event{
		Channel:   msg.Channel,
		UserID:    msg.User,
		BotID:     msg.BotID,
		Timestamp: msg.TimeStamp,
		ThreadTS:  msg.ThreadTimeStamp,
		Text:      msg.Text,
		Files:     files,
	}, true
}
