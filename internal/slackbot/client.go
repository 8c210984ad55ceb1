// Package slackbot connects the pipeline to Slack: a Socket Mode event loop
// on the inbound side and the Web API (reactions, threaded posts) on the
// outbound side.
package slackbot

import (
	"context"
	"log/slog"

	"github.com/slack-go/slack"
)

// Client wraps the Slack Web API calls the pipeline needs. It implements
// pipeline.Chat.
type Client struct {
	logger *slog.Logger
	api    *slack.Client
}

// NewClient creates a Client from the bot and app-level tokens. The
// app-level token is required for Socket Mode.
func NewClient(log *slog.Logger, botToken, appToken string) *Client {
	if log == nil {
		log = slog.Default()
	}
	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	return &Client{
		logger: log.With(slog.String("component", "slack_client")),
		api:    api,
	}
}

// AddReaction adds an emoji reaction to the message at timestamp.
func (c *Client) AddReaction(ctx context.Context, channel, timestamp, name string) error {
	return c.api.AddReactionContext(ctx, name, slack.NewRefToMessage(channel, timestamp))
}

// RemoveReaction removes the bot's emoji reaction from the message.
func (c *Client) RemoveReaction(ctx context.Context, channel, timestamp, name string) error {
	return c.api.RemoveReactionContext(ctx, name, slack.NewRefToMessage(channel, timestamp))
}

// PostBlocks posts a Block Kit message into the thread rooted at threadTS.
// fallback is the plain-text summary shown by notifications and clients
// that cannot render blocks.
func (c *Client) PostBlocks(ctx context.Context, channel, threadTS string, blocks []slack.Block, fallback string) error {
	_, _, err := c.api.PostMessageContext(ctx, channel,
		slack.MsgOptionTS(threadTS),
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	return err
}

// PostText posts a plain-text threaded reply.
func (c *Client) PostText(ctx context.Context, channel, threadTS, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channel,
		slack.MsgOptionTS(threadTS),
		slack.MsgOptionText(text, false),
	)
	return err
}
