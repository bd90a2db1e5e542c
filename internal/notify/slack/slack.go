// Package slack implements the notify Sink for Slack.
package slack

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/shopline/internal/notify"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Sink posts events to a Slack channel.
type Sink struct {
	client    slackClient
	channelID string
}

// Opts holds parameters for creating a Slack Sink.
type Opts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string // channel to post to
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// New creates a Slack Sink.
func New(opts Opts) (*Sink, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel ID is required")
	}
	client := opts.Client
	if client == nil {
		client = slackapi.New(opts.BotToken)
	}
	return &Sink{client: client, channelID: opts.ChannelID}, nil
}

// Name implements notify.Sink.
func (s *Sink) Name() string { return "slack" }

// Post implements notify.Sink.
func (s *Sink) Post(ctx context.Context, ev notify.Event) error {
	attachment := slackapi.Attachment{
		Color: colorFor(ev.Kind),
		Text:  ev.Text,
	}
	_, _, err := s.client.PostMessageContext(ctx, s.channelID,
		slackapi.MsgOptionAttachments(attachment))
	if err != nil {
		return fmt.Errorf("slack: post %s: %w", ev.Kind, err)
	}
	return nil
}

// colorFor picks the attachment sidebar color for an event kind.
func colorFor(kind string) string {
	switch kind {
	case "downtime_reported":
		return "#d00000"
	case "downtime_cleared":
		return "#36a64f"
	default:
		return "#439fe0"
	}
}
