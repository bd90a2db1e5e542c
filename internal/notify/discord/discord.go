// Package discord implements the notify Sink for Discord.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/shopline/internal/notify"
)

// discordClient abstracts the discordgo methods we use, enabling test mocks.
type discordClient interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Sink posts events to a Discord channel.
type Sink struct {
	client    discordClient
	channelID string
}

// Opts holds parameters for creating a Discord Sink.
type Opts struct {
	BotToken  string // Discord bot token
	ChannelID string // channel to post to
	// For testing: inject a mock client instead of a real session.
	Client discordClient
}

// New creates a Discord Sink.
func New(opts Opts) (*Sink, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("discord: channel ID is required")
	}
	client := opts.Client
	if client == nil {
		session, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		client = session
	}
	return &Sink{client: client, channelID: opts.ChannelID}, nil
}

// Name implements notify.Sink.
func (s *Sink) Name() string { return "discord" }

// Post implements notify.Sink.
func (s *Sink) Post(ctx context.Context, ev notify.Event) error {
	embed := &discordgo.MessageEmbed{
		Title:       title(ev.Kind),
		Description: ev.Text,
		Color:       colorFor(ev.Kind),
	}
	if _, err := s.client.ChannelMessageSendEmbed(s.channelID, embed); err != nil {
		return fmt.Errorf("discord: post %s: %w", ev.Kind, err)
	}
	return nil
}

func title(kind string) string {
	switch kind {
	case "work_order_assigned":
		return "Work order assigned"
	case "downtime_reported":
		return "Downtime reported"
	case "downtime_cleared":
		return "Downtime cleared"
	}
	return kind
}

// colorFor picks the embed color for an event kind.
func colorFor(kind string) int {
	switch kind {
	case "downtime_reported":
		return 0xd00000
	case "downtime_cleared":
		return 0x36a64f
	default:
		return 0x439fe0
	}
}
