// Package announce posts Big Win Pool payouts to a Discord channel.
package announce

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/event"
)

// EmbedSender is the part of *discordgo.Session the announcer uses
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer relays big wins from the event bus to a channel
type Announcer struct {
	sender    EmbedSender
	channelID string
	printer   *message.Printer
	now       func() time.Time
}

// New creates an announcer. An empty channel disables announcements.
func New(sender EmbedSender, channelID string) *Announcer {
	return &Announcer{
		sender:    sender,
		channelID: channelID,
		printer:   message.NewPrinter(language.English),
		now:       time.Now,
	}
}

// NewSession opens a REST-only Discord session for a bot token
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	return s, nil
}

// Register subscribes to big win events
func (a *Announcer) Register(bus event.Bus) {
	bus.Subscribe(event.Type(domain.EventTypeBigWin), a.HandleBigWin)
}

// HandleBigWin posts one payout. Failures are logged and returned so the
// resilient publisher can retry them.
func (a *Announcer) HandleBigWin(_ context.Context, evt event.Event) error {
	if a.channelID == "" {
		return nil
	}

	payload, err := event.DecodePayload[domain.SpinSettledPayload](evt.Payload)
	if err != nil {
		slog.Warn(LogMsgParseError, "error", err, "event_type", evt.Type)
		return nil
	}

	embed := a.buildEmbed(payload)
	if _, err := a.sender.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		slog.Error(LogMsgSendError, "error", err, "session_id", evt.SessionID())
		return err
	}

	slog.Info(LogMsgAnnounced, "session_id", evt.SessionID(), "amount", payload.Result.WinAmount)
	return nil
}

func (a *Announcer) buildEmbed(p domain.SpinSettledPayload) *discordgo.MessageEmbed {
	reels := ""
	for _, s := range p.Result.Symbols {
		reels += s.Glyph
	}

	return &discordgo.MessageEmbed{
		Title:       EmbedTitle,
		Description: a.printer.Sprintf("The Big Win Pool just paid out **%d** credits!", p.Result.WinAmount),
		Color:       EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Reels", Value: reels, Inline: true},
			{Name: "Bet", Value: a.printer.Sprintf("%d", p.Bet), Inline: true},
		},
		Timestamp: a.now().Format(time.RFC3339),
	}
}
