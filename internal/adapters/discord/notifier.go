package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
	"moevius/internal/lib/logger/sl"
	"moevius/internal/ports/output"
	pkgdiscord "moevius/pkg/discord"
)

const (
	calendarDuration = 2 * time.Hour
	maxCalendarName  = 100
)

var _ output.Notifier = (*ChannelNotifier)(nil)

// sender is the part of *discordgo.Session the notifier needs.
type sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildScheduledEventCreate(guildID string, event *discordgo.GuildScheduledEventParams, options ...discordgo.RequestOption) (*discordgo.GuildScheduledEvent, error)
}

// ChannelNotifier posts notifications to the Discord channel configured for
// each channel key. With a guild id set, every event that gets announced,
// alone or in a weekly digest, is mirrored into the guild's event calendar.
type ChannelNotifier struct {
	log      *slog.Logger
	session  sender
	render   *pkgdiscord.Renderer
	channels map[string]string
	guildID  string
}

func NewChannelNotifier(log *slog.Logger, session sender, render *pkgdiscord.Renderer, channels map[string]string, guildID string) *ChannelNotifier {
	return &ChannelNotifier{
		log:      log,
		session:  session,
		render:   render,
		channels: channels,
		guildID:  guildID,
	}
}

func (n *ChannelNotifier) Notify(ctx context.Context, channelKey string, note entities.Notification) error {
	channelID, ok := n.channels[channelKey]
	if !ok || channelID == "" {
		return fmt.Errorf("%w: no channel for %q", domain.ErrOutputUnavailable, channelKey)
	}
	msg, err := n.message(note)
	if err != nil {
		return err
	}
	if _, err := n.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: send to %s: %w", domain.ErrOutputUnavailable, channelKey, err)
	}

	if n.mirrored(note.Kind) {
		for _, e := range note.Events {
			n.mirrorToCalendar(ctx, e)
		}
	}
	return nil
}

func (n *ChannelNotifier) mirrored(kind entities.NotificationKind) bool {
	if n.guildID == "" {
		return false
	}
	return kind == entities.NotificationAnnouncement || kind == entities.NotificationWeekly
}

func (n *ChannelNotifier) message(note entities.Notification) (*discordgo.MessageSend, error) {
	if len(note.Events) == 0 {
		return nil, fmt.Errorf("%w: %s notification without events", domain.ErrInvalidDraft, note.Kind)
	}
	switch note.Kind {
	case entities.NotificationAnnouncement:
		e := note.Events[0]
		return &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{n.render.AnnouncementEmbed(e)},
			Components: JoinComponents(n.render.T("ui.join.button", nil), e.ID),
		}, nil
	case entities.NotificationStarting:
		return &discordgo.MessageSend{
			Content: n.render.StartingMessage(note.Events[0], note.Mentions),
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Users: note.Mentions,
			},
		}, nil
	case entities.NotificationWeekly:
		msg := &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{n.render.WeeklyEmbed(note.Events, note.Description)},
		}
		if len(note.Events) == 1 {
			msg.Components = JoinComponents(n.render.T("ui.join.button", nil), note.Events[0].ID)
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("%w: unknown notification kind %q", domain.ErrInvalidDraft, note.Kind)
	}
}

// mirrorToCalendar creates a guild scheduled event. Failures only cost
// the calendar entry.
func (n *ChannelNotifier) mirrorToCalendar(ctx context.Context, e entities.Event) {
	start := e.ScheduledAt
	if !start.After(time.Now()) {
		return
	}
	end := start.Add(calendarDuration)

	name := e.Title
	if name == "" {
		name = n.render.T("notify.calendar."+e.Type.String(), nil)
	}
	if len([]rune(name)) > maxCalendarName {
		name = string([]rune(name)[:maxCalendarName-3]) + "..."
	}

	_, err := n.session.GuildScheduledEventCreate(n.guildID, &discordgo.GuildScheduledEventParams{
		Name:               name,
		Description:        e.Description,
		ScheduledStartTime: &start,
		ScheduledEndTime:   &end,
		PrivacyLevel:       discordgo.GuildScheduledEventPrivacyLevelGuildOnly,
		EntityType:         discordgo.GuildScheduledEventEntityTypeExternal,
		EntityMetadata: &discordgo.GuildScheduledEventEntityMetadata{
			Location: n.render.T("notify.calendar.location", nil),
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		n.log.Warn("create calendar event", slog.Uint64("event_id", uint64(e.ID)), sl.Err(err))
	}
}
