package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"moevius/internal/lib/logger/sl"
	pkgdiscord "moevius/pkg/discord"
)

// Bot is the Discord adapter.
type Bot struct {
	log     *slog.Logger
	session *discordgo.Session
	guildID string
	handler *Handler
	render  *pkgdiscord.Renderer
}

// NewBot routes the session's interactions to handler. Commands are
// registered for guildID, or globally when it is empty.
func NewBot(log *slog.Logger, session *discordgo.Session, guildID string, handler *Handler, render *pkgdiscord.Renderer) *Bot {
	bot := &Bot{
		log:     log,
		session: session,
		guildID: guildID,
		handler: handler,
		render:  render,
	}
	bot.setupHandlers()
	return bot
}

func (b *Bot) setupHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.log.Info("connected", slog.String("user", r.User.Username), slog.Int("guilds", len(r.Guilds)))
	})
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handler.HandleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handler.HandleComponent(s, i)
	default:
		b.log.Debug("ignored interaction", slog.String("type", i.Type.String()))
	}
}

// Start connects, registers the commands and blocks until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if err := b.session.Close(); err != nil {
			b.log.Warn("close session", sl.Err(err))
		}
	}()

	commands := Commands(b.render)
	if _, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, commands); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	b.log.Info("bot online", slog.Int("commands", len(commands)), slog.String("guild_id", b.guildID))

	<-ctx.Done()
	b.log.Info("bot shutting down")
	return nil
}
