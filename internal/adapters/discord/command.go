package discord

import (
	"log/slog"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
	"moevius/internal/lib/logger/sl"
	pkgdiscord "moevius/pkg/discord"
)

const (
	cmdStream      = "stream"
	cmdGame        = "game"
	cmdJoin        = "join"
	cmdEvents      = "events"
	cmdUnannounced = "unannounced"
	cmdAnnounce    = "announce"
	cmdSquad       = "squad"

	subNext = "next"
	subWeek = "week"

	optTime        = "time"
	optDate        = "date"
	optTitle       = "title"
	optDescription = "description"
	optID          = "id"
)

var minEventID = 1.0

// Commands returns the slash commands the bot registers.
func Commands(r *pkgdiscord.Renderer) []*discordgo.ApplicationCommand {
	eventOptions := func(titleRequired bool) []*discordgo.ApplicationCommandOption {
		return []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: optTime, Description: r.T("commands.option.time", nil), Required: true},
			{Type: discordgo.ApplicationCommandOptionString, Name: optTitle, Description: r.T("commands.option.title", nil), Required: titleRequired, MaxLength: 200},
			{Type: discordgo.ApplicationCommandOptionString, Name: optDate, Description: r.T("commands.option.date", nil)},
			{Type: discordgo.ApplicationCommandOptionString, Name: optDescription, Description: r.T("commands.option.description", nil), MaxLength: 2000},
		}
	}
	return []*discordgo.ApplicationCommand{
		{Name: cmdStream, Description: r.T("commands.stream.description", nil), Options: eventOptions(false)},
		{Name: cmdGame, Description: r.T("commands.game.description", nil), Options: eventOptions(true)},
		{
			Name:        cmdJoin,
			Description: r.T("commands.join.description", nil),
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: optID, Description: r.T("commands.option.id", nil), MinValue: &minEventID},
			},
		},
		{Name: cmdEvents, Description: r.T("commands.events.description", nil)},
		{
			Name:        cmdSquad,
			Description: r.T("commands.squad.description", nil),
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: optID, Description: r.T("commands.option.id", nil), MinValue: &minEventID},
			},
		},
		{Name: cmdUnannounced, Description: r.T("commands.unannounced.description", nil)},
		{
			Name:        cmdAnnounce,
			Description: r.T("commands.announce.description", nil),
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: subNext, Description: r.T("commands.announce.next.description", nil)},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subWeek,
					Description: r.T("commands.announce.week.description", nil),
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: optDescription, Description: r.T("commands.option.description", nil), MaxLength: 2000},
					},
				},
			},
		},
	}
}

// privileged lists the commands reserved for super users.
var privileged = map[string]bool{
	cmdStream:      true,
	cmdGame:        true,
	cmdUnannounced: true,
	cmdAnnounce:    true,
}

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func toOptionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) optionMap {
	m := make(optionMap, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (m optionMap) str(name string) string {
	if o, ok := m[name]; ok {
		return o.StringValue()
	}
	return ""
}

func (m optionMap) uint(name string) uint {
	if o, ok := m[name]; ok && o.IntValue() > 0 {
		return uint(o.IntValue())
	}
	return 0
}

// draftFromOptions builds the draft of a /stream or /game command.
func draftFromOptions(typ entities.EventType, opts optionMap, creatorID string, loc *time.Location, now time.Time) (entities.Draft, error) {
	at, err := pkgdiscord.ParseEventDateTime(opts.str(optDate), opts.str(optTime), loc, now)
	if err != nil {
		return entities.Draft{}, err
	}
	return entities.Draft{
		Type:        typ,
		Title:       opts.str(optTitle),
		Description: opts.str(optDescription),
		ScheduledAt: at,
		CreatorID:   creatorID,
	}, nil
}

func (h *Handler) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	userID := interactionUserID(i)

	if privileged[data.Name] && !h.isSuperUser(userID) {
		h.respondError(s, i.Interaction, data.Name, domain.ErrNotSuperUser)
		return
	}

	opts := toOptionMap(data.Options)
	switch data.Name {
	case cmdStream:
		h.handleCreate(s, i, entities.EventTypeStream, opts, userID)
	case cmdGame:
		h.handleCreate(s, i, entities.EventTypeGame, opts, userID)
	case cmdJoin:
		h.handleJoin(s, i.Interaction, userID, opts.uint(optID))
	case cmdEvents:
		h.handleEvents(s, i)
	case cmdSquad:
		h.handleSquad(s, i, userID, opts.uint(optID))
	case cmdUnannounced:
		h.handleUnannounced(s, i)
	case cmdAnnounce:
		if len(data.Options) == 0 {
			return
		}
		sub := data.Options[0]
		h.handleAnnounce(s, i, sub.Name, toOptionMap(sub.Options))
	default:
		h.log.Warn("unknown command", slog.String("name", data.Name))
	}
}

func (h *Handler) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, typ entities.EventType, opts optionMap, userID string) {
	ctx, cancel := h.requestContext()
	defer cancel()

	draft, err := draftFromOptions(typ, opts, userID, h.loc, h.clock())
	if err != nil {
		h.respondError(s, i.Interaction, "create", err)
		return
	}
	pending, err := h.confirmations.CreateDraft(ctx, draft)
	if err != nil {
		h.respondError(s, i.Interaction, "create", err)
		return
	}

	err = respond(s, i.Interaction, &discordgo.InteractionResponseData{
		Content:    h.render.T("ui.confirm.prompt", nil),
		Embeds:     []*discordgo.MessageEmbed{h.render.PreviewEmbed(draft)},
		Components: h.confirmComponents(pending.ID.String()),
		Flags:      discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		h.log.Error("send draft prompt", slog.String("draft_id", pending.ID.String()), sl.Err(err))
		return
	}
	h.rememberPrompt(pending.ID, s, i.Interaction)
}

func (h *Handler) handleEvents(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := h.requestContext()
	defer cancel()

	events, err := h.events.UpcomingEvents(ctx)
	if err != nil {
		h.respondError(s, i.Interaction, cmdEvents, err)
		return
	}
	if len(events) == 0 {
		h.respondEphemeral(s, i.Interaction, h.render.T("ui.events.empty", nil))
		return
	}

	members := make(map[uint][]string, len(events))
	for _, e := range events {
		ids, err := h.attendance.ListMembers(ctx, e.ID)
		if err != nil {
			h.log.Warn("list members", slog.Uint64("event_id", uint64(e.ID)), sl.Err(err))
			continue
		}
		members[e.ID] = ids
	}
	h.respondEmbed(s, i.Interaction, h.render.EventListEmbed("ui.events.title", "ui.events.description", events, members), false)
}

func (h *Handler) handleUnannounced(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := h.requestContext()
	defer cancel()

	events, err := h.events.UnannouncedEvents(ctx)
	if err != nil {
		h.respondError(s, i.Interaction, cmdUnannounced, err)
		return
	}
	if len(events) == 0 {
		h.respondEphemeral(s, i.Interaction, h.render.T("ui.unannounced.empty", nil))
		return
	}
	h.respondEmbed(s, i.Interaction, h.render.EventListEmbed("ui.unannounced.title", "ui.unannounced.description", events, nil), true)
}

func (h *Handler) handleAnnounce(s *discordgo.Session, i *discordgo.InteractionCreate, sub string, opts optionMap) {
	ctx, cancel := h.requestContext()
	defer cancel()

	switch sub {
	case subNext:
		e, err := h.events.AnnounceNext(ctx)
		if err != nil {
			h.respondError(s, i.Interaction, "announce_next", err)
			return
		}
		h.respondEphemeral(s, i.Interaction, h.render.T("ui.announce.next_done", map[string]any{"ID": e.ID}))
	case subWeek:
		announced, err := h.events.AnnounceThisWeek(ctx, opts.str(optDescription))
		if err != nil {
			h.respondError(s, i.Interaction, "announce_week", err)
			return
		}
		h.respondEphemeral(s, i.Interaction, h.render.Plural("ui.announce.week_done", len(announced), nil))
	}
}

// handleSquad pings every squad member except the caller who has not
// joined the event yet.
func (h *Handler) handleSquad(s *discordgo.Session, i *discordgo.InteractionCreate, userID string, eventID uint) {
	ctx, cancel := h.requestContext()
	defer cancel()

	candidates := slices.DeleteFunc(slices.Clone(h.squad), func(id string) bool { return id == userID })
	if len(candidates) == 0 {
		h.respondEphemeral(s, i.Interaction, h.render.T("ui.squad.empty", nil))
		return
	}

	if eventID == 0 {
		next, err := h.events.NextUpcomingEventID(ctx)
		if err != nil {
			h.respondError(s, i.Interaction, cmdSquad, err)
			return
		}
		eventID = next
	}
	missing, err := h.attendance.MissingMembers(ctx, eventID, candidates)
	if err != nil {
		h.respondError(s, i.Interaction, cmdSquad, err)
		return
	}
	if len(missing) == 0 {
		h.respondEphemeral(s, i.Interaction, h.render.T("ui.squad.complete", nil))
		return
	}

	err = respond(s, i.Interaction, &discordgo.InteractionResponseData{
		Content:         h.render.T("ui.squad.ping", map[string]any{"ID": eventID, "Members": pkgdiscord.Mentions(missing)}),
		AllowedMentions: &discordgo.MessageAllowedMentions{Users: missing},
	})
	if err != nil {
		h.log.Warn("respond to interaction", sl.Err(err))
		return
	}
	h.log.Info("squad called", slog.String("member_id", userID), slog.Uint64("event_id", uint64(eventID)), slog.Int("pinged", len(missing)))
}
