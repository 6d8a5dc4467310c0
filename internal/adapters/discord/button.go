package discord

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"moevius/internal/domain/entities"
	"moevius/internal/lib/logger/sl"
	"moevius/internal/ports/input"
)

const (
	draftButtonPrefix = "draft_"
	joinButtonPrefix  = "btn_join_"
)

func draftButtonID(action input.ConfirmAction, draftID string) string {
	return draftButtonPrefix + string(action) + "_" + draftID
}

// parseDraftButtonID splits "draft_<action>_<uuid>".
func parseDraftButtonID(customID string) (input.ConfirmAction, uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(customID, draftButtonPrefix)
	if !ok {
		return "", uuid.Nil, false
	}
	actionStr, idStr, ok := strings.Cut(rest, "_")
	if !ok {
		return "", uuid.Nil, false
	}
	action, ok := input.ParseConfirmAction(actionStr)
	if !ok {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return "", uuid.Nil, false
	}
	return action, id, true
}

func joinButtonID(eventID uint) string {
	return joinButtonPrefix + strconv.FormatUint(uint64(eventID), 10)
}

func parseJoinButtonID(customID string) (uint, bool) {
	rest, ok := strings.CutPrefix(customID, joinButtonPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) confirmComponents(draftID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: h.render.T("ui.confirm.save", nil), Style: discordgo.PrimaryButton, CustomID: draftButtonID(input.ActionSave, draftID)},
			discordgo.Button{Label: h.render.T("ui.confirm.announce", nil), Style: discordgo.PrimaryButton, CustomID: draftButtonID(input.ActionAnnounce, draftID)},
			discordgo.Button{Label: h.render.T("ui.confirm.abort", nil), Style: discordgo.DangerButton, CustomID: draftButtonID(input.ActionAbort, draftID)},
		}},
	}
}

// JoinComponents is the button row attached to announcements.
func JoinComponents(label string, eventID uint) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: label, Style: discordgo.SuccessButton, CustomID: joinButtonID(eventID)},
		}},
	}
}

func (h *Handler) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	if action, draftID, ok := parseDraftButtonID(customID); ok {
		h.handleConfirm(s, i, action, draftID)
		return
	}
	if eventID, ok := parseJoinButtonID(customID); ok {
		h.handleJoin(s, i.Interaction, interactionUserID(i), eventID)
		return
	}
	h.log.Warn("unknown component", slog.String("custom_id", customID))
}

func (h *Handler) handleConfirm(s *discordgo.Session, i *discordgo.InteractionCreate, action input.ConfirmAction, draftID uuid.UUID) {
	ctx, cancel := h.requestContext()
	defer cancel()

	h.takePrompt(draftID)
	res, err := h.confirmations.Confirm(ctx, draftID, action)
	if err != nil {
		h.log.Debug("confirm rejected", slog.String("draft_id", draftID.String()), sl.Err(err))
		h.updatePrompt(s, i.Interaction, h.render.ErrorMessage(err))
		return
	}

	var content string
	switch res.State {
	case input.StateSaved:
		content = h.render.T("ui.confirm.saved", map[string]any{"ID": res.Event.ID})
	case input.StateAnnounced:
		content = h.render.T("ui.confirm.announced", map[string]any{"ID": res.Event.ID})
	default:
		content = h.render.T("ui.confirm.aborted", nil)
	}
	h.updatePrompt(s, i.Interaction, content)
}

// HandleDraftTimeout retracts the prompt of an expired draft. It is
// registered as the confirmation timeout handler.
func (h *Handler) HandleDraftTimeout(draftID uuid.UUID, _ entities.Draft) {
	p, ok := h.takePrompt(draftID)
	if !ok {
		return
	}
	content := h.render.T("ui.confirm.timed_out", nil)
	components := []discordgo.MessageComponent{}
	embeds := []*discordgo.MessageEmbed{}
	if _, err := p.session.InteractionResponseEdit(p.interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
		Embeds:     &embeds,
	}); err != nil {
		h.log.Warn("retract draft prompt", slog.String("draft_id", draftID.String()), sl.Err(err))
	}
}

func (h *Handler) handleJoin(s *discordgo.Session, i *discordgo.Interaction, userID string, eventID uint) {
	ctx, cancel := h.requestContext()
	defer cancel()

	out, err := h.attendance.Join(ctx, userID, eventID)
	if err != nil {
		h.respondError(s, i, "join", err)
		return
	}

	title := fmt.Sprintf("#%d", out.EventID)
	if e, err := h.events.GetEvent(ctx, out.EventID); err == nil && e.Title != "" {
		title = e.Title
	}
	data := map[string]any{"ID": out.EventID, "Title": title}

	key := "ui.join.joined"
	if out.Result == entities.AlreadyJoined {
		key = "ui.join.already_joined"
	}
	h.respondEphemeral(s, i, h.render.T(key, data))
}
