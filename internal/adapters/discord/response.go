package discord

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"moevius/internal/domain"
	"moevius/internal/lib/logger/sl"
)

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func respond(s *discordgo.Session, i *discordgo.Interaction, data *discordgo.InteractionResponseData) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (h *Handler) respondEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	if err := respond(s, i, &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		h.log.Warn("respond to interaction", sl.Err(err))
	}
}

func (h *Handler) respondEmbed(s *discordgo.Session, i *discordgo.Interaction, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := respond(s, i, data); err != nil {
		h.log.Warn("respond to interaction", sl.Err(err))
	}
}

// respondError answers with the translated domain error. Failures that are
// not the caller's fault are logged.
func (h *Handler) respondError(s *discordgo.Session, i *discordgo.Interaction, op string, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindNotFound, domain.KindConflict:
		h.log.Debug("request rejected", slog.String("op", op), slog.String("code", domain.Code(err)))
	default:
		h.log.Error("request failed", slog.String("op", op), sl.Err(err))
	}
	h.respondEphemeral(s, i, h.render.ErrorMessage(err))
}

// updatePrompt replaces the message a component belongs to and drops its
// buttons.
func (h *Handler) updatePrompt(s *discordgo.Session, i *discordgo.Interaction, content string) {
	if err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	}); err != nil {
		h.log.Warn("update prompt", sl.Err(err))
	}
}
