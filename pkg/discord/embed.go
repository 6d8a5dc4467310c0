package discord

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"moevius/internal/domain/entities"
	"moevius/internal/ports/output"
)

const (
	streamColor = 0x9146FF
	gameColor   = 0x5865F2
	listColor   = 0x2ECC71
)

// Renderer turns domain values into Discord messages in one locale and
// time zone.
type Renderer struct {
	tr     output.Translator
	locale string
	loc    *time.Location
}

func NewRenderer(tr output.Translator, locale string, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{tr: tr, locale: locale, loc: loc}
}

func (r *Renderer) T(key string, data map[string]any) string {
	return r.tr.T(r.locale, key, data)
}

func (r *Renderer) Plural(key string, count int, data map[string]any) string {
	return r.tr.Plural(r.locale, key, count, data)
}

// ErrorMessage is DomainErrorMessage in the renderer's locale.
func (r *Renderer) ErrorMessage(err error) string {
	return DomainErrorMessage(r.tr, r.locale, err)
}

func Mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

func Mentions(userIDs []string) string {
	parts := make([]string, len(userIDs))
	for i, id := range userIDs {
		parts[i] = Mention(id)
	}
	return strings.Join(parts, " ")
}

func colorFor(t entities.EventType) int {
	if t == entities.EventTypeStream {
		return streamColor
	}
	return gameColor
}

func (r *Renderer) when(t time.Time) string {
	return r.T("notify.time", map[string]any{
		"Date": FormatDate(t, r.loc),
		"Time": FormatTime(t, r.loc),
	})
}

func (r *Renderer) eventFields(e entities.Event) []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		{Name: r.T("notify.field.when", nil), Value: r.when(e.ScheduledAt), Inline: true},
	}
	if e.Title != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: r.T("notify.field.what", nil), Value: e.Title, Inline: true})
	}
	if e.ID != 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: r.T("notify.field.id", nil), Value: "#" + strconv.FormatUint(uint64(e.ID), 10), Inline: true})
	}
	return fields
}

// PreviewEmbed shows a draft to its creator before the confirmation.
func (r *Renderer) PreviewEmbed(d entities.Draft) *discordgo.MessageEmbed {
	e := d.Event()
	return &discordgo.MessageEmbed{
		Title:       r.T("notify.preview.title", nil) + ": " + r.T("notify.announcement."+d.Type.String(), nil),
		Description: e.Description,
		Color:       colorFor(d.Type),
		Fields:      r.eventFields(*e),
	}
}

// AnnouncementEmbed is posted to the event's channel when it is announced.
func (r *Renderer) AnnouncementEmbed(e entities.Event) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       r.T("notify.announcement."+e.Type.String(), nil),
		Description: e.Description,
		Color:       colorFor(e.Type),
		Fields:      r.eventFields(e),
		Footer:      &discordgo.MessageEmbedFooter{Text: r.T("notify.join_hint", map[string]any{"ID": e.ID})},
	}
}

// StartingMessage is plain content so the mentions actually ping.
func (r *Renderer) StartingMessage(e entities.Event, mentions []string) string {
	var b strings.Builder
	b.WriteString(r.T("notify.starting."+e.Type.String(), map[string]any{
		"Time":  FormatTime(e.ScheduledAt, r.loc),
		"Title": e.Title,
	}))
	if len(mentions) > 0 {
		b.WriteString("\n")
		b.WriteString(r.T("notify.starting.members", map[string]any{"Members": Mentions(mentions)}))
	}
	return b.String()
}

// WeeklyEmbed lists the events announced together for one channel.
func (r *Renderer) WeeklyEmbed(events []entities.Event, description string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       r.T("notify.weekly.title", nil),
		Description: description,
		Color:       listColor,
	}
	for _, e := range events {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("#%d %s", e.ID, e.Title),
			Value: r.when(e.ScheduledAt),
		})
	}
	return embed
}

// EventListEmbed renders the /events and /unannounced views. members may
// be nil when attendance is not shown.
func (r *Renderer) EventListEmbed(titleKey, descriptionKey string, events []entities.Event, members map[uint][]string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       r.T(titleKey, nil),
		Description: r.T(descriptionKey, nil),
		Color:       listColor,
	}
	for _, e := range events {
		value := r.when(e.ScheduledAt)
		if members != nil {
			ids := members[e.ID]
			list := r.T("notify.members.none", nil)
			if len(ids) > 0 {
				list = Mentions(ids)
			}
			value += "\n" + r.Plural("ui.events.members", len(ids), map[string]any{"Members": list})
		}
		name := fmt.Sprintf("#%d %s", e.ID, e.Type.String())
		if e.Title != "" {
			name += ": " + e.Title
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: value})
	}
	return embed
}
