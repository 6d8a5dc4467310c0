package discord

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
	"moevius/internal/infrastructure/i18n"
	"moevius/internal/lib/logger/sl"
	pkgdiscord "moevius/pkg/discord"
)

func testRenderer(t *testing.T) *pkgdiscord.Renderer {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return pkgdiscord.NewRenderer(i18n.NewTranslator("en", sl.Discard()), "en", loc)
}

func strOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func TestCommands(t *testing.T) {
	cmds := Commands(testRenderer(t))

	names := make(map[string]*discordgo.ApplicationCommand, len(cmds))
	for _, c := range cmds {
		names[c.Name] = c
		assert.NotEmpty(t, c.Description, c.Name)
		assert.NotContains(t, c.Description, "commands.", "description of %s is untranslated", c.Name)
	}
	for _, name := range []string{cmdStream, cmdGame, cmdJoin, cmdEvents, cmdUnannounced, cmdAnnounce, cmdSquad} {
		assert.Contains(t, names, name)
	}

	announce := names[cmdAnnounce]
	require.Len(t, announce.Options, 2)
	assert.Equal(t, subNext, announce.Options[0].Name)
	assert.Equal(t, subWeek, announce.Options[1].Name)

	// Game events need a title, streams do not.
	assert.True(t, names[cmdGame].Options[1].Required)
	assert.False(t, names[cmdStream].Options[1].Required)
}

func TestPrivilegedCommands(t *testing.T) {
	assert.True(t, privileged[cmdStream])
	assert.True(t, privileged[cmdAnnounce])
	assert.False(t, privileged[cmdJoin])
	assert.False(t, privileged[cmdEvents])
	assert.False(t, privileged[cmdSquad])
}

func TestDraftFromOptions(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, loc)

	opts := toOptionMap([]*discordgo.ApplicationCommandInteractionDataOption{
		strOpt(optTime, "18:30"),
		strOpt(optDate, "05.03.2024"),
		strOpt(optTitle, "Kochstudio"),
	})
	d, err := draftFromOptions(entities.EventTypeGame, opts, "1001", loc, now)
	require.NoError(t, err)
	assert.Equal(t, entities.EventTypeGame, d.Type)
	assert.Equal(t, "Kochstudio", d.Title)
	assert.Empty(t, d.Description)
	assert.Equal(t, "1001", d.CreatorID)
	assert.True(t, d.ScheduledAt.Equal(time.Date(2024, 3, 5, 18, 30, 0, 0, loc)))

	t.Run("without date means today", func(t *testing.T) {
		opts := toOptionMap([]*discordgo.ApplicationCommandInteractionDataOption{strOpt(optTime, "20:00")})
		d, err := draftFromOptions(entities.EventTypeStream, opts, "1001", loc, now)
		require.NoError(t, err)
		assert.True(t, d.ScheduledAt.Equal(time.Date(2024, 3, 4, 20, 0, 0, 0, loc)))
	})

	t.Run("past time", func(t *testing.T) {
		opts := toOptionMap([]*discordgo.ApplicationCommandInteractionDataOption{strOpt(optTime, "11:00")})
		_, err := draftFromOptions(entities.EventTypeStream, opts, "1001", loc, now)
		assert.ErrorIs(t, err, domain.ErrDateTimeInPast)
	})

	t.Run("garbage time", func(t *testing.T) {
		opts := toOptionMap([]*discordgo.ApplicationCommandInteractionDataOption{strOpt(optTime, "halb acht")})
		_, err := draftFromOptions(entities.EventTypeStream, opts, "1001", loc, now)
		assert.ErrorIs(t, err, domain.ErrInvalidDateTime)
	})
}

func TestOptionMap_Uint(t *testing.T) {
	opts := toOptionMap([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: optID, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(7)},
	})
	assert.Equal(t, uint(7), opts.uint(optID))
	assert.Equal(t, uint(0), toOptionMap(nil).uint(optID))
	assert.Empty(t, toOptionMap(nil).str(optTitle))
}

func TestHandler_IsSuperUser(t *testing.T) {
	h := NewHandler(sl.Discard(), nil, nil, nil, testRenderer(t), time.UTC, []string{"1", "2"}, nil)
	assert.True(t, h.isSuperUser("1"))
	assert.False(t, h.isSuperUser("3"))
	assert.False(t, h.isSuperUser(""))
}
