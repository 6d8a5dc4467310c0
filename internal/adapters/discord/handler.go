package discord

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"moevius/internal/ports/input"
	pkgdiscord "moevius/pkg/discord"
)

const requestTimeout = 10 * time.Second

// prompt is an ephemeral Save/Announce/Abort message waiting for a click.
type prompt struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

// Handler handles Discord interactions using use cases.
type Handler struct {
	log           *slog.Logger
	events        input.EventUseCase
	attendance    input.AttendanceUseCase
	confirmations input.ConfirmationUseCase
	render        *pkgdiscord.Renderer
	loc           *time.Location
	superUsers    map[string]struct{}
	squad         []string
	clock         func() time.Time

	mu      sync.Mutex
	prompts map[uuid.UUID]prompt
}

func NewHandler(
	log *slog.Logger,
	events input.EventUseCase,
	attendance input.AttendanceUseCase,
	confirmations input.ConfirmationUseCase,
	render *pkgdiscord.Renderer,
	loc *time.Location,
	superUserIDs []string,
	squadIDs []string,
) *Handler {
	superUsers := make(map[string]struct{}, len(superUserIDs))
	for _, id := range superUserIDs {
		superUsers[id] = struct{}{}
	}
	return &Handler{
		log:           log,
		events:        events,
		attendance:    attendance,
		confirmations: confirmations,
		render:        render,
		loc:           loc,
		superUsers:    superUsers,
		squad:         squadIDs,
		clock:         time.Now,
		prompts:       make(map[uuid.UUID]prompt),
	}
}

func (h *Handler) isSuperUser(userID string) bool {
	_, ok := h.superUsers[userID]
	return ok
}

func (h *Handler) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (h *Handler) rememberPrompt(id uuid.UUID, s *discordgo.Session, i *discordgo.Interaction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prompts[id] = prompt{session: s, interaction: i}
}

func (h *Handler) takePrompt(id uuid.UUID) (prompt, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.prompts[id]
	delete(h.prompts, id)
	return p, ok
}
