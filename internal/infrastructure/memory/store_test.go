package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moevius/internal/domain"
	"moevius/internal/domain/entities"
)

func newEvent(at time.Time) *entities.Event {
	return &entities.Event{
		Type:        entities.EventTypeStream,
		Title:       gofakeit.Sentence(3),
		ScheduledAt: at,
		CreatorID:   gofakeit.Numerify("##########"),
	}
}

func TestEventRepository_CreateAssignsIncreasingIDs(t *testing.T) {
	repo := NewStore().Events()
	ctx := context.Background()
	at := time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC)

	first, second := newEvent(at), newEvent(at)
	first.Announced = true
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.Equal(t, uint(1), first.ID)
	assert.Equal(t, uint(2), second.ID)
	assert.True(t, first.Announced, "announced flag is stored as given")
	assert.False(t, second.Announced)

	stored, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, stored.Announced)
	assert.False(t, stored.Started)

	got, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, second.Title, got.Title)

	_, err = repo.FindByID(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestEventRepository_FindReturnsCopies(t *testing.T) {
	repo := NewStore().Events()
	ctx := context.Background()
	e := newEvent(time.Now().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, e))

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	got.Title = "changed"

	again, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again.Title)
}

func TestEventRepository_MarkStartedRequiresAnnounced(t *testing.T) {
	repo := NewStore().Events()
	ctx := context.Background()
	e := newEvent(time.Now())
	require.NoError(t, repo.Create(ctx, e))

	ok, err := repo.MarkStarted(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrEventNotAnnounced)
	assert.False(t, ok)

	ok, err = repo.MarkAnnounced(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkAnnounced(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second announce is not a transition")

	ok, err = repo.MarkStarted(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkStarted(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.MarkStarted(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestEventRepository_MarkStartedConcurrent(t *testing.T) {
	repo := NewStore().Events()
	ctx := context.Background()
	e := newEvent(time.Now())
	require.NoError(t, repo.Create(ctx, e))
	_, err := repo.MarkAnnounced(ctx, e.ID)
	require.NoError(t, err)

	const workers = 32
	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.MarkStarted(ctx, e.ID)
			if err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestEventRepository_Filters(t *testing.T) {
	repo := NewStore().Events()
	ctx := context.Background()
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	nextMonday := monday.AddDate(0, 0, 7)

	inWeek := newEvent(monday.Add(20 * time.Hour))
	atEnd := newEvent(nextMonday)
	announced := newEvent(monday.Add(30 * time.Hour))
	for _, e := range []*entities.Event{inWeek, atEnd, announced} {
		require.NoError(t, repo.Create(ctx, e))
	}
	_, err := repo.MarkAnnounced(ctx, announced.ID)
	require.NoError(t, err)

	between, err := repo.FindUnannouncedBetween(ctx, monday, nextMonday)
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, inWeek.ID, between[0].ID)

	unannounced, err := repo.FindUnannounced(ctx)
	require.NoError(t, err)
	assert.Len(t, unannounced, 2)

	upcoming, err := repo.FindUpcoming(ctx)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, announced.ID, upcoming[0].ID)
}

func TestAttendanceRepository_Add(t *testing.T) {
	store := NewStore()
	events, attendance := store.Events(), store.Attendance()
	ctx := context.Background()
	e := newEvent(time.Now())
	require.NoError(t, events.Create(ctx, e))

	member := gofakeit.Numerify("##########")
	created, err := attendance.Add(ctx, &entities.Attendance{EventID: e.ID, MemberID: member})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = attendance.Add(ctx, &entities.Attendance{EventID: e.ID, MemberID: member})
	require.NoError(t, err)
	assert.False(t, created)

	ids, err := attendance.MemberIDs(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{member}, ids)

	_, err = attendance.Add(ctx, &entities.Attendance{EventID: 42, MemberID: member})
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	_, err = attendance.MemberIDs(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}
