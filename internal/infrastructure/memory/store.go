// Package memory is a process-local event store used for local runs and
// tests. All state is lost on exit.
package memory

import (
	"sync"
	"time"

	"moevius/internal/domain/entities"
)

// Store holds events and attendance lists behind one lock, so every
// check-and-set is atomic with respect to all other operations.
type Store struct {
	mu         sync.Mutex
	clock      func() time.Time
	lastID     uint
	events     map[uint]*entities.Event
	attendance map[uint][]entities.Attendance
}

func NewStore() *Store {
	return &Store{
		clock:      time.Now,
		events:     make(map[uint]*entities.Event),
		attendance: make(map[uint][]entities.Attendance),
	}
}

// Events returns the event repository view of the store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{s: s}
}

// Attendance returns the attendance repository view of the store.
func (s *Store) Attendance() *AttendanceRepository {
	return &AttendanceRepository{s: s}
}
