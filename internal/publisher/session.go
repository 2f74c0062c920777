package publisher

import (
	"sync"
	"time"

	"tournamentBot/internal/models/domain"
)

// State — шаг диалога публикации.
type State int

const (
	// Idle — сессии нет.
	Idle State = iota
	AwaitingVenue
	AwaitingDescription
	AwaitingConfirmation
)

func (s State) String() string {
	switch s {
	case AwaitingVenue:
		return "awaiting_venue"
	case AwaitingDescription:
		return "awaiting_description"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	default:
		return "idle"
	}
}

// Session — черновик публикации одного администратора.
type Session struct {
	AdminID       int64
	TournamentKey string
	Venue         *domain.Venue
	Description   string
	State         State
	UpdatedAt     time.Time
}

// SessionStore хранит сессии в памяти, по одной на актора.
// При ttl > 0 сессия, не менявшаяся дольше ttl, считается отсутствующей.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create начинает новую сессию, заменяя прежнюю.
func (s *SessionStore) Create(actor int64, tournamentKey string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := Session{
		AdminID:       actor,
		TournamentKey: tournamentKey,
		State:         AwaitingVenue,
		UpdatedAt:     s.now(),
	}
	s.sessions[actor] = sess
	return sess
}

func (s *SessionStore) Get(actor int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[actor]
	if !ok {
		return Session{}, false
	}
	if s.ttl > 0 && s.now().Sub(sess.UpdatedAt) > s.ttl {
		delete(s.sessions, actor)
		return Session{}, false
	}
	return sess, true
}

func (s *SessionStore) Update(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.UpdatedAt = s.now()
	s.sessions[sess.AdminID] = sess
}

// Clear удаляет сессию. Возвращает true, если она была.
func (s *SessionStore) Clear(actor int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[actor]
	delete(s.sessions, actor)
	return ok
}
