// Package memory holds session state for open chat widgets. Sessions
// are deliberately not persisted: a session dies with the widget that
// opened it, so the process heap is the source of truth.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leafwise/support-chat-core/internal/core/domain"
)

type sessionState struct {
	id                   string
	transcript           []domain.Message
	awaitingResponse     bool
	contactCardRequested bool
	createdAt            time.Time
	lastActiveAt         time.Time
}

// Store is a mutex-guarded map of open sessions. Every method is
// atomic with respect to the whole store, which trivially serializes
// turns within one session.
type Store struct {
	idleTTL      time.Duration
	reapInterval time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*sessionState
	onEvict  func(sessionID string)
}

type Config struct {
	IdleTTL      time.Duration
	ReapInterval time.Duration
	Logger       *slog.Logger
}

func NewStore(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reapInterval := cfg.ReapInterval
	if reapInterval <= 0 {
		reapInterval = time.Minute
	}
	return &Store{
		idleTTL:      cfg.IdleTTL,
		reapInterval: reapInterval,
		logger:       logger,
		sessions:     make(map[string]*sessionState),
	}
}

// OnEvict registers a hook invoked (outside the store lock) for every
// session the janitor reaps. Must be set before Run.
func (s *Store) OnEvict(fn func(sessionID string)) {
	s.mu.Lock()
	s.onEvict = fn
	s.mu.Unlock()
}

func (s *Store) Create(_ context.Context, welcome domain.Message) (*domain.Session, error) {
	now := time.Now().UTC()
	state := &sessionState{
		id:           uuid.NewString(),
		transcript:   []domain.Message{welcome},
		createdAt:    now,
		lastActiveAt: now,
	}

	s.mu.Lock()
	s.sessions[state.id] = state
	snapshot := state.snapshot()
	s.mu.Unlock()

	return snapshot, nil
}

func (s *Store) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	// Polling renderers count as activity; an open widget is never idle.
	state.lastActiveAt = time.Now().UTC()
	return state.snapshot(), nil
}

func (s *Store) BeginTurn(_ context.Context, sessionID string, userMsg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if state.awaitingResponse {
		return domain.ErrTurnInProgress
	}

	state.transcript = append(state.transcript, userMsg)
	state.awaitingResponse = true
	state.lastActiveAt = time.Now().UTC()
	return nil
}

func (s *Store) CompleteTurn(_ context.Context, sessionID string, botMsg domain.Message, showContact bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		// Session was closed while the turn was pending; the caller
		// discards the bot message.
		return domain.ErrSessionNotFound
	}

	state.transcript = append(state.transcript, botMsg)
	state.awaitingResponse = false
	if showContact {
		state.contactCardRequested = true
	}
	state.lastActiveAt = time.Now().UTC()
	return nil
}

func (s *Store) AppendBotMessage(_ context.Context, sessionID string, botMsg domain.Message, showContact bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if state.awaitingResponse {
		return domain.ErrTurnInProgress
	}

	state.transcript = append(state.transcript, botMsg)
	if showContact {
		state.contactCardRequested = true
	}
	state.lastActiveAt = time.Now().UTC()
	return nil
}

func (s *Store) Close(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// Run reaps sessions idle longer than the configured TTL until ctx is
// cancelled. Widgets usually close their session explicitly; the
// janitor covers the ones that vanish without a DELETE.
func (s *Store) Run(ctx context.Context) {
	if s.idleTTL <= 0 {
		s.logger.Debug("session janitor disabled, idle ttl not set")
		return
	}

	ticker := time.NewTicker(s.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reapIdle(time.Now().UTC())
		}
	}
}

func (s *Store) reapIdle(now time.Time) {
	s.mu.Lock()
	var evicted []string
	for id, state := range s.sessions {
		if now.Sub(state.lastActiveAt) > s.idleTTL {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	onEvict := s.onEvict
	s.mu.Unlock()

	for _, id := range evicted {
		s.logger.Info("session reaped", "session_id", id, "idle_ttl", s.idleTTL.String())
		if onEvict != nil {
			onEvict(id)
		}
	}
}

// Len reports the number of open sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (st *sessionState) snapshot() *domain.Session {
	transcript := make([]domain.Message, len(st.transcript))
	copy(transcript, st.transcript)
	return &domain.Session{
		ID:                   st.id,
		Transcript:           transcript,
		AwaitingResponse:     st.awaitingResponse,
		ContactCardRequested: st.contactCardRequested,
		CreatedAt:            st.createdAt,
		LastActiveAt:         st.lastActiveAt,
	}
}
