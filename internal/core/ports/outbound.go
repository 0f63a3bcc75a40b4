package ports

import (
	"context"

	"github.com/leafwise/support-chat-core/internal/core/domain"
)

// SessionStore owns mutable session state. Implementations must make
// each method atomic with respect to one session so the transcript can
// never interleave two pending resolutions.
type SessionStore interface {
	// Create stores a new empty session seeded with the welcome message.
	Create(ctx context.Context, welcome domain.Message) (*domain.Session, error)

	// Get returns a snapshot of an open session.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// BeginTurn appends the user message and marks the session as
	// awaiting a response. Fails with domain.ErrTurnInProgress when a
	// turn is already pending.
	BeginTurn(ctx context.Context, sessionID string, userMsg domain.Message) error

	// CompleteTurn appends the bot message, applies side effects and
	// clears the awaiting flag. Fails with domain.ErrSessionNotFound
	// when the session was closed while the turn was pending; the bot
	// message is then discarded.
	CompleteTurn(ctx context.Context, sessionID string, botMsg domain.Message, showContact bool) error

	// AppendBotMessage appends a bot message outside a pending turn
	// (quick actions, which never touch the awaiting flag). Like
	// BeginTurn it is valid only while the session is idle and fails
	// with domain.ErrTurnInProgress otherwise.
	AppendBotMessage(ctx context.Context, sessionID string, botMsg domain.Message, showContact bool) error

	// Close discards the session. Closing an unknown session is an
	// error; closing twice is not.
	Close(ctx context.Context, sessionID string) error
}

// Rand is the single source of randomness for the engine (typing delay
// jitter, fallback suggestion pick), injectable so tests stay
// deterministic.
type Rand interface {
	// IntN returns a uniform pseudo-random int in [0, n). n must be > 0.
	IntN(n int) int
}

// TurnObserver receives engine telemetry. Implementations must be safe
// for concurrent use.
type TurnObserver interface {
	TurnResolved(outcome domain.TurnOutcome, score int)
	FallbackRuleFired(rule string)
	QuickActionUsed(action domain.QuickAction)
	SessionOpened()
	SessionClosed()
	ContactCardRequested()
}
