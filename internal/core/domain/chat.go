package domain

import "time"

type MessageRole string

const (
	RoleUser MessageRole = "user"
	RoleBot  MessageRole = "bot"
)

// Message is one transcript entry. Messages are immutable once
// appended; transcript order is authoritative, CreatedAt is advisory.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"created_at"`
}

type QuickAction string

const (
	QuickActionIdentify QuickAction = "identify"
	QuickActionPremium  QuickAction = "premium"
	QuickActionCare     QuickAction = "care"
	QuickActionContact  QuickAction = "contact"
)

// Session is a read-model snapshot of one open chat widget instance.
// The session store owns the mutable state; snapshots carry copies.
type Session struct {
	ID                   string    `json:"id"`
	Transcript           []Message `json:"transcript"`
	AwaitingResponse     bool      `json:"awaiting_response"`
	ContactCardRequested bool      `json:"contact_card_requested"`
	CreatedAt            time.Time `json:"created_at"`
	LastActiveAt         time.Time `json:"last_active_at"`
}

type TurnOutcome string

const (
	TurnOutcomeMatched     TurnOutcome = "matched"
	TurnOutcomeFallback    TurnOutcome = "fallback"
	TurnOutcomeQuickAction TurnOutcome = "quick_action"
	TurnOutcomeCancelled   TurnOutcome = "cancelled"
)
