package ports

import (
	"context"

	"github.com/leafwise/support-chat-core/internal/core/domain"
)

// ChatService is the inbound contract the widget lifecycle drives.
type ChatService interface {
	// CreateSession opens a fresh session seeded with the welcome
	// message and returns its snapshot.
	CreateSession(ctx context.Context) (*domain.Session, error)

	// GetSession returns the current snapshot of an open session.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// SubmitMessage appends one user message and schedules the bot
	// response. It is valid only while no turn is pending; a second
	// submission before the bot message lands fails with
	// domain.ErrTurnInProgress.
	SubmitMessage(ctx context.Context, sessionID, text string) (*domain.Message, error)

	// QuickAction resolves a fixed-label action synchronously, with no
	// typing delay, and returns the appended bot message.
	QuickAction(ctx context.Context, sessionID string, action domain.QuickAction) (*domain.Message, error)

	// CloseSession discards the session and cancels any pending turn.
	CloseSession(ctx context.Context, sessionID string) error
}
