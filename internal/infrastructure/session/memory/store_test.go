package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leafwise/support-chat-core/internal/core/domain"
)

func testMessage(role domain.MessageRole, text string) domain.Message {
	return domain.Message{
		ID:        text,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()

	session, err := store.Create(ctx, testMessage(domain.RoleBot, "welcome"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if session.ID == "" {
		t.Fatalf("session id is empty")
	}
	if len(session.Transcript) != 1 || session.Transcript[0].Text != "welcome" {
		t.Fatalf("transcript = %+v", session.Transcript)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != session.ID {
		t.Fatalf("Get() returned %s, want %s", got.ID, session.ID)
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
}

func TestStoreGetUnknown(t *testing.T) {
	store := NewStore(Config{})

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("Get() error = %v, want ErrSessionNotFound", err)
	}
}

func TestStoreTurnFlow(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()
	session, _ := store.Create(ctx, testMessage(domain.RoleBot, "welcome"))

	if err := store.BeginTurn(ctx, session.ID, testMessage(domain.RoleUser, "question")); err != nil {
		t.Fatalf("BeginTurn() error = %v", err)
	}

	mid, _ := store.Get(ctx, session.ID)
	if !mid.AwaitingResponse {
		t.Fatalf("awaiting flag not set after BeginTurn")
	}

	// While awaiting, a second turn and a quick-action append are both
	// rejected.
	if err := store.BeginTurn(ctx, session.ID, testMessage(domain.RoleUser, "again")); !errors.Is(err, domain.ErrTurnInProgress) {
		t.Fatalf("second BeginTurn() error = %v, want ErrTurnInProgress", err)
	}
	if err := store.AppendBotMessage(ctx, session.ID, testMessage(domain.RoleBot, "canned"), false); !errors.Is(err, domain.ErrTurnInProgress) {
		t.Fatalf("AppendBotMessage() error = %v, want ErrTurnInProgress", err)
	}

	if err := store.CompleteTurn(ctx, session.ID, testMessage(domain.RoleBot, "answer"), true); err != nil {
		t.Fatalf("CompleteTurn() error = %v", err)
	}

	final, _ := store.Get(ctx, session.ID)
	if final.AwaitingResponse {
		t.Fatalf("awaiting flag not cleared after CompleteTurn")
	}
	if !final.ContactCardRequested {
		t.Fatalf("contact card flag not applied")
	}
	texts := make([]string, 0, len(final.Transcript))
	for _, msg := range final.Transcript {
		texts = append(texts, msg.Text)
	}
	want := []string{"welcome", "question", "answer"}
	if len(texts) != len(want) {
		t.Fatalf("transcript = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("transcript[%d] = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestStoreCompleteTurnAfterClose(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()
	session, _ := store.Create(ctx, testMessage(domain.RoleBot, "welcome"))

	if err := store.BeginTurn(ctx, session.ID, testMessage(domain.RoleUser, "question")); err != nil {
		t.Fatalf("BeginTurn() error = %v", err)
	}
	if err := store.Close(ctx, session.ID); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := store.CompleteTurn(ctx, session.ID, testMessage(domain.RoleBot, "answer"), false); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("CompleteTurn() error = %v, want ErrSessionNotFound", err)
	}
}

func TestStoreCloseUnknown(t *testing.T) {
	store := NewStore(Config{})

	if err := store.Close(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("Close() error = %v, want ErrSessionNotFound", err)
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()
	session, _ := store.Create(ctx, testMessage(domain.RoleBot, "welcome"))

	snapshot, _ := store.Get(ctx, session.ID)
	snapshot.Transcript[0].Text = "tampered"

	fresh, _ := store.Get(ctx, session.ID)
	if fresh.Transcript[0].Text != "welcome" {
		t.Fatalf("snapshot mutation leaked into the store")
	}
}

func TestStoreReapsIdleSessions(t *testing.T) {
	store := NewStore(Config{IdleTTL: time.Minute})
	ctx := context.Background()

	var evicted []string
	store.OnEvict(func(sessionID string) {
		evicted = append(evicted, sessionID)
	})

	stale, _ := store.Create(ctx, testMessage(domain.RoleBot, "welcome"))
	fresh, _ := store.Create(ctx, testMessage(domain.RoleBot, "welcome"))

	// Only the stale session crosses the TTL.
	store.mu.Lock()
	store.sessions[stale.ID].lastActiveAt = time.Now().UTC().Add(-2 * time.Minute)
	store.mu.Unlock()

	store.reapIdle(time.Now().UTC())

	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
	if _, err := store.Get(ctx, stale.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("stale session still present: %v", err)
	}
	if _, err := store.Get(ctx, fresh.ID); err != nil {
		t.Fatalf("fresh session evicted: %v", err)
	}
	if len(evicted) != 1 || evicted[0] != stale.ID {
		t.Fatalf("evicted = %v, want [%s]", evicted, stale.ID)
	}
}

func TestStoreGetCountsAsActivity(t *testing.T) {
	store := NewStore(Config{IdleTTL: time.Minute})
	ctx := context.Background()
	session, _ := store.Create(ctx, testMessage(domain.RoleBot, "welcome"))

	store.mu.Lock()
	store.sessions[session.ID].lastActiveAt = time.Now().UTC().Add(-2 * time.Minute)
	store.mu.Unlock()

	// A poll refreshes the activity clock, so the reaper leaves the
	// session alone.
	if _, err := store.Get(ctx, session.ID); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	store.reapIdle(time.Now().UTC())

	if _, err := store.Get(ctx, session.ID); err != nil {
		t.Fatalf("polled session was reaped: %v", err)
	}
}
