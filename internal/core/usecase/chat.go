package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leafwise/support-chat-core/internal/core/domain"
	"github.com/leafwise/support-chat-core/internal/core/ports"
)

const welcomeText = "Hi, I'm the Leafwise assistant! Ask me anything about plant identification, premium, plant care or pricing, or use the buttons below."

var quickActionResponses = map[domain.QuickAction]string{
	domain.QuickActionIdentify: "To identify a plant, tap the camera button on the home screen and take a clear photo of a leaf or flower. Leafwise names the species in seconds.",
	domain.QuickActionPremium:  "Leafwise Premium unlocks unlimited identifications, plant disease diagnosis and expert care plans for $4.99/month or $39.99/year, cancel anytime.",
	domain.QuickActionCare:     "Every identified plant comes with a care sheet: watering schedule, light needs, soil and common problems. Open any plant in your collection to see it.",
	domain.QuickActionContact:  "Happy to connect you with a human! Our support team's contact details are attached below.",
}

// TurnTiming bounds the simulated typing delay before a bot response.
type TurnTiming struct {
	TypingDelayMin time.Duration
	TypingDelayMax time.Duration
}

func (t TurnTiming) normalize() TurnTiming {
	out := t
	if out.TypingDelayMin < 0 {
		out.TypingDelayMin = 0
	}
	if out.TypingDelayMax < out.TypingDelayMin {
		out.TypingDelayMax = out.TypingDelayMin
	}
	return out
}

// DefaultTurnTiming mirrors the widget's perceived-typing window.
func DefaultTurnTiming() TurnTiming {
	return TurnTiming{
		TypingDelayMin: 700 * time.Millisecond,
		TypingDelayMax: 1500 * time.Millisecond,
	}
}

// ChatUseCase is the turn controller: it owns the session lifecycle and
// is the only component that applies side effects to session state.
// Response resolution for free-text turns runs asynchronously; at most
// one turn per session is pending at any time (double submission is
// rejected, see SubmitMessage).
type ChatUseCase struct {
	sessions ports.SessionStore
	matcher  *Matcher
	fallback *FallbackResolver
	rng      ports.Rand
	observer ports.TurnObserver
	logger   *slog.Logger
	timing   TurnTiming

	mu           sync.Mutex
	pendingTurns map[string]*pendingTurn
}

// pendingTurn identifies one scheduled resolution. Cleanup is keyed on
// the turn, not the session: a finished turn must never cancel a
// successor that registered under the same session id.
type pendingTurn struct {
	cancel context.CancelFunc
}

func NewChatUseCase(
	sessions ports.SessionStore,
	matcher *Matcher,
	fallback *FallbackResolver,
	rng ports.Rand,
	observer ports.TurnObserver,
	logger *slog.Logger,
	timing TurnTiming,
) *ChatUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatUseCase{
		sessions:     sessions,
		matcher:      matcher,
		fallback:     fallback,
		rng:          rng,
		observer:     observer,
		logger:       logger,
		timing:       timing.normalize(),
		pendingTurns: make(map[string]*pendingTurn),
	}
}

func (uc *ChatUseCase) CreateSession(ctx context.Context) (*domain.Session, error) {
	session, err := uc.sessions.Create(ctx, uc.newBotMessage(welcomeText))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	uc.observer.SessionOpened()
	return session, nil
}

func (uc *ChatUseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// SubmitMessage appends the user message verbatim and schedules the bot
// response after the typing delay. Submitting while a turn is pending
// fails with domain.ErrTurnInProgress: the second message is rejected,
// not queued, so two resolutions can never interleave in one
// transcript.
func (uc *ChatUseCase) SubmitMessage(ctx context.Context, sessionID, text string) (*domain.Message, error) {
	userMsg := domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleUser,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.sessions.BeginTurn(ctx, sessionID, userMsg); err != nil {
		return nil, fmt.Errorf("begin turn: %w", err)
	}

	// The turn outlives the submit request, so it runs on its own
	// context, cancelled by CloseSession.
	turnCtx, cancel := context.WithCancel(context.Background())
	turn := &pendingTurn{cancel: cancel}
	uc.mu.Lock()
	uc.pendingTurns[sessionID] = turn
	uc.mu.Unlock()

	go uc.resolveTurn(turnCtx, sessionID, text, turn)

	return &userMsg, nil
}

func (uc *ChatUseCase) resolveTurn(ctx context.Context, sessionID, text string, turn *pendingTurn) {
	defer uc.clearPendingTurn(sessionID, turn)

	if delay := uc.typingDelay(); delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			uc.logger.Debug("turn cancelled during typing delay", "session_id", sessionID)
			uc.observer.TurnResolved(domain.TurnOutcomeCancelled, 0)
			return
		case <-timer.C:
		}
	}

	norm := Normalize(text)
	outcome := domain.TurnOutcomeMatched
	score := 0
	var botText string
	var showContact bool

	if record, matchScore, ok := uc.matcher.Match(norm); ok {
		botText = record.Answer
		score = matchScore
	} else {
		resolution := uc.fallback.Resolve(norm)
		botText = resolution.Text
		showContact = resolution.ShowContact
		outcome = domain.TurnOutcomeFallback
		uc.observer.FallbackRuleFired(resolution.Rule)
	}

	err := uc.sessions.CompleteTurn(ctx, sessionID, uc.newBotMessage(botText), showContact)
	if err != nil {
		if domain.IsKind(err, domain.ErrSessionNotFound) {
			// Session was discarded while the turn was pending; the bot
			// message must not land anywhere.
			uc.logger.Debug("turn dropped, session closed", "session_id", sessionID)
			uc.observer.TurnResolved(domain.TurnOutcomeCancelled, 0)
			return
		}
		uc.logger.Error("complete turn", "session_id", sessionID, "error", err)
		return
	}

	if showContact {
		uc.observer.ContactCardRequested()
	}
	uc.observer.TurnResolved(outcome, score)
}

// QuickAction bypasses the matcher entirely: it appends the canned
// response synchronously with no typing delay and never toggles the
// awaiting flag. The contact action additionally requests the contact
// card.
func (uc *ChatUseCase) QuickAction(ctx context.Context, sessionID string, action domain.QuickAction) (*domain.Message, error) {
	response, ok := quickActionResponses[action]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "quick action", fmt.Errorf("unknown action %q", action))
	}

	botMsg := uc.newBotMessage(response)
	showContact := action == domain.QuickActionContact
	if err := uc.sessions.AppendBotMessage(ctx, sessionID, botMsg, showContact); err != nil {
		return nil, fmt.Errorf("append quick action response: %w", err)
	}

	uc.observer.QuickActionUsed(action)
	if showContact {
		uc.observer.ContactCardRequested()
	}
	uc.observer.TurnResolved(domain.TurnOutcomeQuickAction, 0)
	return &botMsg, nil
}

func (uc *ChatUseCase) CloseSession(ctx context.Context, sessionID string) error {
	uc.cancelPendingTurn(sessionID)
	if err := uc.sessions.Close(ctx, sessionID); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	uc.observer.SessionClosed()
	return nil
}

// HandleEviction releases a session reaped by the store's idle janitor.
// The store has already discarded the state; only the pending turn and
// the gauge are left to settle.
func (uc *ChatUseCase) HandleEviction(sessionID string) {
	uc.cancelPendingTurn(sessionID)
	uc.observer.SessionClosed()
}

func (uc *ChatUseCase) newBotMessage(text string) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleBot,
		Text:      strings.TrimSpace(text),
		CreatedAt: time.Now().UTC(),
	}
}

func (uc *ChatUseCase) typingDelay() time.Duration {
	span := int(uc.timing.TypingDelayMax-uc.timing.TypingDelayMin) + 1
	return uc.timing.TypingDelayMin + time.Duration(uc.rng.IntN(span))
}

func (uc *ChatUseCase) cancelPendingTurn(sessionID string) {
	uc.mu.Lock()
	turn, ok := uc.pendingTurns[sessionID]
	if ok {
		delete(uc.pendingTurns, sessionID)
	}
	uc.mu.Unlock()
	if ok {
		turn.cancel()
	}
}

// clearPendingTurn releases one finished turn. The map may already hold
// a successor turn for the same session (resolution cleared the
// awaiting flag before this defer ran), so only this turn's own entry
// is removed and only its own context is cancelled.
func (uc *ChatUseCase) clearPendingTurn(sessionID string, turn *pendingTurn) {
	uc.mu.Lock()
	if uc.pendingTurns[sessionID] == turn {
		delete(uc.pendingTurns, sessionID)
	}
	uc.mu.Unlock()
	turn.cancel()
}

type noopObserver struct{}

func (noopObserver) TurnResolved(domain.TurnOutcome, int) {}
func (noopObserver) FallbackRuleFired(string)             {}
func (noopObserver) QuickActionUsed(domain.QuickAction)   {}
func (noopObserver) SessionOpened()                       {}
func (noopObserver) SessionClosed()                       {}
func (noopObserver) ContactCardRequested()                {}
