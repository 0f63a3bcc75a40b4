package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leafwise/support-chat-core/internal/config"
	"github.com/leafwise/support-chat-core/internal/core/ports"
	"github.com/leafwise/support-chat-core/internal/core/usecase"
	"github.com/leafwise/support-chat-core/internal/infrastructure/corpus"
	"github.com/leafwise/support-chat-core/internal/infrastructure/random"
	"github.com/leafwise/support-chat-core/internal/infrastructure/session/memory"
	"github.com/leafwise/support-chat-core/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.ChatMetrics
	ChatUC  ports.ChatService

	janitor func(context.Context)
}

func New(_ context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	records, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	logger.Info("corpus loaded", "records", len(records), "path", cfg.CorpusPath)

	chatMetrics := metrics.NewChatMetrics("support-chat-core")

	store := memory.NewStore(memory.Config{
		IdleTTL:      time.Duration(cfg.SessionIdleTTLSec) * time.Second,
		ReapInterval: time.Duration(cfg.SessionReapSec) * time.Second,
		Logger:       logger,
	})

	matcher := usecase.NewMatcher(records, cfg.MatchThreshold)
	rng := random.New()
	fallback := usecase.NewFallbackResolver(rng)

	chatUC := usecase.NewChatUseCase(store, matcher, fallback, rng, chatMetrics, logger, usecase.TurnTiming{
		TypingDelayMin: time.Duration(cfg.TypingDelayMinMs) * time.Millisecond,
		TypingDelayMax: time.Duration(cfg.TypingDelayMaxMs) * time.Millisecond,
	})
	store.OnEvict(chatUC.HandleEviction)

	return &App{
		Config:  cfg,
		Metrics: chatMetrics,
		ChatUC:  chatUC,
		janitor: store.Run,
	}, nil
}

// StartJanitor runs the session idle reaper until ctx is cancelled.
func (a *App) StartJanitor(ctx context.Context) {
	go a.janitor(ctx)
}
