package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort  string
	LogLevel string

	CorpusPath string

	MatchThreshold    int
	TypingDelayMinMs  int
	TypingDelayMaxMs  int
	SessionIdleTTLSec int
	SessionReapSec    int

	APIRateLimitRPS   int
	APIRateLimitBurst int
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		CorpusPath: mustEnv("CORPUS_PATH", ""),

		MatchThreshold:    mustEnvInt("CHAT_MATCH_THRESHOLD", 2),
		TypingDelayMinMs:  mustEnvInt("CHAT_TYPING_DELAY_MIN_MS", 700),
		TypingDelayMaxMs:  mustEnvInt("CHAT_TYPING_DELAY_MAX_MS", 1500),
		SessionIdleTTLSec: mustEnvInt("CHAT_SESSION_IDLE_TTL_SECONDS", 1800),
		SessionReapSec:    mustEnvInt("CHAT_SESSION_REAP_SECONDS", 60),

		APIRateLimitRPS:   mustEnvInt("API_RATE_LIMIT_RPS", 50),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 100),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
