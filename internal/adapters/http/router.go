package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/leafwise/support-chat-core/internal/config"
	"github.com/leafwise/support-chat-core/internal/core/domain"
	"github.com/leafwise/support-chat-core/internal/core/ports"
	"github.com/leafwise/support-chat-core/internal/observability/metrics"
)

const serviceName = "support-chat-core"

type Router struct {
	chat    ports.ChatService
	metrics *metrics.ChatMetrics
	cfg     config.Config
}

func NewRouter(chat ports.ChatService, chatMetrics *metrics.ChatMetrics, cfg config.Config) *Router {
	return &Router{
		chat:    chat,
		metrics: chatMetrics,
		cfg:     cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/sessions", rt.createSession)
	mux.HandleFunc("/v1/sessions/", rt.sessionSubroute)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = rateLimitMiddleware(rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	session, err := rt.chat.CreateSession(r.Context())
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// sessionSubroute dispatches /v1/sessions/{id}[/messages|/quick-actions].
func (rt *Router) sessionSubroute(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	sessionID, sub, _ := strings.Cut(rest, "/")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			rt.getSession(w, r, sessionID)
		case http.MethodDelete:
			rt.closeSession(w, r, sessionID)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case "messages":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.submitMessage(w, r, sessionID)
	case "quick-actions":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.quickAction(w, r, sessionID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (rt *Router) getSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := rt.chat.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (rt *Router) submitMessage(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	// Blank text is valid input: it scores zero everywhere and routes
	// to the fallback default branch.
	userMsg, err := rt.chat.SubmitMessage(r.Context(), sessionID, req.Text)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, userMsg)
}

func (rt *Router) quickAction(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	botMsg, err := rt.chat.QuickAction(r.Context(), sessionID, domain.QuickAction(strings.TrimSpace(req.Action)))
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, botMsg)
}

func (rt *Router) closeSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := rt.chat.CloseSession(r.Context(), sessionID); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrSessionClosed):
		return http.StatusGone
	case domain.IsKind(err, domain.ErrTurnInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
