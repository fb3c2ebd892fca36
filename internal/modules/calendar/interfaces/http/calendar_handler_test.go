package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tanmay0711/leaveflow/internal/modules/calendar/application"
	"github.com/tanmay0711/leaveflow/internal/modules/calendar/domain"
	calendarhttp "github.com/tanmay0711/leaveflow/internal/modules/calendar/interfaces/http"
)

type memCredRepo struct {
	stored *domain.StoredCredentials
}

func (m *memCredRepo) Save(_ context.Context, creds *domain.StoredCredentials) error {
	cp := *creds
	m.stored = &cp
	return nil
}

func (m *memCredRepo) Load(_ context.Context, provider string) (*domain.StoredCredentials, error) {
	if m.stored == nil || m.stored.Provider != provider {
		return nil, domain.ErrNoStoredCredentials
	}
	cp := *m.stored
	return &cp, nil
}

// memSessionStore mimics the session cache: a plain map while "ready",
// silent no-ops while not.
type memSessionStore struct {
	ready  bool
	values map[string]string
}

func newMemSessionStore(ready bool) *memSessionStore {
	return &memSessionStore{ready: ready, values: map[string]string{}}
}

func (s *memSessionStore) IsReady() bool { return s.ready }

func (s *memSessionStore) SetSession(_ context.Context, key, value string, _ time.Duration) error {
	if s.ready {
		s.values[key] = value
	}
	return nil
}

func (s *memSessionStore) GetSession(_ context.Context, key string) (string, bool, error) {
	if !s.ready {
		return "", false, nil
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memSessionStore) DeleteSession(_ context.Context, key string) error {
	if s.ready {
		delete(s.values, key)
	}
	return nil
}

func newHandler(sessions calendarhttp.SessionStore) (*calendarhttp.CalendarHandler, *application.CalendarService) {
	service := application.NewCalendarService(application.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost/callback",
	}, &memCredRepo{})
	return calendarhttp.NewCalendarHandler(service, sessions), service
}

func TestAuthURL_StoresStateNonce(t *testing.T) {
	sessions := newMemSessionStore(true)
	handler, _ := newHandler(sessions)

	w := httptest.NewRecorder()
	handler.AuthURL(w, httptest.NewRequest(http.MethodGet, "/calendar/auth-url", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["url"], "access_type=offline")

	require.Len(t, sessions.values, 1)
	for key := range sessions.values {
		state := strings.TrimPrefix(key, "calendar:oauth:state:")
		assert.NotEqual(t, key, state, "state key must carry the prefix")
		assert.Contains(t, body["url"], "state="+state)
	}
}

func TestAuthURL_CacheDownStillIssuesURL(t *testing.T) {
	handler, _ := newHandler(newMemSessionStore(false))

	w := httptest.NewRecorder()
	handler.AuthURL(w, httptest.NewRequest(http.MethodGet, "/calendar/auth-url", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["url"])
}

func TestOAuthCallback_MissingCode(t *testing.T) {
	handler, _ := newHandler(newMemSessionStore(true))

	w := httptest.NewRecorder()
	handler.OAuthCallback(w, httptest.NewRequest(http.MethodGet, "/calendar/oauth/callback", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOAuthCallback_UnknownStateRejected(t *testing.T) {
	sessions := newMemSessionStore(true)
	handler, _ := newHandler(sessions)

	w := httptest.NewRecorder()
	handler.OAuthCallback(w, httptest.NewRequest(http.MethodGet,
		"/calendar/oauth/callback?code=abc&state=forged", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "oauth state")
}

func TestOAuthCallback_StateIsSingleUse(t *testing.T) {
	sessions := newMemSessionStore(true)
	sessions.values["calendar:oauth:state:nonce-1"] = "pending"
	handler, _ := newHandler(sessions)

	// The exchange itself fails against the real endpoint config, but the
	// state must already be consumed by then.
	w := httptest.NewRecorder()
	handler.OAuthCallback(w, httptest.NewRequest(http.MethodGet,
		"/calendar/oauth/callback?code=abc&state=nonce-1", nil))
	assert.Empty(t, sessions.values, "nonce must be deleted on first use")

	w = httptest.NewRecorder()
	handler.OAuthCallback(w, httptest.NewRequest(http.MethodGet,
		"/calendar/oauth/callback?code=abc&state=nonce-1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatus(t *testing.T) {
	handler, service := newHandler(newMemSessionStore(true))

	w := httptest.NewRecorder()
	handler.Status(w, httptest.NewRequest(http.MethodGet, "/calendar/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body["state"])

	require.NoError(t, service.SetCredentials(context.Background(), &oauth2.Token{
		AccessToken:  "at",
		RefreshToken: "rt",
		Expiry:       time.Now().Add(time.Hour),
	}))

	w = httptest.NewRecorder()
	handler.Status(w, httptest.NewRequest(http.MethodGet, "/calendar/status", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "authorized", body["state"])
}
