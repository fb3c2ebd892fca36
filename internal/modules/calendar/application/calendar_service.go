package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/tanmay0711/leaveflow/internal/modules/calendar/domain"
)

const (
	providerName = "google"
	dateLayout   = "2006-01-02"

	defaultDescription = "Leave request approved"
)

// Config holds the OAuth client settings for the Google Calendar provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	CalendarID   string
}

// CalendarService keeps one external calendar consistent with leave-request
// state. The OAuth credential is held behind a mutex so concurrent refresh
// attempts are serialized instead of racing.
type CalendarService struct {
	oauth      *oauth2.Config
	calendarID string
	repo       domain.CredentialRepository
	timeout    time.Duration

	mu    sync.Mutex
	token *oauth2.Token

	// clientOpts replaces the authenticated transport in tests.
	clientOpts []option.ClientOption
}

func NewCalendarService(cfg Config, repo domain.CredentialRepository, opts ...option.ClientOption) *CalendarService {
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	return &CalendarService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				calendar.CalendarEventsScope,
			},
		},
		calendarID: calendarID,
		repo:       repo,
		timeout:    10 * time.Second,
		clientOpts: opts,
	}
}

// Restore loads previously persisted credentials, if any. Called once at
// startup so an already-authorized adapter survives restarts unattended.
func (s *CalendarService) Restore(ctx context.Context) error {
	creds, err := s.repo.Load(ctx, providerName)
	if errors.Is(err, domain.ErrNoStoredCredentials) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.Expiry,
	}
	s.mu.Unlock()
	log.Printf("[Calendar] restored stored credentials (expiry: %s)", creds.Expiry.Format(time.RFC3339))
	return nil
}

// AuthURL builds the provider consent URL. Offline access and forced
// consent guarantee a refresh token is returned, which SetCredentials
// requires.
func (s *CalendarService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode performs the one-shot authorization-code exchange and stores
// the resulting credential pair.
func (s *CalendarService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("code exchange timed out: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthExchange, err)
	}
	if err := s.SetCredentials(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// SetCredentials installs and persists a credential pair. A refresh token is
// mandatory: the adapter runs during automated approval flows with no user
// present to re-consent.
func (s *CalendarService) SetCredentials(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.RefreshToken == "" {
		return domain.ErrMissingRefreshToken
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.repo.Save(ctx, &domain.StoredCredentials{
		Provider:     providerName,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}); err != nil {
		return fmt.Errorf("persisting credentials: %w", err)
	}
	return nil
}

// RefreshAccessToken exchanges the stored refresh token for a fresh access
// token. A provider rejection is terminal (ErrRefreshFailed, a human must
// re-authorize); a timeout surfaces as a retryable deadline error instead.
func (s *CalendarService) RefreshAccessToken(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *CalendarService) refreshLocked(ctx context.Context) (*oauth2.Token, error) {
	if s.token == nil {
		return nil, domain.ErrNotAuthorized
	}
	if s.token.RefreshToken == "" {
		return nil, domain.ErrMissingRefreshToken
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	refreshed, err := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: s.token.RefreshToken}).Token()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, fmt.Errorf("token refresh timed out: %w", context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = s.token.RefreshToken
	}
	s.token = refreshed

	if err := s.repo.Save(ctx, &domain.StoredCredentials{
		Provider:     providerName,
		AccessToken:  refreshed.AccessToken,
		RefreshToken: refreshed.RefreshToken,
		Expiry:       refreshed.Expiry,
	}); err != nil {
		log.Printf("[Calendar] persisting refreshed credentials failed: %v", err)
	}
	return refreshed, nil
}

// IsAuthorized reports whether calendar operations may proceed.
func (s *CalendarService) IsAuthorized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != nil
}

// CreateLeaveEvent creates an all-day event for the approved leave and
// returns the provider-assigned event id.
func (s *CalendarService) CreateLeaveEvent(ctx context.Context, ev domain.LeaveEvent) (string, error) {
	svc, err := s.calendarClient(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	created, err := svc.Events.Insert(s.calendarID, buildEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", classifyAPIError(err)
	}
	log.Printf("[Calendar] created event %s (%s)", created.Id, created.Summary)
	return created.Id, nil
}

// UpdateLeaveEvent rewrites an existing event with the current leave data.
func (s *CalendarService) UpdateLeaveEvent(ctx context.Context, eventID string, ev domain.LeaveEvent) error {
	svc, err := s.calendarClient(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := svc.Events.Update(s.calendarID, eventID, buildEvent(ev)).Context(ctx).Do(); err != nil {
		return classifyAPIError(err)
	}
	log.Printf("[Calendar] updated event %s", eventID)
	return nil
}

// DeleteLeaveEvent removes the event. An event that is already gone on the
// provider side (404/410) counts as success: the desired end state holds.
func (s *CalendarService) DeleteLeaveEvent(ctx context.Context, eventID string) error {
	svc, err := s.calendarClient(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := svc.Events.Delete(s.calendarID, eventID).Context(ctx).Do(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == 404 || gerr.Code == 410) {
			log.Printf("[Calendar] event %s already deleted", eventID)
			return nil
		}
		return classifyAPIError(err)
	}
	log.Printf("[Calendar] deleted event %s", eventID)
	return nil
}

// calendarClient builds an events client around the current credential,
// refreshing the access token first when it is expired or near expiry.
func (s *CalendarService) calendarClient(ctx context.Context) (*calendar.Service, error) {
	if len(s.clientOpts) > 0 {
		return calendar.NewService(ctx, s.clientOpts...)
	}

	s.mu.Lock()
	if s.token == nil {
		s.mu.Unlock()
		return nil, domain.ErrNotAuthorized
	}
	token := s.token
	if !token.Valid() {
		refreshed, err := s.refreshLocked(ctx)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		token = refreshed
	}
	s.mu.Unlock()

	return calendar.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
}

// buildEvent maps a leave to the provider event shape.
func buildEvent(ev domain.LeaveEvent) *calendar.Event {
	description := ev.Reason
	if description == "" {
		description = defaultDescription
	}
	start, end := toProviderRange(ev.StartDate, ev.EndDate)
	return &calendar.Event{
		Summary:     fmt.Sprintf("%s | %s", ev.LeaveTypeName, ev.EmployeeName),
		Description: description,
		Start:       &calendar.EventDateTime{Date: start},
		End:         &calendar.EventDateTime{Date: end},
	}
}

// toProviderRange translates the inclusive leave range into the provider's
// convention: all-day events end on an exclusive date, so the provider end
// is the last day of leave plus exactly one calendar day. Every event
// mutation goes through here; nothing else may touch this translation.
func toProviderRange(startInclusive, endInclusive time.Time) (start, end string) {
	return startInclusive.Format(dateLayout), endInclusive.AddDate(0, 0, 1).Format(dateLayout)
}

// classifyAPIError keeps provider rejections distinguishable from timeouts
// so callers can retry only the retryable class.
func classifyAPIError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("%w: provider returned %d: %s", domain.ErrExternalAPI, gerr.Code, gerr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("calendar request timed out: %w", err)
	}
	return fmt.Errorf("%w: %v", domain.ErrExternalAPI, err)
}
