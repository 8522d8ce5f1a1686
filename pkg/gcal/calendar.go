package gcal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maestro/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Event is the adapter-level view of a lesson session.
type Event struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// Result carries what the rest of the app needs back from Google.
type Result struct {
	EventID string
	JoinURL string
}

// Scheduler creates and maintains calendar events on behalf of a tutor.
// All methods act with the tutor's OAuth token, not a service account.
type Scheduler interface {
	CreateEvent(ctx context.Context, token *oauth2.Token, ev Event) (*Result, error)
	UpdateEvent(ctx context.Context, token *oauth2.Token, eventID string, ev Event) (*Result, error)
	DeleteEvent(ctx context.Context, token *oauth2.Token, eventID string) error
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

type GoogleScheduler struct {
	oauth *oauth2.Config
	cfg   *config.CalendarConfig
	log   *zap.Logger
}

func NewGoogleScheduler(oc *config.OAuthConfig, cfg *config.CalendarConfig, log *zap.Logger) *GoogleScheduler {
	return &GoogleScheduler{
		oauth: &oauth2.Config{
			ClientID:     oc.GoogleClientID,
			ClientSecret: oc.GoogleClientSecret,
			RedirectURL:  oc.GoogleRedirectURL,
			Scopes:       []string{calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
		cfg: cfg,
		log: log,
	}
}

func (s *GoogleScheduler) CreateEvent(ctx context.Context, token *oauth2.Token, ev Event) (*Result, error) {
	svc, err := s.service(ctx, token)
	if err != nil {
		return nil, err
	}
	body := s.eventBody(ev)
	body.ConferenceData = &calendar.ConferenceData{
		CreateRequest: &calendar.CreateConferenceRequest{
			RequestId:             uuid.New().String(),
			ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
		},
	}
	var created *calendar.Event
	op := func() error {
		opCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
		created, err = svc.Events.Insert(s.cfg.CalendarID, body).
			ConferenceDataVersion(1).
			SendUpdates("all").
			Context(opCtx).Do()
		return retryable(err)
	}
	if err := backoff.Retry(op, s.policy(ctx)); err != nil {
		return nil, fmt.Errorf("create calendar event: %w", err)
	}
	return &Result{EventID: created.Id, JoinURL: joinURL(created)}, nil
}

func (s *GoogleScheduler) UpdateEvent(ctx context.Context, token *oauth2.Token, eventID string, ev Event) (*Result, error) {
	svc, err := s.service(ctx, token)
	if err != nil {
		return nil, err
	}
	var updated *calendar.Event
	op := func() error {
		opCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
		updated, err = svc.Events.Patch(s.cfg.CalendarID, eventID, s.eventBody(ev)).
			SendUpdates("all").
			Context(opCtx).Do()
		return retryable(err)
	}
	if err := backoff.Retry(op, s.policy(ctx)); err != nil {
		return nil, fmt.Errorf("update calendar event %s: %w", eventID, err)
	}
	return &Result{EventID: updated.Id, JoinURL: joinURL(updated)}, nil
}

// DeleteEvent treats an already-deleted event as success.
func (s *GoogleScheduler) DeleteEvent(ctx context.Context, token *oauth2.Token, eventID string) error {
	svc, err := s.service(ctx, token)
	if err != nil {
		return err
	}
	op := func() error {
		opCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
		err := svc.Events.Delete(s.cfg.CalendarID, eventID).SendUpdates("all").Context(opCtx).Do()
		if gone(err) {
			return nil
		}
		return retryable(err)
	}
	if err := backoff.Retry(op, s.policy(ctx)); err != nil {
		return fmt.Errorf("delete calendar event %s: %w", eventID, err)
	}
	return nil
}

func (s *GoogleScheduler) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	fresh, err := s.oauth.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh google token: %w", err)
	}
	return fresh, nil
}

func (s *GoogleScheduler) service(ctx context.Context, token *oauth2.Token) (*calendar.Service, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(s.oauth.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return svc, nil
}

func (s *GoogleScheduler) eventBody(ev Event) *calendar.Event {
	attendees := make([]*calendar.EventAttendee, 0, len(ev.Attendees))
	for _, email := range ev.Attendees {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}
	return &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Start:       &calendar.EventDateTime{DateTime: ev.Start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: ev.End.Format(time.RFC3339)},
		Attendees:   attendees,
	}
}

func (s *GoogleScheduler) policy(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.cfg.MaxRetries), ctx)
}

func joinURL(ev *calendar.Event) string {
	if ev.ConferenceData != nil {
		for _, ep := range ev.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				return ep.Uri
			}
		}
	}
	return ev.HangoutLink
}

// retryable keeps client errors out of the backoff loop; a 4xx from
// Google will not heal on retry.
func retryable(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != 429 {
		return backoff.Permanent(err)
	}
	return err
}

func gone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 404 || apiErr.Code == 410
	}
	return false
}
