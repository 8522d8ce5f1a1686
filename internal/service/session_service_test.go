package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"maestro/config"
	"maestro/internal/domain"
	"maestro/internal/models"
	"maestro/pkg/gcal"

	"go.uber.org/zap"
)

func calendarConfig() *config.CalendarConfig {
	return &config.CalendarConfig{
		CalendarID:    "primary",
		RefreshBuffer: time.Minute,
	}
}

func (r *testRepos) seedGoogleCredential(t *testing.T, userID uint) {
	t.Helper()
	cred := &models.OAuthCredential{
		UserID:       userID,
		Provider:     domain.OAuthProviderGoogle,
		AccessToken:  "ya29.test",
		RefreshToken: "1//refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if err := r.creds.Upsert(cred); err != nil {
		t.Fatalf("seed credential: %v", err)
	}
}

func TestSessionScheduleCreatesCalendarEvent(t *testing.T) {
	r := newTestDB(t)
	tutor := r.seedTeacher(t, "tutor@example.com")
	r.seedGoogleCredential(t, tutor.ID)

	scheduler := gcal.NewStubScheduler()
	svc := NewSessionService(r.sessions, r.users, r.creds, scheduler, calendarConfig(), zap.NewNop())

	start := time.Now().Add(24 * time.Hour)
	session, err := svc.Schedule(context.Background(), tutor.ID, &models.Session{
		Title:   "Intro lesson",
		StartAt: start,
		EndAt:   start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if session.GoogleEventID == nil || *session.GoogleEventID == "" {
		t.Fatalf("no calendar event recorded")
	}
	if session.JoinURL == nil || *session.JoinURL == "" {
		t.Fatalf("no join url recorded")
	}
	if len(scheduler.Created) != 1 {
		t.Fatalf("scheduler saw %d creates", len(scheduler.Created))
	}
}

func TestSessionScheduleRollsBackOnCalendarFailure(t *testing.T) {
	r := newTestDB(t)
	tutor := r.seedTeacher(t, "tutor@example.com")
	r.seedGoogleCredential(t, tutor.ID)

	scheduler := gcal.NewStubScheduler()
	scheduler.Fail = errors.New("google is down")
	svc := NewSessionService(r.sessions, r.users, r.creds, scheduler, calendarConfig(), zap.NewNop())

	start := time.Now().Add(time.Hour)
	_, err := svc.Schedule(context.Background(), tutor.ID, &models.Session{
		Title:   "Doomed lesson",
		StartAt: start,
		EndAt:   start.Add(time.Hour),
	})
	if err == nil {
		t.Fatalf("calendar failure should fail scheduling")
	}
	sessions, err := svc.ListForTutor(tutor.ID)
	if err != nil {
		t.Fatalf("ListForTutor: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("orphan session row survived: %d", len(sessions))
	}
}

func TestSessionScheduleGuards(t *testing.T) {
	r := newTestDB(t)
	tutor := r.seedTeacher(t, "tutor@example.com")
	svc := NewSessionService(r.sessions, r.users, r.creds, gcal.NewStubScheduler(), calendarConfig(), zap.NewNop())

	start := time.Now().Add(time.Hour)

	// End before start.
	_, err := svc.Schedule(context.Background(), tutor.ID, &models.Session{
		Title:   "Backwards",
		StartAt: start,
		EndAt:   start.Add(-time.Minute),
	})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("backwards range = %v, want ErrInvalidTimeRange", err)
	}

	// No stored Google credential.
	_, err = svc.Schedule(context.Background(), tutor.ID, &models.Session{
		Title:   "No calendar",
		StartAt: start,
		EndAt:   start.Add(time.Hour),
	})
	if !errors.Is(err, ErrNoCalendarAccess) {
		t.Fatalf("no credential = %v, want ErrNoCalendarAccess", err)
	}
}

func TestSessionCancelSurvivesCalendarOutage(t *testing.T) {
	r := newTestDB(t)
	tutor := r.seedTeacher(t, "tutor@example.com")
	r.seedGoogleCredential(t, tutor.ID)

	scheduler := gcal.NewStubScheduler()
	svc := NewSessionService(r.sessions, r.users, r.creds, scheduler, calendarConfig(), zap.NewNop())

	start := time.Now().Add(time.Hour)
	session, err := svc.Schedule(context.Background(), tutor.ID, &models.Session{
		Title:   "Lesson",
		StartAt: start,
		EndAt:   start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	// Another tutor cannot cancel it.
	other := r.seedTeacher(t, "other@example.com")
	if _, err := svc.Cancel(context.Background(), other.ID, session.ID); !errors.Is(err, ErrSessionNotYours) {
		t.Fatalf("foreign cancel = %v, want ErrSessionNotYours", err)
	}

	// Calendar outage: the session still cancels.
	scheduler.Fail = errors.New("google is down")
	cancelled, err := svc.Cancel(context.Background(), tutor.ID, session.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != domain.SessionCancelled {
		t.Fatalf("status = %q", cancelled.Status)
	}
}

func TestSessionTokenRefreshPersisted(t *testing.T) {
	r := newTestDB(t)
	tutor := r.seedTeacher(t, "tutor@example.com")

	// Credential that expires inside the refresh buffer.
	cred := &models.OAuthCredential{
		UserID:       tutor.ID,
		Provider:     domain.OAuthProviderGoogle,
		AccessToken:  "stale",
		RefreshToken: "1//refresh",
		ExpiresAt:    time.Now().Add(10 * time.Second),
	}
	if err := r.creds.Upsert(cred); err != nil {
		t.Fatalf("seed credential: %v", err)
	}

	scheduler := gcal.NewStubScheduler()
	svc := NewSessionService(r.sessions, r.users, r.creds, scheduler, calendarConfig(), zap.NewNop())

	start := time.Now().Add(time.Hour)
	if _, err := svc.Schedule(context.Background(), tutor.ID, &models.Session{
		Title:   "Lesson",
		StartAt: start,
		EndAt:   start.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	// The stub echoes the token back; the point is that scheduling with a
	// stale credential still works and keeps the stored refresh token.
	stored, err := r.creds.GetByUserProvider(tutor.ID, domain.OAuthProviderGoogle)
	if err != nil {
		t.Fatalf("reload credential: %v", err)
	}
	if stored.RefreshToken != "1//refresh" {
		t.Fatalf("refresh token lost: %q", stored.RefreshToken)
	}
}
