package service

import (
	"context"
	"errors"
	"time"

	"maestro/config"
	"maestro/internal/domain"
	"maestro/internal/models"
	"maestro/internal/repository"
	"maestro/pkg/gcal"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

var (
	ErrInvalidTimeRange   = errors.New("session must end after it starts")
	ErrNoCalendarAccess   = errors.New("tutor has not connected a google calendar")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionNotYours    = errors.New("session belongs to another tutor")
	ErrSessionNotEditable = errors.New("session is not scheduled")
)

// SessionService schedules tutoring slots and mirrors them onto the
// tutor's Google Calendar, including a Meet link for attendees.
type SessionService struct {
	sessions  *repository.SessionRepository
	users     *repository.UserRepository
	creds     *repository.OAuthCredentialRepository
	scheduler gcal.Scheduler
	cfg       *config.CalendarConfig
	log       *zap.Logger
}

func NewSessionService(
	sessions *repository.SessionRepository,
	users *repository.UserRepository,
	creds *repository.OAuthCredentialRepository,
	scheduler gcal.Scheduler,
	cfg *config.CalendarConfig,
	log *zap.Logger,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		users:     users,
		creds:     creds,
		scheduler: scheduler,
		cfg:       cfg,
		log:       log,
	}
}

// Schedule creates the session and its calendar event. A calendar failure
// fails the whole operation; a session without an invite is a no-show
// waiting to happen.
func (s *SessionService) Schedule(ctx context.Context, tutorID uint, session *models.Session) (*models.Session, error) {
	if !session.EndAt.After(session.StartAt) {
		return nil, ErrInvalidTimeRange
	}
	session.TutorID = tutorID
	session.Status = domain.SessionScheduled

	token, err := s.tutorToken(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}
	// Reload for course title and attendee emails.
	full, err := s.sessions.GetByID(session.ID)
	if err != nil {
		return nil, err
	}
	result, err := s.scheduler.CreateEvent(ctx, token, s.eventFor(full))
	if err != nil {
		// Roll the orphan row back so a retry starts clean.
		if delErr := s.sessions.Delete(full); delErr != nil {
			s.log.Error("cleanup after calendar failure failed", zap.Error(delErr))
		}
		return nil, err
	}
	full.GoogleEventID = &result.EventID
	if result.JoinURL != "" {
		full.JoinURL = &result.JoinURL
	}
	if err := s.sessions.Update(full); err != nil {
		return nil, err
	}
	s.log.Info("session scheduled",
		zap.Uint("session_id", full.ID),
		zap.Uint("tutor_id", tutorID),
		zap.Time("start_at", full.StartAt))
	return full, nil
}

// AddStudent invites a student and pushes the attendee change to the
// calendar event.
func (s *SessionService) AddStudent(ctx context.Context, sessionID, studentID uint) (*models.Session, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	student, err := s.users.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.AddStudent(session, student); err != nil {
		return nil, err
	}
	session, err = s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	s.syncEvent(ctx, session)
	return session, nil
}

// Reschedule moves the session and updates the calendar event. The event
// update must succeed or the time change is rolled back.
func (s *SessionService) Reschedule(ctx context.Context, tutorID, sessionID uint, startAt, endAt time.Time) (*models.Session, error) {
	if !endAt.After(startAt) {
		return nil, ErrInvalidTimeRange
	}
	session, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.TutorID != tutorID {
		return nil, ErrSessionNotYours
	}
	if !session.IsScheduled() {
		return nil, ErrSessionNotEditable
	}
	session.StartAt = startAt
	session.EndAt = endAt
	if session.GoogleEventID != nil {
		token, err := s.tutorToken(ctx, session.TutorID)
		if err != nil {
			return nil, err
		}
		if _, err := s.scheduler.UpdateEvent(ctx, token, *session.GoogleEventID, s.eventFor(session)); err != nil {
			return nil, err
		}
	}
	if err := s.sessions.Update(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Cancel marks the session cancelled. Removing the calendar event is
// best-effort; a Google outage must not keep a session alive.
func (s *SessionService) Cancel(ctx context.Context, tutorID, sessionID uint) (*models.Session, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.TutorID != tutorID {
		return nil, ErrSessionNotYours
	}
	session.Status = domain.SessionCancelled
	if err := s.sessions.Update(session); err != nil {
		return nil, err
	}
	if session.GoogleEventID != nil {
		token, err := s.tutorToken(ctx, session.TutorID)
		if err != nil {
			s.log.Warn("calendar event not removed", zap.Uint("session_id", sessionID), zap.Error(err))
			return session, nil
		}
		if err := s.scheduler.DeleteEvent(ctx, token, *session.GoogleEventID); err != nil {
			s.log.Warn("calendar event not removed", zap.Uint("session_id", sessionID), zap.Error(err))
		}
	}
	return session, nil
}

func (s *SessionService) Complete(tutorID, sessionID uint) (*models.Session, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.TutorID != tutorID {
		return nil, ErrSessionNotYours
	}
	session.Status = domain.SessionCompleted
	if err := s.sessions.Update(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) Get(sessionID uint) (*models.Session, error) {
	return s.get(sessionID)
}

func (s *SessionService) ListForTutor(tutorID uint) ([]models.Session, error) {
	return s.sessions.ListByTutor(tutorID)
}

func (s *SessionService) get(sessionID uint) (*models.Session, error) {
	session, err := s.sessions.GetByID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

// syncEvent pushes attendee or detail changes; failures are logged, the
// database stays authoritative.
func (s *SessionService) syncEvent(ctx context.Context, session *models.Session) {
	if session.GoogleEventID == nil {
		return
	}
	token, err := s.tutorToken(ctx, session.TutorID)
	if err != nil {
		s.log.Warn("calendar sync skipped", zap.Uint("session_id", session.ID), zap.Error(err))
		return
	}
	if _, err := s.scheduler.UpdateEvent(ctx, token, *session.GoogleEventID, s.eventFor(session)); err != nil {
		s.log.Warn("calendar sync failed", zap.Uint("session_id", session.ID), zap.Error(err))
	}
}

func (s *SessionService) eventFor(session *models.Session) gcal.Event {
	return gcal.Event{
		Title:       session.EventTitle(),
		Description: session.Notes,
		Start:       session.StartAt,
		End:         session.EndAt,
		Attendees:   session.AttendeeEmails(),
	}
}

// tutorToken loads the tutor's Google credential, refreshing and
// persisting it when it is close to expiry.
func (s *SessionService) tutorToken(ctx context.Context, tutorID uint) (*oauth2.Token, error) {
	cred, err := s.creds.GetByUserProvider(tutorID, domain.OAuthProviderGoogle)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoCalendarAccess
	}
	if err != nil {
		return nil, err
	}
	if !cred.NeedsRefresh(s.cfg.RefreshBuffer) {
		return cred.Token(), nil
	}
	fresh, err := s.scheduler.Refresh(ctx, cred.Token())
	if err != nil {
		return nil, err
	}
	cred.ApplyToken(fresh)
	if err := s.creds.Update(cred); err != nil {
		s.log.Error("persisting refreshed token failed", zap.Uint("user_id", tutorID), zap.Error(err))
	}
	return fresh, nil
}
