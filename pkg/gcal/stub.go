package gcal

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// StubScheduler records calls instead of talking to Google. Used in
// tests and when OAuth is not configured.
type StubScheduler struct {
	mu      sync.Mutex
	seq     int
	Created []Event
	Updated map[string]Event
	Deleted []string
	// Fail makes every call return an error.
	Fail error
}

func NewStubScheduler() *StubScheduler {
	return &StubScheduler{Updated: make(map[string]Event)}
}

func (s *StubScheduler) CreateEvent(_ context.Context, _ *oauth2.Token, ev Event) (*Result, error) {
	if s.Fail != nil {
		return nil, s.Fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.Created = append(s.Created, ev)
	id := fmt.Sprintf("evt_%03d", s.seq)
	return &Result{EventID: id, JoinURL: "https://meet.example.com/" + id}, nil
}

func (s *StubScheduler) UpdateEvent(_ context.Context, _ *oauth2.Token, eventID string, ev Event) (*Result, error) {
	if s.Fail != nil {
		return nil, s.Fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Updated[eventID] = ev
	return &Result{EventID: eventID, JoinURL: "https://meet.example.com/" + eventID}, nil
}

func (s *StubScheduler) DeleteEvent(_ context.Context, _ *oauth2.Token, eventID string) error {
	if s.Fail != nil {
		return s.Fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, eventID)
	return nil
}

func (s *StubScheduler) Refresh(_ context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	if s.Fail != nil {
		return nil, s.Fail
	}
	return token, nil
}
