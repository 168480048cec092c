package risk

import (
	"context"
	"sync"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/feature"
)

// InMemory implements Store with in-process concurrency safety. Used by
// tests and the demo CLI; production wiring uses the postgres store.
type InMemory struct {
	mu          sync.RWMutex
	rels        map[string]OrgRelationship
	records     map[string]EmployeeRecord
	events      map[string][]feature.RawEvent
	messages    map[string][]feature.RawMessage
	assessments map[string]PersistedAssessment
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		rels:        make(map[string]OrgRelationship),
		records:     make(map[string]EmployeeRecord),
		events:      make(map[string][]feature.RawEvent),
		messages:    make(map[string][]feature.RawMessage),
		assessments: make(map[string]PersistedAssessment),
	}
}

// PutRelationship seeds a user's place in the reporting hierarchy.
func (s *InMemory) PutRelationship(rel OrgRelationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rels[rel.UserID] = rel
}

// PutEmployeeRecord seeds survey data for a user.
func (s *InMemory) PutEmployeeRecord(rec EmployeeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.EmployeeID] = rec
}

// AddEvents appends calendar history for a user.
func (s *InMemory) AddEvents(userID string, events ...feature.RawEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[userID] = append(s.events[userID], events...)
}

// AddMessages appends email history for a user.
func (s *InMemory) AddMessages(userID string, msgs ...feature.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[userID] = append(s.messages[userID], msgs...)
}

func (s *InMemory) GetOrgRelationship(ctx context.Context, userID string) (OrgRelationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rel, ok := s.rels[userID]
	if !ok {
		return OrgRelationship{}, ErrNotFound
	}
	return rel, nil
}

func (s *InMemory) GetEmployeeRecord(ctx context.Context, userID string) (EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[userID]
	if !ok {
		return EmployeeRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *InMemory) ListEvents(ctx context.Context, userID string, from, to time.Time) ([]feature.RawEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []feature.RawEvent
	for _, e := range s.events[userID] {
		if e.Start.Before(from) || !e.Start.Before(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *InMemory) ListMessages(ctx context.Context, userID string, from, to time.Time) ([]feature.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []feature.RawMessage
	for _, m := range s.messages[userID] {
		if m.Timestamp.Before(from) || !m.Timestamp.Before(to) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *InMemory) SaveAssessment(ctx context.Context, a PersistedAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments[a.UserID] = a
	return nil
}

func (s *InMemory) LatestAssessment(ctx context.Context, userID string) (PersistedAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assessments[userID]
	if !ok {
		return PersistedAssessment{}, ErrNotFound
	}
	return a, nil
}
