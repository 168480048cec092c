// Package stream fan-outs assessment events to SSE subscribers so
// dashboards can watch risk levels move in near real time.
package stream

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/risk"
)

// AssessmentEvent is published whenever an evaluation or simulation
// produces a fresh score for a user.
type AssessmentEvent struct {
	UserID    string     `json:"user_id"`
	Score     float64    `json:"score"`
	Level     risk.Level `json:"level"`
	Delta     float64    `json:"delta,omitempty"`
	Source    string     `json:"source"` // "evaluation" or "simulation"
	Timestamp time.Time  `json:"timestamp"`
}

// Stream fan-outs assessment events to all active subscribers.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan AssessmentEvent
	next int
	rnd  *rand.Rand
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{
		subs: make(map[int]chan AssessmentEvent),
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan AssessmentEvent {
	ch := make(chan AssessmentEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt AssessmentEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}

var demoUsers = []string{"emp-1", "emp-2", "mgr-1"}

// RandomDemoEvent creates an artificial assessment for demo dashboards.
func (s *Stream) RandomDemoEvent() AssessmentEvent {
	score := 0.1 + s.rnd.Float64()*0.85
	return AssessmentEvent{
		UserID:    demoUsers[s.rnd.Intn(len(demoUsers))],
		Score:     score,
		Level:     risk.LevelForScore(score),
		Source:    "evaluation",
		Timestamp: time.Now().UTC(),
	}
}

// StartDemo emits random events at the provided interval until the returned
// stop function is called.
func (s *Stream) StartDemo(interval time.Duration) func() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Publish(s.RandomDemoEvent())
			}
		}
	}()
	return cancel
}
