package stream

import (
	"context"
	"testing"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/risk"
)

func TestPublishReachesSubscribers(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1 := s.Subscribe(ctx)
	ch2 := s.Subscribe(ctx)

	evt := AssessmentEvent{UserID: "emp-1", Score: 0.62, Level: risk.LevelHigh, Source: "evaluation", Timestamp: time.Now().UTC()}
	s.Publish(evt)

	for _, ch := range []<-chan AssessmentEvent{ch1, ch2} {
		select {
		case got := <-ch:
			if got.UserID != "emp-1" || got.Level != risk.LevelHigh {
				t.Fatalf("unexpected event: %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestSubscribeClosesOnContextCancel(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = s.Subscribe(ctx) // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Publish(AssessmentEvent{UserID: "emp-1", Score: 0.3})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}

func TestRandomDemoEventIsWellFormed(t *testing.T) {
	s := New()
	for i := 0; i < 50; i++ {
		evt := s.RandomDemoEvent()
		if evt.Score < 0 || evt.Score > 1 {
			t.Fatalf("score out of range: %v", evt.Score)
		}
		if evt.Level != risk.LevelForScore(evt.Score) {
			t.Fatalf("level %q does not match score %v", evt.Level, evt.Score)
		}
		if evt.UserID == "" {
			t.Fatal("missing user id")
		}
	}
}
