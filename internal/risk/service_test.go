package risk

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/auth"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/feature"
)

type stubPredictor struct {
	pred Prediction
	err  error
}

func (p stubPredictor) Predict(ctx context.Context, req PredictionRequest) (Prediction, error) {
	return p.pred, p.err
}

type stubMetricsPredictor struct {
	stubPredictor
	payload json.RawMessage
}

func (p stubMetricsPredictor) Metrics(ctx context.Context) (json.RawMessage, error) {
	return p.payload, nil
}

func seedStore(t *testing.T) *InMemory {
	t.Helper()
	s := NewInMemory()
	s.PutRelationship(OrgRelationship{UserID: "u1", Role: auth.RoleEmployee, ManagerID: "m1"})
	s.PutRelationship(OrgRelationship{UserID: "u2", Role: auth.RoleEmployee, ManagerID: "m2"})
	s.PutRelationship(OrgRelationship{UserID: "m1", Role: auth.RoleManager})
	s.PutEmployeeRecord(EmployeeRecord{
		EmployeeID:           "u1",
		WorkHoursPerWeek:     f64(55),
		StressLevel:          f64(8),
		WorkLifeBalanceScore: f64(3),
		SleepHours:           f64(5),
		PhysicalActivityHrs:  f64(1),
		JobSatisfaction:      f64(4),
	})
	return s
}

func TestEvaluateRecordPath(t *testing.T) {
	svc, err := NewService(seedStore(t))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	res, err := svc.Evaluate(ctx, Requester{ID: "u1", Role: auth.RoleEmployee}, "u1", EvalOptions{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Assessment.Level != LevelHigh {
		t.Fatalf("expected high level, got %s (score %f)", res.Assessment.Level, res.Assessment.Score)
	}
	if len(res.Recommendations) == 0 || len(res.Recommendations) > 4 {
		t.Fatalf("recommendation bounds violated: %d", len(res.Recommendations))
	}

	// the evaluation must have been persisted
	stored, err := svc.store.LatestAssessment(ctx, "u1")
	if err != nil {
		t.Fatalf("LatestAssessment: %v", err)
	}
	if stored.Score != 62 { // round(0.615*100)
		t.Fatalf("persisted score = %d, want 62", stored.Score)
	}
	if stored.Level != LevelHigh {
		t.Fatalf("persisted level = %s, want high", stored.Level)
	}
}

func TestEvaluateAccessControl(t *testing.T) {
	svc, _ := NewService(seedStore(t))
	ctx := context.Background()

	cases := []struct {
		name    string
		req     Requester
		target  string
		wantErr error
	}{
		{"self access", Requester{"u1", auth.RoleEmployee}, "u1", nil},
		{"peer denied", Requester{"u1", auth.RoleEmployee}, "u2", auth.ErrAccessDenied},
		{"manager direct report", Requester{"m1", auth.RoleManager}, "u1", nil},
		{"manager foreign report", Requester{"m1", auth.RoleManager}, "u2", auth.ErrAccessDenied},
		{"admin anyone", Requester{"a1", auth.RoleAdmin}, "u2", nil},
		{"unknown target", Requester{"a1", auth.RoleAdmin}, "ghost", ErrNotFound},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Evaluate(ctx, tc.req, tc.target, EvalOptions{})
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAccessDeniedDistinctFromNotFound(t *testing.T) {
	svc, _ := NewService(seedStore(t))
	ctx := context.Background()

	_, denied := svc.Evaluate(ctx, Requester{"u1", auth.RoleEmployee}, "u2", EvalOptions{})
	_, missing := svc.Evaluate(ctx, Requester{"a1", auth.RoleAdmin}, "ghost", EvalOptions{})

	if errors.Is(denied, ErrNotFound) || errors.Is(missing, auth.ErrAccessDenied) {
		t.Fatalf("denied=%v missing=%v must stay distinguishable", denied, missing)
	}
}

func TestEvaluateOracleFailureSurfaces(t *testing.T) {
	svc, _ := NewService(seedStore(t),
		WithPredictor(stubPredictor{err: errors.New("connection refused")}))
	ctx := context.Background()

	_, err := svc.Evaluate(ctx, Requester{"u1", auth.RoleEmployee}, "u1", EvalOptions{UseOracle: true})
	if !errors.Is(err, ErrPredictionUnavailable) {
		t.Fatalf("expected ErrPredictionUnavailable, got %v", err)
	}
}

func TestEvaluateOracleFallbackWhenRequested(t *testing.T) {
	svc, _ := NewService(seedStore(t),
		WithPredictor(stubPredictor{err: errors.New("timeout")}))
	ctx := context.Background()

	res, err := svc.Evaluate(ctx, Requester{"u1", auth.RoleEmployee}, "u1",
		EvalOptions{UseOracle: true, AllowLocalFallback: true})
	if err != nil {
		t.Fatalf("expected local fallback, got %v", err)
	}
	if res.Assessment.Mode != "local" {
		t.Fatalf("expected local mode, got %s", res.Assessment.Mode)
	}
}

func TestEvaluateOraclePassthrough(t *testing.T) {
	pred := Prediction{
		RiskLevel:     "HIGH",
		RiskScore:     0.72,
		Confidence:    0.9,
		Probabilities: map[string]float64{"low": 0.05, "medium": 0.2, "high": 0.5, "critical": 0.25},
		Features:      map[string]float64{"stress_level": 0.9},
	}
	svc, _ := NewService(seedStore(t), WithPredictor(stubPredictor{pred: pred}))
	ctx := context.Background()

	res, err := svc.Evaluate(ctx, Requester{"u1", auth.RoleEmployee}, "u1", EvalOptions{UseOracle: true})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	a := res.Assessment
	if a.Mode != "oracle" || a.Score != 0.72 || a.Level != LevelHigh {
		t.Fatalf("passthrough mismatch: %+v", a)
	}
	if a.Probabilities["critical"] != 0.25 {
		t.Fatalf("probabilities not passed through: %v", a.Probabilities)
	}
	// critical probability >= 0.2 must prepend the escalation item
	if res.Recommendations[0].Category != "escalation" {
		t.Fatalf("expected escalation first, got %+v", res.Recommendations[0])
	}
}

func TestEvaluateNoOracleConfigured(t *testing.T) {
	svc, _ := NewService(seedStore(t))
	_, err := svc.Evaluate(context.Background(), Requester{"u1", auth.RoleEmployee}, "u1", EvalOptions{UseOracle: true})
	if !errors.Is(err, ErrPredictionUnavailable) {
		t.Fatalf("expected ErrPredictionUnavailable, got %v", err)
	}
}

func TestLatestComputesWhenMissing(t *testing.T) {
	svc, _ := NewService(seedStore(t))
	ctx := context.Background()

	stored, err := svc.Latest(ctx, Requester{"m1", auth.RoleManager}, "u1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if stored.Score == 0 || stored.UpdatedAt.IsZero() {
		t.Fatalf("expected computed assessment, got %+v", stored)
	}
}

func TestEvaluateEventPath(t *testing.T) {
	store := seedStore(t)
	now := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	day := now.AddDate(0, 0, -3)
	for h := 9; h < 17; h++ {
		store.AddEvents("u1", feature.RawEvent{
			Start:        day.Add(time.Duration(h-12) * time.Hour),
			End:          day.Add(time.Duration(h-11) * time.Hour),
			Category:     feature.CategoryMeeting,
			StressRating: 4,
		})
	}
	store.AddMessages("u1", feature.RawMessage{
		Timestamp: day,
		Subject:   "urgent escalation",
		Body:      "completely overwhelmed and stressed",
		WordCount: 30,
	})

	svc, _ := NewService(store, WithClock(func() time.Time { return now }))
	res, err := svc.Evaluate(context.Background(), Requester{"u1", auth.RoleEmployee}, "u1", EvalOptions{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Vector.MeetingCount == 0 {
		t.Fatal("expected event-path extraction to populate the vector")
	}
	if res.Vector.SleepQuality == 0 {
		t.Fatal("expected record overlay to supply sleep quality")
	}
	if res.Assessment.Score <= 0 || res.Assessment.Score > 1 {
		t.Fatalf("score out of range: %f", res.Assessment.Score)
	}
}

func TestOracleMetricsGating(t *testing.T) {
	ctx := context.Background()
	payload := json.RawMessage(`{"requests_total": 42}`)

	svc, _ := NewService(seedStore(t), WithPredictor(stubMetricsPredictor{payload: payload}))

	if _, err := svc.OracleMetrics(ctx, Requester{ID: "u1", Role: auth.RoleEmployee}); !errors.Is(err, auth.ErrAccessDenied) {
		t.Fatalf("expected access denied for employee, got %v", err)
	}

	got, err := svc.OracleMetrics(ctx, Requester{ID: "a1", Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("OracleMetrics: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload not passed through: %s", got)
	}

	// A predictor without a metrics surface behaves like no oracle at all.
	plain, _ := NewService(seedStore(t), WithPredictor(stubPredictor{}))
	if _, err := plain.OracleMetrics(ctx, Requester{ID: "a1", Role: auth.RoleAdmin}); !errors.Is(err, ErrPredictionUnavailable) {
		t.Fatalf("expected prediction unavailable, got %v", err)
	}
}
