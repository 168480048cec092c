package sim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/auth"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/risk"
)

var simNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func stressedInputs() risk.Inputs {
	return risk.InputsFromRecord(risk.EmployeeRecord{
		EmployeeID:           "u1",
		WorkHoursPerWeek:     f64(55),
		StressLevel:          f64(8),
		WorkLifeBalanceScore: f64(3),
		SleepHours:           f64(5),
		PhysicalActivityHrs:  f64(1),
		JobSatisfaction:      f64(4),
	})
}

func TestNoOpSimulation(t *testing.T) {
	res := RunWithInputs("u1", stressedInputs(), Overrides{}, simNow)
	if res.Delta != 0 {
		t.Fatalf("no-op delta = %f, want 0", res.Delta)
	}
	if res.Adjusted.Score != res.Baseline.Score {
		t.Fatalf("adjusted %f != baseline %f", res.Adjusted.Score, res.Baseline.Score)
	}
	if res.LevelChanged {
		t.Fatal("no-op simulation must not change the level")
	}
	if len(res.Recommendations) == 0 || len(res.Recommendations) > 4 {
		t.Fatalf("recommendation bounds violated: %d", len(res.Recommendations))
	}
}

func TestMoreSleepLowersRisk(t *testing.T) {
	in := stressedInputs()
	res := RunWithInputs("u1", in, Overrides{SleepHours: f64(8)}, simNow)
	if res.Adjusted.Score >= res.Baseline.Score {
		t.Fatalf("more sleep raised risk: %f -> %f", res.Baseline.Score, res.Adjusted.Score)
	}
	// sleep 5->8 over divisor 5 with weight -0.20: delta = -0.12
	if math.Abs(res.Delta-(-0.12)) > 1e-9 {
		t.Fatalf("delta = %f, want -0.12", res.Delta)
	}
}

func TestSleepMonotonicity(t *testing.T) {
	in := stressedInputs()
	base := RunWithInputs("u1", in, Overrides{}, simNow).Adjusted.Score
	prev := base
	for _, hours := range []float64{5, 6, 7, 8, 9, 10} {
		got := RunWithInputs("u1", in, Overrides{SleepHours: f64(hours)}, simNow).Adjusted.Score
		if got > prev+1e-12 {
			t.Fatalf("sleep %f raised score %f -> %f", hours, prev, got)
		}
		prev = got
	}
}

func TestWorkAndStressMonotonicity(t *testing.T) {
	in := stressedInputs()
	base := RunWithInputs("u1", in, Overrides{}, simNow).Adjusted.Score

	for _, hours := range []float64{55, 60, 65, 70} {
		got := RunWithInputs("u1", in, Overrides{WorkHours: f64(hours)}, simNow).Adjusted.Score
		if got < base-1e-12 {
			t.Fatalf("work hours %f lowered score below baseline: %f < %f", hours, got, base)
		}
	}
	for _, stress := range []float64{8, 9, 10} {
		got := RunWithInputs("u1", in, Overrides{StressLevel: f64(stress)}, simNow).Adjusted.Score
		if got < base-1e-12 {
			t.Fatalf("stress %f lowered score below baseline: %f < %f", stress, got, base)
		}
	}
}

func TestPerDayWorkHoursScaled(t *testing.T) {
	in := stressedInputs()
	perDay := RunWithInputs("u1", in, Overrides{WorkHours: f64(11)}, simNow)
	perWeek := RunWithInputs("u1", in, Overrides{WorkHours: f64(55)}, simNow)
	if math.Abs(perDay.Adjusted.Score-perWeek.Adjusted.Score) > 1e-9 {
		t.Fatalf("11h/day and 55h/week must match: %f vs %f",
			perDay.Adjusted.Score, perWeek.Adjusted.Score)
	}
}

func TestMeetingOverrideUsesWorkShareBaseline(t *testing.T) {
	in := stressedInputs() // 55h week, baseline meetings = 8.25h
	up := RunWithInputs("u1", in, Overrides{MeetingHours: f64(20)}, simNow)
	if up.Delta <= 0 {
		t.Fatalf("more meetings must raise risk, delta = %f", up.Delta)
	}
	down := RunWithInputs("u1", in, Overrides{MeetingHours: f64(2)}, simNow)
	if down.Delta >= 0 {
		t.Fatalf("fewer meetings must lower risk, delta = %f", down.Delta)
	}
}

func TestAdjustedScoreClamped(t *testing.T) {
	in := stressedInputs()
	res := RunWithInputs("u1", in, Overrides{
		WorkHours:   f64(120),
		StressLevel: f64(10),
	}, simNow)
	if res.Adjusted.Score < 0 || res.Adjusted.Score > 1 {
		t.Fatalf("adjusted score out of [0,1]: %f", res.Adjusted.Score)
	}
}

func TestLevelChangeFlag(t *testing.T) {
	res := RunWithInputs("u1", stressedInputs(), Overrides{
		SleepHours:  f64(9),
		StressLevel: f64(3),
	}, simNow)
	if res.Adjusted.Level == res.Baseline.Level && res.LevelChanged {
		t.Fatal("flag set without level change")
	}
	if res.Adjusted.Level != res.Baseline.Level && !res.LevelChanged {
		t.Fatal("level changed but flag not set")
	}
}

func TestEngineGatesOnAccessPredicate(t *testing.T) {
	store := risk.NewInMemory()
	store.PutRelationship(risk.OrgRelationship{UserID: "u1", Role: auth.RoleEmployee, ManagerID: "m1"})
	store.PutEmployeeRecord(risk.EmployeeRecord{EmployeeID: "u1", StressLevel: f64(8)})
	svc, err := risk.NewService(store)
	if err != nil {
		t.Fatal(err)
	}
	eng := New(svc).WithClock(func() time.Time { return simNow })
	ctx := context.Background()

	if _, err := eng.Run(ctx, risk.Requester{ID: "m1", Role: auth.RoleManager}, "u1", Overrides{}); err != nil {
		t.Fatalf("manager simulation should pass: %v", err)
	}
	_, err = eng.Run(ctx, risk.Requester{ID: "u2", Role: auth.RoleEmployee}, "u1", Overrides{})
	if !errors.Is(err, auth.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	_, err = eng.Run(ctx, risk.Requester{ID: "m1", Role: auth.RoleManager}, "ghost", Overrides{})
	if !errors.Is(err, risk.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
