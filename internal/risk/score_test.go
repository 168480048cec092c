package risk

import (
	"math"
	"testing"
	"time"
)

func f64(v float64) *float64 { return &v }

func TestLevelForScoreBands(t *testing.T) {
	cases := []struct {
		score float64
		want  Level
	}{
		{0, LevelLow},
		{0.2999, LevelLow},
		{0.30, LevelMedium},
		{0.5999, LevelMedium},
		{0.60, LevelHigh},
		{0.7999, LevelHigh},
		{0.80, LevelCritical},
		{1.0, LevelCritical},
	}
	for _, tc := range cases {
		if got := LevelForScore(tc.score); got != tc.want {
			t.Fatalf("LevelForScore(%f)=%s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestScoreNeutralBaseline(t *testing.T) {
	score, factors := Score(DefaultInputs())
	if math.Abs(score-0.30) > 1e-9 {
		t.Fatalf("neutral inputs should score exactly the base 0.30, got %f", score)
	}
	if len(factors) != 6 {
		t.Fatalf("expected 6 factors, got %d", len(factors))
	}
	for _, f := range factors {
		if math.Abs(f.Contribution) > 1e-9 {
			t.Fatalf("neutral input produced contribution: %+v", f)
		}
	}
}

func TestScoreHighRiskScenario(t *testing.T) {
	rec := EmployeeRecord{
		EmployeeID:           "e-1",
		WorkHoursPerWeek:     f64(55),
		StressLevel:          f64(8),
		WorkLifeBalanceScore: f64(3),
		SleepHours:           f64(5),
		PhysicalActivityHrs:  f64(1),
		JobSatisfaction:      f64(4),
	}
	in := InputsFromRecord(rec)
	score, _ := Score(in)
	if math.Abs(score-0.615) > 1e-9 {
		t.Fatalf("expected score 0.615, got %f", score)
	}
	level := LevelForScore(score)
	if level != LevelHigh && level != LevelCritical {
		t.Fatalf("expected high or critical band, got %s", level)
	}
}

func TestScoreClampedToUnitInterval(t *testing.T) {
	worst := Inputs{WorkHoursPerWeek: 120, StressLevel: 10}
	score, _ := Score(worst)
	if score < 0 || score > 1 {
		t.Fatalf("score out of [0,1]: %f", score)
	}
	best := Inputs{
		WorkHoursPerWeek: 0, StressLevel: 0, WorkLifeBalance: 10,
		SleepQuality: 10, ExerciseFrequency: 10, JobSatisfaction: 10,
	}
	score, _ = Score(best)
	if score < 0 || score > 1 {
		t.Fatalf("score out of [0,1]: %f", score)
	}
}

func TestInputsFromRecordDefaults(t *testing.T) {
	in := InputsFromRecord(EmployeeRecord{EmployeeID: "e-2"})
	if in != DefaultInputs() {
		t.Fatalf("empty record must default to neutral inputs, got %+v", in)
	}
}

func TestFactorsRankedBySeverity(t *testing.T) {
	rec := EmployeeRecord{
		StressLevel:          f64(9),
		SleepHours:           f64(8),
		WorkLifeBalanceScore: f64(2),
	}
	_, factors := Score(InputsFromRecord(rec))
	for i := 1; i < len(factors); i++ {
		if factors[i].Value > factors[i-1].Value {
			t.Fatalf("factors not ranked descending: %+v", factors)
		}
	}
	if factors[0].Name != FactorStress && factors[0].Name != FactorBalance {
		t.Fatalf("expected stress or balance as top factor, got %s", factors[0].Name)
	}
}

func TestAssessProducesConsistentLevel(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	a := Assess("u1", InputsFromRecord(EmployeeRecord{StressLevel: f64(9)}), now)
	if a.Level != LevelForScore(a.Score) {
		t.Fatalf("level %s inconsistent with score %f", a.Level, a.Score)
	}
	if a.Mode != "local" {
		t.Fatalf("unexpected mode %s", a.Mode)
	}
	if a.Confidence <= 0 || a.Confidence > 1 {
		t.Fatalf("confidence out of range: %f", a.Confidence)
	}
	if !a.CreatedAt.Equal(now) {
		t.Fatalf("unexpected timestamp %v", a.CreatedAt)
	}
}
