package risk

import "testing"

func TestRecommendLowRisk(t *testing.T) {
	recs := Recommend(LevelLow, map[string]float64{FactorStress: 9}, nil)
	if len(recs) != 1 {
		t.Fatalf("expected single maintain item, got %d", len(recs))
	}
	if recs[0].Category != "maintain" {
		t.Fatalf("unexpected category %s", recs[0].Category)
	}
}

func TestRecommendBounds(t *testing.T) {
	factorSets := []map[string]float64{
		nil,
		{},
		{FactorStress: 1, FactorSleep: 2},
		{FactorStress: 9, FactorSleep: 8, FactorBalance: 7, FactorWorkload: 6, FactorExercise: 5, FactorMeetingLoad: 9},
	}
	probSets := []map[string]float64{
		nil,
		{"critical": 0.9},
	}
	for _, level := range []Level{LevelLow, LevelMedium, LevelHigh, LevelCritical} {
		for _, factors := range factorSets {
			for _, probs := range probSets {
				recs := Recommend(level, factors, probs)
				if len(recs) == 0 {
					t.Fatalf("empty recommendations for level=%s factors=%v", level, factors)
				}
				if len(recs) > 4 {
					t.Fatalf("more than 4 recommendations for level=%s: %d", level, len(recs))
				}
			}
		}
	}
}

func TestRecommendPriorityTracksLevel(t *testing.T) {
	factors := map[string]float64{FactorStress: 9}
	if recs := Recommend(LevelMedium, factors, nil); recs[0].Priority != "medium" {
		t.Fatalf("expected medium priority, got %s", recs[0].Priority)
	}
	if recs := Recommend(LevelHigh, factors, nil); recs[0].Priority != "high" {
		t.Fatalf("expected high priority, got %s", recs[0].Priority)
	}
	if recs := Recommend(LevelCritical, factors, nil); recs[0].Priority != "high" {
		t.Fatalf("expected high priority, got %s", recs[0].Priority)
	}
}

func TestRecommendBelowThresholdFallsBack(t *testing.T) {
	recs := Recommend(LevelMedium, map[string]float64{FactorStress: 3.9, FactorSleep: 2}, nil)
	if len(recs) != 1 || recs[0].Title != "Maintain resilience" {
		t.Fatalf("expected resilience fallback, got %+v", recs)
	}
}

func TestRecommendEscalationPrepended(t *testing.T) {
	recs := Recommend(LevelCritical,
		map[string]float64{FactorStress: 9, FactorSleep: 8, FactorBalance: 7, FactorWorkload: 6},
		map[string]float64{"critical": 0.25},
	)
	if recs[0].Category != "escalation" || recs[0].Priority != "high" {
		t.Fatalf("expected escalation first, got %+v", recs[0])
	}
	if len(recs) != 4 {
		t.Fatalf("expected truncation to 4, got %d", len(recs))
	}
}

func TestRecommendRanksTopFactors(t *testing.T) {
	recs := Recommend(LevelMedium, map[string]float64{
		FactorSleep:    9,
		FactorStress:   5,
		FactorWorkload: 4,
	}, nil)
	if recs[0].Category != "health" {
		t.Fatalf("expected sleep (health) first, got %+v", recs[0])
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 items, got %d", len(recs))
	}
}

func TestRecommendSkipsUnknownFactorNames(t *testing.T) {
	recs := Recommend(LevelMedium, map[string]float64{
		"job_satisfaction": 9,
		FactorStress:       8,
	}, nil)
	for _, r := range recs {
		if r.Category == "" {
			t.Fatalf("unexpected empty category: %+v", r)
		}
	}
	if recs[0].Category != "stress" {
		t.Fatalf("expected stress item first, got %+v", recs[0])
	}
}
