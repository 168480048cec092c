package risk

import (
	"sort"
	"time"
)

// Deterministic model coefficients. The base value is the population-level
// prior; each term adds the weighted deviation of one input from its
// neutral midpoint.
const (
	baseRisk = 0.30

	weightWorkHours    = 0.15
	weightStress       = 0.20
	weightBalance      = 0.15
	weightSleep        = 0.10
	weightExercise     = 0.05
	weightSatisfaction = 0.10

	neutralWorkHours = 40.0
	workHoursSpan    = 30.0
	scaleMidpoint    = 5.0
	scaleSpan        = 5.0
)

// Canonical factor names shared with the recommendation templates and the
// persisted risk-factor maps.
const (
	FactorWorkload    = "workload"
	FactorMeetingLoad = "meeting_load"
	FactorStress      = "stress"
	FactorBalance     = "work_life_balance"
	FactorSleep       = "sleep"
	FactorExercise    = "exercise"
	FactorSocial      = "social"
	factorSatisfy     = "job_satisfaction"
)

// Inputs are the model inputs after rescaling: work hours per week on its
// natural scale, everything else on 0-10.
type Inputs struct {
	WorkHoursPerWeek  float64
	StressLevel       float64
	WorkLifeBalance   float64
	SleepQuality      float64
	ExerciseFrequency float64
	JobSatisfaction   float64

	// provided counts how many inputs the caller actually supplied; it
	// only feeds the confidence heuristic.
	provided int
}

// DefaultInputs returns the all-neutral input set (score exactly baseRisk).
func DefaultInputs() Inputs {
	return Inputs{
		WorkHoursPerWeek:  neutralWorkHours,
		StressLevel:       scaleMidpoint,
		WorkLifeBalance:   scaleMidpoint,
		SleepQuality:      scaleMidpoint,
		ExerciseFrequency: scaleMidpoint,
		JobSatisfaction:   scaleMidpoint,
	}
}

// InputsFromRecord rescales an employee record onto the model scales.
// Sleep hours and weekly activity hours map linearly onto 0-10; absent
// fields keep the neutral defaults.
func InputsFromRecord(rec EmployeeRecord) Inputs {
	in := DefaultInputs()
	if rec.WorkHoursPerWeek != nil {
		in.WorkHoursPerWeek = *rec.WorkHoursPerWeek
		in.provided++
	}
	if rec.StressLevel != nil {
		in.StressLevel = clamp01Scale(*rec.StressLevel)
		in.provided++
	}
	if rec.SleepHours != nil {
		in.SleepQuality = clamp01Scale(*rec.SleepHours)
		in.provided++
	}
	if rec.WorkLifeBalanceScore != nil {
		in.WorkLifeBalance = clamp01Scale(*rec.WorkLifeBalanceScore)
		in.provided++
	}
	if rec.JobSatisfaction != nil {
		in.JobSatisfaction = clamp01Scale(*rec.JobSatisfaction)
		in.provided++
	}
	if rec.PhysicalActivityHrs != nil {
		in.ExerciseFrequency = clamp01Scale(*rec.PhysicalActivityHrs)
		in.provided++
	}
	return in
}

// Score applies the deterministic weighted formula and clamps to [0,1].
func Score(in Inputs) (float64, []Factor) {
	terms := []struct {
		name      string
		deviation float64 // -1..1 for in-range inputs
		weight    float64
		severity  float64 // 0-10
	}{
		{
			name:      FactorWorkload,
			deviation: (in.WorkHoursPerWeek - neutralWorkHours) / workHoursSpan,
			weight:    weightWorkHours,
			severity:  clamp01Scale(scaleMidpoint + scaleSpan*(in.WorkHoursPerWeek-neutralWorkHours)/workHoursSpan),
		},
		{
			name:      FactorStress,
			deviation: (in.StressLevel - scaleMidpoint) / scaleSpan,
			weight:    weightStress,
			severity:  clamp01Scale(in.StressLevel),
		},
		{
			name:      FactorBalance,
			deviation: (scaleMidpoint - in.WorkLifeBalance) / scaleSpan,
			weight:    weightBalance,
			severity:  clamp01Scale(10 - in.WorkLifeBalance),
		},
		{
			name:      FactorSleep,
			deviation: (scaleMidpoint - in.SleepQuality) / scaleSpan,
			weight:    weightSleep,
			severity:  clamp01Scale(10 - in.SleepQuality),
		},
		{
			name:      FactorExercise,
			deviation: (scaleMidpoint - in.ExerciseFrequency) / scaleSpan,
			weight:    weightExercise,
			severity:  clamp01Scale(10 - in.ExerciseFrequency),
		},
		{
			name:      factorSatisfy,
			deviation: (scaleMidpoint - in.JobSatisfaction) / scaleSpan,
			weight:    weightSatisfaction,
			severity:  clamp01Scale(10 - in.JobSatisfaction),
		},
	}

	score := baseRisk
	factors := make([]Factor, 0, len(terms))
	for _, t := range terms {
		contribution := t.weight * t.deviation
		score += contribution
		factors = append(factors, Factor{
			Name:         t.name,
			Value:        t.severity,
			Contribution: contribution,
		})
	}
	sort.Slice(factors, func(i, j int) bool {
		return factors[i].Value > factors[j].Value
	})
	return clampUnit(score), factors
}

// Assess runs the local model end to end for the given inputs.
func Assess(userID string, in Inputs, now time.Time) Assessment {
	score, factors := Score(in)
	return Assessment{
		UserID:     userID,
		Score:      score,
		Level:      LevelForScore(score),
		Confidence: confidence(in.provided),
		Factors:    factors,
		Mode:       "local",
		CreatedAt:  now.UTC(),
	}
}

// FactorMap flattens ranked factors into the 0-10 name-keyed map consumed
// by the recommendation rules and the persisted assessment.
func FactorMap(factors []Factor) map[string]float64 {
	out := make(map[string]float64, len(factors))
	for _, f := range factors {
		out[f.Name] = f.Value
	}
	return out
}

// confidence grows with the number of caller-supplied inputs. Fully
// defaulted records are still scoreable but flagged as low confidence.
func confidence(provided int) float64 {
	c := 0.5 + 0.08*float64(provided)
	return clampUnit(c)
}

func clamp01Scale(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
