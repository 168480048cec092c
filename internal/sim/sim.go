// Package sim is the what-if engine: it recomputes a risk assessment under
// hypothetical parameter overrides as weighted deltas from the baseline,
// never by re-fitting the model.
package sim

import (
	"context"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/obs"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/risk"
)

// Delta weights and divisors. Divisors map realistic override ranges onto
// roughly [-1,1]; signs encode direction: more sleep or exercise can only
// lower risk, more work, meetings or stress can only raise it.
const (
	weightWork     = 0.15
	weightMeetings = 0.15
	weightSleep    = -0.20
	weightStress   = 0.25
	weightBalance  = -0.10
	weightExercise = -0.05

	divisorWork     = 30.0
	divisorMeetings = 20.0
	divisorSleep    = 5.0
	divisorStress   = 5.0
	divisorBalance  = 5.0
	divisorExercise = 5.0

	// meetingShare estimates baseline meeting hours as a share of weekly
	// work hours when the caller overrides meeting load.
	meetingShare = 0.15

	// perDayLimit: work-hour overrides at or below this are treated as
	// hours per day and scaled to a five-day week.
	perDayLimit = 24.0
	workdays    = 5.0
)

// Overrides is the sparse set of hypothetical values. Nil fields keep the
// baseline; an all-nil override set is a valid no-op simulation.
type Overrides struct {
	MeetingHours      *float64 `json:"meeting_hours,omitempty"`
	WorkHours         *float64 `json:"work_hours,omitempty"` // per day (<=24) or per week
	SleepHours        *float64 `json:"sleep_hours,omitempty"`
	StressLevel       *float64 `json:"stress_level,omitempty"`       // 0-10
	WorkLifeBalance   *float64 `json:"work_life_balance,omitempty"`  // 0-10
	ExerciseFrequency *float64 `json:"exercise_frequency,omitempty"` // 0-10
}

// Empty reports whether no override was supplied.
func (o Overrides) Empty() bool {
	return o.MeetingHours == nil && o.WorkHours == nil && o.SleepHours == nil &&
		o.StressLevel == nil && o.WorkLifeBalance == nil && o.ExerciseFrequency == nil
}

// Result carries both states of a simulation plus the recommendations
// computed on the adjusted state.
type Result struct {
	Baseline        risk.Assessment       `json:"baseline"`
	Adjusted        risk.Assessment       `json:"adjusted"`
	Delta           float64               `json:"delta"`
	LevelChanged    bool                  `json:"level_changed"`
	Recommendations []risk.Recommendation `json:"recommendations"`
}

// Engine runs simulations on top of the risk service. The access predicate
// gates the baseline fetch exactly as it gates direct assessments.
type Engine struct {
	svc *risk.Service
	now func() time.Time
}

// New constructs an Engine.
func New(svc *risk.Service) *Engine {
	return &Engine{svc: svc, now: time.Now}
}

// WithClock overrides the time source for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	if now != nil {
		e.now = now
	}
	return e
}

// Run simulates the target under the given overrides. A failed baseline
// fetch fails the whole simulation; there is no partial result.
func (e *Engine) Run(ctx context.Context, req risk.Requester, targetID string, ov Overrides) (Result, error) {
	in, err := e.svc.BaselineInputs(ctx, req, targetID)
	if err != nil {
		return Result{}, err
	}
	res := RunWithInputs(targetID, in, ov, e.now())
	obs.SimulationsRun.Inc()
	return res, nil
}

// RunWithInputs is the pure simulation core: baseline score via the
// deterministic model, adjusted score via weighted normalized deltas.
func RunWithInputs(userID string, in risk.Inputs, ov Overrides, now time.Time) Result {
	baseline := risk.Assess(userID, in, now)

	shift := 0.0
	if ov.WorkHours != nil {
		hours := *ov.WorkHours
		if hours <= perDayLimit {
			hours *= workdays
		}
		shift += weightWork * (hours - in.WorkHoursPerWeek) / divisorWork
	}
	if ov.MeetingHours != nil {
		baselineMeetings := meetingShare * in.WorkHoursPerWeek
		shift += weightMeetings * (*ov.MeetingHours - baselineMeetings) / divisorMeetings
	}
	if ov.SleepHours != nil {
		shift += weightSleep * (*ov.SleepHours - in.SleepQuality) / divisorSleep
	}
	if ov.StressLevel != nil {
		shift += weightStress * (*ov.StressLevel - in.StressLevel) / divisorStress
	}
	if ov.WorkLifeBalance != nil {
		shift += weightBalance * (*ov.WorkLifeBalance - in.WorkLifeBalance) / divisorBalance
	}
	if ov.ExerciseFrequency != nil {
		shift += weightExercise * (*ov.ExerciseFrequency - in.ExerciseFrequency) / divisorExercise
	}

	adjScore := baseline.Score + shift
	if adjScore < 0 {
		adjScore = 0
	}
	if adjScore > 1 {
		adjScore = 1
	}

	// Factor severities for the adjusted state come from the overridden
	// inputs; the score itself stays on the delta path above.
	adjInputs := applyOverrides(in, ov)
	_, adjFactors := risk.Score(adjInputs)

	adjusted := risk.Assessment{
		UserID:     userID,
		Score:      adjScore,
		Level:      risk.LevelForScore(adjScore),
		Confidence: baseline.Confidence,
		Factors:    adjFactors,
		Mode:       "local",
		CreatedAt:  now.UTC(),
	}

	return Result{
		Baseline:        baseline,
		Adjusted:        adjusted,
		Delta:           adjScore - baseline.Score,
		LevelChanged:    adjusted.Level != baseline.Level,
		Recommendations: risk.Recommend(adjusted.Level, risk.FactorMap(adjFactors), adjusted.Probabilities),
	}
}

func applyOverrides(in risk.Inputs, ov Overrides) risk.Inputs {
	if ov.WorkHours != nil {
		hours := *ov.WorkHours
		if hours <= perDayLimit {
			hours *= workdays
		}
		in.WorkHoursPerWeek = hours
	}
	if ov.SleepHours != nil {
		in.SleepQuality = clampScale(*ov.SleepHours)
	}
	if ov.StressLevel != nil {
		in.StressLevel = clampScale(*ov.StressLevel)
	}
	if ov.WorkLifeBalance != nil {
		in.WorkLifeBalance = clampScale(*ov.WorkLifeBalance)
	}
	if ov.ExerciseFrequency != nil {
		in.ExerciseFrequency = clampScale(*ov.ExerciseFrequency)
	}
	return in
}

func clampScale(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
