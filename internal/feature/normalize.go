package feature

// bounds is the documented valid range for a raw feature. Values outside
// the range normalize to the clamped boundary, never out of [0,1].
type bounds struct {
	Min, Max float64
}

// featureOrder fixes the vector layout consumed by the scoring models. The
// order must not change without versioning the persisted assessments.
var featureOrder = []string{
	"work_hours",
	"overtime_hours",
	"weekend_work",
	"meeting_count",
	"meeting_duration",
	"back_to_back_meetings",
	"email_count",
	"avg_email_length",
	"stress_email_count",
	"urgent_email_count",
	"response_time",
	"focus_time_ratio",
	"break_time_ratio",
	"stress_level",
	"workload_level",
	"work_life_balance",
	"social_interaction",
	"sleep_quality",
	"exercise_quality",
	"nutrition_quality",
}

// featureBounds is the fixed per-feature normalization table. Hour-scaled
// features assume a per-day average over the extraction range.
var featureBounds = map[string]bounds{
	"work_hours":            {0, 12},
	"overtime_hours":        {0, 6},
	"weekend_work":          {0, 16},
	"meeting_count":         {0, 20},
	"meeting_duration":      {0, 8},
	"back_to_back_meetings": {0, 10},
	"email_count":           {0, 100},
	"avg_email_length":      {0, 500},
	"stress_email_count":    {0, 20},
	"urgent_email_count":    {0, 20},
	"response_time":         {0, 24},
	"focus_time_ratio":      {0, 1},
	"break_time_ratio":      {0, 1},
	"stress_level":          {0, 5},
	"workload_level":        {0, 5},
	"work_life_balance":     {0, 1},
	"social_interaction":    {0, 1},
	"sleep_quality":         {0, 1},
	"exercise_quality":      {0, 1},
	"nutrition_quality":     {0, 1},
}

// FeatureNames returns the fixed feature order.
func FeatureNames() []string {
	return append([]string(nil), featureOrder...)
}

// Count is the expected length of a normalized vector.
func Count() int { return len(featureOrder) }

func (v Vector) value(name string) float64 {
	switch name {
	case "work_hours":
		return v.WorkHours
	case "overtime_hours":
		return v.OvertimeHours
	case "weekend_work":
		return v.WeekendWork
	case "meeting_count":
		return v.MeetingCount
	case "meeting_duration":
		return v.MeetingDuration
	case "back_to_back_meetings":
		return v.BackToBackMeetings
	case "email_count":
		return v.EmailCount
	case "avg_email_length":
		return v.AvgEmailLength
	case "stress_email_count":
		return v.StressEmailCount
	case "urgent_email_count":
		return v.UrgentEmailCount
	case "response_time":
		return v.ResponseTime
	case "focus_time_ratio":
		return v.FocusTimeRatio
	case "break_time_ratio":
		return v.BreakTimeRatio
	case "stress_level":
		return v.StressLevel
	case "workload_level":
		return v.WorkloadLevel
	case "work_life_balance":
		return v.WorkLifeBalance
	case "social_interaction":
		return v.SocialInteraction
	case "sleep_quality":
		return v.SleepQuality
	case "exercise_quality":
		return v.ExerciseQuality
	case "nutrition_quality":
		return v.NutritionQuality
	}
	return 0
}

// Normalized maps every feature into [0,1] against the bounds table,
// clamped. A malformed table entry degrades to the all-zero vector of the
// expected length so callers never see a size mismatch.
func (v Vector) Normalized() []float64 {
	out := make([]float64, len(featureOrder))
	for i, name := range featureOrder {
		b, ok := featureBounds[name]
		if !ok || b.Max <= b.Min {
			return make([]float64, len(featureOrder))
		}
		n := (v.value(name) - b.Min) / (b.Max - b.Min)
		if n < 0 {
			n = 0
		}
		if n > 1 {
			n = 1
		}
		out[i] = n
	}
	return out
}

// NormalizedMap returns the normalized features keyed by name, the shape the
// prediction oracle consumes.
func (v Vector) NormalizedMap() map[string]float64 {
	vals := v.Normalized()
	out := make(map[string]float64, len(featureOrder))
	for i, name := range featureOrder {
		out[name] = vals[i]
	}
	return out
}
