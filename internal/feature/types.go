// Package feature turns raw calendar and email records into the fixed-shape
// numeric feature vector consumed by the risk scoring engine.
package feature

import (
	"errors"
	"time"
)

// EventCategory classifies a calendar event.
type EventCategory string

const (
	CategoryMeeting   EventCategory = "meeting"
	CategoryFocusTime EventCategory = "focus_time"
	CategoryBreak     EventCategory = "break"
	CategoryOvertime  EventCategory = "overtime"
	CategoryPersonal  EventCategory = "personal"
)

// Direction marks whether a message was sent or received by the user.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// RawEvent is a calendar entry over [Start, End). Stress and workload
// ratings are self-reported on a 1-5 scale; zero means unrated.
type RawEvent struct {
	ID             string        `json:"id"`
	Start          time.Time     `json:"start"`
	End            time.Time     `json:"end"`
	Category       EventCategory `json:"category"`
	Virtual        bool          `json:"virtual"`
	StressRating   int           `json:"stress_rating,omitempty"`
	WorkloadRating int           `json:"workload_rating,omitempty"`
}

// RawMessage is an email record. Sentiment is nil when no upstream
// classifier ran; the extractor then derives it from Subject and Body via
// the signal analyzer. ResponseLatency is zero when unknown.
type RawMessage struct {
	ID              string        `json:"id"`
	Timestamp       time.Time     `json:"timestamp"`
	Direction       Direction     `json:"direction"`
	Subject         string        `json:"subject"`
	Body            string        `json:"body,omitempty"`
	WordCount       int           `json:"word_count,omitempty"`
	Sentiment       *float64      `json:"sentiment,omitempty"` // -1..1
	EmotionTags     []string      `json:"emotion_tags,omitempty"`
	ResponseLatency time.Duration `json:"response_latency,omitempty"`
}

var (
	ErrInvalidSpan      = errors.New("event end must be after start")
	ErrInvalidSentiment = errors.New("sentiment must be within [-1,1]")
)

// Validate checks the record invariants from the ingestion contract.
func (e RawEvent) Validate() error {
	if !e.End.After(e.Start) {
		return ErrInvalidSpan
	}
	return nil
}

// Validate checks the record invariants from the ingestion contract.
func (m RawMessage) Validate() error {
	if m.Sentiment != nil && (*m.Sentiment < -1 || *m.Sentiment > 1) {
		return ErrInvalidSentiment
	}
	return nil
}

// Vector is the fixed mapping of named behavioral features. All fields are
// raw-scale values; Normalized produces the model-ready [0,1] form.
type Vector struct {
	WorkHours          float64 `json:"work_hours"`
	OvertimeHours      float64 `json:"overtime_hours"`
	WeekendWork        float64 `json:"weekend_work"`
	MeetingCount       float64 `json:"meeting_count"`
	MeetingDuration    float64 `json:"meeting_duration"`
	BackToBackMeetings float64 `json:"back_to_back_meetings"`
	EmailCount         float64 `json:"email_count"`
	AvgEmailLength     float64 `json:"avg_email_length"`
	StressEmailCount   float64 `json:"stress_email_count"`
	UrgentEmailCount   float64 `json:"urgent_email_count"`
	ResponseTime       float64 `json:"response_time"` // hours
	FocusTimeRatio     float64 `json:"focus_time_ratio"`
	BreakTimeRatio     float64 `json:"break_time_ratio"`
	StressLevel        float64 `json:"stress_level"`   // 0-5
	WorkloadLevel      float64 `json:"workload_level"` // 0-5
	WorkLifeBalance    float64 `json:"work_life_balance"`
	SocialInteraction  float64 `json:"social_interaction"`
	SleepQuality       float64 `json:"sleep_quality"`
	ExerciseQuality    float64 `json:"exercise_quality"`
	NutritionQuality   float64 `json:"nutrition_quality"`
}

// Overlay carries the wellness inputs no calendar or mailbox can provide
// (survey answers, simulation overrides). Nil fields leave the vector
// untouched; extraction alone leaves them at 0.
type Overlay struct {
	SocialInteraction *float64
	SleepQuality      *float64
	ExerciseQuality   *float64
	NutritionQuality  *float64
}

// WithOverlay returns a copy of the vector with supplied overlay values
// applied.
func (v Vector) WithOverlay(o Overlay) Vector {
	if o.SocialInteraction != nil {
		v.SocialInteraction = *o.SocialInteraction
	}
	if o.SleepQuality != nil {
		v.SleepQuality = *o.SleepQuality
	}
	if o.ExerciseQuality != nil {
		v.ExerciseQuality = *o.ExerciseQuality
	}
	if o.NutritionQuality != nil {
		v.NutritionQuality = *o.NutritionQuality
	}
	return v
}
