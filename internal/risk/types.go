// Package risk holds the deterministic burnout scoring model, the
// recommendation rules and the service orchestrating assessments over a
// store. The external prediction oracle is a sibling concern in
// risk/oracle; this package only defines its contract.
package risk

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/auth"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/feature"
)

// Level is the discrete risk band, a pure function of the score.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Band thresholds shared by the local model and the oracle passthrough.
const (
	thresholdMedium   = 0.30
	thresholdHigh     = 0.60
	thresholdCritical = 0.80
)

// LevelForScore maps a [0,1] score onto its band. Boundaries belong to the
// upper band: 0.30 is medium, 0.2999 is low.
func LevelForScore(score float64) Level {
	switch {
	case score < thresholdMedium:
		return LevelLow
	case score < thresholdHigh:
		return LevelMedium
	case score < thresholdCritical:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// Factor is one named contributor to an assessment. Value is a 0-10
// severity; Contribution is the signed weight it added to the score.
type Factor struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// Assessment is the scored outcome for one user at one point in time.
type Assessment struct {
	UserID        string             `json:"user_id"`
	Score         float64            `json:"score"` // 0..1
	Level         Level              `json:"level"`
	Confidence    float64            `json:"confidence"`
	Factors       []Factor           `json:"factors"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
	Mode          string             `json:"mode"` // "local" or "oracle"
	CreatedAt     time.Time          `json:"created_at"`
}

// EmployeeRecord is the fallback input when no event history exists. All
// fields are optional; absent values default per the model rules.
type EmployeeRecord struct {
	EmployeeID           string   `json:"employee_id"`
	Name                 string   `json:"name"`
	WorkHoursPerWeek     *float64 `json:"work_hours_per_week,omitempty"`
	StressLevel          *float64 `json:"stress_level,omitempty"`            // 0-10
	SleepHours           *float64 `json:"sleep_hours,omitempty"`             // per night
	WorkLifeBalanceScore *float64 `json:"work_life_balance_score,omitempty"` // 0-10
	JobSatisfaction      *float64 `json:"job_satisfaction,omitempty"`        // 0-10
	PhysicalActivityHrs  *float64 `json:"physical_activity_hrs,omitempty"`   // per week
}

// OrgRelationship places a user in the reporting hierarchy. ManagerID is
// empty for users who report to no one.
type OrgRelationship struct {
	UserID    string    `json:"user_id"`
	Role      auth.Role `json:"role"`
	ManagerID string    `json:"manager_id,omitempty"`
}

// PersistedAssessment is the storage shape shared with the surrounding
// system: score on a 0-100 scale, factors and probabilities as maps.
type PersistedAssessment struct {
	UserID          string             `json:"user_id"`
	Score           int                `json:"score"` // 0-100
	Level           Level              `json:"level"`
	Confidence      float64            `json:"confidence"`
	RiskFactors     map[string]float64 `json:"risk_factors"`
	Trend           string             `json:"trend,omitempty"`
	Probabilities   map[string]float64 `json:"probabilities,omitempty"`
	Recommendations []Recommendation   `json:"recommendations,omitempty"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrPredictionUnavailable marks an oracle network or timeout failure.
	// Callers must opt into the local formula explicitly; the service never
	// substitutes it silently.
	ErrPredictionUnavailable = errors.New("prediction unavailable")
)

// Store is the persistence boundary for the scoring core.
type Store interface {
	GetOrgRelationship(ctx context.Context, userID string) (OrgRelationship, error)
	GetEmployeeRecord(ctx context.Context, userID string) (EmployeeRecord, error)
	ListEvents(ctx context.Context, userID string, from, to time.Time) ([]feature.RawEvent, error)
	ListMessages(ctx context.Context, userID string, from, to time.Time) ([]feature.RawMessage, error)
	SaveAssessment(ctx context.Context, a PersistedAssessment) error
	LatestAssessment(ctx context.Context, userID string) (PersistedAssessment, error)
}

// Prediction is the oracle response, passed through unchanged.
type Prediction struct {
	RiskLevel     string             `json:"riskLevel"`
	RiskScore     float64            `json:"riskScore"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Features      map[string]float64 `json:"features"`
}

// PredictionRequest is the oracle request body.
type PredictionRequest struct {
	EmployeeID string             `json:"employeeId"`
	Features   map[string]float64 `json:"features"`
	Metadata   PredictionMetadata `json:"metadata"`
}

// PredictionMetadata carries the identity context the oracle logs.
type PredictionMetadata struct {
	RequestedBy PredictionIdentity `json:"requestedBy"`
	User        PredictionRole     `json:"user"`
}

type PredictionIdentity struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type PredictionRole struct {
	Role string `json:"role"`
}

// Predictor is the oracle contract consumed by the service.
type Predictor interface {
	Predict(ctx context.Context, req PredictionRequest) (Prediction, error)
}

// MetricsProvider is implemented by oracles that expose an opaque
// metrics payload alongside predictions.
type MetricsProvider interface {
	Metrics(ctx context.Context) (json.RawMessage, error)
}
