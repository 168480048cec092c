package risk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/auth"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/feature"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/obs"
)

const defaultWindow = 14 * 24 * time.Hour

// Requester identifies who is asking. The HTTP layer fills it from the
// authenticated principal; the predicate in internal/auth decides.
type Requester struct {
	ID   string
	Role auth.Role
}

// EvalOptions selects the scoring mode for one evaluation.
type EvalOptions struct {
	// UseOracle routes scoring through the external prediction service.
	UseOracle bool
	// AllowLocalFallback lets an oracle failure fall back to the local
	// formula. Off by default: unavailability surfaces as
	// ErrPredictionUnavailable unless the caller opts in.
	AllowLocalFallback bool
}

// Result bundles everything one evaluation produces.
type Result struct {
	Assessment      Assessment       `json:"assessment"`
	Vector          feature.Vector   `json:"vector"`
	Inputs          Inputs           `json:"-"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Service orchestrates store, extractor, model and recommender behind the
// access predicate. All computation is per-request and stateless.
type Service struct {
	store  Store
	oracle Predictor
	window time.Duration
	now    func() time.Time
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithPredictor wires the external prediction oracle.
func WithPredictor(p Predictor) ServiceOption {
	return func(s *Service) { s.oracle = p }
}

// WithWindow overrides the extraction date range (default 14 days).
func WithWindow(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service over the given store.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("risk: store is required")
	}
	s := &Service{store: store, window: defaultWindow, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Authorize resolves the target's org relationship and runs the access
// predicate. Every entry point (fetch, detail, simulation) calls this
// before any computation so decisions stay identical across paths.
func (s *Service) Authorize(ctx context.Context, req Requester, targetID string) (OrgRelationship, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return OrgRelationship{}, fmt.Errorf("%w: target user id is required", ErrInvalidInput)
	}
	rel, err := s.store.GetOrgRelationship(ctx, targetID)
	if err != nil {
		return OrgRelationship{}, err
	}
	if err := auth.Authorize(req.ID, req.Role, targetID, rel.ManagerID); err != nil {
		obs.AccessDenials.Inc()
		return OrgRelationship{}, err
	}
	return rel, nil
}

// Evaluate computes a fresh assessment for the target, gated by the access
// predicate, and persists the result.
func (s *Service) Evaluate(ctx context.Context, req Requester, targetID string, opts EvalOptions) (Result, error) {
	if _, err := s.Authorize(ctx, req, targetID); err != nil {
		return Result{}, err
	}
	return s.evaluate(ctx, req, targetID, opts)
}

// BaselineInputs returns the model inputs for the target without scoring,
// gated by the access predicate. The simulation engine builds on this.
func (s *Service) BaselineInputs(ctx context.Context, req Requester, targetID string) (Inputs, error) {
	if _, err := s.Authorize(ctx, req, targetID); err != nil {
		return Inputs{}, err
	}
	in, _, err := s.gatherInputs(ctx, targetID)
	return in, err
}

// Latest returns the most recent persisted assessment, computing a fresh
// local one when none exists yet.
func (s *Service) Latest(ctx context.Context, req Requester, targetID string) (PersistedAssessment, error) {
	if _, err := s.Authorize(ctx, req, targetID); err != nil {
		return PersistedAssessment{}, err
	}
	stored, err := s.store.LatestAssessment(ctx, targetID)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return PersistedAssessment{}, err
	}
	res, err := s.evaluate(ctx, req, targetID, EvalOptions{})
	if err != nil {
		return PersistedAssessment{}, err
	}
	return toPersisted(res), nil
}

// OracleMetrics fetches the prediction oracle's opaque metrics payload.
// Admin only; the payload is passed through unmodified.
func (s *Service) OracleMetrics(ctx context.Context, req Requester) (json.RawMessage, error) {
	if req.Role != auth.RoleAdmin {
		obs.AccessDenials.Inc()
		return nil, auth.ErrAccessDenied
	}
	mp, ok := s.oracle.(MetricsProvider)
	if !ok {
		return nil, fmt.Errorf("%w: no prediction oracle configured", ErrPredictionUnavailable)
	}
	return mp.Metrics(ctx)
}

func (s *Service) evaluate(ctx context.Context, req Requester, targetID string, opts EvalOptions) (Result, error) {
	inputs, vec, err := s.gatherInputs(ctx, targetID)
	if err != nil {
		return Result{}, err
	}

	var assessment Assessment
	switch {
	case opts.UseOracle && s.oracle != nil:
		assessment, err = s.predictRemote(ctx, req, targetID, vec)
		if err != nil {
			obs.OracleFailures.Inc()
			if !opts.AllowLocalFallback {
				return Result{}, fmt.Errorf("%w: %v", ErrPredictionUnavailable, err)
			}
			assessment = Assess(targetID, inputs, s.now())
		}
	case opts.UseOracle:
		return Result{}, fmt.Errorf("%w: no oracle configured", ErrPredictionUnavailable)
	default:
		assessment = Assess(targetID, inputs, s.now())
	}

	recs := Recommend(assessment.Level, FactorMap(assessment.Factors), assessment.Probabilities)
	res := Result{
		Assessment:      assessment,
		Vector:          vec,
		Inputs:          inputs,
		Recommendations: recs,
	}

	obs.AssessmentsComputed.WithLabelValues(assessment.Mode, string(assessment.Level)).Inc()

	if err := s.store.SaveAssessment(ctx, toPersisted(res)); err != nil {
		// Assessments are derived state, recomputed per request; a failed
		// write is not fatal to the response.
		obs.Line("warn", "assessment persist failed", map[string]any{
			"user_id": targetID,
			"error":   err.Error(),
		})
	}
	return res, nil
}

// gatherInputs extracts features over the window and merges the employee
// record for the wellness inputs no calendar or mailbox can supply.
func (s *Service) gatherInputs(ctx context.Context, targetID string) (Inputs, feature.Vector, error) {
	to := s.now().UTC()
	from := to.Add(-s.window)

	events, err := s.store.ListEvents(ctx, targetID, from, to)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Inputs{}, feature.Vector{}, err
	}
	msgs, err := s.store.ListMessages(ctx, targetID, from, to)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Inputs{}, feature.Vector{}, err
	}

	rec, recErr := s.store.GetEmployeeRecord(ctx, targetID)
	if recErr != nil && !errors.Is(recErr, ErrNotFound) {
		return Inputs{}, feature.Vector{}, recErr
	}

	if len(events) == 0 && len(msgs) == 0 {
		// No behavioral history: employee-record path.
		return InputsFromRecord(rec), feature.Vector{}, nil
	}

	vec := feature.Extract(events, msgs, from, to)
	vec = vec.WithOverlay(recordOverlay(rec))
	days := int(s.window.Hours() / 24)
	inputs := InputsFromVector(vec, days).MergeRecord(rec)
	return inputs, vec, nil
}

func (s *Service) predictRemote(ctx context.Context, req Requester, targetID string, vec feature.Vector) (Assessment, error) {
	pred, err := s.oracle.Predict(ctx, PredictionRequest{
		EmployeeID: targetID,
		Features:   vec.NormalizedMap(),
		Metadata: PredictionMetadata{
			RequestedBy: PredictionIdentity{ID: req.ID, Role: string(req.Role)},
			User:        PredictionRole{Role: string(req.Role)},
		},
	})
	if err != nil {
		return Assessment{}, err
	}

	level := Level(strings.ToLower(strings.TrimSpace(pred.RiskLevel)))
	switch level {
	case LevelLow, LevelMedium, LevelHigh, LevelCritical:
	default:
		level = LevelForScore(pred.RiskScore)
	}

	factors := make([]Factor, 0, len(pred.Features))
	for name, value := range pred.Features {
		// Oracle features arrive normalized; present them on the 0-10
		// severity scale the recommender expects.
		factors = append(factors, Factor{Name: name, Value: clamp01Scale(value * 10)})
	}

	return Assessment{
		UserID:        targetID,
		Score:         clampUnit(pred.RiskScore),
		Level:         level,
		Confidence:    clampUnit(pred.Confidence),
		Factors:       factors,
		Probabilities: pred.Probabilities,
		Mode:          "oracle",
		CreatedAt:     s.now().UTC(),
	}, nil
}

// InputsFromVector rescales an extracted vector onto the model scales:
// weekly work hours from per-range totals, 0-5 stress onto 0-10, unit
// ratios onto 0-10. Wellness features left at zero by extraction keep
// their neutral defaults.
func InputsFromVector(v feature.Vector, days int) Inputs {
	if days <= 0 {
		days = 7
	}
	in := DefaultInputs()
	in.WorkHoursPerWeek = (v.WorkHours + v.OvertimeHours + v.WeekendWork) * 7 / float64(days)
	in.provided++
	if v.StressLevel > 0 {
		in.StressLevel = clamp01Scale(v.StressLevel * 2)
		in.provided++
	}
	in.WorkLifeBalance = clamp01Scale(v.WorkLifeBalance * 10)
	in.provided++
	if v.SleepQuality > 0 {
		in.SleepQuality = clamp01Scale(v.SleepQuality * 10)
		in.provided++
	}
	if v.ExerciseQuality > 0 {
		in.ExerciseFrequency = clamp01Scale(v.ExerciseQuality * 10)
		in.provided++
	}
	return in
}

// MergeRecord lets survey data fill the wellness inputs extraction cannot
// observe. Supplied record fields win over defaults.
func (in Inputs) MergeRecord(rec EmployeeRecord) Inputs {
	if rec.SleepHours != nil {
		in.SleepQuality = clamp01Scale(*rec.SleepHours)
		in.provided++
	}
	if rec.PhysicalActivityHrs != nil {
		in.ExerciseFrequency = clamp01Scale(*rec.PhysicalActivityHrs)
		in.provided++
	}
	if rec.JobSatisfaction != nil {
		in.JobSatisfaction = clamp01Scale(*rec.JobSatisfaction)
		in.provided++
	}
	return in
}

// recordOverlay maps 0-10 survey scales onto the vector's unit scales.
func recordOverlay(rec EmployeeRecord) feature.Overlay {
	var o feature.Overlay
	if rec.SleepHours != nil {
		v := clampUnit(*rec.SleepHours / 10)
		o.SleepQuality = &v
	}
	if rec.PhysicalActivityHrs != nil {
		v := clampUnit(*rec.PhysicalActivityHrs / 10)
		o.ExerciseQuality = &v
	}
	return o
}

func toPersisted(res Result) PersistedAssessment {
	a := res.Assessment
	return PersistedAssessment{
		UserID:          a.UserID,
		Score:           int(math.Round(a.Score * 100)),
		Level:           a.Level,
		Confidence:      a.Confidence,
		RiskFactors:     FactorMap(a.Factors),
		Probabilities:   a.Probabilities,
		Recommendations: res.Recommendations,
		UpdatedAt:       a.CreatedAt,
	}
}
