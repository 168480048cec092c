package httpapi

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/audit"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/auth"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/risk"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/sim"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/stream"
)

type riskSummaryResponse struct {
	UserID     string     `json:"user_id"`
	Score      int        `json:"score"` // 0-100
	Level      risk.Level `json:"level"`
	Confidence float64    `json:"confidence"`
	Trend      string     `json:"trend,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type simulationRequest struct {
	UserID    string        `json:"user_id"`
	Overrides sim.Overrides `json:"overrides"`
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/users/")

	var id string
	var detail bool
	switch {
	case strings.HasSuffix(path, "/risk/detail"):
		id = strings.TrimSuffix(path, "/risk/detail")
		detail = true
	case strings.HasSuffix(path, "/risk"):
		id = strings.TrimSuffix(path, "/risk")
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	if detail {
		a.getRiskDetail(w, r, id)
		return
	}
	a.getRiskSummary(w, r, id)
}

func (a *API) getRiskSummary(w http.ResponseWriter, r *http.Request, targetID string) {
	req, err := requesterFromContext(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	opts, refresh, err := evalOptions(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	a.auditRead(r, req, targetID, "risk.assessment.read", refresh)

	// Oracle mode always computes; stored scores carry no mode marker.
	if refresh || opts.UseOracle {
		res, err := a.svc.Evaluate(r.Context(), req, targetID, opts)
		if err != nil {
			handleRiskError(w, r, err)
			return
		}
		a.invalidateLatest(r.Context(), targetID)
		a.publishAssessment(res.Assessment, 0, "evaluation")
		writeJSON(w, http.StatusOK, summaryFromAssessment(res.Assessment))
		return
	}

	stored, err := a.latest.Latest(r.Context(), req, targetID)
	if err != nil {
		handleRiskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryFromPersisted(stored))
}

func (a *API) getRiskDetail(w http.ResponseWriter, r *http.Request, targetID string) {
	req, err := requesterFromContext(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	opts, _, err := evalOptions(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	a.auditRead(r, req, targetID, "risk.assessment.detail", true)

	res, err := a.svc.Evaluate(r.Context(), req, targetID, opts)
	if err != nil {
		handleRiskError(w, r, err)
		return
	}
	a.invalidateLatest(r.Context(), targetID)
	a.publishAssessment(res.Assessment, 0, "evaluation")
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleSimulations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	req, err := requesterFromContext(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	var body simulationRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	targetID := strings.TrimSpace(body.UserID)
	if targetID == "" {
		writeError(w, r, http.StatusBadRequest, "user_id is required")
		return
	}

	res, err := a.engine.Run(r.Context(), req, targetID, body.Overrides)
	if err != nil {
		handleRiskError(w, r, err)
		return
	}

	a.publishAssessment(res.Adjusted, res.Delta, "simulation")
	_ = audit.LogEvent(r.Context(), "risk.simulation.run", map[string]any{
		"target": targetID,
		"delta":  res.Delta,
		"level":  string(res.Adjusted.Level),
	})

	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleOracleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	req, err := requesterFromContext(r)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	payload, err := a.svc.OracleMetrics(r.Context(), req)
	if err != nil {
		handleRiskError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (a *API) invalidateLatest(ctx context.Context, targetID string) {
	if inv, ok := a.latest.(latestInvalidator); ok {
		inv.Invalidate(ctx, targetID)
	}
}

func (a *API) auditRead(r *http.Request, req risk.Requester, targetID, event string, refresh bool) {
	// Self reads are routine; only cross-identity access is audited.
	if req.ID == targetID {
		return
	}
	_ = audit.LogEvent(r.Context(), event, map[string]any{
		"target":  targetID,
		"refresh": refresh,
	})
}

func (a *API) publishAssessment(as risk.Assessment, delta float64, source string) {
	if a.stream == nil {
		return
	}
	a.stream.Publish(stream.AssessmentEvent{
		UserID:    as.UserID,
		Score:     as.Score,
		Level:     as.Level,
		Delta:     delta,
		Source:    source,
		Timestamp: time.Now().UTC(),
	})
}

func requesterFromContext(r *http.Request) (risk.Requester, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return risk.Requester{}, errors.New("authentication required")
	}
	role, _ := auth.RoleFromContext(r.Context())
	return risk.Requester{ID: userID, Role: role}, nil
}

func evalOptions(q url.Values) (risk.EvalOptions, bool, error) {
	var opts risk.EvalOptions
	switch mode := strings.TrimSpace(q.Get("mode")); mode {
	case "", "local":
	case "oracle":
		opts.UseOracle = true
	default:
		return opts, false, errors.New("mode must be local or oracle")
	}
	switch fb := strings.TrimSpace(q.Get("fallback")); fb {
	case "":
	case "local":
		if !opts.UseOracle {
			return opts, false, errors.New("fallback requires mode=oracle")
		}
		opts.AllowLocalFallback = true
	default:
		return opts, false, errors.New("fallback must be local")
	}
	refresh := q.Get("refresh") == "true"
	return opts, refresh, nil
}

func summaryFromAssessment(as risk.Assessment) riskSummaryResponse {
	return riskSummaryResponse{
		UserID:     as.UserID,
		Score:      int(math.Round(as.Score * 100)),
		Level:      as.Level,
		Confidence: as.Confidence,
		UpdatedAt:  as.CreatedAt,
	}
}

func summaryFromPersisted(stored risk.PersistedAssessment) riskSummaryResponse {
	// The stored level was derived from the unrounded score; recomputing
	// it from the rounded 0-100 value can flip the band at a boundary.
	level := stored.Level
	if level == "" {
		level = risk.LevelForScore(float64(stored.Score) / 100)
	}
	return riskSummaryResponse{
		UserID:     stored.UserID,
		Score:      stored.Score,
		Level:      level,
		Confidence: stored.Confidence,
		Trend:      stored.Trend,
		UpdatedAt:  stored.UpdatedAt,
	}
}

func handleRiskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrAccessDenied):
		writeError(w, r, http.StatusForbidden, "access denied")
	case errors.Is(err, risk.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "user not found")
	case errors.Is(err, risk.ErrInvalidInput), errors.Is(err, auth.ErrUnknownRole):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, risk.ErrPredictionUnavailable):
		writeError(w, r, http.StatusBadGateway, "prediction service unavailable")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
