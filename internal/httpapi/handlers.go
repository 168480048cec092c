// Package httpapi is the HTTP surface over the risk service: assessment
// reads, what-if simulations, token issuance and the live event stream.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/audit"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/obs"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/risk"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/sim"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/stream"
)

// ReadyProbe checks readiness, e.g. pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// LatestReader serves stored assessments; either the risk service itself
// or its caching decorator.
type LatestReader interface {
	Latest(ctx context.Context, req risk.Requester, targetID string) (risk.PersistedAssessment, error)
}

// latestInvalidator is the optional cache surface of a LatestReader. A
// fresh evaluation persists a new score, so a cached copy must be dropped
// or plain reads keep serving the stale one until the TTL runs out.
type latestInvalidator interface {
	Invalidate(ctx context.Context, targetID string)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	svc    *risk.Service
	engine *sim.Engine
	latest LatestReader
	stream *stream.Stream
	creds  map[string]Credential
}

// Option configures optional API collaborators.
type Option func(*API)

// WithStream enables the SSE assessment feed.
func WithStream(s *stream.Stream) Option {
	return func(a *API) { a.stream = s }
}

// WithCredentials turns the token endpoint into a password-verified login
// against the given credential store. Without it the endpoint issues any
// requested role unauthenticated, which is only acceptable for demos.
func WithCredentials(creds map[string]Credential) Option {
	return func(a *API) { a.creds = creds }
}

// WithLatestReader swaps the stored-assessment reader, typically for the
// caching decorator.
func WithLatestReader(lr LatestReader) Option {
	return func(a *API) {
		if lr != nil {
			a.latest = lr
		}
	}
}

func New(rp ReadyProbe, version string, svc *risk.Service, opts ...Option) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		svc:        svc,
		engine:     sim.New(svc),
		latest:     svc,
	}
	for _, opt := range opts {
		opt(a)
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// auth
	a.mux.HandleFunc("/v1/auth/token", a.handleAuthToken)

	// risk + simulations
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)
	a.mux.HandleFunc("/v1/simulations", a.handleSimulations)
	a.mux.HandleFunc("/v1/oracle/metrics", a.handleOracleMetrics)

	// live assessment feed
	a.mux.HandleFunc("/v1/stream/assessments", a.Stream)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full http.Handler: mux wrapped with authentication
// and request metrics.
func (a *API) Handler() http.Handler {
	return obs.Instrument(RequestID(a.withAuth(a.mux)))
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "burnout-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "burnout-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := audit.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
