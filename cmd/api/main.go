package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/auth"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/cache"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/httpapi"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/obs"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/risk"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/risk/oracle"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/store/pg"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/stream"
)

var version = "0.3.0"

func main() {
	obs.Init()

	addr := os.Getenv("BURNOUT_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// Postgres when a DSN is set; an in-memory store with the demo cohort
	// otherwise, so the service runs standalone in dev.
	var (
		store risk.Store
		probe httpapi.ReadyProbe
		creds map[string]httpapi.Credential
	)
	if dsn := os.Getenv("BURNOUT_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		store = demoStore()
		creds = demoCredentials()
		log.Print("BURNOUT_PG_DSN not set, using in-memory demo cohort")
	}

	var svcOpts []risk.ServiceOption
	if oracleURL := os.Getenv("BURNOUT_ORACLE_URL"); oracleURL != "" {
		oc, err := oracle.New(oracleURL)
		if err != nil {
			log.Fatalf("oracle client: %v", err)
		}
		svcOpts = append(svcOpts, risk.WithPredictor(oc))
	}
	svc, err := risk.NewService(store, svcOpts...)
	if err != nil {
		log.Fatalf("risk service: %v", err)
	}

	events := stream.New()
	if os.Getenv("BURNOUT_STREAM_DEMO") == "true" {
		stop := events.StartDemo(2 * time.Second)
		defer stop()
	}

	cached := cache.NewAssessmentCache(svc, cache.NewMemory(), 5*time.Minute,
		func(ctx context.Context, req risk.Requester, targetID string) error {
			_, err := svc.Authorize(ctx, req, targetID)
			return err
		})

	apiOpts := []httpapi.Option{
		httpapi.WithStream(events),
		httpapi.WithLatestReader(cached),
	}
	if creds != nil {
		apiOpts = append(apiOpts, httpapi.WithCredentials(creds))
	}
	api := httpapi.New(probe, version, svc, apiOpts...)

	handler := httpapi.Logging(
		httpapi.SecurityHeaders(
			httpapi.CORS(
				httpapi.RateLimit(
					httpapi.MaxBodyBytes(api.Handler(), 1<<20),
					50, 25))))

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // SSE connections stay open
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting burnout-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}

func demoStore() *risk.InMemory {
	store := risk.NewInMemory()
	store.PutRelationship(risk.OrgRelationship{UserID: "admin-1", Role: auth.RoleAdmin})
	store.PutRelationship(risk.OrgRelationship{UserID: "mgr-1", Role: auth.RoleManager, ManagerID: "admin-1"})
	store.PutRelationship(risk.OrgRelationship{UserID: "emp-1", Role: auth.RoleEmployee, ManagerID: "mgr-1"})
	store.PutRelationship(risk.OrgRelationship{UserID: "emp-2", Role: auth.RoleEmployee, ManagerID: "mgr-1"})

	store.PutEmployeeRecord(risk.EmployeeRecord{
		EmployeeID:           "emp-1",
		Name:                 "Dana Kim",
		WorkHoursPerWeek:     ptr(55),
		StressLevel:          ptr(8),
		SleepHours:           ptr(5),
		WorkLifeBalanceScore: ptr(3),
		JobSatisfaction:      ptr(4),
		PhysicalActivityHrs:  ptr(1),
	})
	store.PutEmployeeRecord(risk.EmployeeRecord{
		EmployeeID:           "emp-2",
		Name:                 "Alex Osei",
		WorkHoursPerWeek:     ptr(40),
		StressLevel:          ptr(4),
		SleepHours:           ptr(7.5),
		WorkLifeBalanceScore: ptr(7),
		JobSatisfaction:      ptr(8),
		PhysicalActivityHrs:  ptr(4),
	})
	store.PutEmployeeRecord(risk.EmployeeRecord{
		EmployeeID:           "mgr-1",
		Name:                 "Morgan Lee",
		WorkHoursPerWeek:     ptr(48),
		StressLevel:          ptr(6),
		SleepHours:           ptr(6.5),
		WorkLifeBalanceScore: ptr(5),
		JobSatisfaction:      ptr(6),
		PhysicalActivityHrs:  ptr(3),
	})
	return store
}

// demoCredentials gates token issuance for the demo cohort. One shared
// password keeps the demo easy to drive; roles still come from the
// credential, never from the request.
func demoCredentials() map[string]httpapi.Credential {
	password := os.Getenv("BURNOUT_DEMO_PASSWORD")
	if password == "" {
		password = "burnout-demo"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash demo password: %v", err)
	}
	return map[string]httpapi.Credential{
		"admin-1": {PasswordHash: hash, Role: auth.RoleAdmin},
		"mgr-1":   {PasswordHash: hash, Role: auth.RoleManager},
		"emp-1":   {PasswordHash: hash, Role: auth.RoleEmployee},
		"emp-2":   {PasswordHash: hash, Role: auth.RoleEmployee},
	}
}

func ptr(v float64) *float64 { return &v }
