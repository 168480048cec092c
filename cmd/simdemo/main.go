// simdemo drives a running burnout-api with a stream of risk reads and
// what-if simulations over the demo cohort, then prints outcome counts.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var cohort = []string{"emp-1", "emp-2", "mgr-1"}

func main() {
	var (
		baseURL  = flag.String("base-url", "http://localhost:8080", "API base URL")
		workers  = flag.Int("workers", 4, "Concurrent worker count")
		duration = flag.Duration("duration", time.Minute, "Duration of the run")
		password = flag.String("password", "", "Demo cohort password (defaults to BURNOUT_DEMO_PASSWORD)")
	)
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("BURNOUT_DEMO_PASSWORD")
	}
	if *password == "" {
		*password = "burnout-demo"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("Launching sim demo: base=%s workers=%d duration=%s", *baseURL, *workers, *duration)

	token, err := issueToken(ctx, *baseURL, *password)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}

	var reads int64
	var simulations int64
	var failures int64
	var rateLimited int64
	var levelChanges int64

	var wg sync.WaitGroup
	deadline := time.Now().Add(*duration)

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id*9973)))
			for time.Now().Before(deadline) {
				select {
				case <-ctx.Done():
					return
				default:
				}

				user := cohort[rnd.Intn(len(cohort))]
				var resp *http.Response
				var err error
				simulated := false
				if rnd.Intn(3) == 0 {
					simulated = true
					resp, err = runSimulation(ctx, client, *baseURL, token, user, rnd, &levelChanges)
				} else {
					resp, err = readRisk(ctx, client, *baseURL, token, user, rnd.Intn(2) == 0)
				}
				if err != nil {
					log.Printf("worker %d: %v", id, err)
					atomic.AddInt64(&failures, 1)
					continue
				}
				if resp.StatusCode >= 300 {
					atomic.AddInt64(&failures, 1)
					if resp.StatusCode == http.StatusTooManyRequests {
						atomic.AddInt64(&rateLimited, 1)
						time.Sleep(250 * time.Millisecond)
					} else {
						log.Printf("worker %d: %s", id, resp.Status)
						time.Sleep(200 * time.Millisecond)
					}
					continue
				}
				if simulated {
					atomic.AddInt64(&simulations, 1)
				} else {
					atomic.AddInt64(&reads, 1)
				}
				time.Sleep(time.Duration(50+rnd.Intn(120)) * time.Millisecond)
			}
		}(i)
	}

	wg.Wait()

	log.Printf("Run complete: %d reads / %d simulations / %d failed (rate_limited=%d, level_changes=%d)",
		reads, simulations, failures, rateLimited, levelChanges)
}

func readRisk(ctx context.Context, client *http.Client, baseURL, token, user string, detail bool) (*http.Response, error) {
	path := fmt.Sprintf("%s/v1/users/%s/risk", baseURL, user)
	if detail {
		path += "/detail"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-Id", uuid.NewString())
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return resp, nil
}

func runSimulation(ctx context.Context, client *http.Client, baseURL, token, user string, rnd *rand.Rand, levelChanges *int64) (*http.Response, error) {
	overrides := map[string]any{}
	switch rnd.Intn(4) {
	case 0:
		overrides["sleep_hours"] = 6 + rnd.Float64()*3
	case 1:
		overrides["work_hours"] = 35 + rnd.Float64()*25
	case 2:
		overrides["stress_level"] = float64(rnd.Intn(11))
	default:
		overrides["meeting_hours"] = rnd.Float64() * 20
	}
	payload := map[string]any{
		"user_id":   user,
		"overrides": overrides,
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/simulations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		var out struct {
			LevelChanged bool `json:"level_changed"`
		}
		if json.NewDecoder(resp.Body).Decode(&out) == nil && out.LevelChanged {
			atomic.AddInt64(levelChanges, 1)
		}
	}
	return resp, nil
}

func issueToken(ctx context.Context, baseURL, password string) (string, error) {
	payload := map[string]any{
		"user":     "admin-1",
		"role":     "admin",
		"password": password,
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/auth/token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("token endpoint: %s", resp.Status)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("empty token returned")
	}
	return out.Token, nil
}
