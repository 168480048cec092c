// Package pg implements the risk store on PostgreSQL via database/sql
// and the pgx driver.
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/auth"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/feature"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/risk"
)

type Store struct {
	db *sql.DB
}

var _ risk.Store = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing pool, used by tests and the migrator.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) GetOrgRelationship(ctx context.Context, userID string) (risk.OrgRelationship, error) {
	var rel risk.OrgRelationship
	var role string
	var manager sql.NullString
	err := s.db.QueryRowContext(ctx, `
		select user_id, role, manager_id
		from org_relationships where user_id=$1
	`, userID).Scan(&rel.UserID, &role, &manager)
	if errors.Is(err, sql.ErrNoRows) {
		return risk.OrgRelationship{}, risk.ErrNotFound
	}
	if err != nil {
		return risk.OrgRelationship{}, err
	}
	parsed, err := auth.ParseRole(role)
	if err != nil {
		return risk.OrgRelationship{}, fmt.Errorf("org_relationships.role for %s: %w", userID, err)
	}
	rel.Role = parsed
	if manager.Valid {
		rel.ManagerID = manager.String
	}
	return rel, nil
}

func (s *Store) GetEmployeeRecord(ctx context.Context, userID string) (risk.EmployeeRecord, error) {
	var rec risk.EmployeeRecord
	err := s.db.QueryRowContext(ctx, `
		select employee_id, name, work_hours_per_week, stress_level, sleep_hours,
		       work_life_balance_score, job_satisfaction, physical_activity_hrs
		from employee_records where employee_id=$1
	`, userID).Scan(&rec.EmployeeID, &rec.Name, &rec.WorkHoursPerWeek, &rec.StressLevel,
		&rec.SleepHours, &rec.WorkLifeBalanceScore, &rec.JobSatisfaction, &rec.PhysicalActivityHrs)
	if errors.Is(err, sql.ErrNoRows) {
		return risk.EmployeeRecord{}, risk.ErrNotFound
	}
	if err != nil {
		return risk.EmployeeRecord{}, err
	}
	return rec, nil
}

func (s *Store) ListEvents(ctx context.Context, userID string, from, to time.Time) ([]feature.RawEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, start_at, end_at, category, virtual, stress_rating, workload_rating
		from raw_events
		where user_id=$1 and start_at >= $2 and start_at < $3
		order by start_at asc
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []feature.RawEvent
	for rows.Next() {
		var ev feature.RawEvent
		var cat string
		if err := rows.Scan(&ev.ID, &ev.Start, &ev.End, &cat, &ev.Virtual, &ev.StressRating, &ev.WorkloadRating); err != nil {
			return nil, err
		}
		ev.Category = feature.EventCategory(cat)
		res = append(res, ev)
	}
	return res, rows.Err()
}

func (s *Store) ListMessages(ctx context.Context, userID string, from, to time.Time) ([]feature.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, ts, direction, subject, coalesce(body,''), word_count,
		       sentiment, emotion_tags, response_latency_ms
		from raw_messages
		where user_id=$1 and ts >= $2 and ts < $3
		order by ts asc
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []feature.RawMessage
	for rows.Next() {
		var msg feature.RawMessage
		var dir string
		var sentiment sql.NullFloat64
		var tags []byte
		var latencyMs int64
		if err := rows.Scan(&msg.ID, &msg.Timestamp, &dir, &msg.Subject, &msg.Body,
			&msg.WordCount, &sentiment, &tags, &latencyMs); err != nil {
			return nil, err
		}
		msg.Direction = feature.Direction(dir)
		if sentiment.Valid {
			v := sentiment.Float64
			msg.Sentiment = &v
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &msg.EmotionTags); err != nil {
				return nil, fmt.Errorf("raw_messages.emotion_tags for %s: %w", msg.ID, err)
			}
		}
		msg.ResponseLatency = time.Duration(latencyMs) * time.Millisecond
		res = append(res, msg)
	}
	return res, rows.Err()
}

func (s *Store) SaveAssessment(ctx context.Context, a risk.PersistedAssessment) error {
	factors, err := json.Marshal(a.RiskFactors)
	if err != nil {
		return err
	}
	probs, err := json.Marshal(a.Probabilities)
	if err != nil {
		return err
	}
	recs, err := json.Marshal(a.Recommendations)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into assessments(user_id, score, level, confidence, risk_factors, trend, probabilities, recommendations, updated_at)
		values ($1,$2,$3,$4,$5,nullif($6,''),$7,$8,$9)
		on conflict (user_id) do update set
			score=excluded.score,
			level=excluded.level,
			confidence=excluded.confidence,
			risk_factors=excluded.risk_factors,
			trend=excluded.trend,
			probabilities=excluded.probabilities,
			recommendations=excluded.recommendations,
			updated_at=excluded.updated_at
	`, a.UserID, a.Score, string(a.Level), a.Confidence, factors, a.Trend, probs, recs, a.UpdatedAt)
	return err
}

func (s *Store) LatestAssessment(ctx context.Context, userID string) (risk.PersistedAssessment, error) {
	var a risk.PersistedAssessment
	var factors, probs, recs []byte
	err := s.db.QueryRowContext(ctx, `
		select user_id, score, level, confidence, risk_factors, coalesce(trend,''), probabilities, recommendations, updated_at
		from assessments where user_id=$1
	`, userID).Scan(&a.UserID, &a.Score, &a.Level, &a.Confidence, &factors, &a.Trend, &probs, &recs, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return risk.PersistedAssessment{}, risk.ErrNotFound
	}
	if err != nil {
		return risk.PersistedAssessment{}, err
	}
	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &a.RiskFactors); err != nil {
			return risk.PersistedAssessment{}, err
		}
	}
	if len(probs) > 0 {
		if err := json.Unmarshal(probs, &a.Probabilities); err != nil {
			return risk.PersistedAssessment{}, err
		}
	}
	if len(recs) > 0 {
		if err := json.Unmarshal(recs, &a.Recommendations); err != nil {
			return risk.PersistedAssessment{}, err
		}
	}
	return a, nil
}
