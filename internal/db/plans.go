package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// PlanSummary is a stored plan without its sends
type PlanSummary struct {
	ID         uuid.UUID `json:"id"`
	Period     string    `json:"period"`
	Engine     string    `json:"engine"`
	SendsCount int       `json:"sends_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// SavePlan stores a plan and returns its ID. A plan that already carries a
// UUID keeps it; otherwise the database assigns one.
func (db *DB) SavePlan(ctx context.Context, plan types.CampaignPlan) (uuid.UUID, error) {
	content, err := json.Marshal(plan)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal plan: %w", err)
	}

	var id uuid.UUID
	if parsed, parseErr := uuid.Parse(plan.ID); parseErr == nil {
		err = db.pool.QueryRow(ctx,
			`INSERT INTO campaign_plans (id, period, engine, sends_count, plan)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET period = $2, engine = $3, sends_count = $4, plan = $5
			 RETURNING id`,
			parsed, plan.Period, string(plan.Engine), len(plan.Sends), content,
		).Scan(&id)
	} else {
		err = db.pool.QueryRow(ctx,
			`INSERT INTO campaign_plans (period, engine, sends_count, plan)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			plan.Period, string(plan.Engine), len(plan.Sends), content,
		).Scan(&id)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save plan: %w", err)
	}
	return id, nil
}

// GetPlan loads a stored plan by ID
func (db *DB) GetPlan(ctx context.Context, id uuid.UUID) (*types.CampaignPlan, error) {
	var content []byte
	err := db.pool.QueryRow(ctx, `SELECT plan FROM campaign_plans WHERE id = $1`, id).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	var plan types.CampaignPlan
	if err := json.Unmarshal(content, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	plan.ID = id.String()
	return &plan, nil
}

// ListPlans returns the most recent plans, newest first
func (db *DB) ListPlans(ctx context.Context, limit int) ([]PlanSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, period, engine, sends_count, created_at
		 FROM campaign_plans ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []PlanSummary
	for rows.Next() {
		var p PlanSummary
		if err := rows.Scan(&p.ID, &p.Period, &p.Engine, &p.SendsCount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
