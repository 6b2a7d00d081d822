package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Jmoney1214/liquormarketingagent/internal/db"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// PlanReader reads stored plans
type PlanReader interface {
	GetPlan(ctx context.Context, id uuid.UUID) (*types.CampaignPlan, error)
	ListPlans(ctx context.Context, limit int) ([]db.PlanSummary, error)
}

// handleListPlans returns the most recent stored plans
func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	if s.plans == nil {
		s.errorResponse(w, r, &ErrUnavailable{Feature: "plan storage"})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			s.errorResponse(w, r, &ErrValidation{Field: "limit", Message: "must be between 1 and 500"})
			return
		}
		limit = n
	}

	plans, err := s.plans.ListPlans(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if plans == nil {
		plans = []db.PlanSummary{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"plans": plans, "count": len(plans)})
}

// handleGetPlan returns one stored plan
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if s.plans == nil {
		s.errorResponse(w, r, &ErrUnavailable{Feature: "plan storage"})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	plan, err := s.plans.GetPlan(r.Context(), id)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, plan)
}
