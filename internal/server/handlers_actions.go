package server

import (
	"net/http"
	"time"

	"github.com/Jmoney1214/liquormarketingagent/internal/db"
	"github.com/Jmoney1214/liquormarketingagent/internal/scoring"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// GenerateActionsRequest is the body of POST /api/v1/actions/generate
type GenerateActionsRequest struct {
	Segments  []string `json:"segments,omitempty" validate:"omitempty,dive,required"`
	ChurnRisk string   `json:"churn_risk,omitempty" validate:"omitempty,max=50"`
	Limit     *int     `json:"limit,omitempty" validate:"omitnil,min=1,max=1000"`
}

// handleGenerateActions ranks stored customers and returns the top actions
func (s *Server) handleGenerateActions(w http.ResponseWriter, r *http.Request) {
	var req GenerateActionsRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	limit := s.maxActions
	if req.Limit != nil {
		limit = *req.Limit
	}

	customers, err := s.customers.ListCustomers(r.Context(), db.CustomerFilter{
		Segments:  req.Segments,
		ChurnRisk: req.ChurnRisk,
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	actions, err := scoring.RankAndGenerateActions(r.Context(), customers, limit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.ActionSet{
		GeneratedAt:  s.now().UTC().Format(time.RFC3339),
		ActionsCount: len(actions),
		Actions:      actions,
	})
}
