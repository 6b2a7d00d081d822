package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Jmoney1214/liquormarketingagent/internal/db"
	"github.com/Jmoney1214/liquormarketingagent/internal/pipeline"
	"github.com/Jmoney1214/liquormarketingagent/internal/planning"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// GenerateCampaignRequest is the body of POST /api/v1/campaigns/generate
type GenerateCampaignRequest struct {
	TargetSegments []string `json:"target_segments" validate:"required,min=1,dive,required"`
	StartDate      string   `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DurationDays   *int     `json:"duration_days,omitempty" validate:"omitnil,min=1,max=30"`
	Objective      string   `json:"objective,omitempty" validate:"max=2000"`
	UseAI          *bool    `json:"use_ai,omitempty"`
	MaxActions     *int     `json:"max_actions,omitempty" validate:"omitnil,min=1,max=1000"`
}

// AnalyzeCampaignRequest is the body of POST /api/v1/campaigns/analyze
type AnalyzeCampaignRequest struct {
	Plan    *types.CampaignPlan   `json:"plan" validate:"required"`
	Results types.CampaignResults `json:"results"`
}

// pipelineOptions turns a validated request into pipeline options
func (s *Server) pipelineOptions(req GenerateCampaignRequest) pipeline.Options {
	start := s.now().UTC()
	if req.StartDate != "" {
		// Already checked by the datetime validator.
		start, _ = time.Parse(planning.DateLayout, req.StartDate)
	}
	days := planning.DefaultDurationDays
	if req.DurationDays != nil {
		days = *req.DurationDays
	}
	maxActions := s.maxActions
	if req.MaxActions != nil {
		maxActions = *req.MaxActions
	}
	useAI := true
	if req.UseAI != nil {
		useAI = *req.UseAI
	}

	return pipeline.Options{
		Customers:    s.customers,
		Filter:       db.CustomerFilter{Segments: req.TargetSegments},
		MaxActions:   maxActions,
		StartDate:    start,
		DurationDays: days,
		Objective:    req.Objective,
		UseAI:        useAI,
		DocSources:   s.docSources,
		Docs:         s.docs,
		Planner:      s.planner,
		Store:        s.plans,
		Logger:       s.logger,
	}
}

// handleGenerateCampaign ranks the target segments and returns a campaign plan
func (s *Server) handleGenerateCampaign(w http.ResponseWriter, r *http.Request) {
	var req GenerateCampaignRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	result, err := pipeline.Run(r.Context(), s.pipelineOptions(req))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result.Plan)
}

// handleGenerateCampaignStream runs the same generation and streams progress via SSE
func (s *Server) handleGenerateCampaignStream(w http.ResponseWriter, r *http.Request) {
	var req GenerateCampaignRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	opts := s.pipelineOptions(req)
	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if event.Step == pipeline.StepPlanCampaign {
			// The plan goes out once, in the complete event.
			event.Content = nil
		}
		if err := sse.WriteEvent("step", event); err != nil {
			s.logger.Warn("error writing SSE event", "error", err)
		}
	}

	result, err := pipeline.Run(r.Context(), opts)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	if err := sse.WriteEvent("complete", result.Plan); err != nil {
		s.logger.Warn("error writing SSE event", "error", err)
	}
}

// handleAnalyzeCampaign computes performance metrics for an executed plan
func (s *Server) handleAnalyzeCampaign(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeCampaignRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := checkResults(req.Results); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, planning.AnalyzePerformance(*req.Plan, req.Results))
}

func checkResults(res types.CampaignResults) error {
	counts := map[string]int{"opens": res.Opens, "clicks": res.Clicks, "conversions": res.Conversions}
	for _, field := range []string{"opens", "clicks", "conversions"} {
		if counts[field] < 0 {
			return &ErrValidation{Field: "results." + field, Message: "must not be negative"}
		}
	}
	if res.Revenue < 0 {
		return &ErrValidation{Field: "results.revenue", Message: fmt.Sprintf("must not be negative, got %.2f", res.Revenue)}
	}
	return nil
}
