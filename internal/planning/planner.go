package planning

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Jmoney1214/liquormarketingagent/internal/prompts"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// Planner defaults
const (
	DefaultTimeout      = 60 * time.Second
	DefaultDurationDays = 7
)

// PlanRequest is what an AI planner receives
type PlanRequest struct {
	SystemPrompt string
	Objective    string
	ContextDocs  []types.ContextDoc
	Actions      []types.Action
	StartDate    string
	DurationDays int
}

// AIPlanner obtains a campaign plan from an external model.
// Implementations report every failure through the Result instead of panicking.
type AIPlanner interface {
	Plan(ctx context.Context, req PlanRequest) Result
}

// Config holds planner settings passed in explicitly by the caller
type Config struct {
	Timeout          time.Duration
	SystemPrompt     string
	DefaultObjective string
}

// DefaultConfig returns the planner defaults, with prompts from planning.json
func DefaultConfig() Config {
	return Config{
		Timeout:          DefaultTimeout,
		SystemPrompt:     prompts.MustGet("planning.json", "system"),
		DefaultObjective: prompts.MustGet("planning.json", "default-objective"),
	}
}

// GenerateRequest describes one plan generation
type GenerateRequest struct {
	Actions      []types.Action
	StartDate    time.Time
	DurationDays int
	Objective    string
	ContextDocs  []types.ContextDoc
	UseAI        bool
}

// Planner produces campaign plans. A nil AI planner means no credential is
// configured, and every AI request goes straight to the heuristic.
type Planner struct {
	config Config
	ai     AIPlanner
	logger *slog.Logger
}

// NewPlanner creates a planner. ai may be nil; logger defaults to slog.Default().
func NewPlanner(cfg Config, ai AIPlanner, logger *slog.Logger) *Planner {
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaults.SystemPrompt
	}
	if cfg.DefaultObjective == "" {
		cfg.DefaultObjective = defaults.DefaultObjective
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{config: cfg, ai: ai, logger: logger}
}

// Generate runs the plan state machine:
// REQUEST -> (use_ai ? TRY_LLM -> LLM_PLAN | HEURISTIC_PLAN : HEURISTIC_PLAN).
func (p *Planner) Generate(ctx context.Context, req GenerateRequest) types.CampaignPlan {
	if !req.UseAI {
		return HeuristicPlan(req.Actions, req.StartDate, req.DurationDays)
	}
	return p.GenerateAIPlan(ctx, req.Actions, req.StartDate, req.DurationDays, req.Objective, req.ContextDocs)
}

// GenerateAIPlan makes a single AI planning attempt bounded by the configured
// timeout and falls back to the heuristic plan on any failure. The returned
// plan's engine tag reflects the path that actually produced it.
func (p *Planner) GenerateAIPlan(ctx context.Context, actions []types.Action, start time.Time, durationDays int, objective string, docs []types.ContextDoc) types.CampaignPlan {
	if objective == "" {
		objective = p.config.DefaultObjective
	}

	days := CampaignDays(start, durationDays)
	result := p.attempt(ctx, PlanRequest{
		SystemPrompt: p.config.SystemPrompt,
		Objective:    objective,
		ContextDocs:  docs,
		Actions:      actions,
		StartDate:    days[0],
		DurationDays: len(days),
	})

	if result.IsOk() {
		plan := *result.Plan
		plan.Engine = types.EngineLLM
		p.logger.Info("campaign plan generated", "engine", plan.Engine, "sends", len(plan.Sends))
		return plan
	}

	if result.Failure.Kind == FailureMissingCredential {
		p.logger.Info("ai planning skipped, using heuristic plan", "reason", result.Failure.Kind)
	} else {
		p.logger.Warn("ai planning failed, using heuristic plan", "reason", result.Failure.Kind, "error", result.Failure.Cause)
	}
	return HeuristicPlan(actions, start, durationDays)
}

// attempt performs the AI call on its own goroutine so that a timeout or
// cancellation returns immediately. A late result is discarded.
func (p *Planner) attempt(ctx context.Context, req PlanRequest) Result {
	if p.ai == nil {
		return Err(FailureMissingCredential, nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		done <- p.ai.Plan(callCtx, req)
	}()

	select {
	case result := <-done:
		return checkResult(result)
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return Err(FailureTimeout, callCtx.Err())
		}
		return Err(FailureCallFailed, callCtx.Err())
	}
}

// checkResult enforces the only structural guarantee made for AI plans: a sends list.
func checkResult(result Result) Result {
	if result.Failure != nil {
		return result
	}
	if result.Plan == nil {
		return Err(FailureInvalidResponse, errors.New("planner returned neither plan nor failure"))
	}
	if result.Plan.Sends == nil {
		return Err(FailureInvalidResponse, errors.New("plan has no sends list"))
	}
	return result
}
