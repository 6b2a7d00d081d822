// Package pipeline provides the high-level orchestration for campaign generation.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Jmoney1214/liquormarketingagent/internal/customer"
	"github.com/Jmoney1214/liquormarketingagent/internal/db"
	"github.com/Jmoney1214/liquormarketingagent/internal/observability"
	"github.com/Jmoney1214/liquormarketingagent/internal/planning"
	"github.com/Jmoney1214/liquormarketingagent/internal/scoring"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// Step names reported in progress events
const (
	StepLoadCustomers = "load_customers"
	StepRankActions   = "rank_actions"
	StepLoadDocs      = "load_docs"
	StepPlanCampaign  = "plan_campaign"
	StepSavePlan      = "save_plan"
	StepPublishPlan   = "publish_plan"
)

// DefaultMaxActions is the ranking limit used when Options.MaxActions is unset
const DefaultMaxActions = 300

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// CustomerSource lists stored customers
type CustomerSource interface {
	ListCustomers(ctx context.Context, filter db.CustomerFilter) ([]types.CustomerRecord, error)
}

// DocLoader loads context documents for the AI planner
type DocLoader interface {
	Load(ctx context.Context, sources []string) []types.ContextDoc
}

// PlanStore persists generated plans
type PlanStore interface {
	SavePlan(ctx context.Context, plan types.CampaignPlan) (uuid.UUID, error)
}

// PlanPublisher hands plan sends to downstream delivery
type PlanPublisher interface {
	PublishPlan(ctx context.Context, plan types.CampaignPlan) (int, error)
}

// Options holds configuration for one pipeline run
type Options struct {
	// CustomersPath is a customer JSON file. When empty, Customers is queried.
	CustomersPath string
	Customers     CustomerSource
	Filter        db.CustomerFilter
	MaxActions    int

	StartDate    time.Time
	DurationDays int
	Objective    string
	UseAI        bool
	DocSources   []string
	Docs         DocLoader
	Planner      *planning.Planner

	// Optional sinks; failures are logged and do not fail the run.
	Store     PlanStore
	Publisher PlanPublisher

	Verbose    bool
	Out        io.Writer
	Logger     *slog.Logger
	OnProgress ProgressCallback
}

// Result holds the outputs of a pipeline run
type Result struct {
	Actions   []types.Action
	Plan      types.CampaignPlan
	Published int
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *Options, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Run loads customers, ranks them into actions and turns the actions into a
// campaign plan. Customer ranking and playbook loading run concurrently.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Planner == nil {
		return nil, fmt.Errorf("pipeline requires a planner")
	}
	if opts.CustomersPath == "" && opts.Customers == nil {
		return nil, fmt.Errorf("pipeline requires a customers file or customer source")
	}
	if opts.MaxActions <= 0 {
		opts.MaxActions = DefaultMaxActions
	}
	if opts.DurationDays <= 0 {
		opts.DurationDays = planning.DefaultDurationDays
	}
	if opts.StartDate.IsZero() {
		opts.StartDate = time.Now().UTC()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	opts.Out = &lockedWriter{w: opts.Out}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if cb := opts.OnProgress; cb != nil {
		var progressMu sync.Mutex
		opts.OnProgress = func(event ProgressEvent) {
			progressMu.Lock()
			defer progressMu.Unlock()
			cb(event)
		}
	}
	printer := observability.NewPrinter(opts.Out)

	g, gCtx := errgroup.WithContext(ctx)

	var actions []types.Action
	var docs []types.ContextDoc
	var mu sync.Mutex

	g.Go(func() error {
		result, err := rankBranch(gCtx, &opts)
		if err != nil {
			return err
		}
		mu.Lock()
		actions = result
		mu.Unlock()
		return nil
	})

	if opts.UseAI && opts.Docs != nil && len(opts.DocSources) > 0 {
		g.Go(func() error {
			fmt.Fprintf(opts.Out, "Loading %d playbook(s)...\n", len(opts.DocSources)) //nolint:errcheck
			loaded := opts.Docs.Load(gCtx, opts.DocSources)
			emitProgress(&opts, StepLoadDocs, fmt.Sprintf("Loaded %d of %d playbooks", len(loaded), len(opts.DocSources)), nil)
			mu.Lock()
			docs = loaded
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if opts.Verbose {
		printer.PrintActions(actions)
	}

	engine := "heuristic"
	if opts.UseAI {
		engine = "AI"
	}
	fmt.Fprintf(opts.Out, "Planning %d-day campaign (%s)...\n", opts.DurationDays, engine) //nolint:errcheck
	plan := opts.Planner.Generate(ctx, planning.GenerateRequest{
		Actions:      actions,
		StartDate:    opts.StartDate,
		DurationDays: opts.DurationDays,
		Objective:    opts.Objective,
		ContextDocs:  docs,
		UseAI:        opts.UseAI,
	})
	plan.ID = uuid.NewString()
	if opts.Verbose {
		printer.PrintPlan(&plan)
	}
	emitProgress(&opts, StepPlanCampaign,
		fmt.Sprintf("Planned %d sends over %s (%s)", len(plan.Sends), plan.Period, plan.Engine), plan)

	result := &Result{Actions: actions, Plan: plan}

	if opts.Store != nil {
		if _, err := opts.Store.SavePlan(ctx, plan); err != nil {
			opts.Logger.Warn("failed to save plan", "plan_id", plan.ID, "error", err)
		} else {
			emitProgress(&opts, StepSavePlan, "Saved plan "+plan.ID, nil)
		}
	}

	if opts.Publisher != nil {
		n, err := opts.Publisher.PublishPlan(ctx, plan)
		result.Published = n
		if err != nil {
			opts.Logger.Warn("failed to publish plan", "plan_id", plan.ID, "published", n, "error", err)
		} else {
			fmt.Fprintf(opts.Out, "Published %d sends\n", n) //nolint:errcheck
			emitProgress(&opts, StepPublishPlan, fmt.Sprintf("Published %d sends", n), nil)
		}
	}

	return result, nil
}

// rankBranch loads customers and ranks them into actions
func rankBranch(ctx context.Context, opts *Options) ([]types.Action, error) {
	var customers []types.CustomerRecord
	var err error

	if opts.CustomersPath != "" {
		fmt.Fprintf(opts.Out, "Loading customers from %s...\n", opts.CustomersPath) //nolint:errcheck
		customers, err = customer.LoadFile(opts.CustomersPath)
		if err != nil {
			return nil, fmt.Errorf("loading customers failed: %w", err)
		}
		customers = FilterCustomers(customers, opts.Filter)
	} else {
		fmt.Fprintf(opts.Out, "Loading customers from database...\n") //nolint:errcheck
		customers, err = opts.Customers.ListCustomers(ctx, opts.Filter)
		if err != nil {
			return nil, fmt.Errorf("loading customers failed: %w", err)
		}
	}
	emitProgress(opts, StepLoadCustomers, fmt.Sprintf("Loaded %d customers", len(customers)), nil)

	fmt.Fprintf(opts.Out, "Ranking %d customers...\n", len(customers)) //nolint:errcheck
	actions, err := scoring.RankAndGenerateActions(ctx, customers, opts.MaxActions)
	if err != nil {
		return nil, fmt.Errorf("ranking customers failed: %w", err)
	}
	emitProgress(opts, StepRankActions, fmt.Sprintf("Generated %d actions", len(actions)), nil)

	return actions, nil
}

// FilterCustomers applies a store filter to customers already in memory.
// Segment matching is exact; churn risk matching ignores case.
func FilterCustomers(customers []types.CustomerRecord, filter db.CustomerFilter) []types.CustomerRecord {
	risk := strings.ToLower(strings.TrimSpace(filter.ChurnRisk))
	if len(filter.Segments) == 0 && risk == "" {
		return customers
	}

	segments := make(map[string]bool, len(filter.Segments))
	for _, s := range filter.Segments {
		segments[s] = true
	}

	out := make([]types.CustomerRecord, 0, len(customers))
	for _, c := range customers {
		if len(segments) > 0 && !segments[c.RFMSegment] {
			continue
		}
		if risk != "" && strings.ToLower(string(c.ChurnRisk)) != risk {
			continue
		}
		out = append(out, c)
	}
	return out
}

// lockedWriter serializes writes from the concurrent branches
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
