package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Jmoney1214/liquormarketingagent/internal/planning"
	"github.com/Jmoney1214/liquormarketingagent/internal/prompts"
	"github.com/Jmoney1214/liquormarketingagent/internal/schemas"
	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// Corpus limits, in characters
const (
	MaxDocChars    = 8000
	MaxCorpusChars = 15000
)

// ClientFactory creates the client for one planning attempt
type ClientFactory func(ctx context.Context, config *Config) (Client, error)

// CampaignPlanner asks a model for a campaign plan. It implements planning.AIPlanner.
type CampaignPlanner struct {
	config    *Config
	newClient ClientFactory
	tier      ModelTier
}

var _ planning.AIPlanner = (*CampaignPlanner)(nil)

// NewCampaignPlanner creates a planner for the configured provider
func NewCampaignPlanner(config *Config) *CampaignPlanner {
	return NewCampaignPlannerWithFactory(config, NewClient)
}

// NewCampaignPlannerWithFactory creates a planner that builds clients with factory
func NewCampaignPlannerWithFactory(config *Config, factory ClientFactory) *CampaignPlanner {
	if config == nil {
		config = DefaultConfig()
	}
	return &CampaignPlanner{config: config, newClient: factory, tier: TierAdvanced}
}

// Plan makes one model call and classifies every failure. No client is
// constructed when the credential is missing.
func (p *CampaignPlanner) Plan(ctx context.Context, req planning.PlanRequest) planning.Result {
	if !p.config.HasCredential() {
		return planning.Err(planning.FailureMissingCredential, ErrMissingCredential)
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return planning.Err(planning.FailureCallFailed, err)
	}

	client, err := p.newClient(ctx, p.config)
	if err != nil {
		if errors.Is(err, ErrMissingCredential) {
			return planning.Err(planning.FailureMissingCredential, err)
		}
		return planning.Err(planning.FailureCallFailed, err)
	}
	defer func() { _ = client.Close() }()

	raw, err := client.GenerateJSON(ctx, prompt, p.tier)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return planning.Err(planning.FailureTimeout, err)
		}
		var respErr *ResponseError
		if errors.As(err, &respErr) {
			return planning.Err(planning.FailureInvalidResponse, err)
		}
		return planning.Err(planning.FailureCallFailed, err)
	}

	plan, err := ParsePlan(raw)
	if err != nil {
		return planning.Err(planning.FailureInvalidResponse, err)
	}
	return planning.Ok(plan)
}

// ParsePlan validates a model answer against the response schema and decodes it.
// Beyond the checked send fields the model's structure is taken as-is. A single
// string is accepted wherever a string list is expected, and missing lists are
// filled so the plan always satisfies the campaign plan output schema.
func ParsePlan(raw string) (types.CampaignPlan, error) {
	cleaned := CleanJSONBlock(raw)
	if cleaned == "" {
		return types.CampaignPlan{}, &ResponseError{Message: "empty response"}
	}

	if err := schemas.ValidateEmbedded(schemas.CampaignPlanResponse, cleaned); err != nil {
		return types.CampaignPlan{}, &ResponseError{Message: "response does not match plan structure", Cause: err}
	}

	var resp planResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return types.CampaignPlan{}, &ResponseError{Message: "failed to decode plan", Cause: err}
	}
	return resp.toPlan(), nil
}

// planResponse is the model's plan as decoded before normalization
type planResponse struct {
	Period    string         `json:"period"`
	Rationale string         `json:"rationale"`
	Cohorts   stringList     `json:"cohorts"`
	KPIs      stringList     `json:"kpis"`
	Sends     []sendResponse `json:"sends"`
}

type sendResponse struct {
	Date         string     `json:"date"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Channel      stringList `json:"channel"`
	SendWindow   stringList `json:"send_window"`
	Offer        string     `json:"offer"`
	CreativeHint string     `json:"creative_hint"`
	Segment      string     `json:"segment"`
}

func (r planResponse) toPlan() types.CampaignPlan {
	sends := make([]types.Send, 0, len(r.Sends))
	for _, s := range r.Sends {
		channel := []string(s.Channel)
		if len(channel) == 0 {
			channel = planning.DefaultSendChannels()
		}
		window := []string(s.SendWindow)
		if len(window) == 0 {
			window = planning.DefaultSendWindow()
		}
		sends = append(sends, types.Send{
			Date:         s.Date,
			Email:        s.Email,
			Phone:        s.Phone,
			Channel:      channel,
			SendWindow:   window,
			Offer:        s.Offer,
			CreativeHint: s.CreativeHint,
			Segment:      s.Segment,
		})
	}

	return types.CampaignPlan{
		Period:    r.Period,
		Rationale: r.Rationale,
		Cohorts:   r.Cohorts.orEmpty(),
		KPIs:      r.KPIs.orEmpty(),
		Sends:     sends,
		Engine:    types.EngineLLM,
	}
}

// stringList decodes either a JSON array of strings or a single string.
// null and "" decode to an empty list.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = nil
		if one != "" {
			*l = stringList{one}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

func (l stringList) orEmpty() []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

// BuildPrompt assembles the system instructions with the document corpus, the
// objective as the user turn, and {"actions": [...]} as grounding context.
func BuildPrompt(req planning.PlanRequest) (Prompt, error) {
	system := req.SystemPrompt
	if system == "" {
		system = prompts.MustGet("planning.json", "system")
	}

	days := req.DurationDays
	if days < 1 {
		days = planning.DefaultDurationDays
	}

	actions := req.Actions
	if actions == nil {
		actions = []types.Action{}
	}
	blob, err := json.Marshal(map[string][]types.Action{"actions": actions})
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to serialize actions: %w", err)
	}

	instructions := prompts.MustGet("planning.json", "plan-instructions")
	return Prompt{
		System: prompts.Format(instructions, map[string]string{
			"System":    system,
			"Days":      strconv.Itoa(days),
			"StartDate": req.StartDate,
			"Corpus":    BuildCorpus(req.ContextDocs),
		}),
		User:    req.Objective,
		Context: string(blob),
	}, nil
}

// BuildCorpus joins documents as "# name\ncontent" blocks, capping each
// document at MaxDocChars and the whole corpus at MaxCorpusChars.
func BuildCorpus(docs []types.ContextDoc) string {
	blocks := make([]string, 0, len(docs))
	for _, d := range docs {
		blocks = append(blocks, "# "+d.Name+"\n"+truncateRunes(d.Content, MaxDocChars))
	}
	return truncateRunes(strings.Join(blocks, "\n\n"), MaxCorpusChars)
}
