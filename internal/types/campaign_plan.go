// Package types provides type definitions for structured data used throughout the liquor marketing agent.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Engine records which planning path produced a plan
type Engine string

// Planning engines
const (
	EngineLLM       Engine = "llm"
	EngineHeuristic Engine = "heuristic"
)

// CampaignPlan is a dated schedule of sends covering a fixed window
type CampaignPlan struct {
	ID        string   `json:"id,omitempty"`
	Period    string   `json:"period"`
	Rationale string   `json:"rationale"`
	Cohorts   []string `json:"cohorts"`
	KPIs      []string `json:"kpis"`
	Sends     []Send   `json:"sends"`
	Engine    Engine   `json:"engine"`
}

// Send is one scheduled message for one customer on one date
type Send struct {
	Date         string   `json:"date"`
	Email        string   `json:"email"`
	Channel      []string `json:"channel"`
	SendWindow   []string `json:"send_window"`
	Offer        string   `json:"offer"`
	CreativeHint string   `json:"creative_hint"`
	Segment      string   `json:"segment"`
	Phone        string   `json:"phone,omitempty"`
}

// ContextDoc is a named supporting document handed to the AI planner
type ContextDoc struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}
