// Package types provides type definitions for structured data used throughout the liquor marketing agent.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Nudge is the offer, framing hint and delivery metadata derived for one customer
type Nudge struct {
	Offer      string   `json:"offer"`
	Message    string   `json:"message"`
	SendWindow []string `json:"send_window"`
	Channels   []string `json:"channels"`
}

// Action is a single targeted-outreach recommendation for one customer
type Action struct {
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone,omitempty"`
	Segment         string   `json:"segment"`
	PrimaryCategory string   `json:"primary_category"`
	Offer           string   `json:"offer"`
	SendWindow      []string `json:"send_window"`
	Channel         []string `json:"channel"`
	CreativeHint    string   `json:"creative_hint"`
	Reason          string   `json:"reason"`
	PriorityScore   float64  `json:"priority_score"`
}

// ActionSet is the envelope written by the actions command and returned by the API
type ActionSet struct {
	GeneratedAt  string   `json:"generated_at"`
	ActionsCount int      `json:"actions_count"`
	Actions      []Action `json:"actions"`
}
