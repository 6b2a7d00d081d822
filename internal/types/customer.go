// Package types provides type definitions for structured data used throughout the liquor marketing agent.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ChurnRisk is the three-level churn classification of a customer.
// The empty value means the classification is absent.
type ChurnRisk string

// Churn risk levels
const (
	ChurnRiskLow    ChurnRisk = "low"
	ChurnRiskMedium ChurnRisk = "medium"
	ChurnRiskHigh   ChurnRisk = "high"
)

// CustomerRecord is the canonical customer shape consumed by scoring and nudging.
// Raw input shapes are normalized into this struct by the customer package.
type CustomerRecord struct {
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone,omitempty"`
	RFMSegment        string    `json:"rfm_segment,omitempty"`
	ChurnRisk         ChurnRisk `json:"churn_risk,omitempty"`
	SuccessRatePct    *float64  `json:"success_rate_pct,omitempty"` // nil when absent or non-numeric
	NightBuyer        bool      `json:"is_night_buyer"`
	PrimaryCategory   string    `json:"primary_category,omitempty"`
	SecondaryCategory string    `json:"secondary_category,omitempty"`
	TotalSpent        float64   `json:"total_spent"`
	AvgOrderValue     float64   `json:"avg_order_value"`
}

// ScoredCustomer pairs a customer with its priority score.
// Index is the customer's position in the input and breaks score ties.
type ScoredCustomer struct {
	Customer CustomerRecord `json:"customer"`
	Score    float64        `json:"score"`
	Index    int            `json:"index"`
}
