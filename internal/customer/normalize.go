package customer

import (
	"strings"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// Raw accepts both the flat record shape (as stored in the customers table)
// and the nested knowledge-base shape in a single decode.
type Raw struct {
	Email             FlexString `json:"email"`
	Name              FlexString `json:"name"`
	Phone             FlexString `json:"phone"`
	RFMSegment        FlexString `json:"rfm_segment"`
	ChurnRisk         FlexString `json:"churn_risk"`
	SuccessRatePct    FlexFloat  `json:"success_rate_pct"`
	IsNightBuyer      FlexBool   `json:"is_night_buyer"`
	NightBuyer        FlexBool   `json:"night_buyer"`
	PrimaryCategory   FlexString `json:"primary_category"`
	SecondaryCategory FlexString `json:"secondary_category"`
	TotalSpent        FlexFloat  `json:"total_spent"`
	AvgOrderValue     FlexFloat  `json:"avg_order_value"`

	Profile            *RawProfile            `json:"profile"`
	Segmentation       *RawSegmentation       `json:"segmentation"`
	BehavioralTraits   *RawBehavioralTraits   `json:"behavioral_traits"`
	FinancialMetrics   *RawFinancialMetrics   `json:"financial_metrics"`
	ProductPreferences *RawProductPreferences `json:"product_preferences"`
}

// RawProfile is the nested identity group
type RawProfile struct {
	Email FlexString `json:"email"`
	Name  FlexString `json:"name"`
	Phone FlexString `json:"phone"`
}

// RawSegmentation is the nested segmentation group
type RawSegmentation struct {
	RFMSegment FlexString `json:"rfm_segment"`
	ChurnRisk  FlexString `json:"churn_risk"`
}

// RawBehavioralTraits is the nested behavior group
type RawBehavioralTraits struct {
	NightBuyer FlexBool `json:"night_buyer"`
}

// RawFinancialMetrics is the nested financial group
type RawFinancialMetrics struct {
	SuccessRatePct FlexFloat `json:"success_rate_pct"`
	TotalSpent     FlexFloat `json:"total_spent"`
	AvgOrderValue  FlexFloat `json:"avg_order_value"`
}

// RawProductPreferences is the nested product group
type RawProductPreferences struct {
	PrimaryCategory   FlexString `json:"primary_category"`
	SecondaryCategory FlexString `json:"secondary_category"`
}

// Normalize converts a raw record into the canonical CustomerRecord.
// A flat field wins over its nested counterpart whenever it is present.
func Normalize(raw Raw) types.CustomerRecord {
	var (
		profile  RawProfile
		seg      RawSegmentation
		behavior RawBehavioralTraits
		finance  RawFinancialMetrics
		products RawProductPreferences
	)
	if raw.Profile != nil {
		profile = *raw.Profile
	}
	if raw.Segmentation != nil {
		seg = *raw.Segmentation
	}
	if raw.BehavioralTraits != nil {
		behavior = *raw.BehavioralTraits
	}
	if raw.FinancialMetrics != nil {
		finance = *raw.FinancialMetrics
	}
	if raw.ProductPreferences != nil {
		products = *raw.ProductPreferences
	}

	return types.CustomerRecord{
		Email:             firstString(raw.Email, profile.Email),
		Name:              firstString(raw.Name, profile.Name),
		Phone:             firstString(raw.Phone, profile.Phone),
		RFMSegment:        firstString(raw.RFMSegment, seg.RFMSegment),
		ChurnRisk:         NormalizeChurnRisk(firstString(raw.ChurnRisk, seg.ChurnRisk)),
		SuccessRatePct:    firstFloat(raw.SuccessRatePct, finance.SuccessRatePct).Ptr(),
		NightBuyer:        firstBool(raw.IsNightBuyer, raw.NightBuyer, behavior.NightBuyer),
		PrimaryCategory:   firstString(raw.PrimaryCategory, products.PrimaryCategory),
		SecondaryCategory: firstString(raw.SecondaryCategory, products.SecondaryCategory),
		TotalSpent:        firstFloat(raw.TotalSpent, finance.TotalSpent).Value,
		AvgOrderValue:     firstFloat(raw.AvgOrderValue, finance.AvgOrderValue).Value,
	}
}

// NormalizeChurnRisk lower-cases and trims a churn label.
// Unknown labels are kept as-is so they contribute nothing to scoring.
func NormalizeChurnRisk(value string) types.ChurnRisk {
	return types.ChurnRisk(strings.ToLower(strings.TrimSpace(value)))
}

func firstString(values ...FlexString) string {
	for _, v := range values {
		if v.Set {
			return strings.TrimSpace(v.Value)
		}
	}
	return ""
}

func firstFloat(values ...FlexFloat) FlexFloat {
	for _, v := range values {
		if v.Set {
			return v
		}
	}
	return FlexFloat{}
}

func firstBool(values ...FlexBool) bool {
	for _, v := range values {
		if v.Set {
			return v.Value
		}
	}
	return false
}
