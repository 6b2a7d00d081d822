package scoring

import (
	"strings"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// Offer and framing copy
const (
	OfferDiscoveryPack = "Discovery pack 3-for-2"
	OfferWinBack       = "20% win-back discount"
	OfferPremiumBundle = "Premium bundle 15% off"
	OfferValueBundle   = "Value bundle $50+ free delivery"
	OfferBundleUplift  = "Bundle uplift: buy 2 get 10% off"

	MessageDefault = "Convenience + scarcity framing"

	// DefaultCategory is used when a customer has no primary category
	DefaultCategory = "Mixed"
	// DefaultSegment is used when a customer has no RFM segment
	DefaultSegment = "Unknown"

	bundleUpliftSegment = "Low_Value_Frequent"
)

var (
	premiumCategories = []string{"tequila", "whiskey"}
	valueCategories   = []string{"rum", "vodka", "beer", "wine"}
)

// DefaultSendWindow returns the evening send window
func DefaultSendWindow() []string {
	return []string{"18:00", "22:00"}
}

// DefaultChannels returns the outreach channels attached to every nudge
func DefaultChannels() []string {
	return []string{"Email", "SMS"}
}

// GenerateNudge derives the offer, framing and delivery metadata for one customer.
// The Low_Value_Frequent segment override runs last and beats every other offer,
// including the high-churn win-back.
func GenerateNudge(c types.CustomerRecord) types.Nudge {
	category := c.PrimaryCategory
	if category == "" {
		category = DefaultCategory
	}
	category = strings.ToLower(category)

	offer := OfferDiscoveryPack
	switch {
	case c.ChurnRisk == types.ChurnRiskHigh:
		offer = OfferWinBack
	case containsAny(category, premiumCategories):
		offer = OfferPremiumBundle
	case containsAny(category, valueCategories):
		offer = OfferValueBundle
	}

	if strings.Contains(c.RFMSegment, bundleUpliftSegment) {
		offer = OfferBundleUplift
	}

	return types.Nudge{
		Offer:      offer,
		Message:    MessageDefault,
		SendWindow: DefaultSendWindow(),
		Channels:   DefaultChannels(),
	}
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
