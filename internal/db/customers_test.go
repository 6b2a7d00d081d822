package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

func TestBuildListCustomersQuery(t *testing.T) {
	tests := []struct {
		name         string
		filter       CustomerFilter
		wantContains []string
		wantAbsent   []string
		wantArgs     []any
	}{
		{
			name:         "no filter",
			filter:       CustomerFilter{},
			wantContains: []string{"deleted_at IS NULL", "ORDER BY created_at, email"},
			wantAbsent:   []string{"ANY(", "churn_risk) ="},
			wantArgs:     nil,
		},
		{
			name:         "segments only",
			filter:       CustomerFilter{Segments: []string{"Champions", "At Risk"}},
			wantContains: []string{"rfm_segment = ANY($1)"},
			wantAbsent:   []string{"churn_risk) ="},
			wantArgs:     []any{[]string{"Champions", "At Risk"}},
		},
		{
			name:         "churn risk only is lower-cased",
			filter:       CustomerFilter{ChurnRisk: " HIGH "},
			wantContains: []string{"LOWER(churn_risk) = $1"},
			wantAbsent:   []string{"ANY("},
			wantArgs:     []any{"high"},
		},
		{
			name: "both filters number args in order",
			filter: CustomerFilter{
				Segments:  []string{"Loyal"},
				ChurnRisk: "medium",
			},
			wantContains: []string{"rfm_segment = ANY($1)", "LOWER(churn_risk) = $2"},
			wantArgs:     []any{[]string{"Loyal"}, "medium"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListCustomersQuery(tt.filter)
			for _, s := range tt.wantContains {
				assert.Contains(t, query, s)
			}
			for _, s := range tt.wantAbsent {
				assert.NotContains(t, query, s)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestUpsertArgs(t *testing.T) {
	rate := 62.5
	args := upsertArgs(types.CustomerRecord{
		Email:          " ann@example.com ",
		ChurnRisk:      types.ChurnRiskHigh,
		NightBuyer:     true,
		TotalSpent:     1200,
		AvgOrderValue:  80,
		SuccessRatePct: &rate,
		RFMSegment:     "Champions",
	})

	assert.Len(t, args, 11)
	assert.Equal(t, "ann@example.com", args[0])
	assert.Equal(t, "Customer", args[1])
	assert.Nil(t, args[2])
	assert.Equal(t, "Champions", *args[3].(*string))
	assert.Equal(t, "high", *args[4].(*string))
	assert.Equal(t, true, args[5])
	assert.Equal(t, &rate, args[8])
	assert.Nil(t, args[9])
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "x", *nullIfEmpty("x"))
	assert.Equal(t, "", deref(nil))
	s := "y"
	assert.Equal(t, "y", deref(&s))
}
