// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most n runes, marking the cut with "..."
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintActions outputs the highest-priority actions of a ranking run.
func (p *Printer) PrintActions(actions []types.Action) {
	if len(actions) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total actions: %d\n\n", len(actions)))

	count := min(len(actions), maxItemsToShow)
	for i := 0; i < count; i++ {
		a := actions[i]
		sb.WriteString(fmt.Sprintf("#%d  %s (%s)\n", i+1, a.Email, a.Segment))
		sb.WriteString(fmt.Sprintf("    Score: %.1f  Offer: %s\n", a.PriorityScore, a.Offer))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(actions) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more actions", len(actions)-maxItemsToShow))
	}

	p.printBox("TOP PRIORITY ACTIONS", sb.String())
}

// PrintPlan outputs a per-day breakdown of a campaign plan.
func (p *Printer) PrintPlan(plan *types.CampaignPlan) {
	if plan == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Period:  %s\n", plan.Period))
	sb.WriteString(fmt.Sprintf("Engine:  %s\n", plan.Engine))
	sb.WriteString(fmt.Sprintf("Sends:   %d\n", len(plan.Sends)))

	perDay := make(map[string]int)
	for _, s := range plan.Sends {
		perDay[s.Date]++
	}
	days := make([]string, 0, len(perDay))
	for d := range perDay {
		days = append(days, d)
	}
	sort.Strings(days)

	if len(days) > 0 {
		sb.WriteString("\nSends per day:\n")
		for _, d := range days {
			sb.WriteString(fmt.Sprintf("  %s  %d\n", d, perDay[d]))
		}
	}
	if len(plan.KPIs) > 0 {
		sb.WriteString(fmt.Sprintf("\nKPIs: %s", strings.Join(plan.KPIs, ", ")))
	}

	p.printBox("CAMPAIGN PLAN", strings.TrimRight(sb.String(), "\n"))
}

// PrintPerformance outputs the rates and financials of an analyzed plan.
func (p *Printer) PrintPerformance(perf *types.PlanPerformance) {
	if perf == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total sends:      %d\n", perf.TotalSends))
	sb.WriteString(fmt.Sprintf("Open rate:        %.2f%%\n", perf.Rates.OpenRate))
	sb.WriteString(fmt.Sprintf("Click rate:       %.2f%%\n", perf.Rates.ClickRate))
	sb.WriteString(fmt.Sprintf("Conversion rate:  %.2f%%\n", perf.Rates.ConversionRate))
	sb.WriteString(fmt.Sprintf("Revenue:          $%.2f\n", perf.Financial.TotalRevenue))
	sb.WriteString(fmt.Sprintf("AOV:              $%.2f\n", perf.Financial.AOV))
	sb.WriteString(fmt.Sprintf("Revenue per send: $%.2f", perf.Financial.RevenuePerSend))

	p.printBox("PLAN PERFORMANCE", sb.String())
}
