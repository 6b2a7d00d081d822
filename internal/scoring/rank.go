package scoring

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// Identity placeholders and provenance tag
const (
	UnknownEmail = "unknown@example.com"
	UnknownName  = "Customer"
	ActionReason = "priority=churn/success_rate/behavior"
)

// parallelThreshold is the input size below which scoring stays on one goroutine
const parallelThreshold = 512

// Rank scores every customer and returns them sorted by descending score.
// Ties keep their input order. The input slice is not modified.
func Rank(ctx context.Context, customers []types.CustomerRecord) ([]types.ScoredCustomer, error) {
	scored := make([]types.ScoredCustomer, len(customers))

	if len(customers) < parallelThreshold {
		for i, c := range customers {
			scored[i] = types.ScoredCustomer{Customer: c, Score: Score(c), Index: i}
		}
	} else if err := scoreConcurrently(ctx, customers, scored); err != nil {
		return nil, err
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Index < scored[j].Index
	})

	return scored, nil
}

// scoreConcurrently splits the input into chunks and scores each chunk on its
// own goroutine. Each goroutine writes only to its own index range.
func scoreConcurrently(ctx context.Context, customers []types.CustomerRecord, scored []types.ScoredCustomer) error {
	workers := runtime.GOMAXPROCS(0)
	chunkSize := (len(customers) + workers - 1) / workers

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < len(customers); start += chunkSize {
		end := min(start+chunkSize, len(customers))
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				scored[i] = types.ScoredCustomer{Customer: customers[i], Score: Score(customers[i]), Index: i}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("scoring cancelled: %w", err)
	}
	return nil
}

// RankAndGenerateActions ranks customers, keeps the top limit and builds one action per survivor.
// A limit of zero or less yields no actions.
func RankAndGenerateActions(ctx context.Context, customers []types.CustomerRecord, limit int) ([]types.Action, error) {
	ranked, err := Rank(ctx, customers)
	if err != nil {
		return nil, err
	}

	if limit < 0 {
		limit = 0
	}
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}

	actions := make([]types.Action, 0, len(ranked))
	for _, sc := range ranked {
		actions = append(actions, BuildAction(sc))
	}
	return actions, nil
}

// BuildAction turns one scored customer into an action
func BuildAction(sc types.ScoredCustomer) types.Action {
	c := sc.Customer
	nudge := GenerateNudge(c)

	email := c.Email
	if email == "" {
		email = UnknownEmail
	}
	name := c.Name
	if name == "" {
		name = UnknownName
	}
	segment := c.RFMSegment
	if segment == "" {
		segment = DefaultSegment
	}
	category := c.PrimaryCategory
	if category == "" {
		category = DefaultCategory
	}

	return types.Action{
		Email:           email,
		Name:            name,
		Phone:           c.Phone,
		Segment:         segment,
		PrimaryCategory: category,
		Offer:           nudge.Offer,
		SendWindow:      nudge.SendWindow,
		Channel:         nudge.Channels,
		CreativeHint:    fmt.Sprintf("%s focus | %s", category, nudge.Message),
		Reason:          ActionReason,
		PriorityScore:   sc.Score,
	}
}
