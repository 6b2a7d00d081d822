package planning

import (
	"fmt"

	"github.com/Jmoney1214/liquormarketingagent/internal/types"
)

// FailureKind classifies why an AI planning attempt produced no plan
type FailureKind string

// Failure kinds
const (
	FailureMissingCredential FailureKind = "missing_credential"
	FailureCallFailed        FailureKind = "call_failed"
	FailureTimeout           FailureKind = "timeout"
	FailureInvalidResponse   FailureKind = "invalid_response"
)

// Failure is the error side of a Result
type Failure struct {
	Kind  FailureKind
	Cause error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("ai planning failed (%s): %v", f.Kind, f.Cause)
	}
	return fmt.Sprintf("ai planning failed (%s)", f.Kind)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// Result is the outcome of one AI planning attempt: exactly one of Plan or Failure is set.
type Result struct {
	Plan    *types.CampaignPlan
	Failure *Failure
}

// Ok wraps a successful plan
func Ok(plan types.CampaignPlan) Result {
	return Result{Plan: &plan}
}

// Err wraps a failed attempt
func Err(kind FailureKind, cause error) Result {
	return Result{Failure: &Failure{Kind: kind, Cause: cause}}
}

// IsOk reports whether the attempt produced a plan
func (r Result) IsOk() bool {
	return r.Failure == nil && r.Plan != nil
}
