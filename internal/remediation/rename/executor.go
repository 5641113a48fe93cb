package rename

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/remediation/shared"
)

const (
	planReadyMessage         = "PLAN-OK: %s → %s\n"
	planSkipMessage          = "PLAN-SKIP (%s): %s → %s\n"
	promptTemplate           = "Rename '%s' → '%s'? [a/N/y] "
	skipMessage              = "SKIP: %s\n"
	successMessage           = "Renamed %s → %s\n"
	failureMessage           = "ERROR: rename failed for %s → %s\n"
	applyOperationConstant   = "rename"
	confirmOperationConstant = "confirm_rename"
	renameFailedLogMessage   = "rename failed"
	promptFailedLogMessage   = "confirmation failed"
)

var errDeclined = errors.New("declined by user")

// Status enumerates the result of a single rename.
type Status string

// Rename statuses.
const (
	StatusRenamed  Status = "renamed"
	StatusPlanned  Status = "planned"
	StatusDeclined Status = "declined"
	StatusFailed   Status = "failed"
)

// Outcome records what happened to one plan.
type Outcome struct {
	Plan   Plan
	Status Status
	Kind   shared.FailureKind
	Cause  error
}

// Renamer is the adapter capability used to apply renames.
type Renamer interface {
	Rename(executionContext context.Context, identifier registry.RecordID, targetContainerPath string, newName string) error
}

// Options configures a rename execution.
type Options struct {
	DryRun             bool
	ConfirmationPolicy shared.ConfirmationPolicy
}

// Dependencies supplies collaborators required to apply rename plans.
type Dependencies struct {
	Renamer  Renamer
	Prompter shared.ConfirmationPrompter
	Output   io.Writer
	Errors   io.Writer
	Logger   *zap.Logger
}

// Executor applies rename plans one at a time.
type Executor struct {
	dependencies Dependencies
	output       shared.Reporter
	errors       shared.Reporter
}

// NewExecutor constructs an Executor from the provided dependencies.
func NewExecutor(dependencies Dependencies) *Executor {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Executor{
		dependencies: dependencies,
		output:       shared.NewWriterReporter(dependencies.Output),
		errors:       shared.NewWriterReporter(dependencies.Errors),
	}
}

// ReportRejections prints a PLAN-SKIP line for every rejected plan.
func (executor *Executor) ReportRejections(rejections []Rejection) {
	for _, rejection := range rejections {
		executor.output.Printf(planSkipMessage, rejection.Reason, rejection.Plan.RecordID, rejection.Plan.TargetID())
	}
}

// Apply executes plans sequentially. A failed plan is recorded and the batch
// continues. Cancellation is honored between plans, in which case the outcomes
// gathered so far are returned with the context error.
func (executor *Executor) Apply(executionContext context.Context, plans []Plan, options Options) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(plans))
	confirmation := shared.NewConfirmation(options.ConfirmationPolicy, executor.dependencies.Prompter)

	for _, plan := range plans {
		if contextError := executionContext.Err(); contextError != nil {
			return outcomes, contextError
		}

		if options.DryRun {
			executor.output.Printf(planReadyMessage, plan.RecordID, plan.TargetID())
			outcomes = append(outcomes, Outcome{Plan: plan, Status: StatusPlanned})
			continue
		}

		confirmed, promptError := confirmation.Confirm(fmt.Sprintf(promptTemplate, plan.RecordID, plan.TargetID()))
		if promptError != nil {
			executor.dependencies.Logger.Warn(promptFailedLogMessage, shared.FailureFields(plan.RecordID, shared.FailureKindAdapter, confirmOperationConstant, promptError)...)
			executor.errors.Printf(failureMessage, plan.RecordID, plan.TargetID())
			outcomes = append(outcomes, Outcome{Plan: plan, Status: StatusFailed, Kind: shared.FailureKindAdapter, Cause: promptError})
			continue
		}
		if !confirmed {
			executor.output.Printf(skipMessage, plan.RecordID)
			outcomes = append(outcomes, Outcome{Plan: plan, Status: StatusDeclined, Cause: errDeclined})
			continue
		}

		outcomes = append(outcomes, executor.applyPlan(executionContext, plan))
	}

	return outcomes, nil
}

func (executor *Executor) applyPlan(executionContext context.Context, plan Plan) Outcome {
	if executor.dependencies.Renamer == nil {
		executor.errors.Printf(failureMessage, plan.RecordID, plan.TargetID())
		return Outcome{Plan: plan, Status: StatusFailed, Kind: shared.FailureKindAdapter}
	}

	renameError := executor.dependencies.Renamer.Rename(executionContext, plan.RecordID, plan.TargetContainerPath, plan.NewName)
	if renameError != nil {
		kind := shared.FailureKindAdapter
		if errors.Is(renameError, registry.ErrTargetExists) {
			kind = shared.FailureKindValidation
		}
		executor.dependencies.Logger.Warn(renameFailedLogMessage, shared.FailureFields(plan.RecordID, kind, applyOperationConstant, renameError)...)
		executor.errors.Printf(failureMessage, plan.RecordID, plan.TargetID())
		return Outcome{Plan: plan, Status: StatusFailed, Kind: kind, Cause: renameError}
	}

	executor.output.Printf(successMessage, plan.RecordID, plan.TargetID())
	return Outcome{Plan: plan, Status: StatusRenamed}
}

// Renamed returns the (old, new) pairs of every successful rename.
func Renamed(outcomes []Outcome) []Pair {
	var pairs []Pair
	for _, outcome := range outcomes {
		if outcome.Status == StatusRenamed {
			pairs = append(pairs, Pair{
				Old:     outcome.Plan.RecordID,
				New:     outcome.Plan.TargetID(),
				OldName: outcome.Plan.OldName,
				NewName: outcome.Plan.NewName,
			})
		}
	}
	return pairs
}

// Pair is an applied rename. Old and New are full record identifiers so a rename
// that also moves the record stays unambiguous; OldName and NewName are the short
// names within the container.
type Pair struct {
	Old     registry.RecordID `json:"old"`
	New     registry.RecordID `json:"new"`
	OldName string            `json:"old_name"`
	NewName string            `json:"new_name"`
}
