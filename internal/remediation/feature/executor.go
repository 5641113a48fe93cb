package feature

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
	planReadyMessage            = "PLAN-OK: enable %s on %s\n"
	promptTemplate              = "Enable '%s' on '%s'? [a/N/y] "
	skipMessage                 = "SKIP: %s\n"
	successMessage              = "Enabled %s on %s\n"
	failureMessage              = "ERROR: enabling %s failed for %s\n"
	loadOperationConstant       = "load"
	readFlagOperationConstant   = "read_flag"
	setFlagOperationConstant    = "set_flag"
	persistOperationConstant    = "persist"
	confirmOperationConstant    = "confirm_feature"
	featureFailedLogMessage     = "feature enable skipped"
	missingAdapterErrorConstant = "no registry adapter configured"
)

var errMissingStore = errors.New(missingAdapterErrorConstant)

// Status enumerates the result of processing one record.
type Status string

// Feature statuses.
const (
	StatusEnabled        Status = "enabled"
	StatusAlreadyEnabled Status = "already_enabled"
	StatusPlanned        Status = "planned"
	StatusDeclined       Status = "declined"
	StatusFailed         Status = "failed"
)

// Outcome records what happened to one record.
type Outcome struct {
	RecordID  registry.RecordID
	Status    Status
	Kind      shared.FailureKind
	Operation string
	Cause     error
}

// Result aggregates a feature pass. The enabled count is len(Enabled).
type Result struct {
	Enabled  []registry.RecordID
	Outcomes []Outcome
}

// Count returns the number of records whose flag was turned on.
func (result Result) Count() int {
	return len(result.Enabled)
}

// Options configures a feature pass.
type Options struct {
	TypeTag            string
	FlagName           string
	DryRun             bool
	ConfirmationPolicy shared.ConfirmationPolicy
}

// Store is the adapter capability used to read and write payload flags.
type Store interface {
	TryLoad(executionContext context.Context, identifier registry.RecordID) (registry.Payload, error)
	Persist(executionContext context.Context, identifier registry.RecordID, payload registry.Payload) error
}

// Dependencies supplies collaborators required by the Executor.
type Dependencies struct {
	Store    Store
	Prompter shared.ConfirmationPrompter
	Output   io.Writer
	Errors   io.Writer
	Logger   *zap.Logger
}

// Executor turns a feature flag on, one record at a time.
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

// EnableForFlagged enables options.FlagName on every record of options.TypeTag.
// Records whose flag is already on are left alone and not counted. A failure on
// one record is logged and skipped. Cancellation is honored between records.
func (executor *Executor) EnableForFlagged(executionContext context.Context, records []registry.Record, options Options) (Result, error) {
	var result Result
	confirmation := shared.NewConfirmation(options.ConfirmationPolicy, executor.dependencies.Prompter)

	for _, record := range records {
		if record.TypeTag != options.TypeTag {
			continue
		}
		if contextError := executionContext.Err(); contextError != nil {
			return result, contextError
		}

		outcome := executor.enable(executionContext, record, options, confirmation)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Status == StatusEnabled {
			result.Enabled = append(result.Enabled, record.ID)
		}
	}

	return result, nil
}

func (executor *Executor) enable(executionContext context.Context, record registry.Record, options Options, confirmation *shared.Confirmation) Outcome {
	if executor.dependencies.Store == nil {
		return executor.fail(record.ID, options.FlagName, loadOperationConstant, errMissingStore)
	}

	payload, loadError := executor.dependencies.Store.TryLoad(executionContext, record.ID)
	if loadError != nil {
		return executor.fail(record.ID, options.FlagName, loadOperationConstant, loadError)
	}
	if payload == nil {
		return executor.fail(record.ID, options.FlagName, loadOperationConstant, registry.ErrPayloadUnavailable)
	}

	enabled, readError := payload.GetFlag(options.FlagName)
	if readError != nil {
		return executor.fail(record.ID, options.FlagName, readFlagOperationConstant, readError)
	}
	if enabled {
		return Outcome{RecordID: record.ID, Status: StatusAlreadyEnabled}
	}

	if options.DryRun {
		executor.output.Printf(planReadyMessage, options.FlagName, record.ID)
		return Outcome{RecordID: record.ID, Status: StatusPlanned}
	}

	confirmed, promptError := confirmation.Confirm(fmt.Sprintf(promptTemplate, options.FlagName, record.ID))
	if promptError != nil {
		return executor.fail(record.ID, options.FlagName, confirmOperationConstant, promptError)
	}
	if !confirmed {
		executor.output.Printf(skipMessage, record.ID)
		return Outcome{RecordID: record.ID, Status: StatusDeclined}
	}

	if setError := payload.SetFlag(options.FlagName, true); setError != nil {
		return executor.fail(record.ID, options.FlagName, setFlagOperationConstant, setError)
	}
	if persistError := executor.dependencies.Store.Persist(executionContext, record.ID, payload); persistError != nil {
		return executor.fail(record.ID, options.FlagName, persistOperationConstant, persistError)
	}

	executor.output.Printf(successMessage, options.FlagName, record.ID)
	return Outcome{RecordID: record.ID, Status: StatusEnabled}
}

func (executor *Executor) fail(identifier registry.RecordID, flagName string, operation string, cause error) Outcome {
	executor.dependencies.Logger.Warn(featureFailedLogMessage, shared.FailureFields(identifier, shared.FailureKindAdapter, operation, cause)...)
	executor.errors.Printf(failureMessage, flagName, identifier)
	return Outcome{RecordID: identifier, Status: StatusFailed, Kind: shared.FailureKindAdapter, Operation: operation, Cause: cause}
}
