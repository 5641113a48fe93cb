package shared

import (
	"go.uber.org/zap"

	"github.com/temirov/guardian/internal/registry"
)

// FailureKind classifies a per-record failure. No failure kind aborts a batch.
type FailureKind string

// Supported failure kinds.
const (
	FailureKindAdapter          FailureKind = "adapter_failure"
	FailureKindValidation       FailureKind = "validation_failure"
	FailureKindConfigurationGap FailureKind = "configuration_gap"
)

// Structured log field names shared by the audit and remediation passes.
const (
	LogFieldRecordIDConstant    = "record_id"
	LogFieldFailureKindConstant = "failure_kind"
	LogFieldOperationConstant   = "operation"
	LogFieldRunIDConstant       = "run_id"
)

// FailureFields returns the zap fields attached to every logged per-record failure.
func FailureFields(recordIdentifier registry.RecordID, kind FailureKind, operation string, cause error) []zap.Field {
	fields := []zap.Field{
		zap.String(LogFieldRecordIDConstant, recordIdentifier.String()),
		zap.String(LogFieldFailureKindConstant, string(kind)),
		zap.String(LogFieldOperationConstant, operation),
	}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	return fields
}

// ConfirmationResult captures the outcome of a user confirmation prompt.
type ConfirmationResult struct {
	Confirmed  bool
	ApplyToAll bool
}

// ConfirmationPrompter collects user confirmations prior to mutating actions.
type ConfirmationPrompter interface {
	Confirm(prompt string) (ConfirmationResult, error)
}
