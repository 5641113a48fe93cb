package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/guardian/internal/remediation/rename"
	"github.com/temirov/guardian/internal/scaffold"
)

const (
	renameSummaryTemplateConstant  = "WORKFLOW-RENAME: %d renamed, %d rejected, %d failed\n"
	featureSummaryTemplateConstant = "WORKFLOW-FEATURE: %d enabled\n"
	layoutSummaryTemplateConstant  = "WORKFLOW-LAYOUT: %d created, %d failed\n"
	missingContainersMessage       = "ensure-layout step requires a registry that supports containers"
)

var errMissingContainers = errors.New(missingContainersMessage)

// RenameRecordsOperation renames scoped records to their canonical names.
type RenameRecordsOperation struct{}

// Name identifies the operation type.
func (operation *RenameRecordsOperation) Name() string {
	return string(OperationTypeRenameRecords)
}

// Execute runs a naming fix through the orchestrator.
func (operation *RenameRecordsOperation) Execute(executionContext context.Context, environment *Environment) error {
	result, fixError := environment.AuditService.RunNamingFix(executionContext, environment.remediationOptions())
	if fixError != nil {
		return fixError
	}

	failed := 0
	for _, outcome := range result.Outcomes {
		if outcome.Status == rename.StatusFailed {
			failed++
		}
	}
	fmt.Fprintf(environment.output(), renameSummaryTemplateConstant, len(result.Renamed()), len(result.Rejections), failed)
	return nil
}

// EnableFeatureOperation enables the configured feature flag on flagged records.
type EnableFeatureOperation struct{}

// Name identifies the operation type.
func (operation *EnableFeatureOperation) Name() string {
	return string(OperationTypeEnableFeature)
}

// Execute runs a feature fix through the orchestrator.
func (operation *EnableFeatureOperation) Execute(executionContext context.Context, environment *Environment) error {
	result, fixError := environment.AuditService.RunFeatureFix(executionContext, environment.remediationOptions())
	if fixError != nil {
		return fixError
	}
	fmt.Fprintf(environment.output(), featureSummaryTemplateConstant, result.Count())
	return nil
}

// EnsureLayoutOperation creates missing containers. An empty Layout uses the
// environment's default layout.
type EnsureLayoutOperation struct {
	Layout []string
}

// Name identifies the operation type.
func (operation *EnsureLayoutOperation) Name() string {
	return string(OperationTypeEnsureLayout)
}

// Execute ensures the layout through the registry's container capability.
func (operation *EnsureLayoutOperation) Execute(executionContext context.Context, environment *Environment) error {
	if environment.Containers == nil {
		return errMissingContainers
	}

	layout := operation.Layout
	if len(layout) == 0 {
		layout = environment.DefaultLayout
	}
	if len(layout) == 0 {
		layout = scaffold.DefaultLayout()
	}

	service, serviceError := scaffold.NewService(scaffold.Dependencies{
		Manager: environment.Containers,
		Output:  environment.Output,
		Errors:  environment.Errors,
		Logger:  environment.Logger,
	})
	if serviceError != nil {
		return serviceError
	}

	result, ensureError := service.EnsureLayout(executionContext, layout, scaffold.Options{DryRun: environment.DryRun})
	if ensureError != nil {
		return ensureError
	}
	fmt.Fprintf(environment.output(), layoutSummaryTemplateConstant, len(result.Created()), len(result.Failed()))
	return nil
}
