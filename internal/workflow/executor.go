package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/guardian/internal/audit"
	"github.com/temirov/guardian/internal/registry"
)

const (
	workflowExecutionErrorTemplateConstant = "workflow operation %s failed: %w"
	workflowMissingServiceMessage          = "workflow executor requires an audit service"
	workflowStepStartedLogMessage          = "workflow step started"
	logFieldStepIndexConstant              = "step"
	logFieldOperationNameConstant          = "operation"
)

// ErrMissingAuditService indicates an executor built without an orchestrator.
var ErrMissingAuditService = errors.New(workflowMissingServiceMessage)

// Dependencies configures shared collaborators for workflow execution.
type Dependencies struct {
	AuditService  *audit.Service
	Containers    registry.ContainerManager
	DefaultLayout []string
	Logger        *zap.Logger
	Output        io.Writer
	Errors        io.Writer
}

// RuntimeOptions captures user-provided execution modifiers.
type RuntimeOptions struct {
	DryRun    bool
	AssumeYes bool
}

// Executor runs workflow operations in order against one orchestrator.
type Executor struct {
	operations   []Operation
	dependencies Dependencies
}

// NewExecutor constructs an Executor instance.
func NewExecutor(operations []Operation, dependencies Dependencies) *Executor {
	return &Executor{operations: append([]Operation{}, operations...), dependencies: dependencies}
}

// Execute runs every operation in order and stops at the first failing step.
func (executor *Executor) Execute(executionContext context.Context, runtimeOptions RuntimeOptions) error {
	if executor.dependencies.AuditService == nil {
		return ErrMissingAuditService
	}

	logger := executor.dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	environment := &Environment{
		AuditService:  executor.dependencies.AuditService,
		Containers:    executor.dependencies.Containers,
		DefaultLayout: executor.dependencies.DefaultLayout,
		Output:        executor.dependencies.Output,
		Errors:        executor.dependencies.Errors,
		Logger:        logger,
		DryRun:        runtimeOptions.DryRun,
		AssumeYes:     runtimeOptions.AssumeYes,
	}

	for operationIndex := range executor.operations {
		operation := executor.operations[operationIndex]
		if operation == nil {
			continue
		}
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		logger.Info(workflowStepStartedLogMessage, zap.Int(logFieldStepIndexConstant, operationIndex), zap.String(logFieldOperationNameConstant, operation.Name()))
		if executeError := operation.Execute(executionContext, environment); executeError != nil {
			return fmt.Errorf(workflowExecutionErrorTemplateConstant, operation.Name(), executeError)
		}
	}

	return nil
}
