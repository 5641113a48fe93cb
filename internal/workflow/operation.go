package workflow

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/guardian/internal/audit"
	"github.com/temirov/guardian/internal/registry"
)

// Operation is a single workflow step.
type Operation interface {
	Name() string
	Execute(executionContext context.Context, environment *Environment) error
}

// Environment exposes shared dependencies for workflow operations.
type Environment struct {
	AuditService  *audit.Service
	Containers    registry.ContainerManager
	DefaultLayout []string
	Output        io.Writer
	Errors        io.Writer
	Logger        *zap.Logger
	DryRun        bool
	AssumeYes     bool
}

func (environment *Environment) remediationOptions() audit.RemediationOptions {
	return audit.RemediationOptions{DryRun: environment.DryRun, AssumeYes: environment.AssumeYes}
}

func (environment *Environment) output() io.Writer {
	if environment.Output == nil {
		return io.Discard
	}
	return environment.Output
}
