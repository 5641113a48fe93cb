package scaffold

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/remediation/shared"
)

const (
	createdMessage               = "Created: %s\n"
	planReadyMessage             = "PLAN-OK: create %s\n"
	failureMessage               = "ERROR: creating %s failed\n"
	existsOperationConstant      = "container_exists"
	createOperationConstant      = "create_container"
	logFieldContainerConstant    = "container"
	containerFailedLogMessage    = "container skipped"
	missingManagerMessage        = "registry does not support container creation"
	containerCreatedLogMessage   = "container created"
	layoutCompletedLogMessage    = "layout ensured"
	logFieldCreatedCountConstant = "created"
	logFieldFailedCountConstant  = "failed"
)

// ErrContainersUnsupported indicates that the registry cannot create containers.
var ErrContainersUnsupported = errors.New(missingManagerMessage)

// Status enumerates the result of ensuring one container.
type Status string

// Container statuses.
const (
	StatusCreated Status = "created"
	StatusExists  Status = "exists"
	StatusPlanned Status = "planned"
	StatusFailed  Status = "failed"
)

// Outcome records what happened to one container path.
type Outcome struct {
	ContainerPath string
	Status        Status
	Cause         error
}

// Result aggregates an EnsureLayout run.
type Result struct {
	Outcomes []Outcome
}

// Created returns the container paths created by the run in layout order.
func (result Result) Created() []string {
	return result.pathsWithStatus(StatusCreated)
}

// Failed returns the container paths that could not be checked or created.
func (result Result) Failed() []string {
	return result.pathsWithStatus(StatusFailed)
}

// CreatedAny reports whether the run created at least one container.
func (result Result) CreatedAny() bool {
	return len(result.Created()) > 0
}

func (result Result) pathsWithStatus(status Status) []string {
	var paths []string
	for _, outcome := range result.Outcomes {
		if outcome.Status == status {
			paths = append(paths, outcome.ContainerPath)
		}
	}
	return paths
}

// Options configures a layout run.
type Options struct {
	DryRun bool
}

// Dependencies supplies the collaborators of a Service.
type Dependencies struct {
	Manager registry.ContainerManager
	Output  io.Writer
	Errors  io.Writer
	Logger  *zap.Logger
}

// Service ensures container layouts exist.
type Service struct {
	dependencies Dependencies
	output       shared.Reporter
	errors       shared.Reporter
}

// NewService constructs a Service. It fails when no container manager is supplied.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Manager == nil {
		return nil, ErrContainersUnsupported
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Service{
		dependencies: dependencies,
		output:       shared.NewWriterReporter(dependencies.Output),
		errors:       shared.NewWriterReporter(dependencies.Errors),
	}, nil
}

// EnsureLayout creates every missing container of layout in order. A failure on
// one container is logged and reported and the remaining containers are still
// processed. Cancellation is honored between containers.
func (service *Service) EnsureLayout(executionContext context.Context, layout []string, options Options) (Result, error) {
	containerPaths, layoutError := SanitizeLayout(layout)
	if layoutError != nil {
		return Result{}, layoutError
	}

	result := Result{Outcomes: make([]Outcome, 0, len(containerPaths))}
	for _, containerPath := range containerPaths {
		if contextError := executionContext.Err(); contextError != nil {
			return result, contextError
		}
		result.Outcomes = append(result.Outcomes, service.ensure(executionContext, containerPath, options))
	}

	service.dependencies.Logger.Info(layoutCompletedLogMessage,
		zap.Int(logFieldCreatedCountConstant, len(result.Created())),
		zap.Int(logFieldFailedCountConstant, len(result.Failed())),
	)
	return result, nil
}

func (service *Service) ensure(executionContext context.Context, containerPath string, options Options) Outcome {
	exists, existsError := service.dependencies.Manager.ContainerExists(executionContext, containerPath)
	if existsError != nil {
		return service.fail(containerPath, existsOperationConstant, existsError)
	}
	if exists {
		return Outcome{ContainerPath: containerPath, Status: StatusExists}
	}

	if options.DryRun {
		service.output.Printf(planReadyMessage, containerPath)
		return Outcome{ContainerPath: containerPath, Status: StatusPlanned}
	}

	if createError := service.dependencies.Manager.CreateContainer(executionContext, containerPath); createError != nil {
		return service.fail(containerPath, createOperationConstant, createError)
	}

	service.dependencies.Logger.Debug(containerCreatedLogMessage, zap.String(logFieldContainerConstant, containerPath))
	service.output.Printf(createdMessage, containerPath)
	return Outcome{ContainerPath: containerPath, Status: StatusCreated}
}

func (service *Service) fail(containerPath string, operation string, cause error) Outcome {
	service.dependencies.Logger.Warn(containerFailedLogMessage,
		zap.String(logFieldContainerConstant, containerPath),
		zap.String(shared.LogFieldFailureKindConstant, string(shared.FailureKindAdapter)),
		zap.String(shared.LogFieldOperationConstant, operation),
		zap.Error(cause),
	)
	service.errors.Printf(failureMessage, containerPath)
	return Outcome{ContainerPath: containerPath, Status: StatusFailed, Cause: cause}
}
