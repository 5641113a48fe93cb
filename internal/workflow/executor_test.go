package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/guardian/internal/audit"
	"github.com/temirov/guardian/internal/naming"
	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/registry/manifest"
	"github.com/temirov/guardian/internal/workflow"
)

const (
	executorRegistryContent = `records:
  - container: /Game/Art/Meshes
    name: crate_01
    type: StaticMesh
    flags: {nanite: false}
  - container: /Game/Maps
    name: Level_01
    type: World
    references:
      - /Game/Art/Meshes/crate_01
`
	executorWorkflowContent = `steps:
  - operation: audit-report
    with:
      format: csv
      output: %s
  - operation: rename-records
  - operation: enable-feature
  - operation: ensure-layout
    with:
      layout: [/Game/Art, /Game/Audio]
`
)

var errFailingOperation = errors.New("step exploded")

type failingOperation struct{}

func (operation failingOperation) Name() string {
	return "failing"
}

func (operation failingOperation) Execute(executionContext context.Context, environment *workflow.Environment) error {
	return errFailingOperation
}

type countingOperation struct {
	calls int
}

func (operation *countingOperation) Name() string {
	return "counting"
}

func (operation *countingOperation) Execute(executionContext context.Context, environment *workflow.Environment) error {
	operation.calls++
	return nil
}

func newExecutorRegistry(testInstance *testing.T) *manifest.Registry {
	testInstance.Helper()
	document, parseError := manifest.ParseDocument([]byte(executorRegistryContent))
	require.NoError(testInstance, parseError)
	return manifest.NewRegistry(document)
}

func newExecutorService(testInstance *testing.T, adapter registry.Adapter) *audit.Service {
	testInstance.Helper()
	scope, scopeError := registry.NewScope([]string{"/Game/**"}, nil)
	require.NoError(testInstance, scopeError)
	service, serviceError := audit.NewService(audit.Dependencies{
		Adapter: adapter,
		Rules:   naming.MustDefaultRules(),
		Feature: audit.DefaultFeatureRule(),
		Scope:   scope,
		Workers: 2,
	})
	require.NoError(testInstance, serviceError)
	return service
}

func TestExecutorRunsStepsInOrder(testInstance *testing.T) {
	manifestRegistry := newExecutorRegistry(testInstance)
	reportPath := filepath.Join(testInstance.TempDir(), "report.csv")

	configuration, parseError := workflow.ParseConfiguration([]byte(fmt.Sprintf(executorWorkflowContent, reportPath)))
	require.NoError(testInstance, parseError)
	operations, buildError := workflow.BuildOperations(configuration)
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	executor := workflow.NewExecutor(operations, workflow.Dependencies{
		AuditService: newExecutorService(testInstance, manifestRegistry),
		Containers:   manifestRegistry,
		Output:       outputBuffer,
		Errors:       &bytes.Buffer{},
	})
	require.NoError(testInstance, executor.Execute(context.Background(), workflow.RuntimeOptions{AssumeYes: true}))

	reportContent, readError := os.ReadFile(reportPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(reportContent), "/Game/Art/Meshes/crate_01")

	output := outputBuffer.String()
	require.Contains(testInstance, output, "WORKFLOW-AUDIT: wrote report to "+reportPath+"\n")
	require.Contains(testInstance, output, "WORKFLOW-RENAME: 2 renamed, 0 rejected, 0 failed\n")
	require.Contains(testInstance, output, "WORKFLOW-FEATURE: 1 enabled\n")
	require.Contains(testInstance, output, "Created: /Game/Audio\n")
	require.Contains(testInstance, output, "WORKFLOW-LAYOUT: 2 created, 0 failed\n")

	records, listError := manifestRegistry.ListAll(context.Background())
	require.NoError(testInstance, listError)
	identifiers := make([]registry.RecordID, 0, len(records))
	for _, record := range records {
		identifiers = append(identifiers, record.ID)
	}
	require.ElementsMatch(testInstance, []registry.RecordID{"/Game/Art/Meshes/SM_Crate_01", "/Game/Maps/A_Level_01"}, identifiers)
}

func TestExecutorDryRunLeavesRegistryUntouched(testInstance *testing.T) {
	manifestRegistry := newExecutorRegistry(testInstance)
	before := manifestRegistry.Snapshot()

	operations := []workflow.Operation{
		&workflow.RenameRecordsOperation{},
		&workflow.EnableFeatureOperation{},
		&workflow.EnsureLayoutOperation{Layout: []string{"/Game/Audio"}},
	}
	outputBuffer := &bytes.Buffer{}
	executor := workflow.NewExecutor(operations, workflow.Dependencies{
		AuditService: newExecutorService(testInstance, manifestRegistry),
		Containers:   manifestRegistry,
		Output:       outputBuffer,
	})
	require.NoError(testInstance, executor.Execute(context.Background(), workflow.RuntimeOptions{DryRun: true}))

	require.Equal(testInstance, before, manifestRegistry.Snapshot())
	require.Contains(testInstance, outputBuffer.String(), "PLAN-OK: create /Game/Audio\n")
	require.Contains(testInstance, outputBuffer.String(), "WORKFLOW-RENAME: 0 renamed")
}

func TestExecutorStopsAtFirstFailure(testInstance *testing.T) {
	trailing := &countingOperation{}
	executor := workflow.NewExecutor([]workflow.Operation{failingOperation{}, trailing}, workflow.Dependencies{
		AuditService: newExecutorService(testInstance, newExecutorRegistry(testInstance)),
	})

	executionError := executor.Execute(context.Background(), workflow.RuntimeOptions{})
	require.ErrorIs(testInstance, executionError, errFailingOperation)
	require.Contains(testInstance, executionError.Error(), "workflow operation failing failed")
	require.Zero(testInstance, trailing.calls)
}

func TestExecutorValidatesEnvironment(testInstance *testing.T) {
	missingService := workflow.NewExecutor([]workflow.Operation{&countingOperation{}}, workflow.Dependencies{})
	require.ErrorIs(testInstance, missingService.Execute(context.Background(), workflow.RuntimeOptions{}), workflow.ErrMissingAuditService)

	missingContainers := workflow.NewExecutor([]workflow.Operation{&workflow.EnsureLayoutOperation{}}, workflow.Dependencies{
		AuditService: newExecutorService(testInstance, newExecutorRegistry(testInstance)),
	})
	layoutError := missingContainers.Execute(context.Background(), workflow.RuntimeOptions{})
	require.Error(testInstance, layoutError)
	require.Contains(testInstance, layoutError.Error(), "requires a registry that supports containers")

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()
	counting := &countingOperation{}
	cancelled := workflow.NewExecutor([]workflow.Operation{counting}, workflow.Dependencies{
		AuditService: newExecutorService(testInstance, newExecutorRegistry(testInstance)),
	})
	require.ErrorIs(testInstance, cancelled.Execute(cancelledContext, workflow.RuntimeOptions{}), context.Canceled)
	require.Zero(testInstance, counting.calls)
}
