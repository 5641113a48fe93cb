package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/guardian/internal/audit"
	"github.com/temirov/guardian/internal/naming"
	"github.com/temirov/guardian/internal/registry/dependencies"
	"github.com/temirov/guardian/internal/scaffold"
	"github.com/temirov/guardian/internal/utils"
)

const (
	testManifestFileName      = "registry.yaml"
	testConfigurationFileName = "config.yaml"
	testLogFileName           = "guardian.log"
	testManifestContent       = `records:
  - container: /Game/Art/Meshes
    name: crate_01
    type: StaticMesh
    flags: {nanite: false}
  - container: /Game/Maps
    name: Level_01
    type: World
    references: [/Game/Art/Meshes/crate_01]
`
	testConfigurationTemplate = "registry:\n  path: %s\nnaming:\n  prefixes:\n    - type: StaticMesh\n      prefix: Mesh_\n"
	testRegistryPathVariable  = "GUARDIAN_REGISTRY_PATH"
)

type applicationHarness struct {
	application *Application
	output      *bytes.Buffer
	logPath     string
}

func newApplicationHarness(testInstance *testing.T) applicationHarness {
	testInstance.Helper()
	logPath := filepath.Join(testInstance.TempDir(), testLogFileName)
	application := newApplication(utils.NewLoggerFactory(applicationNameConstant).WithOutputPaths(logPath))
	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(&bytes.Buffer{})
	application.rootCommand.SetIn(&bytes.Buffer{})
	return applicationHarness{application: application, output: outputBuffer, logPath: logPath}
}

func (harness applicationHarness) execute(arguments ...string) error {
	harness.application.rootCommand.SetArgs(arguments)
	return harness.application.Execute()
}

func writeTestFile(testInstance *testing.T, directory string, name string, content string) string {
	testInstance.Helper()
	filePath := filepath.Join(directory, name)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), 0o600))
	return filePath
}

func TestEmbeddedDefaultsDecode(testInstance *testing.T) {
	testInstance.Setenv(testRegistryPathVariable, "")
	harness := newApplicationHarness(testInstance)
	require.NoError(testInstance, harness.application.initializeConfiguration(harness.application.rootCommand))

	configuration := harness.application.configuration
	require.Equal(testInstance, string(utils.LogLevelInfo), configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatStructured), configuration.Common.LogFormat)
	require.Equal(testInstance, dependencies.DriverManifest, configuration.Registry.Driver)
	require.Equal(testInstance, naming.DefaultConfiguration(), configuration.Naming)
	require.Equal(testInstance, audit.DefaultFeatureRule(), configuration.Feature)
	require.Equal(testInstance, scaffold.DefaultLayout(), configuration.Scaffold.Layout)
	require.Equal(testInstance, audit.DefaultCommandConfiguration().Scope.Include, configuration.Audit.Scope.Include)
	require.Equal(testInstance, audit.DefaultCommandConfiguration().Workers, configuration.Audit.Workers)
	require.False(testInstance, configuration.Remediation.DryRun)
	require.False(testInstance, configuration.Remediation.AssumeYes)

	embeddedContent, configurationType := EmbeddedDefaultConfiguration()
	require.Equal(testInstance, configurationTypeConstant, configurationType)
	embeddedContent[0] = '#'
	secondContent, _ := EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, embeddedContent[0], secondContent[0])
}

func TestApplicationAuditUsesConfigurationFile(testInstance *testing.T) {
	directory := testInstance.TempDir()
	manifestPath := writeTestFile(testInstance, directory, testManifestFileName, testManifestContent)
	configurationPath := writeTestFile(testInstance, directory, testConfigurationFileName, fmt.Sprintf(testConfigurationTemplate, manifestPath))

	harness := newApplicationHarness(testInstance)
	require.NoError(testInstance, harness.execute("--config", configurationPath, "audit", "--no-color"))

	output := harness.output.String()
	require.Contains(testInstance, output, "/Game/Art/Meshes/crate_01: Starts lowercase")
	require.Contains(testInstance, output, "  Records scanned: 2\n")

	renameHarness := newApplicationHarness(testInstance)
	require.NoError(testInstance, renameHarness.execute("--config", configurationPath, "records-rename", "--yes"))
	manifestContent, manifestReadError := os.ReadFile(manifestPath)
	require.NoError(testInstance, manifestReadError)
	require.Contains(testInstance, string(manifestContent), "Mesh_Crate_01")

	logContent, readError := os.ReadFile(harness.logPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(logContent), configurationInitializedMessageConstant)
	require.Contains(testInstance, string(logContent), configurationPath)
}

func TestApplicationRenameUsesEnvironmentRegistry(testInstance *testing.T) {
	directory := testInstance.TempDir()
	manifestPath := writeTestFile(testInstance, directory, testManifestFileName, testManifestContent)
	testInstance.Setenv(testRegistryPathVariable, manifestPath)

	harness := newApplicationHarness(testInstance)
	require.NoError(testInstance, harness.execute("records-rename", "--yes"))
	require.Contains(testInstance, harness.output.String(), "Naming fix complete: 2 renamed, 0 rejected.\n")

	manifestContent, readError := os.ReadFile(manifestPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(manifestContent), "SM_Crate_01")
	require.Contains(testInstance, string(manifestContent), "/Game/Art/Meshes/SM_Crate_01")
	require.NotContains(testInstance, string(manifestContent), "crate_01\n")
}

func TestApplicationScaffoldCreatesConfiguredLayout(testInstance *testing.T) {
	directory := testInstance.TempDir()
	manifestPath := writeTestFile(testInstance, directory, testManifestFileName, testManifestContent)
	testInstance.Setenv(testRegistryPathVariable, manifestPath)

	harness := newApplicationHarness(testInstance)
	require.NoError(testInstance, harness.execute("containers-scaffold"))
	require.Contains(testInstance, harness.output.String(), "Created: /Game/Dev/Temp\n")
	require.Contains(testInstance, harness.output.String(), "Folder structure created / updated.\n")

	repeatHarness := newApplicationHarness(testInstance)
	require.NoError(testInstance, repeatHarness.execute("containers-scaffold"))
	require.Equal(testInstance, "All containers already existed. Nothing new created.\n", repeatHarness.output.String())
}

func TestApplicationConfigurationErrors(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedError string
	}{
		{
			name:          "unknown log level",
			arguments:     []string{"--log-level", "verbose", "audit"},
			expectedError: "unable to create logger",
		},
		{
			name:          "missing configuration file",
			arguments:     []string{"--config", filepath.Join(testInstance.TempDir(), "absent.yaml"), "audit"},
			expectedError: "unable to load configuration",
		},
		{
			name:          "registry path unset",
			arguments:     []string{"audit"},
			expectedError: dependencies.ErrMissingRegistryPath.Error(),
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			subTest.Setenv(testRegistryPathVariable, "")
			harness := newApplicationHarness(subTest)
			executionError := harness.execute(testCase.arguments...)
			require.Error(subTest, executionError)
			require.Contains(subTest, executionError.Error(), testCase.expectedError)
		})
	}
}

func TestApplicationRegistersCommands(testInstance *testing.T) {
	harness := newApplicationHarness(testInstance)
	registered := map[string]bool{}
	for _, command := range harness.application.rootCommand.Commands() {
		registered[command.Name()] = true
	}
	for _, expected := range []string{"audit", "records-rename", "records-feature-enable", "containers-scaffold", "workflow"} {
		require.True(testInstance, registered[expected], expected)
	}
}
