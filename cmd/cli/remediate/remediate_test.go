package remediate_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/guardian/cmd/cli/remediate"
	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/registry/manifest"
	"github.com/temirov/guardian/internal/remediation/shared"
	"github.com/temirov/guardian/internal/scaffold"
)

const (
	testRegistryContent = `containers:
  - /Game/Art
records:
  - container: /Game/Art/Meshes
    name: crate_01
    type: StaticMesh
    flags: {nanite: false}
  - container: /Game/Maps
    name: Level_01
    type: World
    references: [/Game/Art/Meshes/crate_01]
`
	assumeYesFlag = "--yes"
	dryRunFlag    = "--dry-run"
)

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

type recordingPrompter struct {
	prompts []string
	result  shared.ConfirmationResult
}

func (prompter *recordingPrompter) Confirm(prompt string) (shared.ConfirmationResult, error) {
	prompter.prompts = append(prompter.prompts, prompt)
	return prompter.result, nil
}

type listOnlyAdapter struct {
	registry.Adapter
}

func newTestRegistry(testInstance *testing.T) *manifest.Registry {
	testInstance.Helper()
	document, parseError := manifest.ParseDocument([]byte(testRegistryContent))
	require.NoError(testInstance, parseError)
	return manifest.NewRegistry(document)
}

func executeCommand(testInstance *testing.T, builder commandBuilder, input string, arguments ...string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetIn(bytes.NewBufferString(input))
	command.SetArgs(arguments)
	command.SetContext(context.Background())

	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestRenameCommand(testInstance *testing.T) {
	testCases := []struct {
		name             string
		input            string
		arguments        []string
		expectedOutput   []string
		expectedMutation bool
	}{
		{
			name:             "assume yes renames every violation",
			arguments:        []string{assumeYesFlag},
			expectedOutput:   []string{"Renamed /Game/Art/Meshes/crate_01 → /Game/Art/Meshes/SM_Crate_01\n", "Naming fix complete: 2 renamed, 0 rejected.\n"},
			expectedMutation: true,
		},
		{
			name:           "dry run prints the plan",
			arguments:      []string{dryRunFlag},
			expectedOutput: []string{"PLAN-OK: /Game/Maps/Level_01 → /Game/Maps/A_Level_01\n"},
		},
		{
			name:           "declined prompt skips",
			input:          "n\nn\n",
			expectedOutput: []string{"SKIP: /Game/Art/Meshes/crate_01\n", "Naming fix complete: 0 renamed, 0 rejected.\n"},
		},
		{
			name:             "apply to all answers once",
			input:            "a\n",
			expectedOutput:   []string{"Naming fix complete: 2 renamed, 0 rejected.\n"},
			expectedMutation: true,
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			manifestRegistry := newTestRegistry(subTest)
			before := manifestRegistry.Snapshot()

			output, executionError := executeCommand(subTest, &remediate.RenameCommandBuilder{Adapter: manifestRegistry}, testCase.input, testCase.arguments...)
			require.NoError(subTest, executionError)
			for _, expected := range testCase.expectedOutput {
				require.Contains(subTest, output, expected)
			}
			if testCase.expectedMutation {
				require.NotEqual(subTest, before, manifestRegistry.Snapshot())
			} else {
				require.Equal(subTest, before, manifestRegistry.Snapshot())
			}
		})
	}
}

func TestFeatureCommandUsesPrompterFactory(testInstance *testing.T) {
	manifestRegistry := newTestRegistry(testInstance)
	prompter := &recordingPrompter{result: shared.ConfirmationResult{Confirmed: true}}
	builder := &remediate.FeatureCommandBuilder{
		Adapter: manifestRegistry,
		PrompterFactory: func(*cobra.Command) shared.ConfirmationPrompter {
			return prompter
		},
	}

	output, executionError := executeCommand(testInstance, builder, "")
	require.NoError(testInstance, executionError)
	require.Len(testInstance, prompter.prompts, 1)
	require.Equal(testInstance, "Enable 'nanite' on '/Game/Art/Meshes/crate_01'? [a/N/y] ", prompter.prompts[0])
	require.Contains(testInstance, output, "Feature fix complete: 1 record(s) enabled.\n")

	secondOutput, secondError := executeCommand(testInstance, builder, "")
	require.NoError(testInstance, secondError)
	require.Contains(testInstance, secondOutput, "Feature fix complete: 0 record(s) enabled.\n")
	require.Len(testInstance, prompter.prompts, 1)
}

func TestFeatureCommandHonorsConfiguredDryRun(testInstance *testing.T) {
	manifestRegistry := newTestRegistry(testInstance)
	before := manifestRegistry.Snapshot()
	builder := &remediate.FeatureCommandBuilder{
		Adapter: manifestRegistry,
		ConfigurationProvider: func() remediate.CommandConfiguration {
			configuration := remediate.DefaultCommandConfiguration()
			configuration.Execution.DryRun = true
			return configuration
		},
	}

	output, executionError := executeCommand(testInstance, builder, "")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "PLAN-OK: enable nanite on /Game/Art/Meshes/crate_01\n", output)
	require.Equal(testInstance, before, manifestRegistry.Snapshot())
}

func TestScaffoldCommand(testInstance *testing.T) {
	manifestRegistry := newTestRegistry(testInstance)
	builder := &remediate.ScaffoldCommandBuilder{
		Adapter: manifestRegistry,
		ConfigurationProvider: func() remediate.CommandConfiguration {
			configuration := remediate.DefaultCommandConfiguration()
			configuration.Layout = []string{"/Game/Art", "/Game/Audio"}
			return configuration
		},
	}

	dryRunOutput, dryRunError := executeCommand(testInstance, builder, "", dryRunFlag)
	require.NoError(testInstance, dryRunError)
	require.Equal(testInstance, "PLAN-OK: create /Game/Audio\n", dryRunOutput)

	firstOutput, firstError := executeCommand(testInstance, builder, "")
	require.NoError(testInstance, firstError)
	require.Equal(testInstance, "Created: /Game/Audio\nFolder structure created / updated.\n", firstOutput)

	secondOutput, secondError := executeCommand(testInstance, builder, "")
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, "All containers already existed. Nothing new created.\n", secondOutput)

	flagOutput, flagError := executeCommand(testInstance, builder, "", "--layout=/Game/UI")
	require.NoError(testInstance, flagError)
	require.Equal(testInstance, "Created: /Game/UI\nFolder structure created / updated.\n", flagOutput)
}

func TestScaffoldCommandRequiresContainerSupport(testInstance *testing.T) {
	builder := &remediate.ScaffoldCommandBuilder{Adapter: listOnlyAdapter{Adapter: newTestRegistry(testInstance)}}
	_, executionError := executeCommand(testInstance, builder, "")
	require.ErrorIs(testInstance, executionError, scaffold.ErrContainersUnsupported)
}
