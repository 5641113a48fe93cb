package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/guardian/internal/audit"
	"github.com/temirov/guardian/internal/workflow"
)

func TestBuildOperations(testInstance *testing.T) {
	testCases := []struct {
		name          string
		step          workflow.StepConfiguration
		expected      workflow.Operation
		expectedError string
	}{
		{
			name:     "audit report defaults to text",
			step:     workflow.StepConfiguration{Operation: workflow.OperationTypeAuditReport},
			expected: &workflow.AuditReportOperation{Format: audit.FormatText},
		},
		{
			name: "audit report with csv file",
			step: workflow.StepConfiguration{
				Operation: workflow.OperationTypeAuditReport,
				Options:   map[string]any{"format": "CSV", "output": " report.csv "},
			},
			expected: &workflow.AuditReportOperation{Format: audit.FormatCSV, OutputPath: "report.csv"},
		},
		{
			name: "audit report rejects unknown format",
			step: workflow.StepConfiguration{
				Operation: workflow.OperationTypeAuditReport,
				Options:   map[string]any{"format": "xml"},
			},
			expectedError: "unsupported report format",
		},
		{
			name: "ensure layout accepts comma separated list",
			step: workflow.StepConfiguration{
				Operation: workflow.OperationTypeEnsureLayout,
				Options:   map[string]any{"layout": "/Game/Art,/Game//Maps/"},
			},
			expected: &workflow.EnsureLayoutOperation{Layout: []string{"/Game/Art", "/Game/Maps"}},
		},
		{
			name: "ensure layout rejects relative containers",
			step: workflow.StepConfiguration{
				Operation: workflow.OperationTypeEnsureLayout,
				Options:   map[string]any{"layout": []any{"Game/Art"}},
			},
			expectedError: "invalid options for ensure-layout step",
		},
		{
			name:     "rename records",
			step:     workflow.StepConfiguration{Operation: workflow.OperationTypeRenameRecords},
			expected: &workflow.RenameRecordsOperation{},
		},
		{
			name: "enable feature rejects unknown options",
			step: workflow.StepConfiguration{
				Operation: workflow.OperationTypeEnableFeature,
				Options:   map[string]any{"flag": "nanite"},
			},
			expectedError: "invalid options for enable-feature step",
		},
		{
			name:          "unknown operation",
			step:          workflow.StepConfiguration{Operation: workflow.OperationType("delete-everything")},
			expectedError: "unsupported workflow operation: delete-everything",
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			operations, buildError := workflow.BuildOperations(workflow.Configuration{Steps: []workflow.StepConfiguration{testCase.step}})
			if len(testCase.expectedError) > 0 {
				require.Error(subTest, buildError)
				require.Contains(subTest, buildError.Error(), testCase.expectedError)
				return
			}
			require.NoError(subTest, buildError)
			require.Equal(subTest, []workflow.Operation{testCase.expected}, operations)
		})
	}
}
