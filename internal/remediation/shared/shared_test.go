package shared_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/guardian/internal/remediation/shared"
)

func TestIOConfirmationPrompterParsesResponses(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected shared.ConfirmationResult
	}{
		{name: "yes", input: "y\n", expected: shared.ConfirmationResult{Confirmed: true}},
		{name: "yes_word_uppercase", input: "YES\n", expected: shared.ConfirmationResult{Confirmed: true}},
		{name: "all", input: "a\n", expected: shared.ConfirmationResult{Confirmed: true, ApplyToAll: true}},
		{name: "default_no", input: "\n", expected: shared.ConfirmationResult{}},
		{name: "eof_declines", input: "", expected: shared.ConfirmationResult{}},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			output := &strings.Builder{}
			prompter := shared.NewIOConfirmationPrompter(strings.NewReader(testCase.input), output)

			result, confirmError := prompter.Confirm("Proceed? [a/N/y] ")
			require.NoError(subTest, confirmError)
			require.Equal(subTest, testCase.expected, result)
			require.Equal(subTest, "Proceed? [a/N/y] ", output.String())
		})
	}
}

type scriptedPrompter struct {
	responses []shared.ConfirmationResult
	calls     int
	err       error
}

func (prompter *scriptedPrompter) Confirm(string) (shared.ConfirmationResult, error) {
	if prompter.err != nil {
		return shared.ConfirmationResult{}, prompter.err
	}
	response := prompter.responses[prompter.calls]
	prompter.calls++
	return response, nil
}

func TestConfirmationApplyToAllStopsPrompting(testInstance *testing.T) {
	prompter := &scriptedPrompter{responses: []shared.ConfirmationResult{
		{Confirmed: false},
		{Confirmed: true, ApplyToAll: true},
	}}
	confirmation := shared.NewConfirmation(shared.ConfirmationPrompt, prompter)

	first, firstError := confirmation.Confirm("first")
	require.NoError(testInstance, firstError)
	require.False(testInstance, first)

	for range 3 {
		confirmed, confirmError := confirmation.Confirm("next")
		require.NoError(testInstance, confirmError)
		require.True(testInstance, confirmed)
	}
	require.Equal(testInstance, 2, prompter.calls)
}

func TestConfirmationAssumeYesSkipsPrompter(testInstance *testing.T) {
	prompter := &scriptedPrompter{err: errors.New("should not prompt")}
	confirmation := shared.NewConfirmation(shared.ConfirmationPolicyFromBool(true), prompter)

	confirmed, confirmError := confirmation.Confirm("anything")
	require.NoError(testInstance, confirmError)
	require.True(testInstance, confirmed)
	require.Zero(testInstance, prompter.calls)
}
