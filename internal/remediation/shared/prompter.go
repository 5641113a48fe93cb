package shared

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// IOConfirmationPrompter reads [a/N/y] confirmation responses from an io.Reader.
type IOConfirmationPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOConfirmationPrompter constructs a prompter from the provided reader and writer.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{reader: bufio.NewReader(input), writer: output}
}

// Confirm writes the prompt and interprets y/yes as confirmation and a/all as
// confirmation of every remaining item. Anything else, including EOF, declines.
func (prompter *IOConfirmationPrompter) Confirm(prompt string) (ConfirmationResult, error) {
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, prompt); writeError != nil {
			return ConfirmationResult{}, writeError
		}
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return ConfirmationResult{}, readError
	}

	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return ConfirmationResult{Confirmed: true}, nil
	case "a", "all":
		return ConfirmationResult{Confirmed: true, ApplyToAll: true}, nil
	default:
		return ConfirmationResult{}, nil
	}
}
