package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/guardian/cmd/cli"
	"github.com/temirov/guardian/internal/audit"
)

const (
	exitErrorTemplateConstant = "%v\n"
	exitCodeFailure           = 1
	exitCodeIssuesFound       = 2
)

// main executes the guardian command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		if errors.Is(executionError, audit.ErrIssuesFound) {
			os.Exit(exitCodeIssuesFound)
		}
		os.Exit(exitCodeFailure)
	}
}
