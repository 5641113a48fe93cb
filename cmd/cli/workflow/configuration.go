package workflow

import (
	"github.com/temirov/guardian/internal/audit"
	"github.com/temirov/guardian/internal/scaffold"
	"github.com/temirov/guardian/internal/utils/flags"
)

// CommandConfiguration captures the configuration the workflow command runs with.
type CommandConfiguration struct {
	Runtime   audit.RuntimeConfiguration
	Execution flags.ExecutionOptions
	Layout    []string
}

// DefaultCommandConfiguration provides the stock runtime, no execution modifiers,
// and the stock container layout.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Runtime: audit.DefaultRuntimeConfiguration(),
		Layout:  scaffold.DefaultLayout(),
	}
}
