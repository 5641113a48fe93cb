package remediate

import (
	"github.com/temirov/guardian/internal/audit"
	"github.com/temirov/guardian/internal/scaffold"
	"github.com/temirov/guardian/internal/utils/flags"
)

// CommandConfiguration captures the configuration remediation commands run with.
type CommandConfiguration struct {
	Runtime   audit.RuntimeConfiguration
	Execution flags.ExecutionOptions
	Layout    []string
}

// DefaultCommandConfiguration provides the stock runtime and container layout.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Runtime: audit.DefaultRuntimeConfiguration(),
		Layout:  scaffold.DefaultLayout(),
	}
}

func resolveConfiguration(provider func() CommandConfiguration) CommandConfiguration {
	if provider == nil {
		return DefaultCommandConfiguration()
	}
	return provider()
}
