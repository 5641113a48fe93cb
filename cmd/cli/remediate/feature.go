package remediate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/guardian/internal/audit"
	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/registry/filesystem"
	"github.com/temirov/guardian/internal/utils/flags"
)

const (
	featureUseConstant              = "records-feature-enable"
	featureShortDescriptionConstant = "Enable the configured feature flag on flagged records"
	featureLongDescriptionConstant  = "records-feature-enable rescans the registry and turns on the configured feature flag for every record the audit reports as disabled."
	featureSummaryTemplateConstant  = "Feature fix complete: %d record(s) enabled.\n"
)

// FeatureCommandBuilder assembles the records-feature-enable command.
type FeatureCommandBuilder struct {
	LoggerProvider        LoggerProvider
	PrompterFactory       PrompterFactory
	ConfigurationProvider func() CommandConfiguration
	Adapter               registry.Adapter
	FileSystem            filesystem.FileSystem
}

// Build constructs the records-feature-enable command.
func (builder *FeatureCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   featureUseConstant,
		Short: featureShortDescriptionConstant,
		Long:  featureLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	flags.BindExecutionFlags(command)

	return command, nil
}

func (builder *FeatureCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := resolveConfiguration(builder.ConfigurationProvider)
	opener := runtimeOpener{
		loggerProvider:  builder.LoggerProvider,
		prompterFactory: builder.PrompterFactory,
		adapter:         builder.Adapter,
		fileSystem:      builder.FileSystem,
	}

	runtime, logger, runtimeError := opener.open(command, configuration.Runtime)
	if runtimeError != nil {
		return runtimeError
	}
	defer closeRegistry(runtime, logger)

	execution := flags.ResolveExecutionOptions(command, configuration.Execution)
	result, fixError := runtime.Service.RunFeatureFix(command.Context(), audit.RemediationOptions{
		DryRun:    execution.DryRun,
		AssumeYes: execution.AssumeYes,
	})
	if fixError != nil {
		return fixError
	}

	if !execution.DryRun {
		fmt.Fprintf(command.OutOrStdout(), featureSummaryTemplateConstant, result.Count())
	}
	return nil
}
