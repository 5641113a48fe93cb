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
	renameUseConstant              = "records-rename"
	renameShortDescriptionConstant = "Rename scoped records to their canonical names"
	renameLongDescriptionConstant  = "records-rename rescans the registry and renames every loadable record whose name violates the naming convention. Referencers are updated by the registry. Use --dry-run to print the plan."
	renameSummaryTemplateConstant  = "Naming fix complete: %d renamed, %d rejected.\n"
)

// RenameCommandBuilder assembles the records-rename command.
type RenameCommandBuilder struct {
	LoggerProvider        LoggerProvider
	PrompterFactory       PrompterFactory
	ConfigurationProvider func() CommandConfiguration
	Adapter               registry.Adapter
	FileSystem            filesystem.FileSystem
}

// Build constructs the records-rename command.
func (builder *RenameCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   renameUseConstant,
		Short: renameShortDescriptionConstant,
		Long:  renameLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	flags.BindExecutionFlags(command)

	return command, nil
}

func (builder *RenameCommandBuilder) run(command *cobra.Command, arguments []string) error {
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
	result, fixError := runtime.Service.RunNamingFix(command.Context(), audit.RemediationOptions{
		DryRun:    execution.DryRun,
		AssumeYes: execution.AssumeYes,
	})
	if fixError != nil {
		return fixError
	}

	if !execution.DryRun {
		fmt.Fprintf(command.OutOrStdout(), renameSummaryTemplateConstant, len(result.Renamed()), len(result.Rejections))
	}
	return nil
}
