package remediate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/registry/dependencies"
	"github.com/temirov/guardian/internal/registry/filesystem"
	"github.com/temirov/guardian/internal/scaffold"
	"github.com/temirov/guardian/internal/utils/flags"
)

const (
	scaffoldUseConstant              = "containers-scaffold"
	scaffoldShortDescriptionConstant = "Create the configured container layout"
	scaffoldLongDescriptionConstant  = "containers-scaffold creates every missing container of the configured layout. Existing containers are left alone, so repeated runs create nothing new."
	scaffoldLayoutFlagName           = "layout"
	scaffoldLayoutFlagUsage          = "Container paths to ensure (defaults to the configured layout)"
	scaffoldCreatedMessage           = "Folder structure created / updated.\n"
	scaffoldUnchangedMessage         = "All containers already existed. Nothing new created.\n"
	registryOpenErrorTemplate        = "unable to open registry: %w"
)

// ScaffoldCommandBuilder assembles the containers-scaffold command.
type ScaffoldCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	Adapter               registry.Adapter
	FileSystem            filesystem.FileSystem
}

// Build constructs the containers-scaffold command.
func (builder *ScaffoldCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   scaffoldUseConstant,
		Short: scaffoldShortDescriptionConstant,
		Long:  scaffoldLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	flags.BindExecutionFlags(command)
	command.Flags().StringSlice(scaffoldLayoutFlagName, nil, scaffoldLayoutFlagUsage)

	return command, nil
}

func (builder *ScaffoldCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := resolveConfiguration(builder.ConfigurationProvider)
	logger := resolveLogger(builder.LoggerProvider)

	layout := configuration.Layout
	if command.Flags().Changed(scaffoldLayoutFlagName) {
		layout, _ = command.Flags().GetStringSlice(scaffoldLayoutFlagName)
	}
	if len(layout) == 0 {
		layout = scaffold.DefaultLayout()
	}

	adapter, closer, adapterError := dependencies.ResolveAdapter(builder.Adapter, configuration.Runtime.Registry, builder.FileSystem)
	if adapterError != nil {
		return fmt.Errorf(registryOpenErrorTemplate, adapterError)
	}
	defer closeRegistry(closer, logger)

	manager, supported := dependencies.ResolveContainerManager(adapter)
	if !supported {
		return scaffold.ErrContainersUnsupported
	}

	service, serviceError := scaffold.NewService(scaffold.Dependencies{
		Manager: manager,
		Output:  command.OutOrStdout(),
		Errors:  command.ErrOrStderr(),
		Logger:  logger,
	})
	if serviceError != nil {
		return serviceError
	}

	execution := flags.ResolveExecutionOptions(command, configuration.Execution)
	result, ensureError := service.EnsureLayout(command.Context(), layout, scaffold.Options{DryRun: execution.DryRun})
	if ensureError != nil {
		return ensureError
	}

	switch {
	case result.CreatedAny():
		fmt.Fprint(command.OutOrStdout(), scaffoldCreatedMessage)
	case !execution.DryRun && len(result.Failed()) == 0:
		fmt.Fprint(command.OutOrStdout(), scaffoldUnchangedMessage)
	}
	return nil
}
