package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/guardian/internal/audit"
	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/registry/filesystem"
	"github.com/temirov/guardian/internal/utils/flags"
	"github.com/temirov/guardian/internal/workflow"
)

const (
	commandUseConstant                       = "workflow [workflow]"
	commandShortDescriptionConstant          = "Run a workflow configuration file"
	commandLongDescriptionConstant           = "workflow executes the audit and remediation steps declared in a YAML file in order, stopping at the first failing step."
	configurationPathRequiredMessageConstant = "workflow configuration path required; provide a positional argument"
	loadConfigurationErrorTemplateConstant   = "unable to load workflow configuration: %w"
	buildOperationsErrorTemplateConstant     = "unable to build workflow operations: %w"
	closeRegistryLogMessageConstant          = "failed to close registry"
)

// CommandBuilder assembles the workflow command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	PrompterFactory       PrompterFactory
	ConfigurationProvider func() CommandConfiguration
	Adapter               registry.Adapter
	FileSystem            filesystem.FileSystem
}

// Build constructs the workflow command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	flags.BindExecutionFlags(command)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configurationPath := ""
	if len(arguments) > 0 {
		configurationPath = strings.TrimSpace(arguments[0])
	}
	if len(configurationPath) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errors.New(configurationPathRequiredMessageConstant)
	}

	workflowConfiguration, configurationError := workflow.LoadConfiguration(configurationPath)
	if configurationError != nil {
		return fmt.Errorf(loadConfigurationErrorTemplateConstant, configurationError)
	}

	operations, operationsError := workflow.BuildOperations(workflowConfiguration)
	if operationsError != nil {
		return fmt.Errorf(buildOperationsErrorTemplateConstant, operationsError)
	}

	commandConfiguration := builder.resolveConfiguration()
	logger := resolveLogger(builder.LoggerProvider)

	runtime, runtimeError := audit.OpenRuntime(commandConfiguration.Runtime, audit.Dependencies{
		Adapter:  builder.Adapter,
		Logger:   logger,
		Prompter: resolvePrompter(builder.PrompterFactory, command),
		Output:   command.OutOrStdout(),
		Errors:   command.ErrOrStderr(),
	}, builder.FileSystem)
	if runtimeError != nil {
		return runtimeError
	}
	defer func() {
		if closeError := runtime.Close(); closeError != nil {
			logger.Warn(closeRegistryLogMessageConstant, zap.Error(closeError))
		}
	}()

	workflowDependencies := workflow.Dependencies{
		AuditService:  runtime.Service,
		DefaultLayout: commandConfiguration.Layout,
		Logger:        logger,
		Output:        command.OutOrStdout(),
		Errors:        command.ErrOrStderr(),
	}
	if containers, supported := runtime.ContainerManager(); supported {
		workflowDependencies.Containers = containers
	}

	execution := flags.ResolveExecutionOptions(command, commandConfiguration.Execution)
	executor := workflow.NewExecutor(operations, workflowDependencies)
	return executor.Execute(command.Context(), workflow.RuntimeOptions{
		DryRun:    execution.DryRun,
		AssumeYes: execution.AssumeYes,
	})
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}
