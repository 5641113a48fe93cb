package audit

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/registry/filesystem"
)

const (
	commandNameConstant         = "audit"
	commandShortDescription     = "Audit registry records for load, naming, feature, and usage issues"
	commandLongDescription      = "audit scans the scoped registry records and reports load failures, naming violations, disabled features, and unreferenced records. It never mutates the registry."
	flagFormatName              = "format"
	flagFormatDescription       = "Report format (text, csv, or json)"
	flagIncludeName             = "include"
	flagIncludeDescription      = "Doublestar patterns selecting records to audit"
	flagExcludeName             = "exclude"
	flagExcludeDescription      = "Doublestar patterns excluding records from the audit"
	flagWorkersName             = "workers"
	flagWorkersDescription      = "Maximum number of records scanned concurrently"
	flagFailOnIssuesName        = "fail-on-issues"
	flagFailOnIssuesDescription = "Exit with an error when the report contains issues"
	flagNoColorName             = "no-color"
	flagNoColorDescription      = "Disable colored section headers"
	issuesFoundTemplateConstant = "%w: %d issue(s)"
	closeRegistryLogMessage     = "failed to close registry"
	issuesFoundMessageConstant  = "audit found issues"
)

// ErrIssuesFound is returned by the audit command when --fail-on-issues is set
// and the report is not empty.
var ErrIssuesFound = errors.New(issuesFoundMessageConstant)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the audit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() RuntimeConfiguration
	Adapter               registry.Adapter
	FileSystem            filesystem.FileSystem
}

// Build constructs the cobra command for registry audits.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(flagFormatName, "", flagFormatDescription)
	command.Flags().StringSlice(flagIncludeName, nil, flagIncludeDescription)
	command.Flags().StringSlice(flagExcludeName, nil, flagExcludeDescription)
	command.Flags().Int(flagWorkersName, 0, flagWorkersDescription)
	command.Flags().Bool(flagFailOnIssuesName, false, flagFailOnIssuesDescription)
	command.Flags().Bool(flagNoColorName, false, flagNoColorDescription)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration(command)
	auditConfiguration := configuration.Audit.sanitize()

	format, formatError := ParseFormat(auditConfiguration.Format)
	if formatError != nil {
		return formatError
	}

	logger := builder.resolveLogger()
	runtime, runtimeError := OpenRuntime(configuration, Dependencies{
		Adapter: builder.Adapter,
		Logger:  logger,
		Output:  command.OutOrStdout(),
		Errors:  command.ErrOrStderr(),
	}, builder.FileSystem)
	if runtimeError != nil {
		return runtimeError
	}
	defer func() {
		if closeError := runtime.Close(); closeError != nil {
			logger.Warn(closeRegistryLogMessage, zap.Error(closeError))
		}
	}()

	report, auditError := runtime.Service.RunAudit(command.Context())
	if auditError != nil {
		return auditError
	}

	noColor, _ := command.Flags().GetBool(flagNoColorName)
	renderer := NewRenderer(format, !noColor && !color.NoColor)
	if renderError := renderer.Render(command.OutOrStdout(), report); renderError != nil {
		return renderError
	}

	if auditConfiguration.FailOnIssues && len(report.Issues) > 0 {
		return fmt.Errorf(issuesFoundTemplateConstant, ErrIssuesFound, len(report.Issues))
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) RuntimeConfiguration {
	configuration := DefaultRuntimeConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	flags := command.Flags()
	if flags.Changed(flagFormatName) {
		configuration.Audit.Format, _ = flags.GetString(flagFormatName)
	}
	if flags.Changed(flagIncludeName) {
		configuration.Audit.Scope.Include, _ = flags.GetStringSlice(flagIncludeName)
	}
	if flags.Changed(flagExcludeName) {
		configuration.Audit.Scope.Exclude, _ = flags.GetStringSlice(flagExcludeName)
	}
	if flags.Changed(flagWorkersName) {
		configuration.Audit.Workers, _ = flags.GetInt(flagWorkersName)
	}
	if flags.Changed(flagFailOnIssuesName) {
		configuration.Audit.FailOnIssues, _ = flags.GetBool(flagFailOnIssuesName)
	}
	return configuration
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
