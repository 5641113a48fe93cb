package remediate

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/guardian/internal/audit"
	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/registry/filesystem"
	"github.com/temirov/guardian/internal/remediation/shared"
)

const closeRegistryLogMessageConstant = "failed to close registry"

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// PrompterFactory constructs confirmation prompters scoped to a command.
type PrompterFactory func(*cobra.Command) shared.ConfirmationPrompter

type runtimeOpener struct {
	loggerProvider  LoggerProvider
	prompterFactory PrompterFactory
	adapter         registry.Adapter
	fileSystem      filesystem.FileSystem
}

func (opener runtimeOpener) open(command *cobra.Command, configuration audit.RuntimeConfiguration) (audit.Runtime, *zap.Logger, error) {
	logger := resolveLogger(opener.loggerProvider)
	runtime, runtimeError := audit.OpenRuntime(configuration, audit.Dependencies{
		Adapter:  opener.adapter,
		Logger:   logger,
		Prompter: resolvePrompter(opener.prompterFactory, command),
		Output:   command.OutOrStdout(),
		Errors:   command.ErrOrStderr(),
	}, opener.fileSystem)
	if runtimeError != nil {
		return audit.Runtime{}, logger, runtimeError
	}
	return runtime, logger, nil
}

func closeRegistry(closer io.Closer, logger *zap.Logger) {
	if closeError := closer.Close(); closeError != nil {
		logger.Warn(closeRegistryLogMessageConstant, zap.Error(closeError))
	}
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolvePrompter(factory PrompterFactory, command *cobra.Command) shared.ConfirmationPrompter {
	if factory != nil {
		prompter := factory(command)
		if prompter != nil {
			return prompter
		}
	}
	return shared.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
}
