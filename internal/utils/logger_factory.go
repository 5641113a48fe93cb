package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	standardErrorOutputPathConstant      = "stderr"
	applicationFieldNameConstant         = "app"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// ParseLogLevel normalizes a configured level name.
func ParseLogLevel(raw string) (LogLevel, error) {
	candidate := LogLevel(strings.ToLower(strings.TrimSpace(raw)))
	if _, supported := logLevelMapping[candidate]; !supported {
		return "", fmt.Errorf(unsupportedLogLevelTemplateConstant, raw)
	}
	return candidate, nil
}

// ParseLogFormat normalizes a configured format name.
func ParseLogFormat(raw string) (LogFormat, error) {
	candidate := LogFormat(strings.ToLower(strings.TrimSpace(raw)))
	if _, supported := logFormatEncodingMapping[candidate]; !supported {
		return "", fmt.Errorf(unsupportedLogFormatTemplateConstant, raw)
	}
	return candidate, nil
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct {
	applicationName string
	outputPaths     []string
}

// NewLoggerFactory constructs a factory writing to standard error. Every logger it
// builds carries the application name as the app field.
func NewLoggerFactory(applicationName string) *LoggerFactory {
	return &LoggerFactory{
		applicationName: strings.TrimSpace(applicationName),
		outputPaths:     []string{standardErrorOutputPathConstant},
	}
}

// WithOutputPaths returns a copy of the factory writing to the provided zap sinks.
func (factory *LoggerFactory) WithOutputPaths(outputPaths ...string) *LoggerFactory {
	duplicatedPaths := make([]string, len(outputPaths))
	copy(duplicatedPaths, outputPaths)
	return &LoggerFactory{applicationName: factory.applicationName, outputPaths: duplicatedPaths}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
// Sampling is disabled so that every per-record failure reaches the log.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	logLevel, levelError := ParseLogLevel(string(requestedLogLevel))
	if levelError != nil {
		return nil, levelError
	}

	logFormat, formatError := ParseLogFormat(string(requestedLogFormat))
	if formatError != nil {
		return nil, formatError
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(logLevelMapping[logLevel])
	configuration.Encoding = logFormatEncodingMapping[logFormat]
	configuration.Sampling = nil
	if len(factory.outputPaths) > 0 {
		configuration.OutputPaths = append([]string{}, factory.outputPaths...)
	}
	if logFormat == LogFormatConsole {
		configuration.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		configuration.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	var options []zap.Option
	if len(factory.applicationName) > 0 {
		options = append(options, zap.Fields(zap.String(applicationFieldNameConstant, factory.applicationName)))
	}

	logger, buildError := configuration.Build(options...)
	if buildError != nil {
		return nil, buildError
	}

	return logger, nil
}
