package audit

import (
	"strings"

	"github.com/temirov/guardian/internal/registry"
)

const (
	defaultScopeIncludeConstant       = "/Game/**"
	scopeConfigurationKeyConstant     = "scope"
	scopeIncludeConfigurationKey      = scopeConfigurationKeyConstant + ".include"
	scopeExcludeConfigurationKey      = scopeConfigurationKeyConstant + ".exclude"
	workersConfigurationKeyConstant   = "workers"
	formatConfigurationKeyConstant    = "format"
	failOnIssuesConfigurationKey      = "fail_on_issues"
	configurationKeySeparatorConstant = "."
)

// ScopeConfiguration lists doublestar patterns matched against record paths.
type ScopeConfiguration struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
}

// Build validates the patterns and returns the registry scope.
func (configuration ScopeConfiguration) Build() (registry.Scope, error) {
	return registry.NewScope(configuration.Include, configuration.Exclude)
}

// CommandConfiguration captures persistent settings for the audit command.
type CommandConfiguration struct {
	Scope        ScopeConfiguration `mapstructure:"scope"`
	Workers      int                `mapstructure:"workers"`
	Format       string             `mapstructure:"format"`
	FailOnIssues bool               `mapstructure:"fail_on_issues"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Scope:   ScopeConfiguration{Include: []string{defaultScopeIncludeConstant}},
		Workers: defaultWorkerCountConstant,
		Format:  string(FormatText),
	}
}

// DefaultConfigurationValues produces Viper defaults for the audit section rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + scopeIncludeConfigurationKey:    defaults.Scope.Include,
		prefix + scopeExcludeConfigurationKey:    defaults.Scope.Exclude,
		prefix + workersConfigurationKeyConstant: defaults.Workers,
		prefix + formatConfigurationKeyConstant:  defaults.Format,
		prefix + failOnIssuesConfigurationKey:    defaults.FailOnIssues,
	}
}

// sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Scope.Include = sanitizePatterns(configuration.Scope.Include)
	sanitized.Scope.Exclude = sanitizePatterns(configuration.Scope.Exclude)
	if sanitized.Workers <= 0 {
		sanitized.Workers = defaultWorkerCountConstant
	}
	sanitized.Format = strings.TrimSpace(configuration.Format)
	if len(sanitized.Format) == 0 {
		sanitized.Format = string(FormatText)
	}
	return sanitized
}

func sanitizePatterns(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for index := range raw {
		trimmed := strings.TrimSpace(raw[index])
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
