// Package flags binds the execution flags shared by mutating commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Print planned changes without mutating the registry"
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Apply every change without prompting"
)

// ExecutionOptions are the effective execution modifiers of a command run.
type ExecutionOptions struct {
	DryRun    bool `mapstructure:"dry_run"`
	AssumeYes bool `mapstructure:"assume_yes"`
}

// BindExecutionFlags attaches --dry-run and --yes to command.
func BindExecutionFlags(command *cobra.Command) {
	if command == nil {
		return
	}
	flagSet := command.Flags()
	flagSet.Bool(DryRunFlagName, false, DryRunFlagUsage)
	flagSet.BoolP(AssumeYesFlagName, AssumeYesFlagShorthand, false, AssumeYesFlagUsage)
}

// ResolveExecutionOptions overlays explicitly set flags on the configured options.
func ResolveExecutionOptions(command *cobra.Command, configured ExecutionOptions) ExecutionOptions {
	if command == nil {
		return configured
	}
	resolved := configured
	flagSet := command.Flags()
	if value, changed := changedBool(flagSet, DryRunFlagName); changed {
		resolved.DryRun = value
	}
	if value, changed := changedBool(flagSet, AssumeYesFlagName); changed {
		resolved.AssumeYes = value
	}
	return resolved
}

func changedBool(flagSet *pflag.FlagSet, name string) (bool, bool) {
	if flagSet == nil || flagSet.Lookup(name) == nil || !flagSet.Changed(name) {
		return false, false
	}
	value, valueError := flagSet.GetBool(name)
	if valueError != nil {
		return false, false
	}
	return value, true
}
