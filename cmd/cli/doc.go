// Package cli constructs the guardian command-line interface, wiring the Cobra
// command hierarchy, the viper-backed configuration loader, and structured zap
// logging. Subcommands audit the registry, remediate records, scaffold the
// container layout, and run workflow files.
package cli
