// Package utils holds the configuration and logging plumbing shared by the CLI.
//
// ConfigurationLoader layers embedded defaults, an optional YAML file, and
// GUARDIAN_-prefixed environment variables through Viper. LoggerFactory builds
// zap loggers in structured or console encoding.
package utils
