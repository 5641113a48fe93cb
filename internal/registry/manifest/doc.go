// Package manifest implements registry.Adapter over a YAML manifest file that lists
// containers, records, their feature flags, and the records each one references.
package manifest
