// Package registry defines the contracts the audit engine consumes from a content
// registry: records, loadable payloads with feature flags, referencer lookups, and
// the mutating rename and persist operations.
//
// Concrete adapters live in the manifest and sqlitestore subpackages. Scope narrows
// the enumerated record set with include and exclude glob patterns.
package registry
