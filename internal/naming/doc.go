// Package naming holds the naming convention applied to registry records: the
// type-to-prefix table, the short-name validator, and the canonicalizer used by
// the rename remediator.
package naming
