// Package shared contains collaborators used by every remediator: the failure
// taxonomy, confirmation policies and prompting, and plain-text progress reporting.
package shared
