// Package audit classifies registry records, detects unreferenced records, and
// orchestrates audit and remediation runs over a registry adapter.
//
// Service is the entry point: RunAudit scans the scoped record set with a bounded
// worker pool and produces a deterministic Report, while RunNamingFix and
// RunFeatureFix rescan and then apply remediation serially. CommandBuilder wires
// the audit cobra command.
package audit
