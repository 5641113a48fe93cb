// Package workflow exposes the workflow command, which runs a YAML file of audit
// and remediation steps against one registry.
package workflow
