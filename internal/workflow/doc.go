// Package workflow runs ordered audit and remediation steps declared in YAML.
//
// A workflow file lists steps such as audit-report, rename-records,
// enable-feature, and ensure-layout. Every step runs against the same
// audit.Service, so each remediation step rescans the registry first.
package workflow
