package audit

import (
	"github.com/temirov/guardian/internal/registry"
)

// IssueKind enumerates the problems the audit detects.
type IssueKind string

// Issue kinds in report order.
const (
	IssueKindLoadFailure     IssueKind = "load_failure"
	IssueKindNamingViolation IssueKind = "naming_violation"
	IssueKindFeatureDisabled IssueKind = "feature_disabled"
	IssueKindUnused          IssueKind = "unused"
)

// IssueKinds returns every issue kind in report order.
func IssueKinds() []IssueKind {
	return []IssueKind{IssueKindLoadFailure, IssueKindNamingViolation, IssueKindFeatureDisabled, IssueKindUnused}
}

// Issue is a single finding about one record.
type Issue struct {
	RecordID registry.RecordID `json:"record_id"`
	Kind     IssueKind         `json:"kind"`
	Detail   string            `json:"detail"`
}

// Summary counts issues by kind.
type Summary struct {
	RecordsScanned int               `json:"records_scanned"`
	Counts         map[IssueKind]int `json:"counts"`
}

// Report is the result of one audit run. Issues are ordered by record identifier
// and, within a record, by the pass that produced them.
type Report struct {
	Issues  []Issue `json:"issues"`
	Summary Summary `json:"summary"`
}

// IssuesOfKind returns the issues of kind in report order.
func (report Report) IssuesOfKind(kind IssueKind) []Issue {
	var filtered []Issue
	for _, issue := range report.Issues {
		if issue.Kind == kind {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// FlaggedRecords returns the identifiers carrying an issue of kind.
func (report Report) FlaggedRecords(kind IssueKind) map[registry.RecordID]struct{} {
	flagged := make(map[registry.RecordID]struct{})
	for _, issue := range report.Issues {
		if issue.Kind == kind {
			flagged[issue.RecordID] = struct{}{}
		}
	}
	return flagged
}

func summarize(recordsScanned int, issues []Issue) Summary {
	counts := make(map[IssueKind]int, len(IssueKinds()))
	for _, kind := range IssueKinds() {
		counts[kind] = 0
	}
	for _, issue := range issues {
		counts[issue.Kind]++
	}
	return Summary{RecordsScanned: recordsScanned, Counts: counts}
}
