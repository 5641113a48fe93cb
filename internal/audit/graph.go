package audit

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/remediation/shared"
)

const (
	unusedDetailConstant         = "No referencers"
	referencersOperationConstant = "referencers"
	referencerLookupLogMessage   = "referencer lookup failed; record treated as referenced"
)

// ReferencerLookup returns the direct referencers of a record.
type ReferencerLookup func(executionContext context.Context, identifier registry.RecordID) ([]registry.RecordID, error)

// ReferencerGraph maps each record to the set of records that reference it. It is
// built fresh for every run. Records whose lookup failed are tracked separately and
// are never reported as unused.
type ReferencerGraph struct {
	referencers map[registry.RecordID][]registry.RecordID
	failures    map[registry.RecordID]error
}

func newReferencerGraph(capacity int) ReferencerGraph {
	return ReferencerGraph{
		referencers: make(map[registry.RecordID][]registry.RecordID, capacity),
		failures:    make(map[registry.RecordID]error),
	}
}

func (graph ReferencerGraph) add(identifier registry.RecordID, referencers []registry.RecordID, lookupError error, logger *zap.Logger) {
	if lookupError != nil {
		logger.Warn(referencerLookupLogMessage, shared.FailureFields(identifier, shared.FailureKindAdapter, referencersOperationConstant, lookupError)...)
		graph.failures[identifier] = lookupError
		return
	}

	unique := make(map[registry.RecordID]struct{}, len(referencers))
	sorted := make([]registry.RecordID, 0, len(referencers))
	for _, referencer := range referencers {
		if _, seen := unique[referencer]; seen {
			continue
		}
		unique[referencer] = struct{}{}
		sorted = append(sorted, referencer)
	}
	sort.Slice(sorted, func(left int, right int) bool { return sorted[left] < sorted[right] })
	graph.referencers[identifier] = sorted
}

// BuildReferencerGraph queries lookup for every record. Lookup errors are logged and
// recorded per record and do not stop the build; only cancellation does. A record
// listed among its own referencers counts as referenced.
func BuildReferencerGraph(executionContext context.Context, records []registry.Record, lookup ReferencerLookup, logger *zap.Logger) (ReferencerGraph, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	graph := newReferencerGraph(len(records))
	for _, record := range records {
		if contextError := executionContext.Err(); contextError != nil {
			return graph, contextError
		}
		referencers, lookupError := lookup(executionContext, record.ID)
		graph.add(record.ID, referencers, lookupError, logger)
	}
	return graph, nil
}

// Referencers returns the sorted referencer set of identifier.
func (graph ReferencerGraph) Referencers(identifier registry.RecordID) []registry.RecordID {
	return append([]registry.RecordID(nil), graph.referencers[identifier]...)
}

// LookupFailures returns the records whose referencer lookup failed.
func (graph ReferencerGraph) LookupFailures() map[registry.RecordID]error {
	failures := make(map[registry.RecordID]error, len(graph.failures))
	for identifier, lookupError := range graph.failures {
		failures[identifier] = lookupError
	}
	return failures
}

// IsUnused reports whether identifier was looked up successfully and has no referencers.
func (graph ReferencerGraph) IsUnused(identifier registry.RecordID) bool {
	if _, failed := graph.failures[identifier]; failed {
		return false
	}
	referencers, known := graph.referencers[identifier]
	return known && len(referencers) == 0
}

// Unused returns an Unused issue for every unreferenced record, in record order.
func (graph ReferencerGraph) Unused(records []registry.Record) []Issue {
	var issues []Issue
	for _, record := range records {
		if graph.IsUnused(record.ID) {
			issues = append(issues, Issue{RecordID: record.ID, Kind: IssueKindUnused, Detail: unusedDetailConstant})
		}
	}
	return issues
}

// FindUnused flags every record without direct referencers. A failed lookup counts
// as having referencers. Only direct references are considered.
func FindUnused(executionContext context.Context, records []registry.Record, lookup ReferencerLookup, logger *zap.Logger) ([]Issue, error) {
	graph, buildError := BuildReferencerGraph(executionContext, records, lookup, logger)
	if buildError != nil {
		return nil, buildError
	}
	return graph.Unused(records), nil
}
