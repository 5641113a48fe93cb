package registry

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	invalidScopePatternTemplateConstant = "invalid scope pattern %q"
)

// Scope narrows a record set using doublestar include and exclude patterns matched
// against Record.Path. An empty include list admits every record.
type Scope struct {
	includePatterns []string
	excludePatterns []string
}

// NewScope validates the provided patterns and constructs a Scope.
func NewScope(includePatterns []string, excludePatterns []string) (Scope, error) {
	sanitizedIncludes, includeError := sanitizePatterns(includePatterns)
	if includeError != nil {
		return Scope{}, includeError
	}
	sanitizedExcludes, excludeError := sanitizePatterns(excludePatterns)
	if excludeError != nil {
		return Scope{}, excludeError
	}
	return Scope{includePatterns: sanitizedIncludes, excludePatterns: sanitizedExcludes}, nil
}

// Contains reports whether the record falls inside the scope.
func (scope Scope) Contains(record Record) bool {
	recordPath := record.Path()
	for _, excludePattern := range scope.excludePatterns {
		if matchPattern(excludePattern, recordPath) {
			return false
		}
	}
	if len(scope.includePatterns) == 0 {
		return true
	}
	for _, includePattern := range scope.includePatterns {
		if matchPattern(includePattern, recordPath) {
			return true
		}
	}
	return false
}

// Filter returns the records inside the scope, preserving input order.
func (scope Scope) Filter(records []Record) []Record {
	filtered := make([]Record, 0, len(records))
	for _, record := range records {
		if scope.Contains(record) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func sanitizePatterns(patterns []string) ([]string, error) {
	sanitized := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmed := strings.TrimSpace(pattern)
		if len(trimmed) == 0 {
			continue
		}
		if !doublestar.ValidatePattern(trimmed) {
			return nil, fmt.Errorf(invalidScopePatternTemplateConstant, trimmed)
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized, nil
}

func matchPattern(pattern string, recordPath string) bool {
	matched, matchError := doublestar.Match(pattern, recordPath)
	return matchError == nil && matched
}
