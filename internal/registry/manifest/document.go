package manifest

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/guardian/internal/registry"
)

const (
	manifestParseErrorTemplateConstant      = "failed to parse manifest: %w"
	manifestEncodeErrorTemplateConstant     = "failed to encode manifest: %w"
	duplicateRecordErrorTemplateConstant    = "manifest declares duplicate record %s"
	recordNameRequiredErrorTemplateConstant = "manifest record %d missing name or container"
)

// Document is the on-disk manifest layout.
type Document struct {
	Containers []string      `yaml:"containers,omitempty"`
	Records    []RecordEntry `yaml:"records"`
}

// RecordEntry describes one record in the manifest.
type RecordEntry struct {
	Container  string          `yaml:"container"`
	Name       string          `yaml:"name"`
	Type       string          `yaml:"type"`
	Loadable   *bool           `yaml:"loadable,omitempty"`
	Flags      map[string]bool `yaml:"flags,omitempty"`
	References []string        `yaml:"references,omitempty"`
}

// ID returns the registry identifier of the entry.
func (entry RecordEntry) ID() registry.RecordID {
	return registry.JoinRecordID(entry.Container, entry.Name)
}

// IsLoadable reports whether the entry can be loaded; entries are loadable unless stated otherwise.
func (entry RecordEntry) IsLoadable() bool {
	return entry.Loadable == nil || *entry.Loadable
}

// ParseDocument decodes manifest YAML and validates record identity.
func ParseDocument(content []byte) (Document, error) {
	var document Document
	if unmarshalError := yaml.Unmarshal(content, &document); unmarshalError != nil {
		return Document{}, fmt.Errorf(manifestParseErrorTemplateConstant, unmarshalError)
	}

	seen := make(map[registry.RecordID]struct{}, len(document.Records))
	for entryIndex := range document.Records {
		entry := &document.Records[entryIndex]
		entry.Container = strings.TrimSpace(entry.Container)
		entry.Name = strings.TrimSpace(entry.Name)
		entry.Type = strings.TrimSpace(entry.Type)
		if len(entry.Container) == 0 || len(entry.Name) == 0 {
			return Document{}, fmt.Errorf(recordNameRequiredErrorTemplateConstant, entryIndex)
		}
		identifier := entry.ID()
		if _, duplicate := seen[identifier]; duplicate {
			return Document{}, fmt.Errorf(duplicateRecordErrorTemplateConstant, identifier)
		}
		seen[identifier] = struct{}{}
	}

	return document, nil
}

// Encode serializes the document as YAML.
func (document Document) Encode() ([]byte, error) {
	content, marshalError := yaml.Marshal(document)
	if marshalError != nil {
		return nil, fmt.Errorf(manifestEncodeErrorTemplateConstant, marshalError)
	}
	return content, nil
}

func (document Document) clone() Document {
	cloned := Document{
		Containers: append([]string(nil), document.Containers...),
		Records:    make([]RecordEntry, len(document.Records)),
	}
	for entryIndex, entry := range document.Records {
		clonedEntry := entry
		if entry.Loadable != nil {
			loadable := *entry.Loadable
			clonedEntry.Loadable = &loadable
		}
		clonedEntry.Flags = cloneFlags(entry.Flags)
		clonedEntry.References = append([]string(nil), entry.References...)
		cloned.Records[entryIndex] = clonedEntry
	}
	return cloned
}

func cloneFlags(flags map[string]bool) map[string]bool {
	if flags == nil {
		return nil
	}
	cloned := make(map[string]bool, len(flags))
	for flagName, enabled := range flags {
		cloned[flagName] = enabled
	}
	return cloned
}

func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}
	sort.Strings(unique)
	return unique
}
