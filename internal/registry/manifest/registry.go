package manifest

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/registry/filesystem"
)

const (
	manifestFilePermissionsConstant      = fs.FileMode(0o644)
	manifestReadErrorTemplateConstant    = "failed to read manifest %s: %w"
	recordLookupErrorTemplateConstant    = "%w: %s"
	unsupportedPayloadTemplateConstant   = "unsupported payload type %T for %s"
	renameTargetExistsTemplateConstant   = "%w: %s"
	manifestPersistErrorTemplateConstant = "failed to persist manifest: %w"
)

// Registry is a registry.Adapter backed by a manifest Document. When a path is
// configured every mutation is written back to disk before it becomes visible.
type Registry struct {
	mutex       sync.RWMutex
	path        string
	fileSystem  filesystem.FileSystem
	document    Document
	recordIndex map[registry.RecordID]int
	referencers map[registry.RecordID][]registry.RecordID
}

// Open loads the manifest at path using the provided filesystem.
func Open(path string, fileSystem filesystem.FileSystem) (*Registry, error) {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	content, readError := fileSystem.ReadFile(path)
	if readError != nil {
		return nil, fmt.Errorf(manifestReadErrorTemplateConstant, path, readError)
	}
	document, parseError := ParseDocument(content)
	if parseError != nil {
		return nil, parseError
	}
	manifestRegistry := NewRegistry(document)
	manifestRegistry.path = path
	manifestRegistry.fileSystem = fileSystem
	return manifestRegistry, nil
}

// NewRegistry constructs an in-memory registry over document. Mutations are not persisted.
func NewRegistry(document Document) *Registry {
	manifestRegistry := &Registry{document: document.clone()}
	manifestRegistry.rebuildIndexes()
	return manifestRegistry
}

// Snapshot returns a copy of the current manifest document.
func (manifestRegistry *Registry) Snapshot() Document {
	manifestRegistry.mutex.RLock()
	defer manifestRegistry.mutex.RUnlock()
	return manifestRegistry.document.clone()
}

// ListAll enumerates every record in manifest order.
func (manifestRegistry *Registry) ListAll(executionContext context.Context) ([]registry.Record, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	manifestRegistry.mutex.RLock()
	defer manifestRegistry.mutex.RUnlock()

	records := make([]registry.Record, 0, len(manifestRegistry.document.Records))
	for _, entry := range manifestRegistry.document.Records {
		records = append(records, registry.Record{
			ID:            entry.ID(),
			ContainerPath: entry.Container,
			ShortName:     entry.Name,
			TypeTag:       entry.Type,
			Loadable:      entry.IsLoadable(),
		})
	}
	return records, nil
}

// TryLoad returns a detached payload holding the record's feature flags.
func (manifestRegistry *Registry) TryLoad(executionContext context.Context, identifier registry.RecordID) (registry.Payload, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	manifestRegistry.mutex.RLock()
	defer manifestRegistry.mutex.RUnlock()

	entryIndex, found := manifestRegistry.recordIndex[identifier]
	if !found {
		return nil, fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrRecordNotFound, identifier)
	}
	entry := manifestRegistry.document.Records[entryIndex]
	if !entry.IsLoadable() {
		return nil, fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrPayloadUnavailable, identifier)
	}
	return &flagPayload{flags: cloneFlags(entry.Flags)}, nil
}

// Referencers returns the records whose reference list contains identifier.
func (manifestRegistry *Registry) Referencers(executionContext context.Context, identifier registry.RecordID) ([]registry.RecordID, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	manifestRegistry.mutex.RLock()
	defer manifestRegistry.mutex.RUnlock()

	if _, found := manifestRegistry.recordIndex[identifier]; !found {
		return nil, fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrRecordNotFound, identifier)
	}
	return append([]registry.RecordID(nil), manifestRegistry.referencers[identifier]...), nil
}

// Persist stores the payload flags back into the manifest.
func (manifestRegistry *Registry) Persist(executionContext context.Context, identifier registry.RecordID, payload registry.Payload) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	typedPayload, supported := payload.(*flagPayload)
	if !supported {
		return fmt.Errorf(unsupportedPayloadTemplateConstant, payload, identifier)
	}

	return manifestRegistry.mutate(func(document *Document, recordIndex map[registry.RecordID]int) error {
		entryIndex, found := recordIndex[identifier]
		if !found {
			return fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrRecordNotFound, identifier)
		}
		document.Records[entryIndex].Flags = cloneFlags(typedPayload.flags)
		return nil
	})
}

// Rename moves the record to newName inside targetContainerPath and rewrites every
// reference that pointed at the old identifier.
func (manifestRegistry *Registry) Rename(executionContext context.Context, identifier registry.RecordID, targetContainerPath string, newName string) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	return manifestRegistry.mutate(func(document *Document, recordIndex map[registry.RecordID]int) error {
		entryIndex, found := recordIndex[identifier]
		if !found {
			return fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrRecordNotFound, identifier)
		}

		targetIdentifier := registry.JoinRecordID(targetContainerPath, newName)
		if existingIndex, exists := recordIndex[targetIdentifier]; exists && existingIndex != entryIndex {
			return fmt.Errorf(renameTargetExistsTemplateConstant, registry.ErrTargetExists, targetIdentifier)
		}

		document.Records[entryIndex].Container = strings.TrimSpace(targetContainerPath)
		document.Records[entryIndex].Name = newName

		oldReference := identifier.String()
		for recordPosition := range document.Records {
			references := document.Records[recordPosition].References
			for referencePosition := range references {
				if references[referencePosition] == oldReference {
					references[referencePosition] = targetIdentifier.String()
				}
			}
		}
		return nil
	})
}

// ContainerExists reports whether the container is declared or holds at least one record.
func (manifestRegistry *Registry) ContainerExists(executionContext context.Context, containerPath string) (bool, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return false, contextError
	}

	manifestRegistry.mutex.RLock()
	defer manifestRegistry.mutex.RUnlock()

	trimmedPath := strings.TrimSpace(containerPath)
	for _, declared := range manifestRegistry.document.Containers {
		if declared == trimmedPath {
			return true, nil
		}
	}
	for _, entry := range manifestRegistry.document.Records {
		if entry.Container == trimmedPath {
			return true, nil
		}
	}
	return false, nil
}

// CreateContainer declares a container in the manifest.
func (manifestRegistry *Registry) CreateContainer(executionContext context.Context, containerPath string) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	return manifestRegistry.mutate(func(document *Document, _ map[registry.RecordID]int) error {
		document.Containers = sortedUnique(append(document.Containers, strings.TrimSpace(containerPath)))
		return nil
	})
}

// mutate applies change to a copy of the document, persists it, and only then
// swaps it in. A failed change or write leaves the registry untouched.
func (manifestRegistry *Registry) mutate(change func(document *Document, recordIndex map[registry.RecordID]int) error) error {
	manifestRegistry.mutex.Lock()
	defer manifestRegistry.mutex.Unlock()

	candidate := manifestRegistry.document.clone()
	if changeError := change(&candidate, manifestRegistry.recordIndex); changeError != nil {
		return changeError
	}

	if len(manifestRegistry.path) > 0 && manifestRegistry.fileSystem != nil {
		content, encodeError := candidate.Encode()
		if encodeError != nil {
			return encodeError
		}
		if writeError := manifestRegistry.fileSystem.WriteFileAtomic(manifestRegistry.path, content, manifestFilePermissionsConstant); writeError != nil {
			return fmt.Errorf(manifestPersistErrorTemplateConstant, writeError)
		}
	}

	manifestRegistry.document = candidate
	manifestRegistry.rebuildIndexes()
	return nil
}

func (manifestRegistry *Registry) rebuildIndexes() {
	recordIndex := make(map[registry.RecordID]int, len(manifestRegistry.document.Records))
	for entryIndex, entry := range manifestRegistry.document.Records {
		recordIndex[entry.ID()] = entryIndex
	}

	referencers := make(map[registry.RecordID][]registry.RecordID)
	for _, entry := range manifestRegistry.document.Records {
		sourceIdentifier := entry.ID()
		for _, reference := range sortedUnique(entry.References) {
			targetIdentifier := registry.RecordID(reference)
			referencers[targetIdentifier] = append(referencers[targetIdentifier], sourceIdentifier)
		}
	}

	manifestRegistry.recordIndex = recordIndex
	manifestRegistry.referencers = referencers
}

type flagPayload struct {
	flags map[string]bool
}

func (payload *flagPayload) GetFlag(flagName string) (bool, error) {
	enabled, found := payload.flags[flagName]
	if !found {
		return false, fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrFlagUnavailable, flagName)
	}
	return enabled, nil
}

func (payload *flagPayload) SetFlag(flagName string, enabled bool) error {
	if payload.flags == nil {
		payload.flags = make(map[string]bool)
	}
	payload.flags[flagName] = enabled
	return nil
}
