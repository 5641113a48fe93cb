package registry

import "context"

// Payload exposes the feature flag capability of a loaded record.
type Payload interface {
	GetFlag(flagName string) (bool, error)
	SetFlag(flagName string, enabled bool) error
}

// Adapter is the narrow boundary between the audit engine and a content registry.
// Adapters must be safe for concurrent read calls; mutating calls are issued serially.
type Adapter interface {
	ListAll(executionContext context.Context) ([]Record, error)
	TryLoad(executionContext context.Context, identifier RecordID) (Payload, error)
	Referencers(executionContext context.Context, identifier RecordID) ([]RecordID, error)
	Persist(executionContext context.Context, identifier RecordID, payload Payload) error
	Rename(executionContext context.Context, identifier RecordID, targetContainerPath string, newName string) error
}

// ContainerManager is implemented by adapters that can create record containers.
type ContainerManager interface {
	ContainerExists(executionContext context.Context, containerPath string) (bool, error)
	CreateContainer(executionContext context.Context, containerPath string) error
}
