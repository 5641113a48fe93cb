package registry

import (
	"path"
	"strings"
)

const (
	recordPathSeparatorConstant = "/"
)

// RecordID identifies a record within a registry. It is opaque to the engine and
// unique across the registry.
type RecordID string

// String returns the identifier as a plain string.
func (identifier RecordID) String() string {
	return string(identifier)
}

// JoinRecordID builds the conventional identifier for a record living in containerPath.
func JoinRecordID(containerPath string, shortName string) RecordID {
	trimmedContainer := strings.TrimRight(strings.TrimSpace(containerPath), recordPathSeparatorConstant)
	return RecordID(trimmedContainer + recordPathSeparatorConstant + shortName)
}

// Record describes a named, typed registry entry.
type Record struct {
	ID            RecordID
	ContainerPath string
	ShortName     string
	TypeTag       string
	Loadable      bool
}

// Path returns the container-qualified path of the record used for scope matching.
func (record Record) Path() string {
	return path.Join(record.ContainerPath, record.ShortName)
}
