package dependencies

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/registry/filesystem"
	"github.com/temirov/guardian/internal/registry/manifest"
	"github.com/temirov/guardian/internal/registry/sqlitestore"
)

const (
	// DriverManifest selects the YAML manifest adapter.
	DriverManifest = "manifest"
	// DriverSQLite selects the SQLite adapter.
	DriverSQLite = "sqlite"

	unsupportedDriverTemplateConstant = "unsupported registry driver %q (expected %s or %s)"
	missingPathMessageConstant        = "registry path must be provided"
)

// ErrMissingRegistryPath indicates that no registry location was configured.
var ErrMissingRegistryPath = errors.New(missingPathMessageConstant)

// Configuration selects and locates the registry backend.
type Configuration struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ResolveAdapter returns the provided adapter or opens the configured backend.
// The returned closer must be closed once the adapter is no longer used.
func ResolveAdapter(existing registry.Adapter, configuration Configuration, fileSystem filesystem.FileSystem) (registry.Adapter, io.Closer, error) {
	if existing != nil {
		return existing, nopCloser{}, nil
	}

	trimmedPath := strings.TrimSpace(configuration.Path)
	if len(trimmedPath) == 0 {
		return nil, nil, ErrMissingRegistryPath
	}

	switch strings.ToLower(strings.TrimSpace(configuration.Driver)) {
	case "", DriverManifest:
		manifestRegistry, openError := manifest.Open(trimmedPath, ResolveFileSystem(fileSystem))
		if openError != nil {
			return nil, nil, openError
		}
		return manifestRegistry, nopCloser{}, nil
	case DriverSQLite:
		store, openError := sqlitestore.Open(trimmedPath)
		if openError != nil {
			return nil, nil, openError
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf(unsupportedDriverTemplateConstant, configuration.Driver, DriverManifest, DriverSQLite)
	}
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing filesystem.FileSystem) filesystem.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveContainerManager exposes the container capability of adapter when it has one.
func ResolveContainerManager(adapter registry.Adapter) (registry.ContainerManager, bool) {
	containerManager, supported := adapter.(registry.ContainerManager)
	return containerManager, supported
}
