package audit

import (
	"errors"
	"fmt"
	"io"

	"github.com/temirov/guardian/internal/naming"
	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/registry/dependencies"
	"github.com/temirov/guardian/internal/registry/filesystem"
)

const (
	namingRulesErrorTemplateConstant  = "invalid naming configuration: %w"
	scopeErrorTemplateConstant        = "invalid audit scope: %w"
	registryOpenErrorTemplateConstant = "unable to open registry: %w"
)

// RuntimeConfiguration gathers every configuration section a Service needs.
type RuntimeConfiguration struct {
	Registry dependencies.Configuration
	Audit    CommandConfiguration
	Naming   naming.Configuration
	Feature  FeatureRule
}

// DefaultRuntimeConfiguration returns the stock configuration: a manifest registry,
// the default naming table, and the nanite flag on static meshes.
func DefaultRuntimeConfiguration() RuntimeConfiguration {
	return RuntimeConfiguration{
		Registry: dependencies.Configuration{Driver: dependencies.DriverManifest},
		Audit:    DefaultCommandConfiguration(),
		Naming:   naming.DefaultConfiguration(),
		Feature:  DefaultFeatureRule(),
	}
}

// Runtime couples a Service with the adapter it runs against.
type Runtime struct {
	Service *Service
	Adapter registry.Adapter
	closer  io.Closer
}

// Close releases the registry backend.
func (runtime Runtime) Close() error {
	if runtime.closer == nil {
		return nil
	}
	return runtime.closer.Close()
}

// ContainerManager returns the container capability of the adapter when it has one.
func (runtime Runtime) ContainerManager() (registry.ContainerManager, bool) {
	if runtime.Adapter == nil {
		return nil, false
	}
	return dependencies.ResolveContainerManager(runtime.Adapter)
}

// OpenRuntime resolves the registry adapter and builds a Service from configuration.
// base supplies collaborators; a non-nil base.Adapter is used instead of opening
// the configured backend.
func OpenRuntime(configuration RuntimeConfiguration, base Dependencies, fileSystem filesystem.FileSystem) (Runtime, error) {
	auditConfiguration := configuration.Audit.sanitize()

	rules, rulesError := naming.NewRules(configuration.Naming)
	if rulesError != nil {
		return Runtime{}, fmt.Errorf(namingRulesErrorTemplateConstant, rulesError)
	}

	scope, scopeError := auditConfiguration.Scope.Build()
	if scopeError != nil {
		return Runtime{}, fmt.Errorf(scopeErrorTemplateConstant, scopeError)
	}

	adapter, closer, adapterError := dependencies.ResolveAdapter(base.Adapter, configuration.Registry, fileSystem)
	if adapterError != nil {
		return Runtime{}, fmt.Errorf(registryOpenErrorTemplateConstant, adapterError)
	}

	serviceDependencies := base
	serviceDependencies.Adapter = adapter
	serviceDependencies.Rules = rules
	serviceDependencies.Feature = configuration.Feature
	serviceDependencies.Scope = scope
	serviceDependencies.Workers = auditConfiguration.Workers

	service, serviceError := NewService(serviceDependencies)
	if serviceError != nil {
		return Runtime{}, errors.Join(serviceError, closer.Close())
	}

	return Runtime{Service: service, Adapter: adapter, closer: closer}, nil
}
