package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/guardian/internal/audit"
	"github.com/temirov/guardian/internal/naming"
	"github.com/temirov/guardian/internal/registry"
	"github.com/temirov/guardian/internal/registry/manifest"
)

const (
	testFlagName        = "nanite"
	testRegistryContent = `records:
  - container: /Game/Art/Meshes
    name: crate_01
    type: StaticMesh
    flags: {nanite: false}
  - container: /Game/Art/Meshes
    name: SM_Rock
    type: StaticMesh
    flags: {nanite: true}
  - container: /Game/Art/Meshes
    name: SM_Broken
    type: StaticMesh
    loadable: false
  - container: /Game/Art/Meshes
    name: SM_Mystery
    type: StaticMesh
  - container: /Game/Maps
    name: Level_01
    type: World
    references:
      - /Game/Art/Meshes/crate_01
      - /Game/Art/Meshes/SM_Rock
      - /Game/Art/Meshes/SM_Broken
  - container: /Game/Art/Textures
    name: New Texture
    type: Texture
  - container: /Engine/Content
    name: debug cube
    type: StaticMesh
`
)

func newTestRegistry(testInstance *testing.T) *manifest.Registry {
	testInstance.Helper()
	document, parseError := manifest.ParseDocument([]byte(testRegistryContent))
	require.NoError(testInstance, parseError)
	return manifest.NewRegistry(document)
}

func newTestScope(testInstance *testing.T) registry.Scope {
	testInstance.Helper()
	scope, scopeError := registry.NewScope([]string{"/Game/**"}, nil)
	require.NoError(testInstance, scopeError)
	return scope
}

func newTestService(testInstance *testing.T, adapter registry.Adapter, customize func(dependencies *audit.Dependencies)) *audit.Service {
	testInstance.Helper()
	dependencies := audit.Dependencies{
		Adapter: adapter,
		Rules:   naming.MustDefaultRules(),
		Feature: audit.FeatureRule{TypeTag: "StaticMesh", FlagName: testFlagName},
		Scope:   newTestScope(testInstance),
		Workers: 4,
	}
	if customize != nil {
		customize(&dependencies)
	}
	service, serviceError := audit.NewService(dependencies)
	require.NoError(testInstance, serviceError)
	return service
}

func runTestAudit(testInstance *testing.T, service *audit.Service) audit.Report {
	testInstance.Helper()
	report, auditError := service.RunAudit(context.Background())
	require.NoError(testInstance, auditError)
	return report
}
