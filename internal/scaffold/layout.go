package scaffold

import (
	"fmt"
	"path"
	"strings"
)

const (
	containerPathSeparatorConstant        = "/"
	relativeContainerPathTemplateConstant = "container path %q must be absolute"
)

var defaultLayout = []string{
	"/Game/Art",
	"/Game/Art/Materials",
	"/Game/Art/Textures",
	"/Game/Art/Meshes",
	"/Game/Art/FX",
	"/Game/Art/Decals",
	"/Game/Blueprints",
	"/Game/Blueprints/Characters",
	"/Game/Blueprints/UI",
	"/Game/Blueprints/Systems",
	"/Game/Blueprints/Props",
	"/Game/Levels",
	"/Game/Levels/Environments",
	"/Game/Levels/Gameplay",
	"/Game/Levels/Test",
	"/Game/Audio",
	"/Game/Animations",
	"/Game/UI",
	"/Game/Dev",
	"/Game/Dev/Trash",
	"/Game/Dev/Temp",
}

// DefaultLayout returns the stock container tree.
func DefaultLayout() []string {
	return append([]string{}, defaultLayout...)
}

// SanitizeLayout cleans every container path, drops blanks and duplicates, and
// keeps the first-seen order. Relative paths are rejected.
func SanitizeLayout(layout []string) ([]string, error) {
	sanitized := make([]string, 0, len(layout))
	seen := make(map[string]struct{}, len(layout))
	for _, rawPath := range layout {
		trimmedPath := strings.TrimSpace(rawPath)
		if len(trimmedPath) == 0 {
			continue
		}
		if !strings.HasPrefix(trimmedPath, containerPathSeparatorConstant) {
			return nil, fmt.Errorf(relativeContainerPathTemplateConstant, trimmedPath)
		}
		cleanedPath := path.Clean(trimmedPath)
		if cleanedPath == containerPathSeparatorConstant {
			continue
		}
		if _, duplicate := seen[cleanedPath]; duplicate {
			continue
		}
		seen[cleanedPath] = struct{}{}
		sanitized = append(sanitized, cleanedPath)
	}
	return sanitized, nil
}
