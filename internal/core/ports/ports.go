package ports

import (
	"context"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
)

// Catalog defines the port for asset catalog persistence
type Catalog interface {
	// Save writes or overwrites the record for name
	Save(ctx context.Context, name, scenePath, previewPath string, extraInfo map[string]any) (domain.AssetRecord, error)

	// Scan rebuilds the index from the catalog directory and returns a snapshot
	Scan(ctx context.Context) (domain.Snapshot, error)

	// Get looks up a scanned or saved record
	Get(ctx context.Context, name string) (domain.AssetRecord, error)

	// Dir returns the catalog directory
	Dir() string

	// ScenePath returns where the scene file for name lives in the catalog
	ScenePath(name string) string

	// PreviewPath returns where the preview image for name lives in the catalog
	PreviewPath(name string) string
}

// SceneHost defines the port for scene persistence in the host application
type SceneHost interface {
	// CurrentScene reports the open scene's path and unsaved-changes flag
	CurrentScene(ctx context.Context) (domain.SceneState, error)

	// NewScene discards the open scene and starts an untitled one
	NewScene(ctx context.Context) error

	// OpenScene opens the scene file at path
	OpenScene(ctx context.Context, path string) error

	// SaveSceneAs saves the open scene (or only the selection) to path and
	// makes path the current scene
	SaveSceneAs(ctx context.Context, path string, selectedOnly bool) error

	// ImportScene merges the scene file at path into the open scene
	ImportScene(ctx context.Context, path string) error
}

// PreviewCapturer defines the port for rendering the current view to an image
type PreviewCapturer interface {
	CapturePreview(ctx context.Context, path string, width, height int) error
}

// SceneQuery defines the port for reading the scene graph
type SceneQuery interface {
	Snapshot(ctx context.Context) (domain.SceneSnapshot, error)
}

// ShadingGraph defines the port for building shading networks
type ShadingGraph interface {
	// CreateNode creates a node and returns the name the host actually gave it
	CreateNode(ctx context.Context, node domain.ShadingNode) (string, error)

	// Connect wires src to dst
	Connect(ctx context.Context, src, dst string, force bool) error

	// SetAttr assigns a string, bool or int value to plug
	SetAttr(ctx context.Context, plug string, value any) error
}
