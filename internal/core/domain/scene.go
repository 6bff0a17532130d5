package domain

import "strings"

// SceneState is what the host reports about the currently open scene
type SceneState struct {
	Path     string // empty for an unsaved scene
	Modified bool
}

// IsUntitled reports whether the scene has never been saved
func (s SceneState) IsUntitled() bool {
	return s.Path == ""
}

// Vec3 is an x/y/z attribute triple
type Vec3 [3]float64

var (
	Zero3 = Vec3{0, 0, 0}
	One3  = Vec3{1, 1, 1}
)

// SceneObject is one DAG node (transform or joint) as reported by the host
type SceneObject struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`               // "transform", "joint", ...
	Children  []string `yaml:"children,omitempty"` // node types of direct children
	Translate Vec3     `yaml:"translate"`
	Rotate    Vec3     `yaml:"rotate"`
	Scale     Vec3     `yaml:"scale"`
	History   []string `yaml:"history,omitempty"` // upstream construction nodes
}

// EffectiveType is the child's type for a transform with exactly one child,
// otherwise the object's own type
func (o SceneObject) EffectiveType() string {
	if len(o.Children) == 1 {
		return o.Children[0]
	}
	return o.Type
}

// HasSuffix reports whether the name ends in _{suffix}
func (o SceneObject) HasSuffix(suffix string) bool {
	return strings.HasSuffix(o.Name, "_"+suffix)
}

// SceneSnapshot is a read-only view of the scene graph used by scene checks
type SceneSnapshot struct {
	Objects     []SceneObject `yaml:"objects"`
	ImagePlanes []string      `yaml:"image_planes,omitempty"`
}

// geometryTypes are shape types that count as geometry for history checks
var geometryTypes = map[string]bool{
	"mesh":         true,
	"nurbsSurface": true,
	"subdiv":       true,
}

// IsGeometry reports whether the object's shape is a geometry type
func (o SceneObject) IsGeometry() bool {
	for _, c := range o.Children {
		if geometryTypes[c] {
			return true
		}
	}
	return geometryTypes[o.Type]
}

// CheckReport is the result of one scene check
type CheckReport struct {
	Check    string
	Passed   bool
	Message  string   // summary shown when the check fails
	Failures []string // offending object names
}
