package domain

import (
	"fmt"
	"strings"
)

// Channel is a texture slot of the material importer
type Channel string

const (
	BaseColor Channel = "baseColor"
	Metalness Channel = "metalness"
	Roughness Channel = "roughness"
	Emissive  Channel = "emissive"
	Bump      Channel = "bump"
	Opacity   Channel = "opacity"
)

// Channels returns every texture channel in UI order
func Channels() []Channel {
	return []Channel{BaseColor, Metalness, Roughness, Emissive, Bump, Opacity}
}

// ParseChannel resolves a channel name, case-insensitively
func ParseChannel(s string) (Channel, error) {
	for _, c := range Channels() {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", NewValidationError("channel", fmt.Sprintf("unknown channel %q", s))
}

// Renderer selects the shader network flavour
type Renderer string

const (
	RendererArnold Renderer = "arnold"
	RendererBlinn  Renderer = "blinn"
)

// ParseRenderer resolves a renderer name. "maya" is accepted for blinn.
func ParseRenderer(s string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arnold", "ai":
		return RendererArnold, nil
	case "blinn", "maya":
		return RendererBlinn, nil
	}
	return "", NewValidationError("renderer", fmt.Sprintf("unknown renderer %q", s))
}

// NodeKind mirrors the shadingNode classification flags
type NodeKind string

const (
	KindShader  NodeKind = "shader"
	KindTexture NodeKind = "texture"
	KindUtility NodeKind = "utility"
)

// ShadingNode is a node to create in the host's shading graph
type ShadingNode struct {
	Name         string
	Type         string
	Kind         NodeKind
	ColorManaged bool
}

// Plug addresses a node attribute. Node is the requested node name; hosts may
// rename nodes on creation, so plugs are resolved when the graph is applied.
type Plug struct {
	Node string
	Attr string
}

func (p Plug) String() string { return p.Node + "." + p.Attr }

// Step is one operation of a material graph: *CreateStep, *ConnectStep or *SetAttrStep
type Step interface {
	step()
}

type CreateStep struct{ Node ShadingNode }

type ConnectStep struct {
	Src, Dst Plug
	Force    bool
}

type SetAttrStep struct {
	Plug  Plug
	Value any // string, bool or int
}

func (*CreateStep) step()  {}
func (*ConnectStep) step() {}
func (*SetAttrStep) step() {}

// MaterialGraph is the ordered recipe for one material network
type MaterialGraph struct {
	Material string
	Renderer Renderer
	Steps    []Step
}

// Create appends a node creation and returns the node's name
func (g *MaterialGraph) Create(node ShadingNode) string {
	g.Steps = append(g.Steps, &CreateStep{Node: node})
	return node.Name
}

// Connect appends an attribute connection
func (g *MaterialGraph) Connect(src, dst Plug, force bool) {
	g.Steps = append(g.Steps, &ConnectStep{Src: src, Dst: dst, Force: force})
}

// Set appends an attribute assignment
func (g *MaterialGraph) Set(plug Plug, value any) {
	g.Steps = append(g.Steps, &SetAttrStep{Plug: plug, Value: value})
}

// Nodes returns the nodes created by the graph in order
func (g *MaterialGraph) Nodes() []ShadingNode {
	var nodes []ShadingNode
	for _, s := range g.Steps {
		if c, ok := s.(*CreateStep); ok {
			nodes = append(nodes, c.Node)
		}
	}
	return nodes
}

// Connections returns the connection steps in order
func (g *MaterialGraph) Connections() []ConnectStep {
	var out []ConnectStep
	for _, s := range g.Steps {
		if c, ok := s.(*ConnectStep); ok {
			out = append(out, *c)
		}
	}
	return out
}

// HasConnection reports whether src is wired to dst
func (g *MaterialGraph) HasConnection(src, dst string) bool {
	for _, c := range g.Connections() {
		if c.Src.String() == src && c.Dst.String() == dst {
			return true
		}
	}
	return false
}
