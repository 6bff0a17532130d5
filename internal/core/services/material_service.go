package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/pkg/logger"
)

// place2dConnections are the place2dTexture -> file wires Maya makes for a new file texture
var place2dConnections = [][2]string{
	{"coverage", "coverage"},
	{"rotateFrame", "rotateFrame"},
	{"mirrorU", "mirrorU"},
	{"mirrorV", "mirrorV"},
	{"stagger", "stagger"},
	{"wrapU", "wrapU"},
	{"wrapV", "wrapV"},
	{"repeatUV", "repeatUV"},
	{"offset", "offset"},
	{"rotateUV", "rotateUV"},
	{"noiseUV", "noiseUV"},
	{"vertexUvOne", "vertexUvOne"},
	{"vertexUvTwo", "vertexUvTwo"},
	{"vertexUvThree", "vertexUvThree"},
	{"vertexCameraOne", "vertexCameraOne"},
	{"outUV", "uv"},
	{"outUvFilterSize", "uvFilterSize"},
}

// MaterialService builds shading networks from a folder of exported textures
type MaterialService struct {
	extensions []string
	log        *logger.Logger
}

// NewMaterialService creates a material service accepting the given image extensions
func NewMaterialService(extensions []string, log *logger.Logger) *MaterialService {
	if log == nil {
		log = logger.Nop()
	}
	exts := make([]string, len(extensions))
	for i, e := range extensions {
		exts[i] = strings.ToLower(e)
	}
	return &MaterialService{extensions: exts, log: log.With("component", "material")}
}

// DiscoverTextures lists the image files in dir, sorted by name
func (s *MaterialService) DiscoverTextures(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewNotFoundError("texture directory", dir)
		}
		return nil, fmt.Errorf("failed to read texture directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		for _, allowed := range s.extensions {
			if ext == allowed {
				files = append(files, name)
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// AutoAssign maps each channel to the first file whose name mentions it
func AutoAssign(files []string) map[domain.Channel]string {
	assigned := make(map[domain.Channel]string)
	for _, ch := range domain.Channels() {
		needle := strings.ToLower(string(ch))
		for _, f := range files {
			if strings.Contains(strings.ToLower(f), needle) {
				assigned[ch] = f
				break
			}
		}
	}
	return assigned
}

// MaterialRequest describes the material to build
type MaterialRequest struct {
	Dir            string
	Renderer       domain.Renderer
	Channels       map[domain.Channel]string // channel -> file name inside Dir
	HeightIsNormal bool
}

// BuildMaterial turns a channel assignment into an ordered shading graph
func (s *MaterialService) BuildMaterial(req MaterialRequest) (*domain.MaterialGraph, error) {
	if len(req.Channels) == 0 {
		return nil, domain.NewValidationError("channels", "no textures assigned")
	}
	channels := make(map[domain.Channel]string, len(req.Channels))
	for ch, file := range req.Channels {
		c, err := domain.ParseChannel(string(ch))
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(file) == "" {
			return nil, domain.NewValidationError("channels", fmt.Sprintf("empty file for %s", ch))
		}
		channels[c] = file
	}
	req.Channels = channels

	folder := filepath.Base(filepath.Clean(req.Dir))
	g := &domain.MaterialGraph{Material: folder + "_SHD", Renderer: req.Renderer}

	switch req.Renderer {
	case domain.RendererBlinn:
		buildBlinn(g, req)
	case domain.RendererArnold:
		buildArnold(g, req)
	default:
		return nil, domain.NewValidationError("renderer", fmt.Sprintf("unknown renderer %q", req.Renderer))
	}

	s.log.Debug("built material", "material", g.Material, "renderer", req.Renderer, "steps", len(g.Steps))
	return g, nil
}

func textureStem(file string) string {
	base := filepath.Base(file)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

func plug(node, attr string) domain.Plug { return domain.Plug{Node: node, Attr: attr} }

// buildBlinn creates a Maya blinn driven by file textures
func buildBlinn(g *domain.MaterialGraph, req MaterialRequest) {
	mat := g.Create(domain.ShadingNode{Name: g.Material, Type: "blinn", Kind: domain.KindShader})

	tex := make(map[domain.Channel]string)
	for _, ch := range domain.Channels() {
		file, ok := req.Channels[ch]
		if !ok {
			continue
		}
		stem := textureStem(file)
		fileNode := g.Create(domain.ShadingNode{Name: stem + "_tx", Type: "file", Kind: domain.KindTexture, ColorManaged: true})
		p2d := g.Create(domain.ShadingNode{Name: stem + "_p2d", Type: "place2dTexture", Kind: domain.KindUtility})
		for _, c := range place2dConnections {
			g.Connect(plug(p2d, c[0]), plug(fileNode, c[1]), true)
		}
		g.Set(plug(fileNode, "fileTextureName"), filepath.Join(req.Dir, file))
		tex[ch] = fileNode
	}

	if n, ok := tex[domain.BaseColor]; ok {
		g.Connect(plug(n, "outColor"), plug(mat, "color"), false)
	}
	if n, ok := tex[domain.Metalness]; ok {
		g.Connect(plug(n, "outColor.outColorR"), plug(mat, "reflectivity"), false)
	}
	if n, ok := tex[domain.Roughness]; ok {
		g.Connect(plug(n, "outColor.outColorR"), plug(mat, "specularRollOff"), false)
	}
	if n, ok := tex[domain.Emissive]; ok {
		g.Connect(plug(n, "outColor"), plug(mat, "incandescence"), false)
	}
	if n, ok := tex[domain.Bump]; ok {
		bump := g.Create(domain.ShadingNode{Name: textureStem(req.Channels[domain.Bump]) + "_BMP", Type: "bump2d", Kind: domain.KindUtility})
		g.Set(plug(n, "alphaIsLuminance"), true)
		if req.HeightIsNormal {
			g.Set(plug(bump, "bumpInterp"), 1)
		}
		g.Connect(plug(n, "outAlpha"), plug(bump, "bumpValue"), false)
		g.Connect(plug(bump, "outNormal"), plug(mat, "normalCamera"), false)
	}
	if n, ok := tex[domain.Opacity]; ok {
		g.Connect(plug(n, "outColor"), plug(mat, "transparency"), false)
	}
}

// buildArnold creates an aiStandardSurface driven by aiImage nodes
func buildArnold(g *domain.MaterialGraph, req MaterialRequest) {
	mat := g.Create(domain.ShadingNode{Name: g.Material, Type: "aiStandardSurface", Kind: domain.KindShader})

	tex := make(map[domain.Channel]string)
	for _, ch := range domain.Channels() {
		file, ok := req.Channels[ch]
		if !ok {
			continue
		}
		img := g.Create(domain.ShadingNode{Name: textureStem(file) + "_aiImage", Type: "aiImage", Kind: domain.KindTexture, ColorManaged: true})
		g.Set(plug(img, "filename"), filepath.Join(req.Dir, file))
		tex[ch] = img
	}

	if n, ok := tex[domain.BaseColor]; ok {
		g.Connect(plug(n, "outColor"), plug(mat, "baseColor"), false)
	}
	if n, ok := tex[domain.Metalness]; ok {
		g.Connect(plug(n, "outColor.outColorR"), plug(mat, "metalness"), false)
	}
	if n, ok := tex[domain.Roughness]; ok {
		g.Connect(plug(n, "outColor.outColorR"), plug(mat, "diffuseRoughness"), false)
	}
	if n, ok := tex[domain.Emissive]; ok {
		g.Connect(plug(n, "outColor"), plug(mat, "emissionColor"), false)
		g.Connect(plug(n, "outColor.outColorR"), plug(mat, "emission"), false)
	}
	if n, ok := tex[domain.Bump]; ok {
		stem := textureStem(req.Channels[domain.Bump])
		if req.HeightIsNormal {
			nrm := g.Create(domain.ShadingNode{Name: stem + "_NRM", Type: "aiNormalMap", Kind: domain.KindUtility})
			g.Connect(plug(n, "outColor"), plug(nrm, "input"), false)
			g.Connect(plug(nrm, "outValue"), plug(mat, "normalCamera"), false)
		} else {
			bump := g.Create(domain.ShadingNode{Name: stem + "_BMP", Type: "aiBump2d", Kind: domain.KindUtility})
			g.Connect(plug(n, "outAlpha"), plug(bump, "bumpMap"), false)
			g.Connect(plug(bump, "outValue"), plug(mat, "normalCamera"), false)
		}
	}
	if n, ok := tex[domain.Opacity]; ok {
		g.Connect(plug(n, "outColor.outColorR"), plug(mat, "transmission"), false)
	}
}

// Apply replays the graph against a shading host. Plugs are resolved through
// the names the host gave each created node.
func (s *MaterialService) Apply(ctx context.Context, g *domain.MaterialGraph, host ports.ShadingGraph) (map[string]string, error) {
	names := make(map[string]string)
	resolve := func(p domain.Plug) string {
		if actual, ok := names[p.Node]; ok {
			return actual + "." + p.Attr
		}
		return p.String()
	}

	for _, step := range g.Steps {
		if err := ctx.Err(); err != nil {
			return names, err
		}
		switch st := step.(type) {
		case *domain.CreateStep:
			actual, err := host.CreateNode(ctx, st.Node)
			if err != nil {
				return names, domain.WrapHost("create node "+st.Node.Name, err)
			}
			names[st.Node.Name] = actual
		case *domain.ConnectStep:
			if err := host.Connect(ctx, resolve(st.Src), resolve(st.Dst), st.Force); err != nil {
				return names, domain.WrapHost("connect "+st.Src.String(), err)
			}
		case *domain.SetAttrStep:
			if err := host.SetAttr(ctx, resolve(st.Plug), st.Value); err != nil {
				return names, domain.WrapHost("set "+st.Plug.String(), err)
			}
		}
	}

	s.log.Info("applied material", "material", g.Material, "nodes", len(names))
	return names, nil
}
