package mocks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
)

// MockHost is an in-memory SceneHost, PreviewCapturer and SceneQuery for testing.
// Saves and captures write small stub files so directory scans see them.
type MockHost struct {
	mu       sync.Mutex
	state    domain.SceneState
	snapshot domain.SceneSnapshot
	calls    []string
	failures map[string]error
}

// NewMockHost creates a mock host with an untitled, unmodified scene
func NewMockHost() *MockHost {
	return &MockHost{failures: make(map[string]error)}
}

// SetScene sets the current scene state
func (m *MockHost) SetScene(path string, modified bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = domain.SceneState{Path: path, Modified: modified}
}

// SetSnapshot sets the scene graph returned by Snapshot
func (m *MockHost) SetSnapshot(s domain.SceneSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = s
}

// FailOn makes the named operation return err
func (m *MockHost) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = err
}

// Calls returns the recorded operations as "op path" strings
func (m *MockHost) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockHost) record(op, arg string) error {
	m.calls = append(m.calls, op+" "+arg)
	return m.failures[op]
}

func (m *MockHost) CurrentScene(ctx context.Context) (domain.SceneState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["current"]; err != nil {
		return domain.SceneState{}, err
	}
	return m.state, nil
}

func (m *MockHost) NewScene(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("new", ""); err != nil {
		return err
	}
	m.state = domain.SceneState{}
	return nil
}

func (m *MockHost) OpenScene(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("open", path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	m.state = domain.SceneState{Path: path}
	return nil
}

func (m *MockHost) SaveSceneAs(ctx context.Context, path string, selectedOnly bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	op := "save"
	if selectedOnly {
		op = "export"
	}
	if err := m.record(op, path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte("//Maya ASCII mock scene\n"), 0644); err != nil {
		return err
	}
	m.state = domain.SceneState{Path: path}
	return nil
}

func (m *MockHost) ImportScene(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("import", path); err != nil {
		return err
	}
	m.state.Modified = true
	return nil
}

func (m *MockHost) CapturePreview(ctx context.Context, path string, width, height int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("capture", path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("preview %dx%d", width, height)), 0644)
}

func (m *MockHost) Snapshot(ctx context.Context) (domain.SceneSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["snapshot"]; err != nil {
		return domain.SceneSnapshot{}, err
	}
	return m.snapshot, nil
}

// MockShadingGraph records shading operations. Renames maps requested node
// names to the names the fake host hands back.
type MockShadingGraph struct {
	Renames map[string]string
	Nodes   []domain.ShadingNode
	Links   [][2]string
	Attrs   map[string]any
	Fail    error
}

func NewMockShadingGraph() *MockShadingGraph {
	return &MockShadingGraph{
		Renames: make(map[string]string),
		Attrs:   make(map[string]any),
	}
}

func (g *MockShadingGraph) CreateNode(ctx context.Context, node domain.ShadingNode) (string, error) {
	if g.Fail != nil {
		return "", g.Fail
	}
	g.Nodes = append(g.Nodes, node)
	if actual, ok := g.Renames[node.Name]; ok {
		return actual, nil
	}
	return node.Name, nil
}

func (g *MockShadingGraph) Connect(ctx context.Context, src, dst string, force bool) error {
	if g.Fail != nil {
		return g.Fail
	}
	g.Links = append(g.Links, [2]string{src, dst})
	return nil
}

func (g *MockShadingGraph) SetAttr(ctx context.Context, plug string, value any) error {
	if g.Fail != nil {
		return g.Fail
	}
	g.Attrs[plug] = value
	return nil
}
