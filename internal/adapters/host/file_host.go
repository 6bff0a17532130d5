package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/pkg/fileutil"
	"github.com/kamal-hamza/px-cli/pkg/logger"
)

const untitledName = "untitled"

// OutlineExt is the suffix of the scene outline sidecar read by Snapshot
const OutlineExt = ".outline.yaml"

const sceneHeader = "//Maya ASCII 2024 scene\n//Codeset: UTF-8\nrequires maya \"2024\";\n"

// session is the persisted state of the stand-in host
type session struct {
	Scene     string    `yaml:"scene,omitempty"` // empty while untitled
	SavedAt   time.Time `yaml:"saved_at"`
	Dirty     bool      `yaml:"dirty,omitempty"`
	Selection []string  `yaml:"selection,omitempty"`
}

// FileHost is a file-backed scene host. Scenes are plain files on disk, the open
// scene is tracked in a session file and the scene graph is read from an outline
// sidecar next to each scene.
type FileHost struct {
	sessionPath string
	scratchDir  string
	sceneExt    string
	lock        *flock.Flock
	log         *logger.Logger
}

// NewFileHost creates a host whose session and untitled scene live in cacheDir
func NewFileHost(cacheDir, sceneExt string, log *logger.Logger) *FileHost {
	if log == nil {
		log = logger.Nop()
	}
	sessionPath := filepath.Join(cacheDir, "session.yaml")
	return &FileHost{
		sessionPath: sessionPath,
		scratchDir:  cacheDir,
		sceneExt:    sceneExt,
		lock:        flock.New(sessionPath + ".lock"),
		log:         log.With("component", "host"),
	}
}

// OutlinePath returns the outline sidecar of a scene file
func OutlinePath(scenePath string) string {
	return strings.TrimSuffix(scenePath, filepath.Ext(scenePath)) + OutlineExt
}

func (h *FileHost) scratchPath() string {
	return filepath.Join(h.scratchDir, untitledName+h.sceneExt)
}

// scenePath is the file backing the open scene
func (h *FileHost) scenePath(s *session) string {
	if s.Scene == "" {
		return h.scratchPath()
	}
	return s.Scene
}

func (h *FileHost) readSession() (*session, error) {
	data, err := os.ReadFile(h.sessionPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &session{}, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var s session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &s, nil
}

func (h *FileHost) writeSession(s *session) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return fileutil.WriteFileAtomic(h.sessionPath, data, 0644)
}

// update runs fn on the session under the session lock and persists the result
func (h *FileHost) update(fn func(s *session) error) error {
	if err := os.MkdirAll(h.scratchDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := h.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock session: %w", err)
	}
	defer func() {
		if err := h.lock.Unlock(); err != nil {
			h.log.Warn("failed to release session lock", "error", err)
		}
	}()

	s, err := h.readSession()
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	return h.writeSession(s)
}

func (h *FileHost) view() (*session, error) {
	if !fileutil.Exists(h.sessionPath) {
		return &session{}, nil
	}
	if err := h.lock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	defer h.lock.Unlock()
	return h.readSession()
}

// markSaved records path as the open scene, saved as of its current mtime
func markSaved(s *session, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	s.SavedAt = info.ModTime()
	s.Dirty = false
	return nil
}

func (h *FileHost) CurrentScene(ctx context.Context) (domain.SceneState, error) {
	s, err := h.view()
	if err != nil {
		return domain.SceneState{}, err
	}

	state := domain.SceneState{Path: s.Scene, Modified: s.Dirty}
	if info, err := os.Stat(h.scenePath(s)); err == nil && info.ModTime().After(s.SavedAt) {
		state.Modified = true
	}
	return state, nil
}

// NewScene replaces the open scene with an empty untitled one
func (h *FileHost) NewScene(ctx context.Context) error {
	return h.update(func(s *session) error {
		scratch := h.scratchPath()
		if err := os.WriteFile(scratch, []byte(sceneHeader), 0644); err != nil {
			return fmt.Errorf("failed to create untitled scene: %w", err)
		}
		_ = os.Remove(OutlinePath(scratch))

		s.Scene = ""
		s.Selection = nil
		h.log.Debug("new scene")
		return markSaved(s, scratch)
	})
}

func (h *FileHost) OpenScene(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !fileutil.Exists(abs) {
		return domain.NewNotFoundError("scene", abs)
	}

	return h.update(func(s *session) error {
		s.Scene = abs
		s.Selection = nil
		h.log.Debug("opened scene", "path", abs)
		return markSaved(s, abs)
	})
}

// SaveSceneAs writes the open scene to path. With selectedOnly the outline is
// reduced to the selected objects. The saved file becomes the open scene, so
// after a selection-only save the open scene holds only the selection.
func (h *FileHost) SaveSceneAs(ctx context.Context, path string, selectedOnly bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	return h.update(func(s *session) error {
		src := h.scenePath(s)
		if !fileutil.Exists(src) {
			if err := os.MkdirAll(filepath.Dir(src), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(src, []byte(sceneHeader), 0644); err != nil {
				return err
			}
		}

		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return fmt.Errorf("failed to create scene directory: %w", err)
		}
		if src != abs {
			if err := fileutil.CopyFileAtomic(src, abs); err != nil {
				return fmt.Errorf("failed to save scene: %w", err)
			}
		}

		outline, err := readOutline(OutlinePath(src))
		if err != nil {
			return err
		}
		if selectedOnly {
			outline = selectObjects(outline, s.Selection)
		}
		if err := writeOutline(OutlinePath(abs), outline); err != nil {
			return err
		}

		if src == abs {
			// Touch so the save time moves past any pending edit
			now := time.Now()
			_ = os.Chtimes(abs, now, now)
		}

		s.Scene = abs
		h.log.Debug("saved scene", "path", abs, "selected_only", selectedOnly)
		return markSaved(s, abs)
	})
}

// ImportScene appends the scene at path and merges its outline into the open scene
func (h *FileHost) ImportScene(ctx context.Context, path string) error {
	if !fileutil.Exists(path) {
		return domain.NewNotFoundError("scene", path)
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return h.update(func(s *session) error {
		dst := h.scenePath(s)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open scene: %w", err)
		}
		fmt.Fprintf(f, "// import: %s\n", path)
		if _, err := f.Write(payload); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		current, err := readOutline(OutlinePath(dst))
		if err != nil {
			return err
		}
		imported, err := readOutline(OutlinePath(path))
		if err != nil {
			return err
		}
		current.Objects = append(current.Objects, imported.Objects...)
		current.ImagePlanes = append(current.ImagePlanes, imported.ImagePlanes...)
		if len(current.Objects) > 0 || len(current.ImagePlanes) > 0 {
			if err := writeOutline(OutlinePath(dst), current); err != nil {
				return err
			}
		}

		s.Dirty = true
		h.log.Debug("imported scene", "path", path, "into", dst)
		return nil
	})
}

// Select replaces the selection used by selection-only saves
func (h *FileHost) Select(ctx context.Context, names []string) error {
	return h.update(func(s *session) error {
		s.Selection = append([]string(nil), names...)
		return nil
	})
}

// Selection returns the current selection
func (h *FileHost) Selection(ctx context.Context) ([]string, error) {
	s, err := h.view()
	if err != nil {
		return nil, err
	}
	return s.Selection, nil
}

// Snapshot reads the open scene's outline sidecar. A scene without one is empty.
func (h *FileHost) Snapshot(ctx context.Context) (domain.SceneSnapshot, error) {
	s, err := h.view()
	if err != nil {
		return domain.SceneSnapshot{}, err
	}
	return readOutline(OutlinePath(h.scenePath(s)))
}

func readOutline(path string) (domain.SceneSnapshot, error) {
	var snap domain.SceneSnapshot
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}
		return snap, err
	}
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return snap, &domain.MalformedRecordError{Path: path, Err: err}
	}
	return snap, nil
}

func writeOutline(path string, snap domain.SceneSnapshot) error {
	if len(snap.Objects) == 0 && len(snap.ImagePlanes) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, data, 0644)
}

func selectObjects(snap domain.SceneSnapshot, names []string) domain.SceneSnapshot {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	var out domain.SceneSnapshot
	for _, obj := range snap.Objects {
		if keep[obj.Name] {
			out.Objects = append(out.Objects, obj)
		}
	}
	return out
}
