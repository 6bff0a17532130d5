package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace represents the managed storage directories for px
type Workspace struct {
	RootPath     string
	LibraryPath  string // controller library catalog
	PipelinePath string
	PropsPath    string // pipeline/Props: department working files
	MasterPath   string // pipeline/Master: committed stage outputs
	CachePath    string
	ConfigPath   string
}

// New creates a new Workspace instance with XDG-compliant paths
func New() (*Workspace, error) {
	rootPath, rootErr := getRoot()
	configPath, configErr := getConfigPath()
	if rootErr != nil {
		return nil, fmt.Errorf("failed to determine workspace root: %w", rootErr)
	}
	if configErr != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", configErr)
	}

	return NewAt(rootPath, configPath), nil
}

// NewAt lays out a workspace under an explicit root
func NewAt(rootPath, configPath string) *Workspace {
	pipeline := filepath.Join(rootPath, "pipeline")
	return &Workspace{
		RootPath:     rootPath,
		LibraryPath:  filepath.Join(rootPath, "library"),
		PipelinePath: pipeline,
		PropsPath:    filepath.Join(pipeline, "Props"),
		MasterPath:   filepath.Join(pipeline, "Master"),
		CachePath:    filepath.Join(rootPath, "cache"),
		ConfigPath:   configPath,
	}
}

// getRoot returns the workspace root directory path.
// PX_HOME wins, then XDG_DATA_HOME, APPDATA on Windows, and ~/.local/share/px.
func getRoot() (string, error) {
	if home := os.Getenv("PX_HOME"); home != "" {
		return home, nil
	}

	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "px"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "px"), nil
	}

	return filepath.Join(homeDir, ".local", "share", "px"), nil
}

func getConfigPath() (string, error) {
	if home := os.Getenv("PX_HOME"); home != "" {
		return filepath.Join(home, "config.yaml"), nil
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "px", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "px-config", "config.yaml"), nil
	}

	return filepath.Join(homeDir, ".config", "px", "config.yaml"), nil
}

// Initialize creates the workspace directory structure if it doesn't exist
func (w *Workspace) Initialize() error {
	directories := []string{
		w.RootPath,
		w.LibraryPath,
		w.PropsPath,
		w.MasterPath,
		w.CachePath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Exists checks if the workspace has been initialized
func (w *Workspace) Exists() bool {
	info, err := os.Stat(w.RootPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// PropPath returns the working directory of a prop
func (w *Workspace) PropPath(prop string) string {
	return filepath.Join(w.PropsPath, prop)
}

// StagePath returns the working directory of a prop's stage: Props/{prop}/{prop}_{stage}
func (w *Workspace) StagePath(prop, stage string) string {
	return filepath.Join(w.PropsPath, prop, prop+"_"+stage)
}

// MasterStagePath returns the master directory of a prop's stage: Master/{prop}/{prop}_{stage}
func (w *Workspace) MasterStagePath(prop, stage string) string {
	return filepath.Join(w.MasterPath, prop, prop+"_"+stage)
}

// GetCachePath returns the full path for a cached file
func (w *Workspace) GetCachePath(filename string) string {
	return filepath.Join(w.CachePath, filename)
}

// SessionPath is where the file host keeps its session state
func (w *Workspace) SessionPath() string {
	return filepath.Join(w.CachePath, "session.yaml")
}

// CleanCache removes all files in the cache directory
func (w *Workspace) CleanCache() error {
	entries, err := os.ReadDir(w.CachePath)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(w.CachePath, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	return nil
}
