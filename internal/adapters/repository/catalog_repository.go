package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/pkg/fileutil"
	"github.com/kamal-hamza/px-cli/pkg/logger"
)

// CatalogLayout names the files that make up one catalog entry
type CatalogLayout struct {
	SceneExt    string
	MetadataExt string
	PreviewExt  string
}

// DefaultLayout is {name}.ma + {name}.json + {name}.jpg
func DefaultLayout() CatalogLayout {
	return CatalogLayout{SceneExt: ".ma", MetadataExt: ".json", PreviewExt: ".jpg"}
}

// FileCatalog is a directory of scene files with JSON metadata and optional previews
type FileCatalog struct {
	dir    string
	layout CatalogLayout
	log    *logger.Logger

	mu    sync.RWMutex
	index map[string]domain.AssetRecord
}

// NewFileCatalog creates a catalog over dir. A nil logger discards scan warnings.
func NewFileCatalog(dir string, layout CatalogLayout, log *logger.Logger) *FileCatalog {
	if log == nil {
		log = logger.Nop()
	}
	return &FileCatalog{
		dir:    dir,
		layout: layout,
		log:    log.With("component", "catalog", "dir", dir),
		index:  make(map[string]domain.AssetRecord),
	}
}

func (c *FileCatalog) Dir() string { return c.dir }

func (c *FileCatalog) ScenePath(name string) string {
	return filepath.Join(c.dir, name+c.layout.SceneExt)
}

func (c *FileCatalog) PreviewPath(name string) string {
	return filepath.Join(c.dir, name+c.layout.PreviewExt)
}

func (c *FileCatalog) metadataPath(name string) string {
	return filepath.Join(c.dir, name+c.layout.MetadataExt)
}

// Save writes the metadata document for name and records it in the index.
// An existing record of the same name is replaced entirely.
func (c *FileCatalog) Save(ctx context.Context, name, scenePath, previewPath string, extraInfo map[string]any) (domain.AssetRecord, error) {
	if err := domain.ValidateAssetName(name); err != nil {
		return domain.AssetRecord{}, err
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return domain.AssetRecord{}, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	info := make(map[string]any, len(extraInfo))
	for k, v := range extraInfo {
		switch k {
		case domain.KeyName, domain.KeyScenePath, domain.KeyPreviewPath:
			continue
		}
		info[k] = v
	}

	rec := domain.AssetRecord{
		Name:        name,
		ScenePath:   scenePath,
		PreviewPath: previewPath,
		ExtraInfo:   info,
	}

	data, err := json.MarshalIndent(rec.Document(), "", "    ")
	if err != nil {
		return domain.AssetRecord{}, fmt.Errorf("failed to encode metadata for %s: %w", name, err)
	}

	if err := fileutil.WriteFileAtomic(c.metadataPath(name), data, 0644); err != nil {
		return domain.AssetRecord{}, fmt.Errorf("failed to write metadata for %s: %w", name, err)
	}

	// A stale preview would be picked up again by the next scan
	if previewPath == "" {
		if err := os.Remove(c.PreviewPath(name)); err != nil && !os.IsNotExist(err) {
			c.log.Warn("failed to remove stale preview", "name", name, "error", err)
		}
	}

	c.mu.Lock()
	c.index[name] = rec
	c.mu.Unlock()

	c.log.Debug("saved asset", "name", name)
	return rec, nil
}

// Scan rebuilds the index from disk. Records whose metadata cannot be parsed are
// logged and skipped. A missing directory empties the index.
func (c *FileCatalog) Scan(ctx context.Context) (domain.Snapshot, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.mu.Lock()
			c.index = make(map[string]domain.AssetRecord)
			c.mu.Unlock()
			return nil, domain.NewNotFoundError("catalog directory", c.dir)
		}
		return nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	fresh := make(map[string]domain.AssetRecord)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), c.layout.SceneExt) {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		rec, err := c.readRecord(name)
		if err != nil {
			c.log.Warn("skipping asset", "name", name, "error", err)
			continue
		}
		fresh[name] = rec
	}

	c.mu.Lock()
	c.index = fresh
	c.mu.Unlock()

	return c.snapshot(), nil
}

// readRecord builds the record for one scene file from its sidecar files
func (c *FileCatalog) readRecord(name string) (domain.AssetRecord, error) {
	rec := domain.AssetRecord{
		Name:      name,
		ScenePath: c.ScenePath(name),
		ExtraInfo: make(map[string]any),
	}

	metaPath := c.metadataPath(name)
	data, err := os.ReadFile(metaPath)
	switch {
	case err == nil:
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return domain.AssetRecord{}, &domain.MalformedRecordError{Path: metaPath, Err: err}
		}
		parsed := domain.RecordFromDocument(doc)
		if parsed.Name != "" {
			rec.Name = parsed.Name
		}
		if parsed.ScenePath != "" {
			rec.ScenePath = parsed.ScenePath
		}
		rec.ExtraInfo = parsed.ExtraInfo
	case os.IsNotExist(err):
		// no metadata: name and scene path only
	default:
		return domain.AssetRecord{}, &domain.MalformedRecordError{Path: metaPath, Err: err}
	}

	// The index is keyed by file name, whatever the document claims
	rec.Name = name

	if fileutil.Exists(c.PreviewPath(name)) {
		rec.PreviewPath = c.PreviewPath(name)
	}
	return rec, nil
}

// Get returns a record from the current index
func (c *FileCatalog) Get(ctx context.Context, name string) (domain.AssetRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.index[name]
	if !ok {
		return domain.AssetRecord{}, domain.NewNotFoundError("asset", name)
	}
	return cloneRecord(rec), nil
}

// Names returns the sorted names in the current index
func (c *FileCatalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.index))
	for name := range c.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *FileCatalog) snapshot() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := make(domain.Snapshot, len(c.index))
	for name, rec := range c.index {
		snap[name] = cloneRecord(rec)
	}
	return snap
}

func cloneRecord(rec domain.AssetRecord) domain.AssetRecord {
	info := make(map[string]any, len(rec.ExtraInfo))
	for k, v := range rec.ExtraInfo {
		info[k] = v
	}
	rec.ExtraInfo = info
	return rec
}
