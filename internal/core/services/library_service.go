package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/pkg/logger"
)

// PreviewSize is the capture resolution for library previews
type PreviewSize struct {
	Width  int
	Height int
}

// LibraryService saves the open scene into the controller library and brings
// library assets back into the scene
type LibraryService struct {
	catalog ports.Catalog
	host    ports.SceneHost
	capture ports.PreviewCapturer
	preview PreviewSize
	log     *logger.Logger
}

// NewLibraryService creates a new library service. capture may be nil when the
// host cannot render previews.
func NewLibraryService(catalog ports.Catalog, host ports.SceneHost, capture ports.PreviewCapturer, preview PreviewSize, log *logger.Logger) *LibraryService {
	if log == nil {
		log = logger.Nop()
	}
	return &LibraryService{
		catalog: catalog,
		host:    host,
		capture: capture,
		preview: preview,
		log:     log.With("component", "library"),
	}
}

// SaveRequest represents a request to save the open scene as a library asset
type SaveRequest struct {
	Name         string
	Info         map[string]any
	Preview      bool
	SelectedOnly bool
}

// Save writes the open scene (or its selection) into the library with a preview and metadata
func (s *LibraryService) Save(ctx context.Context, req SaveRequest) (domain.AssetRecord, error) {
	if err := domain.ValidateAssetName(req.Name); err != nil {
		return domain.AssetRecord{}, err
	}

	scenePath := s.catalog.ScenePath(req.Name)
	if err := s.host.SaveSceneAs(ctx, scenePath, req.SelectedOnly); err != nil {
		return domain.AssetRecord{}, domain.WrapHost("save scene", err)
	}

	var previewPath string
	if req.Preview && s.capture != nil {
		previewPath = s.catalog.PreviewPath(req.Name)
		if err := s.capture.CapturePreview(ctx, previewPath, s.preview.Width, s.preview.Height); err != nil {
			return domain.AssetRecord{}, domain.WrapHost("capture preview", err)
		}
	}

	rec, err := s.catalog.Save(ctx, req.Name, scenePath, previewPath, req.Info)
	if err != nil {
		return domain.AssetRecord{}, fmt.Errorf("failed to save %s: %w", req.Name, err)
	}

	s.log.Info("saved library asset", "name", req.Name, "selected_only", req.SelectedOnly, "preview", previewPath != "")
	return rec, nil
}

// List scans the library and returns its records sorted by name
func (s *LibraryService) List(ctx context.Context) ([]domain.AssetRecord, error) {
	snap, err := s.catalog.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Records(), nil
}

// Find returns one record, scanning the library when it is not indexed yet
func (s *LibraryService) Find(ctx context.Context, name string) (domain.AssetRecord, error) {
	rec, err := s.catalog.Get(ctx, name)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.AssetRecord{}, err
	}
	if _, err := s.catalog.Scan(ctx); err != nil {
		return domain.AssetRecord{}, err
	}
	return s.catalog.Get(ctx, name)
}

// Load imports a library asset into the open scene
func (s *LibraryService) Load(ctx context.Context, name string) (domain.AssetRecord, error) {
	rec, err := s.Find(ctx, name)
	if err != nil {
		return domain.AssetRecord{}, err
	}
	if err := s.host.ImportScene(ctx, rec.ScenePath); err != nil {
		return domain.AssetRecord{}, domain.WrapHost("import scene", err)
	}
	s.log.Info("imported library asset", "name", name, "path", rec.ScenePath)
	return rec, nil
}
