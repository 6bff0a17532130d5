package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/pkg/fileutil"
	"github.com/kamal-hamza/px-cli/pkg/logger"
)

// PipelineLayout locates the department pipeline on disk
type PipelineLayout struct {
	PropsPath  string // Props/{prop}/{prop}_{stage}/ working files
	MasterPath string // Master/{prop}/{prop}_{stage}/{prop}.ma committed outputs
	SceneExt   string
}

// StagePath returns the working directory of a prop's stage
func (l PipelineLayout) StagePath(prop string, stage domain.Stage) string {
	return filepath.Join(l.PropsPath, prop, domain.StagedName{Base: prop, Stage: stage}.String())
}

// MasterStagePath returns the master directory of a prop's stage
func (l PipelineLayout) MasterStagePath(prop string, stage domain.Stage) string {
	return filepath.Join(l.MasterPath, prop, domain.StagedName{Base: prop, Stage: stage}.String())
}

// SceneChecker gates commits to master
type SceneChecker interface {
	RunAll(ctx context.Context) (*SceneCheckResult, error)
}

// PipelineService moves props through the department stages
type PipelineService struct {
	layout  PipelineLayout
	host    ports.SceneHost
	checker SceneChecker
	log     *logger.Logger
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(layout PipelineLayout, host ports.SceneHost, checker SceneChecker, log *logger.Logger) *PipelineService {
	if log == nil {
		log = logger.Nop()
	}
	return &PipelineService{
		layout:  layout,
		host:    host,
		checker: checker,
		log:     log.With("component", "pipeline"),
	}
}

// Props lists the props in the pipeline
func (s *PipelineService) Props(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.layout.PropsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewNotFoundError("pipeline", s.layout.PropsPath)
		}
		return nil, fmt.Errorf("failed to read props: %w", err)
	}

	var props []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			props = append(props, e.Name())
		}
	}
	sort.Strings(props)
	return props, nil
}

// ValidatePropName checks that prop can be the base of a staged name
func ValidatePropName(prop string) error {
	if err := domain.ValidateAssetName(prop); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return domain.NewValidationError("prop", verr.Reason)
		}
		return err
	}
	if strings.ContainsAny(prop, "_ ") {
		return domain.NewValidationError("prop", "prop names cannot contain underscores or spaces")
	}
	return nil
}

// ImportResult describes what Import opened
type ImportResult struct {
	Scene      string
	Seeded     bool   // the stage directory was created by this import
	SeededFrom string // master scene the stage was seeded from, empty for a blank scene
}

// Import opens the latest working scene of a prop's stage. A stage without a
// working directory is created and seeded from the previous stage's master,
// or from a blank scene for the first stage.
func (s *PipelineService) Import(ctx context.Context, prop, stageName string) (*ImportResult, error) {
	if err := ValidatePropName(prop); err != nil {
		return nil, err
	}
	stage, err := domain.ParseStage(stageName)
	if err != nil {
		return nil, err
	}

	stageDir := s.layout.StagePath(prop, stage)
	if fileutil.IsDir(stageDir) {
		scene, err := s.latestScene(stageDir, "scene file")
		if err != nil {
			return nil, err
		}
		if err := s.host.OpenScene(ctx, scene); err != nil {
			return nil, domain.WrapHost("open scene", err)
		}
		s.log.Info("opened working scene", "prop", prop, "stage", stage, "path", scene)
		return &ImportResult{Scene: scene}, nil
	}

	return s.seed(ctx, prop, stage, stageDir)
}

func (s *PipelineService) seed(ctx context.Context, prop string, stage domain.Stage, stageDir string) (*ImportResult, error) {
	prev, err := domain.AdvanceStage(prop, string(stage))
	if err != nil {
		return nil, err
	}

	staged := domain.StagedName{Base: prop, Stage: stage}
	target := filepath.Join(stageDir, staged.String()+s.layout.SceneExt)

	// Locate the seed before creating anything so a failed import leaves no empty stage behind
	var master string
	if !prev.IsNone() {
		master, err = s.latestScene(s.layout.MasterStagePath(prop, prev.Stage), "master")
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create stage directory: %w", err)
	}

	if prev.IsNone() {
		if err := s.host.NewScene(ctx); err != nil {
			return nil, domain.WrapHost("new scene", err)
		}
		if err := s.host.SaveSceneAs(ctx, target, false); err != nil {
			return nil, domain.WrapHost("save scene", err)
		}
		s.log.Info("created blank stage scene", "prop", prop, "stage", stage, "path", target)
		return &ImportResult{Scene: target, Seeded: true}, nil
	}

	if err := fileutil.CopyFile(master, target); err != nil {
		return nil, fmt.Errorf("failed to copy %s: %w", master, err)
	}
	if err := s.host.OpenScene(ctx, target); err != nil {
		return nil, domain.WrapHost("open scene", err)
	}
	s.log.Info("seeded stage from master", "prop", prop, "stage", stage, "from", master)
	return &ImportResult{Scene: target, Seeded: true, SeededFrom: master}, nil
}

// sceneFiles returns the scene files in dir, sorted by name
func (s *PipelineService) sceneFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), s.layout.SceneExt) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// latestScene returns the lexicographically last scene file in dir.
// Zero-padded versions make that the newest one.
func (s *PipelineService) latestScene(dir, kind string) (string, error) {
	files, err := s.sceneFiles(dir)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}
	if len(files) == 0 {
		return "", domain.NewNotFoundError(kind, dir)
	}
	return filepath.Join(dir, files[len(files)-1]), nil
}

// CommitResult describes a commit attempt
type CommitResult struct {
	Staged domain.StagedName
	Master string
	Checks *SceneCheckResult
}

// Commit runs the scene checks and, when they pass, saves the open scene as the
// stage master and reopens the working scene
func (s *PipelineService) Commit(ctx context.Context) (*CommitResult, error) {
	state, err := s.host.CurrentScene(ctx)
	if err != nil {
		return nil, domain.WrapHost("query scene", err)
	}
	if state.IsUntitled() {
		return nil, domain.NewValidationError("scene", "scene has never been saved")
	}

	staged, err := domain.ParseStagedName(state.Path)
	if err != nil {
		return nil, err
	}
	result := &CommitResult{Staged: staged}

	if s.checker != nil {
		checks, err := s.checker.RunAll(ctx)
		if err != nil {
			return nil, err
		}
		result.Checks = checks
		if !checks.Passed {
			s.log.Warn("commit refused", "scene", state.Path, "reason", checks.Summary())
			return result, domain.NewValidationError("scene check", checks.Summary()+", can not commit to master")
		}
	}

	masterDir := s.layout.MasterStagePath(staged.Base, staged.Stage)
	if err := os.MkdirAll(masterDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create master directory: %w", err)
	}
	result.Master = filepath.Join(masterDir, staged.Base+s.layout.SceneExt)

	if err := s.host.SaveSceneAs(ctx, result.Master, false); err != nil {
		return nil, domain.WrapHost("save master", err)
	}
	if err := s.host.OpenScene(ctx, state.Path); err != nil {
		return nil, domain.WrapHost("reopen scene", err)
	}

	s.log.Info("committed to master", "prop", staged.Base, "stage", staged.Stage, "path", result.Master)
	return result, nil
}

// Increment saves the open scene as the next version in its directory.
// Versions stop at MaxVersion so that name order stays version order.
func (s *PipelineService) Increment(ctx context.Context) (string, error) {
	state, err := s.host.CurrentScene(ctx)
	if err != nil {
		return "", domain.WrapHost("query scene", err)
	}
	if state.IsUntitled() {
		return "", domain.NewValidationError("scene", "scene has never been saved")
	}
	if !state.Modified {
		return "", domain.NewValidationError("scene", "no changes to save")
	}

	dir := filepath.Dir(state.Path)
	ext := filepath.Ext(state.Path)
	if ext == "" {
		ext = s.layout.SceneExt
	}
	stem := domain.Stem(state.Path)

	var next string
	parts := strings.Split(stem, "_")
	if len(parts) < 3 {
		next = stem + "_" + domain.FormatVersion(domain.FirstVersion)
	} else {
		siblings, err := s.sceneFiles(dir)
		if err != nil {
			return "", fmt.Errorf("failed to list %s: %w", dir, err)
		}
		next = domain.NextVersion(siblings, parts[0]+"_"+parts[1])
		if v, ok := domain.ParseVersionedName(next); ok && v.Version > domain.MaxVersion {
			return "", domain.NewValidationError("version",
				fmt.Sprintf("%s is past the last version %s", next, domain.FormatVersion(domain.MaxVersion)))
		}
	}

	path := filepath.Join(dir, next+ext)
	if err := s.host.SaveSceneAs(ctx, path, false); err != nil {
		return "", domain.WrapHost("save scene", err)
	}
	s.log.Info("incremented scene", "from", state.Path, "to", path)
	return path, nil
}

// StageStats summarises one stage of a prop
type StageStats struct {
	Stage    domain.Stage
	Started  bool   // working directory exists
	Versions int    // versioned working files
	Latest   string // latest working file name
	Master   bool   // a master has been committed
}

// PropStats summarises every stage of a prop
type PropStats struct {
	Prop   string
	Stages []StageStats
}

// Stats reports the progress of every prop through the pipeline
func (s *PipelineService) Stats(ctx context.Context) ([]PropStats, error) {
	props, err := s.Props(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PropStats, 0, len(props))
	for _, prop := range props {
		ps := PropStats{Prop: prop}
		for _, stage := range domain.Stages() {
			st := StageStats{Stage: stage}
			dir := s.layout.StagePath(prop, stage)
			if files, err := s.sceneFiles(dir); err == nil {
				st.Started = true
				for _, f := range files {
					if _, ok := domain.ParseVersionedName(f); ok {
						st.Versions++
					}
				}
				if len(files) > 0 {
					st.Latest = files[len(files)-1]
				}
			}
			if files, err := s.sceneFiles(s.layout.MasterStagePath(prop, stage)); err == nil && len(files) > 0 {
				st.Master = true
			}
			ps.Stages = append(ps.Stages, st)
		}
		out = append(out, ps)
	}
	return out, nil
}
