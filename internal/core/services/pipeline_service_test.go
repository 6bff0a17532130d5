package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports/mocks"
)

func newPipeline(t *testing.T) (*PipelineService, *mocks.MockHost, PipelineLayout) {
	t.Helper()
	root := t.TempDir()
	layout := PipelineLayout{
		PropsPath:  filepath.Join(root, "Props"),
		MasterPath: filepath.Join(root, "Master"),
		SceneExt:   ".ma",
	}
	require.NoError(t, os.MkdirAll(layout.PropsPath, 0755))
	host := mocks.NewMockHost()
	checker := NewSceneCheckService(host, defaultRules())
	return NewPipelineService(layout, host, checker, nil), host, layout
}

func writeScene(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(path), 0644))
}

func TestPipelineService_Props(t *testing.T) {
	svc, _, layout := newPipeline(t)
	require.NoError(t, os.MkdirAll(filepath.Join(layout.PropsPath, "table"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(layout.PropsPath, "chair"), 0755))
	writeScene(t, filepath.Join(layout.PropsPath, "stray.ma"))

	props, err := svc.Props(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"chair", "table"}, props)
}

func TestPipelineService_PropsMissingRoot(t *testing.T) {
	layout := PipelineLayout{PropsPath: filepath.Join(t.TempDir(), "none"), SceneExt: ".ma"}
	svc := NewPipelineService(layout, mocks.NewMockHost(), nil, nil)
	_, err := svc.Props(context.Background())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPipelineService_ImportModelingCreatesBlankScene(t *testing.T) {
	svc, host, layout := newPipeline(t)

	res, err := svc.Import(context.Background(), "chair", "modeling")
	require.NoError(t, err)

	want := filepath.Join(layout.PropsPath, "chair", "chair_modeling", "chair_modeling.ma")
	assert.Equal(t, want, res.Scene)
	assert.True(t, res.Seeded)
	assert.Empty(t, res.SeededFrom)
	assert.Equal(t, []string{"new ", "save " + want}, host.Calls())
}

func TestPipelineService_ImportSeedsFromPreviousMaster(t *testing.T) {
	svc, host, layout := newPipeline(t)
	master := filepath.Join(layout.MasterPath, "chair", "chair_modeling", "chair.ma")
	writeScene(t, master)

	res, err := svc.Import(context.Background(), "chair", "Texturing")
	require.NoError(t, err)

	want := filepath.Join(layout.PropsPath, "chair", "chair_texturing", "chair_texturing.ma")
	assert.Equal(t, want, res.Scene)
	assert.Equal(t, master, res.SeededFrom)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, master, string(data))
	assert.Equal(t, []string{"open " + want}, host.Calls())
}

func TestPipelineService_ImportMissingMaster(t *testing.T) {
	svc, _, layout := newPipeline(t)

	_, err := svc.Import(context.Background(), "chair", "rigging")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, statErr := os.Stat(filepath.Join(layout.PropsPath, "chair", "chair_rigging"))
	assert.True(t, os.IsNotExist(statErr), "failed import should not create the stage directory")
}

func TestPipelineService_ImportOpensLatestWorkingFile(t *testing.T) {
	svc, host, layout := newPipeline(t)
	dir := filepath.Join(layout.PropsPath, "chair", "chair_rigging")
	writeScene(t, filepath.Join(dir, "chair_rigging.ma"))
	writeScene(t, filepath.Join(dir, "chair_rigging_000.ma"))
	writeScene(t, filepath.Join(dir, "chair_rigging_002.ma"))
	writeScene(t, filepath.Join(dir, "chair_rigging_001.ma"))
	writeScene(t, filepath.Join(dir, "notes.txt"))

	res, err := svc.Import(context.Background(), "chair", "rigging")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chair_rigging_002.ma"), res.Scene)
	assert.False(t, res.Seeded)
	assert.Equal(t, []string{"open " + res.Scene}, host.Calls())
}

func TestPipelineService_ImportEmptyStage(t *testing.T) {
	svc, _, layout := newPipeline(t)
	require.NoError(t, os.MkdirAll(filepath.Join(layout.PropsPath, "chair", "chair_lighting"), 0755))

	_, err := svc.Import(context.Background(), "chair", "lighting")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPipelineService_ImportValidation(t *testing.T) {
	svc, _, _ := newPipeline(t)

	_, err := svc.Import(context.Background(), "chair", "compositing")
	assert.True(t, errors.Is(err, domain.ErrInvalidStage))

	_, err = svc.Import(context.Background(), "big_chair", "modeling")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.Import(context.Background(), "", "modeling")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestPipelineService_Commit(t *testing.T) {
	svc, host, layout := newPipeline(t)
	working := filepath.Join(layout.PropsPath, "chair", "chair_rigging", "chair_rigging_003.ma")
	writeScene(t, working)
	host.SetScene(working, false)
	host.SetSnapshot(domain.SceneSnapshot{Objects: []domain.SceneObject{obj("seat_GEO", "transform", "mesh")}})

	res, err := svc.Commit(context.Background())
	require.NoError(t, err)

	master := filepath.Join(layout.MasterPath, "chair", "chair_rigging", "chair.ma")
	assert.Equal(t, master, res.Master)
	assert.Equal(t, domain.Rigging, res.Staged.Stage)
	assert.True(t, res.Checks.Passed)
	assert.Equal(t, []string{"save " + master, "open " + working}, host.Calls())
}

func TestPipelineService_CommitRefusedOnFailedChecks(t *testing.T) {
	svc, host, layout := newPipeline(t)
	working := filepath.Join(layout.PropsPath, "chair", "chair_modeling", "chair_modeling.ma")
	writeScene(t, working)
	host.SetScene(working, false)
	host.SetSnapshot(domain.SceneSnapshot{Objects: []domain.SceneObject{obj("seat", "transform", "mesh")}})

	res, err := svc.Commit(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	require.NotNil(t, res)
	assert.False(t, res.Checks.Passed)
	assert.Empty(t, host.Calls())
}

func TestPipelineService_CommitBadSceneName(t *testing.T) {
	svc, host, _ := newPipeline(t)

	_, err := svc.Commit(context.Background())
	assert.True(t, errors.Is(err, domain.ErrValidation), "untitled scene")

	host.SetScene("/work/chair.ma", false)
	_, err = svc.Commit(context.Background())
	assert.True(t, errors.Is(err, domain.ErrValidation))

	host.SetScene("/work/chair_compositing_001.ma", false)
	_, err = svc.Commit(context.Background())
	assert.True(t, errors.Is(err, domain.ErrInvalidStage))
}

func TestPipelineService_Increment(t *testing.T) {
	svc, host, layout := newPipeline(t)
	dir := filepath.Join(layout.PropsPath, "chair", "chair_rigging")
	writeScene(t, filepath.Join(dir, "chair_rigging_000.ma"))
	writeScene(t, filepath.Join(dir, "chair_rigging_001.ma"))
	writeScene(t, filepath.Join(dir, "chair_rigging_garbage.ma"))

	host.SetScene(filepath.Join(dir, "chair_rigging_001.ma"), true)
	path, err := svc.Increment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chair_rigging_002.ma"), path)
	assert.Equal(t, []string{"save " + path}, host.Calls())
}

func TestPipelineService_IncrementPastLastVersion(t *testing.T) {
	svc, host, layout := newPipeline(t)
	dir := filepath.Join(layout.PropsPath, "chair", "chair_rigging")
	writeScene(t, filepath.Join(dir, "chair_rigging_998.ma"))
	writeScene(t, filepath.Join(dir, "chair_rigging_999.ma"))

	host.SetScene(filepath.Join(dir, "chair_rigging_999.ma"), true)
	_, err := svc.Increment(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "chair_rigging_1000")
	assert.Empty(t, host.Calls())
}

func TestPipelineService_IncrementFirstVersion(t *testing.T) {
	svc, host, layout := newPipeline(t)
	scene := filepath.Join(layout.PropsPath, "chair", "chair_modeling", "chair_modeling.ma")
	writeScene(t, scene)
	host.SetScene(scene, true)

	path, err := svc.Increment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(scene), "chair_modeling_000.ma"), path)
}

func TestPipelineService_IncrementWithoutChanges(t *testing.T) {
	svc, host, _ := newPipeline(t)
	host.SetScene("/work/chair_modeling.ma", false)

	_, err := svc.Increment(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "no changes")
	assert.Empty(t, host.Calls())
}

func TestPipelineService_Stats(t *testing.T) {
	svc, _, layout := newPipeline(t)
	writeScene(t, filepath.Join(layout.PropsPath, "chair", "chair_modeling", "chair_modeling.ma"))
	writeScene(t, filepath.Join(layout.PropsPath, "chair", "chair_modeling", "chair_modeling_000.ma"))
	writeScene(t, filepath.Join(layout.PropsPath, "chair", "chair_modeling", "chair_modeling_001.ma"))
	writeScene(t, filepath.Join(layout.MasterPath, "chair", "chair_modeling", "chair.ma"))
	require.NoError(t, os.MkdirAll(filepath.Join(layout.PropsPath, "lamp"), 0755))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)

	chair := stats[0]
	assert.Equal(t, "chair", chair.Prop)
	require.Len(t, chair.Stages, 4)
	assert.Equal(t, StageStats{
		Stage:    domain.Modeling,
		Started:  true,
		Versions: 2,
		Latest:   "chair_modeling_001.ma",
		Master:   true,
	}, chair.Stages[0])
	assert.False(t, chair.Stages[1].Started)

	for _, st := range stats[1].Stages {
		assert.False(t, st.Started)
		assert.False(t, st.Master)
	}
}
