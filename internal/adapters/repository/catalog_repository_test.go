package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/pkg/logger"
)

func newTestCatalog(t *testing.T) (*FileCatalog, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "library")
	return NewFileCatalog(dir, DefaultLayout(), logger.Nop()), dir
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFileCatalog_SaveScanRoundTrip(t *testing.T) {
	ctx := context.Background()
	cat, dir := newTestCatalog(t)

	scene := filepath.Join(dir, "arm.ma")
	touch(t, scene, "//Maya ASCII")

	_, err := cat.Save(ctx, "arm", scene, "", map[string]any{"author": "jo", "joints": float64(12)})
	require.NoError(t, err)

	snap, err := cat.Scan(ctx)
	require.NoError(t, err)
	require.Contains(t, snap, "arm")

	rec := snap["arm"]
	assert.Equal(t, scene, rec.ScenePath)
	assert.Equal(t, "jo", rec.ExtraInfo["author"])
	assert.Equal(t, float64(12), rec.ExtraInfo["joints"])
	assert.False(t, rec.HasPreview())
}

func TestFileCatalog_ScanSkipsCorruptMetadata(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	dir := t.TempDir()
	cat := NewFileCatalog(dir, DefaultLayout(), logger.FromZap(zap.New(core)))

	touch(t, filepath.Join(dir, "good.ma"), "")
	touch(t, filepath.Join(dir, "good.json"), `{"name":"good","scenePath":"x","tag":"ok"}`)
	touch(t, filepath.Join(dir, "bad.ma"), "")
	touch(t, filepath.Join(dir, "bad.json"), `{"name": "bad",`)

	snap, err := cat.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, snap.Names())
	assert.Equal(t, "ok", snap["good"].ExtraInfo["tag"])

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "skipping asset", logs.All()[0].Message)
	assert.Equal(t, "bad", logs.All()[0].ContextMap()["name"])
}

func TestFileCatalog_ScanMissingDirectory(t *testing.T) {
	cat := NewFileCatalog(filepath.Join(t.TempDir(), "nope"), DefaultLayout(), nil)

	_, err := cat.Scan(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "catalog directory", nf.Kind)
}

func TestFileCatalog_ScanMissingDirectoryClearsIndex(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "library")
	cat := NewFileCatalog(dir, DefaultLayout(), nil)

	_, err := cat.Save(ctx, "arm", filepath.Join(dir, "arm.ma"), "", nil)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	_, err = cat.Scan(ctx)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = cat.Get(ctx, "arm")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, cat.Names())
}

func TestFileCatalog_ScanEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	cat := NewFileCatalog(dir, DefaultLayout(), nil)

	snap, err := cat.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestFileCatalog_ScanWithoutMetadata(t *testing.T) {
	dir := t.TempDir()
	cat := NewFileCatalog(dir, DefaultLayout(), nil)
	touch(t, filepath.Join(dir, "hand.ma"), "")
	touch(t, filepath.Join(dir, "hand.jpg"), "jpg")
	touch(t, filepath.Join(dir, "notes.txt"), "")

	snap, err := cat.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, snap, 1)

	rec := snap["hand"]
	assert.Equal(t, filepath.Join(dir, "hand.ma"), rec.ScenePath)
	assert.Equal(t, filepath.Join(dir, "hand.jpg"), rec.PreviewPath)
	assert.Empty(t, rec.ExtraInfo)
}

func TestFileCatalog_SaveOverwritesEntirely(t *testing.T) {
	ctx := context.Background()
	cat, dir := newTestCatalog(t)
	touch(t, filepath.Join(dir, "arm.ma"), "")

	_, err := cat.Save(ctx, "arm", "a.ma", "", map[string]any{"old": "1", "shared": "a"})
	require.NoError(t, err)
	_, err = cat.Save(ctx, "arm", "a.ma", "", map[string]any{"shared": "b"})
	require.NoError(t, err)

	snap, err := cat.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"shared": "b"}, snap["arm"].ExtraInfo)
}

func TestFileCatalog_SaveRemovesStalePreview(t *testing.T) {
	ctx := context.Background()
	cat, dir := newTestCatalog(t)
	touch(t, filepath.Join(dir, "arm.ma"), "")
	touch(t, filepath.Join(dir, "arm.jpg"), "old")

	_, err := cat.Save(ctx, "arm", filepath.Join(dir, "arm.ma"), "", nil)
	require.NoError(t, err)

	snap, err := cat.Scan(ctx)
	require.NoError(t, err)
	assert.False(t, snap["arm"].HasPreview())
}

func TestFileCatalog_SaveDocumentLayout(t *testing.T) {
	cat, dir := newTestCatalog(t)

	_, err := cat.Save(context.Background(), "arm", "/lib/arm.ma", "/lib/arm.jpg",
		map[string]any{"name": "spoofed", "notes": "x"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "arm.json"))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "\n    \"name\": \"arm\"")
	assert.Contains(t, text, `"previewPath": "/lib/arm.jpg"`)
	assert.NotContains(t, text, "spoofed")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left: %s", e.Name())
	}
}

func TestFileCatalog_SaveRejectsBadNames(t *testing.T) {
	cat, dir := newTestCatalog(t)

	for _, name := range []string{"", "  ", "a/b", ".hidden"} {
		_, err := cat.Save(context.Background(), name, "x.ma", "", nil)
		require.Error(t, err, "name %q", name)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	}
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "directory should not be created for invalid names")
}

func TestFileCatalog_GetAndNames(t *testing.T) {
	ctx := context.Background()
	cat, _ := newTestCatalog(t)

	_, err := cat.Get(ctx, "leg")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = cat.Save(ctx, "leg", "leg.ma", "", nil)
	require.NoError(t, err)
	_, err = cat.Save(ctx, "arm", "arm.ma", "", nil)
	require.NoError(t, err)

	rec, err := cat.Get(ctx, "leg")
	require.NoError(t, err)
	assert.Equal(t, "leg.ma", rec.ScenePath)
	assert.Equal(t, []string{"arm", "leg"}, cat.Names())
}

func TestFileCatalog_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	cat, dir := newTestCatalog(t)
	touch(t, filepath.Join(dir, "arm.ma"), "")
	_, err := cat.Save(ctx, "arm", "arm.ma", "", map[string]any{"k": "v"})
	require.NoError(t, err)

	snap, err := cat.Scan(ctx)
	require.NoError(t, err)
	snap["arm"].ExtraInfo["k"] = "changed"

	rec, err := cat.Get(ctx, "arm")
	require.NoError(t, err)
	assert.Equal(t, "v", rec.ExtraInfo["k"])
}
