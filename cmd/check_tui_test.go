package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports/mocks"
	"github.com/kamal-hamza/px-cli/internal/core/services"
)

func newTestCheckModel(t *testing.T) (checkModel, *mocks.MockHost) {
	t.Helper()
	host := mocks.NewMockHost()
	host.SetSnapshot(domain.SceneSnapshot{
		Objects: []domain.SceneObject{
			{Name: "body", Type: "transform", Children: []string{"mesh"}, Scale: domain.One3},
			{Name: "leg_GEO", Type: "transform", Children: []string{"mesh"}, Scale: domain.One3},
		},
		ImagePlanes: []string{"imagePlane1"},
	})
	svc := services.NewSceneCheckService(host, services.SuffixRules{
		Suffixes: map[string]string{"mesh": "GEO"},
		Default:  "GRP",
	})
	return newCheckModel(context.Background(), svc), host
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCheckModel_InitRunsAllChecks(t *testing.T) {
	m, _ := newTestCheckModel(t)

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()

	updated, _ := m.Update(msg)
	m = updated.(checkModel)

	require.Len(t, m.reports, len(services.CheckNames()))
	assert.False(t, m.reports[services.CheckSuffix].Passed)
	assert.Equal(t, []string{"body"}, m.reports[services.CheckSuffix].Failures)
	assert.True(t, m.reports[services.CheckTransform].Passed)
	assert.False(t, m.reports[services.CheckTidy].Passed)

	view := m.View()
	assert.Contains(t, view, "Suffix Test")
	assert.Contains(t, view, "body")
}

func TestCheckModel_Navigation(t *testing.T) {
	m, _ := newTestCheckModel(t)

	updated, _ := m.Update(keyRunes("k"))
	m = updated.(checkModel)
	assert.Equal(t, 0, m.cursor, "cursor stays at the top")

	for i := 0; i < 5; i++ {
		updated, _ = m.Update(keyRunes("j"))
		m = updated.(checkModel)
	}
	assert.Equal(t, len(m.checks)-1, m.cursor, "cursor stops at the last check")
}

func TestCheckModel_RunSelected(t *testing.T) {
	m, _ := newTestCheckModel(t)

	updated, _ := m.Update(keyRunes("j"))
	m = updated.(checkModel)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(checkModel)
	require.NotNil(t, cmd)
	assert.True(t, m.running)

	// A second run is ignored while one is in flight
	_, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	updated, _ = m.Update(cmd())
	m = updated.(checkModel)
	assert.False(t, m.running)
	require.Len(t, m.reports, 1)
	assert.True(t, m.reports[services.CheckTransform].Passed)
}

func TestCheckModel_HostError(t *testing.T) {
	m, host := newTestCheckModel(t)
	host.FailOn("snapshot", errors.New("host gone"))

	updated, _ := m.Update(m.Init()())
	m = updated.(checkModel)

	assert.ErrorIs(t, m.err, domain.ErrHost)
	assert.True(t, strings.Contains(m.View(), "host gone"))
}

func TestCheckModel_Quit(t *testing.T) {
	m, _ := newTestCheckModel(t)

	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
