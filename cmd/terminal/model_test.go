package main

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/mocks"
)

func testJobs(now time.Time) []*core.Job {
	return []*core.Job{
		{ID: "7f1c2a90-aaaa", UserID: "user-1", Status: core.StatusProcessing, Items: []core.Item{{Name: "milk"}}, CreatedAt: now.Add(-30 * time.Second)},
		{ID: "0b5d11e2-bbbb", UserID: "user-2", Status: core.StatusFailed, ErrorMessage: "Failed to add any items to cart", Items: []core.Item{{Name: "a"}, {Name: "b"}}, CreatedAt: now.Add(-3 * time.Hour)},
	}
}

func TestModel_JobsLoaded(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	now := time.Now()

	m := newModel(store, ThemeCyan, time.Second, 20)
	_, cmd := m.Update(jobsLoadedMsg{jobs: testJobs(now), at: now})
	require.NotNil(t, cmd)

	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "7f1c2a90", rows[0][0])
	assert.Equal(t, "processing", rows[0][2])
	assert.Equal(t, "30s", rows[0][4])
	assert.Equal(t, "Failed to add any items to cart", rows[1][5])
	assert.Equal(t, "7f1c2a90-aaaa", m.selected)
	assert.False(t, m.loading)

	store.EXPECT().GetJobLogs(gomock.Any(), "7f1c2a90-aaaa").Return([]*core.LogEntry{
		{JobID: "7f1c2a90-aaaa", Level: core.LogInfo, Message: "Starting cart creation for 1 items", Timestamp: now},
	}, nil)
	msg := cmd()
	logs, ok := msg.(logsLoadedMsg)
	require.True(t, ok)

	m.Update(logs)
	assert.Contains(t, m.viewport.View(), "Starting cart creation for 1 items")
}

func TestModel_KeepsSelectionAcrossRefresh(t *testing.T) {
	m := newModel(mocks.NewMockStore(gomock.NewController(t)), ThemeCyan, time.Second, 20)
	now := time.Now()
	jobs := testJobs(now)

	m.Update(jobsLoadedMsg{jobs: jobs, at: now})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "0b5d11e2-bbbb", m.selected)

	newer := &core.Job{ID: "ffff0000-cccc", UserID: "user-3", Status: core.StatusPending, CreatedAt: now}
	m.Update(jobsLoadedMsg{jobs: append([]*core.Job{newer}, jobs...), at: now})
	assert.Equal(t, "0b5d11e2-bbbb", m.selected)
	assert.Equal(t, 2, m.table.Cursor())
}

func TestModel_IgnoresStaleLogs(t *testing.T) {
	m := newModel(mocks.NewMockStore(gomock.NewController(t)), ThemeCyan, time.Second, 20)
	m.selected = "job-b"
	m.viewport.SetContent("current")

	m.Update(logsLoadedMsg{jobID: "job-a", logs: []*core.LogEntry{{Message: "stale"}}})
	assert.Contains(t, m.viewport.View(), "current")
}

func TestModel_LoadError(t *testing.T) {
	m := newModel(mocks.NewMockStore(gomock.NewController(t)), ThemeCyan, time.Second, 20)

	_, cmd := m.Update(jobsLoadedMsg{err: errors.New("database is locked")})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "database is locked")
}

func TestModel_Quit(t *testing.T) {
	m := newModel(mocks.NewMockStore(gomock.NewController(t)), ThemeCyan, time.Second, 20)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestAge(t *testing.T) {
	assert.Equal(t, "45s", age(45*time.Second))
	assert.Equal(t, "12m", age(12*time.Minute))
	assert.Equal(t, "5h", age(5*time.Hour))
	assert.Equal(t, "3d", age(72*time.Hour))
}
