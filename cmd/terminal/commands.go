package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/cartpilot/internal/storage"
)

const queryTimeout = 5 * time.Second

func loadJobsCmd(store storage.Store, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		jobs, err := store.ListRecentJobs(ctx, limit)
		return jobsLoadedMsg{jobs: jobs, at: time.Now(), err: err}
	}
}

func loadLogsCmd(store storage.Store, jobID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		logs, err := store.GetJobLogs(ctx, jobID)
		return logsLoadedMsg{jobID: jobID, logs: logs, err: err}
	}
}

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg { return tickMsg(t) })
}
