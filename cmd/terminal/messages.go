package main

import (
	"time"

	"github.com/sevigo/cartpilot/internal/core"
)

// jobsLoadedMsg carries a fresh snapshot of the recent jobs.
type jobsLoadedMsg struct {
	jobs []*core.Job
	at   time.Time
	err  error
}

// logsLoadedMsg carries the audit log of one job.
type logsLoadedMsg struct {
	jobID string
	logs  []*core.LogEntry
	err   error
}

type tickMsg time.Time
