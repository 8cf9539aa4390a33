package models

import "time"

// RawContainerStat is one line of `docker stats` output, still in the
// runtime's human-readable form.
type RawContainerStat struct {
	Container  string `json:"container"`
	CPUPercent string `json:"cpuPerc"`
	MemPercent string `json:"memPerc"`
	NetIO      string `json:"netIO"`
}

type ScrapeRecord struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Source     string    `json:"source"`
	Containers int       `json:"containers"`
	Samples    int       `json:"samples"`
	Outcome    string    `json:"outcome"`
	Stage      string    `json:"stage,omitempty"`
	Error      string    `json:"error,omitempty"`
}

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)
