package models

import "time"

// PlatformResult summarises one platform's lifecycle within a run
type PlatformResult struct {
	Platform   Platform      `json:"platform"`
	Found      int           `json:"found"`
	Skipped    int           `json:"skipped"`
	Applied    int           `json:"applied"`
	OutputFile string        `json:"output_file,omitempty"`
	OutputURL  string        `json:"output_url,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// RunSummary is produced by one orchestrator run
type RunSummary struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	ApplyMode  bool             `json:"apply_mode"`
	Platforms  []PlatformResult `json:"platforms"`
}

// TotalFound returns the number of listings found across all platforms
func (s *RunSummary) TotalFound() int {
	total := 0
	for _, p := range s.Platforms {
		total += p.Found
	}
	return total
}
