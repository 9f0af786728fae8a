package jobqueue

import (
	"context"
	"fmt"
	"time"
)

// ProcessWaiversJobPath is the internal endpoint the scheduled sweep
// calls back into.
const ProcessWaiversJobPath = "/v1/internal/jobs/process-waivers"

type sweepJobPayload struct {
	LeagueID string `json:"league_id,omitempty"`
	Week     int    `json:"week,omitempty"`
}

// SweepScheduler schedules waiver settlement sweeps on the job queue.
type SweepScheduler struct {
	publisher *QStashPublisher
}

func NewSweepScheduler(publisher *QStashPublisher) *SweepScheduler {
	return &SweepScheduler{publisher: publisher}
}

// ScheduleLeagueSweep enqueues a settlement sweep for one league at the
// given time. Calling it again for the same league and week reuses the
// deduplication id, so the sweep fires once.
func (s *SweepScheduler) ScheduleLeagueSweep(ctx context.Context, leagueID string, week int, runAt time.Time) error {
	delay := time.Until(runAt)
	if delay < 0 {
		delay = 0
	}
	dedupID := fmt.Sprintf("waiver-sweep-%s-week-%d", leagueID, week)
	payload := sweepJobPayload{LeagueID: leagueID, Week: week}

	return s.publisher.Enqueue(ctx, ProcessWaiversJobPath, payload, delay, dedupID)
}

// ScheduleGlobalSweep enqueues a sweep across every league. Used by the
// weekly cron when the claim window closes league-wide.
func (s *SweepScheduler) ScheduleGlobalSweep(ctx context.Context, runAt time.Time) error {
	delay := time.Until(runAt)
	if delay < 0 {
		delay = 0
	}
	dedupID := "waiver-sweep-all-" + runAt.UTC().Format("2006-01-02")

	return s.publisher.Enqueue(ctx, ProcessWaiversJobPath, nil, delay, dedupID)
}
