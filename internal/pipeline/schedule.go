package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs the pipeline once at startup and then once every 24 hours at
// UTC midnight. Failed runs are left for the next cycle; there is no partial
// resume within a run.
type Scheduler struct {
	Runner   *Runner
	Location *time.Location // reporting timezone used to pick the run date
	Logger   *zap.Logger
}

func (s *Scheduler) Start() {
	go func() {
		// Run immediately once at startup
		s.runOnce()

		// Wait until next UTC midnight
		now := time.Now().UTC()
		nextMidnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
		time.Sleep(time.Until(nextMidnight))

		// Then run once every 24 hours
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			s.runOnce()
			<-ticker.C
		}
	}()
}

func (s *Scheduler) runOnce() {
	day := RunDate(s.Location)
	if _, err := s.Runner.Run(context.Background(), day); err != nil {
		s.Logger.Error("scheduled run failed", zap.Time("date", day), zap.Error(err))
	}
}

// RunDate is yesterday in the reporting timezone, truncated to a calendar date.
// Extraction targets the last fully closed day.
func RunDate(loc *time.Location) time.Time {
	y := time.Now().In(loc).AddDate(0, 0, -1)
	return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.UTC)
}
