package pipeline

import (
	"time"

	"cryptodwh/pkg/storage/warehouse"

	"go.uber.org/zap"
)

// RunSummary reports per-stage row counts for one pipeline run.
type RunSummary struct {
	Date time.Time

	StagedPrices   int
	StagedProfiles int

	PricesConsolidated   int
	ProfilesConsolidated int
	DatesConsolidated    int

	Dimension   warehouse.SCD2Counts
	DatesLoaded int
	FactsLoaded int
	MetricRows  int
}

// NotifySink receives the outcome of a run. The orchestrator invokes it once
// per run; delivery (email, chat, pager) is up to the implementation.
type NotifySink interface {
	Success(summary RunSummary)
	Failure(stage string, err error)
}

// LogSink reports run outcomes through the structured log.
type LogSink struct {
	Logger *zap.Logger
}

func (s *LogSink) Success(summary RunSummary) {
	s.Logger.Info("pipeline run completed",
		zap.Time("date", summary.Date),
		zap.Int("staged_prices", summary.StagedPrices),
		zap.Int("staged_profiles", summary.StagedProfiles),
		zap.Int("prices_consolidated", summary.PricesConsolidated),
		zap.Int("profiles_consolidated", summary.ProfilesConsolidated),
		zap.Int("dates_consolidated", summary.DatesConsolidated),
		zap.Int("dimension_added", summary.Dimension.Added),
		zap.Int("dimension_versioned", summary.Dimension.Versioned),
		zap.Int("dimension_closed", summary.Dimension.Closed),
		zap.Int("dates_loaded", summary.DatesLoaded),
		zap.Int("facts_loaded", summary.FactsLoaded),
		zap.Int("metric_rows", summary.MetricRows),
	)
}

func (s *LogSink) Failure(stage string, err error) {
	s.Logger.Error("pipeline run failed",
		zap.String("stage", stage),
		zap.Error(err),
	)
}
