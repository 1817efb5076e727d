// Package pipeline drives the staging, consolidation, warehouse and metrics
// stages in order. Later stages read state written by earlier ones, so a stage
// failure aborts the whole run and leaves the retry decision to the caller.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"cryptodwh/internal/dimdate"
	"cryptodwh/internal/snapshot"
	"cryptodwh/internal/staging"
	"cryptodwh/pkg/storage/warehouse"

	"go.uber.org/zap"
)

// Runner wires the pipeline stages together. Migrate may be nil when schema
// provisioning is handled out of band.
type Runner struct {
	Stager    *staging.Stager
	Store     warehouse.Store
	Migrate   func() error
	Sink      NotifySink
	Logger    *zap.Logger
	DataDir   string
	SymbolMap map[string]string
}

// Run executes one full pipeline pass for the given run date and reports the
// outcome through the sink.
func (r *Runner) Run(ctx context.Context, day time.Time) (*RunSummary, error) {
	summary := &RunSummary{Date: day}

	if stage, err := r.run(ctx, day, summary); err != nil {
		wrapped := fmt.Errorf("%s stage: %w", stage, err)
		r.Sink.Failure(stage, wrapped)
		return summary, wrapped
	}

	r.Sink.Success(*summary)
	return summary, nil
}

func (r *Runner) run(ctx context.Context, day time.Time, summary *RunSummary) (string, error) {
	// Stage 1: extract raw snapshots
	stagedPrices, stagedProfiles, err := r.Stager.Run(ctx, day)
	if err != nil {
		return "staging", err
	}
	summary.StagedPrices = stagedPrices
	summary.StagedProfiles = stagedProfiles

	// Stage 2: consolidate staging snapshots into the cumulative stores
	priceStaging := snapshot.NewStore[snapshot.PriceRow](staging.PriceStorePath(r.DataDir, day))
	rawPrices, err := priceStaging.Read()
	if err != nil {
		return "consolidation", err
	}
	prices := snapshot.NormalizeSymbols(rawPrices, r.SymbolMap)

	priceSilver := snapshot.NewStore[snapshot.PriceRow](r.silverPath("daily_crypto_prices_silver.parquet"))
	allPrices, pricesAdded, err := priceSilver.Merge(prices, snapshot.PriceMergeStrategy())
	if err != nil {
		return "consolidation", err
	}
	summary.PricesConsolidated = pricesAdded

	profileStaging := snapshot.NewStore[snapshot.ProfileRow](staging.ProfileStorePath(r.DataDir, day))
	profiles, err := profileStaging.Read()
	if err != nil {
		return "consolidation", err
	}

	profileSilver := snapshot.NewStore[snapshot.ProfileRow](r.silverPath("crypto_table_silver.parquet"))
	_, profilesAdded, err := profileSilver.Merge(profiles, snapshot.ProfileMergeStrategy())
	if err != nil {
		return "consolidation", err
	}
	summary.ProfilesConsolidated = profilesAdded

	dateRows, err := dimdate.BuildRows(allPrices)
	if err != nil {
		return "consolidation", err
	}
	dateSilver := snapshot.NewStore[snapshot.DateRow](r.silverPath("date_table_silver.parquet"))
	allDates, datesAdded, err := dateSilver.Merge(dateRows, snapshot.DateMergeStrategy())
	if err != nil {
		return "consolidation", err
	}
	summary.DatesConsolidated = datesAdded

	// Stage 3: reconcile dimensions, then load facts. Dimension loads must
	// finish before the fact load so every fact row has its references.
	if r.Migrate != nil {
		if err := r.Migrate(); err != nil {
			return "warehouse", err
		}
	}

	reconciler := warehouse.NewReconciler(r.Store, r.Logger)
	counts, err := reconciler.Reconcile(ctx, profiles, day)
	if err != nil {
		return "warehouse", err
	}
	summary.Dimension = counts

	datesLoaded, err := warehouse.LoadDates(ctx, r.Store, allDates, r.Logger)
	if err != nil {
		return "warehouse", err
	}
	summary.DatesLoaded = datesLoaded

	factsLoaded, err := warehouse.LoadPrices(ctx, r.Store, allPrices, r.Logger)
	if err != nil {
		return "warehouse", err
	}
	summary.FactsLoaded = factsLoaded

	// Stage 4: aggregate the run date's facts into metrics
	metricRows, err := warehouse.ComputeMetrics(ctx, r.Store, day, r.Logger)
	if err != nil {
		return "metrics", err
	}
	summary.MetricRows = metricRows

	return "", nil
}

func (r *Runner) silverPath(name string) string {
	return filepath.Join(r.DataDir, "silver", name)
}
