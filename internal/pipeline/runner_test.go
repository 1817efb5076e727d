package pipeline

import (
	"context"
	"testing"
	"time"

	"cryptodwh/internal/snapshot"
	"cryptodwh/internal/staging"
	"cryptodwh/pkg/storage/warehouse"
	"cryptodwh/pkg/storage/warehouse/memstore"

	"go.uber.org/zap"
)

type fakePrices struct {
	rows map[string][]snapshot.PriceRow // keyed by coin
}

func (f *fakePrices) DailyOHLC(ctx context.Context, coin string, day time.Time) ([]snapshot.PriceRow, error) {
	var out []snapshot.PriceRow
	for _, r := range f.rows[coin] {
		if r.Date == day.Format(snapshot.DateLayout) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeProfiles struct {
	rows map[string]snapshot.ProfileRow // keyed by id
}

func (f *fakeProfiles) Profile(ctx context.Context, id string) (*snapshot.ProfileRow, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, staging.ErrNoProfiles
	}
	return &row, nil
}

type recordingSink struct {
	successes []RunSummary
	failures  []string
}

func (s *recordingSink) Success(summary RunSummary) { s.successes = append(s.successes, summary) }
func (s *recordingSink) Failure(stage string, err error) {
	s.failures = append(s.failures, stage)
}

func newTestRunner(t *testing.T, prices *fakePrices, profiles *fakeProfiles, store *memstore.Store) (*Runner, *recordingSink) {
	t.Helper()
	dataDir := t.TempDir()
	logger := zap.NewNop()
	sink := &recordingSink{}
	return &Runner{
		Stager:    staging.New(prices, profiles, []string{"bitcoin"}, []string{"1"}, 0, dataDir, logger),
		Store:     store,
		Sink:      sink,
		Logger:    logger,
		DataDir:   dataDir,
		SymbolMap: map[string]string{"bitcoin": "BTC"},
	}, sink
}

// go test -v --run TestRunnerFullPass
func TestRunnerFullPass(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	prices := &fakePrices{rows: map[string][]snapshot.PriceRow{
		"bitcoin": {
			{Date: "2024-03-15", Time: "00:00:00", Symbol: "bitcoin", Open: 100, High: 102, Low: 99, Close: 101},
			{Date: "2024-03-15", Time: "12:00:00", Symbol: "bitcoin", Open: 101, High: 110, Low: 95, Close: 105},
		},
	}}
	profiles := &fakeProfiles{rows: map[string]snapshot.ProfileRow{
		"1": {Symbol: "BTC", SourceID: 1, Name: "Bitcoin", Category: "coin"},
	}}
	store := memstore.New()
	runner, sink := newTestRunner(t, prices, profiles, store)

	summary, err := runner.Run(context.Background(), day)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(sink.successes) != 1 || len(sink.failures) != 0 {
		t.Fatalf("sink got %d successes, %d failures", len(sink.successes), len(sink.failures))
	}

	if summary.StagedPrices != 2 || summary.StagedProfiles != 1 {
		t.Errorf("staging counts = %d/%d", summary.StagedPrices, summary.StagedProfiles)
	}
	if summary.PricesConsolidated != 2 || summary.ProfilesConsolidated != 1 || summary.DatesConsolidated != 1 {
		t.Errorf("consolidation counts = %d/%d/%d",
			summary.PricesConsolidated, summary.ProfilesConsolidated, summary.DatesConsolidated)
	}
	if summary.Dimension.Added != 1 || summary.Dimension.Versioned != 0 {
		t.Errorf("dimension counts = %+v", summary.Dimension)
	}
	if summary.DatesLoaded != 1 || summary.FactsLoaded != 2 || summary.MetricRows != 1 {
		t.Errorf("warehouse counts = %d/%d/%d", summary.DatesLoaded, summary.FactsLoaded, summary.MetricRows)
	}

	// Raw ids were normalized before reaching the warehouse.
	for _, p := range store.Prices() {
		if p.Symbol != "BTC" {
			t.Errorf("fact row carries unnormalized symbol %q", p.Symbol)
		}
	}
	if m := store.Metrics(); len(m) != 1 || m[0].Category != "coin" {
		t.Errorf("metric row missing category from current description: %+v", m)
	}
}

// go test -v --run TestRunnerRerunSameDayIsNoOp
func TestRunnerRerunSameDayIsNoOp(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	prices := &fakePrices{rows: map[string][]snapshot.PriceRow{
		"bitcoin": {
			{Date: "2024-03-15", Time: "00:00:00", Symbol: "bitcoin", Open: 100, High: 110, Low: 95, Close: 105},
		},
	}}
	profiles := &fakeProfiles{rows: map[string]snapshot.ProfileRow{
		"1": {Symbol: "BTC", SourceID: 1, Name: "Bitcoin", Category: "coin"},
	}}
	store := memstore.New()
	runner, _ := newTestRunner(t, prices, profiles, store)

	if _, err := runner.Run(context.Background(), day); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	summary, err := runner.Run(context.Background(), day)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if summary.PricesConsolidated != 0 || summary.ProfilesConsolidated != 0 || summary.DatesConsolidated != 0 {
		t.Errorf("consolidation not idempotent: %+v", summary)
	}
	if summary.Dimension != (warehouse.SCD2Counts{}) {
		t.Errorf("dimension changed on rerun: %+v", summary.Dimension)
	}
	if summary.DatesLoaded != 0 || summary.FactsLoaded != 0 || summary.MetricRows != 0 {
		t.Errorf("warehouse not idempotent: %+v", summary)
	}
	if len(store.Prices()) != 1 || len(store.Metrics()) != 1 || len(store.Descriptions()) != 1 {
		t.Errorf("store changed on rerun: %d prices, %d metrics, %d descriptions",
			len(store.Prices()), len(store.Metrics()), len(store.Descriptions()))
	}
}

// go test -v --run TestRunnerProfileChangeVersionsDimension
func TestRunnerProfileChangeVersionsDimension(t *testing.T) {
	day1 := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
	prices := &fakePrices{rows: map[string][]snapshot.PriceRow{
		"bitcoin": {
			{Date: "2024-03-15", Time: "00:00:00", Symbol: "bitcoin", Open: 100, High: 110, Low: 95, Close: 105},
			{Date: "2024-03-16", Time: "00:00:00", Symbol: "bitcoin", Open: 105, High: 112, Low: 104, Close: 111},
		},
	}}
	profiles := &fakeProfiles{rows: map[string]snapshot.ProfileRow{
		"1": {Symbol: "BTC", SourceID: 1, Name: "Bitcoin", Category: "coin"},
	}}
	store := memstore.New()
	runner, _ := newTestRunner(t, prices, profiles, store)

	if _, err := runner.Run(context.Background(), day1); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	profiles.rows["1"] = snapshot.ProfileRow{Symbol: "BTC", SourceID: 1, Name: "Bitcoin", Category: "store-of-value"}
	summary, err := runner.Run(context.Background(), day2)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if summary.Dimension.Versioned != 1 || summary.Dimension.Closed != 1 || summary.Dimension.Added != 0 {
		t.Fatalf("dimension counts = %+v", summary.Dimension)
	}

	descs := store.Descriptions()
	if len(descs) != 2 {
		t.Fatalf("expected 2 dimension rows, got %d", len(descs))
	}
	currents := 0
	for _, d := range descs {
		if d.IsCurrent == 1 {
			currents++
			if d.Category != "store-of-value" {
				t.Errorf("current row carries stale category %q", d.Category)
			}
		} else if !d.ValidTo.Equal(day2) {
			t.Errorf("closed row valid_to = %v, want %v", d.ValidTo, day2)
		}
	}
	if currents != 1 {
		t.Errorf("expected exactly one current row, got %d", currents)
	}

	// Day 2's metrics see the revised category.
	for _, m := range store.Metrics() {
		if sameDate(m.Date, day2) && m.Category != "store-of-value" {
			t.Errorf("day 2 metric category = %q", m.Category)
		}
	}
}

// go test -v --run TestRunnerStagingFailureReported
func TestRunnerStagingFailureReported(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	prices := &fakePrices{rows: map[string][]snapshot.PriceRow{}}
	profiles := &fakeProfiles{rows: map[string]snapshot.ProfileRow{}}
	runner, sink := newTestRunner(t, prices, profiles, memstore.New())

	if _, err := runner.Run(context.Background(), day); err == nil {
		t.Fatal("expected run to fail with no extractable rows")
	}
	if len(sink.failures) != 1 || sink.failures[0] != "staging" {
		t.Errorf("sink failures = %v, want one staging failure", sink.failures)
	}
}

func sameDate(a, b time.Time) bool {
	return a.Format(snapshot.DateLayout) == b.Format(snapshot.DateLayout)
}
