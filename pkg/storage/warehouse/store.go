package warehouse

import (
	"context"
	"time"
)

// Store is the warehouse capability the reconcilers and loaders run against.
// The GORM client implements it against Postgres; memstore implements it
// in-memory for tests.
type Store interface {
	// CurrentSymbols returns the business keys that have a current
	// dimension version (is_current = 1).
	CurrentSymbols(ctx context.Context) (map[string]struct{}, error)
	// CurrentDescription returns the current version for a symbol,
	// or nil when the symbol has never been observed.
	CurrentDescription(ctx context.Context, symbol string) (*DescriptionRecord, error)
	InsertDescription(ctx context.Context, rec *DescriptionRecord) error
	// ReviseDescription closes the current version of rec.Symbol
	// (is_current = 0, valid_to = closeTo) and inserts rec as the new
	// current version. Both writes commit atomically or not at all.
	ReviseDescription(ctx context.Context, closeTo time.Time, rec *DescriptionRecord) error

	// DimensionDates returns the dates already present in dim_date,
	// keyed by their YYYY-MM-DD form.
	DimensionDates(ctx context.Context) (map[string]struct{}, error)
	InsertDates(ctx context.Context, recs []DateRecord) error

	// FactDates returns the distinct dates already present in the fact
	// table, keyed by their YYYY-MM-DD form.
	FactDates(ctx context.Context) (map[string]struct{}, error)
	InsertPrices(ctx context.Context, recs []PriceRecord) error

	HasMetrics(ctx context.Context, day time.Time) (bool, error)
	// PricesWithCategory returns the fact rows for one day joined with the
	// category of each symbol's current dimension version.
	PricesWithCategory(ctx context.Context, day time.Time) ([]PriceWithCategory, error)
	InsertMetrics(ctx context.Context, recs []MetricRecord) error
}

// PriceWithCategory is a fact row enriched with the current dimension category,
// the input of the metrics aggregation.
type PriceWithCategory struct {
	Date     time.Time
	Symbol   string
	Category string
	Open     float64
	High     float64
	Low      float64
	Close    float64
}
