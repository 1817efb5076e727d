package warehouse

import (
	"context"
	"fmt"
	"time"

	"cryptodwh/internal/snapshot"

	"go.uber.org/zap"
)

// LoadPrices appends fact rows whose date is entirely absent from the fact
// table. Dedup granularity is the whole day: when any row for a date already
// exists the incoming rows for that date are skipped, so a partially delivered
// day cannot be corrected by re-running.
func LoadPrices(ctx context.Context, store Store, rows []snapshot.PriceRow, logger *zap.Logger) (int, error) {
	existing, err := store.FactDates(ctx)
	if err != nil {
		return 0, err
	}

	var recs []PriceRecord
	skipped := 0
	for _, row := range rows {
		if _, ok := existing[row.Date]; ok {
			skipped++
			continue
		}
		day, err := time.Parse(snapshot.DateLayout, row.Date)
		if err != nil {
			return 0, fmt.Errorf("invalid price row date %q: %w", row.Date, err)
		}
		recs = append(recs, PriceRecord{
			Date:   day,
			Time:   row.Time,
			Symbol: row.Symbol,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
		})
	}

	if len(recs) == 0 {
		logger.Info("no new price facts to load", zap.Int("already_loaded", skipped))
		return 0, nil
	}

	if err := store.InsertPrices(ctx, recs); err != nil {
		return 0, fmt.Errorf("insert prices: %w", err)
	}
	logger.Info("price facts loaded",
		zap.Int("inserted", len(recs)),
		zap.Int("already_loaded", skipped),
	)
	return len(recs), nil
}
