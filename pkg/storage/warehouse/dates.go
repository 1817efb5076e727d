package warehouse

import (
	"context"
	"fmt"
	"time"

	"cryptodwh/internal/snapshot"

	"go.uber.org/zap"
)

// LoadDates merges calendar rows into dim_date. Existing dates are never
// touched, even if the derivation logic changed since they were written.
func LoadDates(ctx context.Context, store Store, rows []snapshot.DateRow, logger *zap.Logger) (int, error) {
	existing, err := store.DimensionDates(ctx)
	if err != nil {
		return 0, err
	}

	var recs []DateRecord
	for _, row := range rows {
		if _, ok := existing[row.Date]; ok {
			continue
		}
		day, err := time.Parse(snapshot.DateLayout, row.Date)
		if err != nil {
			return 0, fmt.Errorf("invalid date row %q: %w", row.Date, err)
		}
		recs = append(recs, DateRecord{
			Date:       day,
			Year:       int(row.Year),
			Month:      int(row.Month),
			WeekNumber: int(row.WeekNumber),
			Day:        int(row.Day),
			YearMonth:  row.YearMonth,
			MonthName:  row.MonthName,
			DayOfWeek:  int(row.DayOfWeek),
			DayOfYear:  int(row.DayOfYear),
			WeekOfYear: int(row.WeekOfYear),
			Quarter:    int(row.Quarter),
			Semester:   int(row.Semester),
			IsWeekend:  row.IsWeekend,
		})
	}

	if len(recs) == 0 {
		logger.Info("no new dates for dim_date")
		return 0, nil
	}

	if err := store.InsertDates(ctx, recs); err != nil {
		return 0, fmt.Errorf("insert dates: %w", err)
	}
	logger.Info("dates added to dim_date", zap.Int("count", len(recs)))
	return len(recs), nil
}
