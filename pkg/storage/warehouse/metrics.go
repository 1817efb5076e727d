package warehouse

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// DailyInterval is the granularity label of the metrics computed here.
const DailyInterval = "daily"

// ComputeMetrics aggregates the fact rows of one day into volatility and
// performance metrics per (symbol, category) and appends them. A day that
// already has metric rows is left untouched.
func ComputeMetrics(ctx context.Context, store Store, day time.Time, logger *zap.Logger) (int, error) {
	exists, err := store.HasMetrics(ctx, day)
	if err != nil {
		return 0, err
	}
	if exists {
		logger.Info("metrics already computed for date", zap.Time("date", day))
		return 0, nil
	}

	rows, err := store.PricesWithCategory(ctx, day)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		logger.Info("no fact rows for date, skipping metrics", zap.Time("date", day))
		return 0, nil
	}

	recs := aggregate(rows)
	if err := store.InsertMetrics(ctx, recs); err != nil {
		return 0, fmt.Errorf("insert metrics: %w", err)
	}

	logger.Info("metrics computed", zap.Time("date", day), zap.Int("rows", len(recs)))
	return len(recs), nil
}

type metricKey struct {
	date     time.Time
	symbol   string
	category string
}

type metricAcc struct {
	open   float64 // first observed
	close  float64 // last observed
	high   float64
	low    float64
	closes []float64
}

// aggregate groups fact rows by (date, symbol, category) in input order.
// Open comes from the first row and close from the last row of each group,
// following the fact store's insertion order.
func aggregate(rows []PriceWithCategory) []MetricRecord {
	accs := make(map[metricKey]*metricAcc, len(rows))
	var order []metricKey

	for _, row := range rows {
		key := metricKey{date: row.Date, symbol: row.Symbol, category: row.Category}
		acc, ok := accs[key]
		if !ok {
			acc = &metricAcc{open: row.Open, high: row.High, low: row.Low}
			accs[key] = acc
			order = append(order, key)
		}
		if row.High > acc.high {
			acc.high = row.High
		}
		if row.Low < acc.low {
			acc.low = row.Low
		}
		acc.close = row.Close
		acc.closes = append(acc.closes, row.Close)
	}

	recs := make([]MetricRecord, 0, len(order))
	for _, key := range order {
		acc := accs[key]
		mean := meanOf(acc.closes)
		recs = append(recs, MetricRecord{
			Date:         key.date,
			Symbol:       key.symbol,
			Category:     key.category,
			TimeInterval: DailyInterval,
			Low:          acc.low,
			High:         acc.high,
			Volatility:   (acc.high - acc.low) / acc.close,
			Open:         acc.open,
			Close:        acc.close,
			Return:       (acc.close - acc.open) / acc.open * 100,
			Range:        acc.high - acc.low,
			Average:      mean,
			StdDev:       sampleStdDev(acc.closes, mean),
		})
	}
	return recs
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation, NaN for fewer than two
// observations. The NaN is preserved, not coerced to zero.
func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
