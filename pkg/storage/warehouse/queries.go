package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (c *Client) CurrentSymbols(ctx context.Context) (map[string]struct{}, error) {
	var symbols []string
	err := c.DB.WithContext(ctx).
		Model(&DescriptionRecord{}).
		Where("is_current = 1").
		Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, fmt.Errorf("fetch current symbols: %w", err)
	}

	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	return set, nil
}

func (c *Client) CurrentDescription(ctx context.Context, symbol string) (*DescriptionRecord, error) {
	var rec DescriptionRecord
	err := c.DB.WithContext(ctx).
		Where("symbol = ? AND is_current = 1", symbol).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch current description for %s: %w", symbol, err)
	}
	return &rec, nil
}

func (c *Client) InsertDescription(ctx context.Context, rec *DescriptionRecord) error {
	return c.DB.WithContext(ctx).Create(rec).Error
}

func (c *Client) ReviseDescription(ctx context.Context, closeTo time.Time, rec *DescriptionRecord) error {
	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&DescriptionRecord{}).
			Where("symbol = ? AND is_current = 1", rec.Symbol).
			Updates(map[string]interface{}{"is_current": 0, "valid_to": closeTo})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("no current record to close for symbol %s", rec.Symbol)
		}
		return tx.Create(rec).Error
	})
}

func (c *Client) DimensionDates(ctx context.Context) (map[string]struct{}, error) {
	var dates []time.Time
	err := c.DB.WithContext(ctx).
		Model(&DateRecord{}).
		Pluck("date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("fetch dimension dates: %w", err)
	}
	return dateSet(dates), nil
}

func (c *Client) InsertDates(ctx context.Context, recs []DateRecord) error {
	if len(recs) == 0 {
		return nil
	}
	// Date is the primary key; concurrent retries of the same batch are no-ops.
	return c.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&recs).Error
}

func (c *Client) FactDates(ctx context.Context) (map[string]struct{}, error) {
	var dates []time.Time
	err := c.DB.WithContext(ctx).
		Model(&PriceRecord{}).
		Distinct("date").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("fetch fact dates: %w", err)
	}
	return dateSet(dates), nil
}

func (c *Client) InsertPrices(ctx context.Context, recs []PriceRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return c.DB.WithContext(ctx).Create(&recs).Error
}

func (c *Client) HasMetrics(ctx context.Context, day time.Time) (bool, error) {
	var count int64
	err := c.DB.WithContext(ctx).
		Model(&MetricRecord{}).
		Where("date = ?", day).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check metrics for %s: %w", day.Format("2006-01-02"), err)
	}
	return count > 0, nil
}

func (c *Client) PricesWithCategory(ctx context.Context, day time.Time) ([]PriceWithCategory, error) {
	var rows []PriceWithCategory
	err := c.DB.WithContext(ctx).
		Table("daily_crypto_prices AS dp").
		Select("dp.date, dp.symbol, cd.category, dp.open_price AS open, dp.high_price AS high, dp.low_price AS low, dp.close_price AS close").
		Joins("LEFT JOIN crypto_description cd ON cd.symbol = dp.symbol AND cd.is_current = 1").
		Where("dp.date = ?", day).
		Order("dp.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch prices with category for %s: %w", day.Format("2006-01-02"), err)
	}
	return rows, nil
}

func (c *Client) InsertMetrics(ctx context.Context, recs []MetricRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return c.DB.WithContext(ctx).Create(&recs).Error
}

func dateSet(dates []time.Time) map[string]struct{} {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d.Format("2006-01-02")] = struct{}{}
	}
	return set
}
