// Package staging extracts the per-run raw snapshots and writes them as dated
// parquet artifacts for the consolidation stage.
package staging

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"cryptodwh/internal/snapshot"

	"go.uber.org/zap"
)

// Fatal stage conditions: a run with no usable rows at all cannot proceed.
var (
	ErrNoPrices   = errors.New("no price rows extracted for any coin")
	ErrNoProfiles = errors.New("no profile rows extracted for any coin")
)

// PriceSource supplies daily OHLC rows for one coin.
type PriceSource interface {
	DailyOHLC(ctx context.Context, coin string, day time.Time) ([]snapshot.PriceRow, error)
}

// ProfileSource supplies the descriptive metadata of one coin.
type ProfileSource interface {
	Profile(ctx context.Context, id string) (*snapshot.ProfileRow, error)
}

type Stager struct {
	prices     PriceSource
	profiles   ProfileSource
	coins      []string
	profileIDs []string
	delay      time.Duration
	dataDir    string
	logger     *zap.Logger
}

func New(prices PriceSource, profiles ProfileSource, coins, profileIDs []string,
	delay time.Duration, dataDir string, logger *zap.Logger) *Stager {
	return &Stager{
		prices:     prices,
		profiles:   profiles,
		coins:      coins,
		profileIDs: profileIDs,
		delay:      delay,
		dataDir:    dataDir,
		logger:     logger,
	}
}

// PriceStorePath is the staging artifact holding one run date's price rows.
func PriceStorePath(dataDir string, day time.Time) string {
	name := fmt.Sprintf("daily_crypto_prices_%s_staging.parquet", day.Format(snapshot.DateLayout))
	return filepath.Join(dataDir, "staging", name)
}

// ProfileStorePath is the staging artifact holding one run date's profile rows.
func ProfileStorePath(dataDir string, day time.Time) string {
	name := fmt.Sprintf("crypto_table_%s_staging.parquet", day.Format(snapshot.DateLayout))
	return filepath.Join(dataDir, "staging", name)
}

// Run extracts prices for every configured coin and profiles for every
// configured id, then writes the two staging snapshots. A coin with no data is
// logged and skipped; a table with no rows at all fails the stage.
func (s *Stager) Run(ctx context.Context, day time.Time) (int, int, error) {
	var priceRows []snapshot.PriceRow
	for i, coin := range s.coins {
		rows, err := s.prices.DailyOHLC(ctx, coin, day)
		if err != nil {
			s.logger.Warn("failed to fetch OHLC data", zap.String("coin", coin), zap.Error(err))
		} else if len(rows) == 0 {
			s.logger.Warn("no price data for coin", zap.String("coin", coin), zap.Time("date", day))
		} else {
			priceRows = append(priceRows, rows...)
		}

		// Public API rate limit requires spacing out requests
		if s.delay > 0 && i < len(s.coins)-1 {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return 0, 0, ctx.Err()
			}
		}
	}

	var profileRows []snapshot.ProfileRow
	for _, id := range s.profileIDs {
		row, err := s.profiles.Profile(ctx, id)
		if err != nil {
			s.logger.Warn("failed to fetch profile", zap.String("id", id), zap.Error(err))
			continue
		}
		profileRows = append(profileRows, *row)
	}

	if len(priceRows) == 0 {
		return 0, 0, ErrNoPrices
	}
	if len(profileRows) == 0 {
		return 0, 0, ErrNoProfiles
	}

	priceStore := snapshot.NewStore[snapshot.PriceRow](PriceStorePath(s.dataDir, day))
	if err := priceStore.Write(priceRows); err != nil {
		return 0, 0, fmt.Errorf("write price staging snapshot: %w", err)
	}
	profileStore := snapshot.NewStore[snapshot.ProfileRow](ProfileStorePath(s.dataDir, day))
	if err := profileStore.Write(profileRows); err != nil {
		return 0, 0, fmt.Errorf("write profile staging snapshot: %w", err)
	}

	s.logger.Info("staging snapshots written",
		zap.Time("date", day),
		zap.Int("price_rows", len(priceRows)),
		zap.Int("profile_rows", len(profileRows)),
	)
	return len(priceRows), len(profileRows), nil
}
