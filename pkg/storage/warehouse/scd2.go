package warehouse

import (
	"context"
	"fmt"
	"time"

	"cryptodwh/internal/snapshot"

	"go.uber.org/zap"
)

// SCD2Counts reports the outcome of one dimension reconciliation.
type SCD2Counts struct {
	Added     int // symbols inserted for the first time
	Versioned int // new versions inserted after an attribute change
	Closed    int // old versions closed (is_current -> 0)
}

// Reconciler applies Type-2 change tracking to the crypto description
// dimension. At most one row per business key is examined per run; a second
// observation of the same key in one batch is ignored.
type Reconciler struct {
	store  Store
	logger *zap.Logger
}

func NewReconciler(store Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// Reconcile folds a batch of profile observations into the dimension.
// Unknown symbols get a fresh current version valid from runDate. Symbols whose
// tracked attributes changed get their current version closed and a new one
// inserted in a single transaction. Identical re-deliveries write nothing.
func (r *Reconciler) Reconcile(ctx context.Context, rows []snapshot.ProfileRow, runDate time.Time) (SCD2Counts, error) {
	var counts SCD2Counts

	current, err := r.store.CurrentSymbols(ctx)
	if err != nil {
		return counts, err
	}

	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.Symbol]; dup {
			continue
		}
		seen[row.Symbol] = struct{}{}

		if _, ok := current[row.Symbol]; !ok {
			rec := newVersion(row, runDate)
			if err := r.store.InsertDescription(ctx, rec); err != nil {
				return counts, fmt.Errorf("insert description for %s: %w", row.Symbol, err)
			}
			counts.Added++
			continue
		}

		cur, err := r.store.CurrentDescription(ctx, row.Symbol)
		if err != nil {
			return counts, err
		}
		if cur == nil {
			// Current set said the symbol exists; treat the vanished row as fatal.
			return counts, fmt.Errorf("current record for %s disappeared mid-run", row.Symbol)
		}

		if !attributesChanged(cur, row) {
			r.logger.Debug("description unchanged", zap.String("symbol", row.Symbol))
			continue
		}

		rec := newVersion(row, runDate)
		if err := r.store.ReviseDescription(ctx, runDate, rec); err != nil {
			return counts, fmt.Errorf("revise description for %s: %w", row.Symbol, err)
		}
		counts.Closed++
		counts.Versioned++
	}

	r.logger.Info("description dimension reconciled",
		zap.Int("added", counts.Added),
		zap.Int("versioned", counts.Versioned),
		zap.Int("closed", counts.Closed),
	)
	return counts, nil
}

func newVersion(row snapshot.ProfileRow, runDate time.Time) *DescriptionRecord {
	return &DescriptionRecord{
		Name:        row.Name,
		Symbol:      row.Symbol,
		Category:    row.Category,
		Description: row.Description,
		SourceID:    row.SourceID,
		Logo:        row.Logo,
		Website:     row.Website,
		Reddit:      row.Reddit,
		ValidFrom:   runDate,
		ValidTo:     OpenEndDate,
		IsCurrent:   1,
	}
}

// attributesChanged compares the tracked attributes field by field.
func attributesChanged(cur *DescriptionRecord, row snapshot.ProfileRow) bool {
	return cur.Name != row.Name ||
		cur.Category != row.Category ||
		cur.Description != row.Description ||
		cur.SourceID != row.SourceID ||
		cur.Logo != row.Logo ||
		cur.Website != row.Website ||
		cur.Reddit != row.Reddit
}
