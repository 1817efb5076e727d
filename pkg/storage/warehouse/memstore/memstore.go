// Package memstore provides an in-memory warehouse.Store for tests.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cryptodwh/pkg/storage/warehouse"
)

type Store struct {
	mu           sync.Mutex
	nextID       uint
	descriptions []warehouse.DescriptionRecord
	dates        []warehouse.DateRecord
	prices       []warehouse.PriceRecord
	metrics      []warehouse.MetricRecord
}

func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) CurrentSymbols(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := make(map[string]struct{})
	for _, d := range s.descriptions {
		if d.IsCurrent == 1 {
			set[d.Symbol] = struct{}{}
		}
	}
	return set, nil
}

func (s *Store) CurrentDescription(ctx context.Context, symbol string) (*warehouse.DescriptionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.descriptions {
		if s.descriptions[i].Symbol == symbol && s.descriptions[i].IsCurrent == 1 {
			rec := s.descriptions[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *Store) InsertDescription(ctx context.Context, rec *warehouse.DescriptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *rec
	r.ID = s.nextID
	s.nextID++
	s.descriptions = append(s.descriptions, r)
	return nil
}

func (s *Store) ReviseDescription(ctx context.Context, closeTo time.Time, rec *warehouse.DescriptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed := false
	for i := range s.descriptions {
		if s.descriptions[i].Symbol == rec.Symbol && s.descriptions[i].IsCurrent == 1 {
			s.descriptions[i].IsCurrent = 0
			s.descriptions[i].ValidTo = closeTo
			closed = true
			break
		}
	}
	if !closed {
		return fmt.Errorf("no current record to close for symbol %s", rec.Symbol)
	}

	r := *rec
	r.ID = s.nextID
	s.nextID++
	s.descriptions = append(s.descriptions, r)
	return nil
}

func (s *Store) DimensionDates(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := make(map[string]struct{}, len(s.dates))
	for _, d := range s.dates {
		set[d.Date.Format("2006-01-02")] = struct{}{}
	}
	return set, nil
}

func (s *Store) InsertDates(ctx context.Context, recs []warehouse.DateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.dates))
	for _, d := range s.dates {
		existing[d.Date.Format("2006-01-02")] = struct{}{}
	}
	for _, r := range recs {
		// Date is the primary key; duplicates are dropped like ON CONFLICT DO NOTHING.
		if _, ok := existing[r.Date.Format("2006-01-02")]; ok {
			continue
		}
		s.dates = append(s.dates, r)
	}
	return nil
}

func (s *Store) FactDates(ctx context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := make(map[string]struct{})
	for _, p := range s.prices {
		set[p.Date.Format("2006-01-02")] = struct{}{}
	}
	return set, nil
}

func (s *Store) InsertPrices(ctx context.Context, recs []warehouse.PriceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range recs {
		r.ID = s.nextID
		s.nextID++
		s.prices = append(s.prices, r)
	}
	return nil
}

func (s *Store) HasMetrics(ctx context.Context, day time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.metrics {
		if sameDay(m.Date, day) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) PricesWithCategory(ctx context.Context, day time.Time) ([]warehouse.PriceWithCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := make(map[string]string)
	for _, d := range s.descriptions {
		if d.IsCurrent == 1 {
			category[d.Symbol] = d.Category
		}
	}

	var rows []warehouse.PriceWithCategory
	for _, p := range s.prices {
		if !sameDay(p.Date, day) {
			continue
		}
		rows = append(rows, warehouse.PriceWithCategory{
			Date:     p.Date,
			Symbol:   p.Symbol,
			Category: category[p.Symbol],
			Open:     p.Open,
			High:     p.High,
			Low:      p.Low,
			Close:    p.Close,
		})
	}
	return rows, nil
}

func (s *Store) InsertMetrics(ctx context.Context, recs []warehouse.MetricRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range recs {
		r.ID = s.nextID
		s.nextID++
		s.metrics = append(s.metrics, r)
	}
	return nil
}

// Accessors return copies so tests can assert without racing the store.

func (s *Store) Descriptions() []warehouse.DescriptionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]warehouse.DescriptionRecord, len(s.descriptions))
	copy(out, s.descriptions)
	return out
}

func (s *Store) Dates() []warehouse.DateRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]warehouse.DateRecord, len(s.dates))
	copy(out, s.dates)
	return out
}

func (s *Store) Prices() []warehouse.PriceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]warehouse.PriceRecord, len(s.prices))
	copy(out, s.prices)
	return out
}

func (s *Store) Metrics() []warehouse.MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]warehouse.MetricRecord, len(s.metrics))
	copy(out, s.metrics)
	return out
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
