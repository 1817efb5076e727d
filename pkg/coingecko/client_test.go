package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// go test -v --run TestDailyOHLC
func TestDailyOHLC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin/ohlc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("vs_currency") != "usd" || r.URL.Query().Get("days") != "1" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		// Two candles on 2024-03-15, one spilling into 2024-03-16, one truncated.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			[1710460800000, 100, 102, 99, 101],
			[1710475200000, 101, 110, 95, 105],
			[1710547200000, 105, 112, 104, 111],
			[1710478800000, 1]
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	rows, err := client.DailyOHLC(context.Background(), "bitcoin", day)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows for target date, got %d", len(rows))
	}

	first := rows[0]
	if first.Date != "2024-03-15" || first.Time != "00:00:00" {
		t.Errorf("first row timestamp = %s %s", first.Date, first.Time)
	}
	if first.Symbol != "bitcoin" {
		t.Errorf("symbol should stay the raw provider id, got %q", first.Symbol)
	}
	if first.Open != 100 || first.High != 102 || first.Low != 99 || first.Close != 101 {
		t.Errorf("unexpected OHLC: %+v", first)
	}
	if rows[1].Time != "04:00:00" {
		t.Errorf("second row time = %s", rows[1].Time)
	}
}

// go test -v --run TestDailyOHLCNoRowsForDate
func TestDailyOHLCNoRowsForDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1710547200000, 105, 112, 104, 111]]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	rows, err := client.DailyOHLC(context.Background(), "bitcoin", day)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows outside the target date, got %d", len(rows))
	}
}

// go test -v --run TestDailyOHLCErrorStatus
func TestDailyOHLCErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"coin not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	if _, err := client.DailyOHLC(context.Background(), "nonsense", day); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
