package dimdate

import (
	"testing"
	"time"

	"cryptodwh/internal/snapshot"
)

// go test -v --run TestDerive
func TestDerive(t *testing.T) {
	cases := []struct {
		date string
		want snapshot.DateRow
	}{
		{
			date: "2024-03-15", // Friday
			want: snapshot.DateRow{
				Date: "2024-03-15", Year: 2024, Month: 3, WeekNumber: 11, Day: 15,
				YearMonth: "202403", MonthName: "March", DayOfWeek: 5, DayOfYear: 75,
				WeekOfYear: 11, Quarter: 1, Semester: 1, IsWeekend: false,
			},
		},
		{
			date: "2024-03-17", // Sunday
			want: snapshot.DateRow{
				Date: "2024-03-17", Year: 2024, Month: 3, WeekNumber: 11, Day: 17,
				YearMonth: "202403", MonthName: "March", DayOfWeek: 7, DayOfYear: 77,
				WeekOfYear: 11, Quarter: 1, Semester: 1, IsWeekend: true,
			},
		},
		{
			date: "2024-07-01", // Monday, second semester
			want: snapshot.DateRow{
				Date: "2024-07-01", Year: 2024, Month: 7, WeekNumber: 27, Day: 1,
				YearMonth: "202407", MonthName: "July", DayOfWeek: 1, DayOfYear: 183,
				WeekOfYear: 27, Quarter: 3, Semester: 2, IsWeekend: false,
			},
		},
	}

	for _, tc := range cases {
		day, err := time.Parse(snapshot.DateLayout, tc.date)
		if err != nil {
			t.Fatalf("bad test date %s: %v", tc.date, err)
		}
		got := Derive(day)
		if got != tc.want {
			t.Errorf("Derive(%s)\n got %+v\nwant %+v", tc.date, got, tc.want)
		}
	}
}

// go test -v --run TestBuildRows
func TestBuildRows(t *testing.T) {
	prices := []snapshot.PriceRow{
		{Date: "2024-03-16", Symbol: "BTC"},
		{Date: "2024-03-15", Symbol: "BTC"},
		{Date: "2024-03-15", Symbol: "ETH"}, // duplicate date
	}

	rows, err := BuildRows(prices)
	if err != nil {
		t.Fatalf("BuildRows failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 distinct dates, got %d", len(rows))
	}
	if rows[0].Date != "2024-03-15" || rows[1].Date != "2024-03-16" {
		t.Errorf("expected ascending date order, got %s, %s", rows[0].Date, rows[1].Date)
	}
}

// go test -v --run TestBuildRowsInvalidDate
func TestBuildRowsInvalidDate(t *testing.T) {
	_, err := BuildRows([]snapshot.PriceRow{{Date: "15/03/2024"}})
	if err == nil {
		t.Fatal("expected error for malformed date, got nil")
	}
}
