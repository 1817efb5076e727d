// Package dimdate derives the calendar attributes stored in the date dimension.
package dimdate

import (
	"fmt"
	"sort"
	"time"

	"cryptodwh/internal/snapshot"
)

// Derive computes the calendar attributes for one date.
// Conventions: day_of_week uses Monday=1..Sunday=7, day_of_year is 1-based,
// quarter = ((month-1)/3)+1, semester splits at June, weekends are Sat/Sun.
func Derive(day time.Time) snapshot.DateRow {
	_, isoWeek := day.ISOWeek()

	dow := int(day.Weekday())
	if dow == 0 {
		dow = 7 // Sunday
	}

	month := int(day.Month())
	semester := 1
	if month > 6 {
		semester = 2
	}

	return snapshot.DateRow{
		Date:       day.Format(snapshot.DateLayout),
		Year:       int32(day.Year()),
		Month:      int32(month),
		WeekNumber: int32(isoWeek),
		Day:        int32(day.Day()),
		YearMonth:  day.Format("200601"),
		MonthName:  day.Month().String(),
		DayOfWeek:  int32(dow),
		DayOfYear:  int32(day.YearDay()),
		WeekOfYear: int32(isoWeek),
		Quarter:    int32((month-1)/3 + 1),
		Semester:   int32(semester),
		IsWeekend:  dow >= 6,
	}
}

// BuildRows derives calendar rows for the distinct dates observed in a price
// snapshot, in ascending date order.
func BuildRows(prices []snapshot.PriceRow) ([]snapshot.DateRow, error) {
	seen := make(map[string]struct{}, len(prices))
	var dates []string
	for _, p := range prices {
		if _, ok := seen[p.Date]; ok {
			continue
		}
		seen[p.Date] = struct{}{}
		dates = append(dates, p.Date)
	}
	sort.Strings(dates)

	rows := make([]snapshot.DateRow, 0, len(dates))
	for _, d := range dates {
		day, err := time.Parse(snapshot.DateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot date %q: %w", d, err)
		}
		rows = append(rows, Derive(day))
	}
	return rows, nil
}
