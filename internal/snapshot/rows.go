package snapshot

// Date and time layouts used across snapshot artifacts and the warehouse loaders.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// PriceRow is a single OHLC price observation as extracted for one run date.
// Symbol holds the raw provider identifier until NormalizeSymbols rewrites it
// to the canonical ticker.
type PriceRow struct {
	Date   string  `parquet:"date"`
	Time   string  `parquet:"time"`
	Symbol string  `parquet:"symbol"`
	Open   float64 `parquet:"open_price"`
	High   float64 `parquet:"high_price"`
	Low    float64 `parquet:"low_price"`
	Close  float64 `parquet:"close_price"`
}

// ProfileRow is the descriptive metadata observed for one tracked coin.
type ProfileRow struct {
	Symbol      string `parquet:"symbol"`
	SourceID    int64  `parquet:"bk_crypto"`
	Name        string `parquet:"name"`
	Category    string `parquet:"category"`
	Description string `parquet:"description"`
	Logo        string `parquet:"logo"`
	Website     string `parquet:"website"`
	Reddit      string `parquet:"reddit"`
}

// DateRow carries the derived calendar attributes for one observed date.
type DateRow struct {
	Date       string `parquet:"date"`
	Year       int32  `parquet:"year"`
	Month      int32  `parquet:"month"`
	WeekNumber int32  `parquet:"week_number"`
	Day        int32  `parquet:"day"`
	YearMonth  string `parquet:"yearmonth"`
	MonthName  string `parquet:"month_name"`
	DayOfWeek  int32  `parquet:"day_of_week"`
	DayOfYear  int32  `parquet:"day_of_year"`
	WeekOfYear int32  `parquet:"week_of_year"`
	Quarter    int32  `parquet:"quarter"`
	Semester   int32  `parquet:"semester"`
	IsWeekend  bool   `parquet:"is_weekend"`
}

// NormalizeSymbols rewrites raw provider identifiers to canonical tickers using
// the injected mapping. Unmapped identifiers pass through unchanged.
func NormalizeSymbols(rows []PriceRow, symbolMap map[string]string) []PriceRow {
	out := make([]PriceRow, len(rows))
	for i, r := range rows {
		if ticker, ok := symbolMap[r.Symbol]; ok {
			r.Symbol = ticker
		}
		out[i] = r
	}
	return out
}
