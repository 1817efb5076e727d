package warehouse

import "time"

// OpenEndDate is the sentinel valid_to of the current dimension version.
var OpenEndDate = time.Date(9999, time.December, 1, 0, 0, 0, 0, time.UTC)

// DescriptionRecord is one version of a coin's descriptive attributes, tracked
// with SCD Type 2 semantics: exactly one current row per symbol, historical
// rows are closed with valid_to and is_current = 0 instead of being updated.
type DescriptionRecord struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(100);not null"`
	Symbol      string `gorm:"type:varchar(10);not null;index:idx_description_symbol"`
	Category    string `gorm:"type:varchar(50)"`
	Description string `gorm:"type:text"`
	SourceID    int64  `gorm:"column:bk_crypto"`
	Logo        string `gorm:"type:text"`
	Website     string `gorm:"type:text"`
	Reddit      string `gorm:"type:text"`

	ValidFrom time.Time `gorm:"type:date"`
	ValidTo   time.Time `gorm:"type:date"`
	IsCurrent int       `gorm:"not null;index:idx_description_current"`
}

func (DescriptionRecord) TableName() string {
	return "crypto_description"
}

// DateRecord is one immutable row of the date dimension.
type DateRecord struct {
	Date       time.Time `gorm:"primaryKey;type:date"`
	Year       int       `gorm:"not null"`
	Month      int       `gorm:"not null"`
	WeekNumber int       `gorm:"not null"`
	Day        int       `gorm:"not null"`
	YearMonth  string    `gorm:"column:yearmonth;type:varchar(6);not null"`
	MonthName  string    `gorm:"type:varchar(20);not null"`
	DayOfWeek  int       `gorm:"not null"` // Monday=1 .. Sunday=7
	DayOfYear  int       `gorm:"not null"`
	WeekOfYear int       `gorm:"not null"`
	Quarter    int       `gorm:"not null"`
	Semester   int       `gorm:"not null"`
	IsWeekend  bool      `gorm:"not null"`
}

func (DateRecord) TableName() string {
	return "dim_date"
}

// PriceRecord is one OHLC fact row. Rows are append-only and deduplicated at
// whole-day granularity by the loader, never per row.
type PriceRecord struct {
	ID     uint      `gorm:"primaryKey"`
	Date   time.Time `gorm:"type:date;not null;index:idx_price_date"`
	Time   string    `gorm:"type:time;not null"`
	Symbol string    `gorm:"type:varchar(10);not null;index:idx_price_symbol"`
	Open   float64   `gorm:"column:open_price;type:numeric"`
	High   float64   `gorm:"column:high_price;type:numeric"`
	Low    float64   `gorm:"column:low_price;type:numeric"`
	Close  float64   `gorm:"column:close_price;type:numeric"`
}

func (PriceRecord) TableName() string {
	return "daily_crypto_prices"
}

// MetricRecord is one aggregated volatility/performance row per
// (date, symbol, time interval). Computed once per date, never updated.
type MetricRecord struct {
	ID           uint      `gorm:"primaryKey"`
	Date         time.Time `gorm:"type:date;not null;index:idx_metric_date"`
	Symbol       string    `gorm:"type:varchar(10);not null"`
	Category     string    `gorm:"type:varchar(50)"`
	TimeInterval string    `gorm:"type:varchar(255)"`
	Low          float64   `gorm:"column:low_price;type:numeric"`
	High         float64   `gorm:"column:high_price;type:numeric"`
	Volatility   float64   `gorm:"type:numeric"`
	Open         float64   `gorm:"column:open_price;type:numeric"`
	Close        float64   `gorm:"column:close_price;type:numeric"`
	Return       float64   `gorm:"column:return;type:numeric"`
	Range        float64   `gorm:"column:range;type:numeric"`
	Average      float64   `gorm:"column:average_price;type:numeric"`
	StdDev       float64   `gorm:"column:standard_deviation;type:numeric"`
}

func (MetricRecord) TableName() string {
	return "crypto_volatility_and_performance"
}
