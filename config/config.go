package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	CoinGecko     CoinGeckoConfig     `mapstructure:"coingecko"`
	CoinMarketCap CoinMarketCapConfig `mapstructure:"coinmarketcap"`
	Pipeline      PipelineConfig      `mapstructure:"pipeline"`
	Log           LogConfig           `mapstructure:"log"`
	Postgres      PostgresConfig      `mapstructure:"postgres"`
}

type CoinGeckoConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Delay enforced between consecutive OHLC requests (public API rate limit).
	RequestDelay time.Duration `mapstructure:"request_delay"`
}

type CoinMarketCapConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	APIKey     string        `mapstructure:"api_key"`
	MaxRetries uint64        `mapstructure:"max_retries"` // retries on HTTP 429
}

// PipelineConfig carries the run-level settings: which coins to track, how raw
// provider identifiers map to canonical tickers, and where snapshot artifacts live.
type PipelineConfig struct {
	Coins      []string          `mapstructure:"coins"`       // CoinGecko coin ids, e.g. "bitcoin"
	ProfileIDs []string          `mapstructure:"profile_ids"` // CoinMarketCap numeric ids, e.g. "1"
	SymbolMap  map[string]string `mapstructure:"symbol_map"`  // raw id -> ticker, e.g. "bitcoin" -> "BTC"
	DataDir    string            `mapstructure:"data_dir"`    // root for staging/ and silver/ parquet files
	Timezone   string            `mapstructure:"timezone"`    // reporting timezone used to pick the run date
	Schedule   bool              `mapstructure:"schedule"`    // run daily at UTC midnight instead of once
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// A .env file is applied first (if present), then config.yaml, and environment
// variables override both. In prod the CoinMarketCap API key is pulled from
// Parameter Store when it is not set locally.
func Load() *Config {
	_ = godotenv.Load() // optional

	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// Support environment variables with dot notation (e.g., COINMARKETCAP_API_KEY)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	if cfg.Log.Environment == "prod" && cfg.CoinMarketCap.APIKey == "" {
		cfg.CoinMarketCap.APIKey = getParameterStoreValue("COINMARKETCAP_API_KEY", true)
	}

	return &cfg
}
