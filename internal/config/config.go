package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"runtime"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	PostgresHost     string `env:"POSTGRES_HOST,required,notEmpty"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresDB       string `env:"POSTGRES_DB,required,notEmpty"`
	PostgresUser     string `env:"POSTGRES_USER,required,notEmpty"`
	PostgresPassword string `env:"POSTGRES_PASSWORD,required,notEmpty"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Generation
	CompanyCount int       `env:"COMPANY_COUNT" envDefault:"500"`
	Epoch        time.Time `env:"EPOCH" envDefault:"2021-01-01T00:00:00Z"`
	WorkerCount  int       `env:"WORKER_COUNT" envDefault:"0"`
	Seed         uint64    `env:"SEED" envDefault:"0"`

	// Load
	LoadBatchSize        int     `env:"LOAD_BATCH_SIZE" envDefault:"1000"`
	LoadMaxBatchesPerSec float64 `env:"LOAD_MAX_BATCHES_PER_SEC" envDefault:"0"`

	// Metrics
	MetricsAddr     string `env:"METRICS_ADDR"`
	MetricsTextfile string `env:"METRICS_TEXTFILE"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		var missing []string
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) {
			for _, e := range aggErr.Errors {
				var unsetErr env.EnvVarIsNotSetError
				var emptyErr env.EmptyEnvVarError
				switch {
				case errors.As(e, &unsetErr):
					missing = append(missing, unsetErr.Key)
				case errors.As(e, &emptyErr):
					missing = append(missing, emptyErr.Key)
				}
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("required environment variables are not set: %v", missing)
		}
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.CompanyCount < 0 {
		return fmt.Errorf("COMPANY_COUNT must not be negative: %d", c.CompanyCount)
	}
	if c.WorkerCount < 0 {
		return fmt.Errorf("WORKER_COUNT must not be negative: %d", c.WorkerCount)
	}
	if c.LoadBatchSize <= 0 {
		return fmt.Errorf("LOAD_BATCH_SIZE must be positive: %d", c.LoadBatchSize)
	}
	if c.LoadMaxBatchesPerSec < 0 {
		return fmt.Errorf("LOAD_MAX_BATCHES_PER_SEC must not be negative: %v", c.LoadMaxBatchesPerSec)
	}
	return nil
}

// DatabaseURL はPostgreSQLの接続URLを組み立てる。
// lib/pq と golang-migrate の両方で同じURLを使う。
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     net.JoinHostPort(c.PostgresHost, strconv.Itoa(c.PostgresPort)),
		Path:     "/" + c.PostgresDB,
		RawQuery: url.Values{"sslmode": []string{c.PostgresSSLMode}}.Encode(),
	}
	return u.String()
}

// Workers はシミュレーションの並列数を返す。
// WORKER_COUNTが0の場合はCPU数-1（最低1）を使う。
func (c *Config) Workers() int {
	if c.WorkerCount > 0 {
		return c.WorkerCount
	}
	return max(runtime.NumCPU()-1, 1)
}
