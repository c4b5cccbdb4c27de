// Package db opens the PostgreSQL connection pool behind the meeting store
// and exports its statistics to Prometheus.
package db

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rahulrocknov18/meetingsummarizer/config"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
)

// Pool tuning applied to every pool this package opens.
const (
	connectTimeout  = 10 * time.Second
	maxConnLifetime = time.Hour
	maxConnIdleTime = 30 * time.Minute
)

// DSN renders the database settings as a postgres connection URL.
func DSN(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := url.Values{}
	q.Set("sslmode", cfg.SSLMode)
	q.Set("connect_timeout", strconv.Itoa(int(connectTimeout.Seconds())))
	u.RawQuery = q.Encode()
	return u.String()
}

// Open creates a connection pool from cfg and verifies it with a ping.
// Failed attempts are retried up to attempts times with delay between them,
// so the server survives a database that is still starting up. The caller
// owns the returned pool and must Close it.
func Open(ctx context.Context, cfg config.DatabaseConfig, attempts int, delay time.Duration, logger logging.Logger) (*pgxpool.Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if attempts <= 0 {
		attempts = 1
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := open(ctx, cfg)
		if err == nil {
			return pool, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		logger.Warn("database not reachable, retrying",
			logging.F("attempt", attempt),
			logging.F("host", cfg.Host),
			logging.Err(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("connecting to %s/%s after %d attempts: %w", cfg.Host, cfg.Name, attempts, lastErr)
}

func open(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = maxConnLifetime
	poolCfg.MaxConnIdleTime = maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
