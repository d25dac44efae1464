package repository

import "time"

type postgresConfig struct {
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
}

// PostgresOption applies a configuration option to the PostgresStore.
type PostgresOption func(*postgresConfig)

// WithMaxOpenConns sets the connection pool's open-connection cap.
func WithMaxOpenConns(n int) PostgresOption {
	return func(c *postgresConfig) {
		if n > 0 {
			c.maxOpenConns = n
		}
	}
}

// WithMaxIdleConns sets the connection pool's idle-connection cap.
func WithMaxIdleConns(n int) PostgresOption {
	return func(c *postgresConfig) {
		if n > 0 {
			c.maxIdleConns = n
		}
	}
}

// WithConnMaxLifetime bounds how long a pooled connection is reused.
func WithConnMaxLifetime(d time.Duration) PostgresOption {
	return func(c *postgresConfig) {
		if d > 0 {
			c.connMaxLifetime = d
		}
	}
}
