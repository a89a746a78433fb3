// Package circuitbreaker provides circuit breaker implementations for database operations.
// This file implements a database-specific wrapper that protects subscriber store
// reads from cascading failures.
package circuitbreaker

import (
	"context"
	"database/sql"
	"time"
)

// DBCircuitBreaker wraps a database connection with circuit breaker protection.
// It prevents cascading failures when the subscriber store becomes unavailable
// or slow. When the circuit is open, reads fail fast with ErrOpenState instead
// of consuming connections on a dead store.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig returns configuration optimized for subscriber store circuit breakers.
// Opens after 5 consecutive failures, 30 second timeout.
func DBConfig() Config {
	return Config{
		Name:             "subscriber-store",
		MaxRequests:      3, // Allow 3 test requests in half-open state
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0, // Open on 100% failure (5+ consecutive failures)
		MinRequests:      5,   // Require 5 failures before tripping
	}
}

// NewDBCircuitBreaker creates a new database circuit breaker.
// It wraps the provided database connection with circuit breaker protection.
func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return &DBCircuitBreaker{
		cb: New(DBConfig()),
		db: db,
	}
}

// NewDBCircuitBreakerWithConfig creates a new database circuit breaker with custom configuration.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{
		cb: New(cfg),
		db: db,
	}
}

// CountContext executes a single-row COUNT query with circuit breaker
// protection and returns the scanned value. QueryRowContext defers its error
// to Scan, so the whole query-and-scan runs inside the breaker to make
// failures visible to it.
func (dcb *DBCircuitBreaker) CountContext(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := dcb.cb.Execute(func() (interface{}, error) {
		var n int64
		if err := dcb.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			return int64(0), err
		}
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// PingContext probes store connectivity with circuit breaker protection.
func (dcb *DBCircuitBreaker) PingContext(ctx context.Context) error {
	_, err := dcb.cb.Execute(func() (interface{}, error) {
		return nil, dcb.db.PingContext(ctx)
	})
	return err
}

// State returns the current state of the circuit breaker.
func (dcb *DBCircuitBreaker) State() string {
	return dcb.cb.State().String()
}

// IsOpen returns true if the circuit breaker is in the open state.
func (dcb *DBCircuitBreaker) IsOpen() bool {
	return dcb.cb.IsOpen()
}

// DB returns the underlying database connection.
// This should only be used for operations that don't need circuit breaker protection.
func (dcb *DBCircuitBreaker) DB() *sql.DB {
	return dcb.db
}
