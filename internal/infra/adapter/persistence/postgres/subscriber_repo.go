// Package postgres implements the repository interfaces against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"newsletter-api/internal/repository"
	"newsletter-api/internal/resilience/circuitbreaker"
)

// SubscriberRepo answers aggregate subscriber queries. All reads run through a
// circuit breaker so a dead store fails fast instead of tying up connections.
type SubscriberRepo struct {
	db *circuitbreaker.DBCircuitBreaker
}

func NewSubscriberRepo(db *sql.DB) repository.SubscriberRepository {
	return &SubscriberRepo{db: circuitbreaker.NewDBCircuitBreaker(db)}
}

// NewSubscriberRepoWithBreaker allows injecting a pre-configured circuit
// breaker, mainly for sharing breaker state with health reporting.
func NewSubscriberRepoWithBreaker(db *circuitbreaker.DBCircuitBreaker) repository.SubscriberRepository {
	return &SubscriberRepo{db: db}
}

func (repo *SubscriberRepo) CountTotal(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM subscribers`
	n, err := repo.db.CountContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("CountTotal: %w", err)
	}
	return n, nil
}

func (repo *SubscriberRepo) CountActive(ctx context.Context) (int64, error) {
	const query = `
SELECT COUNT(*)
FROM subscribers
WHERE subscribed_at   IS NOT NULL
  AND unsubscribed_at IS NULL
  AND email_verified  = TRUE`
	n, err := repo.db.CountContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("CountActive: %w", err)
	}
	return n, nil
}

func (repo *SubscriberRepo) CountSubscribedSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `
SELECT COUNT(*)
FROM subscribers
WHERE subscribed_at >= $1`
	n, err := repo.db.CountContext(ctx, query, since)
	if err != nil {
		return 0, fmt.Errorf("CountSubscribedSince: %w", err)
	}
	return n, nil
}

func (repo *SubscriberRepo) CountUnsubscribedSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `
SELECT COUNT(*)
FROM subscribers
WHERE unsubscribed_at >= $1`
	n, err := repo.db.CountContext(ctx, query, since)
	if err != nil {
		return 0, fmt.Errorf("CountUnsubscribedSince: %w", err)
	}
	return n, nil
}

func (repo *SubscriberRepo) Ping(ctx context.Context) error {
	if err := repo.db.PingContext(ctx); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}
