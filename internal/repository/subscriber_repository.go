// Package repository defines the persistence interfaces consumed by the
// application layer. Implementations live under internal/infra/adapter.
package repository

import (
	"context"
	"time"
)

// SubscriberRepository is the read-only gateway to the subscriber store used
// by the metrics subsystem. It exposes aggregate counts and a reachability
// probe; the metrics path never writes to the store.
type SubscriberRepository interface {
	// CountTotal returns the total number of subscriber rows.
	CountTotal(ctx context.Context) (int64, error)

	// CountActive returns the number of subscribers that are verified and
	// have not unsubscribed.
	CountActive(ctx context.Context) (int64, error)

	// CountSubscribedSince returns the number of subscriptions created at or
	// after the given instant.
	CountSubscribedSince(ctx context.Context, since time.Time) (int64, error)

	// CountUnsubscribedSince returns the number of unsubscribes recorded at or
	// after the given instant.
	CountUnsubscribedSince(ctx context.Context, since time.Time) (int64, error)

	// Ping probes store reachability. A nil return means the store answered
	// within the caller's deadline.
	Ping(ctx context.Context) error
}
