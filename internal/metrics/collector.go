package metrics

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"newsletter-api/internal/repository"
)

// Help strings emitted in the text exposition format.
const (
	helpUp                = "Whether the newsletter API is serving requests."
	helpDatabaseStatus    = "Whether the subscriber database is reachable (1) or not (0)."
	helpSubscribersTotal  = "Total number of newsletter subscribers."
	helpSubscribersActive = "Number of verified subscribers that have not unsubscribed."
	helpSubscriptions24h  = "Number of new subscriptions in the trailing 24 hours."
	helpUnsubscribes24h   = "Number of unsubscribes in the trailing 24 hours."
)

// Collector builds per-request snapshots from subscriber store reads.
// It never fails a request for store unavailability: an unreachable store
// produces a degraded snapshot with database_status=0 and the dependent
// subscriber counts omitted.
type Collector struct {
	repo    repository.SubscriberRepository
	env     string
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// DefaultCollectTimeout bounds the store reads for one snapshot. On expiry
// the store is treated as unreachable rather than hanging the request.
const DefaultCollectTimeout = 5 * time.Second

// NewCollector creates a collector for the given environment.
// A zero timeout falls back to DefaultCollectTimeout.
func NewCollector(repo repository.SubscriberRepository, env string, timeout time.Duration, logger *slog.Logger) *Collector {
	if timeout <= 0 {
		timeout = DefaultCollectTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		repo:    repo,
		env:     env,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// subscriberCounts holds the four store aggregates for one snapshot.
type subscriberCounts struct {
	total           int64
	active          int64
	subscribed24h   int64
	unsubscribed24h int64
}

// Collect executes the store reads and assembles a snapshot. The returned
// snapshot always contains up and database_status; the subscriber counts are
// present only when every store read succeeded within the deadline.
func (c *Collector) Collect(ctx context.Context) *Snapshot {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	generatedAt := c.now()
	labels := map[string]string{"environment": c.env}

	// The handler is executing, so up is 1 by definition.
	ms := []Metric{
		{Name: MetricUp, Kind: KindGauge, Help: helpUp, Value: 1, Labels: labels},
	}

	dbStatus := 1.0
	counts, err := c.readCounts(ctx, generatedAt.Add(-24*time.Hour))
	if err != nil {
		dbStatus = 0
		c.logger.Warn("subscriber store unreachable, reporting degraded snapshot",
			slog.String("environment", c.env),
			slog.Any("error", err))
	}

	ms = append(ms, Metric{
		Name: MetricDatabaseStatus, Kind: KindGauge, Help: helpDatabaseStatus,
		Value: dbStatus, Labels: labels,
	})

	if err == nil {
		ms = append(ms,
			Metric{Name: MetricSubscribersTotal, Kind: KindGauge, Help: helpSubscribersTotal,
				Value: float64(counts.total), Labels: labels},
			Metric{Name: MetricSubscribersActive, Kind: KindGauge, Help: helpSubscribersActive,
				Value: float64(counts.active), Labels: labels},
			Metric{Name: MetricSubscriptions24h, Kind: KindGauge, Help: helpSubscriptions24h,
				Value: float64(counts.subscribed24h), Labels: labels},
			Metric{Name: MetricUnsubscribes24h, Kind: KindGauge, Help: helpUnsubscribes24h,
				Value: float64(counts.unsubscribed24h), Labels: labels},
		)
	}

	snap, snapErr := NewSnapshot(generatedAt, ms)
	if snapErr != nil {
		// Names are compile-time constants, so duplicates cannot occur here.
		panic(snapErr)
	}
	return snap
}

// readCounts probes the store and runs the four aggregate queries
// concurrently under the collector deadline. Any failure aborts the whole
// read: the degraded-snapshot policy is all counts or none.
func (c *Collector) readCounts(ctx context.Context, since time.Time) (subscriberCounts, error) {
	var counts subscriberCounts

	if err := c.repo.Ping(ctx); err != nil {
		return counts, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := c.repo.CountTotal(gctx)
		counts.total = n
		return err
	})
	g.Go(func() error {
		n, err := c.repo.CountActive(gctx)
		counts.active = n
		return err
	})
	g.Go(func() error {
		n, err := c.repo.CountSubscribedSince(gctx, since)
		counts.subscribed24h = n
		return err
	})
	g.Go(func() error {
		n, err := c.repo.CountUnsubscribedSince(gctx, since)
		counts.unsubscribed24h = n
		return err
	})

	if err := g.Wait(); err != nil {
		return subscriberCounts{}, err
	}
	return counts, nil
}
