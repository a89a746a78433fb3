// Package entity defines the core domain types for the newsletter backend.
package entity

import "time"

// Subscriber represents a single newsletter subscription record.
// The zero value is not valid; subscribers are always loaded from the store.
type Subscriber struct {
	ID             int64
	Email          string
	SubscribedAt   time.Time
	UnsubscribedAt *time.Time
	EmailVerified  bool
	VerifiedAt     *time.Time
	IPAddress      string
	UserAgent      string
	Country        string
	City           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive reports whether the subscriber should receive newsletters:
// verified and not unsubscribed.
func (s *Subscriber) IsActive() bool {
	return s.EmailVerified && s.UnsubscribedAt == nil
}

// Environment identifies a deployment environment. Metrics are labeled with
// the environment so dashboards can distinguish staging from production data.
type Environment string

const (
	EnvLocal      Environment = "local"
	EnvStaging    Environment = "staging"
	EnvProduction Environment = "production"
)

// Valid reports whether the environment is one of the known deployments.
func (e Environment) Valid() bool {
	switch e {
	case EnvLocal, EnvStaging, EnvProduction:
		return true
	}
	return false
}

func (e Environment) String() string { return string(e) }
