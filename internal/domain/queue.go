package domain

import "time"

// Queue is a named, time-boxed, location-anchored waiting line.
type Queue struct {
	ID        int64
	Name      string
	CreatorID int64
	Latitude  float64
	Longitude float64
	// StartsAt is fixed at creation; the queue accepts joins only once now >= StartsAt.
	StartsAt time.Time
	// UnlockedAfter, when set, marks the time of day past which the
	// location check is skipped for joins.
	UnlockedAfter *time.Time
	// GroupID links the queue to a group, when it was created for one.
	GroupID   *int64
	CreatedAt time.Time
}

// ExpiresAt returns the instant at which the queue is torn down automatically.
func (q Queue) ExpiresAt(ttl time.Duration) time.Time {
	return q.StartsAt.Add(ttl)
}
