// Package geo decides whether a claimed location admits a member into a
// queue, and whether the time-of-day bypass applies.
package geo

import (
	"math"
	"time"
)

// DefaultRadiusMeters is the admission radius used when none is configured.
const DefaultRadiusMeters = 250.0

const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Distance returns the great-circle distance between two points in meters,
// using the haversine formula. Accuracy is well under a meter at the
// hundreds-of-meters scale the admission radius operates on.
func Distance(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Admits reports whether the member's claimed location is within
// radiusMeters of the queue location.
func Admits(member, queue Point, radiusMeters float64) bool {
	return Distance(member, queue) <= radiusMeters
}

// BypassApplies reports whether the location check is skipped: true once
// now's time of day is at or past unlockedAfter's time of day. Both
// operands are converted to UTC first, so the answer depends on the
// instant, not on how the caller spelled its offset.
//
// Only the time-of-day component is compared; the date is ignored. That
// matches the behavior the product shipped with, and whether it is
// intentional is an open product question, so it is preserved as is.
func BypassApplies(now time.Time, unlockedAfter *time.Time) bool {
	if unlockedAfter == nil {
		return false
	}
	return secondOfDay(now.UTC()) >= secondOfDay(unlockedAfter.UTC())
}

func secondOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
