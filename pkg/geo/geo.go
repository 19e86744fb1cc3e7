package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle distance between two points in meters
// using the haversine formula. It is symmetric and returns 0 for identical
// points. Out-of-range or NaN coordinates propagate; callers validate input.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Hint classifies a proximity check for display.
type Hint string

const (
	HintNear    Hint = "near"
	HintAway    Hint = "away"
	HintUnknown Hint = "unknown"
)

// Gate decides whether a check-in attempt is geographically admissible.
// Proximity is advisory: a missing location on either side admits the
// attempt, because location acquisition is unreliable and must never block
// a legitimate check-in.
type Gate struct {
	ThresholdMeters float64
}

// Admissible reports whether the user location is within the gate threshold
// of the position location. Either location being absent yields true.
func (g Gate) Admissible(user, position *Point) bool {
	if user == nil || position == nil {
		return true
	}
	return Distance(*user, *position) <= g.ThresholdMeters
}

// Classify maps the same decision to a display hint. Absent locations yield
// HintUnknown rather than HintNear so the operator can tell the difference.
func (g Gate) Classify(user, position *Point) Hint {
	if user == nil || position == nil {
		return HintUnknown
	}
	if Distance(*user, *position) <= g.ThresholdMeters {
		return HintNear
	}
	return HintAway
}
