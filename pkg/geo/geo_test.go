package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceIdenticalPoints(t *testing.T) {
	p := Point{Latitude: -6.2, Longitude: 106.8}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := []struct {
		a, b Point
	}{
		{Point{0, 0}, Point{0, 0.0018}},
		{Point{51.5007, -0.1246}, Point{48.8584, 2.2945}},
		{Point{-33.8568, 151.2153}, Point{35.6586, 139.7454}},
	}
	for _, pair := range pairs {
		assert.InDelta(t, Distance(pair.a, pair.b), Distance(pair.b, pair.a), 1e-9)
	}
}

func TestDistanceKnownValues(t *testing.T) {
	// One degree of longitude at the equator is roughly 111.19 km.
	d := Distance(Point{0, 0}, Point{0, 1})
	assert.InDelta(t, 111195, d, 10)

	// 0.0018 degrees at the equator is roughly 200 m.
	d = Distance(Point{0, 0}, Point{0, 0.0018})
	assert.InDelta(t, 200.15, d, 0.5)
}

func TestDistanceNaNPropagates(t *testing.T) {
	d := Distance(Point{math.NaN(), 0}, Point{0, 0})
	assert.True(t, math.IsNaN(d))
}

func TestGateAbsentLocationIsAdmissible(t *testing.T) {
	gate := Gate{ThresholdMeters: 200}
	pos := &Point{Latitude: 0, Longitude: 0}

	assert.True(t, gate.Admissible(nil, pos))
	assert.True(t, gate.Admissible(pos, nil))
	assert.True(t, gate.Admissible(nil, nil))
	assert.Equal(t, HintUnknown, gate.Classify(nil, pos))
	assert.Equal(t, HintUnknown, gate.Classify(pos, nil))
}

func TestGateThresholdBoundary(t *testing.T) {
	user := &Point{Latitude: 0, Longitude: 0}
	position := &Point{Latitude: 0, Longitude: 0.0018}

	d := Distance(*user, *position)
	require.Greater(t, d, 0.0)

	// The gate decision must agree with the independently computed distance.
	gate := Gate{ThresholdMeters: 200}
	assert.Equal(t, d <= 200, gate.Admissible(user, position))

	wide := Gate{ThresholdMeters: d + 0.01}
	narrow := Gate{ThresholdMeters: d - 0.01}
	assert.True(t, wide.Admissible(user, position))
	assert.False(t, narrow.Admissible(user, position))
	assert.Equal(t, HintNear, wide.Classify(user, position))
	assert.Equal(t, HintAway, narrow.Classify(user, position))
}
