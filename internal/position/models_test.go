package position_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rotaguia/rotaguia/internal/position"
)

func TestClassifyAccuracy(t *testing.T) {
	tests := []struct {
		accuracy float64
		want     position.AccuracyQuality
	}{
		{0, position.QualityExcellent},
		{5, position.QualityExcellent},
		{9.99, position.QualityExcellent},
		{10, position.QualityGood},
		{29.99, position.QualityGood},
		{30, position.QualityMedium},
		{99.99, position.QualityMedium},
		{100, position.QualityBad},
		{999.99, position.QualityBad},
		{1000, position.QualityVeryBad},
		{5000, position.QualityVeryBad},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, position.ClassifyAccuracy(tc.accuracy),
			"accuracy %.2f", tc.accuracy)
	}
}

func TestClassifyAccuracy_Monotonic(t *testing.T) {
	rank := map[position.AccuracyQuality]int{
		position.QualityExcellent: 0,
		position.QualityGood:      1,
		position.QualityMedium:    2,
		position.QualityBad:       3,
		position.QualityVeryBad:   4,
	}

	prev := -1
	for a := 0.0; a <= 2000; a += 0.5 {
		r := rank[position.ClassifyAccuracy(a)]
		assert.GreaterOrEqual(t, r, prev, "quality must not improve as accuracy worsens (a=%.1f)", a)
		prev = r
	}
}

func TestNewReading_NilFix(t *testing.T) {
	r := position.NewReading(nil)

	assert.False(t, r.HasData())
	assert.Equal(t, 0.0, r.Accuracy())
	assert.Nil(t, r.Altitude())
	assert.Nil(t, r.Speed())
	assert.Equal(t, int64(0), r.TimestampMillis())
}

func TestNewReading_QualityDerivedAtConstruction(t *testing.T) {
	r := position.NewReading(&position.Fix{
		Latitude:  -18.4696091,
		Longitude: -43.4953982,
		Accuracy:  10,
		Timestamp: 1700000000000,
	})

	assert.True(t, r.HasData())
	assert.Equal(t, position.QualityGood, r.Quality())
	assert.Equal(t, -18.4696091, r.Point().Lat)
	assert.Equal(t, -43.4953982, r.Point().Lon)
}

func TestReading_DistanceTo(t *testing.T) {
	a := position.NewReading(&position.Fix{Latitude: -23.5505, Longitude: -46.6333, Accuracy: 10, Timestamp: 1})
	b := position.NewReading(&position.Fix{Latitude: -23.5505, Longitude: -46.6333, Accuracy: 80, Timestamp: 2})

	assert.Equal(t, 0.0, a.DistanceTo(b), "identical coordinates must be zero distance")
	assert.Equal(t, 0.0, a.DistanceTo(position.NewReading(nil)))
}

func TestProfile_Rejects(t *testing.T) {
	tests := []struct {
		profile position.Profile
		quality position.AccuracyQuality
		want    bool
	}{
		{position.ProfileMobile, position.QualityExcellent, false},
		{position.ProfileMobile, position.QualityGood, false},
		{position.ProfileMobile, position.QualityMedium, true},
		{position.ProfileMobile, position.QualityBad, true},
		{position.ProfileMobile, position.QualityVeryBad, true},
		{position.ProfileDesktop, position.QualityExcellent, false},
		{position.ProfileDesktop, position.QualityMedium, false},
		{position.ProfileDesktop, position.QualityBad, true},
		{position.ProfileDesktop, position.QualityVeryBad, true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.profile.Rejects(tc.quality),
			"%s / %s", tc.profile, tc.quality)
	}
}
