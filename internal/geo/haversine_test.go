package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Point{31.22, 75.64}, Point{31.22, 75.64}, 0},
		{"one degree of longitude at the equator", Point{0, 0}, Point{0, 1}, 111.19493},
		{"westminster to liberty island", Point{51.5007, 0.1246}, Point{40.6892, 74.0445}, 5574.8405},
		{"campus to hostel a", Point{31.22, 75.64}, Point{31.2266, 75.6411}, 0.741303},
		{"campus to main gate", Point{31.22, 75.64}, Point{31.2893, 75.6275}, 7.796880},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceKm(tt.a, tt.b), 1e-3)
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := Point{31.2141, 75.6590}
	b := Point{-33.8688, 151.2093}
	assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-9)
}

func TestAntipodalDistance(t *testing.T) {
	d := DistanceKm(Point{0, 0}, Point{0, 180})
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 1e-6)
}

func TestValidate(t *testing.T) {
	valid := []Point{{0, 0}, {90, 180}, {-90, -180}, {31.22, 75.64}}
	for _, p := range valid {
		assert.NoError(t, p.Validate(), "%+v", p)
	}
	invalid := []Point{
		{math.NaN(), 0},
		{0, math.Inf(1)},
		{90.0001, 0},
		{0, -180.5},
	}
	for _, p := range invalid {
		assert.Error(t, p.Validate(), "%+v", p)
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.74, Round(0.741303, 2))
	assert.Equal(t, 0.525, Round(0.05*5*2.1, 4))
	assert.Equal(t, 1.35, Round(0.015*10*9, 4))
}
