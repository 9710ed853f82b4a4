package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCircle_Validation(t *testing.T) {
	tests := []struct {
		name    string
		center  Point
		radius  float64
		wantErr bool
	}{
		{"positive radius", Point{1, 2}, 5, false},
		{"zero radius is a point", Point{1, 2}, 0, false},
		{"negative radius", Point{1, 2}, -1, true},
		{"NaN radius", Point{1, 2}, math.NaN(), true},
		{"infinite radius", Point{1, 2}, math.Inf(1), true},
		{"NaN center", Point{math.NaN(), 0}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCircle(tt.center, tt.radius)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRegion)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewPolygon_Validation(t *testing.T) {
	tests := []struct {
		name    string
		points  []Point
		wantLen int
		wantErr bool
	}{
		{"triangle", []Point{{0, 0}, {1, 0}, {0, 1}}, 3, false},
		{"closed square drops closing vertex", []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}, 4, false},
		{"two vertices", []Point{{0, 0}, {1, 0}}, 0, true},
		{"closed segment", []Point{{0, 0}, {1, 0}, {0, 0}}, 0, true},
		{"empty", nil, 0, true},
		{"infinite vertex", []Point{{0, 0}, {math.Inf(-1), 0}, {0, 1}}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolygon(tt.points)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRegion)
				return
			}
			require.NoError(t, err)
			assert.Len(t, p.Points, tt.wantLen)
		})
	}
}

func TestNewPolygon_CopiesInput(t *testing.T) {
	// GIVEN a caller-owned vertex slice
	pts := []Point{{0, 0}, {1, 0}, {0, 1}}
	p, err := NewPolygon(pts)
	require.NoError(t, err)

	// WHEN the caller mutates it afterwards
	pts[0] = Point{100, 100}

	// THEN the polygon is unaffected
	assert.Equal(t, Point{0, 0}, p.Points[0])
}

func TestValidateRegion_RejectsNilAndDegenerate(t *testing.T) {
	assert.True(t, errors.Is(ValidateRegion(nil), ErrInvalidRegion))
	assert.True(t, errors.Is(ValidateRegion(Polygon{Points: []Point{{0, 0}}}), ErrInvalidRegion))
	assert.True(t, errors.Is(ValidateRegion(Circle{Radius: -3}), ErrInvalidRegion))
	assert.NoError(t, ValidateRegion(square(0, 0, 1)))
}

func TestRegionKind_String(t *testing.T) {
	assert.Equal(t, "circle", Circle{}.Kind().String())
	assert.Equal(t, "polygon", Polygon{}.Kind().String())
	assert.Equal(t, "RegionKind(0)", RegionKind(0).String())
}

func TestPolygon_Area(t *testing.T) {
	assert.InDelta(t, 100.0, square(0, 0, 10).Area(), 1e-12)
	tri := Polygon{Points: []Point{{0, 0}, {4, 0}, {0, 3}}}
	assert.InDelta(t, 6.0, tri.Area(), 1e-12)
}

func TestBounds_ValidateAndContains(t *testing.T) {
	b := NewSquareBounds(800)
	require.NoError(t, b.Validate())
	assert.True(t, b.Contains(Point{0, 0}))
	assert.True(t, b.Contains(Point{800, 800}))
	assert.False(t, b.Contains(Point{800.5, 10}))
	assert.False(t, b.Contains(Point{-0.1, 10}))

	assert.ErrorIs(t, Bounds{MaxX: 10}.Validate(), ErrInvalidPartition)
	assert.ErrorIs(t, Bounds{MinX: 5, MaxX: 1, MaxY: 1}.Validate(), ErrInvalidPartition)
	assert.ErrorIs(t, Bounds{MaxX: math.NaN(), MaxY: 1}.Validate(), ErrInvalidPartition)
}
