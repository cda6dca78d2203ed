package grading

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/unikit/internal/domain"
)

func TestDefaultScale(t *testing.T) {
	s := DefaultScale()
	for _, g := range Symbols {
		_, ok := s.Points[g]
		assert.True(t, ok, "missing %s", g)
	}
	assert.Equal(t, 10.0, s.Point("S"))
	assert.Equal(t, 0.0, s.Point("F"))
	assert.Equal(t, "S", s.Default)
}

func TestScale_Point(t *testing.T) {
	s := DefaultScale()
	assert.Equal(t, s.Point("A"), s.Point("a"))
	assert.Equal(t, s.Point("B"), s.Point(" b "))
	assert.Equal(t, 0.0, s.Point("X"))
	assert.Equal(t, 0.0, s.Point(""))
}

func TestScale_SetPoint(t *testing.T) {
	tests := []struct {
		name    string
		grade   string
		value   float64
		wantErr error
	}{
		{name: "lower bound", grade: "A", value: 0},
		{name: "upper bound", grade: "a", value: 10},
		{name: "fraction", grade: "C", value: 7.5},
		{name: "negative", grade: "A", value: -1, wantErr: domain.ErrOutOfRange},
		{name: "too high", grade: "A", value: 10.5, wantErr: domain.ErrOutOfRange},
		{name: "nan", grade: "A", value: math.NaN(), wantErr: domain.ErrOutOfRange},
		{name: "unknown symbol", grade: "Q", value: 5, wantErr: domain.ErrUnknownGrade},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultScale()
			before := s.Clone()
			err := s.SetPoint(tt.grade, tt.value)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.True(t, domain.IsValidation(err))
				assert.Equal(t, before, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, s.Point(tt.grade))
		})
	}
}

func TestScale_SetDefault(t *testing.T) {
	s := DefaultScale()
	require.NoError(t, s.SetDefault("b"))
	assert.Equal(t, "B", s.Default)

	err := s.SetDefault("Z")
	assert.ErrorIs(t, err, domain.ErrUnknownGrade)
	assert.Equal(t, "B", s.Default)
}

func TestScale_ResetPoints(t *testing.T) {
	s := DefaultScale()
	require.NoError(t, s.SetPoint("A", 3))
	require.NoError(t, s.SetDefault("C"))
	s.ResetPoints()
	assert.Equal(t, DefaultScale().Points, s.Points)
	assert.Equal(t, "C", s.Default)
}

func TestScale_Clone(t *testing.T) {
	s := DefaultScale()
	c := s.Clone()
	require.NoError(t, c.SetPoint("A", 1))
	assert.Equal(t, 9.0, s.Point("A"))
}

func TestScale_Repair(t *testing.T) {
	s := Scale{Points: map[string]float64{"a": 8.5, "B": 42, "Z": 3}, Default: "q"}
	s.Repair()
	assert.Equal(t, 8.5, s.Point("A"))
	assert.Equal(t, 8.0, s.Point("B"))
	assert.Equal(t, 10.0, s.Point("S"))
	assert.NotContains(t, s.Points, "Z")
	assert.Equal(t, DefaultGrade, s.Default)
}

func TestParsePoint(t *testing.T) {
	v, err := ParsePoint(" 7.5 ")
	require.NoError(t, err)
	assert.Equal(t, 7.5, v)

	_, err = ParsePoint("seven")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}
