// Package grading holds the letter-grade to point-value table.
package grading

import (
	"maps"
	"math"
	"strconv"
	"strings"

	"github.com/pbaille/unikit/internal/domain"
)

const (
	MinPoint = 0
	MaxPoint = 10
)

// Symbols is the fixed grade set, best first
var Symbols = []string{"S", "A", "B", "C", "D", "E", "F"}

// Descriptions labels each symbol for display
var Descriptions = map[string]string{
	"S": "Outstanding",
	"A": "Excellent",
	"B": "Very Good",
	"C": "Good",
	"D": "Average",
	"E": "Pass",
	"F": "Fail",
}

var defaultPoints = map[string]float64{
	"S": 10, "A": 9, "B": 8, "C": 7, "D": 6, "E": 5, "F": 0,
}

// DefaultGrade is assigned to new subjects when nothing else is configured
const DefaultGrade = "S"

// Scale maps grade symbols to point values
type Scale struct {
	Points  map[string]float64 `json:"points"`
	Default string             `json:"default"`
}

// DefaultScale returns the built-in table
func DefaultScale() Scale {
	return Scale{Points: maps.Clone(defaultPoints), Default: DefaultGrade}
}

// Normalize upper-cases and trims a grade symbol
func Normalize(grade string) string {
	return strings.ToUpper(strings.TrimSpace(grade))
}

// Known reports whether grade belongs to the fixed set
func Known(grade string) bool {
	_, ok := defaultPoints[Normalize(grade)]
	return ok
}

// Point returns the value for grade. Unknown symbols are worth 0.
func (s Scale) Point(grade string) float64 {
	return s.Points[Normalize(grade)]
}

// Clone returns a deep copy
func (s Scale) Clone() Scale {
	return Scale{Points: maps.Clone(s.Points), Default: s.Default}
}

// SetPoint overrides the value of one symbol
func (s *Scale) SetPoint(grade string, value float64) error {
	g := Normalize(grade)
	if !Known(g) {
		return domain.NewValidationError("grade", domain.ErrUnknownGrade, "unknown grade %q", grade)
	}
	if math.IsNaN(value) || value < MinPoint || value > MaxPoint {
		return domain.NewValidationError("points", domain.ErrOutOfRange,
			"points for %s must be between %d and %d, got %g", g, MinPoint, MaxPoint, value)
	}
	if s.Points == nil {
		s.Points = maps.Clone(defaultPoints)
	}
	s.Points[g] = value
	return nil
}

// SetDefault changes the grade given to new subjects
func (s *Scale) SetDefault(grade string) error {
	g := Normalize(grade)
	if !Known(g) {
		return domain.NewValidationError("default", domain.ErrUnknownGrade, "unknown grade %q", grade)
	}
	s.Default = g
	return nil
}

// ResetPoints restores the built-in point table. The default grade is kept.
func (s *Scale) ResetPoints() {
	s.Points = maps.Clone(defaultPoints)
}

// Repair fills missing symbols from the built-in table and drops
// anything outside the fixed set or range. Used on values loaded from storage.
func (s *Scale) Repair() {
	points := maps.Clone(defaultPoints)
	for g, v := range s.Points {
		g = Normalize(g)
		if _, ok := points[g]; ok && v >= MinPoint && v <= MaxPoint {
			points[g] = v
		}
	}
	s.Points = points
	if !Known(s.Default) {
		s.Default = DefaultGrade
	}
	s.Default = Normalize(s.Default)
}

// ParsePoint parses user input for a point value
func ParsePoint(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, domain.NewValidationError("points", domain.ErrInvalid, "%q is not a number", raw)
	}
	return v, nil
}
