// Package compare ranks the user's CGPA against a roster of friends.
package compare

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pbaille/unikit/internal/aggregate"
	"github.com/pbaille/unikit/internal/domain"
)

// MeName labels the user in rankings
const MeName = "You"

// MaxCGPA is the top of the scale friends are compared on
const MaxCGPA = 10.0

// Roster is the user's own CGPA plus the friends compared against it
type Roster struct {
	Mine    float64         `json:"mine"`
	Friends []domain.Friend `json:"friends"`
}

// Clone returns a deep copy
func (r Roster) Clone() Roster {
	return Roster{Mine: r.Mine, Friends: slices.Clone(r.Friends)}
}

// AddFriend appends a friend; cgpa is stored rounded to two decimals
func (r *Roster) AddFriend(name string, cgpa float64) (domain.Friend, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Friend{}, domain.NewValidationError("name", domain.ErrInvalid, "name is required")
	}
	if err := check(cgpa); err != nil {
		return domain.Friend{}, err
	}
	f := domain.Friend{ID: uuid.New().String(), Name: name, CGPA: aggregate.Round(cgpa)}
	r.Friends = append(r.Friends, f)
	return f, nil
}

// RemoveFriend drops the friend with the given id
func (r *Roster) RemoveFriend(id string) error {
	i := slices.IndexFunc(r.Friends, func(f domain.Friend) bool { return f.ID == id })
	if i < 0 {
		return fmt.Errorf("friend %s: %w", id, domain.ErrNotFound)
	}
	r.Friends = slices.Delete(r.Friends, i, i+1)
	return nil
}

// Resolve expands an id prefix to a full friend id
func (r Roster) Resolve(prefix string) (string, error) {
	var match string
	for _, f := range r.Friends {
		if strings.HasPrefix(f.ID, prefix) {
			if match != "" {
				return "", domain.NewValidationError("id", domain.ErrInvalid, "id prefix %q is ambiguous", prefix)
			}
			match = f.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("friend %s: %w", prefix, domain.ErrNotFound)
	}
	return match, nil
}

// SetMine records the user's own CGPA
func (r *Roster) SetMine(cgpa float64) error {
	if err := check(cgpa); err != nil {
		return err
	}
	r.Mine = aggregate.Round(cgpa)
	return nil
}

// Rankings orders the user and all friends by CGPA, best first.
// Ties keep insertion order with the user ahead of friends.
func (r Roster) Rankings() []domain.Ranking {
	out := make([]domain.Ranking, 0, len(r.Friends)+1)
	out = append(out, domain.Ranking{Name: MeName, CGPA: r.Mine, Me: true})
	for _, f := range r.Friends {
		out = append(out, domain.Ranking{Name: f.Name, CGPA: f.CGPA})
	}
	slices.SortStableFunc(out, func(a, b domain.Ranking) int {
		switch {
		case a.CGPA > b.CGPA:
			return -1
		case a.CGPA < b.CGPA:
			return 1
		}
		return 0
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// ParseCGPA parses user input for a CGPA
func ParseCGPA(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, domain.NewValidationError("cgpa", domain.ErrInvalid, "%q is not a number", raw)
	}
	return v, nil
}

func check(cgpa float64) error {
	if math.IsNaN(cgpa) || cgpa < 0 || cgpa > MaxCGPA {
		return domain.NewValidationError("cgpa", domain.ErrOutOfRange, "CGPA must be between 0 and 10, got %g", cgpa)
	}
	return nil
}
