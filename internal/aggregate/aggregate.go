// Package aggregate reduces a ledger snapshot to credit-weighted averages.
package aggregate

import (
	"fmt"
	"math"

	"github.com/pbaille/unikit/internal/domain"
)

// Pointer resolves a grade symbol to its point value
type Pointer interface {
	Point(grade string) float64
}

// Semester is the GPA of one slot
type Semester struct {
	Year     int     `json:"year"`
	Semester int     `json:"semester"`
	GPA      float64 `json:"gpa"`
	Credits  float64 `json:"credits"`
	Counted  int     `json:"counted"`
}

// Result holds every semester GPA and the overall CGPA, rounded to two decimals
type Result struct {
	Semesters []Semester `json:"semesters"`
	CGPA      float64    `json:"cgpa"`
	Credits   float64    `json:"credits"`
}

// GPA returns the GPA of a slot, 0 when the slot is unknown
func (r Result) GPA(year, semester int) float64 {
	for _, s := range r.Semesters {
		if s.Year == year && s.Semester == semester {
			return s.GPA
		}
	}
	return 0
}

// Counts reports whether a subject takes part in any average
func Counts(s domain.Subject) bool {
	return s.Credit > 0 && s.Grade != ""
}

type sum struct {
	weighted float64
	credits  float64
	counted  int
}

func (a *sum) add(s domain.Subject, p Pointer) {
	if !Counts(s) {
		return
	}
	a.weighted += s.Credit * p.Point(s.Grade)
	a.credits += s.Credit
	a.counted++
}

func (a sum) average() float64 {
	if a.credits == 0 {
		return 0
	}
	return Round(a.weighted / a.credits)
}

// Compute returns per-semester GPAs and the cumulative CGPA of years.
// The CGPA is weighted over all counted subjects, not averaged over semesters.
func Compute(years []domain.Year, p Pointer) Result {
	var total sum
	res := Result{Semesters: []Semester{}}
	for _, y := range years {
		for i, subs := range y.Semesters {
			var sem sum
			for _, s := range subs {
				sem.add(s, p)
				total.add(s, p)
			}
			res.Semesters = append(res.Semesters, Semester{
				Year:     y.Year,
				Semester: i + 1,
				GPA:      sem.average(),
				Credits:  sem.credits,
				Counted:  sem.counted,
			})
		}
	}
	res.CGPA = total.average()
	res.Credits = total.credits
	return res
}

// Round rounds v to two decimals
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Format renders a GPA the way it is displayed everywhere
func Format(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
