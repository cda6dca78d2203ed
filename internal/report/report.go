// Package report renders the static HTML reports and their plain-text form.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/pbaille/unikit/internal/aggregate"
	"github.com/pbaille/unikit/internal/compare"
	"github.com/pbaille/unikit/internal/domain"
	"github.com/pbaille/unikit/internal/grading"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ContentType of the documents written by Ledger and Comparison
const ContentType = "text/html; charset=utf-8"

const (
	untitled = "Untitled Subject"
	missing  = "-"
	// tallest bar in the comparison chart, in px
	barHeight = 150.0
)

// Band names the performance band of a GPA, used as the cgpa-<band> class
func Band(v float64) string {
	switch {
	case v >= 9:
		return "excellent"
	case v >= 8:
		return "very-good"
	case v >= 7:
		return "good"
	case v >= 6:
		return "average"
	case v >= 5:
		return "below-average"
	}
	return "poor"
}

type subjectView struct {
	Name       string
	Credit     string
	Grade      string
	GradeClass string
}

type semesterView struct {
	Number   int
	Subjects []subjectView
	GPA      string
	Band     string
}

type yearView struct {
	Year      int
	Semesters []semesterView
}

type ledgerView struct {
	Generated string
	Years     []yearView
	CGPA      string
	Band      string
}

// hasData reports whether the user touched the row at all
func hasData(s domain.Subject) bool {
	return s.Name != "" || s.Credit != 0 || s.Grade != ""
}

func newSubjectView(s domain.Subject) subjectView {
	v := subjectView{Name: s.Name, Credit: missing, Grade: missing}
	if v.Name == "" {
		v.Name = untitled
	}
	if s.Credit != 0 {
		v.Credit = strconv.FormatFloat(s.Credit, 'f', -1, 64)
	}
	if g := grading.Normalize(s.Grade); g != "" {
		v.Grade = g
		v.GradeClass = "grade-" + g
	}
	return v
}

// Ledger writes the Academic Performance Report. Only years and semesters
// holding at least one filled-in subject are shown.
func Ledger(w io.Writer, years []domain.Year, res aggregate.Result, now time.Time) error {
	view := ledgerView{
		Generated: now.Format("Jan 2, 2006"),
		CGPA:      aggregate.Format(res.CGPA),
		Band:      Band(res.CGPA),
	}
	for _, y := range years {
		yv := yearView{Year: y.Year}
		for i, subs := range y.Semesters {
			sv := semesterView{Number: i + 1}
			for _, s := range subs {
				if hasData(s) {
					sv.Subjects = append(sv.Subjects, newSubjectView(s))
				}
			}
			if len(sv.Subjects) == 0 {
				continue
			}
			gpa := res.GPA(y.Year, i+1)
			sv.GPA = aggregate.Format(gpa)
			sv.Band = Band(gpa)
			yv.Semesters = append(yv.Semesters, sv)
		}
		if len(yv.Semesters) > 0 {
			view.Years = append(view.Years, yv)
		}
	}

	if err := templates.ExecuteTemplate(w, "ledger.html", view); err != nil {
		return fmt.Errorf("render ledger report: %w", err)
	}
	return nil
}

type rankingView struct {
	Rank   int
	Name   string
	CGPA   string
	Me     bool
	Height string
}

type comparisonView struct {
	Generated string
	Rows      []rankingView
	Total     int
	Highest   string
	Average   string
}

// Comparison writes the CGPA Comparison Report for rankings, best first
func Comparison(w io.Writer, rankings []domain.Ranking, now time.Time) error {
	view := comparisonView{Generated: now.Format("Jan 2, 2006"), Total: len(rankings)}
	var highest, sum float64
	for i, r := range rankings {
		if i == 0 || r.CGPA > highest {
			highest = r.CGPA
		}
		sum += r.CGPA
		view.Rows = append(view.Rows, rankingView{
			Rank:   r.Rank,
			Name:   r.Name,
			CGPA:   aggregate.Format(r.CGPA),
			Me:     r.Me,
			Height: strconv.FormatFloat(r.CGPA/compare.MaxCGPA*barHeight, 'f', 1, 64),
		})
	}
	var avg float64
	if len(rankings) > 0 {
		avg = sum / float64(len(rankings))
	}
	view.Highest = aggregate.Format(highest)
	view.Average = aggregate.Format(avg)

	if err := templates.ExecuteTemplate(w, "comparison.html", view); err != nil {
		return fmt.Errorf("render comparison report: %w", err)
	}
	return nil
}
