// Package ledger keeps the subject entries of every (year, semester) slot.
//
// The academic structure (which years exist and how many semesters each
// has) is not stored separately: it is derived from the ledger, so the two
// can never drift apart. Subjects are addressed by id, never by position.
package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pbaille/unikit/internal/domain"
	"github.com/pbaille/unikit/internal/grading"
)

// Shape is one year of the academic structure
type Shape struct {
	Year      int `json:"year"`
	Semesters int `json:"semesters"`
}

// DefaultShape is used when nothing has been configured yet
var DefaultShape = []Shape{
	{Year: 1, Semesters: 2},
	{Year: 2, Semesters: 2},
	{Year: 3, Semesters: 2},
	{Year: 4, Semesters: 1},
}

// Ledger is the structure-with-subjects. The zero value is not usable; use New or Default.
type Ledger struct {
	years    map[int]int
	subjects map[domain.Slot][]domain.Subject
}

// New returns a ledger with no years
func New() *Ledger {
	return &Ledger{
		years:    make(map[int]int),
		subjects: make(map[domain.Slot][]domain.Subject),
	}
}

// Default returns an empty ledger with the built-in structure
func Default() *Ledger {
	l := New()
	for _, s := range DefaultShape {
		l.years[s.Year] = s.Semesters
	}
	return l
}

// Clone returns a deep copy
func (l *Ledger) Clone() *Ledger {
	c := New()
	for y, n := range l.years {
		c.years[y] = n
	}
	for slot, subs := range l.subjects {
		c.subjects[slot] = slices.Clone(subs)
	}
	return c
}

// Years returns the year ids in ascending order
func (l *Ledger) Years() []int {
	years := make([]int, 0, len(l.years))
	for y := range l.years {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// Structure projects the ledger onto its year/semester shape
func (l *Ledger) Structure() []Shape {
	years := l.Years()
	shape := make([]Shape, len(years))
	for i, y := range years {
		shape[i] = Shape{Year: y, Semesters: l.years[y]}
	}
	return shape
}

// Semesters returns the number of semesters of year
func (l *Ledger) Semesters(year int) (int, bool) {
	n, ok := l.years[year]
	return n, ok
}

// HasSlot reports whether slot exists in the structure
func (l *Ledger) HasSlot(slot domain.Slot) bool {
	n, ok := l.years[slot.Year]
	return ok && slot.Semester >= 1 && slot.Semester <= n
}

// Subjects returns a copy of the subjects in slot
func (l *Ledger) Subjects(slot domain.Slot) []domain.Subject {
	return slices.Clone(l.subjects[slot])
}

// Snapshot returns every year with its semesters filled in, ascending
func (l *Ledger) Snapshot() []domain.Year {
	years := l.Years()
	out := make([]domain.Year, len(years))
	for i, y := range years {
		n := l.years[y]
		sems := make([][]domain.Subject, n)
		for s := 1; s <= n; s++ {
			subs := slices.Clone(l.subjects[domain.Slot{Year: y, Semester: s}])
			if subs == nil {
				subs = []domain.Subject{}
			}
			sems[s-1] = subs
		}
		out[i] = domain.Year{Year: y, Semesters: sems}
	}
	return out
}

// Count returns the number of subjects recorded under year
func (l *Ledger) Count(year int) int {
	total := 0
	for slot, subs := range l.subjects {
		if slot.Year == year {
			total += len(subs)
		}
	}
	return total
}

// AddYear appends a year with the given number of empty semesters
func (l *Ledger) AddYear(year, semesters int) error {
	if year <= 0 {
		return domain.NewValidationError("year", domain.ErrInvalid, "year must be a positive integer, got %d", year)
	}
	if semesters <= 0 {
		return domain.NewValidationError("semesters", domain.ErrInvalid,
			"number of semesters must be a positive integer, got %d", semesters)
	}
	if _, ok := l.years[year]; ok {
		return domain.NewValidationError("year", domain.ErrDuplicateYear, "year %d already exists", year)
	}
	l.years[year] = semesters
	return nil
}

// RemoveYear drops year and all of its subjects. Removing a missing
// year is a no-op. It returns the number of subjects dropped.
func (l *Ledger) RemoveYear(year int) int {
	n, ok := l.years[year]
	if !ok {
		return 0
	}
	dropped := 0
	for s := 1; s <= n; s++ {
		slot := domain.Slot{Year: year, Semester: s}
		dropped += len(l.subjects[slot])
		delete(l.subjects, slot)
	}
	delete(l.years, year)
	return dropped
}

// SetSemesters changes the semester count of an existing year.
// Shrinking drops the trailing semesters with their subjects.
func (l *Ledger) SetSemesters(year, semesters int) (int, error) {
	n, ok := l.years[year]
	if !ok {
		return 0, domain.NewValidationError("year", domain.ErrNotFound, "year %d does not exist", year)
	}
	if semesters <= 0 {
		return 0, domain.NewValidationError("semesters", domain.ErrInvalid,
			"number of semesters must be a positive integer, got %d", semesters)
	}
	dropped := 0
	for s := semesters + 1; s <= n; s++ {
		slot := domain.Slot{Year: year, Semester: s}
		dropped += len(l.subjects[slot])
		delete(l.subjects, slot)
	}
	l.years[year] = semesters
	return dropped, nil
}

// Dropped counts the subjects SetSemesters(year, semesters) would remove
func (l *Ledger) Dropped(year, semesters int) int {
	n := 0
	for slot, subs := range l.subjects {
		if slot.Year == year && slot.Semester > semesters {
			n += len(subs)
		}
	}
	return n
}

// Reset re-shapes the ledger to DefaultShape. Subjects in slots that exist
// in the default structure are kept, the rest are dropped and counted.
func (l *Ledger) Reset() int {
	def := Default()
	dropped := 0
	for slot, subs := range l.subjects {
		if def.HasSlot(slot) {
			def.subjects[slot] = subs
		} else {
			dropped += len(subs)
		}
	}
	l.years, l.subjects = def.years, def.subjects
	return dropped
}

// AddSubject appends a subject to slot and returns it with a fresh id
func (l *Ledger) AddSubject(slot domain.Slot, sub domain.Subject) (domain.Subject, error) {
	if !l.HasSlot(slot) {
		return domain.Subject{}, domain.NewValidationError("slot", domain.ErrNotFound,
			"year %d semester %d does not exist", slot.Year, slot.Semester)
	}
	sub.Grade = grading.Normalize(sub.Grade)
	if err := validate(sub); err != nil {
		return domain.Subject{}, err
	}
	sub.ID = uuid.New().String()
	l.subjects[slot] = append(l.subjects[slot], sub)
	return sub, nil
}

// Patch carries field-level edits; nil fields are left alone
type Patch struct {
	Name   *string  `json:"name,omitempty"`
	Credit *float64 `json:"credit,omitempty"`
	Grade  *string  `json:"grade,omitempty"`
}

// UpdateSubject applies p to the subject with the given id
func (l *Ledger) UpdateSubject(id string, p Patch) (domain.Subject, error) {
	slot, i, ok := l.locate(id)
	if !ok {
		return domain.Subject{}, fmt.Errorf("subject %s: %w", id, domain.ErrNotFound)
	}
	sub := l.subjects[slot][i]
	if p.Name != nil {
		sub.Name = *p.Name
	}
	if p.Credit != nil {
		if err := validateCredit(*p.Credit); err != nil {
			return domain.Subject{}, err
		}
		sub.Credit = *p.Credit
	}
	if p.Grade != nil {
		g := grading.Normalize(*p.Grade)
		if err := validateGrade(g); err != nil {
			return domain.Subject{}, err
		}
		sub.Grade = g
	}
	l.subjects[slot][i] = sub
	return sub, nil
}

// RemoveSubject deletes one subject
func (l *Ledger) RemoveSubject(id string) error {
	slot, i, ok := l.locate(id)
	if !ok {
		return fmt.Errorf("subject %s: %w", id, domain.ErrNotFound)
	}
	l.subjects[slot] = slices.Delete(l.subjects[slot], i, i+1)
	if len(l.subjects[slot]) == 0 {
		delete(l.subjects, slot)
	}
	return nil
}

// Subject looks a subject up by id
func (l *Ledger) Subject(id string) (domain.Subject, domain.Slot, bool) {
	slot, i, ok := l.locate(id)
	if !ok {
		return domain.Subject{}, domain.Slot{}, false
	}
	return l.subjects[slot][i], slot, true
}

// Resolve expands an id prefix to a full subject id
func (l *Ledger) Resolve(prefix string) (string, error) {
	var match string
	for _, subs := range l.subjects {
		for _, s := range subs {
			if strings.HasPrefix(s.ID, prefix) {
				if match != "" && match != s.ID {
					return "", domain.NewValidationError("id", domain.ErrInvalid, "id prefix %q is ambiguous", prefix)
				}
				match = s.ID
			}
		}
	}
	if match == "" {
		return "", fmt.Errorf("subject %s: %w", prefix, domain.ErrNotFound)
	}
	return match, nil
}

func (l *Ledger) locate(id string) (domain.Slot, int, bool) {
	for slot, subs := range l.subjects {
		for i, s := range subs {
			if s.ID == id {
				return slot, i, true
			}
		}
	}
	return domain.Slot{}, 0, false
}

func validate(s domain.Subject) error {
	if err := validateCredit(s.Credit); err != nil {
		return err
	}
	return validateGrade(s.Grade)
}

func validateCredit(c float64) error {
	if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
		return domain.NewValidationError("credit", domain.ErrOutOfRange, "credit must be a non-negative number, got %g", c)
	}
	return nil
}

// empty is allowed while the row is being filled in
func validateGrade(g string) error {
	if g != "" && !grading.Known(g) {
		return domain.NewValidationError("grade", domain.ErrUnknownGrade, "unknown grade %q", g)
	}
	return nil
}

// ParseCredit parses user input for a credit value. Empty input means 0.
func ParseCredit(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, domain.NewValidationError("credit", domain.ErrInvalid, "%q is not a number", raw)
	}
	return v, nil
}

// MarshalJSON writes the ledger as an ascending list of years
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Snapshot())
}

// UnmarshalJSON reads the list-of-years form written by MarshalJSON.
// Subjects without an id get one; unknown grades are kept as entered.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var years []domain.Year
	if err := json.Unmarshal(data, &years); err != nil {
		return fmt.Errorf("decode ledger: %w", err)
	}
	fresh := New()
	for _, y := range years {
		if err := fresh.AddYear(y.Year, len(y.Semesters)); err != nil {
			return fmt.Errorf("decode ledger: %w", err)
		}
		for i, subs := range y.Semesters {
			slot := domain.Slot{Year: y.Year, Semester: i + 1}
			for _, s := range subs {
				if s.ID == "" {
					s.ID = uuid.New().String()
				}
				s.Grade = grading.Normalize(s.Grade)
				fresh.subjects[slot] = append(fresh.subjects[slot], s)
			}
		}
	}
	*l = *fresh
	return nil
}
