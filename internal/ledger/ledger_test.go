package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/unikit/internal/domain"
)

func slot(y, s int) domain.Slot { return domain.Slot{Year: y, Semester: s} }

func mustAdd(t *testing.T, l *Ledger, sl domain.Slot, credit float64, grade string) domain.Subject {
	t.Helper()
	s, err := l.AddSubject(sl, domain.Subject{Credit: credit, Grade: grade})
	require.NoError(t, err)
	return s
}

func TestDefault(t *testing.T) {
	l := Default()
	assert.Equal(t, DefaultShape, l.Structure())
	snap := l.Snapshot()
	require.Len(t, snap, 4)
	assert.Len(t, snap[3].Semesters, 1)
	assert.NotNil(t, snap[0].Semesters[0])
}

func TestAddYear(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		semesters int
		wantErr   error
	}{
		{name: "new year", year: 5, semesters: 2},
		{name: "duplicate", year: 2, semesters: 3, wantErr: domain.ErrDuplicateYear},
		{name: "zero year", year: 0, semesters: 1, wantErr: domain.ErrInvalid},
		{name: "negative semesters", year: 6, semesters: -1, wantErr: domain.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Default()
			mustAdd(t, l, slot(2, 1), 3, "A")
			before := l.Clone()

			err := l.AddYear(tt.year, tt.semesters)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before.Snapshot(), l.Snapshot())
				return
			}
			require.NoError(t, err)
			n, ok := l.Semesters(tt.year)
			assert.True(t, ok)
			assert.Equal(t, tt.semesters, n)
		})
	}
}

func TestAddYear_KeepsOrder(t *testing.T) {
	l := New()
	require.NoError(t, l.AddYear(3, 1))
	require.NoError(t, l.AddYear(1, 2))
	require.NoError(t, l.AddYear(2, 2))
	assert.Equal(t, []int{1, 2, 3}, l.Years())
}

func TestRemoveYear(t *testing.T) {
	l := Default()
	mustAdd(t, l, slot(1, 1), 4, "A")
	keep := mustAdd(t, l, slot(1, 2), 2, "B")
	mustAdd(t, l, slot(2, 1), 3, "C")
	mustAdd(t, l, slot(2, 2), 3, "C")

	dropped := l.RemoveYear(2)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, []int{1, 3, 4}, l.Years())
	assert.Equal(t, 0, l.Count(2))
	assert.Equal(t, 2, l.Count(1))

	_, _, ok := l.Subject(keep.ID)
	assert.True(t, ok)

	// adding the year back does not resurrect its subjects
	require.NoError(t, l.AddYear(2, 2))
	assert.Empty(t, l.Subjects(slot(2, 1)))
}

func TestRemoveYear_Missing(t *testing.T) {
	l := Default()
	mustAdd(t, l, slot(1, 1), 4, "A")
	before := l.Snapshot()
	assert.Equal(t, 0, l.RemoveYear(9))
	assert.Equal(t, before, l.Snapshot())
}

func TestSetSemesters(t *testing.T) {
	l := Default()
	mustAdd(t, l, slot(1, 1), 4, "A")
	mustAdd(t, l, slot(1, 2), 2, "B")

	assert.Equal(t, 1, l.Dropped(1, 1))
	assert.Equal(t, 2, l.Dropped(1, 0))
	assert.Zero(t, l.Dropped(2, 1))

	dropped, err := l.SetSemesters(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.False(t, l.HasSlot(slot(1, 2)))

	dropped, err = l.SetSemesters(1, 3)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.True(t, l.HasSlot(slot(1, 3)))
	assert.Empty(t, l.Subjects(slot(1, 2)))

	_, err = l.SetSemesters(7, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = l.SetSemesters(1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestReset(t *testing.T) {
	l := New()
	require.NoError(t, l.AddYear(1, 3))
	require.NoError(t, l.AddYear(7, 1))
	kept := mustAdd(t, l, slot(1, 1), 4, "A")
	mustAdd(t, l, slot(1, 3), 4, "A")
	mustAdd(t, l, slot(7, 1), 4, "A")

	dropped := l.Reset()
	assert.Equal(t, 2, dropped)
	assert.Equal(t, DefaultShape, l.Structure())
	_, got, ok := l.Subject(kept.ID)
	assert.True(t, ok)
	assert.Equal(t, slot(1, 1), got)
}

func TestAddSubject(t *testing.T) {
	l := Default()
	s, err := l.AddSubject(slot(1, 2), domain.Subject{Name: "Maths", Credit: 4, Grade: "a"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "A", s.Grade)
	assert.Equal(t, []domain.Subject{s}, l.Subjects(slot(1, 2)))

	_, err = l.AddSubject(slot(4, 2), domain.Subject{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = l.AddSubject(slot(1, 1), domain.Subject{Credit: -2})
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	_, err = l.AddSubject(slot(1, 1), domain.Subject{Grade: "K"})
	assert.ErrorIs(t, err, domain.ErrUnknownGrade)
	assert.Empty(t, l.Subjects(slot(1, 1)))
}

func TestUpdateSubject(t *testing.T) {
	l := Default()
	s := mustAdd(t, l, slot(1, 1), 0, "")

	name, credit, grade := "Physics", 3.0, "b"
	got, err := l.UpdateSubject(s.ID, Patch{Name: &name, Credit: &credit, Grade: &grade})
	require.NoError(t, err)
	assert.Equal(t, domain.Subject{ID: s.ID, Name: "Physics", Credit: 3, Grade: "B"}, got)

	bad := -1.0
	_, err = l.UpdateSubject(s.ID, Patch{Credit: &bad})
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	cur, _, _ := l.Subject(s.ID)
	assert.Equal(t, 3.0, cur.Credit)

	_, err = l.UpdateSubject("nope", Patch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveSubject_NoIndexShift(t *testing.T) {
	l := Default()
	a := mustAdd(t, l, slot(1, 1), 1, "A")
	b := mustAdd(t, l, slot(1, 1), 2, "B")
	c := mustAdd(t, l, slot(1, 1), 3, "C")

	require.NoError(t, l.RemoveSubject(a.ID))
	require.NoError(t, l.RemoveSubject(c.ID))
	assert.Equal(t, []domain.Subject{b}, l.Subjects(slot(1, 1)))
	assert.ErrorIs(t, l.RemoveSubject(a.ID), domain.ErrNotFound)
}

func TestResolve(t *testing.T) {
	l := Default()
	s := mustAdd(t, l, slot(1, 1), 1, "A")

	id, err := l.Resolve(s.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, s.ID, id)

	_, err = l.Resolve("zzzzzzzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClone_Independent(t *testing.T) {
	l := Default()
	s := mustAdd(t, l, slot(1, 1), 1, "A")
	c := l.Clone()
	name := "changed"
	_, err := c.UpdateSubject(s.ID, Patch{Name: &name})
	require.NoError(t, err)
	c.RemoveYear(2)

	orig, _, _ := l.Subject(s.ID)
	assert.Equal(t, "", orig.Name)
	assert.Equal(t, []int{1, 2, 3, 4}, l.Years())
}

func TestJSON_RoundTrip(t *testing.T) {
	l := Default()
	mustAdd(t, l, slot(1, 1), 4, "A")
	mustAdd(t, l, slot(3, 2), 2, "")

	data, err := json.Marshal(l)
	require.NoError(t, err)

	got := New()
	require.NoError(t, json.Unmarshal(data, got))
	assert.Equal(t, l.Snapshot(), got.Snapshot())
}

func TestUnmarshal_LegacyRows(t *testing.T) {
	raw := `[{"year":1,"semesters":[[{"name":"Maths","credit":4,"grade":"a"}],[]]},{"year":2,"semesters":[[]]}]`
	l := New()
	require.NoError(t, json.Unmarshal([]byte(raw), l))

	subs := l.Subjects(slot(1, 1))
	require.Len(t, subs, 1)
	assert.NotEmpty(t, subs[0].ID)
	assert.Equal(t, "A", subs[0].Grade)
	assert.Equal(t, []Shape{{Year: 1, Semesters: 2}, {Year: 2, Semesters: 1}}, l.Structure())
}

func TestUnmarshal_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "duplicate year", raw: `[{"year":1,"semesters":[[]]},{"year":1,"semesters":[[]]}]`},
		{name: "no semesters", raw: `[{"year":1,"semesters":[]}]`},
		{name: "not a list", raw: `{"year":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, json.Unmarshal([]byte(tt.raw), New()))
		})
	}
}

func TestParseCredit(t *testing.T) {
	v, err := ParseCredit("")
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = ParseCredit("3.5")
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = ParseCredit("x")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}
