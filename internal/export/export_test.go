package export

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/unikit/internal/domain"
	"github.com/pbaille/unikit/internal/service"
	"github.com/pbaille/unikit/internal/sheet"
	"github.com/pbaille/unikit/internal/store"
)

func newService(t *testing.T) *service.Service {
	t.Helper()
	db, err := store.NewSQLite(filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc, err := service.Load(context.Background(), db, nil)
	require.NoError(t, err)
	_, err = svc.AddSubject(context.Background(), domain.Slot{Year: 1, Semester: 1}, domain.Subject{Name: "Optics", Credit: 3, Grade: "B"})
	require.NoError(t, err)
	return svc
}

func TestBuild(t *testing.T) {
	svc := newService(t)
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		kind, format string
		wantType     string
		wantName     string
		contains     string
	}{
		{"", "", "text/html; charset=utf-8", "cgpa-report.html", "Optics"},
		{KindLedger, FormatText, "text/plain; charset=utf-8", "cgpa-report.txt", "Optics  3  B"},
		{KindComparison, FormatHTML, "text/html; charset=utf-8", "cgpa-comparison.html", "CGPA Comparison Report"},
		{KindComparison, FormatText, "text/plain; charset=utf-8", "cgpa-comparison.txt", "Total Participants: 1"},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.format, func(t *testing.T) {
			doc, err := Build(svc, tt.kind, tt.format, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, doc.ContentType)
			assert.Equal(t, tt.wantName, doc.FileName())
			assert.True(t, strings.Contains(string(doc.Body), tt.contains), "body should contain %q", tt.contains)
		})
	}
}

func TestBuild_XLSX(t *testing.T) {
	doc, err := Build(newService(t), KindLedger, FormatXLSX, time.Now())
	require.NoError(t, err)
	assert.Equal(t, sheet.ContentType, doc.ContentType)

	rows, skipped, err := sheet.Import(bytes.NewReader(doc.Body))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, "Optics", rows[0].Name)
}

func TestBuild_Errors(t *testing.T) {
	svc := newService(t)
	_, err := Build(svc, KindComparison, FormatXLSX, time.Now())
	assert.ErrorIs(t, err, ErrFormat)
	_, err = Build(svc, KindLedger, "pdf", time.Now())
	assert.ErrorIs(t, err, ErrFormat)
	_, err = Build(svc, "transcript", "", time.Now())
	assert.ErrorIs(t, err, ErrKind)
}
