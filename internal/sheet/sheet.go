// Package sheet moves the ledger in and out of xlsx workbooks.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pbaille/unikit/internal/aggregate"
	"github.com/pbaille/unikit/internal/domain"
	"github.com/pbaille/unikit/internal/ledger"
)

const (
	LedgerSheet  = "Ledger"
	SummarySheet = "Summary"
)

// ContentType of the workbooks written by Export
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ledgerHeader = []any{"Year", "Semester", "Subject", "Credits", "Grade"}

// Row is one subject read from a workbook. Line is the 1-based sheet row.
type Row struct {
	Line   int
	Slot   domain.Slot
	Name   string
	Credit float64
	Grade  string
}

// Export writes the ledger and its computed GPAs as a two-sheet workbook
func Export(w io.Writer, years []domain.Year, res aggregate.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LedgerSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	line := 1
	if err := setRow(f, LedgerSheet, line, ledgerHeader); err != nil {
		return err
	}
	for _, y := range years {
		for i, subs := range y.Semesters {
			for _, s := range subs {
				line++
				if err := setRow(f, LedgerSheet, line, []any{y.Year, i + 1, s.Name, s.Credit, s.Grade}); err != nil {
					return err
				}
			}
		}
	}

	line = 1
	if err := setRow(f, SummarySheet, line, []any{"Year", "Semester", "GPA", "Credits"}); err != nil {
		return err
	}
	for _, sem := range res.Semesters {
		line++
		if err := setRow(f, SummarySheet, line, []any{sem.Year, sem.Semester, sem.GPA, sem.Credits}); err != nil {
			return err
		}
	}
	line++
	if err := setRow(f, SummarySheet, line, []any{"CGPA", "", res.CGPA, res.Credits}); err != nil {
		return err
	}

	for _, name := range []string{LedgerSheet, SummarySheet} {
		if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}
	if err := f.SetRowStyle(SummarySheet, line, line, bold); err != nil {
		return fmt.Errorf("style cgpa row: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, line int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, line, err)
	}
	return nil
}

// Import reads subjects from the first sheet, laid out like the Ledger
// sheet of Export. The header row is skipped, as are rows without a usable
// year, semester or credit; the number of those is returned alongside.
func Import(r io.Reader) ([]Row, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, 0, errors.New("workbook does not contain any sheets")
	}
	lines, err := f.GetRows(name)
	if err != nil {
		return nil, 0, fmt.Errorf("read sheet %s: %w", name, err)
	}

	var rows []Row
	skipped := 0
	for i, cells := range lines {
		if i == 0 {
			continue
		}
		if isBlank(cells) {
			continue
		}
		row, ok := parseRow(cells)
		if !ok {
			skipped++
			continue
		}
		row.Line = i + 1
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func parseRow(cells []string) (Row, bool) {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	year, err := strconv.Atoi(cell(0))
	if err != nil {
		return Row{}, false
	}
	sem, err := strconv.Atoi(cell(1))
	if err != nil {
		return Row{}, false
	}
	credit, err := ledger.ParseCredit(cell(3))
	if err != nil {
		return Row{}, false
	}
	return Row{
		Slot:   domain.Slot{Year: year, Semester: sem},
		Name:   cell(2),
		Credit: credit,
		Grade:  cell(4),
	}, true
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
