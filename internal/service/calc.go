package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pbaille/unikit/internal/aggregate"
	"github.com/pbaille/unikit/internal/domain"
	"github.com/pbaille/unikit/internal/ledger"
	"github.com/pbaille/unikit/internal/sheet"
)

// Result computes the current GPAs without recording anything
func (s *Service) Result() aggregate.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregate.Compute(s.ledger.Snapshot(), s.scale)
}

// Calculate computes the current GPAs and records the CGPA in the history
func (s *Service) Calculate(ctx context.Context) (aggregate.Result, *domain.Calculation, error) {
	res := s.Result()
	calc, err := s.backend.AddCalculation(ctx, res.CGPA, res.Credits)
	if err != nil {
		s.log.Error("record calculation failed", zap.Error(err))
		return res, nil, fmt.Errorf("record calculation: %w", err)
	}
	s.log.Info("calculated", zap.Float64("cgpa", res.CGPA), zap.Float64("credits", res.Credits))
	return res, calc, nil
}

// History returns past calculations, newest first
func (s *Service) History(ctx context.Context, limit, offset int) ([]domain.Calculation, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.backend.ListCalculations(ctx, limit, offset)
}

// ImportReport says what happened to each imported row
type ImportReport struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Reasons []string `json:"reasons,omitempty"`
}

// ImportRows adds every row whose slot exists in one persisted mutation.
// Rows naming a missing slot or carrying an invalid value are skipped.
func (s *Service) ImportRows(ctx context.Context, rows []sheet.Row) (ImportReport, error) {
	var rep ImportReport
	err := s.mutateLedger(ctx, func(l *ledger.Ledger) error {
		for _, row := range rows {
			sub := domain.Subject{Name: row.Name, Credit: row.Credit, Grade: s.gradeOrDefault(row.Grade)}
			if _, err := l.AddSubject(row.Slot, sub); err != nil {
				rep.Skipped++
				rep.Reasons = append(rep.Reasons, fmt.Sprintf("row %d: %v", row.Line, err))
				continue
			}
			rep.Added++
		}
		return nil
	})
	if err != nil {
		return ImportReport{}, err
	}
	s.log.Info("imported subjects", zap.Int("added", rep.Added), zap.Int("skipped", rep.Skipped))
	return rep, nil
}
