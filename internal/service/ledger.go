package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pbaille/unikit/internal/aggregate"
	"github.com/pbaille/unikit/internal/domain"
	"github.com/pbaille/unikit/internal/grading"
	"github.com/pbaille/unikit/internal/ledger"
	"github.com/pbaille/unikit/internal/store"
)

// Snapshot returns the current ledger, ascending by year
func (s *Service) Snapshot() []domain.Year {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Snapshot()
}

// Ledger returns the snapshot together with the GPAs computed from it,
// read under one lock so both describe the same state
func (s *Service) Ledger() ([]domain.Year, aggregate.Result) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	years := s.ledger.Snapshot()
	return years, aggregate.Compute(years, s.scale)
}

// Structure returns the year/semester shape of the ledger
func (s *Service) Structure() []ledger.Shape {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Structure()
}

// SubjectCount returns how many subjects are recorded under year
func (s *Service) SubjectCount(year int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Count(year)
}

// Subject returns one subject and its slot
func (s *Service) Subject(id string) (domain.Subject, domain.Slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Subject(id)
}

// ResolveSubject expands an id prefix
func (s *Service) ResolveSubject(prefix string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Resolve(prefix)
}

// mutateLedger runs fn on a clone and swaps it in once it is persisted
func (s *Service) mutateLedger(ctx context.Context, fn func(l *ledger.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.ledger.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.persist(ctx, store.KeyLedger, next); err != nil {
		return err
	}
	s.ledger = next
	return nil
}

func (s *Service) AddYear(ctx context.Context, year, semesters int) error {
	err := s.mutateLedger(ctx, func(l *ledger.Ledger) error {
		return l.AddYear(year, semesters)
	})
	if err == nil {
		s.log.Info("year added", zap.Int("year", year), zap.Int("semesters", semesters))
	}
	return err
}

// RemoveYear drops year with its subjects and returns how many subjects went with it
func (s *Service) RemoveYear(ctx context.Context, year int) (int, error) {
	var dropped int
	err := s.mutateLedger(ctx, func(l *ledger.Ledger) error {
		dropped = l.RemoveYear(year)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("year removed", zap.Int("year", year), zap.Int("subjects_dropped", dropped))
	return dropped, nil
}

func (s *Service) SetSemesters(ctx context.Context, year, semesters int) (int, error) {
	var dropped int
	err := s.mutateLedger(ctx, func(l *ledger.Ledger) error {
		var err error
		dropped, err = l.SetSemesters(year, semesters)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("semesters changed", zap.Int("year", year), zap.Int("semesters", semesters),
		zap.Int("subjects_dropped", dropped))
	return dropped, nil
}

// ResetStructure re-shapes the ledger to the default structure
func (s *Service) ResetStructure(ctx context.Context) (int, error) {
	var dropped int
	err := s.mutateLedger(ctx, func(l *ledger.Ledger) error {
		dropped = l.Reset()
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("structure reset", zap.Int("subjects_dropped", dropped))
	return dropped, nil
}

// ResetDropCount reports how many subjects a structure reset would drop
func (s *Service) ResetDropCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Clone().Reset()
}

// SemesterDropCount reports how many subjects SetSemesters would drop
func (s *Service) SemesterDropCount(year, semesters int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Dropped(year, semesters)
}

// AddSubject appends a row to slot. An empty grade takes the scale's default grade.
func (s *Service) AddSubject(ctx context.Context, slot domain.Slot, sub domain.Subject) (domain.Subject, error) {
	var added domain.Subject
	err := s.mutateLedger(ctx, func(l *ledger.Ledger) error {
		sub.Grade = s.gradeOrDefault(sub.Grade)
		var err error
		added, err = l.AddSubject(slot, sub)
		return err
	})
	if err != nil {
		return domain.Subject{}, err
	}
	s.log.Debug("subject added", zap.String("id", added.ID), zap.Int("year", slot.Year), zap.Int("semester", slot.Semester))
	return added, nil
}

func (s *Service) UpdateSubject(ctx context.Context, id string, p ledger.Patch) (domain.Subject, error) {
	var updated domain.Subject
	err := s.mutateLedger(ctx, func(l *ledger.Ledger) error {
		var err error
		updated, err = l.UpdateSubject(id, p)
		return err
	})
	if err != nil {
		return domain.Subject{}, err
	}
	s.log.Debug("subject updated", zap.String("id", id))
	return updated, nil
}

func (s *Service) RemoveSubject(ctx context.Context, id string) error {
	err := s.mutateLedger(ctx, func(l *ledger.Ledger) error {
		return l.RemoveSubject(id)
	})
	if err == nil {
		s.log.Debug("subject removed", zap.String("id", id))
	}
	return err
}

// gradeOrDefault normalizes grade; a blank one becomes the configured default.
// Callers hold the lock.
func (s *Service) gradeOrDefault(grade string) string {
	if g := grading.Normalize(grade); g != "" {
		return g
	}
	return s.scale.Default
}
