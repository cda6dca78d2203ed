package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pbaille/unikit/internal/grading"
	"github.com/pbaille/unikit/internal/store"
)

// Scale returns a copy of the grade scale
func (s *Service) Scale() grading.Scale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale.Clone()
}

func (s *Service) mutateScale(ctx context.Context, key string, fn func(sc *grading.Scale) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.scale.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	var v any = next.Points
	if key == store.KeyGradeDefault {
		v = next.Default
	}
	if err := s.persist(ctx, key, v); err != nil {
		return err
	}
	s.scale = next
	return nil
}

func (s *Service) SetDefaultGrade(ctx context.Context, grade string) error {
	err := s.mutateScale(ctx, store.KeyGradeDefault, func(sc *grading.Scale) error {
		return sc.SetDefault(grade)
	})
	if err == nil {
		s.log.Info("default grade changed", zap.String("grade", grading.Normalize(grade)))
	}
	return err
}

func (s *Service) SetPoint(ctx context.Context, grade string, value float64) error {
	err := s.mutateScale(ctx, store.KeyGradePoints, func(sc *grading.Scale) error {
		return sc.SetPoint(grade, value)
	})
	if err == nil {
		s.log.Info("grade point changed", zap.String("grade", grading.Normalize(grade)), zap.Float64("points", value))
	}
	return err
}

// ResetPoints restores the built-in point table
func (s *Service) ResetPoints(ctx context.Context) error {
	err := s.mutateScale(ctx, store.KeyGradePoints, func(sc *grading.Scale) error {
		sc.ResetPoints()
		return nil
	})
	if err == nil {
		s.log.Info("grade points reset")
	}
	return err
}
