// Package service holds the loaded application state and applies every
// mutation to it. Each mutation works on a clone, persists the entity it
// changed, and only then replaces the in-memory copy, so a rejected or
// failed write leaves the previous state in place.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pbaille/unikit/internal/compare"
	"github.com/pbaille/unikit/internal/domain"
	"github.com/pbaille/unikit/internal/grading"
	"github.com/pbaille/unikit/internal/ledger"
	"github.com/pbaille/unikit/internal/store"
)

type Service struct {
	mu      sync.RWMutex
	backend store.Backend
	log     *zap.Logger

	scale  grading.Scale
	ledger *ledger.Ledger
	roster compare.Roster
}

// Load reads every persisted key once. Missing or corrupt keys fall back to
// the built-in values; a missing ledger is persisted right away so the
// default structure survives restarts. Read failures abort the load so
// nothing built from defaults can later overwrite stored data.
func Load(ctx context.Context, backend store.Backend, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		backend: backend,
		log:     log,
		scale:   grading.DefaultScale(),
		ledger:  ledger.Default(),
	}

	if err := s.loadScale(ctx); err != nil {
		return nil, err
	}
	if err := s.loadLedger(ctx); err != nil {
		return nil, err
	}
	if err := s.loadRoster(ctx); err != nil {
		return nil, err
	}

	// a canceled caller gets nothing, even if every read happened to finish
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// readJSON reads key into v. A corrupt value is logged and reported as
// absent so the caller keeps its built-in; any other failure aborts the load.
func (s *Service) readJSON(ctx context.Context, key string, v any) (bool, error) {
	found, err := store.GetJSON(ctx, s.backend, key, v)
	switch {
	case errors.Is(err, store.ErrCorrupt):
		s.log.Warn("stored value unreadable, using built-in", zap.String("key", key), zap.Error(err))
		return false, nil
	case err != nil:
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	return found, nil
}

func (s *Service) loadScale(ctx context.Context) error {
	var points map[string]float64
	found, err := s.readJSON(ctx, store.KeyGradePoints, &points)
	if err != nil {
		return err
	}
	if found {
		s.scale.Points = points
	}

	var def string
	found, err = s.readJSON(ctx, store.KeyGradeDefault, &def)
	if err != nil {
		return err
	}
	if found {
		s.scale.Default = def
	}

	s.scale.Repair()
	return ctx.Err()
}

func (s *Service) loadLedger(ctx context.Context) error {
	l := ledger.New()
	found, err := store.GetJSON(ctx, s.backend, store.KeyLedger, l)
	switch {
	case errors.Is(err, store.ErrCorrupt):
		s.log.Warn("ledger unreadable, starting from the default structure", zap.Error(err))
	case err != nil:
		return fmt.Errorf("load %s: %w", store.KeyLedger, err)
	case found:
		s.ledger = l
	default:
		if err := store.PutJSON(ctx, s.backend, store.KeyLedger, s.ledger); err != nil {
			return fmt.Errorf("save default ledger: %w", err)
		}
		s.log.Info("initialized default academic structure")
	}
	return nil
}

func (s *Service) loadRoster(ctx context.Context) error {
	var friends []domain.Friend
	found, err := s.readJSON(ctx, store.KeyRoster, &friends)
	if err != nil {
		return err
	}
	if !found {
		friends = nil
	}
	// invalid entries are dropped rather than failing the whole load
	for _, f := range friends {
		if f.ID == "" || f.Name == "" || f.CGPA < 0 || f.CGPA > compare.MaxCGPA {
			continue
		}
		s.roster.Friends = append(s.roster.Friends, f)
	}

	var mine float64
	found, err = s.readJSON(ctx, store.KeyMyCGPA, &mine)
	if err != nil {
		return err
	}
	if found {
		if err := s.roster.SetMine(mine); err != nil {
			s.log.Warn("own CGPA out of range, ignored", zap.Float64("cgpa", mine))
		}
	}
	return ctx.Err()
}

// persist writes one key and logs failures
func (s *Service) persist(ctx context.Context, key string, v any) error {
	if err := store.PutJSON(ctx, s.backend, key, v); err != nil {
		s.log.Error("persist failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
