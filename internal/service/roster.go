package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pbaille/unikit/internal/compare"
	"github.com/pbaille/unikit/internal/domain"
	"github.com/pbaille/unikit/internal/store"
)

// Roster returns a copy of the comparison roster
func (s *Service) Roster() compare.Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.Clone()
}

// Rankings orders the user and friends by CGPA
func (s *Service) Rankings() []domain.Ranking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.Rankings()
}

func (s *Service) ResolveFriend(prefix string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.Resolve(prefix)
}

// friends persist under the roster key, the user's own value under my_cgpa
func (s *Service) mutateRoster(ctx context.Context, mine bool, fn func(r *compare.Roster) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.roster.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	var err error
	if mine {
		err = s.persist(ctx, store.KeyMyCGPA, next.Mine)
	} else {
		err = s.persist(ctx, store.KeyRoster, next.Friends)
	}
	if err != nil {
		return err
	}
	s.roster = next
	return nil
}

func (s *Service) AddFriend(ctx context.Context, name string, cgpa float64) (domain.Friend, error) {
	var f domain.Friend
	err := s.mutateRoster(ctx, false, func(r *compare.Roster) error {
		var err error
		f, err = r.AddFriend(name, cgpa)
		return err
	})
	if err != nil {
		return domain.Friend{}, err
	}
	s.log.Debug("friend added", zap.String("id", f.ID), zap.String("name", f.Name))
	return f, nil
}

func (s *Service) RemoveFriend(ctx context.Context, id string) error {
	return s.mutateRoster(ctx, false, func(r *compare.Roster) error {
		return r.RemoveFriend(id)
	})
}

func (s *Service) SetMine(ctx context.Context, cgpa float64) error {
	return s.mutateRoster(ctx, true, func(r *compare.Roster) error {
		return r.SetMine(cgpa)
	})
}

// SyncMine copies the computed CGPA into the roster
func (s *Service) SyncMine(ctx context.Context) (float64, error) {
	cgpa := s.Result().CGPA
	if err := s.SetMine(ctx, cgpa); err != nil {
		return 0, err
	}
	return cgpa, nil
}
