package cycle

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

type Service struct {
	store  StoreAPI
	logger *slog.Logger
}

func NewService(store StoreAPI, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) Create(ctx context.Context, c Cycle) (Cycle, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return Cycle{}, ErrNameRequired
	}
	if !ValidPeriodType(c.PeriodType) {
		return Cycle{}, ErrInvalidPeriodType
	}
	if !c.EndDate.After(c.StartDate) {
		return Cycle{}, ErrInvalidPeriod
	}
	c.Status = StatusDraft

	id, err := s.store.Create(ctx, c)
	if err != nil {
		return Cycle{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, cycleID string) (Cycle, error) {
	return s.store.Get(ctx, cycleID)
}

func (s *Service) List(ctx context.Context, status string) ([]Cycle, error) {
	return s.store.List(ctx, status)
}

// Activate opens a DRAFT cycle for goal setting. Only one cycle may be
// active at a time.
func (s *Service) Activate(ctx context.Context, cycleID string) (Cycle, error) {
	c, err := s.store.Get(ctx, cycleID)
	if err != nil {
		return Cycle{}, err
	}
	if c.Status != StatusDraft {
		return Cycle{}, ErrNotDraft
	}
	active, err := s.store.HasActive(ctx)
	if err != nil {
		return Cycle{}, err
	}
	if active {
		return Cycle{}, ErrActiveExists
	}
	if err := s.store.SetStatus(ctx, cycleID, StatusActive); err != nil {
		return Cycle{}, err
	}

	s.logger.Info("cycle activated", "cycleId", cycleID, "name", c.Name)

	return s.store.Get(ctx, cycleID)
}

// Close ends an ACTIVE cycle. Approved goals become LOCKED_GOALS and
// submitted actuals become LOCKED_ACTUALS; nothing in the cycle can change
// afterwards.
func (s *Service) Close(ctx context.Context, cycleID string) (Cycle, error) {
	c, err := s.store.Get(ctx, cycleID)
	if err != nil {
		return Cycle{}, err
	}
	if c.Status == StatusClosed {
		return Cycle{}, ErrAlreadyClosed
	}
	if c.Status != StatusActive {
		return Cycle{}, ErrNotActive
	}
	if err := s.store.Close(ctx, cycleID); err != nil {
		return Cycle{}, err
	}

	s.logger.Info("cycle closed", "cycleId", cycleID, "name", c.Name)

	return s.store.Get(ctx, cycleID)
}

// CloseExpired closes every active cycle whose end date has passed. The
// background scheduler calls this once a day.
func (s *Service) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.store.ExpiredActive(ctx, now)
	if err != nil {
		return 0, err
	}
	closed := 0
	for _, c := range expired {
		if err := s.store.Close(ctx, c.ID); err != nil {
			s.logger.Error("auto-close failed", "cycleId", c.ID, "error", err)
			continue
		}
		s.logger.Info("cycle auto-closed", "cycleId", c.ID, "name", c.Name)
		closed++
	}
	return closed, nil
}
