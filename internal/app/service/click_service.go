package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clickwall/clickwall/internal/app/model"
	"github.com/clickwall/clickwall/internal/app/repository"
	"github.com/clickwall/clickwall/internal/metrics"
	"go.uber.org/zap"
)

// ClickService applies one click for a verified identity as an atomic ledger
// transaction and fans out fresh counter snapshots afterwards. It performs no
// internal retries; every failure maps to a single status at the boundary.
type ClickService interface {
	Apply(ctx context.Context, userID string) (*repository.ClickResult, error)
}

type clickService struct {
	repo   repository.ClickRepository
	bus    Bus
	logger *zap.Logger
}

// NewClickService returns a ClickService backed by the given ledger repository.
func NewClickService(repo repository.ClickRepository, bus Bus, logger *zap.Logger) ClickService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &clickService{repo: repo, bus: bus, logger: logger}
}

func (s *clickService) Apply(ctx context.Context, userID string) (*repository.ClickResult, error) {
	result, err := s.repo.ApplyClick(ctx, userID)
	if err != nil {
		metrics.ClickFailures.Inc()
		return nil, fmt.Errorf("apply click: %w", err)
	}

	metrics.ClicksTotal.Inc()
	s.logger.Info("click registered",
		zap.String("user_id", userID),
		zap.Int64("user_count", result.UserCount),
		zap.Int64("total", result.GlobalTotal),
	)

	s.publishSnapshots(userID, result)
	return result, nil
}

// publishSnapshots pushes the committed counter values onto the bus. Delivery
// is best effort and happens outside the transaction; a publish failure never
// fails the click.
func (s *clickService) publishSnapshots(userID string, result *repository.ClickResult) {
	at := result.Event.OccurredAt

	global := Snapshot{Target: GlobalTarget(), Value: result.GlobalTotal, Exists: true, At: at}
	if err := s.publish(model.SubjectGlobalCounter, global); err != nil {
		s.logger.Error("failed to publish global counter snapshot", zap.Error(err))
	}

	user := Snapshot{Target: UserTarget(userID), Value: result.UserCount, Exists: true, At: at}
	if err := s.publish(model.UserCounterSubject(userID), user); err != nil {
		s.logger.Error("failed to publish user counter snapshot",
			zap.Error(err), zap.String("user_id", userID))
	}
}

func (s *clickService) publish(subject string, snap Snapshot) error {
	if s.bus == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.bus.Publish(subject, data)
}
