package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/exclusivos-baez/storefront-api/internal/domain"
	"github.com/exclusivos-baez/storefront-api/internal/event"
	"github.com/exclusivos-baez/storefront-api/internal/repository"
	apperrors "github.com/exclusivos-baez/storefront-api/pkg/errors"
	"github.com/exclusivos-baez/storefront-api/pkg/pagination"
)

// DropService implements the business logic for drop announcements.
type DropService struct {
	repo     repository.DropRepository
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewDropService creates a new drop service.
func NewDropService(repo repository.DropRepository, producer *event.Producer, logger *slog.Logger) *DropService {
	return &DropService{
		repo:     repo,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListUpcoming returns a page of drops that have not released yet, soonest
// first. Both queries see the same instant so the count matches the page set.
func (s *DropService) ListUpcoming(ctx context.Context, params pagination.Params) (pagination.Result[domain.Drop], error) {
	now := s.now()

	total, err := s.repo.CountUpcoming(ctx, now)
	if err != nil {
		return pagination.Result[domain.Drop]{}, fmt.Errorf("count upcoming drops: %w", err)
	}

	drops, err := s.repo.ListUpcoming(ctx, now, params.PerPage, params.Offset)
	if err != nil {
		return pagination.Result[domain.Drop]{}, fmt.Errorf("list upcoming drops: %w", err)
	}

	return pagination.NewResult(drops, total, params), nil
}

// Subscribe registers the user for release alerts on the drop with the given
// slug. Subscribing to an already released drop is rejected.
func (s *DropService) Subscribe(ctx context.Context, slug, userID string) (*domain.DropSubscription, error) {
	if slug == "" {
		return nil, apperrors.InvalidInput("drop slug is required")
	}
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	drop, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if drop.Released(s.now()) {
		return nil, apperrors.InvalidInput("drop has already released")
	}

	sub := &domain.DropSubscription{
		ID:        uuid.New().String(),
		DropID:    drop.ID,
		UserID:    userID,
		CreatedAt: s.now(),
	}

	if err := s.repo.Subscribe(ctx, sub); err != nil {
		return nil, err
	}

	if s.producer != nil {
		if err := s.producer.PublishDropSubscribed(ctx, drop, userID); err != nil {
			s.logger.WarnContext(ctx, "publish drop.subscribed failed",
				slog.String("drop_id", drop.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "user subscribed to drop",
		slog.String("drop_id", drop.ID),
		slog.String("user_id", userID),
	)

	return sub, nil
}
