package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/exclusivos-baez/storefront-api/internal/domain"
	"github.com/exclusivos-baez/storefront-api/internal/event"
	"github.com/exclusivos-baez/storefront-api/internal/repository"
	"github.com/exclusivos-baez/storefront-api/internal/shopify"
	apperrors "github.com/exclusivos-baez/storefront-api/pkg/errors"
)

// Checkout submission limits.
const (
	// MaxCheckoutLines is the maximum number of distinct lines per checkout.
	MaxCheckoutLines = 50
	// MaxQuantityPerLine is the maximum quantity for a single line.
	MaxQuantityPerLine = 99
	// DefaultQuantity applies when a line omits its quantity.
	DefaultQuantity = 1
)

// DefaultCheckoutTimeout bounds the cart creation call against the commerce
// backend.
const DefaultCheckoutTimeout = 15 * time.Second

// CheckoutItemInput is one line of a checkout submission. Quantity is a
// pointer so an absent field can be defaulted rather than rejected.
type CheckoutItemInput struct {
	VariantID string `json:"variantId"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// CheckoutSubmitter creates a hosted checkout for a set of lines.
type CheckoutSubmitter interface {
	CreateCart(ctx context.Context, lines []domain.CheckoutLine) (string, error)
	StoreDomain() string
}

// CheckoutService turns a cart submission into a hosted checkout URL.
//
// The submission is all-or-nothing: one upstream call for every line, no
// partial checkouts, and no automatic retry. A second submission for the same
// session while one is in flight is rejected rather than queued, since the
// buyer would end up with two live checkouts.
type CheckoutService struct {
	submitter CheckoutSubmitter
	carts     repository.CartRepository
	producer  *event.Producer
	logger    *slog.Logger
	timeout   time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewCheckoutService creates a new checkout service. carts may be nil when
// session carts are not enabled.
func NewCheckoutService(
	submitter CheckoutSubmitter,
	carts repository.CartRepository,
	producer *event.Producer,
	logger *slog.Logger,
	timeout time.Duration,
) *CheckoutService {
	if timeout <= 0 {
		timeout = DefaultCheckoutTimeout
	}
	return &CheckoutService{
		submitter: submitter,
		carts:     carts,
		producer:  producer,
		logger:    logger,
		timeout:   timeout,
		inflight:  make(map[string]struct{}),
	}
}

// Checkout validates the submitted lines, creates one cart upstream, and
// returns the normalized checkout URL. Validation failures never reach the
// network; an empty submission short-circuits immediately.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, items []CheckoutItemInput) (*domain.CheckoutResult, error) {
	req, err := buildCheckoutRequest(items)
	if err != nil {
		return nil, err
	}

	return s.submit(ctx, sessionID, req)
}

// CheckoutFromCart submits the stored session cart. The stored cart goes
// through the same validation as a direct submission.
func (s *CheckoutService) CheckoutFromCart(ctx context.Context, sessionID string) (*domain.CheckoutResult, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if s.carts == nil {
		return nil, apperrors.Internal(errors.New("session carts are not enabled"))
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil || cart.IsEmpty() {
		return nil, emptyCartError()
	}

	stored := domain.NewCheckoutRequest(cart)
	items := make([]CheckoutItemInput, len(stored.Lines))
	for i, l := range stored.Lines {
		qty := l.Quantity
		items[i] = CheckoutItemInput{VariantID: l.VariantID, Quantity: &qty}
	}

	req, err := buildCheckoutRequest(items)
	if err != nil {
		return nil, err
	}

	return s.submit(ctx, sessionID, req)
}

func (s *CheckoutService) submit(ctx context.Context, sessionID string, req *domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	if sessionID != "" {
		if !s.acquire(sessionID) {
			return nil, apperrors.Conflict("a checkout for this session is already in progress")
		}
		defer s.release(sessionID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rawURL, err := s.submitter.CreateCart(ctx, req.Lines)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Timeout("commerce backend did not respond in time")
		}
		return nil, err
	}

	checkoutURL := shopify.NormalizeCheckoutURL(rawURL, s.submitter.StoreDomain())

	// The session cart is NOT cleared here. The shell clears it via
	// DELETE /api/v1/cart only after the checkout URL has been presented,
	// so a lost response or failed hand-off leaves the cart intact for
	// retry. Publishing the event is best-effort.
	if s.producer != nil {
		if err := s.producer.PublishCheckoutCreated(ctx, sessionID, req, checkoutURL); err != nil {
			s.logger.WarnContext(ctx, "publish checkout event failed",
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "checkout created",
		slog.String("session_id", sessionID),
		slog.Int("line_count", len(req.Lines)),
	)

	return &domain.CheckoutResult{RedirectURL: checkoutURL}, nil
}

// buildCheckoutRequest validates and normalizes the submitted lines.
func buildCheckoutRequest(items []CheckoutItemInput) (*domain.CheckoutRequest, error) {
	if len(items) == 0 {
		return nil, emptyCartError()
	}
	if len(items) > MaxCheckoutLines {
		return nil, &apperrors.AppError{
			Code:    "TOO_MANY_ITEMS",
			Message: fmt.Sprintf("checkout must not exceed %d lines", MaxCheckoutLines),
			Status:  http.StatusBadRequest,
			Err:     apperrors.ErrInvalidInput,
		}
	}

	lines := make([]domain.CheckoutLine, 0, len(items))
	for i, item := range items {
		if item.VariantID == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cartItems[%d]: variantId is required", i))
		}

		qty := DefaultQuantity
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		if qty < 1 || qty > MaxQuantityPerLine {
			return nil, apperrors.InvalidInput(
				fmt.Sprintf("cartItems[%d]: quantity must be between 1 and %d", i, MaxQuantityPerLine))
		}

		lines = append(lines, domain.CheckoutLine{
			VariantID: item.VariantID,
			Quantity:  qty,
		})
	}

	return &domain.CheckoutRequest{Lines: lines}, nil
}

func emptyCartError() *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "EMPTY_CART",
		Message: "cart is empty",
		Status:  http.StatusBadRequest,
		Err:     apperrors.ErrInvalidInput,
	}
}

func (s *CheckoutService) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sessionID]; busy {
		return false
	}
	s.inflight[sessionID] = struct{}{}
	return true
}

func (s *CheckoutService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sessionID)
}
