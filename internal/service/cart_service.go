package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/commerce"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
)

const (
	noticeRemovedFromCart = "Removed from cart!"
	removeFailedPrefix    = "Failed to remove from cart: "
	removeTransportFailed = "Error removing from cart."
	addFailedPrefix       = "Failed to add to cart: "
	addTransportFailed    = "Error adding to cart."

	// workingSetIdleTTL bounds how long per-user state stays in memory without access.
	workingSetIdleTTL = 30 * time.Minute
)

type cartRepository interface {
	List(ctx context.Context, userID models.ID) ([]models.CartItem, error)
	Add(ctx context.Context, mutation models.CartMutation) error
	Remove(ctx context.Context, mutation models.CartMutation) error
}

// cartState is one user's view of the remote cart. Reloads take increasing tickets
// and a response is applied only if no later ticket has been applied already.
type cartState struct {
	mu       sync.Mutex
	items    []models.CartItem
	loading  bool
	loaded   bool
	issued   uint64
	applied  uint64
	loadedAt time.Time
	lastUsed time.Time
}

// CartService keeps per-user cart state in step with the commerce API. Every
// mutation is followed by a full reload; items are never patched locally.
type CartService struct {
	repo      cartRepository
	validator *validator.Validate
	logger    *zap.Logger
	currency  string

	mu        sync.Mutex
	states    map[models.ID]*cartState
	lastSweep time.Time
	idleTTL   time.Duration
	now       func() time.Time
}

// NewCartService constructs a CartService.
func NewCartService(repo cartRepository, validate *validator.Validate, logger *zap.Logger, currency string) *CartService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = "NGN"
	}
	return &CartService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		currency:  currency,
		states:    make(map[models.ID]*cartState),
		idleTTL:   workingSetIdleTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Load fetches the cart from the commerce API and replaces the user's state. An
// anonymous user gets an empty, loaded cart. A failed fetch leaves the cart empty.
func (s *CartService) Load(ctx context.Context, userID models.ID) models.CartSnapshot {
	if userID == 0 {
		return s.snapshotOf(nil, false, time.Time{})
	}
	state := s.state(userID)
	_ = s.reload(ctx, userID, state)
	return s.snapshot(state)
}

// Snapshot returns the current state, loading it on first access.
func (s *CartService) Snapshot(ctx context.Context, userID models.ID) models.CartSnapshot {
	if userID == 0 {
		return s.snapshotOf(nil, false, time.Time{})
	}
	state := s.state(userID)
	state.mu.Lock()
	loaded := state.loaded
	state.mu.Unlock()
	if !loaded {
		return s.Load(ctx, userID)
	}
	return s.snapshot(state)
}

// Items returns the cart rows, loading them on first access.
func (s *CartService) Items(ctx context.Context, userID models.ID) []models.CartItem {
	return s.Snapshot(ctx, userID).Items
}

// Total is the coerced sum of item prices.
func (s *CartService) Total(ctx context.Context, userID models.ID) float64 {
	return s.Snapshot(ctx, userID).TotalPrice
}

// Add asks the commerce API to add a course, then reloads. Without a user it is a no-op.
func (s *CartService) Add(ctx context.Context, userID models.ID, req models.AddToCartRequest) (models.CartSnapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.CartSnapshot{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cart payload")
	}
	if userID == 0 {
		return s.snapshotOf(nil, false, time.Time{}), nil
	}
	state := s.state(userID)

	mutation := models.CartMutation{UserID: userID, CourseID: req.CourseID}
	if err := s.repo.Add(ctx, mutation); err != nil {
		s.logger.Warn("add to cart failed",
			zap.Int64("user_id", int64(userID)),
			zap.Int64("course_id", int64(req.CourseID)),
			zap.Error(err))
		return s.snapshot(state), mutationError(err, addFailedPrefix, addTransportFailed)
	}

	if err := s.reload(ctx, userID, state); err != nil {
		s.logger.Warn("cart reload after add failed", zap.Int64("user_id", int64(userID)), zap.Error(err))
	}
	return s.snapshot(state), nil
}

// Remove asks the commerce API to remove a course and reloads on success. The cart
// is refreshed first; removing a course the remote cart does not hold is a no-op.
func (s *CartService) Remove(ctx context.Context, userID models.ID, courseID models.ID) (models.CartSnapshot, string, error) {
	if userID == 0 {
		return models.CartSnapshot{}, "", appErrors.Clone(appErrors.ErrUnauthorized, "sign in to manage your cart")
	}
	if courseID <= 0 {
		return models.CartSnapshot{}, "", appErrors.Clone(appErrors.ErrValidation, "invalid course id")
	}
	state := s.state(userID)
	if err := s.reload(ctx, userID, state); err != nil {
		s.logger.Warn("cart refresh before remove failed", zap.Int64("user_id", int64(userID)), zap.Error(err))
	}
	current := s.snapshot(state)
	if !models.ContainsCourse(current.Items, courseID) {
		return current, "", nil
	}

	if err := s.repo.Remove(ctx, models.CartMutation{UserID: userID, CourseID: courseID}); err != nil {
		s.logger.Warn("remove from cart failed",
			zap.Int64("user_id", int64(userID)),
			zap.Int64("course_id", int64(courseID)),
			zap.Error(err))
		return s.snapshot(state), "", mutationError(err, removeFailedPrefix, removeTransportFailed)
	}

	if err := s.reload(ctx, userID, state); err != nil {
		s.logger.Warn("cart reload after remove failed", zap.Int64("user_id", int64(userID)), zap.Error(err))
	}
	return s.snapshot(state), noticeRemovedFromCart, nil
}

// Forget drops the cached state so the next access reloads from the commerce API.
func (s *CartService) Forget(userID models.ID) {
	s.mu.Lock()
	delete(s.states, userID)
	s.mu.Unlock()
}

func (s *CartService) state(userID models.ID) *cartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= s.idleTTL {
		for id, existing := range s.states {
			if now.Sub(existing.lastUsed) >= s.idleTTL {
				delete(s.states, id)
			}
		}
		s.lastSweep = now
	}
	state, ok := s.states[userID]
	if !ok {
		state = &cartState{}
		s.states[userID] = state
	}
	state.lastUsed = now
	return state
}

// tracked reports whether the user has in-memory cart state.
func (s *CartService) tracked(userID models.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.states[userID]
	return ok
}

func (s *CartService) reload(ctx context.Context, userID models.ID, state *cartState) error {
	state.mu.Lock()
	state.issued++
	ticket := state.issued
	state.loading = true
	state.mu.Unlock()

	items, err := s.repo.List(ctx, userID)

	state.mu.Lock()
	defer state.mu.Unlock()
	if ticket == state.issued {
		state.loading = false
	}
	if err != nil {
		s.logger.Warn("cart fetch failed", zap.Int64("user_id", int64(userID)), zap.Error(err))
		return err
	}
	if ticket <= state.applied {
		return nil
	}
	state.applied = ticket
	state.items = items
	state.loaded = true
	state.loadedAt = time.Now().UTC()
	return nil
}

func (s *CartService) snapshot(state *cartState) models.CartSnapshot {
	state.mu.Lock()
	defer state.mu.Unlock()
	items := make([]models.CartItem, len(state.items))
	copy(items, state.items)
	return s.snapshotOf(items, state.loading, state.loadedAt)
}

func (s *CartService) snapshotOf(items []models.CartItem, loading bool, loadedAt time.Time) models.CartSnapshot {
	if items == nil {
		items = []models.CartItem{}
	}
	total := models.CartTotal(items)
	return models.CartSnapshot{
		Items:       items,
		Loading:     loading,
		TotalPrice:  total,
		AmountMinor: models.ToMinorUnits(total),
		Currency:    s.currency,
		LoadedAt:    loadedAt,
	}
}

// mutationError maps a failed cart call to the message shown to the shopper.
func mutationError(err error, rejectedPrefix, transportMessage string) error {
	if apiErr, ok := commerce.IsAPIError(err); ok {
		message := apiErr.Message
		if message == "" {
			message = "unknown error"
		}
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, rejectedPrefix+message)
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, transportMessage)
}
