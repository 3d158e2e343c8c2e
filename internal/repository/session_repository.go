package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/coursemart-api/internal/models"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
)

const (
	sessionKeyPrefix    = "session:"
	checkoutKeyPrefix   = "checkout:"
	paymentRefKeyPrefix = "payment-ref:"
)

// keyValueStore is satisfied by CacheRepository.
type keyValueStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SessionRepository keeps signed-in users in the key-value store.
type SessionRepository struct {
	store keyValueStore
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(store keyValueStore) *SessionRepository {
	return &SessionRepository{store: store}
}

// Save stores the session until it expires.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("save session %s: already expired", session.ID)
	}
	if err := r.store.Set(ctx, sessionKeyPrefix+session.ID, session, ttl); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

// Find loads a session by id. Expired or unknown sessions return ErrNotFound.
func (r *SessionRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.store.Get(ctx, sessionKeyPrefix+id, &session); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find session %s: %w", id, err)
	}
	return &session, nil
}

// Delete removes the session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, sessionKeyPrefix+id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// CheckoutStateRepository keeps each user's checkout step in the key-value store.
type CheckoutStateRepository struct {
	store keyValueStore
	ttl   time.Duration
}

// NewCheckoutStateRepository constructs the repository. A non-positive ttl defaults to one hour.
func NewCheckoutStateRepository(store keyValueStore, ttl time.Duration) *CheckoutStateRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CheckoutStateRepository{store: store, ttl: ttl}
}

// Load returns the stored state or the entry state when none exists.
func (r *CheckoutStateRepository) Load(ctx context.Context, userID models.ID) (models.CheckoutState, error) {
	var state models.CheckoutState
	if err := r.store.Get(ctx, checkoutKey(userID), &state); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return models.NewCheckoutState(), nil
		}
		return models.CheckoutState{}, fmt.Errorf("load checkout state: %w", err)
	}
	return state, nil
}

// Save overwrites the user's state.
func (r *CheckoutStateRepository) Save(ctx context.Context, userID models.ID, state models.CheckoutState) error {
	if err := r.store.Set(ctx, checkoutKey(userID), state, r.ttl); err != nil {
		return fmt.Errorf("save checkout state: %w", err)
	}
	return nil
}

// Clear drops the user's state, returning the flow to its entry step.
func (r *CheckoutStateRepository) Clear(ctx context.Context, userID models.ID) error {
	if err := r.store.Delete(ctx, checkoutKey(userID)); err != nil {
		return fmt.Errorf("clear checkout state: %w", err)
	}
	return nil
}

func checkoutKey(userID models.ID) string {
	return checkoutKeyPrefix + userID.String()
}

type claimStore interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

type referenceClaim struct {
	UserID    models.ID `json:"user_id"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// PaymentReferenceRepository records which gateway references have been redeemed.
type PaymentReferenceRepository struct {
	store claimStore
	ttl   time.Duration
}

// NewPaymentReferenceRepository constructs the repository. A non-positive ttl
// defaults to thirty days.
func NewPaymentReferenceRepository(store claimStore, ttl time.Duration) *PaymentReferenceRepository {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &PaymentReferenceRepository{store: store, ttl: ttl}
}

// Claim takes the reference for userID. It returns false when the reference is
// already taken.
func (r *PaymentReferenceRepository) Claim(ctx context.Context, reference string, userID models.ID) (bool, error) {
	ok, err := r.store.SetNX(ctx, paymentRefKeyPrefix+reference, referenceClaim{UserID: userID, ClaimedAt: time.Now().UTC()}, r.ttl)
	if err != nil {
		return false, fmt.Errorf("claim payment reference %s: %w", reference, err)
	}
	return ok, nil
}

// Release gives a reference back after a redemption that recorded nothing.
func (r *PaymentReferenceRepository) Release(ctx context.Context, reference string) error {
	if err := r.store.Delete(ctx, paymentRefKeyPrefix+reference); err != nil {
		return fmt.Errorf("release payment reference %s: %w", reference, err)
	}
	return nil
}
