package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/commerce"
)

const (
	cartListPath   = "/api/cart/get_cart.php"
	cartAddPath    = "/api/cart/add_to_cart.php"
	cartRemovePath = "/api/cart/remove_from_cart.php"
)

// CartRepository reads and mutates carts held by the commerce API.
type CartRepository struct {
	client *commerce.Client
}

// NewCartRepository constructs the repository.
func NewCartRepository(client *commerce.Client) *CartRepository {
	return &CartRepository{client: client}
}

// List returns the user's cart rows in remote order. A missing cart is empty.
func (r *CartRepository) List(ctx context.Context, userID models.ID) ([]models.CartItem, error) {
	var payload struct {
		commerce.Status
		Cart []models.CartItem `json:"cart"`
	}
	if err := r.client.GetJSON(ctx, cartListPath, url.Values{"user_id": {userID.String()}}, &payload); err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	if payload.Reported() {
		if err := commerce.Check(cartListPath, payload.Status); err != nil {
			return nil, fmt.Errorf("list cart: %w", err)
		}
	}
	if payload.Cart == nil {
		return []models.CartItem{}, nil
	}
	return payload.Cart, nil
}

// Add inserts a course into the user's cart.
func (r *CartRepository) Add(ctx context.Context, mutation models.CartMutation) error {
	return r.mutate(ctx, cartAddPath, mutation)
}

// Remove deletes a course from the user's cart.
func (r *CartRepository) Remove(ctx context.Context, mutation models.CartMutation) error {
	return r.mutate(ctx, cartRemovePath, mutation)
}

func (r *CartRepository) mutate(ctx context.Context, path string, mutation models.CartMutation) error {
	var ack commerce.Status
	if err := r.client.PostJSON(ctx, path, mutation, &ack); err != nil {
		return err
	}
	return commerce.Check(path, ack)
}
