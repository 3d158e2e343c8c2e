package models

import (
	"math"
	"time"
)

// CartItem is one course pending purchase. ID is the cart row identity.
type CartItem struct {
	ID        ID     `json:"id"`
	CourseID  ID     `json:"course_id"`
	Title     string `json:"title,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Price     Price  `json:"price"`
}

// CartMutation is the payload of the remote add/remove cart calls.
type CartMutation struct {
	UserID   ID `json:"user_id"`
	CourseID ID `json:"course_id"`
}

// AddToCartRequest is the storefront add payload.
type AddToCartRequest struct {
	CourseID ID `json:"course_id" validate:"required,gt=0"`
}

// CartSnapshot is the read view of a user's cart state.
type CartSnapshot struct {
	Items       []CartItem `json:"cart"`
	Loading     bool       `json:"cart_loading"`
	TotalPrice  float64    `json:"total_price"`
	AmountMinor int64      `json:"amount_minor"`
	Currency    string     `json:"currency,omitempty"`
	LoadedAt    time.Time  `json:"loaded_at,omitempty"`
}

// CartTotal sums item prices. Missing or unparseable prices count as zero.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price.Float64()
	}
	return total
}

// ToMinorUnits converts a major-unit amount into the gateway's minor units.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ContainsCourse reports whether a cart lists the course.
func ContainsCourse(items []CartItem, courseID ID) bool {
	for _, item := range items {
		if item.CourseID == courseID {
			return true
		}
	}
	return false
}

// CourseTitles lists cart titles in cart order.
func CourseTitles(items []CartItem) []string {
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	return titles
}
