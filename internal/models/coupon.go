package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Types de réduction
const (
	DiscountTypePercent = "percent"
	DiscountTypeFixed   = "fixed"
)

type Coupon struct {
	ID               gocql.UUID `json:"id"`
	Code             string     `json:"code"` // stocké en majuscules
	Description      string     `json:"description,omitempty"`
	DiscountType     string     `json:"discount_type"` // "percent" ou "fixed"
	DiscountValue    float64    `json:"discount_value"`
	MinOrderValue    float64    `json:"min_order_value"`
	MaxDiscountValue *float64   `json:"max_discount_value,omitempty"` // plafond, uniquement pour "percent"
	StartDate        time.Time  `json:"start_date"`
	ExpiryDate       time.Time  `json:"expiry_date"`
	UsageLimit       *int       `json:"usage_limit,omitempty"` // nil = illimité
	UsedCount        int        `json:"used_count"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Codes de refus d'un coupon
const (
	CouponReasonNotFound     = "not_found"
	CouponReasonInactive     = "inactive"
	CouponReasonNotYetActive = "not_yet_active"
	CouponReasonExpired      = "expired"
	CouponReasonLimitReached = "limit_reached"
	CouponReasonBelowMinimum = "below_minimum"
)

type CouponValidation struct {
	IsValid      bool    `json:"valid"`
	Reason       string  `json:"reason,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Code         string  `json:"code,omitempty"`
	Discount     float64 `json:"discount"`
	FinalTotal   float64 `json:"final_total"`
}
