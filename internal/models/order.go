package models

import (
	"time"

	"github.com/gocql/gocql"
)

// AttributeSelection : attribut choisi pour une ligne de commande, ex. {Taille, L}
type AttributeSelection struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type OrderItem struct {
	ProductID  string               `json:"product_id"`
	Name       string               `json:"name"`
	ColorName  string               `json:"color_name,omitempty"`
	Attributes []AttributeSelection `json:"attributes,omitempty"`
	Quantity   int                  `json:"quantity"`
	UnitPrice  float64              `json:"unit_price"`
	LineTotal  float64              `json:"line_total"` // unit_price * quantity, recalculé côté serveur
}

// Customer : snapshot client embarqué dans la commande (pas d'entité référencée)
type Customer struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Statuts de paiement
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusCanceled = "canceled"
)

// Statuts de commande
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

type Order struct {
	ID            gocql.UUID  `json:"id"`
	Customer      Customer    `json:"customer"`
	Items         []OrderItem `json:"items"`
	Subtotal      float64     `json:"subtotal"`
	Tax           float64     `json:"tax"`
	Total         float64     `json:"total"`
	Currency      string      `json:"currency"`
	PaymentStatus string      `json:"payment_status"`
	OrderStatus   string      `json:"order_status"`

	// Références du prestataire de paiement
	SessionID string `json:"session_id"` // unique : au plus une commande par session
	CaptureID string `json:"capture_id,omitempty"`
	PayerID   string `json:"payer_id,omitempty"`

	CouponCode string    `json:"coupon_code,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
