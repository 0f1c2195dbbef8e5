package payment

import (
	"context"

	"onrise_back_end/internal/models"
)

// OrderBreakdown : décomposition des montants transmise au prestataire.
// Le sous-total est toujours recalculé côté serveur avant l'appel.
type OrderBreakdown struct {
	Items    []models.CartItem
	Subtotal float64
	Tax      float64
	Shipping float64 // toujours 0 pour l'instant
	Currency string
}

// Capture : état autoritaire rapporté par le prestataire après capture.
// Le prestataire fait foi pour le statut et les montants, jamais pour le
// contenu du panier.
type Capture struct {
	Status    string // "paid" attendu
	Amount    float64
	Currency  string
	CaptureID string
	PayerID   string

	// Données payeur / livraison rapportées par le prestataire, utilisées en
	// repli champ par champ lors de la réconciliation.
	Payer models.Customer
}

// Provider : capacité de paiement injectée dans le service de checkout,
// remplaçable par un faux prestataire dans les tests.
type Provider interface {
	CreateOrder(ctx context.Context, breakdown OrderBreakdown, customer models.Customer) (string, error)
	CaptureOrder(ctx context.Context, sessionID string) (*Capture, error)
}
