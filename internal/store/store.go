package store

import (
	"context"
	"errors"

	"onrise_back_end/internal/models"
)

// ErrNotFound : aucune ligne correspondante
var ErrNotFound = errors.New("introuvable")

// OrderStore : frontière de persistance des commandes.
// InsertIfAbsent porte l'invariant « au plus une commande par session de
// paiement » : l'insertion perdante retourne applied=false, jamais une erreur.
type OrderStore interface {
	InsertIfAbsent(ctx context.Context, order *models.Order) (bool, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	FindByCustomerEmail(ctx context.Context, email string) ([]models.Order, error)
	List(ctx context.Context, page, limit int) ([]models.Order, int, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

// CouponStore : frontière de persistance des coupons. Les codes sont stockés
// en majuscules, la recherche se fait sur le code normalisé.
type CouponStore interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindByID(ctx context.Context, id string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Insert(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id string) error

	// IncrementUsedCount incrémente used_count de façon conditionnelle :
	// l'incrément n'est appliqué que si le compteur vaut encore expected.
	IncrementUsedCount(ctx context.Context, code string, expected int) (bool, error)
}
