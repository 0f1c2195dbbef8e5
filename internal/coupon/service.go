package coupon

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"onrise_back_end/internal/models"
	"onrise_back_end/internal/store"
)

// Service évalue les coupons contre un total de panier. Evaluate ne modifie
// jamais rien : l'incrément de used_count passe uniquement par MarkUsed,
// appelé après la création effective de la commande.
type Service struct {
	Coupons store.CouponStore
}

func NewService(coupons store.CouponStore) *Service {
	return &Service{Coupons: coupons}
}

// Normalize met un code coupon en forme canonique (majuscules, sans espaces)
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate valide un code contre un total de panier et calcule la réduction.
// L'erreur retournée ne concerne que les pannes d'infrastructure ; un coupon
// refusé revient en IsValid=false avec un code de raison.
func (s *Service) Evaluate(ctx context.Context, code string, cartTotal float64) (models.CouponValidation, error) {
	normalized := Normalize(code)

	coupon, err := s.Coupons.FindByCode(ctx, normalized)
	if err == store.ErrNotFound {
		return refuse(models.CouponReasonNotFound, "Code coupon invalide"), nil
	}
	if err != nil {
		return models.CouponValidation{}, err
	}

	now := time.Now()

	if !coupon.IsActive {
		return refuse(models.CouponReasonInactive, "Ce coupon n'est plus actif"), nil
	}
	if now.Before(coupon.StartDate) {
		return refuse(models.CouponReasonNotYetActive, "Ce coupon n'est pas encore valide"), nil
	}
	if now.After(coupon.ExpiryDate) {
		return refuse(models.CouponReasonExpired, "Ce coupon a expiré"), nil
	}
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return refuse(models.CouponReasonLimitReached, "Ce coupon a atteint sa limite d'utilisation"), nil
	}
	if cartTotal < coupon.MinOrderValue {
		return refuse(models.CouponReasonBelowMinimum,
			fmt.Sprintf("Montant minimum requis: %.2f", coupon.MinOrderValue)), nil
	}

	// Calcul de la réduction, arrondie au centime
	var discount float64
	switch coupon.DiscountType {
	case models.DiscountTypePercent:
		discount = round2(cartTotal * coupon.DiscountValue / 100)
		if coupon.MaxDiscountValue != nil && discount > *coupon.MaxDiscountValue {
			discount = *coupon.MaxDiscountValue
		}
	case models.DiscountTypeFixed:
		discount = coupon.DiscountValue
	}

	// Jamais de total négatif
	if discount > cartTotal {
		discount = cartTotal
	}

	return models.CouponValidation{
		IsValid:    true,
		Code:       coupon.Code,
		Discount:   discount,
		FinalTotal: round2(cartTotal - discount),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MarkUsed incrémente used_count après qu'une commande référençant le coupon
// a été persistée. Best-effort : coupon disparu, limite atteinte ou panne,
// on trace et on n'échoue jamais vers l'appelant — une commande payée ne doit
// pas être bloquée par son coupon.
func (s *Service) MarkUsed(ctx context.Context, code string) {
	normalized := Normalize(code)

	for attempt := 0; attempt < 3; attempt++ {
		coupon, err := s.Coupons.FindByCode(ctx, normalized)
		if err == store.ErrNotFound {
			return
		}
		if err != nil {
			log.Printf("⚠️ Incrément coupon %s impossible: %v", normalized, err)
			return
		}

		if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
			return
		}

		applied, err := s.Coupons.IncrementUsedCount(ctx, normalized, coupon.UsedCount)
		if err != nil {
			log.Printf("⚠️ Incrément coupon %s impossible: %v", normalized, err)
			return
		}
		if applied {
			log.Printf("🎟️ Coupon %s utilisé (%d)", normalized, coupon.UsedCount+1)
			return
		}
		// Incrément concurrent entre la lecture et l'écriture, on relit
	}

	log.Printf("⚠️ Incrément coupon %s abandonné après contention", normalized)
}

func refuse(reason, message string) models.CouponValidation {
	return models.CouponValidation{
		IsValid:      false,
		Reason:       reason,
		ErrorMessage: message,
	}
}
