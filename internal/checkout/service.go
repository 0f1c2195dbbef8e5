package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/gocql/gocql"

	"onrise_back_end/internal/coupon"
	"onrise_back_end/internal/models"
	"onrise_back_end/internal/payment"
	"onrise_back_end/internal/store"
)

// Taux de taxe fixe appliqué au sous-total, expédition offerte
const (
	TaxRate         = 0.0825
	amountTolerance = 0.01
	DefaultCurrency = "usd"
)

var (
	// ErrInvalidRequest : entrée malformée ou incomplète, aucun effet de bord
	ErrInvalidRequest = errors.New("requête invalide")
	// ErrPaymentNotCompleted : le prestataire ne rapporte pas un paiement abouti
	ErrPaymentNotCompleted = errors.New("paiement non complété")
	// ErrConfirmationFailed : échec inattendu pendant capture ou persistance,
	// aucune commande partielle laissée derrière
	ErrConfirmationFailed = errors.New("échec de confirmation de commande")
)

// CouponMarker consomme une utilisation de coupon après persistance de la
// commande. Best-effort : ne retourne rien, n'échoue jamais vers l'appelant.
type CouponMarker interface {
	MarkUsed(ctx context.Context, code string)
}

// Notifier envoie les e-mails de confirmation. Appelé en goroutine, jamais
// attendu par le chemin de réponse.
type Notifier interface {
	SendOrderEmails(order models.Order)
}

// Service : cœur du checkout. CreateSession ouvre une session chez le
// prestataire sans rien persister localement ; ConfirmOrder réconcilie la
// session capturée en exactement une commande persistée.
type Service struct {
	Provider payment.Provider
	Orders   store.OrderStore
	Coupons  CouponMarker
	Notifier Notifier
}

func NewService(provider payment.Provider, orders store.OrderStore, coupons CouponMarker, notifier Notifier) *Service {
	return &Service{
		Provider: provider,
		Orders:   orders,
		Coupons:  coupons,
		Notifier: notifier,
	}
}

// CreateSession crée une session de paiement à partir du panier soumis.
// Aucun état local n'est créé : un checkout abandonné ne laisse aucune
// commande orpheline.
func (s *Service) CreateSession(ctx context.Context, items []models.CartItem, customer models.Customer) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("%w: panier vide", ErrInvalidRequest)
	}
	if customer.Email == "" {
		return "", fmt.Errorf("%w: e-mail client requis", ErrInvalidRequest)
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return "", fmt.Errorf("%w: quantité invalide pour %s", ErrInvalidRequest, item.ProductID)
		}
		if item.UnitPrice < 0 {
			return "", fmt.Errorf("%w: prix invalide pour %s", ErrInvalidRequest, item.ProductID)
		}
	}

	// Le sous-total est recalculé ici, jamais repris d'un champ client
	subtotal := calcSubtotal(items)
	tax := round2(subtotal * TaxRate)

	return s.Provider.CreateOrder(ctx, payment.OrderBreakdown{
		Items:    items,
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: 0,
		Currency: DefaultCurrency,
	}, customer)
}

// ConfirmOrder réconcilie une session de paiement en une commande persistée.
// Idempotent : peut être rappelé autant de fois que nécessaire pour la même
// session (rafraîchissement de la page de succès, onglets dupliqués), il
// retournera toujours la même commande.
func (s *Service) ConfirmOrder(ctx context.Context, sessionID string, items []models.CartItem, customer models.Customer, couponCode string) (*models.Order, bool, error) {
	if sessionID == "" {
		return nil, false, fmt.Errorf("%w: sessionId requis", ErrInvalidRequest)
	}

	// 1. Garde d'idempotence : commande déjà réconciliée pour cette session
	existing, err := s.Orders.FindBySessionID(ctx, sessionID)
	if err == nil {
		log.Printf("🔁 Commande déjà enregistrée pour la session %s", sessionID)
		return existing, true, nil
	}
	if err != store.ErrNotFound {
		return nil, false, fmt.Errorf("%w: %v", ErrConfirmationFailed, err)
	}

	// 2. Capture : le prestataire fait foi pour le statut et les montants
	capture, err := s.Provider.CaptureOrder(ctx, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrConfirmationFailed, err)
	}
	if capture.Status != models.PaymentStatusPaid {
		return nil, false, fmt.Errorf("%w: statut %s", ErrPaymentNotCompleted, capture.Status)
	}

	// 3. Reconstruction des lignes depuis le panier client — le prestataire ne
	// renvoie pas le détail couleurs/attributs. Le contenu vient du client,
	// les totaux sont systématiquement recalculés.
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			ProductID:  item.ProductID,
			Name:       item.Name,
			ColorName:  item.ColorName,
			Attributes: item.Attributes,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			LineTotal:  round2(item.UnitPrice * float64(item.Quantity)),
		})
	}

	// 4. Tarification serveur + recoupement avec le montant capturé
	var subtotal float64
	for _, item := range orderItems {
		subtotal += item.LineTotal
	}
	subtotal = round2(subtotal)
	tax := round2(subtotal * TaxRate)
	total := round2(subtotal + tax)

	if capture.Amount > 0 && math.Abs(total-capture.Amount) > amountTolerance {
		// Le paiement est déjà capturé : refuser d'enregistrer la commande
		// perdrait l'argent reçu. On trace et on continue.
		log.Printf("⚠️ Écart montant session %s : recalculé %.2f, capturé %.2f",
			sessionID, total, capture.Amount)
	}

	// 5. Fusion client : champs soumis prioritaires, repli champ par champ sur
	// les données payeur du prestataire (perte partielle côté client)
	merged := mergeCustomer(customer, capture.Payer)

	currency := capture.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	now := time.Now()
	order := &models.Order{
		ID:            gocql.TimeUUID(),
		Customer:      merged,
		Items:         orderItems,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		Currency:      currency,
		PaymentStatus: models.PaymentStatusPaid,
		OrderStatus:   models.OrderStatusProcessing,
		SessionID:     sessionID,
		CaptureID:     capture.CaptureID,
		PayerID:       capture.PayerID,
		Notes:         merged.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if couponCode != "" {
		order.CouponCode = coupon.Normalize(couponCode)
	}

	// 6. Persistance sous contrainte d'unicité : une confirmation concurrente
	// qui perd la course récupère la commande gagnante, pas une erreur
	applied, err := s.Orders.InsertIfAbsent(ctx, order)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrConfirmationFailed, err)
	}
	if !applied {
		winner, err := s.Orders.FindBySessionID(ctx, sessionID)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrConfirmationFailed, err)
		}
		log.Printf("🔁 Session %s réconciliée par un appel concurrent", sessionID)
		return winner, true, nil
	}

	log.Printf("✅ Commande %s créée (session %s, %.2f %s)", order.ID, sessionID, total, currency)

	// 7. Consommation du coupon — seulement après la persistance, pour qu'une
	// création échouée ne brûle jamais d'utilisation
	if order.CouponCode != "" && s.Coupons != nil {
		s.Coupons.MarkUsed(ctx, order.CouponCode)
	}

	// 8. Notification en tâche de fond, jamais attendue
	if s.Notifier != nil {
		go s.Notifier.SendOrderEmails(*order)
	}

	return order, false, nil
}

func calcSubtotal(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return round2(total)
}

// mergeCustomer préfère les champs soumis par le client et se replie champ
// par champ sur les données rapportées par le prestataire
func mergeCustomer(client, payer models.Customer) models.Customer {
	merged := client
	if merged.FullName == "" {
		merged.FullName = payer.FullName
	}
	if merged.Email == "" {
		merged.Email = payer.Email
	}
	if merged.Phone == "" {
		merged.Phone = payer.Phone
	}
	if merged.AddressLine1 == "" {
		merged.AddressLine1 = payer.AddressLine1
	}
	if merged.AddressLine2 == "" {
		merged.AddressLine2 = payer.AddressLine2
	}
	if merged.City == "" {
		merged.City = payer.City
	}
	if merged.State == "" {
		merged.State = payer.State
	}
	if merged.PostalCode == "" {
		merged.PostalCode = payer.PostalCode
	}
	if merged.Country == "" {
		merged.Country = payer.Country
	}
	if merged.Notes == "" {
		merged.Notes = payer.Notes
	}
	return merged
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
