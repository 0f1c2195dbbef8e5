package payment

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"

	"onrise_back_end/internal/models"
)

// StripeProvider implémente Provider via Stripe Checkout.
// La clé API globale (stripe.Key) est initialisée au démarrage dans main.
type StripeProvider struct {
	ClientURL string
}

func NewStripeProvider() *StripeProvider {
	clientURL := os.Getenv("CLIENT_URL")
	if clientURL == "" {
		clientURL = "http://localhost:3000"
	}
	return &StripeProvider{ClientURL: clientURL}
}

func (p *StripeProvider) CreateOrder(ctx context.Context, breakdown OrderBreakdown, customer models.Customer) (string, error) {
	currency := breakdown.Currency
	if currency == "" {
		currency = "usd"
	}

	var lineItems []*stripe.CheckoutSessionLineItemParams
	for _, item := range breakdown.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(toMinorUnits(item.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
					Metadata: map[string]string{
						"product_id": item.ProductID,
						"color_name": item.ColorName,
					},
				},
			},
		})
	}

	// La taxe (8.25%) part comme ligne dédiée, l'expédition est offerte
	if breakdown.Tax > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(toMinorUnits(breakdown.Tax)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Taxes"),
				},
			},
		})
	}

	// Le contexte client voyage dans les métadonnées de session : tant que la
	// commande locale n'existe pas, la session est le seul lien durable vers
	// le checkout.
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		CustomerEmail:      stripe.String(customer.Email),
		Metadata: map[string]string{
			"full_name":     customer.FullName,
			"phone":         customer.Phone,
			"address_line1": customer.AddressLine1,
			"address_line2": customer.AddressLine2,
			"city":          customer.City,
			"state":         customer.State,
			"postal_code":   customer.PostalCode,
			"country":       customer.Country,
			"notes":         customer.Notes,
		},
		SuccessURL: stripe.String(p.ClientURL + "/checkout-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(p.ClientURL + "/checkout-cancel"),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		log.Println("❌ Erreur Stripe (création session):", err)
		return "", fmt.Errorf("création session de paiement: %w", err)
	}

	log.Printf("💳 Session de paiement créée : %s (%.2f %s) pour %s",
		sess.ID, breakdown.Subtotal+breakdown.Tax, currency, customer.Email)
	return sess.ID, nil
}

func (p *StripeProvider) CaptureOrder(ctx context.Context, sessionID string) (*Capture, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		log.Println("❌ Erreur Stripe (récupération session):", err)
		return nil, fmt.Errorf("récupération session de paiement: %w", err)
	}

	capture := &Capture{
		Status:   string(sess.PaymentStatus),
		Amount:   float64(sess.AmountTotal) / 100,
		Currency: string(sess.Currency),
		Payer:    payerFromSession(sess),
	}
	if sess.PaymentIntent != nil {
		capture.CaptureID = sess.PaymentIntent.ID
	}
	if sess.Customer != nil {
		capture.PayerID = sess.Customer.ID
	}

	return capture, nil
}

// payerFromSession reconstruit le contexte client depuis customer_details et
// les métadonnées déposées à la création de la session.
func payerFromSession(sess *stripe.CheckoutSession) models.Customer {
	payer := models.Customer{
		FullName:     sess.Metadata["full_name"],
		Phone:        sess.Metadata["phone"],
		AddressLine1: sess.Metadata["address_line1"],
		AddressLine2: sess.Metadata["address_line2"],
		City:         sess.Metadata["city"],
		State:        sess.Metadata["state"],
		PostalCode:   sess.Metadata["postal_code"],
		Country:      sess.Metadata["country"],
		Notes:        sess.Metadata["notes"],
	}

	if details := sess.CustomerDetails; details != nil {
		payer.Email = details.Email
		if payer.FullName == "" {
			payer.FullName = details.Name
		}
		if payer.Phone == "" {
			payer.Phone = details.Phone
		}
		if addr := details.Address; addr != nil {
			if payer.AddressLine1 == "" {
				payer.AddressLine1 = addr.Line1
			}
			if payer.AddressLine2 == "" {
				payer.AddressLine2 = addr.Line2
			}
			if payer.City == "" {
				payer.City = addr.City
			}
			if payer.State == "" {
				payer.State = addr.State
			}
			if payer.PostalCode == "" {
				payer.PostalCode = addr.PostalCode
			}
			if payer.Country == "" {
				payer.Country = addr.Country
			}
		}
	}

	return payer
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
