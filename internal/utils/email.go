package utils

import (
	"fmt"
	"strings"

	"onrise_back_end/internal/models"
)

func orderItemsHTML(order models.Order) string {
	if len(order.Items) == 0 {
		return "<p>Aucun article.</p>"
	}

	var rows strings.Builder
	for _, item := range order.Items {
		name := item.Name
		if item.ColorName != "" {
			name += " (" + item.ColorName + ")"
		}
		var attrs []string
		for _, attr := range item.Attributes {
			attrs = append(attrs, attr.Name+": "+attr.Value)
		}
		if len(attrs) > 0 {
			name += " — " + strings.Join(attrs, ", ")
		}
		rows.WriteString(fmt.Sprintf(`
			<tr>
				<td style="padding: 6px 8px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 6px 8px; border-bottom: 1px solid #eee; text-align:center;">%d</td>
				<td style="padding: 6px 8px; border-bottom: 1px solid #eee; text-align:right;">%.2f</td>
				<td style="padding: 6px 8px; border-bottom: 1px solid #eee; text-align:right;">%.2f</td>
			</tr>`, name, item.Quantity, item.UnitPrice, item.LineTotal))
	}

	return fmt.Sprintf(`
	<table cellpadding="0" cellspacing="0" width="100%%" style="border-collapse: collapse; font-size: 13px;">
		<thead>
			<tr style="background-color: #f0f0f0;">
				<th align="left" style="padding: 6px 8px; border-bottom: 2px solid #ddd;">Article</th>
				<th align="center" style="padding: 6px 8px; border-bottom: 2px solid #ddd;">Qté</th>
				<th align="right" style="padding: 6px 8px; border-bottom: 2px solid #ddd;">Prix unitaire</th>
				<th align="right" style="padding: 6px 8px; border-bottom: 2px solid #ddd;">Total</th>
			</tr>
		</thead>
		<tbody>
			%s
			<tr>
				<td colspan="3" style="padding: 8px; text-align:right;">Sous-total</td>
				<td style="padding: 8px; text-align:right;">%.2f</td>
			</tr>
			<tr>
				<td colspan="3" style="padding: 8px; text-align:right;">Taxes</td>
				<td style="padding: 8px; text-align:right;">%.2f</td>
			</tr>
			<tr>
				<td colspan="3" style="padding: 8px; text-align:right; font-weight:bold;">Total</td>
				<td style="padding: 8px; text-align:right; font-weight:bold;">%.2f %s</td>
			</tr>
		</tbody>
	</table>`, rows.String(), order.Subtotal, order.Tax, order.Total, strings.ToUpper(order.Currency))
}

func customerHTML(customer models.Customer) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<p style="margin:4px 0;"><strong>Nom:</strong> %s</p>`, customer.FullName))
	sb.WriteString(fmt.Sprintf(`<p style="margin:4px 0;"><strong>E-mail:</strong> %s</p>`, customer.Email))
	if customer.Phone != "" {
		sb.WriteString(fmt.Sprintf(`<p style="margin:4px 0;"><strong>Téléphone:</strong> %s</p>`, customer.Phone))
	}
	sb.WriteString(`<p style="margin:4px 0;"><strong>Adresse:</strong><br/>`)
	sb.WriteString(customer.AddressLine1 + "<br/>")
	if customer.AddressLine2 != "" {
		sb.WriteString(customer.AddressLine2 + "<br/>")
	}
	sb.WriteString(fmt.Sprintf("%s, %s - %s<br/>%s</p>", customer.City, customer.State, customer.PostalCode, customer.Country))
	if customer.Notes != "" {
		sb.WriteString(fmt.Sprintf(`<p style="margin:4px 0;"><strong>Notes:</strong> %s</p>`, customer.Notes))
	}
	return sb.String()
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation envoyé au client
func GenerateOrderConfirmationHTML(order models.Order, brandName string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Merci pour votre commande 👋</h2>
		<p>Bonjour %s,</p>
		<p>Nous avons bien reçu votre paiement, votre commande est en cours de préparation.</p>
		<p style="margin:4px 0;"><strong>Référence:</strong> %s</p>

		<h3>Récapitulatif</h3>
		%s

		<h3>Livraison</h3>
		%s

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe %s</strong>
		</p>
		<p style="margin-top:16px; font-size:12px; color:#777;">Ceci est un e-mail automatique.</p>
	</div>
</body>
</html>`, order.Customer.FullName, order.ID.String(), orderItemsHTML(order), customerHTML(order.Customer), brandName)
}

// GenerateStoreAlertHTML génère le HTML de l'alerte interne boutique
func GenerateStoreAlertHTML(order models.Order, brandName string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Nouvelle commande payée</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Nouvelle commande payée — %s</h2>
		<p style="margin:4px 0;"><strong>Commande:</strong> %s</p>
		<p style="margin:4px 0;"><strong>Session de paiement:</strong> %s</p>
		<p style="margin:4px 0;"><strong>Capture:</strong> %s</p>

		<h3>Client</h3>
		%s

		<h3>Articles</h3>
		%s
	</div>
</body>
</html>`, brandName, order.ID.String(), order.SessionID, order.CaptureID, customerHTML(order.Customer), orderItemsHTML(order))
}
