package models

// CartItem : ligne de panier envoyée par le client au checkout.
// Le total n'est jamais repris du client, il est recalculé côté serveur.
type CartItem struct {
	ProductID  string               `json:"product_id"`
	Name       string               `json:"name"`
	ColorName  string               `json:"color_name,omitempty"`
	Attributes []AttributeSelection `json:"attributes,omitempty"`
	Quantity   int                  `json:"quantity"`
	UnitPrice  float64              `json:"unit_price"`
}
