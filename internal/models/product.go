package models

import (
	"time"

	"github.com/gocql/gocql"
)

// ColorOption : variante de couleur, avec prix et image optionnels
type ColorOption struct {
	ColorName string   `json:"color_name"`
	Price     *float64 `json:"price,omitempty"` // surcharge du prix de base si défini
	ImageURL  string   `json:"image_url,omitempty"`
}

type AttributeOption struct {
	Label string  `json:"label"`
	Price float64 `json:"price"` // supplément ajouté au prix de base
}

// Attribute : attribut générique, ex. { name: "Taille", options: [{S, 0}, {M, 50}] }
type Attribute struct {
	Name    string            `json:"name"`
	Options []AttributeOption `json:"options"`
}

type Rating struct {
	Stars  int    `json:"stars"`
	Review string `json:"review,omitempty"`
	User   string `json:"user,omitempty"`
}

type Product struct {
	ID             gocql.UUID    `json:"id"`
	Name           string        `json:"name"`
	Desc           string        `json:"desc,omitempty"`
	LongDesc       string        `json:"long_desc,omitempty"`
	Category       string        `json:"category"`
	Price          float64       `json:"price"`
	AdditionalInfo string        `json:"additional_info,omitempty"`
	ImageURLs      []string      `json:"image_urls"`
	ColorOptions   []ColorOption `json:"color_options"`
	ColorRequired  bool          `json:"color_required"`
	Attributes     []Attribute   `json:"attributes"`
	Ratings        []Rating      `json:"ratings"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
