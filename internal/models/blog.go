package models

import (
	"time"

	"github.com/gocql/gocql"
)

type BlogPost struct {
	ID      gocql.UUID `json:"id"`
	Title   string     `json:"title"`
	Content string     `json:"content"` // HTML
	Author  string     `json:"author"`
	Date    time.Time  `json:"date"` // date de publication, distincte de created_at

	// Champs SEO optionnels
	MetaTitle string `json:"meta_title,omitempty"`
	MetaDesc  string `json:"meta_desc,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
