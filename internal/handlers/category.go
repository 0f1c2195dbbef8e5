package handlers

import (
	"log"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"onrise_back_end/internal/cache"
	"onrise_back_end/internal/database"
	"onrise_back_end/internal/models"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify normalise un nom en slug URL
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// 🟢 Créer une catégorie (admin)
func CreateCategory(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
		Slug string `json:"slug"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'name' est obligatoire"})
		return
	}

	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	slug := input.Slug
	if slug == "" {
		slug = slugify(input.Name)
	}
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slug invalide"})
		return
	}

	category := models.Category{
		ID:        gocql.TimeUUID(),
		Name:      input.Name,
		Slug:      slug,
		CreatedAt: time.Now(),
	}

	// LWT : le slug est la clé, un doublon est refusé
	applied, err := session.Query(`INSERT INTO categories (slug, id, name, created_at)
		VALUES (?, ?, ?, ?) IF NOT EXISTS`,
		category.Slug, category.ID, category.Name, category.CreatedAt,
	).MapScanCAS(map[string]interface{}{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{"error": "Une catégorie avec ce slug existe déjà"})
		return
	}

	cache.InvalidateCategoriesCache()
	log.Println("✅ Catégorie créée :", category.Slug)
	c.JSON(http.StatusCreated, category)
}

// 📦 Liste des catégories (avec cache Redis)
func GetAllCategories(c *gin.Context) {
	if cached, ok := cache.GetCategoriesFromCache(); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	iter := session.Query(`SELECT slug, id, name, created_at FROM categories`).Iter()

	categories := []models.Category{}
	var cat models.Category
	for iter.Scan(&cat.Slug, &cat.ID, &cat.Name, &cat.CreatedAt) {
		categories = append(categories, cat)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	cache.SetCategoriesCache(categories)
	c.JSON(http.StatusOK, categories)
}

// ✏️ Renommer une catégorie (admin) — le slug est immuable
func UpdateCategory(c *gin.Context) {
	slug := c.Param("slug")

	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'name' est obligatoire"})
		return
	}

	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	applied, err := session.Query(`UPDATE categories SET name = ? WHERE slug = ? IF EXISTS`,
		input.Name, slug).MapScanCAS(map[string]interface{}{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !applied {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}

	cache.InvalidateCategoriesCache()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// 🗑️ Supprimer une catégorie (admin)
func DeleteCategory(c *gin.Context) {
	slug := c.Param("slug")

	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	if err := session.Query(`DELETE FROM categories WHERE slug = ?`, slug).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cache.InvalidateCategoriesCache()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
