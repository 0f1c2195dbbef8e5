package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"onrise_back_end/internal/cache"
	"onrise_back_end/internal/database"
	"onrise_back_end/internal/models"
	"onrise_back_end/internal/services"
)

const productColumns = `id, name, desc_text, long_desc, category, price, additional_info,
	image_urls, color_options, color_required, attributes, ratings, created_at, updated_at`

// 🟢 Créer un produit (admin, multipart : champs + images)
func CreateProduct(c *gin.Context) {
	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	name := c.PostForm("name")
	category := c.PostForm("category")
	if name == "" || category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les champs 'name' et 'category' sont obligatoires"})
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prix invalide"})
		return
	}

	p := models.Product{
		ID:             gocql.TimeUUID(),
		Name:           name,
		Desc:           c.PostForm("desc"),
		LongDesc:       c.PostForm("long_desc"),
		Category:       category,
		Price:          price,
		AdditionalInfo: c.PostForm("additional_info"),
		ColorRequired:  c.PostForm("color_required") == "true",
		ImageURLs:      []string{},
		ColorOptions:   []models.ColorOption{},
		Attributes:     []models.Attribute{},
		Ratings:        []models.Rating{},
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	// Variantes de couleur et attributs arrivent en JSON dans le formulaire
	if raw := c.PostForm("color_options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.ColorOptions); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format 'color_options' invalide"})
			return
		}
	}
	if raw := c.PostForm("attributes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.Attributes); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format 'attributes' invalide"})
			return
		}
	}

	// Upload des images vers MinIO
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, file := range form.File["images"] {
			url, err := services.UploadProductImage(file)
			if err != nil {
				log.Println("❌ Upload image échoué:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de l'upload d'image"})
				return
			}
			p.ImageURLs = append(p.ImageURLs, url)
		}
	}

	if err := insertProduct(session, &p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Println("✅ Produit créé :", p.Name)
	c.JSON(http.StatusCreated, p)
}

// 📦 Liste paginée, filtrable par catégorie et fourchette de prix
func GetAllProducts(c *gin.Context) {
	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	category := c.Query("category")
	minPrice, hasMin := parsePriceQuery(c.Query("min_price"))
	maxPrice, hasMax := parsePriceQuery(c.Query("max_price"))

	iter := session.Query(`SELECT ` + productColumns + ` FROM products`).Iter()

	var products []models.Product
	for {
		p, ok := scanProduct(iter)
		if !ok {
			break
		}

		if category != "" && p.Category != category {
			continue
		}
		// Le filtre prix tient compte des variantes de couleur
		lo, hi := priceRange(p)
		if hasMin && hi < minPrice {
			continue
		}
		if hasMax && lo > maxPrice {
			continue
		}
		products = append(products, *p)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})

	total := len(products)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products[start:end],
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// 🔍 Détail d'un produit (avec cache Redis)
func GetProductByID(c *gin.Context) {
	id := c.Param("id")

	if cached, ok := cache.GetProductFromCache(id); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	productID, err := gocql.ParseUUID(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de produit invalide"})
		return
	}

	p, err := findProduct(session, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	cache.SetProductCache(p)
	c.JSON(http.StatusOK, p)
}

// ✏️ Mettre à jour un produit (admin, JSON — les images passent par AddProductImage)
func UpdateProduct(c *gin.Context) {
	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de produit invalide"})
		return
	}

	existing, err := findProduct(session, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	var input struct {
		Name           *string              `json:"name"`
		Desc           *string              `json:"desc"`
		LongDesc       *string              `json:"long_desc"`
		Category       *string              `json:"category"`
		Price          *float64             `json:"price"`
		AdditionalInfo *string              `json:"additional_info"`
		ColorOptions   []models.ColorOption `json:"color_options"`
		ColorRequired  *bool                `json:"color_required"`
		Attributes     []models.Attribute   `json:"attributes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		existing.Name = *input.Name
	}
	if input.Desc != nil {
		existing.Desc = *input.Desc
	}
	if input.LongDesc != nil {
		existing.LongDesc = *input.LongDesc
	}
	if input.Category != nil {
		existing.Category = *input.Category
	}
	if input.Price != nil {
		if *input.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Prix invalide"})
			return
		}
		existing.Price = *input.Price
	}
	if input.AdditionalInfo != nil {
		existing.AdditionalInfo = *input.AdditionalInfo
	}
	if input.ColorOptions != nil {
		existing.ColorOptions = input.ColorOptions
	}
	if input.ColorRequired != nil {
		existing.ColorRequired = *input.ColorRequired
	}
	if input.Attributes != nil {
		existing.Attributes = input.Attributes
	}
	existing.UpdatedAt = time.Now()

	if err := insertProduct(session, existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cache.InvalidateProductCache(productID.String())
	c.JSON(http.StatusOK, existing)
}

// 🖼️ Ajouter des images à un produit existant (admin, multipart)
func AddProductImage(c *gin.Context) {
	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de produit invalide"})
		return
	}

	existing, err := findProduct(session, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil || form == nil || len(form.File["images"]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune image fournie"})
		return
	}

	for _, file := range form.File["images"] {
		url, err := services.UploadProductImage(file)
		if err != nil {
			log.Println("❌ Upload image échoué:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de l'upload d'image"})
			return
		}
		existing.ImageURLs = append(existing.ImageURLs, url)
	}
	existing.UpdatedAt = time.Now()

	if err := insertProduct(session, existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cache.InvalidateProductCache(productID.String())
	c.JSON(http.StatusOK, existing)
}

// ⭐ Ajouter un avis client sur un produit
func AddProductRating(c *gin.Context) {
	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de produit invalide"})
		return
	}

	var input struct {
		Stars  int    `json:"stars" binding:"required"`
		Review string `json:"review"`
		User   string `json:"user"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Stars < 1 || input.Stars > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'stars' doit être compris entre 1 et 5"})
		return
	}

	existing, err := findProduct(session, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	existing.Ratings = append(existing.Ratings, models.Rating{
		Stars:  input.Stars,
		Review: input.Review,
		User:   input.User,
	})
	existing.UpdatedAt = time.Now()

	if err := insertProduct(session, existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cache.InvalidateProductCache(productID.String())
	c.JSON(http.StatusOK, existing)
}

// 🗑️ Supprimer un produit (admin)
func DeleteProduct(c *gin.Context) {
	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de produit invalide"})
		return
	}

	if err := session.Query(`DELETE FROM products WHERE id = ?`, productID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cache.InvalidateProductCache(productID.String())
	log.Println("🗑️ Produit supprimé :", productID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Helpers Scylla ---

func insertProduct(session *gocql.Session, p *models.Product) error {
	colorJSON, _ := json.Marshal(p.ColorOptions)
	attrJSON, _ := json.Marshal(p.Attributes)
	ratingsJSON, _ := json.Marshal(p.Ratings)

	return session.Query(`INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Desc, p.LongDesc, p.Category, p.Price, p.AdditionalInfo,
		p.ImageURLs, string(colorJSON), p.ColorRequired, string(attrJSON), string(ratingsJSON),
		p.CreatedAt, p.UpdatedAt,
	).Exec()
}

func findProduct(session *gocql.Session, id gocql.UUID) (*models.Product, error) {
	iter := session.Query(`SELECT `+productColumns+` FROM products WHERE id = ?`, id).Iter()
	p, ok := scanProduct(iter)
	if err := iter.Close(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, gocql.ErrNotFound
	}
	return p, nil
}

func scanProduct(iter *gocql.Iter) (*models.Product, bool) {
	var p models.Product
	var colorJSON, attrJSON, ratingsJSON string

	ok := iter.Scan(&p.ID, &p.Name, &p.Desc, &p.LongDesc, &p.Category, &p.Price, &p.AdditionalInfo,
		&p.ImageURLs, &colorJSON, &p.ColorRequired, &attrJSON, &ratingsJSON,
		&p.CreatedAt, &p.UpdatedAt)
	if !ok {
		return nil, false
	}

	json.Unmarshal([]byte(colorJSON), &p.ColorOptions)
	json.Unmarshal([]byte(attrJSON), &p.Attributes)
	json.Unmarshal([]byte(ratingsJSON), &p.Ratings)
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	return &p, true
}

// priceRange retourne le prix effectif min/max d'un produit, variantes comprises
func priceRange(p *models.Product) (float64, float64) {
	lo, hi := p.Price, p.Price
	for _, opt := range p.ColorOptions {
		if opt.Price == nil {
			continue
		}
		if *opt.Price < lo {
			lo = *opt.Price
		}
		if *opt.Price > hi {
			hi = *opt.Price
		}
	}
	return lo, hi
}

func parsePriceQuery(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
