package cache

import (
	"context"
	"encoding/json"
	"time"

	"onrise_back_end/internal/database"
	"onrise_back_end/internal/models"
)

const (
	ProductCacheTTL  = 10 * time.Minute
	CategoryCacheTTL = 30 * time.Minute
)

// GetProductFromCache récupère un produit depuis Redis
func GetProductFromCache(productID string) (*models.Product, bool) {
	if database.Redis == nil {
		return nil, false
	}

	ctx := context.Background()
	data, err := database.Redis.Get(ctx, "product:"+productID).Result()
	if err != nil {
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		return nil, false
	}
	return &product, true
}

// SetProductCache met un produit en cache
func SetProductCache(product *models.Product) {
	if database.Redis == nil {
		return
	}

	jsonData, err := json.Marshal(product)
	if err != nil {
		return
	}
	database.Redis.Set(context.Background(), "product:"+product.ID.String(), jsonData, ProductCacheTTL)
}

// InvalidateProductCache invalide le cache d'un produit
func InvalidateProductCache(productID string) {
	if database.Redis == nil {
		return
	}
	database.Redis.Del(context.Background(), "product:"+productID)
}

// GetCategoriesFromCache récupère la liste des catégories depuis Redis
func GetCategoriesFromCache() ([]models.Category, bool) {
	if database.Redis == nil {
		return nil, false
	}

	data, err := database.Redis.Get(context.Background(), "categories:all").Result()
	if err != nil {
		return nil, false
	}

	var categories []models.Category
	if err := json.Unmarshal([]byte(data), &categories); err != nil {
		return nil, false
	}
	return categories, true
}

// SetCategoriesCache met la liste des catégories en cache
func SetCategoriesCache(categories []models.Category) {
	if database.Redis == nil {
		return
	}

	jsonData, err := json.Marshal(categories)
	if err != nil {
		return
	}
	database.Redis.Set(context.Background(), "categories:all", jsonData, CategoryCacheTTL)
}

// InvalidateCategoriesCache invalide la liste des catégories
func InvalidateCategoriesCache() {
	if database.Redis == nil {
		return
	}
	database.Redis.Del(context.Background(), "categories:all")
}
