package coupon

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	couponsvc "onrise_back_end/internal/coupon"
	"onrise_back_end/internal/models"
	"onrise_back_end/internal/store"
)

type Handler struct {
	Store   store.CouponStore
	Service *couponsvc.Service
}

func NewHandler(st store.CouponStore, service *couponsvc.Service) *Handler {
	return &Handler{Store: st, Service: service}
}

// 🎟️ POST /api/coupons/check — validation publique d'un code contre un panier.
// Ne consomme jamais d'utilisation : le décompte se fait à la confirmation.
func (h *Handler) Check(c *gin.Context) {
	var input struct {
		Code      string  `json:"code" binding:"required"`
		CartTotal float64 `json:"cart_total"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'code' est obligatoire"})
		return
	}

	result, err := h.Service.Evaluate(c.Request.Context(), input.Code, input.CartTotal)
	if err != nil {
		log.Println("❌ Vérification coupon échouée:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la vérification du coupon"})
		return
	}

	if !result.IsValid {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// 📦 Liste des coupons (admin)
func (h *Handler) List(c *gin.Context) {
	coupons, err := h.Store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, coupons)
}

// 🔍 Détail d'un coupon (admin)
func (h *Handler) Get(c *gin.Context) {
	coupon, err := h.Store.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, coupon)
}

// 🟢 Créer un coupon (admin)
func (h *Handler) Create(c *gin.Context) {
	var input struct {
		Code             string     `json:"code" binding:"required"`
		Description      string     `json:"description"`
		DiscountType     string     `json:"discount_type" binding:"required"`
		DiscountValue    float64    `json:"discount_value" binding:"required"`
		MinOrderValue    float64    `json:"min_order_value"`
		MaxDiscountValue *float64   `json:"max_discount_value"`
		StartDate        *time.Time `json:"start_date"`
		ExpiryDate       time.Time  `json:"expiry_date" binding:"required"`
		UsageLimit       *int       `json:"usage_limit"`
		IsActive         *bool      `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if msg := validateDiscount(input.DiscountType, input.DiscountValue); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	code := couponsvc.Normalize(input.Code)
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code de coupon invalide"})
		return
	}

	if _, err := h.Store.FindByCode(c.Request.Context(), code); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un coupon avec ce code existe déjà"})
		return
	} else if err != store.ErrNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	coupon := models.Coupon{
		ID:               gocql.TimeUUID(),
		Code:             code,
		Description:      input.Description,
		DiscountType:     input.DiscountType,
		DiscountValue:    input.DiscountValue,
		MinOrderValue:    input.MinOrderValue,
		MaxDiscountValue: input.MaxDiscountValue,
		StartDate:        now,
		ExpiryDate:       input.ExpiryDate,
		UsageLimit:       input.UsageLimit,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if input.StartDate != nil {
		coupon.StartDate = *input.StartDate
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}

	if err := h.Store.Insert(c.Request.Context(), &coupon); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Println("✅ Coupon créé :", coupon.Code)
	c.JSON(http.StatusCreated, coupon)
}

// ✏️ Mettre à jour un coupon (admin). Le code est immuable : supprimer et
// recréer pour en changer.
func (h *Handler) Update(c *gin.Context) {
	existing, err := h.Store.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var input struct {
		Description      *string    `json:"description"`
		DiscountType     *string    `json:"discount_type"`
		DiscountValue    *float64   `json:"discount_value"`
		MinOrderValue    *float64   `json:"min_order_value"`
		MaxDiscountValue *float64   `json:"max_discount_value"`
		StartDate        *time.Time `json:"start_date"`
		ExpiryDate       *time.Time `json:"expiry_date"`
		UsageLimit       *int       `json:"usage_limit"`
		IsActive         *bool      `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.DiscountType != nil {
		existing.DiscountType = *input.DiscountType
	}
	if input.DiscountValue != nil {
		existing.DiscountValue = *input.DiscountValue
	}
	if msg := validateDiscount(existing.DiscountType, existing.DiscountValue); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if input.MinOrderValue != nil {
		existing.MinOrderValue = *input.MinOrderValue
	}
	if input.MaxDiscountValue != nil {
		existing.MaxDiscountValue = input.MaxDiscountValue
	}
	if input.StartDate != nil {
		existing.StartDate = *input.StartDate
	}
	if input.ExpiryDate != nil {
		existing.ExpiryDate = *input.ExpiryDate
	}
	if input.UsageLimit != nil {
		existing.UsageLimit = input.UsageLimit
	}
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}
	existing.UpdatedAt = time.Now()

	if err := h.Store.Update(c.Request.Context(), existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, existing)
}

// 🗑️ Supprimer un coupon (admin)
func (h *Handler) Delete(c *gin.Context) {
	if err := h.Store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func validateDiscount(discountType string, value float64) string {
	switch discountType {
	case models.DiscountTypePercent:
		if value <= 0 || value > 100 {
			return "Une réduction en pourcentage doit être comprise entre 0 et 100"
		}
	case models.DiscountTypeFixed:
		if value <= 0 {
			return "Une réduction fixe doit être positive"
		}
	default:
		return "Le type de réduction doit être 'percent' ou 'fixed'"
	}
	return ""
}
