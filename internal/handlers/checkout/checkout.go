package checkout

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	checkoutsvc "onrise_back_end/internal/checkout"
	"onrise_back_end/internal/models"
)

// Handler expose le checkout sur HTTP. Toute la logique vit dans le service,
// le handler ne fait que lier la requête et traduire les erreurs en statuts.
type Handler struct {
	Service *checkoutsvc.Service
}

func NewHandler(service *checkoutsvc.Service) *Handler {
	return &Handler{Service: service}
}

// 💳 POST /api/checkout/session — ouvre une session de paiement
func (h *Handler) CreateSession(c *gin.Context) {
	var input struct {
		Items    []models.CartItem `json:"items" binding:"required"`
		Customer models.Customer   `json:"customer"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	sessionID, err := h.Service.CreateSession(c.Request.Context(), input.Items, input.Customer)
	if err != nil {
		if errors.Is(err, checkoutsvc.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Println("❌ Création de session échouée:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de créer la session de paiement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID})
}

// ✅ POST /api/checkout/confirm — réconcilie une session payée en commande
func (h *Handler) ConfirmOrder(c *gin.Context) {
	var input struct {
		SessionID  string            `json:"session_id" binding:"required"`
		Items      []models.CartItem `json:"items"`
		Customer   models.Customer   `json:"customer"`
		CouponCode string            `json:"coupon_code"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'session_id' est obligatoire"})
		return
	}

	order, alreadyExisted, err := h.Service.ConfirmOrder(c.Request.Context(),
		input.SessionID, input.Items, input.Customer, input.CouponCode)
	if err != nil {
		switch {
		case errors.Is(err, checkoutsvc.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, checkoutsvc.ErrPaymentNotCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Le paiement n'a pas abouti"})
		default:
			log.Println("❌ Confirmation de commande échouée:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de la confirmation de commande"})
		}
		return
	}

	status := http.StatusCreated
	if alreadyExisted {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"order":           order,
		"already_existed": alreadyExisted,
	})
}
