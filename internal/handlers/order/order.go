package order

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"onrise_back_end/internal/models"
	"onrise_back_end/internal/store"
)

type Handler struct {
	Orders store.OrderStore
}

func NewHandler(orders store.OrderStore) *Handler {
	return &Handler{Orders: orders}
}

// 📦 Liste paginée des commandes (admin), de la plus récente à la plus ancienne
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	orders, total, err := h.Orders.List(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// 🔍 Détail d'une commande (admin)
func (h *Handler) Get(c *gin.Context) {
	order, err := h.Orders.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}

// 📧 Commandes d'un client par e-mail (admin)
func (h *Handler) ByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le paramètre 'email' est obligatoire"})
		return
	}

	orders, err := h.Orders.FindByCustomerEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

var validOrderStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusCompleted:  true,
	models.OrderStatusCancelled:  true,
}

var validPaymentStatuses = map[string]bool{
	models.PaymentStatusPending:  true,
	models.PaymentStatusPaid:     true,
	models.PaymentStatusFailed:   true,
	models.PaymentStatusCanceled: true,
}

// ✏️ Mise à jour partielle d'une commande (admin) : statuts et notes internes
func (h *Handler) Patch(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.Orders.FindByID(c.Request.Context(), id); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var input struct {
		OrderStatus   *string `json:"order_status"`
		PaymentStatus *string `json:"payment_status"`
		Notes         *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if input.OrderStatus != nil {
		if !validOrderStatuses[*input.OrderStatus] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Statut de commande invalide"})
			return
		}
		fields["order_status"] = *input.OrderStatus
	}
	if input.PaymentStatus != nil {
		if !validPaymentStatuses[*input.PaymentStatus] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Statut de paiement invalide"})
			return
		}
		fields["payment_status"] = *input.PaymentStatus
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}

	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun champ à mettre à jour"})
		return
	}

	// updated_at est estampillé par le store, ne pas le passer ici
	if err := h.Orders.UpdateFields(c.Request.Context(), id, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Orders.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, order)
}
