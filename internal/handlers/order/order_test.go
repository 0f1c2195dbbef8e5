package order

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"onrise_back_end/internal/models"
	"onrise_back_end/internal/store"
)

type fakeOrderStore struct {
	order         *models.Order
	updatedFields map[string]interface{}
	updateCalls   int
}

func (s *fakeOrderStore) InsertIfAbsent(ctx context.Context, order *models.Order) (bool, error) {
	return true, nil
}

func (s *fakeOrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	if s.order != nil && s.order.ID.String() == id {
		copied := *s.order
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeOrderStore) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	return nil, store.ErrNotFound
}

func (s *fakeOrderStore) FindByCustomerEmail(ctx context.Context, email string) ([]models.Order, error) {
	return nil, nil
}

func (s *fakeOrderStore) List(ctx context.Context, page, limit int) ([]models.Order, int, error) {
	return nil, 0, nil
}

func (s *fakeOrderStore) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	s.updateCalls++
	s.updatedFields = fields
	return nil
}

func seedOrder() *models.Order {
	return &models.Order{
		ID:            gocql.TimeUUID(),
		SessionID:     "sess_abc",
		PaymentStatus: models.PaymentStatusPaid,
		OrderStatus:   models.OrderStatusProcessing,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func setupRouter(st store.OrderStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(st)

	r := gin.New()
	r.PATCH("/api/orders/:id", handler.Patch)
	return r
}

func patchJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPatchUpdatesStatusAndNotes(t *testing.T) {
	st := &fakeOrderStore{order: seedOrder()}
	r := setupRouter(st)

	w := patchJSON(r, "/api/orders/"+st.order.ID.String(), gin.H{
		"order_status": models.OrderStatusShipped,
		"notes":        "expédiée via Colissimo",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("statut = %d, attendu 200 (body: %s)", w.Code, w.Body.String())
	}
	if st.updateCalls != 1 {
		t.Fatalf("UpdateFields appelé %d fois, attendu 1", st.updateCalls)
	}
	if st.updatedFields["order_status"] != models.OrderStatusShipped {
		t.Errorf("order_status = %v", st.updatedFields["order_status"])
	}
	if st.updatedFields["notes"] != "expédiée via Colissimo" {
		t.Errorf("notes = %v", st.updatedFields["notes"])
	}

	// L'estampille updated_at appartient au store : la passer ici produirait
	// une double affectation de colonne dans l'UPDATE généré
	if _, ok := st.updatedFields["updated_at"]; ok {
		t.Error("le handler a passé updated_at au store")
	}
}

func TestPatchRejectsInvalidStatuses(t *testing.T) {
	cases := []struct {
		name string
		body gin.H
	}{
		{"statut de commande inconnu", gin.H{"order_status": "téléportée"}},
		{"statut de paiement inconnu", gin.H{"payment_status": "peut-être"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &fakeOrderStore{order: seedOrder()}
			r := setupRouter(st)

			w := patchJSON(r, "/api/orders/"+st.order.ID.String(), tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("statut = %d, attendu 400", w.Code)
			}
			if st.updateCalls != 0 {
				t.Fatal("UpdateFields appelé malgré un statut invalide")
			}
		})
	}
}

func TestPatchUnknownOrderReturns404(t *testing.T) {
	st := &fakeOrderStore{}
	r := setupRouter(st)

	w := patchJSON(r, "/api/orders/"+gocql.TimeUUID().String(), gin.H{
		"order_status": models.OrderStatusShipped,
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("statut = %d, attendu 404", w.Code)
	}
}

func TestPatchWithoutFieldsReturns400(t *testing.T) {
	st := &fakeOrderStore{order: seedOrder()}
	r := setupRouter(st)

	w := patchJSON(r, "/api/orders/"+st.order.ID.String(), gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("statut = %d, attendu 400", w.Code)
	}
	if st.updateCalls != 0 {
		t.Fatal("UpdateFields appelé sans champ à mettre à jour")
	}
}
