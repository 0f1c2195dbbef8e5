package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"onrise_back_end/internal/database"
	"onrise_back_end/internal/models"
)

// ScyllaOrderStore : commandes dans ScyllaDB.
// Trois tables : orders (par id), orders_by_session (table de réservation LWT,
// clé primaire = session_id) et orders_by_email (dénormalisée pour l'admin).
type ScyllaOrderStore struct{}

func NewScyllaOrderStore() *ScyllaOrderStore {
	return &ScyllaOrderStore{}
}

func (s *ScyllaOrderStore) InsertIfAbsent(ctx context.Context, order *models.Order) (bool, error) {
	session, err := database.GetStoreSession()
	if err != nil {
		return false, err
	}

	// 1. Réserver la session de paiement via LWT — c'est la contrainte d'unicité
	// qui départage deux confirmations simultanées pour la même session.
	applied, err := session.Query(
		`INSERT INTO orders_by_session (session_id, order_id) VALUES (?, ?) IF NOT EXISTS`,
		order.SessionID, order.ID,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}

	customerJSON, err := json.Marshal(order.Customer)
	if err != nil {
		return false, err
	}
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return false, err
	}

	// 2. Écrire la ligne principale
	if err := session.Query(
		`INSERT INTO orders (order_id, session_id, capture_id, payer_id, customer, items,
			subtotal, tax, total, currency, payment_status, order_status,
			coupon_code, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.SessionID, order.CaptureID, order.PayerID,
		string(customerJSON), string(itemsJSON),
		order.Subtotal, order.Tax, order.Total, order.Currency,
		order.PaymentStatus, order.OrderStatus,
		order.CouponCode, order.Notes, order.CreatedAt, order.UpdatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return false, err
	}

	// 3. Dénormaliser pour la recherche par e-mail client
	if order.Customer.Email != "" {
		if err := session.Query(
			`INSERT INTO orders_by_email (customer_email, created_at, order_id) VALUES (?, ?, ?)`,
			order.Customer.Email, order.CreatedAt, order.ID,
		).WithContext(ctx).Exec(); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (s *ScyllaOrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	session, err := database.GetStoreSession()
	if err != nil {
		return nil, err
	}

	orderID, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	return scanOrder(ctx, session, orderID)
}

func (s *ScyllaOrderStore) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	session, err := database.GetStoreSession()
	if err != nil {
		return nil, err
	}

	var orderID gocql.UUID
	err = session.Query(`SELECT order_id FROM orders_by_session WHERE session_id = ?`, sessionID).
		WithContext(ctx).Scan(&orderID)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return scanOrder(ctx, session, orderID)
}

func (s *ScyllaOrderStore) FindByCustomerEmail(ctx context.Context, email string) ([]models.Order, error) {
	session, err := database.GetStoreSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(
		`SELECT order_id FROM orders_by_email WHERE customer_email = ?`, email,
	).WithContext(ctx).Iter()

	var ids []gocql.UUID
	var orderID gocql.UUID
	for iter.Scan(&orderID) {
		ids = append(ids, orderID)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		order, err := scanOrder(ctx, session, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *ScyllaOrderStore) List(ctx context.Context, page, limit int) ([]models.Order, int, error) {
	session, err := database.GetStoreSession()
	if err != nil {
		return nil, 0, err
	}

	iter := session.Query(
		`SELECT order_id, session_id, capture_id, payer_id, customer, items,
			subtotal, tax, total, currency, payment_status, order_status,
			coupon_code, notes, created_at, updated_at FROM orders`,
	).WithContext(ctx).Iter()

	var orders []models.Order
	for {
		order, ok, err := scanOrderRow(iter)
		if err != nil {
			iter.Close()
			return nil, 0, err
		}
		if !ok {
			break
		}
		orders = append(orders, *order)
	}
	if err := iter.Close(); err != nil {
		return nil, 0, err
	}

	// Tri et pagination en mémoire — volumétrie boutique, pas un flux analytique
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	total := len(orders)
	start := (page - 1) * limit
	if start >= total {
		return []models.Order{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return orders[start:end], total, nil
}

func (s *ScyllaOrderStore) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	session, err := database.GetStoreSession()
	if err != nil {
		return err
	}

	orderID, err := gocql.ParseUUID(id)
	if err != nil {
		return ErrNotFound
	}

	updates := []string{"updated_at = ?"}
	values := []interface{}{time.Now()}
	for column, value := range fields {
		updates = append(updates, column+" = ?")
		values = append(values, value)
	}
	values = append(values, orderID)

	query := fmt.Sprintf("UPDATE orders SET %s WHERE order_id = ?", strings.Join(updates, ", "))
	return session.Query(query, values...).WithContext(ctx).Exec()
}

func scanOrder(ctx context.Context, session *gocql.Session, orderID gocql.UUID) (*models.Order, error) {
	iter := session.Query(
		`SELECT order_id, session_id, capture_id, payer_id, customer, items,
			subtotal, tax, total, currency, payment_status, order_status,
			coupon_code, notes, created_at, updated_at FROM orders WHERE order_id = ?`,
		orderID,
	).WithContext(ctx).Iter()

	order, ok, err := scanOrderRow(iter)
	if closeErr := iter.Close(); closeErr != nil {
		return nil, closeErr
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return order, nil
}

func scanOrderRow(iter *gocql.Iter) (*models.Order, bool, error) {
	var order models.Order
	var customerJSON, itemsJSON string

	ok := iter.Scan(
		&order.ID, &order.SessionID, &order.CaptureID, &order.PayerID,
		&customerJSON, &itemsJSON,
		&order.Subtotal, &order.Tax, &order.Total, &order.Currency,
		&order.PaymentStatus, &order.OrderStatus,
		&order.CouponCode, &order.Notes, &order.CreatedAt, &order.UpdatedAt,
	)
	if !ok {
		return nil, false, nil
	}

	if customerJSON != "" {
		if err := json.Unmarshal([]byte(customerJSON), &order.Customer); err != nil {
			return nil, false, err
		}
	}
	if itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
			return nil, false, err
		}
	}
	return &order, true, nil
}
