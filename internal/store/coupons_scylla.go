package store

import (
	"context"
	"strings"

	"github.com/gocql/gocql"

	"onrise_back_end/internal/database"
	"onrise_back_end/internal/models"
)

// ScyllaCouponStore : coupons dans ScyllaDB.
// Table coupons (clé primaire = code en majuscules) + coupons_by_id pour le
// CRUD admin. max_discount_value et usage_limit sont stockés avec 0 comme
// valeur « non défini » et convertis en pointeurs à la frontière.
type ScyllaCouponStore struct{}

func NewScyllaCouponStore() *ScyllaCouponStore {
	return &ScyllaCouponStore{}
}

const couponColumns = `code, id, description, discount_type, discount_value,
	min_order_value, max_discount_value, start_date, expiry_date,
	usage_limit, used_count, is_active, created_at, updated_at`

func (s *ScyllaCouponStore) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	session, err := database.GetStoreSession()
	if err != nil {
		return nil, err
	}
	return scanCoupon(
		session.Query(`SELECT `+couponColumns+` FROM coupons WHERE code = ?`,
			strings.ToUpper(strings.TrimSpace(code))).WithContext(ctx),
	)
}

func (s *ScyllaCouponStore) FindByID(ctx context.Context, id string) (*models.Coupon, error) {
	session, err := database.GetStoreSession()
	if err != nil {
		return nil, err
	}

	couponID, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var code string
	err = session.Query(`SELECT code FROM coupons_by_id WHERE id = ?`, couponID).
		WithContext(ctx).Scan(&code)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.FindByCode(ctx, code)
}

func (s *ScyllaCouponStore) List(ctx context.Context) ([]models.Coupon, error) {
	session, err := database.GetStoreSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT ` + couponColumns + ` FROM coupons`).WithContext(ctx).Iter()

	var coupons []models.Coupon
	for {
		coupon, ok := scanCouponRow(iter)
		if !ok {
			break
		}
		coupons = append(coupons, *coupon)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return coupons, nil
}

func (s *ScyllaCouponStore) Insert(ctx context.Context, coupon *models.Coupon) error {
	session, err := database.GetStoreSession()
	if err != nil {
		return err
	}

	maxDiscount := 0.0
	if coupon.MaxDiscountValue != nil {
		maxDiscount = *coupon.MaxDiscountValue
	}
	usageLimit := 0
	if coupon.UsageLimit != nil {
		usageLimit = *coupon.UsageLimit
	}

	if err := session.Query(
		`INSERT INTO coupons (code, id, description, discount_type, discount_value,
			min_order_value, max_discount_value, start_date, expiry_date,
			usage_limit, used_count, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		coupon.Code, coupon.ID, coupon.Description, coupon.DiscountType, coupon.DiscountValue,
		coupon.MinOrderValue, maxDiscount, coupon.StartDate, coupon.ExpiryDate,
		usageLimit, coupon.UsedCount, coupon.IsActive, coupon.CreatedAt, coupon.UpdatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}

	return session.Query(`INSERT INTO coupons_by_id (id, code) VALUES (?, ?)`,
		coupon.ID, coupon.Code).WithContext(ctx).Exec()
}

func (s *ScyllaCouponStore) Update(ctx context.Context, coupon *models.Coupon) error {
	session, err := database.GetStoreSession()
	if err != nil {
		return err
	}

	maxDiscount := 0.0
	if coupon.MaxDiscountValue != nil {
		maxDiscount = *coupon.MaxDiscountValue
	}
	usageLimit := 0
	if coupon.UsageLimit != nil {
		usageLimit = *coupon.UsageLimit
	}

	return session.Query(
		`UPDATE coupons SET description = ?, discount_type = ?, discount_value = ?,
			min_order_value = ?, max_discount_value = ?, start_date = ?, expiry_date = ?,
			usage_limit = ?, is_active = ?, updated_at = ?
		 WHERE code = ?`,
		coupon.Description, coupon.DiscountType, coupon.DiscountValue,
		coupon.MinOrderValue, maxDiscount, coupon.StartDate, coupon.ExpiryDate,
		usageLimit, coupon.IsActive, coupon.UpdatedAt,
		coupon.Code,
	).WithContext(ctx).Exec()
}

func (s *ScyllaCouponStore) Delete(ctx context.Context, id string) error {
	session, err := database.GetStoreSession()
	if err != nil {
		return err
	}

	coupon, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := session.Query(`DELETE FROM coupons WHERE code = ?`, coupon.Code).
		WithContext(ctx).Exec(); err != nil {
		return err
	}
	return session.Query(`DELETE FROM coupons_by_id WHERE id = ?`, coupon.ID).
		WithContext(ctx).Exec()
}

func (s *ScyllaCouponStore) IncrementUsedCount(ctx context.Context, code string, expected int) (bool, error) {
	session, err := database.GetStoreSession()
	if err != nil {
		return false, err
	}

	// LWT : l'incrément ne passe que si personne n'est passé entre la lecture
	// et l'écriture — l'appelant relit et retente en cas d'échec.
	return session.Query(
		`UPDATE coupons SET used_count = ? WHERE code = ? IF used_count = ?`,
		expected+1, strings.ToUpper(strings.TrimSpace(code)), expected,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
}

func scanCoupon(query *gocql.Query) (*models.Coupon, error) {
	iter := query.Iter()
	coupon, ok := scanCouponRow(iter)
	if err := iter.Close(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return coupon, nil
}

func scanCouponRow(iter *gocql.Iter) (*models.Coupon, bool) {
	var coupon models.Coupon
	var maxDiscount float64
	var usageLimit int

	ok := iter.Scan(
		&coupon.Code, &coupon.ID, &coupon.Description, &coupon.DiscountType, &coupon.DiscountValue,
		&coupon.MinOrderValue, &maxDiscount, &coupon.StartDate, &coupon.ExpiryDate,
		&usageLimit, &coupon.UsedCount, &coupon.IsActive, &coupon.CreatedAt, &coupon.UpdatedAt,
	)
	if !ok {
		return nil, false
	}

	if maxDiscount > 0 {
		coupon.MaxDiscountValue = &maxDiscount
	}
	if usageLimit > 0 {
		coupon.UsageLimit = &usageLimit
	}
	return &coupon, true
}
