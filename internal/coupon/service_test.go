package coupon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gocql/gocql"

	"onrise_back_end/internal/models"
	"onrise_back_end/internal/store"
)

type fakeCouponStore struct {
	mu      sync.Mutex
	coupons map[string]*models.Coupon
}

func newFakeCouponStore(coupons ...*models.Coupon) *fakeCouponStore {
	s := &fakeCouponStore{coupons: make(map[string]*models.Coupon)}
	for _, c := range coupons {
		copied := *c
		s.coupons[c.Code] = &copied
	}
	return s
}

func (s *fakeCouponStore) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	coupon, ok := s.coupons[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *coupon
	return &copied, nil
}

func (s *fakeCouponStore) FindByID(_ context.Context, id string) (*models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, coupon := range s.coupons {
		if coupon.ID.String() == id {
			copied := *coupon
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeCouponStore) List(_ context.Context) ([]models.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Coupon
	for _, coupon := range s.coupons {
		out = append(out, *coupon)
	}
	return out, nil
}

func (s *fakeCouponStore) Insert(_ context.Context, coupon *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *coupon
	s.coupons[coupon.Code] = &copied
	return nil
}

func (s *fakeCouponStore) Update(_ context.Context, coupon *models.Coupon) error {
	return s.Insert(context.Background(), coupon)
}

func (s *fakeCouponStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for code, coupon := range s.coupons {
		if coupon.ID.String() == id {
			delete(s.coupons, code)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *fakeCouponStore) IncrementUsedCount(_ context.Context, code string, expected int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	coupon, ok := s.coupons[code]
	if !ok {
		return false, store.ErrNotFound
	}
	if coupon.UsedCount != expected {
		return false, nil
	}
	coupon.UsedCount++
	return true, nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func validCoupon(code string) *models.Coupon {
	now := time.Now()
	return &models.Coupon{
		ID:            gocql.TimeUUID(),
		Code:          code,
		DiscountType:  models.DiscountTypePercent,
		DiscountValue: 10,
		StartDate:     now.Add(-time.Hour),
		ExpiryDate:    now.Add(time.Hour),
		IsActive:      true,
	}
}

func TestEvaluatePercentWithCap(t *testing.T) {
	coupon := validCoupon("PROMO50")
	coupon.DiscountValue = 50
	coupon.MaxDiscountValue = floatPtr(20)
	service := NewService(newFakeCouponStore(coupon))

	result, err := service.Evaluate(context.Background(), "PROMO50", 100)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsValid {
		t.Fatalf("coupon refusé: %s", result.Reason)
	}
	if result.Discount != 20 {
		t.Errorf("réduction = %.2f, attendu 20 (plafonnée)", result.Discount)
	}
	if result.FinalTotal != 80 {
		t.Errorf("total final = %.2f, attendu 80", result.FinalTotal)
	}
}

func TestEvaluateFixedClampedToCartTotal(t *testing.T) {
	coupon := validCoupon("GROS500")
	coupon.DiscountType = models.DiscountTypeFixed
	coupon.DiscountValue = 500
	service := NewService(newFakeCouponStore(coupon))

	result, err := service.Evaluate(context.Background(), "GROS500", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsValid {
		t.Fatalf("coupon refusé: %s", result.Reason)
	}
	if result.Discount != 10 {
		t.Errorf("réduction = %.2f, attendu 10 (bornée au panier)", result.Discount)
	}
	if result.FinalTotal != 0 {
		t.Errorf("total final = %.2f, attendu 0", result.FinalTotal)
	}
}

func TestEvaluateExpiryBoundary(t *testing.T) {
	expired := validCoupon("FINI")
	expired.ExpiryDate = time.Now().Add(-time.Second)
	alive := validCoupon("ENCOURS")
	alive.ExpiryDate = time.Now().Add(time.Hour)
	service := NewService(newFakeCouponStore(expired, alive))

	result, err := service.Evaluate(context.Background(), "FINI", 100)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsValid || result.Reason != models.CouponReasonExpired {
		t.Errorf("attendu refus expired, obtenu valid=%v reason=%s", result.IsValid, result.Reason)
	}

	result, err = service.Evaluate(context.Background(), "ENCOURS", 100)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsValid {
		t.Errorf("coupon encore valide refusé: %s", result.Reason)
	}
}

func TestEvaluateRefusalReasons(t *testing.T) {
	now := time.Now()

	inactive := validCoupon("INACTIF")
	inactive.IsActive = false

	future := validCoupon("BIENTOT")
	future.StartDate = now.Add(time.Hour)

	exhausted := validCoupon("EPUISE")
	exhausted.UsageLimit = intPtr(5)
	exhausted.UsedCount = 5

	minimum := validCoupon("MINI")
	minimum.MinOrderValue = 50

	service := NewService(newFakeCouponStore(inactive, future, exhausted, minimum))

	cases := []struct {
		code      string
		cartTotal float64
		reason    string
	}{
		{"ABSENT", 100, models.CouponReasonNotFound},
		{"INACTIF", 100, models.CouponReasonInactive},
		{"BIENTOT", 100, models.CouponReasonNotYetActive},
		{"EPUISE", 100, models.CouponReasonLimitReached},
		{"MINI", 49.99, models.CouponReasonBelowMinimum},
	}

	for _, tc := range cases {
		result, err := service.Evaluate(context.Background(), tc.code, tc.cartTotal)
		if err != nil {
			t.Fatalf("%s: %v", tc.code, err)
		}
		if result.IsValid {
			t.Errorf("%s: accepté alors qu'attendu %s", tc.code, tc.reason)
			continue
		}
		if result.Reason != tc.reason {
			t.Errorf("%s: raison = %s, attendu %s", tc.code, result.Reason, tc.reason)
		}
	}
}

func TestEvaluateNormalizesCode(t *testing.T) {
	service := NewService(newFakeCouponStore(validCoupon("PROMO10")))

	result, err := service.Evaluate(context.Background(), "  promo10 ", 100)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsValid {
		t.Fatalf("code non normalisé refusé: %s", result.Reason)
	}
	if result.Code != "PROMO10" {
		t.Errorf("code retourné = %s, attendu PROMO10", result.Code)
	}
}

func TestEvaluateNeverMutatesUsedCount(t *testing.T) {
	coupon := validCoupon("LECTURE")
	coupon.UsageLimit = intPtr(10)
	coupon.UsedCount = 3
	fake := newFakeCouponStore(coupon)
	service := NewService(fake)

	for i := 0; i < 5; i++ {
		if _, err := service.Evaluate(context.Background(), "LECTURE", 100); err != nil {
			t.Fatal(err)
		}
	}

	stored, _ := fake.FindByCode(context.Background(), "LECTURE")
	if stored.UsedCount != 3 {
		t.Errorf("used_count = %d après Evaluate, attendu 3 (aucune mutation)", stored.UsedCount)
	}
}

func TestMarkUsedIncrementsByOne(t *testing.T) {
	coupon := validCoupon("COMPTE")
	coupon.UsageLimit = intPtr(2)
	fake := newFakeCouponStore(coupon)
	service := NewService(fake)

	service.MarkUsed(context.Background(), "COMPTE")
	stored, _ := fake.FindByCode(context.Background(), "COMPTE")
	if stored.UsedCount != 1 {
		t.Fatalf("used_count = %d, attendu 1", stored.UsedCount)
	}

	service.MarkUsed(context.Background(), "COMPTE")
	stored, _ = fake.FindByCode(context.Background(), "COMPTE")
	if stored.UsedCount != 2 {
		t.Fatalf("used_count = %d, attendu 2", stored.UsedCount)
	}

	// À la limite, MarkUsed devient un no-op silencieux
	service.MarkUsed(context.Background(), "COMPTE")
	stored, _ = fake.FindByCode(context.Background(), "COMPTE")
	if stored.UsedCount != 2 {
		t.Errorf("used_count = %d après la limite, attendu 2", stored.UsedCount)
	}
}

func TestMarkUsedMissingCouponIsNoOp(t *testing.T) {
	service := NewService(newFakeCouponStore())
	// Ne doit ni paniquer ni remonter d'erreur
	service.MarkUsed(context.Background(), "DISPARU")
}

func TestEvaluatePercentRoundsToCents(t *testing.T) {
	coupon := validCoupon("DIX")
	service := NewService(newFakeCouponStore(coupon))

	// 10% de 33.33 donne 3.333 en flottant brut : la réduction et le total
	// final doivent sortir arrondis au centime
	result, err := service.Evaluate(context.Background(), "DIX", 33.33)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsValid {
		t.Fatalf("coupon refusé: %s", result.Reason)
	}
	if result.Discount != 3.33 {
		t.Errorf("réduction = %v, attendu 3.33", result.Discount)
	}
	if result.FinalTotal != 30 {
		t.Errorf("total final = %v, attendu 30", result.FinalTotal)
	}
}
