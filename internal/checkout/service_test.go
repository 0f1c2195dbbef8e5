package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"onrise_back_end/internal/models"
	"onrise_back_end/internal/payment"
	"onrise_back_end/internal/store"
)

// --- Faux collaborateurs ---

type fakeProvider struct {
	mu            sync.Mutex
	sessionID     string
	createErr     error
	lastBreakdown payment.OrderBreakdown
	capture       *payment.Capture
	captureErr    error
	captureCalls  int
}

func (p *fakeProvider) CreateOrder(_ context.Context, breakdown payment.OrderBreakdown, _ models.Customer) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastBreakdown = breakdown
	if p.createErr != nil {
		return "", p.createErr
	}
	return p.sessionID, nil
}

func (p *fakeProvider) CaptureOrder(_ context.Context, _ string) (*payment.Capture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.captureCalls++
	if p.captureErr != nil {
		return nil, p.captureErr
	}
	capture := *p.capture
	return &capture, nil
}

type fakeOrderStore struct {
	mu        sync.Mutex
	bySession map[string]*models.Order
	insertErr error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{bySession: make(map[string]*models.Order)}
}

func (s *fakeOrderStore) InsertIfAbsent(_ context.Context, order *models.Order) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return false, s.insertErr
	}
	if _, ok := s.bySession[order.SessionID]; ok {
		return false, nil
	}
	copied := *order
	s.bySession[order.SessionID] = &copied
	return true, nil
}

func (s *fakeOrderStore) FindBySessionID(_ context.Context, sessionID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.bySession[sessionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *fakeOrderStore) FindByID(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.bySession {
		if order.ID.String() == id {
			copied := *order
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeOrderStore) FindByCustomerEmail(_ context.Context, email string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, order := range s.bySession {
		if order.Customer.Email == email {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) List(_ context.Context, _, _ int) ([]models.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, order := range s.bySession {
		out = append(out, *order)
	}
	return out, len(out), nil
}

func (s *fakeOrderStore) UpdateFields(_ context.Context, _ string, _ map[string]interface{}) error {
	return nil
}

func (s *fakeOrderStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bySession)
}

type fakeMarker struct {
	mu    sync.Mutex
	codes []string
}

func (m *fakeMarker) MarkUsed(_ context.Context, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, code)
}

func (m *fakeMarker) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.codes...)
}

type fakeNotifier struct {
	ch chan models.Order
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan models.Order, 4)}
}

func (n *fakeNotifier) SendOrderEmails(order models.Order) {
	n.ch <- order
}

// --- Fixtures ---

func paidCapture() *payment.Capture {
	return &payment.Capture{
		Status:    models.PaymentStatusPaid,
		Amount:    32.48, // 30.00 + 8.25% de taxe
		Currency:  "usd",
		CaptureID: "pi_123",
		PayerID:   "cus_123",
		Payer: models.Customer{
			FullName:     "Jean Dupont",
			Email:        "jean@example.com",
			Phone:        "+32400000000",
			AddressLine1: "1 rue du Marché",
			City:         "Bruxelles",
			State:        "BXL",
			PostalCode:   "1000",
			Country:      "BE",
		},
	}
}

func cartItems() []models.CartItem {
	return []models.CartItem{
		{
			ProductID: "p1",
			Name:      "Lampe",
			ColorName: "Noir",
			Attributes: []models.AttributeSelection{
				{Name: "Taille", Value: "L"},
			},
			Quantity:  2,
			UnitPrice: 10,
		},
		{ProductID: "p2", Name: "Vase", Quantity: 1, UnitPrice: 10},
	}
}

func testCustomer() models.Customer {
	return models.Customer{
		FullName:     "Jean Dupont",
		Email:        "jean@example.com",
		AddressLine1: "1 rue du Marché",
		City:         "Bruxelles",
		PostalCode:   "1000",
		Country:      "BE",
	}
}

func newTestService(provider *fakeProvider, orders *fakeOrderStore) (*Service, *fakeMarker, *fakeNotifier) {
	marker := &fakeMarker{}
	notifier := newFakeNotifier()
	return NewService(provider, orders, marker, notifier), marker, notifier
}

// --- CreateSession ---

func TestCreateSessionRejectsEmptyCart(t *testing.T) {
	service, _, _ := newTestService(&fakeProvider{sessionID: "cs_1"}, newFakeOrderStore())

	_, err := service.CreateSession(context.Background(), nil, testCustomer())
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("erreur = %v, attendu ErrInvalidRequest", err)
	}
}

func TestCreateSessionRejectsMissingEmail(t *testing.T) {
	service, _, _ := newTestService(&fakeProvider{sessionID: "cs_1"}, newFakeOrderStore())

	customer := testCustomer()
	customer.Email = ""
	_, err := service.CreateSession(context.Background(), cartItems(), customer)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("erreur = %v, attendu ErrInvalidRequest", err)
	}
}

func TestCreateSessionComputesBreakdownServerSide(t *testing.T) {
	provider := &fakeProvider{sessionID: "cs_1"}
	service, _, _ := newTestService(provider, newFakeOrderStore())

	sessionID, err := service.CreateSession(context.Background(), cartItems(), testCustomer())
	if err != nil {
		t.Fatal(err)
	}
	if sessionID != "cs_1" {
		t.Errorf("sessionID = %s, attendu cs_1", sessionID)
	}
	if provider.lastBreakdown.Subtotal != 30 {
		t.Errorf("sous-total = %.2f, attendu 30.00", provider.lastBreakdown.Subtotal)
	}
	if provider.lastBreakdown.Tax != 2.48 {
		t.Errorf("taxe = %.2f, attendu 2.48 (8.25%%)", provider.lastBreakdown.Tax)
	}
	if provider.lastBreakdown.Shipping != 0 {
		t.Errorf("expédition = %.2f, attendu 0", provider.lastBreakdown.Shipping)
	}
}

// --- ConfirmOrder ---

func TestConfirmOrderIdempotent(t *testing.T) {
	provider := &fakeProvider{capture: paidCapture()}
	orders := newFakeOrderStore()
	service, _, _ := newTestService(provider, orders)

	first, alreadyExisted, err := service.ConfirmOrder(context.Background(), "cs_1", cartItems(), testCustomer(), "")
	if err != nil {
		t.Fatal(err)
	}
	if alreadyExisted {
		t.Error("première confirmation marquée alreadyExisted")
	}

	second, alreadyExisted, err := service.ConfirmOrder(context.Background(), "cs_1", cartItems(), testCustomer(), "")
	if err != nil {
		t.Fatal(err)
	}
	if !alreadyExisted {
		t.Error("seconde confirmation non marquée alreadyExisted")
	}
	if first.ID != second.ID {
		t.Errorf("ids différents: %s vs %s", first.ID, second.ID)
	}
	if orders.count() != 1 {
		t.Errorf("%d commandes persistées, attendu 1", orders.count())
	}
	if provider.captureCalls != 1 {
		t.Errorf("capture appelée %d fois, attendu 1", provider.captureCalls)
	}
}

func TestConfirmOrderRecomputesPricing(t *testing.T) {
	provider := &fakeProvider{capture: paidCapture()}
	service, _, _ := newTestService(provider, newFakeOrderStore())

	order, _, err := service.ConfirmOrder(context.Background(), "cs_1", cartItems(), testCustomer(), "")
	if err != nil {
		t.Fatal(err)
	}

	if order.Subtotal != 30 {
		t.Errorf("sous-total = %.2f, attendu 30.00", order.Subtotal)
	}
	if order.Tax != 2.48 {
		t.Errorf("taxe = %.2f, attendu 2.48", order.Tax)
	}
	if order.Total != 32.48 {
		t.Errorf("total = %.2f, attendu 32.48", order.Total)
	}
	for _, item := range order.Items {
		expected := item.UnitPrice * float64(item.Quantity)
		if item.LineTotal != expected {
			t.Errorf("ligne %s: total = %.2f, attendu %.2f", item.ProductID, item.LineTotal, expected)
		}
	}
	if order.Currency != "usd" {
		t.Errorf("devise = %s, attendu usd (issue de la capture)", order.Currency)
	}
	if order.PaymentStatus != models.PaymentStatusPaid || order.OrderStatus != models.OrderStatusProcessing {
		t.Errorf("statuts = %s/%s, attendu paid/processing", order.PaymentStatus, order.OrderStatus)
	}
}

func TestConfirmOrderAmountMismatchFailOpen(t *testing.T) {
	capture := paidCapture()
	capture.Amount = 999.99 // écart énorme : on trace mais on n'abandonne pas
	provider := &fakeProvider{capture: capture}
	orders := newFakeOrderStore()
	service, _, _ := newTestService(provider, orders)

	order, _, err := service.ConfirmOrder(context.Background(), "cs_1", cartItems(), testCustomer(), "")
	if err != nil {
		t.Fatalf("échec malgré la politique fail-open: %v", err)
	}
	if order.Total != 32.48 {
		t.Errorf("total = %.2f, attendu le montant recalculé 32.48", order.Total)
	}
	if orders.count() != 1 {
		t.Errorf("%d commandes, attendu 1", orders.count())
	}
}

func TestConfirmOrderPaymentNotCompleted(t *testing.T) {
	capture := paidCapture()
	capture.Status = "unpaid"
	orders := newFakeOrderStore()
	service, marker, _ := newTestService(&fakeProvider{capture: capture}, orders)

	_, _, err := service.ConfirmOrder(context.Background(), "cs_1", cartItems(), testCustomer(), "PROMO10")
	if !errors.Is(err, ErrPaymentNotCompleted) {
		t.Errorf("erreur = %v, attendu ErrPaymentNotCompleted", err)
	}
	if orders.count() != 0 {
		t.Errorf("%d commandes persistées, attendu 0", orders.count())
	}
	if len(marker.calls()) != 0 {
		t.Error("coupon consommé alors qu'aucune commande n'a été créée")
	}
}

func TestConfirmOrderCaptureFailure(t *testing.T) {
	orders := newFakeOrderStore()
	service, _, _ := newTestService(&fakeProvider{captureErr: errors.New("prestataire indisponible")}, orders)

	_, _, err := service.ConfirmOrder(context.Background(), "cs_1", cartItems(), testCustomer(), "")
	if !errors.Is(err, ErrConfirmationFailed) {
		t.Errorf("erreur = %v, attendu ErrConfirmationFailed", err)
	}
	if orders.count() != 0 {
		t.Errorf("%d commandes persistées, attendu 0", orders.count())
	}
}

func TestConfirmOrderPersistFailureDoesNotConsumeCoupon(t *testing.T) {
	orders := newFakeOrderStore()
	orders.insertErr = errors.New("écriture refusée")
	service, marker, _ := newTestService(&fakeProvider{capture: paidCapture()}, orders)

	_, _, err := service.ConfirmOrder(context.Background(), "cs_1", cartItems(), testCustomer(), "PROMO10")
	if !errors.Is(err, ErrConfirmationFailed) {
		t.Errorf("erreur = %v, attendu ErrConfirmationFailed", err)
	}
	if len(marker.calls()) != 0 {
		t.Error("coupon consommé malgré l'échec de persistance")
	}
}

func TestConfirmOrderCustomerMergeFallback(t *testing.T) {
	provider := &fakeProvider{capture: paidCapture()}
	service, _, _ := newTestService(provider, newFakeOrderStore())

	// Le client n'a soumis que son nom : le reste vient du payeur rapporté
	partial := models.Customer{FullName: "J. Dupont"}
	order, _, err := service.ConfirmOrder(context.Background(), "cs_1", cartItems(), partial, "")
	if err != nil {
		t.Fatal(err)
	}

	if order.Customer.FullName != "J. Dupont" {
		t.Errorf("nom = %s, le champ client doit primer", order.Customer.FullName)
	}
	if order.Customer.Email != "jean@example.com" {
		t.Errorf("e-mail = %s, attendu le repli prestataire", order.Customer.Email)
	}
	if order.Customer.City != "Bruxelles" || order.Customer.Country != "BE" {
		t.Errorf("adresse incomplète après fusion: %+v", order.Customer)
	}
}

func TestConfirmOrderMarksCouponAfterPersist(t *testing.T) {
	service, marker, _ := newTestService(&fakeProvider{capture: paidCapture()}, newFakeOrderStore())

	order, _, err := service.ConfirmOrder(context.Background(), "cs_1", cartItems(), testCustomer(), " promo10 ")
	if err != nil {
		t.Fatal(err)
	}
	if order.CouponCode != "PROMO10" {
		t.Errorf("code coupon = %s, attendu PROMO10 (normalisé)", order.CouponCode)
	}
	calls := marker.calls()
	if len(calls) != 1 || calls[0] != "PROMO10" {
		t.Errorf("MarkUsed appelé avec %v, attendu [PROMO10]", calls)
	}
}

func TestConfirmOrderDispatchesNotification(t *testing.T) {
	service, _, notifier := newTestService(&fakeProvider{capture: paidCapture()}, newFakeOrderStore())

	order, _, err := service.ConfirmOrder(context.Background(), "cs_1", cartItems(), testCustomer(), "")
	if err != nil {
		t.Fatal(err)
	}

	select {
	case notified := <-notifier.ch:
		if notified.ID != order.ID {
			t.Errorf("notification pour %s, attendu %s", notified.ID, order.ID)
		}
	case <-time.After(2 * time.Second):
		t.Error("aucune notification envoyée")
	}
}

func TestConfirmOrderConcurrentRace(t *testing.T) {
	provider := &fakeProvider{capture: paidCapture()}
	orders := newFakeOrderStore()
	service, _, _ := newTestService(provider, orders)

	type result struct {
		order *models.Order
		err   error
	}

	start := make(chan struct{})
	results := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			order, _, err := service.ConfirmOrder(context.Background(), "cs_race", cartItems(), testCustomer(), "")
			results <- result{order: order, err: err}
		}()
	}
	close(start)

	first := <-results
	second := <-results
	if first.err != nil || second.err != nil {
		t.Fatalf("erreurs: %v / %v", first.err, second.err)
	}
	if first.order.ID != second.order.ID {
		t.Errorf("les deux appels doivent voir la même commande: %s vs %s",
			first.order.ID, second.order.ID)
	}
	if orders.count() != 1 {
		t.Errorf("%d commandes persistées, attendu exactement 1", orders.count())
	}
}
