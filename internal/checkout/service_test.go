package checkout

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/pcforge-backend/internal/cart"
	"github.com/angelmondragon/pcforge-backend/internal/catalog"
	"github.com/angelmondragon/pcforge-backend/internal/store"
	pkgerrors "github.com/angelmondragon/pcforge-backend/pkg/errors"
	"github.com/angelmondragon/pcforge-backend/pkg/logger"
)

type recordingPublisher struct {
	events []OrderPlaced
	err    error
}

func (r *recordingPublisher) PublishOrderPlaced(_ context.Context, event OrderPlaced) error {
	r.events = append(r.events, event)
	return r.err
}

func newCart(t *testing.T) cart.Service {
	t.Helper()
	st := store.NewMemory()
	seed, err := catalog.LoadSeed("")
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if _, err := catalog.Seed(context.Background(), st, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cat, err := catalog.NewService(st)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	svc, err := cart.NewService(cart.ServiceParams{Store: st, Catalog: cat, Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	return svc
}

func validShipping() ShippingInfo {
	return ShippingInfo{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Address:   "1 Analytical Way",
		City:      "London",
		State:     "LDN",
		ZipCode:   "12345",
		Phone:     "555-0100",
	}
}

func validPayment() PaymentInfo {
	return PaymentInfo{
		CardName:   "Ada Lovelace",
		CardNumber: "4242 4242 4242 4242",
		ExpiryDate: "12/29",
		CVV:        "123",
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error without cart")
	}
	if _, err := NewService(ServiceParams{Cart: newCart(t)}); err == nil {
		t.Fatal("expected error without logger")
	}
}

func TestFinalizeEmptyCart(t *testing.T) {
	svc, err := NewService(ServiceParams{Cart: newCart(t), Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.Finalize(context.Background(), "sess-a", validShipping(), validPayment())
	if !pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart) {
		t.Fatalf("expected empty cart error, got %v", err)
	}
	if pkgerrors.MetadataFor(pkgerrors.CodeEmptyCart).HTTPStatus != 400 {
		t.Fatal("empty cart must map to 400")
	}
}

func TestFinalizePlacesOrder(t *testing.T) {
	carts := newCart(t)
	pub := &recordingPublisher{}
	svc, err := NewService(ServiceParams{Cart: carts, Publisher: pub, Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	if _, _, err := carts.AddItem(ctx, "sess-a", 6, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := carts.AddItem(ctx, "sess-b", 1, 1); err != nil {
		t.Fatalf("add other: %v", err)
	}

	order, err := svc.Finalize(ctx, "sess-a", validShipping(), validPayment())
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if !regexp.MustCompile(`^ORD-\d+-[0-9a-f]{6}$`).MatchString(order.OrderID) {
		t.Fatalf("unexpected order id %q", order.OrderID)
	}
	if order.Message != "Order placed successfully" || order.ItemCount != 1 {
		t.Fatalf("unexpected order %+v", order)
	}
	// 129.99 + 13.00 tax, free shipping over 100.
	if order.Totals.Total.StringFixed(2) != "142.99" || !order.Totals.Shipping.IsZero() {
		t.Fatalf("unexpected totals %+v", order.Totals)
	}
	if order.MaskedCard != "**** **** **** 4242" {
		t.Fatalf("unexpected masked card %q", order.MaskedCard)
	}

	remaining, _ := carts.ListItems(ctx, "sess-a")
	if len(remaining) != 0 {
		t.Fatalf("expected cart cleared, got %+v", remaining)
	}
	other, _ := carts.ListItems(ctx, "sess-b")
	if len(other) != 1 {
		t.Fatal("other sessions must keep their carts")
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected one event, got %d", len(pub.events))
	}
	event := pub.events[0]
	if event.OrderID != order.OrderID || event.MaskedCard != "**** **** **** 4242" || len(event.Lines) != 1 {
		t.Fatalf("unexpected event %+v", event)
	}
	if strings.Contains(event.MaskedCard, "4242 4242") {
		t.Fatal("event must not carry the full card number")
	}
}

func TestFinalizeSurvivesPublishFailure(t *testing.T) {
	carts := newCart(t)
	svc, _ := NewService(ServiceParams{Cart: carts, Publisher: &recordingPublisher{err: errors.New("broker down")}, Logger: logger.Nop()})
	ctx := context.Background()
	_, _, _ = carts.AddItem(ctx, "sess-a", 1, 2)

	if _, err := svc.Finalize(ctx, "sess-a", validShipping(), validPayment()); err != nil {
		t.Fatalf("publish failure must not fail checkout: %v", err)
	}
}

func TestFinalizeConcurrentOrdersForOneCart(t *testing.T) {
	carts := newCart(t)
	svc, err := NewService(ServiceParams{Cart: carts, Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	if _, _, err := carts.AddItem(ctx, "sess-a", 1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	const attempts = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		placed int
		empty  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Finalize(ctx, "sess-a", validShipping(), validPayment())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart):
				empty++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if placed != 1 || empty != attempts-1 {
		t.Fatalf("expected exactly one order, placed=%d empty=%d", placed, empty)
	}
}

func TestFinalizeValidation(t *testing.T) {
	svc, _ := NewService(ServiceParams{Cart: newCart(t), Logger: logger.Nop()})

	shipping := validShipping()
	shipping.Email = "not-an-email"
	shipping.City = ""
	payment := validPayment()
	payment.CardNumber = "1234"
	payment.ExpiryDate = "13/29"
	payment.CVV = "12a"

	_, err := svc.Finalize(context.Background(), "sess-a", shipping, payment)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, _ := pkgerrors.As(err).Details().(map[string]string)
	for _, field := range []string{"shipping.email", "shipping.city", "payment.card_number", "payment.expiry_date", "payment.cvv"} {
		if details[field] == "" {
			t.Fatalf("expected detail for %s, got %v", field, details)
		}
	}
}

func TestFinalizeAcceptsDashedCardNumbers(t *testing.T) {
	carts := newCart(t)
	svc, _ := NewService(ServiceParams{Cart: carts, Logger: logger.Nop()})
	ctx := context.Background()
	_, _, _ = carts.AddItem(ctx, "sess-a", 1, 1)

	payment := validPayment()
	payment.CardNumber = "4000-0566-5566-5556"
	order, err := svc.Finalize(ctx, "sess-a", validShipping(), payment)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if order.MaskedCard != "**** **** **** 5556" {
		t.Fatalf("unexpected masked card %q", order.MaskedCard)
	}
}

func TestNewOrderID(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	id, err := newOrderID(at)
	if err != nil {
		t.Fatalf("order id: %v", err)
	}
	if !strings.HasPrefix(id, "ORD-1700000000123-") || len(id) != len("ORD-1700000000123-")+6 {
		t.Fatalf("unexpected id %q", id)
	}
}
