// Package checkout finalizes a session's cart into a mock order. No payment is
// authorized; the cart is priced, cleared and acknowledged with an order id.
package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pcforge-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/pcforge-backend/pkg/errors"
	"github.com/angelmondragon/pcforge-backend/pkg/logger"
	"github.com/angelmondragon/pcforge-backend/pkg/metrics"
	"github.com/angelmondragon/pcforge-backend/pkg/security"
)

const successMessage = "Order placed successfully"

type cartService interface {
	TakeSummary(ctx context.Context, sessionID string) (cart.Summary, error)
}

// Service places orders.
type Service interface {
	Finalize(ctx context.Context, sessionID string, shipping ShippingInfo, payment PaymentInfo) (Order, error)
}

// ServiceParams groups dependencies for checkout. Publisher and Metrics are
// optional.
type ServiceParams struct {
	Cart      cartService
	Publisher EventPublisher
	Metrics   *metrics.CheckoutMetrics
	Logger    *logger.Logger
}

type service struct {
	cart      cartService
	publisher EventPublisher
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
	now       func() time.Time
	orderID   func(time.Time) (string, error)
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart service is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		cart:      params.Cart,
		publisher: params.Publisher,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       time.Now,
		orderID:   newOrderID,
	}, nil
}

func (s *service) Finalize(ctx context.Context, sessionID string, shipping ShippingInfo, payment PaymentInfo) (Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := validateRequest(Request{Shipping: shipping, Payment: payment}); err != nil {
		return Order{}, err
	}

	placedAt := s.now().UTC()
	orderID, err := s.orderID(placedAt)
	if err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order id")
	}

	summary, err := s.cart.TakeSummary(ctx, sessionID)
	if err != nil {
		return Order{}, err
	}
	if len(summary.Items) == 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	masked := security.MaskCardNumber(payment.CardNumber)
	order := Order{
		OrderID:    orderID,
		Message:    successMessage,
		Totals:     summary.Totals,
		ItemCount:  summary.Totals.ItemCount,
		MaskedCard: masked,
		PlacedAt:   placedAt,
	}

	s.metrics.ObserveOrder(summary.Totals.Total)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":    orderID,
		"item_count":  order.ItemCount,
		"total":       summary.Totals.Total.StringFixed(2),
		"masked_card": masked,
	})
	s.logg.Info(logCtx, "checkout.order_placed")

	s.publish(logCtx, OrderPlaced{
		OrderID:    orderID,
		SessionID:  sessionID,
		Email:      strings.TrimSpace(shipping.Email),
		Totals:     summary.Totals,
		Lines:      orderLines(summary.Items),
		MaskedCard: masked,
		PlacedAt:   placedAt,
	})

	return order, nil
}

// publish never fails the checkout.
func (s *service) publish(ctx context.Context, event OrderPlaced) {
	if s.publisher == nil {
		s.metrics.IncEvent("skipped")
		return
	}
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.metrics.IncEvent("failed")
		s.logg.Error(ctx, "checkout.order_event_failed", err)
		return
	}
	s.metrics.IncEvent("published")
}

func orderLines(items []cart.LineItem) []OrderLine {
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLine{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price.StringFixed(2),
		})
	}
	return lines
}

// newOrderID returns ORD-<unix millis>-<6 hex>.
func newOrderID(at time.Time) (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%d-%s", at.UnixMilli(), hex.EncodeToString(buf)), nil
}
