package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pcforge-backend/internal/store"
	"github.com/angelmondragon/pcforge-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pcforge-backend/pkg/errors"
	"github.com/angelmondragon/pcforge-backend/pkg/logger"
)

type productLookup interface {
	ProductByID(ctx context.Context, id int64) (models.Product, error)
}

// LineItem is a cart row joined with its product at read time.
type LineItem struct {
	models.CartItem
	Product models.Product `json:"product"`
}

// Subtotal is price times quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Summary is what the cart page renders: the lines plus priced totals.
type Summary struct {
	Items  []LineItem `json:"items"`
	Totals Totals     `json:"totals"`
}

// Service manages a per-session collection of (product, quantity) rows.
// A session never sees or mutates another session's rows.
type Service interface {
	AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (models.CartItem, bool, error)
	SetQuantity(ctx context.Context, sessionID string, itemID int64, quantity int) (models.CartItem, error)
	RemoveItem(ctx context.Context, sessionID string, itemID int64) (bool, error)
	ListItems(ctx context.Context, sessionID string) ([]LineItem, error)
	Clear(ctx context.Context, sessionID string) error
	Total(ctx context.Context, sessionID string) (decimal.Decimal, error)
	Summary(ctx context.Context, sessionID string) (Summary, error)
	TakeSummary(ctx context.Context, sessionID string) (Summary, error)
	Pricing() Pricing
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Store   *store.Store
	Catalog productLookup
	Pricing *Pricing
	Logger  *logger.Logger
}

type service struct {
	items   store.Collection[models.CartItem]
	catalog productLookup
	pricing Pricing
	logg    *logger.Logger
	locks   *sessionLocks
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	pricing := DefaultPricing()
	if params.Pricing != nil {
		pricing = *params.Pricing
	}
	return &service{
		items:   params.Store.CartItems,
		catalog: params.Catalog,
		pricing: pricing,
		logg:    params.Logger,
		locks:   newSessionLocks(),
	}, nil
}

func (s *service) Pricing() Pricing {
	return s.pricing
}

// AddItem adds quantity of a product to the session's cart. When the product
// is already in the cart the quantities are merged; created reports whether a
// new row was inserted.
func (s *service) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (models.CartItem, bool, error) {
	if err := validateSession(sessionID); err != nil {
		return models.CartItem{}, false, err
	}
	if quantity < 1 {
		return models.CartItem{}, false, invalidQuantity()
	}
	if _, err := s.catalog.ProductByID(ctx, productID); err != nil {
		return models.CartItem{}, false, err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	existing, err := s.findByProduct(ctx, sessionID, productID)
	if err != nil {
		return models.CartItem{}, false, err
	}
	if existing != nil {
		updated, err := s.items.Update(ctx, existing.ID, func(ci *models.CartItem) {
			ci.Quantity += quantity
		})
		if err != nil {
			return models.CartItem{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merge cart item")
		}
		return updated, false, nil
	}

	created, err := s.items.Create(ctx, models.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		SessionID: sessionID,
	})
	if err != nil {
		return models.CartItem{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart item")
	}
	return created, true, nil
}

func (s *service) SetQuantity(ctx context.Context, sessionID string, itemID int64, quantity int) (models.CartItem, error) {
	if err := validateSession(sessionID); err != nil {
		return models.CartItem{}, err
	}
	if quantity < 1 {
		return models.CartItem{}, invalidQuantity()
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	if _, err := s.owned(ctx, sessionID, itemID); err != nil {
		return models.CartItem{}, err
	}
	updated, err := s.items.Update(ctx, itemID, func(ci *models.CartItem) {
		ci.Quantity = quantity
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.CartItem{}, itemNotFound()
		}
		return models.CartItem{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	return updated, nil
}

// RemoveItem deletes a row. Unknown ids, and rows owned by other sessions,
// report false without an error.
func (s *service) RemoveItem(ctx context.Context, sessionID string, itemID int64) (bool, error) {
	if err := validateSession(sessionID); err != nil {
		return false, err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	if _, err := s.owned(ctx, sessionID, itemID); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return false, nil
		}
		return false, err
	}
	removed, err := s.items.Delete(ctx, itemID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
	}
	return removed, nil
}

// ListItems joins the session's rows with their products. Rows whose product
// no longer resolves are skipped.
func (s *service) ListItems(ctx context.Context, sessionID string) ([]LineItem, error) {
	if err := validateSession(sessionID); err != nil {
		return nil, err
	}
	rows, err := s.sessionRows(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out := make([]LineItem, 0, len(rows))
	for _, row := range rows {
		product, err := s.catalog.ProductByID(ctx, row.ProductID)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
					"cart_item_id": row.ID,
					"product_id":   row.ProductID,
				}), "cart.item_product_missing")
				continue
			}
			return nil, err
		}
		out = append(out, LineItem{CartItem: row, Product: product})
	}
	return out, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := validateSession(sessionID); err != nil {
		return err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	rows, err := s.sessionRows(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := s.items.Delete(ctx, row.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
	}
	return nil
}

func (s *service) Total(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	items, err := s.ListItems(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	return subtotal(items), nil
}

func (s *service) Summary(ctx context.Context, sessionID string) (Summary, error) {
	items, err := s.ListItems(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Items:  items,
		Totals: s.pricing.Totals(subtotal(items), itemCount(items)),
	}, nil
}

// TakeSummary prices the session's cart and deletes its rows under the
// session lock, so no add can land between the snapshot and the clear. An
// empty cart is returned as is.
func (s *service) TakeSummary(ctx context.Context, sessionID string) (Summary, error) {
	if err := validateSession(sessionID); err != nil {
		return Summary{}, err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	items, err := s.ListItems(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	rows, err := s.sessionRows(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	for _, row := range rows {
		if _, err := s.items.Delete(ctx, row.ID); err != nil {
			return Summary{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
	}
	return Summary{
		Items:  items,
		Totals: s.pricing.Totals(subtotal(items), itemCount(items)),
	}, nil
}

func (s *service) sessionRows(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	rows, err := s.items.List(ctx, store.Where("session_id", sessionID, func(ci *models.CartItem) bool {
		return ci.SessionID == sessionID
	}))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}
	return rows, nil
}

func (s *service) findByProduct(ctx context.Context, sessionID string, productID int64) (*models.CartItem, error) {
	rows, err := s.items.List(ctx,
		store.Where("session_id", sessionID, func(ci *models.CartItem) bool { return ci.SessionID == sessionID }),
		store.Where("product_id", productID, func(ci *models.CartItem) bool { return ci.ProductID == productID }),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cart item")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *service) owned(ctx context.Context, sessionID string, itemID int64) (models.CartItem, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.CartItem{}, itemNotFound()
		}
		return models.CartItem{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup cart item")
	}
	if item.SessionID != sessionID {
		return models.CartItem{}, itemNotFound()
	}
	return item, nil
}

func subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func itemCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

func validateSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}

func invalidQuantity() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
		WithDetails(map[string]any{"quantity": "must be at least 1"})
}

func itemNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}
