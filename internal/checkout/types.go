package checkout

import (
	"time"

	"github.com/angelmondragon/pcforge-backend/internal/cart"
)

// ShippingInfo is where the order ships.
type ShippingInfo struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Address   string `json:"address" validate:"required,max=200"`
	City      string `json:"city" validate:"required,max=100"`
	State     string `json:"state" validate:"required,max=100"`
	ZipCode   string `json:"zip_code" validate:"required,max=20"`
	Country   string `json:"country,omitempty" validate:"omitempty,max=100"`
	Phone     string `json:"phone" validate:"required,max=30"`
}

// PaymentInfo is collected for shape only. It is never authorized, stored or
// logged; only the masked card number survives Finalize.
type PaymentInfo struct {
	CardName   string `json:"card_name" validate:"required,max=100"`
	CardNumber string `json:"card_number" validate:"required,max=32"`
	ExpiryDate string `json:"expiry_date" validate:"required,len=5"`
	CVV        string `json:"cvv" validate:"required,numeric,min=3,max=4"`
}

// Request is the checkout body.
type Request struct {
	Shipping ShippingInfo `json:"shipping"`
	Payment  PaymentInfo  `json:"payment"`
}

// Order is the confirmation returned after a successful checkout.
type Order struct {
	OrderID    string      `json:"order_id"`
	Message    string      `json:"message"`
	Totals     cart.Totals `json:"totals"`
	ItemCount  int         `json:"item_count"`
	MaskedCard string      `json:"masked_card"`
	PlacedAt   time.Time   `json:"placed_at"`
}
