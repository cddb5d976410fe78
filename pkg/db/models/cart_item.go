package models

// CartItem is one (product, quantity) line in a session's cart. A session holds
// at most one row per product.
type CartItem struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"column:product_id;not null;uniqueIndex:idx_cart_items_session_product" json:"product_id"`
	Quantity  int    `gorm:"column:quantity;not null" json:"quantity"`
	SessionID string `gorm:"column:session_id;not null;uniqueIndex:idx_cart_items_session_product" json:"session_id"`
}

func (c *CartItem) GetID() int64   { return c.ID }
func (c *CartItem) SetID(id int64) { c.ID = id }
