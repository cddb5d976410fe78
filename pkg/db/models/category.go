package models

// Category groups products on the storefront (processors, graphics cards, ...).
type Category struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;not null" json:"name"`
	Slug string `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Icon string `gorm:"column:icon;not null;default:''" json:"icon"`
}

func (c *Category) GetID() int64   { return c.ID }
func (c *Category) SetID(id int64) { c.ID = id }
