package models

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pcforge-backend/pkg/enums"
	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

// Product is a sellable PC component.
type Product struct {
	ID             int64                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name           string               `gorm:"column:name;not null" json:"name"`
	Description    string               `gorm:"column:description;not null;default:''" json:"description"`
	Price          decimal.Decimal      `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Image          string               `gorm:"column:image;not null;default:''" json:"image"`
	CategoryID     int64                `gorm:"column:category_id;not null;index" json:"category_id"`
	Stock          int                  `gorm:"column:stock;not null;default:0" json:"stock"`
	Specifications types.Specifications `gorm:"column:specifications;type:jsonb" json:"specifications"`
	Featured       bool                 `gorm:"column:featured;not null;default:false" json:"featured"`
	Rating         decimal.Decimal      `gorm:"column:rating;type:numeric(2,1);not null;default:0" json:"rating"`
	Reviews        int                  `gorm:"column:reviews;not null;default:0" json:"reviews"`
	Tag            *enums.ProductTag    `gorm:"column:tag" json:"tag,omitempty"`
}

func (p *Product) GetID() int64   { return p.ID }
func (p *Product) SetID(id int64) { p.ID = id }

// Clone returns a copy that shares no specification map or tag with p.
func (p Product) Clone() Product {
	p.Specifications = p.Specifications.Clone()
	if p.Tag != nil {
		tag := *p.Tag
		p.Tag = &tag
	}
	return p
}
