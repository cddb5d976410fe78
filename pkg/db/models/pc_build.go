package models

import (
	"time"

	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

// PCBuild is a persisted recommendation: the questionnaire that produced it and
// the reconciled parts list.
type PCBuild struct {
	ID              int64                     `gorm:"column:id;primaryKey;autoIncrement"`
	Purpose         string                    `gorm:"column:purpose;not null"`
	Requirements    types.BuildRequirements   `gorm:"column:requirements;type:jsonb;serializer:json;not null"`
	Recommendations types.BuildRecommendation `gorm:"column:recommendations;type:jsonb;serializer:json;not null"`
	TotalPrice      string                    `gorm:"column:total_price;not null"`
	CreatedAt       time.Time                 `gorm:"column:created_at;autoCreateTime"`
}

func (PCBuild) TableName() string { return "pc_builds" }

func (b *PCBuild) GetID() int64   { return b.ID }
func (b *PCBuild) SetID(id int64) { b.ID = id }

// Clone returns a copy that shares no component storage with b.
func (b PCBuild) Clone() PCBuild {
	b.Recommendations = b.Recommendations.Clone()
	return b
}
