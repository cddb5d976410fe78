package types

import "github.com/angelmondragon/pcforge-backend/pkg/enums"

// BuildRequirements is the questionnaire a shopper fills in before asking for
// a recommended parts list.
type BuildRequirements struct {
	Purpose                string `json:"purpose" validate:"required,max=200"`
	Budget                 string `json:"budget" validate:"required,max=100"`
	Performance            string `json:"performance" validate:"required,max=100"`
	Storage                string `json:"storage" validate:"required,max=100"`
	Resolution             string `json:"resolution" validate:"required,max=100"`
	AdditionalRequirements string `json:"additional_requirements,omitempty" validate:"max=2000"`
}

// BuildComponent is one suggested part. ProductID and Image are attached when
// the part name matches a catalog product.
type BuildComponent struct {
	Type        string `json:"type,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Image       string `json:"image,omitempty"`
	ProductID   *int64 `json:"product_id,omitempty"`
}

// BuildRecommendation is the reconciled parts list as stored with a build.
type BuildRecommendation struct {
	Purpose            string               `json:"purpose"`
	Analysis           string               `json:"analysis"`
	Components         []BuildComponent     `json:"components"`
	TotalPrice         string               `json:"total_price"`
	PerformanceRating  int                  `json:"performance_rating"`
	EstimatedPowerDraw string               `json:"estimated_power_draw"`
	Source             enums.BuildSource    `json:"source"`
	FallbackReason     enums.FallbackReason `json:"fallback_reason,omitempty"`
}

// Clone copies the component list, including each ProductID.
func (r BuildRecommendation) Clone() BuildRecommendation {
	if r.Components == nil {
		return r
	}
	components := make([]BuildComponent, len(r.Components))
	for i, component := range r.Components {
		if component.ProductID != nil {
			id := *component.ProductID
			component.ProductID = &id
		}
		components[i] = component
	}
	r.Components = components
	return r
}
