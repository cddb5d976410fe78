package builds

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

const (
	defaultAnalysis   = "Based on your requirements, we've created an optimized build."
	defaultPowerDraw  = "Unknown"
	defaultRating     = 3
	minRating         = 1
	maxRating         = 5
	priceDecimalScale = 2
)

var priceNoise = strings.NewReplacer("$", "", ",", "", "USD", "", "usd", "", " ", "")

// parsePrice reads a money string such as "$1,299.99" or "369.99 USD".
func parsePrice(raw string) (decimal.Decimal, bool) {
	cleaned := priceNoise.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// normalize fills defaults and clamps the rating. Component prices and a
// readable total are kept exactly as recommended; an unreadable total is
// replaced by the sum of the readable component prices.
func normalize(rec *types.BuildRecommendation) {
	if strings.TrimSpace(rec.Analysis) == "" {
		rec.Analysis = defaultAnalysis
	}
	if strings.TrimSpace(rec.EstimatedPowerDraw) == "" {
		rec.EstimatedPowerDraw = defaultPowerDraw
	}

	switch {
	case rec.PerformanceRating == 0:
		rec.PerformanceRating = defaultRating
	case rec.PerformanceRating < minRating:
		rec.PerformanceRating = minRating
	case rec.PerformanceRating > maxRating:
		rec.PerformanceRating = maxRating
	}

	if rec.Components == nil {
		rec.Components = []types.BuildComponent{}
	}
	if _, ok := parsePrice(rec.TotalPrice); ok {
		return
	}
	sum := decimal.Zero
	for _, component := range rec.Components {
		if price, ok := parsePrice(component.Price); ok {
			sum = sum.Add(price)
		}
	}
	rec.TotalPrice = sum.StringFixed(priceDecimalScale)
}
