package builds

import (
	"strings"

	"github.com/angelmondragon/pcforge-backend/pkg/db/models"
	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

// Reconcile links components to catalog products. A component matches the
// first product, in the order given, whose lowercased name contains or is
// contained in the component's lowercased name. Matches take the product id
// and image; every other field is left as recommended.
func Reconcile(components []types.BuildComponent, products []models.Product) []types.BuildComponent {
	out := make([]types.BuildComponent, len(components))
	for i, component := range components {
		out[i] = component
		name := strings.ToLower(strings.TrimSpace(component.Name))
		if name == "" {
			continue
		}
		for _, product := range products {
			productName := strings.ToLower(strings.TrimSpace(product.Name))
			if productName == "" {
				continue
			}
			if strings.Contains(productName, name) || strings.Contains(name, productName) {
				id := product.ID
				out[i].ProductID = &id
				out[i].Image = product.Image
				break
			}
		}
	}
	return out
}
