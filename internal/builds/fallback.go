package builds

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

//go:embed fallback.yaml
var defaultFallback []byte

// Fallback is the static parts list served when no recommendation can be
// generated.
type Fallback struct {
	Analysis           string              `yaml:"analysis"`
	Components         []FallbackComponent `yaml:"components"`
	TotalPrice         string              `yaml:"total_price"`
	PerformanceRating  int                 `yaml:"performance_rating"`
	EstimatedPowerDraw string              `yaml:"estimated_power_draw"`
}

type FallbackComponent struct {
	Type        string `yaml:"type"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Image       string `yaml:"image"`
}

// LoadFallback reads the artifact at path, or the embedded default when path
// is empty.
func LoadFallback(path string) (*Fallback, error) {
	data := defaultFallback
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fallback build %s: %w", path, err)
		}
		data = raw
	}
	return ParseFallback(data)
}

// ParseFallback decodes and checks a fallback artifact.
func ParseFallback(data []byte) (*Fallback, error) {
	var fb Fallback
	if err := yaml.Unmarshal(data, &fb); err != nil {
		return nil, fmt.Errorf("decode fallback build: %w", err)
	}
	if len(fb.Components) == 0 {
		return nil, fmt.Errorf("fallback build has no components")
	}
	for i, c := range fb.Components {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("fallback component %d has no name", i)
		}
	}
	return &fb, nil
}

// Recommendation returns a fresh copy for purpose. Callers may mutate it.
func (f *Fallback) Recommendation(purpose string) types.BuildRecommendation {
	components := make([]types.BuildComponent, 0, len(f.Components))
	for _, c := range f.Components {
		components = append(components, types.BuildComponent{
			Type:        c.Type,
			Name:        c.Name,
			Description: c.Description,
			Price:       c.Price,
			Image:       c.Image,
		})
	}
	return types.BuildRecommendation{
		Purpose:            purpose,
		Analysis:           f.Analysis,
		Components:         components,
		TotalPrice:         f.TotalPrice,
		PerformanceRating:  f.PerformanceRating,
		EstimatedPowerDraw: f.EstimatedPowerDraw,
	}
}
