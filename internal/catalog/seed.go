package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/angelmondragon/pcforge-backend/internal/store"
	"github.com/angelmondragon/pcforge-backend/pkg/db/models"
	"github.com/angelmondragon/pcforge-backend/pkg/enums"
	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedFile is the YAML catalog artifact loaded at startup.
type SeedFile struct {
	Categories []SeedCategory `yaml:"categories"`
	Products   []SeedProduct  `yaml:"products"`
}

type SeedCategory struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
	Icon string `yaml:"icon"`
}

type SeedProduct struct {
	Name           string            `yaml:"name"`
	Description    string            `yaml:"description"`
	Price          string            `yaml:"price"`
	Image          string            `yaml:"image"`
	Category       string            `yaml:"category"`
	Stock          int               `yaml:"stock"`
	Featured       bool              `yaml:"featured"`
	Rating         string            `yaml:"rating"`
	Reviews        int               `yaml:"reviews"`
	Tag            string            `yaml:"tag"`
	Specifications map[string]string `yaml:"specifications"`
}

// LoadSeed reads the catalog artifact at path, or the embedded default when
// path is empty.
func LoadSeed(path string) (*SeedFile, error) {
	data := defaultSeed
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog seed %q: %w", path, err)
		}
		data = raw
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates a catalog artifact.
func ParseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *SeedFile) validate() error {
	slugs := map[string]bool{}
	for i, c := range s.Categories {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Slug) == "" {
			return fmt.Errorf("category %d: name and slug are required", i)
		}
		if slugs[c.Slug] {
			return fmt.Errorf("category %d: duplicate slug %q", i, c.Slug)
		}
		slugs[c.Slug] = true
	}
	for i, p := range s.Products {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("product %d: name is required", i)
		}
		if !slugs[p.Category] {
			return fmt.Errorf("product %q: unknown category %q", p.Name, p.Category)
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil || price.IsNegative() {
			return fmt.Errorf("product %q: invalid price %q", p.Name, p.Price)
		}
		if p.Stock < 0 || p.Reviews < 0 {
			return fmt.Errorf("product %q: stock and reviews must not be negative", p.Name)
		}
		if p.Rating != "" {
			rating, err := decimal.NewFromString(p.Rating)
			if err != nil || rating.IsNegative() || rating.GreaterThan(decimal.NewFromInt(5)) {
				return fmt.Errorf("product %q: rating %q must be between 0 and 5", p.Name, p.Rating)
			}
		}
		if p.Tag != "" {
			if _, err := enums.ParseProductTag(p.Tag); err != nil {
				return fmt.Errorf("product %q: %w", p.Name, err)
			}
		}
	}
	return nil
}

// Seed writes the artifact into st. It is a no-op when categories already
// exist, so restarts against a persistent database do not duplicate rows.
// Products are created in artifact order, which fixes their ids.
func Seed(ctx context.Context, st *store.Store, seed *SeedFile) (bool, error) {
	existing, err := st.Categories.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list categories: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	categoryIDs := make(map[string]int64, len(seed.Categories))
	for _, c := range seed.Categories {
		created, err := st.Categories.Create(ctx, models.Category{Name: c.Name, Slug: c.Slug, Icon: c.Icon})
		if err != nil {
			return false, fmt.Errorf("create category %q: %w", c.Slug, err)
		}
		categoryIDs[c.Slug] = created.ID
	}

	for _, p := range seed.Products {
		product := models.Product{
			Name:           p.Name,
			Description:    p.Description,
			Price:          decimal.RequireFromString(p.Price),
			Image:          p.Image,
			CategoryID:     categoryIDs[p.Category],
			Stock:          p.Stock,
			Specifications: types.Specifications(p.Specifications),
			Featured:       p.Featured,
			Rating:         decimal.Zero,
			Reviews:        p.Reviews,
		}
		if p.Rating != "" {
			product.Rating = decimal.RequireFromString(p.Rating)
		}
		if p.Tag != "" {
			tag := enums.ProductTag(p.Tag)
			product.Tag = &tag
		}
		if _, err := st.Products.Create(ctx, product); err != nil {
			return false, fmt.Errorf("create product %q: %w", p.Name, err)
		}
	}
	return true, nil
}
