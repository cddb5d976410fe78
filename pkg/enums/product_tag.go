package enums

import "fmt"

// ProductTag is the merchandising badge shown on a product card.
type ProductTag string

const (
	ProductTagBestSeller ProductTag = "Best Seller"
	ProductTagNewArrival ProductTag = "New Arrival"
	ProductTagSale       ProductTag = "Sale"
)

var validProductTags = []ProductTag{
	ProductTagBestSeller,
	ProductTagNewArrival,
	ProductTagSale,
}

// String implements fmt.Stringer.
func (t ProductTag) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ProductTag.
func (t ProductTag) IsValid() bool {
	for _, candidate := range validProductTags {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseProductTag converts raw input into a ProductTag.
func ParseProductTag(value string) (ProductTag, error) {
	for _, candidate := range validProductTags {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product tag %q", value)
}
