package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// Specifications is the free-form attribute map attached to a product
// (cores, memory size, form factor and so on), persisted as JSON.
type Specifications map[string]string

// Value marshals the map into JSON text.
func (s Specifications) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes stored JSON into the map.
func (s *Specifications) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("specifications: unsupported scan type %T", value)
	}

	result := make(Specifications)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*s = result
	return nil
}

// Clone returns an independent copy. A nil map stays nil.
func (s Specifications) Clone() Specifications {
	if s == nil {
		return nil
	}
	out := make(Specifications, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys returns the attribute names in sorted order.
func (s Specifications) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
