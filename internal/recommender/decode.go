package recommender

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number or numeric string, rounding fractions.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		// Non-numeric ratings are treated as missing.
		*f = 0
		return nil
	}
	*f = flexInt(math.Round(v))
	return nil
}

type wireComponent struct {
	Type        string     `json:"type"`
	Name        flexString `json:"name"`
	Description flexString `json:"description"`
	Price       flexString `json:"price"`
	Image       flexString `json:"image"`
}

type wireResult struct {
	Analysis                string          `json:"analysis"`
	Components              json.RawMessage `json:"components"`
	TotalPrice              flexString      `json:"totalPrice"`
	TotalPriceSnake         flexString      `json:"total_price"`
	PerformanceRating       flexInt         `json:"performanceRating"`
	PerformanceRatingSnake  flexInt         `json:"performance_rating"`
	EstimatedPowerDraw      flexString      `json:"estimatedPowerDraw"`
	EstimatedPowerDrawSnake flexString      `json:"estimated_power_draw"`
}

// decodeResult parses the model's JSON content.
func decodeResult(content string) (Result, error) {
	var wire wireResult
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return Result{}, fmt.Errorf("decode recommendation: %w", err)
	}
	components, err := decodeComponents(wire.Components)
	if err != nil {
		return Result{}, fmt.Errorf("decode components: %w", err)
	}

	return Result{
		Analysis:           strings.TrimSpace(wire.Analysis),
		Components:         components,
		TotalPrice:         string(firstNonEmpty(wire.TotalPrice, wire.TotalPriceSnake)),
		PerformanceRating:  int(firstNonZero(wire.PerformanceRating, wire.PerformanceRatingSnake)),
		EstimatedPowerDraw: string(firstNonEmpty(wire.EstimatedPowerDraw, wire.EstimatedPowerDrawSnake)),
	}, nil
}

// decodeComponents accepts either an array of components or an object keyed
// by role, in which case the key becomes the component type. Object order is
// preserved.
func decodeComponents(raw json.RawMessage) ([]types.BuildComponent, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []types.BuildComponent{}, nil
	}

	switch raw[0] {
	case '[':
		var list []wireComponent
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		out := make([]types.BuildComponent, 0, len(list))
		for _, c := range list {
			out = append(out, c.toComponent(""))
		}
		return out, nil
	case '{':
		dec := json.NewDecoder(bytes.NewReader(raw))
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		out := []types.BuildComponent{}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := tok.(string)
			var c wireComponent
			if err := dec.Decode(&c); err != nil {
				return nil, fmt.Errorf("component %q: %w", key, err)
			}
			out = append(out, c.toComponent(key))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected components payload %s", raw)
	}
}

func (c wireComponent) toComponent(role string) types.BuildComponent {
	componentType := strings.TrimSpace(c.Type)
	if componentType == "" {
		componentType = strings.TrimSpace(role)
	}
	return types.BuildComponent{
		Type:        componentType,
		Name:        string(c.Name),
		Description: string(c.Description),
		Price:       string(c.Price),
		Image:       string(c.Image),
	}
}

func firstNonEmpty(values ...flexString) flexString {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...flexInt) flexInt {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
