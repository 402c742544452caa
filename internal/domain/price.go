package domain

import (
	"encoding/json"
	"strconv"
)

// Price is one price slot of a market week: either a non-negative integer or missing.
// The zero value is a missing price.
type Price struct {
	value   int
	present bool
}

// NewPrice creates a present price.
func NewPrice(value int) Price {
	return Price{value: value, present: true}
}

// MissingPrice creates an explicit missing slot.
func MissingPrice() Price {
	return Price{}
}

// Value returns the price and whether it is present.
func (p Price) Value() (int, bool) {
	return p.value, p.present
}

// IsMissing reports whether the slot holds no price.
func (p Price) IsMissing() bool {
	return !p.present
}

// Ptr returns the price as a pointer, nil when missing.
func (p Price) Ptr() *int {
	if !p.present {
		return nil
	}
	v := p.value
	return &v
}

// PriceFromPtr is the inverse of Ptr.
func PriceFromPtr(v *int) Price {
	if v == nil {
		return MissingPrice()
	}
	return NewPrice(*v)
}

func (p Price) String() string {
	if !p.present {
		return "-"
	}
	return strconv.Itoa(p.value)
}

// MarshalJSON encodes a missing price as null.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Ptr())
}

// UnmarshalJSON decodes a number or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	var v *int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PriceFromPtr(v)
	return nil
}
