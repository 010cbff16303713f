package models

import (
	"encoding/json"
	"fmt"
)

// Recommendation is an ordered trading category, StrongSell < ... < StrongBuy.
type Recommendation int

const (
	StrongSell Recommendation = iota
	Sell
	Hold
	Buy
	StrongBuy
)

var recommendationNames = [...]string{
	StrongSell: "Strong Sell",
	Sell:       "Sell",
	Hold:       "Hold",
	Buy:        "Buy",
	StrongBuy:  "Strong Buy",
}

// Recommendations lists every category in ascending order.
func Recommendations() []Recommendation {
	return []Recommendation{StrongSell, Sell, Hold, Buy, StrongBuy}
}

func (r Recommendation) String() string {
	if r < StrongSell || r > StrongBuy {
		return fmt.Sprintf("Recommendation(%d)", int(r))
	}
	return recommendationNames[r]
}

// Valid reports whether r is one of the five categories.
func (r Recommendation) Valid() bool {
	return r >= StrongSell && r <= StrongBuy
}

func (r Recommendation) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid recommendation %d", int(r))
	}
	return json.Marshal(r.String())
}

func (r *Recommendation) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseRecommendation(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseRecommendation maps a display name back to its category.
func ParseRecommendation(s string) (Recommendation, error) {
	for i, name := range recommendationNames {
		if name == s {
			return Recommendation(i), nil
		}
	}
	return Hold, fmt.Errorf("unknown recommendation %q", s)
}
