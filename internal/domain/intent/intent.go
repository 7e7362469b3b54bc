package intent

import (
	"strings"

	"affiliate-notify/internal/domain/marketplace"
)

// ParsedIntent is the structured form of a free-text shopping request.
// It is immutable once computed; re-parsing the same text yields the same value.
type ParsedIntent struct {
	Category  *string                `json:"category"`
	Tags      []string               `json:"tags"`
	MaxPrice  *int64                 `json:"maxPrice"`
	MinPrice  int64                  `json:"minPrice"`
	Platforms []marketplace.Platform `json:"platforms"`
}

func (p ParsedIntent) CategoryValue() string {
	if p.Category == nil {
		return ""
	}
	return *p.Category
}

func (p ParsedIntent) HasPlatform(pl marketplace.Platform) bool {
	for _, v := range p.Platforms {
		if v == pl {
			return true
		}
	}
	return false
}

// IsEmpty reports whether nothing usable for matching was extracted.
// Tags alone never drive a match.
func (p ParsedIntent) IsEmpty() bool {
	return p.Category == nil && p.MaxPrice == nil && p.MinPrice == 0 && len(p.Platforms) == 0
}

// PriceAccepts applies the bounds; an absent max means no upper limit.
func (p ParsedIntent) PriceAccepts(price int64) bool {
	if p.MaxPrice != nil && price > *p.MaxPrice {
		return false
	}
	return price >= p.MinPrice
}

// PlatformAccepts treats an empty platform list as "any marketplace".
func (p ParsedIntent) PlatformAccepts(pl marketplace.Platform) bool {
	return len(p.Platforms) == 0 || p.HasPlatform(pl)
}

// CategoryAccepts is a loose, case-insensitive containment match in either
// direction, so "Laptops" accepts "Gaming Laptops" and vice versa.
func (p ParsedIntent) CategoryAccepts(category string) bool {
	if p.Category == nil {
		return true
	}
	return CategoriesOverlap(*p.Category, category)
}

func CategoriesOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

type PriceBounds struct {
	Min int64
	Max *int64
}

func (b PriceBounds) normalized() PriceBounds {
	if b.Max != nil && b.Min > *b.Max {
		hi := b.Min
		lo := *b.Max
		return PriceBounds{Min: lo, Max: &hi}
	}
	return b
}
