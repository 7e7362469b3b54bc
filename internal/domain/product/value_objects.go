package product

import (
	"errors"
	"strings"
)

const (
	MaxTitleLength       = 300
	MaxDescriptionLength = 5000
)

var (
	ErrTitleRequired     = errors.New("title is required")
	ErrTitleTooLong      = errors.New("title is too long")
	ErrDescriptionLong   = errors.New("description is too long")
	ErrCategoryRequired  = errors.New("category is required")
	ErrLinkRequired      = errors.New("affiliate link is required")
	ErrInvalidPrice      = errors.New("price must be greater than zero")
	ErrInvalidOriginal   = errors.New("original price must not be below price")
	ErrInvalidDiscount   = errors.New("discount must be between 0 and 100")
	ErrInvalidFreshness  = errors.New("invalid freshness")
	ErrInvalidAgeWindows = errors.New("archive window must be longer than stale window")
)

type Title struct {
	value string
}

func NewTitle(s string) (Title, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return Title{}, ErrTitleRequired
	}
	if len(t) > MaxTitleLength {
		return Title{}, ErrTitleTooLong
	}
	return Title{value: t}, nil
}

func (t Title) String() string { return t.value }

// Pricing holds whole-rupee amounts. originalPrice is the list price before discount.
type Pricing struct {
	price         int64
	originalPrice *int64
	discount      int
}

// NewPricing derives the discount from the original price when one is not given.
func NewPricing(price int64, originalPrice *int64, discount *int) (Pricing, error) {
	if price <= 0 {
		return Pricing{}, ErrInvalidPrice
	}
	if originalPrice != nil && *originalPrice < price {
		return Pricing{}, ErrInvalidOriginal
	}
	d := 0
	switch {
	case discount != nil:
		if *discount < 0 || *discount > 100 {
			return Pricing{}, ErrInvalidDiscount
		}
		d = *discount
	case originalPrice != nil && *originalPrice > 0:
		d = int((*originalPrice - price) * 100 / *originalPrice)
	}
	var orig *int64
	if originalPrice != nil {
		v := *originalPrice
		orig = &v
	}
	return Pricing{price: price, originalPrice: orig, discount: d}, nil
}

func (p Pricing) Price() int64          { return p.price }
func (p Pricing) OriginalPrice() *int64 { return p.originalPrice }
func (p Pricing) DiscountPercent() int  { return p.discount }

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
