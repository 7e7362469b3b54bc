//go:build unit

package product_test

import (
	"strings"
	"testing"
	"time"

	"affiliate-notify/internal/domain/marketplace"
	"affiliate-notify/internal/domain/product"
	"affiliate-notify/internal/pkg/ptr"
	"affiliate-notify/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	staleAfter   = 72 * time.Hour
	archiveAfter = 30 * 24 * time.Hour
)

func TestNewProduct(t *testing.T) {
	t.Run("fresh product with derived strategy", func(t *testing.T) {
		curator := uuid.New()
		d := builder.NewProductBuilder().BuildDetails()
		d.Tags = []string{" Gaming", "gaming", "", "RTX"}

		actual, err := product.NewProduct(d, &curator, builder.BaseTime)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, "Acer Nitro 5 Gaming Laptop", actual.Title().String())
		assert.Equal(t, marketplace.StrategyAmazonAPI, actual.Strategy())
		assert.Equal(t, product.FreshnessFresh, actual.Freshness())
		assert.Equal(t, builder.BaseTime, actual.LastPricedAt())
		assert.Equal(t, []string{"gaming", "rtx"}, actual.Tags())
		assert.Equal(t, &curator, actual.CreatedBy())
	})

	t.Run("platform and asin come from the link when omitted", func(t *testing.T) {
		d := builder.NewProductBuilder().With(func(b *builder.ProductBuilder) {
			b.Platform = ""
			b.ASIN = ""
			b.AffiliateLink = "https://www.amazon.in/gp/product/B0C1234567?tag=aff-21"
		}).BuildDetails()

		actual, err := product.NewProduct(d, nil, builder.BaseTime)

		require.NoError(t, err)
		assert.Equal(t, marketplace.Amazon, actual.Platform())
		assert.Equal(t, "B0C1234567", actual.ASIN())
	})

	t.Run("non amazon link gets no asin", func(t *testing.T) {
		d := builder.NewProductBuilder().With(func(b *builder.ProductBuilder) {
			b.Platform = ""
			b.ASIN = ""
			b.AffiliateLink = "https://www.flipkart.com/item/p/itm123"
		}).BuildDetails()

		actual, err := product.NewProduct(d, nil, builder.BaseTime)

		require.NoError(t, err)
		assert.Equal(t, marketplace.Flipkart, actual.Platform())
		assert.Empty(t, actual.ASIN())
		assert.Equal(t, marketplace.StrategyManual, actual.Strategy())
	})

	cases := []struct {
		name   string
		mutate func(*builder.ProductBuilder)
		errIs  error
	}{
		{name: "blank title", mutate: func(b *builder.ProductBuilder) { b.Title = "   " }, errIs: product.ErrTitleRequired},
		{name: "long title", mutate: func(b *builder.ProductBuilder) { b.Title = strings.Repeat("x", product.MaxTitleLength+1) }, errIs: product.ErrTitleTooLong},
		{name: "long description", mutate: func(b *builder.ProductBuilder) { b.Description = strings.Repeat("x", product.MaxDescriptionLength+1) }, errIs: product.ErrDescriptionLong},
		{name: "no category", mutate: func(b *builder.ProductBuilder) { b.Category = "" }, errIs: product.ErrCategoryRequired},
		{name: "no link", mutate: func(b *builder.ProductBuilder) { b.AffiliateLink = " " }, errIs: product.ErrLinkRequired},
		{name: "zero price", mutate: func(b *builder.ProductBuilder) { b.Price = 0 }, errIs: product.ErrInvalidPrice},
		{name: "original below price", mutate: func(b *builder.ProductBuilder) { b.OriginalPrice = ptr.Of(int64(100)) }, errIs: product.ErrInvalidOriginal},
		{name: "unknown platform", mutate: func(b *builder.ProductBuilder) { b.Platform = "ALIBABA" }, errIs: marketplace.ErrInvalidPlatform},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := builder.NewProductBuilder().With(c.mutate).BuildDetails()

			actual, err := product.NewProduct(d, nil, builder.BaseTime)

			assert.Nil(t, actual)
			assert.ErrorIs(t, err, c.errIs)
		})
	}
}

func TestPricing(t *testing.T) {
	t.Run("discount derived from original price", func(t *testing.T) {
		p, err := product.NewPricing(750, ptr.Of(int64(1000)), nil)
		require.NoError(t, err)
		assert.Equal(t, 25, p.DiscountPercent())
		assert.Equal(t, int64(1000), *p.OriginalPrice())
	})

	t.Run("explicit discount wins", func(t *testing.T) {
		p, err := product.NewPricing(750, ptr.Of(int64(1000)), ptr.Of(30))
		require.NoError(t, err)
		assert.Equal(t, 30, p.DiscountPercent())
	})

	t.Run("no original means no discount", func(t *testing.T) {
		p, err := product.NewPricing(750, nil, nil)
		require.NoError(t, err)
		assert.Zero(t, p.DiscountPercent())
		assert.Nil(t, p.OriginalPrice())
	})

	t.Run("discount out of range", func(t *testing.T) {
		_, err := product.NewPricing(750, nil, ptr.Of(101))
		assert.ErrorIs(t, err, product.ErrInvalidDiscount)
		_, err = product.NewPricing(750, nil, ptr.Of(-1))
		assert.ErrorIs(t, err, product.ErrInvalidDiscount)
	})

	t.Run("original price is copied", func(t *testing.T) {
		orig := int64(1000)
		p, err := product.NewPricing(750, &orig, nil)
		require.NoError(t, err)
		orig = 5
		assert.Equal(t, int64(1000), *p.OriginalPrice())
	})
}

func TestAge(t *testing.T) {
	cases := []struct {
		name      string
		freshness product.Freshness
		age       time.Duration
		want      product.Freshness
		changed   bool
	}{
		{name: "fresh stays fresh", freshness: product.FreshnessFresh, age: time.Hour, want: product.FreshnessFresh},
		{name: "fresh goes stale", freshness: product.FreshnessFresh, age: staleAfter, want: product.FreshnessStale, changed: true},
		{name: "stale stays stale", freshness: product.FreshnessStale, age: staleAfter + time.Hour, want: product.FreshnessStale},
		{name: "stale is archived", freshness: product.FreshnessStale, age: archiveAfter, want: product.FreshnessArchived, changed: true},
		{name: "fresh jumps to archived", freshness: product.FreshnessFresh, age: archiveAfter + time.Hour, want: product.FreshnessArchived, changed: true},
		{name: "archived is final", freshness: product.FreshnessArchived, age: 2 * archiveAfter, want: product.FreshnessArchived},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := builder.NewProductBuilder().With(func(b *builder.ProductBuilder) { b.Freshness = c.freshness }).BuildDomain()
			now := builder.BaseTime.Add(c.age)

			changed, err := p.Age(now, staleAfter, archiveAfter)

			require.NoError(t, err)
			assert.Equal(t, c.changed, changed)
			assert.Equal(t, c.want, p.Freshness())
			if c.changed {
				assert.Equal(t, now, p.UpdatedAt())
			}
		})
	}

	t.Run("archive window must exceed stale window", func(t *testing.T) {
		p := builder.NewProductBuilder().BuildDomain()
		_, err := p.Age(builder.BaseTime, staleAfter, staleAfter)
		assert.ErrorIs(t, err, product.ErrInvalidAgeWindows)
	})
}

func TestUpdateAndReprice(t *testing.T) {
	later := builder.BaseTime.Add(10 * 24 * time.Hour)

	t.Run("update refreshes a stale product", func(t *testing.T) {
		b := builder.NewProductBuilder().AsStale()
		p := b.BuildDomain()
		d := b.BuildDetails()
		d.Price = 59999

		require.NoError(t, p.Update(d, later))

		assert.True(t, p.IsFresh())
		assert.Equal(t, int64(59999), p.Price())
		assert.Equal(t, later, p.LastPricedAt())
		assert.Equal(t, b.ID, p.ID())
	})

	t.Run("rejected update leaves the product untouched", func(t *testing.T) {
		b := builder.NewProductBuilder().AsStale()
		p := b.BuildDomain()
		d := b.BuildDetails()
		d.Title = ""

		assert.ErrorIs(t, p.Update(d, later), product.ErrTitleRequired)
		assert.Equal(t, product.FreshnessStale, p.Freshness())
	})

	t.Run("reprice revives an archived product", func(t *testing.T) {
		p := builder.NewProductBuilder().AsArchived().BuildDomain()

		require.NoError(t, p.Reprice(62000, ptr.Of(int64(80000)), later))

		assert.True(t, p.IsFresh())
		assert.Equal(t, 22, p.Pricing().DiscountPercent())
	})

	t.Run("reprice validates the price", func(t *testing.T) {
		p := builder.NewProductBuilder().AsStale().BuildDomain()
		assert.ErrorIs(t, p.Reprice(-1, nil, later), product.ErrInvalidPrice)
		assert.False(t, p.IsFresh())
	})
}

func TestNewFreshness(t *testing.T) {
	f, err := product.NewFreshness("STALE")
	require.NoError(t, err)
	assert.Equal(t, product.FreshnessStale, f)

	_, err = product.NewFreshness("stale")
	assert.ErrorIs(t, err, product.ErrInvalidFreshness)
}
