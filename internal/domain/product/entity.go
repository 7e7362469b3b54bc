package product

import (
	"strings"
	"time"

	"affiliate-notify/internal/domain/marketplace"

	"github.com/google/uuid"
)

type Product struct {
	id            uuid.UUID
	title         Title
	description   string
	category      string
	tags          []string
	pricing       Pricing
	platform      marketplace.Platform
	affiliateLink string
	imageURL      string
	asin          string
	strategy      marketplace.SourceStrategy
	freshness     Freshness
	lastPricedAt  time.Time
	adminNotes    string
	views         int64
	clicks        int64
	conversions   int64
	createdBy     *uuid.UUID
	createdAt     time.Time
	updatedAt     time.Time
}

// Details is the curator-supplied part of a product. Platform and ASIN may
// be left empty; they are derived from the affiliate link.
type Details struct {
	Title         string
	Description   string
	Category      string
	Tags          []string
	Price         int64
	OriginalPrice *int64
	Discount      *int
	Platform      marketplace.Platform
	AffiliateLink string
	ImageURL      string
	ASIN          string
	AdminNotes    string
}

func NewProduct(d Details, createdBy *uuid.UUID, now time.Time) (*Product, error) {
	p := &Product{
		id:        uuid.New(),
		createdBy: createdBy,
		createdAt: now,
	}
	if err := p.apply(d, now); err != nil {
		return nil, err
	}
	return p, nil
}

func ReconstructProduct(
	id uuid.UUID,
	title Title,
	description, category string,
	tags []string,
	pricing Pricing,
	platform marketplace.Platform,
	affiliateLink, imageURL, asin string,
	strategy marketplace.SourceStrategy,
	freshness Freshness,
	lastPricedAt time.Time,
	adminNotes string,
	views, clicks, conversions int64,
	createdBy *uuid.UUID,
	createdAt, updatedAt time.Time,
) *Product {
	return &Product{
		id:            id,
		title:         title,
		description:   description,
		category:      category,
		tags:          tags,
		pricing:       pricing,
		platform:      platform,
		affiliateLink: affiliateLink,
		imageURL:      imageURL,
		asin:          asin,
		strategy:      strategy,
		freshness:     freshness,
		lastPricedAt:  lastPricedAt,
		adminNotes:    adminNotes,
		views:         views,
		clicks:        clicks,
		conversions:   conversions,
		createdBy:     createdBy,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Update replaces the curated details. A price change counts as a fresh
// observation, so freshness goes back to FRESH.
func (p *Product) Update(d Details, now time.Time) error {
	return p.apply(d, now)
}

// Reprice records a newly observed price.
func (p *Product) Reprice(price int64, originalPrice *int64, now time.Time) error {
	pricing, err := NewPricing(price, originalPrice, nil)
	if err != nil {
		return err
	}
	p.pricing = pricing
	p.touchPrice(now)
	return nil
}

// Age moves the product along FRESH -> STALE -> ARCHIVED based on how long
// ago its price was last observed. It reports whether anything changed.
func (p *Product) Age(now time.Time, staleAfter, archiveAfter time.Duration) (bool, error) {
	if archiveAfter <= staleAfter {
		return false, ErrInvalidAgeWindows
	}
	age := now.Sub(p.lastPricedAt)
	next := p.freshness
	switch {
	case age >= archiveAfter:
		next = FreshnessArchived
	case age >= staleAfter && p.freshness == FreshnessFresh:
		next = FreshnessStale
	}
	if next == p.freshness {
		return false, nil
	}
	p.freshness = next
	p.updatedAt = now
	return true, nil
}

func (p *Product) IsFresh() bool {
	return p.freshness == FreshnessFresh
}

func (p *Product) apply(d Details, now time.Time) error {
	title, err := NewTitle(d.Title)
	if err != nil {
		return err
	}
	description := strings.TrimSpace(d.Description)
	if len(description) > MaxDescriptionLength {
		return ErrDescriptionLong
	}
	category := strings.TrimSpace(d.Category)
	if category == "" {
		return ErrCategoryRequired
	}
	link := strings.TrimSpace(d.AffiliateLink)
	if link == "" {
		return ErrLinkRequired
	}
	pricing, err := NewPricing(d.Price, d.OriginalPrice, d.Discount)
	if err != nil {
		return err
	}

	platform := d.Platform
	if platform == "" {
		platform = marketplace.DetectFromURL(link)
	}
	if !platform.IsValid() {
		return marketplace.ErrInvalidPlatform
	}
	asin := strings.TrimSpace(d.ASIN)
	if asin == "" && platform == marketplace.Amazon {
		asin = marketplace.ExtractASIN(link)
	}

	p.title = title
	p.description = description
	p.category = category
	p.tags = normalizeTags(d.Tags)
	p.pricing = pricing
	p.platform = platform
	p.affiliateLink = link
	p.imageURL = strings.TrimSpace(d.ImageURL)
	p.asin = asin
	p.strategy = marketplace.StrategyFor(platform)
	p.adminNotes = strings.TrimSpace(d.AdminNotes)
	p.touchPrice(now)
	return nil
}

func (p *Product) touchPrice(now time.Time) {
	p.freshness = FreshnessFresh
	p.lastPricedAt = now
	p.updatedAt = now
}

func (p *Product) ID() uuid.UUID                        { return p.id }
func (p *Product) Title() Title                         { return p.title }
func (p *Product) Description() string                  { return p.description }
func (p *Product) Category() string                     { return p.category }
func (p *Product) Tags() []string                       { return p.tags }
func (p *Product) Pricing() Pricing                     { return p.pricing }
func (p *Product) Price() int64                         { return p.pricing.Price() }
func (p *Product) Platform() marketplace.Platform       { return p.platform }
func (p *Product) AffiliateLink() string                { return p.affiliateLink }
func (p *Product) ImageURL() string                     { return p.imageURL }
func (p *Product) ASIN() string                         { return p.asin }
func (p *Product) Strategy() marketplace.SourceStrategy { return p.strategy }
func (p *Product) Freshness() Freshness                 { return p.freshness }
func (p *Product) LastPricedAt() time.Time              { return p.lastPricedAt }
func (p *Product) AdminNotes() string                   { return p.adminNotes }
func (p *Product) Views() int64                         { return p.views }
func (p *Product) Clicks() int64                        { return p.clicks }
func (p *Product) Conversions() int64                   { return p.conversions }
func (p *Product) CreatedBy() *uuid.UUID                { return p.createdBy }
func (p *Product) CreatedAt() time.Time                 { return p.createdAt }
func (p *Product) UpdatedAt() time.Time                 { return p.updatedAt }
