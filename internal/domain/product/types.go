package product

type Freshness string

const (
	FreshnessFresh    Freshness = "FRESH"
	FreshnessStale    Freshness = "STALE"
	FreshnessArchived Freshness = "ARCHIVED"
)

func (f Freshness) String() string {
	return string(f)
}

func (f Freshness) IsValid() bool {
	switch f {
	case FreshnessFresh, FreshnessStale, FreshnessArchived:
		return true
	default:
		return false
	}
}

func NewFreshness(s string) (Freshness, error) {
	f := Freshness(s)
	if !f.IsValid() {
		return "", ErrInvalidFreshness
	}
	return f, nil
}
