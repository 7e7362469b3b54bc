package marketplace

import (
	"errors"
	"strings"
)

var ErrInvalidPlatform = errors.New("invalid platform")

type Platform string

const (
	Amazon    Platform = "AMAZON"
	Flipkart  Platform = "FLIPKART"
	Myntra    Platform = "MYNTRA"
	Meesho    Platform = "MEESHO"
	Ajio      Platform = "AJIO"
	Ebay      Platform = "EBAY"
	OLX       Platform = "OLX"
	Snapdeal  Platform = "SNAPDEAL"
	Jabong    Platform = "JABONG"
	Paytm     Platform = "PAYTM"
	Nykaa     Platform = "NYKAA"
	FirstCry  Platform = "FIRSTCRY"
	ShopClues Platform = "SHOPCLUES"
	Other     Platform = "OTHER"
)

var allPlatforms = []Platform{
	Amazon, Flipkart, Myntra, Meesho, Ajio, Ebay, OLX,
	Snapdeal, Jabong, Paytm, Nykaa, FirstCry, ShopClues, Other,
}

func (p Platform) String() string {
	return string(p)
}

func (p Platform) IsValid() bool {
	for _, v := range allPlatforms {
		if p == v {
			return true
		}
	}
	return false
}

// ParsePlatform accepts any letter case, e.g. "amazon" or "Amazon".
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToUpper(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", ErrInvalidPlatform
	}
	return p, nil
}

func All() []Platform {
	out := make([]Platform, len(allPlatforms))
	copy(out, allPlatforms)
	return out
}

type SourceStrategy string

const (
	StrategyAmazonAPI SourceStrategy = "AMAZON_API"
	StrategyManual    SourceStrategy = "MANUAL"
	StrategyLinkOnly  SourceStrategy = "LINK_ONLY"
)

func (s SourceStrategy) String() string {
	return string(s)
}

func (s SourceStrategy) IsValid() bool {
	switch s {
	case StrategyAmazonAPI, StrategyManual, StrategyLinkOnly:
		return true
	default:
		return false
	}
}

// StrategyFor decides how catalog data for a platform is sourced.
func StrategyFor(p Platform) SourceStrategy {
	switch p {
	case Amazon:
		return StrategyAmazonAPI
	case Meesho:
		return StrategyLinkOnly
	default:
		return StrategyManual
	}
}
