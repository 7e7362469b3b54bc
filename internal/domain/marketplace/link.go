package marketplace

import (
	"regexp"
	"strings"
)

var hostRules = []struct {
	fragments []string
	platform  Platform
}{
	{[]string{"amazon.in", "amazon.com", "amzn.to"}, Amazon},
	{[]string{"flipkart.com"}, Flipkart},
	{[]string{"meesho.com"}, Meesho},
	{[]string{"myntra.com"}, Myntra},
}

var asinRegex = regexp.MustCompile(`(?:/dp/|/gp/product/|/)([A-Z0-9]{10})(?:[/?&#]|$)`)

// DetectFromURL maps an affiliate or product link to its marketplace.
// Unknown or empty links are OTHER.
func DetectFromURL(link string) Platform {
	lower := strings.ToLower(strings.TrimSpace(link))
	if lower == "" {
		return Other
	}
	for _, rule := range hostRules {
		for _, f := range rule.fragments {
			if strings.Contains(lower, f) {
				return rule.platform
			}
		}
	}
	return Other
}

// ExtractASIN returns the 10 character Amazon identifier embedded in a link, or "".
func ExtractASIN(link string) string {
	m := asinRegex.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return m[1]
}
