package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// HeuristicThreshold is the smallest bare number that still reads as a price
// when it carries no multiplier suffix.
const HeuristicThreshold = 500

const maxAmountDigits = 12

var multipliers = map[string]int64{
	"k": 1_000, "thousand": 1_000, "thousands": 1_000,
	"l": 100_000, "lac": 100_000, "lacs": 100_000, "lakh": 100_000, "lakhs": 100_000,
	"m": 1_000_000, "million": 1_000_000, "millions": 1_000_000,
}

const (
	amountPattern   = `(\d+(?:,\d+)*(?:\.\d+)?)(?:\s*(thousands?|lakhs?|lacs?|millions?|k|l|m)\b)?`
	currencyPattern = `(?:(?:rs\.?|inr|rupees)\s*)?`
	fillerPattern   = `(?:(?:of|is|at|around|about|approx)\b\s*)*[:\-]?\s*`
)

var (
	currencySymbols = strings.NewReplacer("₹", " rs ", "₨", " rs ")
	currencyGlued   = regexp.MustCompile(`\b(rs\.?|inr|rupees)(\d)`)
	specToken       = regexp.MustCompile(`\b(\d+(?:\.\d+)?\s*(?:gb|tb|mb|mah|mp|fps|hz|v|w|ghz|inch))\b`)
	resolutionToken = regexp.MustCompile(`\b(?:4k|8k)\s+(?:tv|television|display|monitor|led|oled|qled|uhd|hdr|screen)\b`)
	amountRegex     = regexp.MustCompile(`\b` + amountPattern)

	upperPrefix = regexp.MustCompile(`\b(?:under|below|less\s+than|not\s+more\s+than|not\s+above|max(?:imum)?|up\s*to|within|budget|limit|ceiling|worth|costing)\b\s*` +
		fillerPattern + currencyPattern + amountPattern)
	lowerPrefix = regexp.MustCompile(`\b(?:above|over|more\s+than|greater\s+than|at\s+least|min(?:imum)?|from|starting(?:\s+(?:from|at))?)\b\s*` +
		fillerPattern + currencyPattern + amountPattern)
	upperPostfix = regexp.MustCompile(`\b` + amountPattern + `\s*` + currencyPattern +
		`(?:max|only|or\s+less|and\s+below|and\s+under)\b`)
	lowerPostfix = regexp.MustCompile(`\b` + amountPattern + `\s*` + currencyPattern +
		`(?:(?:onwards|and\s+above|or\s+more)\b|\+)`)

	rangeRegex = regexp.MustCompile(`\b` + currencyPattern + amountPattern +
		`\s*(?:to|-|–|through|till|and)\s*` + currencyPattern + amountPattern)
)

// amount is one numeric token with its optional multiplier.
type amount struct {
	digits string
	unit   string
}

func newAmount(raw, unit string) amount {
	return amount{digits: strings.ReplaceAll(raw, ",", ""), unit: unit}
}

func (a amount) hasUnit() bool {
	return a.unit != ""
}

// rawValue is the number as written, ignoring the multiplier.
func (a amount) rawValue() float64 {
	f, err := strconv.ParseFloat(a.digits, 64)
	if err != nil {
		return 0
	}
	return f
}

// value converts the token to whole rupees using integer arithmetic only.
func (a amount) value() (int64, bool) {
	intPart, fracPart, _ := strings.Cut(a.digits, ".")
	if len(intPart)+len(fracPart) > maxAmountDigits {
		return 0, false
	}
	n, err := strconv.ParseInt(intPart+fracPart, 10, 64)
	if err != nil {
		return 0, false
	}
	mult := int64(1)
	if m, ok := multipliers[a.unit]; ok {
		mult = m
	}
	div := int64(1)
	for range fracPart {
		div *= 10
	}
	v := n * mult / div
	if v <= 0 {
		return 0, false
	}
	return v, true
}

// normalizePriceText lower-cases the text, turns currency symbols into words
// and blanks tokens that look like numbers but are specs.
func normalizePriceText(text string) string {
	s := strings.ToLower(text)
	s = currencySymbols.Replace(s)
	s = currencyGlued.ReplaceAllString(s, "$1 $2")
	s = resolutionToken.ReplaceAllString(s, " ")
	s = specToken.ReplaceAllString(s, " ")
	return s
}

// ExtractPrice runs the strategies in priority order: a keyword bound with a
// ceiling, an explicit range, a keyword floor on its own, then bare numbers.
func ExtractPrice(text string) PriceBounds {
	s := normalizePriceText(text)

	kw, kwOK := keywordBounds(s)
	if kwOK && kw.Max != nil {
		return kw.normalized()
	}
	if r, ok := rangeBounds(s); ok {
		return r.normalized()
	}
	if kwOK {
		return kw.normalized()
	}
	if h, ok := heuristicBounds(s); ok {
		return h.normalized()
	}
	return PriceBounds{}
}

// KeywordBounds collects every bound keyword match; the largest ceiling and
// the smallest floor win.
func KeywordBounds(text string) (PriceBounds, bool) {
	return keywordBounds(normalizePriceText(text))
}

// RangeBounds reads the first "X to Y" style range.
func RangeBounds(text string) (PriceBounds, bool) {
	return rangeBounds(normalizePriceText(text))
}

// HeuristicBounds treats bare numbers with a multiplier, or above
// HeuristicThreshold, as price candidates.
func HeuristicBounds(text string) (PriceBounds, bool) {
	return heuristicBounds(normalizePriceText(text))
}

func keywordBounds(s string) (PriceBounds, bool) {
	var (
		maxV  int64
		minV  int64
		found bool
		hasLo bool
		hasHi bool
	)
	collect := func(re *regexp.Regexp, upper bool) {
		for _, idx := range re.FindAllStringSubmatchIndex(s, -1) {
			// "not more than" is a ceiling, never a floor.
			if !upper && negated(s[:idx[0]]) {
				continue
			}
			unit := ""
			if idx[4] >= 0 {
				unit = s[idx[4]:idx[5]]
			}
			v, ok := newAmount(s[idx[2]:idx[3]], unit).value()
			if !ok {
				continue
			}
			found = true
			if upper {
				if !hasHi || v > maxV {
					maxV = v
				}
				hasHi = true
				continue
			}
			if !hasLo || v < minV {
				minV = v
			}
			hasLo = true
		}
	}
	collect(upperPrefix, true)
	collect(upperPostfix, true)
	collect(lowerPrefix, false)
	collect(lowerPostfix, false)

	if !found {
		return PriceBounds{}, false
	}
	b := PriceBounds{Min: minV}
	if hasHi {
		b.Max = &maxV
	}
	return b, true
}

func negated(prefix string) bool {
	return strings.HasSuffix(strings.TrimRight(prefix, " "), "not")
}

func rangeBounds(s string) (PriceBounds, bool) {
	m := rangeRegex.FindStringSubmatch(s)
	if m == nil {
		return PriceBounds{}, false
	}
	left := newAmount(m[1], m[2])
	right := newAmount(m[3], m[4])
	// "20 to 50k" means 20k to 50k.
	if !left.hasUnit() && right.hasUnit() && left.rawValue() < right.rawValue() {
		left.unit = right.unit
	}
	lv, lok := left.value()
	rv, rok := right.value()
	if !lok || !rok {
		return PriceBounds{}, false
	}
	lo, hi := lv, rv
	if lo > hi {
		lo, hi = hi, lo
	}
	return PriceBounds{Min: lo, Max: &hi}, true
}

func heuristicBounds(s string) (PriceBounds, bool) {
	var candidates []int64
	for _, m := range amountRegex.FindAllStringSubmatch(s, -1) {
		a := newAmount(m[1], m[2])
		v, ok := a.value()
		if !ok {
			continue
		}
		if a.hasUnit() || v > HeuristicThreshold {
			candidates = append(candidates, v)
		}
	}
	switch len(candidates) {
	case 0:
		return PriceBounds{}, false
	case 1:
		v := candidates[0]
		return PriceBounds{Max: &v}, true
	}
	lo, hi := candidates[0], candidates[0]
	for _, v := range candidates[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return PriceBounds{Min: lo, Max: &hi}, true
}
