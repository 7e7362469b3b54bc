package intent

import (
	"regexp"
	"sort"
	"strings"
)

const (
	CategoryLaptops        = "Laptops"
	CategoryMobilePhones   = "Mobile Phones"
	CategoryTelevisions    = "Televisions"
	CategoryWearables      = "Wearables"
	CategoryAudio          = "Audio"
	CategoryCameras        = "Cameras"
	CategoryTablets        = "Tablets"
	CategoryFashion        = "Fashion"
	CategoryHomeAppliances = "Home Appliances"
	CategorySports         = "Sports"
	CategoryBeauty         = "Beauty"
	CategoryBooks          = "Books"
	CategoryKitchen        = "Kitchen"
)

var categorySynonyms = map[string][]string{
	CategoryLaptops: {
		"laptop", "notebook", "macbook", "gaming laptop", "gaming pc", "ultrabook", "netbook",
		"chromebook", "dell", "hp", "lenovo", "asus", "acer",
	},
	CategoryMobilePhones: {
		"mobile", "phone", "smartphone", "iphone", "android", "realme", "redmi", "oneplus",
		"samsung", "poco", "nokia", "vivo", "oppo", "motorola", "pixel",
	},
	CategoryTelevisions: {
		"tv", "television", "led", "smart tv", "4k tv", "oled", "qled", "screen", "display",
	},
	CategoryWearables: {
		"watch", "smartwatch", "band", "apple watch", "fitness band", "tracker", "bracelet",
	},
	CategoryAudio: {
		"headphone", "earphone", "buds", "airpods", "airpod", "speaker", "soundbar", "earbud",
		"headset", "earbuds", "wireless headphones", "bluetooth speaker",
	},
	CategoryCameras: {
		"camera", "dslr", "mirrorless", "action camera", "gopro", "webcam", "cannon", "nikon", "sony",
	},
	CategoryTablets: {
		"tablet", "ipad", "tab", "pad",
	},
	CategoryFashion: {
		"shoe", "sneaker", "boot", "running shoes", "footwear", "shoes", "sneakers", "boots",
		"heels", "loafers", "sandals", "slippers",
		"shirt", "t-shirt", "top", "jeans", "trouser", "trousers", "pants", "shorts", "tshirt",
		"t shirt", "dress", "saree", "kurti", "lehenga", "suit", "jacket", "coat", "sweater",
		"hoodie", "sweatshirt",
		"bag", "backpack", "handbag", "purse", "tote", "luggage", "suitcase", "travel bag",
	},
	CategoryHomeAppliances: {
		"fridge", "refrigerator", "fridge freezer", "washing machine", "washer", "dryer", "ac",
		"air conditioner", "airconditioner", "microwave", "oven", "toaster", "blender", "mixer",
		"grinder", "cooker", "pressure cooker", "electric kettle", "iron", "vacuum", "cleaner",
		"geyser", "water heater", "fan",
	},
	CategorySports: {
		"dumbbell", "weights", "yoga mat", "treadmill", "exercise bike", "sports", "gym",
		"equipment", "cricket bat", "cricket", "badminton", "tennis", "football", "basketball",
		"bicycle", "bike",
	},
	CategoryBeauty: {
		"perfume", "fragrance", "cologne", "deodorant", "lipstick", "makeup", "cosmetics",
		"skincare", "moisturizer", "face wash", "shampoo", "conditioner", "soap", "toothbrush",
		"razor", "trimmer",
	},
	CategoryBooks: {
		"book", "ebook", "novel", "magazine",
	},
	CategoryKitchen: {
		"cookware", "utensils", "pan", "pot", "dish", "plate", "glass", "bowl", "knife",
		"cutlery", "fork", "spoon",
	},
}

type categoryEntry struct {
	key      string
	label    string
	pattern  *regexp.Regexp
	absorbed []string
}

// categoryTable is ordered most specific first: longer keys before shorter,
// ties broken alphabetically so the order never depends on map iteration.
var categoryTable = buildCategoryTable()

func buildCategoryTable() []categoryEntry {
	var entries []categoryEntry
	for label, keys := range categorySynonyms {
		for _, key := range keys {
			entries = append(entries, categoryEntry{
				key:      key,
				label:    label,
				pattern:  wholeWordPattern(key),
				absorbed: tokenize(key),
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].key) != len(entries[j].key) {
			return len(entries[i].key) > len(entries[j].key)
		}
		return entries[i].key < entries[j].key
	})
	return entries
}

func wholeWordPattern(key string) *regexp.Regexp {
	parts := strings.Fields(key)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`\b` + strings.Join(parts, `\s+`) + `\b`)
}

// Categories lists the canonical labels in alphabetical order.
func Categories() []string {
	out := make([]string, 0, len(categorySynonyms))
	for label := range categorySynonyms {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

var stopWords = toSet(
	// pronouns and articles
	"i", "im", "am", "are", "you", "we", "they", "he", "she", "it", "me", "my", "our", "your",
	"his", "her", "its", "their", "a", "an", "the",
	// verbs
	"is", "was", "were", "be", "been", "being", "have", "has", "had", "do", "does", "did",
	"will", "would", "could", "should", "may", "might", "must", "can",
	// prepositions and conjunctions
	"in", "on", "at", "to", "from", "for", "with", "by", "about", "of", "or", "and", "but",
	"if", "then", "because", "while", "when", "where", "how", "why", "between", "than",
	// shopping filler
	"looking", "want", "need", "search", "find", "show", "please", "kindly", "get", "buy",
	"purchase", "order", "sell", "selling", "seeking",
	// price words
	"budget", "price", "range", "cost", "costing", "rate", "rates", "value", "around", "approx",
	"approximately", "under", "below", "above", "over", "upto", "till", "within", "limit",
	"ceiling", "worth", "max", "maximum", "min", "minimum", "least", "onwards", "starting",
	"less", "greater", "buck", "bucks", "dollar", "dollars",
	// quality and preference
	"best", "good", "great", "nice", "okay", "fine", "poor", "bad", "worst", "prefer", "like",
	"suggest", "recommendation", "cheap", "expensive", "costly", "affordable", "premium",
	"luxury", "basic",
	// quantities
	"one", "two", "three", "four", "five", "many", "few", "some", "all", "more", "most",
	// time
	"now", "today", "tomorrow", "yesterday", "soon", "asap", "urgent",
	// filler
	"just", "only", "really", "actually", "basically", "literally", "exactly", "probably",
	"maybe", "possibly", "definitely", "certainly", "surely", "perhaps", "apparently",
)

var unitWords = toSet(
	"k", "l", "m", "thousand", "thousands", "lakh", "lakhs", "lac", "lacs", "million", "millions",
	"rs", "rupees", "inr", "kg", "gm", "gb", "tb", "mb", "inch", "inches", "mah", "mp", "hz", "ghz", "w",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
