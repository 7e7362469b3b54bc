package marketplace

// Alias is a surface form users type for a marketplace.
type Alias struct {
	Key      string
	Platform Platform
}

// Order matters: platforms found in free text are reported in table order
// when two aliases start at the same offset.
var aliases = []Alias{
	{"amazon", Amazon}, {"amzn", Amazon}, {"amz", Amazon}, {"amazon.in", Amazon}, {"amazonindia", Amazon},
	{"flipkart", Flipkart}, {"fk", Flipkart}, {"flip", Flipkart}, {"flipkart.com", Flipkart},
	{"myntra", Myntra}, {"myntra.com", Myntra},
	{"meesho", Meesho}, {"meesha", Meesho},
	{"ajio", Ajio},
	{"ebay", Ebay},
	{"olx", OLX},
	{"snapdeal", Snapdeal},
	{"jabong", Jabong},
	{"paytm", Paytm}, {"paytmmall", Paytm},
	{"nykaa", Nykaa},
	{"firstcry", FirstCry},
	{"shopclues", ShopClues},
}

func Aliases() []Alias {
	out := make([]Alias, len(aliases))
	copy(out, aliases)
	return out
}
