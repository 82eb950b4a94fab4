package extract

import "regexp"

// Key vocabularies used to score candidate nodes. Kept as data so the
// heuristics can be tuned and tested independently of the traversal.
type vocabRule struct {
	category string
	pattern  *regexp.Regexp
}

var scoreVocab = []vocabRule{
	{"price", regexp.MustCompile(`(?i)price|amount|cost`)},
	{"stock", regexp.MustCompile(`(?i)in[_-]?stock|availability|available|stock`)},
	{"currency", regexp.MustCompile(`(?i)currency|symbol`)},
}

// Score weights per category, plus a bonus when any path segment leading to
// the node looks commerce-related.
var categoryWeight = map[string]int{
	"price":    3,
	"stock":    2,
	"currency": 1,
}

var pathBonusPattern = regexp.MustCompile(`(?i)restock|price`)

// Ordered key-name candidates for each logical field. The order is a
// contract: the first key present with a non-null value wins, regardless of
// how the node scored. Dotted names are nested lookups.
var (
	currentPriceKeys = []string{
		"current_price", "price_now", "new_price", "latest_price",
		"price", "amount", "value", "cost", "current.price", "latest.price",
	}
	previousPriceKeys = []string{
		"previous_price", "old_price", "price_was",
		"previous", "previous.price", "old.price",
	}
	currencyKeys = []string{
		"currency", "currency_symbol", "currencySymbol",
		"currencyCode", "currency_code", "current.currency",
	}
	stockKeys = []string{
		"in_stock", "inStock", "stock", "available",
		"availability", "is_available", "isAvailable",
	}
	imageKeys = []string{
		"image_url", "imageUrl", "image", "thumbnail",
		"thumbnail_url", "thumbnailUrl", "product_image", "productImage",
	}
)

var currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)
