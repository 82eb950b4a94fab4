package extract

import "strings"

// resolved holds the raw field values pulled out of a winning node before
// normalization.
type resolved struct {
	price    interface{}
	previous interface{}
	currency interface{}
	stock    interface{}
	imageURL string
	hasStock bool
}

// resolveFields looks up each logical field on a winning node via its
// ordered key-name list. The first key present with a non-null value wins;
// the node's score plays no part here.
func resolveFields(node map[string]interface{}) resolved {
	r := resolved{
		price:    lookupFirst(node, currentPriceKeys),
		previous: lookupFirst(node, previousPriceKeys),
		currency: lookupFirst(node, currencyKeys),
	}
	r.stock = lookupFirst(node, stockKeys)
	r.hasStock = r.stock != nil

	if img, ok := lookupFirst(node, imageKeys).(string); ok {
		if strings.HasPrefix(img, "http") {
			r.imageURL = img
		}
	}
	return r
}

// hasSignal reports whether the node yielded anything worth reporting.
// A node that scored in the locator but resolves to no price, no previous
// price and no stock value is dropped as a false positive.
func (r resolved) hasSignal() bool {
	return r.price != nil || r.previous != nil || r.hasStock
}

// lookupFirst returns the first non-null value for the given key names.
// Dotted names descend into nested objects.
func lookupFirst(node map[string]interface{}, keys []string) interface{} {
	for _, key := range keys {
		if v := lookupPath(node, key); v != nil {
			return v
		}
	}
	return nil
}

func lookupPath(node map[string]interface{}, path string) interface{} {
	if node == nil {
		return nil
	}
	if !strings.Contains(path, ".") {
		return node[path]
	}
	var cur interface{} = node
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = obj[part]
		if cur == nil {
			return nil
		}
	}
	return cur
}
