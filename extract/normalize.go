package extract

import (
	"fmt"
	"strings"

	"pricewatch/models"
)

// Keyword sets for string stock values. Positive is checked before negative,
// so "unavailable right now" still needs an explicit negative phrase to read
// as out of stock.
var (
	stockPositive = []string{"in stock", "instock", "available", "true", "yes"}
	stockNegative = []string{"out of stock", "oos", "sold out", "false", "no"}
)

// DescribeStock turns a raw stock value of any shape into a display label
// and a tri-state. It never fails: values it cannot interpret come back as
// StockUnknown with a best-effort label.
func DescribeStock(raw interface{}) (string, models.TriState) {
	switch v := raw.(type) {
	case nil:
		return "Unknown", models.StockUnknown
	case bool:
		if v {
			return "In stock", models.StockIn
		}
		return "Out of stock", models.StockOut
	case float64:
		return stockFromNumber(v)
	case int:
		return stockFromNumber(float64(v))
	case int64:
		return stockFromNumber(float64(v))
	case string:
		lower := strings.ToLower(v)
		for _, kw := range stockPositive {
			if strings.Contains(lower, kw) {
				return "In stock", models.StockIn
			}
		}
		for _, kw := range stockNegative {
			if strings.Contains(lower, kw) {
				return "Out of stock", models.StockOut
			}
		}
		return v, models.StockUnknown
	default:
		return fmt.Sprintf("%v", raw), models.StockUnknown
	}
}

func stockFromNumber(v float64) (string, models.TriState) {
	if v > 0 {
		return "In stock", models.StockIn
	}
	return "Out of stock", models.StockOut
}

// FormatPrice renders a raw price value as a display string, optionally
// prefixed with a currency tag. Numbers get exactly two decimal places;
// strings are passed through trimmed since upstream strings often already
// carry symbols or locale formatting. An empty result means "no price".
func FormatPrice(raw interface{}, currency string) string {
	var value string
	switch v := raw.(type) {
	case float64:
		value = fmt.Sprintf("%.2f", v)
	case int:
		value = fmt.Sprintf("%.2f", float64(v))
	case int64:
		value = fmt.Sprintf("%.2f", float64(v))
	case string:
		value = strings.TrimSpace(v)
	default:
		return ""
	}
	if value == "" {
		return ""
	}
	if currency == "" {
		return value
	}
	if currencyCodePattern.MatchString(currency) {
		return currency + " " + value
	}
	return currency + value
}

// stringify renders an arbitrary scalar for use as a currency tag or image
// URL. Objects and nil come back empty.
func stringify(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case bool:
		return fmt.Sprintf("%t", v)
	case map[string]interface{}, []interface{}:
		return ""
	default:
		return fmt.Sprintf("%v", raw)
	}
}
