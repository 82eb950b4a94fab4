package extract

import (
	"fmt"
	"time"

	"pricewatch/models"
)

// ExtractPriceSnapshot scans every data source available for one watch, in
// priority order, and assembles the best commerce signal found into a single
// canonical snapshot. A nil return means no source anywhere held a price,
// previous price or stock value, which is the normal outcome for plain
// content-change watches.
//
// The function is pure: it never mutates details or history, performs no
// I/O, and is safe to call concurrently for independent watches. details
// may be nil (e.g. the upstream fetch failed), in which case extraction is
// attempted from history alone.
func ExtractPriceSnapshot(details *models.WatchDetails, history []models.HistoryEntry) *models.PriceSnapshot {
	var candidates []*Candidate

	push := func(root interface{}, context, timestamp string) {
		cand := locate(root, context, timestamp)
		if cand == nil {
			return
		}
		if !resolveFields(cand.Node).hasSignal() {
			return
		}
		candidates = append(candidates, cand)
	}

	if details != nil {
		detailsTS := formatTimestamp(details.LastChanged)
		if detailsTS == "" {
			detailsTS = formatTimestamp(details.LastChecked)
		}

		push(details.LatestSnapshot, "latest_snapshot", subObjectTimestamp(details.LatestSnapshot, detailsTS))
		push(details.LatestData, "latest_data", subObjectTimestamp(details.LatestData, detailsTS))
		push(details.LastNotification, "last_notification",
			formatTimestamp(firstKey(details.LastNotification, "timestamp", "date", "ts")))
		push(details.Raw, "watch", detailsTS)
	}

	for i, entry := range history {
		entryTS := formatTimestamp(entry.Timestamp())
		push(entry.Snapshot(), fmt.Sprintf("history[%d].snapshot", i), entryTS)
		push(entry.Data(), fmt.Sprintf("history[%d].data", i), entryTS)
		push(entry.Raw, fmt.Sprintf("history[%d]", i), entryTS)
	}

	best := pickBest(candidates)
	if best == nil {
		return nil
	}
	return buildSnapshot(best)
}

// pickBest selects the highest-scoring candidate across all sources. Ties
// keep the earliest candidate, so source priority order decides.
func pickBest(candidates []*Candidate) *Candidate {
	var best *Candidate
	for _, c := range candidates {
		if best == nil || c.Score > best.Score {
			best = c
		}
	}
	return best
}

func buildSnapshot(cand *Candidate) *models.PriceSnapshot {
	fields := resolveFields(cand.Node)
	if !fields.hasSignal() {
		return nil
	}

	currency := stringify(fields.currency)
	label, state := DescribeStock(fields.stock)

	snap := &models.PriceSnapshot{
		StockLabel: label,
		StockState: state,
		Context:    cand.Context,
		Timestamp:  cand.Timestamp,
	}
	if price := FormatPrice(fields.price, currency); price != "" {
		snap.Price = &price
	}
	if prev := FormatPrice(fields.previous, currency); prev != "" {
		snap.PreviousPrice = &prev
	}
	if currency != "" {
		snap.Currency = &currency
	}
	if fields.imageURL != "" {
		snap.ImageURL = &fields.imageURL
	}
	return snap
}

// subObjectTimestamp prefers a sub-object's own timestamp field over the
// fallback resolved from the parent watch.
func subObjectTimestamp(obj map[string]interface{}, fallback string) string {
	if obj != nil {
		if ts := formatTimestamp(obj["timestamp"]); ts != "" {
			return ts
		}
	}
	return fallback
}

// formatTimestamp renders an upstream timestamp of unknown shape. Numbers
// above 1e12 are epoch milliseconds, above 1e9 epoch seconds; smaller
// numbers are not plausible timestamps and are ignored. Strings pass
// through untouched.
func formatTimestamp(raw interface{}) string {
	switch v := raw.(type) {
	case float64:
		if v > 1e12 {
			return time.UnixMilli(int64(v)).UTC().Format(time.RFC3339)
		}
		if v > 1e9 {
			return time.Unix(int64(v), 0).UTC().Format(time.RFC3339)
		}
		return ""
	case int64:
		return formatTimestamp(float64(v))
	case int:
		return formatTimestamp(float64(v))
	case string:
		return v
	default:
		return ""
	}
}

func firstKey(obj map[string]interface{}, keys ...string) interface{} {
	if obj == nil {
		return nil
	}
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
