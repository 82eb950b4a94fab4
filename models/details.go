package models

import (
	"encoding/json"
)

// WatchDetails is the current state of one watched page as reported by the
// change-detection service. The upstream payload is versioned and schema-less,
// so beyond a handful of well-known fields everything is kept as the raw
// decoded map and interpreted heuristically by the extraction engine.
//
// Instances are read-only views: the engine never mutates them.
type WatchDetails struct {
	Title       string
	URL         string
	LastChecked interface{} // epoch number or string, as sent upstream
	LastChanged interface{}

	LastNotification map[string]interface{}
	LatestSnapshot   map[string]interface{}
	LatestData       map[string]interface{}

	// Raw is the complete decoded object, including every field above.
	// The engine scans it as a candidate root of its own.
	Raw map[string]interface{}
}

// UnmarshalJSON decodes the free-form upstream object, keeping both the raw
// map view and the typed convenience fields.
func (d *WatchDetails) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Raw = raw
	if s, ok := raw["title"].(string); ok {
		d.Title = s
	}
	if s, ok := raw["url"].(string); ok {
		d.URL = s
	}
	d.LastChecked = raw["last_checked"]
	d.LastChanged = raw["last_changed"]
	d.LastNotification = subObject(raw, "last_notification")
	d.LatestSnapshot = subObject(raw, "latest_snapshot")
	d.LatestData = subObject(raw, "latest_data")
	return nil
}

// HistoryEntry is one past observation of a watched page. Only the timestamp
// and the snapshot/data sub-objects matter; key names vary across upstream
// revisions, so accessors probe the known aliases in order.
type HistoryEntry struct {
	Raw map[string]interface{}
}

// UnmarshalJSON keeps the raw decoded object.
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Raw)
}

// Timestamp returns the entry's own timestamp under whichever alias is
// present, or nil.
func (e HistoryEntry) Timestamp() interface{} {
	return firstValue(e.Raw, "timestamp", "ts", "time", "date")
}

// Snapshot returns the entry's snapshot sub-object, if any.
func (e HistoryEntry) Snapshot() map[string]interface{} {
	return subObject(e.Raw, "snapshot")
}

// Data returns the entry's data sub-object, if any.
func (e HistoryEntry) Data() map[string]interface{} {
	return subObject(e.Raw, "data")
}

func subObject(raw map[string]interface{}, key string) map[string]interface{} {
	if raw == nil {
		return nil
	}
	if m, ok := raw[key].(map[string]interface{}); ok {
		return m
	}
	return nil
}

func firstValue(raw map[string]interface{}, keys ...string) interface{} {
	if raw == nil {
		return nil
	}
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
