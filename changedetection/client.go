package changedetection

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"pricewatch/models"
)

// Client talks to the change-detection service's REST API. The service owns
// the actual page scraping; this client only fetches whatever state it has
// already captured.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. The API key is sent as
// the x-api-key header on every request.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetWatch fetches the current details for one watch.
func (c *Client) GetWatch(watchUUID string) (*models.WatchDetails, error) {
	body, status, err := c.get("/api/v1/watch/" + watchUUID)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("watch %s: unexpected status %d", watchUUID, status)
	}

	var details models.WatchDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("failed to decode watch %s: %v", watchUUID, err)
	}
	return &details, nil
}

// GetWatchHistory fetches past observations for a watch, most recent first,
// at most limit entries. The upstream endpoint has returned both a JSON
// array of entries and a map of epoch-timestamp keys across versions; both
// shapes are normalized here. A 404 or an empty body is not an error, just
// an empty history.
func (c *Client) GetWatchHistory(watchUUID string, limit int) ([]models.HistoryEntry, error) {
	body, status, err := c.get("/api/v1/watch/" + watchUUID + "/history")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("watch %s history: unexpected status %d", watchUUID, status)
	}
	if len(body) == 0 {
		return nil, nil
	}

	entries, err := decodeHistory(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode history for watch %s: %v", watchUUID, err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ListWatches fetches all watches known upstream, keyed by UUID.
func (c *Client) ListWatches() (map[string]*models.WatchDetails, error) {
	body, status, err := c.get("/api/v1/watch")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list watches: unexpected status %d", status)
	}

	watches := make(map[string]*models.WatchDetails)
	if err := json.Unmarshal(body, &watches); err != nil {
		return nil, fmt.Errorf("failed to decode watch list: %v", err)
	}
	return watches, nil
}

func (c *Client) get(path string) ([]byte, int, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %v", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request to %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response from %s: %v", path, err)
	}
	return body, resp.StatusCode, nil
}

// decodeHistory normalizes the two history shapes the upstream service has
// shipped: an ordered array of entry objects, or a map keyed by epoch
// timestamp whose values are entry objects or opaque snapshot refs.
func decodeHistory(body []byte) ([]models.HistoryEntry, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var entries []models.HistoryEntry
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(body, &keyed); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.ParseFloat(keys[i], 64)
		b, errB := strconv.ParseFloat(keys[j], 64)
		if errA != nil || errB != nil {
			return keys[i] > keys[j]
		}
		return a > b
	})

	entries := make([]models.HistoryEntry, 0, len(keys))
	for _, k := range keys {
		raw := map[string]interface{}{}
		var obj map[string]interface{}
		if err := json.Unmarshal(keyed[k], &obj); err == nil && obj != nil {
			raw = obj
		}
		if !hasTimestampKey(raw) {
			if epoch, err := strconv.ParseFloat(k, 64); err == nil {
				raw["timestamp"] = epoch
			} else {
				raw["timestamp"] = k
			}
		}
		entries = append(entries, models.HistoryEntry{Raw: raw})
	}
	return entries, nil
}

func hasTimestampKey(raw map[string]interface{}) bool {
	for _, k := range []string{"timestamp", "ts", "time", "date"} {
		if v, ok := raw[k]; ok && v != nil {
			return true
		}
	}
	return false
}
