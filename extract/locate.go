package extract

import "sort"

// Candidate is a sub-object of an upstream payload judged plausible to hold
// commerce data, together with where it was found and how strongly it
// matched the key vocabularies. Candidates are ephemeral: produced by the
// locator, consumed by the aggregator, never persisted.
type Candidate struct {
	Node      map[string]interface{}
	Context   string
	Timestamp string
	Score     int
}

type visitNode struct {
	obj  map[string]interface{}
	path []string
}

// locate walks one JSON-like object graph breadth-first and returns the
// highest-scoring node, or nil when nothing in the graph looks like commerce
// data. Only nested objects are traversed; arrays and scalars are leaves.
//
// Ties keep the first node found in BFS order: shallower nodes win, and
// among equal-depth nodes the one discovered earlier wins. Children are
// enqueued in sorted key order so the walk is deterministic regardless of
// map iteration order.
func locate(root interface{}, context, timestamp string) *Candidate {
	rootObj, ok := root.(map[string]interface{})
	if !ok || rootObj == nil {
		return nil
	}

	var best *Candidate
	queue := []visitNode{{obj: rootObj}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		score := scoreNode(cur.obj, cur.path)
		if score > 0 && (best == nil || score > best.Score) {
			best = &Candidate{
				Node:      cur.obj,
				Context:   context,
				Timestamp: timestamp,
				Score:     score,
			}
		}

		for _, key := range sortedKeys(cur.obj) {
			if child, ok := cur.obj[key].(map[string]interface{}); ok {
				childPath := append(append([]string(nil), cur.path...), key)
				queue = append(queue, visitNode{obj: child, path: childPath})
			}
		}
	}

	return best
}

// scoreNode rates one node by its own key/value pairs. A key counts toward a
// category only when its value is non-null and not itself an object; a node
// full of nested structure under price-ish names is a container, not a
// price.
func scoreNode(obj map[string]interface{}, path []string) int {
	matched := map[string]bool{}
	for key, val := range obj {
		if val == nil {
			continue
		}
		if _, isObj := val.(map[string]interface{}); isObj {
			continue
		}
		for _, rule := range scoreVocab {
			if !matched[rule.category] && rule.pattern.MatchString(key) {
				matched[rule.category] = true
			}
		}
	}

	score := 0
	for category, weight := range categoryWeight {
		if matched[category] {
			score += weight
		}
	}
	for _, segment := range path {
		if pathBonusPattern.MatchString(segment) {
			score++
			break
		}
	}
	return score
}

func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
