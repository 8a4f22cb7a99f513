package redisvec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zoernert/rhajaina-dal/store"
)

// parseSearchReply decodes an FT.SEARCH RESP2 reply: a flat array of
// [count, key1, fields1, key2, fields2, ...] where each fields entry is an
// alternating name/value array.
func parseSearchReply(collection string, raw any) ([]store.SearchResult, error) {
	arr, ok := raw.([]any)
	if ok {
		if len(arr) == 0 {
			return nil, nil
		}
		results := make([]store.SearchResult, 0, (len(arr)-1)/2)
		for i := 1; i+1 < len(arr); i += 2 {
			key, ok := asString(arr[i])
			if !ok {
				return nil, fmt.Errorf("redisvec: unexpected key type %T in search reply", arr[i])
			}
			score, err := scoreFromFields(arr[i+1])
			if err != nil {
				return nil, err
			}
			results = append(results, store.SearchResult{
				ID:    strings.TrimPrefix(key, collection+":"),
				Score: score,
			})
		}
		return results, nil
	}

	// RESP3 replies come back as a map with a "results" entry.
	m, ok := raw.(map[any]any)
	if !ok {
		return nil, fmt.Errorf("redisvec: unexpected search reply type %T", raw)
	}
	entries, ok := m["results"].([]any)
	if !ok {
		return nil, nil
	}
	results := make([]store.SearchResult, 0, len(entries))
	for _, e := range entries {
		em, ok := e.(map[any]any)
		if !ok {
			continue
		}
		key, _ := asString(em["id"])
		score, err := scoreFromFields(em["extra_attributes"])
		if err != nil {
			return nil, err
		}
		results = append(results, store.SearchResult{
			ID:    strings.TrimPrefix(key, collection+":"),
			Score: score,
		})
	}
	return results, nil
}

func scoreFromFields(fields any) (float64, error) {
	switch fv := fields.(type) {
	case []any:
		for i := 0; i+1 < len(fv); i += 2 {
			name, _ := asString(fv[i])
			if name != "score" {
				continue
			}
			return asFloat(fv[i+1])
		}
	case map[any]any:
		if v, ok := fv["score"]; ok {
			return asFloat(v)
		}
	}
	return 0, nil
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

func asFloat(v any) (float64, error) {
	s, ok := asString(v)
	if !ok {
		return 0, fmt.Errorf("redisvec: unexpected score type %T", v)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("redisvec: parse score %q: %w", s, err)
	}
	return f, nil
}

func isIndexExists(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "index already exists")
}
