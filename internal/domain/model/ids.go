package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// IDSet is a parsed set of ids. A nil IDSet means "not configured", which
// callers distinguish from an empty, configured set.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// ParseIDList decodes a JSON array of ids (strings or numbers) in order,
// dropping duplicates and blanks. An empty input returns nil.
func ParseIDList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("id list: %v: %w", err, ErrMalformedConfiguration)
	}
	ids := make([]string, 0, len(items))
	for i, it := range items {
		switch v := it.(type) {
		case string:
			ids = append(ids, strings.TrimSpace(v))
		case float64:
			ids = append(ids, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			return nil, fmt.Errorf("id list: item %d: %w", i, ErrMalformedConfiguration)
		}
	}
	return lo.Uniq(lo.Compact(ids)), nil
}

// ParseIDSet decodes a JSON array of ids into a set. An empty input returns
// a nil set.
func ParseIDSet(raw string) (IDSet, error) {
	ids, err := ParseIDList(raw)
	if err != nil || ids == nil {
		return nil, err
	}
	return NewIDSet(ids...), nil
}
