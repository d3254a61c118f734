package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// IDSet is a set of record IDs stored as a JSON array column. It backs the
// sibling relation on transactions: a flat id set per record instead of
// live bidirectional pointers, rebuilt whenever a series changes.
type IDSet []string

// NewIDSet builds a sorted, deduplicated set from the given ids.
func NewIDSet(ids ...string) IDSet {
	seen := make(map[string]struct{}, len(ids))
	set := make(IDSet, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		set = append(set, id)
	}
	sort.Strings(set)
	return set
}

// Contains reports whether id is a member of the set.
func (s IDSet) Contains(id string) bool {
	for _, member := range s {
		if member == id {
			return true
		}
	}
	return false
}

// Without returns a copy of the set with id removed.
func (s IDSet) Without(id string) IDSet {
	out := make(IDSet, 0, len(s))
	for _, member := range s {
		if member != id {
			out = append(out, member)
		}
	}
	return out
}

// Value implements driver.Valuer, serializing the set as a JSON array.
func (s IDSet) Value() (driver.Value, error) {
	if s == nil {
		s = IDSet{}
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, deserializing a JSON array column.
func (s *IDSet) Scan(value interface{}) error {
	if value == nil {
		*s = IDSet{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into IDSet", value)
	}

	if len(raw) == 0 {
		*s = IDSet{}
		return nil
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("malformed IDSet column: %w", err)
	}
	*s = NewIDSet(ids...)
	return nil
}
