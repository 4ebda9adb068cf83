package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// StringSet is a list of strings stored as a JSON array column.
type StringSet []string

func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringSet) Scan(src any) error {
	var out []string
	if err := scanJSON(src, &out); err != nil {
		return fmt.Errorf("scan string set: %w", err)
	}
	*s = out
	return nil
}

// Contains reports whether v is in the set, ignoring case.
func (s StringSet) Contains(v string) bool {
	return slices.ContainsFunc(s, func(e string) bool {
		return strings.EqualFold(strings.TrimSpace(e), v)
	})
}

// IntSet is a list of ints stored as a JSON array column.
type IntSet []int

func (s IntSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]int(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *IntSet) Scan(src any) error {
	var out []int
	if err := scanJSON(src, &out); err != nil {
		return fmt.Errorf("scan int set: %w", err)
	}
	*s = out
	return nil
}

func (s IntSet) Contains(v int) bool {
	return slices.Contains(s, v)
}

func scanJSON(src any, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
