package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ParentRef points at another category by id and carries a denormalized copy of its name.
type ParentRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Category is the flat record served by the catalog origin.
type Category struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Image       *string    `json:"image"`
	Parent      *ParentRef `json:"parent"` // nil for root categories
	Level       int        `json:"level"`  // hint only, the tree is derived from Parent
	CreatedAt   time.Time  `json:"createdAt"`
}

func (c *Category) IsRoot() bool {
	return c.Parent == nil
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON decodes level and createdAt leniently: an unparseable value
// leaves the zero value instead of rejecting the record.
func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	aux := struct {
		*plain
		Level     json.RawMessage `json:"level"`
		CreatedAt json.RawMessage `json:"createdAt"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Level = parseLevel(aux.Level)
	c.CreatedAt = parseCreatedAt(aux.CreatedAt)
	return nil
}

func parseLevel(raw json.RawMessage) int {
	s := rawString(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseCreatedAt(raw json.RawMessage) time.Time {
	s := rawString(raw)
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

// rawString returns a JSON scalar without quotes; null and absent give "".
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return string(raw)
}

// CategoryNode is a Category placed in the navigation forest.
type CategoryNode struct {
	Category
	Icon          string         `json:"icon,omitempty"`
	Subcategories []CategoryNode `json:"subcategories"`
}

// UnmarshalJSON keeps the node fields that Category's promoted decoder would skip.
func (n *CategoryNode) UnmarshalJSON(data []byte) error {
	if err := n.Category.UnmarshalJSON(data); err != nil {
		return err
	}
	var extra struct {
		Icon          string         `json:"icon"`
		Subcategories []CategoryNode `json:"subcategories"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	n.Icon = extra.Icon
	n.Subcategories = extra.Subcategories
	return nil
}
