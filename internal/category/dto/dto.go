package dto

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
)

type CategoryFilters struct {
	ParentID *string `json:"parent_id,omitempty"` // Nil means ignore, Empty string means root categories
	Level    *int    `json:"level,omitempty"`
}

// CacheKey is stable for equal filters.
func (f *CategoryFilters) CacheKey() string {
	if f == nil {
		f = &CategoryFilters{}
	}
	raw, _ := json.Marshal(f)
	return fmt.Sprintf("categories:list:%x", md5.Sum(raw))
}
