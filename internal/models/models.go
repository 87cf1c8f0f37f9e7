package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Nested documents (addresses, logs, summaries) live in JSONB columns. These
// helpers back the driver.Valuer / sql.Scanner implementations of those types.

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json column: %w", err)
	}
	return b, nil
}

func jsonScan(src interface{}, dst interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// Page is a paginated list response.
type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Pagination holds normalised page/limit values.
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip. Page is clamped to MaxPage so
// the product never overflows.
func (p Pagination) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	page := p.Page
	if page > MaxPage {
		page = MaxPage
	}
	return (page - 1) * p.Limit
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = 1_000_000
)

// NewPagination applies defaults: page 1, limit 10, limit capped at MaxLimit.
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit}
}
