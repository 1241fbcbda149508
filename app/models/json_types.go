package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSONMap stores an opaque key/value map in a JSON column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	return json.Unmarshal(jsonBytes(value), m)
}

// StringList stores a list of strings (tags) in a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	return json.Unmarshal(jsonBytes(value), l)
}

// ProductImage is a single gallery entry. At most one image should carry
// IsMain; MainImage falls back to insertion order when none does.
type ProductImage struct {
	URL       string `json:"url"`
	SortOrder int    `json:"sortOrder"`
	IsMain    bool   `json:"isMain"`
}

// ImageList stores the product gallery in a JSON column.
type ImageList []ProductImage

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	return json.Unmarshal(jsonBytes(value), l)
}

// Dimensions describes physical product size. Stored as JSON because the
// store never filters on it.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

func (d Dimensions) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *Dimensions) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	return json.Unmarshal(jsonBytes(value), d)
}

func jsonBytes(value interface{}) []byte {
	switch v := value.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return nil
	}
}
