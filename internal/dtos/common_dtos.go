package dtos

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValidationErrorDetail is one field-level validation failure.
type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPageMeta(total int64, page, limit int) PageMeta {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PageMeta{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

type MessageResponse struct {
	Message string `json:"message"`
}

// OptionalFloat accepts a JSON number or a numeric string. null, "" and a
// missing key all leave it unset.
type OptionalFloat struct {
	Value   float64
	Present bool
}

func (o *OptionalFloat) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*o = OptionalFloat{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*o = OptionalFloat{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("expected a number, got %q", s)
		}
		*o = OptionalFloat{Value: v, Present: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("expected a number: %w", err)
	}
	*o = OptionalFloat{Value: v, Present: true}
	return nil
}

func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o OptionalFloat) Ptr() *float64 {
	if !o.Present {
		return nil
	}
	v := o.Value
	return &v
}
