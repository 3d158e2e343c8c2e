package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID is a numeric identifier issued by the commerce API. The API emits ids either
// as JSON numbers or as quoted strings, both decode here.
type ID int64

// UnmarshalJSON accepts 12, "12" and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*id = 0
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*id = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", s, err)
		}
		*id = ID(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("invalid id %s: %w", raw, err)
	}
	*id = ID(v)
	return nil
}

// String renders the id in decimal form, as expected by form-encoded calls.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID converts a path or query value into an ID.
func ParseID(raw string) (ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return ID(v), nil
}

// Price is a major-unit amount that tolerates string, number and null encodings.
// Unparseable, non-finite or missing values count as zero.
type Price float64

// UnmarshalJSON accepts 19.99, "19.99", "" and null.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*p = 0
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			*p = 0
			return nil
		}
		*p = Price(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		*p = 0
		return nil
	}
	*p = Price(v)
	return nil
}

// Float64 returns the value, with non-finite values as zero.
func (p Price) Float64() float64 {
	v := float64(p)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// MinorAmount is an amount in minor currency units. The commerce API stores it as
// a numeric column and may return it as a string.
type MinorAmount int64

// UnmarshalJSON accepts 750000, "750000", "7500.00" and null. Fractions are rounded.
func (a *MinorAmount) UnmarshalJSON(data []byte) error {
	var p Price
	if err := p.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = MinorAmount(math.Round(float64(p)))
	return nil
}

// Major converts the amount into major units for display.
func (a MinorAmount) Major() float64 {
	return float64(a) / 100
}
