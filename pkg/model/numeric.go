package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Amount is a monetary value. Upstream systems deliver prices as either JSON
// numbers or strings ("12.50", "$12.50"); unparsable values coerce to zero
// rather than failing the request.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount(coerceFloat(data))
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(a))
}

// Quantity is a unit count. Allocations are whole units but session usage
// may be fractional (e.g. 1.5 hours of a support item), so it shares the
// lenient numeric parsing of Amount.
type Quantity float64

func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q = Quantity(coerceFloat(data))
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(q))
}

// coerceFloat parses a JSON number or string into a float64, returning 0 for
// null, empty, or unparsable input.
func coerceFloat(data []byte) float64 {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return 0
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return 0
		}
		s = strings.TrimSpace(str)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
