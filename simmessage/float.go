package simmessage

import (
	"math"
	"strconv"
)

// Float is float64 with JSON encoding that represents NaN as null instead
// of failing the marshal outright (encoding/json rejects NaN: golang/go
// issue 3480). The admin surface's /stats endpoint needs this because a
// derived rate like instructions-per-cycle is legitimately NaN before the
// first cycle completes.
type Float float64

// NaN is the Float value admin/stats reports before SimCycle advances.
var NaN = Float(math.NaN())

func (f Float) IsNaN() bool { return math.IsNaN(float64(f)) }

func (f Float) MarshalJSON() ([]byte, error) {
	if f.IsNaN() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(make([]byte, 0, 10), float64(f), 'f', 3, 64), nil
}

func (f *Float) UnmarshalJSON(input []byte) error {
	if string(input) == "null" {
		*f = NaN
		return nil
	}
	val, err := strconv.ParseFloat(string(input), 64)
	if err != nil {
		return err
	}
	*f = Float(val)
	return nil
}
