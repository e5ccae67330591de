package domain

import (
	"bytes"
	"fmt"
	"strconv"
)

// FlexInt64 is a 64-bit id as it appears on the wire. The remote tabular
// store has been inconsistent across entity versions and may serialize ids
// as a JSON number, a string-encoded integer, or an integral float. Decoding
// tries those encodings in order; marshalling always produces a number.
//
// The zero value marks "not assigned yet" and is omitted from insert
// payloads so the store generates the id.
type FlexInt64 int64

func (f FlexInt64) Int64() int64 { return int64(f) }

func (f FlexInt64) String() string { return strconv.FormatInt(int64(f), 10) }

func (f FlexInt64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(f), 10)), nil
}

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	v, err := ParseFlexInt64(data)
	if err != nil {
		return err
	}
	*f = FlexInt64(v)
	return nil
}

// ParseFlexInt64 decodes an id-like wire value, trying a small ordered list
// of candidate encodings: integer literal, string-encoded integer, integral
// float. null decodes to 0 (unassigned).
func ParseFlexInt64(data []byte) (int64, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, nil
	}

	if v, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		return v, nil
	}

	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		inner := string(data[1 : len(data)-1])
		if v, err := strconv.ParseInt(inner, 10, 64); err == nil {
			return v, nil
		}
		return 0, fmt.Errorf("flexint: string %q is not an integer", inner)
	}

	// Some encoders emit integral floats (42.0) for bigint columns
	if v, err := strconv.ParseFloat(string(data), 64); err == nil && v == float64(int64(v)) {
		return int64(v), nil
	}

	return 0, fmt.Errorf("flexint: cannot decode %q as int64", string(data))
}
