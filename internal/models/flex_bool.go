package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexBool decodes the loose booleans Flickr emits: numbers (non-zero is
// true), strings ("true" in any case or "1" is true), booleans and null
// (false). Objects and arrays are rejected. It encodes as 1 or 0.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("flexbool: empty value")
	}

	switch data[0] {
	case 'n':
		if string(data) != "null" {
			return fmt.Errorf("flexbool: malformed literal %q", data)
		}
		*b = false
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("flexbool: malformed boolean: %w", err)
		}
		*b = FlexBool(v)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flexbool: malformed string: %w", err)
		}
		*b = FlexBool(strings.EqualFold(s, "true") || s == "1")
	case '{', '[':
		return fmt.Errorf("flexbool: expected boolean, number, string or null but got %q", data[0])
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("flexbool: malformed number: %w", err)
		}
		*b = n != 0
	}

	return nil
}

func (b FlexBool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}
