package customer

import (
	"encoding/json"
	"strings"
)

// FlexString decodes a JSON string and treats any other JSON type as absent.
type FlexString struct {
	Value string
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler without ever failing.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	*f = FlexString{}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Value = s
		f.Set = strings.TrimSpace(s) != ""
	}
	return nil
}

// FlexFloat decodes a JSON number. Strings, booleans and null are absent.
type FlexFloat struct {
	Value float64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler without ever failing.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat{}
	if isNull(data) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value = n
		f.Set = true
	}
	return nil
}

// Ptr returns the value as a pointer, or nil when absent.
func (f FlexFloat) Ptr() *float64 {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// FlexBool decodes a boolean flag that may arrive as a JSON bool or as a
// "Yes"/"No" style string. Unrecognized encodings decode as absent.
type FlexBool struct {
	Value bool
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler without ever failing.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	*f = FlexBool{}
	if isNull(data) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		f.Value = b
		f.Set = true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "true", "y":
			f.Value, f.Set = true, true
		case "no", "false", "n":
			f.Value, f.Set = false, true
		}
	}
	return nil
}

func isNull(data []byte) bool {
	return strings.TrimSpace(string(data)) == "null"
}
