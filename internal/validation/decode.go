package validation

import (
	"bytes"
	"encoding/json"
)

const (
	MsgNotString = "Not a valid string."
	MsgNull      = "This field may not be null."
)

// DecodeStrings reads a JSON object whose fields of interest are all strings.
// Each entry of fields points at the destination for that JSON key. A key
// absent from the object leaves its destination nil; a null or non-string
// value is reported in the returned Errors instead of failing the decode.
// Unknown keys are ignored.
//
// The error is non-nil only when data is not a JSON object at all.
func DecodeStrings(data []byte, fields map[string]**string) (Errors, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	errs := Errors{}
	for name, dst := range fields {
		value, ok := raw[name]
		if !ok {
			continue
		}
		if bytes.Equal(value, []byte("null")) {
			errs.Add(name, MsgNull)
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			errs.Add(name, MsgNotString)
			continue
		}
		*dst = &s
	}
	return errs, nil
}

// Clone returns a copy of e that can be added to without touching e. A nil
// receiver yields an empty map.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for field, msgs := range e {
		out[field] = append([]string(nil), msgs...)
	}
	return out
}
