package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoJSON = errors.New("jsonutil: no JSON payload")

// MarshalNoEscape encodes v into JSON without escaping <, >, & as unicode sequences.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalNoEscapeIndent is MarshalNoEscape with indentation.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// StripFences removes a surrounding markdown code fence (``` or ```json)
// that models sometimes wrap JSON answers in.
func StripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return []byte(s)
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}

// UnmarshalFlex unmarshals raw into v with best effort:
// 1) direct unmarshal
// 2) after stripping a code fence
// 3) after unwrapping a JSON string that itself holds the document
func UnmarshalFlex(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ErrNoJSON
	}
	err := json.Unmarshal(raw, v)
	if err == nil {
		return nil
	}
	stripped := StripFences(raw)
	if len(stripped) == 0 {
		return ErrNoJSON
	}
	if json.Unmarshal(stripped, v) == nil {
		return nil
	}
	var inner string
	if json.Unmarshal(stripped, &inner) == nil {
		if json.Unmarshal(StripFences([]byte(inner)), v) == nil {
			return nil
		}
	}
	return err
}
