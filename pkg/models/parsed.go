package models

import (
	"bytes"
	"encoding/json"
)

// Parsed holds either a structured value decoded from model output or the
// raw text when decoding failed.
type Parsed[T any] struct {
	value      T
	raw        string
	structured bool
}

// Structured wraps a decoded value.
func Structured[T any](v T) Parsed[T] {
	return Parsed[T]{value: v, structured: true}
}

// Raw wraps undecodable model output.
func Raw[T any](text string) Parsed[T] {
	return Parsed[T]{raw: text}
}

// Structured returns the value and true, or the zero value and false.
func (p Parsed[T]) Structured() (T, bool) {
	return p.value, p.structured
}

// IsStructured reports whether the value was decoded.
func (p Parsed[T]) IsStructured() bool {
	return p.structured
}

// Raw returns the undecoded text; empty for structured values.
func (p Parsed[T]) Raw() string {
	return p.raw
}

// MarshalJSON emits the object or, for raw values, a JSON string.
func (p Parsed[T]) MarshalJSON() ([]byte, error) {
	if p.structured {
		return json.Marshal(p.value)
	}
	return json.Marshal(p.raw)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *Parsed[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Raw[T](s)
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Structured(v)
	return nil
}

// MarshalYAML mirrors MarshalJSON for YAML reports.
func (p Parsed[T]) MarshalYAML() (interface{}, error) {
	if p.structured {
		return p.value, nil
	}
	return p.raw, nil
}
