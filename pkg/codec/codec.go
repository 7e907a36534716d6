// Package codec defines the pluggable JSON serializer used for request and
// response bodies. Any implementation of Codec may be substituted at client
// construction or per index handle.
package codec

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
)

// Codec serializes values to and from JSON bytes
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Std uses encoding/json from the standard library
type Std struct{}

// Marshal implements Codec
func (Std) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements Codec
func (Std) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Fast uses json-iterator in its stdlib-compatible configuration. Prefer it
// for large document payloads.
type Fast struct{}

var fastAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal implements Codec
func (Fast) Marshal(v any) ([]byte, error) {
	return fastAPI.Marshal(v)
}

// Unmarshal implements Codec
func (Fast) Unmarshal(data []byte, v any) error {
	return fastAPI.Unmarshal(data, v)
}

// Default returns the codec used when none is configured
func Default() Codec {
	return Std{}
}
