package model

import "encoding/json"

// RawFormat flags how a raw object read came back.
type RawFormat string

const (
	// RawFormatParsed means the payload parsed as JSON and is returned
	// structured.
	RawFormatParsed RawFormat = "parsed"
	// RawFormatText means the payload did not parse; the verbatim bytes
	// are returned instead. Producer-side format drift is expected here
	// and is not an error.
	RawFormatText RawFormat = "raw"
)

// RawObject is the result of a raw passthrough read. Exactly one of JSON
// and Text is set, according to Format.
type RawObject struct {
	Key    string          `json:"s3_key"`
	Format RawFormat       `json:"format"`
	JSON   json.RawMessage `json:"json,omitempty"`
	Text   string          `json:"text,omitempty"`
}
