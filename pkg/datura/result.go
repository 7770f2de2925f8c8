package datura

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Result holds a response payload from the Datura API. The payload shape is
// defined entirely by the service; Result verifies only that the body is a
// valid JSON document and leaves interpretation to the caller.
type Result struct {
	raw []byte
}

// newResult wraps a response body, failing with a decode error when the body
// is not valid JSON.
func newResult(body []byte) (*Result, error) {
	if !json.Valid(body) {
		return nil, NewDecodeError("response body is not valid JSON")
	}
	return &Result{raw: body}, nil
}

// Raw returns the unmodified JSON payload.
func (r *Result) Raw() json.RawMessage {
	return json.RawMessage(r.raw)
}

// Get returns the value at the given gjson path within the payload, e.g.
// "completion.summary" or "miner_tweets.0.text". The zero gjson.Result is
// returned when the path does not exist.
func (r *Result) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

// Decode unmarshals the payload into v, for callers who know the shape.
func (r *Result) Decode(v any) error {
	if err := json.Unmarshal(r.raw, v); err != nil {
		return NewDecodeError("decoding response payload: " + err.Error())
	}
	return nil
}

// String returns the payload as a string, mainly for logging and debugging.
func (r *Result) String() string {
	return string(r.raw)
}
