package entities

import (
	"encoding/json"
	"time"
)

const ResultURLField = "result_url"

// TryOnResult keeps the provider response body as-is. Only result_url is
// interpreted; every other field is passed through for display.
type TryOnResult struct {
	requestID TryOnRequestID
	fields    map[string]any
	createdAt time.Time
}

func NewTryOnResult(requestID TryOnRequestID, fields map[string]any) *TryOnResult {
	if fields == nil {
		fields = map[string]any{}
	}

	return &TryOnResult{
		requestID: requestID,
		fields:    fields,
		createdAt: time.Now(),
	}
}

func (r *TryOnResult) RequestID() TryOnRequestID {
	return r.requestID
}

func (r *TryOnResult) Fields() map[string]any {
	return r.fields
}

func (r *TryOnResult) CreatedAt() time.Time {
	return r.createdAt
}

// ResultURL is empty when the field is missing or not a string.
func (r *TryOnResult) ResultURL() string {
	url, _ := r.fields[ResultURLField].(string)
	return url
}

func (r *TryOnResult) HasResultURL() bool {
	return r.ResultURL() != ""
}

func (r *TryOnResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.fields)
}
