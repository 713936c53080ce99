package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when the inbound query is missing or empty.
	ErrValidation = errors.New("query is required")

	// ErrConfiguration is returned when a required credential is not configured.
	ErrConfiguration = errors.New("missing configuration")

	// ErrParse is returned when the language model answer is not valid JSON.
	ErrParse = errors.New("invalid model response")

	// ErrExtractSchema is returned when the model answer is JSON but does not match the extract schema.
	ErrExtractSchema = errors.New("model response does not match schema")

	// ErrTransientNetwork is returned when an outbound call failed after all retries.
	ErrTransientNetwork = errors.New("upstream unreachable")
)

// UpstreamHTTPError is a non-2xx response from the catalog API.
type UpstreamHTTPError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.Status)
}
