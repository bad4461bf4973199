package ensembl

import "fmt"

// StatusError is returned when the REST API answers with a non-200 status.
type StatusError struct {
	ID         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("REST API error %d for %s", e.StatusCode, e.ID)
}

// PayloadError is returned when a 200 response lacks a required field.
type PayloadError struct {
	ID    string
	Field string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("lookup response for %s is missing %q", e.ID, e.Field)
}
