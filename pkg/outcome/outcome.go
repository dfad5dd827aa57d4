// Package outcome defines the terminal records a finder run emits.
package outcome

import (
	"time"

	"github.com/shpitdev/email-finder-pipeline/pkg/person"
)

// Status is the terminal state of one input item.
type Status string

const (
	StatusFound    Status = "FOUND"
	StatusNotFound Status = "NOT_FOUND"
	StatusError    Status = "ERROR"
)

// TypeStatistics tags the final statistics record in an output stream.
const TypeStatistics = "STATISTICS"

// Record is the result of processing one input item.
//
// Query is nil only for parse failures, which carry OriginalInput instead.
// Email is nil unless the resolver returned an address.
type Record struct {
	OriginalInput string `json:"originalInput,omitempty"`
	*person.Query

	Email     *string   `json:"email"`
	Certainty float64   `json:"certainty"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// Attributes holds response fields the resolver returned beyond the known ones.
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ParseFailure builds the record for an input that never became a query.
func ParseFailure(raw string, err error, at time.Time) Record {
	msg := "Parse error"
	if err != nil {
		msg += ": " + err.Error()
	}
	return Record{
		OriginalInput: raw,
		Status:        StatusError,
		Error:         msg,
		Timestamp:     at.UTC(),
	}
}

// Failure builds the record for a query whose resolution failed.
func Failure(q person.Query, err error, at time.Time) Record {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Record{
		Query:     &q,
		Status:    StatusError,
		Error:     msg,
		Timestamp: at.UTC(),
	}
}

// EmailValue returns the resolved address or "".
func (r Record) EmailValue() string {
	if r.Email == nil {
		return ""
	}
	return *r.Email
}

// Statistics summarizes a run by outcome status.
type Statistics struct {
	Type      string    `json:"type"`
	Total     int       `json:"total"`
	Found     int       `json:"found"`
	NotFound  int       `json:"notFound"`
	Errors    int       `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
}

// Count tallies records by status. Total is always Found+NotFound+Errors;
// records with an unrecognized status count as errors.
func Count(records []Record, at time.Time) Statistics {
	s := Statistics{Type: TypeStatistics, Timestamp: at.UTC()}
	for _, r := range records {
		switch r.Status {
		case StatusFound:
			s.Found++
		case StatusNotFound:
			s.NotFound++
		default:
			s.Errors++
		}
	}
	s.Total = s.Found + s.NotFound + s.Errors
	return s
}
