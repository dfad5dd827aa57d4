// Package person turns raw person-identifying strings into normalized queries.
package person

import (
	"errors"
	"fmt"
	"strings"
)

// Query is the normalized lookup key sent to the resolver.
type Query struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Domain    string `json:"domain"`
}

var (
	ErrDomainRequired = errors.New("Domain is required")
	ErrNameRequired   = errors.New("At least firstName or lastName must be provided")
)

// ParseError reports a raw input that could not be turned into a Query.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e == nil || e.Err == nil {
		return "parse error"
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validate checks the field constraints every dispatched Query must satisfy.
func (q Query) Validate() error {
	if q.Domain == "" {
		return ErrDomainRequired
	}
	if q.FirstName == "" && q.LastName == "" {
		return ErrNameRequired
	}
	return nil
}

// Parse splits raw on the first separator it contains, by priority tab,
// semicolon, comma, and maps the trimmed fields onto a Query.
//
// Three or more fields map positionally to first name, last name, domain.
// Two fields are read as "<full name>, <domain>": the first whitespace token
// of the full name is the first name and the rest is the last name.
func Parse(raw string) (Query, error) {
	q, err := split(raw)
	if err != nil {
		return Query{}, &ParseError{Input: raw, Err: err}
	}
	if err := q.Validate(); err != nil {
		return Query{}, &ParseError{Input: raw, Err: err}
	}
	return q, nil
}

func split(raw string) (Query, error) {
	sep := ","
	switch {
	case strings.Contains(raw, "\t"):
		sep = "\t"
	case strings.Contains(raw, ";"):
		sep = ";"
	}

	parts := strings.Split(raw, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch {
	case len(parts) >= 3:
		return Query{FirstName: parts[0], LastName: parts[1], Domain: parts[2]}, nil
	case len(parts) == 2:
		tokens := strings.Fields(parts[0])
		q := Query{Domain: parts[1]}
		if len(tokens) > 0 {
			q.FirstName = tokens[0]
			q.LastName = strings.Join(tokens[1:], " ")
		}
		return q, nil
	default:
		return Query{}, fmt.Errorf("Invalid person format: %s", raw)
	}
}

// FromFields builds a Query from already separated fields. website may be a
// bare domain or a company URL; it is reduced to a lowercase host name.
func FromFields(firstName, lastName, website string) (Query, error) {
	q := Query{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Domain:    NormalizeDomain(website),
	}
	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}

// NormalizeDomain lowercases s and strips a URL scheme, a leading "www.",
// and anything after the host (port, path, query, fragment).
func NormalizeDomain(s string) string {
	d := strings.ToLower(strings.TrimSpace(s))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#:"); i >= 0 {
		d = d[:i]
	}
	return strings.TrimSuffix(d, ".")
}
