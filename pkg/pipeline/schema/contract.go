package schema

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
)

// Field types understood by tabular sinks.
const (
	TypeString    = "string"
	TypeDouble    = "double"
	TypeTimestamp = "timestamp"
)

// RecordTypeOutcome tags ordinary outcome rows; statistics rows use outcome.TypeStatistics.
const RecordTypeOutcome = "OUTCOME"

// Field captures the minimal behavior-relevant schema fields.
type Field struct {
	Name     string
	Type     string
	Nullable bool
}

// Fields is the stable column contract for tabular outputs (CSV, SQLite).
var Fields = []Field{
	{Name: "record_type", Type: TypeString},
	{Name: "original_input", Type: TypeString, Nullable: true},
	{Name: "first_name", Type: TypeString, Nullable: true},
	{Name: "last_name", Type: TypeString, Nullable: true},
	{Name: "domain", Type: TypeString, Nullable: true},
	{Name: "email", Type: TypeString, Nullable: true},
	{Name: "certainty", Type: TypeDouble},
	{Name: "status", Type: TypeString},
	{Name: "error", Type: TypeString, Nullable: true},
	{Name: "timestamp", Type: TypeTimestamp},
	{Name: "attributes", Type: TypeString, Nullable: true},
}

// Header returns the column names of Fields in order.
func Header() []string {
	out := make([]string, len(Fields))
	for i, f := range Fields {
		out[i] = f.Name
	}
	return out
}

// RecordRow flattens r into Header() order. attributes is JSON or "".
func RecordRow(r outcome.Record) []string {
	var first, last, domain string
	if r.Query != nil {
		first, last, domain = r.FirstName, r.LastName, r.Domain
	}
	return []string{
		RecordTypeOutcome,
		r.OriginalInput,
		first,
		last,
		domain,
		r.EmailValue(),
		strconv.FormatFloat(r.Certainty, 'f', -1, 64),
		string(r.Status),
		r.Error,
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		jsonOrEmpty(r.Attributes),
	}
}

// StatisticsRow encodes s as a row; the counts travel in the attributes column.
func StatisticsRow(s outcome.Statistics) []string {
	counts := map[string]int{
		"total":    s.Total,
		"found":    s.Found,
		"notFound": s.NotFound,
		"errors":   s.Errors,
	}
	row := make([]string, len(Fields))
	row[0] = outcome.TypeStatistics
	row[6] = "0"
	row[7] = outcome.TypeStatistics
	row[9] = s.Timestamp.UTC().Format(time.RFC3339Nano)
	row[10] = jsonOrEmpty(counts)
	return row
}

func jsonOrEmpty[V any](m map[string]V) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		// Attribute values come from decoded JSON; keep output stable regardless.
		return ""
	}
	return string(b)
}
