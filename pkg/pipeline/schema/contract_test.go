package schema_test

import (
	"testing"
	"time"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	"github.com/shpitdev/email-finder-pipeline/pkg/person"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/schema"
)

var at = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func TestHeaderMatchesFields(t *testing.T) {
	h := schema.Header()
	if len(h) != len(schema.Fields) {
		t.Fatalf("header len %d, fields len %d", len(h), len(schema.Fields))
	}
	if h[0] != "record_type" || h[5] != "email" || h[10] != "attributes" {
		t.Fatalf("unexpected header: %v", h)
	}
}

func TestRecordRow(t *testing.T) {
	email := "john.doe@example.com"
	row := schema.RecordRow(outcome.Record{
		Query:      &person.Query{FirstName: "John", LastName: "Doe", Domain: "example.com"},
		Email:      &email,
		Certainty:  80,
		Status:     outcome.StatusFound,
		Timestamp:  at,
		Attributes: map[string]any{"verified": true},
	})
	want := []string{"OUTCOME", "", "John", "Doe", "example.com", email, "80", "FOUND", "", "2026-10-14T12:00:00Z", `{"verified":true}`}
	if len(row) != len(want) {
		t.Fatalf("row len: want %d got %d", len(want), len(row))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("row[%d] (%s): want %q got %q", i, schema.Fields[i].Name, want[i], row[i])
		}
	}
}

func TestRecordRow_ParseFailure(t *testing.T) {
	row := schema.RecordRow(outcome.Record{OriginalInput: "junk", Status: outcome.StatusError, Error: "Parse error: x", Timestamp: at})
	if row[1] != "junk" || row[2] != "" || row[5] != "" || row[7] != "ERROR" || row[10] != "" {
		t.Fatalf("unexpected row: %#v", row)
	}
}

func TestStatisticsRow(t *testing.T) {
	row := schema.StatisticsRow(outcome.Statistics{Type: outcome.TypeStatistics, Total: 3, Found: 1, NotFound: 1, Errors: 1, Timestamp: at})
	if row[0] != "STATISTICS" || row[7] != "STATISTICS" {
		t.Fatalf("unexpected tags: %#v", row)
	}
	if row[10] != `{"errors":1,"found":1,"notFound":1,"total":3}` {
		t.Fatalf("unexpected counts: %s", row[10])
	}
}
