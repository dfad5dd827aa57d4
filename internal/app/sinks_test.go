package app_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shpitdev/email-finder-pipeline/internal/app"
	"github.com/shpitdev/email-finder-pipeline/internal/mockresolver"
	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	localio "github.com/shpitdev/email-finder-pipeline/pkg/pipeline/io/local"
	sqliteio "github.com/shpitdev/email-finder-pipeline/pkg/pipeline/io/sqlite"
	"github.com/shpitdev/email-finder-pipeline/pkg/resolver"
)

func TestOpenSink(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		target string
		check  func(t *testing.T, s any)
	}{
		{target: "", check: func(t *testing.T, s any) { assert.IsType(t, &localio.JSONLSink{}, s) }},
		{target: "-", check: func(t *testing.T, s any) { assert.IsType(t, &localio.JSONLSink{}, s) }},
		{target: filepath.Join(dir, "out.jsonl"), check: func(t *testing.T, s any) { assert.IsType(t, &localio.JSONLSink{}, s) }},
		{target: filepath.Join(dir, "out.CSV"), check: func(t *testing.T, s any) { assert.IsType(t, &localio.CSVSink{}, s) }},
		{target: "sqlite://" + filepath.Join(dir, "out.db"), check: func(t *testing.T, s any) { assert.IsType(t, &sqliteio.Sink{}, s) }},
	}
	for _, tt := range tests {
		s, err := app.OpenSink(ctx, tt.target, "run-1", &bytes.Buffer{})
		require.NoError(t, err, tt.target)
		tt.check(t, s)
		require.NoError(t, s.Close())
	}
}

func TestOpenSink_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := app.OpenSink(ctx, "sqlite://", "run-1", nil)
	require.Error(t, err)
	assert.True(t, app.IsInputError(err))

	_, err = app.OpenSink(ctx, "redis://127.0.0.1:1/0", "run-1", nil)
	assert.Error(t, err)

	_, err = app.OpenSink(ctx, filepath.Join(t.TempDir(), "missing", "out.jsonl"), "run-1", nil)
	assert.Error(t, err)
}

func TestOpenValidationSink(t *testing.T) {
	t.Parallel()

	s, err := app.OpenValidationSink("-", &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	for _, target := range []string{"out.csv", "sqlite://x.db", "redis://localhost:6379"} {
		_, err := app.OpenValidationSink(target, nil)
		require.Error(t, err, target)
		assert.True(t, app.IsInputError(err), target)
	}
}

func TestRunValidate(t *testing.T) {
	t.Parallel()

	srv := mockresolver.New()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	v, err := resolver.NewValidator(resolver.Config{Endpoint: ts.URL + "/validate"}, quiet)
	require.NoError(t, err)

	var buf bytes.Buffer
	sink := localio.NewJSONLSink(&buf)

	res, err := app.RunValidate(context.Background(), " jane@example.com ", v, sink, quiet)
	require.NoError(t, err)
	assert.Equal(t, outcome.VerdictValid, res.Verdict)
	assert.Equal(t, "jane@example.com", res.Email)

	res, err = app.RunValidate(context.Background(), "error@example.com", v, sink, quiet)
	require.NoError(t, err, "a failed validation call is a verdict, not a run error")
	assert.Equal(t, outcome.VerdictError, res.Verdict)

	lines := readLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "VALID", lines[0]["status"])
	assert.Equal(t, "ERROR", lines[1]["status"])

	_, err = app.RunValidate(context.Background(), "  ", v, sink, quiet)
	assert.True(t, app.IsInputError(err))
	assert.Len(t, srv.Calls(), 2)
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	app.PrintSummary(&buf, app.Report{
		Statistics: outcome.Statistics{Type: outcome.TypeStatistics, Total: 4, Found: 2, NotFound: 1, Errors: 1},
		Duration:   1500 * time.Millisecond,
	})
	out := buf.String()
	for _, want := range []string{"total 4", "found 2", "not found 1", "errors 1", "1.5s"} {
		assert.Contains(t, out, want)
	}
	assert.True(t, strings.HasSuffix(out, "\n"))

	buf.Reset()
	app.PrintValidation(&buf, outcome.Validation{Email: "a@b.test", Verdict: outcome.VerdictInvalid})
	assert.Contains(t, buf.String(), "a@b.test")
	assert.Contains(t, buf.String(), "INVALID")
}
