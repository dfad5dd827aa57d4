package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/core"
	localio "github.com/shpitdev/email-finder-pipeline/pkg/pipeline/io/local"
	redisio "github.com/shpitdev/email-finder-pipeline/pkg/pipeline/io/redis"
	sqliteio "github.com/shpitdev/email-finder-pipeline/pkg/pipeline/io/sqlite"
)

const (
	schemeSQLite = "sqlite://"
	schemeRedis  = "redis://"
	schemeRedisS = "rediss://"
)

// OpenSink selects a sink from an --output value:
//
//	"" or "-"                 JSON lines on stdout
//	sqlite://<path>           SQLite database
//	redis[s]://host:port/db   Redis list (?key=<name>)
//	*.csv                     CSV file
//	anything else             JSON lines file
func OpenSink(ctx context.Context, target, runID string, stdout io.Writer) (core.Sink, error) {
	target = strings.TrimSpace(target)
	switch {
	case target == "" || target == "-":
		return localio.NewJSONLSink(stdout), nil
	case strings.HasPrefix(target, schemeSQLite):
		s, err := sqliteio.Open(ctx, strings.TrimPrefix(target, schemeSQLite), runID)
		if err != nil {
			return nil, &InputError{Err: err}
		}
		return s, nil
	case strings.HasPrefix(target, schemeRedis), strings.HasPrefix(target, schemeRedisS):
		s, err := redisio.Dial(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("open redis output: %w", err)
		}
		return s, nil
	case strings.EqualFold(filepath.Ext(target), ".csv"):
		return localio.CreateCSV(target)
	default:
		return localio.CreateJSONL(target)
	}
}

// ValidationOutput is where validation records go.
type ValidationOutput interface {
	ValidationSink
	io.Closer
}

// OpenValidationSink supports JSON lines only: stdout or a file path.
func OpenValidationSink(target string, stdout io.Writer) (ValidationOutput, error) {
	target = strings.TrimSpace(target)
	switch {
	case target == "" || target == "-":
		return localio.NewJSONLSink(stdout), nil
	case strings.Contains(target, "://"), strings.EqualFold(filepath.Ext(target), ".csv"):
		return nil, &InputError{Err: fmt.Errorf("validation output must be stdout or a JSON lines file, got %q", target)}
	default:
		return localio.CreateJSONL(target)
	}
}
