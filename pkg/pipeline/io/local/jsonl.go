package local

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/core"
)

var (
	_ core.Sink = (*JSONLSink)(nil)
	_ core.Sink = (*CSVSink)(nil)
)

// JSONLSink writes one JSON object per line: outcome records followed by a
// single statistics record. Every Store is flushed before it returns.
type JSONLSink struct {
	bw     *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONLSink writes to w. Close does not close w.
func NewJSONLSink(w io.Writer) *JSONLSink {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &JSONLSink{bw: bw, enc: enc}
}

// CreateJSONL truncates or creates path and writes to it.
func CreateJSONL(path string) (*JSONLSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	s := NewJSONLSink(f)
	s.closer = f
	return s, nil
}

func (s *JSONLSink) Store(_ context.Context, records []outcome.Record) error {
	for _, r := range records {
		if err := s.enc.Encode(r); err != nil {
			return err
		}
	}
	return s.bw.Flush()
}

func (s *JSONLSink) StoreStatistics(_ context.Context, stats outcome.Statistics) error {
	if err := s.enc.Encode(stats); err != nil {
		return err
	}
	return s.bw.Flush()
}

// StoreValidation writes a single validation record.
func (s *JSONLSink) StoreValidation(_ context.Context, v outcome.Validation) error {
	if err := s.enc.Encode(v); err != nil {
		return err
	}
	return s.bw.Flush()
}

func (s *JSONLSink) Close() error {
	err := s.bw.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
