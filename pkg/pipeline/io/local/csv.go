package local

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/shpitdev/email-finder-pipeline/pkg/outcome"
	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/schema"
)

// CSVSink writes rows with the stable schema.Header() ordering. The header is
// written before the first row; statistics become a trailing STATISTICS row.
type CSVSink struct {
	cw          *csv.Writer
	closer      io.Closer
	wroteHeader bool
}

// NewCSVSink writes to w. Close does not close w.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{cw: csv.NewWriter(w)}
}

// CreateCSV truncates or creates path and writes to it.
func CreateCSV(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	s := NewCSVSink(f)
	s.closer = f
	return s, nil
}

func (s *CSVSink) header() error {
	if s.wroteHeader {
		return nil
	}
	s.wroteHeader = true
	return s.cw.Write(schema.Header())
}

func (s *CSVSink) Store(_ context.Context, records []outcome.Record) error {
	if err := s.header(); err != nil {
		return err
	}
	for _, r := range records {
		if err := s.cw.Write(schema.RecordRow(r)); err != nil {
			return err
		}
	}
	s.cw.Flush()
	return s.cw.Error()
}

func (s *CSVSink) StoreStatistics(_ context.Context, stats outcome.Statistics) error {
	if err := s.header(); err != nil {
		return err
	}
	if err := s.cw.Write(schema.StatisticsRow(stats)); err != nil {
		return err
	}
	s.cw.Flush()
	return s.cw.Error()
}

func (s *CSVSink) Close() error {
	s.cw.Flush()
	err := s.cw.Error()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
