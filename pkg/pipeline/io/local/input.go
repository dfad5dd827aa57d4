package local

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/core"
)

// ErrNoPeople is returned when a batch document has no "people" sequence.
var ErrNoPeople = errors.New(`input must contain a "people" array`)

// Document is the input object handed to a run. JSON documents decode as
// YAML, so either syntax is accepted.
type Document struct {
	People []string `yaml:"people"`

	// Single-query fields.
	FirstName      string `yaml:"firstName"`
	LastName       string `yaml:"lastName"`
	Domain         string `yaml:"domain"`
	CompanyWebsite string `yaml:"companyWebsite"`

	// Validation variant.
	Email string `yaml:"email"`
}

// Website returns Domain, falling back to CompanyWebsite.
func (d Document) Website() string {
	if s := strings.TrimSpace(d.Domain); s != "" {
		return s
	}
	return strings.TrimSpace(d.CompanyWebsite)
}

// ReadDocument decodes one JSON or YAML document.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, errors.New("input is empty")
		}
		return Document{}, fmt.Errorf("decode input: %w", err)
	}
	return doc, nil
}

// ReadPeople decodes a document and returns its "people" entries in order.
func ReadPeople(r io.Reader) ([]string, error) {
	doc, err := ReadDocument(r)
	if err != nil {
		return nil, err
	}
	if doc.People == nil {
		return nil, ErrNoPeople
	}
	return doc.People, nil
}

// ReadLines returns one raw person string per non-blank line.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var out []string
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return out, nil
}

var _ core.InputAdapter[string] = PeopleFile{}

// PeopleFile loads raw person strings from a file. Path "-" reads stdin.
type PeopleFile struct {
	Path string
	// Lines reads the file as newline-delimited entries instead of a document.
	Lines bool
}

func (f PeopleFile) Load(_ context.Context) ([]string, error) {
	r, closeFn, err := open(f.Path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	if f.Lines {
		return ReadLines(r)
	}
	return ReadPeople(r)
}

// DocumentFile loads a whole Document from a file. Path "-" reads stdin.
type DocumentFile struct {
	Path string
}

func (f DocumentFile) Load(_ context.Context) (Document, error) {
	r, closeFn, err := open(f.Path)
	if err != nil {
		return Document{}, err
	}
	defer closeFn()
	return ReadDocument(r)
}

func open(path string) (io.Reader, func(), error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
