package nessus

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html/charset"
)

// ErrNoReport is returned (wrapped in a ParseError) when the document has
// no Report element under its root.
var ErrNoReport = errors.New("no Report element found")

// ParseError reports an input file that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads a .nessus file and returns its first Report.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	report, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return report, nil
}

// Decode parses a .nessus document from r.
func Decode(r io.Reader) (*Report, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if len(doc.Reports) == 0 {
		return nil, ErrNoReport
	}
	return &doc.Reports[0], nil
}
