// Package csvimport reads the delimited catalog feeds: header handling, UTF-8 checks,
// per-column rules and the row-level error report.
package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReaderOption configures a FeedReader
type ReaderOption func(*FeedReader)

// Delimiter sets the field separator; the default is a comma
func Delimiter(d rune) ReaderOption {
	return func(f *FeedReader) { f.src.Comma = d }
}

// Aliases maps alternative header spellings to canonical column names.
// Keys are compared after trimming and lower-casing.
func Aliases(aliases map[string]string) ReaderOption {
	return func(f *FeedReader) { f.aliases = aliases }
}

// FeedReader streams the data rows of a feed whose first line is a header
type FeedReader struct {
	src     *csv.Reader
	aliases map[string]string
	columns []string
	index   map[string]int
	line    int
	rows    int
}

// NewFeedReader consumes an optional byte order mark and the header line.
// Header names are trimmed, lower-cased and resolved through the aliases;
// when a name repeats, the first column wins.
func NewFeedReader(r io.Reader, opts ...ReaderOption) (*FeedReader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(utf8BOM))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFeed
	}
	if bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	f := &FeedReader{src: csv.NewReader(br), index: make(map[string]int)}
	f.src.FieldsPerRecord = -1
	f.src.TrimLeadingSpace = true
	for _, opt := range opts {
		opt(f)
	}

	header, err := f.src.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	f.line, _ = f.src.FieldPos(0)

	f.columns = make([]string, len(header))
	for i, h := range header {
		if !utf8.ValidString(h) {
			return nil, ErrNotUTF8
		}
		name := strings.ToLower(trim(h))
		if canonical, ok := f.aliases[name]; ok {
			name = canonical
		}
		f.columns[i] = name
		if _, seen := f.index[name]; !seen {
			f.index[name] = i
		}
	}
	if len(f.columns) == 1 && f.columns[0] == "" {
		return nil, ErrNoHeader
	}
	return f, nil
}

// Columns returns the canonical header names in feed order
func (f *FeedReader) Columns() []string { return f.columns }

// Missing returns the entries of required the header lacks
func (f *FeedReader) Missing(required []string) []string {
	var out []string
	for _, col := range required {
		if _, ok := f.index[col]; !ok {
			out = append(out, col)
		}
	}
	return out
}

// Rows returns how many data rows Next has consumed, malformed ones included
func (f *FeedReader) Rows() int { return f.rows }

// Next returns the following data row, or io.EOF after the last one.
// A malformed line or a value that is not UTF-8 yields a RowError and the
// reader stays usable; any other error ends the feed.
func (f *FeedReader) Next() (Row, error) {
	record, err := f.src.Read()
	if errors.Is(err, io.EOF) {
		return Row{}, io.EOF
	}
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		f.rows++
		f.line = perr.StartLine
		if f.line == 0 {
			f.line = perr.Line
		}
		return Row{}, Reject(f.line, "", CodeMalformed, perr.Err.Error())
	}
	if err != nil {
		return Row{}, fmt.Errorf("read after line %d: %w", f.line, err)
	}
	f.rows++
	// quoted values may span lines, so the record's first physical line is reported
	f.line, _ = f.src.FieldPos(0)

	row := Row{Line: f.line, values: make(map[string]string, len(f.columns))}
	for i, col := range f.columns {
		if _, dup := row.values[col]; dup {
			continue
		}
		var v string
		if i < len(record) {
			v = trim(record[i])
		}
		if !utf8.ValidString(v) {
			return Row{}, Reject(f.line, col, CodeEncoding, "value is not valid UTF-8")
		}
		row.values[col] = v
	}
	return row, nil
}

// Row is one data line keyed by canonical column name.
// Columns the line is too short to fill read as empty.
type Row struct {
	Line   int
	values map[string]string
}

// NewRow builds a row from explicit values
func NewRow(line int, values map[string]string) Row {
	return Row{Line: line, values: values}
}

// Get returns the trimmed value of col
func (r Row) Get(col string) string { return r.values[col] }

// Blank reports whether every value is empty
func (r Row) Blank() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}

func trim(s string) string {
	return strings.Trim(s, " \t\n\r\v\f")
}
