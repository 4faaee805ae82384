package csvimport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Feed-level failures; nothing is imported when one of these occurs
var (
	ErrEmptyFeed = errors.New("feed is empty")
	ErrNoHeader  = errors.New("feed has no header line")
	ErrNotUTF8   = errors.New("feed header is not valid UTF-8")
)

// Code classifies why a row was skipped
type Code string

const (
	CodeEncoding  Code = "INVALID_ENCODING"
	CodeMalformed Code = "MALFORMED_ROW"
	CodeRequired  Code = "REQUIRED_FIELD"
	CodeType      Code = "INVALID_TYPE"
	CodeLength    Code = "TOO_LONG"
	CodeRange     Code = "OUT_OF_RANGE"
	CodeScale     Code = "TOO_MANY_DECIMALS"
	CodeReference Code = "UNKNOWN_REFERENCE"
	CodeRejected  Code = "REJECTED"
)

// RowError explains one skipped feed row. Under errors.Is it matches shared.ErrRecord.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Reject builds the RowError for line
func Reject(line int, column string, code Code, message string) RowError {
	return RowError{Row: line, Column: column, Code: code, Message: message}
}

// WithValue attaches the offending input
func (e RowError) WithValue(v string) RowError {
	e.Value = v
	return e
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Message)
}

func (e RowError) Is(target error) bool {
	return errors.Is(shared.ErrRecord, target)
}

const defaultErrorLimit = 100

// ErrorLog keeps the first limit row errors of a feed and counts all of them
type ErrorLog struct {
	kept  []RowError
	limit int
	total int
}

// NewErrorLog returns a log holding at most limit errors; limit <= 0 means 100
func NewErrorLog(limit int) *ErrorLog {
	if limit <= 0 {
		limit = defaultErrorLimit
	}
	return &ErrorLog{limit: limit}
}

// Add records errs, dropping those past the limit
func (l *ErrorLog) Add(errs ...RowError) {
	for _, e := range errs {
		l.total++
		if len(l.kept) < l.limit {
			l.kept = append(l.kept, e)
		}
	}
}

// Kept returns the errors within the limit, in the order they were added
func (l *ErrorLog) Kept() []RowError { return l.kept }

// Total counts every added error
func (l *ErrorLog) Total() int { return l.total }

// Truncated reports whether errors were dropped
func (l *ErrorLog) Truncated() bool { return l.total > l.limit }

// ByCode tallies the kept errors
func (l *ErrorLog) ByCode() map[Code]int {
	out := make(map[Code]int)
	for _, e := range l.kept {
		out[e.Code]++
	}
	return out
}

func (l *ErrorLog) String() string {
	if l.total == 0 {
		return "no errors"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d row error(s)", l.total)
	if l.Truncated() {
		fmt.Fprintf(&sb, ", first %d shown", l.limit)
	}
	for _, e := range l.kept {
		sb.WriteString("\n  ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}
