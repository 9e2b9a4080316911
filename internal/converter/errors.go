package converter

import (
	"errors"
	"fmt"
	"strings"
)

// Category sentinels. Every typed error below matches its category with
// errors.Is, so callers can branch without errors.As.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyFile         = errors.New("empty file")
	ErrDuplicateColumns  = errors.New("duplicate columns")
	ErrMalformedRow      = errors.New("malformed row")
	ErrCorruptFile       = errors.New("corrupt file")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrUnwritableTable   = errors.New("table has no columns to write")
	ErrEncodingFailure   = errors.New("encoding failure")
)

type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "unsupported file type: no extension"
	}
	return fmt.Sprintf("unsupported file type: %s", e.Ext)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

type DuplicateColumnsError struct {
	Names []string
}

func (e *DuplicateColumnsError) Error() string {
	return fmt.Sprintf("duplicate column names in header: %s", strings.Join(e.Names, ", "))
}

func (e *DuplicateColumnsError) Is(target error) bool { return target == ErrDuplicateColumns }

// MalformedRowError reports a CSV record that could not be parsed or whose
// field count differs from the header. Line is 1-based.
type MalformedRowError struct {
	Line int
	Err  error
}

func (e *MalformedRowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed row on line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed row on line %d", e.Line)
}

func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedRow }
func (e *MalformedRowError) Unwrap() error        { return e.Err }

type CorruptFileError struct {
	Err error
}

func (e *CorruptFileError) Error() string {
	return fmt.Sprintf("unreadable or corrupt file: %v", e.Err)
}

func (e *CorruptFileError) Is(target error) bool { return target == ErrCorruptFile }
func (e *CorruptFileError) Unwrap() error        { return e.Err }

type UnknownColumnError struct {
	Name string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column: %q", e.Name)
}

func (e *UnknownColumnError) Is(target error) bool { return target == ErrUnknownColumn }

// EncodingError reports a value that cannot round-trip through the target
// format. Row is the 0-based data row, or -1 for the header.
type EncodingError struct {
	Column string
	Row    int
	Reason string
}

func (e *EncodingError) Error() string {
	where := fmt.Sprintf("row %d", e.Row)
	if e.Row < 0 {
		where = "header"
	}
	return fmt.Sprintf("cannot encode column %q at %s: %s", e.Column, where, e.Reason)
}

func (e *EncodingError) Is(target error) bool { return target == ErrEncodingFailure }
