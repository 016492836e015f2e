package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
)

// Category represents the subsystem an error belongs to.
type Category string

const (
	CategoryRender   Category = "render"
	CategoryReactive Category = "reactive"
	CategoryDecode   Category = "decode"
	CategoryElement  Category = "element"
	CategoryConfig   Category = "config"
	CategorySnapshot Category = "snapshot"
	CategoryCLI      Category = "cli"
)

// Location is a position in a tree description or config file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as file:line[:column].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// QuarkError is a coded error with an optional location and fix hint.
type QuarkError struct {
	// Code is the registry code, e.g. "Q002".
	Code string

	Category Category
	Message  string
	Detail   string

	// Location is set for errors tied to an input file.
	Location *Location

	// Context holds the source lines around Location.
	Context []string

	Suggestion string

	// Wrapped is the underlying error or recovered panic value.
	Wrapped error
}

// Error implements the error interface.
func (e *QuarkError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Code != "" {
		return e.Code + ": " + msg
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *QuarkError) Unwrap() error {
	return e.Wrapped
}

// Is matches another QuarkError with the same code.
func (e *QuarkError) Is(target error) bool {
	t, ok := target.(*QuarkError)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithLocation attaches a file position and reads the surrounding lines.
func (e *QuarkError) WithLocation(file string, line, column int) *QuarkError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithDetail sets the detailed explanation.
func (e *QuarkError) WithDetail(d string) *QuarkError {
	e.Detail = d
	return e
}

// WithSuggestion sets the fix hint.
func (e *QuarkError) WithSuggestion(s string) *QuarkError {
	e.Suggestion = s
	return e
}

// Wrap sets the underlying error.
func (e *QuarkError) Wrap(err error) *QuarkError {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}
	return lines
}

// New creates a QuarkError from a registered code. The registry detail is
// used unless WithDetail replaces it.
func New(code string) *QuarkError {
	template, ok := registry[code]
	if !ok {
		return &QuarkError{Code: code, Message: "Unknown error"}
	}
	return &QuarkError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates an uncoded error with a formatted message.
func Newf(category Category, format string, args ...any) *QuarkError {
	return &QuarkError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err under code unless it already is a QuarkError.
func FromError(err error, code string) *QuarkError {
	if err == nil {
		return nil
	}
	if qe, ok := err.(*QuarkError); ok {
		return qe
	}
	return New(code).Wrap(err)
}

// FromPanic converts a recovered panic value into a QuarkError under code.
func FromPanic(code string, r any) *QuarkError {
	if err, ok := r.(error); ok {
		return New(code).WithDetail(err.Error()).Wrap(err)
	}
	return New(code).WithDetail(fmt.Sprint(r))
}

// HasCode reports whether err, or an error it wraps, is a QuarkError with
// code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &QuarkError{Code: code})
}
