// Package failure defines the error taxonomy shared by every pipeline stage.
//
// Each stage returns a *Error carrying a Kind and, where meaningful, the
// row, column or slot that caused it. Callers test the kind with errors.Is
// against the sentinel values:
//
//	if errors.Is(err, failure.ErrGeometry) { ... }
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindConfiguration Kind = iota // bad or inconsistent configuration/metadata
	KindGeometry                  // sheet grid could not be located or calibrated
	KindMissingTool               // external executable not on PATH
	KindIO                        // file read/write failure
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindGeometry:
		return "geometry detection error"
	case KindMissingTool:
		return "missing tool error"
	case KindIO:
		return "io error"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is.
var (
	ErrConfiguration = errors.New(KindConfiguration.String())
	ErrGeometry      = errors.New(KindGeometry.String())
	ErrMissingTool   = errors.New(KindMissingTool.String())
	ErrIO            = errors.New(KindIO.String())
)

func (k Kind) sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindGeometry:
		return ErrGeometry
	case KindMissingTool:
		return ErrMissingTool
	default:
		return ErrIO
	}
}

// Error is a classified pipeline failure.
type Error struct {
	Kind Kind
	Op   string // stage or operation, e.g. "detect rows"
	Row  int    // -1 when not applicable
	Col  int    // -1 when not applicable
	Slot int    // -1 when not applicable
	Name string // glyph name or file path, if any
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}
	var where []string
	if e.Row >= 0 {
		where = append(where, fmt.Sprintf("row %d", e.Row))
	}
	if e.Col >= 0 {
		where = append(where, fmt.Sprintf("column %d", e.Col))
	}
	if e.Slot >= 0 {
		where = append(where, fmt.Sprintf("slot %d", e.Slot))
	}
	if e.Name != "" {
		where = append(where, fmt.Sprintf("%q", e.Name))
	}
	if len(where) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(where, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Row: -1, Col: -1, Slot: -1, Err: err}
}

// Config creates a configuration error.
func Config(op string, err error) *Error {
	return newError(KindConfiguration, op, err)
}

// Configf creates a configuration error from a format string.
func Configf(op, format string, args ...any) *Error {
	return newError(KindConfiguration, op, fmt.Errorf(format, args...))
}

// Geometry creates a geometry detection error for the given row (-1 if none).
func Geometry(op string, row int, err error) *Error {
	e := newError(KindGeometry, op, err)
	e.Row = row
	return e
}

// MissingTool creates an error for an executable that cannot be found.
func MissingTool(tool string, err error) *Error {
	e := newError(KindMissingTool, "locate "+tool, err)
	e.Name = tool
	return e
}

// IO creates an IO error for the given path.
func IO(op, path string, err error) *Error {
	e := newError(KindIO, op, err)
	e.Name = path
	return e
}

// WithCell attaches a grid position.
func (e *Error) WithCell(row, col int) *Error {
	e.Row, e.Col = row, col
	return e
}

// WithSlot attaches a slot index and glyph name.
func (e *Error) WithSlot(slot int, name string) *Error {
	e.Slot = slot
	if name != "" {
		e.Name = name
	}
	return e
}
