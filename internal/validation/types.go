package validation

import (
	"errors"
	"fmt"
)

// Field names a draft input.
type Field string

const (
	FieldName   Field = "name"
	FieldNumber Field = "number"
)

// fieldOrder is the order fields are validated and reported in.
var fieldOrder = []Field{FieldName, FieldNumber}

// ErrorKind classifies a field error.
type ErrorKind int

const (
	RequiredField ErrorKind = iota
	PatternMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case RequiredField:
		return "required_field"
	case PatternMismatch:
		return "pattern_mismatch"
	default:
		return "unknown"
	}
}

// CollisionKind classifies a uniqueness failure.
type CollisionKind int

const (
	NameCollision CollisionKind = iota
	NumberCollision
)

func (k CollisionKind) String() string {
	switch k {
	case NameCollision:
		return "name_collision"
	case NumberCollision:
		return "number_collision"
	default:
		return "unknown"
	}
}

var (
	ErrRequiredField   = errors.New("required field")
	ErrPatternMismatch = errors.New("pattern mismatch")
	ErrNameCollision   = errors.New("name already exists")
	ErrNumberCollision = errors.New("number already exists")
)

// FieldError is an inline, per-field validation failure.
type FieldError struct {
	Field   Field
	Kind    ErrorKind
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	switch e.Kind {
	case RequiredField:
		return ErrRequiredField
	case PatternMismatch:
		return ErrPatternMismatch
	default:
		return nil
	}
}

// CollisionError reports that another contact already holds the name or
// number.
type CollisionError struct {
	Kind      CollisionKind
	ContactID string
	Message   string
}

func (e *CollisionError) Error() string {
	return e.Message
}

func (e *CollisionError) Unwrap() error {
	if e.Kind == NameCollision {
		return ErrNameCollision
	}
	return ErrNumberCollision
}

// Draft holds the candidate values of the edit form.
type Draft struct {
	Name   string
	Number string
}

// Value returns the draft value for f.
func (d Draft) Value(f Field) string {
	switch f {
	case FieldName:
		return d.Name
	case FieldNumber:
		return d.Number
	default:
		return ""
	}
}

// Result is the outcome of validating a whole draft.
type Result struct {
	Errors []*FieldError
}

func (r Result) IsValid() bool {
	return len(r.Errors) == 0
}

// First returns the first failing field in validation order, or nil.
func (r Result) First() *FieldError {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// ByField indexes the messages by field for inline display.
func (r Result) ByField() map[Field]string {
	out := make(map[Field]string, len(r.Errors))
	for _, err := range r.Errors {
		out[err.Field] = err.Message
	}
	return out
}
