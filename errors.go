package jsonapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrSchema is wrapped by every *SchemaError returned from Builder.Build.
	ErrSchema = errors.New("jsonapi: invalid resource schema")
	// ErrTypeMismatch is wrapped by every *TypeMismatchError returned while encoding.
	ErrTypeMismatch = errors.New("jsonapi: resource type mismatch")
	// ErrUnsupportedDocumentShape indicates a document without a top-level data member.
	ErrUnsupportedDocumentShape = errors.New("jsonapi: unsupported document shape")
	// ErrMalformedDocument indicates input that is not a JSON object.
	ErrMalformedDocument = errors.New("jsonapi: malformed document")
	// ErrCyclicResource indicates a resource that nests itself while encoding.
	ErrCyclicResource = errors.New("jsonapi: cyclic resource reference")
)

// SchemaError reports a resource type that cannot be registered.
type SchemaError struct {
	Type          reflect.Type
	Discriminator string
	Reason        string
}

func (e *SchemaError) Error() string {
	b := &strings.Builder{}
	b.WriteString("jsonapi: ")
	if e.Type != nil {
		fmt.Fprintf(b, "type %s", e.Type)
	}
	if e.Discriminator != "" {
		fmt.Fprintf(b, " (%q)", e.Discriminator)
	}
	if e.Type != nil || e.Discriminator != "" {
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	return b.String()
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

func schemaErrorf(t reflect.Type, disc, format string, args ...any) *SchemaError {
	return &SchemaError{Type: t, Discriminator: disc, Reason: fmt.Sprintf(format, args...)}
}

// TypeMismatchError reports a value whose runtime type is not the type
// registered for its discriminator.
type TypeMismatchError struct {
	Type          reflect.Type
	Discriminator string
	// Registered is nil when the discriminator is unknown to the converter.
	Registered reflect.Type
}

func (e *TypeMismatchError) Error() string {
	if e.Discriminator == "" {
		return fmt.Sprintf("jsonapi: %v is not a resource type", e.Type)
	}
	if e.Registered == nil {
		return fmt.Sprintf("jsonapi: %v declares unregistered type %q", e.Type, e.Discriminator)
	}
	return fmt.Sprintf("jsonapi: %v is not a valid resource type for %q (registered: %v)", e.Type, e.Discriminator, e.Registered)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// Issue codes reported for data dropped by the lenient decoder.
const (
	CodeUnknownType     = "unknown_type"
	CodeTypeMismatch    = "type_mismatch"
	CodeInvalidResource = "invalid_resource"
	CodeInvalidValue    = "invalid_value"
	CodeInvalidID       = "invalid_id"
	// Reported only when duplicate detection is enabled; the last
	// occurrence of the member is used.
	CodeDuplicateMember = "duplicate_member"
)

// Issue describes one resource or field dropped while decoding.
type Issue struct {
	Path    string // JSON Pointer into the input document (for example: /data/2/attributes/title).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying conversion error.
	// Params carries structured parameters (e.g. {"type": "articles"}) for
	// i18n and observability.
	Params map[string]any
}

// Issues is a collection of decode diagnostics that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Codes returns the issue codes in order.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
