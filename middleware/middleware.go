// Package middleware decodes JSON:API request bodies in net/http handler
// chains (chi, gorilla and plain ServeMux alike) and writes JSON:API
// responses.
package middleware

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/jsonapi"
)

// MediaType is the JSON:API media type.
const MediaType = "application/vnd.api+json"

// DefaultMaxBytes bounds request bodies read by Decode.
const DefaultMaxBytes = 1 << 20

// ctxKeyDocument is a typed context key for storing Decoded[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDocument[T any] struct{}

// ContextWithDocument attaches a Decoded[T] to the context.
func ContextWithDocument[T any](ctx context.Context, d jsonapi.Decoded[T]) context.Context {
	return context.WithValue(ctx, ctxKeyDocument[T]{}, d)
}

// DocumentFromContext retrieves the Decoded[T] stored by Decode.
func DocumentFromContext[T any](ctx context.Context) (jsonapi.Decoded[T], bool) {
	v, ok := ctx.Value(ctxKeyDocument[T]{}).(jsonapi.Decoded[T])
	return v, ok
}

type options struct {
	strict   bool
	maxBytes int64
}

// Option configures Decode.
type Option func(*options)

// Strict rejects documents the lenient decoder would have trimmed, answering
// 422 with one error per Issue.
func Strict() Option { return func(o *options) { o.strict = true } }

// MaxBytes overrides DefaultMaxBytes. n <= 0 disables the limit.
func MaxBytes(n int64) Option { return func(o *options) { o.maxBytes = n } }

// Decode returns middleware that decodes the request body into a document
// of T and stores it in the request context. Malformed documents and
// documents without data are answered with 400.
func Decode[T any](c *jsonapi.Converter, opts ...Option) func(http.Handler) http.Handler {
	o := options{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(&o)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !acceptableContentType(r.Header.Get("Content-Type")) {
				WriteError(w, http.StatusUnsupportedMediaType, errors.New("unsupported media type"))
				return
			}
			body := r.Body
			if o.maxBytes > 0 {
				body = http.MaxBytesReader(w, r.Body, o.maxBytes)
			}
			b, err := io.ReadAll(body)
			if err != nil {
				var mbe *http.MaxBytesError
				if errors.As(err, &mbe) {
					WriteError(w, http.StatusRequestEntityTooLarge, err)
					return
				}
				WriteError(w, http.StatusBadRequest, err)
				return
			}
			dm, err := jsonapi.FromJSONWithMeta[T](c, b)
			if err != nil {
				WriteError(w, http.StatusBadRequest, err)
				return
			}
			if o.strict && len(dm.Issues) > 0 {
				writePayload(w, http.StatusUnprocessableEntity, ErrorPayload(http.StatusUnprocessableEntity, dm.Issues))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDocument(r.Context(), dm)))
		})
	}
}

// acceptableContentType allows a missing Content-Type, application/json, and
// the JSON:API media type without parameters other than ext/profile.
func acceptableContentType(ct string) bool {
	if ct == "" {
		return true
	}
	mt, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	switch mt {
	case "application/json":
		return true
	case MediaType:
		for k := range params {
			if k != "ext" && k != "profile" {
				return false
			}
		}
		return true
	}
	return false
}

// Write encodes doc with c and writes it with the JSON:API media type. On
// encode failure nothing is written and the error is returned.
func Write[T any](w http.ResponseWriter, status int, c *jsonapi.Converter, doc jsonapi.Document[T]) error {
	b, err := jsonapi.ToJSON(c, doc)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", MediaType)
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}

// ErrorObject is a JSON:API error object.
type ErrorObject struct {
	Status string       `json:"status"`
	Code   string       `json:"code,omitempty"`
	Title  string       `json:"title"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
}

// ErrorSource points at the offending part of the request document.
type ErrorSource struct {
	Pointer string `json:"pointer"`
}

// ErrorDocument is the top-level errors document.
type ErrorDocument struct {
	Errors []ErrorObject `json:"errors"`
}

// ErrorPayload shapes Issues as JSON:API error objects.
func ErrorPayload(status int, issues jsonapi.Issues) ErrorDocument {
	doc := ErrorDocument{Errors: make([]ErrorObject, 0, len(issues))}
	for _, it := range issues {
		doc.Errors = append(doc.Errors, ErrorObject{
			Status: strconv.Itoa(status),
			Code:   it.Code,
			Title:  http.StatusText(status),
			Detail: it.Message,
			Source: &ErrorSource{Pointer: it.Path},
		})
	}
	return doc
}

// WriteError writes err as a single JSON:API error object.
func WriteError(w http.ResponseWriter, status int, err error) {
	obj := ErrorObject{
		Status: strconv.Itoa(status),
		Code:   errorCode(err),
		Title:  http.StatusText(status),
		Detail: err.Error(),
	}
	writePayload(w, status, ErrorDocument{Errors: []ErrorObject{obj}})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, jsonapi.ErrMalformedDocument):
		return "malformed_document"
	case errors.Is(err, jsonapi.ErrUnsupportedDocumentShape):
		return "unsupported_document_shape"
	case errors.Is(err, jsonapi.ErrTypeMismatch):
		return "type_mismatch"
	}
	return ""
}

func writePayload(w http.ResponseWriter, status int, doc ErrorDocument) {
	b, err := gojson.Marshal(doc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", MediaType)
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
