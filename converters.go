package jsonapi

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/jsonapi/internal/wire"
)

// TypeConverter converts a non-native field type from and to its wire text.
//
// FromString receives nil when the attribute is missing or null and may
// return nil to leave the field at its default. ToString receives the
// dereferenced field value (nil pointers are never passed) and returns nil
// to omit the attribute.
type TypeConverter interface {
	Supports(t reflect.Type) bool
	FromString(raw *string) (any, error)
	ToString(v any) (*string, error)
}

// ConverterFor builds a TypeConverter for T (and *T) from a parse/format pair.
func ConverterFor[T any](parse func(string) (T, error), format func(T) string) TypeConverter {
	return funcConverter[T]{t: reflect.TypeFor[T](), parse: parse, format: format}
}

type funcConverter[T any] struct {
	t      reflect.Type
	parse  func(string) (T, error)
	format func(T) string
}

func (c funcConverter[T]) Supports(t reflect.Type) bool {
	return t == c.t || (t.Kind() == reflect.Pointer && t.Elem() == c.t)
}

func (c funcConverter[T]) FromString(raw *string) (any, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := c.parse(*raw)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (c funcConverter[T]) ToString(v any) (*string, error) {
	switch x := v.(type) {
	case T:
		s := c.format(x)
		return &s, nil
	case *T:
		if x == nil {
			return nil, nil
		}
		s := c.format(*x)
		return &s, nil
	}
	return nil, fmt.Errorf("jsonapi: converter for %v cannot format %T", c.t, v)
}

// Converters is the scalar conversion registry: registered converters are
// consulted in order, first match wins, and built-in handling of bool,
// integer, float and string kinds applies only when none matched.
// A Converters value is immutable and safe for concurrent use.
type Converters struct {
	list []TypeConverter
}

// NewConverters returns a registry holding cs in priority order. Nil
// entries are skipped.
func NewConverters(cs ...TypeConverter) *Converters {
	list := make([]TypeConverter, 0, len(cs))
	for _, c := range cs {
		if c != nil {
			list = append(list, c)
		}
	}
	return &Converters{list: list}
}

// Lookup returns the highest-priority registered converter supporting t.
func (c *Converters) Lookup(t reflect.Type) (TypeConverter, bool) {
	if c == nil {
		return nil, false
	}
	for _, tc := range c.list {
		if tc.Supports(t) {
			return tc, true
		}
	}
	return nil, false
}

// Supports reports whether t is handled by a registered converter or natively.
func (c *Converters) Supports(t reflect.Type) bool {
	if _, ok := c.Lookup(t); ok {
		return true
	}
	return isNative(t)
}

var (
	errNotScalar   = errors.New("value is not a scalar")
	errUnsupported = errors.New("unsupported type")
)

// Decode converts a decoded wire value into a value assignable to t.
// ok is false when the field must keep its default (missing or null input,
// or a converter returning nil).
func (c *Converters) Decode(t reflect.Type, raw any) (v reflect.Value, ok bool, err error) {
	if tc, found := c.Lookup(t); found {
		return decodeWithConverter(tc, t, raw)
	}
	if isNative(t) {
		return decodeNative(t, raw)
	}
	return reflect.Value{}, false, fmt.Errorf("%w: %v", errUnsupported, t)
}

// Encode converts a field value to its wire value. ok is false when the
// value is null and must be omitted.
func (c *Converters) Encode(v reflect.Value) (out any, ok bool, err error) {
	if v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false, nil
		}
	}
	if tc, found := c.Lookup(v.Type()); found {
		return encodeWithConverter(tc, v)
	}
	if isNative(v.Type()) {
		return encodeNative(v), true, nil
	}
	return nil, false, fmt.Errorf("%w: %v", errUnsupported, v.Type())
}

// EncodeText is like Encode but renders the value as a string, as required
// for resource ids.
func (c *Converters) EncodeText(v reflect.Value) (string, bool, error) {
	out, ok, err := c.Encode(v)
	if err != nil || !ok {
		return "", ok, err
	}
	return wireText(out), true, nil
}

func decodeWithConverter(tc TypeConverter, t reflect.Type, raw any) (reflect.Value, bool, error) {
	var sp *string
	if raw != nil {
		s, ok := wire.ScalarString(raw)
		if !ok {
			return reflect.Value{}, false, errNotScalar
		}
		sp = &s
	}
	out, err := tc.FromString(sp)
	if err != nil {
		return reflect.Value{}, false, err
	}
	if out == nil {
		return reflect.Value{}, false, nil
	}
	rv, err := coerce(t, reflect.ValueOf(out))
	if err != nil {
		return reflect.Value{}, false, err
	}
	return rv, true, nil
}

func encodeWithConverter(tc TypeConverter, v reflect.Value) (any, bool, error) {
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	s, err := tc.ToString(v.Interface())
	if err != nil {
		return nil, false, err
	}
	if s == nil {
		return nil, false, nil
	}
	return *s, true, nil
}

// coerce makes rv assignable to t, allocating a pointer when t is *V and rv
// holds a V. Conversions are limited to values of the same kind.
func coerce(t reflect.Type, rv reflect.Value) (reflect.Value, error) {
	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case t.Kind() == reflect.Pointer && rv.Type().AssignableTo(t.Elem()):
		p := reflect.New(t.Elem())
		p.Elem().Set(rv)
		return p, nil
	case rv.Kind() == t.Kind() && rv.Type().ConvertibleTo(t):
		return rv.Convert(t), nil
	case t.Kind() == reflect.Pointer && rv.Kind() == t.Elem().Kind() && rv.Type().ConvertibleTo(t.Elem()):
		p := reflect.New(t.Elem())
		p.Elem().Set(rv.Convert(t.Elem()))
		return p, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot assign %v to %v", rv.Type(), t)
}

func isNativeKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.Int, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64, reflect.String:
		return true
	}
	return false
}

func isNative(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		return isNativeKind(t.Elem().Kind())
	}
	return isNativeKind(t.Kind())
}

// decodeNative applies the built-in policy. Pointer kinds parse the
// scalar's text form; value kinds accept a JSON value of the matching kind
// or a string that parses as one.
func decodeNative(t reflect.Type, raw any) (reflect.Value, bool, error) {
	if raw == nil {
		return reflect.Value{}, false, nil
	}
	if t.Kind() == reflect.Pointer {
		s, ok := wire.ScalarString(raw)
		if !ok {
			return reflect.Value{}, false, errNotScalar
		}
		v, err := parseKind(t.Elem(), s)
		if err != nil {
			return reflect.Value{}, false, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		return p, true, nil
	}
	if t.Kind() == reflect.Bool {
		if b, ok := raw.(bool); ok {
			return reflect.ValueOf(b).Convert(t), true, nil
		}
	}
	s, ok := wire.ScalarString(raw)
	if !ok {
		return reflect.Value{}, false, errNotScalar
	}
	if _, isBool := raw.(bool); isBool && t.Kind() != reflect.String {
		return reflect.Value{}, false, fmt.Errorf("cannot use boolean as %v", t)
	}
	v, err := parseKind(t, s)
	if err != nil {
		return reflect.Value{}, false, err
	}
	return v, true, nil
}

func parseKind(t reflect.Type, s string) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		switch {
		case strings.EqualFold(s, "true"):
			v.SetBool(true)
		case strings.EqualFold(s, "false"):
			v.SetBool(false)
		default:
			return reflect.Value{}, fmt.Errorf("invalid boolean %q", s)
		}
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := parseInt(s, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		v.SetFloat(f)
	default:
		return reflect.Value{}, fmt.Errorf("%w: %v", errUnsupported, t)
	}
	return v, nil
}

// parseInt accepts integer literals and integral float literals ("1e3").
func parseInt(s string, bits int) (int64, error) {
	n, err := strconv.ParseInt(s, 10, bits)
	if err == nil {
		return n, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != math.Trunc(f) {
		return 0, err
	}
	lim := math.Ldexp(1, bits-1)
	if f < -lim || f >= lim {
		return 0, err
	}
	return int64(f), nil
}

func encodeNative(v reflect.Value) any {
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Float32:
		return float32(v.Float())
	case reflect.Float64:
		return v.Float()
	default:
		return v.String()
	}
}
