package jsonapi

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/reoring/jsonapi/internal/wire"
)

// ToJSON encodes doc as a JSON:API document. Every resource must be a value
// of (or pointer to) the exact type registered for its discriminator;
// otherwise ToJSON fails with a *TypeMismatchError.
func ToJSON[T any](c *Converter, doc Document[T]) ([]byte, error) {
	items := make([]any, len(doc.data))
	for i, v := range doc.data {
		items[i] = v
	}
	b, err := c.encode(doc.single, items)
	c.observer.ObserveEncode(len(items), err)
	return b, err
}

func (c *Converter) encode(single bool, items []any) ([]byte, error) {
	e := &encoder{c: c}
	var data any
	if single {
		if len(items) > 0 {
			obj, err := e.resource(items[0])
			if err != nil {
				return nil, err
			}
			data = obj
		}
	} else {
		arr := make([]any, 0, len(items))
		for _, it := range items {
			obj, err := e.resource(it)
			if err != nil {
				return nil, err
			}
			arr = append(arr, obj)
		}
		data = arr
	}
	return wire.Marshal(wire.Envelope(data))
}

// visit identifies a resource reached through a pointer.
type visit struct {
	ptr uintptr
	typ reflect.Type
}

// encoder holds the per-call state of ToJSON. visiting holds the pointers
// on the current nesting path.
type encoder struct {
	c        *Converter
	visiting map[visit]struct{}
}

// resource returns nil for nil values so they are emitted as null.
func (e *encoder) resource(v any) (any, error) {
	if isNil(v) {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		key := visit{rv.Pointer(), rv.Type()}
		if _, ok := e.visiting[key]; ok {
			return nil, fmt.Errorf("%w: %v", ErrCyclicResource, rv.Type())
		}
		if e.visiting == nil {
			e.visiting = map[visit]struct{}{}
		}
		e.visiting[key] = struct{}{}
		defer delete(e.visiting, key)
		rv = rv.Elem()
	}
	s, err := e.c.schemaFor(rv.Type())
	if err != nil {
		return nil, err
	}
	return e.resourceObject(s, rv)
}

func (e *encoder) resourceObject(s *ResourceSchema, rv reflect.Value) (wire.OrderedObject, error) {
	obj := make(wire.OrderedObject, 0, 3)
	obj.Set(wire.MemberType, s.Discriminator)
	if s.ID != nil {
		out, ok, err := e.field(s.ID, rv.FieldByIndex(s.ID.index))
		if err != nil {
			return nil, fmt.Errorf("jsonapi: encode %s id: %w", s.Discriminator, err)
		}
		if ok {
			obj.Set(wire.MemberID, wireText(out))
		}
	}
	attrs := make(wire.OrderedObject, 0, len(s.Attributes))
	for i := range s.Attributes {
		f := &s.Attributes[i]
		out, ok, err := e.field(f, rv.FieldByIndex(f.index))
		if err != nil {
			return nil, fmt.Errorf("jsonapi: encode %s attribute %s: %w", s.Discriminator, f.StorageName, err)
		}
		if ok {
			attrs.Set(f.StorageName, out)
		}
	}
	obj.Set(wire.MemberAttributes, attrs)
	return obj, nil
}

// field returns ok=false for null values, which are omitted.
func (e *encoder) field(f *FieldDescriptor, fv reflect.Value) (any, bool, error) {
	if fv.Kind() == reflect.Pointer && fv.IsNil() {
		return nil, false, nil
	}
	switch f.binding {
	case bindConverter:
		return encodeWithConverter(f.converter, fv)
	case bindResource:
		nested, err := e.resource(fv.Interface())
		if err != nil {
			return nil, false, err
		}
		return nested, true, nil
	default:
		return encodeNative(fv), true, nil
	}
}

// wireText renders an encoded scalar as the string form used for ids.
func wireText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	}
	return fmt.Sprint(v)
}
