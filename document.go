package jsonapi

import "reflect"

// Document is the typed form of a JSON:API top-level document: either a
// single (possibly null) resource or an ordered collection.
type Document[T any] struct {
	single bool
	data   []T
}

// Single returns a single-resource document. A nil pointer or interface
// value yields the same document as Null.
func Single[T any](v T) Document[T] {
	if isNil(any(v)) {
		return Null[T]()
	}
	return Document[T]{single: true, data: []T{v}}
}

// Null returns a single-resource document without a resource.
func Null[T any]() Document[T] { return Document[T]{single: true} }

// Collection returns a collection document holding vs in order.
func Collection[T any](vs ...T) Document[T] {
	return Document[T]{data: append(make([]T, 0, len(vs)), vs...)}
}

// IsSingle reports whether d is a single-resource document.
func (d Document[T]) IsSingle() bool { return d.single }

// One returns the resource of a single-resource document. ok is false for
// null documents and collections.
func (d Document[T]) One() (v T, ok bool) {
	if !d.single || len(d.data) == 0 {
		return v, false
	}
	return d.data[0], true
}

// Data returns the resources of d; at most one for single documents.
func (d Document[T]) Data() []T { return d.data }

// Len returns the number of resources in d.
func (d Document[T]) Len() int { return len(d.data) }

// Add appends v to a collection, or sets the resource of a single document.
func (d *Document[T]) Add(v T) {
	if d.single {
		d.data = []T{v}
		return
	}
	d.data = append(d.data, v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
