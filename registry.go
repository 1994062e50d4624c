package jsonapi

import (
	"reflect"
	"slices"
)

// registry maps discriminators to resource schemas. It is populated by
// Builder.Build and read-only afterwards.
type registry struct {
	byName map[string]*ResourceSchema
	byType map[reflect.Type]*ResourceSchema
	names  []string // registration order
}

func newRegistry() *registry {
	return &registry{
		byName: map[string]*ResourceSchema{},
		byType: map[reflect.Type]*ResourceSchema{},
	}
}

// resourceStructType normalizes a prototype value or reflect.Type to the
// struct type it names.
func resourceStructType(v any) (reflect.Type, bool) {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t, true
}

// discriminatorOf reads the discriminator declared by t through Typed.
func discriminatorOf(t reflect.Type) (string, bool) {
	typed, ok := reflect.New(t).Interface().(Typed)
	if !ok {
		return "", false
	}
	return typed.ResourceType(), true
}

// register adds t under its discriminator. Schemas are attached later by
// Build so that field types may reference any registered type.
func (r *registry) register(t reflect.Type) (string, error) {
	if t.Kind() != reflect.Struct {
		return "", schemaErrorf(t, "", "resource types must be structs")
	}
	disc, ok := discriminatorOf(t)
	if !ok {
		return "", schemaErrorf(t, "", "does not implement jsonapi.Typed")
	}
	if disc == "" {
		return "", schemaErrorf(t, "", "empty resource type")
	}
	if prev, exists := r.byName[disc]; exists {
		if prev.Type == t {
			return disc, nil
		}
		return "", schemaErrorf(t, disc, "duplicate resource type shared with %v", prev.Type)
	}
	s := &ResourceSchema{Discriminator: disc, Type: t}
	r.byName[disc] = s
	r.byType[t] = s
	r.names = append(r.names, disc)
	return disc, nil
}

// supports reports whether t, or the struct t points to, is registered.
func (r *registry) supports(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	_, ok := r.byType[t]
	return ok
}

func (r *registry) lookup(disc string) (*ResourceSchema, bool) {
	s, ok := r.byName[disc]
	return s, ok
}

func (r *registry) discriminators() []string { return slices.Clone(r.names) }
