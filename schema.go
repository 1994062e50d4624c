package jsonapi

import (
	"reflect"
	"strings"
)

// Typed is implemented by resource types (or pointers to them) to declare
// their discriminator.
type Typed interface {
	ResourceType() string
}

// FieldRole distinguishes the identifier from regular attributes.
type FieldRole uint8

const (
	RoleAttribute FieldRole = iota
	RoleID
)

func (r FieldRole) String() string {
	if r == RoleID {
		return "id"
	}
	return "attribute"
}

type binding uint8

const (
	bindNative binding = iota
	bindConverter
	bindResource
)

// FieldDescriptor describes one serialized struct field.
type FieldDescriptor struct {
	Name        string // Go field name.
	StorageName string // Wire attribute name; unused for RoleID.
	Type        reflect.Type
	Role        FieldRole

	index     []int
	binding   binding
	converter TypeConverter
}

// ResourceSchema is the compiled mapping for one registered resource type.
type ResourceSchema struct {
	Discriminator string
	Type          reflect.Type
	ID            *FieldDescriptor
	Attributes    []FieldDescriptor

	hook *hook
}

// HasPostCreate reports whether decoded values of this type run a post-create hook.
func (s *ResourceSchema) HasPostCreate() bool { return s.hook != nil }

// fieldTag is the parsed form of a `jsonapi` struct tag.
type fieldTag struct {
	name   string
	id     bool
	ignore bool
}

// parseFieldTag resolves a struct field's wire role and name.
// Priority: jsonapi tag > json tag name > field name; "-" in either tag
// ignores the field.
func parseFieldTag(sf reflect.StructField) fieldTag {
	if jt, ok := sf.Tag.Lookup("jsonapi"); ok {
		name, _, _ := strings.Cut(jt, ",")
		name = strings.TrimSpace(name)
		switch name {
		case "-":
			return fieldTag{ignore: true}
		case "id":
			return fieldTag{id: true}
		case "":
		default:
			return fieldTag{name: name}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		name, _, _ := strings.Cut(jt, ",")
		if name == "-" {
			return fieldTag{ignore: true}
		}
		if name != "" {
			return fieldTag{name: name}
		}
	}
	return fieldTag{name: sf.Name}
}

// buildFields collects the serialized fields of t: its own fields first,
// then the fields of embedded structs, recursively. supportsResource
// reports whether a type is a registered resource type.
func buildFields(t reflect.Type, conv *Converters, supportsResource func(reflect.Type) bool) (id *FieldDescriptor, attrs []FieldDescriptor, err error) {
	all, err := collectFields(t, nil, conv, supportsResource)
	if err != nil {
		return nil, nil, err
	}
	if all, err = dominantFields(t, all); err != nil {
		return nil, nil, err
	}
	for i := range all {
		f := all[i]
		if f.Role != RoleID {
			attrs = append(attrs, f)
			continue
		}
		if id != nil {
			return nil, nil, schemaErrorf(t, "", "multiple id fields: %s and %s", id.Name, f.Name)
		}
		id = &f
	}
	return id, attrs, nil
}

func collectFields(t reflect.Type, prefix []int, conv *Converters, supportsResource func(reflect.Type) bool) ([]FieldDescriptor, error) {
	var own []FieldDescriptor
	var embedded []int
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if _, tagged := sf.Tag.Lookup("jsonapi"); sf.Anonymous && !tagged {
			// embedded pointers are not walked: decoding would have to allocate them
			if sf.Type.Kind() == reflect.Struct {
				embedded = append(embedded, i)
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		tag := parseFieldTag(sf)
		if tag.ignore {
			continue
		}
		fd := FieldDescriptor{
			Name:        sf.Name,
			StorageName: tag.name,
			Type:        sf.Type,
			index:       append(append([]int{}, prefix...), i),
		}
		if tag.id {
			fd.Role = RoleID
			fd.StorageName = ""
		}
		switch tc, found := conv.Lookup(sf.Type); {
		case found:
			fd.binding, fd.converter = bindConverter, tc
		case isNative(sf.Type):
			fd.binding = bindNative
		case supportsResource(sf.Type) && !tag.id:
			fd.binding = bindResource
		case tag.id:
			return nil, schemaErrorf(t, "", "id field %s has unsupported type %v", sf.Name, sf.Type)
		default:
			continue
		}
		own = append(own, fd)
	}
	for _, i := range embedded {
		sf := t.Field(i)
		inner, err := collectFields(sf.Type, append(append([]int{}, prefix...), i), conv, supportsResource)
		if err != nil {
			return nil, err
		}
		own = append(own, inner...)
	}
	return own, nil
}

// dominantFields drops attributes shadowed by a shallower field with the
// same wire name, as encoding/json does for embedded structs. Two fields
// sharing a name at the shallowest depth are a schema error.
func dominantFields(t reflect.Type, fields []FieldDescriptor) ([]FieldDescriptor, error) {
	shallowest := map[string]int{}
	for _, f := range fields {
		if f.Role == RoleID {
			continue
		}
		if d, ok := shallowest[f.StorageName]; !ok || len(f.index) < d {
			shallowest[f.StorageName] = len(f.index)
		}
	}
	out := fields[:0:0]
	owner := map[string]string{}
	for _, f := range fields {
		if f.Role != RoleID {
			if len(f.index) > shallowest[f.StorageName] {
				continue
			}
			if prev, ok := owner[f.StorageName]; ok {
				return nil, schemaErrorf(t, "", "fields %s and %s both map to attribute %q", prev, f.Name, f.StorageName)
			}
			owner[f.StorageName] = f.Name
		}
		out = append(out, f)
	}
	return out, nil
}
