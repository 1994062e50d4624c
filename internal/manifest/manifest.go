// Package manifest describes resource types in YAML so that documents can
// be checked without Go model types.
//
//	types:
//	  articles:
//	    id: string
//	    attributes:
//	      title: string
//	      views: int64
//	      published: time
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/convert"
)

// Kind names an attribute or id value type.
type Kind string

const (
	KindString  Kind = "string"
	KindInt     Kind = "int"
	KindInt32   Kind = "int32"
	KindInt64   Kind = "int64"
	KindFloat   Kind = "float"
	KindFloat32 Kind = "float32"
	KindBool    Kind = "bool"
	KindTime    Kind = "time"
	KindUUID    Kind = "uuid"
	KindLocale  Kind = "locale"
)

var kindTypes = map[Kind]reflect.Type{
	KindString:  reflect.TypeFor[string](),
	KindInt:     reflect.TypeFor[int](),
	KindInt32:   reflect.TypeFor[int32](),
	KindInt64:   reflect.TypeFor[int64](),
	KindFloat:   reflect.TypeFor[float64](),
	KindFloat32: reflect.TypeFor[float32](),
	KindBool:    reflect.TypeFor[bool](),
	KindTime:    reflect.TypeFor[time.Time](),
	KindUUID:    reflect.TypeFor[uuid.UUID](),
	KindLocale:  reflect.TypeFor[language.Tag](),
}

// GoType returns the Go type values of k decode to.
func (k Kind) GoType() (reflect.Type, bool) {
	t, ok := kindTypes[k]
	return t, ok
}

// Attribute is one declared attribute.
type Attribute struct {
	Name string
	Kind Kind
}

// Type declares one resource type. ID is empty for types without an id.
type Type struct {
	Name       string
	ID         Kind
	Attributes []Attribute
}

// Manifest is an ordered set of resource type declarations.
type Manifest struct {
	Types []Type

	byName map[string]int
	conv   *jsonapi.Converters
}

// LoadFile reads a manifest from path.
func LoadFile(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Load(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Load decodes a manifest. Duplicate keys, unknown keys and unknown kinds
// are errors.
func Load(r io.Reader) (*Manifest, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty manifest")
		}
		return nil, err
	}
	top, err := mappingPairs(&root)
	if err != nil {
		return nil, err
	}
	m := &Manifest{
		byName: map[string]int{},
		conv:   jsonapi.NewConverters(convert.TimeRFC3339(), convert.UUID(), convert.Locale()),
	}
	for _, p := range top {
		if p.key.Value != "types" {
			return nil, fmt.Errorf("line %d: unknown key %q", p.key.Line, p.key.Value)
		}
		types, err := mappingPairs(p.value)
		if err != nil {
			return nil, err
		}
		for _, tp := range types {
			t, err := loadType(tp)
			if err != nil {
				return nil, err
			}
			m.byName[t.Name] = len(m.Types)
			m.Types = append(m.Types, t)
		}
	}
	return m, nil
}

func loadType(p pair) (Type, error) {
	t := Type{Name: p.key.Value}
	if t.Name == "" {
		return t, fmt.Errorf("line %d: empty resource type", p.key.Line)
	}
	members, err := mappingPairs(p.value)
	if err != nil {
		return t, fmt.Errorf("type %s: %w", t.Name, err)
	}
	for _, mp := range members {
		switch mp.key.Value {
		case "id":
			k, err := kindOf(mp.value)
			if err != nil {
				return t, fmt.Errorf("type %s id: %w", t.Name, err)
			}
			t.ID = k
		case "attributes":
			attrs, err := mappingPairs(mp.value)
			if err != nil {
				return t, fmt.Errorf("type %s: %w", t.Name, err)
			}
			for _, ap := range attrs {
				k, err := kindOf(ap.value)
				if err != nil {
					return t, fmt.Errorf("type %s attribute %s: %w", t.Name, ap.key.Value, err)
				}
				t.Attributes = append(t.Attributes, Attribute{Name: ap.key.Value, Kind: k})
			}
		default:
			return t, fmt.Errorf("line %d: unknown key %q in type %s", mp.key.Line, mp.key.Value, t.Name)
		}
	}
	return t, nil
}

func kindOf(n *yaml.Node) (Kind, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: kind must be a scalar", n.Line)
	}
	k := Kind(n.Value)
	if _, ok := kindTypes[k]; !ok {
		return "", fmt.Errorf("line %d: unknown kind %q", n.Line, n.Value)
	}
	return k, nil
}

// Lookup returns the declaration of the named type.
func (m *Manifest) Lookup(name string) (Type, bool) {
	i, ok := m.byName[name]
	if !ok {
		return Type{}, false
	}
	return m.Types[i], true
}

// Names lists declared types in manifest order.
func (m *Manifest) Names() []string {
	out := make([]string, len(m.Types))
	for i, t := range m.Types {
		out[i] = t.Name
	}
	return out
}
