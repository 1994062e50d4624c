// Package wire parses and emits the JSON text of JSON:API documents using
// goccy/go-json. It knows nothing about registered resource types.
package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// Member names of the JSON:API subset handled by this module.
const (
	MemberData       = "data"
	MemberType       = "type"
	MemberID         = "id"
	MemberAttributes = "attributes"
)

// Number is the decoded form of JSON numbers (numbers are never decoded as
// float64, so integer ids keep their precision).
type Number = gojson.Number

// Document is the parsed top-level envelope. Data holds nil, a
// map[string]any, a []any, or a scalar.
type Document struct {
	Data    any
	HasData bool
}

// ErrNotObject is returned by Parse when the top-level value is not an object.
var ErrNotObject = errors.New("top-level value is not an object")

// Parse decodes b and extracts the data member. Members other than data are
// ignored.
func Parse(b []byte) (Document, error) {
	dec := gojson.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var top any
	if err := dec.Decode(&top); err != nil {
		return Document{}, err
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return Document{}, errors.New("unexpected data after top-level value")
		}
		return Document{}, err
	}
	obj, ok := top.(map[string]any)
	if !ok {
		return Document{}, ErrNotObject
	}
	data, has := obj[MemberData]
	return Document{Data: data, HasData: has}, nil
}

// Object returns v as a JSON object.
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// ScalarString renders a decoded scalar the way a lenient reader would see
// it as text: strings as-is, numbers by their literal, booleans as
// "true"/"false". Objects, arrays and null report false.
func ScalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	}
	return "", false
}

// Member is one key/value pair of an OrderedObject.
type Member struct {
	Key   string
	Value any
}

// OrderedObject is a JSON object that keeps its members in insertion order
// when marshaled.
type OrderedObject []Member

// Set appends a member.
func (o *OrderedObject) Set(key string, value any) { *o = append(*o, Member{Key: key, Value: value}) }

// Get returns the first member named key.
func (o OrderedObject) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

func (o OrderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := gojson.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := gojson.Marshal(m.Value)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", m.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Marshal encodes v as compact JSON.
func Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

// Envelope wraps data into the top-level document object.
func Envelope(data any) OrderedObject {
	return OrderedObject{{Key: MemberData, Value: data}}
}
