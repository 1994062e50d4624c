package jsonapi

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/reoring/jsonapi/i18n"
	"github.com/reoring/jsonapi/internal/wire"
)

// Decoded carries a decoded document together with the issues describing
// everything the lenient decoder dropped.
type Decoded[T any] struct {
	Document Document[T]
	Issues   Issues
}

// FromJSON decodes data into a document of T. Resources are dispatched on
// their type member; resources of unknown types, resources not assignable
// to T, and fields that fail to convert are dropped without error.
//
// T is usually a pointer to a registered type (*Article) or an interface
// implemented by several registered types. Value types (Article) receive
// copies taken after the post-create hook ran.
func FromJSON[T any](c *Converter, data []byte) (Document[T], error) {
	d, err := FromJSONWithMeta[T](c, data)
	return d.Document, err
}

// FromJSONWithMeta is like FromJSON but also returns the Issues collected
// while decoding.
func FromJSONWithMeta[T any](c *Converter, data []byte) (Decoded[T], error) {
	var out Decoded[T]
	doc, err := wire.Parse(data)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		c.observer.ObserveDecode(0, nil, err)
		return out, err
	}
	if !doc.HasData {
		c.observer.ObserveDecode(0, nil, ErrUnsupportedDocumentShape)
		return out, ErrUnsupportedDocumentShape
	}

	d := &decoder{c: c}
	if c.duplicates {
		dups, err := wire.DuplicateMembers(data)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrMalformedDocument, err)
			c.observer.ObserveDecode(0, nil, err)
			return out, err
		}
		for _, p := range dups {
			d.report(duplicateIssue(p))
		}
	}
	root := rootPath().Field(wire.MemberData)
	if arr, ok := doc.Data.([]any); ok {
		out.Document = Collection[T]()
		for i, el := range arr {
			if v, ok := decodeAs[T](d, el, root.Index(i)); ok {
				out.Document.Add(v)
			}
		}
	} else {
		out.Document = Null[T]()
		if doc.Data != nil {
			if v, ok := decodeAs[T](d, doc.Data, root); ok {
				out.Document.Add(v)
			}
		}
	}
	out.Issues = d.issues
	c.observer.ObserveDecode(out.Document.Len(), out.Issues, nil)
	return out, nil
}

func duplicateIssue(pointer string) Issue {
	name := wire.LastPointerToken(pointer)
	return Issue{
		Path:    pointer,
		Code:    CodeDuplicateMember,
		Message: i18n.T(CodeDuplicateMember, map[string]string{"field": name}),
		Params:  map[string]any{"field": name},
	}
}

// decodeAs decodes one resource and keeps it only if it is a T.
func decodeAs[T any](d *decoder, raw any, p pathRef) (T, bool) {
	var zero T
	ptr, disc, ok := d.resource(raw, p)
	if !ok {
		return zero, false
	}
	if v, ok := ptr.Interface().(T); ok {
		return v, true
	}
	if v, ok := ptr.Elem().Interface().(T); ok {
		return v, true
	}
	d.report(p.Issue(CodeTypeMismatch, nil, "type", disc))
	return zero, false
}

type decoder struct {
	c      *Converter
	issues Issues
}

func (d *decoder) report(it Issue) {
	d.issues = append(d.issues, it)
	d.c.logger.Debug("jsonapi: dropped data",
		zap.String("path", it.Path),
		zap.String("code", it.Code),
		zap.Error(it.Cause),
	)
}

// resource decodes a wire resource object into a pointer to a fresh value
// of its registered type. Null input is skipped without an issue.
func (d *decoder) resource(raw any, p pathRef) (reflect.Value, string, bool) {
	if raw == nil {
		return reflect.Value{}, "", false
	}
	obj, ok := wire.Object(raw)
	if !ok {
		d.report(p.Issue(CodeInvalidResource, nil))
		return reflect.Value{}, "", false
	}
	disc, _ := obj[wire.MemberType].(string)
	s, ok := d.c.reg.lookup(disc)
	if !ok {
		d.report(p.Issue(CodeUnknownType, nil, "type", disc))
		return reflect.Value{}, disc, false
	}

	ptr := reflect.New(s.Type)
	rv := ptr.Elem()
	if s.ID != nil {
		if err := d.set(rv, s.ID, obj[wire.MemberID], p.Field(wire.MemberID)); err != nil {
			d.report(p.Field(wire.MemberID).Issue(CodeInvalidID, err, "type", disc))
		}
	}
	attrs, _ := wire.Object(obj[wire.MemberAttributes])
	ap := p.Field(wire.MemberAttributes)
	for i := range s.Attributes {
		f := &s.Attributes[i]
		fp := ap.Field(f.StorageName)
		if err := d.set(rv, f, attrs[f.StorageName], fp); err != nil {
			d.report(fp.Issue(CodeInvalidValue, err, "type", disc, "field", f.StorageName))
		}
	}
	if s.hook != nil {
		s.hook.call(ptr)
	}
	return ptr, disc, true
}

// set converts raw and assigns it to the field. Failures leave the field at
// its default value.
func (d *decoder) set(rv reflect.Value, f *FieldDescriptor, raw any, p pathRef) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("assign %s: %v", f.Name, r)
		}
	}()
	var v reflect.Value
	var ok bool
	switch f.binding {
	case bindConverter:
		v, ok, err = decodeWithConverter(f.converter, f.Type, raw)
	case bindResource:
		v, ok, err = d.nested(f, raw, p)
	default:
		v, ok, err = decodeNative(f.Type, raw)
	}
	if err != nil || !ok {
		return err
	}
	rv.FieldByIndex(f.index).Set(v)
	return nil
}

// nested decodes an attribute holding another registered resource. Issues
// inside the nested resource are reported by resource itself.
func (d *decoder) nested(f *FieldDescriptor, raw any, p pathRef) (reflect.Value, bool, error) {
	ptr, _, ok := d.resource(raw, p)
	if !ok {
		return reflect.Value{}, false, nil
	}
	if f.Type.Kind() != reflect.Pointer {
		ptr = ptr.Elem()
	}
	if !ptr.Type().AssignableTo(f.Type) {
		return reflect.Value{}, false, fmt.Errorf("cannot assign %v to %v", ptr.Type(), f.Type)
	}
	return ptr, true, nil
}
