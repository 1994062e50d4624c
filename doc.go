// Package jsonapi converts between JSON:API documents and typed Go values.
//
// Only the data member of a document and the type, id and attributes
// members of its resources are handled; relationships, links, meta and
// included resources are treated as absent.
//
//   - Resource types are structs whose pointer implements Typed; fields are
//     mapped with `jsonapi` struct tags (`jsonapi:"id"`, `jsonapi:"name"`,
//     `jsonapi:"-"`), falling back to the json tag name and the field name.
//   - Non-native field types are handled by TypeConverters (see package convert).
//   - A method named PostCreate (or PostCreateXxx) runs once per decoded value.
//   - Decoding is lenient: unknown types, mismatching resources and fields that
//     fail to convert are dropped. FromJSONWithMeta reports them as Issues.
//
// Typical usage:
//
//	c, err := jsonapi.NewBuilder().
//		AddResourceTypes(Article{}, Person{}).
//		AddConverters(convert.TimeRFC3339()).
//		Build()
//
//	b, err := jsonapi.ToJSON(c, jsonapi.Single(&Article{ID: "1"}))
//	doc, err := jsonapi.FromJSON[*Article](c, b)
package jsonapi
