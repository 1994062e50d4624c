package manifest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/i18n"
	"github.com/reoring/jsonapi/internal/wire"
)

// Report is the outcome of Check.
type Report struct {
	Single    bool
	Resources int // resources that survive lenient decoding
	Issues    jsonapi.Issues
}

// Check decodes b against the manifest with the same lenient rules as the
// typed decoder (with duplicate member detection enabled) and reports what
// would be dropped. A non-empty expect
// rejects resources of other types with a type_mismatch issue.
func (m *Manifest) Check(b []byte, expect string) (Report, error) {
	var rep Report
	doc, err := wire.Parse(b)
	if err != nil {
		return rep, fmt.Errorf("%w: %w", jsonapi.ErrMalformedDocument, err)
	}
	if !doc.HasData {
		return rep, jsonapi.ErrUnsupportedDocumentShape
	}
	c := &checker{m: m, expect: expect}
	dups, err := wire.DuplicateMembers(b)
	if err != nil {
		return rep, fmt.Errorf("%w: %w", jsonapi.ErrMalformedDocument, err)
	}
	for _, p := range dups {
		name := wire.LastPointerToken(p)
		c.issues = append(c.issues, jsonapi.Issue{
			Path:    p,
			Code:    jsonapi.CodeDuplicateMember,
			Message: i18n.T(jsonapi.CodeDuplicateMember, map[string]string{"field": name}),
			Params:  map[string]any{"field": name},
		})
	}
	root := pointer{wire.MemberData}
	if arr, ok := doc.Data.([]any); ok {
		for i, el := range arr {
			if c.resource(el, root.index(i)) {
				rep.Resources++
			}
		}
	} else {
		rep.Single = true
		if c.resource(doc.Data, root) {
			rep.Resources++
		}
	}
	rep.Issues = c.issues
	return rep, nil
}

type checker struct {
	m      *Manifest
	expect string
	issues jsonapi.Issues
}

func (c *checker) report(p pointer, code string, cause error, kv ...string) {
	var params map[string]any
	var data map[string]string
	if len(kv) > 1 {
		params = make(map[string]any, len(kv)/2)
		data = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			params[kv[i]] = kv[i+1]
			data[kv[i]] = kv[i+1]
		}
	}
	c.issues = append(c.issues, jsonapi.Issue{
		Path:    p.String(),
		Code:    code,
		Message: i18n.T(code, data),
		Cause:   cause,
		Params:  params,
	})
}

func (c *checker) resource(raw any, p pointer) bool {
	if raw == nil {
		return false
	}
	obj, ok := wire.Object(raw)
	if !ok {
		c.report(p, jsonapi.CodeInvalidResource, nil)
		return false
	}
	disc, _ := obj[wire.MemberType].(string)
	t, ok := c.m.Lookup(disc)
	if !ok {
		c.report(p, jsonapi.CodeUnknownType, nil, "type", disc)
		return false
	}
	if t.ID != "" {
		if err := c.m.decode(t.ID, obj[wire.MemberID]); err != nil {
			c.report(p.field(wire.MemberID), jsonapi.CodeInvalidID, err, "type", disc)
		}
	}
	attrs, _ := wire.Object(obj[wire.MemberAttributes])
	ap := p.field(wire.MemberAttributes)
	for _, a := range t.Attributes {
		if err := c.m.decode(a.Kind, attrs[a.Name]); err != nil {
			c.report(ap.field(a.Name), jsonapi.CodeInvalidValue, err, "type", disc, "field", a.Name)
		}
	}
	if c.expect != "" && disc != c.expect {
		c.report(p, jsonapi.CodeTypeMismatch, nil, "type", disc)
		return false
	}
	return true
}

func (m *Manifest) decode(k Kind, raw any) error {
	t, ok := k.GoType()
	if !ok {
		return fmt.Errorf("unknown kind %q", k)
	}
	_, _, err := m.conv.Decode(t, raw)
	return err
}

// pointer is a JSON Pointer under construction.
type pointer []string

func (p pointer) field(name string) pointer {
	return append(p[:len(p):len(p)], wire.EscapePointer(name))
}

func (p pointer) index(i int) pointer {
	return append(p[:len(p):len(p)], strconv.Itoa(i))
}

func (p pointer) String() string { return "/" + strings.Join(p, "/") }
