package jsonapi

import (
	"reflect"
	"strings"
)

// postCreatePrefix marks lifecycle hook methods. A resource type may declare
// at most one method named PostCreate or PostCreateXxx, taking no arguments
// and returning nothing; it runs after a decoded value has been populated.
const postCreatePrefix = "PostCreate"

type hook struct {
	name  string
	index int // method index in the pointer method set
}

func (h *hook) call(ptr reflect.Value) {
	ptr.Method(h.index).Call(nil)
}

// findHook scans the pointer method set of t, promoted methods included.
func findHook(t reflect.Type) (*hook, error) {
	pt := reflect.PointerTo(t)
	var found *hook
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if !strings.HasPrefix(m.Name, postCreatePrefix) {
			continue
		}
		if found != nil {
			return nil, schemaErrorf(t, "", "multiple post-create hooks: %s and %s", found.name, m.Name)
		}
		// m.Type includes the receiver
		if m.Type.NumIn() != 1 {
			return nil, schemaErrorf(t, "", "post-create hook %s must not take parameters", m.Name)
		}
		if m.Type.NumOut() != 0 {
			return nil, schemaErrorf(t, "", "post-create hook %s must not return values", m.Name)
		}
		found = &hook{name: m.Name, index: i}
	}
	return found, nil
}
