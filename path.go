package jsonapi

import (
	"strconv"
	"strings"

	"github.com/reoring/jsonapi/i18n"
	"github.com/reoring/jsonapi/internal/wire"
)

// pathRef builds JSON Pointer paths for Issues. Values are immutable; Field
// and Index return extended copies.
type pathRef struct {
	parts []string
}

func rootPath() pathRef { return pathRef{} }

func (p pathRef) Field(name string) pathRef {
	if name == "" {
		return p
	}
	return pathRef{parts: append(append([]string{}, p.parts...), wire.EscapePointer(name))}
}

func (p pathRef) Index(i int) pathRef {
	return pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// Issue creates an Issue at p with a localized message. kv holds
// alternating parameter keys and values.
func (p pathRef) Issue(code string, cause error, kv ...string) Issue {
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
	return Issue{Path: p.Pointer(), Code: code, Message: i18n.T(code, data), Cause: cause, Params: params}
}
