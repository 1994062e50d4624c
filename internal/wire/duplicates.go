package wire

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

type dupFrame struct {
	object       bool
	keys         map[string]struct{}
	key          string // current member name (objects)
	index        int    // elements started so far (arrays)
	expectingKey bool
}

// segment is the pointer token of the value currently being read in f.
func (f *dupFrame) segment() string {
	if f.object {
		return EscapePointer(f.key)
	}
	return strconv.Itoa(f.index - 1)
}

// DuplicateMembers returns the JSON Pointer of every object member that
// repeats an earlier member name of the same object. Decoding keeps the last
// occurrence, so each path names a member whose earlier values were lost.
func DuplicateMembers(b []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var stack []dupFrame
	var dups []string
	valueStart := func() {
		if n := len(stack); n > 0 && !stack[n-1].object {
			stack[n-1].index++
		}
	}
	valueEnd := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].expectingKey = true
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if len(stack) > 0 {
				return dups, io.ErrUnexpectedEOF
			}
			return dups, nil
		}
		if err != nil {
			return dups, err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				valueStart()
				stack = append(stack, dupFrame{object: v == '{', keys: map[string]struct{}{}, expectingKey: v == '{'})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				valueEnd()
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].expectingKey {
				top := &stack[n-1]
				if _, dup := top.keys[v]; dup {
					dups = append(dups, pointerOf(stack[:n-1], v))
				}
				top.keys[v] = struct{}{}
				top.key = v
				top.expectingKey = false
				continue
			}
			valueStart()
			valueEnd()
		default:
			valueStart()
			valueEnd()
		}
	}
}

func pointerOf(parents []dupFrame, key string) string {
	var b strings.Builder
	for i := range parents {
		b.WriteByte('/')
		b.WriteString(parents[i].segment())
	}
	b.WriteByte('/')
	b.WriteString(EscapePointer(key))
	return b.String()
}

// EscapePointer escapes a JSON Pointer reference token per RFC 6901.
func EscapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// LastPointerToken returns the unescaped final reference token of pointer.
func LastPointerToken(pointer string) string {
	return pointerUnescaper.Replace(pointer[strings.LastIndexByte(pointer, '/')+1:])
}
