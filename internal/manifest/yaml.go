package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// pair is one key/value entry of a YAML mapping in document order.
type pair struct {
	key   *yaml.Node
	value *yaml.Node
}

// mappingPairs returns the entries of a mapping node in document order,
// rejecting duplicate keys. An empty or null node yields no entries.
func mappingPairs(n *yaml.Node) ([]pair, error) {
	if n == nil || n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null") {
		return nil, nil
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	out := make([]pair, 0, len(n.Content)/2)
	first := make(map[string][2]int, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if pos, dup := first[k.Value]; dup {
			return nil, &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
		}
		first[k.Value] = [2]int{k.Line, k.Column}
		out = append(out, pair{key: k, value: n.Content[i+1]})
	}
	return out, nil
}
