// Package tree holds a JSON document tree addressed by slash separated paths, with the write
// semantics of a key-path store: setting null or an empty container deletes the node and prunes
// parents left empty.
package tree

import (
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

type Tree struct {
	root any
}

func New(root any) (*Tree, error) {
	v, err := Normalize(root)
	if err != nil {
		return nil, err
	}
	return &Tree{root: v}, nil
}

// Normalize converts any JSON encodable value into the generic form stored in the tree:
// map[string]any, []any, string, float64 and bool, with empty containers removed.
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return nil, crerr.Wrap(err, "encode tree value")
	}
	var out any
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, crerr.Wrap(err, "decode tree value")
	}
	return prune(out), nil
}

// Split returns the non-empty segments of path.
func Split(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Related reports whether a change at one path can alter the value at the other, i.e. one is
// an ancestor of, or equal to, the other.
func Related(a, b string) bool {
	as, bs := Split(a), Split(b)
	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// Get returns the value at path, or nil when absent.
func (t *Tree) Get(path string) any {
	node := t.root
	for _, seg := range Split(path) {
		switch n := node.(type) {
		case map[string]any:
			node = n[seg]
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(n) {
				return nil
			}
			node = n[i]
		default:
			return nil
		}
	}
	return node
}

// Encode returns the JSON encoding of the value at path; an absent value encodes as nil.
func (t *Tree) Encode(path string) ([]byte, error) {
	v := t.Get(path)
	if v == nil {
		return nil, nil
	}
	raw, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return nil, crerr.Wrapf(err, "encode %s", path)
	}
	return raw, nil
}

// Set replaces the value at path. A nil value deletes it.
func (t *Tree) Set(path string, v any) error {
	normalized, err := Normalize(v)
	if err != nil {
		return err
	}
	t.root = setAt(t.root, Split(path), normalized)
	return nil
}

// Merge sets each field relative to path. Field names may themselves be paths.
func (t *Tree) Merge(path string, fields map[string]any) error {
	for key, v := range fields {
		normalized, err := Normalize(v)
		if err != nil {
			return err
		}
		segs := append(Split(path), Split(key)...)
		t.root = setAt(t.root, segs, normalized)
	}
	return nil
}

func setAt(node any, segs []string, v any) any {
	if len(segs) == 0 {
		return v
	}
	m := asMap(node)
	child := setAt(m[segs[0]], segs[1:], v)
	if child == nil {
		delete(m, segs[0])
	} else {
		m[segs[0]] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func asMap(node any) map[string]any {
	switch n := node.(type) {
	case map[string]any:
		return n
	case []any:
		m := make(map[string]any, len(n))
		for i, item := range n {
			if item != nil {
				m[strconv.Itoa(i)] = item
			}
		}
		return m
	default:
		return make(map[string]any)
	}
}

func prune(v any) any {
	switch n := v.(type) {
	case map[string]any:
		for k, item := range n {
			if p := prune(item); p == nil {
				delete(n, k)
			} else {
				n[k] = p
			}
		}
		if len(n) == 0 {
			return nil
		}
		return n
	case []any:
		empty := true
		for i, item := range n {
			n[i] = prune(item)
			if n[i] != nil {
				empty = false
			}
		}
		if empty {
			return nil
		}
		return n
	default:
		return v
	}
}
