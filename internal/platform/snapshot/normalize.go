package snapshot

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
)

const FieldID = "id"

var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Schema describes how one collection is normalized.
type Schema struct {
	// IDPrefix prefixes synthetic ids generated for array elements without an id.
	IDPrefix string
	// Aliases maps a canonical field to legacy names. The first present value wins.
	Aliases map[string][]string
}

// Normalize converts a collection snapshot stored either as an array or as a keyed map into
// canonical records in remote order. Absent snapshots yield no records. Anything else that is
// not an array or object yields no records and ErrMalformedSnapshot.
func Normalize(snap Snapshot, schema Schema) ([]Record, error) {
	if !snap.Exists() {
		return []Record{}, nil
	}
	if !sonic.Valid(snap.Raw) {
		return []Record{}, fmt.Errorf("%w: path=%s: invalid json", ErrMalformedSnapshot, snap.Path)
	}

	root, err := sonic.Get(snap.Raw)
	if err != nil {
		return []Record{}, fmt.Errorf("%w: path=%s: %v", ErrMalformedSnapshot, snap.Path, err)
	}

	var out []Record
	switch root.TypeSafe() {
	case ast.V_ARRAY:
		out, err = normalizeArray(&root, schema)
	case ast.V_OBJECT:
		out, err = normalizeObject(&root, schema)
	case ast.V_NULL:
		return []Record{}, nil
	default:
		return []Record{}, fmt.Errorf("%w: path=%s: neither array nor object", ErrMalformedSnapshot, snap.Path)
	}
	if err != nil {
		return []Record{}, fmt.Errorf("%w: path=%s: %v", ErrMalformedSnapshot, snap.Path, err)
	}
	return out, nil
}

// Encode renders records as a canonical JSON array.
func Encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	raw, err := sonic.ConfigStd.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return raw, nil
}

func normalizeArray(root *ast.Node, schema Schema) ([]Record, error) {
	out := make([]Record, 0)
	seen := make(map[string]int)
	var iterErr error
	err := root.ForEach(func(_ ast.Sequence, node *ast.Node) bool {
		record, ok, err := objectRecord(node)
		if err != nil {
			iterErr = err
			return false
		}
		if !ok {
			return true
		}
		resolveAliases(record, schema.Aliases)
		if id := record.ID(); id != "" {
			record[FieldID] = id
		} else {
			syntheticID, err := contentID(schema.IDPrefix, record)
			if err != nil {
				iterErr = err
				return false
			}
			// Identical elements keep distinct ids: repeats get an occurrence suffix.
			seen[syntheticID]++
			if n := seen[syntheticID]; n > 1 {
				syntheticID = syntheticID + "-" + strconv.Itoa(n)
			}
			record[FieldID] = syntheticID
		}
		out = append(out, record)
		return true
	})
	if err != nil {
		return nil, err
	}
	if iterErr != nil {
		return nil, iterErr
	}
	return out, nil
}

func normalizeObject(root *ast.Node, schema Schema) ([]Record, error) {
	out := make([]Record, 0)
	var iterErr error
	err := root.ForEach(func(path ast.Sequence, node *ast.Node) bool {
		record, ok, err := objectRecord(node)
		if err != nil {
			iterErr = err
			return false
		}
		if !ok {
			return true
		}
		resolveAliases(record, schema.Aliases)
		id := record.ID()
		if id == "" && path.Key != nil {
			id = *path.Key
		}
		record[FieldID] = id
		out = append(out, record)
		return true
	})
	if err != nil {
		return nil, err
	}
	if iterErr != nil {
		return nil, iterErr
	}
	return out, nil
}

// objectRecord returns false for null holes and non-object elements.
func objectRecord(node *ast.Node) (Record, bool, error) {
	if node == nil || node.TypeSafe() != ast.V_OBJECT {
		return nil, false, nil
	}
	value, err := node.Interface()
	if err != nil {
		return nil, false, err
	}
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, false, nil
	}
	return Record(fields), true, nil
}

func resolveAliases(record Record, aliases map[string][]string) {
	for canonical, names := range aliases {
		var (
			winner any
			found  bool
		)
		for _, name := range append([]string{canonical}, names...) {
			value, ok := record[name]
			if !found && ok && present(value) {
				winner, found = value, true
			}
			delete(record, name)
		}
		if found {
			record[canonical] = winner
		}
	}
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	default:
		return true
	}
}

// contentID hashes the canonical encoding of the record so the same content always maps to the
// same id regardless of its position in the array.
func contentID(prefix string, record Record) (string, error) {
	raw, err := sonic.ConfigStd.Marshal(record)
	if err != nil {
		return "", err
	}
	h := fnv.New64a()
	_, _ = h.Write(raw)
	if prefix == "" {
		prefix = "rec"
	}
	return prefix + "-" + strconv.FormatUint(h.Sum64(), 16), nil
}
