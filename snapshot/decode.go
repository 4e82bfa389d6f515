package snapshot

import (
	"bytes"
	"fmt"

	"github.com/Golto/Lua-interpreter/vm"
)

// Restore decodes a snapshot back into named bindings. The table graph
// is rebuilt with sharing and cycles intact: every reference to the
// same document table yields the same *vm.Table.
func Restore(s *Snapshot) (map[string]vm.Value, error) {
	doc := &document{}
	if err := doc.Deserialize(bytes.NewReader(s.Data)); err != nil {
		return nil, err
	}
	if len(doc.Names) != len(doc.Roots) {
		return nil, fmt.Errorf("malformed snapshot: %d names for %d roots", len(doc.Names), len(doc.Roots))
	}

	// Allocate every table up front so references resolve before any
	// entries are filled, which is what makes cycles reconstructable.
	tables := make([]*vm.Table, len(doc.Tables))
	for i := range tables {
		tables[i] = vm.NewTable()
	}
	for i, tn := range doc.Tables {
		if len(tn.Keys) != len(tn.Vals) {
			return nil, fmt.Errorf("malformed snapshot: table %d has %d keys for %d values", i, len(tn.Keys), len(tn.Vals))
		}
		for j := range tn.Keys {
			k, err := decodeNode(tn.Keys[j], tables)
			if err != nil {
				return nil, err
			}
			v, err := decodeNode(tn.Vals[j], tables)
			if err != nil {
				return nil, err
			}
			if err := tables[i].Set(k, v); err != nil {
				return nil, err
			}
		}
		if tn.Meta >= 0 {
			if tn.Meta >= len(tables) {
				return nil, fmt.Errorf("malformed snapshot: metatable index %d out of range", tn.Meta)
			}
			tables[i].SetMeta(tables[tn.Meta])
		}
	}

	out := make(map[string]vm.Value, len(doc.Names))
	for i, name := range doc.Names {
		v, err := decodeNode(doc.Roots[i], tables)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func decodeNode(n node, tables []*vm.Table) (vm.Value, error) {
	switch n.Kind {
	case kindNil:
		return vm.Nil, nil
	case kindBool:
		return vm.BoolValue(n.Bool), nil
	case kindInt:
		return vm.IntValue(n.Int), nil
	case kindFloat:
		return vm.FloatValue(n.Float), nil
	case kindString:
		return vm.StringValue(n.Str), nil
	case kindTable:
		if n.Table < 0 || n.Table >= len(tables) {
			return nil, fmt.Errorf("malformed snapshot: table index %d out of range", n.Table)
		}
		return tables[n.Table], nil
	default:
		return nil, fmt.Errorf("malformed snapshot: unknown node kind %d", n.Kind)
	}
}
