package snapshot

import (
	"bytes"
	"sort"

	"github.com/dgryski/go-farm"

	"github.com/Golto/Lua-interpreter/vm"
)

// Snapshot is an encoded environment state plus its content digest.
type Snapshot struct {
	Digest Digest
	Data   []byte
}

type encoder struct {
	doc     *document
	indexes map[*vm.Table]int
}

// Capture flattens the given bindings into a snapshot. Root names are
// sorted and table entries follow insertion order, so the same logical
// state always encodes to the same bytes and digest.
func Capture(bindings map[string]vm.Value) (*Snapshot, error) {
	enc := &encoder{
		doc:     &document{},
		indexes: make(map[*vm.Table]int),
	}

	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		n := enc.encode(bindings[name])
		if n.Kind == kindSkipped {
			continue
		}
		enc.doc.Names = append(enc.doc.Names, name)
		enc.doc.Roots = append(enc.doc.Roots, n)
	}

	var buf bytes.Buffer
	if err := enc.doc.Serialize(&buf); err != nil {
		return nil, err
	}
	data := buf.Bytes()
	return &Snapshot{Digest: Digest(farm.Hash64(data)), Data: data}, nil
}

func (e *encoder) encode(v vm.Value) node {
	switch val := v.(type) {
	case vm.NilValue:
		return node{Kind: kindNil}
	case vm.BoolValue:
		return node{Kind: kindBool, Bool: bool(val)}
	case vm.IntValue:
		return node{Kind: kindInt, Int: int64(val)}
	case vm.FloatValue:
		return node{Kind: kindFloat, Float: float64(val)}
	case vm.StringValue:
		return node{Kind: kindString, Str: string(val)}
	case *vm.Table:
		return node{Kind: kindTable, Table: e.encodeTable(val)}
	default:
		return node{Kind: kindSkipped}
	}
}

// encodeTable registers the table before walking its entries, so cycles
// terminate: a self-reference resolves to the index already claimed.
func (e *encoder) encodeTable(t *vm.Table) int {
	if idx, seen := e.indexes[t]; seen {
		return idx
	}
	idx := len(e.doc.Tables)
	e.indexes[t] = idx
	e.doc.Tables = append(e.doc.Tables, tableNode{Meta: -1})

	var tn tableNode
	tn.Meta = -1
	for _, key := range t.Keys() {
		kn := e.encode(key)
		vn := e.encode(t.Get(key))
		if kn.Kind == kindSkipped || vn.Kind == kindSkipped {
			continue
		}
		tn.Keys = append(tn.Keys, kn)
		tn.Vals = append(tn.Vals, vn)
	}
	if mt := t.Meta(); mt != nil {
		tn.Meta = e.encodeTable(mt)
	}
	e.doc.Tables[idx] = tn
	return idx
}
