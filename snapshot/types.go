// Package snapshot captures the script-visible data state of an
// interpreter (global bindings and the table graphs they reach) as a
// deterministic msgpack document, digests it, and stores it in a
// content-addressed store. Two environments with the same data state
// produce the same digest, which lets an embedder deduplicate states
// and detect changes between executions cheaply.
package snapshot

import (
	"io"

	"github.com/shamaton/msgpack/v2"
)

// Digest is a 64-bit content fingerprint of an encoded snapshot.
type Digest uint64

// Value kinds in the flattened document. Functions, coroutines and
// userdata are host-bound and cannot be captured; they encode as
// kindSkipped so a restore drops them rather than inventing state.
const (
	kindNil = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindTable
	kindSkipped
)

// node is one flattened value. Table is an index into the document's
// table list, which is what makes shared and self-referential tables
// round-trip as the same single table.
type node struct {
	Kind  int
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Table int
}

// tableNode is one table's entries in deterministic order, plus its
// metatable (index into the table list, -1 for none).
type tableNode struct {
	Keys []node
	Vals []node
	Meta int
}

// document is the full encoded snapshot: named roots over a shared
// table list.
type document struct {
	Names  []string
	Roots  []node
	Tables []tableNode
}

func (d *document) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, d)
}

func (d *document) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, d)
}
