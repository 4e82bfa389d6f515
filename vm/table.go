package vm

import "math"

// Table is the only structured data type: a hash part keyed by arbitrary
// non-nil values plus a contiguous integer-keyed array part starting at 1.
// The array part drives the length operator and ipairs iteration. The hash
// part keeps an insertion-order index so that next can traverse it
// deterministically.
type Table struct {
	array []Value
	hash  map[Value]Value
	order []Value
	meta  *Table
}

func (*Table) isValue()         {}
func (*Table) TypeName() string { return "table" }

func NewTable() *Table {
	return &Table{hash: make(map[Value]Value)}
}

// NewTableSize preallocates the array and hash parts.
func NewTableSize(narr, nhash int) *Table {
	t := &Table{hash: make(map[Value]Value, nhash)}
	if narr > 0 {
		t.array = make([]Value, 0, narr)
	}
	return t
}

// normalizeKey folds float keys with integral values onto integer keys so
// that t[1] and t[1.0] address the same slot.
func normalizeKey(k Value) Value {
	if f, ok := k.(FloatValue); ok {
		if i := int64(f); FloatValue(i) == f {
			return IntValue(i)
		}
	}
	return k
}

// Get returns the value stored under key, or Nil if absent. Missing keys
// are not an error at this level; metamethod routing happens above.
func (t *Table) Get(key Value) Value {
	key = normalizeKey(key)
	if i, ok := key.(IntValue); ok {
		idx := int(i)
		if idx >= 1 && idx <= len(t.array) {
			return t.array[idx-1]
		}
	}
	if v, ok := t.hash[key]; ok {
		return v
	}
	return Nil
}

// Set stores value under key. Setting nil removes the entry; removing from
// the middle of the array part truncates the contiguous run, migrating the
// tail to the hash part so the array invariant holds.
func (t *Table) Set(key, value Value) error {
	key = normalizeKey(key)
	switch k := key.(type) {
	case NilValue:
		return RuntimeFault("table index is nil")
	case FloatValue:
		if math.IsNaN(float64(k)) {
			return RuntimeFault("table index is NaN")
		}
	case IntValue:
		idx := int(k)
		if idx >= 1 && idx <= len(t.array) {
			if _, isNil := value.(NilValue); isNil {
				t.truncateArray(idx)
				return nil
			}
			t.array[idx-1] = value
			return nil
		}
		if idx == len(t.array)+1 {
			if _, isNil := value.(NilValue); isNil {
				t.hashDelete(key)
				return nil
			}
			t.array = append(t.array, value)
			t.absorbHash()
			return nil
		}
	}
	if _, isNil := value.(NilValue); isNil {
		t.hashDelete(key)
		return nil
	}
	if _, exists := t.hash[key]; !exists {
		t.order = append(t.order, key)
	}
	t.hash[key] = value
	return nil
}

func (t *Table) hashDelete(key Value) {
	if _, exists := t.hash[key]; !exists {
		return
	}
	delete(t.hash, key)
	for i, k := range t.order {
		if Equal(k, key) {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// truncateArray removes array element idx (1-based) and everything after
// it, moving survivors past idx into the hash part.
func (t *Table) truncateArray(idx int) {
	for i := idx + 1; i <= len(t.array); i++ {
		k := IntValue(int64(i))
		t.hash[k] = t.array[i-1]
		t.order = append(t.order, k)
	}
	t.array = t.array[:idx-1]
}

// absorbHash pulls integer keys that now extend the array run out of the
// hash part.
func (t *Table) absorbHash() {
	for {
		next := IntValue(int64(len(t.array) + 1))
		v, ok := t.hash[next]
		if !ok {
			return
		}
		t.hashDelete(next)
		t.array = append(t.array, v)
	}
}

// Len is the raw length operator: the size of the contiguous array part.
func (t *Table) Len() int {
	return len(t.array)
}

// Meta returns the table's metatable, which may be nil.
func (t *Table) Meta() *Table {
	return t.meta
}

// SetMeta attaches (or with nil, detaches) a metatable.
func (t *Table) SetMeta(m *Table) {
	t.meta = m
}

// Next supports stateless iteration in the style of Lua's next. A nil key
// starts the traversal; a nil returned key ends it. The array part is
// visited in order, then the hash part in insertion order.
func (t *Table) Next(key Value) (Value, Value, error) {
	if _, isNil := key.(NilValue); isNil {
		if len(t.array) > 0 {
			return IntValue(1), t.array[0], nil
		}
		return t.firstHash(), t.Get(t.firstHash()), nil
	}

	key = normalizeKey(key)
	if i, ok := key.(IntValue); ok {
		idx := int(i)
		if idx >= 1 && idx < len(t.array) {
			return IntValue(int64(idx + 1)), t.array[idx], nil
		}
		if idx == len(t.array) && idx >= 1 {
			return t.firstHash(), t.Get(t.firstHash()), nil
		}
	}

	for n, k := range t.order {
		if Equal(k, key) {
			if n+1 < len(t.order) {
				nk := t.order[n+1]
				return nk, t.hash[nk], nil
			}
			return Nil, Nil, nil
		}
	}
	return Nil, Nil, RuntimeFault("invalid key to 'next'")
}

func (t *Table) firstHash() Value {
	if len(t.order) > 0 {
		return t.order[0]
	}
	return Nil
}

// Keys returns every populated key, array part first then hash part in
// insertion order. Used by snapshots and the environment view, not by the
// evaluator.
func (t *Table) Keys() []Value {
	keys := make([]Value, 0, len(t.array)+len(t.order))
	for i := range t.array {
		keys = append(keys, IntValue(int64(i+1)))
	}
	keys = append(keys, t.order...)
	return keys
}
