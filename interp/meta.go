package interp

import (
	"github.com/Golto/Lua-interpreter/vm"
)

// Metamethod chains longer than this raise a fault instead of looping
// forever on cyclic __index graphs.
const maxMetaChain = 100

// metaOf returns the metatable attached to a value, or nil. Only tables
// and userdata carry their own metatables; strings share the string
// library through the dedicated path in Index.
func metaOf(v vm.Value) *vm.Table {
	switch val := v.(type) {
	case *vm.Table:
		return val.Meta()
	case *vm.UserData:
		return val.Meta
	default:
		return nil
	}
}

// metaField looks up the handler for an event on a value's metatable.
// A nil return means no handler.
func (m *machine) metaField(v vm.Value, event string) vm.Value {
	meta := metaOf(v)
	if meta == nil {
		return nil
	}
	h := meta.Get(vm.StringValue(event))
	if _, isNil := h.(vm.NilValue); isNil {
		return nil
	}
	return h
}

// Index implements vm.Runtime: full indexing with the builtin-first rule.
// A present raw entry wins; only a miss consults __index, chaining through
// handler tables and invoking handler functions.
func (m *machine) Index(obj, key vm.Value) (vm.Value, error) {
	for hop := 0; hop < maxMetaChain; hop++ {
		switch o := obj.(type) {
		case *vm.Table:
			raw := o.Get(key)
			if _, miss := raw.(vm.NilValue); !miss {
				return raw, nil
			}
			h := m.metaField(o, "__index")
			if h == nil {
				return vm.Nil, nil
			}
			if next, ok := h.(*vm.Table); ok {
				obj = next
				continue
			}
			res, err := m.Call(h, []vm.Value{obj, key})
			if err != nil {
				return nil, err
			}
			return first(res), nil

		case vm.StringValue:
			if m.stringLib != nil {
				return m.stringLib.Get(key), nil
			}
			return vm.Nil, nil

		case *vm.UserData:
			h := m.metaField(o, "__index")
			if h == nil {
				return nil, m.faultf("attempt to index a userdata value")
			}
			if next, ok := h.(*vm.Table); ok {
				obj = next
				continue
			}
			res, err := m.Call(h, []vm.Value{obj, key})
			if err != nil {
				return nil, err
			}
			return first(res), nil

		default:
			return nil, m.faultf("attempt to index a %s value", obj.TypeName())
		}
	}
	return nil, m.faultf("'__index' chain too long; possible loop")
}

// SetIndex implements vm.Runtime: assignment with __newindex routing. A
// present raw entry is overwritten in place; only assignment to a missing
// key consults the handler.
func (m *machine) SetIndex(obj, key, val vm.Value) error {
	for hop := 0; hop < maxMetaChain; hop++ {
		t, ok := obj.(*vm.Table)
		if !ok {
			return m.faultf("attempt to index a %s value", obj.TypeName())
		}

		raw := t.Get(key)
		if _, miss := raw.(vm.NilValue); !miss {
			return t.Set(key, val)
		}
		h := m.metaField(t, "__newindex")
		if h == nil {
			return t.Set(key, val)
		}
		if next, ok := h.(*vm.Table); ok {
			obj = next
			continue
		}
		_, err := m.Call(h, []vm.Value{obj, key, val})
		return err
	}
	return m.faultf("'__newindex' chain too long; possible loop")
}

// binMeta dispatches a binary operator event against the left operand's
// metatable first, then the right one's.
func (m *machine) binMeta(event string, a, b vm.Value) ([]vm.Value, bool, error) {
	h := m.metaField(a, event)
	if h == nil {
		h = m.metaField(b, event)
	}
	if h == nil {
		return nil, false, nil
	}
	res, err := m.Call(h, []vm.Value{a, b})
	return res, true, err
}
