package stdlib

import (
	"sort"
	"strings"

	"github.com/Golto/Lua-interpreter/vm"
)

func TableLib() vm.Library {
	return vm.Library{
		Name: "table",
		Methods: map[string]vm.NativeFunc{
			"insert": tableInsert,
			"remove": tableRemove,
			"concat": tableConcat,
			"sort":   tableSort,
			"unpack": baseUnpack,
		},
	}
}

func tableInsert(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t, err := wantTable(args, 0, "insert")
	if err != nil {
		return nil, err
	}
	n := int64(t.Len())

	switch len(args) {
	case 2:
		return nil, t.Set(vm.IntValue(n+1), args[1])
	case 3:
		pos, err := wantInt(args, 1, "insert")
		if err != nil {
			return nil, err
		}
		if pos < 1 || pos > n+1 {
			return nil, badArg(2, "insert", "position out of bounds", args[1])
		}
		for i := n; i >= pos; i-- {
			if err := t.Set(vm.IntValue(i+1), t.Get(vm.IntValue(i))); err != nil {
				return nil, err
			}
		}
		return nil, t.Set(vm.IntValue(pos), args[2])
	default:
		return nil, vm.RuntimeFault("wrong number of arguments to 'insert'")
	}
}

func tableRemove(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t, err := wantTable(args, 0, "remove")
	if err != nil {
		return nil, err
	}
	n := int64(t.Len())
	pos, err := optInt(args, 1, "remove", n)
	if err != nil {
		return nil, err
	}
	if n == 0 && (pos == 0 || pos == n) {
		return []vm.Value{vm.Nil}, nil
	}
	if pos < 1 || pos > n {
		return nil, badArg(2, "remove", "position out of bounds", arg(args, 1))
	}

	removed := t.Get(vm.IntValue(pos))
	for i := pos; i < n; i++ {
		if err := t.Set(vm.IntValue(i), t.Get(vm.IntValue(i+1))); err != nil {
			return nil, err
		}
	}
	if err := t.Set(vm.IntValue(n), vm.Nil); err != nil {
		return nil, err
	}
	return []vm.Value{removed}, nil
}

func tableConcat(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t, err := wantTable(args, 0, "concat")
	if err != nil {
		return nil, err
	}
	sep := ""
	if len(args) >= 2 {
		if _, isNil := args[1].(vm.NilValue); !isNil {
			sep, err = wantString(args, 1, "concat")
			if err != nil {
				return nil, err
			}
		}
	}
	from, err := optInt(args, 2, "concat", 1)
	if err != nil {
		return nil, err
	}
	to, err := optInt(args, 3, "concat", int64(t.Len()))
	if err != nil {
		return nil, err
	}

	var parts []string
	for i := from; i <= to; i++ {
		switch v := t.Get(vm.IntValue(i)).(type) {
		case vm.StringValue, vm.IntValue, vm.FloatValue:
			parts = append(parts, vm.ToString(v))
		default:
			return nil, vm.RuntimeFault("invalid value (at index %d) in table for 'concat'", i)
		}
	}
	return []vm.Value{vm.StringValue(strings.Join(parts, sep))}, nil
}

// tableSort sorts the array part in place, using the optional comparator
// through the runtime so script-defined orderings work. Comparator faults
// abort the sort.
func tableSort(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t, err := wantTable(args, 0, "sort")
	if err != nil {
		return nil, err
	}
	n := t.Len()
	vals := make([]vm.Value, n)
	for i := 0; i < n; i++ {
		vals[i] = t.Get(vm.IntValue(int64(i + 1)))
	}

	var sortErr error
	less := func(a, b vm.Value) bool {
		if sortErr != nil {
			return false
		}
		if cmp := arg(args, 1); vm.Truthy(cmp) {
			res, err := rt.Call(cmp, []vm.Value{a, b})
			if err != nil {
				sortErr = err
				return false
			}
			return len(res) > 0 && vm.Truthy(res[0])
		}
		switch av := a.(type) {
		case vm.IntValue, vm.FloatValue:
			af, _ := vm.ToFloat(a)
			bf, ok := vm.ToFloat(b)
			if !ok {
				sortErr = vm.RuntimeFault("attempt to compare number with %s", b.TypeName())
				return false
			}
			return af < bf
		case vm.StringValue:
			bs, ok := b.(vm.StringValue)
			if !ok {
				sortErr = vm.RuntimeFault("attempt to compare string with %s", b.TypeName())
				return false
			}
			return string(av) < string(bs)
		default:
			sortErr = vm.RuntimeFault("attempt to compare two %s values", a.TypeName())
			return false
		}
	}
	sort.SliceStable(vals, func(i, j int) bool { return less(vals[i], vals[j]) })
	if sortErr != nil {
		return nil, sortErr
	}

	for i, v := range vals {
		if err := t.Set(vm.IntValue(int64(i+1)), v); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
