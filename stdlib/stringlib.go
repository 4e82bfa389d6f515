package stdlib

import (
	"fmt"
	"strings"

	"github.com/Golto/Lua-interpreter/vm"
)

// StringLib returns the string library descriptor. Its table also backs
// indexing of string values, so s:sub(i) resolves through it.
func StringLib() vm.Library {
	return vm.Library{
		Name: "string",
		Methods: map[string]vm.NativeFunc{
			"len":     stringLen,
			"sub":     stringSub,
			"upper":   stringUpper,
			"lower":   stringLower,
			"rep":     stringRep,
			"reverse": stringReverse,
			"byte":    stringByte,
			"char":    stringChar,
			"format":  stringFormat,
			"find":    stringFind,
			"match":   stringMatch,
			"gmatch":  stringGmatch,
			"gsub":    stringGsub,
		},
	}
}

// strRange resolves Lua's 1-based, negative-tolerant (i, j) pair into Go
// slice bounds over a string of length n.
func strRange(i, j, n int64) (int64, int64) {
	if i < 0 {
		i = n + i + 1
	}
	if i < 1 {
		i = 1
	}
	if j < 0 {
		j = n + j + 1
	}
	if j > n {
		j = n
	}
	return i, j
}

func stringLen(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	s, err := wantString(args, 0, "len")
	if err != nil {
		return nil, err
	}
	return []vm.Value{vm.IntValue(int64(len(s)))}, nil
}

func stringSub(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	s, err := wantString(args, 0, "sub")
	if err != nil {
		return nil, err
	}
	i, err := optInt(args, 1, "sub", 1)
	if err != nil {
		return nil, err
	}
	j, err := optInt(args, 2, "sub", -1)
	if err != nil {
		return nil, err
	}
	i, j = strRange(i, j, int64(len(s)))
	if i > j {
		return []vm.Value{vm.StringValue("")}, nil
	}
	return []vm.Value{vm.StringValue(s[i-1 : j])}, nil
}

func stringUpper(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	s, err := wantString(args, 0, "upper")
	if err != nil {
		return nil, err
	}
	return []vm.Value{vm.StringValue(strings.ToUpper(s))}, nil
}

func stringLower(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	s, err := wantString(args, 0, "lower")
	if err != nil {
		return nil, err
	}
	return []vm.Value{vm.StringValue(strings.ToLower(s))}, nil
}

func stringRep(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	s, err := wantString(args, 0, "rep")
	if err != nil {
		return nil, err
	}
	n, err := wantInt(args, 1, "rep")
	if err != nil {
		return nil, err
	}
	sep := ""
	if len(args) >= 3 {
		sep, err = wantString(args, 2, "rep")
		if err != nil {
			return nil, err
		}
	}
	if n <= 0 {
		return []vm.Value{vm.StringValue("")}, nil
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = s
	}
	return []vm.Value{vm.StringValue(strings.Join(parts, sep))}, nil
}

func stringReverse(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	s, err := wantString(args, 0, "reverse")
	if err != nil {
		return nil, err
	}
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return []vm.Value{vm.StringValue(b)}, nil
}

func stringByte(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	s, err := wantString(args, 0, "byte")
	if err != nil {
		return nil, err
	}
	i, err := optInt(args, 1, "byte", 1)
	if err != nil {
		return nil, err
	}
	j, err := optInt(args, 2, "byte", i)
	if err != nil {
		return nil, err
	}
	i, j = strRange(i, j, int64(len(s)))
	var out []vm.Value
	for k := i; k <= j; k++ {
		out = append(out, vm.IntValue(int64(s[k-1])))
	}
	return out, nil
}

func stringChar(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	b := make([]byte, len(args))
	for i := range args {
		n, err := wantInt(args, i, "char")
		if err != nil {
			return nil, err
		}
		if n < 0 || n > 255 {
			return nil, badArg(i+1, "char", "value out of range", args[i])
		}
		b[i] = byte(n)
	}
	return []vm.Value{vm.StringValue(b)}, nil
}

// stringFormat supports the C-style verbs Lua scripts use: d/i, u, f, g,
// e, x, X, o, c, s, q and %%. Width, precision and flags pass through.
func stringFormat(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	f, err := wantString(args, 0, "format")
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	next := 1
	for i := 0; i < len(f); i++ {
		if f[i] != '%' {
			b.WriteByte(f[i])
			continue
		}
		i++
		if i >= len(f) {
			return nil, vm.RuntimeFault("invalid format string to 'format'")
		}
		if f[i] == '%' {
			b.WriteByte('%')
			continue
		}

		start := i
		for i < len(f) && strings.IndexByte("-+ #0123456789.", f[i]) >= 0 {
			i++
		}
		if i >= len(f) {
			return nil, vm.RuntimeFault("invalid format string to 'format'")
		}
		directive := "%" + f[start:i]
		verb := f[i]

		switch verb {
		case 'd', 'i', 'u':
			n, err := wantInt(args, next, "format")
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&b, directive+"d", n)
		case 'x', 'X', 'o':
			n, err := wantInt(args, next, "format")
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&b, directive+string(verb), n)
		case 'c':
			n, err := wantInt(args, next, "format")
			if err != nil {
				return nil, err
			}
			b.WriteByte(byte(n))
		case 'f', 'g', 'G', 'e', 'E':
			x, err := wantFloat(args, next, "format")
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&b, directive+string(verb), x)
		case 's':
			s, err := rt.Display(arg(args, next))
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&b, directive+"s", s)
		case 'q':
			s, err := wantString(args, next, "format")
			if err != nil {
				return nil, err
			}
			b.WriteString(quoteString(s))
		default:
			return nil, vm.RuntimeFault("invalid conversion '%%%c' to 'format'", verb)
		}
		next++
	}
	return []vm.Value{vm.StringValue(b.String())}, nil
}

// quoteString renders s as a literal that reads back as the same string.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// captureValues converts a regexp match (byte offsets into s) into Lua
// capture results: the submatches when the pattern captures, the whole
// match otherwise.
func captureValues(s string, loc []int) []vm.Value {
	if len(loc) > 2 {
		out := make([]vm.Value, 0, len(loc)/2-1)
		for i := 2; i < len(loc); i += 2 {
			if loc[i] < 0 {
				out = append(out, vm.Nil)
				continue
			}
			out = append(out, vm.StringValue(s[loc[i]:loc[i+1]]))
		}
		return out
	}
	return []vm.Value{vm.StringValue(s[loc[0]:loc[1]])}
}

func stringFind(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	s, err := wantString(args, 0, "find")
	if err != nil {
		return nil, err
	}
	pat, err := wantString(args, 1, "find")
	if err != nil {
		return nil, err
	}
	init, err := optInt(args, 2, "find", 1)
	if err != nil {
		return nil, err
	}
	if init < 0 {
		init = int64(len(s)) + init + 1
	}
	if init < 1 {
		init = 1
	}
	if init > int64(len(s))+1 {
		return []vm.Value{vm.Nil}, nil
	}
	offset := int(init - 1)

	if vm.Truthy(arg(args, 3)) {
		idx := strings.Index(s[offset:], pat)
		if idx < 0 {
			return []vm.Value{vm.Nil}, nil
		}
		start := offset + idx
		return []vm.Value{vm.IntValue(int64(start + 1)), vm.IntValue(int64(start + len(pat)))}, nil
	}

	p, err := compilePattern(pat)
	if err != nil {
		return nil, vm.AsFault(err)
	}
	loc := p.re.FindStringSubmatchIndex(s[offset:])
	if loc == nil {
		return []vm.Value{vm.Nil}, nil
	}
	out := []vm.Value{
		vm.IntValue(int64(offset + loc[0] + 1)),
		vm.IntValue(int64(offset + loc[1])),
	}
	if len(loc) > 2 {
		out = append(out, captureValues(s[offset:], loc)...)
	}
	return out, nil
}

func stringMatch(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	s, err := wantString(args, 0, "match")
	if err != nil {
		return nil, err
	}
	pat, err := wantString(args, 1, "match")
	if err != nil {
		return nil, err
	}
	init, err := optInt(args, 2, "match", 1)
	if err != nil {
		return nil, err
	}
	if init < 0 {
		init = int64(len(s)) + init + 1
	}
	if init < 1 {
		init = 1
	}
	if init > int64(len(s))+1 {
		return []vm.Value{vm.Nil}, nil
	}
	sub := s[init-1:]

	p, err := compilePattern(pat)
	if err != nil {
		return nil, vm.AsFault(err)
	}
	loc := p.re.FindStringSubmatchIndex(sub)
	if loc == nil {
		return []vm.Value{vm.Nil}, nil
	}
	return captureValues(sub, loc), nil
}

func stringGmatch(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	s, err := wantString(args, 0, "gmatch")
	if err != nil {
		return nil, err
	}
	pat, err := wantString(args, 1, "gmatch")
	if err != nil {
		return nil, err
	}
	re, err := compileIterPattern(pat)
	if err != nil {
		return nil, vm.AsFault(err)
	}

	pos := 0
	iter := func(rt vm.Runtime, _ []vm.Value) ([]vm.Value, error) {
		for pos <= len(s) {
			loc := re.FindStringSubmatchIndex(s[pos:])
			if loc == nil {
				return []vm.Value{vm.Nil}, nil
			}
			res := captureValues(s[pos:], loc)
			if loc[1] > loc[0] {
				pos += loc[1]
			} else {
				// Empty match: step one byte so iteration terminates.
				pos += loc[1] + 1
			}
			return res, nil
		}
		return []vm.Value{vm.Nil}, nil
	}
	return []vm.Value{vm.NewNative("gmatch.iterator", iter)}, nil
}

func stringGsub(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	s, err := wantString(args, 0, "gsub")
	if err != nil {
		return nil, err
	}
	pat, err := wantString(args, 1, "gsub")
	if err != nil {
		return nil, err
	}
	repl := arg(args, 2)
	limit, err := optInt(args, 3, "gsub", -1)
	if err != nil {
		return nil, err
	}
	p, err := compilePattern(pat)
	if err != nil {
		return nil, vm.AsFault(err)
	}

	var b strings.Builder
	pos, count := 0, int64(0)
	for pos <= len(s) && (limit < 0 || count < limit) {
		loc := p.re.FindStringSubmatchIndex(s[pos:])
		if loc == nil {
			break
		}
		whole := s[pos+loc[0] : pos+loc[1]]
		caps := captureValues(s[pos:], loc)

		b.WriteString(s[pos : pos+loc[0]])
		rep, err := gsubReplacement(rt, repl, whole, caps)
		if err != nil {
			return nil, err
		}
		b.WriteString(rep)
		count++

		if loc[1] > loc[0] {
			pos += loc[1]
		} else {
			if pos+loc[1] < len(s) {
				b.WriteByte(s[pos+loc[1]])
			}
			pos += loc[1] + 1
		}

		// An anchored pattern matches at the start of the subject only.
		if p.anchored {
			break
		}
	}
	if pos < len(s) {
		b.WriteString(s[pos:])
	}
	return []vm.Value{vm.StringValue(b.String()), vm.IntValue(count)}, nil
}

// gsubReplacement resolves one match's replacement: a template string
// with %0..%9 references, a capture-keyed table, or a function over the
// captures. Nil and false results keep the original match.
func gsubReplacement(rt vm.Runtime, repl vm.Value, whole string, caps []vm.Value) (string, error) {
	keep := func(v vm.Value) (string, error) {
		if !vm.Truthy(v) {
			return whole, nil
		}
		switch r := v.(type) {
		case vm.StringValue:
			return string(r), nil
		case vm.IntValue, vm.FloatValue:
			return vm.ToString(r), nil
		default:
			return "", vm.RuntimeFault("invalid replacement value (a %s)", v.TypeName())
		}
	}

	switch r := repl.(type) {
	case vm.StringValue:
		var b strings.Builder
		t := string(r)
		for i := 0; i < len(t); i++ {
			if t[i] != '%' || i+1 >= len(t) {
				b.WriteByte(t[i])
				continue
			}
			i++
			switch c := t[i]; {
			case c == '%':
				b.WriteByte('%')
			case c == '0':
				b.WriteString(whole)
			case c >= '1' && c <= '9':
				idx := int(c - '1')
				if idx >= len(caps) {
					return "", vm.RuntimeFault("invalid capture index %%%c in replacement string", c)
				}
				b.WriteString(vm.ToString(caps[idx]))
			default:
				b.WriteByte(c)
			}
		}
		return b.String(), nil

	case *vm.Table:
		return keep(r.Get(caps[0]))

	default:
		res, err := rt.Call(repl, caps)
		if err != nil {
			return "", err
		}
		if len(res) == 0 {
			return whole, nil
		}
		return keep(res[0])
	}
}
