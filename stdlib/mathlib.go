package stdlib

import (
	"math"
	"math/rand"

	"github.com/Golto/Lua-interpreter/vm"
)

func MathLib() vm.Library {
	return vm.Library{
		Name: "math",
		Attributes: map[string]vm.Value{
			"pi":         vm.FloatValue(math.Pi),
			"huge":       vm.FloatValue(math.Inf(1)),
			"maxinteger": vm.IntValue(math.MaxInt64),
			"mininteger": vm.IntValue(math.MinInt64),
		},
		Methods: map[string]vm.NativeFunc{
			"abs":        mathAbs,
			"ceil":       mathCeil,
			"floor":      mathFloor,
			"sqrt":       mathFloat1(math.Sqrt),
			"exp":        mathFloat1(math.Exp),
			"log":        mathLog,
			"sin":        mathFloat1(math.Sin),
			"cos":        mathFloat1(math.Cos),
			"tan":        mathFloat1(math.Tan),
			"asin":       mathFloat1(math.Asin),
			"acos":       mathFloat1(math.Acos),
			"atan":       mathAtan,
			"fmod":       mathFmod,
			"modf":       mathModf,
			"tointeger":  mathToInteger,
			"type":       mathType,
			"max":        mathMax,
			"min":        mathMin,
			"random":     mathRandom,
			"randomseed": mathRandomSeed,
		},
	}
}

// mathFloat1 lifts a float function into a native.
func mathFloat1(f func(float64) float64) vm.NativeFunc {
	return func(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
		x, err := wantFloat(args, 0, "math")
		if err != nil {
			return nil, err
		}
		return []vm.Value{vm.FloatValue(f(x))}, nil
	}
}

func mathAbs(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	switch v := arg(args, 0).(type) {
	case vm.IntValue:
		if v < 0 {
			return []vm.Value{vm.IntValue(-v)}, nil
		}
		return []vm.Value{v}, nil
	default:
		x, err := wantFloat(args, 0, "abs")
		if err != nil {
			return nil, err
		}
		return []vm.Value{vm.FloatValue(math.Abs(x))}, nil
	}
}

func mathCeil(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	if v, ok := arg(args, 0).(vm.IntValue); ok {
		return []vm.Value{v}, nil
	}
	x, err := wantFloat(args, 0, "ceil")
	if err != nil {
		return nil, err
	}
	return []vm.Value{vm.IntValue(int64(math.Ceil(x)))}, nil
}

func mathFloor(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	if v, ok := arg(args, 0).(vm.IntValue); ok {
		return []vm.Value{v}, nil
	}
	x, err := wantFloat(args, 0, "floor")
	if err != nil {
		return nil, err
	}
	return []vm.Value{vm.IntValue(int64(math.Floor(x)))}, nil
}

func mathLog(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	x, err := wantFloat(args, 0, "log")
	if err != nil {
		return nil, err
	}
	if len(args) >= 2 {
		base, err := wantFloat(args, 1, "log")
		if err != nil {
			return nil, err
		}
		return []vm.Value{vm.FloatValue(math.Log(x) / math.Log(base))}, nil
	}
	return []vm.Value{vm.FloatValue(math.Log(x))}, nil
}

func mathAtan(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	y, err := wantFloat(args, 0, "atan")
	if err != nil {
		return nil, err
	}
	x := 1.0
	if len(args) >= 2 {
		x, err = wantFloat(args, 1, "atan")
		if err != nil {
			return nil, err
		}
	}
	return []vm.Value{vm.FloatValue(math.Atan2(y, x))}, nil
}

func mathFmod(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	x, err := wantFloat(args, 0, "fmod")
	if err != nil {
		return nil, err
	}
	y, err := wantFloat(args, 1, "fmod")
	if err != nil {
		return nil, err
	}
	return []vm.Value{vm.FloatValue(math.Mod(x, y))}, nil
}

func mathModf(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	x, err := wantFloat(args, 0, "modf")
	if err != nil {
		return nil, err
	}
	i, frac := math.Modf(x)
	return []vm.Value{vm.FloatValue(i), vm.FloatValue(frac)}, nil
}

func mathToInteger(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	if n, ok := vm.ToInt(arg(args, 0)); ok {
		return []vm.Value{vm.IntValue(n)}, nil
	}
	return []vm.Value{vm.Nil}, nil
}

func mathType(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	switch arg(args, 0).(type) {
	case vm.IntValue:
		return []vm.Value{vm.StringValue("integer")}, nil
	case vm.FloatValue:
		return []vm.Value{vm.StringValue("float")}, nil
	default:
		return []vm.Value{vm.Nil}, nil
	}
}

func mathMax(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	return mathExtreme(args, "max", func(a, b float64) bool { return a > b })
}

func mathMin(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	return mathExtreme(args, "min", func(a, b float64) bool { return a < b })
}

func mathExtreme(args []vm.Value, fn string, better func(a, b float64) bool) ([]vm.Value, error) {
	if len(args) == 0 {
		return nil, badArg(1, fn, "number", vm.Nil)
	}
	best := args[0]
	bestF, err := wantFloat(args, 0, fn)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(args); i++ {
		f, err := wantFloat(args, i, fn)
		if err != nil {
			return nil, err
		}
		if better(f, bestF) {
			best, bestF = args[i], f
		}
	}
	return []vm.Value{best}, nil
}

func mathRandom(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	switch len(args) {
	case 0:
		return []vm.Value{vm.FloatValue(rand.Float64())}, nil
	case 1:
		m, err := wantInt(args, 0, "random")
		if err != nil {
			return nil, err
		}
		if m < 1 {
			return nil, badArg(1, "random", "interval is empty", args[0])
		}
		return []vm.Value{vm.IntValue(1 + rand.Int63n(m))}, nil
	default:
		lo, err := wantInt(args, 0, "random")
		if err != nil {
			return nil, err
		}
		hi, err := wantInt(args, 1, "random")
		if err != nil {
			return nil, err
		}
		if lo > hi {
			return nil, badArg(2, "random", "interval is empty", args[1])
		}
		return []vm.Value{vm.IntValue(lo + rand.Int63n(hi-lo+1))}, nil
	}
}

func mathRandomSeed(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	seed, err := wantInt(args, 0, "randomseed")
	if err != nil {
		return nil, err
	}
	rand.Seed(seed)
	return nil, nil
}
