package stdlib

import (
	"os"
	"time"

	"github.com/Golto/Lua-interpreter/vm"
)

var processStart = time.Now()

func OSLib() vm.Library {
	return vm.Library{
		Name: "os",
		Methods: map[string]vm.NativeFunc{
			"clock":    osClock,
			"time":     osTime,
			"date":     osDate,
			"difftime": osDifftime,
			"getenv":   osGetenv,
		},
	}
}

func osClock(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	return []vm.Value{vm.FloatValue(time.Since(processStart).Seconds())}, nil
}

func osTime(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	if t, ok := arg(args, 0).(*vm.Table); ok {
		field := func(name string, def int64) int64 {
			if n, ok := vm.ToInt(t.Get(vm.StringValue(name))); ok {
				return n
			}
			return def
		}
		tm := time.Date(
			int(field("year", 1970)), time.Month(field("month", 1)), int(field("day", 1)),
			int(field("hour", 12)), int(field("min", 0)), int(field("sec", 0)),
			0, time.Local,
		)
		return []vm.Value{vm.IntValue(tm.Unix())}, nil
	}
	return []vm.Value{vm.IntValue(time.Now().Unix())}, nil
}

// osDate supports the strftime subset scripts commonly use, plus the
// "*t" broken-down-table form.
func osDate(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	format := "%c"
	if len(args) >= 1 {
		var err error
		format, err = wantString(args, 0, "date")
		if err != nil {
			return nil, err
		}
	}
	when := time.Now()
	if len(args) >= 2 {
		sec, err := wantInt(args, 1, "date")
		if err != nil {
			return nil, err
		}
		when = time.Unix(sec, 0)
	}

	utc := false
	if len(format) > 0 && format[0] == '!' {
		utc = true
		format = format[1:]
	}
	if utc {
		when = when.UTC()
	}

	if format == "*t" {
		t := vm.NewTable()
		t.Set(vm.StringValue("year"), vm.IntValue(int64(when.Year())))
		t.Set(vm.StringValue("month"), vm.IntValue(int64(when.Month())))
		t.Set(vm.StringValue("day"), vm.IntValue(int64(when.Day())))
		t.Set(vm.StringValue("hour"), vm.IntValue(int64(when.Hour())))
		t.Set(vm.StringValue("min"), vm.IntValue(int64(when.Minute())))
		t.Set(vm.StringValue("sec"), vm.IntValue(int64(when.Second())))
		t.Set(vm.StringValue("wday"), vm.IntValue(int64(when.Weekday())+1))
		t.Set(vm.StringValue("yday"), vm.IntValue(int64(when.YearDay())))
		t.Set(vm.StringValue("isdst"), vm.False)
		return []vm.Value{t}, nil
	}

	return []vm.Value{vm.StringValue(strftime(when, format))}, nil
}

func strftime(t time.Time, format string) string {
	out := make([]byte, 0, len(format)*2)
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			out = append(out, format[i])
			continue
		}
		i++
		switch format[i] {
		case 'Y':
			out = t.AppendFormat(out, "2006")
		case 'y':
			out = t.AppendFormat(out, "06")
		case 'm':
			out = t.AppendFormat(out, "01")
		case 'd':
			out = t.AppendFormat(out, "02")
		case 'H':
			out = t.AppendFormat(out, "15")
		case 'M':
			out = t.AppendFormat(out, "04")
		case 'S':
			out = t.AppendFormat(out, "05")
		case 'p':
			out = t.AppendFormat(out, "PM")
		case 'A':
			out = t.AppendFormat(out, "Monday")
		case 'a':
			out = t.AppendFormat(out, "Mon")
		case 'B':
			out = t.AppendFormat(out, "January")
		case 'b':
			out = t.AppendFormat(out, "Jan")
		case 'c':
			out = t.AppendFormat(out, "Mon Jan  2 15:04:05 2006")
		case 'x':
			out = t.AppendFormat(out, "01/02/06")
		case 'X':
			out = t.AppendFormat(out, "15:04:05")
		case '%':
			out = append(out, '%')
		default:
			out = append(out, '%', format[i])
		}
	}
	return string(out)
}

func osDifftime(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t2, err := wantFloat(args, 0, "difftime")
	if err != nil {
		return nil, err
	}
	t1, err := wantFloat(args, 1, "difftime")
	if err != nil {
		return nil, err
	}
	return []vm.Value{vm.FloatValue(t2 - t1)}, nil
}

func osGetenv(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	name, err := wantString(args, 0, "getenv")
	if err != nil {
		return nil, err
	}
	v, ok := os.LookupEnv(name)
	if !ok {
		return []vm.Value{vm.Nil}, nil
	}
	return []vm.Value{vm.StringValue(v)}, nil
}
