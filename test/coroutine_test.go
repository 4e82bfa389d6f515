package test

import (
	"testing"

	lua "github.com/Golto/Lua-interpreter"
	"github.com/Golto/Lua-interpreter/vm"
)

// TestCoroutineYieldResumeLifecycle walks the full lifecycle: yields 1
// and 2, returns 3, then refuses a fourth resume
func TestCoroutineYieldResumeLifecycle(t *testing.T) {
	in := run(t, `
local co = coroutine.create(function(a)
    local b = coroutine.yield(a + 1)
    local c = coroutine.yield(b + 1)
    return c + 1
end)

ok1, v1 = coroutine.resume(co, 0)
s1 = coroutine.status(co)
ok2, v2 = coroutine.resume(co, 10)
ok3, v3 = coroutine.resume(co, 100)
s3 = coroutine.status(co)
ok4, err4 = coroutine.resume(co)
`)
	checks := []struct {
		name     string
		expected vm.Value
	}{
		{"ok1", vm.True},
		{"v1", vm.IntValue(1)},
		{"s1", vm.StringValue("suspended")},
		{"ok2", vm.True},
		{"v2", vm.IntValue(11)},
		{"ok3", vm.True},
		{"v3", vm.IntValue(101)},
		{"s3", vm.StringValue("dead")},
		{"ok4", vm.False},
		{"err4", vm.StringValue("cannot resume dead coroutine")},
	}
	for _, c := range checks {
		if got := global(t, in, c.name); got != c.expected {
			t.Errorf("%s: expected %v, got %v", c.name, vm.ToString(c.expected), vm.ToString(got))
		}
	}
}

// TestCoroutinePreservesCallStack yields from inside nested calls and a
// loop, so resumption continues mid-expression
func TestCoroutinePreservesCallStack(t *testing.T) {
	in := run(t, `
local function emit(n)
    for i = 1, n do
        coroutine.yield(i * 10)
    end
    return "done"
end

local co = coroutine.create(function()
    return emit(3)
end)

out = {}
repeat
    local ok, v = coroutine.resume(co)
    out[#out + 1] = v
until coroutine.status(co) == "dead"
joined = table.concat(out, ",", 1, 3) .. ";" .. tostring(out[4])
`)
	if got := global(t, in, "joined"); got != vm.StringValue("10,20,30;done") {
		t.Errorf("Unexpected sequence: %v", vm.ToString(got))
	}
}

func TestCoroutineErrorKillsIt(t *testing.T) {
	in := run(t, `
local co = coroutine.create(function()
    error("inside")
end)
ok, msg = coroutine.resume(co)
stat = coroutine.status(co)
`)
	if got := global(t, in, "ok"); got != vm.False {
		t.Errorf("Expected resume to report failure")
	}
	if got := global(t, in, "stat"); got != vm.StringValue("dead") {
		t.Errorf("Expected coroutine to be dead, got %v", vm.ToString(got))
	}
}

func TestYieldOutsideCoroutineFaults(t *testing.T) {
	in := lua.New()
	if _, ok := in.Exec(`coroutine.yield(1)`); ok {
		t.Fatalf("Expected a fault yielding outside a coroutine")
	}
}

func TestCoroutineWrap(t *testing.T) {
	in := run(t, `
local gen = coroutine.wrap(function()
    coroutine.yield("a")
    coroutine.yield("b")
end)
result = gen() .. gen()
`)
	if got := global(t, in, "result"); got != vm.StringValue("ab") {
		t.Errorf("Expected 'ab', got %v", vm.ToString(got))
	}
}

func TestNestedCoroutines(t *testing.T) {
	in := run(t, `
local inner = coroutine.create(function()
    coroutine.yield("inner value")
end)

local outer = coroutine.create(function()
    local ok, v = coroutine.resume(inner)
    coroutine.yield(v)
end)

ok, got = coroutine.resume(outer)
`)
	if got := global(t, in, "got"); got != vm.StringValue("inner value") {
		t.Errorf("Expected value from the inner coroutine, got %v", vm.ToString(got))
	}
}

// TestManySuspendedCoroutines parks hundreds of coroutines mid-yield.
// Each one keeps its own call-depth budget, so later resumes must not
// hit the recursion guard.
func TestManySuspendedCoroutines(t *testing.T) {
	in := run(t, `
parked = {}
for i = 1, 300 do
    local co = coroutine.create(function()
        coroutine.yield(i)
    end)
    local ok, v = coroutine.resume(co)
    if not ok then
        error("resume " .. i .. " failed: " .. tostring(v))
    end
    parked[i] = co
end
count = #parked
lastStatus = coroutine.status(parked[300])
`)
	if got := global(t, in, "count"); got != vm.IntValue(300) {
		t.Fatalf("Expected 300 suspended coroutines, got %v", vm.ToString(got))
	}
	if got := global(t, in, "lastStatus"); got != vm.StringValue("suspended") {
		t.Errorf("Expected the parked coroutine to stay suspended, got %v", vm.ToString(got))
	}
}

func TestRunningAndIsYieldable(t *testing.T) {
	in := run(t, `
outside = coroutine.isyieldable()
local co = coroutine.create(function()
    inside = coroutine.isyieldable()
end)
coroutine.resume(co)
`)
	if got := global(t, in, "outside"); got != vm.False {
		t.Errorf("Expected isyieldable to be false on the main flow")
	}
	if got := global(t, in, "inside"); got != vm.True {
		t.Errorf("Expected isyieldable to be true inside a coroutine")
	}
}
