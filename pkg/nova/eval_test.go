package nova

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func runScript(t *testing.T, source string) (string, *Environment, error) {
	t.Helper()
	var out bytes.Buffer
	globals, err := RunProgram("test", source, Host{Out: &out})
	return out.String(), globals, err
}

func TestEval(t *testing.T) {
	tests := []struct {
		name   string
		source string
		output string
		err    error
	}{
		{"declaration", `var x = 39 print(x)`, "39\n", nil},
		{"type mismatch", `var y number = "tenis"`, "", ErrTypeMismatch},
		{"typed declaration", `var y number = 40 var s string = "s" var b boolean = false var o object = [] print(y)`, "40\n", nil},
		{"addition", `var x = 39 var y = 40 print(x + y)`, "79\n", nil},
		{"arithmetic", `print(1 + 2 * 3 - 4 / 2)`, "5\n", nil},
		{"division", `print(10 / 4)`, "2.5\n", nil},
		{"division by zero", `print(1 / 0, -1 / 0)`, "Infinity -Infinity\n", nil},
		{"concatenation", `print("a" + 1 + true)`, "a1true\n", nil},
		{"string comparison", `print("b" > "a", "a" >= "b")`, "true false\n", nil},
		{"strict equality", `print(1 == "1", 1 == 1, "a" != "a")`, "false true false\n", nil},
		{"invalid operand", `print(true - 1)`, "", ErrInvalidOperand},
		{"unary", `print(-(3), !0, !"")`, "-3 true true\n", nil},
		{"unary on string", `print(-"a")`, "", ErrInvalidOperand},
		{
			"function scope does not leak",
			`func t() var g = 30 return g end print(t()) print(g)`,
			"30\n", ErrUnresolvedIdentifier,
		},
		{
			"try catches type mismatch",
			`try var y number = "tenis" errored E print(E.kind) end print("after")`,
			"TypeMismatch\nafter\n", nil,
		},
		{
			"try binds message",
			`try missing() errored e print(e.message) end`,
			"undefined variable missing\n", nil,
		},
		{"try without error", `try print("ok") errored e print("caught") end`, "ok\n", nil},
		{
			"for is inclusive and does not leak",
			`for i = 1, 3 do print(i) end print(i)`,
			"1\n2\n3\n", ErrUnresolvedIdentifier,
		},
		{"for with step", `for i = 0, 10, 5 do print(i) end`, "0\n5\n10\n", nil},
		{"for counting down", `for i = 3, 1, -1 do print(i) end`, "3\n2\n1\n", nil},
		{"for with zero step", `for i = 1, 3, 0 do print(i) end`, "", ErrInvalidOperand},
		{"for with string bound", `for i = 1, "3" do print(i) end`, "", ErrTypeMismatch},
		{"for with empty range", `for i = 5, 1 do print(i) end print("done")`, "done\n", nil},
		{"forEach", `forEach v in [1, 2, 3] do print(v) end`, "1\n2\n3\n", nil},
		{"forEach over non-array", `forEach v in 5 do print(v) end`, "", ErrNotAnArray},
		{"forEach does not leak", `forEach v in [1] do end print(v)`, "", ErrUnresolvedIdentifier},
		{"default parameter", `func f(a = 10) return a end print(f())`, "10\n", nil},
		{"default is overridden", `func f(a = 10) return a end print(f(1))`, "1\n", nil},
		{
			"default sees the declaring scope",
			`var base = 1
func f(a = base) return a end
func g() var base = 2 return f() end
print(g())`,
			"1\n", nil,
		},
		{"missing argument is undefined", `func f(a, b) return b end print(f(1))`, "undefined\n", nil},
		{"surplus arguments are ignored", `func f(a) return a end print(f(1, 2))`, "1\n", nil},
		{"function without return", `func f() var a = 1 end print(f())`, "undefined\n", nil},
		{"bare return", `func f() return end print(f())`, "undefined\n", nil},
		{
			"nested property access",
			`var o = {size: {width: 30}} print(o.size.width) print(o.missing) print(o.size.height.deep)`,
			"30\nundefined\nundefined\n", nil,
		},
		{"property on primitive", `var n = 3 print(n.length)`, "undefined\n", nil},
		{"array length", `print([1, 2, 3].length)`, "3\n", nil},
		{"property assignment", `var o = {} o.k = 5 o.k = o.k + 1 print(o.k)`, "6\n", nil},
		{"property assignment on number", `var n = 1 n.k = 2`, "", ErrNotAssignable},
		{"literal assignment", `1 = 2`, "", ErrNotAssignable},
		{"undeclared assignment", `y = 1`, "", ErrUnresolvedIdentifier},
		{"assignment is an expression", `var a = 0 var b = 0 a = b = 4 print(a, b)`, "4 4\n", nil},
		{"not callable", `var x = 1 x()`, "", ErrNotCallable},
		{"undefined function", `nothing()`, "", ErrUnresolvedIdentifier},
		{
			"return passes through try",
			`func f() try return 1 errored e return 2 end return 3 end print(f())`,
			"1\n", nil,
		},
		{
			"return inside loops",
			`func find(list, wanted) forEach v in list do if v == wanted return "found" end end return "missing" end
print("%s %s", find([1, 2], 2), find([1], 3))`,
			"found missing\n", nil,
		},
		{"return outside function", `return 1`, "", ErrReturnOutsideFunction},
		{
			"arrays alias",
			`var a = [1] var b = a append(b, 2) print(len(a)) print(a == b, [1] == [1])`,
			"2\ntrue false\n", nil,
		},
		{
			"logical operators evaluate both sides",
			`var n = 0 func bump() n = n + 1 return true end var r = false && bump() var s = true || bump() print(n, r, s)`,
			"2 false true\n", nil,
		},
		{"logical operators yield an operand", `print(1 && 2, 0 || "fallback", "" && 3)`, "2 fallback \n", nil},
		{
			"closures keep their frame",
			`func counter()
	var c = 0
	func inc() c = c + 1 return c end
	return inc
end
var next = counter()
next()
print(next())`,
			"2\n", nil,
		},
		{
			"recursion",
			`func fib(n) if n < 2 return n end return fib(n - 1) + fib(n - 2) end print(fib(15))`,
			"610\n", nil,
		},
		{
			"unbounded recursion is caught",
			`func f(n) return f(n + 1) end try f(0) errored e print(e.kind) end print("after")`,
			"StackOverflow\nafter\n", nil,
		},
		{"unbounded recursion", `func f() return f() end f()`, "", ErrStackOverflow},
		{
			"call depth recovers after overflow",
			`func f(n) return f(n + 1) end try f(0) errored e end
func g(n) if n == 0 return "done" end return g(n - 1) end
print(g(5000))`,
			"done\n", nil,
		},
		{"while", `var i = 0 while i < 3 i = i + 1 end print(i)`, "3\n", nil},
		{"if else", `if 0 print("yes") else print("no") end`, "no\n", nil},
		{"if scope", `if true var inner = 1 end print(inner)`, "", ErrUnresolvedIdentifier},
		{"thrown value is caught as is", `try error({code: 7}) errored e print(e.code) end`, "7\n", nil},
		{"host error is caught", `try len(1) errored e print(e.kind) end`, "HostError\n", nil},
		{"jmp to an unbound label fails", `label top jmp top`, "", ErrUnresolvedIdentifier},
		{"label jmp import and macros are inert", `import "x" label top def m(a) print(a) end jmp "top" print("end")`, "end\n", nil},
		{"var modifier", `var g #global = 1 print(g)`, "1\n", nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			output, _, err := runScript(t, test.source)
			if test.err == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if test.err != nil && !errors.Is(err, test.err) {
				t.Fatalf("expected %v, got %v", test.err, err)
			}
			if output != test.output {
				t.Errorf("output: got %q, want %q", output, test.output)
			}
		})
	}
}

func TestEvalGlobals(t *testing.T) {
	_, globals, err := runScript(t, `var x = 39 var y = x + 1`)
	if err != nil {
		t.Fatal(err)
	}
	if x, _ := globals.Get("x"); !x.Equals(NumberValue{Val: 39}) {
		t.Errorf("x: got %v", x)
	}
	if y, _ := globals.Get("y"); !y.Equals(NumberValue{Val: 40}) {
		t.Errorf("y: got %v", y)
	}
}

func TestRuntimeErrorPosition(t *testing.T) {
	_, _, err := runScript(t, "var a = 1\nvar b number = \"x\"")
	var runtimeErr *RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("expected a RuntimeError, got %v", err)
	}
	if runtimeErr.Kind != TypeMismatch || runtimeErr.Pos.Line != 2 {
		t.Errorf("got %v at %v", runtimeErr.Kind, runtimeErr.Pos)
	}
	if !strings.HasPrefix(err.Error(), "test:2:1: type mismatch") {
		t.Errorf("got %q", err.Error())
	}
}

func TestUncaughtThrow(t *testing.T) {
	_, _, err := runScript(t, `error("boom")`)
	var thrown *ThrownError
	if !errors.As(err, &thrown) || !thrown.Value.Equals(StringValue{Val: "boom"}) {
		t.Fatalf("expected the thrown value, got %v", err)
	}
}

func TestParseErrorsRunNothing(t *testing.T) {
	output, globals, err := runScript(t, `print("before") var = 1`)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected a ParseError, got %v", err)
	}
	if output != "" || globals != nil {
		t.Errorf("nothing should run when parsing fails, got %q", output)
	}
}
