package nova

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestReadAndRunProgram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.nova")
	source := `// greets the caller
func greet(name = "world")
	return "hello " + name
end
print(greet())
print(greet("nova"))
`
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	read, err := ReadProgram(path)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	globals, err := RunProgram(path, read, Host{Out: &out})
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "hello world\nhello nova\n" {
		t.Errorf("got %q", out.String())
	}
	if _, ok := globals.Get("greet"); !ok {
		t.Error("greet should be bound at the top level")
	}

	if _, err := ReadProgram(filepath.Join(t.TempDir(), "missing.nova")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestInterpretFreshFrame(t *testing.T) {
	program, err := GenerateAST("test", `var x = 1 x = x + 1`)
	if err != nil {
		t.Fatal(err)
	}
	if err := Interpret(program, nil); err != nil {
		t.Fatal(err)
	}
	frame := NewEnvironment()
	if err := Interpret(program, frame); err != nil {
		t.Fatal(err)
	}
	if x, _ := frame.Get("x"); !x.Equals(NumberValue{Val: 2}) {
		t.Errorf("got %v", x)
	}
}
