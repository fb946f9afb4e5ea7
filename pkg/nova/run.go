package nova

import (
	"io"
	"os"
)

const VERSION = "0.1"

// Bindings are values the host places in the global frame before a
// program runs. Host functions are *NativeFunctionValue entries.
type Bindings map[string]Value

// Host is everything a program can observe outside itself.
type Host struct {
	// Out receives print output; nil means standard output.
	Out      io.Writer
	Bindings Bindings
	// Disable names built-in host functions that should not be registered.
	Disable []string
}

// NewGlobals builds a global frame seeded with the runtime functions and
// the host's bindings. Bindings win over built-ins of the same name.
func NewGlobals(host Host) *Environment {
	out := host.Out
	if out == nil {
		out = os.Stdout
	}
	globals := NewEnvironment()
	InjectRuntime(globals, out, host.Disable...)
	for name, value := range host.Bindings {
		globals.Define(name, value)
	}
	return globals
}

func ReadProgram(filename string) (string, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RunProgram parses source in full before running any of it, then executes
// it against a fresh global frame. The frame is returned so callers can
// inspect the program's top level bindings.
func RunProgram(filename string, source string, host Host) (*Environment, error) {
	program, err := GenerateAST(filename, source)
	if err != nil {
		return nil, err
	}
	globals := NewGlobals(host)
	if err := Interpret(program, globals); err != nil {
		return globals, err
	}
	return globals, nil
}
