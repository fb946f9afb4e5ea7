// Package repl reads NovaScript from a stream and runs each complete entry
// against one global frame, so bindings persist for the whole session.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/healeycodes/nova/pkg/nova"
)

const (
	PROMPT       = ">> "
	CONTINUATION = ".. "
)

// Start runs the loop until in is exhausted or the user enters .exit.
// Statements may span lines: input is buffered while the parser reports
// that it ran out of tokens.
func Start(in io.Reader, out io.Writer, host nova.Host) {
	if host.Out == nil {
		host.Out = out
	}
	globals := nova.NewGlobals(host)
	scanner := bufio.NewScanner(in)
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			fmt.Fprint(out, PROMPT)
		} else {
			fmt.Fprint(out, CONTINUATION)
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if buffer.Len() == 0 {
			switch strings.TrimSpace(line) {
			case ".exit":
				return
			case ".env":
				fmt.Fprintln(out, globals.String())
				continue
			case "":
				continue
			}
		}
		buffer.WriteString(line + "\n")

		program, err := nova.GenerateAST("repl", buffer.String())
		if err != nil {
			var parseErr *nova.ParseError
			if errors.As(err, &parseErr) && parseErr.EOF {
				continue
			}
			fmt.Fprintln(out, err)
			buffer.Reset()
			continue
		}
		buffer.Reset()
		eval(out, program, globals)
	}
}

// eval runs an entry, echoing the value of a lone expression.
func eval(out io.Writer, program *nova.Program, globals *nova.Environment) {
	if len(program.Statements) == 1 {
		if statement, ok := program.Statements[0].(*nova.ExprStatement); ok {
			value, err := statement.Expr.Eval(globals)
			if err != nil {
				fmt.Fprintln(out, "uncaught error:", err)
				return
			}
			if _, undefined := value.(nova.UndefinedValue); !undefined {
				fmt.Fprintln(out, value.String())
			}
			return
		}
	}
	if err := nova.Interpret(program, globals); err != nil {
		fmt.Fprintln(out, "uncaught error:", err)
	}
}
