//go:build js && wasm

package main

import (
	"bytes"
	"syscall/js"

	"github.com/healeycodes/nova/pkg/nova"
)

func main() {
	c := make(chan struct{}, 0)
	js.Global().Set("nova", js.FuncOf(run))
	<-c
}

// run executes a script and returns everything it printed. Errors are
// appended to the output rather than exiting the page's runtime.
func run(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: nova(source) takes a single argument"
	}
	var out bytes.Buffer
	_, err := nova.RunProgram("web", args[0].String(), nova.Host{Out: &out})
	if err != nil {
		out.WriteString("uncaught error: " + err.Error() + "\n")
	}
	return js.ValueOf(out.String())
}
