package nova

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// A note on function naming
// Use doFunction to avoid polluting the Go namespace with e.g.
// append, len, etc.

// InjectRuntime registers the host functions into the global frame.
// print writes to out; names listed in disable are skipped.
func InjectRuntime(frame *Environment, out io.Writer, disable ...string) {
	natives := []*NativeFunctionValue{
		NewNativeFunction("print", doPrint(out)),
		NewNativeFunction("len", doLen),
		NewNativeFunction("keys", doKeys),
		NewNativeFunction("values", doValues),
		NewNativeFunction("delete", doDelete),
		NewNativeFunction("append", doAppend),
		NewNativeFunction("pop", doPop),
		NewNativeFunction("type", doType),
		NewNativeFunction("str", doStr),
		NewNativeFunction("num", doNum),
		NewNativeFunction("floor", doFloor),
		NewNativeFunction("time", doTime),
		NewNativeFunction("assert", doAssert),
		NewNativeFunction("error", doError),
	}
	skip := make(map[string]bool, len(disable))
	for _, name := range disable {
		skip[name] = true
	}
	for _, native := range natives {
		if !skip[native.Name] {
			setNativeFunc(native.Name, native, frame)
		}
	}
}

func setNativeFunc(key string, nativeFunc *NativeFunctionValue, frame *Environment) {
	frame.Define(key, nativeFunc)
}

func arity(args []Value, wanted int) error {
	if len(args) != wanted {
		return fmt.Errorf("incorrect number of arguments, wanted: %v, got: %v", wanted, len(args))
	}
	return nil
}

func doPrint(out io.Writer) func(args []Value) (Value, error) {
	return func(args []Value) (Value, error) {
		var line string
		if len(args) > 0 {
			if format, ok := args[0].(StringValue); ok {
				s, err := Sprintf(format.Val, args[1:])
				if err != nil {
					return nil, err
				}
				line = s
			} else {
				s := make([]string, len(args))
				for i := range args {
					s[i] = args[i].String()
				}
				line = strings.Join(s, " ")
			}
		}
		_, err := fmt.Fprintln(out, line)
		return UndefinedValue{}, err
	}
}

var placeholder = regexp.MustCompile(`%[sidfo]`)

// Sprintf substitutes %s, %i, %d, %f and %o placeholders left to right.
// Placeholders without a matching argument are left as they are and
// surplus arguments are ignored.
func Sprintf(format string, args []Value) (string, error) {
	if len(args) == 0 {
		return format, nil
	}
	argIndex := 0
	var convErr error
	s := placeholder.ReplaceAllStringFunc(format, func(match string) string {
		if argIndex >= len(args) || convErr != nil {
			return match
		}
		arg := args[argIndex]
		argIndex++
		switch match {
		case "%s":
			return arg.String()
		case "%i", "%d":
			return nToS(parseInteger(arg))
		case "%f":
			return nToS(parseFloat(arg))
		case "%o":
			encoded, err := ToJSON(arg)
			if err != nil {
				convErr = err
				return match
			}
			return encoded
		}
		return match
	})
	return s, convErr
}

var (
	leadingInteger = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloat   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

func parseInteger(value Value) float64 {
	if numberValue, ok := value.(NumberValue); ok {
		if math.IsInf(numberValue.Val, 0) {
			return math.NaN()
		}
		return math.Trunc(numberValue.Val)
	}
	digits := leadingInteger.FindString(strings.TrimSpace(value.String()))
	if digits == "" {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

func parseFloat(value Value) float64 {
	if numberValue, ok := value.(NumberValue); ok {
		return numberValue.Val
	}
	digits := leadingFloat.FindString(strings.TrimSpace(value.String()))
	if digits == "" {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

var errCircular = errors.New("converting circular structure to JSON")

// ToJSON encodes a value as JSON with object keys in insertion order.
// Functions and undefined encode as "undefined" at the top level, are
// skipped inside objects and become null inside arrays.
func ToJSON(value Value) (string, error) {
	var buf bytes.Buffer
	written, err := writeJSON(&buf, value, map[Value]bool{})
	if err != nil {
		return "", err
	}
	if !written {
		return "undefined", nil
	}
	return buf.String(), nil
}

func writeJSON(buf *bytes.Buffer, value Value, seen map[Value]bool) (bool, error) {
	switch v := value.(type) {
	case NumberValue:
		if math.IsInf(v.Val, 0) || math.IsNaN(v.Val) {
			buf.WriteString("null")
		} else {
			buf.WriteString(nToS(v.Val))
		}
	case BoolValue:
		buf.WriteString(v.String())
	case StringValue:
		encoder := json.NewEncoder(buf)
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(v.Val); err != nil {
			return false, err
		}
		// Encode terminates with a newline
		buf.Truncate(buf.Len() - 1)
	case *ArrayValue:
		if seen[v] {
			return false, errCircular
		}
		seen[v] = true
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			written, err := writeJSON(buf, item, seen)
			if err != nil {
				return false, err
			}
			if !written {
				buf.WriteString("null")
			}
		}
		buf.WriteByte(']')
		delete(seen, v)
	case *ObjectValue:
		if seen[v] {
			return false, errCircular
		}
		seen[v] = true
		buf.WriteByte('{')
		first := true
		for _, key := range v.keys {
			mark := buf.Len()
			if !first {
				buf.WriteByte(',')
			}
			if _, err := writeJSON(buf, StringValue{Val: key}, seen); err != nil {
				return false, err
			}
			buf.WriteByte(':')
			written, err := writeJSON(buf, v.entries[key], seen)
			if err != nil {
				return false, err
			}
			if !written {
				buf.Truncate(mark)
				continue
			}
			first = false
		}
		buf.WriteByte('}')
		delete(seen, v)
	default:
		return false, nil
	}
	return true, nil
}

func doLen(args []Value) (Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case StringValue:
		return NumberValue{Val: float64(len([]rune(v.Val)))}, nil
	case *ArrayValue:
		return NumberValue{Val: float64(len(v.Items))}, nil
	case *ObjectValue:
		return NumberValue{Val: float64(v.Len())}, nil
	}
	return nil, fmt.Errorf("the single argument should be a string, array, or object, got: %v", TypeOf(args[0]))
}

func doKeys(args []Value) (Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	if objectValue, ok := args[0].(*ObjectValue); ok {
		arrayValue := NewArray()
		for _, key := range objectValue.keys {
			arrayValue.Append(StringValue{Val: key})
		}
		return arrayValue, nil
	}
	return nil, fmt.Errorf("the single argument should be an object, got: %v", TypeOf(args[0]))
}

func doValues(args []Value) (Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	if objectValue, ok := args[0].(*ObjectValue); ok {
		arrayValue := NewArray()
		for _, key := range objectValue.keys {
			arrayValue.Append(objectValue.entries[key])
		}
		return arrayValue, nil
	}
	return nil, fmt.Errorf("the single argument should be an object, got: %v", TypeOf(args[0]))
}

func doDelete(args []Value) (Value, error) {
	if err := arity(args, 2); err != nil {
		return nil, err
	}
	objectValue, ok := args[0].(*ObjectValue)
	if !ok {
		return nil, fmt.Errorf("1st argument should be an object, got: %v", TypeOf(args[0]))
	}
	key, ok := args[1].(StringValue)
	if !ok {
		return nil, fmt.Errorf("2nd argument should be a string, got: %v", TypeOf(args[1]))
	}
	objectValue.Delete(key.Val)
	return UndefinedValue{}, nil
}

func doAppend(args []Value) (Value, error) {
	if err := arity(args, 2); err != nil {
		return nil, err
	}
	if arrayValue, ok := args[0].(*ArrayValue); ok {
		arrayValue.Append(args[1])
		return arrayValue, nil
	}
	return nil, fmt.Errorf("1st argument should be an array, got: %v", TypeOf(args[0]))
}

func doPop(args []Value) (Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	arrayValue, ok := args[0].(*ArrayValue)
	if !ok {
		return nil, fmt.Errorf("the single argument should be an array, got: %v", TypeOf(args[0]))
	}
	if len(arrayValue.Items) == 0 {
		return nil, fmt.Errorf("called on an empty array")
	}
	last := arrayValue.Items[len(arrayValue.Items)-1]
	arrayValue.Items = arrayValue.Items[:len(arrayValue.Items)-1]
	return last, nil
}

func doType(args []Value) (Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	return StringValue{Val: TypeOf(args[0])}, nil
}

func doStr(args []Value) (Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	return StringValue{Val: args[0].String()}, nil
}

func doNum(args []Value) (Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case NumberValue:
		return v, nil
	case StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Val), 64)
		if err != nil {
			return nil, fmt.Errorf("couldn't convert %q to number", v.Val)
		}
		return NumberValue{Val: f}, nil
	}
	return nil, fmt.Errorf("expects a single argument of type string, got: %v", TypeOf(args[0]))
}

func doFloor(args []Value) (Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	if numberValue, ok := args[0].(NumberValue); ok {
		return NumberValue{Val: math.Floor(numberValue.Val)}, nil
	}
	return nil, fmt.Errorf("expects a single argument of type number, got: %v", TypeOf(args[0]))
}

func doTime(args []Value) (Value, error) {
	if err := arity(args, 0); err != nil {
		return nil, err
	}
	return NumberValue{Val: float64(time.Now().UnixNano() / int64(time.Millisecond))}, nil
}

func doAssert(args []Value) (Value, error) {
	if err := arity(args, 2); err != nil {
		return nil, err
	}
	if !args[0].Equals(args[1]) {
		return nil, fmt.Errorf("assert failed: %v == %v", inspect(args[0]), inspect(args[1]))
	}
	return UndefinedValue{}, nil
}

func doError(args []Value) (Value, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	return nil, Throw(args[0])
}
