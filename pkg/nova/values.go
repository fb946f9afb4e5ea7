package nova

import (
	"math"
	"strconv"
	"strings"
)

// Language value
// ranging from numbers and strings to objects, arrays, and functions.
// Numbers, strings and booleans compare by value; everything else by
// reference.
type Value interface {
	String() string
	Equals(Value) bool
}

type UndefinedValue struct{}

func (undefinedValue UndefinedValue) String() string {
	return "undefined"
}

func (undefinedValue UndefinedValue) Equals(other Value) bool {
	_, ok := other.(UndefinedValue)
	return ok
}

type NumberValue struct {
	Val float64
}

func (numberValue NumberValue) String() string {
	return nToS(numberValue.Val)
}

func (numberValue NumberValue) Equals(other Value) bool {
	if otherNum, ok := other.(NumberValue); ok {
		return numberValue.Val == otherNum.Val
	}
	return false
}

func nToS(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case math.IsNaN(n):
		return "NaN"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

type StringValue struct {
	Val string
}

func (stringValue StringValue) String() string {
	return stringValue.Val
}

func (stringValue StringValue) Equals(other Value) bool {
	if otherStr, ok := other.(StringValue); ok {
		return stringValue.Val == otherStr.Val
	}
	return false
}

type BoolValue struct {
	Val bool
}

func (boolValue BoolValue) String() string {
	if boolValue.Val {
		return "true"
	}
	return "false"
}

func (boolValue BoolValue) Equals(other Value) bool {
	if otherBool, ok := other.(BoolValue); ok {
		return boolValue.Val == otherBool.Val
	}
	return false
}

type ArrayValue struct {
	Items []Value
}

func NewArray(items ...Value) *ArrayValue {
	return &ArrayValue{Items: append([]Value{}, items...)}
}

func (arrayValue *ArrayValue) String() string {
	return inspect(arrayValue)
}

func (arrayValue *ArrayValue) Equals(other Value) bool {
	otherArray, ok := other.(*ArrayValue)
	return ok && otherArray == arrayValue
}

func (arrayValue *ArrayValue) Append(value Value) {
	arrayValue.Items = append(arrayValue.Items, value)
}

// ObjectValue is an insertion-ordered mapping from key to value.
type ObjectValue struct {
	keys    []string
	entries map[string]Value
}

func NewObject() *ObjectValue {
	return &ObjectValue{entries: make(map[string]Value)}
}

func (objectValue *ObjectValue) Get(key string) (Value, bool) {
	value, ok := objectValue.entries[key]
	return value, ok
}

// Set overwrites an existing key in place or appends a new one.
func (objectValue *ObjectValue) Set(key string, value Value) {
	if _, ok := objectValue.entries[key]; !ok {
		objectValue.keys = append(objectValue.keys, key)
	}
	objectValue.entries[key] = value
}

func (objectValue *ObjectValue) Delete(key string) {
	if _, ok := objectValue.entries[key]; !ok {
		return
	}
	delete(objectValue.entries, key)
	for i, k := range objectValue.keys {
		if k == key {
			objectValue.keys = append(objectValue.keys[:i], objectValue.keys[i+1:]...)
			break
		}
	}
}

func (objectValue *ObjectValue) Keys() []string {
	return append([]string{}, objectValue.keys...)
}

func (objectValue *ObjectValue) Len() int {
	return len(objectValue.keys)
}

func (objectValue *ObjectValue) String() string {
	return inspect(objectValue)
}

func (objectValue *ObjectValue) Equals(other Value) bool {
	otherObject, ok := other.(*ObjectValue)
	return ok && otherObject == objectValue
}

// Callable is implemented by script functions and host functions.
type Callable interface {
	Value
	Call(args []Value) (Value, error)
}

// FunctionValue is a closure over its declaration and the frame it was
// declared in.
type FunctionValue struct {
	decl  *FuncDecl
	frame *Environment
}

func (functionValue *FunctionValue) String() string {
	params := make([]string, len(functionValue.decl.Params))
	for i, param := range functionValue.decl.Params {
		params[i] = param.Name
	}
	return "function " + functionValue.decl.Name + "(" + strings.Join(params, ", ") + ")"
}

func (functionValue *FunctionValue) Equals(other Value) bool {
	otherFunction, ok := other.(*FunctionValue)
	return ok && otherFunction == functionValue
}

// NativeFunctionValue is a function supplied by the host.
type NativeFunctionValue struct {
	Name string
	Exec func(args []Value) (Value, error)
}

func NewNativeFunction(name string, exec func(args []Value) (Value, error)) *NativeFunctionValue {
	return &NativeFunctionValue{Name: name, Exec: exec}
}

func (nativeFunctionValue *NativeFunctionValue) String() string {
	return "function " + nativeFunctionValue.Name + "() [native]"
}

func (nativeFunctionValue *NativeFunctionValue) Equals(other Value) bool {
	otherNative, ok := other.(*NativeFunctionValue)
	return ok && otherNative == nativeFunctionValue
}

func (nativeFunctionValue *NativeFunctionValue) Call(args []Value) (Value, error) {
	value, err := nativeFunctionValue.Exec(args)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return UndefinedValue{}, nil
	}
	return value, nil
}

// TypeOf names the runtime type of a value.
func TypeOf(value Value) string {
	switch value.(type) {
	case NumberValue:
		return "number"
	case StringValue:
		return "string"
	case BoolValue:
		return "boolean"
	case *ObjectValue:
		return "object"
	case *ArrayValue:
		return "array"
	case Callable:
		return "function"
	}
	return "undefined"
}

// Truthy reports whether a value counts as true in a condition.
func Truthy(value Value) bool {
	switch v := value.(type) {
	case BoolValue:
		return v.Val
	case NumberValue:
		return v.Val != 0 && !math.IsNaN(v.Val)
	case StringValue:
		return v.Val != ""
	case UndefinedValue, nil:
		return false
	}
	return true
}

// inspect renders a value for display; strings nested inside arrays and
// objects are quoted.
func inspect(value Value) string {
	var sb strings.Builder
	writeValue(&sb, value, false, map[Value]bool{})
	return sb.String()
}

func writeValue(sb *strings.Builder, value Value, nested bool, seen map[Value]bool) {
	switch v := value.(type) {
	case StringValue:
		if nested {
			sb.WriteString(strconv.Quote(v.Val))
		} else {
			sb.WriteString(v.Val)
		}
	case *ArrayValue:
		if seen[v] {
			sb.WriteString("[circular]")
			return
		}
		seen[v] = true
		sb.WriteString("[")
		for i, item := range v.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, item, true, seen)
		}
		sb.WriteString("]")
		delete(seen, v)
	case *ObjectValue:
		if seen[v] {
			sb.WriteString("[circular]")
			return
		}
		seen[v] = true
		sb.WriteString("{")
		for i, key := range v.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(key + ": ")
			writeValue(sb, v.entries[key], true, seen)
		}
		sb.WriteString("}")
		delete(seen, v)
	case nil:
		sb.WriteString("undefined")
	default:
		sb.WriteString(v.String())
	}
}
