package nova

import (
	"errors"

	"github.com/alecthomas/participle/v2/lexer"
)

// unwind carries a returned value out to the nearest function call. It
// travels beside the error result so that try blocks never see it.
type unwind struct {
	pos   lexer.Position
	value Value
}

// Interpret runs a program against frame, or against a fresh global
// environment when frame is nil. Errors that no try block caught are
// returned to the caller.
func Interpret(program *Program, frame *Environment) error {
	if frame == nil {
		frame = NewEnvironment()
	}
	ret, err := execBlock(frame, program.Statements)
	if err != nil {
		return err
	}
	if ret != nil {
		return runtimeError(ReturnOutsideFunction, ret.pos,
			"return statement used outside of a function, tried to return: %v", inspect(ret.value))
	}
	return nil
}

func execBlock(frame *Environment, statements []Statement) (*unwind, error) {
	for _, statement := range statements {
		ret, err := statement.Exec(frame)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

func (label *LabelStatement) Exec(frame *Environment) (*unwind, error) {
	return nil, nil
}

func (imp *ImportStatement) Exec(frame *Environment) (*unwind, error) {
	return nil, nil
}

func (macro *MacroDecl) Exec(frame *Environment) (*unwind, error) {
	return nil, nil
}

func (jmp *JmpStatement) Exec(frame *Environment) (*unwind, error) {
	// The target is evaluated for its side effects only; there is no jump
	_, err := jmp.Target.Eval(frame)
	return nil, err
}

func (statement *ExprStatement) Exec(frame *Environment) (*unwind, error) {
	_, err := statement.Expr.Eval(frame)
	return nil, err
}

func (decl *VarDecl) Exec(frame *Environment) (*unwind, error) {
	value, err := decl.Init.Eval(frame)
	if err != nil {
		return nil, err
	}
	if decl.Type != "" {
		if err := checkType(decl.Pos, decl.Type, value); err != nil {
			return nil, err
		}
	}
	frame.Define(decl.Name, value)
	return nil, nil
}

func checkType(pos lexer.Position, expected string, value Value) error {
	actual := TypeOf(value)
	// Arrays pass as objects
	if expected == actual || expected == "object" && actual == "array" {
		return nil
	}
	return runtimeError(TypeMismatch, pos, "type mismatch: expected %v, got %v", expected, actual)
}

func (try *TryStatement) Exec(frame *Environment) (*unwind, error) {
	ret, err := execBlock(frame.GetChild(), try.Try)
	if err == nil {
		return ret, nil
	}
	catchFrame := frame.GetChild()
	catchFrame.Define(try.ErrorVar, errorValue(err))
	return execBlock(catchFrame, try.Catch)
}

func (ifStatement *IfStatement) Exec(frame *Environment) (*unwind, error) {
	condition, err := ifStatement.Condition.Eval(frame)
	if err != nil {
		return nil, err
	}
	if Truthy(condition) {
		return execBlock(frame.GetChild(), ifStatement.Then)
	}
	if ifStatement.Else != nil {
		return execBlock(frame.GetChild(), ifStatement.Else)
	}
	return nil, nil
}

func (whileStatement *WhileStatement) Exec(frame *Environment) (*unwind, error) {
	for {
		condition, err := whileStatement.Condition.Eval(frame)
		if err != nil {
			return nil, err
		}
		if !Truthy(condition) {
			return nil, nil
		}
		ret, err := execBlock(frame.GetChild(), whileStatement.Body)
		if err != nil || ret != nil {
			return ret, err
		}
	}
}

func (forStatement *ForStatement) Exec(frame *Environment) (*unwind, error) {
	start, err := evalNumber(frame, forStatement.Start, "start")
	if err != nil {
		return nil, err
	}
	end, err := evalNumber(frame, forStatement.End, "end")
	if err != nil {
		return nil, err
	}
	step := 1.0
	if forStatement.Step != nil {
		step, err = evalNumber(frame, forStatement.Step, "step")
		if err != nil {
			return nil, err
		}
		if step == 0 {
			return nil, runtimeError(InvalidOperand, forStatement.Step.Position(), "for loop step must not be zero")
		}
	}
	for i := start; step > 0 && i <= end || step < 0 && i >= end; i += step {
		loopFrame := frame.GetChild()
		loopFrame.Define(forStatement.Var, NumberValue{Val: i})
		ret, err := execBlock(loopFrame, forStatement.Body)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

func evalNumber(frame *Environment, expr Expr, role string) (float64, error) {
	value, err := expr.Eval(frame)
	if err != nil {
		return 0, err
	}
	if numberValue, ok := value.(NumberValue); ok {
		return numberValue.Val, nil
	}
	return 0, runtimeError(TypeMismatch, expr.Position(),
		"for loop %v should be a number, got: %v", role, TypeOf(value))
}

func (forEach *ForEachStatement) Exec(frame *Environment) (*unwind, error) {
	list, err := forEach.List.Eval(frame)
	if err != nil {
		return nil, err
	}
	arrayValue, ok := list.(*ArrayValue)
	if !ok {
		return nil, runtimeError(NotAnArray, forEach.List.Position(),
			"forEach expects an array, got: %v", TypeOf(list))
	}
	// Items appended by the body are visited too
	for i := 0; i < len(arrayValue.Items); i++ {
		loopFrame := frame.GetChild()
		loopFrame.Define(forEach.Var, arrayValue.Items[i])
		ret, err := execBlock(loopFrame, forEach.Body)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

func (ret *ReturnStatement) Exec(frame *Environment) (*unwind, error) {
	if ret.Expr == nil {
		return &unwind{pos: ret.Pos, value: UndefinedValue{}}, nil
	}
	value, err := ret.Expr.Eval(frame)
	if err != nil {
		return nil, err
	}
	return &unwind{pos: ret.Pos, value: value}, nil
}

func (decl *FuncDecl) Exec(frame *Environment) (*unwind, error) {
	frame.Define(decl.Name, &FunctionValue{decl: decl, frame: frame})
	return nil, nil
}

func (functionValue *FunctionValue) Call(args []Value) (Value, error) {
	callFrame := functionValue.frame.GetChild()
	for i, param := range functionValue.decl.Params {
		var arg Value = UndefinedValue{}
		if i < len(args) {
			arg = args[i]
		}
		if _, absent := arg.(UndefinedValue); absent && param.Default != nil {
			// Defaults see the declaring scope, not the call's
			value, err := param.Default.Eval(functionValue.frame)
			if err != nil {
				return nil, err
			}
			arg = value
		}
		callFrame.Define(param.Name, arg)
	}
	ret, err := execBlock(callFrame, functionValue.decl.Body)
	if err != nil {
		return nil, err
	}
	if ret != nil {
		return ret.value, nil
	}
	return UndefinedValue{}, nil
}

// Expressions

func (literal *Literal) Eval(frame *Environment) (Value, error) {
	return literal.Value, nil
}

func (identifier *Identifier) Eval(frame *Environment) (Value, error) {
	value, ok := frame.Get(identifier.Name)
	if !ok {
		return nil, runtimeError(UnresolvedIdentifier, identifier.Pos, "undefined variable %v", identifier.Name)
	}
	return value, nil
}

func (arrayLiteral *ArrayLiteral) Eval(frame *Environment) (Value, error) {
	items, err := evalExprs(frame, arrayLiteral.Elements)
	if err != nil {
		return nil, err
	}
	return &ArrayValue{Items: items}, nil
}

func (objectLiteral *ObjectLiteral) Eval(frame *Environment) (Value, error) {
	objectValue := NewObject()
	for _, property := range objectLiteral.Properties {
		value, err := property.Value.Eval(frame)
		if err != nil {
			return nil, err
		}
		objectValue.Set(property.Key, value)
	}
	return objectValue, nil
}

func (call *Call) Eval(frame *Environment) (Value, error) {
	value, ok := frame.Get(call.Name)
	if !ok {
		return nil, runtimeError(UnresolvedIdentifier, call.Pos, "undefined variable %v", call.Name)
	}
	function, ok := value.(Callable)
	if !ok {
		return nil, runtimeError(NotCallable, call.Pos, "%v is not a function", call.Name)
	}
	args, err := evalExprs(frame, call.Args)
	if err != nil {
		return nil, err
	}
	if *frame.depth >= MaxCallDepth {
		return nil, runtimeError(StackOverflow, call.Pos,
			"maximum call depth of %v exceeded calling %v", MaxCallDepth, call.Name)
	}
	*frame.depth++
	result, err := function.Call(args)
	*frame.depth--
	if err != nil {
		var runtimeErr *RuntimeError
		var thrown *ThrownError
		if errors.As(err, &runtimeErr) || errors.As(err, &thrown) {
			return nil, err
		}
		return nil, runtimeError(HostError, call.Pos, "%v: %v", call.Name, err)
	}
	return result, nil
}

func (access *PropertyAccess) Eval(frame *Environment) (Value, error) {
	object, err := access.Object.Eval(frame)
	if err != nil {
		return nil, err
	}
	switch v := object.(type) {
	case *ObjectValue:
		if value, ok := v.Get(access.Property); ok {
			return value, nil
		}
	case *ArrayValue:
		if access.Property == "length" {
			return NumberValue{Val: float64(len(v.Items))}, nil
		}
	}
	return UndefinedValue{}, nil
}

func (assignment *Assignment) Eval(frame *Environment) (Value, error) {
	switch target := assignment.Target.(type) {
	case *Identifier:
		value, err := assignment.Value.Eval(frame)
		if err != nil {
			return nil, err
		}
		if !frame.Assign(target.Name, value) {
			return nil, runtimeError(UnresolvedIdentifier, target.Pos,
				"can't assign to undeclared variable: %v", target.Name)
		}
		return value, nil
	case *PropertyAccess:
		object, err := target.Object.Eval(frame)
		if err != nil {
			return nil, err
		}
		value, err := assignment.Value.Eval(frame)
		if err != nil {
			return nil, err
		}
		objectValue, ok := object.(*ObjectValue)
		if !ok {
			return nil, runtimeError(NotAssignable, target.Pos,
				"can't set property %v on %v", target.Property, TypeOf(object))
		}
		objectValue.Set(target.Property, value)
		return value, nil
	}
	return nil, runtimeError(NotAssignable, assignment.Pos, "can only assign to variables and properties")
}

func (unary *Unary) Eval(frame *Environment) (Value, error) {
	value, err := unary.Right.Eval(frame)
	if err != nil {
		return nil, err
	}
	if unary.Op == "!" {
		return BoolValue{Val: !Truthy(value)}, nil
	}
	if numberValue, ok := value.(NumberValue); ok {
		return NumberValue{Val: -numberValue.Val}, nil
	}
	return nil, runtimeError(InvalidOperand, unary.Pos, "expected number after '-', got: %v", TypeOf(value))
}

func (binary *Binary) Eval(frame *Environment) (Value, error) {
	// Both sides are always evaluated, && and || included
	left, err := binary.Left.Eval(frame)
	if err != nil {
		return nil, err
	}
	right, err := binary.Right.Eval(frame)
	if err != nil {
		return nil, err
	}

	switch binary.Op {
	case "&&":
		if !Truthy(left) {
			return left, nil
		}
		return right, nil
	case "||":
		if Truthy(left) {
			return left, nil
		}
		return right, nil
	case "==":
		return BoolValue{Val: left.Equals(right)}, nil
	case "!=":
		return BoolValue{Val: !left.Equals(right)}, nil
	}

	leftStr, okLeftStr := left.(StringValue)
	rightStr, okRightStr := right.(StringValue)
	if binary.Op == "+" && (okLeftStr || okRightStr) {
		return StringValue{Val: left.String() + right.String()}, nil
	}
	if okLeftStr && okRightStr {
		switch binary.Op {
		case "<":
			return BoolValue{Val: leftStr.Val < rightStr.Val}, nil
		case "<=":
			return BoolValue{Val: leftStr.Val <= rightStr.Val}, nil
		case ">":
			return BoolValue{Val: leftStr.Val > rightStr.Val}, nil
		case ">=":
			return BoolValue{Val: leftStr.Val >= rightStr.Val}, nil
		}
	}

	leftNum, okLeft := left.(NumberValue)
	rightNum, okRight := right.(NumberValue)
	if !okLeft || !okRight {
		return nil, runtimeError(InvalidOperand, binary.Pos,
			"'%v' can't be used between %v and %v", binary.Op, TypeOf(left), TypeOf(right))
	}
	switch binary.Op {
	case "+":
		return NumberValue{Val: leftNum.Val + rightNum.Val}, nil
	case "-":
		return NumberValue{Val: leftNum.Val - rightNum.Val}, nil
	case "*":
		return NumberValue{Val: leftNum.Val * rightNum.Val}, nil
	case "/":
		return NumberValue{Val: leftNum.Val / rightNum.Val}, nil
	case "<":
		return BoolValue{Val: leftNum.Val < rightNum.Val}, nil
	case "<=":
		return BoolValue{Val: leftNum.Val <= rightNum.Val}, nil
	case ">":
		return BoolValue{Val: leftNum.Val > rightNum.Val}, nil
	case ">=":
		return BoolValue{Val: leftNum.Val >= rightNum.Val}, nil
	}
	panic("unreachable")
}

func evalExprs(frame *Environment, exprs []Expr) ([]Value, error) {
	ret := make([]Value, 0, len(exprs))
	for _, expr := range exprs {
		result, err := expr.Eval(frame)
		if err != nil {
			return nil, err
		}
		ret = append(ret, result)
	}
	return ret, nil
}
