package nova

import (
	"github.com/alecthomas/participle/v2/lexer"
)

type Node struct {
	Pos lexer.Position
}

func (node Node) Position() lexer.Position { return node.Pos }

type Statement interface {
	Position() lexer.Position
	Exec(frame *Environment) (*unwind, error)
}

type Expr interface {
	Position() lexer.Position
	Eval(frame *Environment) (Value, error)
}

type Program struct {
	Statements []Statement
	// Macros declared with `def`, by name. They are recorded but never expanded.
	Macros map[string]*MacroDecl
}

type LabelStatement struct {
	Node
	Name string
}

type VarDecl struct {
	Node
	Name     string
	Type     string
	Modifier string
	Init     Expr
}

type TryStatement struct {
	Node
	Try      []Statement
	ErrorVar string
	Catch    []Statement
}

type ForEachStatement struct {
	Node
	Var  string
	List Expr
	Body []Statement
}

type ForStatement struct {
	Node
	Var   string
	Start Expr
	End   Expr
	Step  Expr
	Body  []Statement
}

type WhileStatement struct {
	Node
	Condition Expr
	Body      []Statement
}

type IfStatement struct {
	Node
	Condition Expr
	Then      []Statement
	Else      []Statement
}

type JmpStatement struct {
	Node
	Target Expr
}

type Param struct {
	Name    string
	Default Expr
}

type FuncDecl struct {
	Node
	Name   string
	Params []*Param
	Body   []Statement
}

type MacroDecl struct {
	Node
	Name   string
	Params []string
	Body   []Statement
}

type ReturnStatement struct {
	Node
	Expr Expr
}

type ImportStatement struct {
	Node
	Path string
}

type ExprStatement struct {
	Node
	Expr Expr
}

// Expressions

type Literal struct {
	Node
	Value Value
}

type ArrayLiteral struct {
	Node
	Elements []Expr
}

type Property struct {
	Key   string
	Value Expr
}

type ObjectLiteral struct {
	Node
	Properties []*Property
}

type Identifier struct {
	Node
	Name string
}

type Call struct {
	Node
	Name string
	Args []Expr
}

type PropertyAccess struct {
	Node
	Object   Expr
	Property string
}

type Assignment struct {
	Node
	Target Expr
	Value  Expr
}

type Binary struct {
	Node
	Op    string
	Left  Expr
	Right Expr
}

type Unary struct {
	Node
	Op    string
	Right Expr
}
