package nova

var typeNames = map[string]bool{"string": true, "number": true, "boolean": true, "object": true}

type Parser struct {
	tokens  []Token
	current int
}

func NewParser(tokens []Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != EOFToken {
		eof := Token{Kind: EOFToken}
		if len(tokens) > 0 {
			eof.Pos = tokens[len(tokens)-1].Pos
		}
		tokens = append(tokens[:len(tokens):len(tokens)], eof)
	}
	return &Parser{tokens: tokens}
}

// Parse consumes the whole token sequence and returns the program.
func Parse(tokens []Token) (*Program, error) {
	return NewParser(tokens).ParseProgram()
}

// GenerateAST tokenizes and parses source in one step.
func GenerateAST(filename string, source string) (*Program, error) {
	tokens, err := Tokenize(filename, source)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

func (p *Parser) ParseProgram() (*Program, error) {
	program := &Program{Macros: map[string]*MacroDecl{}}
	statements, err := p.parseBlockUntil(program)
	if err != nil {
		return nil, err
	}
	program.Statements = statements
	return program, nil
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) advance() Token {
	token := p.tokens[p.current]
	if token.Kind != EOFToken {
		p.current++
	}
	return token
}

func (p *Parser) atEnd() bool {
	return p.peek().Kind == EOFToken
}

// check reports whether the next token is the keyword or operator value.
func (p *Parser) check(value string) bool {
	token := p.peek()
	return (token.Kind == KeywordToken || token.Kind == OperatorToken) && token.Value == value
}

func (p *Parser) unexpected(expected string) *ParseError {
	token := p.peek()
	if token.Kind == EOFToken {
		return &ParseError{Pos: token.Pos, Expected: expected, Found: "end of input", EOF: true}
	}
	return &ParseError{Pos: token.Pos, Expected: expected, Found: token.Kind.String() + " " + token.String()}
}

func (p *Parser) expect(value string) (Token, error) {
	if !p.check(value) {
		return Token{}, p.unexpected("'" + value + "'")
	}
	return p.advance(), nil
}

func (p *Parser) expectKind(kind TokenKind) (Token, error) {
	if p.peek().Kind != kind {
		return Token{}, p.unexpected(kind.String())
	}
	return p.advance(), nil
}

// parseBlockUntil parses statements until the next token is one of the
// terminators (which is left unconsumed) or the input ends.
func (p *Parser) parseBlockUntil(program *Program, terminators ...string) ([]Statement, error) {
	statements := make([]Statement, 0)
	for !p.atEnd() {
		stop := false
		for _, terminator := range terminators {
			if p.check(terminator) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
		statement, err := p.parseStatement(program)
		if err != nil {
			return nil, err
		}
		statements = append(statements, statement)
	}
	return statements, nil
}

// parseBody parses a block closed by `end` and consumes the `end`.
func (p *Parser) parseBody(program *Program) ([]Statement, error) {
	body, err := p.parseBlockUntil(program, "end")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("end"); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Parser) parseStatement(program *Program) (Statement, error) {
	token := p.peek()
	if token.Kind != KeywordToken {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ExprStatement{Node: Node{Pos: token.Pos}, Expr: expr}, nil
	}
	switch token.Value {
	case "label":
		p.advance()
		name, err := p.expectKind(IdentifierToken)
		if err != nil {
			return nil, err
		}
		return &LabelStatement{Node: Node{Pos: token.Pos}, Name: name.Value}, nil
	case "var":
		return p.parseVar()
	case "try":
		return p.parseTry(program)
	case "forEach":
		return p.parseForEach(program)
	case "for":
		return p.parseFor(program)
	case "while":
		p.advance()
		condition, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBody(program)
		if err != nil {
			return nil, err
		}
		return &WhileStatement{Node: Node{Pos: token.Pos}, Condition: condition, Body: body}, nil
	case "if":
		return p.parseIf(program)
	case "jmp":
		p.advance()
		target, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &JmpStatement{Node: Node{Pos: token.Pos}, Target: target}, nil
	case "func":
		return p.parseFunc(program)
	case "def":
		return p.parseMacro(program)
	case "return":
		p.advance()
		// Keywords never start an expression, so a bare `return` is one
		// followed by a keyword or the end of input
		if next := p.peek(); next.Kind == KeywordToken || next.Kind == EOFToken {
			return &ReturnStatement{Node: Node{Pos: token.Pos}}, nil
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ReturnStatement{Node: Node{Pos: token.Pos}, Expr: expr}, nil
	case "import":
		p.advance()
		path, err := p.expectKind(StringToken)
		if err != nil {
			return nil, err
		}
		return &ImportStatement{Node: Node{Pos: token.Pos}, Path: path.Value}, nil
	}
	return nil, p.unexpected("statement")
}

func (p *Parser) parseVar() (Statement, error) {
	token := p.advance()
	name, err := p.expectKind(IdentifierToken)
	if err != nil {
		return nil, err
	}
	decl := &VarDecl{Node: Node{Pos: token.Pos}, Name: name.Value}
	if next := p.peek(); next.Kind == IdentifierToken && typeNames[next.Value] {
		decl.Type = p.advance().Value
	}
	if p.check("#") {
		p.advance()
		modifier, err := p.expectKind(IdentifierToken)
		if err != nil {
			return nil, err
		}
		decl.Modifier = modifier.Value
	}
	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	decl.Init, err = p.parseExpression()
	if err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseTry(program *Program) (Statement, error) {
	token := p.advance()
	tryBlock, err := p.parseBlockUntil(program, "errored")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("errored"); err != nil {
		return nil, err
	}
	errorVar, err := p.expectKind(IdentifierToken)
	if err != nil {
		return nil, err
	}
	catchBlock, err := p.parseBody(program)
	if err != nil {
		return nil, err
	}
	return &TryStatement{
		Node:     Node{Pos: token.Pos},
		Try:      tryBlock,
		ErrorVar: errorVar.Value,
		Catch:    catchBlock,
	}, nil
}

func (p *Parser) parseForEach(program *Program) (Statement, error) {
	token := p.advance()
	variable, err := p.expectKind(IdentifierToken)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("in"); err != nil {
		return nil, err
	}
	list, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("do"); err != nil {
		return nil, err
	}
	body, err := p.parseBody(program)
	if err != nil {
		return nil, err
	}
	return &ForEachStatement{Node: Node{Pos: token.Pos}, Var: variable.Value, List: list, Body: body}, nil
}

func (p *Parser) parseFor(program *Program) (Statement, error) {
	token := p.advance()
	variable, err := p.expectKind(IdentifierToken)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	statement := &ForStatement{Node: Node{Pos: token.Pos}, Var: variable.Value}
	if statement.Start, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if _, err := p.expect(","); err != nil {
		return nil, err
	}
	if statement.End, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if p.check(",") {
		p.advance()
		if statement.Step, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect("do"); err != nil {
		return nil, err
	}
	if statement.Body, err = p.parseBody(program); err != nil {
		return nil, err
	}
	return statement, nil
}

func (p *Parser) parseIf(program *Program) (Statement, error) {
	token := p.advance()
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	statement := &IfStatement{Node: Node{Pos: token.Pos}, Condition: condition}
	if statement.Then, err = p.parseBlockUntil(program, "else", "end"); err != nil {
		return nil, err
	}
	if p.check("else") {
		p.advance()
		if statement.Else, err = p.parseBlockUntil(program, "end"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect("end"); err != nil {
		return nil, err
	}
	return statement, nil
}

func (p *Parser) parseFunc(program *Program) (Statement, error) {
	token := p.advance()
	name, err := p.expectKind(IdentifierToken)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	decl := &FuncDecl{Node: Node{Pos: token.Pos}, Name: name.Value, Params: []*Param{}}
	if !p.check(")") {
		for {
			paramName, err := p.expectKind(IdentifierToken)
			if err != nil {
				return nil, err
			}
			param := &Param{Name: paramName.Value}
			if p.check("=") {
				p.advance()
				if param.Default, err = p.parseExpression(); err != nil {
					return nil, err
				}
			}
			decl.Params = append(decl.Params, param)
			if !p.check(",") {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	if decl.Body, err = p.parseBody(program); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseMacro(program *Program) (Statement, error) {
	token := p.advance()
	name, err := p.expectKind(IdentifierToken)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	decl := &MacroDecl{Node: Node{Pos: token.Pos}, Name: name.Value, Params: []string{}}
	if !p.check(")") {
		for {
			param, err := p.expectKind(IdentifierToken)
			if err != nil {
				return nil, err
			}
			decl.Params = append(decl.Params, param.Value)
			if !p.check(",") {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	if decl.Body, err = p.parseBody(program); err != nil {
		return nil, err
	}
	program.Macros[decl.Name] = decl
	return decl, nil
}

// Expressions, loosest binding first

func (p *Parser) parseExpression() (Expr, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (Expr, error) {
	expr, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.check("=") {
		token := p.advance()
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &Assignment{Node: Node{Pos: token.Pos}, Target: expr, Value: value}, nil
	}
	return expr, nil
}

// parseBinary parses a left-associative chain of the given operators.
func (p *Parser) parseBinary(next func() (Expr, error), operators ...string) (Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for {
		token := p.peek()
		matched := false
		if token.Kind == OperatorToken {
			for _, op := range operators {
				if token.Value == op {
					matched = true
					break
				}
			}
		}
		if !matched {
			return expr, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &Binary{Node: Node{Pos: token.Pos}, Op: token.Value, Left: expr, Right: right}
	}
}

func (p *Parser) parseLogicalOr() (Expr, error) {
	return p.parseBinary(p.parseLogicalAnd, "||")
}

func (p *Parser) parseLogicalAnd() (Expr, error) {
	return p.parseBinary(p.parseEquality, "&&")
}

func (p *Parser) parseEquality() (Expr, error) {
	return p.parseBinary(p.parseComparison, "==", "!=")
}

func (p *Parser) parseComparison() (Expr, error) {
	return p.parseBinary(p.parseAdditive, "<", "<=", ">", ">=")
}

func (p *Parser) parseAdditive() (Expr, error) {
	return p.parseBinary(p.parseMultiplicative, "+", "-")
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	return p.parseBinary(p.parseUnary, "*", "/")
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.check("-") || p.check("!") {
		token := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Node: Node{Pos: token.Pos}, Op: token.Value, Right: right}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	token := p.peek()
	var expr Expr
	switch {
	case token.Kind == BooleanToken:
		p.advance()
		expr = &Literal{Node: Node{Pos: token.Pos}, Value: BoolValue{Val: token.Value == "true"}}
	case token.Kind == NumberToken:
		p.advance()
		expr = &Literal{Node: Node{Pos: token.Pos}, Value: NumberValue{Val: token.Number}}
	case token.Kind == StringToken:
		p.advance()
		expr = &Literal{Node: Node{Pos: token.Pos}, Value: StringValue{Val: token.Value}}
	case p.check("["):
		p.advance()
		elements, err := p.parseList("]")
		if err != nil {
			return nil, err
		}
		expr = &ArrayLiteral{Node: Node{Pos: token.Pos}, Elements: elements}
	case p.check("{"):
		object, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		expr = object
	case token.Kind == IdentifierToken:
		p.advance()
		if p.check("(") {
			p.advance()
			args, err := p.parseList(")")
			if err != nil {
				return nil, err
			}
			expr = &Call{Node: Node{Pos: token.Pos}, Name: token.Value, Args: args}
		} else {
			expr = &Identifier{Node: Node{Pos: token.Pos}, Name: token.Value}
		}
	case p.check("("):
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		expr = inner
	default:
		return nil, p.unexpected("expression")
	}

	for p.check(".") {
		dot := p.advance()
		property, err := p.expectKind(IdentifierToken)
		if err != nil {
			return nil, err
		}
		expr = &PropertyAccess{Node: Node{Pos: dot.Pos}, Object: expr, Property: property.Value}
	}
	return expr, nil
}

// parseList parses comma separated expressions up to and including closer.
func (p *Parser) parseList(closer string) ([]Expr, error) {
	items := make([]Expr, 0)
	if !p.check(closer) {
		for {
			item, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if !p.check(",") {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(closer); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *Parser) parseObject() (Expr, error) {
	token := p.advance()
	object := &ObjectLiteral{Node: Node{Pos: token.Pos}, Properties: []*Property{}}
	if !p.check("}") {
		for {
			key := p.peek()
			if key.Kind != IdentifierToken && key.Kind != StringToken {
				return nil, p.unexpected("identifier or string as object key")
			}
			p.advance()
			if _, err := p.expect(":"); err != nil {
				return nil, err
			}
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			object.Properties = append(object.Properties, &Property{Key: key.Value, Value: value})
			if !p.check(",") {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return object, nil
}
