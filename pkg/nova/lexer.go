package nova

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

type TokenKind int

const (
	NumberToken TokenKind = iota
	StringToken
	BooleanToken
	IdentifierToken
	KeywordToken
	OperatorToken
	EOFToken
)

func (kind TokenKind) String() string {
	switch kind {
	case NumberToken:
		return "number"
	case StringToken:
		return "string"
	case BooleanToken:
		return "boolean"
	case IdentifierToken:
		return "identifier"
	case KeywordToken:
		return "keyword"
	case OperatorToken:
		return "operator"
	}
	return "EOF"
}

// Token is a lexical unit. Value holds the literal text for keywords,
// operators and identifiers, the unescaped contents for strings, and the
// source digits for numbers (Number holds the parsed value).
type Token struct {
	Kind   TokenKind
	Value  string
	Number float64
	Pos    lexer.Position
}

func (token Token) String() string {
	switch token.Kind {
	case EOFToken:
		return "EOF"
	case StringToken:
		return strconv.Quote(token.Value)
	}
	return token.Value
}

var keywords = map[string]bool{
	"var": true, "if": true, "else": true, "end": true, "jmp": true,
	"func": true, "label": true, "return": true, "def": true, "import": true,
	"while": true, "forEach": true, "for": true, "do": true, "in": true,
	"try": true, "errored": true,
}

var (
	lex = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "comment", Pattern: `//[^\n]*|/\*(?s:.*?)(?:\*/|$)`},
		{Name: "whitespace", Pattern: `\s+`},

		{Name: "Logic", Pattern: `&&|\|\|`},
		{Name: "Number", Pattern: `[0-9][0-9.]*`},
		{Name: "String", Pattern: `"(?:\\(?s:.)|[^"\\])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		{Name: "Operator", Pattern: `[=!<>]=|[=!<>.#+\-*/(),{}\[\]:]`},
	})
	symbols = lexer.SymbolsByRune(lex)
)

// Tokenize converts source into tokens, ending with a single EOF token.
func Tokenize(filename string, source string) ([]Token, error) {
	l, err := lex.LexString(filename, source)
	if err != nil {
		return nil, err
	}
	tokens := make([]Token, 0, len(source)/4)
	for {
		raw, err := l.Next()
		if err != nil {
			var lexErr *lexer.Error
			if errors.As(err, &lexErr) {
				char, _ := utf8.DecodeRuneInString(source[lexErr.Pos.Offset:])
				return nil, &LexError{Char: char, Pos: lexErr.Pos}
			}
			return nil, err
		}
		if raw.EOF() {
			return append(tokens, Token{Kind: EOFToken, Pos: raw.Pos}), nil
		}
		token, err := classify(raw)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
}

func classify(raw lexer.Token) (Token, error) {
	token := Token{Value: raw.Value, Pos: raw.Pos}
	switch symbols[raw.Type] {
	case "Number":
		// Only a single decimal point is accepted
		if first := strings.IndexByte(raw.Value, '.'); first >= 0 {
			if second := strings.IndexByte(raw.Value[first+1:], '.'); second >= 0 {
				pos := raw.Pos
				pos.Advance(raw.Value[:first+1+second])
				return Token{}, &LexError{Char: '.', Pos: pos,
					Msg: "malformed number literal " + strconv.Quote(raw.Value)}
			}
		}
		n, err := strconv.ParseFloat(raw.Value, 64)
		if err != nil {
			return Token{}, &LexError{Char: rune(raw.Value[0]), Pos: raw.Pos,
				Msg: "malformed number literal " + strconv.Quote(raw.Value)}
		}
		token.Kind = NumberToken
		token.Number = n
	case "String":
		token.Kind = StringToken
		token.Value = unescape(raw.Value[1 : len(raw.Value)-1])
	case "Ident":
		if raw.Value == "true" || raw.Value == "false" {
			token.Kind = BooleanToken
		} else if keywords[raw.Value] {
			token.Kind = KeywordToken
		} else {
			token.Kind = IdentifierToken
		}
	default:
		token.Kind = OperatorToken
	}
	return token, nil
}

// A backslash makes the next character literal; there are no escape codes.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		sb.WriteRune(r)
	}
	return sb.String()
}
