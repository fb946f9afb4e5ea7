package nova

import (
	"errors"
	"strings"
	"testing"
)

func TestTokenizeKinds(t *testing.T) {
	tokens, err := Tokenize("test", `var x number = 39.5 // trailing
if x >= 3 && flag end "a\"b" true`)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		kind  TokenKind
		value string
	}{
		{KeywordToken, "var"},
		{IdentifierToken, "x"},
		{IdentifierToken, "number"},
		{OperatorToken, "="},
		{NumberToken, "39.5"},
		{KeywordToken, "if"},
		{IdentifierToken, "x"},
		{OperatorToken, ">="},
		{NumberToken, "3"},
		{OperatorToken, "&&"},
		{IdentifierToken, "flag"},
		{KeywordToken, "end"},
		{StringToken, `a"b`},
		{BooleanToken, "true"},
		{EOFToken, ""},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i].Kind != w.kind || tokens[i].Value != w.value {
			t.Errorf("token %d: got %v %q, want %v %q", i, tokens[i].Kind, tokens[i].Value, w.kind, w.value)
		}
	}
	if tokens[4].Number != 39.5 {
		t.Errorf("number value: got %v", tokens[4].Number)
	}
	if tokens[5].Pos.Line != 2 || tokens[5].Pos.Column != 1 {
		t.Errorf("position of if: got %v", tokens[5].Pos)
	}
}

func TestTokenizeComments(t *testing.T) {
	tests := []struct {
		source string
		count  int
	}{
		{"", 0},
		{"// only a comment", 0},
		{"/* block\n comment */ x", 1},
		{"x /* unterminated block", 1},
		{"a // b\nc", 2},
	}
	for _, test := range tests {
		tokens, err := Tokenize("test", test.source)
		if err != nil {
			t.Errorf("%q: %v", test.source, err)
			continue
		}
		// Every stream ends with exactly one EOF token
		if got := len(tokens) - 1; got != test.count || tokens[len(tokens)-1].Kind != EOFToken {
			t.Errorf("%q: got %v", test.source, tokens)
		}
	}
}

func TestTokenizeNumbers(t *testing.T) {
	for _, source := range []string{"0", "7", "39", "3.25", "100.5", "0.125"} {
		tokens, err := Tokenize("test", source)
		if err != nil {
			t.Fatal(err)
		}
		if tokens[0].Kind != NumberToken || (NumberValue{Val: tokens[0].Number}).String() != source {
			t.Errorf("%q: got %v %v", source, tokens[0].Kind, tokens[0].Number)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		source string
		char   rune
		column int
	}{
		{"var x = 1.2.3", '.', 12},
		{`print("abc)`, '"', 7},
		{"x = 5 @ 2", '@', 7},
	}
	for _, test := range tests {
		_, err := Tokenize("test", test.source)
		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Errorf("%q: expected a LexError, got %v", test.source, err)
			continue
		}
		if lexErr.Char != test.char || lexErr.Pos.Column != test.column {
			t.Errorf("%q: got %q at column %d, want %q at %d",
				test.source, lexErr.Char, lexErr.Pos.Column, test.char, test.column)
		}
		if !strings.HasPrefix(err.Error(), "test:1:") {
			t.Errorf("%q: error should carry its position, got %v", test.source, err)
		}
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`"a\nb"`, "anb"},
		{`"a\\b"`, `a\b`},
		{`"\t"`, "t"},
		{`"\""`, `"`},
		{`"a` + "\n" + `b"`, "a\nb"},
		{`""`, ""},
	}
	for _, test := range tests {
		tokens, err := Tokenize("test", test.source)
		if err != nil {
			t.Errorf("%v: %v", test.source, err)
			continue
		}
		if tokens[0].Kind != StringToken || tokens[0].Value != test.want {
			t.Errorf("%v: got %v %q, want %q", test.source, tokens[0].Kind, tokens[0].Value, test.want)
		}
	}
}
