package driver

import (
	"fmt"

	"github.com/hioki9/partab/grammar/symbol"
)

// Token is one terminal occurrence. Kind is the terminal name as the grammar
// declares it; Text is the matched lexeme, which may equal Kind for literal
// terminals.
type Token struct {
	Kind string
	Text string
	Row  int
	Col  int
	EOF  bool
}

// TokenStream yields tokens one at a time, ending with a token whose EOF
// flag is set. Streams are single-use.
type TokenStream interface {
	Next() (*Token, error)
}

type textTokenStream struct {
	toks []*Token
	pos  int
}

// NewTextTokenStream wraps a pre-tokenized sequence of terminal names. The
// stream appends the end-of-input token itself.
func NewTextTokenStream(kinds []string) TokenStream {
	toks := make([]*Token, 0, len(kinds)+1)
	for i, kind := range kinds {
		toks = append(toks, &Token{
			Kind: kind,
			Text: kind,
			Col:  i,
		})
	}
	toks = append(toks, &Token{
		Col: len(kinds),
		EOF: true,
	})
	return &textTokenStream{
		toks: toks,
	}
}

func (s *textTokenStream) Next() (*Token, error) {
	if s.pos >= len(s.toks) {
		return s.toks[len(s.toks)-1], nil
	}
	tok := s.toks[s.pos]
	s.pos++
	return tok, nil
}

// tokenToSymbol maps a token onto the grammar's terminal symbol, or the end
// marker for the end-of-input token.
func tokenToSymbol(reader *symbol.SymbolTableReader, tok *Token) (symbol.Symbol, error) {
	if tok.EOF {
		return symbol.SymbolEndMarker, nil
	}
	sym, ok := reader.ToSymbol(tok.Kind)
	if !ok || !sym.IsTerminal() {
		return symbol.SymbolNil, fmt.Errorf("undeclared terminal symbol: %v", tok.Kind)
	}
	return sym, nil
}

func tokenText(tok *Token) string {
	if tok.EOF {
		return symbol.SymbolNameEndMarker
	}
	if tok.Text != "" {
		return tok.Text
	}
	return tok.Kind
}
