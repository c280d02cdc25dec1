package symbol

import "testing"

func TestSymbol(t *testing.T) {
	tab := NewSymbolTable()
	w := tab.Writer()
	_, _ = w.RegisterStartSymbol("expr'")
	_, _ = w.RegisterNonTerminalSymbol("expr")
	_, _ = w.RegisterNonTerminalSymbol("term")
	_, _ = w.RegisterNonTerminalSymbol("factor")
	_, _ = w.RegisterTerminalSymbol("id")
	_, _ = w.RegisterTerminalSymbol("add")
	_, _ = w.RegisterTerminalSymbol("mul")
	_, _ = w.RegisterTerminalSymbol("l_paren")
	_, _ = w.RegisterTerminalSymbol("r_paren")

	nonTermTexts := []string{
		"", // Nil
		"expr'",
		"expr",
		"term",
		"factor",
	}

	termTexts := []string{
		"",                  // Nil
		SymbolNameEndMarker, // End marker
		"id",
		"add",
		"mul",
		"l_paren",
		"r_paren",
	}

	tests := []struct {
		text          string
		isNil         bool
		isStart       bool
		isEndMarker   bool
		isNonTerminal bool
		isTerminal    bool
	}{
		{
			text:          "expr'",
			isStart:       true,
			isNonTerminal: true,
		},
		{
			text:          "expr",
			isNonTerminal: true,
		},
		{
			text:          "term",
			isNonTerminal: true,
		},
		{
			text:          "factor",
			isNonTerminal: true,
		},
		{
			text:        SymbolNameEndMarker,
			isEndMarker: true,
			isTerminal:  true,
		},
		{
			text:       "id",
			isTerminal: true,
		},
		{
			text:       "add",
			isTerminal: true,
		},
		{
			text:       "mul",
			isTerminal: true,
		},
		{
			text:       "l_paren",
			isTerminal: true,
		},
		{
			text:       "r_paren",
			isTerminal: true,
		},
	}
	r := tab.Reader()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			sym, ok := r.ToSymbol(tt.text)
			if !ok {
				t.Fatalf("symbol was not found: %v", tt.text)
			}
			testSymbolProperty(t, sym, tt.isNil, tt.isStart, tt.isEndMarker, tt.isNonTerminal, tt.isTerminal)
			text, ok := r.ToText(sym)
			if !ok {
				t.Fatalf("text was not found: %v", sym)
			}
			if text != tt.text {
				t.Fatalf("unexpected text; want: %v, got: %v", tt.text, text)
			}
		})
	}

	t.Run("nil symbol", func(t *testing.T) {
		testSymbolProperty(t, SymbolNil, true, false, false, false, false)
	})

	t.Run("texts", func(t *testing.T) {
		nonTerms, err := r.NonTerminalTexts()
		if err != nil {
			t.Fatal(err)
		}
		if len(nonTerms) != len(nonTermTexts) {
			t.Fatalf("unexpected non-terminal count; want: %v, got: %v", len(nonTermTexts), len(nonTerms))
		}
		for i, text := range nonTerms {
			if text != nonTermTexts[i] {
				t.Fatalf("unexpected non-terminal text; want: %v, got: %v", nonTermTexts[i], text)
			}
		}

		terms, err := r.TerminalTexts()
		if err != nil {
			t.Fatal(err)
		}
		if len(terms) != len(termTexts) {
			t.Fatalf("unexpected terminal count; want: %v, got: %v", len(termTexts), len(terms))
		}
		for i, text := range terms {
			if text != termTexts[i] {
				t.Fatalf("unexpected terminal text; want: %v, got: %v", termTexts[i], text)
			}
		}
	})

	t.Run("counts", func(t *testing.T) {
		if r.TerminalCount() != len(termTexts) {
			t.Fatalf("unexpected terminal count; want: %v, got: %v", len(termTexts), r.TerminalCount())
		}
		if r.NonTerminalCount() != len(nonTermTexts) {
			t.Fatalf("unexpected non-terminal count; want: %v, got: %v", len(nonTermTexts), r.NonTerminalCount())
		}
	})
}

func testSymbolProperty(t *testing.T, sym Symbol, isNil, isStart, isEndMarker, isNonTerminal, isTerminal bool) {
	t.Helper()

	if sym.IsNil() != isNil {
		t.Fatalf("unexpected IsNil; want: %v, got: %v", isNil, sym.IsNil())
	}
	if sym.IsStart() != isStart {
		t.Fatalf("unexpected IsStart; want: %v, got: %v", isStart, sym.IsStart())
	}
	if sym.IsEndMarker() != isEndMarker {
		t.Fatalf("unexpected IsEndMarker; want: %v, got: %v", isEndMarker, sym.IsEndMarker())
	}
	if sym.IsNonTerminal() != isNonTerminal {
		t.Fatalf("unexpected IsNonTerminal; want: %v, got: %v", isNonTerminal, sym.IsNonTerminal())
	}
	if sym.IsTerminal() != isTerminal {
		t.Fatalf("unexpected IsTerminal; want: %v, got: %v", isTerminal, sym.IsTerminal())
	}
}
