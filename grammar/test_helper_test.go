package grammar

import (
	"strings"
	"testing"

	"github.com/hioki9/partab/grammar/symbol"
	"github.com/hioki9/partab/spec"
)

func genGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := &GrammarBuilder{
		AST: ast,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return gram
}

type testSymbolGenerator func(text string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, symTab *symbol.SymbolTableReader) testSymbolGenerator {
	return func(text string) symbol.Symbol {
		t.Helper()

		sym, ok := symTab.ToSymbol(text)
		if !ok {
			t.Fatalf("symbol was not found: %v", text)
		}
		return sym
	}
}

type testProductionGenerator func(lhs string, rhs ...string) *production

func newTestProductionGenerator(t *testing.T, genSym testSymbolGenerator) testProductionGenerator {
	return func(lhs string, rhs ...string) *production {
		t.Helper()

		rhsSym := []symbol.Symbol{}
		for _, text := range rhs {
			rhsSym = append(rhsSym, genSym(text))
		}
		prod, err := newProduction(genSym(lhs), rhsSym)
		if err != nil {
			t.Fatalf("failed to create a production: %v", err)
		}

		return prod
	}
}

// findProduction resolves a production by its textual shape.
func findProduction(t *testing.T, gram *Grammar, lhs string, rhs ...string) ProductionNum {
	t.Helper()

	genSym := newTestSymbolGenerator(t, gram.SymbolTable())
	genProd := newTestProductionGenerator(t, genSym)
	want := genProd(lhs, rhs...)
	prod, ok := gram.productionSet.findByID(want.id)
	if !ok {
		t.Fatalf("production was not found: %v -> %v", lhs, strings.Join(rhs, " "))
	}
	return prod.num
}
