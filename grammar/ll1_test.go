package grammar

import (
	"testing"
)

const ll1ArithSrc = `
%Terminals: id add mul l_paren r_paren
%NonTerminals: E Et T Tt F
%Start: E
%Productions:
E -> T Et
Et -> add T Et | ε
T -> F Tt
Tt -> mul F Tt | ε
F -> l_paren E r_paren | id
`

func TestGenLL1Table(t *testing.T) {
	gram := genGrammar(t, ll1ArithSrc)
	fst, err := genFirstSet(gram.productionSet, 0)
	if err != nil {
		t.Fatal(err)
	}
	flw, err := genFollowSet(gram.productionSet, fst, 0)
	if err != nil {
		t.Fatal(err)
	}
	tab, err := genLL1Table(gram.SymbolTable(), gram.productionSet, fst, flw)
	if err != nil {
		t.Fatal(err)
	}

	if tab.ConflictCount() != 0 {
		t.Fatalf("the grammar is LL(1) but the table has %v conflict(s)", tab.ConflictCount())
	}

	genSym := newTestSymbolGenerator(t, gram.SymbolTable())
	tests := []struct {
		nonTerm string
		term    string
		lhs     string
		rhs     []string
	}{
		{nonTerm: "E", term: "id", lhs: "E", rhs: []string{"T", "Et"}},
		{nonTerm: "E", term: "l_paren", lhs: "E", rhs: []string{"T", "Et"}},
		{nonTerm: "Et", term: "add", lhs: "Et", rhs: []string{"add", "T", "Et"}},
		// The nullable alternative claims the FOLLOW(Et) cells.
		{nonTerm: "Et", term: "r_paren", lhs: "Et", rhs: []string{}},
		{nonTerm: "Et", term: "$", lhs: "Et", rhs: []string{}},
		{nonTerm: "Tt", term: "add", lhs: "Tt", rhs: []string{}},
		{nonTerm: "F", term: "id", lhs: "F", rhs: []string{"id"}},
	}
	for _, tt := range tests {
		num, ok := tab.Find(genSym(tt.nonTerm).Num(), genSym(tt.term).Num())
		if !ok {
			t.Fatalf("cell [%v, %v] is empty", tt.nonTerm, tt.term)
		}
		want := findProduction(t, gram, tt.lhs, tt.rhs...)
		if num != want {
			t.Fatalf("unexpected cell [%v, %v]; want: #%v, got: #%v", tt.nonTerm, tt.term, want, num)
		}
	}

	// Cells no production claims stay empty.
	if _, ok := tab.Find(genSym("E").Num(), genSym("add").Num()); ok {
		t.Fatalf("cell [E, add] must be empty")
	}
}

func TestGenLL1TableConflict(t *testing.T) {
	// FIRST(A) and FIRST(B) overlap on a, so [S, a] is contested. The
	// earlier-declared alternative keeps the cell.
	gram := genGrammar(t, `
%Terminals: a
%NonTerminals: S A B
%Start: S
%Productions:
S -> A | B
A -> a
B -> a
`)
	fst, err := genFirstSet(gram.productionSet, 0)
	if err != nil {
		t.Fatal(err)
	}
	flw, err := genFollowSet(gram.productionSet, fst, 0)
	if err != nil {
		t.Fatal(err)
	}
	tab, err := genLL1Table(gram.SymbolTable(), gram.productionSet, fst, flw)
	if err != nil {
		t.Fatal(err)
	}

	if tab.ConflictCount() != 1 {
		t.Fatalf("unexpected conflict count; want: %v, got: %v", 1, tab.ConflictCount())
	}

	genSym := newTestSymbolGenerator(t, gram.SymbolTable())
	adopted := findProduction(t, gram, "S", "A")
	rejected := findProduction(t, gram, "S", "B")

	num, ok := tab.Find(genSym("S").Num(), genSym("a").Num())
	if !ok {
		t.Fatalf("cell [S, a] is empty")
	}
	if num != adopted {
		t.Fatalf("unexpected cell [S, a]; want: #%v, got: #%v", adopted, num)
	}

	c := tab.Conflicts[0]
	if c.NonTerminal != genSym("S") || c.Symbol != genSym("a") {
		t.Fatalf("unexpected conflict cell: [%v, %v]", c.NonTerminal, c.Symbol)
	}
	if c.AdoptedProd != adopted || c.RejectedProd != rejected {
		t.Fatalf("unexpected conflict resolution; want: #%v over #%v, got: #%v over #%v", adopted, rejected, c.AdoptedProd, c.RejectedProd)
	}
}
