package grammar

import (
	"sort"

	"github.com/hioki9/partab/grammar/symbol"
)

// LL1Conflict is one contested predictive-table cell. The earlier-declared
// production keeps the cell; later writers are recorded and ignored.
type LL1Conflict struct {
	NonTerminal  symbol.Symbol
	Symbol       symbol.Symbol
	AdoptedProd  ProductionNum
	RejectedProd ProductionNum
}

// LL1Table maps a (non-terminal, lookahead terminal) pair to the production
// to expand. Rows are non-terminal symbol numbers, columns are terminal
// symbol numbers including the end marker.
type LL1Table struct {
	TerminalCount    int
	NonTerminalCount int

	cells []ProductionNum

	Conflicts []*LL1Conflict
}

// Find reports the production to expand a non-terminal by on a lookahead.
func (t *LL1Table) Find(nonTerm symbol.SymbolNum, term symbol.SymbolNum) (ProductionNum, bool) {
	if nonTerm.Int() >= t.NonTerminalCount || term.Int() >= t.TerminalCount {
		return ProductionNumNil, false
	}
	num := t.cells[nonTerm.Int()*t.TerminalCount+term.Int()]
	if num == ProductionNumNil {
		return ProductionNumNil, false
	}
	return num, true
}

func (t *LL1Table) ConflictCount() int {
	return len(t.Conflicts)
}

// genLL1Table fills the predictive table: each production A -> α claims the
// cells [A, t] for t in FIRST(α), plus [A, t] for t in FOLLOW(A) when α is
// nullable. The augmented start production takes no part; predictive parsing
// starts from the user's start symbol directly.
func genLL1Table(symTab *symbol.SymbolTableReader, prods *productionSet, fst *firstSet, flw *followSet) (*LL1Table, error) {
	tab := &LL1Table{
		TerminalCount:    symTab.TerminalCount(),
		NonTerminalCount: symTab.NonTerminalCount(),
	}
	tab.cells = make([]ProductionNum, tab.NonTerminalCount*tab.TerminalCount)

	for num := productionNumMin; num.Int() < prods.count(); num++ {
		prod, ok := prods.findByNum(num)
		if !ok {
			continue
		}

		prodFirst, err := fst.find(prod, 0)
		if err != nil {
			return nil, err
		}

		terms := make([]symbol.Symbol, 0, len(prodFirst.symbols)+1)
		for sym := range prodFirst.symbols {
			terms = append(terms, sym)
		}
		if prodFirst.empty {
			lhsFollow, err := flw.find(prod.lhs)
			if err != nil {
				return nil, err
			}
			for sym := range lhsFollow.symbols {
				terms = append(terms, sym)
			}
			if lhsFollow.eof {
				terms = append(terms, symbol.SymbolEndMarker)
			}
		}
		sort.Slice(terms, func(i, j int) bool {
			return terms[i] < terms[j]
		})

		for _, term := range terms {
			tab.write(prod.lhs, term, num)
		}
	}

	return tab, nil
}

func (t *LL1Table) write(nonTerm symbol.Symbol, term symbol.Symbol, num ProductionNum) {
	pos := nonTerm.Num().Int()*t.TerminalCount + term.Num().Int()
	defined := t.cells[pos]
	if defined == ProductionNumNil {
		t.cells[pos] = num
		return
	}
	if defined == num {
		return
	}
	t.Conflicts = append(t.Conflicts, &LL1Conflict{
		NonTerminal:  nonTerm,
		Symbol:       term,
		AdoptedProd:  defined,
		RejectedProd: num,
	})
}
