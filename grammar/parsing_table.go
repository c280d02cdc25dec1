package grammar

import (
	"fmt"
	"sort"

	"github.com/hioki9/partab/compressor"
	"github.com/hioki9/partab/grammar/symbol"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeAccept = ActionType("accept")
	ActionTypeError  = ActionType("error")
)

// actionEntry is an ACTION table cell packed into one int: a negative value
// is a shift to state -n, a positive value is a reduce by production n, and
// zero is an empty (error) cell. Accept is the reduce by the augmented start
// production, which can only ever fire on the end marker.
type actionEntry int

const actionEntryEmpty = actionEntry(0)

func newShiftActionEntry(state stateNum) actionEntry {
	return actionEntry(state.Int() * -1)
}

func newReduceActionEntry(prod ProductionNum) actionEntry {
	return actionEntry(prod.Int())
}

func (e actionEntry) isEmpty() bool {
	return e == actionEntryEmpty
}

func (e actionEntry) describe() (ActionType, stateNum, ProductionNum) {
	if e == actionEntryEmpty {
		return ActionTypeError, stateNumInitial, ProductionNumNil
	}
	if e < 0 {
		return ActionTypeShift, stateNum(int(e) * -1), ProductionNumNil
	}
	if ProductionNum(e) == ProductionNumStart {
		return ActionTypeAccept, stateNumInitial, ProductionNumStart
	}
	return ActionTypeReduce, stateNumInitial, ProductionNum(e)
}

// goToEntry is a GOTO table cell: zero is empty, anything else is the target
// state number plus one.
type goToEntry uint

const goToEntryEmpty = goToEntry(0)

func newGoToEntry(state stateNum) goToEntry {
	return goToEntry(state.Int() + 1)
}

func (e goToEntry) describe() (stateNum, bool) {
	if e == goToEntryEmpty {
		return stateNumInitial, false
	}
	return stateNum(int(e) - 1), true
}

// ConflictResolution tags how a table conflict was settled.
type ConflictResolution string

const (
	// ResolvedByPrec: the side with the strictly higher declared
	// precedence won. A declared precedence also beats an undeclared one.
	ResolvedByPrec = ConflictResolution("precedence")

	// ResolvedByAssoc: shift and reduce had equal precedence and the
	// terminal's associativity decided. Left adopts the reduce, right
	// adopts the shift, and nonassoc clears the cell so the input is a
	// syntax error.
	ResolvedByAssoc = ConflictResolution("associativity")

	// ResolvedByShift: neither side declared a precedence, so the table
	// defaults to the shift.
	ResolvedByShift = ConflictResolution("shift preference")

	// ResolvedByProdOrder: a reduce/reduce tie fell back to the
	// production declared earlier in the grammar file.
	ResolvedByProdOrder = ConflictResolution("production order")
)

// SRConflict is one shift/reduce collision and how it was settled. When
// neither AdoptedShift nor AdoptedReduce is set, the cell was cleared by a
// nonassoc declaration and the parser reports a syntax error there.
type SRConflict struct {
	State         int
	Symbol        symbol.Symbol
	ShiftState    int
	ReduceProd    ProductionNum
	ResolvedBy    ConflictResolution
	AdoptedShift  bool
	AdoptedReduce bool
}

// RRConflict is one reduce/reduce collision and the production the table
// adopted.
type RRConflict struct {
	State       int
	Symbol      symbol.Symbol
	Prod1       ProductionNum
	Prod2       ProductionNum
	AdoptedProd ProductionNum
	ResolvedBy  ConflictResolution
}

// LRTable is the ACTION/GOTO pair for one construction method. Rows are
// states; ACTION columns are terminal symbol numbers, GOTO columns are
// non-terminal symbol numbers.
type LRTable struct {
	InitialState     int
	StateCount       int
	TerminalCount    int
	NonTerminalCount int

	actionTable []actionEntry
	goToTable   []goToEntry

	SRConflicts []*SRConflict
	RRConflicts []*RRConflict

	automaton *lrAutomaton
}

// Action looks up the ACTION cell for a state and a terminal. The second
// and third results are only meaningful for the shift and reduce types
// respectively.
func (t *LRTable) Action(state int, term symbol.SymbolNum) (ActionType, int, ProductionNum) {
	if state < 0 || state >= t.StateCount || term.Int() >= t.TerminalCount {
		return ActionTypeError, 0, ProductionNumNil
	}
	ty, nextState, prodNum := t.actionTable[state*t.TerminalCount+term.Int()].describe()
	return ty, nextState.Int(), prodNum
}

// GoTo looks up the GOTO cell for a state and a non-terminal.
func (t *LRTable) GoTo(state int, nonTerm symbol.SymbolNum) (int, bool) {
	if state < 0 || state >= t.StateCount || nonTerm.Int() >= t.NonTerminalCount {
		return 0, false
	}
	nextState, ok := t.goToTable[state*t.NonTerminalCount+nonTerm.Int()].describe()
	return nextState.Int(), ok
}

// ConflictCount reports how many collisions the builder saw, resolved or
// not.
func (t *LRTable) ConflictCount() int {
	return len(t.SRConflicts) + len(t.RRConflicts)
}

// CompressedActionTable is the ACTION table after duplicate-row elimination
// followed by row displacement of the surviving rows. Lookup answers with
// the same encoded entries the flat table holds; empty cells stay the error
// entry.
type CompressedActionTable struct {
	rowNums []int
	rows    *compressor.RowDisplacementTable
}

func (c *CompressedActionTable) Lookup(state int, term int) (int, error) {
	if state < 0 || state >= len(c.rowNums) {
		return int(actionEntryEmpty), fmt.Errorf("state is out of range: %v", state)
	}
	return c.rows.Lookup(c.rowNums[state], term)
}

// CompressedSize reports the total cell count across both layers. Row
// displacement keeps a bounds array alongside its entries, so on a small
// dense table the compressed form can exceed the original.
func (c *CompressedActionTable) CompressedSize() int {
	return len(c.rowNums) + c.rows.CompressedSize()
}

// CompressAction compresses the ACTION table by eliminating duplicate rows
// and then displacing the unique rows into one array.
func (t *LRTable) CompressAction() (*CompressedActionTable, error) {
	entries := make([]int, len(t.actionTable))
	for i, e := range t.actionTable {
		entries[i] = int(e)
	}
	orig, err := compressor.NewSparseTable(entries, t.TerminalCount)
	if err != nil {
		return nil, err
	}
	unique := compressor.NewUniqueRowsTable()
	if err := unique.Compress(orig); err != nil {
		return nil, err
	}
	dedupedRows, err := compressor.NewSparseTable(unique.UniqueEntries, t.TerminalCount)
	if err != nil {
		return nil, err
	}
	rows := compressor.NewRowDisplacementTable(int(actionEntryEmpty))
	if err := rows.Compress(dedupedRows); err != nil {
		return nil, err
	}
	return &CompressedActionTable{
		rowNums: unique.RowNums,
		rows:    rows,
	}, nil
}

type lrTableBuilder struct {
	automaton    *lrAutomaton
	prods        *productionSet
	termCount    int
	nonTermCount int
	precAndAssoc *precAndAssoc

	srConflicts []*SRConflict
	rrConflicts []*RRConflict

	// Cells cleared by a nonassoc resolution stay errors no matter what
	// is written to them afterwards.
	clearedCells map[int]struct{}
}

func (b *lrTableBuilder) build() (*LRTable, error) {
	states := b.automaton.statesByNum()

	tab := &LRTable{
		InitialState:     b.automaton.states[b.automaton.initialState].num.Int(),
		StateCount:       len(states),
		TerminalCount:    b.termCount,
		NonTerminalCount: b.nonTermCount,
		actionTable:      make([]actionEntry, len(states)*b.termCount),
		goToTable:        make([]goToEntry, len(states)*b.nonTermCount),
		automaton:        b.automaton,
	}

	for _, state := range states {
		nextSyms := make([]symbol.Symbol, 0, len(state.next))
		for sym := range state.next {
			nextSyms = append(nextSyms, sym)
		}
		sort.Slice(nextSyms, func(i, j int) bool {
			return nextSyms[i] < nextSyms[j]
		})
		for _, sym := range nextSyms {
			nextState, ok := b.automaton.states[state.next[sym]]
			if !ok {
				return nil, fmt.Errorf("successor state not found: %v", state.next[sym])
			}
			if sym.IsTerminal() {
				b.writeShift(tab, state, sym, nextState.num)
			} else {
				b.writeGoTo(tab, state.num, sym, nextState.num)
			}
		}

		prodNums := make([]ProductionNum, 0, len(state.reducible))
		for num := range state.reducible {
			prodNums = append(prodNums, num)
		}
		sort.Slice(prodNums, func(i, j int) bool {
			return prodNums[i] < prodNums[j]
		})
		for _, num := range prodNums {
			las := make([]symbol.Symbol, 0, len(state.reducible[num]))
			for la := range state.reducible[num] {
				las = append(las, la)
			}
			sort.Slice(las, func(i, j int) bool {
				return las[i] < las[j]
			})
			for _, la := range las {
				b.writeReduce(tab, state, la, num)
			}
		}
	}

	tab.SRConflicts = b.srConflicts
	tab.RRConflicts = b.rrConflicts

	return tab, nil
}

func (b *lrTableBuilder) writeShift(tab *LRTable, state *lrState, sym symbol.Symbol, nextState stateNum) {
	pos := state.num.Int()*tab.TerminalCount + sym.Num().Int()
	act := tab.actionTable[pos]
	if act.isEmpty() {
		tab.actionTable[pos] = newShiftActionEntry(nextState)
		return
	}

	ty, _, prodNum := act.describe()
	if ty == ActionTypeShift {
		// The automaton is deterministic; two shifts on the same symbol
		// always target the same state.
		return
	}
	b.resolveSRConflict(tab, pos, state.num, sym, nextState, prodNum)
}

func (b *lrTableBuilder) writeReduce(tab *LRTable, state *lrState, sym symbol.Symbol, prodNum ProductionNum) {
	pos := state.num.Int()*tab.TerminalCount + sym.Num().Int()
	if _, cleared := b.clearedCells[pos]; cleared {
		return
	}
	act := tab.actionTable[pos]
	if act.isEmpty() {
		tab.actionTable[pos] = newReduceActionEntry(prodNum)
		return
	}

	ty, shiftState, definedProdNum := act.describe()
	switch ty {
	case ActionTypeReduce, ActionTypeAccept:
		if definedProdNum == prodNum {
			return
		}
		b.resolveRRConflict(tab, pos, state.num, sym, definedProdNum, prodNum)
	case ActionTypeShift:
		b.resolveSRConflict(tab, pos, state.num, sym, shiftState, prodNum)
	}
}

func (b *lrTableBuilder) writeGoTo(tab *LRTable, state stateNum, sym symbol.Symbol, nextState stateNum) {
	pos := state.Int()*tab.NonTerminalCount + sym.Num().Int()
	tab.goToTable[pos] = newGoToEntry(nextState)
}

// resolveSRConflict settles a shift/reduce collision. The side with the
// strictly higher declared precedence wins, and a declared precedence beats
// an undeclared one. On equal precedence, the terminal's associativity
// decides: left adopts the reduce, right adopts the shift, nonassoc clears
// the cell. With no precedence declared on either side, shift wins.
func (b *lrTableBuilder) resolveSRConflict(tab *LRTable, pos int, state stateNum, sym symbol.Symbol, shiftState stateNum, prodNum ProductionNum) {
	conflict := &SRConflict{
		State:      state.Int(),
		Symbol:     sym,
		ShiftState: shiftState.Int(),
		ReduceProd: prodNum,
	}
	b.srConflicts = append(b.srConflicts, conflict)

	shiftPrec := b.precAndAssoc.terminalPrecedence(sym.Num())
	reducePrec := b.precAndAssoc.productionPrecedence(prodNum)

	switch {
	case shiftPrec == precNil && reducePrec == precNil:
		conflict.ResolvedBy = ResolvedByShift
		conflict.AdoptedShift = true
		tab.actionTable[pos] = newShiftActionEntry(shiftState)
	case shiftPrec != reducePrec:
		conflict.ResolvedBy = ResolvedByPrec
		if shiftPrec > reducePrec {
			conflict.AdoptedShift = true
			tab.actionTable[pos] = newShiftActionEntry(shiftState)
		} else {
			conflict.AdoptedReduce = true
			tab.actionTable[pos] = newReduceActionEntry(prodNum)
		}
	default:
		conflict.ResolvedBy = ResolvedByAssoc
		switch b.precAndAssoc.terminalAssociativity(sym.Num()) {
		case assocTypeLeft:
			conflict.AdoptedReduce = true
			tab.actionTable[pos] = newReduceActionEntry(prodNum)
		case assocTypeRight:
			conflict.AdoptedShift = true
			tab.actionTable[pos] = newShiftActionEntry(shiftState)
		default:
			tab.actionTable[pos] = actionEntryEmpty
			if b.clearedCells == nil {
				b.clearedCells = map[int]struct{}{}
			}
			b.clearedCells[pos] = struct{}{}
		}
	}
}

// resolveRRConflict settles a reduce/reduce collision: a strictly higher
// production precedence wins, otherwise the production declared earlier in
// the grammar file does.
func (b *lrTableBuilder) resolveRRConflict(tab *LRTable, pos int, state stateNum, sym symbol.Symbol, prod1, prod2 ProductionNum) {
	conflict := &RRConflict{
		State:  state.Int(),
		Symbol: sym,
		Prod1:  prod1,
		Prod2:  prod2,
	}
	b.rrConflicts = append(b.rrConflicts, conflict)

	prec1 := b.precAndAssoc.productionPrecedence(prod1)
	prec2 := b.precAndAssoc.productionPrecedence(prod2)

	switch {
	case prec1 > prec2:
		conflict.ResolvedBy = ResolvedByPrec
		conflict.AdoptedProd = prod1
	case prec2 > prec1:
		conflict.ResolvedBy = ResolvedByPrec
		conflict.AdoptedProd = prod2
	case prod1 < prod2:
		conflict.ResolvedBy = ResolvedByProdOrder
		conflict.AdoptedProd = prod1
	default:
		conflict.ResolvedBy = ResolvedByProdOrder
		conflict.AdoptedProd = prod2
	}

	tab.actionTable[pos] = newReduceActionEntry(conflict.AdoptedProd)
}
