package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/hioki9/partab/grammar/symbol"
)

type TerminalReport struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	Precedence    int    `json:"prec"`
	Associativity string `json:"assoc"`
}

type NonTerminalReport struct {
	Number   int      `json:"number"`
	Name     string   `json:"name"`
	Nullable bool     `json:"nullable"`
	First    []string `json:"first"`
	Follow   []string `json:"follow"`
}

type ProductionReport struct {
	Number        int    `json:"number"`
	Text          string `json:"text"`
	Precedence    int    `json:"prec"`
	Associativity string `json:"assoc"`
}

type TransitionReport struct {
	Symbol string `json:"symbol"`
	State  int    `json:"state"`
}

type ReduceReport struct {
	LookAhead  []string `json:"look_ahead"`
	Production int      `json:"production"`
	Text       string   `json:"text"`
}

type SRConflictReport struct {
	State      int    `json:"state"`
	Symbol     string `json:"symbol"`
	ShiftState int    `json:"shift_state"`
	ReduceProd int    `json:"reduce_production"`
	Adopted    string `json:"adopted"`
	ResolvedBy string `json:"resolved_by"`
}

type RRConflictReport struct {
	State       int    `json:"state"`
	Symbol      string `json:"symbol"`
	Production1 int    `json:"production_1"`
	Production2 int    `json:"production_2"`
	AdoptedProd int    `json:"adopted_production"`
	ResolvedBy  string `json:"resolved_by"`
}

type StateReport struct {
	Number      int                 `json:"number"`
	Kernel      []string            `json:"kernel"`
	Closure     []string            `json:"closure"`
	Shift       []*TransitionReport `json:"shift"`
	Reduce      []*ReduceReport     `json:"reduce"`
	GoTo        []*TransitionReport `json:"goto"`
	SRConflicts []*SRConflictReport `json:"sr_conflict"`
	RRConflicts []*RRConflictReport `json:"rr_conflict"`
}

type LRReport struct {
	Method      string              `json:"method"`
	States      []*StateReport      `json:"states"`
	SRConflicts []*SRConflictReport `json:"sr_conflicts"`
	RRConflicts []*RRConflictReport `json:"rr_conflicts"`

	ActionCells           int `json:"action_cells"`
	CompressedActionCells int `json:"compressed_action_cells"`
}

type LL1CellReport struct {
	NonTerminal string `json:"non_terminal"`
	Symbol      string `json:"symbol"`
	Production  int    `json:"production"`
	Text        string `json:"text"`
}

type LL1ConflictReport struct {
	NonTerminal  string `json:"non_terminal"`
	Symbol       string `json:"symbol"`
	AdoptedProd  int    `json:"adopted_production"`
	RejectedProd int    `json:"rejected_production"`
}

type LL1Report struct {
	Cells     []*LL1CellReport     `json:"cells"`
	Conflicts []*LL1ConflictReport `json:"conflicts"`
}

// Report is the deterministic, display-ready description of one build. Every
// list is ordered so that consecutive builds of the same grammar render
// byte-identical output.
type Report struct {
	Fingerprint  string               `json:"fingerprint"`
	Terminals    []*TerminalReport    `json:"terminals"`
	NonTerminals []*NonTerminalReport `json:"non_terminals"`
	Productions  []*ProductionReport  `json:"productions"`
	LL1          *LL1Report           `json:"ll1,omitempty"`
	LRs          []*LRReport          `json:"lr,omitempty"`
}

// sortedNames orders symbol names via a tree set, deduplicating on the way.
func sortedNames(names []string) []string {
	set := treeset.NewWithStringComparator()
	for _, name := range names {
		set.Add(name)
	}
	sorted := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		sorted = append(sorted, v.(string))
	}
	return sorted
}

func (t *Tables) Report() (*Report, error) {
	reader := t.Grammar.SymbolTable()

	rep := &Report{
		Fingerprint: t.Fingerprint,
	}

	for _, sym := range reader.TerminalSymbols() {
		if sym.IsEndMarker() {
			continue
		}
		name, _ := reader.ToText(sym)
		rep.Terminals = append(rep.Terminals, &TerminalReport{
			Number:        sym.Num().Int(),
			Name:          name,
			Precedence:    t.Grammar.precAndAssoc.terminalPrecedence(sym.Num()),
			Associativity: string(t.Grammar.precAndAssoc.terminalAssociativity(sym.Num())),
		})
	}

	for _, sym := range reader.NonTerminalSymbols() {
		if sym.IsStart() {
			continue
		}
		name, _ := reader.ToText(sym)

		first, nullable, err := t.Analysis.First(sym)
		if err != nil {
			return nil, err
		}
		follow, eof, err := t.Analysis.Follow(sym)
		if err != nil {
			return nil, err
		}

		firstNames := make([]string, 0, len(first))
		for _, s := range first {
			text, _ := reader.ToText(s)
			firstNames = append(firstNames, text)
		}
		followNames := make([]string, 0, len(follow)+1)
		for _, s := range follow {
			text, _ := reader.ToText(s)
			followNames = append(followNames, text)
		}
		if eof {
			followNames = append(followNames, symbol.SymbolNameEndMarker)
		}

		rep.NonTerminals = append(rep.NonTerminals, &NonTerminalReport{
			Number:   sym.Num().Int(),
			Name:     name,
			Nullable: nullable,
			First:    sortedNames(firstNames),
			Follow:   sortedNames(followNames),
		})
	}

	for _, rule := range t.Grammar.Rules() {
		if rule.LHS.IsStart() {
			continue
		}
		rep.Productions = append(rep.Productions, &ProductionReport{
			Number:        rule.Num.Int(),
			Text:          t.Grammar.RuleString(rule.Num),
			Precedence:    t.Grammar.precAndAssoc.productionPrecedence(rule.Num),
			Associativity: string(t.Grammar.precAndAssoc.productionAssociativity(rule.Num)),
		})
	}

	if t.LL1 != nil {
		rep.LL1 = t.genLL1Report(reader)
	}

	// LR reports come back in order of construction power, not
	// alphabetically.
	methods := []Method{}
	for _, method := range []Method{MethodSLR1, MethodLALR1, MethodLR1} {
		if _, ok := t.LR[method]; ok {
			methods = append(methods, method)
		}
	}
	for _, method := range methods {
		lrRep, err := t.genLRReport(reader, method, t.LR[method])
		if err != nil {
			return nil, err
		}
		rep.LRs = append(rep.LRs, lrRep)
	}

	return rep, nil
}

func (t *Tables) genLL1Report(reader *symbol.SymbolTableReader) *LL1Report {
	rep := &LL1Report{}

	for _, nonTerm := range reader.NonTerminalSymbols() {
		if nonTerm.IsStart() {
			continue
		}
		nonTermName, _ := reader.ToText(nonTerm)
		for _, term := range reader.TerminalSymbols() {
			num, ok := t.LL1.Find(nonTerm.Num(), term.Num())
			if !ok {
				continue
			}
			termName, _ := reader.ToText(term)
			rep.Cells = append(rep.Cells, &LL1CellReport{
				NonTerminal: nonTermName,
				Symbol:      termName,
				Production:  num.Int(),
				Text:        t.Grammar.RuleString(num),
			})
		}
	}

	for _, c := range t.LL1.Conflicts {
		nonTermName, _ := reader.ToText(c.NonTerminal)
		termName, _ := reader.ToText(c.Symbol)
		rep.Conflicts = append(rep.Conflicts, &LL1ConflictReport{
			NonTerminal:  nonTermName,
			Symbol:       termName,
			AdoptedProd:  c.AdoptedProd.Int(),
			RejectedProd: c.RejectedProd.Int(),
		})
	}

	return rep
}

func (t *Tables) genLRReport(reader *symbol.SymbolTableReader, method Method, tab *LRTable) (*LRReport, error) {
	rep := &LRReport{
		Method:      method.String(),
		ActionCells: len(tab.actionTable),
	}
	if compressed, err := tab.CompressAction(); err == nil {
		rep.CompressedActionCells = compressed.CompressedSize()
	}

	state2SR := map[int][]*SRConflictReport{}
	for _, c := range tab.SRConflicts {
		symName, _ := reader.ToText(c.Symbol)
		adopted := "error"
		switch {
		case c.AdoptedShift:
			adopted = fmt.Sprintf("shift %v", c.ShiftState)
		case c.AdoptedReduce:
			adopted = fmt.Sprintf("reduce %v", c.ReduceProd.Int())
		}
		cr := &SRConflictReport{
			State:      c.State,
			Symbol:     symName,
			ShiftState: c.ShiftState,
			ReduceProd: c.ReduceProd.Int(),
			Adopted:    adopted,
			ResolvedBy: string(c.ResolvedBy),
		}
		rep.SRConflicts = append(rep.SRConflicts, cr)
		state2SR[c.State] = append(state2SR[c.State], cr)
	}
	state2RR := map[int][]*RRConflictReport{}
	for _, c := range tab.RRConflicts {
		symName, _ := reader.ToText(c.Symbol)
		cr := &RRConflictReport{
			State:       c.State,
			Symbol:      symName,
			Production1: c.Prod1.Int(),
			Production2: c.Prod2.Int(),
			AdoptedProd: c.AdoptedProd.Int(),
			ResolvedBy:  string(c.ResolvedBy),
		}
		rep.RRConflicts = append(rep.RRConflicts, cr)
		state2RR[c.State] = append(state2RR[c.State], cr)
	}

	// SLR(1) states hold LR(0) items; the other methods carry lookaheads,
	// so their closures need the canonical LR(1) expansion.
	closure := genLR0Closure(t.Grammar.productionSet)
	if method != MethodSLR1 {
		closure = genLR1Closure(t.Grammar.productionSet, t.Analysis.first)
	}

	for _, state := range tab.automaton.statesByNum() {
		sr := &StateReport{
			Number: state.num.Int(),
		}

		kernelIDs := map[lrItemID]struct{}{}
		for _, item := range state.items {
			text, err := t.itemToString(reader, item)
			if err != nil {
				return nil, err
			}
			sr.Kernel = append(sr.Kernel, text)
			kernelIDs[item.id] = struct{}{}
		}
		sort.Strings(sr.Kernel)

		closureItems, err := closure(state.kernel)
		if err != nil {
			return nil, err
		}
		for _, item := range closureItems {
			if _, ok := kernelIDs[item.id]; ok {
				continue
			}
			text, err := t.itemToString(reader, item)
			if err != nil {
				return nil, err
			}
			sr.Closure = append(sr.Closure, text)
		}
		sort.Strings(sr.Closure)

		nextSyms := make([]symbol.Symbol, 0, len(state.next))
		for sym := range state.next {
			nextSyms = append(nextSyms, sym)
		}
		sort.Slice(nextSyms, func(i, j int) bool {
			return nextSyms[i] < nextSyms[j]
		})
		for _, sym := range nextSyms {
			symName, _ := reader.ToText(sym)
			target := tab.automaton.states[state.next[sym]]
			tr := &TransitionReport{
				Symbol: symName,
				State:  target.num.Int(),
			}
			if sym.IsTerminal() {
				sr.Shift = append(sr.Shift, tr)
			} else {
				sr.GoTo = append(sr.GoTo, tr)
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
			las := []string{}
			for la := range state.reducible[num] {
				name, _ := reader.ToText(la)
				las = append(las, name)
			}
			sr.Reduce = append(sr.Reduce, &ReduceReport{
				LookAhead:  sortedNames(las),
				Production: num.Int(),
				Text:       t.Grammar.RuleString(num),
			})
		}

		sr.SRConflicts = state2SR[state.num.Int()]
		sr.RRConflicts = state2RR[state.num.Int()]

		rep.States = append(rep.States, sr)
	}

	return rep, nil
}

// itemToString renders a kernel item like "E -> E . + T, +/$".
func (t *Tables) itemToString(reader *symbol.SymbolTableReader, item *lrItem) (string, error) {
	prod, ok := t.Grammar.productionSet.findByID(item.prod)
	if !ok {
		return "", fmt.Errorf("production not found: %v", item.prod)
	}

	var b strings.Builder
	lhs, _ := reader.ToText(prod.lhs)
	fmt.Fprintf(&b, "%v ->", lhs)
	for i, sym := range prod.rhs {
		if i == item.dot {
			fmt.Fprintf(&b, " .")
		}
		text, _ := reader.ToText(sym)
		fmt.Fprintf(&b, " %v", text)
	}
	if item.dot == len(prod.rhs) {
		fmt.Fprintf(&b, " .")
	}
	if !item.lookAhead.IsNil() {
		la, _ := reader.ToText(item.lookAhead)
		fmt.Fprintf(&b, ", %v", la)
	}
	return b.String(), nil
}
