package grammar

import (
	"fmt"
	"strings"

	verr "github.com/hioki9/partab/error"
	"github.com/hioki9/partab/grammar/symbol"
	"github.com/hioki9/partab/spec"
)

type assocType string

const (
	assocTypeNil      = assocType("")
	assocTypeLeft     = assocType("left")
	assocTypeRight    = assocType("right")
	assocTypeNonAssoc = assocType("nonassoc")
)

const (
	precNil = 0
	precMin = 1
)

// precAndAssoc represents precedence and associativities of terminal symbols
// and productions. A production inherits both from the rightmost terminal
// symbol of its RHS.
type precAndAssoc struct {
	termPrec  map[symbol.SymbolNum]int
	termAssoc map[symbol.SymbolNum]assocType

	prodPrec  map[ProductionNum]int
	prodAssoc map[ProductionNum]assocType
}

func (pa *precAndAssoc) terminalPrecedence(sym symbol.SymbolNum) int {
	prec, ok := pa.termPrec[sym]
	if !ok {
		return precNil
	}
	return prec
}

func (pa *precAndAssoc) terminalAssociativity(sym symbol.SymbolNum) assocType {
	assoc, ok := pa.termAssoc[sym]
	if !ok {
		return assocTypeNil
	}
	return assoc
}

func (pa *precAndAssoc) productionPrecedence(prod ProductionNum) int {
	prec, ok := pa.prodPrec[prod]
	if !ok {
		return precNil
	}
	return prec
}

func (pa *precAndAssoc) productionAssociativity(prod ProductionNum) assocType {
	assoc, ok := pa.prodAssoc[prod]
	if !ok {
		return assocTypeNil
	}
	return assoc
}

// Grammar is the immutable model all builders consume. Once Build returns,
// nothing in here mutates, so a Grammar may be shared freely across
// goroutines.
type Grammar struct {
	symbolTable          *symbol.SymbolTable
	productionSet        *productionSet
	augmentedStartSymbol symbol.Symbol
	startSymbol          symbol.Symbol
	precAndAssoc         *precAndAssoc
}

// GrammarBuilder turns a parsed grammar file into a validated Grammar.
type GrammarBuilder struct {
	AST *spec.RootNode

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	if b.AST == nil || len(b.AST.Productions) == 0 {
		return nil, verr.SpecErrors{
			&verr.SpecError{
				Cause: semErrNoProduction,
			},
		}
	}

	symTab := symbol.NewSymbolTable()
	symTabWriter := symTab.Writer()
	symTabReader := symTab.Reader()

	declaredTerms := map[string]int{}
	declaredNonTerms := map[string]int{}

	for _, t := range b.AST.Terminals {
		if t.Name == symbol.SymbolNameEndMarker {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrReservedName,
				Detail: t.Name,
				Row:    t.Row,
			})
			continue
		}
		declaredTerms[t.Name] = t.Row
	}
	for _, nt := range b.AST.NonTerminals {
		if _, ok := declaredTerms[nt.Name]; ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateSym,
				Detail: nt.Name,
				Row:    nt.Row,
			})
			continue
		}
		declaredNonTerms[nt.Name] = nt.Row
	}
	// Production LHSs count as non-terminal declarations even without a
	// %NonTerminals entry.
	for _, prod := range b.AST.Productions {
		if _, ok := declaredTerms[prod.LHS]; ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateSym,
				Detail: prod.LHS,
				Row:    prod.Row,
			})
			continue
		}
		if _, ok := declaredNonTerms[prod.LHS]; !ok {
			declaredNonTerms[prod.LHS] = prod.Row
		}
	}

	if b.AST.Start == nil {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoStart,
		})
		return nil, b.errs
	}
	if _, ok := declaredNonTerms[b.AST.Start.Name]; !ok {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUndefinedStart,
			Detail: b.AST.Start.Name,
			Row:    b.AST.Start.Row,
		})
		return nil, b.errs
	}

	// The augmented start symbol gets a name that cannot clash with a
	// user-defined one.
	augStartText := b.AST.Start.Name + "'"
	for {
		_, isTerm := declaredTerms[augStartText]
		_, isNonTerm := declaredNonTerms[augStartText]
		if !isTerm && !isNonTerm {
			break
		}
		augStartText += "'"
	}

	augStartSym, err := symTabWriter.RegisterStartSymbol(augStartText)
	if err != nil {
		return nil, err
	}
	for _, nt := range b.AST.NonTerminals {
		if _, err := symTabWriter.RegisterNonTerminalSymbol(nt.Name); err != nil {
			return nil, err
		}
	}
	for _, prod := range b.AST.Productions {
		if _, ok := declaredNonTerms[prod.LHS]; !ok {
			continue
		}
		if _, err := symTabWriter.RegisterNonTerminalSymbol(prod.LHS); err != nil {
			return nil, err
		}
	}
	for _, t := range b.AST.Terminals {
		if _, ok := declaredTerms[t.Name]; !ok {
			continue
		}
		if _, err := symTabWriter.RegisterTerminalSymbol(t.Name); err != nil {
			return nil, err
		}
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	startSym, _ := symTabReader.ToSymbol(b.AST.Start.Name)

	prods := newProductionSet()
	{
		augProd, err := newProduction(augStartSym, []symbol.Symbol{startSym})
		if err != nil {
			return nil, err
		}
		prods.append(augProd)
	}
	withProds := map[symbol.Symbol]struct{}{}
	for _, prodNode := range b.AST.Productions {
		lhsSym, ok := symTabReader.ToSymbol(prodNode.LHS)
		if !ok || !lhsSym.IsNonTerminal() {
			// Already reported above.
			continue
		}
		withProds[lhsSym] = struct{}{}

		for _, alt := range prodNode.Alternatives {
			rhs := make([]symbol.Symbol, 0, len(alt.Symbols))
			undefined := false
			for _, name := range alt.Symbols {
				sym, ok := symTabReader.ToSymbol(name)
				if !ok || sym.IsStart() || sym.IsEndMarker() {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrUndefinedSym,
						Detail: name,
						Row:    alt.Row,
					})
					undefined = true
					continue
				}
				rhs = append(rhs, sym)
			}
			if undefined {
				continue
			}

			prod, err := newProduction(lhsSym, rhs)
			if err != nil {
				return nil, err
			}
			if added := prods.append(prod); !added {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateProd,
					Detail: prodNode.LHS,
					Row:    alt.Row,
				})
			}
		}
	}
	for _, sym := range symTabReader.NonTerminalSymbols() {
		if sym.IsStart() {
			continue
		}
		if _, ok := withProds[sym]; ok {
			continue
		}
		text, _ := symTabReader.ToText(sym)
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrMissingProduction,
			Detail: text,
		})
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	pa, err := b.genPrecAndAssoc(symTabReader, prods)
	if err != nil {
		return nil, err
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	return &Grammar{
		symbolTable:          symTab,
		productionSet:        prods,
		augmentedStartSymbol: augStartSym,
		startSymbol:          startSym,
		precAndAssoc:         pa,
	}, nil
}

// genPrecAndAssoc numbers the declared precedence levels from low to high;
// a %Left/%Right/%NonAssoc line declared later binds strictly tighter.
func (b *GrammarBuilder) genPrecAndAssoc(symTab *symbol.SymbolTableReader, prods *productionSet) (*precAndAssoc, error) {
	termPrec := map[symbol.SymbolNum]int{}
	termAssoc := map[symbol.SymbolNum]assocType{}

	precN := precMin
	for _, level := range b.AST.Precedences {
		var assocTy assocType
		switch level.Assoc {
		case spec.AssocKindLeft:
			assocTy = assocTypeLeft
		case spec.AssocKindRight:
			assocTy = assocTypeRight
		case spec.AssocKindNonAssoc:
			assocTy = assocTypeNonAssoc
		default:
			return nil, fmt.Errorf("invalid associativity: %v", level.Assoc)
		}

		for _, name := range level.Symbols {
			sym, ok := symTab.ToSymbol(name)
			if !ok || !sym.IsTerminal() {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrPrecOnNonTerm,
					Detail: name,
					Row:    level.Row,
				})
				continue
			}
			if _, declared := termPrec[sym.Num()]; declared {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicatePrec,
					Detail: name,
					Row:    level.Row,
				})
				continue
			}
			termPrec[sym.Num()] = precN
			termAssoc[sym.Num()] = assocTy
		}
		precN++
	}

	prodPrec := map[ProductionNum]int{}
	prodAssoc := map[ProductionNum]assocType{}
	for _, prod := range prods.getAllProductions() {
		// A production inherits precedence and associativity from the
		// rightmost terminal symbol of its RHS.
		rightmostTerm := symbol.SymbolNil
		for _, sym := range prod.rhs {
			if !sym.IsTerminal() {
				continue
			}
			rightmostTerm = sym
		}
		if !rightmostTerm.IsNil() {
			if prec, ok := termPrec[rightmostTerm.Num()]; ok {
				prodPrec[prod.num] = prec
				prodAssoc[prod.num] = termAssoc[rightmostTerm.Num()]
			}
		}
	}

	return &precAndAssoc{
		termPrec:  termPrec,
		termAssoc: termAssoc,
		prodPrec:  prodPrec,
		prodAssoc: prodAssoc,
	}, nil
}

// SymbolTable exposes the grammar's interned symbols read-only.
func (g *Grammar) SymbolTable() *symbol.SymbolTableReader {
	return g.symbolTable.Reader()
}

func (g *Grammar) StartSymbol() symbol.Symbol {
	return g.startSymbol
}

func (g *Grammar) AugmentedStartSymbol() symbol.Symbol {
	return g.augmentedStartSymbol
}

// Rule is a read-only view of a production.
type Rule struct {
	Num ProductionNum
	LHS symbol.Symbol
	RHS []symbol.Symbol
}

func (g *Grammar) Rule(num ProductionNum) (Rule, bool) {
	prod, ok := g.productionSet.findByNum(num)
	if !ok {
		return Rule{}, false
	}
	return Rule{
		Num: prod.num,
		LHS: prod.lhs,
		RHS: prod.rhs,
	}, true
}

// Rules lists all productions in declaration order, the augmented start
// production first.
func (g *Grammar) Rules() []Rule {
	rules := make([]Rule, 0, len(g.productionSet.num2Prod))
	for num := ProductionNumStart; num.Int() < g.productionSet.count(); num++ {
		if r, ok := g.Rule(num); ok {
			rules = append(rules, r)
		}
	}
	return rules
}

// RuleCount reports the extent of the production number space including the
// nil slot.
func (g *Grammar) RuleCount() int {
	return g.productionSet.count()
}

// RuleString renders a production as "E -> E + T", with ε for an empty RHS.
func (g *Grammar) RuleString(num ProductionNum) string {
	r, ok := g.Rule(num)
	if !ok {
		return fmt.Sprintf("<unknown production %v>", num)
	}
	reader := g.symbolTable.Reader()
	lhs, _ := reader.ToText(r.LHS)
	if len(r.RHS) == 0 {
		return fmt.Sprintf("%v -> ε", lhs)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v ->", lhs)
	for _, sym := range r.RHS {
		text, _ := reader.ToText(sym)
		fmt.Fprintf(&b, " %v", text)
	}
	return b.String()
}
