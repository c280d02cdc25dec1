package grammar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cnf/structhash"
	"github.com/hioki9/partab/grammar/symbol"
)

// Method selects a table construction strategy.
type Method string

const (
	MethodLL1   = Method("ll1")
	MethodSLR1  = Method("slr1")
	MethodLALR1 = Method("lalr1")
	MethodLR1   = Method("lr1")
)

func (m Method) String() string {
	return string(m)
}

// IsLR reports whether the method builds an ACTION/GOTO table rather than a
// predictive table.
func (m Method) IsLR() bool {
	switch m {
	case MethodSLR1, MethodLALR1, MethodLR1:
		return true
	}
	return false
}

// ParseMethods resolves a method flag value. Besides the four method names it
// accepts "both" (LL(1) plus SLR(1), built side by side) and "all".
func ParseMethods(text string) ([]Method, error) {
	switch Method(text) {
	case MethodLL1, MethodSLR1, MethodLALR1, MethodLR1:
		return []Method{Method(text)}, nil
	}
	switch text {
	case "both":
		return []Method{MethodLL1, MethodSLR1}, nil
	case "all":
		return []Method{MethodLL1, MethodSLR1, MethodLALR1, MethodLR1}, nil
	}
	return nil, fmt.Errorf("invalid method: %v (want ll1, slr1, lalr1, lr1, both, or all)", text)
}

type buildConfig struct {
	iterationLimit int
}

type BuildOption func(*buildConfig)

// WithIterationLimit bounds every fixed-point loop of the build. Zero or a
// negative value keeps the default.
func WithIterationLimit(n int) BuildOption {
	return func(c *buildConfig) {
		c.iterationLimit = n
	}
}

// Analysis carries the fixed-point results every construction method shares:
// FIRST, FOLLOW, and nullability.
type Analysis struct {
	gram   *Grammar
	first  *firstSet
	follow *followSet
}

// Analyze runs the FIRST/FOLLOW fixed points for a grammar.
func Analyze(gram *Grammar, opts ...BuildOption) (*Analysis, error) {
	c := &buildConfig{}
	for _, opt := range opts {
		opt(c)
	}

	fst, err := genFirstSet(gram.productionSet, c.iterationLimit)
	if err != nil {
		return nil, err
	}
	flw, err := genFollowSet(gram.productionSet, fst, c.iterationLimit)
	if err != nil {
		return nil, err
	}

	return &Analysis{
		gram:   gram,
		first:  fst,
		follow: flw,
	}, nil
}

func (a *Analysis) Grammar() *Grammar {
	return a.gram
}

// Nullable reports whether a non-terminal can derive the empty string.
func (a *Analysis) Nullable(sym symbol.Symbol) bool {
	e := a.first.findBySymbol(sym)
	return e != nil && e.empty
}

// First reports FIRST of a non-terminal, sorted, plus its nullability.
func (a *Analysis) First(sym symbol.Symbol) ([]symbol.Symbol, bool, error) {
	e := a.first.findBySymbol(sym)
	if e == nil {
		return nil, false, fmt.Errorf("an entry of FIRST was not found; symbol: %s", sym)
	}
	syms := make([]symbol.Symbol, 0, len(e.symbols))
	for s := range e.symbols {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms, e.empty, nil
}

// Follow reports FOLLOW of a non-terminal, sorted, plus whether the end
// marker belongs to the set.
func (a *Analysis) Follow(sym symbol.Symbol) ([]symbol.Symbol, bool, error) {
	e, err := a.follow.find(sym)
	if err != nil {
		return nil, false, err
	}
	syms := make([]symbol.Symbol, 0, len(e.symbols))
	for s := range e.symbols {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms, e.eof, nil
}

// Tables is the outcome of one build: the shared analysis plus one table per
// requested method.
type Tables struct {
	Grammar     *Grammar
	Analysis    *Analysis
	Fingerprint string

	LL1 *LL1Table
	LR  map[Method]*LRTable
}

// BuildTables builds the tables for every requested method. The LR automata
// are independent of each other, so methods run in parallel over the shared
// read-only grammar and analysis.
func BuildTables(ctx context.Context, gram *Grammar, methods []Method, opts ...BuildOption) (*Tables, error) {
	c := &buildConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("at least one method is required")
	}

	analysis, err := Analyze(gram, opts...)
	if err != nil {
		return nil, err
	}

	fingerprint, err := genGrammarFingerprint(gram)
	if err != nil {
		return nil, err
	}

	tables := &Tables{
		Grammar:     gram,
		Analysis:    analysis,
		Fingerprint: fingerprint,
		LR:          map[Method]*LRTable{},
	}

	seen := map[Method]struct{}{}
	var wg sync.WaitGroup
	var mu sync.Mutex
	var buildErr error
	for _, method := range methods {
		if _, ok := seen[method]; ok {
			continue
		}
		seen[method] = struct{}{}

		method := method
		wg.Add(1)
		go func() {
			defer wg.Done()

			if method == MethodLL1 {
				ll1, err := genLL1Table(gram.SymbolTable(), gram.productionSet, analysis.first, analysis.follow)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if buildErr == nil {
						buildErr = err
					}
					return
				}
				tables.LL1 = ll1
				return
			}

			lr, err := buildLRTable(ctx, gram, analysis, method, c.iterationLimit)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if buildErr == nil {
					buildErr = err
				}
				return
			}
			tables.LR[method] = lr
		}()
	}
	wg.Wait()
	if buildErr != nil {
		return nil, buildErr
	}

	return tables, nil
}

func buildLRTable(ctx context.Context, gram *Grammar, analysis *Analysis, method Method, iterationLimit int) (*LRTable, error) {
	var automaton *lrAutomaton
	var err error
	switch method {
	case MethodSLR1:
		automaton, err = genSLR1Automaton(ctx, gram.productionSet, gram.augmentedStartSymbol, analysis.follow, iterationLimit)
	case MethodLALR1:
		automaton, err = genLALR1Automaton(ctx, gram.productionSet, gram.augmentedStartSymbol, analysis.first, iterationLimit)
	case MethodLR1:
		automaton, err = genLR1Automaton(ctx, gram.productionSet, gram.augmentedStartSymbol, analysis.first, iterationLimit)
	default:
		return nil, fmt.Errorf("invalid LR method: %v", method)
	}
	if err != nil {
		return nil, err
	}

	symTab := gram.SymbolTable()
	b := &lrTableBuilder{
		automaton:    automaton,
		prods:        gram.productionSet,
		termCount:    symTab.TerminalCount(),
		nonTermCount: symTab.NonTerminalCount(),
		precAndAssoc: gram.precAndAssoc,
	}
	return b.build()
}

// grammarFingerprint is the canonical shape hashed to identify a grammar for
// caching. Two grammars with the same declarations hash the same regardless
// of how their objects came to be.
type grammarFingerprint struct {
	Start        string
	Terminals    []string
	NonTerminals []string
	Productions  []string
	Precedences  []string
}

func genGrammarFingerprint(gram *Grammar) (string, error) {
	reader := gram.SymbolTable()

	startText, _ := reader.ToText(gram.startSymbol)

	terms, err := reader.TerminalTexts()
	if err != nil {
		return "", err
	}
	nonTerms, err := reader.NonTerminalTexts()
	if err != nil {
		return "", err
	}

	prods := []string{}
	for _, rule := range gram.Rules() {
		if rule.LHS.IsStart() {
			continue
		}
		prods = append(prods, gram.RuleString(rule.Num))
	}

	precs := []string{}
	{
		type termPrec struct {
			text  string
			prec  int
			assoc assocType
		}
		entries := []termPrec{}
		for _, sym := range reader.TerminalSymbols() {
			prec := gram.precAndAssoc.terminalPrecedence(sym.Num())
			if prec == precNil {
				continue
			}
			text, _ := reader.ToText(sym)
			entries = append(entries, termPrec{
				text:  text,
				prec:  prec,
				assoc: gram.precAndAssoc.terminalAssociativity(sym.Num()),
			})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].prec != entries[j].prec {
				return entries[i].prec < entries[j].prec
			}
			return entries[i].text < entries[j].text
		})
		for _, e := range entries {
			precs = append(precs, fmt.Sprintf("%v %v %v", e.prec, e.assoc, e.text))
		}
	}

	fp := &grammarFingerprint{
		Start:        startText,
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		Precedences:  precs,
	}
	return fmt.Sprintf("%x", structhash.Sha1(fp, 1)), nil
}

// BuildCache memoizes BuildTables by grammar fingerprint and method set.
// Safe for concurrent use.
type BuildCache struct {
	mu      sync.Mutex
	entries map[string]*Tables
}

func NewBuildCache() *BuildCache {
	return &BuildCache{
		entries: map[string]*Tables{},
	}
}

// BuildTables returns the cached tables for an equivalent grammar and method
// set, building and caching them on a miss.
func (c *BuildCache) BuildTables(ctx context.Context, gram *Grammar, methods []Method, opts ...BuildOption) (*Tables, error) {
	fingerprint, err := genGrammarFingerprint(gram)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(methods))
	for _, m := range methods {
		names = append(names, m.String())
	}
	sort.Strings(names)
	key := fingerprint + "/" + strings.Join(names, ",")

	c.mu.Lock()
	cached, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	tables, err := BuildTables(ctx, gram, methods, opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = tables
	c.mu.Unlock()

	return tables, nil
}
