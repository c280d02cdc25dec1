package grammar

import (
	"context"
	"fmt"
	"sort"

	"github.com/hioki9/partab/grammar/symbol"
)

// lrAutomaton is the canonical collection of LR states for one construction
// method. States are numbered by BFS order from the initial state, visiting
// the outgoing transitions of each state in symbol order, so the numbering
// is stable across rebuilds of the same grammar.
type lrAutomaton struct {
	initialState kernelID
	states       map[kernelID]*lrState
}

func (a *lrAutomaton) statesByNum() []*lrState {
	states := make([]*lrState, 0, len(a.states))
	for _, state := range a.states {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].num < states[j].num
	})
	return states
}

// closureFn expands a kernel to the full item set of its state.
type closureFn func(*kernel) ([]*lrItem, error)

func genLRAutomaton(ctx context.Context, prods *productionSet, augStartSym symbol.Symbol, initialLookAhead symbol.Symbol, closure closureFn, iterationLimit int) (*lrAutomaton, error) {
	startProds, ok := prods.findByLHS(augStartSym)
	if !ok || len(startProds) != 1 {
		return nil, fmt.Errorf("an augmented start symbol must have exactly one production")
	}
	initialItem, err := newLRItem(startProds[0], 0, initialLookAhead)
	if err != nil {
		return nil, err
	}
	initialKernel, err := newKernel([]*lrItem{initialItem})
	if err != nil {
		return nil, err
	}

	automaton := &lrAutomaton{
		initialState: initialKernel.id,
		states:       map[kernelID]*lrState{},
	}

	guard := newIterationGuard("LR automaton construction", iterationLimit)
	nextNum := stateNumInitial
	uncheckedKernels := []*kernel{initialKernel}
	for len(uncheckedKernels) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := guard.tick(); err != nil {
			return nil, err
		}

		k := uncheckedKernels[0]
		uncheckedKernels = uncheckedKernels[1:]
		if _, known := automaton.states[k.id]; known {
			continue
		}

		state, neighbours, err := genStateAndNeighbourKernels(k, prods, closure)
		if err != nil {
			return nil, err
		}
		state.num = nextNum
		nextNum = nextNum.next()
		automaton.states[k.id] = state

		for _, nk := range neighbours {
			if _, known := automaton.states[nk.id]; known {
				continue
			}
			uncheckedKernels = append(uncheckedKernels, nk)
		}
	}

	return automaton, nil
}

func genStateAndNeighbourKernels(k *kernel, prods *productionSet, closure closureFn) (*lrState, []*kernel, error) {
	items, err := closure(k)
	if err != nil {
		return nil, nil, err
	}

	neighbourItems := map[symbol.Symbol][]*lrItem{}
	reducible := map[ProductionNum]map[symbol.Symbol]struct{}{}
	for _, item := range items {
		if item.reducible {
			las := reducible[item.num]
			if !item.lookAhead.IsNil() {
				if las == nil {
					las = map[symbol.Symbol]struct{}{}
				}
				las[item.lookAhead] = struct{}{}
			}
			reducible[item.num] = las
			continue
		}

		advanced, err := item.advance(prods)
		if err != nil {
			return nil, nil, err
		}
		neighbourItems[item.dottedSymbol] = append(neighbourItems[item.dottedSymbol], advanced)
	}

	// Visit transitions in symbol order so state numbering stays
	// deterministic.
	dottedSyms := make([]symbol.Symbol, 0, len(neighbourItems))
	for sym := range neighbourItems {
		dottedSyms = append(dottedSyms, sym)
	}
	sort.Slice(dottedSyms, func(i, j int) bool {
		return dottedSyms[i] < dottedSyms[j]
	})

	next := map[symbol.Symbol]kernelID{}
	kernels := make([]*kernel, 0, len(dottedSyms))
	for _, sym := range dottedSyms {
		nk, err := newKernel(neighbourItems[sym])
		if err != nil {
			return nil, nil, err
		}
		next[sym] = nk.id
		kernels = append(kernels, nk)
	}

	return &lrState{
		kernel:    k,
		next:      next,
		reducible: reducible,
	}, kernels, nil
}

// genLR0Closure expands a kernel with the productions of each dotted
// non-terminal. Items carry no lookahead.
func genLR0Closure(prods *productionSet) closureFn {
	return func(k *kernel) ([]*lrItem, error) {
		items := []*lrItem{}
		knownItems := map[lrItemID]struct{}{}
		uncheckedItems := []*lrItem{}
		for _, item := range k.items {
			items = append(items, item)
			knownItems[item.id] = struct{}{}
			uncheckedItems = append(uncheckedItems, item)
		}
		for len(uncheckedItems) > 0 {
			item := uncheckedItems[0]
			uncheckedItems = uncheckedItems[1:]
			if !item.dottedSymbol.IsNonTerminal() {
				continue
			}

			ps, ok := prods.findByLHS(item.dottedSymbol)
			if !ok {
				return nil, fmt.Errorf("productions were not found; LHS: %s", item.dottedSymbol)
			}
			for _, prod := range ps {
				newItem, err := newLR0Item(prod, 0)
				if err != nil {
					return nil, err
				}
				if _, known := knownItems[newItem.id]; known {
					continue
				}
				knownItems[newItem.id] = struct{}{}
				items = append(items, newItem)
				uncheckedItems = append(uncheckedItems, newItem)
			}
		}
		return items, nil
	}
}

func genLR0Automaton(ctx context.Context, prods *productionSet, augStartSym symbol.Symbol, iterationLimit int) (*lrAutomaton, error) {
	return genLRAutomaton(ctx, prods, augStartSym, symbol.SymbolNil, genLR0Closure(prods), iterationLimit)
}
