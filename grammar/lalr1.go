package grammar

import (
	"context"
	"fmt"
	"sort"

	"github.com/hioki9/partab/grammar/symbol"
)

// genLALR1Automaton builds the canonical LR(1) automaton, then merges every
// group of states whose kernels share the same LR(0) cores. Lookahead sets
// of the merged reducible items are unioned, which is where LALR(1) can pick
// up reduce/reduce conflicts the canonical automaton does not have.
func genLALR1Automaton(ctx context.Context, prods *productionSet, augStartSym symbol.Symbol, fst *firstSet, iterationLimit int) (*lrAutomaton, error) {
	lr1, err := genLR1Automaton(ctx, prods, augStartSym, fst, iterationLimit)
	if err != nil {
		return nil, err
	}

	core2States := map[kernelID][]*lrState{}
	state2Core := map[kernelID]kernelID{}
	for _, state := range lr1.states {
		core := state.kernel.coreID()
		core2States[core] = append(core2States[core], state)
		state2Core[state.kernel.id] = core
	}

	// Order each group, and the groups themselves, by the LR(1) state
	// numbers so the merged numbering is stable.
	cores := make([]kernelID, 0, len(core2States))
	for core, group := range core2States {
		sort.Slice(group, func(i, j int) bool {
			return group[i].num < group[j].num
		})
		cores = append(cores, core)
	}
	sort.Slice(cores, func(i, j int) bool {
		return core2States[cores[i]][0].num < core2States[cores[j]][0].num
	})

	core2Merged := map[kernelID]*lrState{}
	nextNum := stateNumInitial
	for _, core := range cores {
		group := core2States[core]

		kernelItems := []*lrItem{}
		for _, state := range group {
			kernelItems = append(kernelItems, state.kernel.items...)
		}
		mergedKernel, err := newKernel(kernelItems)
		if err != nil {
			return nil, err
		}

		reducible := map[ProductionNum]map[symbol.Symbol]struct{}{}
		for _, state := range group {
			for num, las := range state.reducible {
				merged := reducible[num]
				if merged == nil {
					merged = map[symbol.Symbol]struct{}{}
				}
				for la := range las {
					merged[la] = struct{}{}
				}
				reducible[num] = merged
			}
		}

		core2Merged[core] = &lrState{
			kernel:    mergedKernel,
			num:       nextNum,
			reducible: reducible,
		}
		nextNum = nextNum.next()
	}

	// Transitions from any group member land in the same target group, so
	// the representative's transitions stand in for everyone's.
	automaton := &lrAutomaton{
		states: map[kernelID]*lrState{},
	}
	for _, core := range cores {
		merged := core2Merged[core]
		next := map[symbol.Symbol]kernelID{}
		for sym, target := range core2States[core][0].next {
			targetCore, ok := state2Core[target]
			if !ok {
				return nil, fmt.Errorf("transition target state not found: %v", target)
			}
			next[sym] = core2Merged[targetCore].kernel.id
		}
		merged.next = next
		automaton.states[merged.kernel.id] = merged
	}

	initialCore, ok := state2Core[lr1.initialState]
	if !ok {
		return nil, fmt.Errorf("initial state not found: %v", lr1.initialState)
	}
	automaton.initialState = core2Merged[initialCore].kernel.id

	return automaton, nil
}
