package grammar

import (
	"context"
	"fmt"

	"github.com/hioki9/partab/grammar/symbol"
)

// genSLR1Automaton builds the LR(0) automaton and attaches FOLLOW(LHS) to
// each reducible production as its lookahead set.
func genSLR1Automaton(ctx context.Context, prods *productionSet, augStartSym symbol.Symbol, flw *followSet, iterationLimit int) (*lrAutomaton, error) {
	automaton, err := genLR0Automaton(ctx, prods, augStartSym, iterationLimit)
	if err != nil {
		return nil, err
	}

	for _, state := range automaton.states {
		for num := range state.reducible {
			prod, ok := prods.findByNum(num)
			if !ok {
				return nil, fmt.Errorf("production not found: #%v", num)
			}
			e, err := flw.find(prod.lhs)
			if err != nil {
				return nil, err
			}

			las := map[symbol.Symbol]struct{}{}
			for sym := range e.symbols {
				las[sym] = struct{}{}
			}
			if e.eof {
				las[symbol.SymbolEndMarker] = struct{}{}
			}
			state.reducible[num] = las
		}
	}

	return automaton, nil
}
