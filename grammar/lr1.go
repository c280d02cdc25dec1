package grammar

import (
	"context"
	"fmt"

	"github.com/hioki9/partab/grammar/symbol"
)

// genLR1Closure expands a kernel per the canonical LR(1) construction: for
// an item A -> α . B β with lookahead a, every production B -> γ joins the
// set once per lookahead in FIRST(βa).
func genLR1Closure(prods *productionSet, fst *firstSet) closureFn {
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

			srcProd, ok := prods.findByID(item.prod)
			if !ok {
				return nil, fmt.Errorf("production not found: %v", item.prod)
			}
			suffixFirst, err := fst.find(srcProd, item.dot+1)
			if err != nil {
				return nil, err
			}
			las := make([]symbol.Symbol, 0, len(suffixFirst.symbols)+1)
			for sym := range suffixFirst.symbols {
				las = append(las, sym)
			}
			if suffixFirst.empty {
				las = append(las, item.lookAhead)
			}

			ps, ok := prods.findByLHS(item.dottedSymbol)
			if !ok {
				return nil, fmt.Errorf("productions were not found; LHS: %s", item.dottedSymbol)
			}
			for _, prod := range ps {
				for _, la := range las {
					newItem, err := newLRItem(prod, 0, la)
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
		}
		return items, nil
	}
}

func genLR1Automaton(ctx context.Context, prods *productionSet, augStartSym symbol.Symbol, fst *firstSet, iterationLimit int) (*lrAutomaton, error) {
	return genLRAutomaton(ctx, prods, augStartSym, symbol.SymbolEndMarker, genLR1Closure(prods, fst), iterationLimit)
}
