package grammar

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/hioki9/partab/grammar/symbol"
)

type lrItemID [32]byte

func (id lrItemID) String() string {
	return hex.EncodeToString(id[:])
}

// lrItem is a dotted production, optionally paired with a lookahead terminal.
// An LR(0) item carries symbol.SymbolNil as its lookahead; an LR(1) item
// carries exactly one terminal or the end marker, and the lookahead takes
// part in the item's identity.
type lrItem struct {
	id   lrItemID
	prod productionID
	num  ProductionNum

	// E -> E . + T
	//
	// Dot position: 1
	// Dotted symbol: +
	dot          int
	dottedSymbol symbol.Symbol

	lookAhead symbol.Symbol

	// When initial is true, the item is S' -> . S of the augmented start
	// production.
	initial bool

	// When reducible is true, the item looks like E -> E + T . and the
	// dotted symbol is nil.
	reducible bool
}

func genLRItemID(prod productionID, dot int, lookAhead symbol.Symbol) lrItemID {
	b := make([]byte, 0, len(prod)+8+2)
	b = append(b, prod[:]...)
	bDot := make([]byte, 8)
	binary.LittleEndian.PutUint64(bDot, uint64(dot))
	b = append(b, bDot...)
	b = append(b, lookAhead.Byte()...)
	return sha256.Sum256(b)
}

func newLRItem(prod *production, dot int, lookAhead symbol.Symbol) (*lrItem, error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}
	if dot < 0 || dot > len(prod.rhs) {
		return nil, fmt.Errorf("dot position must be between 0 and %v: %v", len(prod.rhs), dot)
	}

	dottedSymbol := symbol.SymbolNil
	if dot < len(prod.rhs) {
		dottedSymbol = prod.rhs[dot]
	}

	return &lrItem{
		id:           genLRItemID(prod.id, dot, lookAhead),
		prod:         prod.id,
		num:          prod.num,
		dot:          dot,
		dottedSymbol: dottedSymbol,
		lookAhead:    lookAhead,
		initial:      prod.lhs.IsStart() && dot == 0,
		reducible:    dot == len(prod.rhs),
	}, nil
}

func newLR0Item(prod *production, dot int) (*lrItem, error) {
	return newLRItem(prod, dot, symbol.SymbolNil)
}

// advance moves the dot one symbol to the right, keeping the lookahead.
func (i *lrItem) advance(prods *productionSet) (*lrItem, error) {
	prod, ok := prods.findByID(i.prod)
	if !ok {
		return nil, fmt.Errorf("production not found: %v", i.prod)
	}
	return newLRItem(prod, i.dot+1, i.lookAhead)
}

// core identifies the item ignoring its lookahead. Two LR(1) states whose
// kernels share all cores collapse into one LALR(1) state.
func (i *lrItem) core() lrItemID {
	return genLRItemID(i.prod, i.dot, symbol.SymbolNil)
}

type kernelID [32]byte

func (id kernelID) String() string {
	return hex.EncodeToString(id[:])
}

type kernel struct {
	id    kernelID
	items []*lrItem
}

func newKernel(items []*lrItem) (*kernel, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("a kernel need at least one item")
	}

	// Remove duplicates and sort items by ID so that equivalent kernels
	// always hash the same.
	sortedItems := []*lrItem{}
	{
		seen := map[lrItemID]struct{}{}
		for _, item := range items {
			if _, ok := seen[item.id]; ok {
				continue
			}
			seen[item.id] = struct{}{}
			sortedItems = append(sortedItems, item)
		}
		sort.Slice(sortedItems, func(i, j int) bool {
			return hex.EncodeToString(sortedItems[i].id[:]) < hex.EncodeToString(sortedItems[j].id[:])
		})
	}

	var id kernelID
	{
		b := []byte{}
		for _, item := range sortedItems {
			b = append(b, item.id[:]...)
		}
		id = sha256.Sum256(b)
	}

	return &kernel{
		id:    id,
		items: sortedItems,
	}, nil
}

// coreID hashes the kernel's item cores, ignoring lookaheads.
func (k *kernel) coreID() kernelID {
	cores := make([]lrItemID, 0, len(k.items))
	{
		seen := map[lrItemID]struct{}{}
		for _, item := range k.items {
			c := item.core()
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			cores = append(cores, c)
		}
		sort.Slice(cores, func(i, j int) bool {
			return hex.EncodeToString(cores[i][:]) < hex.EncodeToString(cores[j][:])
		})
	}

	b := []byte{}
	for _, c := range cores {
		b = append(b, c[:]...)
	}
	return sha256.Sum256(b)
}

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return fmt.Sprintf("%v", int(n))
}

func (n stateNum) next() stateNum {
	return stateNum(n + 1)
}

// lrState is one state of an LR automaton: its kernel, the GOTO transitions,
// and the lookahead set attached to each reducible production. A nil
// lookahead set means the construction method defers the decision to the
// FOLLOW sets.
type lrState struct {
	*kernel
	num       stateNum
	next      map[symbol.Symbol]kernelID
	reducible map[ProductionNum]map[symbol.Symbol]struct{}
}
