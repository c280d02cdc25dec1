package spec

// AssocKind is the associativity a precedence level declares over its
// terminals.
type AssocKind string

const (
	AssocKindLeft     = AssocKind("left")
	AssocKindRight    = AssocKind("right")
	AssocKindNonAssoc = AssocKind("nonassoc")
)

type SymbolNode struct {
	Name string
	Row  int
}

// AlternativeNode is one alternative of a production. An empty Symbols slice
// represents an explicit epsilon alternative.
type AlternativeNode struct {
	Symbols []string
	Row     int
}

type ProductionNode struct {
	LHS          string
	Alternatives []*AlternativeNode
	Row          int
}

// PrecedenceNode is one %Left/%Right/%NonAssoc line. Levels are ordered as
// declared; a later line binds strictly tighter than an earlier one.
type PrecedenceNode struct {
	Assoc   AssocKind
	Symbols []string
	Row     int
}

// RootNode is the parsed form of a grammar file. It carries declarations
// only; semantic validation happens in the grammar package.
type RootNode struct {
	Terminals    []*SymbolNode
	NonTerminals []*SymbolNode
	Start        *SymbolNode
	Productions  []*ProductionNode
	Precedences  []*PrecedenceNode
}
