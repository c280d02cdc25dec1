package grammar

import (
	"strings"
	"testing"

	verr "github.com/hioki9/partab/error"
	"github.com/hioki9/partab/spec"
)

func TestGrammarBuilderSpecError(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		specErr *SemanticError
	}{
		{
			caption: "a symbol on a RHS must be declared",
			src: `
%Terminals: a
%NonTerminals: s
%Start: s
%Productions:
s -> a b
`,
			specErr: semErrUndefinedSym,
		},
		{
			caption: "the start symbol must be declared",
			src: `
%Terminals: a
%NonTerminals: s
%Start: t
%Productions:
s -> a
`,
			specErr: semErrUndefinedStart,
		},
		{
			caption: "the start symbol must not be a terminal",
			src: `
%Terminals: a
%NonTerminals: s
%Start: a
%Productions:
s -> a
`,
			specErr: semErrUndefinedStart,
		},
		{
			caption: "a name must not be both a terminal and a non-terminal",
			src: `
%Terminals: a s
%NonTerminals: s
%Start: s
%Productions:
s -> a
`,
			specErr: semErrDuplicateSym,
		},
		{
			caption: "the end marker name is reserved",
			src: `
%Terminals: a $
%NonTerminals: s
%Start: s
%Productions:
s -> a
`,
			specErr: semErrReservedName,
		},
		{
			caption: "duplicate productions are not allowed",
			src: `
%Terminals: a
%NonTerminals: s
%Start: s
%Productions:
s -> a | a
`,
			specErr: semErrDuplicateProd,
		},
		{
			caption: "a declared non-terminal needs a production",
			src: `
%Terminals: a
%NonTerminals: s t
%Start: s
%Productions:
s -> a
`,
			specErr: semErrMissingProduction,
		},
		{
			caption: "precedence applies to terminals only",
			src: `
%Terminals: a
%NonTerminals: s
%Start: s
%Productions:
s -> a
%Left: s
`,
			specErr: semErrPrecOnNonTerm,
		},
		{
			caption: "a terminal takes at most one precedence level",
			src: `
%Terminals: a
%NonTerminals: s
%Start: s
%Productions:
s -> a
%Left: a
%Right: a
`,
			specErr: semErrDuplicatePrec,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := spec.Parse(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			b := &GrammarBuilder{
				AST: ast,
			}
			_, err = b.Build()
			if err == nil {
				t.Fatalf("an error must occur")
			}
			specErrs, ok := err.(verr.SpecErrors)
			if !ok {
				t.Fatalf("unexpected error type: want: %T, got: %T (%v)", verr.SpecErrors{}, err, err)
			}
			found := false
			for _, specErr := range specErrs {
				if specErr.Cause == tt.specErr {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("an expected spec error didn't occur; want: %v, got: %v", tt.specErr, specErrs)
			}
		})
	}
}

func TestGrammarBuilderAugmentedStart(t *testing.T) {
	// The augmented start symbol takes the start symbol's name plus a
	// prime, skipping past any user symbol that already carries the name.
	tests := []struct {
		caption string
		src     string
		augName string
	}{
		{
			caption: "default",
			src: `
%Terminals: a
%NonTerminals: e
%Start: e
%Productions:
e -> a
`,
			augName: "e'",
		},
		{
			caption: "collision",
			src: `
%Terminals: a
%NonTerminals: e e'
%Start: e
%Productions:
e -> e' a | e'
e' -> a
`,
			augName: "e''",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.caption, func(t *testing.T) {
			gram := genGrammar(t, tt.src)
			name, ok := gram.SymbolTable().ToText(gram.AugmentedStartSymbol())
			if !ok {
				t.Fatalf("the augmented start symbol is not in the symbol table")
			}
			if name != tt.augName {
				t.Fatalf("unexpected augmented start symbol name; want: %v, got: %v", tt.augName, name)
			}
			if gram.AugmentedStartSymbol() == gram.StartSymbol() {
				t.Fatalf("the augmented start symbol must differ from the start symbol")
			}
			prod, ok := gram.productionSet.findByNum(ProductionNumStart)
			if !ok {
				t.Fatalf("the augmented start production was not generated")
			}
			if prod.lhs != gram.AugmentedStartSymbol() || prod.rhsLen != 1 || prod.rhs[0] != gram.StartSymbol() {
				t.Fatalf("unexpected augmented start production: %v -> %v", prod.lhs, prod.rhs)
			}
		})
	}
}

func TestGrammarRuleString(t *testing.T) {
	gram := genGrammar(t, `
%Terminals: a b
%NonTerminals: s
%Start: s
%Productions:
s -> a s b | ε
`)
	num := findProduction(t, gram, "s", "a", "s", "b")
	if text := gram.RuleString(num); text != "s -> a s b" {
		t.Fatalf("unexpected rule text: %v", text)
	}
	empty := findProduction(t, gram, "s")
	if text := gram.RuleString(empty); text != "s -> ε" {
		t.Fatalf("unexpected rule text: %v", text)
	}
}
