// Package lexer tokenizes source text for the parse drivers. The lexical
// specification is derived from the grammar itself: every terminal matches
// its own name literally, and whitespace between tokens is skipped. Grammars
// whose terminals are not literal spellings should feed the drivers a
// pre-tokenized stream instead.
package lexer

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"

	"github.com/hioki9/partab/driver"
	"github.com/hioki9/partab/grammar"
)

const (
	skipKindName = "white_space"
	skipPattern  = `[\u{0009}\u{000a}\u{000d}\u{0020}]+`
)

var kindNamePattern = regexp.MustCompile(`^[a-z][0-9a-z_]*$`)

// Spec is a compiled lexical specification for one grammar.
type Spec struct {
	clspec    *mlspec.CompiledLexSpec
	kind2Term map[string]string
}

// CompileSpec derives and compiles the lexical specification of a grammar.
// Terminals whose names are not well-formed lexical kind names get an
// anonymous kind, the way anonymous patterns do in grammar DSLs.
func CompileSpec(gram *grammar.Grammar) (*Spec, error) {
	reader := gram.SymbolTable()

	entries := []*mlspec.LexEntry{}
	kind2Term := map[string]string{}
	usedKinds := map[string]struct{}{
		skipKindName: {},
	}
	anonCount := 0
	for _, sym := range reader.TerminalSymbols() {
		if sym.IsNil() || sym.IsEndMarker() {
			continue
		}
		name, _ := reader.ToText(sym)

		kind := name
		if _, used := usedKinds[kind]; used || !kindNamePattern.MatchString(kind) {
			for {
				anonCount++
				kind = fmt.Sprintf("x_%v", anonCount)
				if _, used := usedKinds[kind]; !used {
					break
				}
			}
		}
		usedKinds[kind] = struct{}{}
		kind2Term[kind] = name

		entries = append(entries, &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(kind),
			Pattern: mlspec.LexPattern(mlspec.EscapePattern(name)),
		})
	}
	entries = append(entries, &mlspec.LexEntry{
		Kind:    mlspec.LexKindName(skipKindName),
		Pattern: mlspec.LexPattern(skipPattern),
	})

	lexSpec := &mlspec.LexSpec{
		Name:    "tokens",
		Entries: entries,
	}

	clspec, err, cErrs := mlcompiler.Compile(lexSpec, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			fmt.Fprintf(&b, "%v: %v", cErrs[0].Kind, cErrs[0].Cause)
			for _, cErr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n%v: %v", cErr.Kind, cErr.Cause)
			}
			return nil, fmt.Errorf(b.String())
		}
		return nil, err
	}

	return &Spec{
		clspec:    clspec,
		kind2Term: kind2Term,
	}, nil
}

// Lexer adapts the generated tokenizer into a driver.TokenStream.
type Lexer struct {
	spec *Spec
	lex  *mldriver.Lexer
}

func New(spec *Spec, src io.Reader) (*Lexer, error) {
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(spec.clspec), src)
	if err != nil {
		return nil, err
	}
	return &Lexer{
		spec: spec,
		lex:  lex,
	}, nil
}

func (l *Lexer) Next() (*driver.Token, error) {
	for {
		tok, err := l.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return &driver.Token{
				Row: tok.Row,
				Col: tok.Col,
				EOF: true,
			}, nil
		}
		if tok.Invalid {
			return nil, fmt.Errorf("unrecognized input %#v at row %v, column %v", string(tok.Lexeme), tok.Row, tok.Col)
		}

		kind := l.spec.clspec.KindNames[tok.KindID].String()
		if kind == skipKindName {
			continue
		}
		term, ok := l.spec.kind2Term[kind]
		if !ok {
			return nil, fmt.Errorf("unknown lexical kind: %v", kind)
		}

		return &driver.Token{
			Kind: term,
			Text: string(tok.Lexeme),
			Row:  tok.Row,
			Col:  tok.Col,
		}, nil
	}
}
