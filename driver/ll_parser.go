package driver

import (
	"context"

	"github.com/hioki9/partab/grammar"
	"github.com/hioki9/partab/grammar/symbol"
)

// LLParse is one predictive parse in progress. Each Next call performs
// exactly one driver action, so a caller can step, inspect the trace so far,
// and resume.
type LLParse struct {
	gram   *grammar.Grammar
	tab    *grammar.LL1Table
	stream TokenStream

	stack     []symbol.Symbol
	lookAhead *Token
	laSym     symbol.Symbol
	trace     *Trace
	done      bool
}

func NewLLParse(gram *grammar.Grammar, tab *grammar.LL1Table, stream TokenStream) (*LLParse, error) {
	p := &LLParse{
		gram:   gram,
		tab:    tab,
		stream: stream,
		stack:  []symbol.Symbol{symbol.SymbolEndMarker, gram.StartSymbol()},
		trace: &Trace{
			Method: grammar.MethodLL1,
		},
	}
	if err := p.readToken(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LLParse) Trace() *Trace {
	return p.trace
}

func (p *LLParse) Done() bool {
	return p.done
}

// Next performs one action: an expansion, a terminal match, or the accept.
// It reports whether the parse has finished. A rejection finishes the parse
// and returns a *RejectedError carrying the partial trace.
func (p *LLParse) Next(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return p.done, err
	}
	if p.done {
		return true, nil
	}

	top := p.stack[len(p.stack)-1]
	switch {
	case top.IsEndMarker():
		if !p.laSym.IsEndMarker() {
			return true, p.reject(top)
		}
		p.done = true
		p.trace.append(&DerivationStep{
			Kind:  StepAccept,
			Stack: p.renderStack(),
		})
		return true, nil
	case top.IsTerminal():
		if top != p.laSym {
			return true, p.reject(top)
		}
		p.stack = p.stack[:len(p.stack)-1]
		p.trace.append(&DerivationStep{
			Kind:   StepMatch,
			Symbol: tokenText(p.lookAhead),
			Stack:  p.renderStack(),
		})
		if err := p.readToken(); err != nil {
			p.done = true
			return true, err
		}
		return false, nil
	default:
		num, ok := p.tab.Find(top.Num(), p.laSym.Num())
		if !ok {
			return true, p.reject(top)
		}
		rule, ok := p.gram.Rule(num)
		if !ok {
			p.done = true
			return true, &RejectedError{
				Method:    grammar.MethodLL1,
				StackTop:  p.symbolText(top),
				LookAhead: p.lookAhead,
				Trace:     p.trace,
			}
		}

		p.stack = p.stack[:len(p.stack)-1]
		for i := len(rule.RHS) - 1; i >= 0; i-- {
			p.stack = append(p.stack, rule.RHS[i])
		}
		p.trace.append(&DerivationStep{
			Kind:           StepExpand,
			Production:     num,
			ProductionText: p.gram.RuleString(num),
			Stack:          p.renderStack(),
		})
		return false, nil
	}
}

// Run steps the parse to completion.
func (p *LLParse) Run(ctx context.Context) (*Trace, error) {
	for {
		done, err := p.Next(ctx)
		if err != nil {
			return p.trace, err
		}
		if done {
			return p.trace, nil
		}
	}
}

func (p *LLParse) readToken() error {
	tok, err := p.stream.Next()
	if err != nil {
		return err
	}
	sym, err := tokenToSymbol(p.gram.SymbolTable(), tok)
	if err != nil {
		return err
	}
	p.lookAhead = tok
	p.laSym = sym
	return nil
}

func (p *LLParse) reject(top symbol.Symbol) error {
	p.done = true
	return &RejectedError{
		Method:    grammar.MethodLL1,
		StackTop:  p.symbolText(top),
		LookAhead: p.lookAhead,
		Expected:  p.expected(top),
		Trace:     p.trace,
	}
}

// expected lists the terminals that would have allowed the parse to
// continue from the failing stack top.
func (p *LLParse) expected(top symbol.Symbol) []string {
	reader := p.gram.SymbolTable()
	if top.IsTerminal() {
		return []string{p.symbolText(top)}
	}

	names := []string{}
	for _, term := range reader.TerminalSymbols() {
		if _, ok := p.tab.Find(top.Num(), term.Num()); !ok {
			continue
		}
		text, _ := reader.ToText(term)
		names = append(names, text)
	}
	return names
}

func (p *LLParse) symbolText(sym symbol.Symbol) string {
	text, _ := p.gram.SymbolTable().ToText(sym)
	return text
}

func (p *LLParse) renderStack() []string {
	names := make([]string, 0, len(p.stack))
	for _, sym := range p.stack {
		names = append(names, p.symbolText(sym))
	}
	return names
}
