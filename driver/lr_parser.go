package driver

import (
	"context"
	"fmt"

	"github.com/hioki9/partab/grammar"
	"github.com/hioki9/partab/grammar/symbol"
)

// LRParse is one shift/reduce parse in progress, driven by an ACTION/GOTO
// table of any LR flavor. Each Next call performs exactly one table action.
type LRParse struct {
	gram   *grammar.Grammar
	method grammar.Method
	tab    *grammar.LRTable
	stream TokenStream

	stateStack []int
	symStack   []symbol.Symbol
	lookAhead  *Token
	laSym      symbol.Symbol
	trace      *Trace
	done       bool
}

func NewLRParse(gram *grammar.Grammar, method grammar.Method, tab *grammar.LRTable, stream TokenStream) (*LRParse, error) {
	if !method.IsLR() {
		return nil, fmt.Errorf("not an LR method: %v", method)
	}

	p := &LRParse{
		gram:       gram,
		method:     method,
		tab:        tab,
		stream:     stream,
		stateStack: []int{tab.InitialState},
		trace: &Trace{
			Method: method,
		},
	}
	if err := p.readToken(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LRParse) Trace() *Trace {
	return p.trace
}

func (p *LRParse) Done() bool {
	return p.done
}

// Next performs one table action: a shift, a reduce, or the accept. It
// reports whether the parse has finished. A rejection finishes the parse and
// returns a *RejectedError carrying the partial trace.
func (p *LRParse) Next(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return p.done, err
	}
	if p.done {
		return true, nil
	}

	state := p.stateStack[len(p.stateStack)-1]
	act, nextState, prodNum := p.tab.Action(state, p.laSym.Num())
	switch act {
	case grammar.ActionTypeShift:
		p.stateStack = append(p.stateStack, nextState)
		p.symStack = append(p.symStack, p.laSym)
		p.trace.append(&DerivationStep{
			Kind:   StepShift,
			Symbol: tokenText(p.lookAhead),
			Stack:  p.renderStack(),
		})
		if err := p.readToken(); err != nil {
			p.done = true
			return true, err
		}
		return false, nil
	case grammar.ActionTypeReduce:
		rule, ok := p.gram.Rule(prodNum)
		if !ok {
			p.done = true
			return true, fmt.Errorf("unknown production in table: #%v", prodNum)
		}

		n := len(rule.RHS)
		p.stateStack = p.stateStack[:len(p.stateStack)-n]
		p.symStack = p.symStack[:len(p.symStack)-n]

		top := p.stateStack[len(p.stateStack)-1]
		gotoState, ok := p.tab.GoTo(top, rule.LHS.Num())
		if !ok {
			p.done = true
			return true, fmt.Errorf("missing GOTO entry; state: %v, symbol: %v", top, p.symbolText(rule.LHS))
		}
		p.stateStack = append(p.stateStack, gotoState)
		p.symStack = append(p.symStack, rule.LHS)

		p.trace.append(&DerivationStep{
			Kind:           StepReduce,
			Production:     prodNum,
			ProductionText: p.gram.RuleString(prodNum),
			Stack:          p.renderStack(),
		})
		return false, nil
	case grammar.ActionTypeAccept:
		p.done = true
		p.trace.append(&DerivationStep{
			Kind:  StepAccept,
			Stack: p.renderStack(),
		})
		return true, nil
	default:
		p.done = true
		return true, &RejectedError{
			Method:    p.method,
			StackTop:  fmt.Sprintf("state %v", state),
			LookAhead: p.lookAhead,
			Expected:  p.expected(state),
			Trace:     p.trace,
		}
	}
}

// Run steps the parse to completion.
func (p *LRParse) Run(ctx context.Context) (*Trace, error) {
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

func (p *LRParse) readToken() error {
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

// expected lists the terminals with a non-error ACTION entry in a state.
func (p *LRParse) expected(state int) []string {
	reader := p.gram.SymbolTable()
	names := []string{}
	for _, term := range reader.TerminalSymbols() {
		act, _, _ := p.tab.Action(state, term.Num())
		if act == grammar.ActionTypeError {
			continue
		}
		text, _ := reader.ToText(term)
		names = append(names, text)
	}
	return names
}

func (p *LRParse) symbolText(sym symbol.Symbol) string {
	text, _ := p.gram.SymbolTable().ToText(sym)
	return text
}

// renderStack interleaves states and the symbols between them, bottom first:
// "0 E 3 + 7".
func (p *LRParse) renderStack() []string {
	rendered := make([]string, 0, len(p.stateStack)+len(p.symStack))
	for i, state := range p.stateStack {
		rendered = append(rendered, fmt.Sprintf("%v", state))
		if i < len(p.symStack) {
			rendered = append(rendered, p.symbolText(p.symStack[i]))
		}
	}
	return rendered
}
