package driver

import (
	"fmt"
	"strings"

	"github.com/hioki9/partab/grammar"
	"github.com/hioki9/partab/grammar/symbol"
)

type StepKind string

const (
	// StepExpand: an LL driver replaced the non-terminal on top of its
	// stack with a production's RHS.
	StepExpand = StepKind("expand")

	// StepMatch: an LL driver consumed a terminal matching its stack top.
	StepMatch = StepKind("match")

	// StepShift: an LR driver consumed a terminal and pushed a state.
	StepShift = StepKind("shift")

	// StepReduce: an LR driver popped a production's RHS and followed
	// GOTO.
	StepReduce = StepKind("reduce")

	StepAccept = StepKind("accept")
)

// DerivationStep is one driver action. Production is set for expand and
// reduce steps only; Symbol is set for match and shift steps. Stack is the
// rendered stack snapshot after the step, bottom first.
type DerivationStep struct {
	Ordinal        int
	Kind           StepKind
	Production     grammar.ProductionNum
	ProductionText string
	Symbol         string
	Stack          []string
}

func (s *DerivationStep) String() string {
	switch s.Kind {
	case StepExpand, StepReduce:
		return fmt.Sprintf("%v. %v %v [%v]", s.Ordinal, s.Kind, s.ProductionText, strings.Join(s.Stack, " "))
	case StepMatch, StepShift:
		return fmt.Sprintf("%v. %v %v [%v]", s.Ordinal, s.Kind, s.Symbol, strings.Join(s.Stack, " "))
	default:
		return fmt.Sprintf("%v. %v", s.Ordinal, s.Kind)
	}
}

// Trace is the ordered record of one parse attempt. A trace taken from a
// rejected parse is partial: it ends at the last successful step.
type Trace struct {
	Method grammar.Method
	Steps  []*DerivationStep
}

func (t *Trace) append(step *DerivationStep) {
	step.Ordinal = len(t.Steps) + 1
	t.Steps = append(t.Steps, step)
}

// Productions lists the productions the trace applied, in trace order:
// leftmost derivation order for an LL trace, reverse rightmost derivation
// order for an LR trace.
func (t *Trace) Productions() []grammar.ProductionNum {
	nums := []grammar.ProductionNum{}
	for _, step := range t.Steps {
		if step.Kind != StepExpand && step.Kind != StepReduce {
			continue
		}
		nums = append(nums, step.Production)
	}
	return nums
}

// RejectedError reports a parse that got stuck: the stack top and lookahead
// at the point of failure, the terminals that would have been viable, and
// the partial trace up to the failure.
type RejectedError struct {
	Method    grammar.Method
	StackTop  string
	LookAhead *Token
	Expected  []string
	Trace     *Trace
}

func (e *RejectedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: input rejected", e.Method)
	if e.LookAhead != nil {
		fmt.Fprintf(&b, " at %v", tokenText(e.LookAhead))
	}
	fmt.Fprintf(&b, "; stack top: %v", e.StackTop)
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, "; expected: %v", strings.Join(e.Expected, ", "))
	}
	return b.String()
}

// sententialForm is a sequence of grammar symbols under rewriting.
type sententialForm []symbol.Symbol

func (f sententialForm) String(reader *symbol.SymbolTableReader) string {
	if len(f) == 0 {
		return "ε"
	}
	names := make([]string, 0, len(f))
	for _, sym := range f {
		text, _ := reader.ToText(sym)
		names = append(names, text)
	}
	return strings.Join(names, " ")
}

// ReplayLeftmost reruns an LL trace as a leftmost derivation, returning the
// sentential forms from the start symbol down to the parsed input.
func ReplayLeftmost(gram *grammar.Grammar, trace *Trace) ([]string, error) {
	return replay(gram, trace.Productions(), true)
}

// ReplayRightmost reruns an LR trace as a rightmost derivation. The trace
// records reductions bottom-up, so the productions are applied in reverse.
func ReplayRightmost(gram *grammar.Grammar, trace *Trace) ([]string, error) {
	nums := trace.Productions()
	reversed := make([]grammar.ProductionNum, 0, len(nums))
	for i := len(nums) - 1; i >= 0; i-- {
		reversed = append(reversed, nums[i])
	}
	return replay(gram, reversed, false)
}

func replay(gram *grammar.Grammar, nums []grammar.ProductionNum, leftmost bool) ([]string, error) {
	reader := gram.SymbolTable()

	form := sententialForm{gram.StartSymbol()}
	forms := []string{form.String(reader)}
	for _, num := range nums {
		if num == grammar.ProductionNumStart {
			continue
		}
		rule, ok := gram.Rule(num)
		if !ok {
			return nil, fmt.Errorf("unknown production in trace: #%v", num)
		}

		// The derivation discipline fixes which non-terminal rewrites
		// next; it must be the production's LHS or the trace is not a
		// valid derivation.
		pos := -1
		if leftmost {
			for i, sym := range form {
				if sym.IsNonTerminal() {
					pos = i
					break
				}
			}
		} else {
			for i := len(form) - 1; i >= 0; i-- {
				if form[i].IsNonTerminal() {
					pos = i
					break
				}
			}
		}
		if pos < 0 || form[pos] != rule.LHS {
			lhs, _ := reader.ToText(rule.LHS)
			return nil, fmt.Errorf("production #%v does not apply: %v is not the next non-terminal to rewrite", num, lhs)
		}

		next := make(sententialForm, 0, len(form)-1+len(rule.RHS))
		next = append(next, form[:pos]...)
		next = append(next, rule.RHS...)
		next = append(next, form[pos+1:]...)
		form = next
		forms = append(forms, form.String(reader))
	}

	return forms, nil
}
