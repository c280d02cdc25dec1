package driver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hioki9/partab/grammar"
	"github.com/hioki9/partab/spec"
)

const llGrammarSrc = `
%Terminals: id add mul l_paren r_paren
%NonTerminals: E Et T Tt F
%Start: E
%Productions:
E -> T Et
Et -> add T Et | ε
T -> F Tt
Tt -> mul F Tt | ε
F -> l_paren E r_paren | id
`

const lrGrammarSrc = `
%Terminals: id add mul l_paren r_paren
%NonTerminals: E T F
%Start: E
%Productions:
E -> E add T | T
T -> T mul F | F
F -> l_paren E r_paren | id
`

func genTables(t *testing.T, src string, methods ...grammar.Method) (*grammar.Grammar, *grammar.Tables) {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	require.NoError(t, err)
	b := &grammar.GrammarBuilder{
		AST: ast,
	}
	gram, err := b.Build()
	require.NoError(t, err)
	tables, err := grammar.BuildTables(context.Background(), gram, methods)
	require.NoError(t, err)
	return gram, tables
}

func TestLLParse(t *testing.T) {
	gram, tables := genTables(t, llGrammarSrc, grammar.MethodLL1)

	input := []string{"id", "add", "id", "mul", "id"}
	p, err := NewLLParse(gram, tables.LL1, NewTextTokenStream(input))
	require.NoError(t, err)

	trace, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Done())

	require.NotEmpty(t, trace.Steps)
	assert.Equal(t, grammar.MethodLL1, trace.Method)
	assert.Equal(t, StepAccept, trace.Steps[len(trace.Steps)-1].Kind)

	// Expand steps applied left to right replay as a leftmost derivation
	// ending in the input itself.
	forms, err := ReplayLeftmost(gram, trace)
	require.NoError(t, err)
	require.NotEmpty(t, forms)
	assert.Equal(t, "E", forms[0])
	assert.Equal(t, strings.Join(input, " "), forms[len(forms)-1])

	// Ordinals number the steps from 1 without gaps.
	for i, step := range trace.Steps {
		assert.Equal(t, i+1, step.Ordinal)
	}
}

func TestLLParse_Step(t *testing.T) {
	gram, tables := genTables(t, llGrammarSrc, grammar.MethodLL1)

	p, err := NewLLParse(gram, tables.LL1, NewTextTokenStream([]string{"id"}))
	require.NoError(t, err)

	// Each Next call performs exactly one action and extends the trace by
	// exactly one step.
	done, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, done)
	require.Len(t, p.Trace().Steps, 1)
	assert.Equal(t, StepExpand, p.Trace().Steps[0].Kind)

	steps := 1
	for !p.Done() {
		_, err := p.Next(context.Background())
		require.NoError(t, err)
		steps++
		require.Len(t, p.Trace().Steps, steps)
	}

	// A finished parse stays finished.
	done, err = p.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Len(t, p.Trace().Steps, steps)
}

func TestLLParse_Reject(t *testing.T) {
	gram, tables := genTables(t, llGrammarSrc, grammar.MethodLL1)

	p, err := NewLLParse(gram, tables.LL1, NewTextTokenStream([]string{"add", "id"}))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.True(t, p.Done())

	assert.Equal(t, grammar.MethodLL1, rejected.Method)
	assert.Equal(t, "E", rejected.StackTop)
	require.NotNil(t, rejected.LookAhead)
	assert.Equal(t, "add", rejected.LookAhead.Kind)
	assert.ElementsMatch(t, []string{"id", "l_paren"}, rejected.Expected)
	require.NotNil(t, rejected.Trace)
	assert.Empty(t, rejected.Trace.Steps)
}

func TestLLParse_UndeclaredTerminal(t *testing.T) {
	gram, tables := genTables(t, llGrammarSrc, grammar.MethodLL1)

	_, err := NewLLParse(gram, tables.LL1, NewTextTokenStream([]string{"sub"}))
	assert.Error(t, err)
}

func TestLRParse(t *testing.T) {
	for _, method := range []grammar.Method{grammar.MethodSLR1, grammar.MethodLALR1, grammar.MethodLR1} {
		method := method
		t.Run(string(method), func(t *testing.T) {
			gram, tables := genTables(t, lrGrammarSrc, method)

			input := []string{"l_paren", "id", "add", "id", "r_paren", "mul", "id"}
			p, err := NewLRParse(gram, method, tables.LR[method], NewTextTokenStream(input))
			require.NoError(t, err)

			trace, err := p.Run(context.Background())
			require.NoError(t, err)
			assert.True(t, p.Done())

			require.NotEmpty(t, trace.Steps)
			assert.Equal(t, method, trace.Method)
			assert.Equal(t, StepAccept, trace.Steps[len(trace.Steps)-1].Kind)

			// Reductions applied bottom-up replay in reverse as a
			// rightmost derivation ending in the input.
			forms, err := ReplayRightmost(gram, trace)
			require.NoError(t, err)
			require.NotEmpty(t, forms)
			assert.Equal(t, "E", forms[0])
			assert.Equal(t, strings.Join(input, " "), forms[len(forms)-1])
		})
	}
}

func TestLRParse_Reject(t *testing.T) {
	gram, tables := genTables(t, lrGrammarSrc, grammar.MethodSLR1)

	p, err := NewLRParse(gram, grammar.MethodSLR1, tables.LR[grammar.MethodSLR1], NewTextTokenStream([]string{"id", "add"}))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.True(t, p.Done())

	assert.Equal(t, grammar.MethodSLR1, rejected.Method)
	require.NotNil(t, rejected.LookAhead)
	assert.True(t, rejected.LookAhead.EOF)
	assert.ElementsMatch(t, []string{"id", "l_paren"}, rejected.Expected)
	require.NotNil(t, rejected.Trace)
	assert.NotEmpty(t, rejected.Trace.Steps)
}

func TestLRParse_MethodValidation(t *testing.T) {
	gram, tables := genTables(t, lrGrammarSrc, grammar.MethodSLR1)

	_, err := NewLRParse(gram, grammar.MethodLL1, tables.LR[grammar.MethodSLR1], NewTextTokenStream([]string{"id"}))
	assert.Error(t, err)
}

func TestParseCanceled(t *testing.T) {
	gram, tables := genTables(t, lrGrammarSrc, grammar.MethodSLR1)

	p, err := NewLRParse(gram, grammar.MethodSLR1, tables.LR[grammar.MethodSLR1], NewTextTokenStream([]string{"id"}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Next(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReplayLeftmost_InvalidTrace(t *testing.T) {
	gram, tables := genTables(t, lrGrammarSrc, grammar.MethodSLR1)

	p, err := NewLRParse(gram, grammar.MethodSLR1, tables.LR[grammar.MethodSLR1], NewTextTokenStream([]string{"id", "add", "id"}))
	require.NoError(t, err)
	trace, err := p.Run(context.Background())
	require.NoError(t, err)

	// An LR trace lists reductions bottom-up; replaying it as a leftmost
	// derivation applies productions to the wrong non-terminals.
	_, err = ReplayLeftmost(gram, trace)
	assert.Error(t, err)
}
