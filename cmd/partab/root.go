package main

import (
	"fmt"
	"os"

	"github.com/hioki9/partab/grammar"
	"github.com/hioki9/partab/spec"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "partab",
	Short: "Analyze a grammar and build its parsing tables",
	Long: `partab provides two features:
- Analyzes a grammar (FIRST/FOLLOW sets, item sets, conflicts) and builds its
  LL(1), SLR(1), LALR(1), and LR(1) parsing tables.
- Runs inputs through the table-driven parsers to test the grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

func loadGrammar(path string) (*grammar.Grammar, error) {
	ast, err := spec.ParseFile(path)
	if err != nil {
		return nil, err
	}
	b := &grammar.GrammarBuilder{
		AST: ast,
	}
	return b.Build()
}
