package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hioki9/partab/driver/lexer"
	"github.com/hioki9/partab/grammar"
	"github.com/hioki9/partab/tester"
)

var testFlags = struct {
	method *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path> <test file path>|<test directory path>",
		Short:   "Run the test cases of a grammar",
		Example: `  partab test grammar.txt testdata`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	testFlags.method = cmd.Flags().StringP("method", "m", "both", "parsing methods: ll1, slr1, lalr1, lr1, both, or all")
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	gram, err := loadGrammar(args[0])
	if err != nil {
		return err
	}
	methods, err := grammar.ParseMethods(*testFlags.method)
	if err != nil {
		return err
	}

	cases := tester.ListTestCases(args[1])
	caseErrOccurred := false
	for _, c := range cases {
		if c.Error != nil {
			fmt.Fprintf(os.Stderr, "cannot read the test case %v: %v\n", c.FilePath, c.Error)
			caseErrOccurred = true
		}
	}
	if caseErrOccurred {
		return errors.New("cannot run the tests")
	}

	tables, err := grammar.BuildTables(cmd.Context(), gram, methods)
	if err != nil {
		return err
	}
	lexSpec, err := lexer.CompileSpec(gram)
	if err != nil {
		return err
	}

	t := &tester.Tester{
		Tables:  tables,
		Methods: methods,
		LexSpec: lexSpec,
		Cases:   cases,
	}
	failed := false
	for _, r := range t.Run(cmd.Context()) {
		if r.Error != nil {
			pterm.Error.Println(r.String())
			failed = true
			continue
		}
		pterm.Success.Println(r.String())
	}
	if failed {
		return errors.New("test failed")
	}
	return nil
}
