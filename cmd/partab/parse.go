package main

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hioki9/partab/driver"
	"github.com/hioki9/partab/driver/lexer"
	"github.com/hioki9/partab/grammar"
)

var parseFlags = struct {
	method         *string
	input          *string
	source         *string
	trace          *bool
	derivation     *bool
	interactive    *bool
	iterationLimit *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "parse <grammar file path>",
		Short: "Parse an input with the table-driven parsers",
		Example: `  partab parse grammar.txt --input "id + id * id" --method both --trace
  partab parse grammar.txt -i`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	parseFlags.method = cmd.Flags().StringP("method", "m", "both", "parsing methods: ll1, slr1, lalr1, lr1, both, or all")
	parseFlags.input = cmd.Flags().String("input", "", "input text (default stdin or --source)")
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.trace = cmd.Flags().Bool("trace", false, "print every parser action")
	parseFlags.derivation = cmd.Flags().Bool("derivation", false, "print the replayed derivation")
	parseFlags.interactive = cmd.Flags().BoolP("interactive", "i", false, "read inputs interactively")
	parseFlags.iterationLimit = cmd.Flags().Int("iteration-limit", 0, "bound for the fixed-point computations (0 uses the default)")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	gram, err := loadGrammar(args[0])
	if err != nil {
		return err
	}
	methods, err := grammar.ParseMethods(*parseFlags.method)
	if err != nil {
		return err
	}

	tables, err := grammar.BuildTables(cmd.Context(), gram, methods, grammar.WithIterationLimit(*parseFlags.iterationLimit))
	if err != nil {
		return err
	}
	lexSpec, err := lexer.CompileSpec(gram)
	if err != nil {
		return err
	}

	if *parseFlags.interactive {
		return runREPL(cmd, tables, methods, lexSpec)
	}

	input := *parseFlags.input
	if input == "" {
		src := os.Stdin
		if *parseFlags.source != "" {
			f, err := os.Open(*parseFlags.source)
			if err != nil {
				return fmt.Errorf("cannot open the source file %s: %w", *parseFlags.source, err)
			}
			defer f.Close()
			src = f
		}
		data, err := ioutil.ReadAll(src)
		if err != nil {
			return err
		}
		input = string(data)
	}

	return parseInput(cmd, tables, methods, lexSpec, input)
}

func runREPL(cmd *cobra.Command, tables *grammar.Tables, methods []grammar.Method, lexSpec *lexer.Spec) error {
	repl, err := readline.New("partab> ")
	if err != nil {
		return err
	}
	defer repl.Close()

	pterm.Info.Println("enter an input per line; quit with <ctrl>D")
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF
			return nil
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if err := parseInput(cmd, tables, methods, lexSpec, line); err != nil {
			pterm.Error.Println(err.Error())
		}
	}
}

func parseInput(cmd *cobra.Command, tables *grammar.Tables, methods []grammar.Method, lexSpec *lexer.Spec, input string) error {
	for _, method := range methods {
		if err := parseWithMethod(cmd, tables, method, lexSpec, input); err != nil {
			return err
		}
	}
	return nil
}

func parseWithMethod(cmd *cobra.Command, tables *grammar.Tables, method grammar.Method, lexSpec *lexer.Spec, input string) error {
	stream, err := lexer.New(lexSpec, strings.NewReader(input))
	if err != nil {
		return err
	}

	var trace *driver.Trace
	var parseErr error
	if method == grammar.MethodLL1 {
		p, err := driver.NewLLParse(tables.Grammar, tables.LL1, stream)
		if err != nil {
			return err
		}
		trace, parseErr = p.Run(cmd.Context())
	} else {
		p, err := driver.NewLRParse(tables.Grammar, method, tables.LR[method], stream)
		if err != nil {
			return err
		}
		trace, parseErr = p.Run(cmd.Context())
	}

	var rejected *driver.RejectedError
	switch {
	case parseErr == nil:
		pterm.Success.Println(fmt.Sprintf("%v: accepted", method))
	case errors.As(parseErr, &rejected):
		pterm.Error.Println(rejected.Error())
	default:
		return parseErr
	}

	if *parseFlags.trace && trace != nil {
		for _, step := range trace.Steps {
			pterm.Println("  " + step.String())
		}
	}
	if *parseFlags.derivation && parseErr == nil && trace != nil {
		var forms []string
		var err error
		if method == grammar.MethodLL1 {
			forms, err = driver.ReplayLeftmost(tables.Grammar, trace)
		} else {
			forms, err = driver.ReplayRightmost(tables.Grammar, trace)
		}
		if err != nil {
			return err
		}
		for _, form := range forms {
			pterm.Println("  " + form)
		}
	}

	return nil
}
