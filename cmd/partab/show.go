package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hioki9/partab/grammar"
)

var showFlags = struct {
	method         *string
	items          *bool
	iterationLimit *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "show <grammar file path>",
		Short:   "Show the analysis and parsing tables of a grammar",
		Example: `  partab show grammar.txt --method lalr1 --items`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	showFlags.method = cmd.Flags().StringP("method", "m", "all", "construction methods: ll1, slr1, lalr1, lr1, both, or all")
	showFlags.items = cmd.Flags().Bool("items", false, "show the kernel items of every automaton state")
	showFlags.iterationLimit = cmd.Flags().Int("iteration-limit", 0, "bound for the fixed-point computations (0 uses the default)")
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	gram, err := loadGrammar(args[0])
	if err != nil {
		return err
	}
	methods, err := grammar.ParseMethods(*showFlags.method)
	if err != nil {
		return err
	}

	tables, err := grammar.BuildTables(cmd.Context(), gram, methods, grammar.WithIterationLimit(*showFlags.iterationLimit))
	if err != nil {
		return err
	}
	rep, err := tables.Report()
	if err != nil {
		return err
	}

	renderGrammar(rep)
	renderSets(rep)
	if rep.LL1 != nil {
		renderLL1(rep.LL1)
	}
	for _, lr := range rep.LRs {
		renderLR(lr, *showFlags.items)
	}

	return nil
}

func renderGrammar(rep *grammar.Report) {
	pterm.DefaultSection.Println("Grammar")

	data := pterm.TableData{
		{"#", "production", "prec", "assoc"},
	}
	for _, prod := range rep.Productions {
		prec := ""
		if prod.Precedence > 0 {
			prec = fmt.Sprintf("%v", prod.Precedence)
		}
		data = append(data, []string{
			fmt.Sprintf("%v", prod.Number),
			prod.Text,
			prec,
			prod.Associativity,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderSets(rep *grammar.Report) {
	pterm.DefaultSection.Println("FIRST / FOLLOW")

	data := pterm.TableData{
		{"non-terminal", "nullable", "FIRST", "FOLLOW"},
	}
	for _, nt := range rep.NonTerminals {
		nullable := ""
		if nt.Nullable {
			nullable = "yes"
		}
		data = append(data, []string{
			nt.Name,
			nullable,
			strings.Join(nt.First, " "),
			strings.Join(nt.Follow, " "),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderLL1(rep *grammar.LL1Report) {
	pterm.DefaultSection.Println("LL(1) table")

	data := pterm.TableData{
		{"non-terminal", "lookahead", "production"},
	}
	for _, cell := range rep.Cells {
		data = append(data, []string{
			cell.NonTerminal,
			cell.Symbol,
			fmt.Sprintf("#%v %v", cell.Production, cell.Text),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	if len(rep.Conflicts) == 0 {
		pterm.Success.Println("no conflicts")
		return
	}
	pterm.Warning.Println(fmt.Sprintf("%v conflict(s)", len(rep.Conflicts)))
	data = pterm.TableData{
		{"non-terminal", "lookahead", "adopted", "rejected"},
	}
	for _, c := range rep.Conflicts {
		data = append(data, []string{
			c.NonTerminal,
			c.Symbol,
			fmt.Sprintf("#%v", c.AdoptedProd),
			fmt.Sprintf("#%v", c.RejectedProd),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderLR(rep *grammar.LRReport, showItems bool) {
	pterm.DefaultSection.Println(fmt.Sprintf("%v table (%v states)", rep.Method, len(rep.States)))
	if rep.CompressedActionCells > 0 {
		pterm.Println(fmt.Sprintf("ACTION cells: %v (%v compressed)", rep.ActionCells, rep.CompressedActionCells))
	}

	for _, state := range rep.States {
		if showItems {
			pterm.Println(fmt.Sprintf("state %v", state.Number))
			for _, item := range state.Kernel {
				pterm.Println(fmt.Sprintf("    %v", item))
			}
			for _, item := range state.Closure {
				pterm.Println(fmt.Sprintf("      %v", item))
			}
		}

		actions := []string{}
		for _, tr := range state.Shift {
			actions = append(actions, fmt.Sprintf("%v → s%v", tr.Symbol, tr.State))
		}
		for _, red := range state.Reduce {
			actions = append(actions, fmt.Sprintf("%v → r%v", strings.Join(red.LookAhead, "/"), red.Production))
		}
		for _, tr := range state.GoTo {
			actions = append(actions, fmt.Sprintf("%v → g%v", tr.Symbol, tr.State))
		}
		if showItems && len(actions) > 0 {
			pterm.Println(fmt.Sprintf("    %v", strings.Join(actions, ", ")))
		}
	}

	if len(rep.SRConflicts) == 0 && len(rep.RRConflicts) == 0 {
		pterm.Success.Println("no conflicts")
		return
	}

	if len(rep.SRConflicts) > 0 {
		pterm.Warning.Println(fmt.Sprintf("%v shift/reduce conflict(s)", len(rep.SRConflicts)))
		data := pterm.TableData{
			{"state", "symbol", "shift", "reduce", "adopted", "resolved by"},
		}
		for _, c := range rep.SRConflicts {
			data = append(data, []string{
				fmt.Sprintf("%v", c.State),
				c.Symbol,
				fmt.Sprintf("s%v", c.ShiftState),
				fmt.Sprintf("r%v", c.ReduceProd),
				c.Adopted,
				c.ResolvedBy,
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
	if len(rep.RRConflicts) > 0 {
		pterm.Warning.Println(fmt.Sprintf("%v reduce/reduce conflict(s)", len(rep.RRConflicts)))
		data := pterm.TableData{
			{"state", "symbol", "production 1", "production 2", "adopted", "resolved by"},
		}
		for _, c := range rep.RRConflicts {
			data = append(data, []string{
				fmt.Sprintf("%v", c.State),
				c.Symbol,
				fmt.Sprintf("r%v", c.Production1),
				fmt.Sprintf("r%v", c.Production2),
				fmt.Sprintf("r%v", c.AdoptedProd),
				c.ResolvedBy,
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
}
