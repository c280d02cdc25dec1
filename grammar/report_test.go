package grammar

import (
	"context"
	"encoding/json"
	"testing"
)

func TestTablesReport(t *testing.T) {
	gram := genGrammar(t, `
%Terminals: id add mul
%NonTerminals: E
%Start: E
%Productions:
E -> E add E | E mul E | id
%Left: add
%Left: mul
`)
	tables, err := BuildTables(context.Background(), gram, []Method{MethodLL1, MethodSLR1, MethodLALR1})
	if err != nil {
		t.Fatal(err)
	}
	report, err := tables.Report()
	if err != nil {
		t.Fatal(err)
	}

	if report.Fingerprint != tables.Fingerprint {
		t.Fatalf("the report must carry the build fingerprint")
	}

	terms := map[string]*TerminalReport{}
	for _, term := range report.Terminals {
		terms[term.Name] = term
	}
	add, ok := terms["add"]
	if !ok {
		t.Fatalf("terminal add is missing from the report")
	}
	mul, ok := terms["mul"]
	if !ok {
		t.Fatalf("terminal mul is missing from the report")
	}
	if add.Associativity != "left" || mul.Associativity != "left" {
		t.Fatalf("unexpected associativity: add: %v, mul: %v", add.Associativity, mul.Associativity)
	}
	if mul.Precedence <= add.Precedence {
		t.Fatalf("mul must bind tighter than add: %v <= %v", mul.Precedence, add.Precedence)
	}
	// The end marker never shows up as a terminal of the grammar.
	if _, ok := terms["$"]; ok {
		t.Fatalf("the end marker must not be reported as a terminal")
	}

	if len(report.NonTerminals) != 1 || report.NonTerminals[0].Name != "E" {
		t.Fatalf("unexpected non-terminals: %v", report.NonTerminals)
	}
	if report.NonTerminals[0].Nullable {
		t.Fatalf("E must not be nullable")
	}

	// The augmented start production is internal bookkeeping.
	for _, prod := range report.Productions {
		if prod.Number == int(ProductionNumStart) {
			t.Fatalf("the augmented start production must not be reported")
		}
	}

	if report.LL1 == nil {
		t.Fatalf("the LL(1) report is missing")
	}
	if len(report.LL1.Conflicts) == 0 {
		t.Fatalf("the ambiguous grammar must report LL(1) conflicts")
	}

	if len(report.LRs) != 2 {
		t.Fatalf("unexpected LR report count; want: %v, got: %v", 2, len(report.LRs))
	}
	// LR reports come back in a fixed method order.
	if report.LRs[0].Method != "slr1" || report.LRs[1].Method != "lalr1" {
		t.Fatalf("unexpected LR report order: %v, %v", report.LRs[0].Method, report.LRs[1].Method)
	}
	for _, lr := range report.LRs {
		if len(lr.States) == 0 {
			t.Fatalf("%v: the state list is empty", lr.Method)
		}
		if lr.States[0].Number != 0 {
			t.Fatalf("%v: states must start at 0", lr.Method)
		}
		// The initial state's kernel is the augmented start item alone; its
		// closure holds the user's productions dotted at the left edge.
		if len(lr.States[0].Kernel) != 1 {
			t.Fatalf("%v: unexpected initial kernel: %v", lr.Method, lr.States[0].Kernel)
		}
		if len(lr.States[0].Closure) == 0 {
			t.Fatalf("%v: the initial state's closure items are missing", lr.Method)
		}
		if len(lr.SRConflicts) == 0 {
			t.Fatalf("%v: the ambiguous grammar must report shift/reduce conflicts", lr.Method)
		}
		for _, c := range lr.SRConflicts {
			if c.ResolvedBy == "" || c.Adopted == "" {
				t.Fatalf("%v: a resolved conflict must name its resolution", lr.Method)
			}
		}
		// The compressed size is a footprint, not a guarantee: on a table
		// this small the displacement bounds can outweigh the savings.
		if lr.ActionCells <= 0 || lr.CompressedActionCells <= 0 {
			t.Fatalf("%v: table size statistics are missing", lr.Method)
		}
	}

	// The report is the CLI's JSON surface; it must serialize cleanly.
	if _, err := json.Marshal(report); err != nil {
		t.Fatal(err)
	}
}

func TestTablesReportDeterministic(t *testing.T) {
	src := lrArithSrc + `
%Left: add
%Left: mul
`
	methods := []Method{MethodLL1, MethodSLR1, MethodLALR1, MethodLR1}

	genReportJSON := func() []byte {
		t.Helper()
		gram := genGrammar(t, src)
		tables, err := BuildTables(context.Background(), gram, methods)
		if err != nil {
			t.Fatal(err)
		}
		report, err := tables.Report()
		if err != nil {
			t.Fatal(err)
		}
		raw, err := json.Marshal(report)
		if err != nil {
			t.Fatal(err)
		}
		return raw
	}

	raw1 := genReportJSON()
	raw2 := genReportJSON()
	if string(raw1) != string(raw2) {
		t.Fatalf("consecutive builds must render identical reports")
	}
}
