package tester

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hioki9/partab/driver/lexer"
	"github.com/hioki9/partab/grammar"
	"github.com/hioki9/partab/spec"
)

func TestParseTestCase(t *testing.T) {
	tests := []struct {
		caption  string
		src      string
		tc       *TestCase
		parseErr bool
	}{
		{
			caption: "a test case consists of a description, an input, and a verdict",
			src: `addition
---
id + id
---
accept
`,
			tc: &TestCase{
				Description: "addition",
				Source:      []byte("id + id"),
				Verdict:     VerdictAccept,
			},
		},
		{
			caption: "a verdict may pin the methods to run under",
			src: `chained comparison
---
id == id == id
---
reject slr1 lalr1
`,
			tc: &TestCase{
				Description: "chained comparison",
				Source:      []byte("id == id == id"),
				Verdict:     VerdictReject,
				Methods:     []grammar.Method{grammar.MethodSLR1, grammar.MethodLALR1},
			},
		},
		{
			caption: "a description and an input may span multiple lines",
			src: `
addition
and multiplication
---
id + id
* id
---
accept
`,
			tc: &TestCase{
				Description: "addition\nand multiplication",
				Source:      []byte("id + id\n* id"),
				Verdict:     VerdictAccept,
			},
		},
		{
			caption: "a test case needs exactly three parts",
			src: `addition
---
id + id
`,
			parseErr: true,
		},
		{
			caption: "a verdict must be accept or reject",
			src: `addition
---
id + id
---
maybe
`,
			parseErr: true,
		},
		{
			caption: "a verdict must not be empty",
			src: `addition
---
id + id
---
`,
			parseErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.caption, func(t *testing.T) {
			tc, err := ParseTestCase(strings.NewReader(tt.src))
			if tt.parseErr {
				if err == nil {
					t.Fatalf("an error must occur")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tc.Description != tt.tc.Description {
				t.Fatalf("unexpected description; want: %#v, got: %#v", tt.tc.Description, tc.Description)
			}
			if string(tc.Source) != string(tt.tc.Source) {
				t.Fatalf("unexpected source; want: %#v, got: %#v", string(tt.tc.Source), string(tc.Source))
			}
			if tc.Verdict != tt.tc.Verdict {
				t.Fatalf("unexpected verdict; want: %v, got: %v", tt.tc.Verdict, tc.Verdict)
			}
			if len(tc.Methods) != len(tt.tc.Methods) {
				t.Fatalf("unexpected methods; want: %v, got: %v", tt.tc.Methods, tc.Methods)
			}
			for i, m := range tc.Methods {
				if m != tt.tc.Methods[i] {
					t.Fatalf("unexpected methods; want: %v, got: %v", tt.tc.Methods, tc.Methods)
				}
			}
		})
	}
}

func TestTesterRun(t *testing.T) {
	ast, err := spec.Parse(strings.NewReader(`
%Terminals: id + *
%NonTerminals: E T F
%Start: E
%Productions:
E -> E + T | T
T -> T * F | F
F -> id
`))
	if err != nil {
		t.Fatal(err)
	}
	b := &grammar.GrammarBuilder{
		AST: ast,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	methods := []grammar.Method{grammar.MethodSLR1, grammar.MethodLALR1}
	tables, err := grammar.BuildTables(context.Background(), gram, methods)
	if err != nil {
		t.Fatal(err)
	}
	lexSpec, err := lexer.CompileSpec(gram)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name    string
		source  string
		verdict Verdict
		pass    bool
	}{
		{name: "accepted input", source: "id + id * id", verdict: VerdictAccept, pass: true},
		{name: "rejected input", source: "id + * id", verdict: VerdictReject, pass: true},
		{name: "wrong accept expectation", source: "id +", verdict: VerdictAccept, pass: false},
		{name: "wrong reject expectation", source: "id", verdict: VerdictReject, pass: false},
	}
	metas := []*TestCaseWithMetadata{}
	for _, c := range cases {
		metas = append(metas, &TestCaseWithMetadata{
			TestCase: &TestCase{
				Description: c.name,
				Source:      []byte(c.source),
				Verdict:     c.verdict,
			},
			FilePath: c.name,
		})
	}

	tester := &Tester{
		Tables:  tables,
		Methods: methods,
		LexSpec: lexSpec,
		Cases:   metas,
	}
	rs := tester.Run(context.Background())

	// Every case runs once per method.
	if len(rs) != len(cases)*len(methods) {
		t.Fatalf("unexpected result count; want: %v, got: %v", len(cases)*len(methods), len(rs))
	}
	for i, r := range rs {
		want := cases[i/len(methods)]
		if (r.Error == nil) != want.pass {
			t.Fatalf("unexpected result for %v (%v): %v", r.TestCasePath, r.Method, r)
		}
	}
}

func TestListTestCases(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	writeFile("add.txt", `addition
---
id + id
---
accept
`)
	writeFile("broken.txt", `missing parts
`)

	cases := ListTestCases(dir)
	if len(cases) != 2 {
		t.Fatalf("unexpected case count; want: %v, got: %v", 2, len(cases))
	}
	byName := map[string]*TestCaseWithMetadata{}
	for _, c := range cases {
		byName[filepath.Base(c.FilePath)] = c
	}
	if c := byName["add.txt"]; c.Error != nil || c.TestCase == nil || c.TestCase.Verdict != VerdictAccept {
		t.Fatalf("unexpected case: %+v", c)
	}
	if c := byName["broken.txt"]; c.Error == nil {
		t.Fatalf("a malformed test case must carry an error")
	}

	missing := ListTestCases(filepath.Join(dir, "no_such_path"))
	if len(missing) != 1 || missing[0].Error == nil {
		t.Fatalf("a missing path must carry an error")
	}
}
