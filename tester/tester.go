// Package tester runs test case files against a grammar's parsing tables. A
// test case states an input and the verdict the parsers must reach, so a
// grammar author can keep a regression suite next to the grammar itself.
package tester

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hioki9/partab/driver"
	"github.com/hioki9/partab/driver/lexer"
	"github.com/hioki9/partab/grammar"
)

type TestResult struct {
	TestCasePath string
	Method       grammar.Method
	Error        error
}

func (r *TestResult) String() string {
	if r.Error != nil {
		return fmt.Sprintf("Failed %v (%v): %v", r.TestCasePath, r.Method, r.Error)
	}
	return fmt.Sprintf("Passed %v (%v)", r.TestCasePath, r.Method)
}

type TestCaseWithMetadata struct {
	TestCase *TestCase
	FilePath string
	Error    error
}

// ListTestCases gathers the test cases under a path. A file yields one case;
// a directory is walked recursively. Unreadable or malformed entries come
// back with their error attached so the caller can report all of them.
func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		c, err := parseTestCaseFile(testPath)
		return []*TestCaseWithMetadata{
			{
				TestCase: c,
				FilePath: testPath,
				Error:    err,
			},
		}
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cs := ListTestCases(filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func parseTestCaseFile(path string) (*TestCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTestCase(f)
}

// Tester runs test cases against one build of a grammar's tables.
type Tester struct {
	Tables  *grammar.Tables
	Methods []grammar.Method
	LexSpec *lexer.Spec
	Cases   []*TestCaseWithMetadata
}

func (t *Tester) Run(ctx context.Context) []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		methods := c.TestCase.Methods
		if len(methods) == 0 {
			methods = t.Methods
		}
		for _, method := range methods {
			rs = append(rs, t.runTest(ctx, c, method))
		}
	}
	return rs
}

func (t *Tester) runTest(ctx context.Context, c *TestCaseWithMetadata, method grammar.Method) *TestResult {
	result := &TestResult{
		TestCasePath: c.FilePath,
		Method:       method,
	}

	stream, err := lexer.New(t.LexSpec, bytes.NewReader(c.TestCase.Source))
	if err != nil {
		result.Error = err
		return result
	}

	var parseErr error
	if method == grammar.MethodLL1 {
		if t.Tables.LL1 == nil {
			result.Error = fmt.Errorf("no LL(1) table was built")
			return result
		}
		p, err := driver.NewLLParse(t.Tables.Grammar, t.Tables.LL1, stream)
		if err != nil {
			result.Error = err
			return result
		}
		_, parseErr = p.Run(ctx)
	} else {
		tab, ok := t.Tables.LR[method]
		if !ok {
			result.Error = fmt.Errorf("no %v table was built", method)
			return result
		}
		p, err := driver.NewLRParse(t.Tables.Grammar, method, tab, stream)
		if err != nil {
			result.Error = err
			return result
		}
		_, parseErr = p.Run(ctx)
	}

	var rejected *driver.RejectedError
	switch {
	case parseErr == nil:
		if c.TestCase.Verdict == VerdictReject {
			result.Error = fmt.Errorf("the input was accepted, but the test case expects a rejection")
		}
	case errors.As(parseErr, &rejected):
		if c.TestCase.Verdict == VerdictAccept {
			result.Error = fmt.Errorf("the input was rejected, but the test case expects an acceptance: %v", rejected)
		}
	default:
		result.Error = parseErr
	}
	return result
}
