package tester

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/hioki9/partab/grammar"
)

// Verdict is the outcome a test case expects from the parsers.
type Verdict string

const (
	VerdictAccept = Verdict("accept")
	VerdictReject = Verdict("reject")
)

// TestCase is one parsed test case file. The file consists of three parts
// separated by delimiter lines of three or more hyphens:
//
//	addition binds looser than multiplication
//	---
//	id + id * id
//	---
//	accept
//
// The verdict line may name specific methods after the verdict; a case with
// no methods runs under every method the tester was built with.
type TestCase struct {
	Description string
	Source      []byte
	Verdict     Verdict
	Methods     []grammar.Method
}

func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("a test case consists of just three parts: %v parts found", len(parts))
	}

	verdict, methods, err := parseVerdict(string(parts[2]))
	if err != nil {
		return nil, err
	}

	return &TestCase{
		Description: string(parts[0]),
		Source:      parts[1],
		Verdict:     verdict,
		Methods:     methods,
	}, nil
}

func parseVerdict(text string) (Verdict, []grammar.Method, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("a test case needs a verdict: accept or reject")
	}
	verdict := Verdict(fields[0])
	if verdict != VerdictAccept && verdict != VerdictReject {
		return "", nil, fmt.Errorf("invalid verdict: %v (want accept or reject)", fields[0])
	}

	var methods []grammar.Method
	for _, field := range fields[1:] {
		ms, err := grammar.ParseMethods(field)
		if err != nil {
			return "", nil, err
		}
		methods = append(methods, ms...)
	}
	return verdict, methods, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

func splitIntoParts(r io.Reader) ([][]byte, error) {
	var parts [][]byte
	buf := &bytes.Buffer{}
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			parts = append(parts, append([]byte{}, bytes.TrimSpace(buf.Bytes())...))
			buf.Reset()
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	parts = append(parts, append([]byte{}, bytes.TrimSpace(buf.Bytes())...))
	return parts, nil
}
