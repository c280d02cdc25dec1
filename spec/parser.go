package spec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	verr "github.com/hioki9/partab/error"
)

var (
	parseErrUnknownSection   = fmt.Errorf("unknown section")
	parseErrMissingArrow     = fmt.Errorf("a production needs '->'")
	parseErrMissingLHS       = fmt.Errorf("a production needs a left-hand side")
	parseErrStrayProduction  = fmt.Errorf("a production appears outside the %%Productions section")
	parseErrLoneEpsilon      = fmt.Errorf("epsilon must form an alternative on its own")
	parseErrDuplicateStart   = fmt.Errorf("%%Start appears more than once")
	parseErrMissingStartName = fmt.Errorf("%%Start needs a symbol name")
)

const epsilonName = "ε"

// normalizeSymbol maps the accepted epsilon spellings onto the canonical ε.
// Single letters are left alone so that non-terminals like E keep working.
func normalizeSymbol(text string) string {
	s := strings.TrimSpace(text)
	switch strings.ToLower(s) {
	case "epsilon", "eps":
		return epsilonName
	}
	return s
}

// ParseFile reads a grammar file from the filesystem. Diagnostics carry the
// path so they can quote the offending line.
func ParseFile(path string) (*RootNode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	root, err := Parse(f)
	if err != nil {
		if errs, ok := err.(verr.SpecErrors); ok {
			for _, e := range errs {
				e.FilePath = path
				e.SourceName = path
			}
		}
		return nil, err
	}
	return root, nil
}

// Parse reads the sectioned grammar format:
//
//	# comment
//	%Terminals: id + * ( )
//	%NonTerminals: E T F
//	%Start: E
//	%Productions:
//	E -> E + T | T
//	%Left: + -
//	%Left: * /
//
// Section headers take either the "%Key: payload" or the "%Key payload"
// form. Alternatives are separated by '|'; epsilon is spelled ε, epsilon,
// or eps.
func Parse(src io.Reader) (*RootNode, error) {
	root := &RootNode{}
	var errs verr.SpecErrors

	section := ""
	row := 0
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		row++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "%") {
			header, payload := splitSection(line)
			section = header
			switch header {
			case "%Terminals":
				for _, t := range strings.Fields(payload) {
					root.Terminals = append(root.Terminals, &SymbolNode{
						Name: normalizeSymbol(t),
						Row:  row,
					})
				}
			case "%NonTerminals":
				for _, nt := range strings.Fields(payload) {
					root.NonTerminals = append(root.NonTerminals, &SymbolNode{
						Name: normalizeSymbol(nt),
						Row:  row,
					})
				}
			case "%Start":
				name := strings.TrimSpace(payload)
				switch {
				case root.Start != nil:
					errs = append(errs, &verr.SpecError{
						Cause: parseErrDuplicateStart,
						Row:   row,
					})
				case name == "":
					errs = append(errs, &verr.SpecError{
						Cause: parseErrMissingStartName,
						Row:   row,
					})
				default:
					root.Start = &SymbolNode{
						Name: normalizeSymbol(name),
						Row:  row,
					}
				}
			case "%Productions":
				// Subsequent lines up to the next section header are
				// production rules.
			case "%Left", "%Right", "%NonAssoc":
				assoc := map[string]AssocKind{
					"%Left":     AssocKindLeft,
					"%Right":    AssocKindRight,
					"%NonAssoc": AssocKindNonAssoc,
				}[header]
				prec := &PrecedenceNode{
					Assoc: assoc,
					Row:   row,
				}
				for _, t := range strings.Fields(payload) {
					prec.Symbols = append(prec.Symbols, normalizeSymbol(t))
				}
				root.Precedences = append(root.Precedences, prec)
			default:
				errs = append(errs, &verr.SpecError{
					Cause:  parseErrUnknownSection,
					Detail: header,
					Row:    row,
				})
			}
			continue
		}

		if section != "%Productions" {
			errs = append(errs, &verr.SpecError{
				Cause:  parseErrStrayProduction,
				Detail: line,
				Row:    row,
			})
			continue
		}

		prod, err := parseProduction(line, row)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		root.Productions = append(root.Productions, prod)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return root, nil
}

func splitSection(line string) (string, string) {
	if i := strings.Index(line, ":"); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
	}
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

func parseProduction(line string, row int) (*ProductionNode, *verr.SpecError) {
	if !strings.Contains(line, "->") {
		return nil, &verr.SpecError{
			Cause:  parseErrMissingArrow,
			Detail: line,
			Row:    row,
		}
	}

	parts := strings.SplitN(line, "->", 2)
	lhs := normalizeSymbol(parts[0])
	if lhs == "" {
		return nil, &verr.SpecError{
			Cause:  parseErrMissingLHS,
			Detail: line,
			Row:    row,
		}
	}

	prod := &ProductionNode{
		LHS: lhs,
		Row: row,
	}
	for _, alt := range strings.Split(parts[1], "|") {
		symbols := []string{}
		epsilons := 0
		for _, tok := range strings.Fields(alt) {
			s := normalizeSymbol(tok)
			if s == epsilonName {
				epsilons++
				continue
			}
			symbols = append(symbols, s)
		}
		// An explicit epsilon stands for the whole alternative; mixing it
		// with other symbols or repeating it is malformed.
		if epsilons > 1 || (epsilons == 1 && len(symbols) > 0) {
			return nil, &verr.SpecError{
				Cause:  parseErrLoneEpsilon,
				Detail: strings.TrimSpace(alt),
				Row:    row,
			}
		}
		prod.Alternatives = append(prod.Alternatives, &AlternativeNode{
			Symbols: symbols,
			Row:     row,
		})
	}

	return prod, nil
}
