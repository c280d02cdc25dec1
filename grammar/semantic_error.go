package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoProduction      = newSemanticError("a grammar needs at least one production")
	semErrNoStart           = newSemanticError("a grammar needs a start symbol")
	semErrUndefinedSym      = newSemanticError("undefined symbol")
	semErrUndefinedStart    = newSemanticError("the start symbol must be a declared non-terminal")
	semErrMissingProduction = newSemanticError("a non-terminal needs at least one production")
	semErrDuplicateSym      = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	semErrDuplicateProd     = newSemanticError("duplicate production")
	semErrReservedName      = newSemanticError("the name is reserved for the end marker")
	semErrPrecOnNonTerm     = newSemanticError("only terminal symbols may carry precedence")
	semErrDuplicatePrec     = newSemanticError("a terminal may appear in at most one precedence level")
)
