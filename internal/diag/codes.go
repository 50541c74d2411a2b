package diag

import "fmt"

// Code is a stable numeric diagnostic identifier. The thousands digit selects
// the family rendered by ID.
type Code uint16

const (
	UnknownCode Code = 0

	// Call descriptor syntax.
	SynInfo            Code = 2000
	SynUnexpectedToken Code = 2001
	SynUnclosedParen   Code = 2002
	SynInvalidType     Code = 2003
	SynEmptyArgument   Code = 2004

	// Semantic checks of calls.
	SemaInfo            Code = 3000
	SemaUnknownFunction Code = 3001
	SemaArityExact      Code = 3002
	SemaArityAtLeast    Code = 3003
	SemaArityAtMost     Code = 3004
	SemaInvalidShape    Code = 3005
	SemaTypeMismatch    Code = 3006
	SemaPropArity       Code = 3007
	SemaPropNotLiteral  Code = 3008
	SemaUnknownProperty Code = 3009
	SemaPropDisabled    Code = 3010

	IOLoadFileError Code = 4000

	// Catalog configuration.
	CfgInfo              Code = 5000
	CfgInvalidSignature  Code = 5001
	CfgDuplicateFunction Code = 5002
	CfgInvalidType       Code = 5003
	CfgMissingKey        Code = 5004
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	SynInfo:              "Syntax information",
	SynUnexpectedToken:   "Unexpected token",
	SynUnclosedParen:     "Unclosed parenthesis",
	SynInvalidType:       "Invalid type label",
	SynEmptyArgument:     "Empty argument",
	SemaInfo:             "Semantic information",
	SemaUnknownFunction:  "Unknown function",
	SemaArityExact:       "Wrong number of arguments",
	SemaArityAtLeast:     "Too few arguments",
	SemaArityAtMost:      "Too many arguments",
	SemaInvalidShape:     "Invalid argument shape",
	SemaTypeMismatch:     "Argument type mismatch",
	SemaPropArity:        "prop() arity",
	SemaPropNotLiteral:   "prop() requires a string literal",
	SemaUnknownProperty:  "Unknown property",
	SemaPropDisabled:     "Property is disabled",
	IOLoadFileError:      "I/O load file error",
	CfgInfo:              "Configuration information",
	CfgInvalidSignature:  "Invalid function signature",
	CfgDuplicateFunction: "Duplicate function",
	CfgInvalidType:       "Invalid type in configuration",
	CfgMissingKey:        "Missing configuration key",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
