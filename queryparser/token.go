// Package queryparser implements the textual query language's lexer
// and recursive-descent parser, targeting the same queryir.QueryIR
// the fluent builder produces. Grounded on the teacher's pql package
// (pql/scanner.go, pql/token.go, pql/parser.go): a hand-rolled
// io.RuneScanner-backed lexer feeding a single-token-lookahead
// descent parser, rather than the PEG-generated alternative the
// teacher also carries.
package queryparser

import "strings"

// Token identifies a lexical token kind.
type Token int

const (
	INVALID Token = iota
	EOF

	IDENT
	STRING
	NUMBER_INT
	NUMBER_FLOAT

	// structural
	DOT
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACK
	RBRACK
	COMMA
	COLON

	// operators
	EQ
	NEQ
	GT
	GTE
	LT
	LTE
	TILDE

	keywordBeg
	AND
	OR
	NOT
	IN
	CONTAINS
	STARTS_WITH
	EXISTS
	TRUE
	FALSE
	NULL
	ASC
	DESC
	COUNT
	SUM
	AVG
	MIN
	MAX
	keywordEnd
)

var tokenNames = [...]string{
	INVALID: "INVALID", EOF: "EOF",
	IDENT: "IDENT", STRING: "STRING", NUMBER_INT: "NUMBER_INT", NUMBER_FLOAT: "NUMBER_FLOAT",
	DOT: ".", LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACK: "[", RBRACK: "]",
	COMMA: ",", COLON: ":",
	EQ: "=", NEQ: "!=", GT: ">", GTE: ">=", LT: "<", LTE: "<=", TILDE: "~",
	AND: "and", OR: "or", NOT: "not", IN: "in", CONTAINS: "contains", STARTS_WITH: "startsWith",
	EXISTS: "exists", TRUE: "true", FALSE: "false", NULL: "null",
	ASC: "asc", DESC: "desc", COUNT: "count", SUM: "sum", AVG: "avg", MIN: "min", MAX: "max",
}

func (t Token) String() string {
	if int(t) < 0 || int(t) >= len(tokenNames) {
		return "UNKNOWN"
	}
	return tokenNames[t]
}

var keywords map[string]Token

func init() {
	keywords = make(map[string]Token)
	for tok := keywordBeg + 1; tok < keywordEnd; tok++ {
		keywords[strings.ToLower(tokenNames[tok])] = tok
	}
}

// Lookup returns the keyword token for lit, or IDENT if lit is not a
// reserved word.
func Lookup(lit string) Token {
	if tok, ok := keywords[strings.ToLower(lit)]; ok {
		return tok
	}
	return IDENT
}

// Pos is a line/column position in the source, matching the
// teacher's pql.Pos.
type Pos struct {
	Line int
	Char int
}

// operationNames is the closed set of operation keywords the parser
// uses to disambiguate a store reference from an operation chain
// (spec §4.10).
var operationNames = map[string]bool{
	"filter": true, "pluck": true, "orderBy": true, "limit": true, "skip": true,
	"groupBy": true, "aggregate": true, "insert": true, "set": true, "delete": true,
	"count": true, "get": true, "exists": true,
}
