package queryparser

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shinydb/shinydb-go/internal/errors"
	"github.com/shinydb/shinydb-go/queryir"
)

// Parser is a single-token-lookahead recursive-descent parser over
// the textual query language, grounded on pql.NewParser/pql.Parser.Parse
// (pql/parser.go). The grammar's only ambiguity — namespace vs. the
// first operation name — is resolved with an explicit scan/unscan
// instead of full packrat backtracking, since Scanner.Unscan already
// gives single-step save/restore (spec §4.10).
type Parser struct {
	s *Scanner
}

// NewParser returns a Parser reading a query from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{s: NewScanner(r)}
}

// Parse parses a full query: a store reference followed by zero or
// more dot-prefixed operations, and returns the resulting IR.
func (p *Parser) Parse() (*queryir.QueryIR, error) {
	ir := &queryir.QueryIR{}

	space, store, err := p.parseStoreRef()
	if err != nil {
		return nil, err
	}
	ir.Space = space
	ir.Store = store

	for {
		tok, _, _ := p.s.Peek()
		if tok != DOT {
			break
		}
		p.s.Scan()
		if err := p.parseOperation(ir); err != nil {
			return nil, err
		}
	}

	if tok, pos, lit := p.s.Scan(); tok != EOF {
		return nil, p.errAt(ErrUnexpectedToken, pos, "unexpected trailing token %q", lit)
	}
	return ir, nil
}

// parseStoreRef consumes the leading identifier X and, per spec
// §4.10, looks one ".Y" ahead: if Y is a reserved operation name, the
// dot and Y are pushed back onto the scanner and X alone is the
// store; otherwise X.Y is space.store.
func (p *Parser) parseStoreRef() (space, store *string, err error) {
	tok, pos, litX := p.s.Scan()
	if tok != IDENT {
		return nil, nil, p.errAt(ErrExpectedIdentifier, pos, "expected a store reference, got %q", litX)
	}

	dotTok, _, _ := p.s.Scan()
	if dotTok != DOT {
		p.s.Unscan()
		storeVal := litX
		return nil, &storeVal, nil
	}

	yTok, yPos, litY := p.s.Scan()
	if yTok == IDENT && !operationNames[litY] {
		spaceVal, storeVal := litX, litY
		return &spaceVal, &storeVal, nil
	}
	if yTok != IDENT && !operationNames[litY] {
		return nil, nil, p.errAt(ErrExpectedIdentifier, yPos, "expected an identifier after '.', got %q", litY)
	}

	// Y is an operation name: restore the dot and Y for the operation loop.
	p.s.Unscan()
	p.s.Unscan()
	storeVal := litX
	return nil, &storeVal, nil
}

func (p *Parser) parseOperation(ir *queryir.QueryIR) error {
	tok, pos, name := p.s.Scan()
	if tok != IDENT && !operationNames[name] {
		return p.errAt(ErrExpectedIdentifier, pos, "expected an operation name, got %q", name)
	}
	if !operationNames[name] {
		return p.errAt(ErrUnknownOperation, pos, "unknown operation %q", name)
	}
	if err := p.expect(LPAREN); err != nil {
		return err
	}

	switch name {
	case "filter":
		if err := p.parseFilterArgs(ir); err != nil {
			return err
		}
	case "pluck":
		fields, err := p.parseIdentList()
		if err != nil {
			return err
		}
		ir.Projection = fields
	case "orderBy":
		if err := p.parseOrderByArgs(ir); err != nil {
			return err
		}
	case "limit":
		n, err := p.parseUintArg()
		if err != nil {
			return err
		}
		ir.Limit = &n
	case "skip":
		n, err := p.parseUintArg()
		if err != nil {
			return err
		}
		ir.Skip = &n
	case "groupBy":
		fields, err := p.parseIdentList()
		if err != nil {
			return err
		}
		ir.GroupBy = append(ir.GroupBy, fields...)
	case "aggregate":
		if err := p.parseAggregateArgs(ir); err != nil {
			return err
		}
	case "insert":
		payload, err := p.parseBraceBody()
		if err != nil {
			return err
		}
		ir.Mutation = &queryir.Mutation{Kind: queryir.MutationInsert, Payload: payload}
	case "set":
		payload, err := p.parseBraceBody()
		if err != nil {
			return err
		}
		ir.Mutation = &queryir.Mutation{Kind: queryir.MutationUpdate, Payload: payload}
	case "delete":
		ir.Mutation = &queryir.Mutation{Kind: queryir.MutationDelete}
	case "count":
		qt := queryir.QueryCount
		ir.QueryType = &qt
	case "get":
		val, err := p.parseValue()
		if err != nil {
			return err
		}
		ir.Filters = append(ir.Filters, queryir.FilterExpr{Field: "_key", Op: queryir.OpEq, Value: val})
		one := uint32(1)
		ir.Limit = &one
	default:
		return p.errAt(ErrUnknownOperation, pos, "operation %q has no defined grammar", name)
	}

	return p.expect(RPAREN)
}

// parseFilterArgs parses cond (and|or cond)*, setting each filter's
// Logic from the keyword that followed it (spec §4.10).
func (p *Parser) parseFilterArgs(ir *queryir.QueryIR) error {
	for {
		cond, err := p.parseCond()
		if err != nil {
			return err
		}
		ir.Filters = append(ir.Filters, cond)

		tok, _, _ := p.s.Peek()
		switch tok {
		case AND:
			p.s.Scan()
			ir.Filters[len(ir.Filters)-1].Logic = queryir.LogicAnd
		case OR:
			p.s.Scan()
			ir.Filters[len(ir.Filters)-1].Logic = queryir.LogicOr
		default:
			return nil
		}
	}
}

func (p *Parser) parseCond() (queryir.FilterExpr, error) {
	tok, pos, field := p.s.Scan()
	if tok != IDENT {
		return queryir.FilterExpr{}, p.errAt(ErrExpectedIdentifier, pos, "expected a field name, got %q", field)
	}

	opTok, opPos, opLit := p.s.Scan()
	op, ok := filterOpFor(opTok)
	if !ok {
		return queryir.FilterExpr{}, p.errAt(ErrExpectedOperator, opPos, "expected a comparison operator, got %q", opLit)
	}

	val, err := p.parseValue()
	if err != nil {
		return queryir.FilterExpr{}, err
	}
	return queryir.FilterExpr{Field: field, Op: op, Value: val}, nil
}

func filterOpFor(tok Token) (queryir.FilterOp, bool) {
	switch tok {
	case EQ:
		return queryir.OpEq, true
	case NEQ:
		return queryir.OpNe, true
	case GT:
		return queryir.OpGt, true
	case GTE:
		return queryir.OpGte, true
	case LT:
		return queryir.OpLt, true
	case LTE:
		return queryir.OpLte, true
	case TILDE:
		return queryir.OpRegex, true
	case IN:
		return queryir.OpIn, true
	case CONTAINS:
		return queryir.OpContains, true
	case STARTS_WITH:
		return queryir.OpStartsWith, true
	case EXISTS:
		return queryir.OpExists, true
	default:
		return 0, false
	}
}

// parseValue parses a string, number, true/false/null, or a bracketed
// array of values (spec §4.10's value set, generalized for $in).
func (p *Parser) parseValue() (queryir.Value, error) {
	tok, pos, lit := p.s.Scan()
	switch tok {
	case STRING:
		return queryir.StringValue(lit), nil
	case NUMBER_INT:
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return queryir.Value{}, p.errAt(ErrInvalidNumber, pos, "invalid integer %q", lit)
		}
		return queryir.IntValue(n), nil
	case NUMBER_FLOAT:
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return queryir.Value{}, p.errAt(ErrInvalidNumber, pos, "invalid float %q", lit)
		}
		return queryir.FloatValue(f), nil
	case TRUE:
		return queryir.BoolValue(true), nil
	case FALSE:
		return queryir.BoolValue(false), nil
	case NULL:
		return queryir.NullValue(), nil
	case LBRACK:
		return p.parseArrayValue()
	default:
		return queryir.Value{}, p.errAt(ErrExpectedValue, pos, "expected a value, got %q", lit)
	}
}

func (p *Parser) parseArrayValue() (queryir.Value, error) {
	if tok, _, _ := p.s.Peek(); tok == RBRACK {
		p.s.Scan()
		return queryir.ArrayValue(nil), nil
	}

	var vals []queryir.Value
	for {
		v, err := p.parseValue()
		if err != nil {
			return queryir.Value{}, err
		}
		vals = append(vals, v)

		tok, pos, lit := p.s.Scan()
		switch tok {
		case COMMA:
			continue
		case RBRACK:
			return queryir.ArrayValue(vals), nil
		default:
			return queryir.Value{}, p.errAt(ErrUnexpectedToken, pos, "expected ',' or ']' in array, got %q", lit)
		}
	}
}

func (p *Parser) parseIdentList() ([]string, error) {
	var out []string
	for {
		tok, pos, lit := p.s.Scan()
		if tok != IDENT {
			return nil, p.errAt(ErrExpectedIdentifier, pos, "expected an identifier, got %q", lit)
		}
		out = append(out, lit)

		tok2, _, _ := p.s.Peek()
		if tok2 != COMMA {
			return out, nil
		}
		p.s.Scan()
	}
}

func (p *Parser) parseOrderByArgs(ir *queryir.QueryIR) error {
	tok, pos, field := p.s.Scan()
	if tok != IDENT {
		return p.errAt(ErrExpectedIdentifier, pos, "expected a field name, got %q", field)
	}

	direction := queryir.OrderAsc
	if tok2, _, _ := p.s.Peek(); tok2 == COMMA {
		p.s.Scan()
		dtok, dpos, dlit := p.s.Scan()
		switch dtok {
		case ASC:
			direction = queryir.OrderAsc
		case DESC:
			direction = queryir.OrderDesc
		default:
			return p.errAt(ErrUnexpectedToken, dpos, "expected asc or desc, got %q", dlit)
		}
	}

	ir.OrderBy = []queryir.OrderBy{{Field: field, Direction: direction}}
	return nil
}

func (p *Parser) parseUintArg() (uint32, error) {
	tok, pos, lit := p.s.Scan()
	if tok != NUMBER_INT {
		return 0, p.errAt(ErrInvalidNumber, pos, "expected an unsigned integer, got %q", lit)
	}
	n, err := strconv.ParseUint(lit, 10, 32)
	if err != nil {
		return 0, p.errAt(ErrInvalidNumber, pos, "%q does not fit in 32 bits", lit)
	}
	return uint32(n), nil
}

// parseAggregateArgs parses "name: func[(field)], ..." — count takes
// no field, the other four functions require one (spec §4.10).
func (p *Parser) parseAggregateArgs(ir *queryir.QueryIR) error {
	for {
		nameTok, namePos, name := p.s.Scan()
		if nameTok != IDENT {
			return p.errAt(ErrExpectedIdentifier, namePos, "expected an aggregate output name, got %q", name)
		}
		if err := p.expect(COLON); err != nil {
			return err
		}

		fnTok, fnPos, fnLit := p.s.Scan()
		var fn queryir.AggFunc
		switch fnTok {
		case COUNT:
			fn = queryir.AggCount
		case SUM:
			fn = queryir.AggSum
		case AVG:
			fn = queryir.AggAvg
		case MIN:
			fn = queryir.AggMin
		case MAX:
			fn = queryir.AggMax
		default:
			return p.errAt(ErrUnexpectedToken, fnPos, "expected an aggregate function, got %q", fnLit)
		}

		var field string
		if fn == queryir.AggCount {
			if tok, _, _ := p.s.Peek(); tok == LPAREN {
				p.s.Scan()
				if err := p.expect(RPAREN); err != nil {
					return err
				}
			}
		} else {
			if err := p.expect(LPAREN); err != nil {
				return err
			}
			fTok, fPos, fLit := p.s.Scan()
			if fTok != IDENT {
				return p.errAt(ErrExpectedIdentifier, fPos, "expected a field name, got %q", fLit)
			}
			field = fLit
			if err := p.expect(RPAREN); err != nil {
				return err
			}
		}

		ir.Aggregations = append(ir.Aggregations, queryir.Aggregation{OutputName: name, Func: fn, Field: field})

		tok, _, _ := p.s.Peek()
		if tok != COMMA {
			return nil
		}
		p.s.Scan()
	}
}

// parseBraceBody expects a leading '{' and captures everything up to
// its matching '}' as raw, unparsed text (spec §4.10) — insert/set
// hand the server an opaque document encoding, so this parser never
// interprets the object's contents.
func (p *Parser) parseBraceBody() ([]byte, error) {
	tok, pos, lit := p.s.Scan()
	if tok != LBRACE {
		return nil, p.errAt(ErrUnexpectedToken, pos, "expected '{', got %q", lit)
	}
	body, err := p.s.ScanBalancedBraces()
	if err != nil {
		return nil, p.errAt(ErrUnexpectedToken, pos, "unterminated object literal")
	}
	return []byte("{" + body + "}"), nil
}

func (p *Parser) expect(want Token) error {
	tok, pos, lit := p.s.Scan()
	if tok == want {
		return nil
	}
	code := ErrUnexpectedToken
	switch want {
	case LPAREN:
		code = ErrExpectedLParen
	case RPAREN:
		code = ErrExpectedRParen
	case COMMA:
		code = ErrExpectedComma
	case COLON:
		code = ErrExpectedColon
	}
	return p.errAt(code, pos, "expected %s, got %q", want, lit)
}

func (p *Parser) errAt(code errors.Code, pos Pos, format string, args ...interface{}) error {
	return errors.New(code, fmt.Sprintf("%s (line %d, col %d)", fmt.Sprintf(format, args...), pos.Line, pos.Char))
}
