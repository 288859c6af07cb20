package queryparser

import (
	"bufio"
	"bytes"
	"io"
)

const eof = rune(0)

// scanner is the unbuffered rune-level lexer, grounded directly on
// pql.Scanner (pql/scanner.go): read/unread a single rune at a time,
// dispatch on the first rune of a token.
type scanner struct {
	r   io.RuneScanner
	pos Pos
}

func newScanner(r io.Reader) *scanner {
	return &scanner{r: bufio.NewReader(r)}
}

func (s *scanner) read() rune {
	ch, _, err := s.r.ReadRune()
	if err != nil {
		return eof
	}
	if ch == '\n' {
		s.pos.Line++
		s.pos.Char = 0
	} else {
		s.pos.Char++
	}
	return ch
}

func (s *scanner) unread() {
	if s.pos.Char == 0 {
		s.pos.Line--
	} else {
		s.pos.Char--
	}
	_ = s.r.UnreadRune()
}

func (s *scanner) scan() (tok Token, pos Pos, lit string) {
	s.skipWhitespace()
	pos = s.pos

	ch := s.read()
	switch {
	case ch == eof:
		return EOF, pos, ""
	case isIdentFirstChar(ch):
		s.unread()
		return s.scanIdent()
	case isDigit(ch) || ch == '-':
		s.unread()
		return s.scanNumber()
	case ch == '"' || ch == '\'':
		s.unread()
		return s.scanString()
	}

	switch ch {
	case '.':
		return DOT, pos, "."
	case '(':
		return LPAREN, pos, "("
	case ')':
		return RPAREN, pos, ")"
	case '{':
		return LBRACE, pos, "{"
	case '}':
		return RBRACE, pos, "}"
	case '[':
		return LBRACK, pos, "["
	case ']':
		return RBRACK, pos, "]"
	case ',':
		return COMMA, pos, ","
	case ':':
		return COLON, pos, ":"
	case '=':
		return EQ, pos, "="
	case '!':
		if next := s.read(); next == '=' {
			return NEQ, pos, "!="
		}
		s.unread()
		return INVALID, pos, "!"
	case '>':
		if next := s.read(); next == '=' {
			return GTE, pos, ">="
		}
		s.unread()
		return GT, pos, ">"
	case '<':
		if next := s.read(); next == '=' {
			return LTE, pos, "<="
		}
		s.unread()
		return LT, pos, "<"
	case '~':
		return TILDE, pos, "~"
	default:
		return INVALID, pos, string(ch)
	}
}

func (s *scanner) skipWhitespace() {
	for {
		ch := s.read()
		if ch == eof {
			return
		}
		if !isWhitespace(ch) {
			s.unread()
			return
		}
	}
}

func (s *scanner) scanIdent() (Token, Pos, string) {
	pos := s.pos
	var buf bytes.Buffer
	for {
		ch := s.read()
		if ch == eof {
			break
		}
		if !isIdentChar(ch) {
			s.unread()
			break
		}
		buf.WriteRune(ch)
	}
	lit := buf.String()
	if tok := Lookup(lit); tok != IDENT {
		return tok, pos, lit
	}
	return IDENT, pos, lit
}

// scanNumber consumes an optional leading '-', digits, and at most
// one '.' that is itself followed by a digit — a '.' followed by a
// non-digit ends the number so method-call chaining like "42.limit"
// still lexes the '.' as a separate DOT token (spec §4.9).
func (s *scanner) scanNumber() (Token, Pos, string) {
	pos := s.pos
	tok := NUMBER_INT
	var buf bytes.Buffer

	if ch := s.read(); ch == '-' {
		buf.WriteRune(ch)
	} else {
		s.unread()
	}

	for {
		ch := s.read()
		if isDigit(ch) {
			buf.WriteRune(ch)
			continue
		}
		if ch == '.' && tok == NUMBER_INT {
			// bufio.Reader can unread only one rune, so the '.' is put
			// back and the rune after it is peeked rather than read.
			s.unread()
			if b, err := s.r.(*bufio.Reader).Peek(2); err == nil && isDigit(rune(b[1])) {
				s.read()
				tok = NUMBER_FLOAT
				buf.WriteByte('.')
				continue
			}
			break
		}
		s.unread()
		break
	}
	return tok, pos, buf.String()
}

// scanString consumes a single- or double-quoted string. A backslash
// escapes the next byte, but the reported literal is not unescaped
// (spec §4.9): both the backslash and the escaped byte are kept
// verbatim in the returned text. An unterminated string yields
// INVALID.
func (s *scanner) scanString() (Token, Pos, string) {
	pos := s.pos
	ending := s.read()

	var buf bytes.Buffer
	for {
		ch := s.read()
		switch {
		case ch == ending:
			return STRING, pos, buf.String()
		case ch == eof:
			return INVALID, pos, buf.String()
		case ch == '\\':
			next := s.read()
			if next == eof {
				return INVALID, pos, buf.String()
			}
			buf.WriteRune(ch)
			buf.WriteRune(next)
		default:
			buf.WriteRune(ch)
		}
	}
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentFirstChar(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch rune) bool {
	return isIdentFirstChar(ch) || isDigit(ch)
}

// scanned is one buffered (token, position, literal) triple.
type scanned struct {
	tok Token
	pos Pos
	lit string
}

// Scanner wraps the unbuffered scanner with a small ring buffer of
// already-scanned tokens, grounded directly on pql's bufScanner
// (pql/scanner.go): Scan drains the buffer before reading fresh
// tokens, and Unscan/Peek push a token back onto it. This gives
// Peek()/backtracking without needing the underlying io.RuneScanner
// to support multi-rune rewind.
type Scanner struct {
	s   *scanner
	buf [8]scanned
	i   int
	n   int
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{s: newScanner(r)}
}

// Scan returns the next token, its starting position, and its
// literal text.
func (s *Scanner) Scan() (tok Token, pos Pos, lit string) {
	if s.n > 0 {
		s.n--
		v := s.curr()
		return v.tok, v.pos, v.lit
	}
	tok, pos, lit = s.s.scan()
	s.i = (s.i + 1) % len(s.buf)
	s.buf[s.i] = scanned{tok: tok, pos: pos, lit: lit}
	return
}

// Unscan pushes the last-scanned token back, so the next Scan call
// returns it again.
func (s *Scanner) Unscan() {
	s.n++
}

// Peek returns the next token without consuming it (spec §4.9): it
// scans then immediately unscans.
func (s *Scanner) Peek() (tok Token, pos Pos, lit string) {
	tok, pos, lit = s.Scan()
	s.Unscan()
	return
}

func (s *Scanner) curr() scanned {
	idx := (s.i - s.n + len(s.buf)) % len(s.buf)
	return s.buf[idx]
}

// ScanBalancedBraces reads raw source text up to and including the
// closing brace that matches one already-consumed opening '{', for
// insert/set's "capture raw text between balanced braces" payload
// (spec §4.10). It bypasses tokenization, reading runes directly off
// the underlying scanner, tracking brace depth and skipping over
// quoted string contents so braces inside string literals don't
// affect the count. The returned text excludes the outer braces.
// Only valid to call immediately after consuming a '{' token with an
// otherwise empty lookahead buffer.
func (s *Scanner) ScanBalancedBraces() (string, error) {
	depth := 1
	var buf bytes.Buffer
	for {
		ch := s.s.read()
		switch {
		case ch == eof:
			return buf.String(), io.ErrUnexpectedEOF
		case ch == '"' || ch == '\'':
			buf.WriteRune(ch)
			ending := ch
			for {
				c := s.s.read()
				if c == eof {
					return buf.String(), io.ErrUnexpectedEOF
				}
				buf.WriteRune(c)
				if c == '\\' {
					esc := s.s.read()
					if esc == eof {
						return buf.String(), io.ErrUnexpectedEOF
					}
					buf.WriteRune(esc)
					continue
				}
				if c == ending {
					break
				}
			}
		case ch == '{':
			depth++
			buf.WriteRune(ch)
		case ch == '}':
			depth--
			if depth == 0 {
				return buf.String(), nil
			}
			buf.WriteRune(ch)
		default:
			buf.WriteRune(ch)
		}
	}
}
