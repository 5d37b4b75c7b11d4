package sierra

import "sierradec/internal/source"

// Lexer splits a Sierra file into tokens. Whitespace and // comments are
// skipped.
type Lexer struct {
	file *source.File
	off  uint32
	look *Token
}

// NewLexer creates a lexer over f.
func NewLexer(f *source.File) *Lexer {
	return &Lexer{file: f}
}

func (lx *Lexer) eof() bool { return lx.off >= lx.file.Len() }

func (lx *Lexer) peekByte(n uint32) byte {
	if lx.off+n >= lx.file.Len() {
		return 0
	}
	return lx.file.Content[lx.off+n]
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() Token {
	if lx.look == nil {
		tok := lx.scan()
		lx.look = &tok
	}
	return *lx.look
}

// Next consumes and returns the next token. After EOF it keeps returning EOF.
func (lx *Lexer) Next() Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	return lx.scan()
}

func (lx *Lexer) skipTrivia() {
	for !lx.eof() {
		ch := lx.peekByte(0)
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			lx.off++
		case ch == '/' && lx.peekByte(1) == '/':
			for !lx.eof() && lx.peekByte(0) != '\n' {
				lx.off++
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scan() Token {
	lx.skipTrivia()
	start := lx.off
	if lx.eof() {
		return Token{Kind: EOF, Span: source.Span{Start: start, End: start}}
	}
	ch := lx.peekByte(0)
	switch {
	case isIdentStart(ch):
		return lx.scanIdent()
	case isDigit(ch), ch == '-' && isDigit(lx.peekByte(1)):
		lx.off++
		for isDigit(lx.peekByte(0)) {
			lx.off++
		}
		return lx.token(Number, start)
	}

	kind := Invalid
	width := uint32(1)
	switch ch {
	case '[':
		kind = LBracket
	case ']':
		kind = RBracket
	case '(':
		kind = LParen
	case ')':
		kind = RParen
	case '{':
		kind = LBrace
	case '}':
		kind = RBrace
	case '<':
		kind = LAngle
	case '>':
		kind = RAngle
	case ',':
		kind = Comma
	case ';':
		kind = Semi
	case '=':
		kind = Eq
	case '@':
		kind = At
	case ':':
		kind = Colon
		if lx.peekByte(1) == ':' {
			kind, width = PathSep, 2
		}
	case '-':
		if lx.peekByte(1) == '>' {
			kind, width = Arrow, 2
		}
	}
	lx.off += width
	return lx.token(kind, start)
}

// scanIdent reads a path identifier; "::" segments are folded into the
// identifier unless they introduce generic arguments ("::<").
func (lx *Lexer) scanIdent() Token {
	start := lx.off
	for {
		for isIdentContinue(lx.peekByte(0)) {
			lx.off++
		}
		if lx.peekByte(0) == ':' && lx.peekByte(1) == ':' && isIdentStart(lx.peekByte(2)) {
			lx.off += 2
			continue
		}
		return lx.token(Ident, start)
	}
}

func (lx *Lexer) token(kind Kind, start uint32) Token {
	return Token{
		Kind: kind,
		Span: source.Span{Start: start, End: lx.off},
		Text: string(lx.file.Content[start:lx.off]),
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContinue(b byte) bool { return isIdentStart(b) || isDigit(b) }
