package sierra

import (
	"fmt"
	"math/big"
	"strconv"

	"fortio.org/safecast"

	"sierradec/internal/program"
	"sierradec/internal/source"
)

// rawID is an id as written: either [N] or a debug name.
type rawID struct {
	numeric bool
	num     uint64
	name    string
	span    source.Span
}

type rawArg struct {
	kind  program.ArgKind
	id    rawID
	value string
	name  string
}

type rawCall struct {
	name string
	args []rawArg
}

type rawType struct {
	id   rawID
	long rawCall
	info *program.TypeInfo
}

type rawLibfunc struct {
	id   rawID
	long rawCall
}

type rawBranch struct {
	target  program.BranchTarget
	results []program.VarID
}

type rawStatement struct {
	isReturn bool
	libfunc  rawID
	args     []program.VarID
	branches []rawBranch
	ret      []program.VarID
}

type rawParam struct {
	v  program.VarID
	ty rawID
}

type rawFunc struct {
	id     rawID
	entry  program.StatementIdx
	params []rawParam
	rets   []rawID
}

type rawFile struct {
	types      []rawType
	libfuncs   []rawLibfunc
	statements []rawStatement
	funcs      []rawFunc
}

// parser is a recursive-descent parser over one file. It stops at the first
// error.
type parser struct {
	file *source.File
	lx   *Lexer
}

func (p *parser) expect(kind Kind) (Token, error) {
	tok := p.lx.Next()
	if tok.Kind != kind {
		return tok, p.unexpected(tok, kind.String())
	}
	return tok, nil
}

func (p *parser) accept(kind Kind) bool {
	if p.lx.Peek().Kind == kind {
		p.lx.Next()
		return true
	}
	return false
}

func (p *parser) unexpected(tok Token, want string) error {
	if tok.Kind == EOF {
		return errorAt(p.file, tok.Span, "unexpected end of file, expected %s", want)
	}
	return errorAt(p.file, tok.Span, "unexpected %s %q, expected %s", tok.Kind, tok.Text, want)
}

func (p *parser) parseFile() (*rawFile, error) {
	out := &rawFile{}
	for {
		tok := p.lx.Peek()
		switch {
		case tok.Kind == EOF:
			return out, nil
		case tok.Is("type"):
			t, err := p.parseTypeDecl()
			if err != nil {
				return nil, err
			}
			out.types = append(out.types, t)
		case tok.Is("libfunc"):
			l, err := p.parseLibfuncDecl()
			if err != nil {
				return nil, err
			}
			out.libfuncs = append(out.libfuncs, l)
		case tok.Is("return"):
			st, err := p.parseReturn()
			if err != nil {
				return nil, err
			}
			out.statements = append(out.statements, st)
		default:
			id, err := p.parseID()
			if err != nil {
				return nil, err
			}
			if p.lx.Peek().Kind == At {
				fn, err := p.parseFunc(id)
				if err != nil {
					return nil, err
				}
				out.funcs = append(out.funcs, fn)
				continue
			}
			st, err := p.parseInvocation(id)
			if err != nil {
				return nil, err
			}
			out.statements = append(out.statements, st)
		}
	}
}

func (p *parser) parseTypeDecl() (rawType, error) {
	p.lx.Next() // type
	id, err := p.parseID()
	if err != nil {
		return rawType{}, err
	}
	if _, err := p.expect(Eq); err != nil {
		return rawType{}, err
	}
	long, err := p.parseCall()
	if err != nil {
		return rawType{}, err
	}
	decl := rawType{id: id, long: long}
	if p.lx.Peek().Kind == LBracket {
		info, err := p.parseTypeInfo()
		if err != nil {
			return rawType{}, err
		}
		decl.info = info
	}
	_, err = p.expect(Semi)
	return decl, err
}

func (p *parser) parseTypeInfo() (*program.TypeInfo, error) {
	p.lx.Next() // [
	info := &program.TypeInfo{}
	for !p.accept(RBracket) {
		key, err := p.expect(Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(Colon); err != nil {
			return nil, err
		}
		val, err := p.expect(Ident)
		if err != nil {
			return nil, err
		}
		b, err := strconv.ParseBool(val.Text)
		if err != nil {
			return nil, errorAt(p.file, val.Span, "expected true or false, got %q", val.Text)
		}
		switch key.Text {
		case "storable":
			info.Storable = b
		case "drop":
			info.Droppable = b
		case "dup":
			info.Duplicate = b
		case "zero_sized":
			info.ZeroSized = b
		}
		if !p.accept(Comma) && p.lx.Peek().Kind != RBracket {
			return nil, p.unexpected(p.lx.Next(), "',' or ']'")
		}
	}
	return info, nil
}

func (p *parser) parseLibfuncDecl() (rawLibfunc, error) {
	p.lx.Next() // libfunc
	id, err := p.parseID()
	if err != nil {
		return rawLibfunc{}, err
	}
	if _, err := p.expect(Eq); err != nil {
		return rawLibfunc{}, err
	}
	long, err := p.parseCall()
	if err != nil {
		return rawLibfunc{}, err
	}
	_, err = p.expect(Semi)
	return rawLibfunc{id: id, long: long}, err
}

func (p *parser) parseReturn() (rawStatement, error) {
	p.lx.Next() // return
	vars, err := p.parseVarList()
	if err != nil {
		return rawStatement{}, err
	}
	_, err = p.expect(Semi)
	return rawStatement{isReturn: true, ret: vars}, err
}

func (p *parser) parseInvocation(lib rawID) (rawStatement, error) {
	args, err := p.parseVarList()
	if err != nil {
		return rawStatement{}, err
	}
	st := rawStatement{libfunc: lib, args: args}
	switch tok := p.lx.Next(); tok.Kind {
	case Arrow:
		results, err := p.parseVarList()
		if err != nil {
			return rawStatement{}, err
		}
		st.branches = []rawBranch{{target: program.Fallthrough(), results: results}}
	case LBrace:
		for !p.accept(RBrace) {
			br, err := p.parseBranch()
			if err != nil {
				return rawStatement{}, err
			}
			st.branches = append(st.branches, br)
		}
		if len(st.branches) == 0 {
			return rawStatement{}, errorAt(p.file, tok.Span, "invocation has no branches")
		}
	default:
		return rawStatement{}, p.unexpected(tok, "'->' or '{'")
	}
	_, err = p.expect(Semi)
	return st, err
}

func (p *parser) parseBranch() (rawBranch, error) {
	tok := p.lx.Next()
	var br rawBranch
	switch {
	case tok.Is("fallthrough"):
		br.target = program.Fallthrough()
	case tok.Kind == Number:
		idx, err := p.statementIdx(tok)
		if err != nil {
			return rawBranch{}, err
		}
		br.target = program.Jump(idx)
	default:
		return rawBranch{}, p.unexpected(tok, "branch target")
	}
	results, err := p.parseVarList()
	if err != nil {
		return rawBranch{}, err
	}
	br.results = results
	return br, nil
}

func (p *parser) parseFunc(id rawID) (rawFunc, error) {
	p.lx.Next() // @
	entryTok, err := p.expect(Number)
	if err != nil {
		return rawFunc{}, err
	}
	entry, err := p.statementIdx(entryTok)
	if err != nil {
		return rawFunc{}, err
	}
	fn := rawFunc{id: id, entry: entry}
	if _, err := p.expect(LParen); err != nil {
		return rawFunc{}, err
	}
	for !p.accept(RParen) {
		v, err := p.parseVar()
		if err != nil {
			return rawFunc{}, err
		}
		if _, err := p.expect(Colon); err != nil {
			return rawFunc{}, err
		}
		ty, err := p.parseID()
		if err != nil {
			return rawFunc{}, err
		}
		fn.params = append(fn.params, rawParam{v: v, ty: ty})
		if !p.accept(Comma) && p.lx.Peek().Kind != RParen {
			return rawFunc{}, p.unexpected(p.lx.Next(), "',' or ')'")
		}
	}
	if _, err := p.expect(Arrow); err != nil {
		return rawFunc{}, err
	}
	if _, err := p.expect(LParen); err != nil {
		return rawFunc{}, err
	}
	for !p.accept(RParen) {
		ty, err := p.parseID()
		if err != nil {
			return rawFunc{}, err
		}
		fn.rets = append(fn.rets, ty)
		if !p.accept(Comma) && p.lx.Peek().Kind != RParen {
			return rawFunc{}, p.unexpected(p.lx.Next(), "',' or ')'")
		}
	}
	_, err = p.expect(Semi)
	return fn, err
}

// parseVarList parses "([a], [b], ...)".
func (p *parser) parseVarList() ([]program.VarID, error) {
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	var vars []program.VarID
	for !p.accept(RParen) {
		v, err := p.parseVar()
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
		if !p.accept(Comma) && p.lx.Peek().Kind != RParen {
			return nil, p.unexpected(p.lx.Next(), "',' or ')'")
		}
	}
	return vars, nil
}

func (p *parser) parseVar() (program.VarID, error) {
	if _, err := p.expect(LBracket); err != nil {
		return 0, err
	}
	tok, err := p.expect(Number)
	if err != nil {
		return 0, err
	}
	n, err := p.uint(tok)
	if err != nil {
		return 0, err
	}
	_, err = p.expect(RBracket)
	return program.VarID(n), err
}

// parseID parses "[N]" or a debug name with optional generic suffix.
func (p *parser) parseID() (rawID, error) {
	tok := p.lx.Next()
	switch tok.Kind {
	case LBracket:
		numTok, err := p.expect(Number)
		if err != nil {
			return rawID{}, err
		}
		n, err := p.uint(numTok)
		if err != nil {
			return rawID{}, err
		}
		end, err := p.expect(RBracket)
		if err != nil {
			return rawID{}, err
		}
		return rawID{numeric: true, num: n, span: tok.Span.Cover(end.Span)}, nil
	case Ident:
		return p.parseNamedID(tok)
	default:
		return rawID{}, p.unexpected(tok, "id")
	}
}

func (p *parser) parseNamedID(first Token) (rawID, error) {
	span := first.Span
	if p.lx.Peek().Kind == PathSep {
		p.lx.Next()
		if p.lx.Peek().Kind != LAngle {
			return rawID{}, p.unexpected(p.lx.Next(), "'<'")
		}
	}
	if p.lx.Peek().Kind == LAngle {
		end, err := p.skipAngles()
		if err != nil {
			return rawID{}, err
		}
		span = span.Cover(end)
	}
	return rawID{name: string(p.file.Content[span.Start:span.End]), span: span}, nil
}

// skipAngles consumes a balanced <...> group and returns the closing span.
func (p *parser) skipAngles() (source.Span, error) {
	open := p.lx.Next()
	depth := 1
	for {
		tok := p.lx.Next()
		switch tok.Kind {
		case LAngle:
			depth++
		case RAngle:
			depth--
			if depth == 0 {
				return tok.Span, nil
			}
		case EOF, Semi:
			return source.Span{}, errorAt(p.file, open.Span, "unclosed '<'")
		}
	}
}

func (p *parser) parseCall() (rawCall, error) {
	name, err := p.expect(Ident)
	if err != nil {
		return rawCall{}, err
	}
	call := rawCall{name: name.Text}
	if !p.accept(LAngle) {
		return call, nil
	}
	for !p.accept(RAngle) {
		arg, err := p.parseArg()
		if err != nil {
			return rawCall{}, err
		}
		call.args = append(call.args, arg)
		if !p.accept(Comma) && p.lx.Peek().Kind != RAngle {
			return rawCall{}, p.unexpected(p.lx.Next(), "',' or '>'")
		}
	}
	return call, nil
}

func (p *parser) parseArg() (rawArg, error) {
	tok := p.lx.Peek()
	switch {
	case tok.Kind == Number:
		p.lx.Next()
		v, ok := new(big.Int).SetString(tok.Text, 10)
		if !ok {
			return rawArg{}, errorAt(p.file, tok.Span, "invalid integer %q", tok.Text)
		}
		return rawArg{kind: program.ArgValue, value: v.String()}, nil
	case tok.Kind == LBracket:
		id, err := p.parseID()
		return rawArg{kind: program.ArgType, id: id}, err
	case tok.Kind == Ident:
		p.lx.Next()
		if p.lx.Peek().Kind == At && (tok.Is("user") || tok.Is("ut") || tok.Is("lib")) {
			p.lx.Next()
			return p.parsePrefixedArg(tok)
		}
		id, err := p.parseNamedID(tok)
		return rawArg{kind: program.ArgType, id: id}, err
	default:
		return rawArg{}, p.unexpected(p.lx.Next(), "generic argument")
	}
}

func (p *parser) parsePrefixedArg(prefix Token) (rawArg, error) {
	switch prefix.Text {
	case "user":
		id, err := p.parseID()
		return rawArg{kind: program.ArgUserFunc, id: id}, err
	case "lib":
		id, err := p.parseID()
		return rawArg{kind: program.ArgLibfunc, id: id}, err
	default:
		name, err := p.scanUserTypeName()
		return rawArg{kind: program.ArgUserType, name: name}, err
	}
}

// scanUserTypeName reads a ut@ name up to the next top-level ',' or '>'.
// Such names may contain nested generics and tuples.
func (p *parser) scanUserTypeName() (string, error) {
	first := p.lx.Peek()
	span := source.Span{Start: first.Span.Start, End: first.Span.Start}
	depth := 0
	for {
		tok := p.lx.Peek()
		switch tok.Kind {
		case EOF, Semi:
			return "", p.unexpected(tok, "user type name")
		case LAngle, LParen, LBracket:
			depth++
		case RAngle, RParen, RBracket:
			if depth == 0 {
				return p.userTypeText(first, span)
			}
			depth--
		case Comma:
			if depth == 0 {
				return p.userTypeText(first, span)
			}
		}
		p.lx.Next()
		span.End = tok.Span.End
	}
}

func (p *parser) userTypeText(first Token, span source.Span) (string, error) {
	if span.Empty() {
		return "", p.unexpected(first, "user type name")
	}
	return string(p.file.Content[span.Start:span.End]), nil
}

func (p *parser) uint(tok Token) (uint64, error) {
	n, err := strconv.ParseUint(tok.Text, 10, 64)
	if err != nil {
		return 0, errorAt(p.file, tok.Span, "invalid id %q", tok.Text)
	}
	return n, nil
}

func (p *parser) statementIdx(tok Token) (program.StatementIdx, error) {
	n, err := p.uint(tok)
	if err != nil {
		return 0, err
	}
	idx, err := safecast.Conv[int](n)
	if err != nil {
		return 0, errorAt(p.file, tok.Span, "statement index %s out of range: %v", tok.Text, err)
	}
	return program.StatementIdx(idx), nil
}

func (id rawID) String() string {
	if id.numeric {
		return fmt.Sprintf("[%d]", id.num)
	}
	return id.name
}
