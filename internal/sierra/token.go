package sierra

import "sierradec/internal/source"

// Kind enumerates lexical token kinds of the Sierra text grammar.
type Kind uint8

const (
	EOF Kind = iota
	Invalid
	Ident    // a, a::b::c
	Number   // 12, -3
	LBracket // [
	RBracket // ]
	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	LAngle   // <
	RAngle   // >
	Comma    // ,
	Semi     // ;
	Colon    // :
	Eq       // =
	At       // @
	Arrow    // ->
	PathSep  // :: before <
)

var kindNames = [...]string{
	EOF:      "end of file",
	Invalid:  "invalid character",
	Ident:    "identifier",
	Number:   "number",
	LBracket: "'['",
	RBracket: "']'",
	LParen:   "'('",
	RParen:   "')'",
	LBrace:   "'{'",
	RBrace:   "'}'",
	LAngle:   "'<'",
	RAngle:   "'>'",
	Comma:    "','",
	Semi:     "';'",
	Colon:    "':'",
	Eq:       "'='",
	At:       "'@'",
	Arrow:    "'->'",
	PathSep:  "'::'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "token"
}

// Token is one lexeme with its span.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// Is reports whether the token is an identifier with exactly this text.
func (t Token) Is(word string) bool {
	return t.Kind == Ident && t.Text == word
}
