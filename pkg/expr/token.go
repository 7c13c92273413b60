package expr

// tokenKind enumerates the lexical token kinds of the expression grammar.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokTrue
	tokFalse
	tokNull

	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokBang
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokAnd
	tokOr
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokDot
)

type token struct {
	kind   tokenKind
	text   string
	num    float64
	offset int
}
