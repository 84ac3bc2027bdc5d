package token

type TokenType string

const (
	TokenEOF    TokenType = "EOF"
	TokenDef    TokenType = "DEF"    // def keyword
	TokenExtern TokenType = "EXTERN" // extern keyword
	TokenIdent  TokenType = "IDENT"  // identifier (variable or function name)
	TokenNumber TokenType = "NUMBER" // floating-point literal

	// Any other single character: operators, parens, comma, ';'.
	// The raw character is carried in Literal.
	TokenPunct TokenType = "PUNCT"
)

type Token struct {
	Type    TokenType
	Literal string  // identifier text or the raw punctuation character
	Value   float64 // numeric payload, set only for TokenNumber
	Line    int
	Column  int
}

// Punct returns the raw character of a punctuation token, or 0 for any
// other token kind.
func (t Token) Punct() byte {
	if t.Type == TokenPunct && len(t.Literal) == 1 {
		return t.Literal[0]
	}
	return 0
}

func (t Token) IsPunct(ch byte) bool {
	return t.Punct() == ch
}
