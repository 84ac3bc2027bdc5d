package lexer

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/2b3o4o/kaleidoscope/internal/compiler/token"
)

// Lexer pulls characters one at a time from an input source and
// classifies them into tokens on demand. The single character of
// lookahead lives in ch and persists across NextToken calls.
type Lexer struct {
	r   *bufio.Reader
	ch  byte // last character read; 0 once the source is exhausted
	eof bool

	line   int // current line number (1-indexed)
	column int // current column number (1-indexed)
}

func NewLexer(r io.Reader) *Lexer {
	l := &Lexer{r: bufio.NewReader(r), line: 1, column: 0}
	l.readChar()
	return l
}

// readChar advances to the next character of the source, tracking
// line/column and latching EOF.
func (l *Lexer) readChar() {
	b, err := l.r.ReadByte()
	if err != nil {
		l.ch = 0
		l.eof = true
		return
	}
	l.ch = b

	if l.ch == '\n' {
		l.line++
		l.column = 0 // next character lands on column 1
	} else {
		l.column++
	}
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	startLine := l.line
	startCol := l.column

	if isLetter(l.ch) {
		// Start of a word: either a keyword or an identifier.
		ident := l.readIdentifier()
		return token.Token{Type: lookupIdent(ident), Literal: ident, Line: startLine, Column: startCol}
	}

	if isDigit(l.ch) {
		return l.readNumber(startLine, startCol)
	}

	if l.ch == '#' {
		// Line comment: discard through the end of the line, then
		// re-invoke classification.
		l.readComment()
		if !l.eof {
			l.readChar()
			return l.NextToken()
		}
	}

	if l.eof {
		return token.Token{Type: token.TokenEOF, Literal: "", Line: startLine, Column: startCol}
	}

	// Some other single character: hand it back verbatim.
	ch := l.ch
	l.readChar()
	return token.Token{Type: token.TokenPunct, Literal: string(ch), Line: startLine, Column: startCol}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\n' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readComment() {
	for !l.eof && l.ch != '\n' && l.ch != '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	var sb strings.Builder
	sb.WriteByte(l.ch)
	l.readChar()
	for isLetter(l.ch) || isDigit(l.ch) {
		sb.WriteByte(l.ch)
		l.readChar()
	}
	return sb.String()
}

// readNumber consumes a digit-initial run of digits and dots. The text
// is handed to ParseFloat as-is: multiple dots and other malformed
// shapes are not rejected here, the conversion's fallback value is
// used instead.
func (l *Lexer) readNumber(startLine, startCol int) token.Token {
	var sb strings.Builder
	sb.WriteByte(l.ch)
	l.readChar()
	for isDigit(l.ch) || l.ch == '.' {
		sb.WriteByte(l.ch)
		l.readChar()
	}
	literal := sb.String()
	val, _ := strconv.ParseFloat(literal, 64)
	return token.Token{Type: token.TokenNumber, Literal: literal, Value: val, Line: startLine, Column: startCol}
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// keywords maps identifier strings to their keyword token types.
var keywords = map[string]token.TokenType{
	"def":    token.TokenDef,
	"extern": token.TokenExtern,
}

// lookupIdent reclassifies "def" and "extern" as keywords; every other
// letter-initial run is an identifier.
func lookupIdent(ident string) token.TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return token.TokenIdent
}
