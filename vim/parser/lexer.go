package parser

// Lexer scans vimscript source into green tokens. It never fails: bytes
// that fit no token shape come out as TokenError tokens, so the token
// stream always covers the whole input.
//
// Newlines are significant tokens except when the next line continues the
// current one with a leading backslash; the newline, the blanks and the
// backslash are then folded into continuation trivia and the logical line
// keeps going. A double quote opens a comment when it is the first thing
// on its logical line, or when no closing quote follows before the end of
// the line; otherwise it opens a string literal.
type Lexer struct {
	input []byte
	pos   int
	// atLineStart is true until the first token of the current logical
	// line has been produced. Continuations do not reset it.
	atLineStart bool
}

func NewLexer(input []byte) *Lexer {
	return &Lexer{input: input, atLineStart: true}
}

// Tokenize scans the whole input eagerly. The returned slice always ends
// with the EOF token, which carries any trailing trivia.
func Tokenize(input []byte) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	return ch
}

// Next returns the next token with its leading trivia attached.
func (l *Lexer) Next() Token {
	leading := l.scanLeading()

	if l.pos >= len(l.input) {
		return l.token(TokenEOF, l.pos, leading)
	}

	start := l.pos
	ch := l.peek()

	switch {
	case ch == '\n':
		l.advance()
		return l.token(TokenNewline, start, leading)
	case ch == '(':
		l.advance()
		return l.token(TokenLeftParen, start, leading)
	case ch == ')':
		l.advance()
		return l.token(TokenRightParen, start, leading)
	case ch == '[':
		l.advance()
		return l.token(TokenLeftBracket, start, leading)
	case ch == ']':
		l.advance()
		return l.token(TokenRightBracket, start, leading)
	case ch == ',':
		l.advance()
		return l.token(TokenComma, start, leading)
	case ch == '=':
		l.advance()
		return l.token(TokenAssign, start, leading)
	case ch == '.':
		l.advance()
		return l.token(TokenDot, start, leading)
	case ch == '!':
		if l.peekN(1) == '=' && l.peekN(2) == '#' {
			l.advance()
			l.advance()
			l.advance()
			return l.token(TokenInequality, start, leading)
		}
		l.advance()
		return l.token(TokenBang, start, leading)
	case ch == '\'':
		return l.scanSingleQuoted(start, leading)
	case ch == '"':
		return l.scanDoubleQuoted(start, leading)
	case isDigit(ch):
		return l.scanNumber(start, leading)
	case isIdentStart(ch):
		return l.scanIdentOrKeyword(start, leading)
	}

	l.advance()
	return l.token(TokenError, start, leading)
}

func (l *Lexer) token(kind TokenKind, start int, leading []Trivia) Token {
	tok := Token{
		Kind:    kind,
		Text:    string(l.input[start:l.pos]),
		Leading: leading,
	}
	l.atLineStart = kind == TokenNewline
	return tok
}

// scanLeading collects the trivia runs in front of the next token:
// blanks, comments and line continuations. It stops at a significant
// newline so the newline itself becomes a token.
func (l *Lexer) scanLeading() []Trivia {
	var trivia []Trivia
	for l.pos < len(l.input) {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			start := l.pos
			for l.pos < len(l.input) {
				ch := l.peek()
				if ch != ' ' && ch != '\t' && ch != '\r' {
					break
				}
				l.advance()
			}
			trivia = append(trivia, Trivia{
				Kind: TriviaWhitespace,
				Text: string(l.input[start:l.pos]),
			})
		case ch == '\n':
			// A line whose first non-blank byte is a backslash
			// continues the current logical line.
			j := l.pos + 1
			for j < len(l.input) && (l.input[j] == ' ' || l.input[j] == '\t') {
				j++
			}
			if j < len(l.input) && l.input[j] == '\\' {
				start := l.pos
				l.pos = j + 1
				trivia = append(trivia, Trivia{
					Kind: TriviaContinuation,
					Text: string(l.input[start:l.pos]),
				})
				continue
			}
			return trivia
		case ch == '"' && (l.atLineStart || !l.doubleQuoteCloses()):
			start := l.pos
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
			trivia = append(trivia, Trivia{
				Kind: TriviaComment,
				Text: string(l.input[start:l.pos]),
			})
		default:
			return trivia
		}
	}
	return trivia
}

// doubleQuoteCloses reports whether the double quote at the current
// position is terminated before the end of its line, honoring backslash
// escapes. An unterminated double quote is a trailing comment.
func (l *Lexer) doubleQuoteCloses() bool {
	escaped := false
	for i := l.pos + 1; i < len(l.input); i++ {
		ch := l.input[i]
		if ch == '\n' {
			return false
		}
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			return true
		}
	}
	return false
}

func (l *Lexer) scanDoubleQuoted(start int, leading []Trivia) Token {
	l.advance()
	escaped := false
	for l.pos < len(l.input) {
		ch := l.advance()
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			return l.token(TokenString, start, leading)
		}
	}
	// Unreachable when scanLeading routed us here, but stay total.
	return l.token(TokenError, start, leading)
}

func (l *Lexer) scanSingleQuoted(start int, leading []Trivia) Token {
	l.advance()
	for l.pos < len(l.input) && l.peek() != '\n' {
		ch := l.advance()
		if ch == '\'' {
			if l.peek() == '\'' {
				l.advance()
				continue
			}
			return l.token(TokenString, start, leading)
		}
	}
	// Unterminated literal: the error token stops at the end of the
	// line so the damage never spills past it.
	return l.token(TokenError, start, leading)
}

func (l *Lexer) scanNumber(start int, leading []Trivia) Token {
	for l.pos < len(l.input) && isDigit(l.peek()) {
		l.advance()
	}
	return l.token(TokenNumber, start, leading)
}

func (l *Lexer) scanIdentOrKeyword(start int, leading []Trivia) Token {
	l.advance()
	for l.pos < len(l.input) && isIdentChar(l.peek()) {
		l.advance()
	}
	kind := LookupKeyword(string(l.input[start:l.pos]))
	return l.token(kind, start, leading)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

// isIdentStart admits letters, underscore and the option-variable
// ampersand (&option).
func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch == '&'
}

// isIdentChar admits the scope/autoload punctuation of vimscript names
// (s:var, plug#name) in addition to the usual identifier bytes.
func isIdentChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '#' || ch == ':'
}
