package parser

// Span is an absolute byte range into the source text, half-open:
// [Start, End).
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether offset falls inside the span. The end offset
// is excluded, so adjacent spans never both contain the same offset.
func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset < s.End
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenNewline

	// Keywords
	TokenLet
	TokenCall
	TokenIf
	TokenEndif
	TokenFunction
	TokenEndfunction
	TokenFor
	TokenEndfor
	TokenIn
	TokenAbort

	// Literals
	TokenIdent
	TokenNumber
	TokenString

	// Operators and punctuation
	TokenAssign
	TokenBang
	TokenInequality
	TokenDot
	TokenComma
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:          "EOF",
	TokenError:        "Error",
	TokenNewline:      "Newline",
	TokenLet:          "let",
	TokenCall:         "call",
	TokenIf:           "if",
	TokenEndif:        "endif",
	TokenFunction:     "function",
	TokenEndfunction:  "endfunction",
	TokenFor:          "for",
	TokenEndfor:       "endfor",
	TokenIn:           "in",
	TokenAbort:        "abort",
	TokenIdent:        "Identifier",
	TokenNumber:       "Number",
	TokenString:       "String",
	TokenAssign:       "=",
	TokenBang:         "!",
	TokenInequality:   "!=#",
	TokenDot:          ".",
	TokenComma:        ",",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenLeftBracket:  "[",
	TokenRightBracket: "]",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// diagName renders a token kind the way diagnostics spell an expected
// token: literal classes by name, everything else as backticked text.
func (k TokenKind) diagName() string {
	switch k {
	case TokenEOF:
		return "end of file"
	case TokenNewline:
		return "new line"
	case TokenError:
		return "invalid"
	case TokenIdent:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string literal"
	}
	return "`" + tokenKindNames[k] + "`"
}

var keywords = map[string]TokenKind{
	"let":         TokenLet,
	"call":        TokenCall,
	"if":          TokenIf,
	"endif":       TokenEndif,
	"function":    TokenFunction,
	"endfunction": TokenEndfunction,
	"for":         TokenFor,
	"endfor":      TokenEndfor,
	"in":          TokenIn,
	"abort":       TokenAbort,
}

func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}

type TriviaKind int

const (
	TriviaWhitespace TriviaKind = iota
	TriviaComment
	TriviaContinuation
)

var triviaKindNames = map[TriviaKind]string{
	TriviaWhitespace:   "Whitespace",
	TriviaComment:      "Comment",
	TriviaContinuation: "Continuation",
}

func (k TriviaKind) String() string {
	if name, ok := triviaKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Trivia is a run of source bytes that carries no grammatical meaning:
// blanks, a comment, or a line continuation (newline + blanks + backslash).
// Trivia belongs to the token that follows it, so every source byte is
// owned by exactly one token.
type Trivia struct {
	Kind TriviaKind
	Text string
}

// Token is a green leaf: it knows its kind, its text and the trivia that
// precedes it, but not where in the document it sits. Absolute positions
// are recovered by cursors during traversal.
type Token struct {
	Kind    TokenKind
	Text    string
	Leading []Trivia
}

// LeadingWidth is the byte count of all leading trivia.
func (t Token) LeadingWidth() int {
	w := 0
	for _, tr := range t.Leading {
		w += len(tr.Text)
	}
	return w
}

// Width is the full byte count of the token: leading trivia plus text.
func (t Token) Width() int {
	return t.LeadingWidth() + len(t.Text)
}

func (t Token) isElement() {}

// diagText renders a token the way diagnostics spell a found token.
func (t Token) diagText() string {
	switch t.Kind {
	case TokenNewline:
		return "new line"
	case TokenEOF:
		return "end of file"
	}
	return "`" + t.Text + "`"
}
