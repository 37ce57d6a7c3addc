package parser

import (
	"fmt"
	"sync"
)

// Tree is one parsed document snapshot: the source text, the green root
// covering every byte of it, and the diagnostics recovered along the way.
// A tree never changes after Parse or Reparse returns it; readers may
// keep traversing an old version while a newer one is being built.
type Tree struct {
	text        []byte
	root        *Node
	diagnostics []Diagnostic

	lineIndexOnce sync.Once
	lineIndex     *LineIndex
}

// Text returns the exact source the tree was parsed from.
func (t *Tree) Text() []byte { return t.text }

// Root returns a cursor positioned on the root node.
func (t *Tree) Root() *Cursor {
	return &Cursor{node: t.root, start: 0}
}

// Diagnostics returns the parse problems in position order.
func (t *Tree) Diagnostics() []Diagnostic { return t.diagnostics }

// HasErrors reports whether the parse recovered from any problem.
func (t *Tree) HasErrors() bool { return len(t.diagnostics) > 0 }

// LineIndex returns the offset↔position index for the tree's text,
// built on first use. Safe for concurrent callers because trees are
// immutable.
func (t *Tree) LineIndex() *LineIndex {
	t.lineIndexOnce.Do(func() {
		t.lineIndex = NewLineIndex(t.text)
	})
	return t.lineIndex
}

// Parse builds a syntax tree for text. It never fails: malformed input
// parses to a tree that still covers every byte, with diagnostics
// describing what went wrong.
func Parse(text []byte) *Tree {
	p := newParser(Tokenize(text))
	root := p.parseRoot()
	return &Tree{text: text, root: root, diagnostics: p.diags}
}

type Parser struct {
	tokens []Token
	starts []int
	pos    int
	diags  []Diagnostic
}

func newParser(tokens []Token) *Parser {
	starts := make([]int, len(tokens))
	offset := 0
	for i, tok := range tokens {
		starts[i] = offset
		offset += tok.Width()
	}
	return &Parser{tokens: tokens, starts: starts}
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// bump consumes the current token into n.
func (p *Parser) bump(n *Node) {
	n.add(p.advance())
}

// tokenSpan is the absolute text span of tokens[i], leading trivia
// excluded, so diagnostics point at the offending bytes themselves.
func (p *Parser) tokenSpan(i int) Span {
	if i >= len(p.tokens) {
		i = len(p.tokens) - 1
	}
	tok := p.tokens[i]
	start := p.starts[i] + tok.LeadingWidth()
	return Span{Start: start, End: start + len(tok.Text)}
}

// diagnose records a problem anchored at the current token. A found
// error token reclassifies the problem as lexical.
func (p *Parser) diagnose(kind DiagKind, format string, args ...any) {
	if p.peek().Kind == TokenError {
		kind = DiagLex
	}
	p.diags = append(p.diags, Diagnostic{
		Span:     p.tokenSpan(p.pos),
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
		Kind:     kind,
	})
}

// expect consumes the current token into n when it has the wanted kind;
// otherwise it reports "expected X, found Y" and leaves the token alone.
func (p *Parser) expect(n *Node, kind TokenKind) bool {
	if p.check(kind) {
		p.bump(n)
		return true
	}
	p.diagnose(DiagSyntax, "expected %s, found %s", kind.diagName(), p.peek().diagText())
	return false
}

// consumeToEndOfLine moves everything up to (not including) the next
// newline into n.
func (p *Parser) consumeToEndOfLine(n *Node) {
	for !p.check(TokenNewline) && !p.check(TokenEOF) {
		p.bump(n)
	}
}

// recoverToLineEnd wraps the remainder of the line in an error node
// hanging off n. The caller has already reported the diagnostic. The
// terminating newline stays put for finishStatement.
func (p *Parser) recoverToLineEnd(n *Node) {
	err := newNode(KindError)
	p.consumeToEndOfLine(err)
	if err.NumChildren() > 0 {
		n.add(err)
	}
}

// finishStatement consumes the statement's terminating newline. End of
// file also terminates a statement but stays in the stream for the root.
// Anything else is reported and wrapped so the statement still reaches
// its line end.
func (p *Parser) finishStatement(n *Node) {
	if p.check(TokenNewline) {
		p.bump(n)
		return
	}
	if p.check(TokenEOF) {
		return
	}
	p.diagnose(DiagSyntax, "expected new line, found %s", p.peek().diagText())
	p.recoverToLineEnd(n)
	if p.check(TokenNewline) {
		p.bump(n)
	}
}

// mustProgress keeps recovery loops honest: when a statement parse did
// not move, the current token is consumed into its own error statement
// so the loop always advances.
func (p *Parser) mustProgress(before int, into *Node) {
	if p.pos != before || p.check(TokenEOF) {
		return
	}
	err := newNode(KindError)
	p.bump(err)
	into.add(err)
}

func (p *Parser) parseRoot() *Node {
	root := newNode(KindRoot)
	for !p.check(TokenEOF) {
		before := p.pos
		root.add(p.parseStatement())
		p.mustProgress(before, root)
	}
	p.bump(root) // EOF token, carrying any trailing trivia
	return root
}

func (p *Parser) parseStatement() *Node {
	switch p.peek().Kind {
	case TokenNewline:
		return p.parseNullStatement()
	case TokenLet:
		return p.parseLetStatement()
	case TokenCall:
		return p.parseCallStatement()
	case TokenIf:
		return p.parseIfStatement()
	case TokenFunction:
		return p.parseFunctionStatement()
	case TokenFor:
		return p.parseForStatement()
	case TokenEndif, TokenEndfunction, TokenEndfor:
		return p.parseStrayCloser()
	default:
		return p.parseUnknownStatement()
	}
}

// parseNullStatement covers a line with no statement on it. The newline
// token keeps its leading trivia, so comment lines live here too.
func (p *Parser) parseNullStatement() *Node {
	n := newNode(KindNullStmt)
	p.bump(n)
	return n
}

// parseStrayCloser handles a block closer with nothing to close: it
// becomes its own one-token error statement instead of vanishing.
func (p *Parser) parseStrayCloser() *Node {
	p.diagnose(DiagStrayCloser, "expected keyword, found %s", p.peek().diagText())
	n := newNode(KindError)
	p.bump(n)
	return n
}

// parseUnknownStatement consumes exactly one token, so dispatch retries
// on the remainder and recovery needs at most one step per token.
func (p *Parser) parseUnknownStatement() *Node {
	p.diagnose(DiagSyntax, "expected keyword, found %s", p.peek().diagText())
	n := newNode(KindError)
	p.bump(n)
	return n
}

func (p *Parser) parseLetStatement() *Node {
	n := newNode(KindLetStmt)
	p.bump(n) // let
	if !p.check(TokenIdent) {
		p.diagnose(DiagSyntax, "expected identifier, found %s", p.peek().diagText())
		p.recoverToLineEnd(n)
	} else {
		n.add(p.parseVarRef())
		if !p.expect(n, TokenAssign) {
			p.recoverToLineEnd(n)
		} else {
			expr, ok := p.parseExpression()
			n.add(expr)
			if !ok {
				p.recoverToLineEnd(n)
			}
		}
	}
	p.finishStatement(n)
	return n
}

func (p *Parser) parseCallStatement() *Node {
	n := newNode(KindCallStmt)
	p.bump(n) // call
	if !p.check(TokenIdent) {
		p.diagnose(DiagSyntax, "expected identifier, found %s", p.peek().diagText())
		p.recoverToLineEnd(n)
	} else {
		n.add(p.parseCallExpr())
	}
	p.finishStatement(n)
	return n
}

func (p *Parser) parseIfStatement() *Node {
	n := newNode(KindIfStmt)
	p.bump(n) // if
	cond, ok := p.parseExpression()
	n.add(cond)
	if !ok {
		p.recoverToLineEnd(n)
	}
	p.finishStatement(n)
	n.add(p.parseBlock(TokenEndif))
	p.finishBlock(n, TokenEndif)
	return n
}

func (p *Parser) parseFunctionStatement() *Node {
	n := newNode(KindFunctionStmt)
	p.bump(n) // function
	if p.check(TokenBang) {
		p.bump(n)
	}
	if !p.check(TokenIdent) {
		p.diagnose(DiagSyntax, "expected identifier, found %s", p.peek().diagText())
		p.recoverToLineEnd(n)
	} else {
		n.add(p.parseVarRef())
		if !p.expect(n, TokenLeftParen) {
			p.recoverToLineEnd(n)
		} else {
			params := newNode(KindVarList)
			ok := p.parseVarListItems(params, TokenRightParen)
			n.add(params)
			if !ok {
				p.recoverToLineEnd(n)
			} else {
				p.bump(n) // )
				if p.check(TokenAbort) {
					p.bump(n)
				}
			}
		}
	}
	p.finishStatement(n)
	n.add(p.parseBlock(TokenEndfunction))
	p.finishBlock(n, TokenEndfunction)
	return n
}

func (p *Parser) parseForStatement() *Node {
	n := newNode(KindForStmt)
	p.bump(n) // for
	if p.parseLoopVar(n) {
		if !p.expect(n, TokenIn) {
			p.recoverToLineEnd(n)
		} else {
			expr, ok := p.parseExpression()
			n.add(expr)
			if !ok {
				p.recoverToLineEnd(n)
			}
		}
	} else {
		p.recoverToLineEnd(n)
	}
	p.finishStatement(n)
	n.add(p.parseBlock(TokenEndfor))
	p.finishBlock(n, TokenEndfor)
	return n
}

// parseLoopVar parses the single-variable or destructuring form of a
// for loop variable into n.
func (p *Parser) parseLoopVar(n *Node) bool {
	switch p.peek().Kind {
	case TokenIdent:
		n.add(p.parseVarRef())
		return true
	case TokenLeftBracket:
		list := newNode(KindVarList)
		p.bump(list) // [
		ok := p.parseVarListItems(list, TokenRightBracket)
		if ok {
			p.bump(list) // ]
		}
		n.add(list)
		return ok
	default:
		p.diagnose(DiagSyntax, "expected `[` or identifier, found %s", p.peek().diagText())
		return false
	}
}

// parseVarListItems parses comma-separated identifiers into n until the
// closer, which is left for the caller. A trailing comma is reported but
// keeps the list well formed.
func (p *Parser) parseVarListItems(n *Node, closer TokenKind) bool {
	if p.check(closer) {
		return true
	}
	for {
		if !p.check(TokenIdent) {
			p.diagnose(DiagSyntax, "expected identifier, found %s", p.peek().diagText())
			return false
		}
		n.add(p.parseVarRef())
		switch {
		case p.check(TokenComma):
			p.bump(n)
			if p.check(closer) {
				p.diagnose(DiagSyntax, "expected identifier, found %s", p.peek().diagText())
				return true
			}
		case p.check(closer):
			return true
		default:
			p.diagnose(DiagSyntax, "expected `,` or %s, found %s",
				closer.diagName(), p.peek().diagText())
			return false
		}
	}
}

// parseBlock parses statements until the given closer appears at this
// nesting level. Other closers do not close this block; statement
// dispatch turns them into stray-closer error statements.
func (p *Parser) parseBlock(closer TokenKind) *Node {
	block := newNode(KindBlock)
	for !p.check(closer) && !p.check(TokenEOF) {
		before := p.pos
		block.add(p.parseStatement())
		p.mustProgress(before, block)
	}
	return block
}

// finishBlock consumes the closer and its line end, or reports an
// unterminated block at end of file. Children parsed so far stay in
// place either way.
func (p *Parser) finishBlock(n *Node, closer TokenKind) {
	if p.check(closer) {
		p.bump(n)
		p.finishStatement(n)
		return
	}
	p.diagnose(DiagUnterminatedBlock, "expected %s, found %s",
		closer.diagName(), p.peek().diagText())
}

const (
	bpInequality = 1 // !=#
	bpConcat     = 2 // .
)

// parseExpression parses with Pratt-style binding powers: inequality
// binds looser than concatenation, both left-associative. ok is false
// when a terminal was missing; the returned node is still the best
// partial tree and the diagnostic is already recorded, so callers only
// need to skip the rest of the line.
func (p *Parser) parseExpression() (*Node, bool) {
	return p.parseExprBP(0)
}

func (p *Parser) parseExprBP(minBP int) (*Node, bool) {
	left, ok := p.parseTerminal()
	if !ok {
		return left, false
	}
	for {
		bp := 0
		switch p.peek().Kind {
		case TokenInequality:
			bp = bpInequality
		case TokenDot:
			bp = bpConcat
		}
		if bp == 0 || bp <= minBP {
			return left, true
		}
		n := newNode(KindBinaryExpr)
		n.add(left)
		p.bump(n) // operator
		right, rok := p.parseExprBP(bp)
		n.add(right)
		left = n
		if !rok {
			return left, false
		}
	}
}

// parseTerminal parses a number, string, variable reference or call
// expression. Anything else yields a zero-width error node marking the
// empty expression slot.
func (p *Parser) parseTerminal() (*Node, bool) {
	switch p.peek().Kind {
	case TokenNumber:
		n := newNode(KindNumberLit)
		p.bump(n)
		return n, true
	case TokenString:
		n := newNode(KindStringLit)
		p.bump(n)
		return n, true
	case TokenIdent:
		if p.peekN(1).Kind == TokenLeftParen {
			return p.parseCallExpr(), true
		}
		return p.parseVarRef(), true
	}
	p.diagnose(DiagSyntax, "expected expression, found %s", p.peek().diagText())
	return newNode(KindError), false
}

// parseVarRef wraps the identifier under the cursor. Callers check the
// token kind first.
func (p *Parser) parseVarRef() *Node {
	n := newNode(KindVarRef)
	p.bump(n)
	return n
}

// parseCallExpr parses NAME '(' args ')'. On a broken argument list it
// skips ahead past a matched ')' or to the line end, whichever comes
// first, so the enclosing statement can still terminate cleanly.
func (p *Parser) parseCallExpr() *Node {
	n := newNode(KindCallExpr)
	n.add(p.parseVarRef())
	if !p.expect(n, TokenLeftParen) {
		p.recoverToLineEnd(n)
		return n
	}
	args, ok := p.parseArgList()
	n.add(args)
	if !ok {
		p.recoverCallTail(n)
		return n
	}
	p.bump(n) // )
	return n
}

// parseArgList parses comma-separated expressions up to the closing
// paren, which stays for the caller. ok is false when the list broke in
// a way the caller has to skip past.
func (p *Parser) parseArgList() (*Node, bool) {
	n := newNode(KindArgList)
	if p.check(TokenRightParen) {
		return n, true
	}
	for {
		elem, ok := p.parseExpression()
		n.add(elem)
		if !ok {
			return n, false
		}
		switch {
		case p.check(TokenComma):
			p.bump(n)
			if p.check(TokenRightParen) {
				// Trailing comma: reported, but the matched paren
				// still closes the call.
				p.diagnose(DiagSyntax, "expected expression, found %s", p.peek().diagText())
				return n, true
			}
		case p.check(TokenRightParen):
			return n, true
		default:
			p.diagnose(DiagSyntax, "expected `,` or `)`, found %s", p.peek().diagText())
			return n, false
		}
	}
}

func (p *Parser) recoverCallTail(n *Node) {
	err := newNode(KindError)
	for !p.check(TokenNewline) && !p.check(TokenEOF) {
		closing := p.check(TokenRightParen)
		p.bump(err)
		if closing {
			break
		}
	}
	if err.NumChildren() > 0 {
		n.add(err)
	}
}
