package format

import (
	"io"
	"strings"

	"github.com/dhamidi/vimls/vim/parser"
)

// VimPrettyPrinter re-emits a parse tree statement by statement.
// Statements the parser understood come out in canonical layout;
// anything carrying an error keeps its original text, trivia included,
// so printing is total over arbitrary input.
type VimPrettyPrinter struct {
	w           io.Writer
	indent      int
	indentStr   string
	atLineStart bool
}

func NewVimPrettyPrinter(w io.Writer) *VimPrettyPrinter {
	return &VimPrettyPrinter{
		w:           w,
		indentStr:   "  ",
		atLineStart: true,
	}
}

// SetIndentWidth overrides the two-space default.
func (p *VimPrettyPrinter) SetIndentWidth(width int) {
	if width < 1 {
		return
	}
	p.indentStr = strings.Repeat(" ", width)
}

func (p *VimPrettyPrinter) Print(tree *parser.Tree) error {
	for _, child := range tree.Root().GreenNode().Children() {
		switch el := child.(type) {
		case *parser.Node:
			p.printStatement(el)
		case parser.Token:
			// The end-of-file token holds whatever trails the
			// last statement.
			p.flushTrailingComments(el)
		}
	}
	return nil
}

func (p *VimPrettyPrinter) printStatement(n *parser.Node) {
	// Mid-line means the previous statement was reconstructed from
	// broken source and its line is still open; only the original
	// text continues it safely.
	if !p.atLineStart || !printable(n) {
		p.printVerbatim(n)
		return
	}
	switch n.Kind {
	case parser.KindNullStmt:
		p.printNullStmt(n)
	case parser.KindLetStmt:
		p.printLetStmt(n)
	case parser.KindCallStmt:
		p.printCallStmt(n)
	case parser.KindIfStmt:
		p.printIfStmt(n)
	case parser.KindForStmt:
		p.printForStmt(n)
	case parser.KindFunctionStmt:
		p.printFunctionStmt(n)
	default:
		p.printVerbatim(n)
	}
}

// printVerbatim copies the statement's source text through untouched,
// original spacing included.
func (p *VimPrettyPrinter) printVerbatim(n *parser.Node) {
	text := n.Text()
	p.write(text)
	p.atLineStart = strings.HasSuffix(text, "\n")
}

// printNullStmt renders a line that carries no statement: blank lines
// stay blank, comment lines keep their text at the current indent.
func (p *VimPrettyPrinter) printNullStmt(n *parser.Node) {
	printed := false
	for _, tok := range n.Tokens() {
		for _, tr := range tok.Leading {
			if tr.Kind != parser.TriviaComment {
				continue
			}
			p.writeIndent()
			p.write(tr.Text)
			p.newline()
			printed = true
		}
	}
	if !printed {
		p.newline()
	}
}

func (p *VimPrettyPrinter) printLetStmt(n *parser.Node) {
	nodes := nodeChildren(n)
	p.writeIndent()
	p.write("let ")
	p.printExpr(nodes[0])
	p.write(" = ")
	p.printExpr(nodes[1])
	p.endStatementLine(headerNewline(n))
}

func (p *VimPrettyPrinter) printCallStmt(n *parser.Node) {
	nodes := nodeChildren(n)
	p.writeIndent()
	p.write("call ")
	p.printExpr(nodes[0])
	p.endStatementLine(headerNewline(n))
}

func (p *VimPrettyPrinter) printIfStmt(n *parser.Node) {
	nodes := nodeChildren(n)
	p.writeIndent()
	p.write("if ")
	p.printExpr(nodes[0])
	p.endStatementLine(headerNewline(n))
	p.printBlock(nodes[1])
	p.writeIndent()
	p.write("endif")
	p.endStatementLine(closerNewline(n))
}

func (p *VimPrettyPrinter) printForStmt(n *parser.Node) {
	nodes := nodeChildren(n)
	p.writeIndent()
	p.write("for ")
	p.printExpr(nodes[0])
	p.write(" in ")
	p.printExpr(nodes[1])
	p.endStatementLine(headerNewline(n))
	p.printBlock(nodes[2])
	p.writeIndent()
	p.write("endfor")
	p.endStatementLine(closerNewline(n))
}

func (p *VimPrettyPrinter) printFunctionStmt(n *parser.Node) {
	nodes := nodeChildren(n)
	p.writeIndent()
	p.write("function")
	if _, ok := n.FirstTokenOfKind(parser.TokenBang); ok {
		p.write("!")
	}
	p.write(" ")
	p.printExpr(nodes[0])
	p.write("(")
	p.printVarListItems(nodes[1])
	p.write(")")
	if _, ok := n.FirstTokenOfKind(parser.TokenAbort); ok {
		p.write(" abort")
	}
	p.endStatementLine(headerNewline(n))
	p.printBlock(nodes[2])
	p.writeIndent()
	p.write("endfunction")
	p.endStatementLine(closerNewline(n))
}

func (p *VimPrettyPrinter) printBlock(block *parser.Node) {
	p.indent++
	for _, child := range block.Children() {
		if stmt, ok := child.(*parser.Node); ok {
			p.printStatement(stmt)
		}
	}
	p.indent--
}

func (p *VimPrettyPrinter) printExpr(n *parser.Node) {
	switch n.Kind {
	case parser.KindNumberLit, parser.KindStringLit, parser.KindVarRef:
		p.write(firstTokenText(n))
	case parser.KindBinaryExpr:
		nodes := nodeChildren(n)
		p.printExpr(nodes[0])
		p.write(" ")
		p.write(firstTokenText(n))
		p.write(" ")
		p.printExpr(nodes[1])
	case parser.KindCallExpr:
		nodes := nodeChildren(n)
		p.printExpr(nodes[0])
		p.write("(")
		p.printArgList(nodes[1])
		p.write(")")
	case parser.KindVarList:
		if _, ok := n.FirstTokenOfKind(parser.TokenLeftBracket); ok {
			p.write("[")
			p.printVarListItems(n)
			p.write("]")
		} else {
			p.printVarListItems(n)
		}
	}
}

func (p *VimPrettyPrinter) printArgList(n *parser.Node) {
	first := true
	for _, arg := range nodeChildren(n) {
		if !first {
			p.write(", ")
		}
		p.printExpr(arg)
		first = false
	}
}

func (p *VimPrettyPrinter) printVarListItems(n *parser.Node) {
	first := true
	for _, item := range n.ChildrenOfKind(parser.KindVarRef) {
		if !first {
			p.write(", ")
		}
		p.printExpr(item)
		first = false
	}
}

// endStatementLine closes a canonical line, keeping a comment that
// trailed the original line. The zero token stands for a line end of
// file cut short.
func (p *VimPrettyPrinter) endStatementLine(tok parser.Token) {
	for _, tr := range tok.Leading {
		if tr.Kind == parser.TriviaComment {
			p.write(" ")
			p.write(tr.Text)
		}
	}
	p.newline()
}

// flushTrailingComments prints comments the end-of-file token still
// holds once every statement is done.
func (p *VimPrettyPrinter) flushTrailingComments(tok parser.Token) {
	for _, tr := range tok.Leading {
		if tr.Kind != parser.TriviaComment {
			continue
		}
		if p.atLineStart {
			p.writeIndent()
		} else {
			p.write(" ")
		}
		p.write(tr.Text)
		p.newline()
	}
}

func (p *VimPrettyPrinter) writeIndent() {
	if !p.atLineStart {
		return
	}
	for i := 0; i < p.indent; i++ {
		p.write(p.indentStr)
	}
	p.atLineStart = false
}

func (p *VimPrettyPrinter) write(s string) {
	p.w.Write([]byte(s))
}

func (p *VimPrettyPrinter) newline() {
	p.write("\n")
	p.atLineStart = true
}

// printable reports whether a statement parsed cleanly enough for a
// canonical re-print. Statements that carry error nodes, lost their
// block closer, or hide comments where the canonical layout could not
// keep them are copied from the source instead.
func printable(n *parser.Node) bool {
	if n.Kind == parser.KindNullStmt {
		return true
	}
	if hiddenComment(n) {
		return false
	}
	nodes := nodeChildren(n)
	switch n.Kind {
	case parser.KindLetStmt:
		if len(nodes) != 2 || nodes[0].Kind != parser.KindVarRef {
			return false
		}
		if _, ok := n.FirstTokenOfKind(parser.TokenAssign); !ok {
			return false
		}
		return exprOK(nodes[1])
	case parser.KindCallStmt:
		return len(nodes) == 1 && nodes[0].Kind == parser.KindCallExpr && exprOK(nodes[0])
	case parser.KindIfStmt:
		if len(nodes) != 2 || nodes[1].Kind != parser.KindBlock {
			return false
		}
		if _, ok := n.FirstTokenOfKind(parser.TokenEndif); !ok {
			return false
		}
		return exprOK(nodes[0])
	case parser.KindForStmt:
		if len(nodes) != 3 || nodes[2].Kind != parser.KindBlock {
			return false
		}
		if _, ok := n.FirstTokenOfKind(parser.TokenIn); !ok {
			return false
		}
		if _, ok := n.FirstTokenOfKind(parser.TokenEndfor); !ok {
			return false
		}
		return exprOK(nodes[0]) && exprOK(nodes[1])
	case parser.KindFunctionStmt:
		if len(nodes) != 3 || nodes[0].Kind != parser.KindVarRef ||
			nodes[1].Kind != parser.KindVarList || nodes[2].Kind != parser.KindBlock {
			return false
		}
		if _, ok := n.FirstTokenOfKind(parser.TokenRightParen); !ok {
			return false
		}
		if _, ok := n.FirstTokenOfKind(parser.TokenEndfunction); !ok {
			return false
		}
		return exprOK(nodes[1])
	default:
		return false
	}
}

// exprOK reports whether an expression subtree has the exact shape the
// canonical printers expect.
func exprOK(n *parser.Node) bool {
	nodes := nodeChildren(n)
	switch n.Kind {
	case parser.KindNumberLit, parser.KindStringLit, parser.KindVarRef:
		return len(nodes) == 0
	case parser.KindBinaryExpr:
		return len(nodes) == 2 && exprOK(nodes[0]) && exprOK(nodes[1])
	case parser.KindCallExpr:
		if len(nodes) != 2 || nodes[0].Kind != parser.KindVarRef ||
			nodes[1].Kind != parser.KindArgList {
			return false
		}
		if _, ok := n.FirstTokenOfKind(parser.TokenRightParen); !ok {
			return false
		}
		return exprOK(nodes[1])
	case parser.KindArgList:
		for _, arg := range nodes {
			if !exprOK(arg) {
				return false
			}
		}
		return true
	case parser.KindVarList:
		for _, item := range nodes {
			if item.Kind != parser.KindVarRef {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// hiddenComment reports whether a comment sits somewhere the canonical
// layout would drop it, such as buried between the pieces of a
// continued line. The newlines ending the statement's own lines are
// the only places a comment survives canonically.
func hiddenComment(n *parser.Node) bool {
	for _, child := range n.Children() {
		switch el := child.(type) {
		case *parser.Node:
			if el.Kind == parser.KindBlock {
				// Block children decide for themselves.
				continue
			}
			for _, tok := range el.Tokens() {
				if commentCount(tok) > 0 {
					return true
				}
			}
		case parser.Token:
			if el.Kind == parser.TokenNewline {
				// Two comments on one line end cannot be
				// joined: the second quote would reopen a
				// string.
				if commentCount(el) > 1 {
					return true
				}
				continue
			}
			if commentCount(el) > 0 {
				return true
			}
		}
	}
	return false
}

func commentCount(tok parser.Token) int {
	count := 0
	for _, tr := range tok.Leading {
		if tr.Kind == parser.TriviaComment {
			count++
		}
	}
	return count
}

func nodeChildren(n *parser.Node) []*parser.Node {
	var nodes []*parser.Node
	for _, child := range n.Children() {
		if el, ok := child.(*parser.Node); ok {
			nodes = append(nodes, el)
		}
	}
	return nodes
}

func firstTokenText(n *parser.Node) string {
	for _, child := range n.Children() {
		if tok, ok := child.(parser.Token); ok {
			return tok.Text
		}
	}
	return ""
}

// headerNewline is the newline ending the statement's first line;
// closerNewline the one after its block closer. Either may be the zero
// token when end of file cut the statement short.
func headerNewline(n *parser.Node) parser.Token {
	tok, _ := n.FirstTokenOfKind(parser.TokenNewline)
	return tok
}

func closerNewline(n *parser.Node) parser.Token {
	seenBlock := false
	for _, child := range n.Children() {
		switch el := child.(type) {
		case *parser.Node:
			if el.Kind == parser.KindBlock {
				seenBlock = true
			}
		case parser.Token:
			if seenBlock && el.Kind == parser.TokenNewline {
				return el
			}
		}
	}
	return parser.Token{}
}
