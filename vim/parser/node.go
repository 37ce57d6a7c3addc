package parser

import (
	"fmt"
	"strconv"
	"strings"
)

type NodeKind int

const (
	KindRoot NodeKind = iota
	KindLetStmt
	KindCallStmt
	KindNullStmt
	KindIfStmt
	KindFunctionStmt
	KindForStmt
	KindBinaryExpr
	KindCallExpr
	KindNumberLit
	KindStringLit
	KindVarRef
	KindArgList
	KindVarList
	KindBlock
	KindError
)

var nodeKindNames = map[NodeKind]string{
	KindRoot:         "Root",
	KindLetStmt:      "LetStmt",
	KindCallStmt:     "CallStmt",
	KindNullStmt:     "NullStmt",
	KindIfStmt:       "IfStmt",
	KindFunctionStmt: "FunctionStmt",
	KindForStmt:      "ForStmt",
	KindBinaryExpr:   "BinaryExpr",
	KindCallExpr:     "CallExpr",
	KindNumberLit:    "NumberLit",
	KindStringLit:    "StringLit",
	KindVarRef:       "VarRef",
	KindArgList:      "ArgList",
	KindVarList:      "VarList",
	KindBlock:        "Block",
	KindError:        "ErrorNode",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Element is a green tree element: either a *Node or a Token. Elements
// know their width in bytes but not their absolute position; positions
// are recovered by cursors during traversal.
type Element interface {
	Width() int
	isElement()
}

// Node is a green interior node. It is immutable once the parser has
// finished building it and may be shared by reference between tree
// versions after an incremental reparse.
type Node struct {
	Kind     NodeKind
	children []Element
	width    int
}

func newNode(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// add appends a child and grows the node's width. Only the parser and
// the reparse driver call it; after that the node never changes.
func (n *Node) add(el Element) {
	if child, ok := el.(*Node); ok && child == nil {
		return
	}
	n.children = append(n.children, el)
	n.width += el.Width()
}

func (n *Node) Width() int { return n.width }

func (n *Node) isElement() {}

func (n *Node) NumChildren() int { return len(n.children) }

func (n *Node) Child(i int) Element { return n.children[i] }

// Children returns the child elements in source order. The slice must
// not be modified.
func (n *Node) Children() []Element {
	return n.children
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.children {
		if node, ok := child.(*Node); ok && node.Kind == kind {
			return node
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.children {
		if node, ok := child.(*Node); ok && node.Kind == kind {
			result = append(result, node)
		}
	}
	return result
}

// FirstTokenOfKind returns the first immediate child token of the given
// kind.
func (n *Node) FirstTokenOfKind(kind TokenKind) (Token, bool) {
	for _, child := range n.children {
		if tok, ok := child.(Token); ok && tok.Kind == kind {
			return tok, true
		}
	}
	return Token{}, false
}

// Tokens flattens the subtree into its token stream in source order.
func (n *Node) Tokens() []Token {
	var tokens []Token
	n.appendTokens(&tokens)
	return tokens
}

func (n *Node) appendTokens(out *[]Token) {
	for _, child := range n.children {
		switch el := child.(type) {
		case *Node:
			el.appendTokens(out)
		case Token:
			*out = append(*out, el)
		}
	}
}

// Text re-emits the exact source text of the subtree, trivia included.
func (n *Node) Text() string {
	var b strings.Builder
	b.Grow(n.width)
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	for _, child := range n.children {
		switch el := child.(type) {
		case *Node:
			el.writeText(b)
		case Token:
			for _, tr := range el.Leading {
				b.WriteString(tr.Text)
			}
			b.WriteString(el.Text)
		}
	}
}

// String renders the subtree as an indented kind dump, one element per
// line. Tokens show their quoted text.
func (n *Node) String() string {
	var b strings.Builder
	n.stringIndent(&b, 0)
	return b.String()
}

func (n *Node) stringIndent(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s\n", indent, n.Kind)
	for _, child := range n.children {
		switch el := child.(type) {
		case *Node:
			el.stringIndent(b, depth+1)
		case Token:
			fmt.Fprintf(b, "%s  %s %s\n", indent, el.Kind, strconv.Quote(el.Text))
		}
	}
}
