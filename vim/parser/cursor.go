package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Cursor is the red layer over a green node: it pairs the node with the
// absolute offset of its first byte and a link to the cursor it was
// reached through. Cursors are created on demand during traversal and
// thrown away afterwards; green nodes never store parents or offsets, so
// sharing subtrees between tree versions stays safe.
type Cursor struct {
	node   *Node
	start  int
	parent *Cursor
}

func (c *Cursor) Kind() NodeKind { return c.node.Kind }

// GreenNode exposes the underlying shared node, mainly for identity
// checks between tree versions.
func (c *Cursor) GreenNode() *Node { return c.node }

// Span is the absolute byte range of the node, leading trivia included.
func (c *Cursor) Span() Span {
	return Span{Start: c.start, End: c.start + c.node.width}
}

// Parent returns the cursor this one was reached through, or nil at the
// root.
func (c *Cursor) Parent() *Cursor { return c.parent }

// Children returns cursors for the immediate child nodes in source
// order. Child tokens are reachable through Tokens and TokenAt instead.
func (c *Cursor) Children() []*Cursor {
	var result []*Cursor
	offset := c.start
	for _, child := range c.node.children {
		if node, ok := child.(*Node); ok {
			result = append(result, &Cursor{node: node, start: offset, parent: c})
		}
		offset += child.Width()
	}
	return result
}

// Text re-emits the exact source text of the subtree.
func (c *Cursor) Text() string { return c.node.Text() }

// Tokens flattens the subtree into its token stream in source order.
func (c *Cursor) Tokens() []Token { return c.node.Tokens() }

// EachToken calls fn for every token in the subtree in source order,
// passing the token's absolute text span (leading trivia excluded).
func (c *Cursor) EachToken(fn func(tok Token, textSpan Span)) {
	eachToken(c.node, c.start, fn)
}

func eachToken(n *Node, start int, fn func(tok Token, textSpan Span)) {
	offset := start
	for _, child := range n.children {
		switch el := child.(type) {
		case *Node:
			eachToken(el, offset, fn)
		case Token:
			textStart := offset + el.LeadingWidth()
			fn(el, Span{Start: textStart, End: textStart + len(el.Text)})
		}
		offset += child.Width()
	}
}

// ChildAt returns the immediate child node whose span contains offset.
// Spans are half-open, so an offset on the boundary between two siblings
// belongs to the right one. Returns nil when the offset falls on a child
// token or outside the node.
func (c *Cursor) ChildAt(offset int) *Cursor {
	pos := c.start
	for _, child := range c.node.children {
		next := pos + child.Width()
		if offset >= pos && offset < next {
			if node, ok := child.(*Node); ok {
				return &Cursor{node: node, start: pos, parent: c}
			}
			return nil
		}
		pos = next
	}
	return nil
}

// NodeAt returns the deepest node whose span contains offset, which is
// the cursor itself when no child node contains it.
func (c *Cursor) NodeAt(offset int) *Cursor {
	cur := c
	for {
		child := cur.ChildAt(offset)
		if child == nil {
			return cur
		}
		cur = child
	}
}

// TokenAt returns the token owning the given offset together with its
// absolute text span. Trivia bytes count toward the token that follows
// them. An offset at or past the end of the subtree resolves to the last
// token, so querying at the very end of the document yields EOF.
func (c *Cursor) TokenAt(offset int) (Token, Span, bool) {
	if offset < c.start {
		return Token{}, Span{}, false
	}
	tokens := c.node.Tokens()
	pos := c.start
	for i, tok := range tokens {
		if offset < pos+tok.Width() || i == len(tokens)-1 {
			textStart := pos + tok.LeadingWidth()
			return tok, Span{Start: textStart, End: textStart + len(tok.Text)}, true
		}
		pos += tok.Width()
	}
	return Token{}, Span{}, false
}

// String renders the subtree as an indented dump with absolute spans.
// Token lines show the text span, excluding leading trivia.
func (c *Cursor) String() string {
	var b strings.Builder
	c.stringIndent(&b, 0)
	return b.String()
}

func (c *Cursor) stringIndent(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	span := c.Span()
	fmt.Fprintf(b, "%s%s [%d,%d)\n", indent, c.Kind(), span.Start, span.End)
	offset := c.start
	for _, el := range c.node.children {
		switch child := el.(type) {
		case *Node:
			sub := &Cursor{node: child, start: offset, parent: c}
			sub.stringIndent(b, depth+1)
		case Token:
			textStart := offset + child.LeadingWidth()
			fmt.Fprintf(b, "%s  %s %s [%d,%d)\n",
				indent, child.Kind, strconv.Quote(child.Text), textStart, textStart+len(child.Text))
		}
		offset += el.Width()
	}
}
