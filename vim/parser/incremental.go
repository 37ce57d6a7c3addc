package parser

// Edit replaces the bytes in [Start, End) of the previous text with
// NewText. Offsets are byte offsets into the previous version.
type Edit struct {
	Start   int
	End     int
	NewText []byte
}

func (e Edit) clamp(n int) Edit {
	if e.Start < 0 {
		e.Start = 0
	}
	if e.Start > n {
		e.Start = n
	}
	if e.End < e.Start {
		e.End = e.Start
	}
	if e.End > n {
		e.End = n
	}
	return e
}

// Reparse applies edit to prev and returns the tree for the resulting
// text. Statements the edit cannot have touched are carried over from
// prev by pointer, so unchanged subtrees keep their identity across
// versions. Whenever splicing cannot be shown safe the whole text is
// parsed from scratch; the result is always byte-for-byte equivalent to
// Parse of the edited text.
func Reparse(prev *Tree, edit Edit) *Tree {
	edit = edit.clamp(len(prev.text))
	delta := len(edit.NewText) - (edit.End - edit.Start)

	newText := make([]byte, 0, len(prev.text)+delta)
	newText = append(newText, prev.text[:edit.Start]...)
	newText = append(newText, edit.NewText...)
	newText = append(newText, prev.text[edit.End:]...)

	root, win, ok := spliceRun(prev.root, 0, true, edit, delta, newText)
	if !ok {
		return Parse(newText)
	}

	var diags []Diagnostic
	for _, d := range prev.diagnostics {
		if d.Span.Start < win.oldStart {
			diags = append(diags, d)
		}
	}
	diags = append(diags, win.fresh...)
	for _, d := range prev.diagnostics {
		if d.Span.Start >= win.oldEnd {
			d.Span.Start += delta
			d.Span.End += delta
			diags = append(diags, d)
		}
	}
	return &Tree{text: newText, root: root, diagnostics: diags}
}

// window describes the region that was freshly parsed during a splice:
// its extent in the previous text, and the diagnostics the fresh parse
// produced, already shifted to new-text offsets.
type window struct {
	oldStart int
	oldEnd   int
	fresh    []Diagnostic
}

// spliceRun rebuilds the statement run owned by n (the root or a block
// body starting at nodeStart) around the edit. Children the edit cannot
// reach are reused; the touched range is reparsed from the new text.
// ok is false when the caller should parse the whole text instead.
func spliceRun(n *Node, nodeStart int, isRoot bool, edit Edit, delta int, newText []byte) (*Node, window, bool) {
	// Find the contiguous child range whose closed extents touch the
	// edit. Touching counts: an insertion at a boundary can extend
	// either neighbor.
	lo, hi := -1, -1
	loStart, hiEnd := 0, 0
	pos := nodeStart
	for i, child := range n.children {
		end := pos + child.Width()
		if lo == -1 && end >= edit.Start {
			lo = i
			loStart = pos
		}
		if pos <= edit.End {
			hi = i
			hiEnd = end
		}
		pos = end
	}
	if lo == -1 || hi < lo {
		return nil, window{}, false
	}

	// An edit strictly inside the body of a single block statement
	// splices within that body, keeping the header and closer.
	if lo == hi {
		if stmt, isNode := n.children[lo].(*Node); isNode && isBlockStmt(stmt.Kind) {
			if block, blockStart := blockChild(stmt, loStart); block != nil &&
				edit.Start >= blockStart && edit.End <= blockStart+block.Width() {
				newBlock, win, ok := spliceRun(block, blockStart, false, edit, delta, newText)
				if ok {
					rebuilt := newNode(n.Kind)
					for i, c := range n.children {
						if i == lo {
							rebuilt.add(rebuildBlockStmt(stmt, block, newBlock))
						} else {
							rebuilt.add(c)
						}
					}
					return rebuilt, win, true
				}
				// Inner splice declined; reparsing the whole
				// statement below is still fine.
			}
		}
	}

	includesEnd := hi == len(n.children)-1
	var windowText []byte
	if isRoot && includesEnd {
		windowText = newText[loStart:]
	} else {
		windowText = newText[loStart : hiEnd+delta]
		// The window must still end at a statement boundary. If the
		// edit removed the final newline, the last window statement
		// would merge with the suffix under a full parse.
		if len(windowText) == 0 || windowText[len(windowText)-1] != '\n' {
			return nil, window{}, false
		}
	}
	// The window must also start at one: when the byte before it is not
	// a newline, the statement before the window is missing its
	// terminator and would bind the window's first line under a full
	// parse.
	if loStart > 0 && newText[loStart-1] != '\n' {
		return nil, window{}, false
	}
	// A window whose first line continues a previous one would change
	// the statement before the window.
	if continuationLeadsWindow(windowText) {
		return nil, window{}, false
	}

	sub := Parse(windowText)
	for _, d := range sub.diagnostics {
		// Block structure reaching past the window edges cannot be
		// spliced: an unterminated block would swallow the suffix,
		// and a closer stray here might close a block outside.
		if d.Kind == DiagUnterminatedBlock || d.Kind == DiagStrayCloser {
			return nil, window{}, false
		}
	}

	rebuilt := newNode(n.Kind)
	for _, c := range n.children[:lo] {
		rebuilt.add(c)
	}
	freshChildren := sub.root.children
	if isRoot && includesEnd {
		for _, c := range freshChildren {
			rebuilt.add(c)
		}
	} else {
		// Drop the fresh zero-width EOF; this level keeps its own end.
		for _, c := range freshChildren[:len(freshChildren)-1] {
			rebuilt.add(c)
		}
		for _, c := range n.children[hi+1:] {
			rebuilt.add(c)
		}
	}

	fresh := make([]Diagnostic, 0, len(sub.diagnostics))
	for _, d := range sub.diagnostics {
		d.Span.Start += loStart
		d.Span.End += loStart
		fresh = append(fresh, d)
	}
	win := window{oldStart: loStart, oldEnd: hiEnd, fresh: fresh}
	if isRoot && hi >= len(n.children)-2 {
		// The window swallowed the last statement. Diagnostics anchored
		// at its end or at end of file were caused inside the window
		// (an unterminated block, a token missing at end of file), so
		// none of them may be carried over.
		win.oldEnd = nodeStart + n.width + 1
	}
	return rebuilt, win, true
}

func isBlockStmt(kind NodeKind) bool {
	switch kind {
	case KindIfStmt, KindFunctionStmt, KindForStmt:
		return true
	}
	return false
}

// blockChild returns a statement's body and its absolute start offset.
func blockChild(stmt *Node, stmtStart int) (*Node, int) {
	pos := stmtStart
	for _, c := range stmt.children {
		if n, ok := c.(*Node); ok && n.Kind == KindBlock {
			return n, pos
		}
		pos += c.Width()
	}
	return nil, 0
}

// rebuildBlockStmt clones stmt with oldBlock swapped for newBlock. All
// other children, header and closer tokens included, carry over as is.
func rebuildBlockStmt(stmt, oldBlock, newBlock *Node) *Node {
	rebuilt := newNode(stmt.Kind)
	for _, c := range stmt.children {
		if n, ok := c.(*Node); ok && n == oldBlock {
			rebuilt.add(newBlock)
		} else {
			rebuilt.add(c)
		}
	}
	return rebuilt
}

// continuationLeadsWindow reports whether text opens with a line
// continuation. Parsed standalone that backslash would be an error
// token, but under a full parse it would fold into the line before the
// window.
func continuationLeadsWindow(text []byte) bool {
	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return i < len(text) && text[i] == '\\'
}
