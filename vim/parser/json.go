package parser

import "encoding/json"

type jsonTree struct {
	Root        *jsonElement      `json:"root"`
	Diagnostics []*jsonDiagnostic `json:"diagnostics"`
}

type jsonElement struct {
	Kind     string         `json:"kind,omitempty"`
	Token    string         `json:"token,omitempty"`
	Text     string         `json:"text,omitempty"`
	Span     jsonSpan       `json:"span"`
	Leading  []*jsonTrivia  `json:"leading,omitempty"`
	Children []*jsonElement `json:"children,omitempty"`
}

type jsonSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type jsonTrivia struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type jsonDiagnostic struct {
	Span     jsonSpan `json:"span"`
	Message  string   `json:"message"`
	Severity string   `json:"severity"`
	Kind     string   `json:"kind"`
}

// MarshalJSON renders the tree with absolute spans. Node spans include
// the leading trivia of their first token; token spans cover the token
// text alone, with trivia listed separately.
func (t *Tree) MarshalJSON() ([]byte, error) {
	jt := &jsonTree{
		Root:        nodeToJSON(t.root, 0),
		Diagnostics: make([]*jsonDiagnostic, 0, len(t.diagnostics)),
	}
	for _, d := range t.diagnostics {
		jt.Diagnostics = append(jt.Diagnostics, &jsonDiagnostic{
			Span:     jsonSpan{Start: d.Span.Start, End: d.Span.End},
			Message:  d.Message,
			Severity: d.Severity.String(),
			Kind:     d.Kind.String(),
		})
	}
	return json.Marshal(jt)
}

func nodeToJSON(n *Node, start int) *jsonElement {
	je := &jsonElement{
		Kind: n.Kind.String(),
		Span: jsonSpan{Start: start, End: start + n.Width()},
	}
	pos := start
	for _, child := range n.children {
		switch c := child.(type) {
		case *Node:
			je.Children = append(je.Children, nodeToJSON(c, pos))
		case Token:
			je.Children = append(je.Children, tokenToJSON(c, pos))
		}
		pos += child.Width()
	}
	return je
}

func tokenToJSON(tok Token, start int) *jsonElement {
	textStart := start + tok.LeadingWidth()
	je := &jsonElement{
		Token: tok.Kind.String(),
		Text:  tok.Text,
		Span:  jsonSpan{Start: textStart, End: textStart + len(tok.Text)},
	}
	for _, tr := range tok.Leading {
		je.Leading = append(je.Leading, &jsonTrivia{
			Kind: tr.Kind.String(),
			Text: tr.Text,
		})
	}
	return je
}
