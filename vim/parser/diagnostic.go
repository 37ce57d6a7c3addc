package parser

type Severity int

const (
	SeverityError Severity = iota
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "unknown"
}

// DiagKind classifies what went wrong: an unrecognizable byte sequence,
// a grammar position missing its expected token, a block that never saw
// its closer, or a closer with no block to close.
type DiagKind int

const (
	DiagLex DiagKind = iota
	DiagSyntax
	DiagUnterminatedBlock
	DiagStrayCloser
)

var diagKindNames = map[DiagKind]string{
	DiagLex:               "lex",
	DiagSyntax:            "syntax",
	DiagUnterminatedBlock: "unterminated-block",
	DiagStrayCloser:       "stray-closer",
}

func (k DiagKind) String() string {
	if name, ok := diagKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Diagnostic reports one recovered parse problem. The parser emits
// diagnostics left to right, so the list is ordered by Span.Start with
// emission order breaking ties; no sorting happens afterwards.
type Diagnostic struct {
	Span     Span
	Message  string
	Severity Severity
	Kind     DiagKind
}
