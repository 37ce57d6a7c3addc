package workspace

import (
	"net/url"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/vimls/vim/parser"
)

const lsName = "vimls"

var log = commonlog.GetLogger("vimls.lsp")

type LSPServer struct {
	workspace *Workspace
	watcher   *FileWatcher
	handler   protocol.Handler
	server    *server.Server
	version   string
}

func NewLSPServer(version string) *LSPServer {
	ls := &LSPServer{
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:                    ls.initialize,
		Initialized:                   ls.initialized,
		Shutdown:                      ls.shutdown,
		SetTrace:                      ls.setTrace,
		TextDocumentDidOpen:           ls.textDocumentDidOpen,
		TextDocumentDidChange:         ls.textDocumentDidChange,
		TextDocumentDidClose:          ls.textDocumentDidClose,
		TextDocumentDidSave:           ls.textDocumentDidSave,
		TextDocumentDocumentHighlight: ls.textDocumentDocumentHighlight,
		TextDocumentRename:            ls.textDocumentRename,
		TextDocumentFoldingRange:      ls.textDocumentFoldingRange,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.workspace = New(rootDir)
	log.Infof("initialize: root %s", rootDir)

	capabilities := ls.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.workspace.ScanAll(); err != nil {
		log.Errorf("scan workspace: %s", err.Error())
	}
	ls.watcher = NewFileWatcher(ls.workspace)
	ls.watcher.Start()
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.workspace.UpdateFile(path, []byte(params.TextDocument.Text))
	ls.publishDiagnostics(ctx, params.TextDocument.URI, path, versionPtr(params.TextDocument.Version))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				ls.workspace.UpdateFile(path, []byte(c.Text))
				continue
			}
			ch := Change{
				StartLine: int(c.Range.Start.Line),
				StartCol:  int(c.Range.Start.Character),
				EndLine:   int(c.Range.End.Line),
				EndCol:    int(c.Range.End.Character),
				Text:      c.Text,
			}
			if _, err := ls.workspace.ApplyChange(path, ch); err != nil {
				// The file was never opened; fall back to full text.
				ls.workspace.UpdateFile(path, []byte(c.Text))
			}
		case protocol.TextDocumentContentChangeEventWhole:
			ls.workspace.UpdateFile(path, []byte(c.Text))
		}
	}
	ls.publishDiagnostics(ctx, params.TextDocument.URI, path, versionPtr(params.TextDocument.Version))
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.workspace.UpdateFile(path, []byte(*params.Text))
	} else {
		ls.workspace.ScanFile(path)
	}
	ls.publishDiagnostics(ctx, params.TextDocument.URI, path, nil)
	return nil
}

func (ls *LSPServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, path string, version *protocol.UInteger) {
	file := ls.workspace.GetFile(path)
	if file == nil {
		return
	}
	index := file.Tree.LineIndex()
	severity := protocol.DiagnosticSeverityError
	source := lsName

	diagnostics := make([]protocol.Diagnostic, 0, len(file.Tree.Diagnostics()))
	for _, d := range file.Tree.Diagnostics() {
		code := protocol.IntegerOrString{Value: d.Kind.String()}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    protocolRange(index, d.Span),
			Severity: &severity,
			Code:     &code,
			Source:   &source,
			Message:  d.Message,
		})
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: diagnostics,
	})
}

func (ls *LSPServer) textDocumentDocumentHighlight(ctx *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	file := ls.workspace.GetFile(path)
	if file == nil {
		return nil, nil
	}

	index := file.Tree.LineIndex()
	offset := index.OffsetOfUTF16(int(params.Position.Line), int(params.Position.Character))

	kind := protocol.DocumentHighlightKindText
	var highlights []protocol.DocumentHighlight
	for _, span := range identifierSpans(file.Tree, offset) {
		highlights = append(highlights, protocol.DocumentHighlight{
			Range: protocolRange(index, span),
			Kind:  &kind,
		})
	}
	return highlights, nil
}

func (ls *LSPServer) textDocumentRename(ctx *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	file := ls.workspace.GetFile(path)
	if file == nil {
		return nil, nil
	}

	index := file.Tree.LineIndex()
	offset := index.OffsetOfUTF16(int(params.Position.Line), int(params.Position.Character))

	spans := identifierSpans(file.Tree, offset)
	if len(spans) == 0 {
		return nil, nil
	}
	edits := make([]protocol.TextEdit, 0, len(spans))
	for _, span := range spans {
		edits = append(edits, protocol.TextEdit{
			Range:   protocolRange(index, span),
			NewText: params.NewName,
		})
	}

	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{
			params.TextDocument.URI: edits,
		},
	}, nil
}

func (ls *LSPServer) textDocumentFoldingRange(ctx *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	file := ls.workspace.GetFile(path)
	if file == nil {
		return nil, nil
	}

	index := file.Tree.LineIndex()
	kind := string(protocol.FoldingRangeKindRegion)

	var ranges []protocol.FoldingRange
	for _, fold := range blockFolds(file.Tree) {
		startLine, _ := index.Position(fold.Start)
		endLine, _ := index.Position(fold.End - 1)
		if endLine <= startLine {
			continue
		}
		ranges = append(ranges, protocol.FoldingRange{
			StartLine: safeUInteger(startLine),
			EndLine:   safeUInteger(endLine),
			Kind:      &kind,
		})
	}
	return ranges, nil
}

// identifierAt finds the identifier token under the cursor. A cursor
// sitting right after the last character still counts, the way editors
// treat a caret touching a word.
func identifierAt(tree *parser.Tree, offset int) (parser.Token, bool) {
	if tok, span, ok := tree.Root().TokenAt(offset); ok &&
		tok.Kind == parser.TokenIdent && span.Contains(offset) {
		return tok, true
	}
	if offset > 0 {
		if tok, span, ok := tree.Root().TokenAt(offset - 1); ok &&
			tok.Kind == parser.TokenIdent && span.Contains(offset-1) {
			return tok, true
		}
	}
	return parser.Token{}, false
}

// identifierSpans returns the text spans of every identifier spelled
// like the one at offset, in source order. Occurrences are matched by
// text, which for vimscript includes the scope prefix.
func identifierSpans(tree *parser.Tree, offset int) []parser.Span {
	target, ok := identifierAt(tree, offset)
	if !ok {
		return nil
	}
	var spans []parser.Span
	tree.Root().EachToken(func(tok parser.Token, textSpan parser.Span) {
		if tok.Kind == parser.TokenIdent && tok.Text == target.Text {
			spans = append(spans, textSpan)
		}
	})
	return spans
}

// blockFolds collects one folding span per block statement: from the
// header's first byte through the end of the body, so the closer line
// stays visible when folded. Nested blocks fold independently.
func blockFolds(tree *parser.Tree) []parser.Span {
	var folds []parser.Span
	var walk func(c *parser.Cursor)
	walk = func(c *parser.Cursor) {
		for _, child := range c.Children() {
			switch child.Kind() {
			case parser.KindIfStmt, parser.KindFunctionStmt, parser.KindForStmt:
				if fold, ok := blockFoldSpan(child); ok {
					folds = append(folds, fold)
				}
			}
			walk(child)
		}
	}
	walk(tree.Root())
	return folds
}

func blockFoldSpan(stmt *parser.Cursor) (parser.Span, bool) {
	var body *parser.Cursor
	for _, child := range stmt.Children() {
		if child.Kind() == parser.KindBlock {
			body = child
			break
		}
	}
	if body == nil || body.Span().Len() == 0 {
		return parser.Span{}, false
	}
	_, headerSpan, ok := stmt.TokenAt(stmt.Span().Start)
	if !ok {
		return parser.Span{}, false
	}
	return parser.Span{Start: headerSpan.Start, End: body.Span().End}, true
}

func protocolPosition(index *parser.LineIndex, offset int) protocol.Position {
	line, _ := index.Position(offset)
	return protocol.Position{
		Line:      safeUInteger(line),
		Character: safeUInteger(index.ColumnUTF16(offset)),
	}
}

func protocolRange(index *parser.LineIndex, span parser.Span) protocol.Range {
	return protocol.Range{
		Start: protocolPosition(index, span.Start),
		End:   protocolPosition(index, span.End),
	}
}

func safeUInteger(n int) protocol.UInteger {
	v, err := safecast.Conv[protocol.UInteger](n)
	if err != nil {
		return 0
	}
	return v
}

func versionPtr(version protocol.Integer) *protocol.UInteger {
	v, err := safecast.Conv[protocol.UInteger](version)
	if err != nil {
		return nil
	}
	return &v
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}
