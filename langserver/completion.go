package langserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kitagry/copilotls/langserver/internal/auth"
	"github.com/kitagry/copilotls/langserver/internal/bridge"
	"github.com/kitagry/copilotls/langserver/internal/document"
	"github.com/kitagry/copilotls/langserver/internal/lsp"
	"github.com/sourcegraph/jsonrpc2"
)

func (h *Handler) handleTextDocumentCompletion(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result any, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.CompletionParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}

	empty := lsp.CompletionList{Items: []lsp.CompletionItem{}}

	request, ok := h.completionRequest(params.TextDocument.URI, params.Position)
	if !ok {
		return empty, nil
	}

	results, err := h.bridge.RequestCompletions(ctx, request)
	if errors.Is(err, auth.ErrAuthRequired) {
		h.ShowInfo(ctx, "Please sign in to use the copilot.")
		return empty, nil
	}
	if err != nil {
		return nil, err
	}

	items := make([]lsp.CompletionItem, len(results))
	for i, r := range results {
		items[i] = toLspCompletionItem(r, params.Position)
	}
	return lsp.CompletionList{Items: items}, nil
}

func (h *Handler) completionRequest(uri lsp.DocumentURI, position lsp.Position) (bridge.CompletionRequest, bool) {
	file, ok := h.documents.Get(uri)
	if !ok {
		return bridge.CompletionRequest{}, false
	}

	path, err := uri.ToPath()
	if err != nil {
		path = uri.Path()
	}

	return bridge.CompletionRequest{
		DocumentText: file.Text,
		CursorOffset: document.PositionToOffset(file.Text, position),
		FilePath:     path,
		URI:          uri,
	}, true
}

func toLspCompletionItem(r bridge.CompletionResult, position lsp.Position) lsp.CompletionItem {
	return lsp.CompletionItem{
		Label:            r.DisplayLabel,
		Kind:             lsp.CIKText,
		Detail:           r.Detail,
		InsertText:       r.Text,
		InsertTextFormat: lsp.ITFPlainText,
		TextEdit: &lsp.TextEdit{
			Range:   lsp.Range{Start: position, End: position},
			NewText: r.Text,
		},
	}
}
