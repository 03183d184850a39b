package langserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kitagry/copilotls/langserver/internal/auth"
	"github.com/kitagry/copilotls/langserver/internal/lsp"
	"github.com/sourcegraph/jsonrpc2"
)

func (h *Handler) handleTextDocumentInlineCompletion(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result any, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.InlineCompletionParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}

	empty := lsp.InlineCompletionList{Items: []lsp.InlineCompletionItem{}}

	request, ok := h.completionRequest(params.TextDocument.URI, params.Position)
	if !ok {
		return empty, nil
	}

	texts, err := h.bridge.RequestInlineCompletions(ctx, request)
	if errors.Is(err, auth.ErrAuthRequired) {
		// Editors ask on every keystroke, so the sign-in prompt is left to the gate.
		h.logger.Debug("inline completion skipped: not signed in")
		return empty, nil
	}
	if err != nil {
		return nil, err
	}

	items := make([]lsp.InlineCompletionItem, len(texts))
	for i, text := range texts {
		items[i] = lsp.InlineCompletionItem{
			InsertText: text,
			Range:      &lsp.Range{Start: params.Position, End: params.Position},
		}
	}
	return lsp.InlineCompletionList{Items: items}, nil
}
