package langserver

import (
	"context"
	"encoding/json"

	"github.com/kitagry/copilotls/langserver/internal/lsp"
	"github.com/sourcegraph/jsonrpc2"
)

func (h *Handler) handleTextDocumentDidOpen(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result any, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.DidOpenTextDocumentParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}

	item := params.TextDocument
	h.documents.Open(item.URI, item.LanguageID, item.Text, item.Version)

	if err := h.session.Remote.DidOpen(ctx, params); err != nil {
		h.logger.Debugf("failed to forward didOpen: %v", err)
	}
	return nil, nil
}

func (h *Handler) handleTextDocumentDidChange(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result any, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.DidChangeTextDocumentParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}

	// Only full document sync is advertised, so the last change holds the whole text.
	if n := len(params.ContentChanges); n > 0 {
		h.documents.Update(params.TextDocument.URI, params.ContentChanges[n-1].Text, params.TextDocument.Version)
	}

	if err := h.session.Remote.DidChange(ctx, params); err != nil {
		h.logger.Debugf("failed to forward didChange: %v", err)
	}
	return nil, nil
}

func (h *Handler) handleTextDocumentDidClose(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result any, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.DidCloseTextDocumentParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}

	h.documents.Close(params.TextDocument.URI)

	if err := h.session.Remote.DidClose(ctx, params); err != nil {
		h.logger.Debugf("failed to forward didClose: %v", err)
	}
	return nil, nil
}
