package langserver

import (
	"context"

	"github.com/kitagry/copilotls/langserver/internal/lsp"
)

func (h *Handler) workDoneProgressBegin(ctx context.Context, token lsp.ProgressToken, params lsp.WorkDoneProgressBegin) error {
	if !h.clientCapabilities().Window.WorkDoneProgress {
		return nil
	}
	return h.notifyProgress(ctx, lsp.ProgressParams[lsp.WorkDoneProgressBegin]{
		Token: token,
		Value: &params,
	})
}

func (h *Handler) workDoneProgressReport(ctx context.Context, token lsp.ProgressToken, params lsp.WorkDoneProgressReport) error {
	if !h.clientCapabilities().Window.WorkDoneProgress {
		return nil
	}
	return h.notifyProgress(ctx, lsp.ProgressParams[lsp.WorkDoneProgressReport]{
		Token: token,
		Value: &params,
	})
}

func (h *Handler) workDoneProgressEnd(ctx context.Context, token lsp.ProgressToken, params lsp.WorkDoneProgressEnd) error {
	if !h.clientCapabilities().Window.WorkDoneProgress {
		return nil
	}
	return h.notifyProgress(ctx, lsp.ProgressParams[lsp.WorkDoneProgressEnd]{
		Token: token,
		Value: &params,
	})
}

func (h *Handler) notifyProgress(ctx context.Context, params any) error {
	conn := h.getConn()
	if conn == nil {
		return errNoConnection
	}
	return conn.Notify(ctx, "$/progress", params)
}
