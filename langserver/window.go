package langserver

import (
	"context"

	"github.com/kitagry/copilotls/langserver/internal/lsp"
)

const signInAction = "Sign In"

func (h *Handler) showMessage(ctx context.Context, typ lsp.MessageType, message string) {
	conn := h.getConn()
	if conn == nil {
		return
	}
	if err := conn.Notify(ctx, "window/showMessage", lsp.ShowMessageParams{Type: typ, Message: message}); err != nil {
		h.logger.Debugf("failed to show message: %v", err)
	}
}

func (h *Handler) ShowInfo(ctx context.Context, message string) {
	h.showMessage(ctx, lsp.MTInfo, message)
}

func (h *Handler) ShowError(ctx context.Context, message string) {
	h.showMessage(ctx, lsp.MTError, message)
}

// PromptSignIn asks the user to sign in and, when they agree, asks the editor
// for a token with copilot/acquireToken.
func (h *Handler) PromptSignIn(ctx context.Context) {
	conn := h.getConn()
	if conn == nil {
		return
	}

	var action *lsp.MessageActionItem
	err := conn.Call(ctx, "window/showMessageRequest", lsp.ShowMessageRequestParams{
		Type:    lsp.MTInfo,
		Message: "Please sign in to use the copilot.",
		Actions: []lsp.MessageActionItem{{Title: signInAction}},
	}, &action)
	if err != nil {
		h.logger.Debugf("failed to prompt sign in: %v", err)
		return
	}
	if action == nil || action.Title != signInAction {
		return
	}

	if _, err := h.signInWithAcquiredToken(ctx); err != nil {
		h.logger.Infof("sign in failed: %v", err)
	}
}

func (h *Handler) acquireToken(ctx context.Context) (string, error) {
	conn := h.getConn()
	if conn == nil {
		return "", errNoConnection
	}

	var result lsp.AcquireTokenResult
	if err := conn.Call(ctx, "copilot/acquireToken", struct{}{}, &result); err != nil {
		return "", err
	}
	return result.Token, nil
}
