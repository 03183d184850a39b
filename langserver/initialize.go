package langserver

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/kitagry/copilotls/langserver/internal/lsp"
	"github.com/sourcegraph/jsonrpc2"
)

type InitializeOption struct {
	TriggerCharacters []string `json:"triggerCharacters"`
}

func (h *Handler) handleInitialize(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result any, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.InitializeParams[InitializeOption]
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.initializeParams = params
	h.mu.Unlock()

	h.setupByInitializeOption(params.InitializationOptions)

	triggerCharacters := h.bridge.TriggerCharacters()
	sort.Strings(triggerCharacters)

	return lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: lsp.TDSKFull,
			CompletionProvider: &lsp.CompletionOptions{
				ResolveProvider:   false,
				TriggerCharacters: triggerCharacters,
			},
			InlineCompletionProvider: true,
			ExecuteCommandProvider: &lsp.ExecuteCommandOptions{
				Commands: []string{
					CommandSignIn,
					CommandSignOut,
					CommandGetCompletion,
					CommandGetCompletionAndFixes,
					CommandRecordCompletion,
					CommandProvideFeedback,
				},
			},
		},
		ServerInfo: &lsp.ServerInfo{
			Name:    "copilotls",
			Version: h.version,
		},
	}, nil
}

func (h *Handler) setupByInitializeOption(option InitializeOption) {
	if len(option.TriggerCharacters) > 0 {
		h.bridge.SetTriggerCharacters(option.TriggerCharacters)
	}
}

func (h *Handler) clientCapabilities() lsp.ClientCapabilities {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initializeParams.Capabilities
}
