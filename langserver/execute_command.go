package langserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kitagry/copilotls/langserver/internal/auth"
	"github.com/kitagry/copilotls/langserver/internal/document"
	"github.com/kitagry/copilotls/langserver/internal/lsp"
	"github.com/sourcegraph/jsonrpc2"
)

const (
	CommandSignIn                = "copilot.signIn"
	CommandSignOut               = "copilot.signOut"
	CommandGetCompletion         = "copilot.getCompletion"
	CommandGetCompletionAndFixes = "copilot.getCompletionAndFixes"
	CommandRecordCompletion      = "copilot.recordCompletion"
	CommandProvideFeedback       = "copilot.provideFeedback"
)

var errNoConnection = errors.New("editor connection is not initialized")

func (h *Handler) handleWorkspaceExecuteCommand(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result any, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.ExecuteCommandParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}

	switch params.Command {
	case CommandSignIn:
		return h.commandSignIn(ctx, params)
	case CommandSignOut:
		return nil, h.gate.SignOut(ctx)
	case CommandGetCompletion:
		return h.commandGetCompletion(ctx, params)
	case CommandGetCompletionAndFixes:
		return h.commandGetCompletionAndFixes(ctx, params)
	case CommandRecordCompletion:
		return h.commandRecordCompletion(ctx, params)
	case CommandProvideFeedback:
		return h.commandProvideFeedback(ctx, params)
	default:
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("unknown command: %s", params.Command)}
	}
}

func (h *Handler) commandSignIn(ctx context.Context, params lsp.ExecuteCommandParams) (*lsp.SignInResult, error) {
	if len(params.Arguments) > 0 {
		token, ok := params.Arguments[0].(string)
		if !ok {
			return nil, invalidArgument("token should be string, but got %T", params.Arguments[0])
		}
		return h.signIn(ctx, token)
	}
	return h.signInWithAcquiredToken(ctx)
}

func (h *Handler) signInWithAcquiredToken(ctx context.Context) (*lsp.SignInResult, error) {
	token, err := h.acquireToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire token: %w", err)
	}
	return h.signIn(ctx, token)
}

func (h *Handler) signIn(ctx context.Context, token string) (*lsp.SignInResult, error) {
	err := h.gate.SignIn(ctx, token)
	if errors.Is(err, auth.ErrRejected) || errors.Is(err, auth.ErrEmptyToken) {
		return &lsp.SignInResult{SignedIn: false, Message: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}
	return &lsp.SignInResult{SignedIn: true}, nil
}

func (h *Handler) commandGetCompletion(ctx context.Context, params lsp.ExecuteCommandParams) (*lsp.GetCompletionResult, error) {
	if len(params.Arguments) != 2 {
		return nil, invalidArgument("file uri and position arguments are not provided")
	}
	uri, ok := params.Arguments[0].(string)
	if !ok {
		return nil, invalidArgument("arguments should be string, but got %T", params.Arguments[0])
	}
	var position lsp.Position
	if err := decodeArgument(params.Arguments[1], &position); err != nil {
		return nil, invalidArgument("position is invalid: %v", err)
	}

	request, ok := h.completionRequest(lsp.DocumentURI(uri), position)
	if !ok {
		return nil, invalidArgument("document %s is not opened", uri)
	}

	token := lsp.ProgressToken(uuid.NewString())
	list := &selectionList{h: h, token: token, uri: request.URI}

	h.workDoneProgressBegin(ctx, token, lsp.WorkDoneProgressBegin{
		Title:   "Copilot",
		Message: "Fetching completions...",
	})
	defer h.workDoneProgressEnd(ctx, token, lsp.WorkDoneProgressEnd{})

	err := h.bridge.RequestStreamingCompletions(ctx, request, list, diagnosticsSink{h})
	if errors.Is(err, auth.ErrAuthRequired) {
		h.ShowInfo(ctx, "Please sign in to use the copilot.")
		return &lsp.GetCompletionResult{Token: token, Items: []lsp.SelectionItem{}}, nil
	}
	if err != nil {
		return nil, err
	}

	return &lsp.GetCompletionResult{Token: token, Items: list.Items()}, nil
}

func (h *Handler) commandGetCompletionAndFixes(ctx context.Context, params lsp.ExecuteCommandParams) (*lsp.GetCompletionAndFixesResult, error) {
	if len(params.Arguments) < 1 {
		return nil, invalidArgument("file uri arguments is not provided")
	}
	uri, ok := params.Arguments[0].(string)
	if !ok {
		return nil, invalidArgument("arguments should be string, but got %T", params.Arguments[0])
	}

	file, ok := h.documents.Get(lsp.DocumentURI(uri))
	if !ok {
		return nil, invalidArgument("document %s is not opened", uri)
	}

	// The whole document is sent unless a position narrows it down.
	codeContext := file.Text
	if len(params.Arguments) > 1 {
		var position lsp.Position
		if err := decodeArgument(params.Arguments[1], &position); err != nil {
			return nil, invalidArgument("position is invalid: %v", err)
		}
		codeContext = file.Text[:document.PositionToOffset(file.Text, position)]
	}

	suggestions, err := h.bridge.RequestFixesAndCompletions(ctx, lsp.DocumentURI(uri), codeContext)
	if errors.Is(err, auth.ErrAuthRequired) {
		h.ShowInfo(ctx, "Please sign in to use the copilot.")
		return &lsp.GetCompletionAndFixesResult{Items: []lsp.SelectionItem{}}, nil
	}
	if err != nil {
		return nil, err
	}

	items := make([]lsp.SelectionItem, len(suggestions))
	for i, s := range suggestions {
		items[i] = lsp.SelectionItem{
			Label:       s.Label(),
			Description: string(s.Kind),
			InsertText:  s.Text,
		}
	}
	return &lsp.GetCompletionAndFixesResult{Items: items}, nil
}

func (h *Handler) commandRecordCompletion(ctx context.Context, params lsp.ExecuteCommandParams) (any, error) {
	if len(params.Arguments) != 1 {
		return nil, invalidArgument("completion argument is not provided")
	}
	text, ok := params.Arguments[0].(string)
	if !ok {
		return nil, invalidArgument("completion should be string, but got %T", params.Arguments[0])
	}

	h.feedback.RecordAcceptance(ctx, text)
	return nil, nil
}

func (h *Handler) commandProvideFeedback(ctx context.Context, params lsp.ExecuteCommandParams) (any, error) {
	if len(params.Arguments) != 2 {
		return nil, invalidArgument("completion and rating arguments are not provided")
	}
	text, ok := params.Arguments[0].(string)
	if !ok {
		return nil, invalidArgument("completion should be string, but got %T", params.Arguments[0])
	}
	rating, ok := params.Arguments[1].(float64)
	if !ok {
		return nil, invalidArgument("rating should be number, but got %T", params.Arguments[1])
	}

	h.feedback.RecordRating(ctx, text, int(rating))
	return nil, nil
}

// decodeArgument converts a loosely typed command argument into v.
func decodeArgument(arg any, v any) error {
	b, err := json.Marshal(arg)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func invalidArgument(format string, args ...any) error {
	return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}
