package remote

import (
	"context"
	"fmt"

	"github.com/kitagry/copilotls/langserver/internal/lsp"
)

// unavailable stands in for a service that could not be reached. Every call
// fails with ErrTransport so callers degrade the same way as on a dropped
// connection.
type unavailable struct {
	err  error
	done chan struct{}
}

var _ Client = (*unavailable)(nil)

// Unavailable returns a Client whose calls all fail with ErrTransport wrapping cause.
func Unavailable(cause error) Client {
	done := make(chan struct{})
	close(done)
	return &unavailable{
		err:  fmt.Errorf("%w: %w", ErrTransport, cause),
		done: done,
	}
}

func (u *unavailable) Close() error { return nil }

func (u *unavailable) Done() <-chan struct{} { return u.done }

func (u *unavailable) Authenticate(context.Context, string) (*AuthResult, error) {
	return nil, u.err
}

func (u *unavailable) SignOut(context.Context) error { return u.err }

func (u *unavailable) Completions(context.Context, CompletionsParams) ([]CompletionItem, error) {
	return nil, u.err
}

func (u *unavailable) CompletionsStream(context.Context, StreamParams) (Stream, error) {
	return nil, u.err
}

func (u *unavailable) CompletionsAndFixes(context.Context, string) ([]Suggestion, error) {
	return nil, u.err
}

func (u *unavailable) InlineCompletions(context.Context, string) ([]string, error) {
	return nil, u.err
}

func (u *unavailable) RecordCompletion(context.Context, string) error { return u.err }

func (u *unavailable) ProvideFeedback(context.Context, string, int) error { return u.err }

func (u *unavailable) DidOpen(context.Context, lsp.DidOpenTextDocumentParams) error { return u.err }

func (u *unavailable) DidChange(context.Context, lsp.DidChangeTextDocumentParams) error { return u.err }

func (u *unavailable) DidClose(context.Context, lsp.DidCloseTextDocumentParams) error { return u.err }

func (u *unavailable) OnAuthenticationStatus(func(AuthStatus)) {}
