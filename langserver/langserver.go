package langserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kitagry/copilotls/langserver/internal/auth"
	"github.com/kitagry/copilotls/langserver/internal/bridge"
	"github.com/kitagry/copilotls/langserver/internal/document"
	"github.com/kitagry/copilotls/langserver/internal/feedback"
	"github.com/kitagry/copilotls/langserver/internal/lsp"
	"github.com/kitagry/copilotls/langserver/internal/remote"
	"github.com/kitagry/copilotls/langserver/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/jsonrpc2"
)

type Handler struct {
	mu     sync.Mutex
	conn   *jsonrpc2.Conn
	logger *logrus.Logger

	session   *session.Session
	gate      *auth.Gate
	bridge    *bridge.Bridge
	feedback  *feedback.Recorder
	documents *document.Store

	async   jsonrpc2.Handler
	version string

	initializeParams lsp.InitializeParams[InitializeOption]
}

var _ jsonrpc2.Handler = (*Handler)(nil)

type Option func(*options)

type options struct {
	bridgeOptions []bridge.Option
	version       string
}

func WithTriggerCharacters(chars []string) Option {
	return func(o *options) {
		o.bridgeOptions = append(o.bridgeOptions, bridge.WithTriggerCharacters(chars))
	}
}

func WithRequestsPerMinute(n int) Option {
	return func(o *options) {
		o.bridgeOptions = append(o.bridgeOptions, bridge.WithRequestsPerMinute(n))
	}
}

// WithDebounce delays inline completions and completion commands until the
// editor stops asking for d.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.bridgeOptions = append(o.bridgeOptions, bridge.WithDebounce(d))
	}
}

func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

func NewHandler(sess *session.Session, opts ...Option) *Handler {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	handler := &Handler{
		logger:    sess.Logger,
		session:   sess,
		feedback:  feedback.NewRecorder(sess),
		documents: document.NewStore(),
		version:   o.version,
	}
	handler.gate = auth.New(sess, handler)
	handler.bridge = bridge.New(sess, handler.gate, o.bridgeOptions...)
	handler.async = jsonrpc2.AsyncHandler(jsonrpc2.HandlerWithError(handler.handle))

	sess.Remote.OnAuthenticationStatus(func(status remote.AuthStatus) {
		handler.gate.HandleStatus(status.Success, status.Message)
	})
	return handler
}

// Handle runs configuration and document synchronization in arrival order and everything else
// concurrently, so requests the server sends to the editor while handling a
// request do not deadlock the connection.
func (h *Handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	h.setConn(conn)

	switch req.Method {
	case "initialize", "exit", "workspace/didChangeConfiguration",
		"textDocument/didOpen", "textDocument/didChange", "textDocument/didClose":
		jsonrpc2.HandlerWithError(h.handle).Handle(ctx, conn, req)
	default:
		h.async.Handle(ctx, conn, req)
	}
}

func (h *Handler) Close() error {
	var errs []error
	if conn := h.getConn(); conn != nil {
		errs = append(errs, conn.Close())
	}
	errs = append(errs, h.session.Close())
	h.gate.Wait()
	return errors.Join(errs...)
}

func (h *Handler) setConn(conn *jsonrpc2.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conn = conn
}

func (h *Handler) getConn() *jsonrpc2.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn
}

func (h *Handler) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result any, err error) {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(ctx, conn, req)
	case "initialized":
		return h.handleInitialized(ctx, conn, req)
	case "shutdown":
		return nil, nil
	case "exit":
		return nil, conn.Close()
	case "$/cancelRequest", "$/setTrace":
		return nil, nil
	case "textDocument/didOpen":
		return h.handleTextDocumentDidOpen(ctx, conn, req)
	case "textDocument/didChange":
		return h.handleTextDocumentDidChange(ctx, conn, req)
	case "textDocument/didClose":
		return h.handleTextDocumentDidClose(ctx, conn, req)
	case "textDocument/didSave":
		return nil, nil
	case "textDocument/completion":
		return h.handleTextDocumentCompletion(ctx, conn, req)
	case "textDocument/inlineCompletion":
		return h.handleTextDocumentInlineCompletion(ctx, conn, req)
	case "workspace/didChangeConfiguration":
		return h.handleWorkspaceDidChangeConfiguration(ctx, conn, req)
	case "workspace/executeCommand":
		return h.handleWorkspaceExecuteCommand(ctx, conn, req)
	}
	if req.Notif {
		return nil, nil
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("method not supported: %s", req.Method)}
}

func (h *Handler) handleInitialized(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result any, err error) {
	return nil, h.gate.Resolve(ctx)
}
