package remote

//go:generate mockgen -source=remote.go -destination=mock_remote/mock_remote.go -package=mock_remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kitagry/copilotls/langserver/internal/lsp"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/jsonrpc2"
)

var (
	// ErrTransport is returned when the completion service cannot be reached.
	ErrTransport = errors.New("remote: transport failure")

	// ErrMalformedResponse is returned when a response does not have the expected shape.
	ErrMalformedResponse = errors.New("remote: malformed response")
)

// ServiceError is a JSON-RPC error reply from the completion service.
type ServiceError struct {
	Code    int64
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("remote: service error %d: %s", e.Code, e.Message)
}

type Client interface {
	Close() error

	// Done is closed when the connection to the service is lost.
	Done() <-chan struct{}

	// Authenticate asks the service to validate token.
	Authenticate(ctx context.Context, token string) (*AuthResult, error)

	// SignOut tells the service the current user signed out.
	SignOut(ctx context.Context) error

	// Completions requests completions for a cursor position.
	Completions(ctx context.Context, params CompletionsParams) ([]CompletionItem, error)

	// CompletionsStream starts a streaming completion session. Cancelling ctx
	// cancels the session on the service side.
	CompletionsStream(ctx context.Context, params StreamParams) (Stream, error)

	// CompletionsAndFixes requests completions mixed with error fixes.
	CompletionsAndFixes(ctx context.Context, codeContext string) ([]Suggestion, error)

	// InlineCompletions requests text to insert at the end of codeContext.
	InlineCompletions(ctx context.Context, codeContext string) ([]string, error)

	// RecordCompletion notifies that the user accepted completion.
	RecordCompletion(ctx context.Context, completion string) error

	// ProvideFeedback notifies a user rating for completion.
	ProvideFeedback(ctx context.Context, completion string, rating int) error

	DidOpen(ctx context.Context, params lsp.DidOpenTextDocumentParams) error
	DidChange(ctx context.Context, params lsp.DidChangeTextDocumentParams) error
	DidClose(ctx context.Context, params lsp.DidCloseTextDocumentParams) error

	// OnAuthenticationStatus registers f to receive copilot/authenticationStatus pushes.
	OnAuthenticationStatus(f func(AuthStatus))
}

// Stream yields the elements of one streaming completion session.
type Stream interface {
	// Next blocks until the next element arrives. It returns io.EOF when the
	// service ends the session.
	Next(ctx context.Context) (*StreamItem, error)

	// Close stops the session. Elements that arrive afterwards are dropped.
	Close() error
}

type Option func(*client)

// WithTimeout bounds every request sent to the service.
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.timeout = d
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(c *client) {
		c.logger = logger
	}
}

// WithTrace logs every JSON-RPC message exchanged with the service.
func WithTrace() Option {
	return func(c *client) {
		c.trace = true
	}
}

type client struct {
	conn     *jsonrpc2.Conn
	logger   *logrus.Logger
	validate *validator.Validate
	timeout  time.Duration
	trace    bool

	mu           sync.Mutex
	streams      map[string]*stream
	onAuthStatus func(AuthStatus)
}

var _ Client = (*client)(nil)

// New speaks JSON-RPC to the completion service over rwc.
func New(ctx context.Context, rwc io.ReadWriteCloser, opts ...Option) Client {
	c := &client{
		logger:   logrus.New(),
		validate: validator.New(),
		streams:  make(map[string]*stream),
	}
	for _, opt := range opts {
		opt(c)
	}

	var connOpts []jsonrpc2.ConnOpt
	if c.trace {
		connOpts = append(connOpts, jsonrpc2.LogMessages(c.logger))
	}

	// Pushes are handled synchronously so stream elements keep their arrival order.
	c.conn = jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}), jsonrpc2.HandlerWithError(c.handle), connOpts...)

	go func() {
		<-c.conn.DisconnectNotify()
		c.closeStreams(fmt.Errorf("%w: connection closed", ErrTransport))
	}()

	return c
}

func (c *client) Close() error {
	return c.conn.Close()
}

func (c *client) Done() <-chan struct{} {
	return c.conn.DisconnectNotify()
}

func (c *client) OnAuthenticationStatus(f func(AuthStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAuthStatus = f
}

func (c *client) Authenticate(ctx context.Context, token string) (*AuthResult, error) {
	var resp authResponse
	if err := c.call(ctx, "copilot.authenticate", AuthenticateParams{Token: token}, &resp); err != nil {
		return nil, err
	}
	if err := c.check("copilot.authenticate", resp); err != nil {
		return nil, err
	}
	return &AuthResult{Success: *resp.Success, Message: resp.Message}, nil
}

func (c *client) SignOut(ctx context.Context) error {
	return c.call(ctx, "copilot.signOut", struct{}{}, nil)
}

func (c *client) Completions(ctx context.Context, params CompletionsParams) ([]CompletionItem, error) {
	var result completionsResult
	if err := c.call(ctx, "completions", params, &result.Items); err != nil {
		return nil, err
	}
	if err := c.check("completions", result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (c *client) CompletionsAndFixes(ctx context.Context, codeContext string) ([]Suggestion, error) {
	var result suggestionsResult
	if err := c.call(ctx, "getCompletionsAndFixes", FixesParams{CodeContext: codeContext}, &result.Items); err != nil {
		return nil, err
	}
	if err := c.check("getCompletionsAndFixes", result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (c *client) CompletionsStream(ctx context.Context, params StreamParams) (Stream, error) {
	params.StreamID = uuid.NewString()

	s := newStream(params.StreamID, c)
	c.mu.Lock()
	c.streams[s.id] = s
	c.mu.Unlock()

	var result StreamStarted
	if err := c.call(ctx, "getCompletionsStream", params, &result); err != nil {
		c.unregister(s.id)
		return nil, err
	}
	if result.StreamID != "" && result.StreamID != s.id {
		c.unregister(s.id)
		return nil, fmt.Errorf("%w: stream id %q does not match %q", ErrMalformedResponse, result.StreamID, s.id)
	}

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	return s, nil
}

func (c *client) InlineCompletions(ctx context.Context, codeContext string) ([]string, error) {
	var result inlineCompletionsResult
	if err := c.call(ctx, "getInlineCompletions", InlineCompletionsParams{CodeContext: codeContext}, &result.Items); err != nil {
		return nil, err
	}
	if err := c.check("getInlineCompletions", result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (c *client) RecordCompletion(ctx context.Context, completion string) error {
	return c.notify(ctx, "recordCompletion", RecordCompletionParams{Completion: completion})
}

func (c *client) ProvideFeedback(ctx context.Context, completion string, rating int) error {
	return c.notify(ctx, "provideFeedback", FeedbackParams{Completion: completion, Rating: rating})
}

func (c *client) DidOpen(ctx context.Context, params lsp.DidOpenTextDocumentParams) error {
	return c.notify(ctx, "textDocument/didOpen", params)
}

func (c *client) DidChange(ctx context.Context, params lsp.DidChangeTextDocumentParams) error {
	return c.notify(ctx, "textDocument/didChange", params)
}

func (c *client) DidClose(ctx context.Context, params lsp.DidCloseTextDocumentParams) error {
	return c.notify(ctx, "textDocument/didClose", params)
}

func (c *client) call(ctx context.Context, method string, params, result any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var raw json.RawMessage
	if err := c.conn.Call(ctx, method, params, &raw); err != nil {
		return wrapCallError(method, err)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, method, err)
	}
	return nil
}

// check validates a decoded response.
func (c *client) check(method string, v any) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, method, err)
	}
	return nil
}

func (c *client) notify(ctx context.Context, method string, params any) error {
	if err := c.conn.Notify(ctx, method, params); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransport, method, err)
	}
	return nil
}

func wrapCallError(method string, err error) error {
	var rpcErr *jsonrpc2.Error
	if errors.As(err, &rpcErr) {
		return &ServiceError{Code: rpcErr.Code, Message: rpcErr.Message}
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, method, err)
}

func (c *client) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result any, err error) {
	switch req.Method {
	case "copilot/completionStreamItem":
		return nil, c.handleStreamItem(req)
	case "copilot/completionStreamEnd":
		return nil, c.handleStreamEnd(req)
	case "copilot/authenticationStatus":
		return nil, c.handleAuthenticationStatus(req)
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("method not supported: %s", req.Method)}
}

func (c *client) handleStreamItem(req *jsonrpc2.Request) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var item StreamItem
	if err := json.Unmarshal(*req.Params, &item); err != nil {
		return err
	}

	s, ok := c.lookup(item.StreamID)
	if !ok {
		c.logger.Debugf("drop element of unknown stream %s", item.StreamID)
		return nil
	}

	if err := c.validate.Struct(item); err != nil {
		c.unregister(s.id)
		s.finish(fmt.Errorf("%w: stream element: %w", ErrMalformedResponse, err))
		return nil
	}

	s.push(&item)
	return nil
}

func (c *client) handleStreamEnd(req *jsonrpc2.Request) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var end StreamEnd
	if err := json.Unmarshal(*req.Params, &end); err != nil {
		return err
	}

	s, ok := c.lookup(end.StreamID)
	if !ok {
		return nil
	}
	c.unregister(s.id)

	if end.Error != "" {
		s.finish(&ServiceError{Message: end.Error})
		return nil
	}
	s.finish(io.EOF)
	return nil
}

func (c *client) handleAuthenticationStatus(req *jsonrpc2.Request) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var status AuthStatus
	if err := json.Unmarshal(*req.Params, &status); err != nil {
		return err
	}

	c.mu.Lock()
	f := c.onAuthStatus
	c.mu.Unlock()

	if f != nil {
		f(status)
	}
	return nil
}

func (c *client) lookup(id string) (*stream, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.streams[id]
	return s, ok
}

func (c *client) unregister(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.streams[id]
	delete(c.streams, id)
	return ok
}

func (c *client) closeStreams(err error) {
	c.mu.Lock()
	streams := c.streams
	c.streams = make(map[string]*stream)
	c.mu.Unlock()

	for _, s := range streams {
		s.finish(err)
	}
}

// cancel drops the stream and asks the service to stop producing elements.
func (c *client) cancel(id string) {
	if !c.unregister(id) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.conn.Notify(ctx, "copilot/cancelStream", CancelStreamParams{StreamID: id}); err != nil {
		c.logger.Debugf("failed to cancel stream %s: %v", id, err)
	}
}
