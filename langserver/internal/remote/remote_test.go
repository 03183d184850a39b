package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kitagry/copilotls/langserver/internal/lsp"
	"github.com/kitagry/copilotls/langserver/internal/remote"
	"github.com/sourcegraph/jsonrpc2"
)

type handlerFunc func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error)

func newTestClient(t *testing.T, handler handlerFunc) (remote.Client, *jsonrpc2.Conn) {
	t.Helper()

	clientSide, serverSide := net.Pipe()
	ctx := context.Background()

	server := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}), jsonrpc2.AsyncHandler(jsonrpc2.HandlerWithError(handler)))
	client := remote.New(ctx, clientSide, remote.WithTimeout(5*time.Second))

	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func reply(raw string) handlerFunc {
	return func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		if req.Notif {
			return nil, nil
		}
		msg := json.RawMessage(raw)
		return &msg, nil
	}
}

func TestClient_Completions(t *testing.T) {
	tests := map[string]struct {
		handler    handlerFunc
		expect     []remote.CompletionItem
		expectErr  error
		serviceErr bool
	}{
		"items in service order": {
			handler: reply(`[{"label":"a","insertText":"foo()","detail":"Copilot suggestion (python)"},{"label":"b","insertText":"bar()","detail":""}]`),
			expect: []remote.CompletionItem{
				{Label: "a", InsertText: "foo()", Detail: "Copilot suggestion (python)"},
				{Label: "b", InsertText: "bar()"},
			},
		},
		"empty list": {
			handler: reply(`[]`),
			expect:  []remote.CompletionItem{},
		},
		"object instead of list": {
			handler:   reply(`{"items":[]}`),
			expectErr: remote.ErrMalformedResponse,
		},
		"item without insertText": {
			handler:   reply(`[{"label":"a"}]`),
			expectErr: remote.ErrMalformedResponse,
		},
		"service error": {
			handler: func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
				return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: "model unavailable"}
			},
			serviceErr: true,
		},
	}

	for n, tt := range tests {
		t.Run(n, func(t *testing.T) {
			client, _ := newTestClient(t, tt.handler)

			got, err := client.Completions(context.Background(), remote.CompletionsParams{
				TextDocument: lsp.TextDocumentIdentifier{URI: "file:///tmp/a.py"},
				Position:     lsp.Position{Line: 0, Character: 4},
				CodeContext:  "foo.",
			})
			if tt.serviceErr {
				var serviceErr *remote.ServiceError
				if !errors.As(err, &serviceErr) {
					t.Fatalf("expected ServiceError, got %v", err)
				}
				if serviceErr.Message != "model unavailable" {
					t.Errorf("unexpected message %q", serviceErr.Message)
				}
				return
			}
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(tt.expect, got); diff != "" {
				t.Errorf("Completions result diff (-expect, +got)\n%s", diff)
			}
		})
	}
}

func TestClient_CompletionsSendsParams(t *testing.T) {
	received := make(chan json.RawMessage, 1)
	client, _ := newTestClient(t, func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		received <- *req.Params
		return []any{}, nil
	})

	_, err := client.Completions(context.Background(), remote.CompletionsParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: "file:///tmp/a.py"},
		Position:     lsp.Position{Line: 1, Character: 2},
		CodeContext:  "x\ny.",
	})
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(<-received, &got); err != nil {
		t.Fatal(err)
	}
	expect := map[string]any{
		"textDocument": map[string]any{"uri": "file:///tmp/a.py"},
		"position":     map[string]any{"line": float64(1), "character": float64(2)},
		"codeContext":  "x\ny.",
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("params diff (-expect, +got)\n%s", diff)
	}
}

func TestClient_Authenticate(t *testing.T) {
	tests := map[string]struct {
		raw       string
		expect    *remote.AuthResult
		expectErr error
	}{
		"accepted": {
			raw:    `{"success":true,"message":"ok"}`,
			expect: &remote.AuthResult{Success: true, Message: "ok"},
		},
		"rejected": {
			raw:    `{"success":false,"message":"invalid token"}`,
			expect: &remote.AuthResult{Success: false, Message: "invalid token"},
		},
		"missing success": {
			raw:       `{"message":"ok"}`,
			expectErr: remote.ErrMalformedResponse,
		},
	}

	for n, tt := range tests {
		t.Run(n, func(t *testing.T) {
			client, _ := newTestClient(t, reply(tt.raw))

			got, err := client.Authenticate(context.Background(), "token")
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(tt.expect, got); diff != "" {
				t.Errorf("Authenticate result diff (-expect, +got)\n%s", diff)
			}
		})
	}
}

func TestClient_CompletionsAndFixes(t *testing.T) {
	tests := map[string]struct {
		raw       string
		expect    []remote.Suggestion
		expectErr error
	}{
		"pairs keep their order": {
			raw: `[["x = 1","error_fix"],["print(x)","completion"]]`,
			expect: []remote.Suggestion{
				{Text: "x = 1", Kind: remote.KindErrorFix},
				{Text: "print(x)", Kind: remote.KindCompletion},
			},
		},
		"unknown kind": {
			raw:       `[["x = 1","refactor"]]`,
			expectErr: remote.ErrMalformedResponse,
		},
		"not a pair": {
			raw:       `[["x = 1"]]`,
			expectErr: remote.ErrMalformedResponse,
		},
	}

	for n, tt := range tests {
		t.Run(n, func(t *testing.T) {
			client, _ := newTestClient(t, reply(tt.raw))

			got, err := client.CompletionsAndFixes(context.Background(), "x =")
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(tt.expect, got); diff != "" {
				t.Errorf("CompletionsAndFixes result diff (-expect, +got)\n%s", diff)
			}
		})
	}
}

func TestClient_InlineCompletions(t *testing.T) {
	tests := map[string]struct {
		raw       string
		expect    []string
		expectErr error
	}{
		"texts in service order": {
			raw:    `["path.join(", "environ"]`,
			expect: []string{"path.join(", "environ"},
		},
		"empty list": {
			raw:    `[]`,
			expect: []string{},
		},
		"not a list of strings": {
			raw:       `[{"text":"environ"}]`,
			expectErr: remote.ErrMalformedResponse,
		},
	}

	for n, tt := range tests {
		t.Run(n, func(t *testing.T) {
			var (
				mu     sync.Mutex
				method string
				params remote.InlineCompletionsParams
			)
			client, _ := newTestClient(t, func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
				mu.Lock()
				method = req.Method
				err := json.Unmarshal(*req.Params, &params)
				mu.Unlock()
				if err != nil {
					return nil, err
				}
				return reply(tt.raw)(ctx, conn, req)
			})

			got, err := client.InlineCompletions(context.Background(), "import os\nos.")
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(tt.expect, got); diff != "" {
				t.Errorf("InlineCompletions result diff (-expect, +got)\n%s", diff)
			}
			mu.Lock()
			defer mu.Unlock()
			if method != "getInlineCompletions" {
				t.Errorf("expected getInlineCompletions, got %s", method)
			}
			if params.CodeContext != "import os\nos." {
				t.Errorf("unexpected codeContext %q", params.CodeContext)
			}
		})
	}
}

func streamHandler(items []map[string]any, end map[string]any) handlerFunc {
	return func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		if req.Method != "getCompletionsStream" {
			return nil, nil
		}
		var params remote.StreamParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		for _, item := range items {
			item["streamId"] = params.StreamID
			if err := conn.Notify(ctx, "copilot/completionStreamItem", item); err != nil {
				return nil, err
			}
		}
		end["streamId"] = params.StreamID
		if err := conn.Notify(ctx, "copilot/completionStreamEnd", end); err != nil {
			return nil, err
		}
		return remote.StreamStarted{StreamID: params.StreamID}, nil
	}
}

func collect(t *testing.T, s remote.Stream) ([]string, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []string
	for {
		item, err := s.Next(ctx)
		if err != nil {
			return got, err
		}
		got = append(got, item.Completion)
	}
}

func TestClient_CompletionsStream(t *testing.T) {
	issues := map[string]any{
		"errors":          []any{map[string]any{"line": 1, "column": 2, "message": "Error: x"}},
		"warnings":        []any{},
		"style_issues":    []any{},
		"security_issues": []any{},
	}

	tests := map[string]struct {
		items     []map[string]any
		end       map[string]any
		expect    []string
		expectEOF bool
		expectErr func(error) bool
	}{
		"elements in arrival order": {
			items: []map[string]any{
				{"completion": "a", "language": "python", "issues": issues},
				{"completion": "b", "language": "python", "issues": issues},
				{"completion": "c", "language": "python"},
			},
			end:       map[string]any{},
			expect:    []string{"a", "b", "c"},
			expectEOF: true,
		},
		"service ends with error": {
			items: []map[string]any{
				{"completion": "a", "language": "python"},
			},
			end:    map[string]any{"error": "generation failed"},
			expect: []string{"a"},
			expectErr: func(err error) bool {
				var serviceErr *remote.ServiceError
				return errors.As(err, &serviceErr)
			},
		},
		"malformed element": {
			items: []map[string]any{
				{"completion": "a", "language": "python"},
				{"language": "python"},
			},
			end:    map[string]any{},
			expect: []string{"a"},
			expectErr: func(err error) bool {
				return errors.Is(err, remote.ErrMalformedResponse)
			},
		},
		"issue column is 1-based": {
			items: []map[string]any{
				{"completion": "a", "language": "python"},
				{"completion": "b", "language": "python", "issues": map[string]any{
					"errors": []any{map[string]any{"line": 1, "column": 0, "message": "Error: x"}},
				}},
			},
			end:    map[string]any{},
			expect: []string{"a"},
			expectErr: func(err error) bool {
				return errors.Is(err, remote.ErrMalformedResponse)
			},
		},
	}

	for n, tt := range tests {
		t.Run(n, func(t *testing.T) {
			client, _ := newTestClient(t, streamHandler(tt.items, tt.end))

			s, err := client.CompletionsStream(context.Background(), remote.StreamParams{
				CodeContext: "import os\nos.",
				FilePath:    "/tmp/a.py",
			})
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()

			got, err := collect(t, s)
			if tt.expectEOF && err != io.EOF {
				t.Fatalf("expected io.EOF, got %v", err)
			}
			if tt.expectErr != nil && !tt.expectErr(err) {
				t.Fatalf("unexpected error %v", err)
			}

			if diff := cmp.Diff(tt.expect, got); diff != "" {
				t.Errorf("stream elements diff (-expect, +got)\n%s", diff)
			}
		})
	}
}

func TestClient_CompletionsStreamIssues(t *testing.T) {
	client, _ := newTestClient(t, streamHandler([]map[string]any{
		{
			"completion": "os.path",
			"language":   "python",
			"issues": map[string]any{
				"errors":          []any{map[string]any{"line": 3, "column": 1, "message": "Error: undefined"}},
				"warnings":        []any{map[string]any{"line": 1, "column": 5, "message": "unused import"}},
				"style_issues":    []any{},
				"security_issues": []any{map[string]any{"line": 2, "column": 1, "message": "eval is dangerous"}},
			},
		},
	}, map[string]any{}))

	s, err := client.CompletionsStream(context.Background(), remote.StreamParams{CodeContext: "os.", FilePath: "/tmp/a.py"})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	item, err := s.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	expect := remote.Issues{
		Errors:         []remote.Issue{{Line: 3, Column: 1, Message: "Error: undefined"}},
		Warnings:       []remote.Issue{{Line: 1, Column: 5, Message: "unused import"}},
		StyleIssues:    []remote.Issue{},
		SecurityIssues: []remote.Issue{{Line: 2, Column: 1, Message: "eval is dangerous"}},
	}
	if diff := cmp.Diff(expect, item.Issues); diff != "" {
		t.Errorf("issues diff (-expect, +got)\n%s", diff)
	}
}

func TestClient_CompletionsStreamCancel(t *testing.T) {
	started := make(chan string, 1)
	cancelled := make(chan string, 1)

	client, server := newTestClient(t, func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		var params remote.StreamParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		switch req.Method {
		case "getCompletionsStream":
			started <- params.StreamID
			return remote.StreamStarted{StreamID: params.StreamID}, nil
		case "copilot/cancelStream":
			cancelled <- params.StreamID
		}
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s, err := client.CompletionsStream(ctx, remote.StreamParams{CodeContext: "a.", FilePath: "/tmp/a.py"})
	if err != nil {
		t.Fatal(err)
	}
	id := <-started

	cancel()

	select {
	case got := <-cancelled:
		if got != id {
			t.Errorf("cancelled stream %q, expected %q", got, id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("copilot/cancelStream was not sent")
	}

	// Elements of a cancelled stream are dropped.
	if err := server.Notify(context.Background(), "copilot/completionStreamItem", map[string]any{"streamId": id, "completion": "late"}); err != nil {
		t.Fatal(err)
	}

	item, err := s.Next(context.Background())
	if item != nil {
		t.Errorf("expected no element, got %v", item.Completion)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClient_Notifications(t *testing.T) {
	type notification struct {
		Method string
		Params map[string]any
	}
	received := make(chan notification, 2)

	client, _ := newTestClient(t, func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		var params map[string]any
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}
		received <- notification{Method: req.Method, Params: params}
		return nil, nil
	})

	ctx := context.Background()
	if err := client.RecordCompletion(ctx, "print(x)"); err != nil {
		t.Fatal(err)
	}
	if err := client.ProvideFeedback(ctx, "print(x)", 5); err != nil {
		t.Fatal(err)
	}

	expect := []notification{
		{Method: "recordCompletion", Params: map[string]any{"completion": "print(x)"}},
		{Method: "provideFeedback", Params: map[string]any{"completion": "print(x)", "rating": float64(5)}},
	}
	got := []notification{<-received, <-received}
	if got[0].Method != expect[0].Method {
		got[0], got[1] = got[1], got[0]
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("notifications diff (-expect, +got)\n%s", diff)
	}
}

func TestClient_AuthenticationStatus(t *testing.T) {
	client, server := newTestClient(t, reply(`null`))

	got := make(chan remote.AuthStatus, 1)
	client.OnAuthenticationStatus(func(status remote.AuthStatus) {
		got <- status
	})

	if err := server.Notify(context.Background(), "copilot/authenticationStatus", remote.AuthStatus{Success: false, Message: "token expired"}); err != nil {
		t.Fatal(err)
	}

	select {
	case status := <-got:
		if diff := cmp.Diff(remote.AuthStatus{Success: false, Message: "token expired"}, status); diff != "" {
			t.Errorf("status diff (-expect, +got)\n%s", diff)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("authentication status was not delivered")
	}
}

func TestClient_TransportFailure(t *testing.T) {
	client, server := newTestClient(t, reply(`[]`))
	server.Close()
	<-server.DisconnectNotify()

	_, err := client.Completions(context.Background(), remote.CompletionsParams{CodeContext: "a."})
	if !errors.Is(err, remote.ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	client := remote.Unavailable(cause)
	ctx := context.Background()

	calls := map[string]func() error{
		"Authenticate": func() error {
			_, err := client.Authenticate(ctx, "token")
			return err
		},
		"Completions": func() error {
			_, err := client.Completions(ctx, remote.CompletionsParams{CodeContext: "a."})
			return err
		},
		"CompletionsStream": func() error {
			_, err := client.CompletionsStream(ctx, remote.StreamParams{CodeContext: "a."})
			return err
		},
		"CompletionsAndFixes": func() error {
			_, err := client.CompletionsAndFixes(ctx, "a")
			return err
		},
		"InlineCompletions": func() error {
			_, err := client.InlineCompletions(ctx, "a")
			return err
		},
		"RecordCompletion": func() error {
			return client.RecordCompletion(ctx, "a")
		},
	}

	for n, call := range calls {
		t.Run(n, func(t *testing.T) {
			err := call()
			if !errors.Is(err, remote.ErrTransport) || !errors.Is(err, cause) {
				t.Errorf("expected ErrTransport wrapping the cause, got %v", err)
			}
		})
	}

	select {
	case <-client.Done():
	default:
		t.Error("Done should be closed for an unavailable service")
	}
}
