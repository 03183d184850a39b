package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/kitagry/copilotls/langserver/internal/auth"
	"github.com/kitagry/copilotls/langserver/internal/remote"
	"github.com/kitagry/copilotls/langserver/internal/remote/mock_remote"
	"github.com/kitagry/copilotls/langserver/internal/secret"
	"github.com/kitagry/copilotls/langserver/internal/session"
)

type fakeNotifier struct {
	mu       sync.Mutex
	infos    []string
	errors   []string
	prompted int
}

func (f *fakeNotifier) ShowInfo(_ context.Context, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = append(f.infos, message)
}

func (f *fakeNotifier) ShowError(_ context.Context, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, message)
}

func (f *fakeNotifier) PromptSignIn(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompted++
}

func newGate(t *testing.T, client remote.Client, token string) (*auth.Gate, *secret.Memory, *fakeNotifier) {
	t.Helper()

	store := secret.NewMemory()
	if token != "" {
		if err := store.Store(context.Background(), secret.KeyUserToken, token); err != nil {
			t.Fatal(err)
		}
	}
	notifier := &fakeNotifier{}
	sess := session.New(client, store, nil, nil)
	return auth.New(sess, notifier), store, notifier
}

func storedToken(t *testing.T, store secret.Store) string {
	t.Helper()
	token, _, err := store.Get(context.Background(), secret.KeyUserToken)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestGate_Resolve(t *testing.T) {
	tests := map[string]struct {
		token          string
		createClient   func(ctrl *gomock.Controller) remote.Client
		expectState    auth.State
		expectToken    string
		expectPrompted int
		expectErrors   int
	}{
		"no token prompts sign in": {
			createClient: func(ctrl *gomock.Controller) remote.Client {
				return mock_remote.NewMockClient(ctrl)
			},
			expectState:    auth.SignedOut,
			expectPrompted: 1,
		},
		"valid token stays signed in": {
			token: "good",
			createClient: func(ctrl *gomock.Controller) remote.Client {
				client := mock_remote.NewMockClient(ctrl)
				client.EXPECT().Authenticate(gomock.Any(), "good").Return(&remote.AuthResult{Success: true}, nil)
				return client
			},
			expectState: auth.SignedIn,
			expectToken: "good",
		},
		"rejected token is deleted": {
			token: "expired",
			createClient: func(ctrl *gomock.Controller) remote.Client {
				client := mock_remote.NewMockClient(ctrl)
				client.EXPECT().Authenticate(gomock.Any(), "expired").Return(&remote.AuthResult{Success: false, Message: "token expired"}, nil)
				return client
			},
			expectState:    auth.SignedOut,
			expectPrompted: 1,
			expectErrors:   1,
		},
		"transport failure keeps the session": {
			token: "good",
			createClient: func(ctrl *gomock.Controller) remote.Client {
				client := mock_remote.NewMockClient(ctrl)
				client.EXPECT().Authenticate(gomock.Any(), "good").Return(nil, remote.ErrTransport)
				return client
			},
			expectState: auth.SignedIn,
			expectToken: "good",
		},
	}

	for n, tt := range tests {
		t.Run(n, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			gate, store, notifier := newGate(t, tt.createClient(ctrl), tt.token)

			if err := gate.Resolve(context.Background()); err != nil {
				t.Fatal(err)
			}
			gate.Wait()

			if got := gate.State(); got != tt.expectState {
				t.Errorf("expected state %s, got %s", tt.expectState, got)
			}
			if got := storedToken(t, store); got != tt.expectToken {
				t.Errorf("expected token %q, got %q", tt.expectToken, got)
			}
			if notifier.prompted != tt.expectPrompted {
				t.Errorf("expected %d prompts, got %d", tt.expectPrompted, notifier.prompted)
			}
			if len(notifier.errors) != tt.expectErrors {
				t.Errorf("expected %d error messages, got %v", tt.expectErrors, notifier.errors)
			}
		})
	}
}

func TestGate_ResolveIsOptimistic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	release := make(chan struct{})
	client := mock_remote.NewMockClient(ctrl)
	client.EXPECT().Authenticate(gomock.Any(), "good").DoAndReturn(func(ctx context.Context, token string) (*remote.AuthResult, error) {
		<-release
		return &remote.AuthResult{Success: true}, nil
	})

	gate, _, _ := newGate(t, client, "good")
	if err := gate.Resolve(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := gate.Require(); err != nil {
		t.Errorf("expected signed in before validation finishes, got %v", err)
	}

	close(release)
	gate.Wait()
}

func TestGate_SignIn(t *testing.T) {
	tests := map[string]struct {
		before       string
		token        string
		createClient func(ctrl *gomock.Controller) remote.Client
		expectState  auth.State
		expectToken  string
		expectErr    error
		expectInfos  []string
	}{
		"accepted token is stored": {
			token: "new",
			createClient: func(ctrl *gomock.Controller) remote.Client {
				client := mock_remote.NewMockClient(ctrl)
				client.EXPECT().Authenticate(gomock.Any(), "new").Return(&remote.AuthResult{Success: true, Message: "Welcome"}, nil)
				return client
			},
			expectState: auth.SignedIn,
			expectToken: "new",
			expectInfos: []string{"Welcome"},
		},
		"new token overwrites the old one": {
			before: "old",
			token:  "new",
			createClient: func(ctrl *gomock.Controller) remote.Client {
				client := mock_remote.NewMockClient(ctrl)
				client.EXPECT().Authenticate(gomock.Any(), "new").Return(&remote.AuthResult{Success: true}, nil)
				return client
			},
			expectState: auth.SignedIn,
			expectToken: "new",
			expectInfos: []string{"Successfully signed in to the copilot."},
		},
		"rejected token is not stored": {
			token: "bad",
			createClient: func(ctrl *gomock.Controller) remote.Client {
				client := mock_remote.NewMockClient(ctrl)
				client.EXPECT().Authenticate(gomock.Any(), "bad").Return(&remote.AuthResult{Success: false, Message: "invalid token"}, nil)
				return client
			},
			expectState: auth.SignedOut,
			expectErr:   auth.ErrRejected,
		},
		"transport failure": {
			token: "new",
			createClient: func(ctrl *gomock.Controller) remote.Client {
				client := mock_remote.NewMockClient(ctrl)
				client.EXPECT().Authenticate(gomock.Any(), "new").Return(nil, remote.ErrTransport)
				return client
			},
			expectState: auth.SignedOut,
			expectErr:   remote.ErrTransport,
		},
		"empty token": {
			createClient: func(ctrl *gomock.Controller) remote.Client {
				return mock_remote.NewMockClient(ctrl)
			},
			expectState: auth.SignedOut,
			expectErr:   auth.ErrEmptyToken,
		},
	}

	for n, tt := range tests {
		t.Run(n, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			gate, store, notifier := newGate(t, tt.createClient(ctrl), tt.before)

			err := gate.SignIn(context.Background(), tt.token)
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
			} else if err != nil {
				t.Fatal(err)
			}

			if got := gate.State(); got != tt.expectState {
				t.Errorf("expected state %s, got %s", tt.expectState, got)
			}
			expectToken := tt.expectToken
			if tt.expectErr != nil {
				expectToken = tt.before
			}
			if got := storedToken(t, store); got != expectToken {
				t.Errorf("expected token %q, got %q", expectToken, got)
			}
			if diff := cmp.Diff(tt.expectInfos, notifier.infos); diff != "" {
				t.Errorf("info messages diff (-expect, +got)\n%s", diff)
			}
		})
	}
}

func TestGate_SignOut(t *testing.T) {
	tests := map[string]struct {
		signOutErr error
	}{
		"service acknowledges": {},
		"service unreachable": {
			signOutErr: remote.ErrTransport,
		},
	}

	for n, tt := range tests {
		t.Run(n, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mock_remote.NewMockClient(ctrl)
			client.EXPECT().Authenticate(gomock.Any(), "token").Return(&remote.AuthResult{Success: true}, nil)
			client.EXPECT().SignOut(gomock.Any()).Return(tt.signOutErr)

			gate, store, _ := newGate(t, client, "")
			ctx := context.Background()
			if err := gate.SignIn(ctx, "token"); err != nil {
				t.Fatal(err)
			}

			if err := gate.SignOut(ctx); err != nil {
				t.Fatal(err)
			}

			if got := gate.State(); got != auth.SignedOut {
				t.Errorf("expected SignedOut, got %s", got)
			}
			if got := storedToken(t, store); got != "" {
				t.Errorf("expected token to be deleted, got %q", got)
			}
			if !errors.Is(gate.Require(), auth.ErrAuthRequired) {
				t.Error("expected ErrAuthRequired after sign out")
			}
		})
	}
}

func TestGate_HandleStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock_remote.NewMockClient(ctrl)
	client.EXPECT().Authenticate(gomock.Any(), "token").Return(&remote.AuthResult{Success: true}, nil)

	gate, _, notifier := newGate(t, client, "")
	if err := gate.SignIn(context.Background(), "token"); err != nil {
		t.Fatal(err)
	}

	gate.HandleStatus(false, "session revoked")
	gate.Wait()

	if got := gate.State(); got != auth.SignedOut {
		t.Errorf("expected SignedOut, got %s", got)
	}
	if diff := cmp.Diff([]string{"Authentication failed: session revoked"}, notifier.errors); diff != "" {
		t.Errorf("error messages diff (-expect, +got)\n%s", diff)
	}
	if notifier.prompted != 1 {
		t.Errorf("expected a sign in prompt, got %d", notifier.prompted)
	}
}

func TestGate_StaleRevalidationKeepsNewSignIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	release := make(chan struct{})
	client := mock_remote.NewMockClient(ctrl)
	client.EXPECT().Authenticate(gomock.Any(), "old").DoAndReturn(func(ctx context.Context, token string) (*remote.AuthResult, error) {
		<-release
		return &remote.AuthResult{Success: false, Message: "token expired"}, nil
	})
	client.EXPECT().Authenticate(gomock.Any(), "new").Return(&remote.AuthResult{Success: true}, nil)

	gate, store, notifier := newGate(t, client, "old")
	ctx := context.Background()
	if err := gate.Resolve(ctx); err != nil {
		t.Fatal(err)
	}
	if err := gate.SignIn(ctx, "new"); err != nil {
		t.Fatal(err)
	}

	close(release)
	gate.Wait()

	if got := gate.State(); got != auth.SignedIn {
		t.Errorf("expected SignedIn, got %s", got)
	}
	if got := storedToken(t, store); got != "new" {
		t.Errorf("expected token %q, got %q", "new", got)
	}
	if len(notifier.errors) != 0 || notifier.prompted != 0 {
		t.Errorf("expected no error or prompt, got errors=%v prompts=%d", notifier.errors, notifier.prompted)
	}
}

func TestGate_SignInRejectedWhileSignedIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mock_remote.NewMockClient(ctrl)
	client.EXPECT().Authenticate(gomock.Any(), "old").Return(&remote.AuthResult{Success: true}, nil)
	client.EXPECT().Authenticate(gomock.Any(), "bad").Return(&remote.AuthResult{Success: false, Message: "invalid token"}, nil)

	gate, store, notifier := newGate(t, client, "old")
	ctx := context.Background()
	if err := gate.Resolve(ctx); err != nil {
		t.Fatal(err)
	}
	gate.Wait()

	if err := gate.SignIn(ctx, "bad"); !errors.Is(err, auth.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}

	if got := gate.State(); got != auth.SignedOut {
		t.Errorf("expected SignedOut, got %s", got)
	}
	if got := storedToken(t, store); got != "" {
		t.Errorf("expected the previous token to be deleted, got %q", got)
	}
	if diff := cmp.Diff([]string{"Authentication failed: invalid token"}, notifier.errors); diff != "" {
		t.Errorf("error messages diff (-expect, +got)\n%s", diff)
	}
}
