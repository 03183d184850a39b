// Package auth tracks whether the user is signed in to the completion service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kitagry/copilotls/langserver/internal/secret"
	"github.com/kitagry/copilotls/langserver/internal/session"
)

var (
	// ErrAuthRequired is returned by operations that need a signed in user.
	ErrAuthRequired = errors.New("please sign in to use the copilot")

	// ErrRejected is returned when the service refuses a token.
	ErrRejected = errors.New("authentication rejected")

	ErrEmptyToken = errors.New("token is empty")
)

type State int

const (
	SignedOut State = iota
	Authenticating
	SignedIn
)

func (s State) String() string {
	switch s {
	case SignedOut:
		return "SignedOut"
	case Authenticating:
		return "Authenticating"
	case SignedIn:
		return "SignedIn"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Notifier shows authentication messages to the user.
type Notifier interface {
	ShowInfo(ctx context.Context, message string)
	ShowError(ctx context.Context, message string)

	// PromptSignIn asks the user to sign in. It may block until the user answers.
	PromptSignIn(ctx context.Context)
}

type Gate struct {
	session  *session.Session
	notifier Notifier

	mu    sync.Mutex
	state State
	// token is the credential the SignedIn state was granted for.
	token string

	wg sync.WaitGroup
}

func New(sess *session.Session, notifier Notifier) *Gate {
	return &Gate{
		session:  sess,
		notifier: notifier,
		state:    SignedOut,
	}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) setState(s State, token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
	g.token = token
}

// Require returns ErrAuthRequired unless the user is signed in.
func (g *Gate) Require() error {
	if g.State() != SignedIn {
		return ErrAuthRequired
	}
	return nil
}

// Resolve derives the initial state from the stored token. A stored token
// counts as signed in right away and is checked against the service in the
// background.
func (g *Gate) Resolve(ctx context.Context) error {
	token, ok, err := g.session.Secrets.Get(ctx, secret.KeyUserToken)
	if err != nil {
		g.session.Logger.Warnf("failed to read stored token: %v", err)
	}

	if err != nil || !ok || token == "" {
		g.setState(SignedOut, "")
		g.background(ctx, func(ctx context.Context) {
			g.notifier.PromptSignIn(ctx)
		})
		return nil
	}

	g.setState(SignedIn, token)
	g.background(ctx, func(ctx context.Context) {
		g.revalidate(ctx, token)
	})
	return nil
}

func (g *Gate) revalidate(ctx context.Context, token string) {
	result, err := g.session.Remote.Authenticate(ctx, token)
	if err != nil {
		g.session.Logger.Warnf("failed to re-validate stored token: %v", err)
		return
	}
	if result.Success {
		return
	}

	// A sign-in that happened meanwhile replaced token and is left alone.
	g.mu.Lock()
	if g.state != SignedIn || g.token != token {
		g.mu.Unlock()
		return
	}
	g.state = SignedOut
	g.token = ""
	g.mu.Unlock()

	if err := g.deleteToken(ctx, token); err != nil {
		g.session.Logger.Warnf("failed to delete rejected token: %v", err)
	}

	g.notifier.ShowError(ctx, rejectedMessage(result.Message))
	g.notifier.PromptSignIn(ctx)
}

// deleteToken removes token unless a newer sign-in already replaced it.
func (g *Gate) deleteToken(ctx context.Context, token string) error {
	current, ok, err := g.session.Secrets.Get(ctx, secret.KeyUserToken)
	if err != nil {
		return err
	}
	if !ok || current != token {
		return nil
	}
	return g.session.Secrets.Delete(ctx, secret.KeyUserToken)
}

// SignIn validates token with the service and stores it on success. A
// rejection signs the user out and forgets the previously stored token; a
// transport failure keeps the previous state. A rejected token is never stored.
func (g *Gate) SignIn(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	g.mu.Lock()
	previous, previousToken := g.state, g.token
	g.state = Authenticating
	g.mu.Unlock()

	result, err := g.session.Remote.Authenticate(ctx, token)
	if err != nil {
		g.setState(previous, previousToken)
		g.notifier.ShowError(ctx, fmt.Sprintf("Failed to sign in: %v", err))
		return fmt.Errorf("authenticate: %w", err)
	}
	if !result.Success {
		g.setState(SignedOut, "")
		if previousToken != "" {
			if err := g.deleteToken(ctx, previousToken); err != nil {
				g.session.Logger.Warnf("failed to delete previous token: %v", err)
			}
		}
		g.notifier.ShowError(ctx, rejectedMessage(result.Message))
		return fmt.Errorf("%w: %s", ErrRejected, result.Message)
	}

	if err := g.session.Secrets.Store(ctx, secret.KeyUserToken, token); err != nil {
		g.setState(previous, previousToken)
		return fmt.Errorf("store token: %w", err)
	}

	g.setState(SignedIn, token)
	message := result.Message
	if message == "" {
		message = "Successfully signed in to the copilot."
	}
	g.notifier.ShowInfo(ctx, message)
	return nil
}

// SignOut forgets the stored token. The service is told on a best-effort basis.
func (g *Gate) SignOut(ctx context.Context) error {
	if err := g.session.Remote.SignOut(ctx); err != nil {
		g.session.Logger.Debugf("failed to notify sign out: %v", err)
	}

	g.setState(SignedOut, "")
	if err := g.session.Secrets.Delete(ctx, secret.KeyUserToken); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}

	g.notifier.ShowInfo(ctx, "Signed out from the copilot.")
	return nil
}

// HandleStatus reacts to a status pushed by the service. It does not block.
func (g *Gate) HandleStatus(success bool, message string) {
	ctx := context.Background()

	if success {
		g.background(ctx, func(ctx context.Context) {
			if message == "" {
				message = "Authenticated with the copilot."
			}
			g.notifier.ShowInfo(ctx, message)
		})
		return
	}

	g.setState(SignedOut, "")
	g.background(ctx, func(ctx context.Context) {
		g.notifier.ShowError(ctx, rejectedMessage(message))
		g.notifier.PromptSignIn(ctx)
	})
}

// Wait blocks until background checks and prompts have returned.
func (g *Gate) Wait() {
	g.wg.Wait()
}

func (g *Gate) background(ctx context.Context, f func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f(ctx)
	}()
}

func rejectedMessage(message string) string {
	if message == "" {
		return "Authentication failed. Please sign in again."
	}
	return fmt.Sprintf("Authentication failed: %s", message)
}
