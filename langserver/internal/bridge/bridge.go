// Package bridge turns editor requests into calls to the completion service and
// degrades service failures into empty results.
package bridge

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/kitagry/copilotls/langserver/internal/document"
	"github.com/kitagry/copilotls/langserver/internal/lsp"
	"github.com/kitagry/copilotls/langserver/internal/remote"
	"github.com/kitagry/copilotls/langserver/internal/session"
	"github.com/kitagry/copilotls/langserver/internal/telemetry"
	"golang.org/x/time/rate"
)

const (
	DefaultTriggerCharacter  = "."
	DefaultRequestsPerMinute = 60
	DefaultDebounce          = 300 * time.Millisecond
)

// Gate reports whether the user may call the service.
type Gate interface {
	Require() error
}

// SelectionList receives streamed completions. Entries are only ever appended.
type SelectionList interface {
	Append(ctx context.Context, completion StreamedCompletion) error
}

// DiagnosticsSink replaces the issues shown for a document.
type DiagnosticsSink interface {
	Publish(ctx context.Context, uri lsp.DocumentURI, issues []Issue) error
}

type Option func(*Bridge)

func WithTriggerCharacters(chars []string) Option {
	return func(b *Bridge) {
		b.setTriggerCharacters(chars)
	}
}

// WithRequestsPerMinute limits completion requests. n <= 0 disables the limit.
func WithRequestsPerMinute(n int) Option {
	return func(b *Bridge) {
		b.limiter = newLimiter(n)
	}
}

// WithDebounce delays inline completions and completion commands until no
// newer request for the same document arrived for d. Superseded requests
// return empty without calling the service. d <= 0 disables debouncing.
func WithDebounce(d time.Duration) Option {
	return func(b *Bridge) {
		b.debouncer = newDebouncer(d)
	}
}

type Bridge struct {
	session   *session.Session
	gate      Gate
	debouncer *debouncer

	mu       sync.Mutex
	triggers map[rune]struct{}
	limiter  *rate.Limiter

	streamsMu sync.Mutex
	streams   map[lsp.DocumentURI]*streamSession
}

type streamSession struct {
	cancel context.CancelFunc

	mu    sync.Mutex
	stale bool
}

func New(sess *session.Session, gate Gate, opts ...Option) *Bridge {
	b := &Bridge{
		session:   sess,
		gate:      gate,
		debouncer: newDebouncer(0),
		limiter:   newLimiter(DefaultRequestsPerMinute),
		streams:   make(map[lsp.DocumentURI]*streamSession),
	}
	b.setTriggerCharacters([]string{DefaultTriggerCharacter})
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// SetTriggerCharacters replaces the characters that trigger completion.
// Only the first rune of each entry is used.
func (b *Bridge) SetTriggerCharacters(chars []string) {
	b.setTriggerCharacters(chars)
}

func (b *Bridge) setTriggerCharacters(chars []string) {
	triggers := make(map[rune]struct{}, len(chars))
	for _, c := range chars {
		for _, r := range c {
			triggers[r] = struct{}{}
			break
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.triggers = triggers
}

func (b *Bridge) TriggerCharacters() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]string, 0, len(b.triggers))
	for r := range b.triggers {
		result = append(result, string(r))
	}
	return result
}

func (b *Bridge) isTrigger(r rune) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.triggers[r]
	return ok
}

// RequestCompletions returns the service's completions in service order. It
// returns nothing without calling the service unless the character before the
// cursor is a trigger character. Service failures yield an empty result.
func (b *Bridge) RequestCompletions(ctx context.Context, req CompletionRequest) ([]CompletionResult, error) {
	r, ok := document.PrecedingRune(req.DocumentText, req.offset())
	if !ok || !b.isTrigger(r) {
		return nil, nil
	}

	if err := b.gate.Require(); err != nil {
		return nil, err
	}

	if !b.limiter.Allow() {
		b.session.Logger.Debug("completion request throttled")
		b.session.Telemetry.TrackEvent(telemetry.EventCompletionThrottled, nil, nil)
		return nil, nil
	}

	items, err := b.session.Remote.Completions(ctx, remote.CompletionsParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: req.uri()},
		Position:     document.OffsetToPosition(req.DocumentText, req.offset()),
		CodeContext:  req.codeContext(),
	})
	if err != nil {
		b.trackFetchError(err)
		return nil, nil
	}

	results := make([]CompletionResult, len(items))
	for i, item := range items {
		label := item.Label
		if label == "" {
			label = item.InsertText
		}
		results[i] = CompletionResult{
			Text:         item.InsertText,
			DisplayLabel: label,
			Detail:       item.Detail,
		}
	}

	b.session.Telemetry.TrackEvent(telemetry.EventCompletion,
		map[string]string{"status": "success"},
		map[string]float64{"count": float64(len(results))})
	return results, nil
}

// RequestStreamingCompletions appends every streamed completion to list as it
// arrives and publishes its issues to diagnostics. A newer session for the same
// document cancels this one; nothing is appended after that.
func (b *Bridge) RequestStreamingCompletions(ctx context.Context, req CompletionRequest, list SelectionList, diagnostics DiagnosticsSink) error {
	if err := b.gate.Require(); err != nil {
		return err
	}

	uri := req.uri()
	if !b.debouncer.wait(ctx, "stream:"+string(uri)) {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := b.supersede(uri, cancel)
	defer b.release(uri, sess)

	stream, err := b.session.Remote.CompletionsStream(ctx, remote.StreamParams{
		CodeContext: req.codeContext(),
		FilePath:    req.FilePath,
	})
	if err != nil {
		if ctx.Err() == nil {
			b.trackFetchError(err)
		}
		return nil
	}
	defer stream.Close()

	count := 0
	for {
		item, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			b.session.Telemetry.TrackEvent(telemetry.EventCompletion,
				map[string]string{"status": "success", "mode": "stream"},
				map[string]float64{"count": float64(count)})
			return nil
		}
		if err != nil {
			if ctx.Err() == nil {
				b.trackFetchError(err)
			}
			return nil
		}

		completion := toStreamedCompletion(item)
		if !b.emit(ctx, sess, uri, completion, list, diagnostics) {
			return nil
		}
		count++
	}
}

func (b *Bridge) emit(ctx context.Context, sess *streamSession, uri lsp.DocumentURI, completion StreamedCompletion, list SelectionList, diagnostics DiagnosticsSink) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.stale {
		return false
	}

	if err := list.Append(ctx, completion); err != nil {
		b.session.Logger.Warnf("failed to append completion: %v", err)
	}
	if err := diagnostics.Publish(ctx, uri, completion.Issues.Flatten()); err != nil {
		b.session.Logger.Warnf("failed to publish diagnostics: %v", err)
	}
	return true
}

// supersede registers a new streaming session for uri and cancels the previous one.
func (b *Bridge) supersede(uri lsp.DocumentURI, cancel context.CancelFunc) *streamSession {
	sess := &streamSession{cancel: cancel}

	b.streamsMu.Lock()
	old := b.streams[uri]
	b.streams[uri] = sess
	b.streamsMu.Unlock()

	if old != nil {
		old.mu.Lock()
		old.stale = true
		old.mu.Unlock()
		old.cancel()
	}
	return sess
}

func (b *Bridge) release(uri lsp.DocumentURI, sess *streamSession) {
	b.streamsMu.Lock()
	defer b.streamsMu.Unlock()
	if b.streams[uri] == sess {
		delete(b.streams, uri)
	}
}

// RequestFixesAndCompletions returns completions mixed with error fixes in
// service order. Service failures yield an empty result.
func (b *Bridge) RequestFixesAndCompletions(ctx context.Context, uri lsp.DocumentURI, codeContext string) ([]Suggestion, error) {
	if err := b.gate.Require(); err != nil {
		return nil, err
	}
	if !b.debouncer.wait(ctx, "fixes:"+string(uri)) {
		return nil, nil
	}

	items, err := b.session.Remote.CompletionsAndFixes(ctx, codeContext)
	if err != nil {
		b.trackFetchError(err)
		return nil, nil
	}

	result := make([]Suggestion, len(items))
	for i, item := range items {
		result[i] = Suggestion{Text: item.Text, Kind: Kind(item.Kind)}
	}
	return result, nil
}

// RequestInlineCompletions returns text to insert at the cursor, in service
// order. Only the last of a burst of requests for a document reaches the
// service. Service failures yield an empty result.
func (b *Bridge) RequestInlineCompletions(ctx context.Context, req CompletionRequest) ([]string, error) {
	if err := b.gate.Require(); err != nil {
		return nil, err
	}
	if !b.debouncer.wait(ctx, "inline:"+string(req.uri())) {
		return nil, nil
	}

	items, err := b.session.Remote.InlineCompletions(ctx, req.codeContext())
	if err != nil {
		b.trackFetchError(err)
		return nil, nil
	}

	b.session.Telemetry.TrackEvent(telemetry.EventCompletion,
		map[string]string{"status": "success", "mode": "inline"},
		map[string]float64{"count": float64(len(items))})
	return items, nil
}

func (b *Bridge) trackFetchError(err error) {
	b.session.Logger.Warnf("failed to fetch completions: %v", err)
	b.session.Telemetry.TrackEvent(telemetry.EventError, map[string]string{
		"type":    telemetry.TypeCompletionFetchError,
		"message": err.Error(),
	}, nil)
}

func toStreamedCompletion(item *remote.StreamItem) StreamedCompletion {
	return StreamedCompletion{
		Completion: item.Completion,
		Language:   item.Language,
		Issues: IssueSet{
			Errors:         toIssues(item.Issues.Errors),
			Warnings:       toIssues(item.Issues.Warnings),
			StyleIssues:    toIssues(item.Issues.StyleIssues),
			SecurityIssues: toIssues(item.Issues.SecurityIssues),
		},
	}
}

func toIssues(issues []remote.Issue) []Issue {
	if len(issues) == 0 {
		return nil
	}
	result := make([]Issue, len(issues))
	for i, issue := range issues {
		result[i] = Issue{
			Line:     issue.Line,
			Column:   issue.Column,
			Message:  issue.Message,
			Severity: severityOf(issue.Message),
		}
	}
	return result
}

// IssueRange maps a 1-based issue position onto a one character LSP range.
func IssueRange(issue Issue) lsp.Range {
	line := max(issue.Line-1, 0)
	column := max(issue.Column-1, 0)
	return lsp.Range{
		Start: lsp.Position{Line: line, Character: column},
		End:   lsp.Position{Line: line, Character: column + 1},
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return strconv.Itoa(int(s))
}
